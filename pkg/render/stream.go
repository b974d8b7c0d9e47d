package render

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/reflow-ui/reflow/pkg/tree"
)

// ErrNotInsert reports a patch other than Insert reaching the stream
// renderer. Only the initial mount's patch list is pure Insert; update
// batches go to a live transport instead.
var ErrNotInsert = errors.New("render: stream renderer accepts only Insert patches")

// StreamRenderer turns a pre-order Insert sequence into HTML, writing
// each element as its patch arrives. Element nesting is tracked by the
// insert's Parent handle, so the sequence must not be reordered. If the
// writer implements http.Flusher, output is flushed after every patch for
// faster time-to-first-byte.
type StreamRenderer struct {
	w       io.Writer
	flusher http.Flusher

	// open is the stack of element handles whose closing tag is still
	// pending.
	open []openElem
}

type openElem struct {
	handle tree.Handle
	tag    string

	// silent elements (components) contribute no markup of their own.
	silent bool
}

// NewStreamRenderer creates a renderer writing to w.
func NewStreamRenderer(w io.Writer) *StreamRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamRenderer{w: w, flusher: flusher}
}

// Feed renders one Insert patch. Patches must arrive in the order the
// differ emitted them.
func (r *StreamRenderer) Feed(p tree.Patch) error {
	if p.Op != tree.OpInsert {
		return ErrNotInsert
	}
	if p.Node == nil {
		return fmt.Errorf("render: insert for %v carries no node snapshot", p.Target)
	}

	// A patch whose parent is below the top of the stack means every
	// element above that parent is complete.
	if err := r.closeUntil(p.Parent); err != nil {
		return err
	}

	switch p.Node.Kind {
	case tree.KindText:
		if _, err := io.WriteString(r.w, escapeHTML(p.Node.Text)); err != nil {
			return err
		}
	case tree.KindComponent:
		r.open = append(r.open, openElem{handle: p.Target, silent: true})
	case tree.KindElement:
		if _, err := fmt.Fprintf(r.w, "<%s", p.Node.Tag); err != nil {
			return err
		}
		if err := writeAttrs(r.w, p.Node.Attrs); err != nil {
			return err
		}
		if _, err := io.WriteString(r.w, ">"); err != nil {
			return err
		}
		if !voidElements[p.Node.Tag] {
			r.open = append(r.open, openElem{handle: p.Target, tag: p.Node.Tag})
		}
	}

	r.flush()
	return nil
}

// FeedAll renders a whole patch list in order.
func (r *StreamRenderer) FeedAll(patches []tree.Patch) error {
	for _, p := range patches {
		if err := r.Feed(p); err != nil {
			return err
		}
	}
	return nil
}

// Close emits the closing tags of every still-open element. The renderer
// is done after Close.
func (r *StreamRenderer) Close() error {
	err := r.closeUntil(tree.Handle{})
	r.flush()
	return err
}

// closeUntil pops and closes open elements until parent is on top of the
// stack. The zero handle closes everything.
func (r *StreamRenderer) closeUntil(parent tree.Handle) error {
	for len(r.open) > 0 {
		top := r.open[len(r.open)-1]
		if top.handle == parent {
			return nil
		}
		r.open = r.open[:len(r.open)-1]
		if top.silent {
			continue
		}
		if _, err := fmt.Fprintf(r.w, "</%s>", top.tag); err != nil {
			return err
		}
	}
	if !parent.IsZero() {
		return fmt.Errorf("render: insert references parent %v outside the open stack", parent)
	}
	return nil
}

func (r *StreamRenderer) flush() {
	if r.flusher != nil {
		r.flusher.Flush()
	}
}

// RenderTree writes the committed subtree at h as HTML in one pass.
func RenderTree(w io.Writer, arena *tree.Arena, h tree.Handle) error {
	rec, err := arena.Get(h)
	if err != nil {
		return err
	}

	switch rec.Kind {
	case tree.KindText:
		_, err := io.WriteString(w, escapeHTML(rec.Text))
		return err
	case tree.KindComponent:
		for _, child := range rec.Children {
			if err := RenderTree(w, arena, child); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := fmt.Fprintf(w, "<%s", rec.Tag); err != nil {
		return err
	}
	if err := writeAttrs(w, rec.Attrs); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if voidElements[rec.Tag] {
		return nil
	}
	for _, child := range rec.Children {
		if err := RenderTree(w, arena, child); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "</%s>", rec.Tag)
	return err
}

package live

import (
	"reflect"

	"github.com/reflow-ui/reflow/pkg/tree"
)

// Frame is one WebSocket message: every patch of one settled flush.
type Frame struct {
	Seq     uint64      `json:"seq"`
	Patches []WirePatch `json:"patches"`
}

// WireHandle is a tree.Handle on the wire.
type WireHandle struct {
	Slot uint32 `json:"slot"`
	Gen  uint32 `json:"gen"`
}

func toWireHandle(h tree.Handle) WireHandle {
	return WireHandle{Slot: h.Slot, Gen: h.Gen}
}

// WireNode is the serializable slice of a committed record. Function
// valued attributes are client-side handlers and travel as attribute
// names with a null value so the client knows to bind them.
type WireNode struct {
	Kind     string       `json:"kind"`
	Tag      string       `json:"tag,omitempty"`
	Key      string       `json:"key,omitempty"`
	Text     string       `json:"text,omitempty"`
	Attrs    []WireAttr   `json:"attrs,omitempty"`
	Children []WireHandle `json:"children,omitempty"`
}

// WireAttr is one attribute. Handler reports a function-valued attribute
// whose value cannot travel.
type WireAttr struct {
	Name    string `json:"name"`
	Value   any    `json:"value,omitempty"`
	Handler bool   `json:"handler,omitempty"`
}

// WirePatch is one tree mutation on the wire.
type WirePatch struct {
	Op      string      `json:"op"`
	Target  WireHandle  `json:"target"`
	Parent  *WireHandle `json:"parent,omitempty"`
	Index   int         `json:"index,omitempty"`
	Name    string      `json:"name,omitempty"`
	Value   any         `json:"value,omitempty"`
	Handler bool        `json:"handler,omitempty"`
	Text    string      `json:"text,omitempty"`
	Node    *WireNode   `json:"node,omitempty"`
	NewNode *WireHandle `json:"newNode,omitempty"`
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

func toWireAttrs(attrs []tree.Attr) []WireAttr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]WireAttr, len(attrs))
	for i, a := range attrs {
		wa := WireAttr{Name: a.Name}
		if isFunc(a.Value) {
			wa.Handler = true
		} else {
			wa.Value = a.Value
		}
		out[i] = wa
	}
	return out
}

func toWireNode(rec *tree.Record) *WireNode {
	if rec == nil {
		return nil
	}
	n := &WireNode{
		Kind:  rec.Kind.String(),
		Tag:   rec.Tag,
		Key:   rec.Key,
		Text:  rec.Text,
		Attrs: toWireAttrs(rec.Attrs),
	}
	for _, ch := range rec.Children {
		n.Children = append(n.Children, toWireHandle(ch))
	}
	return n
}

// EncodePatch converts one patch to its wire form.
func EncodePatch(p tree.Patch) WirePatch {
	wp := WirePatch{
		Op:     p.Op.String(),
		Target: toWireHandle(p.Target),
		Index:  p.Index,
		Name:   p.Name,
		Text:   p.Text,
		Node:   toWireNode(p.Node),
	}
	if isFunc(p.Value) {
		wp.Handler = true
	} else {
		wp.Value = p.Value
	}
	if !p.Parent.IsZero() {
		h := toWireHandle(p.Parent)
		wp.Parent = &h
	}
	if !p.NewNode.IsZero() {
		h := toWireHandle(p.NewNode)
		wp.NewNode = &h
	}
	return wp
}

// EncodeFrame builds the frame for one settled flush.
func EncodeFrame(seq uint64, patches []tree.Patch) Frame {
	f := Frame{Seq: seq, Patches: make([]WirePatch, len(patches))}
	for i, p := range patches {
		f.Patches[i] = EncodePatch(p)
	}
	return f
}

package runtime

import (
	"errors"

	"github.com/reflow-ui/reflow/pkg/reactive"
	"github.com/reflow-ui/reflow/pkg/tree"
)

// ErrMountFailed reports that a component's first render did not produce
// a tree. The underlying failure went to the root's error callback.
var ErrMountFailed = errors.New("reflow: initial render failed")

// Mount is a component instance attached to a root. Its render
// computation re-runs whenever a tracked dependency changes; the output is
// diffed against the committed subtree and the patches flow to the root's
// renderer.
type Mount struct {
	root   *Root
	owner  *reactive.Owner
	comp   Component
	effect *reactive.Effect
	handle tree.Handle
}

// Mount renders component for the first time and commits its tree. The
// returned patches are the pre-order Insert sequence of the initial
// render; a streaming consumer can emit them as they are without seeing
// the rest of the list first. Later updates go to the root's renderer.
func (r *Root) Mount(component Component) (*Mount, []tree.Patch, error) {
	m := &Mount{
		root:  r,
		owner: r.owner.CreateChild(),
		comp:  component,
	}

	var initial []tree.Patch
	var initErr error
	first := true

	m.owner.Run(func() {
		m.effect = reactive.NewEffect(r.store, func() error {
			if first {
				first = false
				patches, err := m.render()
				initial, initErr = patches, err
				return err
			}
			patches, err := m.render()
			if err != nil {
				return err
			}
			r.pending = append(r.pending, patches...)
			return nil
		})
	})

	// A panicking first render never reaches the assignment above; the
	// missing committed handle is the tell.
	if initErr == nil && m.handle.IsZero() {
		initErr = ErrMountFailed
	}
	if initErr != nil {
		m.owner.Dispose()
		return nil, nil, initErr
	}

	m.owner.OnCleanup(m.unmount)
	return m, initial, nil
}

// render runs the component and reconciles its output.
func (m *Mount) render() ([]tree.Patch, error) {
	node := m.comp()
	d := tree.NewDiffer(m.root.arena)

	if m.handle.IsZero() {
		h, patches, err := d.Mount(tree.Handle{}, 0, node)
		if err != nil {
			return nil, err
		}
		m.handle = h
		return patches, nil
	}

	h, patches, err := d.Diff(m.handle, node)
	if err != nil {
		return nil, err
	}
	m.handle = h
	return patches, nil
}

// Handle returns the committed subtree's root handle.
func (m *Mount) Handle() tree.Handle {
	return m.handle
}

// Reset clears a failed render's Errored mark, re-running the component
// on the next flush of its dependencies.
func (m *Mount) Reset() error {
	return m.effect.Reset()
}

// Dispose unmounts the component: its reactive scope is released and a
// Remove patch for its subtree goes to the renderer.
func (m *Mount) Dispose() {
	m.owner.Dispose()
}

// unmount frees the committed subtree. Registered as the owner cleanup so
// root disposal and direct disposal take the same path.
func (m *Mount) unmount() {
	if m.handle.IsZero() || !m.root.arena.Alive(m.handle) {
		return
	}
	m.root.deliver([]tree.Patch{{Op: tree.OpRemove, Target: m.handle}})
	if err := m.root.arena.FreeTree(m.handle); err != nil {
		m.root.logger.Warn("unmount free failed", "error", err)
	}
	m.handle = tree.Handle{}
}

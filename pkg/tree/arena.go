package tree

import (
	"errors"
)

// ErrHandleExpired is returned when a handle's generation does not match
// its slot's current generation, or the slot is empty. The node it
// referred to was freed; the failure is explicit rather than aliasing
// recycled storage.
var ErrHandleExpired = errors.New("reflow: arena handle expired")

// Handle addresses a node in an Arena. It is valid only while the slot's
// generation matches. The zero Handle is never valid.
type Handle struct {
	Slot uint32
	Gen  uint32
}

// IsZero reports whether the handle is the zero value.
func (h Handle) IsZero() bool {
	return h.Gen == 0
}

// slot is a fixed-size storage cell holding at most one live record.
type slot struct {
	gen  uint32
	live bool
	rec  Record
}

// Arena owns committed node records in recycled slots. Freeing a slot
// bumps its generation exactly once, so handles captured before the free
// stay permanently invalid even after the slot is reused.
type Arena struct {
	slots []slot
	free  []uint32
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Allocate stores a record and returns its handle. Freed slots are reused
// before the arena grows.
func (a *Arena) Allocate(rec Record) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.live = true
		s.rec = rec
		return Handle{Slot: idx, Gen: s.gen}
	}

	a.slots = append(a.slots, slot{gen: 1, live: true, rec: rec})
	return Handle{Slot: uint32(len(a.slots) - 1), Gen: 1}
}

// Get returns the record for a live handle, or ErrHandleExpired.
func (a *Arena) Get(h Handle) (*Record, error) {
	s := a.slot(h)
	if s == nil {
		return nil, ErrHandleExpired
	}
	return &s.rec, nil
}

// Free clears the slot and bumps its generation, invalidating every
// outstanding handle to it.
func (a *Arena) Free(h Handle) error {
	s := a.slot(h)
	if s == nil {
		return ErrHandleExpired
	}
	s.live = false
	s.gen++
	s.rec = Record{}
	a.free = append(a.free, h.Slot)
	return nil
}

// FreeTree frees the node and, recursively, its children.
func (a *Arena) FreeTree(h Handle) error {
	rec, err := a.Get(h)
	if err != nil {
		return err
	}
	children := rec.Children
	for _, child := range children {
		if err := a.FreeTree(child); err != nil {
			return err
		}
	}
	return a.Free(h)
}

// ReplaceChildren swaps the node's child handle list.
func (a *Arena) ReplaceChildren(h Handle, children []Handle) error {
	s := a.slot(h)
	if s == nil {
		return ErrHandleExpired
	}
	s.rec.Children = children
	return nil
}

// Live returns the number of live nodes.
func (a *Arena) Live() int {
	n := 0
	for i := range a.slots {
		if a.slots[i].live {
			n++
		}
	}
	return n
}

// Alive reports whether the handle currently resolves.
func (a *Arena) Alive(h Handle) bool {
	return a.slot(h) != nil
}

// slot resolves a handle to its live slot, or nil.
func (a *Arena) slot(h Handle) *slot {
	if h.IsZero() || int(h.Slot) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.Slot]
	if !s.live || s.gen != h.Gen {
		return nil
	}
	return s
}

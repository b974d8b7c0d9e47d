package tree

// Differ compares a committed arena subtree against freshly produced
// render output and emits the ordered patch list that reconciles them.
// A Differ is cheap; the runtime creates one per computation run.
type Differ struct {
	arena   *Arena
	patches []Patch
}

// NewDiffer creates a differ over the given arena.
func NewDiffer(arena *Arena) *Differ {
	return &Differ{arena: arena}
}

// Mount commits a subtree with no previous version: every node is
// allocated and one Insert is emitted per node in depth-first pre-order,
// so a streaming consumer can emit output without buffering the tree.
// parent may be the zero Handle for a root mount.
func (d *Differ) Mount(parent Handle, index int, next *Node) (Handle, []Patch, error) {
	d.patches = nil
	h := d.commit(next)
	d.emitInserts(h, parent, index)
	return h, d.patches, nil
}

// Diff reconciles the committed subtree at old with next. It returns the
// handle of the committed result — old itself when patched in place, a
// fresh handle when the subtree was replaced — and the ordered patches.
func (d *Differ) Diff(old Handle, next *Node) (Handle, []Patch, error) {
	d.patches = nil
	h, err := d.diffNode(old, next)
	if err != nil {
		return Handle{}, nil, err
	}
	return h, d.patches, nil
}

func (d *Differ) diffNode(old Handle, next *Node) (Handle, error) {
	rec, err := d.arena.Get(old)
	if err != nil {
		return Handle{}, err
	}

	// Identical-output fast path: nothing below here changed.
	fp := Fingerprint(next)
	if rec.fp != 0 && rec.fp == fp {
		return old, nil
	}

	// A tag or kind change is a structural replacement, never patched in
	// place and never an error.
	if rec.Kind != next.Kind || rec.Tag != next.Tag {
		return d.replaceSubtree(old, next)
	}

	switch rec.Kind {
	case KindText:
		if rec.Text != next.Text {
			d.patches = append(d.patches, Patch{
				Op:     OpReplaceText,
				Target: old,
				Text:   next.Text,
			})
			rec.Text = next.Text
		}
	case KindElement, KindComponent:
		d.diffAttrs(old, rec, next)
		if err := d.diffChildren(old, rec, next); err != nil {
			return Handle{}, err
		}
	}

	rec.Key = next.Key
	rec.fp = fp
	return old, nil
}

// replaceSubtree frees the old subtree and commits next in its place.
func (d *Differ) replaceSubtree(old Handle, next *Node) (Handle, error) {
	if err := d.arena.FreeTree(old); err != nil {
		return Handle{}, err
	}
	h := d.commit(next)
	rec, _ := d.arena.Get(h)
	snapshot := *rec
	d.patches = append(d.patches, Patch{
		Op:      OpReplaceSubtree,
		Target:  old,
		NewNode: h,
		Node:    &snapshot,
	})
	for i, child := range rec.Children {
		d.emitInserts(child, h, i)
	}
	return h, nil
}

// diffAttrs patches the attribute set by name.
func (d *Differ) diffAttrs(h Handle, rec *Record, next *Node) {
	oldAttrs := make(map[string]any, len(rec.Attrs))
	for _, a := range rec.Attrs {
		oldAttrs[a.Name] = a.Value
	}

	seen := make(map[string]bool, len(next.Attrs))
	for _, a := range next.Attrs {
		seen[a.Name] = true
		oldVal, exists := oldAttrs[a.Name]
		if !exists || attrValueString(oldVal) != attrValueString(a.Value) {
			d.patches = append(d.patches, Patch{
				Op:     OpSetAttr,
				Target: h,
				Name:   a.Name,
				Value:  a.Value,
			})
		}
	}

	for _, a := range rec.Attrs {
		if !seen[a.Name] {
			d.patches = append(d.patches, Patch{
				Op:     OpRemoveAttr,
				Target: h,
				Name:   a.Name,
			})
		}
	}

	rec.Attrs = next.Attrs
}

// diffChildren reconciles child lists. Keyed matching applies only when
// every child on both sides carries a key; otherwise pairing is strictly
// positional, a documented tradeoff that trades churn on reorder for
// simplicity.
func (d *Differ) diffChildren(parent Handle, rec *Record, next *Node) error {
	if d.allKeyed(rec.Children) && allNodesKeyed(next.Children) &&
		(len(rec.Children) > 0 || len(next.Children) > 0) {
		return d.diffKeyed(parent, rec, next)
	}
	return d.diffPositional(parent, rec, next)
}

func (d *Differ) diffPositional(parent Handle, rec *Record, next *Node) error {
	oldChildren := rec.Children
	newChildren := make([]Handle, 0, len(next.Children))

	n := len(oldChildren)
	if len(next.Children) > n {
		n = len(next.Children)
	}

	for i := 0; i < n; i++ {
		switch {
		case i < len(oldChildren) && i < len(next.Children):
			h, err := d.diffNode(oldChildren[i], next.Children[i])
			if err != nil {
				return err
			}
			newChildren = append(newChildren, h)
		case i < len(next.Children):
			h := d.commit(next.Children[i])
			d.emitInserts(h, parent, i)
			newChildren = append(newChildren, h)
		default:
			d.patches = append(d.patches, Patch{Op: OpRemove, Target: oldChildren[i]})
			if err := d.arena.FreeTree(oldChildren[i]); err != nil {
				return err
			}
		}
	}

	return d.arena.ReplaceChildren(parent, newChildren)
}

// diffKeyed matches children by reconciliation key and emits the minimal
// move set via longest-increasing-subsequence: kept keys whose old
// positions already form an ascending run stay put, everything else moves.
func (d *Differ) diffKeyed(parent Handle, rec *Record, next *Node) error {
	oldIndexByKey := make(map[string]int, len(rec.Children))
	for i, h := range rec.Children {
		r, err := d.arena.Get(h)
		if err != nil {
			return err
		}
		oldIndexByKey[r.Key] = i
	}

	newIndexByKey := make(map[string]int, len(next.Children))
	for i, c := range next.Children {
		newIndexByKey[c.Key] = i
	}

	// Vanished keys first, so position math below deals only with
	// surviving nodes.
	for _, h := range rec.Children {
		r, err := d.arena.Get(h)
		if err != nil {
			return err
		}
		if _, kept := newIndexByKey[r.Key]; !kept {
			d.patches = append(d.patches, Patch{Op: OpRemove, Target: h})
			if err := d.arena.FreeTree(h); err != nil {
				return err
			}
		}
	}

	// Old positions of kept keys, in new order. The LIS marks the keys
	// that can stay in place.
	keptOld := make([]int, 0, len(next.Children))
	for _, c := range next.Children {
		if oldIdx, ok := oldIndexByKey[c.Key]; ok {
			keptOld = append(keptOld, oldIdx)
		}
	}
	stable := make(map[int]bool, len(keptOld))
	for _, seqIdx := range longestIncreasing(keptOld) {
		stable[keptOld[seqIdx]] = true
	}

	// Parent-level inserts and moves in new order, then pairwise
	// recursion for kept keys: parent ops always precede child ops.
	newChildren := make([]Handle, len(next.Children))
	type pair struct {
		old  Handle
		next *Node
		pos  int
	}
	var kept []pair

	for i, c := range next.Children {
		oldIdx, ok := oldIndexByKey[c.Key]
		if !ok {
			h := d.commit(c)
			d.emitInserts(h, parent, i)
			newChildren[i] = h
			continue
		}
		h := rec.Children[oldIdx]
		if !stable[oldIdx] {
			d.patches = append(d.patches, Patch{
				Op:     OpMove,
				Target: h,
				Parent: parent,
				Index:  i,
			})
		}
		newChildren[i] = h
		kept = append(kept, pair{old: h, next: c, pos: i})
	}

	for _, p := range kept {
		h, err := d.diffNode(p.old, p.next)
		if err != nil {
			return err
		}
		newChildren[p.pos] = h
	}

	return d.arena.ReplaceChildren(parent, newChildren)
}

// commit allocates next and its descendants, children first, returning
// the subtree's handle. No patches are emitted here; emitInserts walks
// the committed subtree afterwards.
func (d *Differ) commit(next *Node) Handle {
	children := make([]Handle, len(next.Children))
	for i, c := range next.Children {
		children[i] = d.commit(c)
	}
	return d.arena.Allocate(Record{
		Kind:     next.Kind,
		Tag:      next.Tag,
		Attrs:    next.Attrs,
		Key:      next.Key,
		Text:     next.Text,
		Children: children,
		fp:       Fingerprint(next),
	})
}

// emitInserts emits one Insert per committed node in depth-first
// pre-order: a parent's insert always precedes its children's.
func (d *Differ) emitInserts(h Handle, parent Handle, index int) {
	rec, err := d.arena.Get(h)
	if err != nil {
		return
	}
	snapshot := *rec
	d.patches = append(d.patches, Patch{
		Op:     OpInsert,
		Target: h,
		Parent: parent,
		Index:  index,
		Node:   &snapshot,
	})
	for i, child := range rec.Children {
		d.emitInserts(child, h, i)
	}
}

func (d *Differ) allKeyed(children []Handle) bool {
	for _, h := range children {
		r, err := d.arena.Get(h)
		if err != nil || r.Key == "" {
			return false
		}
	}
	return true
}

func allNodesKeyed(children []*Node) bool {
	for _, c := range children {
		if c.Key == "" {
			return false
		}
	}
	return true
}

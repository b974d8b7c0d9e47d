package tree

import (
	"testing"
)

func mustMount(t *testing.T, a *Arena, n *Node) (Handle, []Patch) {
	t.Helper()
	h, patches, err := NewDiffer(a).Mount(Handle{}, 0, n)
	if err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	return h, patches
}

func countOps(patches []Patch) map[Op]int {
	counts := make(map[Op]int)
	for _, p := range patches {
		counts[p.Op]++
	}
	return counts
}

func TestMountEmitsPreOrderInserts(t *testing.T) {
	a := NewArena()
	root := El("div", nil,
		El("span", nil, Text("hi")),
		Text("tail"),
	)

	h, patches := mustMount(t, a, root)

	if len(patches) != 4 {
		t.Fatalf("expected 4 inserts, got %d", len(patches))
	}
	for i, p := range patches {
		if p.Op != OpInsert {
			t.Fatalf("patch %d: expected Insert, got %s", i, p.Op)
		}
	}

	// Pre-order: div, span, "hi", "tail"; a parent's insert precedes its
	// children's, so sequential application never needs a missing handle.
	if patches[0].Target != h {
		t.Error("first insert must be the root")
	}
	if patches[1].Parent != h || patches[1].Node.Tag != "span" {
		t.Error("second insert must be span under root")
	}
	if patches[2].Parent != patches[1].Target || patches[2].Node.Text != "hi" {
		t.Error("third insert must be the text under span")
	}
	if patches[3].Parent != h || patches[3].Node.Text != "tail" {
		t.Error("fourth insert must be the tail text under root")
	}

	inserted := map[Handle]bool{{}: true}
	for _, p := range patches {
		if !inserted[p.Parent] {
			t.Errorf("insert of %v references parent %v before its own insert", p.Target, p.Parent)
		}
		inserted[p.Target] = true
	}
}

func TestDiffIdenticalTreeEmitsNothing(t *testing.T) {
	a := NewArena()
	build := func() *Node {
		return El("div", []Attr{A("class", "box")},
			El("span", nil, Text("hello")),
		)
	}

	h, _ := mustMount(t, a, build())
	h2, patches, err := NewDiffer(a).Diff(h, build())
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if h2 != h {
		t.Error("identical diff must keep the committed handle")
	}
	if len(patches) != 0 {
		t.Errorf("identical diff must emit no patches, got %v", patches)
	}
}

func TestDiffTextChange(t *testing.T) {
	a := NewArena()
	h, _ := mustMount(t, a, El("p", nil, Text("0")))

	_, patches, err := NewDiffer(a).Diff(h, El("p", nil, Text("1")))
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	if len(patches) != 1 || patches[0].Op != OpReplaceText || patches[0].Text != "1" {
		t.Fatalf("expected exactly one ReplaceText(\"1\"), got %v", patches)
	}
}

func TestDiffAttrs(t *testing.T) {
	a := NewArena()
	h, _ := mustMount(t, a, El("input", []Attr{
		A("class", "old"),
		A("disabled", true),
	}))

	_, patches, err := NewDiffer(a).Diff(h, El("input", []Attr{
		A("class", "new"),
		A("placeholder", "name"),
	}))
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	counts := countOps(patches)
	if counts[OpSetAttr] != 2 {
		t.Errorf("expected 2 SetAttr (changed + added), got %d", counts[OpSetAttr])
	}
	if counts[OpRemoveAttr] != 1 {
		t.Errorf("expected 1 RemoveAttr, got %d", counts[OpRemoveAttr])
	}

	rec, _ := a.Get(h)
	if v, ok := rec.Attr("class"); !ok || v != "new" {
		t.Errorf("committed record not updated: %v", rec.Attrs)
	}
}

func TestDiffTagChangeReplacesSubtree(t *testing.T) {
	a := NewArena()
	h, _ := mustMount(t, a, El("div", nil, Text("x")))

	h2, patches, err := NewDiffer(a).Diff(h, El("section", nil, Text("x")))
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	if h2 == h {
		t.Error("replacement must produce a fresh handle")
	}
	if a.Alive(h) {
		t.Error("old subtree must be freed")
	}
	if patches[0].Op != OpReplaceSubtree || patches[0].Target != h || patches[0].NewNode != h2 {
		t.Errorf("expected ReplaceSubtree(old, new), got %+v", patches[0])
	}
	// Descendants of the replacement arrive as Inserts under the new root.
	if len(patches) != 2 || patches[1].Op != OpInsert || patches[1].Parent != h2 {
		t.Errorf("expected child insert under replacement, got %v", patches)
	}
}

func TestKeyedRotationEmitsSingleMove(t *testing.T) {
	a := NewArena()
	list := func(keys ...string) *Node {
		children := make([]*Node, len(keys))
		for i, k := range keys {
			children[i] = El("li", nil, Text(k)).WithKey(k)
		}
		return El("ul", nil, children...)
	}

	h, _ := mustMount(t, a, list("A", "B", "C"))

	_, patches, err := NewDiffer(a).Diff(h, list("B", "C", "A"))
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	counts := countOps(patches)
	if counts[OpMove] != 1 {
		t.Errorf("rotation must emit exactly one Move, got %d: %v", counts[OpMove], patches)
	}
	if counts[OpInsert] != 0 || counts[OpRemove] != 0 {
		t.Errorf("rotation must not insert or remove, got %v", counts)
	}

	var move Patch
	for _, p := range patches {
		if p.Op == OpMove {
			move = p
		}
	}
	movedRec, err := a.Get(move.Target)
	if err != nil {
		t.Fatalf("moved handle must stay live: %v", err)
	}
	if movedRec.Key != "A" || move.Index != 2 {
		t.Errorf("expected Move(A, 2), got key %q index %d", movedRec.Key, move.Index)
	}
}

func TestKeyedInsertRemove(t *testing.T) {
	a := NewArena()
	list := func(keys ...string) *Node {
		children := make([]*Node, len(keys))
		for i, k := range keys {
			children[i] = El("li", nil, Text(k)).WithKey(k)
		}
		return El("ul", nil, children...)
	}

	h, _ := mustMount(t, a, list("A", "B", "C"))
	_, patches, err := NewDiffer(a).Diff(h, list("A", "D", "C"))
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	counts := countOps(patches)
	if counts[OpRemove] != 1 {
		t.Errorf("expected 1 Remove for vanished B, got %d", counts[OpRemove])
	}
	if counts[OpInsert] != 2 { // <li key=D> and its text child
		t.Errorf("expected 2 Inserts for new D subtree, got %d", counts[OpInsert])
	}

	rec, _ := a.Get(h)
	if len(rec.Children) != 3 {
		t.Fatalf("expected 3 committed children, got %d", len(rec.Children))
	}
	keys := make([]string, 3)
	for i, ch := range rec.Children {
		r, err := a.Get(ch)
		if err != nil {
			t.Fatalf("child %d expired: %v", i, err)
		}
		keys[i] = r.Key
	}
	if keys[0] != "A" || keys[1] != "D" || keys[2] != "C" {
		t.Errorf("committed order wrong: %v", keys)
	}
}

func TestUnkeyedFallsBackToPositional(t *testing.T) {
	a := NewArena()
	list := func(texts ...string) *Node {
		children := make([]*Node, len(texts))
		for i, s := range texts {
			children[i] = El("li", nil, Text(s))
		}
		return El("ul", nil, children...)
	}

	h, _ := mustMount(t, a, list("a", "b"))
	_, patches, err := NewDiffer(a).Diff(h, list("b", "a"))
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	// Positional pairing patches both texts in place; no moves.
	counts := countOps(patches)
	if counts[OpMove] != 0 {
		t.Errorf("unkeyed children must not move, got %v", counts)
	}
	if counts[OpReplaceText] != 2 {
		t.Errorf("expected 2 ReplaceText from positional churn, got %v", counts)
	}
}

func TestPositionalGrowAndShrink(t *testing.T) {
	a := NewArena()
	list := func(n int) *Node {
		children := make([]*Node, n)
		for i := range children {
			children[i] = El("li", nil)
		}
		return El("ul", nil, children...)
	}

	h, _ := mustMount(t, a, list(2))

	_, patches, err := NewDiffer(a).Diff(h, list(4))
	if err != nil {
		t.Fatalf("grow diff failed: %v", err)
	}
	if countOps(patches)[OpInsert] != 2 {
		t.Errorf("expected 2 Inserts on grow, got %v", patches)
	}

	_, patches, err = NewDiffer(a).Diff(h, list(1))
	if err != nil {
		t.Fatalf("shrink diff failed: %v", err)
	}
	if countOps(patches)[OpRemove] != 3 {
		t.Errorf("expected 3 Removes on shrink, got %v", patches)
	}
	if a.Live() != 2 { // ul + one li
		t.Errorf("expected 2 live nodes after shrink, got %d", a.Live())
	}
}

func TestDiffExpiredHandleFails(t *testing.T) {
	a := NewArena()
	h, _ := mustMount(t, a, El("div", nil))
	if err := a.FreeTree(h); err != nil {
		t.Fatalf("free failed: %v", err)
	}

	if _, _, err := NewDiffer(a).Diff(h, El("div", nil)); err == nil {
		t.Error("diff against an expired handle must fail")
	}
}

func TestNoDanglingChildrenAfterDiff(t *testing.T) {
	a := NewArena()
	list := func(keys ...string) *Node {
		children := make([]*Node, len(keys))
		for i, k := range keys {
			children[i] = El("li", nil, Text(k)).WithKey(k)
		}
		return El("ul", nil, children...)
	}

	h, _ := mustMount(t, a, list("A", "B", "C", "D"))
	_, _, err := NewDiffer(a).Diff(h, list("D", "B"))
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	var walk func(Handle) bool
	walk = func(n Handle) bool {
		rec, err := a.Get(n)
		if err != nil {
			return false
		}
		for _, c := range rec.Children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	if !walk(h) {
		t.Error("committed tree references an expired child handle")
	}
}

package reactive

import (
	"testing"
)

func TestDepthAssignment(t *testing.T) {
	st := NewStore()
	s := NewSignal(st, 1)

	double := NewMemo(st, func() int { return s.Get() * 2 })
	quad := NewMemo(st, func() int { return double.Get() * 2 })

	if d, _ := st.ComputationDepth(double.ComputationID()); d != 1 {
		t.Errorf("expected depth 1 for first memo, got %d", d)
	}
	if d, _ := st.ComputationDepth(quad.ComputationID()); d != 2 {
		t.Errorf("expected depth 2 for chained memo, got %d", d)
	}

	e := NewEffect(st, func() error {
		_ = quad.Get()
		return nil
	})
	if d, _ := st.ComputationDepth(e.ComputationID()); d != 3 {
		t.Errorf("expected depth 3 for effect on chained memo, got %d", d)
	}
}

func TestConditionalEdgesPruned(t *testing.T) {
	st := NewStore()
	flag := NewSignal(st, true)
	a := NewSignal(st, "a")
	b := NewSignal(st, "b")

	runs := 0
	NewEffect(st, func() error {
		runs++
		if flag.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
		return nil
	})
	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	// Take the b branch; the edge to a must be pruned.
	flag.Set(false)
	if err := st.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %d", runs)
	}

	a.Set("a2")
	if err := st.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if runs != 2 {
		t.Errorf("stale edge to untaken branch re-ran the effect (%d runs)", runs)
	}

	b.Set("b2")
	if err := st.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if runs != 3 {
		t.Errorf("live edge did not re-run the effect (%d runs)", runs)
	}
}

func TestCyclicDependencyRejected(t *testing.T) {
	st := NewStore()

	var cycles int
	st.onCycle = func(comp ComputationID, sig SignalID) {
		cycles++
	}

	s := NewSignal(st, 1)

	var b *Memo[int]
	a := NewMemo(st, func() int {
		if b != nil {
			return b.Get() + s.Get()
		}
		return s.Get()
	})
	b = NewMemo(st, func() int { return a.Get() + 1 })

	// Re-running a now reads b, whose producer depends on a: the edge
	// closes a cycle and must be rejected.
	s.Set(2)
	if err := st.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if cycles == 0 {
		t.Error("expected the cyclic edge to be rejected and reported")
	}

	// The rejected read observed b's last known value; a still updated
	// from the accepted s edge.
	if got := a.Peek(); got != 2+2 {
		t.Errorf("expected a = 4 (last-known b = 2 + s = 2), got %d", got)
	}
}

func TestDepthCascadeOnNewEdge(t *testing.T) {
	st := NewStore()
	s := NewSignal(st, 1)
	flag := NewSignal(st, false)

	deep := NewMemo(st, func() int { return s.Get() + 1 })
	deeper := NewMemo(st, func() int { return deep.Get() + 1 })

	// Starts shallow: depth 1. When flag flips it reads deeper and must
	// be raised past it, along with its own subscribers.
	mid := NewMemo(st, func() int {
		if flag.Get() {
			return deeper.Get()
		}
		return s.Get()
	})
	top := NewMemo(st, func() int { return mid.Get() * 10 })

	if d, _ := st.ComputationDepth(mid.ComputationID()); d != 1 {
		t.Fatalf("expected initial depth 1, got %d", d)
	}
	if d, _ := st.ComputationDepth(top.ComputationID()); d != 2 {
		t.Fatalf("expected initial top depth 2, got %d", d)
	}

	flag.Set(true)
	if err := st.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if d, _ := st.ComputationDepth(mid.ComputationID()); d != 3 {
		t.Errorf("expected raised depth 3, got %d", d)
	}
	if d, _ := st.ComputationDepth(top.ComputationID()); d != 4 {
		t.Errorf("expected cascaded top depth 4, got %d", d)
	}
	if top.Peek() != 30 {
		t.Errorf("expected top = 30, got %d", top.Peek())
	}
}

func TestMemoCutsOffUnchangedValues(t *testing.T) {
	st := NewStore()
	n := NewSignal(st, 1)

	parity := NewMemo(st, func() int { return n.Get() % 2 })

	downstream := 0
	NewEffect(st, func() error {
		downstream++
		_ = parity.Get()
		return nil
	})

	// 1 -> 3 keeps parity at 1; the memo recomputes but its subscriber
	// must not re-run.
	n.Set(3)
	if err := st.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if downstream != 1 {
		t.Errorf("unchanged memo value re-ran downstream (%d runs)", downstream)
	}

	n.Set(4)
	if err := st.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if downstream != 2 {
		t.Errorf("changed memo value did not re-run downstream (%d runs)", downstream)
	}
}

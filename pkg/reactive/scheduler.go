package reactive

import (
	"container/heap"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Phase is the flush scheduler's state.
type Phase uint8

const (
	PhaseIdle       Phase = iota // no pending work
	PhaseCollecting              // writes happening, dirty set accumulating
	PhaseFlushing                // running dirty computations
	PhaseSettled                 // flush complete, patches handed off
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseCollecting:
		return "Collecting"
	case PhaseFlushing:
		return "Flushing"
	case PhaseSettled:
		return "Settled"
	default:
		return "Unknown"
	}
}

// FlushStats summarizes one completed flush pass for observers.
type FlushStats struct {
	Dirty    int // computations in the initial snapshot
	Executed int // computations actually run
	Errors   int // computations that failed and were marked Errored
	Duration time.Duration
}

// FlushObserver receives scheduler lifecycle notifications. Implemented by
// the telemetry package; the zero observer set is free.
type FlushObserver interface {
	FlushStarted(dirty int)
	FlushSettled(stats FlushStats)
}

// dirtyItem is a heap entry. depth is snapshotted at enqueue time: a
// computation whose depth drops mid-flush is still ordered by the depth it
// had when it was dirtied, and its new depth applies from the next flush.
type dirtyItem struct {
	id    ComputationID
	depth int
}

// dirtyHeap orders dirty computations by ascending depth, ties broken by
// creation order (smaller ID first) for determinism.
type dirtyHeap []dirtyItem

func (h dirtyHeap) Len() int { return len(h) }
func (h dirtyHeap) Less(i, j int) bool {
	if h[i].depth != h[j].depth {
		return h[i].depth < h[j].depth
	}
	return h[i].id < h[j].id
}
func (h dirtyHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *dirtyHeap) Push(x any)        { *h = append(*h, x.(dirtyItem)) }
func (h *dirtyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// scheduler batches writes, orders the dirty set topologically, and
// executes it glitch-free. It belongs to exactly one Store.
type scheduler struct {
	store *Store

	phase Phase

	// pending accumulates dirty computations between flushes.
	pending mapset.Set[ComputationID]

	// run state, valid only while phase == PhaseFlushing.
	queue    dirtyHeap
	queued   mapset.Set[ComputationID]
	executed mapset.Set[ComputationID]

	// carryOver collects computations dirtied after they already executed
	// in the current pass; they run in a follow-up pass.
	carryOver mapset.Set[ComputationID]

	// curDepth is the depth of the computation currently executing.
	curDepth int

	// scheduleFn is invoked once per Idle->Collecting transition so a host
	// loop can coalesce writes into a single Flush call. May be nil.
	scheduleFn func()

	// onSettled callbacks fire after each pass settles, before the phase
	// returns to Idle. The runtime hands patches to the renderer here.
	onSettled []func()

	observers []FlushObserver

	logger *slog.Logger
}

func newScheduler(store *Store, logger *slog.Logger) *scheduler {
	return &scheduler{
		store:     store,
		phase:     PhaseIdle,
		pending:   mapset.NewThreadUnsafeSet[ComputationID](),
		carryOver: mapset.NewThreadUnsafeSet[ComputationID](),
		logger:    logger,
	}
}

// markDirty enqueues a computation for the next (or current) flush.
func (s *scheduler) markDirty(id ComputationID) {
	c, ok := s.store.graph.comps[id]
	if !ok || c.disposed {
		return
	}
	c.dirty = true

	switch s.phase {
	case PhaseFlushing:
		if s.executed.Contains(id) || c.depth < s.curDepth {
			// Already ran this pass, or sits above the point the run has
			// passed. Either way it must not execute now: writes are
			// visible only to computations executed later, so it settles
			// in a follow-up pass.
			s.carryOver.Add(id)
			return
		}
		if s.queued.Contains(id) {
			return
		}
		s.queued.Add(id)
		heap.Push(&s.queue, dirtyItem{id: id, depth: c.depth})
	case PhaseIdle:
		s.pending.Add(id)
		s.phase = PhaseCollecting
		if s.scheduleFn != nil {
			s.scheduleFn()
		}
	default:
		s.pending.Add(id)
	}
}

// unschedule removes a disposed computation from the remaining run. The
// heap entry, if any, is skipped at pop time via the disposed flag.
func (s *scheduler) unschedule(id ComputationID) {
	s.pending.Remove(id)
	s.carryOver.Remove(id)
}

// flush settles the dirty set. It loops over passes: each pass snapshots
// the pending set, executes it exactly once per computation in ascending
// (depth, creation order), and appends computations dirtied mid-pass at
// depth >= the one currently executing. Writes that target an
// already-executed computation start a follow-up pass.
func (s *scheduler) flush() error {
	if s.phase == PhaseFlushing {
		return ErrFlushReentered
	}

	for s.pending.Cardinality() > 0 {
		if err := s.flushPass(); err != nil {
			return err
		}
	}
	s.phase = PhaseIdle
	return nil
}

func (s *scheduler) flushPass() error {
	start := time.Now()

	snapshot := s.pending.ToSlice()
	s.pending.Clear()

	s.phase = PhaseFlushing
	s.queue = s.queue[:0]
	s.queued = mapset.NewThreadUnsafeSet[ComputationID]()
	s.executed = mapset.NewThreadUnsafeSet[ComputationID]()
	s.carryOver.Clear()

	for _, obs := range s.observers {
		obs.FlushStarted(len(snapshot))
	}

	for _, id := range snapshot {
		if c, ok := s.store.graph.comps[id]; ok && !c.disposed {
			s.queued.Add(id)
			heap.Push(&s.queue, dirtyItem{id: id, depth: c.depth})
		}
	}

	stats := FlushStats{Dirty: len(snapshot)}
	s.curDepth = 0

	for s.queue.Len() > 0 {
		item := heap.Pop(&s.queue).(dirtyItem)
		s.queued.Remove(item.id)

		if item.depth < s.curDepth {
			// A shallower computation surfaced after a deeper one ran.
			// Executing it now could expose a half-settled graph, so the
			// flush aborts instead.
			s.phase = PhaseIdle
			s.logger.Error("flush aborted",
				"computation", item.id,
				"depth", item.depth,
				"current_depth", s.curDepth)
			return ErrOrderingViolation
		}
		s.curDepth = item.depth

		c, ok := s.store.graph.comps[item.id]
		if !ok || c.disposed || s.executed.Contains(item.id) {
			continue
		}
		if c.errored {
			// Skipped until explicitly reset.
			continue
		}

		s.executed.Add(item.id)
		c.dirty = false
		stats.Executed++

		if err := s.store.runComputation(c); err != nil {
			c.errored = true
			stats.Errors++
			cerr := &ComputationError{Computation: c.id, Err: err}
			s.logger.Error("computation failed",
				"computation", c.id,
				"depth", c.depth,
				"error", err)
			s.store.reportError(cerr)
		}
	}

	s.phase = PhaseSettled
	stats.Duration = time.Since(start)

	for _, fn := range s.onSettled {
		fn()
	}
	for _, obs := range s.observers {
		obs.FlushSettled(stats)
	}

	// Computations dirtied after they already executed settle next pass.
	s.carryOver.Each(func(id ComputationID) bool {
		s.pending.Add(id)
		return false
	})
	s.carryOver.Clear()

	return nil
}

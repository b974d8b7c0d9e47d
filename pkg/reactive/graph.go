package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// SignalID identifies a reactive value within a Store.
type SignalID uint64

// ComputationID identifies a computation (memo, effect, or component
// render) within a Store. IDs are allocated monotonically, so a smaller ID
// always means earlier creation; the scheduler uses this for deterministic
// tie-breaking between computations of equal depth.
type ComputationID uint64

// signalNode is the graph-side record of a signal: its versioned value and
// the reverse set of subscribing computations.
type signalNode struct {
	id      SignalID
	value   any
	version uint64

	// subs are the computations that read this signal during their last run.
	subs mapset.Set[ComputationID]

	// producer is the computation that writes this signal, if it is the
	// backing signal of a memo. Zero for application-created signals.
	producer ComputationID

	disposed bool
}

// compNode is the graph-side record of a computation.
type compNode struct {
	id ComputationID

	// deps are the signals read during the last run. Rebuilt every run.
	deps mapset.Set[SignalID]

	// observed records the version of each dependency at the time it was
	// read, for staleness checks.
	observed map[SignalID]uint64

	// depth is 1 + the max depth of any dependency; 0 with no dependencies.
	// Signals created by the application sit at depth 0, memo-backed
	// signals at their producer's depth.
	depth int

	dirty    bool
	disposed bool
	errored  bool

	// produces is the backing signal for memo computations, zero otherwise.
	produces SignalID

	// run executes the computation body under tracking.
	run func() error
}

// graph is the bipartite dependency graph between signals and computations.
// It is owned by exactly one Store and mutated only by that Store's flush
// pipeline.
type graph struct {
	signals map[SignalID]*signalNode
	comps   map[ComputationID]*compNode

	nextSignal SignalID
	nextComp   ComputationID
}

func newGraph() *graph {
	return &graph{
		signals: make(map[SignalID]*signalNode),
		comps:   make(map[ComputationID]*compNode),
	}
}

// addSignal allocates a signal node. producer is zero for application
// signals and the owning computation for memo-backed signals.
func (g *graph) addSignal(initial any, producer ComputationID) *signalNode {
	g.nextSignal++
	n := &signalNode{
		id:       g.nextSignal,
		value:    initial,
		version:  1,
		subs:     mapset.NewThreadUnsafeSet[ComputationID](),
		producer: producer,
	}
	g.signals[n.id] = n
	return n
}

// addComputation allocates a computation node.
func (g *graph) addComputation(run func() error) *compNode {
	g.nextComp++
	n := &compNode{
		id:       g.nextComp,
		deps:     mapset.NewThreadUnsafeSet[SignalID](),
		observed: make(map[SignalID]uint64),
		run:      run,
	}
	g.comps[n.id] = n
	return n
}

// signalDepth is the topological depth contributed by reading a signal:
// application signals are sources at depth 0, memo-backed signals sit at
// the depth of the computation that produces them.
func (g *graph) signalDepth(s *signalNode) int {
	if s.producer == 0 {
		return 0
	}
	if p, ok := g.comps[s.producer]; ok {
		return p.depth
	}
	return 0
}

// addEdge records that computation c read signal s, rejecting edges that
// would close a cycle. On success the subscriber set, dependency set, and
// observed version are updated and c's depth is raised if needed.
func (g *graph) addEdge(c *compNode, s *signalNode) error {
	if s.producer != 0 && g.wouldCycle(s.producer, c.id) {
		return ErrCyclicDependency
	}

	s.subs.Add(c.id)
	c.deps.Add(s.id)
	c.observed[s.id] = s.version

	g.raiseDepth(c, g.signalDepth(s)+1)
	return nil
}

// wouldCycle reports whether computation from transitively depends on a
// signal produced by target. Traverses dependency edges through memo
// producers only; application signals are sources and cannot extend a path.
func (g *graph) wouldCycle(from, target ComputationID) bool {
	if from == target {
		return true
	}

	visited := make(map[ComputationID]bool)
	stack := []ComputationID{from}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		c, ok := g.comps[id]
		if !ok {
			continue
		}
		for _, sid := range c.deps.ToSlice() {
			s, ok := g.signals[sid]
			if !ok || s.producer == 0 {
				continue
			}
			if s.producer == target {
				return true
			}
			stack = append(stack, s.producer)
		}
	}
	return false
}

// raiseDepth sets c.depth to at least d and cascades the increase through
// the subscribers of c's produced signal. Depth only ever rises here; a
// computation that read fewer dependencies this run keeps its old depth
// until its next run recomputes it from scratch.
func (g *graph) raiseDepth(c *compNode, d int) {
	if c.depth >= d {
		return
	}
	c.depth = d

	if c.produces == 0 {
		return
	}
	s, ok := g.signals[c.produces]
	if !ok {
		return
	}
	for _, sub := range s.subs.ToSlice() {
		if child, ok := g.comps[sub]; ok {
			g.raiseDepth(child, c.depth+1)
		}
	}
}

// clearDeps removes all dependency edges of c ahead of a re-run, so the
// edge set reflects only the reads that actually occur.
func (g *graph) clearDeps(c *compNode) {
	for _, sid := range c.deps.ToSlice() {
		if s, ok := g.signals[sid]; ok {
			s.subs.Remove(c.id)
		}
	}
	c.deps.Clear()
	c.observed = make(map[SignalID]uint64)
	c.depth = 0
}

// removeSignal severs all subscription edges and deletes the node.
func (g *graph) removeSignal(id SignalID) {
	s, ok := g.signals[id]
	if !ok {
		return
	}
	for _, sub := range s.subs.ToSlice() {
		if c, ok := g.comps[sub]; ok {
			c.deps.Remove(id)
			delete(c.observed, id)
		}
	}
	s.disposed = true
	delete(g.signals, id)
}

// removeComputation severs the computation's edges and deletes the node.
// Its produced signal, if any, is removed with it.
func (g *graph) removeComputation(id ComputationID) {
	c, ok := g.comps[id]
	if !ok {
		return
	}
	for _, sid := range c.deps.ToSlice() {
		if s, ok := g.signals[sid]; ok {
			s.subs.Remove(id)
		}
	}
	c.disposed = true
	if c.produces != 0 {
		g.removeSignal(c.produces)
	}
	delete(g.comps, id)
}

// stale reports whether any dependency of c has a version newer than the
// one observed during c's last run.
func (g *graph) stale(c *compNode) bool {
	for sid, seen := range c.observed {
		if s, ok := g.signals[sid]; ok && s.version > seen {
			return true
		}
	}
	return false
}

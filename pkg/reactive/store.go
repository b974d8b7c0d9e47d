package reactive

import (
	"fmt"
	"log/slog"
)

// ErrorFunc receives contained computation failures. It is the application
// boundary's error callback; the flush that produced the failure continues.
type ErrorFunc func(err *ComputationError)

// CycleFunc receives rejected dependency edges. The offending read was
// discarded and the reader saw the last known value.
type CycleFunc func(comp ComputationID, sig SignalID)

// Store owns one reactive graph and its flush scheduler. Each UI root holds
// its own Store; there is no cross-root sharing. A Store is not safe for
// concurrent use: one goroutine (the root's flush pipeline) owns it, and
// outside readers may inspect values only between flushes.
type Store struct {
	graph *graph
	sched *scheduler

	// observers is the stack of computations currently executing; reads
	// record edges against the top entry. Empty means untracked.
	observers []ComputationID

	batchDepth int

	// currentOwner adopts primitives created while it is set. See Owner.
	currentOwner *Owner

	logger  *slog.Logger
	onError ErrorFunc
	onCycle CycleFunc
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithErrorFunc sets the computation failure callback.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(s *Store) {
		s.onError = fn
	}
}

// WithCycleFunc sets the rejected-edge callback.
func WithCycleFunc(fn CycleFunc) Option {
	return func(s *Store) {
		s.onCycle = fn
	}
}

// WithFlushObserver registers a scheduler lifecycle observer.
func WithFlushObserver(obs FlushObserver) Option {
	return func(s *Store) {
		s.sched.observers = append(s.sched.observers, obs)
	}
}

// WithScheduleFunc sets the callback fired once per Idle->Collecting
// transition, letting a host loop coalesce a burst of writes into a single
// Flush call.
func WithScheduleFunc(fn func()) Option {
	return func(s *Store) {
		s.sched.scheduleFn = fn
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		graph:  newGraph(),
		logger: slog.Default(),
	}
	s.sched = newScheduler(s, s.logger)
	for _, opt := range opts {
		opt(s)
	}
	s.sched.logger = s.logger
	return s
}

// Phase returns the scheduler's current state.
func (s *Store) Phase() Phase {
	return s.sched.phase
}

// CreateSignal allocates a signal holding initial and returns its ID.
// Typed code should prefer NewSignal.
func (s *Store) CreateSignal(initial any) SignalID {
	return s.graph.addSignal(initial, 0).id
}

// ReadSignal returns the signal's value and version, recording a dependency
// edge when a computation is currently tracking. A rejected cyclic edge
// returns the last known value alongside ErrCyclicDependency; reading a
// disposed signal fails with ErrDisposedSignal.
func (s *Store) ReadSignal(id SignalID) (any, uint64, error) {
	n, ok := s.graph.signals[id]
	if !ok {
		return nil, 0, ErrDisposedSignal
	}

	if obs := s.currentObserver(); obs != 0 {
		if c, ok := s.graph.comps[obs]; ok {
			if err := s.graph.addEdge(c, n); err != nil {
				if s.onCycle != nil {
					s.onCycle(obs, id)
				}
				s.logger.Warn("dependency edge rejected",
					"computation", obs,
					"signal", id,
					"error", err)
				return n.value, n.version, err
			}
		}
	}

	return n.value, n.version, nil
}

// PeekSignal returns the value without recording a dependency.
func (s *Store) PeekSignal(id SignalID) (any, uint64, error) {
	n, ok := s.graph.signals[id]
	if !ok {
		return nil, 0, ErrDisposedSignal
	}
	return n.value, n.version, nil
}

// WriteSignal replaces the value, bumps the version, and marks every
// current subscriber dirty. Nothing executes synchronously; the dirty set
// settles on the next flush. Later writes in the same flush window simply
// win. Writing a disposed signal fails with ErrDisposedSignal and performs
// no graph mutation.
func (s *Store) WriteSignal(id SignalID, value any) error {
	n, ok := s.graph.signals[id]
	if !ok {
		return ErrDisposedSignal
	}

	n.value = value
	n.version++

	for _, sub := range n.subs.ToSlice() {
		s.sched.markDirty(sub)
	}
	return nil
}

// DisposeSignal removes the signal and severs all subscription edges.
func (s *Store) DisposeSignal(id SignalID) {
	s.graph.removeSignal(id)
}

// SignalVersion returns the signal's current version counter.
func (s *Store) SignalVersion(id SignalID) (uint64, error) {
	n, ok := s.graph.signals[id]
	if !ok {
		return 0, ErrDisposedSignal
	}
	return n.version, nil
}

// RegisterComputation adds a computation with the given body and returns
// its ID. The body runs under dependency tracking each time the scheduler
// executes it. It does not run at registration; call MarkDirty or use the
// typed Memo/Effect constructors, which prime their first run.
func (s *Store) RegisterComputation(run func() error) ComputationID {
	return s.graph.addComputation(run).id
}

// MarkDirty schedules a computation for the next flush.
func (s *Store) MarkDirty(id ComputationID) {
	s.sched.markDirty(id)
}

// DisposeComputation removes a computation, severing its edges and
// cancelling any not-yet-executed run in the current flush.
func (s *Store) DisposeComputation(id ComputationID) {
	s.sched.unschedule(id)
	s.graph.removeComputation(id)
}

// ResetErrored clears a computation's Errored mark so future flushes run
// it again, and schedules it immediately if its dependencies moved while
// it was sidelined.
func (s *Store) ResetErrored(id ComputationID) error {
	c, ok := s.graph.comps[id]
	if !ok {
		return ErrDisposedComputation
	}
	c.errored = false
	if s.graph.stale(c) || c.dirty {
		s.sched.markDirty(id)
	}
	return nil
}

// ComputationDepth returns the computation's topological depth.
func (s *Store) ComputationDepth(id ComputationID) (int, error) {
	c, ok := s.graph.comps[id]
	if !ok {
		return 0, ErrDisposedComputation
	}
	return c.depth, nil
}

// Flush runs the scheduler until the dirty set settles, then returns the
// phase to Idle. Calling Flush with nothing pending is a no-op.
func (s *Store) Flush() error {
	return s.sched.flush()
}

// Batch groups writes: the dirty set accumulates across fn and a single
// flush settles it when the outermost batch completes.
func (s *Store) Batch(fn func()) error {
	s.batchDepth++
	defer func() {
		s.batchDepth--
	}()
	fn()
	if s.batchDepth == 1 && s.sched.phase != PhaseFlushing {
		return s.sched.flush()
	}
	return nil
}

// Untracked runs fn without dependency tracking; signal reads inside do
// not subscribe the current computation.
func (s *Store) Untracked(fn func()) {
	s.observers = append(s.observers, 0)
	defer func() {
		s.observers = s.observers[:len(s.observers)-1]
	}()
	fn()
}

// OnSettled registers a callback fired after each flush pass settles,
// before the phase returns to Idle. The runtime hands patch lists to the
// renderer collaborator here.
func (s *Store) OnSettled(fn func()) {
	s.sched.onSettled = append(s.sched.onSettled, fn)
}

// runComputation executes a computation body under tracking. Old
// dependency edges are cleared first so the edge set reflects only the
// reads that actually occur; panics are contained and returned as errors.
func (s *Store) runComputation(c *compNode) (err error) {
	s.graph.clearDeps(c)

	s.observers = append(s.observers, c.id)
	defer func() {
		s.observers = s.observers[:len(s.observers)-1]
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = &panicError{value: r}
			}
		}
	}()

	return c.run()
}

// currentObserver returns the computation currently tracking, or zero.
func (s *Store) currentObserver() ComputationID {
	if len(s.observers) == 0 {
		return 0
	}
	return s.observers[len(s.observers)-1]
}

// reportError forwards a contained computation failure to the application
// boundary.
func (s *Store) reportError(err *ComputationError) {
	if s.onError != nil {
		s.onError(err)
	}
}

// writeProduced updates a memo's backing signal after a recompute: bumps
// the version and dirties downstream subscribers. The producer itself is
// already running, so it is never re-marked.
func (s *Store) writeProduced(id SignalID, value any) {
	n, ok := s.graph.signals[id]
	if !ok {
		return
	}
	n.value = value
	n.version++
	for _, sub := range n.subs.ToSlice() {
		if sub == n.producer {
			continue
		}
		s.sched.markDirty(sub)
	}
}

// panicError wraps a non-error panic value.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("reflow: computation panicked: %v", e.value)
}

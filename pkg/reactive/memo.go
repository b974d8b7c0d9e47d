package reactive

// Memo is a cached derived value. Its compute function runs under
// dependency tracking; when any dependency changes, the scheduler re-runs
// it during the flush, and only if the result actually differs are the
// memo's own subscribers marked dirty. Memos therefore cut off
// propagation for writes that do not change derived state.
type Memo[T any] struct {
	store *Store
	comp  ComputationID
	sig   SignalID

	compute func() T

	// equal determines whether a recompute changed the value.
	equal func(T, T) bool
}

// NewMemo creates a memo and eagerly computes its initial value, which
// establishes its dependency edges and topological depth.
func NewMemo[T any](store *Store, compute func() T) *Memo[T] {
	m := &Memo[T]{
		store:   store,
		compute: compute,
	}

	c := store.graph.addComputation(nil)
	m.comp = c.id

	sig := store.graph.addSignal(nil, c.id)
	m.sig = sig.id
	c.produces = sig.id
	c.run = m.recompute

	if o := store.currentOwner; o != nil {
		o.adoptComputation(c.id)
	}

	// Prime the value and the dependency set.
	if err := store.runComputation(c); err != nil {
		c.errored = true
		store.reportError(&ComputationError{Computation: c.id, Err: err})
	}

	return m
}

// Get returns the memo's value, recording a dependency on it for the
// tracking computation.
func (m *Memo[T]) Get() T {
	v, _, err := m.store.ReadSignal(m.sig)
	if err != nil && err != ErrCyclicDependency {
		var zero T
		return zero
	}
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Peek returns the memo's value without recording a dependency.
func (m *Memo[T]) Peek() T {
	v, _, err := m.store.PeekSignal(m.sig)
	if err != nil || v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// WithEquals configures a custom equality function for change detection.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// ComputationID returns the identity of the memo's computation.
func (m *Memo[T]) ComputationID() ComputationID {
	return m.comp
}

// SignalID returns the identity of the memo's backing signal.
func (m *Memo[T]) SignalID() SignalID {
	return m.sig
}

// Dispose removes the memo's computation and backing signal.
func (m *Memo[T]) Dispose() {
	m.store.DisposeComputation(m.comp)
}

// recompute is the memo's computation body: run the compute function under
// tracking and push the result downstream only when it changed.
func (m *Memo[T]) recompute() error {
	next := m.compute()

	cur, _, err := m.store.PeekSignal(m.sig)
	if err == nil && cur != nil {
		if m.equalsVal(cur.(T), next) {
			return nil
		}
	}

	m.store.writeProduced(m.sig, next)
	return nil
}

func (m *Memo[T]) equalsVal(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}

package reactive

// Effect is a reactive side effect. The body runs once at creation to
// establish its dependency edges, and re-runs during a flush whenever any
// signal or memo it read has changed. A body that returns an error marks
// the effect Errored: the flush continues without it and it is skipped on
// subsequent flushes until ResetErrored.
type Effect struct {
	store *Store
	comp  ComputationID
}

// NewEffect creates an effect and runs it immediately under tracking.
func NewEffect(store *Store, fn func() error) *Effect {
	e := &Effect{store: store}

	c := store.graph.addComputation(fn)
	e.comp = c.id

	if o := store.currentOwner; o != nil {
		o.adoptComputation(c.id)
	}

	if err := store.runComputation(c); err != nil {
		c.errored = true
		store.reportError(&ComputationError{Computation: c.id, Err: err})
	}

	return e
}

// ComputationID returns the effect's identity.
func (e *Effect) ComputationID() ComputationID {
	return e.comp
}

// Dispose removes the effect. If a flush is running and the effect has not
// executed yet, it is cancelled and will not run.
func (e *Effect) Dispose() {
	e.store.DisposeComputation(e.comp)
}

// Reset clears the effect's Errored mark so it runs again on the next
// flush of its dependencies.
func (e *Effect) Reset() error {
	return e.store.ResetErrored(e.comp)
}

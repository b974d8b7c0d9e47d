package reactive

// Owner is a disposal scope for reactive primitives. Signals, memos, and
// effects created while an owner is current are adopted by it; disposing
// the owner disposes everything it adopted, runs registered cleanups, and
// cascades through child owners. Owners mirror the component tree: each
// mounted component gets an owner that is a child of its parent
// component's owner, so removing a subtree releases its reactive state.
type Owner struct {
	store  *Store
	parent *Owner

	children []*Owner
	signals  []SignalID
	comps    []ComputationID
	cleanups []func()

	disposed bool
}

// NewOwner creates a root owner for the store.
func NewOwner(store *Store) *Owner {
	return &Owner{store: store}
}

// CreateChild creates a child owner disposed together with its parent.
func (o *Owner) CreateChild() *Owner {
	child := &Owner{store: o.store, parent: o}
	o.children = append(o.children, child)
	return child
}

// OnCleanup registers fn to run when the owner is disposed. Cleanups run
// in reverse registration order, before owned primitives are removed.
func (o *Owner) OnCleanup(fn func()) {
	o.cleanups = append(o.cleanups, fn)
}

// Disposed reports whether the owner has been disposed.
func (o *Owner) Disposed() bool {
	return o.disposed
}

// Dispose releases the owner: child owners first, then cleanups in
// reverse order, then owned computations and signals. A computation that
// was dirty in an in-progress flush is cancelled and will not execute.
// Dispose is idempotent.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	for _, child := range o.children {
		child.Dispose()
	}
	o.children = nil

	for i := len(o.cleanups) - 1; i >= 0; i-- {
		o.cleanups[i]()
	}
	o.cleanups = nil

	for _, id := range o.comps {
		o.store.DisposeComputation(id)
	}
	o.comps = nil

	for _, id := range o.signals {
		o.store.DisposeSignal(id)
	}
	o.signals = nil

	if o.parent != nil {
		o.parent.removeChild(o)
		o.parent = nil
	}
}

// Run executes fn with this owner current, so primitives created inside
// are adopted by it.
func (o *Owner) Run(fn func()) {
	prev := o.store.currentOwner
	o.store.currentOwner = o
	defer func() {
		o.store.currentOwner = prev
	}()
	fn()
}

func (o *Owner) adoptSignal(id SignalID) {
	o.signals = append(o.signals, id)
}

func (o *Owner) adoptComputation(id ComputationID) {
	o.comps = append(o.comps, id)
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children[i] = o.children[len(o.children)-1]
			o.children = o.children[:len(o.children)-1]
			return
		}
	}
}

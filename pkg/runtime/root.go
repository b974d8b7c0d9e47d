package runtime

import (
	"log/slog"

	"github.com/reflow-ui/reflow/pkg/reactive"
	"github.com/reflow-ui/reflow/pkg/tree"
)

// Component produces a fresh render tree from the current signal values.
// The runtime runs it under tracking, so every Signal.Get and Memo.Get
// inside becomes a dependency edge that re-renders the component.
type Component func() *tree.Node

// RendererFunc receives the ordered patch list of one settled flush. It is
// called after the flush settles, never while computations are running, so
// it may read signals freely. Patches apply sequentially without forward
// references.
type RendererFunc func(patches []tree.Patch)

// Root drives one independent UI instance: a private Store, a private
// Arena, and the render pipeline between them.
type Root struct {
	store    *reactive.Store
	arena    *tree.Arena
	owner    *reactive.Owner
	renderer RendererFunc
	logger   *slog.Logger

	// pending accumulates patches from render computations during a
	// flush; it is drained to the renderer when the flush settles.
	pending  []tree.Patch
	disposed bool
}

// Option configures a Root.
type Option func(*config)

type config struct {
	renderer RendererFunc
	logger   *slog.Logger
	storeOps []reactive.Option
}

// WithRenderer sets the patch list consumer. Without one, patches from
// updates are discarded; initial mount patches are still returned.
func WithRenderer(fn RendererFunc) Option {
	return func(c *config) {
		c.renderer = fn
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithErrorFunc sets the callback receiving contained render and effect
// failures.
func WithErrorFunc(fn reactive.ErrorFunc) Option {
	return func(c *config) {
		c.storeOps = append(c.storeOps, reactive.WithErrorFunc(fn))
	}
}

// WithFlushObserver registers a flush lifecycle observer on the store,
// the hook telemetry attaches to.
func WithFlushObserver(obs reactive.FlushObserver) Option {
	return func(c *config) {
		c.storeOps = append(c.storeOps, reactive.WithFlushObserver(obs))
	}
}

// WithScheduleFunc sets the callback fired when a write makes a flush
// necessary, for hosts that coalesce flushes into their own loop.
func WithScheduleFunc(fn func()) Option {
	return func(c *config) {
		c.storeOps = append(c.storeOps, reactive.WithScheduleFunc(fn))
	}
}

// New creates an empty root.
func New(opts ...Option) *Root {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Root{
		arena:    tree.NewArena(),
		renderer: cfg.renderer,
		logger:   cfg.logger,
	}
	storeOps := append([]reactive.Option{reactive.WithLogger(cfg.logger)}, cfg.storeOps...)
	r.store = reactive.NewStore(storeOps...)
	r.owner = reactive.NewOwner(r.store)

	r.store.OnSettled(r.drain)
	return r
}

// Store returns the root's signal store. Signals and memos for this root
// are created against it.
func (r *Root) Store() *reactive.Store {
	return r.store
}

// Arena returns the root's committed tree storage.
func (r *Root) Arena() *tree.Arena {
	return r.arena
}

// Owner returns the root's top-level disposal scope.
func (r *Root) Owner() *reactive.Owner {
	return r.owner
}

// Flush runs the scheduler over all writes since the last flush.
func (r *Root) Flush() error {
	return r.store.Flush()
}

// Batch groups writes and flushes once at the end.
func (r *Root) Batch(fn func()) error {
	return r.store.Batch(fn)
}

// Dispose tears the root down: every mounted component's owner is
// disposed, cleanups run, and the committed tree is released.
func (r *Root) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.owner.Dispose()
	r.pending = nil
}

// drain hands accumulated patches to the renderer once the flush settles.
func (r *Root) drain() {
	if len(r.pending) == 0 {
		return
	}
	patches := r.pending
	r.pending = nil
	if r.renderer != nil {
		r.renderer(patches)
	}
}

// deliver routes patches produced outside a flush, such as an unmount.
func (r *Root) deliver(patches []tree.Patch) {
	if len(patches) == 0 {
		return
	}
	if r.store.Phase() == reactive.PhaseFlushing {
		r.pending = append(r.pending, patches...)
		return
	}
	if r.renderer != nil {
		r.renderer(patches)
	}
}

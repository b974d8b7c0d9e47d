package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflow-ui/reflow/pkg/reactive"
	"github.com/reflow-ui/reflow/pkg/tree"
)

// Collector observes flush lifecycles and counts patch traffic. Register
// it with reactive.WithFlushObserver (or runtime.WithFlushObserver) and
// wrap the renderer with WrapRenderer to see patch counts. Like the store
// it observes, a Collector is driven from one goroutine.
type Collector struct {
	flushesTotal      prometheus.Counter
	flushErrorsTotal  prometheus.Counter
	flushDuration     prometheus.Histogram
	dirtyComputations prometheus.Histogram
	executedPerFlush  prometheus.Histogram
	patchesTotal      prometheus.Counter
	patchBatchesTotal prometheus.Counter

	tracer trace.Tracer
	flight *spanState
}

// NewCollector registers the metric set and returns the collector.
func NewCollector(opts ...Option) *Collector {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(cfg.TracerName)
	}

	factory := promauto.With(cfg.Registry)

	return &Collector{
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of settled flushes.",
			ConstLabels: cfg.ConstLabels,
		}),
		flushErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "flush_errors_total",
			Help:        "Total number of computations that failed during a flush.",
			ConstLabels: cfg.ConstLabels,
		}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Wall time of each flush from snapshot to settle.",
			Buckets:     cfg.DurationBuckets,
			ConstLabels: cfg.ConstLabels,
		}),
		dirtyComputations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "flush_dirty_computations",
			Help:        "Dirty computations snapshotted at flush start.",
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
			ConstLabels: cfg.ConstLabels,
		}),
		executedPerFlush: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "flush_executed_computations",
			Help:        "Computations actually executed per flush.",
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
			ConstLabels: cfg.ConstLabels,
		}),
		patchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "patches_total",
			Help:        "Total patches handed to the renderer.",
			ConstLabels: cfg.ConstLabels,
		}),
		patchBatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "patch_batches_total",
			Help:        "Total renderer invocations.",
			ConstLabels: cfg.ConstLabels,
		}),
		tracer: cfg.tracer,
	}
}

// FlushStarted opens the flush span.
func (c *Collector) FlushStarted(dirty int) {
	c.dirtyComputations.Observe(float64(dirty))

	ctx, span := c.tracer.Start(context.Background(), "reflow.flush",
		trace.WithAttributes(attribute.Int("reflow.dirty", dirty)))
	c.flight = &spanState{ctx: ctx, span: span}
}

// FlushSettled records the flush outcome and closes the span.
func (c *Collector) FlushSettled(stats reactive.FlushStats) {
	c.flushesTotal.Inc()
	c.flushErrorsTotal.Add(float64(stats.Errors))
	c.flushDuration.Observe(stats.Duration.Seconds())
	c.executedPerFlush.Observe(float64(stats.Executed))

	if c.flight == nil {
		return
	}
	span := c.flight.span
	span.SetAttributes(
		attribute.Int("reflow.executed", stats.Executed),
		attribute.Int("reflow.errors", stats.Errors),
	)
	if stats.Errors > 0 {
		span.SetStatus(codes.Error, "computations failed during flush")
	}
	span.End()
	c.flight = nil
}

// ObservePatches counts one settled patch batch.
func (c *Collector) ObservePatches(patches []tree.Patch) {
	c.patchBatchesTotal.Inc()
	c.patchesTotal.Add(float64(len(patches)))
}

// WrapRenderer instruments a renderer function with patch counting.
func (c *Collector) WrapRenderer(next func([]tree.Patch)) func([]tree.Patch) {
	return func(patches []tree.Patch) {
		c.ObservePatches(patches)
		next(patches)
	}
}

// Package telemetry instruments the flush pipeline: Prometheus counters
// and histograms for flush volume and latency, and one OpenTelemetry span
// per flush. A Collector plugs into a store or root as a FlushObserver.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "reflow"

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "reflow").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// DurationBuckets are the histogram buckets for flush duration in
	// seconds. Flushes are sub-millisecond in steady state, so the
	// default buckets start well below prometheus.DefBuckets.
	DurationBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// TracerName is the tracer name (default: "reflow").
	TracerName string

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithDurationBuckets sets the flush duration histogram buckets.
func WithDurationBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.DurationBuckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer instance directly, bypassing the global
// tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		c.tracer = tracer
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:       "reflow",
		DurationBuckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		Registry:        prometheus.DefaultRegisterer,
		TracerName:      defaultTracerName,
	}
}

// spanState carries the open flush span between observer callbacks.
type spanState struct {
	ctx  context.Context
	span trace.Span
}

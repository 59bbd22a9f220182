// Package observe provides application-wide observability primitives for the
// humanizer: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] so that metrics can be
// scraped from the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all humanizer metrics.
const meterName = "github.com/MrWong99/humanizer"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Latency histograms ---

	// HumanizeDuration tracks end-to-end document processing time. Use with
	// attributes:
	//   attribute.String("variant", ...), attribute.String("status", ...)
	HumanizeDuration metric.Float64Histogram

	// CollaboratorDuration tracks tagger, lexicon and embedding call latency.
	// Use with attribute:
	//   attribute.String("collaborator", ...)
	CollaboratorDuration metric.Float64Histogram

	// --- Counters ---

	// Documents counts humanize calls. Use with attributes:
	//   attribute.String("variant", ...), attribute.String("status", ...)
	Documents metric.Int64Counter

	// Sentences counts processed sentences.
	Sentences metric.Int64Counter

	// Substitutions counts accepted synonym replacements. Use with attribute:
	//   attribute.String("pos", ...)
	Substitutions metric.Int64Counter

	// Transitions counts inserted discourse markers.
	Transitions metric.Int64Counter

	// --- Error counters ---

	// CollaboratorErrors counts absorbed collaborator failures. Use with
	// attribute:
	//   attribute.String("stage", ...)
	CollaboratorErrors metric.Int64Counter

	// BreakerTransitions counts circuit breaker state changes. Use with
	// attributes:
	//   attribute.String("breaker", ...), attribute.String("to", ...)
	BreakerTransitions metric.Int64Counter

	// --- Gauges ---

	// ActiveRequests tracks humanize calls currently in progress.
	ActiveRequests metric.Int64UpDownCounter

	// ActiveStreams tracks open WebSocket connections.
	ActiveStreams metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Documents
// without synonym substitution finish in microseconds; remote collaborators
// dominate everything else.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.HumanizeDuration, err = m.Float64Histogram("humanizer.humanize.duration",
		metric.WithDescription("Latency of one humanize call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CollaboratorDuration, err = m.Float64Histogram("humanizer.collaborator.duration",
		metric.WithDescription("Latency of tagger, lexicon and embedding calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Documents, err = m.Int64Counter("humanizer.documents",
		metric.WithDescription("Total humanize calls by variant and status."),
	); err != nil {
		return nil, err
	}
	if met.Sentences, err = m.Int64Counter("humanizer.sentences",
		metric.WithDescription("Total sentences processed."),
	); err != nil {
		return nil, err
	}
	if met.Substitutions, err = m.Int64Counter("humanizer.substitutions",
		metric.WithDescription("Total accepted synonym substitutions by part of speech."),
	); err != nil {
		return nil, err
	}
	if met.Transitions, err = m.Int64Counter("humanizer.transitions",
		metric.WithDescription("Total inserted transition markers."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.CollaboratorErrors, err = m.Int64Counter("humanizer.collaborator.errors",
		metric.WithDescription("Total absorbed collaborator failures by stage."),
	); err != nil {
		return nil, err
	}
	if met.BreakerTransitions, err = m.Int64Counter("humanizer.breaker.transitions",
		metric.WithDescription("Total circuit breaker state changes by breaker and target state."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveRequests, err = m.Int64UpDownCounter("humanizer.active_requests",
		metric.WithDescription("Number of humanize calls in progress."),
	); err != nil {
		return nil, err
	}
	if met.ActiveStreams, err = m.Int64UpDownCounter("humanizer.active_streams",
		metric.WithDescription("Number of open WebSocket streams."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("humanizer.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordHumanize records one finished humanize call.
func (m *Metrics) RecordHumanize(ctx context.Context, variant, status string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("status", status),
	)
	m.Documents.Add(ctx, 1, attrs)
	m.HumanizeDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordSubstitution records an accepted synonym replacement.
func (m *Metrics) RecordSubstitution(ctx context.Context, pos string) {
	m.Substitutions.Add(ctx, 1, metric.WithAttributes(attribute.String("pos", pos)))
}

// RecordCollaborator records the latency of one collaborator call.
func (m *Metrics) RecordCollaborator(ctx context.Context, collaborator string, d time.Duration) {
	m.CollaboratorDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("collaborator", collaborator)),
	)
}

// RecordCollaboratorError records an absorbed collaborator failure.
func (m *Metrics) RecordCollaboratorError(ctx context.Context, stage string) {
	m.CollaboratorErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordBreakerTransition records a circuit breaker state change.
func (m *Metrics) RecordBreakerTransition(ctx context.Context, breaker, to string) {
	m.BreakerTransitions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("breaker", breaker),
			attribute.String("to", to),
		),
	)
}

package observe

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope of every humanizer span.
const tracerName = "github.com/MrWong99/humanizer"

// Tracer returns the humanizer tracer from the global [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span on [Tracer]. The caller ends it, usually through
// [EndSpan].
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// EndSpan marks span as failed when err is non-nil and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TrackCollaborator opens a child span for one call into the tagger, the
// lexicon or the similarity scorer. The returned func ends the span and, when
// m is non-nil, records the call latency under the same collaborator label.
func TrackCollaborator(ctx context.Context, m *Metrics, collaborator string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := StartSpan(ctx, "collaborator."+collaborator,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("collaborator", collaborator)),
	)
	return ctx, func(err error) {
		if m != nil {
			m.RecordCollaborator(ctx, collaborator, time.Since(start))
		}
		EndSpan(span, err)
	}
}

// CorrelationID is the trace ID of the span in ctx, or "" without one. The
// HTTP middleware echoes it in the X-Correlation-ID header.
func CorrelationID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Logger returns the default logger, tagged with trace_id and span_id when
// ctx carries a span.
func Logger(ctx context.Context) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return slog.Default()
	}
	return slog.Default().With(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}

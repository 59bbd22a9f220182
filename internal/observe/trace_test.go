package observe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// useTestTracer installs an in-memory tracer provider as the global one for
// the duration of the test.
func useTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(orig)
		_ = tp.Shutdown(context.Background())
	})
	return exp
}

// captureLogs redirects the default logger into a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return &buf
}

func TestCorrelationID(t *testing.T) {
	useTestTracer(t)

	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("CorrelationID(background) = %q, want empty", got)
	}

	ctx, span := StartSpan(context.Background(), "humanize")
	defer span.End()
	cid := CorrelationID(ctx)
	if len(cid) != 32 {
		t.Errorf("correlation ID %q has length %d, want 32", cid, len(cid))
	}
	if cid != span.SpanContext().TraceID().String() {
		t.Errorf("correlation ID %q is not the trace ID", cid)
	}
}

func TestEndSpan_RecordsError(t *testing.T) {
	exp := useTestTracer(t)

	_, ok := StartSpan(context.Background(), "ok")
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "failed")
	EndSpan(failed, errors.New("lexicon unavailable"))

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	if spans[0].Status.Code != codes.Unset {
		t.Errorf("ok span status = %v, want unset", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "lexicon unavailable" {
		t.Errorf("failed span status = %+v", spans[1].Status)
	}
	if len(spans[1].Events) == 0 {
		t.Error("failed span has no exception event")
	}
}

func TestTrackCollaborator(t *testing.T) {
	exp := useTestTracer(t)
	m, reader := newTestMetrics(t)

	parent, root := StartSpan(context.Background(), "humanize")
	ctx, done := TrackCollaborator(parent, m, "lexicon")
	if trace.SpanContextFromContext(ctx).SpanID() == root.SpanContext().SpanID() {
		t.Error("TrackCollaborator did not start a child span")
	}
	done(errors.New("timeout"))
	root.End()

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	child := spans[0]
	if child.Name != "collaborator.lexicon" {
		t.Errorf("span name = %q", child.Name)
	}
	if child.Parent.SpanID() != root.SpanContext().SpanID() {
		t.Error("collaborator span is not parented to the humanize span")
	}
	if child.Status.Code != codes.Error {
		t.Errorf("status = %v, want error", child.Status.Code)
	}

	rm := collect(t, reader)
	if findMetric(rm, "humanizer.collaborator.duration") == nil {
		t.Error("collaborator latency not recorded")
	}
}

func TestTrackCollaborator_NilMetrics(t *testing.T) {
	exp := useTestTracer(t)

	_, done := TrackCollaborator(context.Background(), nil, "tagger")
	done(nil)

	if spans := exp.GetSpans(); len(spans) != 1 || spans[0].Status.Code != codes.Unset {
		t.Errorf("spans = %+v", spans)
	}
}

func TestLogger(t *testing.T) {
	useTestTracer(t)
	buf := captureLogs(t)

	Logger(context.Background()).Info("no span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("log without a span carries trace_id: %s", buf)
	}
	buf.Reset()

	ctx, span := StartSpan(context.Background(), "log-test")
	defer span.End()
	Logger(ctx).Info("with span")
	for _, key := range []string{"trace_id=", "span_id="} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("log output missing %s: %s", key, buf)
		}
	}
}

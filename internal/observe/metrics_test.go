package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere returns the value of the int64 sum data point carrying kv, or -1.
func sumWhere(t *testing.T, rm metricdata.ResourceMetrics, name string, kv attribute.KeyValue) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not a sum", name)
	}
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(kv.Key); ok && v.Emit() == kv.Value.Emit() {
			return dp.Value
		}
	}
	return -1
}

func TestRecordHumanize(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordHumanize(ctx, "full", "ok", 30*time.Millisecond)
	m.RecordHumanize(ctx, "full", "ok", 40*time.Millisecond)
	m.RecordHumanize(ctx, "full", "error", time.Millisecond)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "humanizer.documents", Attr("status", "ok")); got != 2 {
		t.Errorf("documents{status=ok} = %d, want 2", got)
	}

	met := findMetric(rm, "humanizer.humanize.duration")
	if met == nil {
		t.Fatal("duration metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("duration metric is not a histogram")
	}
	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	if total != 3 {
		t.Errorf("duration sample count = %d, want 3", total)
	}
}

func TestPipelineCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSubstitution(ctx, "adjective")
	m.RecordSubstitution(ctx, "adjective")
	m.RecordSubstitution(ctx, "noun")
	m.Transitions.Add(ctx, 4)
	m.Sentences.Add(ctx, 9)
	m.RecordCollaboratorError(ctx, "lexicon")
	m.RecordBreakerTransition(ctx, "embeddings/openai", "open")

	rm := collect(t, reader)
	tests := []struct {
		name string
		kv   attribute.KeyValue
		want int64
	}{
		{"humanizer.substitutions", Attr("pos", "adjective"), 2},
		{"humanizer.substitutions", Attr("pos", "noun"), 1},
		{"humanizer.collaborator.errors", Attr("stage", "lexicon"), 1},
		{"humanizer.breaker.transitions", Attr("breaker", "embeddings/openai"), 1},
	}
	for _, tc := range tests {
		if got := sumWhere(t, rm, tc.name, tc.kv); got != tc.want {
			t.Errorf("%s{%s=%s} = %d, want %d", tc.name, tc.kv.Key, tc.kv.Value.AsString(), got, tc.want)
		}
	}

	for name, want := range map[string]int64{"humanizer.transitions": 4, "humanizer.sentences": 9} {
		sum := findMetric(rm, name).Data.(metricdata.Sum[int64])
		if got := sum.DataPoints[0].Value; got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
}

func TestGauges(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ActiveRequests.Add(ctx, 3)
	m.ActiveRequests.Add(ctx, -1)
	m.ActiveStreams.Add(ctx, 1)

	rm := collect(t, reader)

	gauges := []struct {
		name string
		want int64
	}{
		{"humanizer.active_requests", 2},
		{"humanizer.active_streams", 1},
	}

	for _, tc := range gauges {
		t.Run(tc.name, func(t *testing.T) {
			met := findMetric(rm, tc.name)
			if met == nil {
				t.Fatalf("metric %q not found", tc.name)
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is not a sum", tc.name)
			}
			if got := sum.DataPoints[0].Value; got != tc.want {
				t.Errorf("gauge value = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRecordCollaborator(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCollaborator(context.Background(), "tagger", 2*time.Millisecond)

	met := findMetric(collect(t, reader), "humanizer.collaborator.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist := met.Data.(metricdata.Histogram[float64])
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Fatalf("data points = %+v", hist.DataPoints)
	}
	if v, _ := hist.DataPoints[0].Attributes.Value("collaborator"); v.AsString() != "tagger" {
		t.Errorf("collaborator attribute = %q", v.AsString())
	}
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different pointers")
	}
}

package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/liquidkit/component"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Enabled() {
		t.Error("expected export disabled without endpoint")
	}
	if cfg.SampleRate != 1.0 || cfg.MetricInterval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	bad := Config{SampleRate: 1.5}
	if err := bad.Validate(); err == nil {
		t.Error("expected sample rate error")
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), "liquidkit", "dev", "simulation", Config{}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupEnabled(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	shutdown, err := Setup(context.Background(), "liquidkit", "dev", "simulation",
		Config{Endpoint: "localhost:4318", Insecure: true, MetricInterval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordTransfer(ctx, "p300", 50)
	m.RecordTransfer(ctx, "p300", 6)
	m.RecordTip(ctx, "p300", "pick_up")
	m.RecordPhase(ctx, "pcr-cleanup", "add-beads", "ok", 2*time.Second)
	m.RecordError(ctx, "LOOKUP_ERROR", "sequencer")

	data := collect(t, reader)
	transfers, ok := data["liquidkit.transfers"].(metricdata.Sum[int64])
	if !ok || len(transfers.DataPoints) != 1 || transfers.DataPoints[0].Value != 2 {
		t.Fatalf("unexpected transfers %+v", data["liquidkit.transfers"])
	}
	volume, ok := data["liquidkit.volume"].(metricdata.Sum[float64])
	if !ok || volume.DataPoints[0].Value != 56 {
		t.Fatalf("unexpected volume %+v", data["liquidkit.volume"])
	}
	for _, name := range []string{"liquidkit.tips", "liquidkit.phase.duration", "liquidkit.errors"} {
		if _, ok := data[name]; !ok {
			t.Errorf("expected %s to be recorded", name)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordTransfer(ctx, "p300", 1)
	m.RecordTip(ctx, "p300", "drop")
	m.RecordPhase(ctx, "x", "y", "ok", time.Second)
	m.RecordError(ctx, "X", "y")

	if _, err := NewMetrics(noop.NewMeterProvider().Meter("test")); err != nil {
		t.Fatalf("NewMetrics on noop meter: %v", err)
	}
}

func TestPhaseContext(t *testing.T) {
	rec := withRecorder(t)

	ctx, pc := StartPhase(context.Background(), "pcr-cleanup", "add-beads", "run-1", nil)
	if PhaseFromContext(ctx) != pc {
		t.Fatal("expected phase context on ctx")
	}
	SetSpanAttribute(ctx, AttrRow, 3)
	pc.End(ctx, errors.New("aspirate failed"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != SpanPhase {
		t.Errorf("unexpected span name %s", s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status())
	}
	attrs := map[string]string{}
	for _, kv := range s.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[AttrPhase] != "add-beads" || attrs[AttrStatus] != "error" || attrs[AttrRow] != "3" {
		t.Errorf("unexpected attributes %v", attrs)
	}
	if PhaseFromContext(context.Background()) != nil {
		t.Error("expected nil phase for bare context")
	}
}

func TestEndSpanOK(t *testing.T) {
	rec := withRecorder(t)
	_, span := StartSpan(context.Background(), SpanTransfer)
	EndSpan(span, nil)
	if got := rec.Ended()[0].Status().Code; got != codes.Unset {
		t.Errorf("expected unset status, got %v", got)
	}
}

func TestServiceHealth(t *testing.T) {
	tests := []struct {
		name string
		in   []component.HealthStatus
		want HealthStatus
	}{
		{"all healthy", []component.HealthStatus{component.StatusHealthy, component.StatusHealthy}, HealthStatusUp},
		{"degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, HealthStatusDegraded},
		{"down wins", []component.HealthStatus{component.StatusUnhealthy, component.StatusDegraded}, HealthStatusDown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sh := NewServiceHealth("liquidkit", "1.0.0")
			for i, s := range tc.in {
				sh.AddComponent(component.Health{Name: string(rune('a' + i)), Status: s})
			}
			if sh.Status != tc.want {
				t.Errorf("expected %s, got %s", tc.want, sh.Status)
			}
			if len(sh.Components) != len(tc.in) {
				t.Errorf("expected %d components", len(tc.in))
			}
		})
	}
}

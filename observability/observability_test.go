package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("expected MetricInterval 15s, got %v", cfg.MetricInterval)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()

	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0 when enabled, got %f", cfg.SampleRate)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected environment 'development', got %s", cfg.Environment)
	}

	disabled := Config{}
	disabled.ApplyDefaults()
	if disabled.SampleRate != 0 {
		t.Errorf("expected SampleRate untouched when disabled, got %f", disabled.SampleRate)
	}
}

func TestNewBeanMetricsNoop(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewBeanMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordRegistration(ctx, "hello", "added")
	metrics.RecordLookup(ctx, "hello", "ok")
	metrics.RecordConstruction(ctx, "hello", "singleton", "ok", 2*time.Millisecond)
	metrics.RecordError(ctx, "NOT_FOUND")
}

func TestBeanMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewBeanMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRegistration(ctx, "hello", "added")
	metrics.RecordRegistration(ctx, "hello", "replaced")
	metrics.RecordConstruction(ctx, "hello", "singleton", "ok", time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
			if m.Name != "di.bean.registrations" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("expected int64 sum, got %T", m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			if total != 2 {
				t.Errorf("expected 2 registrations, got %d", total)
			}
		}
	}

	for _, name := range []string{"di.bean.registrations", "di.bean.constructions", "di.bean.construction.duration"} {
		if !found[name] {
			t.Errorf("expected metric %s to be collected", name)
		}
	}
}

func TestTracer(t *testing.T) {
	if Tracer("test") == nil {
		t.Fatal("expected non-nil tracer")
	}
}

func TestMeter(t *testing.T) {
	if Meter("test") == nil {
		t.Fatal("expected non-nil meter")
	}
}

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanConstruct, attribute.String(AttrBeanName, "hello"))
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanConstruct {
		t.Errorf("expected span name %s, got %s", SpanConstruct, spans[0].Name)
	}
	var bean string
	for _, attr := range spans[0].Attributes {
		if string(attr.Key) == AttrBeanName {
			bean = attr.Value.AsString()
		}
	}
	if bean != "hello" {
		t.Errorf("expected bean attribute 'hello', got %q", bean)
	}
}

func TestSetSpanError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanConstruct)
	SetSpanError(ctx, fmt.Errorf("factory failed"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
	if spans[0].Status.Description != "factory failed" {
		t.Errorf("expected description 'factory failed', got %q", spans[0].Status.Description)
	}
}

func TestSetSpanErrorNoSpan(t *testing.T) {
	// Must not panic without an active span.
	SetSpanError(context.Background(), fmt.Errorf("ignored"))
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("rate=%v", tt.rate), func(t *testing.T) {
			if got := sampler(tt.rate).Description(); got != tt.want {
				t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
			}
		})
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("beankit", "1.2.3", "test")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["service.name"] != "beankit" {
		t.Errorf("expected service.name 'beankit', got %q", attrs["service.name"])
	}
	if attrs["service.version"] != "1.2.3" {
		t.Errorf("expected service.version '1.2.3', got %q", attrs["service.version"])
	}
}

func TestInitTracer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 0.5

	tp, err := InitTracer(context.Background(), cfg, "beankit-test", "0.0.1")
	if err != nil {
		t.Skipf("InitTracer failed: %v", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	if tp == nil {
		t.Fatal("expected non-nil tracer provider")
	}
}

func TestInitMeter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MetricInterval = time.Hour

	mp, err := InitMeter(context.Background(), cfg, "beankit-test", "0.0.1")
	if err != nil {
		t.Skipf("InitMeter failed: %v", err)
	}
	defer func() { _ = mp.Shutdown(context.Background()) }()

	if mp == nil {
		t.Fatal("expected non-nil meter provider")
	}
}

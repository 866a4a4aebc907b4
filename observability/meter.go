package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/beankit/logger"
)

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// BeanMetrics holds the instruments recorded by the bean manager.
type BeanMetrics struct {
	registrations        metric.Int64Counter
	lookups              metric.Int64Counter
	constructions        metric.Int64Counter
	constructionDuration metric.Float64Histogram
	errors               metric.Int64Counter
}

// NewBeanMetrics creates the bean instruments on the given meter.
func NewBeanMetrics(meter metric.Meter) (*BeanMetrics, error) {
	registrations, err := meter.Int64Counter("di.bean.registrations",
		metric.WithDescription("Bean registrations by kind (added, replaced)"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.bean.registrations counter: %w", err)
	}

	lookups, err := meter.Int64Counter("di.bean.lookups",
		metric.WithDescription("Accessor lookups by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.bean.lookups counter: %w", err)
	}

	constructions, err := meter.Int64Counter("di.bean.constructions",
		metric.WithDescription("Bean constructions by scope and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.bean.constructions counter: %w", err)
	}

	constructionDuration, err := meter.Float64Histogram("di.bean.construction.duration",
		metric.WithDescription("Duration of factory call plus dependency wiring"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.bean.construction.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("di.bean.errors",
		metric.WithDescription("Registry errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.bean.errors counter: %w", err)
	}

	return &BeanMetrics{
		registrations:        registrations,
		lookups:              lookups,
		constructions:        constructions,
		constructionDuration: constructionDuration,
		errors:               errorTotal,
	}, nil
}

// RecordRegistration counts a registration; kind is "added" or "replaced".
func (m *BeanMetrics) RecordRegistration(ctx context.Context, bean, kind string) {
	m.registrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrBeanName, bean),
		attribute.String("kind", kind),
	))
}

// RecordLookup counts an accessor lookup.
func (m *BeanMetrics) RecordLookup(ctx context.Context, bean, status string) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrBeanName, bean),
		attribute.String("status", status),
	))
}

// RecordConstruction counts a construction and records its duration.
func (m *BeanMetrics) RecordConstruction(ctx context.Context, bean, scope, status string, duration time.Duration) {
	m.constructions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrBeanName, bean),
		attribute.String(AttrBeanScope, scope),
		attribute.String("status", status),
	))
	m.constructionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrBeanName, bean),
		attribute.String(AttrBeanScope, scope),
	))
}

// RecordError counts a registry error by code.
func (m *BeanMetrics) RecordError(ctx context.Context, code string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrErrorCode, code)))
}

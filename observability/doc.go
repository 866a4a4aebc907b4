// Package observability provides OpenTelemetry tracing and metrics for the
// bean registry.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, cfg, "my-service", "1.0.0")
//	defer tp.Shutdown(ctx)
//
// Every bean construction runs inside a "di.construct" span.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, cfg, "my-service", "1.0.0")
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewBeanMetrics(observability.Meter("beankit"))
//	metrics.RecordConstruction(ctx, "hello", "singleton", "ok", elapsed)
//
// Without InitTracer/InitMeter the global providers are no-ops, so
// instrumented code pays almost nothing.
package observability

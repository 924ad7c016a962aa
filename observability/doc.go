// Package observability provides OpenTelemetry tracing and metrics for
// protocol runs.
//
// Exporters are only created when an OTLP endpoint is configured; otherwise
// the global no-op providers stay in place and every span and instrument is
// free.
//
//	shutdown, err := observability.Setup(ctx, cfg, log)
//	defer shutdown(ctx)
//
//	metrics, _ := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//	ctx, span := observability.StartSpan(ctx, observability.SpanTransfer)
//	defer span.End()
package observability

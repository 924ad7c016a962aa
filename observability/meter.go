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

	"github.com/kbukum/liquidkit/logger"
)

// InitMeter creates an OTLP HTTP meter provider and installs it globally.
// The caller shuts it down on exit.
func InitMeter(ctx context.Context, config *MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	if log != nil {
		log.Info("meter initialized", logger.Fields(
			"endpoint", config.Endpoint,
			"interval", config.Interval.String(),
		))
	}
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the run instruments.
type Metrics struct {
	transfers     metric.Int64Counter
	volume        metric.Float64Counter
	tips          metric.Int64Counter
	phaseDuration metric.Float64Histogram
	errors        metric.Int64Counter
}

// NewMetrics creates the run instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	transfers, err := meter.Int64Counter("liquidkit.transfers",
		metric.WithDescription("Completed pick-list transfers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liquidkit.transfers counter: %w", err)
	}

	volume, err := meter.Float64Counter("liquidkit.volume",
		metric.WithDescription("Liquid moved by completed transfers"),
		metric.WithUnit("uL"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liquidkit.volume counter: %w", err)
	}

	tips, err := meter.Int64Counter("liquidkit.tips",
		metric.WithDescription("Tip pick-ups and releases"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liquidkit.tips counter: %w", err)
	}

	phaseDuration, err := meter.Float64Histogram("liquidkit.phase.duration",
		metric.WithDescription("Duration of protocol phases in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liquidkit.phase.duration histogram: %w", err)
	}

	errs, err := meter.Int64Counter("liquidkit.errors",
		metric.WithDescription("Run errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liquidkit.errors counter: %w", err)
	}

	return &Metrics{
		transfers:     transfers,
		volume:        volume,
		tips:          tips,
		phaseDuration: phaseDuration,
		errors:        errs,
	}, nil
}

// RecordTransfer counts one completed transfer of ul per channel.
func (m *Metrics) RecordTransfer(ctx context.Context, pipette string, ul float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("pipette", pipette))
	m.transfers.Add(ctx, 1, attrs)
	m.volume.Add(ctx, ul, attrs)
}

// RecordTip counts a tip action: "pick_up", "drop" or "return".
func (m *Metrics) RecordTip(ctx context.Context, pipette, action string) {
	if m == nil {
		return
	}
	m.tips.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipette", pipette),
		attribute.String("action", action),
	))
}

// RecordPhase records a finished protocol phase.
func (m *Metrics) RecordPhase(ctx context.Context, protocol, phase, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("protocol", protocol),
		attribute.String("phase", phase),
		attribute.String("status", status),
	))
}

// RecordError counts an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}

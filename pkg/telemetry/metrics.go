package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RunMetrics records the outcome of loading runs.
type RunMetrics struct {
	placed   metric.Int64Counter
	unplaced metric.Int64Counter
	duration metric.Float64Histogram
}

// NewRunMetrics registers the run instruments on mp, or on the global meter
// provider when mp is nil.
func NewRunMetrics(mp metric.MeterProvider, name string) (*RunMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(name)

	placed, err := meter.Int64Counter("cargoload.items.placed",
		metric.WithDescription("Items loaded into the container"))
	if err != nil {
		return nil, fmt.Errorf("failed to create placed counter: %w", err)
	}
	unplaced, err := meter.Int64Counter("cargoload.items.unplaced",
		metric.WithDescription("Items left outside the container"))
	if err != nil {
		return nil, fmt.Errorf("failed to create unplaced counter: %w", err)
	}
	duration, err := meter.Float64Histogram("cargoload.run.duration_ms",
		metric.WithDescription("Wall time of one loading run"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &RunMetrics{placed: placed, unplaced: unplaced, duration: duration}, nil
}

// Record adds one run.
func (m *RunMetrics) Record(ctx context.Context, strategy string, placed, unplaced int, ms float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("strategy", strategy))
	m.placed.Add(ctx, int64(placed), attrs)
	m.unplaced.Add(ctx, int64(unplaced), attrs)
	m.duration.Record(ctx, ms, attrs)
}

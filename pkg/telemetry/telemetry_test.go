package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInit_DiscardExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	shutdown, err := Init(context.Background(), "cargoload-test", "dev", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, span := Tracer("test").Start(context.Background(), "unit")
	span.End()

	_, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, ok, "Init must install an SDK meter provider")

	assert.NoError(t, shutdown(context.Background()))
}

func TestRunMetrics_Record(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewRunMetrics(mp, "test")
	require.NoError(t, err)
	m.Record(ctx, "volume", 3, 1, 12.5)
	m.Record(ctx, "volume", 2, 0, 7.5)
	m.Record(ctx, "valuemax", 4, 2, 30)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.Equal(t, map[string]int64{"volume": 5, "valuemax": 4}, counterByStrategy(t, rm, "cargoload.items.placed"))
	assert.Equal(t, map[string]int64{"volume": 1, "valuemax": 2}, counterByStrategy(t, rm, "cargoload.items.unplaced"))

	hist := findMetric(t, rm, "cargoload.run.duration_ms").Data.(metricdata.Histogram[float64])
	var runs uint64
	for _, dp := range hist.DataPoints {
		runs += dp.Count
	}
	assert.Equal(t, uint64(3), runs)

	var nilMetrics *RunMetrics
	assert.NotPanics(t, func() {
		nilMetrics.Record(ctx, "volume", 1, 0, 1)
	})
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	require.Failf(t, "metric not collected", "%s", name)
	return metricdata.Metrics{}
}

func counterByStrategy(t *testing.T, rm metricdata.ResourceMetrics, name string) map[string]int64 {
	t.Helper()
	sum, ok := findMetric(t, rm, name).Data.(metricdata.Sum[int64])
	require.Truef(t, ok, "%s is not an int64 sum", name)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		strategy, _ := dp.Attributes.Value(attribute.Key("strategy"))
		out[strategy.AsString()] += dp.Value
	}
	return out
}

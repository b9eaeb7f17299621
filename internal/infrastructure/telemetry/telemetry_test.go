package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	tp, err := NewTracerProvider(ctx, Config{Enabled: false}, log)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, Config{Enabled: false}, log)
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, Config{Enabled: false}, log)
	require.NoError(t, err)
	assert.Same(t, log, lp.Bridge(log, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(ProfilerConfig{Enabled: false}, log)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true}, zap.NewNop())
	assert.Error(t, err)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOn")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOff")
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased")
}

func TestFundMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewFundMetrics(provider.Meter("test"))
	require.NoError(t, err)

	m.DonationSubmitted(ctx, "Bkash")
	m.DonationSubmitted(ctx, "Bkash")
	m.Decided(ctx, "donation", "Approved")
	m.Anomalies(ctx, "malformed_amount", 3)
	m.Anomalies(ctx, "unknown_entry_type", 0)
	m.StatsComputed(ctx, "org", 3*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	sums := map[string]int64{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[md.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), sums["comfund.donations.submitted"])
	assert.Equal(t, int64(1), sums["comfund.reviews.decided"])
	assert.Equal(t, int64(3), sums["comfund.reconciliation.anomalies"])
}

func TestFundMetrics_NoopMeter(t *testing.T) {
	m, err := NewFundMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.NotPanics(t, func() { m.Decided(context.Background(), "member", "Rejected") })
}

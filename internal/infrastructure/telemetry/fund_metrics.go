package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FundMetrics records membership and fund activity
type FundMetrics struct {
	submissions metric.Int64Counter
	decisions   metric.Int64Counter
	anomalies   metric.Int64Counter
	statsTime   metric.Float64Histogram
}

// NewFundMetrics registers the fund instruments on meter
func NewFundMetrics(meter metric.Meter) (*FundMetrics, error) {
	submissions, err := meter.Int64Counter("comfund.donations.submitted",
		metric.WithDescription("Donations submitted by members"),
		metric.WithUnit("{donation}"))
	if err != nil {
		return nil, err
	}
	decisions, err := meter.Int64Counter("comfund.reviews.decided",
		metric.WithDescription("Approval decisions on members and donations"),
		metric.WithUnit("{decision}"))
	if err != nil {
		return nil, err
	}
	anomalies, err := meter.Int64Counter("comfund.reconciliation.anomalies",
		metric.WithDescription("Records skipped or zeroed while computing stats"),
		metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}
	statsTime, err := meter.Float64Histogram("comfund.reconciliation.duration",
		metric.WithDescription("Time spent computing fund stats"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000))
	if err != nil {
		return nil, err
	}
	return &FundMetrics{submissions: submissions, decisions: decisions, anomalies: anomalies, statsTime: statsTime}, nil
}

// DonationSubmitted counts a new submission by payment method
func (m *FundMetrics) DonationSubmitted(ctx context.Context, method string) {
	m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// Decided counts a review decision on a member or donation
func (m *FundMetrics) Decided(ctx context.Context, subject, decision string) {
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("subject", subject),
		attribute.String("decision", decision),
	))
}

// Anomalies counts malformed records of one kind
func (m *FundMetrics) Anomalies(ctx context.Context, kind string, n int) {
	if n <= 0 {
		return
	}
	m.anomalies.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// StatsComputed records how long a stats computation took
func (m *FundMetrics) StatsComputed(ctx context.Context, scope string, d time.Duration) {
	m.statsTime.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(attribute.String("scope", scope)))
}

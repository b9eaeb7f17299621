// Package fund holds the fund use cases: reconciliation of the ledger and
// member dues, payment submissions and their review, and the manual ledger.
package fund

import (
	"context"
	"encoding/json"
	"time"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/cache"
	"github.com/comfund/backend/internal/infrastructure/config"
	"github.com/comfund/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	orgStatsKey      = "org"
	monthLabelLayout = "January 2006"
)

// Metrics records fund activity. *telemetry.FundMetrics implements it.
type Metrics interface {
	DonationSubmitted(ctx context.Context, method string)
	Decided(ctx context.Context, subject, decision string)
	Anomalies(ctx context.Context, kind string, n int)
	StatsComputed(ctx context.Context, scope string, d time.Duration)
}

// ReconciliationConfig holds the organization settings of the dues calculation
type ReconciliationConfig struct {
	Policy         fund.Policy
	CacheTTL       time.Duration
	OrgName        string
	OfficialNumber string
}

// NewReconciliationConfig reads the dues policy and payment details from
// the fund and org configuration sections
func NewReconciliationConfig(fundCfg config.FundConfig, orgCfg config.OrgConfig) ReconciliationConfig {
	return ReconciliationConfig{
		Policy: fund.Policy{
			DefaultMonthlyAmount: decimal.NewFromInt(fundCfg.DefaultMonthlyAmount),
			Location:             fundCfg.Location(),
		},
		CacheTTL:       fundCfg.StatsCacheTTL,
		OrgName:        orgCfg.Name,
		OfficialNumber: orgCfg.OfficialNumber,
	}
}

// ReconciliationService computes fund totals and member dues from fresh
// snapshots of the record store. Results are cached until the next write
// invalidates them.
type ReconciliationService struct {
	members   membership.MemberRepository
	donations fund.DonationRepository
	entries   fund.LedgerEntryRepository
	cache     cache.StatsCache
	metrics   Metrics
	config    ReconciliationConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewReconciliationService creates a new ReconciliationService. statsCache and
// metrics may be nil.
func NewReconciliationService(
	members membership.MemberRepository,
	donations fund.DonationRepository,
	entries fund.LedgerEntryRepository,
	statsCache cache.StatsCache,
	metrics Metrics,
	config ReconciliationConfig,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		members:   members,
		donations: donations,
		entries:   entries,
		cache:     statsCache,
		metrics:   metrics,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// OrgStats returns the organization fund position
func (s *ReconciliationService) OrgStats(ctx context.Context) (*fund.OrgStats, error) {
	var stats fund.OrgStats
	if s.cached(ctx, orgStatsKey, &stats) {
		return &stats, nil
	}
	gen, cacheable := s.generation(ctx)

	start := time.Now()
	entries, err := s.entries.FindAll(ctx, fund.LedgerEntryFilter{Filter: allRows()})
	if err != nil {
		return nil, err
	}
	donations, err := s.donations.FindAll(ctx, fund.DonationFilter{Filter: allRows()})
	if err != nil {
		return nil, err
	}
	stats = fund.ComputeOrgStats(entries, donations)
	s.observe(ctx, "org", start, stats.Anomalies)

	if cacheable {
		s.store(ctx, gen, orgStatsKey, stats)
	}
	return &stats, nil
}

// MemberStats returns the dues position of one member in the current month
func (s *ReconciliationService) MemberStats(ctx context.Context, memberID uuid.UUID) (*MemberStatsResponse, error) {
	now := s.now().In(s.location())
	key := "member:" + memberID.String() + ":" + now.Format("2006-01")

	var resp MemberStatsResponse
	if s.cached(ctx, key, &resp) {
		return &resp, nil
	}
	gen, cacheable := s.generation(ctx)

	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	donations, err := s.donations.FindAll(ctx, fund.DonationFilter{Filter: allRows(), MemberID: &memberID})
	if err != nil {
		return nil, err
	}
	stats := fund.ComputeMemberStats(fund.MemberTerms{
		MemberID:        m.ID,
		MonthlyAmount:   m.MonthlyAmount,
		ManualDue:       m.ManualDue,
		ManualTotalPaid: m.ManualTotalPaid,
		JoinedAt:        m.JoinedAt(),
	}, donations, now, s.config.Policy)
	s.observe(ctx, "member", start, stats.Anomalies)

	paid := m.PaidMonths
	if paid == nil {
		paid = []string{}
	}
	resp = MemberStatsResponse{
		MemberStats: stats,
		MemberName:  m.Name,
		PaidMonths:  paid,
		Month:       now.Format(monthLabelLayout),
	}
	if cacheable {
		s.store(ctx, gen, key, resp)
	}
	return &resp, nil
}

// PaymentDetails returns where and how members can pay
func (s *ReconciliationService) PaymentDetails() PaymentDetailsResponse {
	return PaymentDetailsResponse{
		OrgName:        s.config.OrgName,
		OfficialNumber: s.config.OfficialNumber,
		Methods:        methodNames(),
	}
}

// PaymentPrefill suggests the outstanding due, or one month when nothing is
// owed, for the current month.
func (s *ReconciliationService) PaymentPrefill(ctx context.Context, memberID uuid.UUID) (*PaymentPrefillResponse, error) {
	stats, err := s.MemberStats(ctx, memberID)
	if err != nil {
		return nil, err
	}
	amount := stats.MonthlyAmount
	if stats.Due.IsPositive() {
		amount = stats.Due
	}
	return &PaymentPrefillResponse{
		PaymentDetailsResponse: s.PaymentDetails(),
		Amount:                 amount,
		Due:                    stats.Due,
		PaymentMonth:           stats.Month,
		Type:                   fund.DonationTypeSubscription.String(),
	}, nil
}

// Invalidate drops every cached result
func (s *ReconciliationService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateAll(ctx)
}

func (s *ReconciliationService) location() *time.Location {
	if s.config.Policy.Location == nil {
		return time.UTC
	}
	return s.config.Policy.Location
}

func (s *ReconciliationService) observe(ctx context.Context, scope string, start time.Time, an fund.Anomalies) {
	if s.metrics != nil {
		s.metrics.StatsComputed(ctx, scope, time.Since(start))
	}
	if an.Total() == 0 {
		return
	}
	s.logger.Warn("Fund records skipped during reconciliation",
		zap.String("scope", scope),
		zap.Int("malformed_amounts", an.MalformedAmounts),
		zap.Int("unknown_entry_types", an.UnknownEntryTypes),
		zap.Int("unknown_donation_statuses", an.UnknownDonationStatuses))
	if s.metrics == nil {
		return
	}
	for kind, n := range map[string]int{
		"malformed_amount":        an.MalformedAmounts,
		"unknown_entry_type":      an.UnknownEntryTypes,
		"unknown_donation_status": an.UnknownDonationStatuses,
	} {
		if n > 0 {
			s.metrics.Anomalies(ctx, kind, n)
		}
	}
}

func (s *ReconciliationService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Stats cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("Discarding unreadable stats cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// generation must be read before the records are loaded
func (s *ReconciliationService) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("Stats cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *ReconciliationService) store(ctx context.Context, gen int64, key string, v any) {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Stats cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, gen, key, raw, s.config.CacheTTL); err != nil {
		s.logger.Warn("Stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func publishPending(ctx context.Context, pub shared.EventPublisher, aggregate shared.AggregateRoot, logger *zap.Logger) {
	if pub == nil {
		aggregate.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, pub, aggregate); err != nil {
		logger.Error("Failed to publish fund events", zap.Error(err))
	}
}

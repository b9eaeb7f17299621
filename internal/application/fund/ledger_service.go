package fund

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/cache"
	"github.com/comfund/backend/internal/infrastructure/export"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const founderSeedLock = "ledger:founder-seed"

// FounderSeed is the opening income entry written to an empty ledger
type FounderSeed struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
}

// LedgerServiceConfig holds the ledger settings
type LedgerServiceConfig struct {
	OrgName  string
	Location *time.Location
}

// LedgerService maintains the manual ledger and its combined view
type LedgerService struct {
	entries   fund.LedgerEntryRepository
	donations fund.DonationRepository
	stats     *ReconciliationService
	publisher shared.EventPublisher
	locker    cache.Locker
	config    LedgerServiceConfig
	logger    *zap.Logger
}

// NewLedgerService creates a new LedgerService. locker may be nil when only
// one instance runs.
func NewLedgerService(
	entries fund.LedgerEntryRepository,
	donations fund.DonationRepository,
	stats *ReconciliationService,
	publisher shared.EventPublisher,
	locker cache.Locker,
	config LedgerServiceConfig,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		entries:   entries,
		donations: donations,
		stats:     stats,
		publisher: publisher,
		locker:    locker,
		config:    config,
		logger:    logger,
	}
}

// List returns a page of manual entries
func (s *LedgerService) List(ctx context.Context, f LedgerListFilter) ([]LedgerEntryResponse, int64, error) {
	filter := fund.LedgerEntryFilter{Filter: pageFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir)}
	if f.OrderBy == "" {
		filter.OrderBy = "date"
	}
	filter.Search = strings.TrimSpace(f.Search)
	if f.Type != "" {
		t := fund.EntryType(f.Type)
		filter.Type = &t
	}

	entries, err := s.entries.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entries.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerEntryResponse(&entries[i])
	}
	return out, total, nil
}

// Get returns one entry
func (s *LedgerService) Get(ctx context.Context, id uuid.UUID) (*LedgerEntryResponse, error) {
	e, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLedgerEntryResponse(e)
	return &resp, nil
}

// Upsert creates an entry when id is nil, otherwise replaces the entry's fields
func (s *LedgerService) Upsert(ctx context.Context, id *uuid.UUID, req LedgerEntryRequest) (*LedgerEntryResponse, error) {
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	in := fund.LedgerEntryInput{
		Type:        fund.EntryType(req.Type),
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		ReferenceID: req.ReferenceID,
	}

	var e *fund.LedgerEntry
	if id == nil {
		e, err = fund.NewLedgerEntry(in)
		if err != nil {
			return nil, err
		}
	} else {
		e, err = s.entries.FindByID(ctx, *id)
		if err != nil {
			return nil, err
		}
		if err := e.Update(in); err != nil {
			return nil, err
		}
	}

	if err := s.entries.Save(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("Ledger entry saved",
		zap.String("entry_id", e.ID.String()),
		zap.String("type", e.Type.String()),
		zap.String("amount", e.Amount.String()),
		zap.Bool("updated", id != nil))
	publishPending(ctx, s.publisher, e, s.logger)

	resp := ToLedgerEntryResponse(e)
	return &resp, nil
}

// Delete removes an entry. A missing entry is not an error.
func (s *LedgerService) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.entries.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Ledger entry deleted", zap.String("entry_id", id.String()))

	e.ClearDomainEvents()
	e.AddDomainEvent(fund.NewLedgerEntryDeletedEvent(e))
	publishPending(ctx, s.publisher, e, s.logger)
	return nil
}

// Combined returns manual entries merged with approved donations, plus the
// engine totals. The totals are never derived from the rows.
func (s *LedgerService) Combined(ctx context.Context) (*CombinedLedgerResponse, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.OrgStats(ctx)
	if err != nil {
		return nil, err
	}
	return &CombinedLedgerResponse{Rows: rows, Stats: *stats}, nil
}

// Workbook builds the spreadsheet export of the combined ledger
func (s *LedgerService) Workbook(ctx context.Context) (*export.LedgerWorkbook, error) {
	combined, err := s.Combined(ctx)
	if err != nil {
		return nil, err
	}
	return &export.LedgerWorkbook{
		OrgName:     s.config.OrgName,
		GeneratedAt: time.Now(),
		Location:    s.config.Location,
		Rows:        combined.Rows,
		Stats:       combined.Stats,
	}, nil
}

// SeedFounderEntry writes the opening entry when the ledger is empty. It
// reports whether an entry was written. Another instance holding the seed
// lock means the seed is left to that instance.
func (s *LedgerService) SeedFounderEntry(ctx context.Context, seed FounderSeed) (bool, error) {
	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, founderSeedLock, 30*time.Second)
		if errors.Is(err, cache.ErrLockNotObtained) {
			s.logger.Info("Founder seed running elsewhere, skipping")
			return false, nil
		}
		if err != nil {
			return false, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release founder seed lock", zap.Error(err))
			}
		}()
	}

	count, err := s.entries.Count(ctx, fund.LedgerEntryFilter{Filter: allRows()})
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	e, err := fund.NewLedgerEntry(fund.LedgerEntryInput{
		Type:        fund.EntryTypeIncome,
		Category:    seed.Category,
		Amount:      seed.Amount,
		Description: seed.Description,
		Date:        seed.Date,
	})
	if err != nil {
		return false, err
	}
	if err := s.entries.Save(ctx, e); err != nil {
		return false, err
	}
	s.logger.Info("Founder ledger entry seeded",
		zap.String("entry_id", e.ID.String()),
		zap.String("amount", e.Amount.String()))
	publishPending(ctx, s.publisher, e, s.logger)
	return true, nil
}

func (s *LedgerService) rows(ctx context.Context) ([]fund.LedgerRow, error) {
	entries, err := s.entries.FindAll(ctx, fund.LedgerEntryFilter{Filter: allRows()})
	if err != nil {
		return nil, err
	}
	approved := fund.DonationStatusApproved
	donations, err := s.donations.FindAll(ctx, fund.DonationFilter{Filter: allRows(), Status: &approved})
	if err != nil {
		return nil, err
	}
	return fund.CombineLedger(entries, donations), nil
}

func (s *LedgerService) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	loc := s.config.Location
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, shared.NewDomainError("INVALID_DATE", "Date must look like 2025-01-31")
}

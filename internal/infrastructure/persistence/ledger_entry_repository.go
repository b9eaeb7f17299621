package persistence

import (
	"context"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements fund.LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// FindByID finds a ledger entry by ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*fund.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists ledger entries matching the filter, newest date first by default
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, filter fund.LedgerEntryFilter) ([]fund.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	q := paginate(r.where(ctx, filter), filter.OrderBy, filter.OrderDir, LedgerEntrySortFields, "date", filter.Page, filter.PageSize)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]fund.LedgerEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts ledger entries matching the filter
func (r *GormLedgerEntryRepository) Count(ctx context.Context, filter fund.LedgerEntryFilter) (int64, error) {
	var count int64
	if err := r.where(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLedgerEntryRepository) where(ctx context.Context, filter fund.LedgerEntryFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{})
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(`(LOWER(category) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p)
	}
	return q
}

// Save creates or updates a ledger entry
func (r *GormLedgerEntryRepository) Save(ctx context.Context, entry *fund.LedgerEntry) error {
	return translate(r.db.WithContext(ctx).Save(models.LedgerEntryModelFromDomain(entry)).Error)
}

// Delete removes a ledger entry
func (r *GormLedgerEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LedgerEntryModel{}).Error
}

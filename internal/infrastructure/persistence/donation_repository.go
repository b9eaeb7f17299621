package persistence

import (
	"context"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDonationRepository implements fund.DonationRepository using GORM
type GormDonationRepository struct {
	db *gorm.DB
}

// NewGormDonationRepository creates a new GormDonationRepository
func NewGormDonationRepository(db *gorm.DB) *GormDonationRepository {
	return &GormDonationRepository{db: db}
}

// FindByID finds a donation by ID
func (r *GormDonationRepository) FindByID(ctx context.Context, id uuid.UUID) (*fund.Donation, error) {
	var model models.DonationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists donations matching the filter
func (r *GormDonationRepository) FindAll(ctx context.Context, filter fund.DonationFilter) ([]fund.Donation, error) {
	var rows []models.DonationModel
	q := paginate(r.where(ctx, filter), filter.OrderBy, filter.OrderDir, DonationSortFields, "created_at", filter.Page, filter.PageSize)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]fund.Donation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts donations matching the filter
func (r *GormDonationRepository) Count(ctx context.Context, filter fund.DonationFilter) (int64, error) {
	var count int64
	if err := r.where(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormDonationRepository) where(ctx context.Context, filter fund.DonationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.DonationModel{})
	if filter.MemberID != nil {
		q = q.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		q = q.Where("method = ?", *filter.Method)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(`(LOWER(member_name) LIKE ? ESCAPE '\' OR LOWER(transaction_id) LIKE ? ESCAPE '\')`, p, p)
	}
	return q
}

// Save creates or updates a donation
func (r *GormDonationRepository) Save(ctx context.Context, donation *fund.Donation) error {
	return translate(r.db.WithContext(ctx).Save(models.DonationModelFromDomain(donation)).Error)
}

// UpdateStatus moves the stored status from oldStatus to donation.Status.
// The WHERE clause on the old status makes concurrent reviews of the same
// donation serialize: the loser sees zero affected rows.
func (r *GormDonationRepository) UpdateStatus(ctx context.Context, donation *fund.Donation, oldStatus fund.DonationStatus) error {
	result := r.db.WithContext(ctx).Model(&models.DonationModel{}).
		Where("id = ? AND status = ?", donation.ID, oldStatus).
		Updates(map[string]any{
			"status":     donation.Status,
			"version":    donation.Version,
			"updated_at": donation.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DonationModel{}).Where("id = ?", donation.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

// Delete removes a donation
func (r *GormDonationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.DonationModel{}).Error
}

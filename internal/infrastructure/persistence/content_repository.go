package persistence

import (
	"context"

	"github.com/comfund/backend/internal/domain/content"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNoticeRepository implements content.NoticeRepository using GORM
type GormNoticeRepository struct {
	db *gorm.DB
}

// NewGormNoticeRepository creates a new GormNoticeRepository
func NewGormNoticeRepository(db *gorm.DB) *GormNoticeRepository {
	return &GormNoticeRepository{db: db}
}

// FindByID finds a notice by ID
func (r *GormNoticeRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Notice, error) {
	var model models.NoticeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists notices, newest date first by default
func (r *GormNoticeRepository) FindAll(ctx context.Context, filter content.NoticeFilter) ([]content.Notice, error) {
	var rows []models.NoticeModel
	q := paginate(r.where(ctx, filter), filter.OrderBy, filter.OrderDir, NoticeSortFields, "date", filter.Page, filter.PageSize)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]content.Notice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts notices matching the filter
func (r *GormNoticeRepository) Count(ctx context.Context, filter content.NoticeFilter) (int64, error) {
	var count int64
	err := r.where(ctx, filter).Count(&count).Error
	return count, err
}

func (r *GormNoticeRepository) where(ctx context.Context, filter content.NoticeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.NoticeModel{})
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, p, p)
	}
	return q
}

// Save creates or updates a notice
func (r *GormNoticeRepository) Save(ctx context.Context, notice *content.Notice) error {
	return translate(r.db.WithContext(ctx).Save(models.NoticeModelFromDomain(notice)).Error)
}

// Delete removes a notice
func (r *GormNoticeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.NoticeModel{}).Error
}

// GormActivityRepository implements content.ActivityRepository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// FindByID finds an activity by ID
func (r *GormActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Activity, error) {
	var model models.ActivityModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists activities, newest date first by default
func (r *GormActivityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.Activity, error) {
	var rows []models.ActivityModel
	q := paginate(r.where(ctx, filter), filter.OrderBy, filter.OrderDir, ActivitySortFields, "date", filter.Page, filter.PageSize)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]content.Activity, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts activities matching the filter
func (r *GormActivityRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.where(ctx, filter).Count(&count).Error
	return count, err
}

func (r *GormActivityRepository) where(ctx context.Context, filter shared.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.ActivityModel{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`, p, p)
	}
	return q
}

// Save creates or updates an activity
func (r *GormActivityRepository) Save(ctx context.Context, activity *content.Activity) error {
	return translate(r.db.WithContext(ctx).Save(models.ActivityModelFromDomain(activity)).Error)
}

// Delete removes an activity
func (r *GormActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ActivityModel{}).Error
}

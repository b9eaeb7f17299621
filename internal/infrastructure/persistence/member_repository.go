package persistence

import (
	"context"

	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memberEditableColumns are written by Save on an existing row. Status and
// approved only change through UpdateStatus.
var memberEditableColumns = []string{
	"name", "email", "phone", "address", "blood_group", "password_hash",
	"role", "position", "monthly_amount", "manual_due", "manual_total_paid",
	"paid_months", "permissions", "joining_date", "version", "updated_at",
}

// GormMemberRepository implements membership.MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID loads a member and its message log
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	m := model.ToDomain()
	if err := r.loadMessages(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// FindByEmail loads a member by email
func (r *GormMemberRepository) FindByEmail(ctx context.Context, email string) (*membership.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", membership.NormalizeEmail(email)).
		First(&model).Error; err != nil {
		return nil, translate(err)
	}
	m := model.ToDomain()
	if err := r.loadMessages(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *GormMemberRepository) loadMessages(ctx context.Context, m *membership.Member) error {
	var rows []models.MemberMessageModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", m.ID).
		Order("date ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return err
	}
	m.Messages = make([]membership.Message, len(rows))
	for i := range rows {
		m.Messages[i] = rows[i].ToDomain()
	}
	return nil
}

// ExistsByEmail checks whether an email is already registered
func (r *GormMemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("email = ?", membership.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsAdmin checks whether any admin account exists
func (r *GormMemberRepository) ExistsAdmin(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("role = ?", membership.RoleAdmin).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists members matching the filter, without message logs
func (r *GormMemberRepository) FindAll(ctx context.Context, filter membership.MemberFilter) ([]membership.Member, error) {
	var rows []models.MemberModel
	q := paginate(r.where(ctx, filter), filter.OrderBy, filter.OrderDir, MemberSortFields, "created_at", filter.Page, filter.PageSize)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]membership.Member, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts members matching the filter
func (r *GormMemberRepository) Count(ctx context.Context, filter membership.MemberFilter) (int64, error) {
	var count int64
	if err := r.where(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormMemberRepository) where(ctx context.Context, filter membership.MemberFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.MemberModel{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Role != nil {
		q = q.Where("role = ?", *filter.Role)
	}
	if filter.CommitteeOnly {
		q = q.Where("status = ? AND approved = ? AND position <> '' AND LOWER(position) <> LOWER(?)",
			membership.MemberStatusApproved, true, membership.DefaultPosition)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`, p, p, p)
	}
	return q
}

// Save inserts a new member or updates the editable columns of an existing one
func (r *GormMemberRepository) Save(ctx context.Context, member *membership.Member) error {
	model := models.MemberModelFromDomain(member)
	result := r.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("id = ?", model.ID).
		Select(memberEditableColumns).
		Updates(model)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(model).Error)
}

// UpdateStatus writes status and approved together in one statement
func (r *GormMemberRepository) UpdateStatus(ctx context.Context, member *membership.Member) error {
	result := r.db.WithContext(ctx).Model(&models.MemberModel{}).
		Where("id = ?", member.ID).
		Updates(map[string]any{
			"status":     member.Status,
			"approved":   member.Approved,
			"version":    member.Version,
			"updated_at": member.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// AppendMessage inserts one message; existing messages are never rewritten
func (r *GormMemberRepository) AppendMessage(ctx context.Context, memberID uuid.UUID, msg membership.Message) error {
	return translate(r.db.WithContext(ctx).Create(models.MemberMessageModelFromDomain(memberID, msg)).Error)
}

// Delete removes a member and its message log
func (r *GormMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", id).Delete(&models.MemberMessageModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.MemberModel{}).Error
	})
}

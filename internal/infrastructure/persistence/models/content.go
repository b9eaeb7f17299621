package models

import (
	"time"

	"github.com/comfund/backend/internal/domain/content"
)

// NoticeModel maps the notices table
type NoticeModel struct {
	AggregateModel
	Title    string                 `gorm:"type:varchar(200);not null"`
	Content  string                 `gorm:"type:text;not null"`
	Date     time.Time              `gorm:"not null;index"`
	Priority content.NoticePriority `gorm:"type:varchar(10);not null;default:'Normal'"`
}

// TableName returns the table name for GORM
func (NoticeModel) TableName() string {
	return "notices"
}

// ToDomain converts the row to a Notice
func (m *NoticeModel) ToDomain() *content.Notice {
	return &content.Notice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Title:             m.Title,
		Content:           m.Content,
		Date:              m.Date,
		Priority:          m.Priority,
	}
}

// NoticeModelFromDomain creates a row from a Notice
func NoticeModelFromDomain(n *content.Notice) *NoticeModel {
	m := &NoticeModel{
		Title:    n.Title,
		Content:  n.Content,
		Date:     n.Date,
		Priority: n.Priority,
	}
	m.FromDomainAggregateRoot(n.BaseAggregateRoot)
	return m
}

// ActivityModel maps the activities table
type ActivityModel struct {
	AggregateModel
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	Image       string    `gorm:"type:varchar(500)"`
	Date        time.Time `gorm:"not null;index"`
	Location    string    `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ActivityModel) TableName() string {
	return "activities"
}

// ToDomain converts the row to an Activity
func (m *ActivityModel) ToDomain() *content.Activity {
	return &content.Activity{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Title:             m.Title,
		Description:       m.Description,
		Image:             m.Image,
		Date:              m.Date,
		Location:          m.Location,
	}
}

// ActivityModelFromDomain creates a row from an Activity
func ActivityModelFromDomain(a *content.Activity) *ActivityModel {
	m := &ActivityModel{
		Title:       a.Title,
		Description: a.Description,
		Image:       a.Image,
		Date:        a.Date,
		Location:    a.Location,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// All returns every model, in dependency order, for test schemas
func All() []any {
	return []any{
		&MemberModel{},
		&MemberMessageModel{},
		&DonationModel{},
		&LedgerEntryModel{},
		&NoticeModel{},
		&ActivityModel{},
	}
}

package models

import (
	"slices"
	"time"

	"github.com/comfund/backend/internal/domain/membership"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberModel maps the members table
type MemberModel struct {
	AggregateModel
	Name            string                  `gorm:"type:varchar(100);not null"`
	Email           string                  `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone           string                  `gorm:"type:varchar(30)"`
	Address         string                  `gorm:"type:text"`
	BloodGroup      string                  `gorm:"type:varchar(5)"`
	PasswordHash    string                  `gorm:"type:varchar(255);not null"`
	Role            membership.Role         `gorm:"type:varchar(10);not null;default:'Member';index"`
	Position        string                  `gorm:"type:varchar(100);not null;default:'Member'"`
	Status          membership.MemberStatus `gorm:"type:varchar(10);not null;default:'Pending';index"`
	Approved        bool                    `gorm:"not null;default:false"`
	MonthlyAmount   decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	ManualDue       *decimal.Decimal        `gorm:"type:decimal(18,2)"`
	ManualTotalPaid *decimal.Decimal        `gorm:"type:decimal(18,2)"`
	PaidMonths      []string                `gorm:"type:jsonb;serializer:json;not null;default:'[]'"`
	Permissions     membership.Permissions  `gorm:"type:jsonb;serializer:json;not null;default:'{}'"`
	JoiningDate     time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "members"
}

// ToDomain converts the row to a Member. Messages are loaded separately.
func (m *MemberModel) ToDomain() *membership.Member {
	paidMonths := slices.Clone(m.PaidMonths)
	if paidMonths == nil {
		paidMonths = make([]string, 0)
	}
	return &membership.Member{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		BloodGroup:        m.BloodGroup,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Position:          m.Position,
		Status:            m.Status,
		Approved:          m.Approved,
		MonthlyAmount:     m.MonthlyAmount,
		ManualDue:         m.ManualDue,
		ManualTotalPaid:   m.ManualTotalPaid,
		PaidMonths:        paidMonths,
		Permissions:       m.Permissions,
		JoiningDate:       m.JoiningDate,
		Messages:          make([]membership.Message, 0),
	}
}

// FromDomain populates the row from a Member
func (m *MemberModel) FromDomain(mem *membership.Member) {
	m.FromDomainAggregateRoot(mem.BaseAggregateRoot)
	m.Name = mem.Name
	m.Email = mem.Email
	m.Phone = mem.Phone
	m.Address = mem.Address
	m.BloodGroup = mem.BloodGroup
	m.PasswordHash = mem.PasswordHash
	m.Role = mem.Role
	m.Position = mem.Position
	m.Status = mem.Status
	m.Approved = mem.Approved
	m.MonthlyAmount = mem.MonthlyAmount
	m.ManualDue = mem.ManualDue
	m.ManualTotalPaid = mem.ManualTotalPaid
	m.PaidMonths = slices.Clone(mem.PaidMonths)
	if m.PaidMonths == nil {
		m.PaidMonths = make([]string, 0)
	}
	m.Permissions = mem.Permissions
	m.JoiningDate = mem.JoinedAt()
}

// MemberModelFromDomain creates a row from a Member
func MemberModelFromDomain(mem *membership.Member) *MemberModel {
	m := &MemberModel{}
	m.FromDomain(mem)
	return m
}

// MemberMessageModel maps one entry of a member's message log
type MemberMessageModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID uuid.UUID `gorm:"type:uuid;not null;index:idx_member_messages_member_date,priority:1"`
	Text     string    `gorm:"type:text;not null"`
	Sender   string    `gorm:"type:varchar(100);not null"`
	Date     time.Time `gorm:"not null;index:idx_member_messages_member_date,priority:2"`
}

// TableName returns the table name for GORM
func (MemberMessageModel) TableName() string {
	return "member_messages"
}

// ToDomain converts the row to a Message
func (m *MemberMessageModel) ToDomain() membership.Message {
	return membership.Message{
		ID:     m.ID,
		Text:   m.Text,
		Date:   m.Date,
		Sender: m.Sender,
	}
}

// MemberMessageModelFromDomain creates a row for memberID from a Message
func MemberMessageModelFromDomain(memberID uuid.UUID, msg membership.Message) *MemberMessageModel {
	return &MemberMessageModel{
		ID:       msg.ID,
		MemberID: memberID,
		Text:     msg.Text,
		Sender:   msg.Sender,
		Date:     msg.Date,
	}
}

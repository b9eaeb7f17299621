package models

import (
	"time"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationModel maps the donations table
type DonationModel struct {
	AggregateModel
	MemberID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	MemberName    string              `gorm:"type:varchar(100)"`
	Amount        decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Method        fund.PaymentMethod  `gorm:"type:varchar(10);not null"`
	TransactionID string              `gorm:"type:varchar(100)"`
	ProofRef      string              `gorm:"type:varchar(500)"`
	Type          fund.DonationType   `gorm:"type:varchar(20);not null;default:'Subscription'"`
	PaymentMonth  string              `gorm:"type:varchar(20)"`
	Status        fund.DonationStatus `gorm:"type:varchar(10);not null;default:'Pending';index"`
}

// TableName returns the table name for GORM
func (DonationModel) TableName() string {
	return "donations"
}

// ToDomain converts the row to a Donation
func (m *DonationModel) ToDomain() *fund.Donation {
	return &fund.Donation{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		MemberID:          m.MemberID,
		MemberName:        m.MemberName,
		Amount:            m.Amount,
		Method:            m.Method,
		TransactionID:     m.TransactionID,
		ProofRef:          m.ProofRef,
		Type:              m.Type,
		PaymentMonth:      m.PaymentMonth,
		Status:            m.Status,
	}
}

// FromDomain populates the row from a Donation
func (m *DonationModel) FromDomain(d *fund.Donation) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.MemberID = d.MemberID
	m.MemberName = d.MemberName
	m.Amount = d.Amount
	m.Method = d.Method
	m.TransactionID = d.TransactionID
	m.ProofRef = d.ProofRef
	m.Type = d.Type
	m.PaymentMonth = d.PaymentMonth
	m.Status = d.Status
}

// DonationModelFromDomain creates a row from a Donation
func DonationModelFromDomain(d *fund.Donation) *DonationModel {
	m := &DonationModel{}
	m.FromDomain(d)
	return m
}

// LedgerEntryModel maps the ledger_entries table
type LedgerEntryModel struct {
	AggregateModel
	Type        fund.EntryType  `gorm:"type:varchar(10);not null;index"`
	Category    string          `gorm:"type:varchar(100);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description string          `gorm:"type:text"`
	Date        time.Time       `gorm:"not null;index"`
	ReferenceID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the row to a LedgerEntry
func (m *LedgerEntryModel) ToDomain() *fund.LedgerEntry {
	return &fund.LedgerEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Type:              m.Type,
		Category:          m.Category,
		Amount:            m.Amount,
		Description:       m.Description,
		Date:              m.Date,
		ReferenceID:       m.ReferenceID,
	}
}

// FromDomain populates the row from a LedgerEntry
func (m *LedgerEntryModel) FromDomain(e *fund.LedgerEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Type = e.Type
	m.Category = e.Category
	m.Amount = e.Amount
	m.Description = e.Description
	m.Date = e.Date
	m.ReferenceID = e.ReferenceID
}

// LedgerEntryModelFromDomain creates a row from a LedgerEntry
func LedgerEntryModelFromDomain(e *fund.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

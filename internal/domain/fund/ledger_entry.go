package fund

import (
	"strings"
	"time"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry
type EntryType string

const (
	EntryTypeIncome  EntryType = "Income"
	EntryTypeExpense EntryType = "Expense"
)

// IsValid checks if the entry type is known
func (t EntryType) IsValid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// LedgerEntry is a manual bookkeeping line maintained by admins.
// Entries are independent of donations.
type LedgerEntry struct {
	shared.BaseAggregateRoot
	Type        EntryType
	Category    string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	ReferenceID *uuid.UUID
}

// LedgerEntryInput carries the editable fields of an entry
type LedgerEntryInput struct {
	Type        EntryType
	Category    string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	ReferenceID *uuid.UUID
}

// NewLedgerEntry creates a new ledger entry
func NewLedgerEntry(in LedgerEntryInput) (*LedgerEntry, error) {
	e := &LedgerEntry{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := e.apply(in); err != nil {
		return nil, err
	}
	e.AddDomainEvent(NewLedgerEntryRecordedEvent(e, false))
	return e, nil
}

// Update replaces the editable fields of the entry
func (e *LedgerEntry) Update(in LedgerEntryInput) error {
	if err := e.apply(in); err != nil {
		return err
	}
	e.Touch()
	e.IncrementVersion()
	e.AddDomainEvent(NewLedgerEntryRecordedEvent(e, true))
	return nil
}

func (e *LedgerEntry) apply(in LedgerEntryInput) error {
	if !in.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Entry type must be Income or Expense")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}
	if !in.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	description := strings.TrimSpace(in.Description)
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if in.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Entry date is required")
	}

	e.Type = in.Type
	e.Category = category
	e.Amount = in.Amount
	e.Description = description
	e.Date = in.Date
	e.ReferenceID = in.ReferenceID
	return nil
}

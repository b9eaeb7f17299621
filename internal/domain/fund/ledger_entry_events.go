package fund

import (
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeLedgerEntry is the aggregate type name for LedgerEntry
const AggregateTypeLedgerEntry = "LedgerEntry"

// LedgerEntry domain event types
const (
	EventTypeLedgerEntryRecorded = "LedgerEntryRecorded"
	EventTypeLedgerEntryDeleted  = "LedgerEntryDeleted"
)

// LedgerEntryRecordedEvent is published when an entry is created or edited
type LedgerEntryRecordedEvent struct {
	shared.BaseDomainEvent
	EntryType EntryType       `json:"entry_type"`
	Amount    decimal.Decimal `json:"amount"`
	Updated   bool            `json:"updated"`
}

// NewLedgerEntryRecordedEvent creates a new LedgerEntryRecordedEvent
func NewLedgerEntryRecordedEvent(e *LedgerEntry, updated bool) *LedgerEntryRecordedEvent {
	return &LedgerEntryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryRecorded, AggregateTypeLedgerEntry, e.ID),
		EntryType:       e.Type,
		Amount:          e.Amount,
		Updated:         updated,
	}
}

// LedgerEntryDeletedEvent is published after an entry is removed
type LedgerEntryDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewLedgerEntryDeletedEvent creates a new LedgerEntryDeletedEvent
func NewLedgerEntryDeletedEvent(e *LedgerEntry) *LedgerEntryDeletedEvent {
	return &LedgerEntryDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryDeleted, AggregateTypeLedgerEntry, e.ID),
	}
}

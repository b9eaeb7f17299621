package fund

import (
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeDonation is the aggregate type name for Donation
const AggregateTypeDonation = "Donation"

// Donation domain event types
const (
	EventTypeDonationSubmitted     = "DonationSubmitted"
	EventTypeDonationStatusChanged = "DonationStatusChanged"
	EventTypeDonationDeleted       = "DonationDeleted"
)

// DonationSubmittedEvent is published when a member submits a payment
type DonationSubmittedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID       `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
	Method   PaymentMethod   `json:"method"`
}

// NewDonationSubmittedEvent creates a new DonationSubmittedEvent
func NewDonationSubmittedEvent(d *Donation) *DonationSubmittedEvent {
	return &DonationSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDonationSubmitted, AggregateTypeDonation, d.ID),
		MemberID:        d.MemberID,
		Amount:          d.Amount,
		Method:          d.Method,
	}
}

// DonationStatusChangedEvent is published when an admin approves or rejects a donation
type DonationStatusChangedEvent struct {
	shared.BaseDomainEvent
	MemberID  uuid.UUID       `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	OldStatus DonationStatus  `json:"old_status"`
	NewStatus DonationStatus  `json:"new_status"`
}

// NewDonationStatusChangedEvent creates a new DonationStatusChangedEvent
func NewDonationStatusChangedEvent(d *Donation, old DonationStatus) *DonationStatusChangedEvent {
	return &DonationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDonationStatusChanged, AggregateTypeDonation, d.ID),
		MemberID:        d.MemberID,
		Amount:          d.Amount,
		OldStatus:       old,
		NewStatus:       d.Status,
	}
}

// DonationDeletedEvent is published after a donation is removed
type DonationDeletedEvent struct {
	shared.BaseDomainEvent
	MemberID uuid.UUID `json:"member_id"`
}

// NewDonationDeletedEvent creates a new DonationDeletedEvent
func NewDonationDeletedEvent(d *Donation) *DonationDeletedEvent {
	return &DonationDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDonationDeleted, AggregateTypeDonation, d.ID),
		MemberID:        d.MemberID,
	}
}

package fund

import (
	"regexp"
	"strings"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the channel a member paid through
type PaymentMethod string

const (
	PaymentMethodBkash  PaymentMethod = "Bkash"
	PaymentMethodNagad  PaymentMethod = "Nagad"
	PaymentMethodRocket PaymentMethod = "Rocket"
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodBank   PaymentMethod = "Bank"
)

// AllPaymentMethods lists the accepted payment methods in display order
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodBkash, PaymentMethodNagad, PaymentMethodRocket, PaymentMethodCash, PaymentMethodBank}
}

// IsValid checks if the method is accepted
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBkash, PaymentMethodNagad, PaymentMethodRocket, PaymentMethodCash, PaymentMethodBank:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// DonationType classifies a payment
type DonationType string

const (
	DonationTypeSubscription DonationType = "Subscription"
	DonationTypeGeneral      DonationType = "General"
	DonationTypeManual       DonationType = "Manual"
)

// IsValid checks if the type is known
func (t DonationType) IsValid() bool {
	switch t {
	case DonationTypeSubscription, DonationTypeGeneral, DonationTypeManual:
		return true
	}
	return false
}

// String returns the string representation of DonationType
func (t DonationType) String() string {
	return string(t)
}

// DonationStatus is the verification state of a donation
type DonationStatus string

const (
	DonationStatusPending  DonationStatus = "Pending"
	DonationStatusApproved DonationStatus = "Approved"
	DonationStatusRejected DonationStatus = "Rejected"
)

// IsValid checks if the status is known
func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationStatusPending, DonationStatusApproved, DonationStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed
func (s DonationStatus) IsTerminal() bool {
	return s == DonationStatusRejected
}

// CanTransitionTo reports whether a reviewer may move a donation from s to next
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	switch s {
	case DonationStatusPending:
		return next == DonationStatusApproved || next == DonationStatusRejected
	case DonationStatusApproved:
		return next == DonationStatusRejected
	}
	return false
}

// String returns the string representation of DonationStatus
func (s DonationStatus) String() string {
	return string(s)
}

var monthLabelRegex = regexp.MustCompile(`^(January|February|March|April|May|June|July|August|September|October|November|December) [0-9]{4}$`)

// Donation is a member payment submission awaiting or past admin verification
type Donation struct {
	shared.BaseAggregateRoot
	MemberID      uuid.UUID
	MemberName    string
	Amount        decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	ProofRef      string
	Type          DonationType
	PaymentMonth  string
	Status        DonationStatus
}

// DonationInput carries the fields of a new submission
type DonationInput struct {
	MemberID      uuid.UUID
	MemberName    string
	Amount        decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	Type          DonationType
	PaymentMonth  string
}

// NewDonation creates a pending donation
func NewDonation(in DonationInput) (*Donation, error) {
	if in.MemberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !in.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	trx := strings.TrimSpace(in.TransactionID)
	if in.Method != PaymentMethodCash && trx == "" {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_ID", "Transaction ID is required")
	}
	if len(trx) > 100 {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_ID", "Transaction ID cannot exceed 100 characters")
	}
	if in.Type == "" {
		in.Type = DonationTypeSubscription
	}
	if !in.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Donation type is not valid")
	}
	month := strings.Join(strings.Fields(in.PaymentMonth), " ")
	if month != "" && !monthLabelRegex.MatchString(month) {
		return nil, shared.NewDomainError("INVALID_MONTH", "Payment month must look like \"January 2025\"")
	}

	d := &Donation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MemberID:          in.MemberID,
		MemberName:        strings.TrimSpace(in.MemberName),
		Amount:            in.Amount,
		Method:            in.Method,
		TransactionID:     trx,
		Type:              in.Type,
		PaymentMonth:      month,
		Status:            DonationStatusPending,
	}
	d.AddDomainEvent(NewDonationSubmittedEvent(d))
	return d, nil
}

// AttachProof records where the payment screenshot is stored
func (d *Donation) AttachProof(ref string) {
	d.ProofRef = ref
	d.Touch()
}

// Approve marks the donation as verified
func (d *Donation) Approve() error {
	return d.SetStatus(DonationStatusApproved)
}

// Reject marks the donation as refused. Rejection is final.
func (d *Donation) Reject() error {
	return d.SetStatus(DonationStatusRejected)
}

// SetStatus applies a reviewer decision. Re-applying the current status is a no-op.
func (d *Donation) SetStatus(next DonationStatus) error {
	if !next.IsValid() || next == DonationStatusPending {
		return shared.NewDomainError("INVALID_STATUS", "Donation status decision must be Approved or Rejected")
	}
	if d.Status == next {
		return nil
	}
	if !d.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_STATE", "Cannot change donation from "+string(d.Status)+" to "+string(next))
	}

	old := d.Status
	d.Status = next
	d.Touch()
	d.IncrementVersion()
	d.AddDomainEvent(NewDonationStatusChangedEvent(d, old))
	return nil
}

// IsApproved reports whether the donation counts toward income
func (d *Donation) IsApproved() bool {
	return d.Status == DonationStatusApproved
}

// IsMonthLabel reports whether s looks like "January 2025"
func IsMonthLabel(s string) bool {
	return monthLabelRegex.MatchString(s)
}

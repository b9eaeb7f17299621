package fund

import (
	"context"
	"time"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DonationFilter narrows donation queries
type DonationFilter struct {
	shared.Filter
	MemberID *uuid.UUID
	Status   *DonationStatus
	Method   *PaymentMethod
}

// DonationRepository defines persistence for donations
type DonationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Donation, error)

	// FindAll lists donations; an unpaged filter returns every row
	FindAll(ctx context.Context, filter DonationFilter) ([]Donation, error)

	Count(ctx context.Context, filter DonationFilter) (int64, error)

	Save(ctx context.Context, donation *Donation) error

	// UpdateStatus moves a donation from oldStatus to its current status in a
	// single conditional statement. It returns shared.ErrConcurrencyConflict
	// when the stored status no longer equals oldStatus.
	UpdateStatus(ctx context.Context, donation *Donation, oldStatus DonationStatus) error

	// Delete removes a donation. Deleting a missing donation is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerEntryFilter narrows ledger queries
type LedgerEntryFilter struct {
	shared.Filter
	Type *EntryType
	From *time.Time
	To   *time.Time
}

// LedgerEntryRepository defines persistence for manual ledger entries
type LedgerEntryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindAll lists entries; an unpaged filter returns every row
	FindAll(ctx context.Context, filter LedgerEntryFilter) ([]LedgerEntry, error)

	Count(ctx context.Context, filter LedgerEntryFilter) (int64, error)

	Save(ctx context.Context, entry *LedgerEntry) error

	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

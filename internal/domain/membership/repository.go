package membership

import (
	"context"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MemberFilter narrows member queries
type MemberFilter struct {
	shared.Filter
	Status        *MemberStatus
	Role          *Role
	CommitteeOnly bool
}

// MemberRepository defines persistence for the Member aggregate
type MemberRepository interface {
	// FindByID loads a member including its message log
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// FindByEmail loads a member by normalized email
	FindByEmail(ctx context.Context, email string) (*Member, error)

	// ExistsByEmail checks whether an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsAdmin checks whether at least one admin account exists
	ExistsAdmin(ctx context.Context) (bool, error)

	// FindAll lists members without their message logs.
	// Search matches name, phone or email.
	FindAll(ctx context.Context, filter MemberFilter) ([]Member, error)

	// Count counts members matching the filter
	Count(ctx context.Context, filter MemberFilter) (int64, error)

	// Save creates or updates a member (messages are not touched)
	Save(ctx context.Context, member *Member) error

	// UpdateStatus writes status and approved in a single statement
	UpdateStatus(ctx context.Context, member *Member) error

	// AppendMessage stores one message at the end of the member's log
	AppendMessage(ctx context.Context, memberID uuid.UUID, msg Message) error

	// Delete removes a member and its message log. Deleting a missing member is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

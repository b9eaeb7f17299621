package membership

import (
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeMember is the aggregate type name for Member
const AggregateTypeMember = "Member"

// Member domain event types
const (
	EventTypeMemberRegistered     = "MemberRegistered"
	EventTypeMemberStatusChanged  = "MemberStatusChanged"
	EventTypeMemberProfileUpdated = "MemberProfileUpdated"
	EventTypeMemberMessaged       = "MemberMessaged"
	EventTypeMemberDeleted        = "MemberDeleted"
)

// MemberRegisteredEvent is published when a membership application is submitted
type MemberRegisteredEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewMemberRegisteredEvent creates a new MemberRegisteredEvent
func NewMemberRegisteredEvent(m *Member) *MemberRegisteredEvent {
	return &MemberRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberRegistered, AggregateTypeMember, m.ID),
		Name:            m.Name,
		Email:           m.Email,
	}
}

// MemberStatusChangedEvent is published when a reviewer approves or rejects a member
type MemberStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus MemberStatus `json:"old_status"`
	NewStatus MemberStatus `json:"new_status"`
}

// NewMemberStatusChangedEvent creates a new MemberStatusChangedEvent
func NewMemberStatusChangedEvent(m *Member, old MemberStatus) *MemberStatusChangedEvent {
	return &MemberStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberStatusChanged, AggregateTypeMember, m.ID),
		OldStatus:       old,
		NewStatus:       m.Status,
	}
}

// MemberProfileUpdatedEvent is published after an admin edits dues terms or the profile
type MemberProfileUpdatedEvent struct {
	shared.BaseDomainEvent
	Position string `json:"position"`
}

// NewMemberProfileUpdatedEvent creates a new MemberProfileUpdatedEvent
func NewMemberProfileUpdatedEvent(m *Member) *MemberProfileUpdatedEvent {
	return &MemberProfileUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberProfileUpdated, AggregateTypeMember, m.ID),
		Position:        m.Position,
	}
}

// MemberMessagedEvent is published when a message is appended to a member's log
type MemberMessagedEvent struct {
	shared.BaseDomainEvent
	MessageID uuid.UUID `json:"message_id"`
}

// NewMemberMessagedEvent creates a new MemberMessagedEvent
func NewMemberMessagedEvent(m *Member, msg Message) *MemberMessagedEvent {
	return &MemberMessagedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberMessaged, AggregateTypeMember, m.ID),
		MessageID:       msg.ID,
	}
}

// MemberDeletedEvent is published after a member account is removed
type MemberDeletedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewMemberDeletedEvent creates a new MemberDeletedEvent
func NewMemberDeletedEvent(m *Member) *MemberDeletedEvent {
	return &MemberDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberDeleted, AggregateTypeMember, m.ID),
		Email:           m.Email,
	}
}

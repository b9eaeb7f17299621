package content

import (
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type names
const (
	AggregateTypeNotice   = "Notice"
	AggregateTypeActivity = "Activity"
)

// Content domain event types
const (
	EventTypeNoticePublished   = "NoticePublished"
	EventTypeNoticeUpdated     = "NoticeUpdated"
	EventTypeNoticeDeleted     = "NoticeDeleted"
	EventTypeActivityPublished = "ActivityPublished"
	EventTypeActivityUpdated   = "ActivityUpdated"
	EventTypeActivityDeleted   = "ActivityDeleted"
)

// ContentChangedEvent is published on any notice or activity write
type ContentChangedEvent struct {
	shared.BaseDomainEvent
}

// NewContentChangedEvent creates a new ContentChangedEvent
func NewContentChangedEvent(eventType, aggType string, id uuid.UUID) *ContentChangedEvent {
	return &ContentChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, id),
	}
}

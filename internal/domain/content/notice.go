package content

import (
	"strings"
	"time"

	"github.com/comfund/backend/internal/domain/shared"
)

// NoticePriority controls how prominently a notice is shown
type NoticePriority string

const (
	NoticePriorityNormal NoticePriority = "Normal"
	NoticePriorityHigh   NoticePriority = "High"
)

// IsValid checks if the priority is known
func (p NoticePriority) IsValid() bool {
	return p == NoticePriorityNormal || p == NoticePriorityHigh
}

// String returns the string representation of NoticePriority
func (p NoticePriority) String() string {
	return string(p)
}

// Notice is an announcement shown to members
type Notice struct {
	shared.BaseAggregateRoot
	Title    string
	Content  string
	Date     time.Time
	Priority NoticePriority
}

// NoticeInput carries the editable fields of a notice
type NoticeInput struct {
	Title    string
	Content  string
	Date     time.Time
	Priority NoticePriority
}

// NewNotice creates a notice. A zero date means today.
func NewNotice(in NoticeInput) (*Notice, error) {
	n := &Notice{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := n.apply(in); err != nil {
		return nil, err
	}
	n.AddDomainEvent(NewContentChangedEvent(EventTypeNoticePublished, AggregateTypeNotice, n.ID))
	return n, nil
}

// Update replaces the notice fields
func (n *Notice) Update(in NoticeInput) error {
	if err := n.apply(in); err != nil {
		return err
	}
	n.Touch()
	n.IncrementVersion()
	n.AddDomainEvent(NewContentChangedEvent(EventTypeNoticeUpdated, AggregateTypeNotice, n.ID))
	return nil
}

func (n *Notice) apply(in NoticeInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	body := strings.TrimSpace(in.Content)
	if body == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Content cannot be empty")
	}
	if in.Priority == "" {
		in.Priority = NoticePriorityNormal
	}
	if !in.Priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Priority must be Normal or High")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	n.Title = title
	n.Content = body
	n.Date = in.Date
	n.Priority = in.Priority
	return nil
}

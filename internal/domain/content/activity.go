package content

import (
	"strings"
	"time"

	"github.com/comfund/backend/internal/domain/shared"
)

// Activity is a post about an organization event
type Activity struct {
	shared.BaseAggregateRoot
	Title       string
	Description string
	Image       string
	Date        time.Time
	Location    string
}

// ActivityInput carries the editable fields of an activity
type ActivityInput struct {
	Title       string
	Description string
	Image       string
	Date        time.Time
	Location    string
}

// NewActivity creates an activity post. A zero date means today.
func NewActivity(in ActivityInput) (*Activity, error) {
	a := &Activity{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := a.apply(in); err != nil {
		return nil, err
	}
	a.AddDomainEvent(NewContentChangedEvent(EventTypeActivityPublished, AggregateTypeActivity, a.ID))
	return a, nil
}

// Update replaces the activity fields
func (a *Activity) Update(in ActivityInput) error {
	if err := a.apply(in); err != nil {
		return err
	}
	a.Touch()
	a.IncrementVersion()
	a.AddDomainEvent(NewContentChangedEvent(EventTypeActivityUpdated, AggregateTypeActivity, a.ID))
	return nil
}

// SetImage replaces the image reference
func (a *Activity) SetImage(ref string) {
	a.Image = ref
	a.Touch()
}

func (a *Activity) apply(in ActivityInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	location := strings.TrimSpace(in.Location)
	if len(location) > 200 {
		return shared.NewDomainError("INVALID_LOCATION", "Location cannot exceed 200 characters")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	a.Title = title
	a.Description = desc
	a.Image = strings.TrimSpace(in.Image)
	a.Date = in.Date
	a.Location = location
	return nil
}

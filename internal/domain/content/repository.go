package content

import (
	"context"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NoticeFilter narrows notice queries
type NoticeFilter struct {
	shared.Filter
	Priority *NoticePriority
}

// NoticeRepository defines persistence for notices
type NoticeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notice, error)
	FindAll(ctx context.Context, filter NoticeFilter) ([]Notice, error)
	Count(ctx context.Context, filter NoticeFilter) (int64, error)
	Save(ctx context.Context, notice *Notice) error
	// Delete removes a notice. Deleting a missing notice is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityRepository defines persistence for activity posts
type ActivityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Activity, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Activity, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, activity *Activity) error
	// Delete removes an activity. Deleting a missing activity is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

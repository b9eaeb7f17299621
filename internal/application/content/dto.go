package content

import (
	"strings"
	"time"

	"github.com/comfund/backend/internal/domain/content"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NoticeRequest creates or replaces a notice. Date accepts "2006-01-02" or
// RFC 3339 and defaults to today.
type NoticeRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required,max=10000"`
	Date     string `json:"date"`
	Priority string `json:"priority" binding:"omitempty,oneof=Normal High"`
}

// NoticeListFilter are the query parameters of the notice list
type NoticeListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
	Priority string `form:"priority" binding:"omitempty,oneof=Normal High"`
}

// NoticeResponse is a notice
type NoticeResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Date      time.Time `json:"date"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToNoticeResponse converts a domain notice
func ToNoticeResponse(n *content.Notice) NoticeResponse {
	return NoticeResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Date:      n.Date,
		Priority:  n.Priority.String(),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// ActivityRequest creates or replaces an activity post. Image takes a base64
// data URL when no multipart file is sent; leaving it empty keeps the current
// image unless RemoveImage is set.
type ActivityRequest struct {
	Title       string `json:"title" form:"title" binding:"required,max=200"`
	Description string `json:"description" form:"description" binding:"required,max=10000"`
	Date        string `json:"date" form:"date"`
	Location    string `json:"location" form:"location" binding:"max=200"`
	Image       string `json:"image" form:"image"`
	RemoveImage bool   `json:"removeImage" form:"removeImage"`
}

// ActivityListFilter are the query parameters of the activity list
type ActivityListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
}

// ActivityResponse is an activity post with its image address resolved
type ActivityResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToActivityResponse converts a domain activity
func ToActivityResponse(a *content.Activity, imageURL string) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		ImageURL:    imageURL,
		Date:        a.Date,
		Location:    a.Location,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func listFilter(page, pageSize int, search string) shared.Filter {
	f := shared.DefaultFilter()
	f.OrderBy = "date"
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	f.Search = strings.TrimSpace(search)
	return f
}

// parseDate reads "2006-01-02" in loc or RFC 3339. Empty means zero.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, shared.NewDomainError("INVALID_DATE", "Date must look like 2025-01-31")
}

// Package content holds the notice and activity board use cases.
package content

import (
	"context"
	"errors"
	"time"

	"github.com/comfund/backend/internal/domain/content"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoticeService manages notices
type NoticeService struct {
	repo      content.NoticeRepository
	publisher shared.EventPublisher
	location  *time.Location
	logger    *zap.Logger
}

// NewNoticeService creates a new NoticeService
func NewNoticeService(repo content.NoticeRepository, publisher shared.EventPublisher, location *time.Location, logger *zap.Logger) *NoticeService {
	return &NoticeService{repo: repo, publisher: publisher, location: location, logger: logger}
}

// List returns a page of notices, newest first
func (s *NoticeService) List(ctx context.Context, f NoticeListFilter) ([]NoticeResponse, int64, error) {
	filter := content.NoticeFilter{Filter: listFilter(f.Page, f.PageSize, f.Search)}
	if f.Priority != "" {
		p := content.NoticePriority(f.Priority)
		filter.Priority = &p
	}
	notices, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]NoticeResponse, len(notices))
	for i := range notices {
		out[i] = ToNoticeResponse(&notices[i])
	}
	return out, total, nil
}

// Get returns one notice
func (s *NoticeService) Get(ctx context.Context, id uuid.UUID) (*NoticeResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToNoticeResponse(n)
	return &resp, nil
}

// Create publishes a notice
func (s *NoticeService) Create(ctx context.Context, req NoticeRequest) (*NoticeResponse, error) {
	in, err := s.input(req)
	if err != nil {
		return nil, err
	}
	n, err := content.NewNotice(in)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, n)
}

// Update replaces a notice
func (s *NoticeService) Update(ctx context.Context, id uuid.UUID, req NoticeRequest) (*NoticeResponse, error) {
	in, err := s.input(req)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = n.Date
	}
	if err := n.Update(in); err != nil {
		return nil, err
	}
	return s.save(ctx, n)
}

// Delete removes a notice. A missing notice is not an error.
func (s *NoticeService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Notice deleted", zap.String("notice_id", id.String()))
	n.ClearDomainEvents()
	n.AddDomainEvent(content.NewContentChangedEvent(content.EventTypeNoticeDeleted, content.AggregateTypeNotice, id))
	publish(ctx, s.publisher, n, s.logger)
	return nil
}

func (s *NoticeService) input(req NoticeRequest) (content.NoticeInput, error) {
	date, err := parseDate(req.Date, s.location)
	if err != nil {
		return content.NoticeInput{}, err
	}
	return content.NoticeInput{
		Title:    req.Title,
		Content:  req.Content,
		Date:     date,
		Priority: content.NoticePriority(req.Priority),
	}, nil
}

func (s *NoticeService) save(ctx context.Context, n *content.Notice) (*NoticeResponse, error) {
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, err
	}
	s.logger.Info("Notice saved", zap.String("notice_id", n.ID.String()), zap.String("priority", n.Priority.String()))
	publish(ctx, s.publisher, n, s.logger)
	resp := ToNoticeResponse(n)
	return &resp, nil
}

func publish(ctx context.Context, pub shared.EventPublisher, aggregate shared.AggregateRoot, logger *zap.Logger) {
	if pub == nil {
		aggregate.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, pub, aggregate); err != nil {
		logger.Error("Failed to publish content events", zap.Error(err))
	}
}

package content

import (
	"context"
	"errors"
	"time"

	"github.com/comfund/backend/internal/domain/content"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityServiceConfig holds the activity board settings
type ActivityServiceConfig struct {
	Location     *time.Location
	MaxImageSize int64
}

// ActivityService manages activity posts and their images
type ActivityService struct {
	repo      content.ActivityRepository
	media     storage.MediaStorage
	publisher shared.EventPublisher
	config    ActivityServiceConfig
	logger    *zap.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(
	repo content.ActivityRepository,
	media storage.MediaStorage,
	publisher shared.EventPublisher,
	config ActivityServiceConfig,
	logger *zap.Logger,
) *ActivityService {
	return &ActivityService{repo: repo, media: media, publisher: publisher, config: config, logger: logger}
}

// List returns a page of activities, newest first
func (s *ActivityService) List(ctx context.Context, f ActivityListFilter) ([]ActivityResponse, int64, error) {
	filter := listFilter(f.Page, f.PageSize, f.Search)
	activities, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ActivityResponse, len(activities))
	for i := range activities {
		out[i] = s.response(ctx, &activities[i])
	}
	return out, total, nil
}

// Get returns one activity
func (s *ActivityService) Get(ctx context.Context, id uuid.UUID) (*ActivityResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.response(ctx, a)
	return &resp, nil
}

// Create posts an activity. upload takes precedence over req.Image.
func (s *ActivityService) Create(ctx context.Context, req ActivityRequest, upload *storage.Upload) (*ActivityResponse, error) {
	in, err := s.input(req)
	if err != nil {
		return nil, err
	}
	upload, err = s.resolveUpload(req, upload)
	if err != nil {
		return nil, err
	}
	a, err := content.NewActivity(in)
	if err != nil {
		return nil, err
	}

	var ref string
	if upload != nil {
		ref, err = s.media.Put(ctx, storage.FolderActivities, upload.Data, upload.ContentType)
		if err != nil {
			return nil, err
		}
		a.SetImage(ref)
	}
	if err := s.repo.Save(ctx, a); err != nil {
		s.removeImage(ctx, ref)
		return nil, err
	}
	s.logger.Info("Activity posted", zap.String("activity_id", a.ID.String()), zap.Bool("has_image", ref != ""))
	publish(ctx, s.publisher, a, s.logger)

	resp := s.response(ctx, a)
	return &resp, nil
}

// Update replaces an activity. A new image replaces and removes the old one.
func (s *ActivityService) Update(ctx context.Context, id uuid.UUID, req ActivityRequest, upload *storage.Upload) (*ActivityResponse, error) {
	in, err := s.input(req)
	if err != nil {
		return nil, err
	}
	upload, err = s.resolveUpload(req, upload)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := a.Image
	if in.Date.IsZero() {
		in.Date = a.Date
	}
	in.Image = old
	if req.RemoveImage {
		in.Image = ""
	}
	if err := a.Update(in); err != nil {
		return nil, err
	}

	var ref string
	if upload != nil {
		ref, err = s.media.Put(ctx, storage.FolderActivities, upload.Data, upload.ContentType)
		if err != nil {
			return nil, err
		}
		a.SetImage(ref)
	}
	if err := s.repo.Save(ctx, a); err != nil {
		s.removeImage(ctx, ref)
		return nil, err
	}
	if old != "" && old != a.Image {
		s.removeImage(ctx, old)
	}
	s.logger.Info("Activity updated", zap.String("activity_id", id.String()))
	publish(ctx, s.publisher, a, s.logger)

	resp := s.response(ctx, a)
	return &resp, nil
}

// Delete removes an activity and its image. A missing activity is not an error.
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, a.Image)
	s.logger.Info("Activity deleted", zap.String("activity_id", id.String()))

	a.ClearDomainEvents()
	a.AddDomainEvent(content.NewContentChangedEvent(content.EventTypeActivityDeleted, content.AggregateTypeActivity, id))
	publish(ctx, s.publisher, a, s.logger)
	return nil
}

func (s *ActivityService) input(req ActivityRequest) (content.ActivityInput, error) {
	date, err := parseDate(req.Date, s.config.Location)
	if err != nil {
		return content.ActivityInput{}, err
	}
	return content.ActivityInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
	}, nil
}

func (s *ActivityService) resolveUpload(req ActivityRequest, upload *storage.Upload) (*storage.Upload, error) {
	if upload != nil || req.Image == "" || req.RemoveImage {
		return upload, nil
	}
	return storage.DecodeDataURL(req.Image, s.config.MaxImageSize)
}

func (s *ActivityService) response(ctx context.Context, a *content.Activity) ActivityResponse {
	var url string
	if a.Image != "" {
		var err error
		url, err = s.media.URL(ctx, a.Image)
		if err != nil {
			s.logger.Warn("Cannot resolve activity image", zap.String("ref", a.Image), zap.Error(err))
		}
	}
	return ToActivityResponse(a, url)
}

func (s *ActivityService) removeImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.media.Delete(ctx, ref); err != nil {
		s.logger.Warn("Failed to delete activity image", zap.String("ref", ref), zap.Error(err))
	}
}

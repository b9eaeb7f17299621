package content

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/comfund/backend/internal/domain/content"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockNoticeRepository is a mock implementation of content.NoticeRepository
type MockNoticeRepository struct {
	mock.Mock
}

func (m *MockNoticeRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Notice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Notice), args.Error(1)
}

func (m *MockNoticeRepository) FindAll(ctx context.Context, filter content.NoticeFilter) ([]content.Notice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]content.Notice), args.Error(1)
}

func (m *MockNoticeRepository) Count(ctx context.Context, filter content.NoticeFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoticeRepository) Save(ctx context.Context, n *content.Notice) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNoticeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockActivityRepository is a mock implementation of content.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Activity), args.Error(1)
}

func (m *MockActivityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.Activity, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]content.Activity), args.Error(1)
}

func (m *MockActivityRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityRepository) Save(ctx context.Context, a *content.Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

func TestNoticeService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNoticeRepository)
	pub := &recordingPublisher{}
	svc := NewNoticeService(repo, pub, time.UTC, zap.NewNop())

	repo.On("Save", ctx, mock.AnythingOfType("*content.Notice")).Return(nil)

	resp, err := svc.Create(ctx, NoticeRequest{Title: "General meeting", Content: "Friday after Jumma", Date: "2025-04-04", Priority: "High"})
	require.NoError(t, err)
	assert.Equal(t, "High", resp.Priority)
	assert.Equal(t, time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC), resp.Date)
	assert.Equal(t, []string{content.EventTypeNoticePublished}, pub.types())

	_, err = svc.Create(ctx, NoticeRequest{Title: "x", Content: "y", Date: "tomorrow"})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_DATE", de.Code)
}

func TestNoticeService_Update_KeepsDate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNoticeRepository)
	svc := NewNoticeService(repo, nil, time.UTC, zap.NewNop())

	n, err := content.NewNotice(content.NoticeInput{Title: "Old", Content: "Body", Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	repo.On("FindByID", ctx, n.ID).Return(n, nil)
	repo.On("Save", ctx, n).Return(nil)

	resp, err := svc.Update(ctx, n.ID, NoticeRequest{Title: "New", Content: "Body"})
	require.NoError(t, err)
	assert.Equal(t, "New", resp.Title)
	assert.Equal(t, "Normal", resp.Priority)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), resp.Date)
	assert.Empty(t, n.GetDomainEvents())
}

func TestNoticeService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNoticeRepository)
	pub := &recordingPublisher{}
	svc := NewNoticeService(repo, pub, time.UTC, zap.NewNop())

	n, err := content.NewNotice(content.NoticeInput{Title: "T", Content: "C", Priority: content.NoticePriorityHigh})
	require.NoError(t, err)
	high := mock.MatchedBy(func(f content.NoticeFilter) bool {
		return f.Priority != nil && *f.Priority == content.NoticePriorityHigh && f.OrderBy == "date"
	})
	repo.On("FindAll", ctx, high).Return([]content.Notice{*n}, nil)
	repo.On("Count", ctx, high).Return(int64(1), nil)

	items, total, err := svc.List(ctx, NoticeListFilter{Priority: "High"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)

	repo.On("FindByID", ctx, n.ID).Return(n, nil)
	repo.On("Delete", ctx, n.ID).Return(nil)
	require.NoError(t, svc.Delete(ctx, n.ID))
	assert.Equal(t, []string{content.EventTypeNoticeDeleted}, pub.types())

	missing := uuid.New()
	repo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, missing))
}

type activityFixture struct {
	repo  *MockActivityRepository
	media *storage.StubMediaStorage
	pub   *recordingPublisher
	svc   *ActivityService
}

func newActivityFixture() *activityFixture {
	f := &activityFixture{
		repo:  new(MockActivityRepository),
		media: storage.NewStubMediaStorage(),
		pub:   &recordingPublisher{},
	}
	f.svc = NewActivityService(f.repo, f.media, f.pub, ActivityServiceConfig{Location: time.UTC, MaxImageSize: 1 << 20}, zap.NewNop())
	return f
}

func TestActivityService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("with data url image", func(t *testing.T) {
		f := newActivityFixture()
		f.repo.On("Save", ctx, mock.AnythingOfType("*content.Activity")).Return(nil)

		resp, err := f.svc.Create(ctx, ActivityRequest{
			Title:       "Blood donation camp",
			Description: "Free screening",
			Location:    "Community hall",
			Image:       pngDataURL(),
		}, nil)
		require.NoError(t, err)

		saved := f.repo.Calls[0].Arguments.Get(1).(*content.Activity)
		assert.True(t, f.media.Has(saved.Image))
		assert.Equal(t, f.media.BaseURL+"/"+saved.Image, resp.ImageURL)
		assert.Equal(t, []string{content.EventTypeActivityPublished}, f.pub.types())
	})

	t.Run("bad image", func(t *testing.T) {
		f := newActivityFixture()
		_, err := f.svc.Create(ctx, ActivityRequest{Title: "T", Description: "D", Image: "not-a-data-url"}, nil)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_UPLOAD", de.Code)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("failed save removes image", func(t *testing.T) {
		f := newActivityFixture()
		f.repo.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := f.svc.Create(ctx, ActivityRequest{Title: "T", Description: "D"}, &storage.Upload{Data: pngBytes, ContentType: "image/png"})
		require.Error(t, err)
		saved := f.repo.Calls[0].Arguments.Get(1).(*content.Activity)
		assert.False(t, f.media.Has(saved.Image))
	})
}

func TestActivityService_Update(t *testing.T) {
	ctx := context.Background()

	existing := func(t *testing.T, f *activityFixture) *content.Activity {
		ref, err := f.media.Put(ctx, storage.FolderActivities, pngBytes, "image/png")
		require.NoError(t, err)
		a, err := content.NewActivity(content.ActivityInput{
			Title: "Old", Description: "Desc", Image: ref, Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		a.ClearDomainEvents()
		f.repo.On("FindByID", ctx, a.ID).Return(a, nil)
		f.repo.On("Save", ctx, a).Return(nil)
		return a
	}

	t.Run("keeps image when none sent", func(t *testing.T) {
		f := newActivityFixture()
		a := existing(t, f)
		ref := a.Image

		resp, err := f.svc.Update(ctx, a.ID, ActivityRequest{Title: "New", Description: "Desc"}, nil)
		require.NoError(t, err)
		assert.Equal(t, ref, a.Image)
		assert.True(t, f.media.Has(ref))
		assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), resp.Date)
	})

	t.Run("replaces image", func(t *testing.T) {
		f := newActivityFixture()
		a := existing(t, f)
		old := a.Image

		_, err := f.svc.Update(ctx, a.ID, ActivityRequest{Title: "New", Description: "Desc"}, &storage.Upload{Data: pngBytes, ContentType: "image/png"})
		require.NoError(t, err)
		assert.NotEqual(t, old, a.Image)
		assert.False(t, f.media.Has(old))
		assert.True(t, f.media.Has(a.Image))
	})

	t.Run("removes image", func(t *testing.T) {
		f := newActivityFixture()
		a := existing(t, f)
		old := a.Image

		resp, err := f.svc.Update(ctx, a.ID, ActivityRequest{Title: "New", Description: "Desc", RemoveImage: true}, nil)
		require.NoError(t, err)
		assert.Empty(t, a.Image)
		assert.Empty(t, resp.ImageURL)
		assert.False(t, f.media.Has(old))
	})
}

func TestActivityService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newActivityFixture()
	ref, err := f.media.Put(ctx, storage.FolderActivities, pngBytes, "image/png")
	require.NoError(t, err)
	a, err := content.NewActivity(content.ActivityInput{Title: "T", Description: "D", Image: ref})
	require.NoError(t, err)
	a.ClearDomainEvents()

	f.repo.On("FindByID", ctx, a.ID).Return(a, nil)
	f.repo.On("Delete", ctx, a.ID).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, a.ID))
	assert.False(t, f.media.Has(ref))
	assert.Equal(t, []string{content.EventTypeActivityDeleted}, f.pub.types())
}

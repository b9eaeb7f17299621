package fund

import (
	"context"
	"errors"
	"testing"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type donationFixture struct {
	donations *MockDonationRepository
	members   *MockMemberRepository
	media     *storage.StubMediaStorage
	publisher *recordingPublisher
	metrics   *recordingMetrics
	svc       *DonationService
}

func newDonationFixture() *donationFixture {
	f := &donationFixture{
		donations: new(MockDonationRepository),
		members:   new(MockMemberRepository),
		media:     storage.NewStubMediaStorage(),
		publisher: &recordingPublisher{},
		metrics:   newRecordingMetrics(),
	}
	f.svc = NewDonationService(f.donations, f.members, f.media, f.publisher, f.metrics, zap.NewNop())
	return f
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDonationService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores proof and publishes", func(t *testing.T) {
		f := newDonationFixture()
		m := approvedMember(t, "payer")
		f.members.On("FindByID", ctx, m.ID).Return(m, nil)
		f.donations.On("Save", ctx, mock.AnythingOfType("*fund.Donation")).Return(nil)

		resp, err := f.svc.Submit(ctx, m.ID, SubmitDonationRequest{
			Amount:        decimal.NewFromInt(500),
			Method:        "Bkash",
			TransactionID: "8N7A6B5C",
			PaymentMonth:  "March 2025",
		}, &storage.Upload{Data: pngHeader, ContentType: "image/png"})
		require.NoError(t, err)

		assert.Equal(t, "Pending", resp.Status)
		assert.Equal(t, "Subscription", resp.Type)
		assert.Equal(t, m.Name, resp.MemberName)
		require.NotEmpty(t, resp.ProofURL)

		saved := f.donations.Calls[0].Arguments.Get(1).(*fund.Donation)
		assert.True(t, f.media.Has(saved.ProofRef))
		assert.Equal(t, []string{"Bkash"}, f.metrics.submitted)
		assert.Equal(t, []string{fund.EventTypeDonationSubmitted}, f.publisher.types())
	})

	t.Run("pending member is refused", func(t *testing.T) {
		f := newDonationFixture()
		m, err := membership.NewMember("Newbie", "new@example.org", "password123", decimal.NewFromInt(500))
		require.NoError(t, err)
		f.members.On("FindByID", ctx, m.ID).Return(m, nil)

		_, err = f.svc.Submit(ctx, m.ID, SubmitDonationRequest{Amount: decimal.NewFromInt(500), Method: "Cash"}, nil)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "FORBIDDEN", de.Code)
		f.donations.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid amount", func(t *testing.T) {
		f := newDonationFixture()
		m := approvedMember(t, "zero")
		f.members.On("FindByID", ctx, m.ID).Return(m, nil)

		_, err := f.svc.Submit(ctx, m.ID, SubmitDonationRequest{Amount: decimal.Zero, Method: "Cash"}, nil)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_AMOUNT", de.Code)
	})

	t.Run("failed save removes the uploaded proof", func(t *testing.T) {
		f := newDonationFixture()
		m := approvedMember(t, "unlucky")
		f.members.On("FindByID", ctx, m.ID).Return(m, nil)
		f.donations.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := f.svc.Submit(ctx, m.ID, SubmitDonationRequest{
			Amount: decimal.NewFromInt(100), Method: "Nagad", TransactionID: "NG-1",
		}, &storage.Upload{Data: pngHeader, ContentType: "image/png"})
		require.Error(t, err)

		saved := f.donations.Calls[0].Arguments.Get(1).(*fund.Donation)
		require.NotEmpty(t, saved.ProofRef)
		assert.False(t, f.media.Has(saved.ProofRef))
		assert.Empty(t, f.metrics.submitted)
	})
}

func TestDonationService_SetStatus(t *testing.T) {
	ctx := context.Background()
	reviewer := uuid.New()

	t.Run("approve", func(t *testing.T) {
		f := newDonationFixture()
		d := donation(t, uuid.New(), 500, fund.DonationStatusPending)
		f.donations.On("FindByID", ctx, d.ID).Return(&d, nil)
		f.donations.On("UpdateStatus", ctx, &d, fund.DonationStatusPending).Return(nil)

		resp, err := f.svc.SetStatus(ctx, reviewer, d.ID, fund.DonationStatusApproved)
		require.NoError(t, err)
		assert.Equal(t, "Approved", resp.Status)
		assert.Equal(t, []string{"donation:Approved"}, f.metrics.decisions)
		assert.Equal(t, []string{fund.EventTypeDonationStatusChanged}, f.publisher.types())
	})

	t.Run("repeating the status is a no-op", func(t *testing.T) {
		f := newDonationFixture()
		d := donation(t, uuid.New(), 500, fund.DonationStatusApproved)
		f.donations.On("FindByID", ctx, d.ID).Return(&d, nil)

		resp, err := f.svc.SetStatus(ctx, reviewer, d.ID, fund.DonationStatusApproved)
		require.NoError(t, err)
		assert.Equal(t, "Approved", resp.Status)
		f.donations.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		f := newDonationFixture()
		d := donation(t, uuid.New(), 500, fund.DonationStatusRejected)
		f.donations.On("FindByID", ctx, d.ID).Return(&d, nil)

		_, err := f.svc.SetStatus(ctx, reviewer, d.ID, fund.DonationStatusApproved)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newDonationFixture()
		d := donation(t, uuid.New(), 500, fund.DonationStatusPending)
		f.donations.On("FindByID", ctx, d.ID).Return(&d, nil)
		f.donations.On("UpdateStatus", ctx, &d, fund.DonationStatusPending).Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.SetStatus(ctx, reviewer, d.ID, fund.DonationStatusRejected)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Empty(t, f.publisher.events)
	})
}

func TestDonationService_ListForMember(t *testing.T) {
	ctx := context.Background()
	f := newDonationFixture()
	memberID := uuid.New()
	d := donation(t, memberID, 500, fund.DonationStatusPending)

	matchMember := mock.MatchedBy(func(filter fund.DonationFilter) bool {
		return filter.MemberID != nil && *filter.MemberID == memberID && filter.PageSize == 20
	})
	f.donations.On("FindAll", ctx, matchMember).Return([]fund.Donation{d}, nil)
	f.donations.On("Count", ctx, matchMember).Return(int64(1), nil)

	items, total, err := f.svc.ListForMember(ctx, memberID, DonationListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, d.ID, items[0].ID)
	assert.Empty(t, items[0].ProofURL)
}

func TestDonationService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes proof and publishes", func(t *testing.T) {
		f := newDonationFixture()
		ref, err := f.media.Put(ctx, storage.FolderProofs, pngHeader, "image/png")
		require.NoError(t, err)
		d := donation(t, uuid.New(), 500, fund.DonationStatusApproved)
		d.AttachProof(ref)

		f.donations.On("FindByID", ctx, d.ID).Return(&d, nil)
		f.donations.On("Delete", ctx, d.ID).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, d.ID))
		assert.False(t, f.media.Has(ref))
		assert.Equal(t, []string{fund.EventTypeDonationDeleted}, f.publisher.types())
	})

	t.Run("missing donation", func(t *testing.T) {
		f := newDonationFixture()
		id := uuid.New()
		f.donations.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		require.NoError(t, f.svc.Delete(ctx, id))
		f.donations.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDonation(t *testing.T, memberID uuid.UUID, amount int64, method fund.PaymentMethod) *fund.Donation {
	t.Helper()
	d, err := fund.NewDonation(fund.DonationInput{
		MemberID:      memberID,
		MemberName:    "Rahim",
		Amount:        decimal.NewFromInt(amount),
		Method:        method,
		TransactionID: "TX" + uuid.NewString()[:8],
		PaymentMonth:  "March 2025",
	})
	require.NoError(t, err)
	return d
}

func TestGormDonationRepository_CRUD(t *testing.T) {
	repo := NewGormDonationRepository(setupTestDB(t))
	ctx := context.Background()
	memberID := uuid.New()

	d := newTestDonation(t, memberID, 500, fund.PaymentMethodBkash)
	d.AttachProof("https://cdn.example.com/proof.png")
	require.NoError(t, repo.Save(ctx, d))
	require.NoError(t, repo.Save(ctx, newTestDonation(t, memberID, 300, fund.PaymentMethodCash)))
	require.NoError(t, repo.Save(ctx, newTestDonation(t, uuid.New(), 700, fund.PaymentMethodNagad)))

	got, err := repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, fund.DonationStatusPending, got.Status)
	assert.Equal(t, fund.DonationTypeSubscription, got.Type)
	assert.Equal(t, "https://cdn.example.com/proof.png", got.ProofRef)

	mine, err := repo.FindAll(ctx, fund.DonationFilter{MemberID: &memberID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	method := fund.PaymentMethodNagad
	n, err := repo.Count(ctx, fund.DonationFilter{Method: &method})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, d.ID))
	_, err = repo.FindByID(ctx, d.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, repo.Delete(ctx, d.ID))
}

func TestGormDonationRepository_UpdateStatus(t *testing.T) {
	repo := NewGormDonationRepository(setupTestDB(t))
	ctx := context.Background()

	d := newTestDonation(t, uuid.New(), 500, fund.PaymentMethodBkash)
	require.NoError(t, repo.Save(ctx, d))

	t.Run("applies transition", func(t *testing.T) {
		require.NoError(t, d.Approve())
		require.NoError(t, repo.UpdateStatus(ctx, d, fund.DonationStatusPending))

		got, err := repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, fund.DonationStatusApproved, got.Status)
		assert.Equal(t, d.Version, got.Version)
	})

	t.Run("stale old status conflicts", func(t *testing.T) {
		stale := *d
		stale.Status = fund.DonationStatusRejected
		err := repo.UpdateStatus(ctx, &stale, fund.DonationStatusPending)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("missing donation", func(t *testing.T) {
		ghost := newTestDonation(t, uuid.New(), 10, fund.PaymentMethodCash)
		require.NoError(t, ghost.Approve())
		assert.ErrorIs(t, repo.UpdateStatus(ctx, ghost, fund.DonationStatusPending), shared.ErrNotFound)
	})
}

func TestGormDonationRepository_ConcurrentReviewsSerialize(t *testing.T) {
	repo := NewGormDonationRepository(setupTestDB(t))
	ctx := context.Background()

	d := newTestDonation(t, uuid.New(), 500, fund.PaymentMethodRocket)
	require.NoError(t, repo.Save(ctx, d))

	approve := *d
	reject := *d
	require.NoError(t, approve.Approve())
	require.NoError(t, reject.Reject())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, cand := range []*fund.Donation{&approve, &reject} {
		wg.Add(1)
		go func(i int, cand *fund.Donation) {
			defer wg.Done()
			errs[i] = repo.UpdateStatus(ctx, cand, fund.DonationStatusPending)
		}(i, cand)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestGormDonationRepository_UpdateStatusStatement(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormDonationRepository(db)

	d := newTestDonation(t, uuid.New(), 500, fund.PaymentMethodBank)
	require.NoError(t, d.Approve())

	mock.ExpectExec(`UPDATE "donations" SET "status"=\$1,"updated_at"=\$2,"version"=\$3 WHERE id = \$4 AND status = \$5`).
		WithArgs(fund.DonationStatusApproved, sqlmock.AnyArg(), d.Version, d.ID, fund.DonationStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateStatus(context.Background(), d, fund.DonationStatusPending))
	assert.NoError(t, mock.ExpectationsWereMet())
}

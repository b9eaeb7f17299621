package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	membership.BcryptCost = bcrypt.MinCost
}

func newTestMember(t *testing.T, name, email string) *membership.Member {
	t.Helper()
	m, err := membership.NewMember(name, email, "secret123", decimal.NewFromInt(500))
	require.NoError(t, err)
	return m
}

func TestGormMemberRepository_SaveAndFind(t *testing.T) {
	repo := NewGormMemberRepository(setupTestDB(t))
	ctx := context.Background()

	m := newTestMember(t, "Rahim Uddin", "Rahim@Example.com")
	due := decimal.NewFromInt(120)
	m.SetManualDue(&due)
	require.NoError(t, m.SetPaidMonths([]string{"January 2025"}))
	require.NoError(t, repo.Save(ctx, m))

	t.Run("by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "rahim@example.com", got.Email)
		assert.Equal(t, membership.MemberStatusPending, got.Status)
		assert.True(t, got.MonthlyAmount.Equal(decimal.NewFromInt(500)))
		require.NotNil(t, got.ManualDue)
		assert.True(t, got.ManualDue.Equal(due))
		assert.Nil(t, got.ManualTotalPaid)
		assert.Equal(t, []string{"January 2025"}, got.PaidMonths)
		assert.True(t, got.Permissions.ViewFund)
		assert.Empty(t, got.Messages)
	})

	t.Run("by email is case insensitive", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, " RAHIM@example.COM ")
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
	})

	t.Run("missing member", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := newTestMember(t, "Other", "rahim@example.com")
		assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.ExistsByEmail(ctx, "rahim@example.com")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsAdmin(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGormMemberRepository_SaveDoesNotOverwriteStatus(t *testing.T) {
	repo := NewGormMemberRepository(setupTestDB(t))
	ctx := context.Background()

	m := newTestMember(t, "Karim", "karim@example.com")
	require.NoError(t, repo.Save(ctx, m))

	// a stale copy loaded before the review
	stale, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)

	require.NoError(t, m.SetStatus(membership.MemberStatusApproved))
	require.NoError(t, repo.UpdateStatus(ctx, m))

	stale.SetPosition("treasurer")
	require.NoError(t, repo.Save(ctx, stale))

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, membership.MemberStatusApproved, got.Status)
	assert.True(t, got.Approved)
	assert.Equal(t, "Treasurer", got.Position)
}

func TestGormMemberRepository_FindAll(t *testing.T) {
	repo := NewGormMemberRepository(setupTestDB(t))
	ctx := context.Background()

	approved := newTestMember(t, "Alice Committee", "alice@example.com")
	require.NoError(t, approved.SetStatus(membership.MemberStatusApproved))
	approved.SetPosition("President")
	require.NoError(t, repo.Save(ctx, approved))

	plain := newTestMember(t, "Bob Member", "bob@example.com")
	require.NoError(t, plain.SetStatus(membership.MemberStatusApproved))
	require.NoError(t, repo.Save(ctx, plain))

	pending := newTestMember(t, "Carol Pending", "carol@example.com")
	pending.SetPosition("Secretary")
	require.NoError(t, repo.Save(ctx, pending))

	status := membership.MemberStatusApproved
	list, err := repo.FindAll(ctx, membership.MemberFilter{Filter: shared.Filter{OrderBy: "name", OrderDir: "asc"}, Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice Committee", list[0].Name)

	committee, err := repo.FindAll(ctx, membership.MemberFilter{CommitteeOnly: true})
	require.NoError(t, err)
	require.Len(t, committee, 1)
	assert.Equal(t, approved.ID, committee[0].ID)

	found, err := repo.FindAll(ctx, membership.MemberFilter{Filter: shared.Filter{Search: "CAROL"}})
	require.NoError(t, err)
	require.Len(t, found, 1)

	page, err := repo.FindAll(ctx, membership.MemberFilter{Filter: shared.Filter{Page: 2, PageSize: 2, OrderBy: "name", OrderDir: "asc"}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Carol Pending", page[0].Name)

	n, err := repo.Count(ctx, membership.MemberFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.Count(ctx, membership.MemberFilter{Filter: shared.Filter{Search: "100%"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormMemberRepository_Messages(t *testing.T) {
	repo := NewGormMemberRepository(setupTestDB(t))
	ctx := context.Background()

	m := newTestMember(t, "Dina", "dina@example.com")
	require.NoError(t, repo.Save(ctx, m))

	first, err := m.AppendMessage("Welcome", "")
	require.NoError(t, err)
	first.Date = time.Now().Add(-time.Hour)
	require.NoError(t, repo.AppendMessage(ctx, m.ID, first))

	second, err := m.AppendMessage("Dues reminder", "Treasurer")
	require.NoError(t, err)
	require.NoError(t, repo.AppendMessage(ctx, m.ID, second))

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Welcome", got.Messages[0].Text)
	assert.Equal(t, "Admin", got.Messages[0].Sender)
	assert.Equal(t, "Dues reminder", got.MessagesByRecency()[0].Text)

	require.NoError(t, repo.Delete(ctx, m.ID))
	_, err = repo.FindByID(ctx, m.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// deleting again is not an error
	assert.NoError(t, repo.Delete(ctx, m.ID))
}

func TestGormMemberRepository_UpdateStatusStatement(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormMemberRepository(db)

	m := newTestMember(t, "Eva", "eva@example.com")
	require.NoError(t, m.SetStatus(membership.MemberStatusRejected))

	t.Run("single update", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "members" SET "approved"=\$1,"status"=\$2,"updated_at"=\$3,"version"=\$4 WHERE id = \$5`).
			WithArgs(false, membership.MemberStatusRejected, sqlmock.AnyArg(), m.Version, m.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(context.Background(), m))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "members"`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateStatus(context.Background(), m), shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

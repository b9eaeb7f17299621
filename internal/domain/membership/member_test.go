package membership

import (
	"os"
	"testing"
	"time"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func newTestMember(t *testing.T) *Member {
	t.Helper()
	m, err := NewMember("Rahim Uddin", "Rahim@Example.com", "secret12", decimal.NewFromInt(500))
	require.NoError(t, err)
	m.ClearDomainEvents()
	return m
}

func TestNewMember(t *testing.T) {
	t.Run("creates pending member with defaults", func(t *testing.T) {
		m, err := NewMember("  Rahim   Uddin ", "Rahim@Example.com ", "secret12", decimal.NewFromInt(500))

		require.NoError(t, err)
		assert.Equal(t, "Rahim Uddin", m.Name)
		assert.Equal(t, "rahim@example.com", m.Email)
		assert.Equal(t, RoleMember, m.Role)
		assert.Equal(t, MemberStatusPending, m.Status)
		assert.False(t, m.Approved)
		assert.Equal(t, DefaultPosition, m.Position)
		assert.True(t, m.MonthlyAmount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, DefaultPermissions(), m.Permissions)
		assert.Equal(t, m.CreatedAt, m.JoiningDate)
		assert.NotEmpty(t, m.PasswordHash)
		assert.NotEqual(t, "secret12", m.PasswordHash)

		events := m.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*MemberRegisteredEvent)
		assert.True(t, ok)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewMember("  ", "a@b.com", "secret12", decimal.Zero)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Name cannot be empty")
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewMember("Rahim", "not-an-email", "secret12", decimal.Zero)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email")
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewMember("Rahim", "a@b.com", "123", decimal.Zero)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("rejects negative monthly amount", func(t *testing.T) {
		_, err := NewMember("Rahim", "a@b.com", "secret12", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestNewAdmin(t *testing.T) {
	m, err := NewAdmin("Site Admin", "admin@example.org", "strongpass")

	require.NoError(t, err)
	assert.True(t, m.IsAdmin())
	assert.True(t, m.IsApproved())
	assert.True(t, m.Can(PermissionManageMembers))
	assert.ElementsMatch(t, []string{"viewFund", "postActivities", "postNotices", "manageMembers"}, m.GrantedPermissions())
}

func TestMember_SetStatus(t *testing.T) {
	t.Run("approve keeps approved flag in sync", func(t *testing.T) {
		m := newTestMember(t)

		require.NoError(t, m.SetStatus(MemberStatusApproved))

		assert.Equal(t, MemberStatusApproved, m.Status)
		assert.True(t, m.Approved)
		assert.Equal(t, 2, m.Version)

		events := m.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*MemberStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, MemberStatusPending, evt.OldStatus)
		assert.Equal(t, MemberStatusApproved, evt.NewStatus)
	})

	t.Run("member can be re-reviewed", func(t *testing.T) {
		m := newTestMember(t)

		require.NoError(t, m.SetStatus(MemberStatusApproved))
		require.NoError(t, m.SetStatus(MemberStatusRejected))
		assert.Equal(t, MemberStatusRejected, m.Status)
		assert.False(t, m.Approved)

		require.NoError(t, m.SetStatus(MemberStatusApproved))
		assert.Equal(t, MemberStatusApproved, m.Status)
		assert.True(t, m.Approved)
	})

	t.Run("same decision is a no-op", func(t *testing.T) {
		m := newTestMember(t)
		require.NoError(t, m.SetStatus(MemberStatusRejected))
		m.ClearDomainEvents()
		version := m.Version

		require.NoError(t, m.SetStatus(MemberStatusRejected))
		assert.Empty(t, m.GetDomainEvents())
		assert.Equal(t, version, m.Version)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		m := newTestMember(t)
		err := m.SetStatus(MemberStatusPending)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_STATUS", de.Code)
	})
}

func TestMember_Permissions(t *testing.T) {
	m := newTestMember(t)
	m.SetPermissions(Permissions{ViewFund: true, PostNotices: true})

	assert.False(t, m.Can(PermissionPostNotices), "pending members hold no grants")

	require.NoError(t, m.SetStatus(MemberStatusApproved))
	assert.True(t, m.Can(PermissionPostNotices))
	assert.True(t, m.Can(PermissionViewFund))
	assert.False(t, m.Can(PermissionManageMembers))
	assert.Equal(t, []string{"viewFund", "postNotices"}, m.GrantedPermissions())
}

func TestMember_ProfileEdits(t *testing.T) {
	t.Run("position is title cased and defaults to Member", func(t *testing.T) {
		m := newTestMember(t)

		m.SetPosition("  general   secretary ")
		assert.Equal(t, "General Secretary", m.Position)

		m.SetPosition("")
		assert.Equal(t, DefaultPosition, m.Position)
	})

	t.Run("committee requires approval and a title", func(t *testing.T) {
		m := newTestMember(t)
		m.SetPosition("President")
		assert.False(t, m.IsCommittee())

		require.NoError(t, m.SetStatus(MemberStatusApproved))
		assert.True(t, m.IsCommittee())

		m.SetPosition("member")
		assert.False(t, m.IsCommittee())
	})

	t.Run("manual overrides can be set and cleared", func(t *testing.T) {
		m := newTestMember(t)
		due := decimal.NewFromInt(-200)
		paid := decimal.NewFromInt(3000)

		m.SetManualDue(&due)
		m.SetManualTotalPaid(&paid)
		due = decimal.NewFromInt(1)

		require.NotNil(t, m.ManualDue)
		assert.True(t, m.ManualDue.Equal(decimal.NewFromInt(-200)), "override is copied")
		assert.True(t, m.ManualTotalPaid.Equal(paid))

		m.SetManualDue(nil)
		assert.Nil(t, m.ManualDue)
	})

	t.Run("paid months are validated and deduplicated", func(t *testing.T) {
		m := newTestMember(t)

		require.NoError(t, m.SetPaidMonths([]string{"January 2025", "January  2025", "March 2025"}))
		assert.Equal(t, []string{"January 2025", "March 2025"}, m.PaidMonths)

		assert.Error(t, m.SetPaidMonths([]string{"2025-01"}))
	})

	t.Run("negative monthly amount is rejected", func(t *testing.T) {
		m := newTestMember(t)
		assert.Error(t, m.SetMonthlyAmount(decimal.NewFromInt(-5)))
		assert.NoError(t, m.SetMonthlyAmount(decimal.Zero))
	})

	t.Run("contact details are normalized", func(t *testing.T) {
		m := newTestMember(t)
		require.NoError(t, m.UpdateContact(Contact{Name: "Karim", Phone: " 01700000000 ", BloodGroup: "o+"}))
		assert.Equal(t, "Karim", m.Name)
		assert.Equal(t, "01700000000", m.Phone)
		assert.Equal(t, "O+", m.BloodGroup)
	})

	t.Run("joined at falls back to created at", func(t *testing.T) {
		m := newTestMember(t)
		m.JoiningDate = time.Time{}
		assert.Equal(t, m.CreatedAt, m.JoinedAt())

		join := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, m.SetJoiningDate(join))
		assert.Equal(t, join, m.JoinedAt())
	})
}

func TestMember_Password(t *testing.T) {
	m := newTestMember(t)

	assert.True(t, m.VerifyPassword("secret12"))
	assert.False(t, m.VerifyPassword("wrong"))

	require.NoError(t, m.SetPassword("another1"))
	assert.True(t, m.VerifyPassword("another1"))
	assert.False(t, m.VerifyPassword("secret12"))
}

func TestMember_Messages(t *testing.T) {
	t.Run("appends with default sender", func(t *testing.T) {
		m := newTestMember(t)

		msg, err := m.AppendMessage("  Please clear your dues  ", "")
		require.NoError(t, err)

		assert.Equal(t, "Please clear your dues", msg.Text)
		assert.Equal(t, DefaultMessageSender, msg.Sender)
		require.Len(t, m.Messages, 1)
		_, ok := m.GetDomainEvents()[0].(*MemberMessagedEvent)
		assert.True(t, ok)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		m := newTestMember(t)
		_, err := m.AppendMessage("   ", "Admin")
		assert.Error(t, err)
		assert.Empty(t, m.Messages)
	})

	t.Run("recency order does not reorder storage", func(t *testing.T) {
		m := newTestMember(t)
		base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		m.Messages = []Message{
			{Text: "first", Date: base},
			{Text: "second", Date: base.Add(time.Hour)},
			{Text: "third", Date: base.Add(2 * time.Hour)},
		}

		byRecency := m.MessagesByRecency()

		assert.Equal(t, "third", byRecency[0].Text)
		assert.Equal(t, "first", byRecency[2].Text)
		assert.Equal(t, "first", m.Messages[0].Text)
	})
}

package fund

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineLedger(t *testing.T) {
	member := uuid.New()

	founder := entry(EntryTypeIncome, 45000)
	founder.Date = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rent := entry(EntryTypeExpense, 300)
	rent.Date = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	approved := donation(member, 500, DonationStatusApproved)
	approved.MemberName = "Karim"
	approved.CreatedAt = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	pending := donation(member, 700, DonationStatusPending)

	rows := CombineLedger([]LedgerEntry{founder, rent}, []Donation{approved, pending})

	require.Len(t, rows, 3)
	assert.Equal(t, rent.ID.String(), rows[0].ID)
	assert.Equal(t, founder.ID.String(), rows[2].ID)

	derived := rows[1]
	assert.True(t, derived.Derived)
	assert.True(t, strings.HasPrefix(derived.ID, DonationRowPrefix))
	assert.Equal(t, EntryTypeIncome, derived.Type)
	assert.Equal(t, "Member subscription", derived.Category)
	assert.Equal(t, "Karim payment (Bkash)", derived.Description)
	require.NotNil(t, derived.ReferenceID)
	assert.Equal(t, approved.ID, *derived.ReferenceID)
}

func TestCombineLedger_DoesNotChangeTotals(t *testing.T) {
	member := uuid.New()
	entries := []LedgerEntry{entry(EntryTypeIncome, 1000), entry(EntryTypeExpense, 400)}
	donations := []Donation{donation(member, 600, DonationStatusApproved)}

	stats := ComputeOrgStats(entries, donations)
	rows := CombineLedger(entries, donations)

	// summing the view gives the same income as the engine, counted once
	income := dec(0)
	for _, r := range rows {
		if r.Type == EntryTypeIncome {
			income = income.Add(r.Amount)
		}
	}
	assert.True(t, income.Equal(stats.TotalIncome))
}

func TestDonationCategory(t *testing.T) {
	assert.Equal(t, "Member subscription", DonationCategory(DonationTypeSubscription))
	assert.Equal(t, "General donation", DonationCategory(DonationTypeGeneral))
	assert.Equal(t, "Manual collection", DonationCategory(DonationTypeManual))
}

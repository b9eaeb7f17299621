package fund

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationRowPrefix prefixes the IDs of ledger rows derived from donations
const DonationRowPrefix = "don-"

// LedgerRow is one line of the combined ledger view. Rows derived from
// donations carry the donation ID as ReferenceID and Derived set.
type LedgerRow struct {
	ID          string          `json:"id"`
	Type        EntryType       `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	ReferenceID *uuid.UUID      `json:"referenceId,omitempty"`
	Derived     bool            `json:"derived"`
}

// DonationCategory returns the ledger category shown for a donation type
func DonationCategory(t DonationType) string {
	switch t {
	case DonationTypeGeneral:
		return "General donation"
	case DonationTypeManual:
		return "Manual collection"
	default:
		return "Member subscription"
	}
}

// CombineLedger merges manual entries with one Income row per approved
// donation, newest first. The view is for display only; totals come from
// ComputeOrgStats.
func CombineLedger(entries []LedgerEntry, donations []Donation) []LedgerRow {
	rows := make([]LedgerRow, 0, len(entries)+len(donations))
	for i := range entries {
		e := &entries[i]
		rows = append(rows, LedgerRow{
			ID:          e.ID.String(),
			Type:        e.Type,
			Category:    e.Category,
			Amount:      e.Amount,
			Description: e.Description,
			Date:        e.Date,
			ReferenceID: e.ReferenceID,
		})
	}
	for i := range donations {
		d := &donations[i]
		if !d.IsApproved() {
			continue
		}
		ref := d.ID
		name := d.MemberName
		if name == "" {
			name = "Member"
		}
		rows = append(rows, LedgerRow{
			ID:          DonationRowPrefix + d.ID.String(),
			Type:        EntryTypeIncome,
			Category:    DonationCategory(d.Type),
			Amount:      d.Amount,
			Description: fmt.Sprintf("%s payment (%s)", name, d.Method),
			Date:        d.CreatedAt,
			ReferenceID: &ref,
			Derived:     true,
		})
	}

	slices.SortStableFunc(rows, func(a, b LedgerRow) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rows
}

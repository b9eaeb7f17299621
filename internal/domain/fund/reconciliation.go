package fund

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMonthlyAmount is the due applied when a member has no monthly amount set
var DefaultMonthlyAmount = decimal.NewFromInt(500)

// Policy holds the organization settings the dues calculation depends on
type Policy struct {
	// DefaultMonthlyAmount replaces a zero or missing monthly amount
	DefaultMonthlyAmount decimal.Decimal
	// Location is the organization time zone used to read calendar months
	Location *time.Location
}

// DefaultPolicy returns a policy with a 500 fallback due in UTC
func DefaultPolicy() Policy {
	return Policy{DefaultMonthlyAmount: DefaultMonthlyAmount, Location: time.UTC}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p Policy) fallback() decimal.Decimal {
	if !p.DefaultMonthlyAmount.IsPositive() {
		return DefaultMonthlyAmount
	}
	return p.DefaultMonthlyAmount
}

// Anomalies counts records the engine had to skip or zero out
type Anomalies struct {
	MalformedAmounts        int `json:"malformedAmounts"`
	UnknownEntryTypes       int `json:"unknownEntryTypes"`
	UnknownDonationStatuses int `json:"unknownDonationStatuses"`
}

// Total returns the number of anomalous records
func (a Anomalies) Total() int {
	return a.MalformedAmounts + a.UnknownEntryTypes + a.UnknownDonationStatuses
}

// Add merges another anomaly count into a
func (a Anomalies) Add(b Anomalies) Anomalies {
	return Anomalies{
		MalformedAmounts:        a.MalformedAmounts + b.MalformedAmounts,
		UnknownEntryTypes:       a.UnknownEntryTypes + b.UnknownEntryTypes,
		UnknownDonationStatuses: a.UnknownDonationStatuses + b.UnknownDonationStatuses,
	}
}

// OrgStats is the organization-wide fund position
type OrgStats struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	TotalBalance   decimal.Decimal `json:"totalBalance"`
	LedgerIncome   decimal.Decimal `json:"ledgerIncome"`
	DonationIncome decimal.Decimal `json:"donationIncome"`
	Anomalies      Anomalies       `json:"anomalies"`
}

// ComputeOrgStats derives the fund position from manual ledger entries and
// approved donations. The result does not depend on input order and the
// balance may be negative.
func ComputeOrgStats(entries []LedgerEntry, donations []Donation) OrgStats {
	var an Anomalies
	ledgerIncome := decimal.Zero
	totalExpense := decimal.Zero

	for i := range entries {
		e := &entries[i]
		switch e.Type {
		case EntryTypeIncome:
			ledgerIncome = ledgerIncome.Add(sanitizeAmount(e.Amount, &an))
		case EntryTypeExpense:
			totalExpense = totalExpense.Add(sanitizeAmount(e.Amount, &an))
		default:
			an.UnknownEntryTypes++
		}
	}

	donationIncome := decimal.Zero
	for i := range donations {
		d := &donations[i]
		switch d.Status {
		case DonationStatusApproved:
			donationIncome = donationIncome.Add(sanitizeAmount(d.Amount, &an))
		case DonationStatusPending, DonationStatusRejected:
		default:
			an.UnknownDonationStatuses++
		}
	}

	totalIncome := ledgerIncome.Add(donationIncome)
	return OrgStats{
		TotalIncome:    totalIncome,
		TotalExpense:   totalExpense,
		TotalBalance:   totalIncome.Sub(totalExpense),
		LedgerIncome:   ledgerIncome,
		DonationIncome: donationIncome,
		Anomalies:      an,
	}
}

// MemberTerms are the member fields the dues calculation reads
type MemberTerms struct {
	MemberID        uuid.UUID
	MonthlyAmount   decimal.Decimal
	ManualDue       *decimal.Decimal
	ManualTotalPaid *decimal.Decimal
	JoinedAt        time.Time
}

// MemberStats is the dues position of one member
type MemberStats struct {
	MemberID       uuid.UUID       `json:"memberId"`
	MonthlyAmount  decimal.Decimal `json:"monthlyAmount"`
	MonthsElapsed  int             `json:"monthsElapsed"`
	ExpectedTotal  decimal.Decimal `json:"expectedTotal"`
	ApprovedPaid   decimal.Decimal `json:"approvedPaid"`
	ComputedDue    decimal.Decimal `json:"computedDue"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	Due            decimal.Decimal `json:"due"`
	PaidOverridden bool            `json:"paidOverridden"`
	DueOverridden  bool            `json:"dueOverridden"`
	Anomalies      Anomalies       `json:"anomalies"`
}

// ComputeMemberStats derives the paid total and outstanding due of a member.
// Donations of other members are ignored. Manual overrides win over computed
// values and the due never goes below zero.
func ComputeMemberStats(terms MemberTerms, donations []Donation, now time.Time, policy Policy) MemberStats {
	var an Anomalies
	approvedPaid := decimal.Zero
	for i := range donations {
		d := &donations[i]
		if d.MemberID != terms.MemberID {
			continue
		}
		switch d.Status {
		case DonationStatusApproved:
			approvedPaid = approvedPaid.Add(sanitizeAmount(d.Amount, &an))
		case DonationStatusPending, DonationStatusRejected:
		default:
			an.UnknownDonationStatuses++
		}
	}

	monthly := terms.MonthlyAmount
	if monthly.IsNegative() {
		an.MalformedAmounts++
		monthly = decimal.Zero
	}
	if monthly.IsZero() {
		monthly = policy.fallback()
	}

	months := MonthsElapsed(terms.JoinedAt, now, policy.location())
	expected := monthly.Mul(decimal.NewFromInt(int64(months)))
	computedDue := clampZero(expected.Sub(approvedPaid))

	stats := MemberStats{
		MemberID:      terms.MemberID,
		MonthlyAmount: monthly,
		MonthsElapsed: months,
		ExpectedTotal: expected,
		ApprovedPaid:  approvedPaid,
		ComputedDue:   computedDue,
		TotalPaid:     approvedPaid,
		Due:           computedDue,
		Anomalies:     an,
	}
	if terms.ManualTotalPaid != nil {
		stats.TotalPaid = *terms.ManualTotalPaid
		stats.PaidOverridden = true
	}
	if terms.ManualDue != nil {
		stats.Due = clampZero(*terms.ManualDue)
		stats.DueOverridden = true
	}
	return stats
}

// MonthsElapsed counts calendar months from joinedAt to now, both inclusive,
// reading year and month in loc. The result is at least 1.
func MonthsElapsed(joinedAt, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	j := joinedAt.In(loc)
	n := now.In(loc)
	months := (n.Year()-j.Year())*12 + int(n.Month()) - int(j.Month()) + 1
	if months < 1 {
		return 1
	}
	return months
}

func sanitizeAmount(amount decimal.Decimal, an *Anomalies) decimal.Decimal {
	if amount.IsNegative() {
		an.MalformedAmounts++
		return decimal.Zero
	}
	return amount
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

package handler_test

import (
	"net/http"
	"testing"
	"time"

	fundapp "github.com/comfund/backend/internal/application/fund"
	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundHandler_PublicSummary(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/fund/summary", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := testutil.DecodeData[fund.OrgStats](t, w)
	assert.True(t, empty.TotalBalance.IsZero())

	f.createEntry(t, "Expense", 300, "2025-05-01")

	// writes invalidate the cached totals
	w = f.do(t, http.MethodGet, "/api/v1/fund/summary", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := testutil.DecodeData[fund.OrgStats](t, w)
	assert.True(t, stats.TotalBalance.Equal(decimal.NewFromInt(-300)), stats.TotalBalance.String())
}

func TestFundHandler_PaymentDetails(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/payment-details", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := testutil.DecodeData[fundapp.PaymentDetailsResponse](t, w)
	assert.Equal(t, "Comfund", details.OrgName)
	assert.Equal(t, "01700000000", details.OfficialNumber)
	assert.Contains(t, details.Methods, "Bkash")
	assert.Contains(t, details.Methods, "Cash")
}

func TestFundHandler_MemberStatsAndPrefill(t *testing.T) {
	f := newAPIFixture(t)
	id, token := f.approvedMember(t, "Dues Payer", "dues@comfund.test")

	w := f.do(t, http.MethodGet, "/api/v1/me/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := testutil.DecodeData[fundapp.MemberStatsResponse](t, w)
	assert.Equal(t, id, stats.MemberID)
	assert.Equal(t, "Dues Payer", stats.MemberName)
	assert.Equal(t, 1, stats.MonthsElapsed)
	assert.True(t, stats.Due.Equal(decimal.NewFromInt(500)), stats.Due.String())
	assert.NotNil(t, stats.PaidMonths)

	w = f.do(t, http.MethodGet, "/api/v1/me/payment-prefill", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	prefill := testutil.DecodeData[fundapp.PaymentPrefillResponse](t, w)
	assert.True(t, prefill.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "Subscription", prefill.Type)
	assert.Equal(t, time.Now().UTC().Format("January 2006"), prefill.PaymentMonth)
	assert.Equal(t, "01700000000", prefill.OfficialNumber)

	t.Run("manual due overrides the computed one", func(t *testing.T) {
		w := f.do(t, http.MethodPut, memberPath(id, ""), f.adminToken, map[string]any{"manualDue": 120})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = f.do(t, http.MethodGet, memberPath(id, "/stats"), f.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		stats := testutil.DecodeData[fundapp.MemberStatsResponse](t, w)
		assert.True(t, stats.DueOverridden)
		assert.True(t, stats.Due.Equal(decimal.NewFromInt(120)), stats.Due.String())
	})

	w = f.do(t, http.MethodGet, memberPath(uuid.New(), "/stats"), f.adminToken, nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestFundHandler_Dashboard(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.approvedMember(t, "Donor", "donor@comfund.test")
	f.register(t, "Applicant", "applicant@comfund.test")
	f.submitDonation(t, token, 250, "D-1")

	w := f.do(t, http.MethodGet, "/api/v1/admin/dashboard", f.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dash := testutil.DecodeData[fundapp.DashboardResponse](t, w)
	assert.Equal(t, int64(1), dash.PendingUsers)
	assert.Equal(t, int64(1), dash.PendingDonations)
	assert.GreaterOrEqual(t, dash.TotalMembers, int64(1))
	assert.Equal(t, int64(0), dash.TotalActivities)

	w = f.do(t, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	testutil.AssertErrorCode(t, w, http.StatusForbidden, "FORBIDDEN")
}

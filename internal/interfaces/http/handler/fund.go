package handler

import (
	fundapp "github.com/comfund/backend/internal/application/fund"
	"github.com/gin-gonic/gin"
)

// FundHandler serves the fund totals, member dues and the admin dashboard
type FundHandler struct {
	BaseHandler
	stats     *fundapp.ReconciliationService
	dashboard *fundapp.DashboardService
}

// NewFundHandler creates a new fund handler
func NewFundHandler(stats *fundapp.ReconciliationService, dashboard *fundapp.DashboardService) *FundHandler {
	return &FundHandler{stats: stats, dashboard: dashboard}
}

// Summary godoc
// @Summary      Fund summary
// @Description  Total income, expense and balance of the organization fund
// @Tags         public
// @Produce      json
// @Success      200 {object} APIResponse[fund.OrgStats]
// @Router       /fund/summary [get]
func (h *FundHandler) Summary(c *gin.Context) {
	stats, err := h.stats.OrgStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// PaymentDetails godoc
// @Summary      Payment details
// @Description  Where to send payments and the accepted methods
// @Tags         public
// @Produce      json
// @Success      200 {object} APIResponse[fundapp.PaymentDetailsResponse]
// @Router       /payment-details [get]
func (h *FundHandler) PaymentDetails(c *gin.Context) {
	h.Success(c, h.stats.PaymentDetails())
}

// MyStats godoc
// @Summary      My dues
// @Description  Months elapsed, expected total, paid and due for the signed-in member
// @Tags         me
// @Produce      json
// @Success      200 {object} APIResponse[fundapp.MemberStatsResponse]
// @Security     BearerAuth
// @Router       /me/stats [get]
func (h *FundHandler) MyStats(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	stats, err := h.stats.MemberStats(c.Request.Context(), p.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// PaymentPrefill godoc
// @Summary      Suggested payment
// @Description  The outstanding due, or one monthly amount when nothing is owed, for the current month
// @Tags         me
// @Produce      json
// @Success      200 {object} APIResponse[fundapp.PaymentPrefillResponse]
// @Security     BearerAuth
// @Router       /me/payment-prefill [get]
func (h *FundHandler) PaymentPrefill(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	prefill, err := h.stats.PaymentPrefill(c.Request.Context(), p.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefill)
}

// MemberStats godoc
// @Summary      Member dues
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID"
// @Success      200 {object} APIResponse[fundapp.MemberStatsResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/members/{id}/stats [get]
func (h *FundHandler) MemberStats(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	stats, err := h.stats.MemberStats(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Dashboard godoc
// @Summary      Admin dashboard
// @Description  Review queues, member and activity counts, and the fund totals
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[fundapp.DashboardResponse]
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *FundHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

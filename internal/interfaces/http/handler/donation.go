package handler

import (
	fundapp "github.com/comfund/backend/internal/application/fund"
	"github.com/comfund/backend/internal/domain/fund"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DonationHandler serves payment submissions and their review
type DonationHandler struct {
	BaseHandler
	donations    *fundapp.DonationService
	maxProofSize int64
}

// NewDonationHandler creates a new donation handler. maxProofSize bounds
// proof uploads in bytes.
func NewDonationHandler(donations *fundapp.DonationService, maxProofSize int64) *DonationHandler {
	return &DonationHandler{donations: donations, maxProofSize: maxProofSize}
}

// submitDonationForm is the multipart rendition of fundapp.SubmitDonationRequest
type submitDonationForm struct {
	Amount        string `form:"amount" binding:"required"`
	Method        string `form:"method" binding:"required,oneof=Bkash Nagad Rocket Cash Bank"`
	TransactionID string `form:"transactionId" binding:"max=100"`
	Type          string `form:"type" binding:"omitempty,oneof=Subscription General Manual"`
	PaymentMonth  string `form:"paymentMonth" binding:"max=20"`
	Proof         string `form:"proof"`
}

// Submit godoc
// @Summary      Submit payment
// @Description  Records a pending payment for the signed-in member. The proof screenshot is a multipart file named "proof" or a base64 data URL in the proof field.
// @Tags         donations
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request body fundapp.SubmitDonationRequest true "Payment"
// @Success      201 {object} APIResponse[fundapp.DonationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /me/donations [post]
func (h *DonationHandler) Submit(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req fundapp.SubmitDonationRequest
	if isMultipart(c) {
		var form submitDonationForm
		if !h.bindForm(c, &form) {
			return
		}
		amount, err := decimal.NewFromString(form.Amount)
		if err != nil {
			h.Error(c, "INVALID_AMOUNT", "Amount must be a number")
			return
		}
		req = fundapp.SubmitDonationRequest{
			Amount:        amount,
			Method:        form.Method,
			TransactionID: form.TransactionID,
			Type:          form.Type,
			PaymentMonth:  form.PaymentMonth,
			Proof:         form.Proof,
		}
	} else if !h.bind(c, &req) {
		return
	}

	proof, err := readUpload(c, "proof", req.Proof, h.maxProofSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	d, err := h.donations.Submit(c.Request.Context(), p.ID, req, proof)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, d)
}

// Mine godoc
// @Summary      My payments
// @Description  The signed-in member's payment history
// @Tags         donations
// @Produce      json
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Param        status    query string false "Pending, Approved or Rejected"
// @Success      200 {object} APIResponse[[]fundapp.DonationResponse]
// @Security     BearerAuth
// @Router       /me/donations [get]
func (h *DonationHandler) Mine(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var f fundapp.DonationListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.donations.ListForMember(c.Request.Context(), p.ID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// List godoc
// @Summary      List payments
// @Description  All payment submissions with optional status and method filters
// @Tags         donations
// @Produce      json
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Param        order_by  query string false "Sort field"
// @Param        order_dir query string false "asc or desc"
// @Param        search    query string false "Member name or transaction ID"
// @Param        status    query string false "Pending, Approved or Rejected"
// @Param        method    query string false "Payment method"
// @Success      200 {object} APIResponse[[]fundapp.DonationResponse]
// @Security     BearerAuth
// @Router       /admin/donations [get]
func (h *DonationHandler) List(c *gin.Context) {
	var f fundapp.DonationListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.donations.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// Get godoc
// @Summary      Get payment
// @Tags         donations
// @Produce      json
// @Param        id path string true "Donation ID"
// @Success      200 {object} APIResponse[fundapp.DonationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/donations/{id} [get]
func (h *DonationHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	d, err := h.donations.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// SetStatus godoc
// @Summary      Review payment
// @Description  Approves or rejects a payment. Rejected payments cannot be reopened.
// @Tags         donations
// @Accept       json
// @Produce      json
// @Param        id      path string                            true "Donation ID"
// @Param        request body fundapp.SetDonationStatusRequest  true "Decision"
// @Success      200 {object} APIResponse[fundapp.DonationResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/donations/{id}/status [patch]
func (h *DonationHandler) SetStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req fundapp.SetDonationStatusRequest
	if !h.bind(c, &req) {
		return
	}
	d, err := h.donations.SetStatus(c.Request.Context(), p.ID, id, fund.DonationStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Delete godoc
// @Summary      Delete payment
// @Description  Removes a payment and its proof. Deleting a missing payment succeeds.
// @Tags         donations
// @Param        id path string true "Donation ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/donations/{id} [delete]
func (h *DonationHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.donations.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

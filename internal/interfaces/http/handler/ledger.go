package handler

import (
	"fmt"
	"net/http"

	fundapp "github.com/comfund/backend/internal/application/fund"
	"github.com/comfund/backend/internal/infrastructure/export"
	"github.com/comfund/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LedgerHandler serves the manual ledger, the combined view and its export
type LedgerHandler struct {
	BaseHandler
	ledger *fundapp.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger *fundapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// List godoc
// @Summary      List ledger entries
// @Description  Manual income and expense entries
// @Tags         ledger
// @Produce      json
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Param        order_by  query string false "Sort field"
// @Param        order_dir query string false "asc or desc"
// @Param        search    query string false "Category or description"
// @Param        type      query string false "Income or Expense"
// @Success      200 {object} APIResponse[[]fundapp.LedgerEntryResponse]
// @Security     BearerAuth
// @Router       /admin/ledger [get]
func (h *LedgerHandler) List(c *gin.Context) {
	var f fundapp.LedgerListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.ledger.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// Get godoc
// @Summary      Get ledger entry
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Entry ID"
// @Success      200 {object} APIResponse[fundapp.LedgerEntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/ledger/{id} [get]
func (h *LedgerHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	e, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e)
}

// Create godoc
// @Summary      Record ledger entry
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body fundapp.LedgerEntryRequest true "Entry"
// @Success      201 {object} APIResponse[fundapp.LedgerEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/ledger [post]
func (h *LedgerHandler) Create(c *gin.Context) {
	var req fundapp.LedgerEntryRequest
	if !h.bind(c, &req) {
		return
	}
	e, err := h.ledger.Upsert(c.Request.Context(), nil, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, e)
}

// Update godoc
// @Summary      Replace ledger entry
// @Description  Replaces every field of the entry with the given ID
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Entry ID"
// @Param        request body fundapp.LedgerEntryRequest  true "Entry"
// @Success      200 {object} APIResponse[fundapp.LedgerEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/ledger/{id} [put]
func (h *LedgerHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req fundapp.LedgerEntryRequest
	if !h.bind(c, &req) {
		return
	}
	e, err := h.ledger.Upsert(c.Request.Context(), &id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e)
}

// Delete godoc
// @Summary      Delete ledger entry
// @Description  Deleting a missing entry succeeds
// @Tags         ledger
// @Param        id path string true "Entry ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/ledger/{id} [delete]
func (h *LedgerHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.ledger.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Combined godoc
// @Summary      Fund ledger
// @Description  Manual entries and approved payments in one date-ordered list, with the fund totals
// @Tags         fund
// @Produce      json
// @Success      200 {object} APIResponse[fundapp.CombinedLedgerResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fund/ledger [get]
func (h *LedgerHandler) Combined(c *gin.Context) {
	view, err := h.ledger.Combined(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Export godoc
// @Summary      Export ledger
// @Description  Downloads the combined ledger and the fund totals as an Excel workbook
// @Tags         ledger
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /admin/ledger/export [get]
func (h *LedgerHandler) Export(c *gin.Context) {
	wb, err := h.ledger.Workbook(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Type", export.ContentTypeXLSX)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", wb.Filename()))
	c.Status(http.StatusOK)
	if _, err := wb.WriteTo(c.Writer); err != nil {
		// headers are gone, so the client sees a truncated file
		logger.FromContext(c.Request.Context()).Error("Failed to write ledger export", zap.Error(err))
	}
}

package fund

import (
	"strings"
	"time"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitDonationRequest is a member payment submission. Proof may carry a
// base64 data URL when the client does not send a multipart file.
type SubmitDonationRequest struct {
	Amount        decimal.Decimal `json:"amount" form:"amount" swaggertype:"number"`
	Method        string          `json:"method" form:"method" binding:"required,oneof=Bkash Nagad Rocket Cash Bank"`
	TransactionID string          `json:"transactionId" form:"transactionId" binding:"max=100"`
	Type          string          `json:"type" form:"type" binding:"omitempty,oneof=Subscription General Manual"`
	PaymentMonth  string          `json:"paymentMonth" form:"paymentMonth" binding:"max=20"`
	Proof         string          `json:"proof" form:"proof"`
}

// SetDonationStatusRequest carries a reviewer decision
type SetDonationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Approved Rejected"`
}

// DonationListFilter are the query parameters of donation lists
type DonationListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=Pending Approved Rejected"`
	Method   string `form:"method" binding:"omitempty,oneof=Bkash Nagad Rocket Cash Bank"`
}

func (f DonationListFilter) toDomain() fund.DonationFilter {
	filter := fund.DonationFilter{Filter: pageFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir)}
	filter.Search = strings.TrimSpace(f.Search)
	if f.Status != "" {
		st := fund.DonationStatus(f.Status)
		filter.Status = &st
	}
	if f.Method != "" {
		m := fund.PaymentMethod(f.Method)
		filter.Method = &m
	}
	return filter
}

// DonationResponse is a donation as shown to admins and to its member
type DonationResponse struct {
	ID            uuid.UUID       `json:"id"`
	MemberID      uuid.UUID       `json:"memberId"`
	MemberName    string          `json:"memberName"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transactionId"`
	ProofURL      string          `json:"proofUrl,omitempty"`
	Type          string          `json:"type"`
	PaymentMonth  string          `json:"paymentMonth,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToDonationResponse converts a domain donation. proofURL is the resolved
// address of the stored proof, if any.
func ToDonationResponse(d *fund.Donation, proofURL string) DonationResponse {
	return DonationResponse{
		ID:            d.ID,
		MemberID:      d.MemberID,
		MemberName:    d.MemberName,
		Amount:        d.Amount,
		Method:        d.Method.String(),
		TransactionID: d.TransactionID,
		ProofURL:      proofURL,
		Type:          d.Type.String(),
		PaymentMonth:  d.PaymentMonth,
		Status:        d.Status.String(),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// LedgerEntryRequest creates or replaces a manual ledger entry. Date accepts
// "2006-01-02" or RFC 3339.
type LedgerEntryRequest struct {
	Type        string          `json:"type" binding:"required,oneof=Income Expense"`
	Category    string          `json:"category" binding:"required,max=100"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number"`
	Description string          `json:"description" binding:"max=500"`
	Date        string          `json:"date" binding:"required"`
	ReferenceID *uuid.UUID      `json:"referenceId"`
}

// LedgerListFilter are the query parameters of the ledger list
type LedgerListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"max=100"`
	Type     string `form:"type" binding:"omitempty,oneof=Income Expense"`
}

// LedgerEntryResponse is a manual ledger entry
type LedgerEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	ReferenceID *uuid.UUID      `json:"referenceId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ToLedgerEntryResponse converts a domain entry
func ToLedgerEntryResponse(e *fund.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          e.ID,
		Type:        e.Type.String(),
		Category:    e.Category,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		ReferenceID: e.ReferenceID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// CombinedLedgerResponse is the display ledger with the engine totals
type CombinedLedgerResponse struct {
	Rows  []fund.LedgerRow `json:"rows"`
	Stats fund.OrgStats    `json:"stats"`
}

// MemberStatsResponse is a member's dues position
type MemberStatsResponse struct {
	fund.MemberStats
	MemberName string   `json:"memberName"`
	PaidMonths []string `json:"paidMonths"`
	Month      string   `json:"month"`
}

// PaymentDetailsResponse tells members where to send payments
type PaymentDetailsResponse struct {
	OrgName        string   `json:"orgName"`
	OfficialNumber string   `json:"officialNumber"`
	Methods        []string `json:"methods"`
}

// PaymentPrefillResponse is the suggested payment form for a member
type PaymentPrefillResponse struct {
	PaymentDetailsResponse
	Amount       decimal.Decimal `json:"amount"`
	Due          decimal.Decimal `json:"due"`
	PaymentMonth string          `json:"paymentMonth"`
	Type         string          `json:"type"`
}

// DashboardResponse is the admin dashboard summary
type DashboardResponse struct {
	PendingUsers     int64         `json:"pendingUsers"`
	PendingDonations int64         `json:"pendingDonations"`
	TotalMembers     int64         `json:"totalMembers"`
	TotalActivities  int64         `json:"totalActivities"`
	Fund             fund.OrgStats `json:"fund"`
}

func pageFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir != "" {
		f.OrderDir = orderDir
	}
	return f
}

// allRows is an unpaged filter
func allRows() shared.Filter {
	return shared.Filter{OrderBy: "created_at", OrderDir: "desc"}
}

func methodNames() []string {
	methods := fund.AllPaymentMethods()
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = m.String()
	}
	return out
}

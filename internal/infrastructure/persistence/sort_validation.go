package persistence

import (
	"strings"

	"gorm.io/gorm"
)

// ValidateSortOrder normalizes a sort direction to ASC or DESC (the default)
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowed map[string]bool, defaultField string) string {
	sortField = strings.TrimSpace(sortField)
	if allowed[sortField] {
		return sortField
	}
	return defaultField
}

// MemberSortFields are the sortable member columns
var MemberSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"email":          true,
	"status":         true,
	"position":       true,
	"joining_date":   true,
	"monthly_amount": true,
}

// DonationSortFields are the sortable donation columns
var DonationSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"amount":        true,
	"status":        true,
	"method":        true,
	"member_name":   true,
	"payment_month": true,
}

// LedgerEntrySortFields are the sortable ledger columns
var LedgerEntrySortFields = map[string]bool{
	"created_at": true,
	"date":       true,
	"amount":     true,
	"type":       true,
	"category":   true,
}

// NoticeSortFields are the sortable notice columns
var NoticeSortFields = map[string]bool{
	"created_at": true,
	"date":       true,
	"title":      true,
	"priority":   true,
}

// ActivitySortFields are the sortable activity columns
var ActivitySortFields = map[string]bool{
	"created_at": true,
	"date":       true,
	"title":      true,
}

// paginate applies ordering and, unless the page size is zero or negative, limit/offset.
// The id tiebreaker keeps pages stable when the sort column has duplicates.
func paginate(q *gorm.DB, orderBy, orderDir string, allowed map[string]bool, defaultField string, page, pageSize int) *gorm.DB {
	field := ValidateSortField(orderBy, allowed, defaultField)
	q = q.Order(field + " " + ValidateSortOrder(orderDir)).Order("id ASC")
	if pageSize <= 0 {
		return q
	}
	if page < 1 {
		page = 1
	}
	return q.Limit(pageSize).Offset((page - 1) * pageSize)
}

// likePattern escapes LIKE wildcards and wraps s for a contains match
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(s))) + "%"
}

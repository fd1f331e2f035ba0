package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of
// allowed fields. Returns the defaultField if the input is invalid,
// empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderSortFields contains allowed sort fields for order-like tables
var orderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"placed_at":    true,
	"total_amount": true,
}

// applyPagedFilter applies ordering and pagination to a query. Sort
// input is whitelisted so request parameters never reach the ORDER BY
// clause raw.
func applyPagedFilter(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	field := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	dir := ValidateSortOrder(filter.OrderDir)

	return query.
		Order(fmt.Sprintf("%s %s", field, dir)).
		Offset((page - 1) * pageSize).
		Limit(pageSize)
}

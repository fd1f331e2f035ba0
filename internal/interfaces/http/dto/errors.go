package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps stable domain error codes to HTTP status
// codes. Codes absent from this map fall through to 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	// Resource lookups
	ErrCodeNotFound: http.StatusNotFound,

	// Validation and reference errors in request payloads
	"INVALID_INPUT":      http.StatusBadRequest,
	"INVALID_QUANTITY":   http.StatusBadRequest,
	"INVALID_AMOUNT":     http.StatusBadRequest,
	"INVALID_ACTOR":      http.StatusBadRequest,
	"INVALID_REASON":     http.StatusBadRequest,
	"NO_ITEMS":           http.StatusBadRequest,
	"MISSING_PRICE":      http.StatusBadRequest,
	"PRODUCT_NOT_FOUND":  http.StatusBadRequest,
	"SUPPLIER_NOT_FOUND": http.StatusBadRequest,
	"ITEM_NOT_FOUND":     http.StatusBadRequest,

	// Conflicts
	"ALREADY_EXISTS":           http.StatusConflict,
	"CONCURRENCY_CONFLICT":     http.StatusConflict,
	"DUPLICATE_PURCHASE_ORDER": http.StatusConflict,
	"OPERATION_IN_PROGRESS":    http.StatusConflict,
	"ALREADY_CLOSED":           http.StatusConflict,

	// Lifecycle violations
	"INVALID_STATE": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

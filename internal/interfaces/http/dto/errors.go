package dto

import "net/http"

// Transport-level error codes. Domain errors keep their own codes
// (EMPTY_CART, SUBMISSION_IN_PROGRESS, ...) and are listed in ErrorCodeHTTPStatus.
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeUnavailable  = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,

	// Shared domain errors
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"INVALID_INPUT":        http.StatusBadRequest,
	"VALIDATION_ERROR":     http.StatusBadRequest,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"FORBIDDEN":            http.StatusForbidden,
	"INVALID_STATE":        http.StatusUnprocessableEntity,

	// Cart and checkout
	"INVALID_QUANTITY":         http.StatusBadRequest,
	"INVALID_CART_LINE":        http.StatusBadRequest,
	"UNKNOWN_CART_COMMAND":     http.StatusBadRequest,
	"EMPTY_CART":               http.StatusUnprocessableEntity,
	"INVALID_STATE_TRANSITION": http.StatusConflict,
	"ADDRESS_REQUIRED":         http.StatusUnprocessableEntity,
	"PAYMENT_MODE_REQUIRED":    http.StatusUnprocessableEntity,
	"SUBMISSION_IN_PROGRESS":   http.StatusConflict,
	"SESSION_NOT_FOUND":        http.StatusNotFound,

	// Account
	"INCOMPLETE_ADDRESS":       http.StatusUnprocessableEntity,
	"INVALID_ADDRESS_CATEGORY": http.StatusBadRequest,
	"INVALID_PAYMENT_MODE":     http.StatusBadRequest,
	"INVALID_DISPLAY_NAME":     http.StatusBadRequest,
	"ADDRESS_NOT_FOUND":        http.StatusNotFound,

	// Catalog
	"PRODUCT_UNAVAILABLE": http.StatusUnprocessableEntity,
	"INVALID_SKU":         http.StatusBadRequest,
	"INVALID_TITLE":       http.StatusBadRequest,
	"INVALID_PRICE":       http.StatusBadRequest,

	// Orders
	"ORDER_SUBMISSION_FAILED": http.StatusBadGateway,
	"INVALID_STATUS":          http.StatusBadRequest,
	"INVALID_PAYMENT_STATUS":  http.StatusBadRequest,
	"INVALID_IDEMPOTENCY_KEY": http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainHTTPStatus is GetHTTPStatus for codes raised by domain rules.
// A rule nobody mapped is still the caller's fault, so unknown codes are 422.
func DomainHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}

package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeInvalidID    = "INVALID_ID"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountPending     = "ACCOUNT_PENDING"
	ErrCodeAccountRejected    = "ACCOUNT_REJECTED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "INVALID_STATE"
)

// Upload and limit error codes
const (
	ErrCodeInvalidUpload    = "INVALID_UPLOAD"
	ErrCodeUploadTooLarge   = "UPLOAD_TOO_LARGE"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeServiceBusy      = "SERVICE_BUSY"
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"
	ErrCodeServiceUnhealthy = "SERVICE_UNHEALTHY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes that are
// not listed but start with INVALID_ are field validation failures.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeInvalidID:    http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeAccountPending:     http.StatusForbidden,
	ErrCodeAccountRejected:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	ErrCodeInvalidUpload:    http.StatusBadRequest,
	ErrCodeUploadTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodeServiceBusy:      http.StatusServiceUnavailable,
	ErrCodeServiceUnhealthy: http.StatusServiceUnavailable,
	ErrCodeRequestTimeout:   http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not known.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

package dto

import (
	"net/http"
	"strings"
)

// API error codes. Domain error codes are exposed with an ERR_ prefix.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"

	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDeactivated = "ERR_ACCOUNT_DEACTIVATED"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"

	ErrCodeSubscriptionExpired   = "ERR_SUBSCRIPTION_EXPIRED"
	ErrCodeSubscriptionSuspended = "ERR_SUBSCRIPTION_SUSPENDED"
	ErrCodeFirmCancelled         = "ERR_FIRM_CANCELLED"
	ErrCodeQuotaExceeded         = "ERR_QUOTA_EXCEEDED"
	ErrCodeFeatureNotAvailable   = "ERR_FEATURE_NOT_AVAILABLE"
	ErrCodePaymentInvalid        = "ERR_PAYMENT_INVALID"

	ErrCodeRateLimited        = "ERR_RATE_LIMITED"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeGatewayFailed      = "ERR_GATEWAY_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeInvalidJSON:   http.StatusBadRequest,
	ErrCodeTooLarge:      http.StatusRequestEntityTooLarge,
	"ERR_WEAK_PASSWORD":  http.StatusBadRequest,
	"ERR_FILE_TOO_LARGE": http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	"ERR_TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDeactivated: http.StatusForbidden,
	ErrCodeForbidden:          http.StatusForbidden,
	"ERR_LAST_OWNER":          http.StatusConflict,

	ErrCodeNotFound:            http.StatusNotFound,
	"ERR_ITEM_NOT_FOUND":       http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	"ERR_CLIENT_HAS_CASES":     http.StatusConflict,
	"ERR_CASE_HAS_BILLED_TIME": http.StatusConflict,
	"ERR_REFERENCE_EXHAUSTED":  http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// subscription state blocks the whole account; plan limits block one action
	ErrCodeSubscriptionExpired:   http.StatusPaymentRequired,
	ErrCodeSubscriptionSuspended: http.StatusPaymentRequired,
	ErrCodeFirmCancelled:         http.StatusPaymentRequired,
	ErrCodeQuotaExceeded:         http.StatusForbidden,
	ErrCodeFeatureNotAvailable:   http.StatusForbidden,
	ErrCodePaymentInvalid:        http.StatusBadRequest,

	"ERR_CHANNEL_NOT_CONFIGURED": http.StatusServiceUnavailable,
	"ERR_PDF_NOT_CONFIGURED":     http.StatusServiceUnavailable,
	"ERR_DELIVERY_FAILED":        http.StatusBadGateway,

	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeGatewayFailed:      http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status for an API error code. Unlisted
// ERR_INVALID_* codes are input errors (400); any other unlisted code is a
// business rule violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	if strings.HasPrefix(code, "ERR_") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping covers domain codes whose API name differs
var LegacyErrorCodeMapping = map[string]string{
	"INTERNAL_ERROR":   ErrCodeInternal,
	"VALIDATION_ERROR": ErrCodeValidation,
	"INVALID_TOKEN":    ErrCodeTokenInvalid,
	"TOKEN_INVALID":    ErrCodeTokenInvalid,
}

// NormalizeErrorCode turns a domain error code into its ERR_ API form
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}

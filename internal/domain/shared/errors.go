package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Subscription gating errors
var (
	ErrSubscriptionExpired   = NewDomainError("SUBSCRIPTION_EXPIRED", "Subscription has expired")
	ErrSubscriptionSuspended = NewDomainError("SUBSCRIPTION_SUSPENDED", "Subscription is suspended")
	ErrQuotaExceeded         = NewDomainError("QUOTA_EXCEEDED", "Plan limit reached")
	ErrFeatureNotAvailable   = NewDomainError("FEATURE_NOT_AVAILABLE", "Feature is not included in the current plan")
	ErrPaymentInvalid        = NewDomainError("PAYMENT_INVALID", "Payment request is invalid")
)

package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorised = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// DomainError carries a stable error code alongside a caller-facing message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// InvalidInput creates an INVALID_INPUT error with a formatted message.
func InvalidInput(format string, args ...any) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, fmt.Sprintf(format, args...))
}

// ErrorCode extracts the domain error code from err, or ErrCodeInternal when
// the error does not carry one.
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrCodeInternal
}

// Common domain errors
var (
	ErrProductsInvalid   = NewDomainError(ErrCodeInvalidInput, "One or more products are invalid")
	ErrInsufficientStock = NewDomainError(ErrCodeConflict, "Insufficient stock")
	ErrMixedCurrencies   = NewDomainError(ErrCodeInvalidInput, "Order items must share a single currency")
	ErrEmptyOrder        = NewDomainError(ErrCodeInvalidInput, "Order must contain at least one item")
	ErrOrderNotFound     = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrProductNotFound   = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrInternal          = NewDomainError(ErrCodeInternal, "Internal server error")
)

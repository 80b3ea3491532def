package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeValidation     ErrorCode = "VALIDATION"
	ErrCodeNoRule         ErrorCode = "NO_RULE"
	ErrCodeNoTenant       ErrorCode = "NO_TENANT"
	ErrCodeTenantNotFound ErrorCode = "TENANT_NOT_FOUND"
	ErrCodeTenantMismatch ErrorCode = "TENANT_MISMATCH"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeInternal       ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf builds a domain error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	// ErrTaskNotFound covers both genuinely missing ids and ids that
	// belong to another tenant. The two cases must stay
	// indistinguishable to callers.
	ErrTaskNotFound   = NewError(ErrCodeNotFound, "task not found")
	ErrUserNotFound   = NewError(ErrCodeNotFound, "user not found")
	ErrRuleNotFound   = NewError(ErrCodeNotFound, "rule not found")
	ErrNoTenant       = NewError(ErrCodeNoTenant, "tenant not identified")
	ErrTenantNotFound = NewError(ErrCodeTenantNotFound, "tenant not found or inactive")
	ErrTenantMismatch = NewError(ErrCodeTenantMismatch, "token tenant does not match request tenant")
	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden      = NewError(ErrCodeForbidden, "forbidden")
	ErrInvalidPayload = NewError(ErrCodeValidation, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// AsDomainError extracts the domain error from a chain, if any.
func AsDomainError(err error, target **Error) bool {
	return errors.As(err, target)
}

package shared

import "errors"

// Error codes understood by the HTTP layer
const (
	CodeStoreError = "STORE_ERROR"
	CodeAuthFailed = "AUTH_FAILED"
)

// DomainError represents a domain-level error.
// Cause keeps the underlying failure so its raw message can be reported.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Cause == nil
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewStoreError wraps a persistence failure.
func NewStoreError(message string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeStoreError,
		Message: message,
		Cause:   cause,
	}
}

// Common domain errors
var (
	ErrStore = NewDomainError(CodeStoreError, "Store operation failed")
	// ErrInvalidCredentials never says which of username or password was wrong.
	ErrInvalidCredentials = NewDomainError(CodeAuthFailed, "Invalid username or password")
)

// IsStoreError reports whether err is (or wraps) a store failure
func IsStoreError(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == CodeStoreError
}

// IsAuthError reports whether err is (or wraps) an authentication failure
func IsAuthError(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == CodeAuthFailed
}

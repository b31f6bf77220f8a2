package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Schema / parsing errors
	ErrorCodeUnknownTransactionType ErrorCode = "UNKNOWN_TRANSACTION_TYPE"
	ErrorCodeResponseInvalid        ErrorCode = "RESPONSE_INVALID"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Cryptographic infrastructure errors
	ErrorCodeSigningFailed ErrorCode = "SIGNING_FAILED"
	ErrorCodeKeyInvalid    ErrorCode = "KEY_INVALID"

	// Payment gateway errors (GATEWAY_*)
	ErrorCodeGatewayError   ErrorCode = "GATEWAY_ERROR"
	ErrorCodeGatewayTimeout ErrorCode = "GATEWAY_TIMEOUT"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsUnknownTransactionType checks if err signals an unregistered transaction type
func IsUnknownTransactionType(err error) bool {
	return IsDomainError(err, ErrorCodeUnknownTransactionType)
}

// IsSigningError checks if err is a private key / signing primitive failure
func IsSigningError(err error) bool {
	return IsDomainError(err, ErrorCodeSigningFailed)
}

// IsKeyError checks if err is a public key / certificate failure
func IsKeyError(err error) bool {
	return IsDomainError(err, ErrorCodeKeyInvalid)
}

// IsValidationError checks if err wraps a failed request validation
func IsValidationError(err error) bool {
	return IsDomainError(err, ErrorCodeValidationFailed)
}

// IsGatewayError checks if an error is a transport-level gateway error
func IsGatewayError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeGatewayError ||
		code == ErrorCodeGatewayTimeout ||
		code == ErrorCodeResponseInvalid
}

// SigningError wraps a failure on the signing side (private key or primitive)
func SigningError(message string, err error) *DomainError {
	return WrapError(ErrorCodeSigningFailed, message, err)
}

// KeyError wraps a failure to obtain a usable public key
func KeyError(message string, err error) *DomainError {
	return WrapError(ErrorCodeKeyInvalid, message, err)
}

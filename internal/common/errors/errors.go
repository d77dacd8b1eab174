// Package errors provides standardized error handling for the loan advisor.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCustomerNotFound    ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeCustomerLookupFailed ErrorCode = "CUSTOMER_LOOKUP_FAILED"

	ErrCodeBureauUnavailable ErrorCode = "BUREAU_UNAVAILABLE"
	ErrCodeBureauTimeout     ErrorCode = "BUREAU_TIMEOUT"

	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidLoanRequest ErrorCode = "INVALID_LOAN_REQUEST"

	ErrCodeUnderwritingFailed ErrorCode = "UNDERWRITING_FAILED"
	ErrCodeRemoteUnderwriting ErrorCode = "REMOTE_UNDERWRITING_FAILED"

	ErrCodeDocumentMismatch     ErrorCode = "DOCUMENT_MISMATCH"
	ErrCodeDocumentUnreadable   ErrorCode = "DOCUMENT_UNREADABLE"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeAuditWriteFailed   ErrorCode = "AUDIT_WRITE_FAILED"

	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMGenerationFailed ErrorCode = "LLM_GENERATION_FAILED"

	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCustomerNotFoundError marks a lookup miss. Callers treat this as the
// new-prospect path, never as a conversation failure.
func NewCustomerNotFoundError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCustomerNotFound,
		Message:   "Customer not found",
		Details:   fmt.Sprintf("lookupKey: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCustomerLookupFailedError creates a retryable store error.
func NewCustomerLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCustomerLookupFailed,
		Message:   "Customer store query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBureauUnavailableError creates a retryable credit bureau error. Callers
// fall back to the documented default score instead of failing the session.
func NewBureauUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBureauUnavailable,
		Message:   "Credit bureau unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBureauTimeoutError creates a retryable bureau timeout error.
func NewBureauTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeBureauTimeout,
		Message:   "Credit bureau call timed out",
		Details:   "call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   fmt.Sprintf("Invalid value for %s", field),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidLoanRequestError creates a non-retryable loan request error.
func NewInvalidLoanRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLoanRequest,
		Message:   "Loan request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnderwritingFailedError marks a defensive engine failure. Non-retryable:
// the session routes to rejection with a generic message.
func NewUnderwritingFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnderwritingFailed,
		Message:   "Underwriting evaluation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRemoteUnderwritingError creates a retryable remote evaluation error.
func NewRemoteUnderwritingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRemoteUnderwriting,
		Message:   "Remote underwriting call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentMismatchError marks an income mismatch between the uploaded
// document and the declared profile. A business outcome, never retried.
func NewDocumentMismatchError(declared, extracted int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentMismatch,
		Message:   "Extracted income does not match declared income",
		Details:   fmt.Sprintf("declared: %d, extracted: %d", declared, extracted),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentUnreadableError marks a document the analyzer could not parse.
func NewDocumentUnreadableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentUnreadable,
		Message:   "Could not extract salary information from document",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session persistence error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit sink error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Audit event write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM generation timeout",
		Details:   "call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMGenerationFailedError creates a retryable LLM error.
func NewLLMGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMGenerationFailed,
		Message:   "LLM generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryFailedError creates a retryable letter delivery error.
func NewDeliveryFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryFailed,
		Message:   "Sanction letter delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCustomerLookupFailed,
		ErrCodeBureauUnavailable,
		ErrCodeRemoteUnderwriting,
		ErrCodeSessionStoreFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeLLMGenerationFailed,
		ErrCodeDeliveryFailed:
		return 3

	case ErrCodeBureauTimeout:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0 // Business and validation errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsNotFound reports whether err is a customer-not-found miss.
func IsNotFound(err error) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == ErrCodeCustomerNotFound
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CUSTOMER"):
		return "CRM"
	case strings.Contains(codeStr, "BUREAU"):
		return "BUREAU"
	case strings.Contains(codeStr, "UNDERWRITING"):
		return "UNDERWRITING"
	case strings.Contains(codeStr, "DOCUMENT"):
		return "DOCUMENT"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "AUDIT"):
		return "STORAGE"
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "DELIVERY"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

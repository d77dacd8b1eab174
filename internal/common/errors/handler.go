// internal/common/errors/handler.go
package errors

import (
	"time"
)

// ErrorHandler normalizes failures and logs them with their taxonomy
// metadata so operators can tell transient faults from business outcomes.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleTurnError normalizes and logs a failed conversation turn. It
// returns the normalized error so callers can branch on its code.
func (h *ErrorHandler) HandleTurnError(sessionID string, err error) *StandardError {
	stdErr := h.normalizeError(err)
	h.logger.Error("Turn failed", map[string]interface{}{
		"sessionId":     sessionID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"retries":       GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
	return stdErr
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

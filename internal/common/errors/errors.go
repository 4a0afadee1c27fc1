// Package errors provides standardized error handling for the analysis HTTP API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeResumeTextRequired  ErrorCode = "RESUME_TEXT_REQUIRED"
	ErrCodeInvalidRequestBody  ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodeRequestBodyTooLarge ErrorCode = "REQUEST_BODY_TOO_LARGE"

	ErrCodeProviderFailed          ErrorCode = "PROVIDER_FAILED"
	ErrCodeProviderTimeout         ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderResponseInvalid ErrorCode = "PROVIDER_RESPONSE_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Public messages written to clients. Provider failures all share one message
// so no upstream detail reaches the response body.
const (
	MsgResumeTextRequired  = "Resume text is required"
	MsgInvalidRequestBody  = "Invalid request body"
	MsgRequestBodyTooLarge = "Request body too large"
	MsgProviderFailed      = "Gemini API failed"
	MsgInternal            = "Internal server error"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// HTTPStatus returns the response status for the error's code.
func (e *StandardError) HTTPStatus() int {
	return GetHTTPStatus(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewResumeTextRequiredError reports a missing, null, non-string or blank resumeText.
func NewResumeTextRequiredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResumeTextRequired,
		Message:   MsgResumeTextRequired,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestBodyError reports a body that is not a valid analysis request.
func NewInvalidRequestBodyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestBody,
		Message:   MsgInvalidRequestBody,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRequestBodyTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestBodyTooLarge,
		Message:   MsgRequestBodyTooLarge,
		Details:   fmt.Sprintf("limit: %d bytes", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderFailedError wraps a transport error or non-2xx provider answer.
func NewProviderFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderFailed,
		Message:   MsgProviderFailed,
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, errString(err)),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProviderTimeoutError reports a provider call that hit its deadline.
func NewProviderTimeoutError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   MsgProviderFailed,
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, errString(err)),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProviderResponseInvalidError reports a 2xx answer whose body did not
// carry text in the provider's documented shape.
func NewProviderResponseInvalidError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderResponseInvalid,
		Message:   MsgProviderFailed,
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, errString(err)),
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MsgInternal,
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

// ==========================
// 3. Lookups
// ==========================

var httpStatusByCode = map[ErrorCode]int{
	ErrCodeResumeTextRequired:      http.StatusBadRequest,
	ErrCodeInvalidRequestBody:      http.StatusBadRequest,
	ErrCodeRequestBodyTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeProviderFailed:          http.StatusInternalServerError,
	ErrCodeProviderTimeout:         http.StatusInternalServerError,
	ErrCodeProviderResponseInvalid: http.StatusInternalServerError,
	ErrCodeInternal:                http.StatusInternalServerError,
}

// GetHTTPStatus maps an error code to its HTTP status, defaulting to 500.
func GetHTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GetErrorCategory groups codes for logs and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeResumeTextRequired, ErrCodeInvalidRequestBody, ErrCodeRequestBodyTooLarge:
		return "validation"
	case ErrCodeProviderFailed, ErrCodeProviderTimeout, ErrCodeProviderResponseInvalid:
		return "provider"
	default:
		return "internal"
	}
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return GetErrorCategory(stdErr.Code) == "validation"
	}
	return false
}

// AsStandardError converts any error into a StandardError, treating unknown
// errors as internal.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

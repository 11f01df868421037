package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Transcription domain constructors ---

// InvalidAudio creates a new AppError for audio that failed validation.
func InvalidAudio(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidAudio, Message: fmt.Sprintf("Invalid audio: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// BackendUnavailable creates a new AppError for a backend that could not be
// constructed.
func BackendUnavailable(backend string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBackendUnavailable, Message: fmt.Sprintf("The %s backend is unavailable. Please try again.", backend),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"backend": backend}, Cause: cause,
	}
}

// TranscriptionFailed creates a new AppError for a request where every
// candidate backend failed inference.
func TranscriptionFailed(language string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: "Transcription failed on all available backends. Please try again.",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"language": language}, Cause: cause,
	}
}

// Cancelled creates a new AppError for work cancelled by shutdown or a
// caller-initiated cancellation.
func Cancelled(operation string) *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: "The request was cancelled before completing.",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// BackendError creates a new AppError for a single failed backend attempt.
func BackendError(backend string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBackendError, Message: fmt.Sprintf("The %s backend failed.", backend),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"backend": backend}, Cause: cause,
	}
}

// UnsupportedLanguage creates a new AppError for an unknown language code.
func UnsupportedLanguage(language string, supported []string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedLanguage, Message: fmt.Sprintf("Unsupported language %q.", language),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"language": language, "supported": supported},
	}
}

// PayloadTooLarge creates a new AppError for an oversized upload.
func PayloadTooLarge(maxBytes int64) *AppError {
	return &AppError{
		Code: ErrCodePayloadTooLarge, Message: fmt.Sprintf("File too large. Max size: %dMB", maxBytes/1024/1024),
		HTTPStatus: http.StatusRequestEntityTooLarge, Retryable: false,
		Details: map[string]any{"max_bytes": maxBytes},
	}
}

// --- Generic constructors ---

// ServiceUnavailable creates a new AppError for a service that is
// temporarily unavailable (e.g. draining during shutdown).
func ServiceUnavailable(reason string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: reason,
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// RateLimited creates a new AppError for too many requests.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please wait a moment and try again.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

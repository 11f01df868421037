package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transcription domain errors
const (
	// ErrCodeInvalidAudio indicates the uploaded audio failed validation
	// (bad format, size, or duration). User-correctable, never retried.
	ErrCodeInvalidAudio ErrorCode = "INVALID_AUDIO"
	// ErrCodeBackendUnavailable indicates no candidate backend could be
	// constructed for the request. May be transient.
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	// ErrCodeTranscriptionFailed indicates every candidate backend failed
	// inference. The caller may retry.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeCancelled indicates the request was cancelled by a timeout or
	// service shutdown, distinct from failure so callers can retry.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeBackendError indicates a single backend attempt failed. It is
	// recovered locally via fallback and only surfaces when it was the last
	// remaining candidate.
	ErrCodeBackendError ErrorCode = "BACKEND_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeUnsupportedLanguage indicates the requested language has no
	// registered backend family.
	ErrCodeUnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// ErrCodePayloadTooLarge indicates the upload exceeds the size limit.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Availability errors
const (
	// ErrCodeServiceUnavailable indicates the service is draining or not
	// yet ready to accept work.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeBackendUnavailable:  true,
	ErrCodeTranscriptionFailed: true,
	ErrCodeCancelled:           true,
	ErrCodeBackendError:        true,
	ErrCodeServiceUnavailable:  true,
	ErrCodeTimeout:             true,
	ErrCodeRateLimited:         true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

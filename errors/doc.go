// Package errors provides unified error handling for the vaani service.
// It implements structured error types with machine-readable codes, HTTP
// status mapping, and retryable detection. Transcription-specific codes
// (INVALID_AUDIO, BACKEND_UNAVAILABLE, TRANSCRIPTION_FAILED, CANCELLED)
// live alongside generic request/internal codes so every user-visible
// failure carries a kind plus a human-readable message.
package errors

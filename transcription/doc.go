// Package transcription routes speech-to-text requests across model
// backends.
//
// The Selector maps a request's language to an ordered list of backend
// kinds. The Registry caches one backend handle per (language, decoding,
// kind) key, constructing each at most once even under concurrent demand.
// The Engine walks the candidate list in order, dispatching inference
// through a bulkhead with a bounded per-attempt timeout, and falls back to
// the next candidate when an attempt fails. Batch requests fan out over a
// bounded worker pool with per-item isolation.
package transcription

package transcription

import "context"

// Backend is a loaded model handle. Implementations are safe for
// concurrent use and stay valid after eviction from the registry until
// Close is called.
type Backend interface {
	// Kind returns the backend kind.
	Kind() Kind

	// Transcribe runs inference on the request's clip.
	Transcribe(ctx context.Context, req *Request) (*RawResult, error)

	// IsAvailable checks whether the backend can serve requests.
	IsAvailable(ctx context.Context) bool

	// Close releases the handle's resources.
	Close() error
}

// Factory constructs a backend handle for a model key.
type Factory func(key ModelKey) (Backend, error)

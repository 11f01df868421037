package transcription

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/skillsenselab/vaani/component"
	"github.com/skillsenselab/vaani/errors"
	"github.com/skillsenselab/vaani/logger"
)

// Registry caches one backend handle per model key. Construction is
// single-flight: K concurrent requests for an uncached key produce exactly
// one factory call, and the other K-1 block until it resolves. Failed
// constructions are not cached, so the next request retries.
//
// There is no automatic eviction. Evict replaces the cache entry without
// closing the old handle; in-flight holders keep using it until they
// finish.
type Registry struct {
	mu        sync.RWMutex
	handles   map[ModelKey]Backend
	factories map[Kind]Factory

	group singleflight.Group
	log   *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handles:   make(map[ModelKey]Backend),
		factories: make(map[Kind]Factory),
		log:       logger.WithComponent("model-registry"),
	}
}

// RegisterFactory installs the constructor for a backend kind.
func (r *Registry) RegisterFactory(kind Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// GetOrCreate returns the cached handle for key, constructing it at most
// once across concurrent callers.
func (r *Registry) GetOrCreate(ctx context.Context, key ModelKey) (Backend, error) {
	if b := r.get(key); b != nil {
		return b, nil
	}

	v, err, _ := r.group.Do(key.String(), func() (interface{}, error) {
		// Another caller may have finished between the cache miss and
		// entering the group.
		if b := r.get(key); b != nil {
			return b, nil
		}

		r.mu.RLock()
		factory, ok := r.factories[key.Kind]
		r.mu.RUnlock()
		if !ok {
			return nil, errors.BackendUnavailable(string(key.Kind), fmt.Errorf("no factory registered"))
		}

		r.log.Info("Loading model", map[string]interface{}{
			logger.FieldLanguage: key.Language,
			logger.FieldBackend:  string(key.Kind),
			logger.FieldDecoding: string(key.Decoding),
		})

		b, err := factory(key)
		if err != nil {
			return nil, errors.BackendUnavailable(string(key.Kind), err)
		}

		r.mu.Lock()
		r.handles[key] = b
		r.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Backend), nil
}

// Evict removes the cached handle for key without closing it. Returns the
// evicted handle so the caller can Close it once no request holds it.
func (r *Registry) Evict(key ModelKey) (Backend, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.handles[key]
	if ok {
		delete(r.handles, key)
		r.log.Info("Evicted model", map[string]interface{}{
			logger.FieldLanguage: key.Language,
			logger.FieldBackend:  string(key.Kind),
		})
	}
	return b, ok
}

// Cached returns the number of live handles.
func (r *Registry) Cached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Keys returns the cached model keys.
func (r *Registry) Keys() []ModelKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]ModelKey, 0, len(r.handles))
	for k := range r.handles {
		keys = append(keys, k)
	}
	return keys
}

func (r *Registry) get(key ModelKey) Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handles[key]
}

// --- component.Component ---

// Name returns the component name.
func (r *Registry) Name() string { return "model-registry" }

// Start is a no-op; models load lazily on first request.
func (r *Registry) Start(ctx context.Context) error { return nil }

// Stop closes every cached handle.
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[ModelKey]Backend)
	r.mu.Unlock()

	var firstErr error
	for key, b := range handles {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", key, err)
		}
	}
	return firstErr
}

// Health reports the cached handle count.
func (r *Registry) Health(ctx context.Context) component.Health {
	return component.Healthy(r.Name(), fmt.Sprintf("%d models cached", r.Cached()))
}

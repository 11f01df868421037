package transcription

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/skillsenselab/vaani/errors"
)

type countingBackend struct {
	kind   Kind
	id     int32
	closed atomic.Bool
}

func (b *countingBackend) Kind() Kind { return b.kind }
func (b *countingBackend) Transcribe(ctx context.Context, req *Request) (*RawResult, error) {
	if b.closed.Load() {
		return nil, fmt.Errorf("backend closed")
	}
	return &RawResult{Transcript: "ok", Confidence: 0.9, DurationSeconds: 1}, nil
}
func (b *countingBackend) IsAvailable(ctx context.Context) bool { return !b.closed.Load() }
func (b *countingBackend) Close() error {
	b.closed.Store(true)
	return nil
}

func TestGetOrCreateSingleFlight(t *testing.T) {
	var constructions atomic.Int32
	r := NewRegistry()
	r.RegisterFactory(KindConformerONNX, func(key ModelKey) (Backend, error) {
		id := constructions.Add(1)
		return &countingBackend{kind: key.Kind, id: id}, nil
	})

	key := ModelKey{Language: "hi", Decoding: DecodingCTC, Kind: KindConformerONNX}

	const callers = 32
	backends := make([]Backend, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := r.GetOrCreate(context.Background(), key)
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			backends[i] = b
		}(i)
	}
	wg.Wait()

	if got := constructions.Load(); got != 1 {
		t.Errorf("constructions = %d, want exactly 1 for concurrent callers", got)
	}
	for i := 1; i < callers; i++ {
		if backends[i] != backends[0] {
			t.Fatal("callers received different handles")
		}
	}
}

func TestGetOrCreateDistinctKeys(t *testing.T) {
	var constructions atomic.Int32
	r := NewRegistry()
	r.RegisterFactory(KindConformerONNX, func(key ModelKey) (Backend, error) {
		constructions.Add(1)
		return &countingBackend{kind: key.Kind}, nil
	})

	ctx := context.Background()
	r.GetOrCreate(ctx, ModelKey{Language: "hi", Decoding: DecodingCTC, Kind: KindConformerONNX})
	r.GetOrCreate(ctx, ModelKey{Language: "hi", Decoding: DecodingRNNT, Kind: KindConformerONNX})
	r.GetOrCreate(ctx, ModelKey{Language: "ta", Decoding: DecodingCTC, Kind: KindConformerONNX})

	if got := constructions.Load(); got != 3 {
		t.Errorf("constructions = %d, want 3 distinct keys", got)
	}
	if r.Cached() != 3 {
		t.Errorf("Cached = %d, want 3", r.Cached())
	}
}

func TestFailedConstructionNotCached(t *testing.T) {
	var attempts atomic.Int32
	r := NewRegistry()
	r.RegisterFactory(KindWhisper, func(key ModelKey) (Backend, error) {
		if attempts.Add(1) == 1 {
			return nil, fmt.Errorf("weights download failed")
		}
		return &countingBackend{kind: key.Kind}, nil
	})

	key := ModelKey{Language: "en", Decoding: DecodingCTC, Kind: KindWhisper}
	ctx := context.Background()

	_, err := r.GetOrCreate(ctx, key)
	if errors.CodeOf(err) != errors.ErrCodeBackendUnavailable {
		t.Fatalf("err = %v, want BACKEND_UNAVAILABLE", err)
	}
	if r.Cached() != 0 {
		t.Error("failed construction must not be cached")
	}

	// Second call retries the factory.
	if _, err := r.GetOrCreate(ctx, key); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want 2", attempts.Load())
	}
}

func TestNoFactoryRegistered(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetOrCreate(context.Background(), ModelKey{Language: "hi", Decoding: DecodingCTC, Kind: KindConformerHF})
	if errors.CodeOf(err) != errors.ErrCodeBackendUnavailable {
		t.Errorf("err = %v, want BACKEND_UNAVAILABLE", err)
	}
}

func TestEvictLeavesOldHandleValid(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(KindConformerONNX, func(key ModelKey) (Backend, error) {
		return &countingBackend{kind: key.Kind}, nil
	})

	key := ModelKey{Language: "hi", Decoding: DecodingCTC, Kind: KindConformerONNX}
	ctx := context.Background()

	oldHandle, err := r.GetOrCreate(ctx, key)
	if err != nil {
		t.Fatal(err)
	}

	evicted, ok := r.Evict(key)
	if !ok || evicted != oldHandle {
		t.Fatal("Evict should return the cached handle")
	}
	if r.Cached() != 0 {
		t.Error("handle should be gone from the cache")
	}

	// The evicted handle still serves in-flight holders.
	if _, err := oldHandle.Transcribe(ctx, &Request{}); err != nil {
		t.Errorf("evicted handle should remain usable: %v", err)
	}

	// A fresh request constructs a replacement.
	newHandle, err := r.GetOrCreate(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if newHandle == oldHandle {
		t.Error("expected a new handle after eviction")
	}
}

func TestEvictMissingKey(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Evict(ModelKey{Language: "hi", Decoding: DecodingCTC, Kind: KindWhisper}); ok {
		t.Error("Evict of unknown key should report false")
	}
}

func TestStopClosesHandles(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(KindConformerONNX, func(key ModelKey) (Backend, error) {
		return &countingBackend{kind: key.Kind}, nil
	})

	ctx := context.Background()
	b, err := r.GetOrCreate(ctx, ModelKey{Language: "hi", Decoding: DecodingCTC, Kind: KindConformerONNX})
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !b.(*countingBackend).closed.Load() {
		t.Error("Stop should close cached handles")
	}
	if r.Cached() != 0 {
		t.Errorf("Cached = %d after Stop", r.Cached())
	}
}

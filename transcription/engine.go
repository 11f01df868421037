package transcription

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skillsenselab/vaani/component"
	"github.com/skillsenselab/vaani/errors"
	"github.com/skillsenselab/vaani/logger"
	"github.com/skillsenselab/vaani/metrics"
	"github.com/skillsenselab/vaani/resilience"
	"github.com/skillsenselab/vaani/textnorm"
)

// Observer receives a callback per completed transcription attempt chain.
// The observability package implements it; a nil observer is skipped.
type Observer interface {
	ObserveTranscription(language string, backend Kind, usedFallback bool, inference time.Duration, err error)
}

// Engine orchestrates transcription: candidate selection, handle lookup,
// bulkhead-bounded inference with per-attempt timeouts, and ordered
// fallback.
type Engine struct {
	cfg      Config
	registry *Registry
	selector *Selector
	bulkhead *resilience.Bulkhead
	stats    *Stats
	observer Observer
	log      *logger.Logger

	inflight sync.WaitGroup
	mu       sync.Mutex
	draining bool
}

// NewEngine creates an engine over the given registry.
func NewEngine(cfg Config, registry *Registry) *Engine {
	cfg.ApplyDefaults()
	return &Engine{
		cfg:      cfg,
		registry: registry,
		selector: NewSelector(cfg.CodeMixThreshold),
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "inference",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.MaxWait,
		}),
		stats: NewStats(),
		log:   logger.WithComponent("engine"),
	}
}

// SetObserver installs the metrics observer. Must be called before serving.
func (e *Engine) SetObserver(o Observer) { e.observer = o }

// Stats returns the engine's counters.
func (e *Engine) Stats() *Stats { return e.stats }

// Registry returns the engine's model registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Transcribe runs one request through the candidate chain.
//
// Attempt failures (including per-attempt timeouts) advance to the next
// candidate; cancellation of the caller's context aborts immediately with
// a CANCELLED error. When every candidate fails the request fails with
// TRANSCRIPTION_FAILED.
func (e *Engine) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return nil, errors.ServiceUnavailable("service is shutting down")
	}
	e.inflight.Add(1)
	e.mu.Unlock()
	defer e.inflight.Done()

	if req.Clip == nil {
		return nil, errors.InvalidAudio("no audio provided")
	}
	declared := req.Language
	if declared == "" {
		declared = e.cfg.DefaultLanguage
	}
	if !IsSupported(declared) {
		return nil, errors.UnsupportedLanguage(declared, SupportedLanguages())
	}
	decoding := req.Decoding
	if decoding == "" {
		decoding = e.cfg.DefaultDecoding
	}
	if !ValidDecoding(decoding) {
		return nil, errors.InvalidInput("decoding", fmt.Sprintf("unknown decoding mode %q", decoding))
	}

	language := e.selector.ResolveLanguage(declared, req.Hint)
	candidates := e.selector.Select(declared, req.Hint)

	var lastErr error
	for i, kind := range candidates {
		if ctx.Err() != nil {
			e.stats.RecordCancelled(language)
			return nil, errors.Cancelled("transcribe")
		}

		raw, inference, err := e.attempt(ctx, ModelKey{Language: language, Decoding: decoding, Kind: kind}, req)
		if e.observer != nil {
			e.observer.ObserveTranscription(language, kind, i > 0, inference, err)
		}
		if err != nil {
			// A dead parent context means the caller is gone, not that
			// the backend misbehaved.
			if ctx.Err() != nil {
				e.stats.RecordCancelled(language)
				return nil, errors.Cancelled("transcribe")
			}
			lastErr = err
			e.log.Warn("Backend attempt failed", logger.MergeWithError(map[string]interface{}{
				logger.FieldLanguage: language,
				logger.FieldBackend:  string(kind),
			}, err))
			continue
		}

		duration := req.Clip.DurationSeconds
		if duration == 0 {
			duration = raw.DurationSeconds
		}

		result := &Result{
			Transcript:   raw.Transcript,
			Language:     language,
			Backend:      kind,
			Metrics:      metrics.Compute(raw.Transcript, req.TargetText, raw.Confidence, duration, inference),
			UsedFallback: i > 0,
		}
		if req.Normalize {
			result.NormalizedText = textnorm.Normalize(raw.Transcript, language)
		}

		e.stats.RecordSuccess(language, i > 0, result.Metrics.RTF, inference)
		e.log.Info("Transcription complete", map[string]interface{}{
			logger.FieldLanguage: language,
			logger.FieldBackend:  string(kind),
			logger.FieldRTF:      result.Metrics.RTF,
			"fallback":           i > 0,
		})
		return result, nil
	}

	e.stats.RecordFailure(language)
	return nil, errors.TranscriptionFailed(language, lastErr)
}

// attempt runs a single backend try under the bulkhead with a bounded
// timeout.
func (e *Engine) attempt(ctx context.Context, key ModelKey, req *Request) (*RawResult, time.Duration, error) {
	backend, err := e.registry.GetOrCreate(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	start := time.Now()
	raw, err := resilience.ExecuteWithResult(e.bulkhead, attemptCtx, func() (*RawResult, error) {
		return backend.Transcribe(attemptCtx, req)
	})
	inference := time.Since(start)

	if err != nil {
		return nil, inference, errors.BackendError(string(key.Kind), err)
	}
	if raw == nil || strings.TrimSpace(raw.Transcript) == "" {
		return nil, inference, errors.BackendError(string(key.Kind), fmt.Errorf("empty transcript"))
	}
	return raw, inference, nil
}

// --- component.Component ---

// Name returns the component name.
func (e *Engine) Name() string { return "engine" }

// Start is a no-op.
func (e *Engine) Start(ctx context.Context) error { return nil }

// Stop drains in-flight work, bounded by the drain timeout.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	e.draining = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()

	timer := time.NewTimer(e.cfg.DrainTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("engine drain timed out after %s", e.cfg.DrainTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports the bulkhead's load and rejection counters.
func (e *Engine) Health(ctx context.Context) component.Health {
	e.mu.Lock()
	draining := e.draining
	e.mu.Unlock()

	if draining {
		return component.Degraded(e.Name(), "draining")
	}
	st := e.bulkhead.Stats()
	return component.Healthy(e.Name(), fmt.Sprintf(
		"%d/%d inference slots in use, %d rejected, %d wait timeouts",
		st.InUse, st.MaxConcurrent, st.Rejected, st.TimedOut))
}

// Draining reports whether shutdown has begun. The health endpoint uses it
// without touching the model cache.
func (e *Engine) Draining() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draining
}

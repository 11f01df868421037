package transcription

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillsenselab/vaani/audio"
	"github.com/skillsenselab/vaani/errors"
)

type stubBackend struct {
	kind       Kind
	transcript string
	confidence float64
	duration   float64
	err        error
	delay      time.Duration
	calls      atomic.Int32
}

func (s *stubBackend) Kind() Kind { return s.kind }

func (s *stubBackend) Transcribe(ctx context.Context, req *Request) (*RawResult, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	dur := s.duration
	if dur == 0 {
		dur = 2.0
	}
	return &RawResult{Transcript: s.transcript, Confidence: s.confidence, DurationSeconds: dur}, nil
}

func (s *stubBackend) IsAvailable(ctx context.Context) bool { return true }
func (s *stubBackend) Close() error                         { return nil }

func staticFactory(b Backend) Factory {
	return func(key ModelKey) (Backend, error) { return b, nil }
}

func testClip() *audio.Clip {
	return &audio.Clip{
		Filename:        "test.wav",
		Format:          audio.FormatWAV,
		Data:            []byte("fake"),
		DurationSeconds: 2.0,
	}
}

func newTestEngine(cfg Config, backends map[Kind]Backend) *Engine {
	r := NewRegistry()
	for kind, b := range backends {
		r.RegisterFactory(kind, staticFactory(b))
	}
	return NewEngine(cfg, r)
}

func TestTranscribePrimarySucceeds(t *testing.T) {
	primary := &stubBackend{kind: KindConformerONNX, transcript: "नमस्ते", confidence: 0.92}
	fallback := &stubBackend{kind: KindConformerHF, transcript: "unused", confidence: 0.5}
	e := newTestEngine(Config{}, map[Kind]Backend{KindConformerONNX: primary, KindConformerHF: fallback})

	res, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Backend != KindConformerONNX || res.UsedFallback {
		t.Errorf("Backend = %s, UsedFallback = %v", res.Backend, res.UsedFallback)
	}
	if res.Transcript != "नमस्ते" {
		t.Errorf("Transcript = %q", res.Transcript)
	}
	if fallback.calls.Load() != 0 {
		t.Error("fallback must not be called when primary succeeds")
	}
}

func TestTranscribeFallsBackOnError(t *testing.T) {
	primary := &stubBackend{kind: KindConformerONNX, err: fmt.Errorf("onnx session crashed")}
	fallback := &stubBackend{kind: KindConformerHF, transcript: "नमस्ते", confidence: 0.85}
	e := newTestEngine(Config{}, map[Kind]Backend{KindConformerONNX: primary, KindConformerHF: fallback})

	res, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Backend != KindConformerHF || !res.UsedFallback {
		t.Errorf("Backend = %s, UsedFallback = %v, want fallback", res.Backend, res.UsedFallback)
	}
}

func TestTranscribeFallsBackOnEmptyTranscript(t *testing.T) {
	primary := &stubBackend{kind: KindConformerONNX, transcript: "   "}
	fallback := &stubBackend{kind: KindConformerHF, transcript: "ok", confidence: 0.8}
	e := newTestEngine(Config{}, map[Kind]Backend{KindConformerONNX: primary, KindConformerHF: fallback})

	res, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Backend != KindConformerHF {
		t.Errorf("empty transcript should trigger fallback, got %s", res.Backend)
	}
}

func TestTranscribeAttemptTimeoutFallsBack(t *testing.T) {
	primary := &stubBackend{kind: KindConformerONNX, transcript: "slow", delay: 200 * time.Millisecond}
	fallback := &stubBackend{kind: KindConformerHF, transcript: "fast", confidence: 0.8}
	e := newTestEngine(Config{AttemptTimeout: 50 * time.Millisecond}, map[Kind]Backend{
		KindConformerONNX: primary, KindConformerHF: fallback,
	})

	res, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Backend != KindConformerHF {
		t.Errorf("slow primary should fall back, got %s", res.Backend)
	}
}

func TestTranscribeAllFail(t *testing.T) {
	e := newTestEngine(Config{}, map[Kind]Backend{
		KindConformerONNX: &stubBackend{kind: KindConformerONNX, err: fmt.Errorf("down")},
		KindConformerHF:   &stubBackend{kind: KindConformerHF, err: fmt.Errorf("also down")},
	})

	_, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi"})
	if errors.CodeOf(err) != errors.ErrCodeTranscriptionFailed {
		t.Errorf("err = %v, want TRANSCRIPTION_FAILED", err)
	}

	snap := e.Stats().Snapshot()
	if snap.Failed != 1 {
		t.Errorf("Failed = %d, want 1", snap.Failed)
	}
}

func TestTranscribeParentCancellation(t *testing.T) {
	slow := &stubBackend{kind: KindConformerONNX, transcript: "x", delay: time.Second}
	e := newTestEngine(Config{}, map[Kind]Backend{
		KindConformerONNX: slow,
		KindConformerHF:   &stubBackend{kind: KindConformerHF, transcript: "y", confidence: 0.5},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := e.Transcribe(ctx, &Request{Clip: testClip(), Language: "hi"})
	if errors.CodeOf(err) != errors.ErrCodeCancelled {
		t.Errorf("err = %v, want CANCELLED, not a backend fallback", err)
	}

	snap := e.Stats().Snapshot()
	if snap.Cancelled != 1 {
		t.Errorf("Cancelled = %d, want 1", snap.Cancelled)
	}
}

func TestTranscribeUnsupportedLanguage(t *testing.T) {
	e := newTestEngine(Config{}, map[Kind]Backend{})
	_, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "fr"})
	if errors.CodeOf(err) != errors.ErrCodeUnsupportedLanguage {
		t.Errorf("err = %v, want UNSUPPORTED_LANGUAGE", err)
	}
}

func TestTranscribeInvalidDecoding(t *testing.T) {
	e := newTestEngine(Config{}, map[Kind]Backend{})
	_, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi", Decoding: "beam"})
	if errors.CodeOf(err) != errors.ErrCodeInvalidInput {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestTranscribeDefaultsLanguageAndDecoding(t *testing.T) {
	primary := &stubBackend{kind: KindConformerONNX, transcript: "ok", confidence: 0.9}
	e := newTestEngine(Config{}, map[Kind]Backend{KindConformerONNX: primary})

	res, err := e.Transcribe(context.Background(), &Request{Clip: testClip()})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Language != DefaultLanguage {
		t.Errorf("Language = %q, want default %q", res.Language, DefaultLanguage)
	}
}

func TestTranscribeEnglishRoutesToWhisper(t *testing.T) {
	whisper := &stubBackend{kind: KindWhisper, transcript: "hello world", confidence: 0.95}
	onnx := &stubBackend{kind: KindConformerONNX, transcript: "x", confidence: 0.9}
	e := newTestEngine(Config{}, map[Kind]Backend{KindWhisper: whisper, KindConformerONNX: onnx})

	res, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "en"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Backend != KindWhisper {
		t.Errorf("Backend = %s, want whisper for English", res.Backend)
	}
	if onnx.calls.Load() != 0 {
		t.Error("conformer must not be consulted for English")
	}
}

func TestTranscribeMetrics(t *testing.T) {
	primary := &stubBackend{kind: KindConformerONNX, transcript: "नमस्ते आप कैसे", confidence: 0.9}
	e := newTestEngine(Config{}, map[Kind]Backend{KindConformerONNX: primary})

	res, err := e.Transcribe(context.Background(), &Request{
		Clip: testClip(), Language: "hi", TargetText: "नमस्ते आप कैसे हो",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Metrics.WER == nil || math.Abs(*res.Metrics.WER-0.25) > 1e-9 {
		t.Errorf("WER = %v, want 0.25", res.Metrics.WER)
	}
	if res.Metrics.Accuracy == nil || math.Abs(*res.Metrics.Accuracy-75.0) > 1e-9 {
		t.Errorf("Accuracy = %v, want 75", res.Metrics.Accuracy)
	}
	if res.Metrics.RTF <= 0 {
		t.Errorf("RTF = %f, want > 0", res.Metrics.RTF)
	}
}

func TestTranscribeNormalize(t *testing.T) {
	primary := &stubBackend{kind: KindConformerONNX, transcript: "नमस्ते,   आप!", confidence: 0.9}
	e := newTestEngine(Config{}, map[Kind]Backend{KindConformerONNX: primary})

	res, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi", Normalize: true})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.NormalizedText != "नमस्ते आप" {
		t.Errorf("NormalizedText = %q", res.NormalizedText)
	}
}

func TestTranscribeRejectedWhileDraining(t *testing.T) {
	e := newTestEngine(Config{DrainTimeout: 100 * time.Millisecond}, map[Kind]Backend{
		KindConformerONNX: &stubBackend{kind: KindConformerONNX, transcript: "ok", confidence: 0.9},
	})
	if err := e.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	_, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi"})
	if errors.CodeOf(err) != errors.ErrCodeServiceUnavailable {
		t.Errorf("err = %v, want SERVICE_UNAVAILABLE while draining", err)
	}
}

func TestStatsFallbackRate(t *testing.T) {
	primary := &stubBackend{kind: KindConformerONNX, err: fmt.Errorf("down")}
	fallback := &stubBackend{kind: KindConformerHF, transcript: "ok", confidence: 0.8}
	e := newTestEngine(Config{}, map[Kind]Backend{KindConformerONNX: primary, KindConformerHF: fallback})

	for i := 0; i < 4; i++ {
		if _, err := e.Transcribe(context.Background(), &Request{Clip: testClip(), Language: "hi"}); err != nil {
			t.Fatalf("Transcribe: %v", err)
		}
	}

	snap := e.Stats().Snapshot()
	if snap.Successful != 4 {
		t.Errorf("Successful = %d", snap.Successful)
	}
	hi := snap.ByLanguage["hi"]
	if hi.FallbackRate != 1.0 {
		t.Errorf("FallbackRate = %f, want 1.0", hi.FallbackRate)
	}
	if snap.Inference.MinMS < 0 || snap.Inference.MaxMS < snap.Inference.MinMS {
		t.Errorf("inference stats inconsistent: %+v", snap.Inference)
	}
}

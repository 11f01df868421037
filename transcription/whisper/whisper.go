// Package whisper talks to a faster-whisper HTTP sidecar, used for
// English and code-mixed audio. Whisper reports an average log
// probability per segment; confidence is exp(avg_logprob) clamped to
// [0, 1].
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/skillsenselab/vaani/transcription"
)

const (
	defaultURL     = "http://localhost:8387"
	defaultModel   = "small"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the Whisper sidecar.
type Config struct {
	URL         string        `json:"url" yaml:"url" mapstructure:"url"`
	Model       string        `json:"model" yaml:"model" mapstructure:"model"`
	Device      string        `json:"device,omitempty" yaml:"device" mapstructure:"device"`
	ComputeType string        `json:"compute_type,omitempty" yaml:"compute_type" mapstructure:"compute_type"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Backend implements transcription.Backend over the Whisper sidecar.
type Backend struct {
	cfg    Config
	key    transcription.ModelKey
	client *http.Client
}

// New creates a backend handle for the given model key.
func New(cfg Config, key transcription.ModelKey) *Backend {
	cfg.ApplyDefaults()
	return &Backend{
		cfg:    cfg,
		key:    key,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Factory returns a transcription.Factory bound to this config.
func Factory(cfg Config) transcription.Factory {
	return func(key transcription.ModelKey) (transcription.Backend, error) {
		return New(cfg, key), nil
	}
}

// Kind returns the backend kind.
func (b *Backend) Kind() transcription.Kind { return transcription.KindWhisper }

// IsAvailable checks if the Whisper sidecar is reachable.
func (b *Backend) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Close releases the handle.
func (b *Backend) Close() error { return nil }

// Transcribe sends the clip to the Whisper sidecar and returns the
// transcript.
func (b *Backend) Transcribe(ctx context.Context, req *transcription.Request) (*transcription.RawResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", req.Clip.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Clip.Data); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	_ = writer.WriteField("model", b.cfg.Model)
	if b.key.Language != "" && b.key.Language != transcription.LanguageAuto {
		_ = writer.WriteField("language", b.key.Language)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	return toRawResult(&result), nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	AvgLogProb float64 `json:"avg_logprob"`
}

func toRawResult(resp *whisperResponse) *transcription.RawResult {
	var duration float64
	if len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	confidence := 0.0
	if len(resp.Segments) > 0 {
		sum := 0.0
		for _, seg := range resp.Segments {
			sum += seg.AvgLogProb
		}
		confidence = math.Exp(sum / float64(len(resp.Segments)))
		confidence = math.Max(0, math.Min(1, confidence))
	}

	return &transcription.RawResult{
		Transcript:      resp.Text,
		Confidence:      confidence,
		DurationSeconds: duration,
	}
}

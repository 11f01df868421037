// Package conformerhf talks to the transformers-pipeline conformer
// sidecar, used as the fallback when the ONNX backend fails. The pipeline
// does not expose token probabilities, so confidence defaults to a fixed
// value when the sidecar omits it.
package conformerhf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/skillsenselab/vaani/transcription"
)

const (
	defaultURL     = "http://localhost:8602"
	defaultTimeout = 120 * time.Second

	// defaultConfidence is reported when the pipeline returns none.
	defaultConfidence = 0.85
)

// Config holds configuration for the transformers conformer sidecar.
type Config struct {
	URL     string        `json:"url" yaml:"url" mapstructure:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Backend implements transcription.Backend over the transformers sidecar.
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
func (b *Backend) Kind() transcription.Kind { return transcription.KindConformerHF }

// IsAvailable checks if the sidecar is reachable.
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

// Transcribe sends the clip to the sidecar and returns the transcript.
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

	_ = writer.WriteField("language", b.key.Language)
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("conformer-hf request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("conformer-hf error (status %d): %s", resp.StatusCode, string(body))
	}

	var result hfResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode conformer-hf response: %w", err)
	}

	confidence := defaultConfidence
	if result.Confidence != nil {
		confidence = *result.Confidence
	}

	return &transcription.RawResult{
		Transcript:      result.Text,
		Confidence:      confidence,
		DurationSeconds: result.Duration,
	}, nil
}

// --- internal sidecar API response ---

type hfResponse struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
	Duration   float64  `json:"duration"`
}

package transcription

import (
	"fmt"

	"github.com/skillsenselab/vaani/audio"
	"github.com/skillsenselab/vaani/metrics"
)

// Kind identifies a backend implementation.
type Kind string

const (
	// KindConformerONNX is the on-device ONNX conformer, the primary
	// backend for Indic languages. Supports ctc and rnnt decoding.
	KindConformerONNX Kind = "conformer-onnx"
	// KindConformerHF is the transformers-pipeline conformer used as the
	// fallback when the ONNX backend fails.
	KindConformerHF Kind = "conformer-hf"
	// KindWhisper handles English and code-mixed audio.
	KindWhisper Kind = "whisper"
)

// DecodingMode selects the conformer decoding strategy.
type DecodingMode string

const (
	DecodingCTC  DecodingMode = "ctc"
	DecodingRNNT DecodingMode = "rnnt"
)

// ValidDecoding reports whether the mode is a known decoding strategy.
func ValidDecoding(m DecodingMode) bool {
	return m == DecodingCTC || m == DecodingRNNT
}

// ModelKey identifies one cached backend handle.
type ModelKey struct {
	Language string
	Decoding DecodingMode
	Kind     Kind
}

// String returns the canonical cache key form.
func (k ModelKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Language, k.Decoding, k.Kind)
}

// Request is a single transcription job.
type Request struct {
	// Clip is the validated upload.
	Clip *audio.Clip
	// Language is the declared language code, or LanguageAuto.
	Language string
	// Decoding selects the conformer decoding strategy.
	Decoding DecodingMode
	// TargetText, when set, enables WER and accuracy computation.
	TargetText string
	// Normalize requests script-aware text normalization of the transcript.
	Normalize bool
	// Hint is optional text used for code-mix detection under auto routing.
	Hint string
}

// RawResult is what a backend returns before metrics are computed.
// Confidence is already normalized to [0, 1] by the backend adapter.
type RawResult struct {
	Transcript      string
	Confidence      float64
	DurationSeconds float64
}

// Result is a completed transcription with its quality metrics.
type Result struct {
	Transcript     string          `json:"transcript"`
	NormalizedText string          `json:"normalized_text,omitempty"`
	Language       string          `json:"language"`
	Backend        Kind            `json:"backend"`
	Metrics        metrics.Metrics `json:"metrics"`
	UsedFallback   bool            `json:"used_fallback,omitempty"`
}

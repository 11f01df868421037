package metrics

import "time"

// Metrics is the per-transcription quality block returned to clients.
type Metrics struct {
	Confidence      float64  `json:"confidence"`
	RTF             float64  `json:"rtf"`
	DurationSeconds float64  `json:"duration_seconds"`
	InferenceTimeMS int64    `json:"inference_time_ms"`
	WER             *float64 `json:"wer,omitempty"`
	Accuracy        *float64 `json:"accuracy,omitempty"`
}

// Compute assembles the metrics for one transcription.
//
// rtf is inference time over audio duration; 0 when the duration is
// unknown. confidence is clamped to [0, 1]. When targetText has at least
// one token, WER and accuracy are filled in; otherwise both are omitted.
func Compute(transcript, targetText string, confidence, durationSeconds float64, inference time.Duration) Metrics {
	m := Metrics{
		Confidence:      clamp(confidence, 0, 1),
		DurationSeconds: durationSeconds,
		InferenceTimeMS: inference.Milliseconds(),
	}
	if durationSeconds > 0 {
		m.RTF = inference.Seconds() / durationSeconds
	}

	if wer, _, ok := WER(targetText, transcript); ok {
		acc := clamp((1-wer)*100, 0, 100)
		m.WER = &wer
		m.Accuracy = &acc
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package metrics computes per-transcription quality numbers: real-time
// factor, normalized confidence, and word error rate against an optional
// reference text.
package metrics

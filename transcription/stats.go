package transcription

import (
	"sync"
	"time"
)

// Stats collects in-process counters for the /stats endpoint.
type Stats struct {
	mu sync.Mutex

	total      uint64
	successful uint64
	failed     uint64
	cancelled  uint64

	rtfSum   float64
	rtfCount uint64

	infTotal time.Duration
	infMin   time.Duration
	infMax   time.Duration

	byLanguage map[string]*languageCounters
}

type languageCounters struct {
	requests  uint64
	fallbacks uint64
}

// NewStats creates an empty collector.
func NewStats() *Stats {
	return &Stats{byLanguage: make(map[string]*languageCounters)}
}

// RecordSuccess records a completed transcription.
func (s *Stats) RecordSuccess(language string, usedFallback bool, rtf float64, inference time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.successful++
	if rtf > 0 {
		s.rtfSum += rtf
		s.rtfCount++
	}

	s.infTotal += inference
	if s.infMin == 0 || inference < s.infMin {
		s.infMin = inference
	}
	if inference > s.infMax {
		s.infMax = inference
	}

	lc := s.lang(language)
	lc.requests++
	if usedFallback {
		lc.fallbacks++
	}
}

// RecordFailure records a request where every candidate failed.
func (s *Stats) RecordFailure(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.failed++
	s.lang(language).requests++
}

// RecordCancelled records a request abandoned by cancellation.
func (s *Stats) RecordCancelled(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.cancelled++
	s.lang(language).requests++
}

func (s *Stats) lang(language string) *languageCounters {
	lc, ok := s.byLanguage[language]
	if !ok {
		lc = &languageCounters{}
		s.byLanguage[language] = lc
	}
	return lc
}

// LanguageStats is the per-language block in a snapshot.
type LanguageStats struct {
	Requests     uint64  `json:"requests"`
	Fallbacks    uint64  `json:"fallbacks"`
	FallbackRate float64 `json:"fallback_rate"`
}

// InferenceStats summarizes inference wall time in milliseconds.
type InferenceStats struct {
	TotalMS int64 `json:"total_ms"`
	MinMS   int64 `json:"min_ms"`
	MaxMS   int64 `json:"max_ms"`
	AvgMS   int64 `json:"avg_ms"`
}

// Snapshot is the JSON shape served by /stats.
type Snapshot struct {
	TotalRequests uint64                   `json:"total_requests"`
	Successful    uint64                   `json:"successful"`
	Failed        uint64                   `json:"failed"`
	Cancelled     uint64                   `json:"cancelled"`
	AvgRTF        float64                  `json:"avg_rtf"`
	Inference     InferenceStats           `json:"inference_time"`
	ByLanguage    map[string]LanguageStats `json:"by_language"`
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		TotalRequests: s.total,
		Successful:    s.successful,
		Failed:        s.failed,
		Cancelled:     s.cancelled,
		ByLanguage:    make(map[string]LanguageStats, len(s.byLanguage)),
	}
	if s.rtfCount > 0 {
		snap.AvgRTF = s.rtfSum / float64(s.rtfCount)
	}
	snap.Inference = InferenceStats{
		TotalMS: s.infTotal.Milliseconds(),
		MinMS:   s.infMin.Milliseconds(),
		MaxMS:   s.infMax.Milliseconds(),
	}
	if s.successful > 0 {
		snap.Inference.AvgMS = (s.infTotal / time.Duration(s.successful)).Milliseconds()
	}

	for lang, lc := range s.byLanguage {
		ls := LanguageStats{Requests: lc.requests, Fallbacks: lc.fallbacks}
		if lc.requests > 0 {
			ls.FallbackRate = float64(lc.fallbacks) / float64(lc.requests)
		}
		snap.ByLanguage[lang] = ls
	}
	return snap
}

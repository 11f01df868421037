package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skillsenselab/vaani/errors"
)

// sweepEvery controls how often idle client windows are garbage collected,
// measured in admitted requests.
const sweepEvery = 1024

// RateLimitConfig configures the per-client rate limit middleware.
type RateLimitConfig struct {
	// RequestsPerMinute caps admissions per key over a sliding one-minute
	// window.
	RequestsPerMinute int
	// KeyFunc derives the limit key from a request. Defaults to ClientKey.
	KeyFunc func(*http.Request) string
}

// RateLimit returns middleware that applies a sliding-window limit per
// client. Rejections get 429 with the standard error body and a Retry-After
// hint. Health check paths are never limited.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientKey
	}

	windows := &clientWindows{
		limit: cfg.RequestsPerMinute,
		byKey: make(map[string][]time.Time),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHealthEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			retryAfter, ok := windows.admit(cfg.KeyFunc(r), time.Now())
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(errors.RateLimited().ToResponse())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey extracts the client address, honoring X-Forwarded-For from a
// fronting proxy.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// clientWindows tracks per-key admission timestamps over the trailing
// minute. Idle keys are swept opportunistically instead of by a background
// goroutine.
type clientWindows struct {
	mu     sync.Mutex
	limit  int
	byKey  map[string][]time.Time
	admits int
}

// admit records the request when the key is under its limit. On rejection
// it returns the seconds until the oldest admission leaves the window.
func (cw *clientWindows) admit(key string, now time.Time) (int, bool) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cutoff := now.Add(-time.Minute)
	live := pruneBefore(cw.byKey[key], cutoff)
	if len(live) >= cw.limit {
		cw.byKey[key] = live
		retryAfter := int(live[0].Sub(cutoff)/time.Second) + 1
		return retryAfter, false
	}
	cw.byKey[key] = append(live, now)

	cw.admits++
	if cw.admits%sweepEvery == 0 {
		cw.sweep(cutoff)
	}
	return 0, true
}

func (cw *clientWindows) sweep(cutoff time.Time) {
	for key, stamps := range cw.byKey {
		live := pruneBefore(stamps, cutoff)
		if len(live) == 0 {
			delete(cw.byKey, key)
			continue
		}
		cw.byKey[key] = live
	}
}

// pruneBefore drops timestamps at or before the cutoff. Stamps are appended
// in order, so the survivors are a suffix.
func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range stamps {
		if ts.After(cutoff) {
			return stamps[i:]
		}
	}
	return nil
}

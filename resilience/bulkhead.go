package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Bulkhead errors. Callers treat both as a failed attempt.
var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// Name identifies this bulkhead in stats and logs.
	Name string
	// MaxConcurrent is the maximum number of concurrent calls.
	MaxConcurrent int
	// MaxWait is how long a caller queues for a slot. 0 rejects immediately.
	MaxWait time.Duration
}

// BulkheadStats is a point-in-time snapshot of a bulkhead's load.
type BulkheadStats struct {
	Name          string `json:"name"`
	InUse         int    `json:"in_use"`
	MaxConcurrent int    `json:"max_concurrent"`
	Acquired      uint64 `json:"acquired"`
	Rejected      uint64 `json:"rejected"`
	TimedOut      uint64 `json:"timed_out"`
}

// Bulkhead bounds concurrent calls so a slow dependency cannot absorb every
// goroutine in the process. Admissions and rejections are counted for health
// reporting.
type Bulkhead struct {
	name    string
	maxWait time.Duration
	sem     chan struct{}

	acquired atomic.Uint64
	rejected atomic.Uint64
	timedOut atomic.Uint64
}

// NewBulkhead creates a bulkhead from config.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Bulkhead{
		name:    cfg.Name,
		maxWait: cfg.MaxWait,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Execute runs fn inside the bulkhead. Returns ErrBulkheadFull when no slot
// is free and no wait is configured, ErrBulkheadTimeout when the wait
// elapses, or the context error when the caller gives up first.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer b.release()
	return fn()
}

// ExecuteWithResult runs a value-returning fn inside the bulkhead.
func ExecuteWithResult[T any](b *Bulkhead, ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := b.acquire(ctx); err != nil {
		return zero, err
	}
	defer b.release()
	return fn()
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		b.acquired.Add(1)
		return nil
	default:
	}

	if b.maxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()
	select {
	case b.sem <- struct{}{}:
		b.acquired.Add(1)
		return nil
	case <-timer.C:
		b.timedOut.Add(1)
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bulkhead) release() {
	<-b.sem
}

// Stats snapshots the bulkhead's counters.
func (b *Bulkhead) Stats() BulkheadStats {
	return BulkheadStats{
		Name:          b.name,
		InUse:         len(b.sem),
		MaxConcurrent: cap(b.sem),
		Acquired:      b.acquired.Load(),
		Rejected:      b.rejected.Load(),
		TimedOut:      b.timedOut.Load(),
	}
}

// InUse returns the number of slots currently held.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// MaxConcurrent returns the slot capacity.
func (b *Bulkhead) MaxConcurrent() int { return cap(b.sem) }

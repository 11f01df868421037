package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkheadLimitsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "inference", MaxConcurrent: 2})

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	release := make(chan struct{})
	var wg sync.WaitGroup
	var rejected int

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func() error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()
				<-release
				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
			if errors.Is(err, ErrBulkheadFull) {
				mu.Lock()
				rejected++
				mu.Unlock()
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if maxInFlight > 2 {
		t.Errorf("maxInFlight = %d, want <= 2", maxInFlight)
	}
	if rejected != 3 {
		t.Errorf("rejected = %d, want 3", rejected)
	}
	if st := b.Stats(); st.Rejected != 3 || st.Acquired != 2 {
		t.Errorf("stats = %+v, want 2 acquired / 3 rejected", st)
	}
}

func TestBulkheadWaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "inference", MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})

	release := make(chan struct{})
	go b.Execute(context.Background(), func() error {
		<-release
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("err = %v, want ErrBulkheadTimeout", err)
	}
	if st := b.Stats(); st.TimedOut != 1 {
		t.Errorf("TimedOut = %d, want 1", st.TimedOut)
	}
	close(release)
}

func TestBulkheadContextCancelled(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "inference", MaxConcurrent: 1, MaxWait: time.Second})

	release := make(chan struct{})
	go b.Execute(context.Background(), func() error {
		<-release
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Execute(ctx, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	close(release)
}

func TestExecuteWithResult(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "inference", MaxConcurrent: 4})
	got, err := ExecuteWithResult(b, context.Background(), func() (string, error) {
		return "transcript", nil
	})
	if err != nil || got != "transcript" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestBulkheadStatsSnapshot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "inference", MaxConcurrent: 3})

	st := b.Stats()
	if st.Name != "inference" || st.InUse != 0 || st.MaxConcurrent != 3 {
		t.Errorf("fresh stats = %+v", st)
	}

	_ = b.Execute(context.Background(), func() error { return nil })
	st = b.Stats()
	if st.Acquired != 1 || st.InUse != 0 {
		t.Errorf("stats after one call = %+v", st)
	}
	if b.InUse() != 0 || b.MaxConcurrent() != 3 {
		t.Errorf("counters = %d/%d", b.InUse(), b.MaxConcurrent())
	}
}

package rategate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dupesweep/internal/services"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0, 5); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero rate, got %v", err)
	}
	if _, err := New(10, 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero concurrency, got %v", err)
	}
}

func TestRateLimitEnforced(t *testing.T) {
	// 25 calls at 10/sec must take at least 2 seconds of token waits.
	gate, err := New(10, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	for i := 0; i < 25; i++ {
		release, err := gate.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		release()
	}
	if elapsed := time.Since(start); elapsed < 2*time.Second {
		t.Fatalf("25 calls at 10/sec finished in %v, want >= 2s", elapsed)
	}
}

func TestConcurrencyCapEnforced(t *testing.T) {
	const maxInFlight = 3
	gate, err := New(1000, maxInFlight)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var inFlight, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := gate.Do(context.Background(), func(context.Context) error {
				now := inFlight.Add(1)
				for {
					seen := peak.Load()
					if now <= seen || peak.CompareAndSwap(seen, now) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > maxInFlight {
		t.Fatalf("peak in-flight = %d, cap = %d", got, maxInFlight)
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	gate, err := New(1, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Drain the single token, then cancel while the next caller waits.
	release, err := gate.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := gate.Acquire(ctx); err == nil {
		t.Fatal("expected context error while waiting for a token")
	}
}

func TestDoPropagatesCallError(t *testing.T) {
	gate, err := New(100, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	boom := errors.New("boom")
	if err := gate.Do(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Do error = %v, want boom", err)
	}

	// The permit must have been released despite the error.
	for i := 0; i < 4; i++ {
		if err := gate.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
			t.Fatalf("Do after error: %v", err)
		}
	}
}

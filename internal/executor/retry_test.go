package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"dupesweep/internal/testsupport"
)

// retryHarness gives tests a fake clock: sleeps advance time instantly and
// are recorded.
type retryHarness struct {
	exec   *Executor
	now    time.Time
	sleeps []time.Duration
}

func newRetryHarness(t *testing.T) *retryHarness {
	t.Helper()
	exec, err := New(&testsupport.FakeService{}, Config{
		RequestsPerSec: 1000,
		MaxConcurrent:  5,
		BackupDir:      t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	h := &retryHarness{exec: exec, now: time.Unix(1_700_000_000, 0)}
	exec.now = func() time.Time { return h.now }
	exec.sleep = func(_ context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		h.now = h.now.Add(d)
		return nil
	}
	return h
}

func TestWithRetrySucceedsImmediately(t *testing.T) {
	h := newRetryHarness(t)

	calls := 0
	ok := h.exec.withRetry(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if !ok || calls != 1 {
		t.Fatalf("ok = %v, calls = %d", ok, calls)
	}
	if len(h.sleeps) != 0 {
		t.Fatalf("no sleeps expected, got %v", h.sleeps)
	}
}

func TestWithRetryBacksOffExponentially(t *testing.T) {
	h := newRetryHarness(t)

	calls := 0
	ok := h.exec.withRetry(context.Background(), func(context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("transient")
		}
		return nil
	})
	if !ok {
		t.Fatal("expected eventual success")
	}

	want := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, time.Second}
	if len(h.sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", h.sleeps, want)
	}
	for i, d := range want {
		if h.sleeps[i] != d {
			t.Fatalf("sleep %d = %v, want %v", i, h.sleeps[i], d)
		}
	}
}

func TestWithRetryBudgetExhausted(t *testing.T) {
	h := newRetryHarness(t)

	ok := h.exec.withRetry(context.Background(), func(context.Context) error {
		return errors.New("permanent")
	})
	if ok {
		t.Fatal("expected failure after budget exhaustion")
	}

	var total time.Duration
	for _, d := range h.sleeps {
		total += d
	}
	if total > retryBudget {
		t.Fatalf("slept %v, budget is %v", total, retryBudget)
	}
	// The final sleep must be clamped to the remaining budget, not a full
	// doubled delay.
	last := h.sleeps[len(h.sleeps)-1]
	if doubled := h.sleeps[len(h.sleeps)-2] * 2; last >= doubled {
		t.Fatalf("final sleep %v was not clamped (previous doubled = %v)", last, doubled)
	}
}

func TestWithRetryNoBudgetFailsWithoutSleeping(t *testing.T) {
	h := newRetryHarness(t)

	calls := 0
	ok := h.exec.withRetry(context.Background(), func(context.Context) error {
		calls++
		// Burn the whole budget inside the first attempt.
		h.now = h.now.Add(retryBudget)
		return errors.New("slow failure")
	})
	if ok {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if len(h.sleeps) != 0 {
		t.Fatalf("must not sleep with no budget left, slept %v", h.sleeps)
	}
}

package executor

import (
	"context"
	"time"
)

const (
	retryInitialDelay = 250 * time.Millisecond
	retryBudget       = 60 * time.Second
)

// withRetry runs fn until it succeeds or the retry budget is spent. Delays
// start at retryInitialDelay and double each attempt; the final sleep is
// clamped to whatever budget remains, and a zero remainder fails immediately
// without sleeping. The budget covers one album-transfer unit, not the whole
// group.
func (e *Executor) withRetry(ctx context.Context, fn func(ctx context.Context) error) bool {
	start := e.now()
	delay := retryInitialDelay

	for {
		if fn(ctx) == nil {
			return true
		}

		elapsed := e.now().Sub(start)
		if elapsed >= retryBudget {
			return false
		}

		sleepFor := delay
		if remaining := retryBudget - elapsed; sleepFor > remaining {
			sleepFor = remaining
		}
		if sleepFor <= 0 {
			return false
		}
		if err := e.sleep(ctx, sleepFor); err != nil {
			return false
		}
		delay *= 2
	}
}

package rategate

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"dupesweep/internal/services"
)

// Gate couples two independent limits on outbound remote calls: a
// continuously-refilling rate limit (calls per second) and a cap on calls in
// flight. Every remote call acquires a rate token first, then an in-flight
// permit; the permit is released when the call finishes, the token is
// consumed.
type Gate struct {
	limiter *rate.Limiter
	permits *semaphore.Weighted
}

// New builds a gate issuing requestsPerSec tokens per second with at most
// maxConcurrent calls in flight. Tokens are spaced evenly rather than
// allowed to burst, so the configured rate holds over any window.
func New(requestsPerSec, maxConcurrent int) (*Gate, error) {
	if requestsPerSec <= 0 {
		return nil, services.Wrap(services.ErrValidation, "rategate", "new", "requests per second must be positive", nil)
	}
	if maxConcurrent <= 0 {
		return nil, services.Wrap(services.ErrValidation, "rategate", "new", "max concurrent must be positive", nil)
	}
	return &Gate{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		permits: semaphore.NewWeighted(int64(maxConcurrent)),
	}, nil
}

// Acquire blocks until both a rate token and an in-flight permit are held,
// then returns a release function for the permit. The caller must invoke
// release exactly once, after the remote call completes.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := g.permits.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { g.permits.Release(1) }, nil
}

// Do runs fn under the gate's limits.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) error) error {
	release, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

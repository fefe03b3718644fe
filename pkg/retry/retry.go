package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Options bound the retry envelope. Delays start at InitialDelay, double on
// each failure and are capped at MaxDelay; the whole envelope gives up once
// MaxElapsed has passed.
type Options struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxElapsed   time.Duration
}

// DefaultOptions matches the digest job's operational envelope: 1s initial
// delay doubling up to 1h, retried for at most 72h.
func DefaultOptions() Options {
	return Options{
		InitialDelay: time.Second,
		MaxDelay:     time.Hour,
		MaxElapsed:   72 * time.Hour,
	}
}

// Do runs fn until it succeeds, the context is cancelled, or the elapsed-time
// budget is exhausted. The last error is returned on give-up.
func Do(ctx context.Context, opts Options, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opts.InitialDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = opts.MaxDelay
	bo.MaxElapsedTime = opts.MaxElapsed
	return backoff.Retry(fn, backoff.WithContext(bo, ctx))
}

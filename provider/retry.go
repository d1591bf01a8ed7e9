package provider

import (
	"context"
	"time"
)

// retryBaseDelay is the first backoff interval; each retry doubles it.
const retryBaseDelay = 500 * time.Millisecond

// Retry runs fn up to 1+maxRetries times, backing off exponentially between
// attempts. Only errors classified retryable by IsRetryable are retried;
// anything else is returned immediately. The context deadline is honored
// during backoff, so retries can never outlive the caller's budget.
func Retry(ctx context.Context, maxRetries int, fn func(ctx context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !IsRetryable(err) {
			return err
		}

		delay := retryBaseDelay << attempt
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

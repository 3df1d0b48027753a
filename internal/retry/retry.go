package retry

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // exponential backoff between attempts
}

// Do runs fn up to MaxAttempts times, sleeping between attempts and
// honoring context cancellation.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == cfg.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, err)
			}

			delay := cfg.Delay
			if cfg.Backoff {
				delay = time.Duration(1<<uint(attempt-1)) * cfg.Delay
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}

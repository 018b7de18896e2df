package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-watches/config"
)

// retryPolicy reruns a failing operation with exponential backoff. The crawl
// is strictly sequential, so a single policy serves page loads and item
// extractions alike.
type retryPolicy struct {
	maxAttempts int
	backoff     time.Duration
	backoffMax  time.Duration
	metrics     *Metrics

	totalRetries int
}

func newRetryPolicy(cfg *config.Config, metrics *Metrics) *retryPolicy {
	return &retryPolicy{
		maxAttempts: cfg.MaxRetries,
		backoff:     cfg.RetryBackoff,
		backoffMax:  cfg.RetryBackoffMax,
		metrics:     metrics,
	}
}

// Do invokes fn until it succeeds or attempts run out, sleeping between
// failures. Context cancellation aborts both the waits and further attempts.
func (p *retryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.maxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		delay := p.delay(attempt)
		p.totalRetries++
		p.metrics.IncRetries()
		slog.Warn("operation failed, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("backoff", delay),
			slog.Any("error", lastErr),
		)
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func (p *retryPolicy) delay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := p.backoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := p.backoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

// TotalRetries reports how many retry attempts the policy has scheduled.
func (p *retryPolicy) TotalRetries() int {
	return p.totalRetries
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

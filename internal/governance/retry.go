package governance

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"go.uber.org/zap"
)

// BackoffDelayer computes the delay before the next attempt. It matches the
// aws/retry BackoffDelayer so the SDK's jittered backoff can be plugged in.
type BackoffDelayer interface {
	BackoffDelay(attempt int, err error) (time.Duration, error)
}

// Retrier runs a call under a per-attempt timeout and retries transient failures.
type Retrier struct {
	maxAttempts int
	timeout     time.Duration
	backoff     BackoffDelayer
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

// NewRetrier creates a retrier that makes at most maxAttempts attempts, each bounded by timeout.
func NewRetrier(maxAttempts int, maxBackoff, timeout time.Duration, logger *zap.Logger) *Retrier {
	return NewRetrierWithBackoff(maxAttempts, timeout, retry.NewExponentialJitterBackoff(maxBackoff), logger)
}

// NewRetrierWithBackoff creates a retrier with a custom backoff strategy.
func NewRetrierWithBackoff(maxAttempts int, timeout time.Duration, backoff BackoffDelayer, logger *zap.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		timeout:     timeout,
		backoff:     backoff,
		sleep:       sleepContext,
		logger:      logger,
	}
}

// Do invokes fn until it succeeds, fails permanently, or attempts run out.
// The last error is returned unchanged.
func (r *Retrier) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = r.attempt(ctx, fn)
		if err == nil {
			return nil
		}

		if !IsTransient(err) || attempt >= r.maxAttempts || ctx.Err() != nil {
			return err
		}

		delay, backoffErr := r.backoff.BackoffDelay(attempt, err)
		if backoffErr != nil {
			return err
		}

		r.logger.Warn("Retrying governance call",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return err
		}
	}
}

func (r *Retrier) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return fn(callCtx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
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

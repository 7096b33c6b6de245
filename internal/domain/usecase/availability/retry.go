package availability

import (
	"context"
	"errors"
	"math/rand"
	"time"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
)

// RetryConfig bounds the re-read and retry loop run when a conditional write loses
type RetryConfig struct {
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	JitterFactor float64 // Fraction of the backoff added at random (0.0-1.0)
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		BaseBackoff:  10 * time.Millisecond,
		MaxBackoff:   200 * time.Millisecond,
		JitterFactor: 0.5,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	d := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = d.BaseBackoff
	}
	if c.MaxBackoff < c.BaseBackoff {
		c.MaxBackoff = c.BaseBackoff
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		c.JitterFactor = d.JitterFactor
	}
	return c
}

// retryOnConflict runs op until it succeeds, fails with anything but ErrConflict,
// or the attempt budget is spent. The last conflict is returned when the budget runs out.
func retryOnConflict(
	ctx context.Context,
	config RetryConfig,
	clock coreport.TimeProvider,
	logger coreport.Logger,
	operation string,
	op func(attempt int) error,
) error {
	var err error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err = op(attempt)
		if err == nil || !errors.Is(err, errs.ErrConflict) {
			return err
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		backoff := calculateBackoffWithJitter(attempt, config)
		logger.Debug("Conditional write lost, retrying", map[string]any{
			"operation":    operation,
			"attempt":      attempt + 1,
			"max_attempts": config.MaxAttempts,
			"retry_after":  backoff.String(),
		})

		if sleepErr := clock.Sleep(ctx, coreport.Duration(backoff)); sleepErr != nil {
			return sleepErr
		}
	}

	logger.Warn("Retry budget exhausted on conflicting writes", map[string]any{
		"operation":    operation,
		"max_attempts": config.MaxAttempts,
	})
	return err
}

// calculateBackoffWithJitter computes base * 2^attempt capped at MaxBackoff, plus random jitter
func calculateBackoffWithJitter(attempt int, config RetryConfig) time.Duration {
	backoff := config.BaseBackoff << uint(attempt)
	if backoff > config.MaxBackoff || backoff <= 0 {
		backoff = config.MaxBackoff
	}

	if config.JitterFactor > 0 {
		jitter := time.Duration(float64(backoff) * config.JitterFactor * rand.Float64())
		backoff += jitter
	}
	return backoff
}

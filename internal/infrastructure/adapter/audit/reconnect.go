package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
)

// Default reconnect policy
const (
	DefaultReconnectAttempts = 10
	DefaultReconnectDelay    = time.Second
	DefaultReconnectMaxDelay = 30 * time.Second
)

// ReconnectPolicy bounds how the consumer redials a lost broker.
// MaxAttempts counts consecutive failed sessions; a session that came up resets it.
type ReconnectPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultReconnectPolicy returns the policy used by the audit consumer
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		MaxAttempts: DefaultReconnectAttempts,
		BaseDelay:   DefaultReconnectDelay,
		MaxDelay:    DefaultReconnectMaxDelay,
	}
}

func (p ReconnectPolicy) delay(failures int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultReconnectDelay
	}
	d := base << min(failures-1, 16)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Session is one broker connection lifetime. It calls up once it is consuming and
// returns when the connection drops or ctx is done.
type Session func(ctx context.Context, up func()) error

// Supervise runs session until ctx is done, redialing with exponential backoff.
// It gives up after MaxAttempts consecutive sessions that failed.
func Supervise(ctx context.Context, policy ReconnectPolicy, timeProvider coreport.TimeProvider, logger coreport.Logger, session Session) error {
	attempts := max(policy.MaxAttempts, 1)
	failures := 0

	for {
		err := session(ctx, func() { failures = 0 })
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("session ended")
		}

		failures++
		if failures >= attempts {
			return fmt.Errorf("broker unreachable after %d attempts: %w", failures, err)
		}

		backoff := policy.delay(failures)
		logger.Warn("Audit consumer lost the broker, reconnecting", map[string]any{
			"attempt":      failures,
			"max_attempts": attempts,
			"retry_after":  backoff.String(),
			"error":        err.Error(),
		})
		if err := timeProvider.Sleep(ctx, coreport.Duration(backoff)); err != nil {
			return nil
		}
	}
}

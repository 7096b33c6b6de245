package time

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
)

// FixedTimeProvider is a manual clock for tests. Sleep advances the clock instead of blocking.
type FixedTimeProvider struct {
	mu    sync.Mutex
	now   time.Time
	slept []core.Duration
}

// NewFixedTimeProvider creates a clock frozen at now
func NewFixedTimeProvider(now time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{now: now}
}

// Now returns the frozen time
func (p *FixedTimeProvider) Now() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

// Since measures against the frozen time
func (p *FixedTimeProvider) Since(t time.Time) core.Duration {
	return core.Duration(p.Now().Sub(t))
}

// Sleep records d and advances the clock
func (p *FixedTimeProvider) Sleep(ctx context.Context, d core.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slept = append(p.slept, d)
	p.now = p.now.Add(d.Std())
	return nil
}

// WithTimeout uses a real timer; tests only rely on cancellation
func (p *FixedTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

// Advance moves the clock forward
func (p *FixedTimeProvider) Advance(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = p.now.Add(d)
}

// Slept returns the durations passed to Sleep
func (p *FixedTimeProvider) Slept() []core.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.Duration(nil), p.slept...)
}

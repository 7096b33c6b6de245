package entity

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
)

var fixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// stubClock is a frozen core.TimeProvider
type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func (c stubClock) Since(t time.Time) core.Duration { return core.Duration(c.now.Sub(t)) }

func (c stubClock) Sleep(context.Context, core.Duration) error { return nil }

func (c stubClock) WithTimeout(ctx context.Context, d core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.Std())
}

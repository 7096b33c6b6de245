package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
)

// Expirer is the part of the controller the sweeper drives
type Expirer interface {
	ExpireOverdue(ctx context.Context, limit int) (int, error)
}

// Sweeper periodically expires pending transactions whose payment window closed
type Sweeper struct {
	expirer   Expirer
	logger    coreport.Logger
	interval  time.Duration
	batchSize int

	started  atomic.Bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewSweeper creates a sweeper; it does nothing until Start
func NewSweeper(expirer Expirer, logger coreport.Logger, interval time.Duration, batchSize int) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Sweeper{
		expirer:   expirer,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until Stop or ctx is done
func (s *Sweeper) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	ticker := time.NewTicker(s.interval)

	s.logger.Info("Expiry sweeper started", map[string]any{
		"interval":   s.interval.String(),
		"batch_size": s.batchSize,
	})

	go func() {
		defer close(s.done)
		defer ticker.Stop()

		s.RunOnce(ctx)
		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-s.stopChan:
				s.logger.Info("Expiry sweeper stopped", nil)
				return
			case <-ctx.Done():
				s.logger.Info("Expiry sweeper stopped", map[string]any{"reason": ctx.Err().Error()})
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight sweep
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	if s.started.Load() {
		<-s.done
	}
}

// RunOnce expires one batch and returns how many transactions moved to expired
func (s *Sweeper) RunOnce(ctx context.Context) int {
	expired, err := s.expirer.ExpireOverdue(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("Expiry sweep failed", map[string]any{
			"expired": expired,
			"error":   err.Error(),
		})
	}
	if expired > 0 {
		s.logger.Info("Expired overdue transactions", map[string]any{"count": expired})
	}
	return expired
}

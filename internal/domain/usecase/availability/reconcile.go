package availability

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
)

// CheckConsistency compares the locker counter with the unreleased transactions that reference it
// and with the booked/released balance of its audit trail.
func (m *Manager) CheckConsistency(ctx context.Context, lockerID string) (*usecase.ConsistencyReport, error) {
	if err := validation.RequireID("locker id", lockerID); err != nil {
		return nil, err
	}

	locker, err := m.lockers.GetByID(ctx, lockerID)
	if err != nil {
		return nil, err
	}
	report, err := m.buildReport(ctx, locker)
	if err != nil {
		return nil, err
	}

	if !report.Consistent {
		m.logger.Warn("Locker counter drift detected", reportFields(report))
	}
	return report, nil
}

// Reconcile rewrites the counter from the unreleased hold count when the two disagree.
// The write goes through the same conditional update as bookings, so it loses cleanly to a concurrent change.
func (m *Manager) Reconcile(ctx context.Context, lockerID string) (*usecase.ConsistencyReport, error) {
	if err := validation.RequireID("locker id", lockerID); err != nil {
		return nil, err
	}

	var report *usecase.ConsistencyReport
	err := retryOnConflict(ctx, m.retry, m.timeProvider, m.logger, "reconcile", func(attempt int) error {
		locker, err := m.lockers.GetByID(ctx, lockerID)
		if err != nil {
			return err
		}
		report, err = m.buildReport(ctx, locker)
		if err != nil || report.Consistent {
			return err
		}

		state := locker.StateFromHolds(report.UnreleasedHolds)
		updated, err := m.lockers.ConditionalUpdate(ctx, lockerID, locker.Version, state)
		if err != nil {
			return err
		}

		m.logger.Warn("Locker counter reconciled from unreleased holds", reportFields(report))

		report.Available = updated.Available
		report.CounterHolds = updated.Holds()
		report.Consistent = report.CounterHolds == report.UnreleasedHolds
		report.LogConsistent = report.LogDelta == report.CounterHolds
		report.Reconciled = true

		snapshot := updated.Snapshot("", m.timeProvider.Now())
		m.notifyAfterCommit(ctx, snapshot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (m *Manager) buildReport(ctx context.Context, locker *entity.Locker) (*usecase.ConsistencyReport, error) {
	holds, err := m.transactions.CountUnreleased(ctx, locker.ID)
	if err != nil {
		return nil, err
	}
	counts, err := m.logs.CountByAction(ctx, persistence.LockerLogFilter{LockerID: locker.ID})
	if err != nil {
		return nil, err
	}

	counterHolds := locker.Holds()
	return &usecase.ConsistencyReport{
		LockerID:        locker.ID,
		Capacity:        locker.Capacity,
		Available:       locker.Available,
		CounterHolds:    counterHolds,
		UnreleasedHolds: holds,
		LogDelta:        counts.Delta(),
		Consistent:      counterHolds == holds,
		LogConsistent:   counts.Delta() == counterHolds,
		CheckedAt:       m.timeProvider.Now(),
	}, nil
}

func (m *Manager) notifyAfterCommit(ctx context.Context, snapshot entity.LockerSnapshot) {
	persistence.AfterCommit(ctx, func(hookCtx context.Context) {
		m.notify(hookCtx, snapshot)
	})
}

func reportFields(r *usecase.ConsistencyReport) map[string]any {
	return map[string]any{
		"locker_id":        r.LockerID,
		"capacity":         r.Capacity,
		"available":        r.Available,
		"counter_holds":    r.CounterHolds,
		"unreleased_holds": r.UnreleasedHolds,
		"log_delta":        r.LogDelta,
	}
}

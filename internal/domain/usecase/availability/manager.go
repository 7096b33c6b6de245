package availability

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/event"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
)

// defaultAuditTimeout bounds how long a commit hook may wait on the audit writer
const defaultAuditTimeout = 2 * time.Second

// Manager is the Locker Availability Manager. It is stateless: every counter
// lives in the locker store and every write is a versioned conditional update.
type Manager struct {
	lockers      persistence.LockerRepository
	transactions persistence.TransactionRepository
	logs         persistence.LockerLogRepository
	audit        event.AuditWriter
	notifier     event.ChangeNotifier
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	retry        RetryConfig
	auditTimeout time.Duration
}

// Ensure Manager satisfies the port
var _ usecase.AvailabilityManager = (*Manager)(nil)

// NewManager creates a Manager. The repositories join the caller's unit of work through the context.
func NewManager(
	lockers persistence.LockerRepository,
	transactions persistence.TransactionRepository,
	logs persistence.LockerLogRepository,
	audit event.AuditWriter,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Manager {
	return &Manager{
		lockers:      lockers,
		transactions: transactions,
		logs:         logs,
		audit:        audit,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
		retry:        DefaultRetryConfig(),
		auditTimeout: defaultAuditTimeout,
	}
}

// WithRetryConfig overrides the conflict retry bounds
func (m *Manager) WithRetryConfig(config RetryConfig) *Manager {
	m.retry = config.normalized()
	return m
}

// WithNotifier publishes committed snapshots to external consumers
func (m *Manager) WithNotifier(notifier event.ChangeNotifier) *Manager {
	m.notifier = notifier
	return m
}

// WithAuditTimeout bounds each audit append issued after commit
func (m *Manager) WithAuditTimeout(timeout time.Duration) *Manager {
	if timeout > 0 {
		m.auditTimeout = timeout
	}
	return m
}

// BookLocker takes one unit of the locker
func (m *Manager) BookLocker(ctx context.Context, lockerID string, opts ...usecase.LogOption) (*usecase.BookingResult, error) {
	if err := validation.RequireID("locker id", lockerID); err != nil {
		return nil, err
	}

	return m.transition(ctx, lockerID, entity.ActionBooked, opts, (*entity.Locker).BookedState)
}

// ReleaseLocker returns one unit of the locker. reason becomes the audit action.
func (m *Manager) ReleaseLocker(
	ctx context.Context,
	lockerID string,
	reason entity.LockerAction,
	opts ...usecase.LogOption,
) (*usecase.ReleaseResult, error) {
	if err := validation.RequireID("locker id", lockerID); err != nil {
		return nil, err
	}
	if !reason.IsRelease() {
		return nil, errs.NewValidationError("reason", "reason must be one of: retrieved, cancelled")
	}

	return m.transition(ctx, lockerID, reason, opts, (*entity.Locker).ReleasedState)
}

// transition reads the locker, computes the next state and writes it conditionally on the version read.
// A lost write is retried against a fresh read; precondition failures are returned as is.
func (m *Manager) transition(
	ctx context.Context,
	lockerID string,
	action entity.LockerAction,
	opts []usecase.LogOption,
	next func(*entity.Locker) (entity.LockerState, error),
) (*usecase.AvailabilityResult, error) {
	var updated *entity.Locker

	err := retryOnConflict(ctx, m.retry, m.timeProvider, m.logger, string(action), func(attempt int) error {
		current, err := m.lockers.GetByID(ctx, lockerID)
		if err != nil {
			return err
		}

		state, err := next(current)
		if err != nil {
			return err
		}

		updated, err = m.lockers.ConditionalUpdate(ctx, lockerID, current.Version, state)
		return err
	})
	if err != nil {
		fields := errs.LogFields(err)
		fields["locker_id"] = lockerID
		fields["action"] = string(action)
		if errs.IsLockerUnavailableError(err) || errs.IsReleaseNoOpError(err) || errs.IsNotFoundError(err) {
			m.logger.Info("Locker transition rejected", fields)
		} else {
			m.logger.Error("Locker transition failed", fields)
		}
		return nil, err
	}

	m.logger.Debug("Locker transition applied", map[string]any{
		"locker_id": lockerID,
		"action":    string(action),
		"available": updated.Available,
		"status":    string(updated.Status),
		"version":   updated.Version,
	})

	m.afterCommit(ctx, updated, action, usecase.BuildLogContext(opts...))
	return resultFor(updated), nil
}

// afterCommit schedules the audit entry and change notification for when the write is durable
func (m *Manager) afterCommit(ctx context.Context, locker *entity.Locker, action entity.LockerAction, lc usecase.LogContext) {
	now := m.timeProvider.Now()
	log := &entity.LockerLog{
		ID:                 m.ids.NewID(),
		LockerID:           locker.ID,
		TransactionID:      lc.TransactionID,
		UserID:             lc.UserID,
		Action:             action,
		Timestamp:          now,
		ResultingAvailable: locker.Available,
		ResultingStatus:    locker.Status,
	}
	snapshot := locker.Snapshot(action, now)

	persistence.AfterCommit(ctx, func(hookCtx context.Context) {
		m.appendAudit(hookCtx, log)
		m.notify(hookCtx, snapshot)
	})
}

func (m *Manager) appendAudit(ctx context.Context, log *entity.LockerLog) {
	if m.audit == nil {
		return
	}

	auditCtx, cancel := context.WithTimeout(ctx, m.auditTimeout)
	defer cancel()

	if err := m.audit.Append(auditCtx, log); err != nil {
		m.logger.Warn("Failed to append locker log", map[string]any{
			"locker_id":      log.LockerID,
			"transaction_id": log.TransactionID,
			"action":         string(log.Action),
			"error":          err.Error(),
		})
	}
}

func (m *Manager) notify(ctx context.Context, snapshot entity.LockerSnapshot) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.LockerChanged(ctx, snapshot); err != nil {
		m.logger.Warn("Failed to publish locker change", map[string]any{
			"locker_id": snapshot.LockerID,
			"version":   snapshot.Version,
			"error":     err.Error(),
		})
	}
}

func resultFor(l *entity.Locker) *usecase.AvailabilityResult {
	return &usecase.AvailabilityResult{
		LockerID:  l.ID,
		Capacity:  l.Capacity,
		Available: l.Available,
		Status:    l.Status,
		Version:   l.Version,
	}
}

// Package lockerlog exposes the locker audit trail to operators
package lockerlog

import (
	"context"
	"strings"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
)

// LockerLogUseCase handles audit log administration. Entries written here never touch locker counters.
type LockerLogUseCase struct {
	logs         persistence.LockerLogRepository
	lockers      persistence.LockerRepository
	validator    *validation.Validator
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.LockerLogUseCase = (*LockerLogUseCase)(nil)

// NewLockerLogUseCase creates a new LockerLogUseCase
func NewLockerLogUseCase(
	logs persistence.LockerLogRepository,
	lockers persistence.LockerRepository,
	validator *validation.Validator,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *LockerLogUseCase {
	return &LockerLogUseCase{
		logs:         logs,
		lockers:      lockers,
		validator:    validator,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CreateLog appends a manual entry for an existing locker
func (u *LockerLogUseCase) CreateLog(ctx context.Context, log *entity.LockerLog) (*entity.LockerLog, error) {
	if err := u.validator.Struct(log); err != nil {
		return nil, err
	}

	locker, err := u.lockers.GetByID(ctx, log.LockerID)
	if err != nil {
		return nil, err
	}

	if log.ID == "" {
		log.ID = u.ids.NewID()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = u.timeProvider.Now()
	}
	if log.ResultingStatus == "" {
		log.ResultingAvailable = locker.Available
		log.ResultingStatus = locker.Status
	}

	if err := u.logs.Append(ctx, log); err != nil {
		return nil, err
	}

	u.logger.Info("Manual locker log entry created", map[string]any{
		"log_id":    log.ID,
		"locker_id": log.LockerID,
		"action":    log.Action,
	})
	return log, nil
}

// GetLog returns one entry
func (u *LockerLogUseCase) GetLog(ctx context.Context, id string) (*entity.LockerLog, error) {
	if err := validation.RequireID("id", id); err != nil {
		return nil, err
	}
	return u.logs.GetByID(ctx, id)
}

// ListLogs returns entries newest first
func (u *LockerLogUseCase) ListLogs(ctx context.Context, filter persistence.LockerLogFilter) ([]*entity.LockerLog, error) {
	if err := checkLogFilter(filter); err != nil {
		return nil, err
	}
	return u.logs.List(ctx, filter)
}

// ActionStats counts entries per action within the filter's locker, user and time window.
// Every known action is present in the result, zero when nothing matched.
func (u *LockerLogUseCase) ActionStats(ctx context.Context, filter persistence.LockerLogFilter) (entity.ActionCounts, error) {
	if err := checkLogFilter(filter); err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = 0, 0

	counts, err := u.logs.CountByAction(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, action := range []entity.LockerAction{entity.ActionBooked, entity.ActionRetrieved, entity.ActionCancelled} {
		if _, ok := counts[action]; !ok {
			counts[action] = 0
		}
	}
	return counts, nil
}

func checkLogFilter(filter persistence.LockerLogFilter) error {
	if filter.Action != "" && !filter.Action.IsValid() {
		return errs.NewValidationError("action", "action must be one of: booked, retrieved, cancelled")
	}
	if filter.Since != nil && filter.Until != nil && filter.Until.Before(*filter.Since) {
		return errs.NewValidationError("until", "until must not be before since")
	}
	return nil
}

// CorrectLog rewrites the action, references and note of an entry. Locker and timestamp stay.
func (u *LockerLogUseCase) CorrectLog(ctx context.Context, log *entity.LockerLog) (*entity.LockerLog, error) {
	if err := validation.RequireID("id", log.ID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(log.Note) == "" {
		return nil, errs.NewValidationError("note", "note is required")
	}

	existing, err := u.logs.GetByID(ctx, log.ID)
	if err != nil {
		return nil, err
	}

	corrected := *existing
	if log.Action != "" {
		corrected.Action = log.Action
	}
	if log.TransactionID != "" {
		corrected.TransactionID = log.TransactionID
	}
	if log.UserID != "" {
		corrected.UserID = log.UserID
	}
	corrected.Note = log.Note
	if err := u.validator.Struct(&corrected); err != nil {
		return nil, err
	}

	if err := u.logs.Correct(ctx, &corrected); err != nil {
		return nil, err
	}

	u.logger.Warn("Locker log entry corrected", map[string]any{
		"log_id":      corrected.ID,
		"locker_id":   corrected.LockerID,
		"from_action": existing.Action,
		"to_action":   corrected.Action,
	})
	return &corrected, nil
}

// DeleteLog removes one entry
func (u *LockerLogUseCase) DeleteLog(ctx context.Context, id string) error {
	if err := validation.RequireID("id", id); err != nil {
		return err
	}
	return u.logs.Delete(ctx, id)
}

// PurgeLogs removes every entry older than before and returns how many were removed
func (u *LockerLogUseCase) PurgeLogs(ctx context.Context, before time.Time) (int64, error) {
	if before.IsZero() {
		return 0, errs.NewValidationError("before", "before is required")
	}

	removed, err := u.logs.Purge(ctx, before)
	if err != nil {
		return 0, err
	}

	u.logger.Info("Locker log entries purged", map[string]any{
		"before":  before,
		"removed": removed,
	})
	return removed, nil
}

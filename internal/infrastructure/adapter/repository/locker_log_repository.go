package repository

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// LockerLogRepository is the durable audit sink
type LockerLogRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

var _ persistence.LockerLogRepository = (*LockerLogRepository)(nil)

// NewLockerLogRepository creates a new LockerLogRepository instance
func NewLockerLogRepository(db *gorm.DB, logger coreport.Logger) *LockerLogRepository {
	return &LockerLogRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func logToModel(l *entity.LockerLog) *model.LockerLog {
	return &model.LockerLog{
		ID:                 l.ID,
		LockerID:           l.LockerID,
		Action:             string(l.Action),
		TransactionID:      l.TransactionID,
		UserID:             l.UserID,
		Timestamp:          l.Timestamp,
		ResultingAvailable: l.ResultingAvailable,
		ResultingStatus:    string(l.ResultingStatus),
		Note:               l.Note,
	}
}

func logToEntity(m *model.LockerLog) *entity.LockerLog {
	return &entity.LockerLog{
		ID:                 m.ID,
		LockerID:           m.LockerID,
		Action:             entity.LockerAction(m.Action),
		TransactionID:      m.TransactionID,
		UserID:             m.UserID,
		Timestamp:          m.Timestamp,
		ResultingAvailable: m.ResultingAvailable,
		ResultingStatus:    entity.LockerStatus(m.ResultingStatus),
		Note:               m.Note,
	}
}

func (r *LockerLogRepository) fail(operation string, err error, id string) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err, errs.ErrLockerLogNotFound,
		map[string]any{"log_id": id})
}

// Append writes a new entry
func (r *LockerLogRepository) Append(ctx context.Context, log *entity.LockerLog) error {
	if err := conn(ctx, r.db).Create(logToModel(log)).Error; err != nil {
		return r.fail("appending locker log", err, log.ID)
	}
	return nil
}

// GetByID retrieves one entry
func (r *LockerLogRepository) GetByID(ctx context.Context, id string) (*entity.LockerLog, error) {
	var m model.LockerLog
	if err := conn(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.fail("getting locker log", err, id)
	}
	return logToEntity(&m), nil
}

// List returns entries newest first
func (r *LockerLogRepository) List(ctx context.Context, filter persistence.LockerLogFilter) ([]*entity.LockerLog, error) {
	q := filterLogs(conn(ctx, r.db).Model(&model.LockerLog{}), filter)

	var rows []model.LockerLog
	if err := paginate(q.Order("timestamp DESC").Order("id DESC"), filter.Limit, filter.Offset).Find(&rows).Error; err != nil {
		return nil, r.fail("listing locker logs", err, "")
	}

	out := make([]*entity.LockerLog, 0, len(rows))
	for i := range rows {
		out = append(out, logToEntity(&rows[i]))
	}
	return out, nil
}

func filterLogs(q *gorm.DB, filter persistence.LockerLogFilter) *gorm.DB {
	if filter.LockerID != "" {
		q = q.Where("locker_id = ?", filter.LockerID)
	}
	if filter.TransactionID != "" {
		q = q.Where("transaction_id = ?", filter.TransactionID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", string(filter.Action))
	}
	if filter.Since != nil {
		q = q.Where("timestamp >= ?", *filter.Since)
	}
	if filter.Until != nil {
		q = q.Where("timestamp <= ?", *filter.Until)
	}
	return q
}

// Correct rewrites an existing entry
func (r *LockerLogRepository) Correct(ctx context.Context, log *entity.LockerLog) error {
	result := conn(ctx, r.db).Model(&model.LockerLog{}).
		Where("id = ?", log.ID).
		Select("*").
		Omit("id").
		Updates(logToModel(log))
	if result.Error != nil {
		return r.fail("correcting locker log", result.Error, log.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrLockerLogNotFound
	}
	return nil
}

// Delete removes one entry
func (r *LockerLogRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&model.LockerLog{})
	if result.Error != nil {
		return r.fail("deleting locker log", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return errs.ErrLockerLogNotFound
	}
	return nil
}

// Purge removes every entry older than before
func (r *LockerLogRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	result := conn(ctx, r.db).Where("timestamp < ?", before).Delete(&model.LockerLog{})
	if result.Error != nil {
		return 0, r.fail("purging locker logs", result.Error, "")
	}

	r.logger.Info("Purged locker logs", map[string]any{
		"before":  before,
		"removed": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

// CountByAction tallies matching entries per action
func (r *LockerLogRepository) CountByAction(ctx context.Context, filter persistence.LockerLogFilter) (entity.ActionCounts, error) {
	var rows []struct {
		Action string
		Total  int
	}
	err := filterLogs(conn(ctx, r.db).Model(&model.LockerLog{}), filter).
		Select("action, COUNT(*) AS total").
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, r.fail("counting locker logs", err, "")
	}

	counts := entity.ActionCounts{}
	for _, row := range rows {
		counts[entity.LockerAction(row.Action)] = row.Total
	}
	return counts, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

var _ persistence.TransactionRepository = (*TransactionRepository)(nil)

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(tx *entity.Transaction) *model.Transaction {
	m := &model.Transaction{
		ID:            tx.ID,
		LockerID:      tx.LockerID,
		UserID:        tx.UserID,
		PaymentStatus: string(tx.PaymentStatus),
		PaymentMethod: tx.PaymentMethod,
		Duration:      tx.Duration,
		TotalPrice:    tx.TotalPrice,
		AccessCode:    nullable(tx.AccessCode),
		CheckedOut:    tx.CheckedOut,
		Released:      tx.Released,
		CheckedOutAt:  tx.CheckedOutAt,
		ReleasedAt:    tx.ReleasedAt,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
		Version:       tx.Version,
	}
	if !tx.ExpiresAt.IsZero() {
		expires := tx.ExpiresAt
		m.ExpiresAt = &expires
	}
	return m
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	tx := &entity.Transaction{
		ID:            m.ID,
		LockerID:      m.LockerID,
		UserID:        m.UserID,
		PaymentStatus: entity.PaymentStatus(m.PaymentStatus),
		PaymentMethod: m.PaymentMethod,
		Duration:      m.Duration,
		TotalPrice:    m.TotalPrice,
		AccessCode:    deref(m.AccessCode),
		CheckedOut:    m.CheckedOut,
		Released:      m.Released,
		CheckedOutAt:  m.CheckedOutAt,
		ReleasedAt:    m.ReleasedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		Version:       m.Version,
	}
	if m.ExpiresAt != nil {
		tx.ExpiresAt = *m.ExpiresAt
	}
	return tx
}

func (r *TransactionRepository) fail(operation string, err error, id string) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err, errs.ErrTransactionNotFound,
		map[string]any{"transaction_id": id})
}

func (r *TransactionRepository) toEntities(rows []model.Transaction) []*entity.Transaction {
	out := make([]*entity.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, r.modelToEntity(&rows[i]))
	}
	return out
}

// Create saves a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"transaction_id": tx.ID,
		"locker_id":      tx.LockerID,
		"user_id":        tx.UserID,
	})

	if tx.Version == 0 {
		tx.Version = 1
	}
	if err := conn(ctx, r.db).Create(r.entityToModel(tx)).Error; err != nil {
		return r.fail("creating transaction", err, tx.ID)
	}
	return nil
}

// GetByID retrieves a transaction
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var m model.Transaction
	if err := conn(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.fail("getting transaction", err, id)
	}
	return r.modelToEntity(&m), nil
}

// GetByAccessCode retrieves the transaction issued the given retrieval code
func (r *TransactionRepository) GetByAccessCode(ctx context.Context, code string) (*entity.Transaction, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errs.ErrTransactionNotFound
	}

	var m model.Transaction
	if err := conn(ctx, r.db).Where("access_code = ?", code).First(&m).Error; err != nil {
		return nil, r.fail("getting transaction by access code", err, "")
	}
	return r.modelToEntity(&m), nil
}

// List returns transactions newest first
func (r *TransactionRepository) List(ctx context.Context, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	q := conn(ctx, r.db).Model(&model.Transaction{})
	if filter.LockerID != "" {
		q = q.Where("locker_id = ?", filter.LockerID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", string(filter.PaymentStatus))
	}

	var rows []model.Transaction
	if err := paginate(q.Order("created_at DESC").Order("id DESC"), filter.Limit, filter.Offset).Find(&rows).Error; err != nil {
		return nil, r.fail("listing transactions", err, "")
	}
	return r.toEntities(rows), nil
}

// ListOverdue returns pending transactions whose payment deadline is at or before now, oldest deadline first
func (r *TransactionRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error) {
	q := conn(ctx, r.db).
		Where("payment_status = ? AND checked_out = ? AND expires_at IS NOT NULL AND expires_at <= ?",
			string(entity.PaymentPending), false, now).
		Order("expires_at ASC")

	var rows []model.Transaction
	if err := paginate(q, limit, 0).Find(&rows).Error; err != nil {
		return nil, r.fail("listing overdue transactions", err, "")
	}
	return r.toEntities(rows), nil
}

// ConditionalUpdate persists every mutable column when the stored version matches
func (r *TransactionRepository) ConditionalUpdate(ctx context.Context, tx *entity.Transaction, expectedVersion int64) error {
	db := conn(ctx, r.db)

	m := r.entityToModel(tx)
	m.Version = expectedVersion + 1

	result := db.Model(&model.Transaction{}).
		Where("id = ? AND version = ?", tx.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if result.Error != nil {
		return r.fail("updating transaction", result.Error, tx.ID)
	}

	if result.RowsAffected == 0 {
		return r.missOrConflict(db, tx.ID, expectedVersion)
	}

	tx.Version = m.Version
	return nil
}

// Delete removes the transaction when the stored version matches
func (r *TransactionRepository) Delete(ctx context.Context, id string, expectedVersion int64) error {
	db := conn(ctx, r.db)

	result := db.Where("id = ? AND version = ?", id, expectedVersion).Delete(&model.Transaction{})
	if result.Error != nil {
		return r.fail("deleting transaction", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(db, id, expectedVersion)
	}
	return nil
}

func (r *TransactionRepository) missOrConflict(db *gorm.DB, id string, expectedVersion int64) error {
	var count int64
	if err := db.Model(&model.Transaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return r.fail("checking transaction existence", err, id)
	}
	if count == 0 {
		return errs.ErrTransactionNotFound
	}
	return fmt.Errorf("%w: transaction %s moved past version %d", errs.ErrConflict, id, expectedVersion)
}

// CountUnreleased returns the number of transactions still holding a unit of the locker
func (r *TransactionRepository) CountUnreleased(ctx context.Context, lockerID string) (int, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.Transaction{}).
		Where("locker_id = ? AND released = ?", lockerID, false).
		Count(&count).Error
	if err != nil {
		return 0, r.fail("counting unreleased transactions", err, "")
	}
	return int(count), nil
}

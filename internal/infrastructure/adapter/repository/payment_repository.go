package repository

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// PaymentRepository stores payment attempts using GORM
type PaymentRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

var _ persistence.PaymentRepository = (*PaymentRepository)(nil)

// NewPaymentRepository creates a new PaymentRepository instance
func NewPaymentRepository(db *gorm.DB, logger coreport.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func paymentToModel(p *entity.Payment) *model.Payment {
	return &model.Payment{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        string(p.Status),
		ExternalRef:   p.ExternalRef,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func paymentToEntity(m *model.Payment) *entity.Payment {
	return &entity.Payment{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		Method:        m.Method,
		Status:        entity.PaymentState(m.Status),
		ExternalRef:   m.ExternalRef,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func paymentsToEntities(rows []model.Payment) []*entity.Payment {
	out := make([]*entity.Payment, 0, len(rows))
	for i := range rows {
		out = append(out, paymentToEntity(&rows[i]))
	}
	return out
}

func (r *PaymentRepository) fail(operation string, err error, id string) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err, errs.ErrPaymentNotFound,
		map[string]any{"payment_id": id})
}

// Create saves a payment
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	if err := conn(ctx, r.db).Create(paymentToModel(payment)).Error; err != nil {
		return r.fail("creating payment", err, payment.ID)
	}
	return nil
}

// GetByID retrieves a payment
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	var m model.Payment
	if err := conn(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.fail("getting payment", err, id)
	}
	return paymentToEntity(&m), nil
}

// ListByTransaction returns the attempts for one transaction, oldest first
func (r *PaymentRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Payment, error) {
	var rows []model.Payment
	err := conn(ctx, r.db).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.fail("listing payments by transaction", err, "")
	}
	return paymentsToEntities(rows), nil
}

// List returns payments newest first
func (r *PaymentRepository) List(ctx context.Context, limit, offset int) ([]*entity.Payment, error) {
	var rows []model.Payment
	q := conn(ctx, r.db).Order("created_at DESC").Order("id DESC")
	if err := paginate(q, limit, offset).Find(&rows).Error; err != nil {
		return nil, r.fail("listing payments", err, "")
	}
	return paymentsToEntities(rows), nil
}

// Update replaces a payment
func (r *PaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	result := conn(ctx, r.db).Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(paymentToModel(payment))
	if result.Error != nil {
		return r.fail("updating payment", result.Error, payment.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrPaymentNotFound
	}
	return nil
}

// Delete removes a payment
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Payment{})
	if result.Error != nil {
		return r.fail("deleting payment", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return errs.ErrPaymentNotFound
	}
	return nil
}

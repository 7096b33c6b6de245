package persistence

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// PaymentRepository stores payment attempts
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Payment, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, id string) error
}

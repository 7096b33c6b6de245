package event

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// ChangeNotifier pushes committed locker state to external read-side consumers.
// Correctness never depends on delivery.
type ChangeNotifier interface {
	LockerChanged(ctx context.Context, snapshot entity.LockerSnapshot) error
}

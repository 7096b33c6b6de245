package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// LockerRepository is the in-memory Locker Record Store
type LockerRepository struct {
	store *Store
}

var _ persistence.LockerRepository = (*LockerRepository)(nil)

// Create provisions a locker
func (r *LockerRepository) Create(ctx context.Context, locker *entity.Locker) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.data.lockers[locker.ID]; exists {
		return fmt.Errorf("%w: locker %s", errs.ErrDuplicate, locker.ID)
	}
	if locker.Code != "" {
		for _, l := range r.store.data.lockers {
			if l.Code == locker.Code {
				return fmt.Errorf("%w: locker code %s", errs.ErrDuplicate, locker.Code)
			}
		}
	}
	if !locker.State().Valid(locker.Capacity) {
		return errs.NewValidationError("available", "available must be between 0 and capacity")
	}
	r.store.data.lockers[locker.ID] = *locker
	return nil
}

// GetByID reads one locker
func (r *LockerRepository) GetByID(ctx context.Context, id string) (*entity.Locker, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	l, ok := r.store.data.lockers[id]
	if !ok {
		return nil, errs.ErrLockerNotFound
	}
	return &l, nil
}

// List returns lockers ordered by code then id
func (r *LockerRepository) List(ctx context.Context, filter persistence.LockerFilter) ([]*entity.Locker, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*entity.Locker, 0, len(r.store.data.lockers))
	for _, l := range r.store.data.lockers {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Location != "" && !strings.EqualFold(l.Location, filter.Location) {
			continue
		}
		out = append(out, &l)
	}
	slices.SortFunc(out, func(a, b *entity.Locker) int {
		if c := strings.Compare(a.Code, b.Code); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

// ConditionalUpdate writes the counter pair when the stored version matches
func (r *LockerRepository) ConditionalUpdate(
	ctx context.Context,
	id string,
	expectedVersion int64,
	state entity.LockerState,
) (*entity.Locker, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	l, ok := r.store.data.lockers[id]
	if !ok {
		return nil, errs.ErrLockerNotFound
	}
	if l.Version != expectedVersion {
		return nil, fmt.Errorf("%w: locker %s at version %d, expected %d", errs.ErrConflict, id, l.Version, expectedVersion)
	}
	if !state.Valid(l.Capacity) {
		return nil, fmt.Errorf("%w: locker %s state %d/%s outside bounds", errs.ErrInternalServer, id, state.Available, state.Status)
	}

	l.Apply(state, l.Version+1, r.store.timeProvider.Now())
	r.store.data.lockers[id] = l
	return &l, nil
}

// UpdateDetails changes descriptive fields only
func (r *LockerRepository) UpdateDetails(ctx context.Context, locker *entity.Locker) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	l, ok := r.store.data.lockers[locker.ID]
	if !ok {
		return errs.ErrLockerNotFound
	}
	if locker.Code != "" && locker.Code != l.Code {
		for _, other := range r.store.data.lockers {
			if other.ID != l.ID && other.Code == locker.Code {
				return fmt.Errorf("%w: locker code %s", errs.ErrDuplicate, locker.Code)
			}
		}
	}

	l.Code = locker.Code
	l.Name = locker.Name
	l.Size = locker.Size
	l.Location = locker.Location
	l.BasePrice = locker.BasePrice
	l.DeviceID = locker.DeviceID
	l.UpdatedAt = r.store.timeProvider.Now()
	r.store.data.lockers[l.ID] = l
	*locker = l
	return nil
}

// Delete removes a locker at the expected version
func (r *LockerRepository) Delete(ctx context.Context, id string, expectedVersion int64) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	l, ok := r.store.data.lockers[id]
	if !ok {
		return errs.ErrLockerNotFound
	}
	if l.Version != expectedVersion {
		return fmt.Errorf("%w: locker %s at version %d, expected %d", errs.ErrConflict, id, l.Version, expectedVersion)
	}
	delete(r.store.data.lockers, id)
	return nil
}

package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// LockerLogRepository stores the audit trail in memory
type LockerLogRepository struct {
	store *Store
}

var _ persistence.LockerLogRepository = (*LockerLogRepository)(nil)

// Append writes a new entry
func (r *LockerLogRepository) Append(ctx context.Context, log *entity.LockerLog) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.data.logs[log.ID]; exists {
		return fmt.Errorf("%w: locker log %s", errs.ErrDuplicate, log.ID)
	}
	r.store.data.logs[log.ID] = *log
	return nil
}

// GetByID retrieves one entry
func (r *LockerLogRepository) GetByID(ctx context.Context, id string) (*entity.LockerLog, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	l, ok := r.store.data.logs[id]
	if !ok {
		return nil, errs.ErrLockerLogNotFound
	}
	return &l, nil
}

// List returns entries newest first
func (r *LockerLogRepository) List(ctx context.Context, filter persistence.LockerLogFilter) ([]*entity.LockerLog, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*entity.LockerLog, 0)
	for _, l := range r.store.data.logs {
		if !matchesLogFilter(l, filter) {
			continue
		}
		out = append(out, &l)
	}
	slices.SortFunc(out, func(a, b *entity.LockerLog) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func matchesLogFilter(l entity.LockerLog, f persistence.LockerLogFilter) bool {
	switch {
	case f.LockerID != "" && l.LockerID != f.LockerID:
		return false
	case f.TransactionID != "" && l.TransactionID != f.TransactionID:
		return false
	case f.UserID != "" && l.UserID != f.UserID:
		return false
	case f.Action != "" && l.Action != f.Action:
		return false
	case f.Since != nil && l.Timestamp.Before(*f.Since):
		return false
	case f.Until != nil && l.Timestamp.After(*f.Until):
		return false
	}
	return true
}

// Correct rewrites an existing entry
func (r *LockerLogRepository) Correct(ctx context.Context, log *entity.LockerLog) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.data.logs[log.ID]; !ok {
		return errs.ErrLockerLogNotFound
	}
	r.store.data.logs[log.ID] = *log
	return nil
}

// Delete removes one entry
func (r *LockerLogRepository) Delete(ctx context.Context, id string) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.data.logs[id]; !ok {
		return errs.ErrLockerLogNotFound
	}
	delete(r.store.data.logs, id)
	return nil
}

// Purge removes entries older than before
func (r *LockerLogRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	var removed int64
	for id, l := range r.store.data.logs {
		if l.Timestamp.Before(before) {
			delete(r.store.data.logs, id)
			removed++
		}
	}
	return removed, nil
}

// CountByAction tallies matching entries per action
func (r *LockerLogRepository) CountByAction(ctx context.Context, filter persistence.LockerLogFilter) (entity.ActionCounts, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	counts := entity.ActionCounts{}
	for _, l := range r.store.data.logs {
		if matchesLogFilter(l, filter) {
			counts[l.Action]++
		}
	}
	return counts, nil
}

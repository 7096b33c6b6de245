package event

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// AuditWriter is the Audit Log Writer. Appends are best effort:
// a failed append is reported to the caller but never undoes a committed locker change.
type AuditWriter interface {
	Append(ctx context.Context, log *entity.LockerLog) error
}

// AuditWriterFunc adapts a function to AuditWriter
type AuditWriterFunc func(ctx context.Context, log *entity.LockerLog) error

// Append calls f
func (f AuditWriterFunc) Append(ctx context.Context, log *entity.LockerLog) error {
	return f(ctx, log)
}

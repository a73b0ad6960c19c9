package outbox

import (
	"context"
	"time"
)

// Repository defines outbox persistence. Writes made with a transaction in
// the context join it, so events commit atomically with the aggregate.
type Repository interface {
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns messages that are due, oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld removes published messages older than the retention window.
	DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error)

	// CountPending returns the number of unpublished, live messages.
	CountPending(ctx context.Context) (int64, error)
}

package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"photopost/internal/core/domain"
)

// QueueItem is one leased job. The id belongs to the queue row, not to the
// submission inside the payload.
type QueueItem struct {
	ID      uuid.UUID
	Message domain.QueueMessage
}

// WorkQueue is a durable, lease-based, at-least-once job queue. A consumer
// that crashes after leasing but before completing loses nothing: the item
// becomes claimable again once its lease expires.
type WorkQueue interface {
	// Enqueue appends; it never blocks on backlog.
	Enqueue(ctx context.Context, msg domain.QueueMessage) error

	// Lease atomically claims one pending item for up to leaseFor.
	// No claimable item yields (nil, nil).
	Lease(ctx context.Context, leaseFor time.Duration) (*QueueItem, error)

	// Complete removes a claimed item permanently.
	Complete(ctx context.Context, id uuid.UUID) error

	// DeadLetter records an item whose handler exhausted its retry budget.
	// The store is bounded; the item must still be completed afterwards.
	DeadLetter(ctx context.Context, item *QueueItem, cause error) error
}

// QueueHandler executes one job. Handlers must be idempotent: at-least-once
// delivery means the same message can arrive twice.
type QueueHandler interface {
	Handle(ctx context.Context, msg domain.QueueMessage) error
}

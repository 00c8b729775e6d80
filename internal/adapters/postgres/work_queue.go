package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

// deadLetterCap bounds the dead-letter store; older records are trimmed so a
// stream of poison jobs cannot grow the table without limit.
const deadLetterCap = 200

type workQueue struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.WorkQueue = (*workQueue)(nil) // Ensure compliance

// NewWorkQueue creates the durable, lease-based job queue on top of the
// queue_jobs table. Claims use FOR UPDATE SKIP LOCKED, so concurrent
// consumers never lease the same row; a lease that expires without a
// Complete makes the row claimable again.
func NewWorkQueue(db *DB, baseLogger zerolog.Logger) ports.WorkQueue {
	return &workQueue{
		db:  db,
		log: baseLogger.With().Str("component", "work_queue").Logger(),
	}
}

// Enqueue appends a job. It never blocks on backlog.
func (q *workQueue) Enqueue(ctx context.Context, msg domain.QueueMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	query := `INSERT INTO queue_jobs (id, payload) VALUES ($1, $2)`
	if _, err := q.db.pool.Exec(ctx, query, uuid.New(), payload); err != nil {
		q.log.Error().Err(err).Str("message", msg.String()).Msg("Failed to enqueue job")
		return err
	}

	q.log.Info().Str("message", msg.String()).Msg("Job enqueued")
	return nil
}

// Lease claims the oldest claimable job for leaseFor. A row is claimable
// when it was never leased or its previous lease has expired. (nil, nil)
// means the queue is empty.
func (q *workQueue) Lease(ctx context.Context, leaseFor time.Duration) (*ports.QueueItem, error) {
	query := `
		UPDATE queue_jobs
		SET leased_until = now() + make_interval(secs => $1)
		WHERE id = (
			SELECT id FROM queue_jobs
			WHERE leased_until IS NULL OR leased_until < now()
			ORDER BY enqueued_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, payload
	`
	var (
		id      uuid.UUID
		payload []byte
	)
	err := q.db.pool.QueryRow(ctx, query, leaseFor.Seconds()).Scan(&id, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		q.log.Error().Err(err).Msg("Failed to lease job")
		return nil, err
	}

	var msg domain.QueueMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		// An unreadable payload can never succeed; drop it instead of
		// re-leasing it forever.
		q.log.Error().Err(err).Str("job_id", id.String()).Msg("Leased job has unreadable payload; completing it")
		if cerr := q.Complete(ctx, id); cerr != nil {
			return nil, cerr
		}
		return nil, nil
	}

	return &ports.QueueItem{ID: id, Message: msg}, nil
}

// Complete removes a claimed job permanently.
func (q *workQueue) Complete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM queue_jobs WHERE id = $1`

	if _, err := q.db.pool.Exec(ctx, query, id); err != nil {
		q.log.Error().Err(err).Str("job_id", id.String()).Msg("Failed to complete job")
		return err
	}
	return nil
}

// DeadLetter records a job whose handler exhausted its retry budget, then
// trims the store to its cap. The caller still completes the job.
func (q *workQueue) DeadLetter(ctx context.Context, item *ports.QueueItem, cause error) error {
	payload, err := json.Marshal(item.Message)
	if err != nil {
		return err
	}

	insert := `INSERT INTO queue_dead (id, payload, error) VALUES ($1, $2, $3)`
	if _, err := q.db.pool.Exec(ctx, insert, item.ID, payload, cause.Error()); err != nil {
		q.log.Error().Err(err).Str("job_id", item.ID.String()).Msg("Failed to record dead-lettered job")
		return err
	}

	trim := `
		DELETE FROM queue_dead
		WHERE id NOT IN (
			SELECT id FROM queue_dead ORDER BY failed_at DESC LIMIT $1
		)
	`
	if _, err := q.db.pool.Exec(ctx, trim, deadLetterCap); err != nil {
		q.log.Warn().Err(err).Msg("Failed to trim dead-letter store")
	}

	q.log.Warn().
		Str("job_id", item.ID.String()).
		Str("message", item.Message.String()).
		AnErr("cause", cause).
		Msg("Job dead-lettered after retry exhaustion")
	return nil
}

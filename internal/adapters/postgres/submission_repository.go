package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

type submissionRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.SubmissionRepository = (*submissionRepository)(nil) // Ensure compliance

// NewSubmissionRepository creates a new repository for submission operations.
func NewSubmissionRepository(db *DB, baseLogger zerolog.Logger) ports.SubmissionRepository {
	return &submissionRepository{
		db:  db,
		log: baseLogger.With().Str("component", "submission_repo").Logger(),
	}
}

const submissionQueryCols = `
	id, user_id, moderation_msg_id, file_id, thumb_file_id, mime_type,
	approved, channel_msg_id, created_at, posted_at
`

// Create saves a new pending submission.
func (r *submissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	query := `
		INSERT INTO submissions (id, user_id, file_id, thumb_file_id, mime_type, approved)
		VALUES ($1, $2, $3, $4, $5, false)
	`
	_, err := r.db.pool.Exec(ctx, query,
		sub.ID,
		sub.UserID,
		sub.FileID,
		sub.ThumbFileID,
		sub.MimeType,
	)
	if err != nil {
		r.log.Error().Err(err).Str("submission_id", sub.ID.String()).Msg("Failed to insert submission")
	}
	return err
}

func (r *submissionRepository) scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var sub domain.Submission
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.ModerationMsgID,
		&sub.FileID,
		&sub.ThumbFileID,
		&sub.MimeType,
		&sub.Approved,
		&sub.ChannelMsgID,
		&sub.CreatedAt,
		&sub.PostedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.log.Error().Err(err).Msg("Failed to scan submission row")
		return nil, err
	}
	return &sub, nil
}

// GetByID finds a submission; (nil, nil) when unknown.
func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionQueryCols + ` FROM submissions WHERE id = $1`

	sub, err := r.scanSubmission(r.db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// GetByChannelMsgID resolves the submission behind a published channel
// message; (nil, nil) when the message is untracked.
func (r *submissionRepository) GetByChannelMsgID(ctx context.Context, msgID int64) (*domain.Submission, error) {
	query := `SELECT ` + submissionQueryCols + ` FROM submissions WHERE channel_msg_id = $1`

	sub, err := r.scanSubmission(r.db.pool.QueryRow(ctx, query, msgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// SetModerationMsgID records the message forwarded to the moderator.
func (r *submissionRepository) SetModerationMsgID(ctx context.Context, id uuid.UUID, msgID int64) error {
	query := `UPDATE submissions SET moderation_msg_id = $2 WHERE id = $1`

	_, err := r.db.pool.Exec(ctx, query, id, msgID)
	if err != nil {
		r.log.Error().Err(err).Str("submission_id", id.String()).Msg("Failed to set moderation message id")
	}
	return err
}

// MarkPublished flips the approval flag exactly once. The WHERE guard keeps
// the flag monotonic even under duplicate queue delivery.
func (r *submissionRepository) MarkPublished(ctx context.Context, id uuid.UUID, channelMsgID int64, postedAt time.Time) error {
	query := `
		UPDATE submissions
		SET approved = true, channel_msg_id = $2, posted_at = $3
		WHERE id = $1 AND approved = false
	`
	tag, err := r.db.pool.Exec(ctx, query, id, channelMsgID, postedAt)
	if err != nil {
		r.log.Error().Err(err).Str("submission_id", id.String()).Msg("Failed to mark submission published")
		return err
	}
	if tag.RowsAffected() == 0 {
		r.log.Warn().Str("submission_id", id.String()).Msg("Submission was already approved; publish flag untouched")
	}
	return nil
}

package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

type reactionRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.ReactionRepository = (*reactionRepository)(nil) // Ensure compliance

// NewReactionRepository creates a new repository for reaction aggregates.
func NewReactionRepository(db *DB, baseLogger zerolog.Logger) ports.ReactionRepository {
	return &reactionRepository{
		db:  db,
		log: baseLogger.With().Str("component", "reaction_repo").Logger(),
	}
}

// ListBySubmission loads the stored aggregate set of one submission.
func (r *reactionRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.ReactionAggregate, error) {
	query := `
		SELECT id, submission_id, kind, content, count, created_at
		FROM reactions WHERE submission_id = $1
	`
	rows, err := r.db.pool.Query(ctx, query, submissionID)
	if err != nil {
		r.log.Error().Err(err).Str("submission_id", submissionID.String()).Msg("Failed to list reactions")
		return nil, err
	}
	defer rows.Close()

	var aggs []domain.ReactionAggregate
	for rows.Next() {
		var agg domain.ReactionAggregate
		if err := rows.Scan(&agg.ID, &agg.SubmissionID, &agg.Kind, &agg.Content, &agg.Count, &agg.CreatedAt); err != nil {
			r.log.Error().Err(err).Msg("Failed to scan reaction row")
			return nil, err
		}
		aggs = append(aggs, agg)
	}
	return aggs, rows.Err()
}

// DeleteByIDs removes aggregates whose descriptor vanished from the remote
// snapshot.
func (r *reactionRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM reactions WHERE id = ANY($1)`
	_, err := r.db.pool.Exec(ctx, query, ids)
	if err != nil {
		r.log.Error().Err(err).Int("count", len(ids)).Msg("Failed to delete reactions")
	}
	return err
}

// Upsert writes every remote descriptor against the natural key
// (submission, kind, content), replacing the stored count. Content is NULL
// for paid reactions, so the conflict target coalesces it.
func (r *reactionRepository) Upsert(ctx context.Context, submissionID uuid.UUID, reactions []domain.RemoteReaction) error {
	if len(reactions) == 0 {
		return nil
	}

	query := `
		INSERT INTO reactions (id, submission_id, kind, content, count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (submission_id, kind, COALESCE(content, ''))
		DO UPDATE SET count = EXCLUDED.count
	`
	for _, reaction := range reactions {
		_, err := r.db.pool.Exec(ctx, query,
			uuid.New(),
			submissionID,
			reaction.Kind,
			reaction.Content,
			reaction.Count,
		)
		if err != nil {
			r.log.Error().Err(err).
				Str("submission_id", submissionID.String()).
				Str("kind", string(reaction.Kind)).
				Msg("Failed to upsert reaction")
			return err
		}
	}
	return nil
}

package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photopost/internal/core/ports"
)

type banRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.BanRepository = (*banRepository)(nil) // Ensure compliance

// NewBanRepository creates a new repository for ban records.
func NewBanRepository(db *DB, baseLogger zerolog.Logger) ports.BanRepository {
	return &banRepository{
		db:  db,
		log: baseLogger.With().Str("component", "ban_repo").Logger(),
	}
}

// Add appends a ban record. Bans are permanent; there is no removal path.
func (r *banRepository) Add(ctx context.Context, userID int64, reason *string) error {
	query := `INSERT INTO bans (id, user_id, reason) VALUES ($1, $2, $3)`

	_, err := r.db.pool.Exec(ctx, query, uuid.New(), userID, reason)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to insert ban record")
	}
	return err
}

// Exists reports whether the user has any ban record. Checked on every
// inbound interaction.
func (r *banRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bans WHERE user_id = $1)`

	var banned bool
	if err := r.db.pool.QueryRow(ctx, query, userID).Scan(&banned); err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to check ban record")
		return false, err
	}
	return banned, nil
}

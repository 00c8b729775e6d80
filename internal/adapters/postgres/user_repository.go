package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

type userRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.UserRepository = (*userRepository)(nil) // Ensure compliance

// NewUserRepository creates a new repository for user operations.
func NewUserRepository(db *DB, baseLogger zerolog.Logger) ports.UserRepository {
	return &userRepository{
		db:  db,
		log: baseLogger.With().Str("component", "user_repo").Logger(),
	}
}

// Upsert inserts the user or refreshes name fields on conflict. Called on
// every inbound message, so the stored profile tracks renames.
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name
	`
	_, err := r.db.pool.Exec(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
	)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", user.TelegramID).Msg("Failed to upsert user")
	}
	return err
}

// GetByTelegramID finds a user; (nil, nil) when the user is unknown.
func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `
		SELECT user_id, username, first_name, last_name, created_at
		FROM users WHERE user_id = $1
	`
	var user domain.User
	err := r.db.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Int64("user_id", telegramID).Msg("Failed to scan user row")
		return nil, err
	}
	return &user, nil
}

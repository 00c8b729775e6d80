package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

type dialogueStore struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.DialogueStore = (*dialogueStore)(nil) // Ensure compliance

// NewDialogueStore creates a store for per-(user, namespace) dialogue state.
// The namespace is an explicit string chosen at the call site, so unrelated
// flows for the same user never collide.
func NewDialogueStore(db *DB, baseLogger zerolog.Logger) ports.DialogueStore {
	return &dialogueStore{
		db:  db,
		log: baseLogger.With().Str("component", "dialogue_store").Logger(),
	}
}

// Get loads the stored state; a missing row is the idle state.
func (s *dialogueStore) Get(ctx context.Context, userID int64, namespace string) (domain.DialogueState, error) {
	query := `SELECT payload FROM dialogue_states WHERE user_id = $1 AND namespace = $2`

	var payload []byte
	err := s.db.pool.QueryRow(ctx, query, userID, namespace).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DialogueState{Step: domain.DialogueIdle}, nil
		}
		s.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load dialogue state")
		return domain.DialogueState{}, err
	}

	var state domain.DialogueState
	if err := json.Unmarshal(payload, &state); err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("Stored dialogue state is unreadable; treating as idle")
		return domain.DialogueState{Step: domain.DialogueIdle}, nil
	}
	return state, nil
}

// Set stores the state, replacing any prior flow for the same key.
func (s *dialogueStore) Set(ctx context.Context, userID int64, namespace string, state domain.DialogueState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dialogue_states (user_id, namespace, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, namespace) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = now()
	`
	if _, err := s.db.pool.Exec(ctx, query, userID, namespace, payload); err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to store dialogue state")
		return err
	}
	return nil
}

// Clear removes the state, returning the user to idle.
func (s *dialogueStore) Clear(ctx context.Context, userID int64, namespace string) error {
	query := `DELETE FROM dialogue_states WHERE user_id = $1 AND namespace = $2`

	if _, err := s.db.pool.Exec(ctx, query, userID, namespace); err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear dialogue state")
		return err
	}
	return nil
}

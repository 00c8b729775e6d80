package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"photopost/internal/core/domain"
)

// SubmissionRepository defines the persistence operations for Submissions.
// A miss is reported as (nil, nil), not as an error.
type SubmissionRepository interface {
	// Create saves a new pending submission.
	Create(ctx context.Context, sub *domain.Submission) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// GetByChannelMsgID resolves the submission a published channel message
	// belongs to.
	GetByChannelMsgID(ctx context.Context, msgID int64) (*domain.Submission, error)

	// SetModerationMsgID records the message forwarded to the moderator.
	SetModerationMsgID(ctx context.Context, id uuid.UUID, msgID int64) error

	// MarkPublished flips the approval flag and records the published message
	// reference. Called exactly once per submission, by the publisher.
	MarkPublished(ctx context.Context, id uuid.UUID, channelMsgID int64, postedAt time.Time) error
}

// ReactionRepository defines the persistence operations for reaction
// aggregates. Only the reconciler writes through it.
type ReactionRepository interface {
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.ReactionAggregate, error)

	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error

	// Upsert writes every descriptor against the natural key
	// (submission, kind, content), replacing the stored count.
	Upsert(ctx context.Context, submissionID uuid.UUID, reactions []domain.RemoteReaction) error
}

// BanRepository defines the persistence operations for ban records.
type BanRepository interface {
	Add(ctx context.Context, userID int64, reason *string) error
	Exists(ctx context.Context, userID int64) (bool, error)
}

// UserRepository defines the persistence operations for Telegram users.
type UserRepository interface {
	// Upsert inserts the user or refreshes the mutable fields on conflict.
	Upsert(ctx context.Context, user *domain.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
}

// DialogueStore persists per-(user, namespace) dialogue flow state.
// Missing state is reported as the zero (idle) state.
type DialogueStore interface {
	Get(ctx context.Context, userID int64, namespace string) (domain.DialogueState, error)
	Set(ctx context.Context, userID int64, namespace string, state domain.DialogueState) error
	Clear(ctx context.Context, userID int64, namespace string) error
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReactionKind is a custom type for our ENUM
type ReactionKind string

const (
	ReactionEmoji       ReactionKind = "emoji"
	ReactionCustomEmoji ReactionKind = "custom_emoji"
	ReactionPaid        ReactionKind = "paid"
)

// ReactionAggregate is one stored (kind, content) counter for a published
// submission. The natural key is (SubmissionID, Kind, Content).
type ReactionAggregate struct {
	ID           uuid.UUID
	SubmissionID uuid.UUID
	Kind         ReactionKind
	// Content is the emoji glyph or custom-emoji identifier; nil for paid.
	Content   *string
	Count     int64
	CreatedAt time.Time
}

// Key returns the natural-key identity of the aggregate.
func (r *ReactionAggregate) Key() ReactionKey {
	return NewReactionKey(r.Kind, r.Content)
}

// ReactionKey identifies a reaction descriptor independent of its count.
type ReactionKey struct {
	Kind    ReactionKind
	Content string // empty for paid
}

func NewReactionKey(kind ReactionKind, content *string) ReactionKey {
	k := ReactionKey{Kind: kind}
	if content != nil {
		k.Content = *content
	}
	return k
}

// RemoteReaction is one descriptor+count observed in a reaction snapshot.
type RemoteReaction struct {
	Kind    ReactionKind
	Content *string
	Count   int64
}

func (r RemoteReaction) Key() ReactionKey {
	return NewReactionKey(r.Kind, r.Content)
}

// ReactionSnapshot is the full remote reaction state of one channel message,
// as delivered by a message_reaction_count update.
type ReactionSnapshot struct {
	ChannelMsgID int64
	Reactions    []RemoteReaction
}

package reactions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
	"photopost/internal/shared/metrics"
)

// Reconciler converges the stored reaction aggregates of a published
// submission to the snapshot Telegram reports. Snapshots are authoritative
// and can arrive out of order or duplicated; reconciling the same snapshot
// twice is a no-op.
type Reconciler struct {
	submissions ports.SubmissionRepository
	reactions   ports.ReactionRepository
	channelID   int64
	log         zerolog.Logger
}

func NewReconciler(
	submissions ports.SubmissionRepository,
	reactions ports.ReactionRepository,
	channelID int64,
	baseLogger zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		submissions: submissions,
		reactions:   reactions,
		channelID:   channelID,
		log:         baseLogger.With().Str("component", "ReactionReconciler").Logger(),
	}
}

// HandleReactions adapts a transport-level reaction-count update into a
// snapshot and reconciles it. Updates from chats other than the configured
// channel are ignored.
func (r *Reconciler) HandleReactions(ctx context.Context, chatID int64, messageID int64, descriptors []ports.ReactionDescriptor) error {
	if chatID != r.channelID {
		return nil
	}
	snap := domain.ReactionSnapshot{ChannelMsgID: messageID}
	for _, d := range descriptors {
		remote, ok := toRemote(d)
		if !ok {
			r.log.Warn().Str("type", d.Type).Msg("skipping reaction of unknown type")
			continue
		}
		snap.Reactions = append(snap.Reactions, remote)
	}
	return r.Reconcile(ctx, snap)
}

// Reconcile deletes stored aggregates absent from the snapshot and upserts
// every snapshot entry. Messages that do not belong to a tracked submission
// are skipped.
func (r *Reconciler) Reconcile(ctx context.Context, snap domain.ReactionSnapshot) error {
	sub, err := r.submissions.GetByChannelMsgID(ctx, snap.ChannelMsgID)
	if err != nil {
		return fmt.Errorf("resolve reacted message %d: %w", snap.ChannelMsgID, err)
	}
	if sub == nil {
		r.log.Debug().Int64("channel_msg_id", snap.ChannelMsgID).Msg("reactions on an untracked message, ignoring")
		return nil
	}

	stored, err := r.reactions.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return fmt.Errorf("list stored reactions: %w", err)
	}

	remote := make(map[domain.ReactionKey]struct{}, len(snap.Reactions))
	for _, rr := range snap.Reactions {
		remote[rr.Key()] = struct{}{}
	}

	var stale []uuid.UUID
	for i := range stored {
		if _, ok := remote[stored[i].Key()]; !ok {
			stale = append(stale, stored[i].ID)
		}
	}
	if len(stale) > 0 {
		if err := r.reactions.DeleteByIDs(ctx, stale); err != nil {
			return fmt.Errorf("delete stale reactions: %w", err)
		}
	}
	if len(snap.Reactions) > 0 {
		if err := r.reactions.Upsert(ctx, sub.ID, snap.Reactions); err != nil {
			return fmt.Errorf("upsert reactions: %w", err)
		}
	}

	metrics.ReactionsReconciled.Inc()
	r.log.Debug().
		Str("submission_id", sub.ID.String()).
		Int("remote", len(snap.Reactions)).
		Int("deleted", len(stale)).
		Msg("reconciled reactions")
	return nil
}

func toRemote(d ports.ReactionDescriptor) (domain.RemoteReaction, bool) {
	switch d.Type {
	case "emoji":
		emoji := d.Emoji
		return domain.RemoteReaction{Kind: domain.ReactionEmoji, Content: &emoji, Count: d.Count}, true
	case "custom_emoji":
		id := d.CustomEmojiID
		return domain.RemoteReaction{Kind: domain.ReactionCustomEmoji, Content: &id, Count: d.Count}, true
	case "paid":
		return domain.RemoteReaction{Kind: domain.ReactionPaid, Count: d.Count}, true
	}
	return domain.RemoteReaction{}, false
}

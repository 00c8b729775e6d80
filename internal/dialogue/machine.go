package dialogue

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

// Namespace scopes moderation flow state in the dialogue store.
const Namespace = "moderation"

// Outcome is the finalized result of a flow transition. Exactly one field is
// set.
type Outcome struct {
	// Queue is a decline job ready for the work queue.
	Queue *domain.QueueMessage
	// Ban is a ban record ready for persistence.
	Ban *domain.BanRecord
}

// Machine drives the moderator's multi-step flows (decline reason, ban
// reason) over the persistent dialogue store.
type Machine struct {
	store ports.DialogueStore
	log   zerolog.Logger
}

func NewMachine(store ports.DialogueStore, baseLogger zerolog.Logger) *Machine {
	return &Machine{
		store: store,
		log:   baseLogger.With().Str("component", "DialogueMachine").Logger(),
	}
}

// BeginDeclineFlow puts the moderator into the awaiting-decline-reason step
// for one submission. A prior in-flight flow is overwritten.
func (m *Machine) BeginDeclineFlow(ctx context.Context, userID int64, submissionID uuid.UUID) error {
	return m.store.Set(ctx, userID, Namespace, domain.DialogueState{
		Step:   domain.DialogueAwaitingDeclineReason,
		Target: &submissionID,
	})
}

// BeginBanFlow puts the moderator into the awaiting-ban-reason step for one
// submitter.
func (m *Machine) BeginBanFlow(ctx context.Context, userID int64, targetUser int64) error {
	return m.store.Set(ctx, userID, Namespace, domain.DialogueState{
		Step:       domain.DialogueAwaitingBanReason,
		TargetUser: &targetUser,
	})
}

// Cancel drops any in-flight flow for the moderator.
func (m *Machine) Cancel(ctx context.Context, userID int64) error {
	return m.store.Clear(ctx, userID, Namespace)
}

// Transition consumes the moderator's next text message. Idle moderators get
// (nil, nil), letting the caller treat the message as ordinary input. A
// consumed message always resets the flow to idle.
func (m *Machine) Transition(ctx context.Context, userID int64, text string) (*Outcome, error) {
	state, err := m.store.Get(ctx, userID, Namespace)
	if err != nil {
		return nil, err
	}
	if state.Idle() {
		return nil, nil
	}

	reason := strings.TrimSpace(text)
	var outcome *Outcome
	switch state.Step {
	case domain.DialogueAwaitingDeclineReason:
		if state.Target == nil {
			m.log.Warn().Int64("user_id", userID).Msg("decline flow without a target submission, resetting")
			break
		}
		outcome = &Outcome{Queue: &domain.QueueMessage{
			ID:        *state.Target,
			Operation: domain.OperationDecline,
			Reason:    &reason,
		}}
	case domain.DialogueAwaitingBanReason:
		if state.TargetUser == nil {
			m.log.Warn().Int64("user_id", userID).Msg("ban flow without a target user, resetting")
			break
		}
		outcome = &Outcome{Ban: &domain.BanRecord{
			ID:       uuid.New(),
			UserID:   *state.TargetUser,
			Reason:   &reason,
			BannedAt: time.Now().UTC(),
		}}
	default:
		m.log.Warn().Int64("user_id", userID).Str("step", string(state.Step)).Msg("unknown dialogue step, resetting")
	}

	if err := m.store.Clear(ctx, userID, Namespace); err != nil {
		return nil, err
	}
	return outcome, nil
}

package domain

import "github.com/google/uuid"

// DialogueStep is a custom type for the per-user flow state ENUM
type DialogueStep string

const (
	DialogueIdle                  DialogueStep = "idle"
	DialogueAwaitingDeclineReason DialogueStep = "awaiting_decline_reason"
	DialogueAwaitingBanReason     DialogueStep = "awaiting_ban_reason"
)

// DialogueState is the stored per-user flow state. Target carries the
// submission being declined or is unset for a ban flow; TargetUser carries
// the user being banned. The state has no expiry: an abandoned flow persists
// until the user starts another flow or cancels.
type DialogueState struct {
	Step       DialogueStep `json:"step"`
	Target     *uuid.UUID   `json:"target,omitempty"`
	TargetUser *int64       `json:"target_user,omitempty"`
}

// Idle reports whether no flow is in progress.
func (s DialogueState) Idle() bool {
	return s.Step == "" || s.Step == DialogueIdle
}

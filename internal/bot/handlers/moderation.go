package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photopost/internal/bot/codec"
	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
	"photopost/internal/dialogue"
	"photopost/internal/shared/metrics"
)

// moderationHandler executes the moderator's inline-button actions.
type moderationHandler struct {
	log         zerolog.Logger
	machine     *dialogue.Machine
	queue       ports.WorkQueue
	submissions ports.SubmissionRepository
	bot         ports.BotClientPort
}

func NewModerationHandler(
	machine *dialogue.Machine,
	queue ports.WorkQueue,
	submissions ports.SubmissionRepository,
	bot ports.BotClientPort,
	baseLogger zerolog.Logger,
) ports.CallbackHandler {
	return &moderationHandler{
		log:         baseLogger.With().Str("component", "moderation_handler").Logger(),
		machine:     machine,
		queue:       queue,
		submissions: submissions,
		bot:         bot,
	}
}

func (h *moderationHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if update.CallbackData == nil {
		return nil
	}

	op, subID, err := codec.Decode(*update.CallbackData)
	if err != nil {
		if errors.Is(err, codec.ErrDecode) {
			h.log.Warn().Err(err).Str("data", *update.CallbackData).Msg("Ignoring malformed callback payload")
			return nil
		}
		return err
	}

	switch op {
	case domain.OperationApprove:
		return h.approve(ctx, update, subID)
	case domain.OperationDecline:
		return h.beginDecline(ctx, update, subID)
	case domain.OperationBan:
		return h.beginBan(ctx, update, subID)
	case domain.OperationCancel:
		return h.cancel(ctx, update)
	}
	return nil
}

func (h *moderationHandler) approve(ctx context.Context, update *ports.BotUpdate, subID uuid.UUID) error {
	err := h.queue.Enqueue(ctx, domain.QueueMessage{
		ID:        subID,
		Operation: domain.OperationApprove,
	})
	if err != nil {
		return fmt.Errorf("enqueue approval: %w", err)
	}
	metrics.JobsEnqueued.Inc()
	h.log.Info().Str("submission_id", subID.String()).Msg("Approval queued")

	h.answer(ctx, update, "Queued for posting")
	h.removeMessage(ctx, update)
	return nil
}

func (h *moderationHandler) beginDecline(ctx context.Context, update *ports.BotUpdate, subID uuid.UUID) error {
	if err := h.machine.BeginDeclineFlow(ctx, update.UserID, subID); err != nil {
		return fmt.Errorf("begin decline flow: %w", err)
	}
	h.answer(ctx, update, "")
	h.removeMessage(ctx, update)
	return h.prompt(ctx, update, subID, "Send me the decline reason.")
}

func (h *moderationHandler) beginBan(ctx context.Context, update *ports.BotUpdate, subID uuid.UUID) error {
	sub, err := h.submissions.GetByID(ctx, subID)
	if err != nil {
		return fmt.Errorf("load submission %s: %w", subID, err)
	}
	if sub == nil {
		h.log.Warn().Str("submission_id", subID.String()).Msg("Ban requested for an unknown submission")
		h.answer(ctx, update, "Unknown submission")
		return nil
	}

	if err := h.machine.BeginBanFlow(ctx, update.UserID, sub.UserID); err != nil {
		return fmt.Errorf("begin ban flow: %w", err)
	}
	h.answer(ctx, update, "")
	h.removeMessage(ctx, update)
	return h.prompt(ctx, update, subID, "Send me the ban reason.")
}

func (h *moderationHandler) cancel(ctx context.Context, update *ports.BotUpdate) error {
	if err := h.machine.Cancel(ctx, update.UserID); err != nil {
		return fmt.Errorf("cancel flow: %w", err)
	}
	h.answer(ctx, update, "Cancelled")
	h.removeMessage(ctx, update)
	return nil
}

// prompt asks the moderator for a reason, with an inline escape hatch.
func (h *moderationHandler) prompt(ctx context.Context, update *ports.BotUpdate, subID uuid.UUID, text string) error {
	cancel, err := codec.Encode(domain.OperationCancel, subID)
	if err != nil {
		return err
	}
	_, err = h.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID:      update.ChatID,
		Text:        text,
		ReplyMarkup: &ports.InlineKeyboard{{{Text: "Cancel", Data: cancel}}},
	})
	return err
}

func (h *moderationHandler) answer(ctx context.Context, update *ports.BotUpdate, text string) {
	err := h.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: update.CallbackID,
		Text:            text,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to answer callback query")
	}
}

func (h *moderationHandler) removeMessage(ctx context.Context, update *ports.BotUpdate) {
	if update.ChatID == 0 || update.MessageID == 0 {
		return
	}
	if err := h.bot.DeleteMessage(ctx, update.ChatID, update.MessageID); err != nil {
		h.log.Warn().Err(err).Int("message_id", update.MessageID).Msg("Failed to delete moderation message")
	}
}

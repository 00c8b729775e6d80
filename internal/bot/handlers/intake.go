package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photopost/internal/bot/codec"
	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
	"photopost/internal/dialogue"
	"photopost/internal/shared/metrics"
)

// maxIntakeBytes caps the size of accepted documents.
const maxIntakeBytes = 15 << 20

// messageHandler consumes every plain message. A text from a moderator with
// a flow in progress finalizes that flow; everything else goes through photo
// intake.
type messageHandler struct {
	log         zerolog.Logger
	machine     *dialogue.Machine
	queue       ports.WorkQueue
	submissions ports.SubmissionRepository
	bans        ports.BanRepository
	bot         ports.BotClientPort
	adminID     int64
}

func NewMessageHandler(
	machine *dialogue.Machine,
	queue ports.WorkQueue,
	submissions ports.SubmissionRepository,
	bans ports.BanRepository,
	bot ports.BotClientPort,
	adminID int64,
	baseLogger zerolog.Logger,
) ports.MessageHandler {
	return &messageHandler{
		log:         baseLogger.With().Str("component", "message_handler").Logger(),
		machine:     machine,
		queue:       queue,
		submissions: submissions,
		bans:        bans,
		bot:         bot,
		adminID:     adminID,
	}
}

func (h *messageHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if update.Document == nil && update.Text != "" {
		outcome, err := h.machine.Transition(ctx, update.UserID, update.Text)
		if err != nil {
			return fmt.Errorf("dialogue transition: %w", err)
		}
		if outcome != nil {
			return h.finalizeFlow(ctx, update, outcome)
		}
	}
	return h.intake(ctx, update)
}

// finalizeFlow turns a completed dialogue flow into its moderation action.
func (h *messageHandler) finalizeFlow(ctx context.Context, update *ports.BotUpdate, outcome *dialogue.Outcome) error {
	switch {
	case outcome.Queue != nil:
		if err := h.queue.Enqueue(ctx, *outcome.Queue); err != nil {
			return fmt.Errorf("enqueue decline: %w", err)
		}
		metrics.JobsEnqueued.Inc()
		h.log.Info().Str("job", outcome.Queue.String()).Msg("Decline queued")
		_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "Got it, the author will be notified.",
		})
		return err
	case outcome.Ban != nil:
		if err := h.bans.Add(ctx, outcome.Ban.UserID, outcome.Ban.Reason); err != nil {
			return fmt.Errorf("record ban: %w", err)
		}
		h.log.Info().Int64("banned_user_id", outcome.Ban.UserID).Msg("User banned")
		_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "User banned.",
		})
		return err
	}
	return nil
}

func (h *messageHandler) intake(ctx context.Context, update *ports.BotUpdate) error {
	// Submissions are accepted in private chats only.
	if update.ChatID != update.UserID {
		return nil
	}

	if update.Document == nil {
		_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "I only accept photos sent as <b>files</b> (without compression).",
		})
		return err
	}

	doc := update.Document
	if doc.MimeType == nil || !strings.HasPrefix(*doc.MimeType, "image/") {
		_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "I can't understand this file type. Please send an image.",
		})
		return err
	}
	if doc.FileSize >= maxIntakeBytes {
		_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "This file is too big. The limit is 15 MB.",
		})
		return err
	}

	sub := &domain.Submission{
		ID:          uuid.New(),
		UserID:      update.UserID,
		FileID:      doc.FileID,
		ThumbFileID: doc.ThumbFileID,
		MimeType:    doc.MimeType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.submissions.Create(ctx, sub); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	metrics.SubmissionsReceived.Inc()

	markup, err := moderationKeyboard(sub.ID)
	if err != nil {
		return err
	}
	author := domain.User{
		TelegramID: update.UserID,
		Username:   update.Username,
		FirstName:  update.FirstName,
		LastName:   update.LastName,
	}
	msgID, err := h.bot.SendDocument(ctx, ports.SendDocumentParams{
		ChatID:      h.adminID,
		FileID:      doc.FileID,
		Caption:     "New submission from " + author.Mention(),
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("forward submission to moderator: %w", err)
	}
	if err := h.submissions.SetModerationMsgID(ctx, sub.ID, int64(msgID)); err != nil {
		h.log.Error().Err(err).Str("submission_id", sub.ID.String()).Msg("Failed to record moderation message")
	}

	_, err = h.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   "Thanks! Your photo is on its way to moderation.",
	})
	return err
}

// moderationKeyboard builds the approve/decline/ban row for one submission.
func moderationKeyboard(id uuid.UUID) (*ports.InlineKeyboard, error) {
	approve, err := codec.Encode(domain.OperationApprove, id)
	if err != nil {
		return nil, err
	}
	decline, err := codec.Encode(domain.OperationDecline, id)
	if err != nil {
		return nil, err
	}
	ban, err := codec.Encode(domain.OperationBan, id)
	if err != nil {
		return nil, err
	}
	return &ports.InlineKeyboard{{
		{Text: "✅ Approve", Data: approve},
		{Text: "❌ Decline", Data: decline},
		{Text: "\U0001F6AB Ban", Data: ban},
	}}, nil
}

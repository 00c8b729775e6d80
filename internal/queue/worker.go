package queue

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

// submissionPublisher is the slice of the media pipeline the worker needs.
type submissionPublisher interface {
	Publish(ctx context.Context, sub *domain.Submission) error
}

// Worker executes moderation jobs pulled off the work queue. Handlers are
// idempotent: the publish path skips already-approved submissions and the
// decline notice is harmless to repeat.
type Worker struct {
	submissions ports.SubmissionRepository
	pipe        submissionPublisher
	bot         ports.BotClientPort
	log         zerolog.Logger
}

func NewWorker(
	submissions ports.SubmissionRepository,
	pipe submissionPublisher,
	bot ports.BotClientPort,
	baseLogger zerolog.Logger,
) *Worker {
	return &Worker{
		submissions: submissions,
		pipe:        pipe,
		bot:         bot,
		log:         baseLogger.With().Str("component", "QueueWorker").Logger(),
	}
}

func (w *Worker) Handle(ctx context.Context, msg domain.QueueMessage) error {
	sub, err := w.submissions.GetByID(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("load submission %s: %w", msg.ID, err)
	}
	if sub == nil {
		w.log.Warn().Str("job", msg.String()).Msg("job references an unknown submission, dropping")
		return nil
	}

	switch msg.Operation {
	case domain.OperationApprove:
		return w.pipe.Publish(ctx, sub)
	case domain.OperationDecline:
		return w.notifyDeclined(ctx, sub, msg.Reason)
	default:
		w.log.Warn().Str("job", msg.String()).Msg("job carries an operation the queue does not execute, dropping")
		return nil
	}
}

func (w *Worker) notifyDeclined(ctx context.Context, sub *domain.Submission, reason *string) error {
	text := "Unfortunately, your photo was declined."
	if reason != nil && *reason != "" {
		text = fmt.Sprintf("Unfortunately, your photo was declined.\nReason: %s", *reason)
	}
	_, err := w.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: sub.UserID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("notify declined submitter: %w", err)
	}
	return nil
}

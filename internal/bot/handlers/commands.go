package handlers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"photopost/internal/core/ports"
)

// startHandler is the plugin for the /start command.
type startHandler struct {
	log zerolog.Logger
	bot ports.BotClientPort
}

func NewStartHandler(bot ports.BotClientPort, baseLogger zerolog.Logger) ports.CommandHandler {
	return &startHandler{
		log: baseLogger.With().Str("component", "start_handler").Logger(),
		bot: bot,
	}
}

func (h *startHandler) Command() string { return "start" }

func (h *startHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text: "Hi! Send me a photo as a <b>file</b> (without compression) " +
			"and it will be put up for moderation.",
	})
	return err
}

// helpHandler is the plugin for the /help command.
type helpHandler struct {
	log     zerolog.Logger
	bot     ports.BotClientPort
	version string
}

func NewHelpHandler(bot ports.BotClientPort, version string, baseLogger zerolog.Logger) ports.CommandHandler {
	return &helpHandler{
		log:     baseLogger.With().Str("component", "help_handler").Logger(),
		bot:     bot,
		version: version,
	}
}

func (h *helpHandler) Command() string { return "help" }

func (h *helpHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	text := fmt.Sprintf(
		"Send a photo as a <b>file</b> and it will be forwarded to the moderator.\n"+
			"Approved photos are published to the channel with camera info in the caption.\n\n"+
			"Version: %s",
		h.version,
	)
	_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   text,
	})
	return err
}

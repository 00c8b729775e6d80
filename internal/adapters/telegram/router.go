package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

// Router is the "Bot Facade." It holds all "plugins"
// and routes incoming updates to the correct handler.
type Router struct {
	log             zerolog.Logger
	userRepo        ports.UserRepository
	banRepo         ports.BanRepository
	commandHandlers map[string]ports.CommandHandler
	callbackHandler ports.CallbackHandler
	messageHandler  ports.MessageHandler
	reactionHandler ports.ReactionHandler
}

// NewRouter creates a new bot facade/router.
func NewRouter(
	userRepo ports.UserRepository,
	banRepo ports.BanRepository,
	baseLogger zerolog.Logger,
) *Router {
	return &Router{
		log:             baseLogger.With().Str("component", "tg_router").Logger(),
		userRepo:        userRepo,
		banRepo:         banRepo,
		commandHandlers: make(map[string]ports.CommandHandler),
	}
}

// RegisterCommandHandler adds a "plugin" to the router.
func (r *Router) RegisterCommandHandler(handler ports.CommandHandler) {
	cmd := handler.Command()
	r.commandHandlers[cmd] = handler
	r.log.Info().Str("command", cmd).Msg("Registered new command handler")
}

// SetCallbackHandler registers the single, global callback handler.
func (r *Router) SetCallbackHandler(handler ports.CallbackHandler) {
	r.callbackHandler = handler
}

// SetMessageHandler registers the single, global message handler.
func (r *Router) SetMessageHandler(handler ports.MessageHandler) {
	r.messageHandler = handler
}

// SetReactionHandler registers the single reaction-snapshot handler.
func (r *Router) SetReactionHandler(handler ports.ReactionHandler) {
	r.reactionHandler = handler
}

// HandleUpdate is the main entry point for a new update from Telegram.
func (r *Router) HandleUpdate(ctx context.Context, update *Update) {
	// Reaction snapshots carry no acting user; route them before any
	// per-user processing.
	if update.MessageReactionCount != nil {
		r.handleReactionCount(ctx, update.MessageReactionCount)
		return
	}

	botUpdate, isSupported := r.parseUpdate(update)
	if !isSupported {
		r.log.Debug().Msg("Received unsupported update type")
		return
	}

	ctxLogger := r.log.With().
		Int64("user_id", botUpdate.UserID).
		Int64("chat_id", botUpdate.ChatID).
		Logger()
	ctx = ctxLogger.WithContext(ctx)

	banned, err := r.banRepo.Exists(ctx, botUpdate.UserID)
	if err != nil {
		ctxLogger.Error().Err(err).Msg("Failed to check ban state")
		return
	}
	if banned {
		ctxLogger.Info().Msg("Dropping update from banned user")
		return
	}

	// Callbacks first: a callback update has no message author of its own.
	if botUpdate.CallbackData != nil {
		if r.callbackHandler == nil {
			ctxLogger.Warn().Msg("No callback handler registered")
			return
		}
		if err := r.callbackHandler.Handle(ctx, botUpdate); err != nil {
			ctxLogger.Error().Err(err).Msg("Callback handler failed")
		}
		return
	}

	r.rememberUser(ctx, botUpdate)

	if botUpdate.Command != "" {
		if handler, ok := r.commandHandlers[botUpdate.Command]; ok {
			ctxLogger.Info().Str("handler", botUpdate.Command).Msg("Routing to command handler")
			if err := handler.Handle(ctx, botUpdate); err != nil {
				ctxLogger.Error().Err(err).Msg("Command handler failed")
			}
			return
		}
		ctxLogger.Info().Str("command", botUpdate.Command).Msg("Unknown command, ignoring")
		return
	}

	if r.messageHandler == nil {
		ctxLogger.Info().Msg("Received message with no handler registered")
		return
	}
	if err := r.messageHandler.Handle(ctx, botUpdate); err != nil {
		ctxLogger.Error().Err(err).Msg("Message handler failed")
	}
}

func (r *Router) handleReactionCount(ctx context.Context, rc *MessageReactionCountUpdated) {
	if r.reactionHandler == nil {
		return
	}
	descriptors := make([]ports.ReactionDescriptor, 0, len(rc.Reactions))
	for _, reaction := range rc.Reactions {
		descriptors = append(descriptors, ports.ReactionDescriptor{
			Type:          reaction.Type.Type,
			Emoji:         reaction.Type.Emoji,
			CustomEmojiID: reaction.Type.CustomEmojiID,
			Count:         reaction.TotalCount,
		})
	}
	if err := r.reactionHandler.HandleReactions(ctx, rc.Chat.ID, rc.MessageID, descriptors); err != nil {
		r.log.Error().Err(err).Int64("message_id", rc.MessageID).Msg("Reaction handler failed")
	}
}

// rememberUser keeps the author record fresh; failures never block routing.
func (r *Router) rememberUser(ctx context.Context, u *ports.BotUpdate) {
	user := &domain.User{
		TelegramID: u.UserID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
	if err := r.userRepo.Upsert(ctx, user); err != nil {
		r.log.Warn().Err(err).Int64("user_id", u.UserID).Msg("Failed to upsert user")
	}
}

// parseUpdate converts an inbound update into our internal, simplified struct.
func (r *Router) parseUpdate(update *Update) (*ports.BotUpdate, bool) {
	if update.CallbackQuery != nil {
		cb := update.CallbackQuery
		botUpdate := &ports.BotUpdate{
			UserID:       cb.From.ID,
			FirstName:    cb.From.FirstName,
			CallbackID:   cb.ID,
			CallbackData: &cb.Data,
		}
		if cb.Message != nil {
			botUpdate.MessageID = cb.Message.MessageID
			botUpdate.ChatID = cb.Message.Chat.ID
		}
		return botUpdate, true
	}

	if update.Message != nil && update.Message.From != nil {
		msg := update.Message
		botUpdate := &ports.BotUpdate{
			MessageID: msg.MessageID,
			ChatID:    msg.Chat.ID,
			UserID:    msg.From.ID,
			FirstName: msg.From.FirstName,
			Text:      msg.Text,
			Command:   msg.Command(),
		}
		if msg.From.UserName != "" {
			username := msg.From.UserName
			botUpdate.Username = &username
		}
		if msg.From.LastName != "" {
			lastName := msg.From.LastName
			botUpdate.LastName = &lastName
		}
		if msg.Document != nil {
			botUpdate.Document = parseDocument(msg.Document)
		}
		return botUpdate, true
	}

	return nil, false // Unsupported update
}

func parseDocument(doc *tgbotapi.Document) *ports.DocumentInfo {
	info := &ports.DocumentInfo{
		FileID:   doc.FileID,
		FileSize: int64(doc.FileSize),
	}
	if doc.MimeType != "" {
		mime := doc.MimeType
		info.MimeType = &mime
	}
	if doc.Thumbnail != nil {
		thumb := doc.Thumbnail.FileID
		info.ThumbFileID = &thumb
	}
	return info
}

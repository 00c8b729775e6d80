package ports

import (
	"context"
)

// --- Bot Message Structures ---

// Button represents a single inline button.
type Button struct {
	Text string
	Data string // Callback payload
}

// InlineKeyboard is rows of inline buttons.
type InlineKeyboard [][]Button

// SendMessageParams holds all possible options for sending a text message.
type SendMessageParams struct {
	ChatID      int64
	Text        string
	ReplyMarkup *InlineKeyboard
}

// SendPhotoParams sends a local file as a compressed photo.
type SendPhotoParams struct {
	ChatID  int64
	Path    string
	Caption string
}

// SendDocumentParams sends a document. Exactly one of Path / FileID is set;
// the thumbnail may likewise be a local path or a remote file handle.
type SendDocumentParams struct {
	ChatID      int64
	Path        string
	FileID      string
	FileName    string
	ThumbPath   string
	ThumbFileID string
	Caption     string
	ReplyMarkup *InlineKeyboard
}

// MediaGroupDocument is one attachment of a grouped post.
type MediaGroupDocument struct {
	Path        string
	FileID      string
	FileName    string
	ThumbPath   string
	ThumbFileID string
}

// SendMediaGroupParams sends several documents as one atomic grouped post.
type SendMediaGroupParams struct {
	ChatID    int64
	Documents []MediaGroupDocument
}

// AnswerCallbackParams acknowledges a callback query (stops the spinner).
type AnswerCallbackParams struct {
	CallbackQueryID string
	Text            string
}

// --- Bot Client Port (Outbound) ---

// BotClientPort defines the interface for sending to the chat transport.
// This is the adapter our core logic calls.
type BotClientPort interface {
	// SendMessage returns the id of the sent message.
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)
	// SendPhoto returns the id of the sent message.
	SendPhoto(ctx context.Context, params SendPhotoParams) (int, error)
	// SendDocument returns the id of the sent message.
	SendDocument(ctx context.Context, params SendDocumentParams) (int, error)
	SendMediaGroup(ctx context.Context, params SendMediaGroupParams) error
	AnswerCallbackQuery(ctx context.Context, params AnswerCallbackParams) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// DownloadFile fetches a remote blob by its handle into destPath.
	DownloadFile(ctx context.Context, fileID string, destPath string) error
}

// --- Bot Handler Port (Inbound) ---

// DocumentInfo is the document attachment of an inbound message, if any.
type DocumentInfo struct {
	FileID      string
	MimeType    *string
	FileSize    int64
	ThumbFileID *string
}

// BotUpdate represents a simplified, generic inbound update.
type BotUpdate struct {
	MessageID    int
	ChatID       int64
	UserID       int64
	Username     *string
	FirstName    string
	LastName     *string
	Text         string
	Command      string
	CallbackID   string
	CallbackData *string
	Document     *DocumentInfo
}

// CommandHandler defines the "plugin" interface for handling bot commands.
type CommandHandler interface {
	// Command returns the command string (without the "/")
	Command() string
	// Handle processes the update.
	Handle(ctx context.Context, update *BotUpdate) error
}

// CallbackHandler processes every callback query; the payload is decoded
// inside the handler, not by the router.
type CallbackHandler interface {
	Handle(ctx context.Context, update *BotUpdate) error
}

// MessageHandler processes plain (non-command) messages.
type MessageHandler interface {
	Handle(ctx context.Context, update *BotUpdate) error
}

// ReactionHandler processes reaction-count snapshots for channel messages.
type ReactionHandler interface {
	HandleReactions(ctx context.Context, chatID int64, messageID int64, reactions []ReactionDescriptor) error
}

// ReactionDescriptor is one (type, content, count) entry of a snapshot as the
// transport reports it.
type ReactionDescriptor struct {
	Type          string // "emoji" | "custom_emoji" | "paid"
	Emoji         string
	CustomEmojiID string
	Count         int64
}

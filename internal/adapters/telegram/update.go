package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Update extends the library's update with reaction-count support. The
// library predates Bot API 7.0, so the extra field has to be decoded here.
type Update struct {
	tgbotapi.Update
	MessageReactionCount *MessageReactionCountUpdated `json:"message_reaction_count,omitempty"`
}

// MessageReactionCountUpdated mirrors the Bot API object of the same name:
// the full anonymous reaction state of one channel message.
type MessageReactionCountUpdated struct {
	Chat      tgbotapi.Chat   `json:"chat"`
	MessageID int64           `json:"message_id"`
	Date      int64           `json:"date"`
	Reactions []ReactionCount `json:"reactions"`
}

// ReactionCount is one (reaction, count) pair of a snapshot.
type ReactionCount struct {
	Type       ReactionType `json:"type"`
	TotalCount int64        `json:"total_count"`
}

// ReactionType discriminates on Type: "emoji" carries Emoji, "custom_emoji"
// carries CustomEmojiID, "paid" carries neither.
type ReactionType struct {
	Type          string `json:"type"`
	Emoji         string `json:"emoji,omitempty"`
	CustomEmojiID string `json:"custom_emoji_id,omitempty"`
}

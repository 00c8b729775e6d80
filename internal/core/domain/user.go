package domain

import (
	"fmt"
	"time"
)

// User is a Telegram account we have seen at least one message from.
// The row is refreshed on every inbound interaction.
type User struct {
	// TelegramID is the primary key; there is no internal id.
	TelegramID int64
	Username   *string // Nullable
	FirstName  string
	LastName   *string // Nullable
	CreatedAt  time.Time
}

// Mention renders the user for captions and notices: @username when one is
// set, otherwise an HTML link to the profile.
func (u *User) Mention() string {
	if u.Username != nil && *u.Username != "" {
		return "@" + *u.Username
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.TelegramID, u.FirstName)
}

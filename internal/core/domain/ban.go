package domain

import (
	"time"

	"github.com/google/uuid"
)

// BanRecord marks a user as banned. Append-only; there is no expiry.
type BanRecord struct {
	ID       uuid.UUID
	UserID   int64
	Reason   *string
	BannedAt time.Time
}

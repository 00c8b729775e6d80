package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation is the closed set of moderation actions carried on the wire
// (callback payloads and queue messages).
type Operation string

const (
	OperationApprove Operation = "Approve"
	OperationDecline Operation = "Decline"
	OperationBan     Operation = "Ban"
	OperationCancel  Operation = "Cancel"
)

// Valid reports whether the tag is a member of the closed operation set.
func (o Operation) Valid() bool {
	switch o {
	case OperationApprove, OperationDecline, OperationBan, OperationCancel:
		return true
	}
	return false
}

// Submission is a user-provided photo awaiting or having completed moderation.
// Rows are never deleted; they form the audit trail.
type Submission struct {
	ID uuid.UUID
	// UserID is the Telegram ID of the submitter.
	UserID int64
	// ModerationMsgID is the message forwarded to the moderator, if any.
	ModerationMsgID *int64
	// FileID is the Telegram file handle of the original document.
	FileID string
	// ThumbFileID is the remote-supplied thumbnail handle, if the original
	// document carried one.
	ThumbFileID *string
	MimeType    *string
	Approved    bool
	// ChannelMsgID is set exactly once, when the submission is published.
	ChannelMsgID *int64
	CreatedAt    time.Time
	PostedAt     *time.Time
}

// IsHEIC reports whether the declared subtype needs an external decode step
// before Telegram can render it as a photo.
func (s *Submission) IsHEIC() bool {
	if s.MimeType == nil {
		return false
	}
	switch *s.MimeType {
	case "image/heic", "image/heif":
		return true
	}
	return false
}

// Extension guesses a scratch-file extension from the declared mime type.
func (s *Submission) Extension() string {
	if s.MimeType == nil {
		return "bin"
	}
	switch *s.MimeType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/heic":
		return "heic"
	case "image/heif":
		return "heif"
	case "image/webp":
		return "webp"
	case "image/tiff":
		return "tiff"
	}
	return "bin"
}

// QueueMessage is the ephemeral job payload pushed through the work queue.
// It exists only inside the queue and is dropped once the job completes.
type QueueMessage struct {
	ID        uuid.UUID `json:"id"`
	Operation Operation `json:"operation"`
	Reason    *string   `json:"reason"`
}

func (m QueueMessage) String() string {
	return fmt.Sprintf("%s(%s)", m.Operation, m.ID)
}

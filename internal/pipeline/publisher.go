package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"photopost/internal/core/ports"
)

// uploadSet describes one submission's fully prepared renditions.
type uploadSet struct {
	PhotoPath    string
	Caption      string
	OriginalPath string
	OriginalName string
	// ConvertedPath is set for HEIC-family submissions and switches the
	// original delivery from a single document to a two-item media group.
	ConvertedPath string
	ThumbPath     string
	ThumbFileID   string
}

// Publisher posts prepared renditions to the channel.
type Publisher struct {
	bot       ports.BotClientPort
	channelID int64
	log       zerolog.Logger
}

func NewPublisher(bot ports.BotClientPort, channelID int64, baseLogger zerolog.Logger) *Publisher {
	return &Publisher{
		bot:       bot,
		channelID: channelID,
		log:       baseLogger.With().Str("component", "Publisher").Logger(),
	}
}

// Publish sends the captioned photo followed by the original blob and returns
// the photo's channel message ID, the anchor for reaction tracking.
func (p *Publisher) Publish(ctx context.Context, up *uploadSet) (int, error) {
	msgID, err := p.bot.SendPhoto(ctx, ports.SendPhotoParams{
		ChatID:  p.channelID,
		Path:    up.PhotoPath,
		Caption: up.Caption,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: photo: %v", ErrUpload, err)
	}

	if up.ConvertedPath != "" {
		err = p.bot.SendMediaGroup(ctx, ports.SendMediaGroupParams{
			ChatID: p.channelID,
			Documents: []ports.MediaGroupDocument{
				{Path: up.OriginalPath, FileName: up.OriginalName, ThumbPath: up.ThumbPath, ThumbFileID: up.ThumbFileID},
				{Path: up.ConvertedPath, FileName: "converted.jpg"},
			},
		})
		if err != nil {
			return 0, fmt.Errorf("%w: media group: %v", ErrUpload, err)
		}
		return msgID, nil
	}

	_, err = p.bot.SendDocument(ctx, ports.SendDocumentParams{
		ChatID:      p.channelID,
		Path:        up.OriginalPath,
		FileName:    up.OriginalName,
		ThumbPath:   up.ThumbPath,
		ThumbFileID: up.ThumbFileID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: document: %v", ErrUpload, err)
	}
	return msgID, nil
}

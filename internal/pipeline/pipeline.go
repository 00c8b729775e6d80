package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
	"photopost/internal/shared/metrics"
)

var (
	// ErrDownload marks a failed fetch of the original blob.
	ErrDownload = errors.New("download failed")
	// ErrUpload marks a failed delivery to the channel.
	ErrUpload = errors.New("upload failed")
)

// Pipeline normalizes an approved submission and publishes it to the channel.
type Pipeline struct {
	submissions ports.SubmissionRepository
	users       ports.UserRepository
	bot         ports.BotClientPort
	publisher   *Publisher
	converter   Converter
	scratchDir  string
	log         zerolog.Logger
}

func New(
	submissions ports.SubmissionRepository,
	users ports.UserRepository,
	bot ports.BotClientPort,
	publisher *Publisher,
	converter Converter,
	scratchDir string,
	baseLogger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		submissions: submissions,
		users:       users,
		bot:         bot,
		publisher:   publisher,
		converter:   converter,
		scratchDir:  scratchDir,
		log:         baseLogger.With().Str("component", "Pipeline").Logger(),
	}
}

// Publish runs the full normalization sequence for one submission. Already
// published submissions are skipped, which keeps redelivered approvals
// harmless.
func (p *Pipeline) Publish(ctx context.Context, sub *domain.Submission) error {
	if sub.Approved {
		p.log.Info().Str("submission_id", sub.ID.String()).Msg("submission already published, skipping")
		return nil
	}

	sc := newScratch(p.scratchDir)
	defer sc.cleanup(p.log)

	origPath := sc.path(sub.Extension())
	if err := p.bot.DownloadFile(ctx, sub.FileID, origPath); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	workPath := sc.path("jpg")
	convertedPath := ""
	if sub.IsHEIC() {
		convertedPath = sc.path("jpg")
		if err := p.converter.ToJPEG(ctx, origPath, convertedPath); err != nil {
			return err
		}
		if err := copyFile(convertedPath, workPath); err != nil {
			return err
		}
	} else {
		if err := copyFile(origPath, workPath); err != nil {
			return err
		}
	}

	if err := enforceSizeGuard(workPath); err != nil {
		return err
	}
	if err := enforceDimensionGuard(workPath); err != nil {
		return err
	}

	caption := ComposeCaption(LoadExif(origPath), p.authorMention(ctx, sub.UserID))

	up := &uploadSet{
		PhotoPath:     workPath,
		Caption:       caption,
		OriginalPath:  origPath,
		OriginalName:  "original." + sub.Extension(),
		ConvertedPath: convertedPath,
	}
	if sub.ThumbFileID != nil {
		up.ThumbFileID = *sub.ThumbFileID
	} else {
		thumbPath := sc.path("jpg")
		if err := writeThumbnail(workPath, thumbPath); err != nil {
			p.log.Warn().Err(err).Str("submission_id", sub.ID.String()).Msg("thumbnail generation failed, sending without one")
		} else {
			up.ThumbPath = thumbPath
		}
	}

	msgID, err := p.publisher.Publish(ctx, up)
	if err != nil {
		return err
	}
	metrics.PhotosPublished.Inc()

	// The post is already live; a bookkeeping failure must not trigger a
	// retry that would duplicate it.
	if err := p.submissions.MarkPublished(ctx, sub.ID, int64(msgID), time.Now().UTC()); err != nil {
		p.log.Error().Err(err).Str("submission_id", sub.ID.String()).Int("channel_msg_id", msgID).Msg("failed to record published submission")
	}
	return nil
}

func (p *Pipeline) authorMention(ctx context.Context, userID int64) string {
	user, err := p.users.GetByTelegramID(ctx, userID)
	if err != nil || user == nil {
		if err != nil {
			p.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to load submission author")
		}
		return "anonymous"
	}
	return user.Mention()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy rendition: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy rendition: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy rendition: %w", err)
	}
	return out.Close()
}

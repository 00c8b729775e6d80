package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// ErrConversion marks a failed HEIC-to-JPEG conversion.
var ErrConversion = errors.New("heic conversion failed")

// Converter turns a HEIC-family blob into a JPEG rendition.
type Converter interface {
	ToJPEG(ctx context.Context, src, dst string) error
}

// HeifConverter shells out to the heif-convert binary.
type HeifConverter struct {
	bin string
	log zerolog.Logger
}

func NewHeifConverter(bin string, baseLogger zerolog.Logger) *HeifConverter {
	return &HeifConverter{
		bin: bin,
		log: baseLogger.With().Str("component", "HeifConverter").Logger(),
	}
}

func (c *HeifConverter) ToJPEG(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, c.bin, "-q", "90", src, dst)
	out, err := cmd.CombinedOutput()
	if err != nil {
		c.log.Error().Err(err).Str("output", string(out)).Msg("heif-convert failed")
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return nil
}

package pipeline

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// scratch tracks the temporary files a single pipeline run creates so they
// can be removed whether the run succeeds or fails.
type scratch struct {
	dir   string
	paths []string
}

func newScratch(dir string) *scratch {
	return &scratch{dir: dir}
}

// path reserves a fresh file name with the given extension.
func (s *scratch) path(ext string) string {
	p := filepath.Join(s.dir, uuid.New().String()+"."+ext)
	s.paths = append(s.paths, p)
	return p
}

// cleanup removes every reserved path. Failures are logged, never escalated.
func (s *scratch) cleanup(log zerolog.Logger) {
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", p).Msg("failed to remove scratch file")
		}
	}
}

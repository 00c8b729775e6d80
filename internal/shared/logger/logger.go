package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process-wide root logger, stamped with the service name.
// The "dev" environment gets human-readable console output; every other
// environment emits JSON suitable for log collectors.
func New(appEnv string) zerolog.Logger {
	var out io.Writer = os.Stderr
	if appEnv == "dev" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).With().
		Timestamp().
		Str("service", "photopost").
		Logger()
}

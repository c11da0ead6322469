// Package logging builds the zerolog logger shared by the server
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w at the given level. Development
// mode switches to the human-readable console writer.
func New(w io.Writer, level string, development bool) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if development {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "showroom").Logger()
}

// Package monitoring owns the process-wide structured logger.
package monitoring

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, zerolog.InfoLevel)
)

func newLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Options configures Init.
type Options struct {
	// Level is a zerolog level name such as "debug" or "info". Empty means info.
	Level string
	// Console switches to human-readable output.
	Console bool
	// Out defaults to os.Stderr.
	Out io.Writer
}

// Init replaces the package logger according to opts.
func Init(opts Options) error {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out}
	}

	SetLogger(newLogger(out, level))
	return nil
}

// Logger returns the current package logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// SetLogger replaces the package logger. Tests use zerolog.Nop() to mute it.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logf logs a formatted message at info level. It may be replaced to
// redirect printf-style diagnostics, as the migration logger uses it.
var Logf = func(format string, v ...any) {
	Logger().Info().Msgf(format, v...)
}

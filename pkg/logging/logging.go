// Package logging configures structured logging with tint.
//
// Usage:
//
//	logger := logging.Setup(logging.Options{Level: slog.LevelInfo})
//	logger.Info("server starting", "port", 8080)
//
// Development output is colored text; production output (JSON) is meant for
// log collectors.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options controls the handler installed by Setup.
type Options struct {
	Level slog.Level

	// JSON switches to slog's JSON handler instead of tint.
	JSON bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Setup builds a logger from opts and installs it as the slog default.
func Setup(opts Options) *slog.Logger {
	logger := slog.New(NewHandler(opts))
	slog.SetDefault(logger)
	return logger
}

// NewHandler returns the handler Setup would install.
func NewHandler(opts Options) slog.Handler {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.JSON {
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level})
	}
	return tint.NewHandler(out, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.Kitchen,
		AddSource:  opts.Level == slog.LevelDebug,
		NoColor:    !isTerminal(out),
	})
}

// ParseLevel maps debug, info, warn and error to slog levels (default: info).
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

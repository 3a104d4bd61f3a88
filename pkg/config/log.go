package config

import (
	"io"
	"log/slog"
)

// LevelFromFlags returns the level selected by the -vv, -v and -q flags,
// evaluated in that order, or fallback when none is set.
func LevelFromFlags(vv, v, q bool, fallback slog.Level) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return fallback
	}
}

// NewLogger returns a text logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/suranjanamuahaha/BlinkEd/internal/config"
)

// NewLogger builds the process logger from cfg and installs it with
// slog.SetDefault. It writes to stderr so diagnostics never mix with the
// console on stdout.
//
// Format "json" emits one JSON object per record. Any other format emits
// terse text lines without timestamps or source locations, which suits a
// terminal. Level accepts anything slog.Level understands ("debug",
// "WARN", "info+2"); unparseable values fall back to info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	opts.ReplaceAttr = dropTime
	return slog.New(slog.NewTextHandler(w, opts))
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

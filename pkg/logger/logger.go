// Package logger builds the application's structured logger: JSON or text
// slog output, sensitive-field masking, optional file rotation, and a Sentry
// tee for error-level records.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	File FileConfig `mapstructure:"file"`
}

// FileConfig enables rotating file output alongside stdout.
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// New builds the root logger. When sentryEnabled is set, error-level records
// are additionally forwarded to the initialized Sentry hub.
func New(cfg Config, sentryEnabled bool) *slog.Logger {
	out := io.Writer(os.Stdout)
	if cfg.File.Enabled && cfg.File.Path != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		})
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		base = slog.NewTextHandler(out, opts)
	} else {
		base = slog.NewJSONHandler(out, opts)
	}

	handler := slog.Handler(NewMaskingHandler(base))

	if sentryEnabled {
		sentryHandler := slogsentry.Option{Level: slog.LevelError}.NewSentryHandler()
		handler = slogmulti.Fanout(handler, sentryHandler)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

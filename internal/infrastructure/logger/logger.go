package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/config"
)

// New creates the root service logger. Development gets a human-readable
// console writer; everything else emits JSON for log aggregation.
func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Environment == "development" {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(writer)
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Logger()
}

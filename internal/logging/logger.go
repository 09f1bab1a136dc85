// Package logging configures the process-wide zerolog root logger and
// hands out per-component child loggers.
package logging

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	JSONFormat bool   // JSON output; console writer otherwise
}

var (
	mu   sync.RWMutex
	root = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init builds the root logger from config. Call once at process start,
// before any component loggers are created.
func Init(cfg Config) {
	level := parseLevel(cfg.Level)

	var logger zerolog.Logger
	if cfg.JSONFormat {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	mu.Lock()
	root = logger.Level(level).With().Timestamp().Logger()
	mu.Unlock()
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", name).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

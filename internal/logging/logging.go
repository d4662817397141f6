// Package logging configures the process-wide zerolog logger (C10,
// SPEC_FULL.md §6.4), grounded in the teacher's cmd/uncord/main.go: a JSON
// writer to stderr by default, switched to a console writer in development.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds a base logger for level and env, matching the teacher's
// main() / run() split: main() installs a JSON writer before config is
// loaded, run() swaps in a console writer once cfg.IsDevelopment() is
// known. Here both decisions are made at once since Load happens first.
func New(level, env string) zerolog.Logger {
	lvl := parseLevel(level)

	var logger zerolog.Logger
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return logger.Level(lvl)
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package logging holds the single zerolog logger every Marquee package
// writes through.
//
// main configures it from the LOG_* settings before anything else runs;
// until then a JSON logger at info level on stderr is in place.
//
//	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
//	logging.Info().Str("addr", addr).Msg("Listening")
//	logging.Ctx(r.Context()).Warn().Int64("movie_id", id).Msg("Movie not found")
//
// An event is only written once Msg or Send is called on it.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level, encoding and sink of the process logger.
type Config struct {
	// Level names the lowest level written. Unknown names mean info.
	Level string

	// Format is "json" or "console". console is meant for a terminal.
	Format string

	// Caller adds file:line to each entry.
	Caller bool

	// Timestamp adds an RFC 3339 "time" field.
	Timestamp bool

	// Output receives the entries. nil means os.Stderr.
	Output io.Writer
}

// DefaultConfig is what the process logs with before Init.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

//nolint:gochecknoinits // packages log during startup, before main calls Init
func init() {
	log = build(DefaultConfig())
}

// Init swaps the process logger for one built from cfg. It may be called
// more than once.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	log = l
	mu.Unlock()
}

func build(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	var out io.Writer = cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	zc := zerolog.New(out).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return zc.Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the process logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger installs l as the process logger. Tests pair it with
// NewTestLogger to inspect what was written.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout zerolog
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// With starts a child logger carrying extra fields.
func With() zerolog.Context {
	l := Logger()
	return l.With()
}

func event(level zerolog.Level) *zerolog.Event {
	l := Logger()
	return l.WithLevel(level)
}

// Debug begins a debug entry.
func Debug() *zerolog.Event { return event(zerolog.DebugLevel) }

// Info begins an info entry.
func Info() *zerolog.Event { return event(zerolog.InfoLevel) }

// Warn begins a warn entry.
func Warn() *zerolog.Event { return event(zerolog.WarnLevel) }

// Error begins an error entry.
func Error() *zerolog.Event { return event(zerolog.ErrorLevel) }

// Fatal begins an entry that exits the process with status 1 once written.
func Fatal() *zerolog.Event {
	l := Logger()
	return l.Fatal()
}

// NewTestLogger returns a timestamped JSON logger writing to w.
//
//	var buf bytes.Buffer
//	logging.SetLogger(logging.NewTestLogger(&buf))
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

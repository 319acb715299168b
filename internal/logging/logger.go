// Package logging builds the slog.Logger that is passed explicitly to the
// service, handlers and queue consumer.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName tags every record when Config.Service is empty.
const ServiceName = "room-reservation"

// Config captures the settings needed to configure a slog logger.
type Config struct {
	// Level is the textual log level (debug, info, warn, error).
	Level string
	// Format controls the output encoding (json or text).
	Format string
	// Service and Env are attached to every record.
	Service string
	Env     string
}

// ParseLevel converts textual levels into slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a slog.Logger for the writer using the supplied configuration.
// Timestamps are written in UTC, and debug level adds the source location.
func New(w io.Writer, cfg Config) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   level <= slog.LevelDebug,
		ReplaceAttr: utcTime,
	}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}

	service := cfg.Service
	if service == "" {
		service = ServiceName
	}
	attrs := []slog.Attr{slog.String("service", service)}
	if cfg.Env != "" {
		attrs = append(attrs, slog.String("env", cfg.Env))
	}
	return slog.New(h.WithAttrs(attrs))
}

func utcTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.TimeValue(a.Value.Time().UTC())
	}
	return a
}

// ForReservation scopes a logger to one reservation and its room.
func ForReservation(logger *slog.Logger, id, roomID uint64) *slog.Logger {
	return logger.With(slog.Uint64("reservation_id", id), slog.Uint64("room_id", roomID))
}

// Discard returns a logger that drops every record.  Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

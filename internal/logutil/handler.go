package logutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/quay/claircore/toolkit/log"
)

// WrapHandler wraps the provided handler with [log.WrapHandler], so that
// records pick up the attributes stored by [log.With] and honor the level
// stored by [log.WithLevel].
//
// Unlike [log.WrapHandler], handlers derived with WithAttrs or WithGroup
// stay wrapped, so [slog.Logger.With] doesn't lose the Context attributes.
func WrapHandler(next slog.Handler) slog.Handler {
	return handler{Handler: log.WrapHandler(next), next: next}
}

var _ slog.Handler = handler{}

type handler struct {
	slog.Handler
	next slog.Handler
}

// WithAttrs implements [slog.Handler].
func (h handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return WrapHandler(h.next.WithAttrs(attrs))
}

// WithGroup implements [slog.Handler].
func (h handler) WithGroup(name string) slog.Handler {
	return WrapHandler(h.next.WithGroup(name))
}

// Tee returns a handler that sends every record to all of "hs".
//
// This is used to feed both the process's output and the OpenTelemetry log
// pipeline.
func Tee(hs ...slog.Handler) slog.Handler {
	switch len(hs) {
	case 0:
		return slog.DiscardHandler
	case 1:
		return hs[0]
	}
	return tee(hs)
}

type tee []slog.Handler

// Enabled implements [slog.Handler].
func (t tee) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

// Handle implements [slog.Handler].
func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		errs = append(errs, h.Handle(ctx, r.Clone()))
	}
	return errors.Join(errs...)
}

// WithAttrs implements [slog.Handler].
func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

// WithGroup implements [slog.Handler].
func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// NewHandler returns a handler writing to "w" in the named format, "json" or
// "text", at the minimum level "l".
func NewHandler(w io.Writer, format string, l slog.Leveler) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: l}
	switch strings.ToLower(format) {
	case "", "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("logutil: unknown format %q", format)
	}
}

// ParseLevel parses a level name as understood by [slog.Level.UnmarshalText].
// The empty string is [slog.LevelInfo].
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("logutil: %w", err)
	}
	return l, nil
}

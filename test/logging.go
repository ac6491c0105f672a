// Package test holds helpers shared by cvsscalc tests.
package test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quay/claircore/toolkit/log"
)

var (
	// Setup installs the test log handler exactly once.
	setup = sync.OnceFunc(func() {
		slog.SetDefault(slog.New(new(handler)))
	})

	// Getwd caches [os.Getwd], since it may be called for every [slog.Record].
	getwd = sync.OnceValue(func() string {
		dir, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		return dir
	})

	// Modname caches the main module name, since it may be needed for every
	// [slog.Record].
	modname = sync.OnceValue(func() string {
		if info, ok := debug.ReadBuildInfo(); ok {
			return info.Main.Path + "/"
		}
		return ""
	})
)

type ctxKey struct{}

var logHandler ctxKey

var _ slog.Handler = (handler)(nil)

// DeferredOp is a closure used with [handler] that allows
// [slog.Handler.WithAttrs] and [slog.Handler.WithGroup] to work by deferring
// the call until the concrete [slog.Handler] can be retrieved from a
// [context.Context].
type deferredOp func(slog.Handler) slog.Handler

// Handler implements [slog.Handler] by extracting the per-test [slog.Handler]
// from a [context.Context]. Records logged without one are dropped.
type handler []deferredOp

func fromContext(ctx context.Context) (slog.Handler, bool) {
	h, ok := ctx.Value(logHandler).(slog.Handler)
	return h, ok
}

// Enabled implements [slog.Handler].
func (h handler) Enabled(ctx context.Context, l slog.Level) bool {
	lh, ok := fromContext(ctx)
	return ok && lh.Enabled(ctx, l)
}

// Handle implements [slog.Handler].
func (h handler) Handle(ctx context.Context, r slog.Record) error {
	lh, ok := fromContext(ctx)
	if !ok {
		return nil
	}
	for _, op := range h {
		lh = op(lh)
	}
	if v, ok := ctx.Value(log.AttrsKey).(slog.Value); ok {
		r.AddAttrs(v.Group()...)
	}
	return lh.Handle(ctx, r)
}

// WithAttrs implements [slog.Handler].
func (h handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return append(h[:len(h):len(h)], func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})
}

// WithGroup implements [slog.Handler].
func (h handler) WithGroup(name string) slog.Handler {
	return append(h[:len(h):len(h)], func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})
}

// Logging returns a [context.Context] that's set up to make the default
// [slog.Logger] write to the output of the provided [testing.TB].
//
// Pass a parent Context (such as [testing.T.Context]) to derive from it.
func Logging(t testing.TB, parent ...context.Context) context.Context {
	setup()
	ctx := context.Background()
	if len(parent) > 0 {
		ctx = parent[0]
	}
	start := time.Now()
	h := slog.NewTextHandler(t.Output(), &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(g []string, a slog.Attr) slog.Attr {
			if g != nil {
				return a
			}
			switch a.Key {
			case "time":
				return slog.String("time", "+"+time.Since(start).String())
			case "source":
				src := a.Value.Any().(*slog.Source)
				if src.Function != "" {
					return slog.String("source", strings.TrimPrefix(src.Function, modname()))
				}
				f := src.File
				if r, err := filepath.Rel(getwd(), f); err == nil && r != "" {
					f = r
				}
				return slog.String("source", fmt.Sprintf("%s:%d", f, src.Line))
			}
			return a
		},
	})
	return context.WithValue(ctx, logHandler, h)
}

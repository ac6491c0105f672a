// Package logutil holds the cvsscalc additions to the
// [github.com/quay/claircore/toolkit/log] helpers.
//
// Packages log with [log/slog] directly, passing the request Context, and
// attach attributes to that Context with [log.With]. The process's handler is
// wrapped with [WrapHandler] so those attributes show up on every record.
package logutil

import (
	"context"

	"github.com/quay/claircore/toolkit/log"
)

type ctxkey int

const (
	_ ctxkey = iota
	requestIDKey
)

// WithRequestID returns a context carrying the request ID "id", both as a
// logging attribute and for retrieval with [RequestID].
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	return log.With(ctx, "request_id", id)
}

// RequestID reports the request ID stored by [WithRequestID], if any.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

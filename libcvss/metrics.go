package libcvss

import (
	"context"
	"log/slog"
	"time"

	"github.com/quay/claircore/toolkit/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/quay/cvsscalc"
	"github.com/quay/cvsscalc/cvss"
)

const instrumentationName = "github.com/quay/cvsscalc/libcvss"

// Tracer and Meter singletons for this package.
var (
	tracer trace.Tracer
	meter  metric.Meter
)

// The instruments used in this package.
var (
	callCounter  metric.Int64Counter
	callDuration metric.Float64Histogram
)

// Attribute keys used on spans and measurements.
var (
	operationKey = attribute.Key("cvss.operation")
	versionKey   = attribute.Key("cvss.version")
	severityKey  = attribute.Key("cvss.severity")
	successKey   = attribute.Key("success")
	errorKindKey = attribute.Key("error.type")
)

// Must is a panic-or-return helper for [init].
func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

func init() {
	tracer = otel.Tracer(instrumentationName)
	meter = otel.Meter(instrumentationName)

	callCounter = must(meter.Int64Counter("libcvss.calls",
		metric.WithDescription("The number of calls for the operation described by the cvss.operation attribute."),
		metric.WithUnit("{call}"),
	))
	callDuration = must(meter.Float64Histogram("libcvss.call_time",
		metric.WithDescription("The duration of calls for the operation described by the cvss.operation attribute."),
		metric.WithUnit("ms"),
	))
}

func versionAttr(v cvss.Version) attribute.KeyValue {
	return versionKey.String(v.String())
}

func severityAttr(s cvss.Severity) attribute.KeyValue {
	return severityKey.String(s.Class())
}

// Method sets up the logging, tracing, and metrics for an exported method.
//
// This should be called immediately inside of exported methods. The returned
// function must be called to end the span; any attributes passed to it are
// added to both the span and the measurements.
func (l *Libcvss) method(ctx context.Context, name string, err *error) (context.Context, func(...attribute.KeyValue)) {
	opAttr := operationKey.String(name)
	ctx = log.With(ctx, "component", "libcvss/Libcvss."+name)
	ctx, span := tracer.Start(ctx, name,
		trace.WithAttributes(opAttr),
		trace.WithSpanKind(trace.SpanKindInternal))
	begin := time.Now()
	return ctx, func(extra ...attribute.KeyValue) {
		ok := *err == nil
		attrs := append([]attribute.KeyValue{opAttr, successKey.Bool(ok)}, extra...)
		if !ok {
			attrs = append(attrs, errorKindKey.String(cvsscalc.Code(*err)))
		}
		set := attribute.NewSet(attrs...)
		callCounter.Add(ctx, 1, metric.WithAttributeSet(set))
		callDuration.Record(ctx, float64(time.Since(begin))/float64(time.Millisecond), metric.WithAttributeSet(set))

		span.SetAttributes(extra...)
		if ok {
			span.SetStatus(codes.Ok, "")
			slog.DebugContext(ctx, "done")
		} else {
			span.RecordError(*err)
			span.SetStatus(codes.Error, "method error")
			slog.DebugContext(ctx, "done", "reason", *err)
		}
		span.End()
	}
}

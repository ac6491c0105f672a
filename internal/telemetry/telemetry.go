// Package telemetry sets up OpenTelemetry export for the cvsscalc server.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	logglobal "go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/quay/cvsscalc/internal/config"
)

// Providers holds the providers built by Setup.
type Providers struct {
	// LogHandler feeds records into the OpenTelemetry log pipeline. It's nil
	// unless log export is enabled.
	LogHandler slog.Handler

	shutdown []func(context.Context) error
}

// Shutdown flushes and stops all the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(p.shutdown) - 1; i >= 0; i-- {
		errs = append(errs, p.shutdown[i](ctx))
	}
	p.shutdown = nil
	return errors.Join(errs...)
}

// Setup builds the trace, metric, and log providers described by "cfg" and
// installs them as the OpenTelemetry globals.
//
// If export is not enabled, only the propagator is installed and the returned
// Providers is inert.
func Setup(ctx context.Context, cfg *config.Telemetry) (_ *Providers, err error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	p := new(Providers)
	if !cfg.Enabled() {
		return p, nil
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, p.Shutdown(ctx))
		}
	}()

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: resource: %w", err)
	}

	if cfg.Traces {
		exp, err := traceExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("telemetry: traces: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		p.shutdown = append(p.shutdown, tp.Shutdown)
		otel.SetTracerProvider(tp)
	}
	if cfg.Metrics {
		exp, err := metricExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("telemetry: metrics: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
			sdkmetric.WithResource(res),
		)
		p.shutdown = append(p.shutdown, mp.Shutdown)
		otel.SetMeterProvider(mp)
	}
	if cfg.Logs {
		exp, err := logExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("telemetry: logs: %w", err)
		}
		lp := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
			sdklog.WithResource(res),
		)
		p.shutdown = append(p.shutdown, lp.Shutdown)
		logglobal.SetLoggerProvider(lp)
		p.LogHandler = otelslog.NewHandler("github.com/quay/cvsscalc",
			otelslog.WithLoggerProvider(lp))
	}
	slog.InfoContext(ctx, "telemetry enabled",
		"protocol", cfg.Protocol,
		"endpoint", cfg.Endpoint,
		"traces", cfg.Traces,
		"metrics", cfg.Metrics,
		"logs", cfg.Logs)
	return p, nil
}

func traceExporter(ctx context.Context, cfg *config.Telemetry) (sdktrace.SpanExporter, error) {
	switch cfg.Protocol {
	case "grpc":
		var opts []otlptracegrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case "http":
		var opts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	return nil, fmt.Errorf("unknown protocol %q", cfg.Protocol)
}

func metricExporter(ctx context.Context, cfg *config.Telemetry) (sdkmetric.Exporter, error) {
	switch cfg.Protocol {
	case "grpc":
		var opts []otlpmetricgrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case "http":
		var opts []otlpmetrichttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	}
	return nil, fmt.Errorf("unknown protocol %q", cfg.Protocol)
}

func logExporter(ctx context.Context, cfg *config.Telemetry) (sdklog.Exporter, error) {
	switch cfg.Protocol {
	case "grpc":
		var opts []otlploggrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlploggrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlploggrpc.WithInsecure())
		}
		return otlploggrpc.New(ctx, opts...)
	case "http":
		var opts []otlploghttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlploghttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		return otlploghttp.New(ctx, opts...)
	}
	return nil, fmt.Errorf("unknown protocol %q", cfg.Protocol)
}

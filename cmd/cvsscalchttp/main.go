// Cvsscalchttp serves the CVSS scoring API over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/quay/cvsscalc/internal/config"
	"github.com/quay/cvsscalc/internal/logutil"
	"github.com/quay/cvsscalc/internal/telemetry"
	"github.com/quay/cvsscalc/libcvss"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "cvsscalchttp: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("cvsscalchttp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to a YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	lvl, err := logutil.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	out, err := logutil.NewHandler(stderr, cfg.Log.Format, lvl)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(logutil.WrapHandler(out)))

	tel, err := telemetry.Setup(ctx, &cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			slog.Warn("telemetry shutdown", "reason", err)
		}
	}()
	if tel.LogHandler != nil {
		slog.SetDefault(slog.New(logutil.WrapHandler(logutil.Tee(out, tel.LogHandler))))
	}

	h, err := newHandler(ctx, cfg)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.InfoContext(ctx, "starting http server", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down http server")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return eg.Wait()
}

// NewHandler assembles the full handler stack described by "cfg".
func newHandler(ctx context.Context, cfg *config.Config) (http.Handler, error) {
	l, err := libcvss.New(ctx, &libcvss.Options{
		Versions:       cfg.Scoring.Versions,
		DefaultVersion: cfg.Scoring.DefaultVersion,
	})
	if err != nil {
		return nil, err
	}
	api := libcvss.NewHandler(l, libcvss.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst))

	mux := http.NewServeMux()
	mux.Handle("/", api)
	if cfg.HTTP.Metrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	var h http.Handler = mux
	if cfg.HTTP.Compress {
		h = gzhttp.GzipHandler(h)
	}
	if cfg.HTTP.H2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}
	return h, nil
}

// Package config holds the configuration for the cvsscalc server.
//
// Configuration is read from an optional YAML file, then overridden by
// environment variables prefixed with "CVSSCALC_", then validated.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quay/cvsscalc/cvss"
	"github.com/quay/cvsscalc/internal/logutil"
)

// Config is the top-level server configuration.
type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Log       Log       `yaml:"log"`
	Scoring   Scoring   `yaml:"scoring"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// HTTP configures the HTTP server.
type HTTP struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RateLimit is the sustained number of requests per second allowed. Zero
	// disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
	// Compress enables gzip compression of responses.
	Compress bool `yaml:"compress"`
	// H2C enables cleartext HTTP/2.
	H2C bool `yaml:"h2c"`
	// Metrics enables the Prometheus "/metrics" endpoint.
	Metrics bool `yaml:"metrics"`
}

// Log configures process logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Scoring configures which CVSS versions are served.
type Scoring struct {
	Versions       []string `yaml:"versions"`
	DefaultVersion string   `yaml:"default_version"`
}

// Telemetry configures OpenTelemetry export. Export is disabled if Protocol
// is empty.
type Telemetry struct {
	// Protocol is the OTLP transport, "grpc" or "http".
	Protocol    string `yaml:"protocol"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
	Traces      bool   `yaml:"traces"`
	Metrics     bool   `yaml:"metrics"`
	Logs        bool   `yaml:"logs"`
}

// Enabled reports whether any signal is exported.
func (t *Telemetry) Enabled() bool {
	return t.Protocol != "" && (t.Traces || t.Metrics || t.Logs)
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		HTTP: HTTP{
			ListenAddr:      ":8080",
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateBurst:       10,
			Compress:        true,
			Metrics:         true,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Scoring: Scoring{
			DefaultVersion: "3.1",
		},
		Telemetry: Telemetry{
			ServiceName: "cvsscalc",
			Traces:      true,
			Metrics:     true,
		},
	}
}

// Load reads the configuration file at "path", if not empty, over the
// defaults, applies environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := Decode(bytes.NewReader(b), &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode decodes YAML from "r" into "cfg". Unknown keys are an error.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	switch err := dec.Decode(cfg); {
	case errors.Is(err, io.EOF): // Empty file.
	case err != nil:
		return err
	}
	return nil
}

// EnvPrefix is the prefix for all environment overrides.
const EnvPrefix = "CVSSCALC_"

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("HTTP_LISTEN_ADDR", &c.HTTP.ListenAddr)
	dur("HTTP_READ_TIMEOUT", &c.HTTP.ReadTimeout)
	dur("HTTP_SHUTDOWN_TIMEOUT", &c.HTTP.ShutdownTimeout)
	if v, ok := lookup(EnvPrefix + "HTTP_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sHTTP_RATE_LIMIT: %w", EnvPrefix, err))
		} else {
			c.HTTP.RateLimit = f
		}
	}
	if v, ok := lookup(EnvPrefix + "HTTP_RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sHTTP_RATE_BURST: %w", EnvPrefix, err))
		} else {
			c.HTTP.RateBurst = n
		}
	}
	boolean("HTTP_COMPRESS", &c.HTTP.Compress)
	boolean("HTTP_H2C", &c.HTTP.H2C)
	boolean("HTTP_METRICS", &c.HTTP.Metrics)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup(EnvPrefix + "VERSIONS"); ok {
		c.Scoring.Versions = nil
		for s := range strings.SplitSeq(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Scoring.Versions = append(c.Scoring.Versions, s)
			}
		}
	}
	str("DEFAULT_VERSION", &c.Scoring.DefaultVersion)

	str("OTLP_PROTOCOL", &c.Telemetry.Protocol)
	str("OTLP_ENDPOINT", &c.Telemetry.Endpoint)
	boolean("OTLP_INSECURE", &c.Telemetry.Insecure)
	str("OTLP_SERVICE_NAME", &c.Telemetry.ServiceName)
	boolean("OTLP_TRACES", &c.Telemetry.Traces)
	boolean("OTLP_METRICS", &c.Telemetry.Metrics)
	boolean("OTLP_LOGS", &c.Telemetry.Logs)

	return errors.Join(errs...)
}

// Validate reports all problems with the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.ListenAddr == "" {
		errs = append(errs, errors.New("http.listen_addr: must be set"))
	}
	if c.HTTP.ReadTimeout < 0 {
		errs = append(errs, errors.New("http.read_timeout: must not be negative"))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout: must be positive"))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("http.rate_limit: must not be negative"))
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst < 1 {
		errs = append(errs, errors.New("http.rate_burst: must be at least 1 when rate limiting"))
	}

	if _, err := logutil.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logutil.NewHandler(io.Discard, c.Log.Format, nil); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}

	var vs []cvss.Version
	for _, s := range c.Scoring.Versions {
		v, err := cvss.ParseVersion(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("scoring.versions: %w", err))
			continue
		}
		vs = append(vs, v)
	}
	if c.Scoring.Versions != nil && len(c.Scoring.Versions) == 0 {
		errs = append(errs, errors.New("scoring.versions: must not be empty"))
	}
	if d := c.Scoring.DefaultVersion; d != "" {
		v, err := cvss.ParseVersion(d)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("scoring.default_version: %w", err))
		case len(vs) != 0 && !slices.Contains(vs, v):
			errs = append(errs, fmt.Errorf("scoring.default_version: %v is not enabled", v))
		}
	}

	switch c.Telemetry.Protocol {
	case "", "grpc", "http":
	default:
		errs = append(errs, fmt.Errorf("telemetry.protocol: unknown protocol %q", c.Telemetry.Protocol))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration:\n%w", err)
	}
	return nil
}

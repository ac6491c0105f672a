package libcvss

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/quay/claircore/toolkit/log"
	"golang.org/x/time/rate"

	"github.com/quay/cvsscalc"
	"github.com/quay/cvsscalc/cvss"
	"github.com/quay/cvsscalc/internal/logutil"
	je "github.com/quay/cvsscalc/pkg/jsonerr"
)

// Scorer is the interface the HTTP handler serves. It's implemented by
// [*Libcvss].
type Scorer interface {
	Calculate(context.Context, *CalculateRequest) (*cvss.ScoreResult, error)
	ParseVector(context.Context, *ParseRequest) (*ParseResult, error)
	Catalog(context.Context, string) ([]cvss.MetricDefinition, error)
}

var _ Scorer = (*Libcvss)(nil)

// MaxRequestSize is the largest request body accepted.
const MaxRequestSize = 64 << 10

// RequestIDHeader is the header used to carry request IDs. A well-formed
// incoming value is reused; otherwise one is generated.
const RequestIDHeader = "X-Request-Id"

var _ http.Handler = (*HTTP)(nil)

// HTTP is the HTTP API for a Scorer.
type HTTP struct {
	*http.ServeMux
	s       Scorer
	limiter *rate.Limiter
}

// HandlerOption configures optional behavior of the HTTP handler.
type HandlerOption func(*HTTP)

// WithRateLimit limits the handler to "r" requests per second with bursts of
// "burst". Requests over the limit are answered with "429 Too Many Requests".
//
// A non-positive "r" disables limiting.
func WithRateLimit(r float64, burst int) HandlerOption {
	return func(h *HTTP) {
		if r <= 0 {
			h.limiter = nil
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
}

// NewHandler returns an HTTP handler serving "s".
func NewHandler(s Scorer, opts ...HandlerOption) *HTTP {
	h := &HTTP{s: s}
	for _, o := range opts {
		o(h)
	}
	m := http.NewServeMux()
	m.Handle("/calculate", h.route("calculate", h.Calculate))
	m.Handle("/parse_vector", h.route("parse_vector", h.ParseVector))
	m.Handle("/catalog", h.route("catalog", h.Catalog))
	m.HandleFunc("/healthz", h.Healthz)
	h.ServeMux = m
	return h
}

// Route wraps a handler with the request ID, rate limiting, and metrics
// middleware.
func (h *HTTP) route(name string, next http.HandlerFunc) http.Handler {
	var inner http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := logutil.WithRequestID(r.Context(), id)
		ctx = log.With(ctx, "route", name)
		if h.limiter != nil && !h.limiter.Allow() {
			slog.WarnContext(ctx, "rate limited")
			h.error(ctx, w, &cvsscalc.Error{
				Op:      "libcvss/HTTP",
				Kind:    cvsscalc.ErrUnavailable,
				Message: "rate limit exceeded",
			})
			return
		}
		next(w, r.WithContext(ctx))
	})
	return instrument(name, inner)
}

// CalculateResponse is the body of a successful "/calculate" response.
type CalculateResponse struct {
	Success       bool          `json:"success"`
	Version       cvss.Version  `json:"version"`
	VectorString  string        `json:"vectorString"`
	BaseScore     float64       `json:"baseScore"`
	Severity      cvss.Severity `json:"severity"`
	SeverityClass string        `json:"severityClass"`
	Scores        ScoreSet      `json:"scores"`
}

// ScoreSet is the nested set of scores in a CalculateResponse.
type ScoreSet struct {
	Base           float64 `json:"base"`
	Impact         float64 `json:"impact"`
	Exploitability float64 `json:"exploitability"`
}

// ParseResponse is the body of a successful "/parse_vector" response.
type ParseResponse struct {
	Success bool `json:"success"`
	*ParseResult
}

// CatalogResponse is the body of a successful "/catalog" response.
type CatalogResponse struct {
	Success bool                    `json:"success"`
	Version string                  `json:"version,omitempty"`
	Metrics []cvss.MetricDefinition `json:"metrics"`
}

// Calculate scores a vector.
//
// The request body is a JSON [CalculateRequest].
func (h *HTTP) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req CalculateRequest
	if !decode(ctx, w, r, &req) {
		return
	}
	res, err := h.s.Calculate(ctx, &req)
	if err != nil {
		h.error(ctx, w, err)
		return
	}
	reply(ctx, w, &CalculateResponse{
		Success:       true,
		Version:       res.Version,
		VectorString:  res.Vector,
		BaseScore:     res.BaseScore,
		Severity:      res.Severity,
		SeverityClass: res.SeverityClass,
		Scores: ScoreSet{
			Base:           res.BaseScore,
			Impact:         res.ImpactSubscore,
			Exploitability: res.ExploitabilitySubscore,
		},
	})
}

// ParseVector decodes a vector string.
//
// The request body is a JSON [ParseRequest].
func (h *HTTP) ParseVector(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req ParseRequest
	if !decode(ctx, w, r, &req) {
		return
	}
	res, err := h.s.ParseVector(ctx, &req)
	if err != nil {
		h.error(ctx, w, err)
		return
	}
	reply(ctx, w, &ParseResponse{Success: true, ParseResult: res})
}

// Catalog reports the metric definitions for the version named by the
// "version" query parameter.
func (h *HTTP) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !allow(w, r, http.MethodGet) {
		return
	}
	v := r.URL.Query().Get("version")
	defs, err := h.s.Catalog(ctx, v)
	if err != nil {
		h.error(ctx, w, err)
		return
	}
	reply(ctx, w, &CatalogResponse{Success: true, Version: v, Metrics: defs})
}

// Healthz reports that the process is serving.
func (h *HTTP) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	resp := &je.Response{
		Code:    "method-not-allowed",
		Message: fmt.Sprintf("endpoint only allows %s", method),
	}
	je.Error(w, resp, http.StatusMethodNotAllowed)
	return false
}

func decode(ctx context.Context, w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestSize))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after request object")
	}
	if err == nil {
		return true
	}
	resp := &je.Response{
		Code:    "bad-request",
		Message: fmt.Sprintf("failed to deserialize request: %v", err),
	}
	resp.RequestID, _ = logutil.RequestID(ctx)
	code := http.StatusBadRequest
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		code = http.StatusRequestEntityTooLarge
		resp.Code = "too-large"
	}
	slog.DebugContext(ctx, "bad request body", "reason", err)
	je.Error(w, resp, code)
	return false
}

func reply(ctx context.Context, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't change header or write a different response, because we
		// already started.
		slog.WarnContext(ctx, "failed to encode response", "reason", err)
	}
}

// Error writes the JSON error response for "err".
func (h *HTTP) error(ctx context.Context, w http.ResponseWriter, err error) {
	resp := &je.Response{
		Code:    cvsscalc.Code(err),
		Message: err.Error(),
	}
	resp.RequestID, _ = logutil.RequestID(ctx)
	var code int
	switch {
	case errors.Is(err, cvsscalc.ErrInvalid),
		errors.Is(err, cvsscalc.ErrUnsupported),
		errors.Is(err, cvss.ErrInvalidInput):
		code = http.StatusBadRequest
		// The engine's message is the useful part for callers, if there is one.
		var ce *cvsscalc.Error
		if errors.As(err, &ce) {
			switch {
			case ce.Inner != nil:
				resp.Message = ce.Inner.Error()
			case ce.Message != "":
				resp.Message = ce.Message
			}
		}
	case errors.Is(err, cvsscalc.ErrUnavailable):
		code = http.StatusTooManyRequests
	default:
		code = http.StatusInternalServerError
		resp.Message = "internal error"
		slog.ErrorContext(ctx, "request failed", "reason", err)
	}
	je.Error(w, resp, code)
}

// Package libcvss is the CVSS scoring service.
//
// It resolves the requested version against the versions a deployment serves,
// runs the [cvss] engine, and reports failures as [*cvsscalc.Error] values.
// An HTTP API over the service is provided by [NewHandler].
package libcvss

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/quay/cvsscalc"
	"github.com/quay/cvsscalc/cvss"
)

// Libcvss exports methods for scoring and decoding CVSS vectors.
//
// A Libcvss has no mutable state and is safe for concurrent use.
type Libcvss struct {
	versions []cvss.Version
	def      cvss.Version
}

// New creates a new instance of the Libcvss library.
func New(ctx context.Context, opts *Options) (*Libcvss, error) {
	vs, def, err := opts.parse()
	if err != nil {
		return nil, &cvsscalc.Error{
			Op:    "libcvss/New",
			Kind:  cvsscalc.ErrInvalid,
			Inner: err,
		}
	}
	l := &Libcvss{
		versions: vs,
		def:      def,
	}
	slog.InfoContext(ctx, "libcvss initialized",
		"versions", vs,
		"default", def)
	return l, nil
}

// Versions reports the versions served, in ascending order.
func (l *Libcvss) Versions() []cvss.Version {
	return slices.Clone(l.versions)
}

// Default reports the version used for requests that do not specify one.
func (l *Libcvss) Default() cvss.Version {
	return l.def
}

// CalculateRequest is a request to score a vector.
//
// The vector may be supplied as a vector string or as a mapping of metric
// abbreviation to value code; if both are present the string is used.
type CalculateRequest struct {
	Version      string            `json:"version"`
	VectorString string            `json:"vectorString"`
	Metrics      map[string]string `json:"metrics,omitempty"`
}

// ParseRequest is a request to decode a vector string.
type ParseRequest struct {
	Version      string `json:"version"`
	VectorString string `json:"vectorString"`
}

// ParseResult is a decoded, possibly partial, vector.
type ParseResult struct {
	Version      cvss.Version      `json:"version"`
	VectorString string            `json:"vectorString"`
	Components   map[string]string `json:"components"`
	Complete     bool              `json:"complete"`
	Missing      []string          `json:"missing,omitempty"`
}

// ErrVectorRequired is the Inner error reported when a request has neither a
// vector string nor any metrics.
var ErrVectorRequired = errors.New("vector string is required")

// Calculate validates and decodes the vector in "req", then scores and
// classifies it.
func (l *Libcvss) Calculate(ctx context.Context, req *CalculateRequest) (res *cvss.ScoreResult, err error) {
	const op = "libcvss/Calculate"
	ctx, done := l.method(ctx, "Calculate", &err)
	var attrs []attribute.KeyValue
	defer func() { done(attrs...) }()

	ver, err := l.version(op, req.Version)
	if err != nil {
		return nil, err
	}
	attrs = append(attrs, versionAttr(ver))

	var vec cvss.Vector
	switch {
	case req.VectorString != "":
		vec, err = cvss.Parse(ver, req.VectorString)
	case len(req.Metrics) != 0:
		vec, err = cvss.FromComponents(ver, req.Metrics)
	default:
		err = ErrVectorRequired
	}
	if err != nil {
		return nil, &cvsscalc.Error{
			Op:      op,
			Kind:    cvsscalc.ErrInvalid,
			Message: "unable to decode vector",
			Inner:   err,
		}
	}

	r, err := cvss.Score(vec)
	if err != nil {
		return nil, &cvsscalc.Error{
			Op:      op,
			Kind:    cvsscalc.ErrInvalid,
			Message: "unable to score vector",
			Inner:   err,
		}
	}
	attrs = append(attrs, severityAttr(r.Severity))
	slog.DebugContext(ctx, "scored vector",
		"vector", r.Vector,
		"score", r.BaseScore,
		"severity", r.Severity)
	return &r, nil
}

// ParseVector decodes the vector string in "req", which may be partial.
func (l *Libcvss) ParseVector(ctx context.Context, req *ParseRequest) (res *ParseResult, err error) {
	const op = "libcvss/ParseVector"
	ctx, done := l.method(ctx, "ParseVector", &err)
	var attrs []attribute.KeyValue
	defer func() { done(attrs...) }()

	ver, err := l.version(op, req.Version)
	if err != nil {
		return nil, err
	}
	attrs = append(attrs, versionAttr(ver))
	if req.VectorString == "" {
		return nil, &cvsscalc.Error{
			Op:    op,
			Kind:  cvsscalc.ErrInvalid,
			Inner: ErrVectorRequired,
		}
	}
	vec, err := cvss.Parse(ver, req.VectorString)
	if err != nil {
		return nil, &cvsscalc.Error{
			Op:      op,
			Kind:    cvsscalc.ErrInvalid,
			Message: "unable to decode vector",
			Inner:   err,
		}
	}
	res = &ParseResult{
		Version:      ver,
		VectorString: cvss.Format(vec),
		Components:   vec.Components(),
		Complete:     vec.Complete(),
		Missing:      vec.Missing(),
	}
	slog.DebugContext(ctx, "parsed vector",
		"vector", res.VectorString,
		"complete", res.Complete)
	return res, nil
}

// Catalog reports the metric definitions for the named version, or the default
// version if "version" is empty.
func (l *Libcvss) Catalog(ctx context.Context, version string) (defs []cvss.MetricDefinition, err error) {
	const op = "libcvss/Catalog"
	_, done := l.method(ctx, "Catalog", &err)
	var attrs []attribute.KeyValue
	defer func() { done(attrs...) }()

	ver, err := l.version(op, version)
	if err != nil {
		return nil, err
	}
	attrs = append(attrs, versionAttr(ver))
	defs, err = cvss.Definitions(ver)
	if err != nil {
		return nil, &cvsscalc.Error{
			Op:    op,
			Kind:  cvsscalc.ErrInternal,
			Inner: err,
		}
	}
	return defs, nil
}

// Version resolves the requested version string.
func (l *Libcvss) version(op, s string) (cvss.Version, error) {
	if s == "" {
		return l.def, nil
	}
	v, err := cvss.ParseVersion(s)
	if err != nil {
		return 0, &cvsscalc.Error{
			Op:    op,
			Kind:  cvsscalc.ErrInvalid,
			Inner: err,
		}
	}
	if !slices.Contains(l.versions, v) {
		return 0, &cvsscalc.Error{
			Op:      op,
			Kind:    cvsscalc.ErrUnsupported,
			Message: "version " + v.String() + " is not enabled",
		}
	}
	return v, nil
}

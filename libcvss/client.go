package libcvss

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/quay/cvsscalc"
	"github.com/quay/cvsscalc/cvss"
	"github.com/quay/cvsscalc/internal/httputil"
	"github.com/quay/cvsscalc/internal/logutil"
	je "github.com/quay/cvsscalc/pkg/jsonerr"
)

// Client is a Scorer backed by a remote cvsscalc HTTP API.
type Client struct {
	c    *http.Client
	root *url.URL
}

var _ Scorer = (*Client)(nil)

// NewClient returns a Client for the API rooted at "root". If "c" is nil,
// [http.DefaultClient] is used.
func NewClient(c *http.Client, root string) (*Client, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("libcvss: bad API root: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("libcvss: bad API root %q: scheme must be http or https", root)
	}
	if c == nil {
		c = http.DefaultClient
	}
	return &Client{c: c, root: u}, nil
}

// Calculate implements [Scorer].
func (c *Client) Calculate(ctx context.Context, req *CalculateRequest) (*cvss.ScoreResult, error) {
	const op = "libcvss/Client.Calculate"
	var res CalculateResponse
	if err := c.do(ctx, op, http.MethodPost, "calculate", nil, req, &res); err != nil {
		return nil, err
	}
	return &cvss.ScoreResult{
		Version:                res.Version,
		Vector:                 res.VectorString,
		BaseScore:              res.BaseScore,
		ImpactSubscore:         res.Scores.Impact,
		ExploitabilitySubscore: res.Scores.Exploitability,
		Severity:               res.Severity,
		SeverityClass:          res.SeverityClass,
	}, nil
}

// ParseVector implements [Scorer].
func (c *Client) ParseVector(ctx context.Context, req *ParseRequest) (*ParseResult, error) {
	const op = "libcvss/Client.ParseVector"
	res := ParseResponse{ParseResult: new(ParseResult)}
	if err := c.do(ctx, op, http.MethodPost, "parse_vector", nil, req, &res); err != nil {
		return nil, err
	}
	return res.ParseResult, nil
}

// Catalog implements [Scorer].
func (c *Client) Catalog(ctx context.Context, version string) ([]cvss.MetricDefinition, error) {
	const op = "libcvss/Client.Catalog"
	var q url.Values
	if version != "" {
		q = url.Values{"version": {version}}
	}
	var res CatalogResponse
	if err := c.do(ctx, op, http.MethodGet, "catalog", q, nil, &res); err != nil {
		return nil, err
	}
	// The Metric field isn't serialized; restore it from the local catalog.
	for i := range res.Metrics {
		if d, ok := cvss.Lookup(cvss.V31, res.Metrics[i].ID); ok {
			res.Metrics[i].Metric = d.Metric
		} else if d, ok := cvss.Lookup(cvss.V2, res.Metrics[i].ID); ok {
			res.Metrics[i].Metric = d.Metric
		}
	}
	return res.Metrics, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	u := c.root.JoinPath(path)
	u.RawQuery = q.Encode()
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &cvsscalc.Error{Op: op, Kind: cvsscalc.ErrInternal, Inner: err}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return &cvsscalc.Error{Op: op, Kind: cvsscalc.ErrInternal, Inner: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := logutil.RequestID(ctx); ok {
		req.Header.Set(RequestIDHeader, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.c.Do(req)
	if err != nil {
		return &cvsscalc.Error{
			Op:      op,
			Kind:    cvsscalc.ErrUnavailable,
			Message: "request failed",
			Inner:   err,
		}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return responseError(op, res)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &cvsscalc.Error{
			Op:      op,
			Kind:    cvsscalc.ErrInternal,
			Message: "unable to decode response",
			Inner:   err,
		}
	}
	return nil
}

// ResponseError turns an error response into an *cvsscalc.Error, using the
// JSON body if there is one.
func responseError(op string, res *http.Response) error {
	kind := cvsscalc.ErrInternal
	switch res.StatusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusMethodNotAllowed:
		kind = cvsscalc.ErrInvalid
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		kind = cvsscalc.ErrUnavailable
	}
	ct, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))
	if ct == "application/json" {
		var r je.Response
		if err := json.NewDecoder(io.LimitReader(res.Body, MaxRequestSize)).Decode(&r); err == nil {
			if k := cvsscalc.ErrorKind(r.Code); k == cvsscalc.ErrUnsupported {
				kind = k
			}
			return &cvsscalc.Error{
				Op:    op,
				Kind:  kind,
				Inner: errors.New(r.Message),
			}
		}
	}
	return &cvsscalc.Error{
		Op:    op,
		Kind:  kind,
		Inner: httputil.CheckResponse(res, http.StatusOK),
	}
}

// Package httputil holds helpers for HTTP clients.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"slices"
)

// PeekSize is the amount of a response body captured in a StatusError.
const PeekSize = 256

// StatusError is reported by CheckResponse for an unacceptable response.
type StatusError struct {
	StatusCode int
	Status     string
	// Body is the start of the response body, if it could be read.
	Body []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("unexpected status code: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status code: %s (body starts: %q)", e.Status, e.Body)
}

// CheckResponse reports a *StatusError if "resp" does not have one of the
// acceptable status codes. The error captures the start of the response body.
func CheckResponse(resp *http.Response, acceptableCodes ...int) error {
	if slices.Contains(acceptableCodes, resp.StatusCode) {
		return nil
	}
	err := &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	if b, rerr := io.ReadAll(io.LimitReader(resp.Body, PeekSize)); rerr == nil {
		err.Body = b
	}
	return err
}

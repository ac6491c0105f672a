// Package jsonerr writes JSON error bodies for the cvsscalc HTTP API.
package jsonerr

import (
	"encoding/json"
	"net/http"
)

// Response is the body of every error response.
//
// Success is always false; it's present so clients can branch on one field for
// both success and error bodies.
type Response struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"error"`
	// RequestID echoes the request's ID, if one was assigned.
	RequestID string `json:"requestId,omitempty"`
}

// Error works like [http.Error] but uses Response as the body of the
// response. Like http.Error, the caller will still need to return from the
// handler.
func Error(w http.ResponseWriter, r *Response, httpcode int) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpcode)
	r.Success = false
	b, _ := json.Marshal(r)
	w.Write(b)
}

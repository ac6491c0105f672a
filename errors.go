// Package cvsscalc holds types shared by the cvsscalc service packages.
//
// The scoring engine itself lives in the [github.com/quay/cvsscalc/cvss]
// package and has no dependency on this one.
package cvsscalc

import (
	"errors"
	"strings"
)

// Error is the cvsscalc error domain type.
//
// Errors returned by the service layer should be able to be inspected as
// ([errors.As]) an *Error at some point in the error chain.
//
// An Error should be created at the system boundary (e.g. when handing a
// request to the scoring engine), and intermediate layers should use
// [fmt.Errorf] with a "%w" verb in preference to creating a containing Error.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrInternal,
		ErrInvalid,
		ErrUnavailable,
		ErrUnsupported:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Is enables [errors.Is].
//
// It compares the error kind. Callers should compare against a declared
// [ErrorKind] over a specific error.
func (e *Error) Is(kind error) bool {
	return errors.Is(e.Kind, kind)
}

// Unwrap enables [errors.Unwrap].
func (e *Error) Unwrap() error {
	return e.Inner
}

// ErrorKind represents classes of errors to be checked against.
//
// If an error is unsure which kind to use, ErrInternal should be used.
type ErrorKind string

// Defined error kinds.
var (
	ErrInternal    = ErrorKind("internal")    // non-specific internal error
	ErrInvalid     = ErrorKind("invalid")     // invalid request
	ErrUnavailable = ErrorKind("unavailable") // refused for now, may succeed later
	ErrUnsupported = ErrorKind("unsupported") // CVSS version not served by this deployment
)

// Error implements error.
func (e ErrorKind) Error() string {
	return string(e)
}

// Code reports a short, stable identifier for the kind of "err", suitable for
// machine consumption.
//
// Errors that are not an *Error report the code for [ErrInternal].
func Code(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal"
	}
	switch e.Kind {
	case ErrInternal, ErrInvalid, ErrUnavailable, ErrUnsupported:
		return string(e.Kind)
	}
	return "internal"
}

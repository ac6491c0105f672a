package cvss

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is matched (via [errors.Is]) by every error this package
// reports about caller-supplied input.
var ErrInvalidInput = errors.New("invalid input")

// ErrMalformedVector is matched (via [errors.Is]) by errors reported when a
// vector string is invalid in some way.
var ErrMalformedVector = errors.New("malformed vector")

// UnsupportedVersionError is reported when the requested version is not one of
// "2.0", "3.0", or "3.1".
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("cvss: unsupported version %q", e.Version)
}

// Is enables [errors.Is].
func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MalformedVectorError is reported for a wrong prefix, a segment not of the
// form "METRIC:VALUE", or an empty segment.
type MalformedVectorError struct {
	Version Version
	// Segment is the offending part of the vector string, if there is one.
	Segment string
	Reason  string
}

func (e *MalformedVectorError) Error() string {
	var b strings.Builder
	b.WriteString("cvss v")
	b.WriteString(e.Version.String())
	b.WriteString(": malformed vector: ")
	b.WriteString(e.Reason)
	if e.Segment != "" {
		fmt.Fprintf(&b, ": %q", e.Segment)
	}
	return b.String()
}

// Is enables [errors.Is].
func (e *MalformedVectorError) Is(target error) bool {
	return target == ErrInvalidInput || target == ErrMalformedVector
}

// UnknownMetricError is reported when a metric is not defined for the version.
type UnknownMetricError struct {
	Version Version
	Metric  string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("cvss v%v: unknown metric %q", e.Version, e.Metric)
}

// Is enables [errors.Is].
func (e *UnknownMetricError) Is(target error) bool {
	return target == ErrInvalidInput || target == ErrMalformedVector
}

// InvalidMetricValueError is reported when a value is not allowed for the
// metric.
type InvalidMetricValueError struct {
	Version Version
	Metric  string
	Value   string
	// Allowed is the ordered set of allowed codes, for messages.
	Allowed string
}

func (e *InvalidMetricValueError) Error() string {
	return fmt.Sprintf("cvss v%v: invalid value %q for metric %q (allowed: %s)",
		e.Version, e.Value, e.Metric, strings.Join(strings.Split(e.Allowed, ""), ", "))
}

// Is enables [errors.Is].
func (e *InvalidMetricValueError) Is(target error) bool {
	return target == ErrInvalidInput || target == ErrMalformedVector
}

// DuplicateMetricError is reported when a vector string names the same metric
// twice.
type DuplicateMetricError struct {
	Version Version
	Metric  string
}

func (e *DuplicateMetricError) Error() string {
	return fmt.Sprintf("cvss v%v: duplicate metric %q", e.Version, e.Metric)
}

// Is enables [errors.Is].
func (e *DuplicateMetricError) Is(target error) bool {
	return target == ErrInvalidInput || target == ErrMalformedVector
}

// IncompleteVectorError is reported when a score is requested for a vector
// that is missing mandatory metrics.
type IncompleteVectorError struct {
	Version Version
	Missing []string
}

func (e *IncompleteVectorError) Error() string {
	return fmt.Sprintf("cvss v%v: incomplete vector: missing metrics: %s",
		e.Version, strings.Join(e.Missing, ", "))
}

// Is enables [errors.Is].
func (e *IncompleteVectorError) Is(target error) bool {
	return target == ErrInvalidInput
}

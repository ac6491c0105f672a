// Package cvss implements v2.0, v3.0, and v3.1 CVSS base vectors and scoring.
//
// The primary purpose of this package is to parse CVSS vectors, use the parsed
// representation to calculate the numerical scores, and produce the
// canonicalized representation of the vector. Only the "Base" metric group is
// supported; Temporal and Environmental metrics are rejected by the parser.
//
// Every function in this package is a pure function of its arguments and is
// safe for concurrent use.
//
// # CVSS v2.0
//
// Metrics and scoring is implemented as laid out in the [v2.0 specification].
//
// # CVSS v3.0
//
// Metrics and scoring is implemented as laid out in the [v3.0 specification].
//
// # CVSS v3.1
//
// Metrics and scoring is implemented as laid out in the [v3.1 specification].
// The "Roundup" function is implemented as described in Appendix A, see
// [Roundup31].
//
// [v2.0 specification]: https://www.first.org/cvss/v2/guide
// [v3.0 specification]: https://www.first.org/cvss/v3-0/
// [v3.1 specification]: https://www.first.org/cvss/v3-1/
package cvss

import (
	"fmt"
	"strings"
)

// Version is a supported CVSS version.
type Version int

// The supported versions.
const (
	_ Version = iota
	V2
	V30
	V31
)

// ParseVersion parses the version strings "2.0", "3.0", and "3.1".
//
// Any other string results in an [*UnsupportedVersionError].
func ParseVersion(s string) (Version, error) {
	switch s {
	case "2.0":
		return V2, nil
	case "3.0":
		return V30, nil
	case "3.1":
		return V31, nil
	}
	return 0, &UnsupportedVersionError{Version: s}
}

// Detect guesses at the version of a vector string.
//
// Strings without a recognized prefix are assumed to be v2.0 vectors. The
// guess is not validated; use [Parse] for that.
func Detect(vec string) Version {
	switch {
	case strings.HasPrefix(vec, `CVSS:3.1/`):
		return V31
	case strings.HasPrefix(vec, `CVSS:3.0/`):
		return V30
	}
	return V2
}

// String implements [fmt.Stringer].
func (v Version) String() string {
	switch v {
	case V2:
		return "2.0"
	case V30:
		return "3.0"
	case V31:
		return "3.1"
	}
	return "Version(invalid)"
}

// Valid reports whether v is one of the supported versions.
func (v Version) Valid() bool {
	return v >= V2 && v <= V31
}

// Prefix reports the literal prefix a vector string of this version carries.
func (v Version) Prefix() string {
	switch v {
	case V30:
		return `CVSS:3.0/`
	case V31:
		return `CVSS:3.1/`
	}
	return ""
}

// MarshalText implements [encoding.TextMarshaler].
func (v Version) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, &UnsupportedVersionError{Version: v.String()}
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (v *Version) UnmarshalText(b []byte) error {
	p, err := ParseVersion(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Metric is a CVSS base metric.
//
// The set of metrics is shared between versions; each version's catalog
// determines which metrics apply to it and in what order.
type Metric uint8

// These are the base metrics defined across the supported specifications.
const (
	_                  Metric = iota
	AttackVector              // AV
	AttackComplexity          // AC
	PrivilegesRequired        // PR
	UserInteraction           // UI
	Scope                     // S
	Authentication            // Au
	Confidentiality           // C
	Integrity                 // I
	Availability              // A

	numMetrics int = iota
)

var metricIDs = [numMetrics]string{
	AttackVector:       "AV",
	AttackComplexity:   "AC",
	PrivilegesRequired: "PR",
	UserInteraction:    "UI",
	Scope:              "S",
	Authentication:     "Au",
	Confidentiality:    "C",
	Integrity:          "I",
	Availability:       "A",
}

// ID reports the abbreviation used for the metric in vector strings.
func (m Metric) ID() string {
	if int(m) >= numMetrics || m == 0 {
		return ""
	}
	return metricIDs[m]
}

// String implements [fmt.Stringer].
func (m Metric) String() string {
	if id := m.ID(); id != "" {
		return id
	}
	return "Metric(invalid)"
}

// Value is a "packed" representation of the value of a metric.
//
// For all supported base metrics this is the single byte abbreviation used in
// the relevant specification.
type Value byte

// ValueUnset is reported when a metric in a Vector is not set.
const ValueUnset = Value(0)

// String implements [fmt.Stringer].
func (v Value) String() string {
	if v == ValueUnset {
		return ""
	}
	return string(rune(v))
}

// MarshalText implements [encoding.TextMarshaler].
func (v Value) MarshalText() ([]byte, error) {
	if v == ValueUnset {
		return []byte{}, nil
	}
	return []byte{byte(v)}, nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (v *Value) UnmarshalText(b []byte) error {
	switch len(b) {
	case 0:
		*v = ValueUnset
	case 1:
		*v = Value(b[0])
	default:
		return fmt.Errorf("cvss: bad value: %q", string(b))
	}
	return nil
}

// GoString implements [fmt.GoStringer].
func (v Value) GoString() string {
	b := []byte("Value(")
	switch v {
	case ValueUnset:
		b = append(b, "Unset"...)
	default:
		b = append(b, byte(v))
	}
	b = append(b, ')')
	return string(b)
}

package cvss

import (
	"encoding"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Vector is a set of selected base metric values for one CVSS version.
//
// The zero Vector is not valid; obtain one from [NewVector], [Parse], or
// [FromComponents]. A Vector may be partial: metrics may be unset. Vectors are
// comparable with "==".
type Vector struct {
	ver Version
	mv  [numMetrics]Value
}

var (
	_ encoding.TextMarshaler = Vector{}
	_ fmt.Stringer           = Vector{}
)

// NewVector returns an empty Vector of version "v".
func NewVector(v Version) (Vector, error) {
	if !v.Valid() {
		return Vector{}, &UnsupportedVersionError{Version: v.String()}
	}
	return Vector{ver: v}, nil
}

// Parse parses "s" as a vector string of version "ver".
//
// The grammar is strict: v3.x vectors must carry the "CVSS:3.x/" prefix
// matching "ver", and every segment must be a known metric with an allowed
// value, appearing at most once. Metrics may be omitted; use
// [Vector.Complete] to check for a vector that can be scored.
func Parse(ver Version, s string) (Vector, error) {
	v, err := NewVector(ver)
	if err != nil {
		return v, err
	}
	rest := s
	if p := ver.Prefix(); p != "" {
		var ok bool
		rest, ok = strings.CutPrefix(s, p)
		if !ok {
			label, _, _ := strings.Cut(s, "/")
			want := strings.TrimSuffix(p, "/")
			reason := "missing prefix " + want
			switch {
			case label == want:
				reason = "empty vector"
			case strings.HasPrefix(label, "CVSS:"):
				reason = "version mismatch, expected " + want
			}
			return Vector{}, &MalformedVectorError{Version: ver, Segment: label, Reason: reason}
		}
	} else if label, _, _ := strings.Cut(s, "/"); strings.HasPrefix(label, "CVSS:") {
		return Vector{}, &MalformedVectorError{Version: ver, Segment: label, Reason: "unexpected prefix"}
	}
	if rest == "" {
		return Vector{}, &MalformedVectorError{Version: ver, Reason: "empty vector"}
	}

	for seg := range strings.SplitSeq(rest, "/") {
		id, val, ok := strings.Cut(seg, ":")
		if !ok || id == "" || val == "" || strings.ContainsRune(val, ':') {
			return Vector{}, &MalformedVectorError{
				Version: ver,
				Segment: seg,
				Reason:  "segment is not of the form METRIC:VALUE",
			}
		}
		d := lookup(ver, id)
		if d == nil {
			return Vector{}, &UnknownMetricError{Version: ver, Metric: id}
		}
		if v.mv[d.Metric] != ValueUnset {
			return Vector{}, &DuplicateMetricError{Version: ver, Metric: id}
		}
		code, err := checkValue(ver, d, val)
		if err != nil {
			return Vector{}, err
		}
		v.mv[d.Metric] = code
	}
	return v, nil
}

// FromComponents builds a Vector of version "ver" from a mapping of metric
// abbreviation to value code, as produced by [Vector.Components].
//
// Entries with an empty value are treated as unselected. All other entries
// are validated as [Parse] does.
func FromComponents(ver Version, cs map[string]string) (Vector, error) {
	v, err := NewVector(ver)
	if err != nil {
		return v, err
	}
	// Sorted, so that the reported error is stable.
	for _, id := range slices.Sorted(maps.Keys(cs)) {
		val := cs[id]
		d := lookup(ver, id)
		if d == nil {
			return Vector{}, &UnknownMetricError{Version: ver, Metric: id}
		}
		if val == "" {
			continue
		}
		code, err := checkValue(ver, d, val)
		if err != nil {
			return Vector{}, err
		}
		v.mv[d.Metric] = code
	}
	return v, nil
}

func checkValue(ver Version, d *MetricDefinition, val string) (Value, error) {
	if len(val) == 1 {
		if _, ok := d.Value(Value(val[0])); ok {
			return Value(val[0]), nil
		}
	}
	return ValueUnset, &InvalidMetricValueError{
		Version: ver,
		Metric:  d.ID,
		Value:   val,
		Allowed: d.Allowed(),
	}
}

// Format returns the canonical string representation of "v".
//
// Metrics are emitted in canonical order and unset metrics are skipped.
func Format(v Vector) string {
	text := append(make([]byte, 0, 48), v.ver.Prefix()...) // Guess at an initial capacity.
	first := true
	for _, d := range catalog(v.ver) {
		val := v.mv[d.Metric]
		if val == ValueUnset {
			continue
		}
		if !first {
			text = append(text, '/')
		}
		first = false
		text = append(text, d.ID...)
		text = append(text, ':', byte(val))
	}
	return string(text)
}

// Version reports the version of the vector.
func (v Vector) Version() Version { return v.ver }

// Get reports the Value for the supplied Metric, or [ValueUnset].
func (v Vector) Get(m Metric) Value {
	if int(m) >= numMetrics {
		return ValueUnset
	}
	return v.mv[m]
}

// Set sets the value of the metric "m". Passing [ValueUnset] clears the
// metric.
func (v *Vector) Set(m Metric, val Value) error {
	d := definition(v.ver, m)
	if d == nil {
		return &UnknownMetricError{Version: v.ver, Metric: m.ID()}
	}
	if val == ValueUnset {
		v.mv[m] = ValueUnset
		return nil
	}
	if _, ok := d.Value(val); !ok {
		return &InvalidMetricValueError{
			Version: v.ver,
			Metric:  d.ID,
			Value:   val.String(),
			Allowed: d.Allowed(),
		}
	}
	v.mv[m] = val
	return nil
}

// Missing reports the abbreviations of the mandatory metrics that are unset,
// in canonical order.
func (v Vector) Missing() []string {
	var out []string
	for _, d := range catalog(v.ver) {
		if v.mv[d.Metric] == ValueUnset {
			out = append(out, d.ID)
		}
	}
	return out
}

// Complete reports whether every mandatory metric is set.
func (v Vector) Complete() bool {
	if !v.ver.Valid() {
		return false
	}
	for _, d := range catalog(v.ver) {
		if v.mv[d.Metric] == ValueUnset {
			return false
		}
	}
	return true
}

// Components returns a mapping of metric abbreviation to value code for the
// set metrics.
func (v Vector) Components() map[string]string {
	out := make(map[string]string, len(catalog(v.ver)))
	for _, d := range catalog(v.ver) {
		if val := v.mv[d.Metric]; val != ValueUnset {
			out[d.ID] = val.String()
		}
	}
	return out
}

// String implements [fmt.Stringer].
func (v Vector) String() string {
	return Format(v)
}

// MarshalText implements [encoding.TextMarshaler].
func (v Vector) MarshalText() ([]byte, error) {
	if !v.ver.Valid() {
		return nil, &UnsupportedVersionError{Version: v.ver.String()}
	}
	return []byte(Format(v)), nil
}

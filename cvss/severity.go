package cvss

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Severity is the "Qualitative Severity" of a Base score.
type Severity int

// The specified qualitative severities. None and Critical are only used by
// v3.x.
const (
	_ Severity = iota
	None
	Low
	Medium
	High
	Critical
)

var severityNames = [...]string{
	None:     "None",
	Low:      "Low",
	Medium:   "Medium",
	High:     "High",
	Critical: "Critical",
}

// Classify returns the qualitative severity of the Base score "s" for
// version "v".
//
// Bands include their lower bound and exclude their upper bound, except for
// the top band which includes 10. Scores below 0 fall into the lowest band
// and scores above 10 into the highest.
func Classify(v Version, s float64) (q Severity) {
	switch v {
	case V2:
		switch {
		case s < 4:
			q = Low
		case s < 7:
			q = Medium
		default:
			q = High
		}
	default:
		switch {
		case s <= 0:
			q = None
		case s < 4:
			q = Low
		case s < 7:
			q = Medium
		case s < 9:
			q = High
		default:
			q = Critical
		}
	}
	return q
}

// String implements [fmt.Stringer].
func (s Severity) String() string {
	if s < None || s > Critical {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// Class reports the lower-cased label, used for presentation.
func (s Severity) Class() string {
	// A Caser is stateful, so one is constructed per call.
	return cases.Lower(language.Und).String(s.String())
}

// MarshalText implements [encoding.TextMarshaler].
func (s Severity) MarshalText() ([]byte, error) {
	if s < None || s > Critical {
		return nil, fmt.Errorf("cvss: invalid severity: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
//
// Both the label and the lower-cased class are accepted.
func (s *Severity) UnmarshalText(b []byte) error {
	for i, n := range severityNames {
		if n == "" {
			continue
		}
		if n == string(b) || cases.Lower(language.Und).String(n) == string(b) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("cvss: unknown severity %q", string(b))
}

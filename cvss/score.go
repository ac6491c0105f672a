package cvss

import (
	"math"
)

// Scores are the numeric results of scoring a complete Vector.
//
// Impact and Exploitability are rounded to one decimal place for display; the
// Base score is calculated from the un-rounded values.
type Scores struct {
	Base           float64
	Impact         float64
	Exploitability float64
}

// ScoreResult is the full result of scoring a Vector.
type ScoreResult struct {
	Version                Version  `json:"version"`
	Vector                 string   `json:"vectorString"`
	BaseScore              float64  `json:"baseScore"`
	ImpactSubscore         float64  `json:"impactSubscore"`
	ExploitabilitySubscore float64  `json:"exploitabilitySubscore"`
	Severity               Severity `json:"severity"`
	SeverityClass          string   `json:"severityClass"`
}

// Score calculates the scores for "v", classifies the Base score, and reports
// the canonical vector string.
func Score(v Vector) (ScoreResult, error) {
	s, err := Calculate(v)
	if err != nil {
		return ScoreResult{}, err
	}
	sev := Classify(v.ver, s.Base)
	return ScoreResult{
		Version:                v.ver,
		Vector:                 Format(v),
		BaseScore:              s.Base,
		ImpactSubscore:         s.Impact,
		ExploitabilitySubscore: s.Exploitability,
		Severity:               sev,
		SeverityClass:          sev.Class(),
	}, nil
}

// Calculate reports the scores for the Vector "v".
//
// An [*IncompleteVectorError] is reported if any mandatory metric is unset.
func Calculate(v Vector) (Scores, error) {
	if !v.ver.Valid() {
		return Scores{}, &UnsupportedVersionError{Version: v.ver.String()}
	}
	if m := v.Missing(); len(m) != 0 {
		return Scores{}, &IncompleteVectorError{Version: v.ver, Missing: m}
	}
	switch v.ver {
	case V2:
		return v2Scores(v), nil
	case V30, V31:
		return v3Scores(v), nil
	default:
		panic("unreachable")
	}
}

func v2Scores(v Vector) Scores {
	w := func(m Metric) float64 {
		return definition(V2, m).weight(v.mv[m], false)
	}
	impact := 10.41 * (1 -
		(1-w(Confidentiality))*
			(1-w(Integrity))*
			(1-w(Availability)))
	exploitability := 20 * w(AttackVector) * w(AttackComplexity) * w(Authentication)
	if impact == 0 {
		// f(Impact) is 0, so the Base score is too.
		return Scores{Exploitability: Round1(exploitability)}
	}
	const fImpact = 1.176
	base := Round1(((0.6 * impact) + (0.4 * exploitability) - 1.5) * fImpact)
	return Scores{
		Base:           base,
		Impact:         Round1(impact),
		Exploitability: Round1(exploitability),
	}
}

func v3Scores(v Vector) Scores {
	changed := v.mv[Scope] == 'C'
	w := func(m Metric) float64 {
		return definition(v.ver, m).weight(v.mv[m], changed)
	}

	iss := 1 - ((1 - w(Confidentiality)) * (1 - w(Integrity)) * (1 - w(Availability)))
	var impact float64
	if changed {
		impact = 7.52*(iss-0.029) - 3.25*math.Pow(iss-0.02, 15)
	} else {
		impact = 6.42 * iss
	}
	exploitability := 8.22 * w(AttackVector) * w(AttackComplexity) * w(PrivilegesRequired) * w(UserInteraction)

	roundup := Roundup31
	if v.ver == V30 {
		roundup = Roundup30
	}
	var base float64
	switch {
	case impact <= 0:
		// Base stays 0. The Changed equation goes negative when there's no
		// impact, so the reported subscore is clamped as well.
		impact = 0
	case changed:
		base = roundup(math.Min(1.08*(impact+exploitability), 10))
	default:
		base = roundup(math.Min(impact+exploitability, 10))
	}
	return Scores{
		Base:           base,
		Impact:         Round1(impact),
		Exploitability: Round1(exploitability),
	}
}

// Round1 rounds "f" to one decimal place, with halves rounded away from zero.
//
// This is the rounding used by CVSS v2.0 and for displaying subscores; the
// values involved are never negative, so this is "half-up" rounding.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Roundup30 returns the smallest number, specified to one decimal place, that
// is equal to or higher than "f", as defined by CVSS v3.0.
func Roundup30(f float64) float64 {
	return math.Ceil(f*10) / 10
}

// Roundup31 is the "Roundup" function defined in Appendix A of the CVSS v3.1
// specification.
//
// The input is scaled to an integer before rounding up to one decimal place,
// so that binary floating point error (e.g. 4.000000000000001) does not bump
// the result by 0.1.
func Roundup31(f float64) float64 {
	i := int64(math.Round(f * 100_000))
	if i%10_000 == 0 {
		return float64(i) / 100_000
	}
	return (math.Floor(float64(i)/10_000) + 1) / 10
}

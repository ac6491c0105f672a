package cvss

import (
	"slices"
)

// MetricDefinition describes one base metric of a specific CVSS version.
type MetricDefinition struct {
	Metric Metric `json:"-"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	// Order is the metric's position in the canonical vector string.
	Order  int               `json:"order"`
	Values []ValueDefinition `json:"values"`
	// ScopeDependent is set for metrics whose weight depends on the value of
	// the Scope metric. See ValueDefinition.ChangedWeight.
	ScopeDependent bool `json:"scopeDependent,omitempty"`
}

// ValueDefinition describes an allowed value of a metric.
type ValueDefinition struct {
	Code   Value   `json:"code"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	// ChangedWeight is the weight used instead of Weight when the Scope metric
	// is "Changed". It's only populated for ScopeDependent metrics.
	ChangedWeight float64 `json:"changedWeight,omitempty"`
}

// Allowed returns the concatenation of the allowed value codes, in order.
func (d *MetricDefinition) Allowed() string {
	b := make([]byte, len(d.Values))
	for i, v := range d.Values {
		b[i] = byte(v.Code)
	}
	return string(b)
}

// Value reports the definition of the value "code", if it's allowed.
func (d *MetricDefinition) Value(code Value) (ValueDefinition, bool) {
	for _, v := range d.Values {
		if v.Code == code {
			return v, true
		}
	}
	return ValueDefinition{}, false
}

// Weight reports the numeric weight of "code", selecting the Changed table for
// scope-dependent metrics when "changed" is set.
func (d *MetricDefinition) weight(code Value, changed bool) float64 {
	v, ok := d.Value(code)
	if !ok {
		panic("programmer error: invalid vector constructed")
	}
	if changed && d.ScopeDependent {
		return v.ChangedWeight
	}
	return v.Weight
}

// V2 tables; the names are as the v2.0 guide has them.
var v2Catalog = []MetricDefinition{
	{Metric: AttackVector, ID: "AV", Name: "Access Vector", Values: []ValueDefinition{
		{Code: 'L', Name: "Local", Weight: 0.395},
		{Code: 'A', Name: "Adjacent Network", Weight: 0.646},
		{Code: 'N', Name: "Network", Weight: 1.0},
	}},
	{Metric: AttackComplexity, ID: "AC", Name: "Access Complexity", Values: []ValueDefinition{
		{Code: 'H', Name: "High", Weight: 0.35},
		{Code: 'M', Name: "Medium", Weight: 0.61},
		{Code: 'L', Name: "Low", Weight: 0.71},
	}},
	{Metric: Authentication, ID: "Au", Name: "Authentication", Values: []ValueDefinition{
		{Code: 'M', Name: "Multiple", Weight: 0.45},
		{Code: 'S', Name: "Single", Weight: 0.56},
		{Code: 'N', Name: "None", Weight: 0.704},
	}},
	{Metric: Confidentiality, ID: "C", Name: "Confidentiality Impact", Values: v2Impact()},
	{Metric: Integrity, ID: "I", Name: "Integrity Impact", Values: v2Impact()},
	{Metric: Availability, ID: "A", Name: "Availability Impact", Values: v2Impact()},
}

func v2Impact() []ValueDefinition {
	return []ValueDefinition{
		{Code: 'N', Name: "None", Weight: 0.0},
		{Code: 'P', Name: "Partial", Weight: 0.275},
		{Code: 'C', Name: "Complete", Weight: 0.660},
	}
}

// V3 tables, shared by v3.0 and v3.1.
var v3Catalog = []MetricDefinition{
	{Metric: AttackVector, ID: "AV", Name: "Attack Vector", Values: []ValueDefinition{
		{Code: 'N', Name: "Network", Weight: 0.85},
		{Code: 'A', Name: "Adjacent", Weight: 0.62},
		{Code: 'L', Name: "Local", Weight: 0.55},
		{Code: 'P', Name: "Physical", Weight: 0.2},
	}},
	{Metric: AttackComplexity, ID: "AC", Name: "Attack Complexity", Values: []ValueDefinition{
		{Code: 'L', Name: "Low", Weight: 0.77},
		{Code: 'H', Name: "High", Weight: 0.44},
	}},
	{Metric: PrivilegesRequired, ID: "PR", Name: "Privileges Required", ScopeDependent: true, Values: []ValueDefinition{
		{Code: 'N', Name: "None", Weight: 0.85, ChangedWeight: 0.85},
		{Code: 'L', Name: "Low", Weight: 0.62, ChangedWeight: 0.68},
		{Code: 'H', Name: "High", Weight: 0.27, ChangedWeight: 0.5},
	}},
	{Metric: UserInteraction, ID: "UI", Name: "User Interaction", Values: []ValueDefinition{
		{Code: 'N', Name: "None", Weight: 0.85},
		{Code: 'R', Name: "Required", Weight: 0.62},
	}},
	// Scope has no weight: it selects the Impact equation and the
	// Privileges Required table.
	{Metric: Scope, ID: "S", Name: "Scope", Values: []ValueDefinition{
		{Code: 'U', Name: "Unchanged"},
		{Code: 'C', Name: "Changed"},
	}},
	{Metric: Confidentiality, ID: "C", Name: "Confidentiality Impact", Values: v3Impact()},
	{Metric: Integrity, ID: "I", Name: "Integrity Impact", Values: v3Impact()},
	{Metric: Availability, ID: "A", Name: "Availability Impact", Values: v3Impact()},
}

func v3Impact() []ValueDefinition {
	return []ValueDefinition{
		{Code: 'N', Name: "None", Weight: 0.0},
		{Code: 'L', Name: "Low", Weight: 0.22},
		{Code: 'H', Name: "High", Weight: 0.56},
	}
}

func init() {
	for _, c := range [][]MetricDefinition{v2Catalog, v3Catalog} {
		for i := range c {
			c[i].Order = i
		}
	}
}

// Catalog returns the package-internal definitions for "v". The returned
// slice must not be modified.
func catalog(v Version) []MetricDefinition {
	switch v {
	case V2:
		return v2Catalog
	case V30, V31:
		return v3Catalog
	}
	return nil
}

// Definitions returns the metric definitions for the version "v", in canonical
// order.
//
// The returned slice is a copy and may be modified by the caller.
func Definitions(v Version) ([]MetricDefinition, error) {
	c := catalog(v)
	if c == nil {
		return nil, &UnsupportedVersionError{Version: v.String()}
	}
	out := make([]MetricDefinition, len(c))
	for i, d := range c {
		d.Values = slices.Clone(d.Values)
		out[i] = d
	}
	return out, nil
}

// Lookup returns the definition of the metric abbreviated "id" in version "v".
//
// Metric abbreviations are case-sensitive.
func Lookup(v Version, id string) (MetricDefinition, bool) {
	d := lookup(v, id)
	if d == nil {
		return MetricDefinition{}, false
	}
	out := *d
	out.Values = slices.Clone(d.Values)
	return out, true
}

func lookup(v Version, id string) *MetricDefinition {
	c := catalog(v)
	for i := range c {
		if c[i].ID == id {
			return &c[i]
		}
	}
	return nil
}

// Definition returns the package-internal definition for "m" in "v", or nil if
// the metric is not part of the version.
func definition(v Version, m Metric) *MetricDefinition {
	c := catalog(v)
	for i := range c {
		if c[i].Metric == m {
			return &c[i]
		}
	}
	return nil
}

// Metrics reports the metrics used by version "v", in canonical order.
func Metrics(v Version) []Metric {
	c := catalog(v)
	out := make([]Metric, len(c))
	for i := range c {
		out[i] = c[i].Metric
	}
	return out
}

package libcvss

import (
	"fmt"
	"slices"

	"github.com/quay/cvsscalc/cvss"
)

// DefaultVersion is used when neither a request nor the Options name a
// version.
const DefaultVersion = "3.1"

// Options configures a Libcvss.
type Options struct {
	// Versions is the set of CVSS versions this instance serves, as "2.0",
	// "3.0", or "3.1".
	//
	// If nil, all supported versions are served.
	Versions []string
	// DefaultVersion is the version assumed for requests that do not name
	// one. It must be one of Versions.
	//
	// If empty, DefaultVersion (the package constant) is used.
	DefaultVersion string
}

// Parse validates the Options and returns the enabled versions and the default
// version.
func (o *Options) parse() ([]cvss.Version, cvss.Version, error) {
	var vs []cvss.Version
	switch {
	case o == nil || o.Versions == nil:
		vs = []cvss.Version{cvss.V2, cvss.V30, cvss.V31}
	case len(o.Versions) == 0:
		return nil, 0, fmt.Errorf("libcvss: no versions enabled")
	default:
		for _, s := range o.Versions {
			v, err := cvss.ParseVersion(s)
			if err != nil {
				return nil, 0, fmt.Errorf("libcvss: bad version option: %w", err)
			}
			if !slices.Contains(vs, v) {
				vs = append(vs, v)
			}
		}
		slices.Sort(vs)
	}

	ds := DefaultVersion
	if o != nil && o.DefaultVersion != "" {
		ds = o.DefaultVersion
	}
	def, err := cvss.ParseVersion(ds)
	if err != nil {
		return nil, 0, fmt.Errorf("libcvss: bad default version: %w", err)
	}
	if !slices.Contains(vs, def) {
		return nil, 0, fmt.Errorf("libcvss: default version %v is not enabled", def)
	}
	return vs, def, nil
}

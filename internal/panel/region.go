package panel

import (
	"fmt"
	"strings"
)

// MaxAdminLevels is the deepest administrative hierarchy a Region can hold
// (adm0 country, adm1 province, adm2 city, adm3).
const MaxAdminLevels = 4

// Region identifies one administrative unit. Country is the tag of the
// source dataset (e.g. "CHN"); names are the administrative names from the
// coarsest level down.
//
// Region is comparable: two values are equal iff the country and every
// level match.
type Region struct {
	Country string
	names   [MaxAdminLevels]string
	depth   int
}

// NewRegion builds a Region for country from its administrative names.
func NewRegion(country string, names ...string) (Region, error) {
	if len(names) == 0 {
		return Region{}, fmt.Errorf("panel: region %q: no administrative names", country)
	}
	if len(names) > MaxAdminLevels {
		return Region{}, fmt.Errorf("panel: region %q: %d administrative levels, max %d",
			country, len(names), MaxAdminLevels)
	}
	r := Region{Country: country, depth: len(names)}
	copy(r.names[:], names)
	return r, nil
}

// MustRegion is NewRegion for literals in tests and fixtures. It panics on error.
func MustRegion(country string, names ...string) Region {
	r, err := NewRegion(country, names...)
	if err != nil {
		panic(err)
	}
	return r
}

// Names returns a copy of the administrative names, coarsest first.
func (r Region) Names() []string {
	out := make([]string, r.depth)
	copy(out, r.names[:r.depth])
	return out
}

// Depth is the number of administrative levels.
func (r Region) Depth() int { return r.depth }

// String joins the administrative names with underscores, e.g.
// "CHN_Hubei_Wuhan".
func (r Region) String() string {
	return strings.Join(r.names[:r.depth], "_")
}

// Compare orders regions by country, then level by level. A region sorts
// before any of its own sub-regions.
func (r Region) Compare(o Region) int {
	if c := strings.Compare(r.Country, o.Country); c != 0 {
		return c
	}
	n := min(r.depth, o.depth)
	for i := 0; i < n; i++ {
		if c := strings.Compare(r.names[i], o.names[i]); c != 0 {
			return c
		}
	}
	switch {
	case r.depth < o.depth:
		return -1
	case r.depth > o.depth:
		return 1
	default:
		return 0
	}
}

// Package feed builds the personalized featured-listing rows: it resolves
// each configured category against the user's region, widening to the
// region's zone and finally to every listing until enough matches exist.
package feed

import (
	"net/url"
	"strings"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/region"
)

// Predicate selects the listings that belong to a category.
type Predicate func(api.Listing) bool

// LinkBuilder derives search deep-link parameters from a representative
// listing of a resolved category.
type LinkBuilder func(sample api.Listing) url.Values

// CategoryDefinition describes one featured row.
type CategoryDefinition struct {
	Title string
	Match Predicate
	Link  LinkBuilder
}

// ResolvedCategory is a row ready for presentation. Listings is never empty.
type ResolvedCategory struct {
	Title      string        `json:"title"`
	Listings   []api.Listing `json:"listings"`
	SearchLink string        `json:"searchLink"`
	Region     string        `json:"region"`
	Probe      Probe         `json:"probe"`
}

// RegionSource records where the effective region came from.
type RegionSource string

const (
	SourceUser    RegionSource = "user"
	SourceDataset RegionSource = "dataset"
	SourceDefault RegionSource = "default"
)

// Feed is the outcome of one orchestration pass.
type Feed struct {
	Region       string             `json:"region"`
	RegionSource RegionSource       `json:"regionSource"`
	Categories   []ResolvedCategory `json:"categories"`
}

const (
	// DefaultMinCount is the smallest local result set preferred over a
	// wider probe.
	DefaultMinCount = 3
	// DefaultMaxCategories caps the rows shown on the page.
	DefaultMaxCategories = 4
	// DefaultRegion seeds resolution when neither the user nor the
	// dataset yields a region.
	DefaultRegion = "Lagos"
)

// Options tunes orchestration. The zero value uses the package defaults
// and the Nigerian zone map.
type Options struct {
	MinCount      int
	MaxCategories int
	DefaultRegion string
	Zones         *region.ZoneMap
}

// DefaultOptions returns the options the home page uses.
func DefaultOptions() Options {
	return Options{
		MinCount:      DefaultMinCount,
		MaxCategories: DefaultMaxCategories,
		DefaultRegion: DefaultRegion,
		Zones:         region.Nigeria,
	}
}

func (o Options) withDefaults() Options {
	if o.MinCount <= 0 {
		o.MinCount = DefaultMinCount
	}
	if o.MaxCategories <= 0 {
		o.MaxCategories = DefaultMaxCategories
	}
	if region.Normalize(o.DefaultRegion) == "" {
		o.DefaultRegion = DefaultRegion
	}
	if o.Zones == nil {
		o.Zones = region.Nigeria
	}
	return o
}

var eligibleStatuses = []string{"available", "under offer"}

// IsEligible reports whether a listing may be featured.
func IsEligible(l api.Listing) bool {
	status := strings.TrimSpace(l.Status)
	for _, s := range eligibleStatuses {
		if strings.EqualFold(status, s) {
			return true
		}
	}
	return false
}

// Eligible returns the listings that may be featured, in input order.
func Eligible(listings []api.Listing) []api.Listing {
	out := make([]api.Listing, 0, len(listings))
	for _, l := range listings {
		if IsEligible(l) {
			out = append(out, l)
		}
	}
	return out
}

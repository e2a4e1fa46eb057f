package feed

import (
	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/region"
)

// Probe names the resolution step that produced a category's listings.
type Probe string

const (
	ProbeRegion Probe = "region"
	ProbeHub    Probe = "hub"
	ProbeZone   Probe = "zone"
	ProbeGlobal Probe = "global"
)

type candidate struct {
	region string
	key    string
	probe  Probe
}

// candidates returns the probe order for effective: the region itself, its
// hub, then the rest of its zone, without repeats.
func candidates(zones *region.ZoneMap, effective string) []candidate {
	out := make([]candidate, 0, 8)
	seen := make(map[string]struct{}, 8)
	add := func(name string, probe Probe) {
		key := region.Key(name)
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, candidate{region: region.Normalize(name), key: key, probe: probe})
	}

	add(effective, ProbeRegion)
	if hub, ok := zones.Hub(effective); ok {
		add(hub, ProbeHub)
	}
	for _, member := range zones.Members(effective) {
		add(member, ProbeZone)
	}
	return out
}

// keyed pairs listings with their precomputed region keys so repeated
// probes do not renormalize every state string.
type keyed struct {
	listings []api.Listing
	keys     []string
}

func index(listings []api.Listing) keyed {
	keys := make([]string, len(listings))
	for i, l := range listings {
		keys[i] = region.Key(l.State)
	}
	return keyed{listings: listings, keys: keys}
}

func (k keyed) resolve(zones *region.ZoneMap, effective string, match Predicate, minCount int) ([]api.Listing, Probe) {
	if minCount <= 0 {
		minCount = 1
	}

	for _, c := range candidates(zones, effective) {
		var hits []api.Listing
		for i, l := range k.listings {
			if k.keys[i] == c.key && match(l) {
				hits = append(hits, l)
			}
		}
		if len(hits) >= minCount {
			return hits, c.probe
		}
	}

	var all []api.Listing
	for _, l := range k.listings {
		if match(l) {
			all = append(all, l)
		}
	}
	return all, ProbeGlobal
}

// Resolve finds the listings for one category. It probes the effective
// region, its hub and the other regions of its zone in that order and
// returns the first set with at least minCount matches. When no probe
// qualifies it returns every listing matching the predicate, so a category
// with any match anywhere is never empty.
func Resolve(effective string, match Predicate, all []api.Listing, minCount int) []api.Listing {
	hits, _ := ResolveWithProbe(region.Nigeria, effective, match, all, minCount)
	return hits
}

// ResolveWithProbe is Resolve against a specific zone map, also reporting
// which probe produced the result.
func ResolveWithProbe(zones *region.ZoneMap, effective string, match Predicate, all []api.Listing, minCount int) ([]api.Listing, Probe) {
	if zones == nil {
		zones = region.Nigeria
	}
	return index(all).resolve(zones, effective, match, minCount)
}

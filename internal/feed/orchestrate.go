package feed

import (
	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/region"
)

// Input is everything one orchestration pass depends on.
type Input struct {
	// RawUserRegion is the region reported by geolocation or chosen by the
	// user. It may be empty or carry suffix noise.
	RawUserRegion string
	Listings      []api.Listing
	Definitions   []CategoryDefinition
}

// EffectiveRegion picks the region that seeds resolution: the user's region
// when known, else the most common region among listings, else fallback.
// The result is never empty.
func EffectiveRegion(raw string, listings []api.Listing, fallback string) (string, RegionSource) {
	if r := region.Normalize(raw); r != "" {
		return r, SourceUser
	}

	states := make([]string, len(listings))
	for i, l := range listings {
		states[i] = l.State
	}
	if r, ok := region.MostFrequent(states); ok {
		return r, SourceDataset
	}

	if r := region.Normalize(fallback); r != "" {
		return r, SourceDefault
	}
	return DefaultRegion, SourceDefault
}

// Build runs one orchestration pass. Only eligible listings are considered;
// categories that resolve to nothing are dropped and the result is capped
// at opts.MaxCategories rows in definition order.
func Build(in Input, opts Options) Feed {
	opts = opts.withDefaults()

	eligible := Eligible(in.Listings)
	effective, source := EffectiveRegion(in.RawUserRegion, eligible, opts.DefaultRegion)

	out := Feed{
		Region:       effective,
		RegionSource: source,
		Categories:   []ResolvedCategory{},
	}
	if len(eligible) == 0 {
		return out
	}

	idx := index(eligible)
	for _, def := range in.Definitions {
		if len(out.Categories) >= opts.MaxCategories {
			break
		}
		if def.Match == nil {
			continue
		}

		hits, probe := idx.resolve(opts.Zones, effective, def.Match, opts.MinCount)
		if len(hits) == 0 {
			continue
		}

		sample := hits[0]
		sampleRegion := region.Normalize(sample.State)
		titleRegion := sampleRegion
		if probe == ProbeGlobal {
			// A country-wide row mixes states, so neither its title nor
			// its link may name the state of whichever listing came first.
			titleRegion = ""
			sample.State = ""
		}
		link := SearchLink(nil)
		if def.Link != nil {
			link = SearchLink(def.Link(sample))
		}

		out.Categories = append(out.Categories, ResolvedCategory{
			Title:      renderTitle(def.Title, titleRegion),
			Listings:   hits,
			SearchLink: link,
			Region:     sampleRegion,
			Probe:      probe,
		})
	}
	return out
}

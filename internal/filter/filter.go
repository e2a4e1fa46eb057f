// Package filter narrows listings the way the marketplace search page does:
// by property type, purchase category, region and free text.
package filter

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/region"
)

// Options holds all filter criteria.
type Options struct {
	PropertyType     string
	PurchaseCategory string
	Region           string
	Query            string
	Sort             string
	Limit            int
}

// FromQuery reads options from search deep-link parameters.
func FromQuery(q url.Values) Options {
	opts := Options{
		PropertyType:     q.Get("property_type"),
		PurchaseCategory: q.Get("purchase_category"),
		Region:           q.Get("state"),
		Query:            q.Get("q"),
		Sort:             q.Get("sort"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		opts.Limit = n
	}
	return opts
}

// Apply filters listings according to the given options.
func Apply(listings []api.Listing, opts Options) []api.Listing {
	propertyType := PropertyType(opts.PropertyType)
	purchase := Purchase(opts.PurchaseCategory)
	regionKey := ""
	if strings.TrimSpace(opts.Region) != "" {
		regionKey = region.Key(opts.Region)
	}
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	sortMode := normalizeSortMode(opts.Sort)
	applyLimitWhileFiltering := sortMode == ""

	result := make([]api.Listing, 0, len(listings))
	for _, l := range listings {
		if !propertyType.Matches(l.PropertyType) || !purchase.Matches(l.PurchaseCategory) {
			continue
		}
		if regionKey != "" && region.Key(l.State) != regionKey {
			continue
		}
		if query != "" && !matchesQuery(l, query) {
			continue
		}
		result = append(result, l)
		if applyLimitWhileFiltering && opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}

	if sortMode != "" && len(result) > 1 {
		sortListings(result, sortMode)
	}
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result
}

func matchesQuery(l api.Listing, q string) bool {
	for _, field := range []string{l.Title, l.Location, l.City} {
		if strings.Contains(strings.ToLower(CleanText(field)), q) {
			return true
		}
	}
	return false
}

// PropertyTypes returns a map of property type to count across listings.
func PropertyTypes(listings []api.Listing) map[string]int {
	types := make(map[string]int)
	for _, l := range listings {
		if t := strings.TrimSpace(l.PropertyType); t != "" {
			types[t]++
		}
	}
	return types
}

// CleanText unescapes HTML entities and normalizes whitespace.
func CleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

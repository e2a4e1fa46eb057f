package filter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/criblink/featured/internal/api"
)

// Price parses a listing price such as "₦4,500,000" or "4500000". Listings
// without a readable price report ok == false.
func Price(l api.Listing) (float64, bool) {
	raw := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.':
			return r
		default:
			return -1
		}
	}, l.Price.String())
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func normalizeSortMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "relevance":
		return ""
	case "price", "price-asc", "cheapest", "low":
		return "price-asc"
	case "price-desc", "priciest", "expensive", "high":
		return "price-desc"
	default:
		return ""
	}
}

// sortListings orders in place. Listings without a price sink to the end
// in either direction.
func sortListings(listings []api.Listing, mode string) {
	sort.SliceStable(listings, func(i, j int) bool {
		pi, iok := Price(listings[i])
		pj, jok := Price(listings[j])
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		if mode == "price-desc" {
			return pi > pj
		}
		return pi < pj
	})
}

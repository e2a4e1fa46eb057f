// Package region normalizes free-text state names and groups states into
// the geographic zones used to broaden featured-listing searches.
package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const stateSuffix = " state"

// Capital is the canonical name of the federal capital territory.
const Capital = "Abuja"

var capitalAliases = []string{
	"federal capital territory",
	"abuja federal capital territory",
}

// Normalize maps a raw state name, as typed by an agent or returned by a
// geocoder, to its canonical form. It trims whitespace, strips trailing
// " State" suffixes and collapses the capital territory spellings to
// Capital. Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for hasStateSuffix(s) {
		s = strings.TrimSpace(s[:len(s)-len(stateSuffix)])
	}

	for _, alias := range capitalAliases {
		if strings.EqualFold(s, alias) {
			return Capital
		}
	}
	return s
}

func hasStateSuffix(s string) bool {
	n := len(stateSuffix)
	return len(s) >= n && strings.EqualFold(s[len(s)-n:], stateSuffix)
}

// Key returns the comparison key of a region: normalized, case-folded and
// stripped of diacritics, so "LAGOS state" and "Lagos" share a key.
func Key(raw string) string {
	s := Normalize(raw)
	if s == "" {
		return ""
	}
	// Transformers and casers carry state; build them per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	return cases.Fold().String(s)
}

// Equal reports whether two raw region names denote the same region.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

package filter

import "strings"

// Backend listings are entered by agents, so the same property type shows
// up under several spellings. Groups must stay disjoint.
var propertyTypeSynonyms = map[string][]string{
	"duplex":       {"detached duplex", "semi detached duplex", "fully detached duplex"},
	"bungalow":     {"detached bungalow", "semi detached bungalow"},
	"apartment":    {"flat", "mini flat", "serviced apartment", "penthouse"},
	"land":         {"plot", "plot of land", "parcel of land"},
	"terrace":      {"terraced", "terraced house", "terrace house"},
	"self contain": {"self contained", "selfcon", "self con", "studio"},
}

var purchaseSynonyms = map[string][]string{
	"rent":     {"rental", "lease", "let", "to let", "for rent"},
	"sale":     {"buy", "sell", "for sale"},
	"shortlet": {"short let", "short stay"},
}

// Term matches a listing attribute against a wanted value and its synonyms.
// The zero Term matches everything.
type Term struct {
	exactAliases []string
	normalized   map[string]struct{}
}

// PropertyType builds a Term for a property_type value.
func PropertyType(wanted string) Term {
	return newTerm(wanted, propertyTypeSynonyms)
}

// Purchase builds a Term for a purchase_category value.
func Purchase(wanted string) Term {
	return newTerm(wanted, purchaseSynonyms)
}

func newTerm(wanted string, synonyms map[string][]string) Term {
	aliases := aliasList(wanted, synonyms)
	if len(aliases) == 0 {
		return Term{}
	}

	normalized := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		normalized[normalizeTerm(alias)] = struct{}{}
	}
	return Term{exactAliases: aliases, normalized: normalized}
}

// IsZero reports whether the term places no constraint.
func (t Term) IsZero() bool { return len(t.exactAliases) == 0 }

// Matches reports whether value is the wanted term or one of its synonyms.
func (t Term) Matches(value string) bool {
	if t.IsZero() {
		return true
	}
	trimmed := strings.TrimSpace(value)
	for _, alias := range t.exactAliases {
		if strings.EqualFold(trimmed, alias) {
			return true
		}
	}

	// Without separators or a plural ending, normalization only lowercases,
	// which the EqualFold pass above already covered.
	if !strings.ContainsAny(trimmed, "-_ ") && !strings.HasSuffix(trimmed, "s") && !strings.HasSuffix(trimmed, "S") {
		return false
	}

	_, ok := t.normalized[normalizeTerm(trimmed)]
	return ok
}

func aliasList(wanted string, synonyms map[string][]string) []string {
	raw := strings.TrimSpace(wanted)
	group := resolveGroup(wanted, synonyms)
	if raw == "" && group == "" {
		return nil
	}

	out := make([]string, 0, 2+len(synonyms[group]))
	addAlias := func(alias string) {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			return
		}
		for _, existing := range out {
			if strings.EqualFold(existing, alias) {
				return
			}
		}
		out = append(out, alias)
	}

	addAlias(raw)
	addAlias(group)
	for _, s := range synonyms[group] {
		addAlias(s)
	}
	return out
}

func resolveGroup(wanted string, synonyms map[string][]string) string {
	norm := normalizeTerm(wanted)
	if norm == "" {
		return ""
	}

	if _, ok := synonyms[norm]; ok {
		return norm
	}
	for key, list := range synonyms {
		for _, s := range list {
			if normalizeTerm(s) == norm {
				return key
			}
		}
	}
	return norm
}

func normalizeTerm(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.Join(strings.Fields(s), " ")
	switch {
	case len(s) > 4 && strings.HasSuffix(s, "xes"):
		s = strings.TrimSuffix(s, "es")
	case len(s) > 4 && strings.HasSuffix(s, "ies"):
		s = strings.TrimSuffix(s, "ies") + "y"
	case len(s) > 3 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		s = strings.TrimSuffix(s, "s")
	}
	return s
}

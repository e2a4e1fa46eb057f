package filter_test

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/filter"
	"github.com/criblink/featured/internal/region"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// referenceApply is the straightforward multi-pass version of Apply.
func referenceApply(listings []api.Listing, opts filter.Options) []api.Listing {
	result := append([]api.Listing(nil), listings...)

	if opts.PropertyType != "" {
		term := filter.PropertyType(opts.PropertyType)
		result = referenceWhere(result, func(l api.Listing) bool { return term.Matches(l.PropertyType) })
	}
	if opts.PurchaseCategory != "" {
		term := filter.Purchase(opts.PurchaseCategory)
		result = referenceWhere(result, func(l api.Listing) bool { return term.Matches(l.PurchaseCategory) })
	}
	if opts.Region != "" {
		result = referenceWhere(result, func(l api.Listing) bool { return region.Equal(l.State, opts.Region) })
	}
	if opts.Query != "" {
		q := strings.ToLower(opts.Query)
		result = referenceWhere(result, func(l api.Listing) bool {
			return strings.Contains(strings.ToLower(filter.CleanText(l.Title)), q) ||
				strings.Contains(strings.ToLower(filter.CleanText(l.Location)), q) ||
				strings.Contains(strings.ToLower(filter.CleanText(l.City)), q)
		})
	}

	if opts.Sort != "" {
		desc := opts.Sort == "price-desc"
		var priced, unpriced []api.Listing
		for _, l := range result {
			if _, ok := filter.Price(l); ok {
				priced = append(priced, l)
			} else {
				unpriced = append(unpriced, l)
			}
		}
		sort.SliceStable(priced, func(i, j int) bool {
			pi, _ := filter.Price(priced[i])
			pj, _ := filter.Price(priced[j])
			if desc {
				return pi > pj
			}
			return pi < pj
		})
		result = append(priced, unpriced...)
	}

	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result
}

func referenceWhere(listings []api.Listing, fn func(api.Listing) bool) []api.Listing {
	var result []api.Listing
	for _, l := range listings {
		if fn(l) {
			result = append(result, l)
		}
	}
	return result
}

func randomListing(rng *rand.Rand, idx int) api.Listing {
	types := []string{"Duplex", "duplexes", "Flat", "Apartment", "Land", "plot", "Bungalow", "Self-Contain", ""}
	purchases := []string{"Rent", "Sale", "lease", "buy", ""}
	states := []string{"Lagos", "Lagos State", "Ogun", "Kano", "Federal Capital Territory", ""}
	titles := []string{"Fresh listing", "Luxury home", "Cosy flat", ""}

	price := ""
	if rng.Intn(4) != 0 {
		price = fmt.Sprintf("%d", 100000*(1+rng.Intn(90)))
	}
	return api.Listing{
		PropertyID:       api.FlexString(fmt.Sprintf("id-%d", idx)),
		Title:            titles[rng.Intn(len(titles))],
		PropertyType:     types[rng.Intn(len(types))],
		PurchaseCategory: purchases[rng.Intn(len(purchases))],
		State:            states[rng.Intn(len(states))],
		Price:            api.FlexString(price),
	}
}

func randomOptions(rng *rand.Rand) filter.Options {
	types := []string{"", "duplex", "apartment", "land"}
	purchases := []string{"", "rent", "sale"}
	regions := []string{"", "lagos", "Abuja"}
	queries := []string{"", "fresh", "flat"}
	sorts := []string{"", "price-asc", "price-desc"}
	limits := []int{0, 1, 3, 5, 10}
	return filter.Options{
		PropertyType:     types[rng.Intn(len(types))],
		PurchaseCategory: purchases[rng.Intn(len(purchases))],
		Region:           regions[rng.Intn(len(regions))],
		Query:            queries[rng.Intn(len(queries))],
		Sort:             sorts[rng.Intn(len(sorts))],
		Limit:            limits[rng.Intn(len(limits))],
	}
}

func TestApply_ReferenceEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for caseNum := 0; caseNum < 500; caseNum++ {
		count := rng.Intn(60)
		listings := make([]api.Listing, 0, count)
		for i := range count {
			listings = append(listings, randomListing(rng, i))
		}

		opts := randomOptions(rng)
		got := filter.Apply(listings, opts)
		want := referenceApply(listings, opts)

		if diff := cmp.Diff(ids(want), ids(got)); diff != "" {
			t.Fatalf("mismatch for opts=%+v case=%d (-want +got):\n%s", opts, caseNum, diff)
		}
	}
}

func benchmarkListings() []api.Listing {
	rng := rand.New(rand.NewSource(7))
	listings := make([]api.Listing, 0, 1000)
	for i := 0; i < 1000; i++ {
		listings = append(listings, randomListing(rng, i))
	}
	return listings
}

var benchOptions = filter.Options{
	PropertyType:     "duplex",
	PurchaseCategory: "rent",
	Region:           "lagos",
	Query:            "listing",
	Limit:            50,
}

func BenchmarkApply_1kListings(b *testing.B) {
	listings := benchmarkListings()

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		_ = filter.Apply(listings, benchOptions)
	}
}

func BenchmarkApply_Reference_1kListings(b *testing.B) {
	listings := benchmarkListings()

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		_ = referenceApply(listings, benchOptions)
	}
}

func TestApply_AllocatesNoMoreThanReference(t *testing.T) {
	listings := benchmarkListings()

	single := testing.AllocsPerRun(50, func() {
		_ = filter.Apply(listings, benchOptions)
	})
	multi := testing.AllocsPerRun(50, func() {
		_ = referenceApply(listings, benchOptions)
	})

	// Guardrail against reintroducing intermediate slices per criterion.
	assert.LessOrEqual(t, single, multi)
}

package filter_test

import (
	"net/url"
	"testing"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/filter"
	"github.com/stretchr/testify/assert"
)

func sampleListings() []api.Listing {
	return []api.Listing{
		{PropertyID: "1", Title: "4 Bed Duplex, Lekki", PropertyType: "Semi-Detached Duplex", PurchaseCategory: "Rent", State: "Lagos State", Price: "₦6,000,000"},
		{PropertyID: "2", Title: "Cosy Studio", PropertyType: "Self Contained", PurchaseCategory: "to let", State: "Oyo", City: "Ibadan", Price: "350000"},
		{PropertyID: "3", Title: "Plot at Epe", PropertyType: "plot_of_land", PurchaseCategory: "Sale", State: "lagos", Price: "12000000"},
		{PropertyID: "4", Title: "Bungalow &amp; BQ", PropertyType: "Bungalow", PurchaseCategory: "Sale", State: "Ogun", Price: ""},
		{PropertyID: "5", Title: "Duplexes in Wuse", PropertyType: "Duplexes", PurchaseCategory: "Rent", State: "Federal Capital Territory", Price: "9,500,000"},
	}
}

func ids(listings []api.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.PropertyID.String())
	}
	return out
}

func TestApply_NoFilters(t *testing.T) {
	assert.Len(t, filter.Apply(sampleListings(), filter.Options{}), 5)
}

func TestApply_PropertyTypeSynonyms(t *testing.T) {
	assert.Equal(t, []string{"1", "5"}, ids(filter.Apply(sampleListings(), filter.Options{PropertyType: "duplex"})))
	assert.Equal(t, []string{"3"}, ids(filter.Apply(sampleListings(), filter.Options{PropertyType: "Land"})))
	assert.Equal(t, []string{"2"}, ids(filter.Apply(sampleListings(), filter.Options{PropertyType: "self-contain"})))
}

func TestApply_PurchaseSynonyms(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "5"}, ids(filter.Apply(sampleListings(), filter.Options{PurchaseCategory: "RENT"})))
	assert.Equal(t, []string{"3", "4"}, ids(filter.Apply(sampleListings(), filter.Options{PurchaseCategory: "buy"})))
}

func TestApply_RegionComparesNormalized(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ids(filter.Apply(sampleListings(), filter.Options{Region: "LAGOS"})))
	assert.Equal(t, []string{"5"}, ids(filter.Apply(sampleListings(), filter.Options{Region: "Abuja"})))
}

func TestApply_QueryMatchesTitleAndCity(t *testing.T) {
	assert.Equal(t, []string{"2"}, ids(filter.Apply(sampleListings(), filter.Options{Query: "ibadan"})))
	assert.Equal(t, []string{"4"}, ids(filter.Apply(sampleListings(), filter.Options{Query: "& bq"})))
}

func TestApply_Limit(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, ids(filter.Apply(sampleListings(), filter.Options{Limit: 2})))
}

func TestApply_SortByPrice(t *testing.T) {
	asc := filter.Apply(sampleListings(), filter.Options{Sort: "cheapest"})
	assert.Equal(t, []string{"2", "1", "5", "3", "4"}, ids(asc))

	desc := filter.Apply(sampleListings(), filter.Options{Sort: "price-desc", Limit: 2})
	assert.Equal(t, []string{"3", "5"}, ids(desc))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := sampleListings()
	_ = filter.Apply(in, filter.Options{Sort: "price"})
	assert.Equal(t, sampleListings(), in)
}

func TestFromQuery(t *testing.T) {
	q, err := url.ParseQuery("property_type=Duplex&purchase_category=Rent&state=Lagos&status=featured&limit=3&sort=price")
	assert.NoError(t, err)

	assert.Equal(t, filter.Options{
		PropertyType:     "Duplex",
		PurchaseCategory: "Rent",
		Region:           "Lagos",
		Sort:             "price",
		Limit:            3,
	}, filter.FromQuery(q))

	assert.Zero(t, filter.FromQuery(url.Values{"limit": {"-2"}}).Limit)
}

func TestTerm(t *testing.T) {
	assert.True(t, filter.PropertyType("").Matches("anything"))
	assert.True(t, filter.PropertyType("").IsZero())

	flat := filter.PropertyType("Flat")
	assert.True(t, flat.Matches("Apartment"))
	assert.True(t, flat.Matches("mini-flat"))
	assert.False(t, flat.Matches("Bungalow"))

	custom := filter.PropertyType("Warehouse")
	assert.True(t, custom.Matches("warehouses"))
	assert.False(t, custom.Matches("Duplex"))
}

func TestPrice(t *testing.T) {
	v, ok := filter.Price(api.Listing{Price: "₦4,500,000"})
	assert.True(t, ok)
	assert.Equal(t, 4500000.0, v)

	_, ok = filter.Price(api.Listing{Price: "Contact agent"})
	assert.False(t, ok)
}

func TestPropertyTypes(t *testing.T) {
	counts := filter.PropertyTypes(append(sampleListings(), api.Listing{PropertyType: "Bungalow"}, api.Listing{}))
	assert.Equal(t, 2, counts["Bungalow"])
	assert.Equal(t, 1, counts["Duplexes"])
	assert.NotContains(t, counts, "")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Duplex & BQ, Lekki", filter.CleanText("  Duplex &amp; BQ,\r\nLekki "))
}

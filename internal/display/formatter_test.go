package display_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/display"
	"github.com/criblink/featured/internal/feed"
	"github.com/criblink/featured/internal/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleListings() []api.Listing {
	return []api.Listing{
		{PropertyID: "11", Title: "4 Bed Duplex &amp; BQ", PropertyType: "Duplex", PurchaseCategory: "Rent", State: "Lagos State", City: "Lekki", Status: "available", Price: "6000000", Bedrooms: 4, Bathrooms: 5},
		{PropertyID: "12", PropertyType: "Duplex", PurchaseCategory: "Rent", State: "Lagos", Status: "under offer", Price: "Contact agent"},
		{PropertyID: "13", Title: "Ikoyi Terrace", PropertyType: "Duplex", PurchaseCategory: "Rent", State: "Lagos", Status: "available", Price: "9500000"},
		{PropertyID: "14", Title: "Ajah Duplex", PropertyType: "Duplex", PurchaseCategory: "Rent", State: "Lagos", Status: "available"},
	}
}

func sampleFeed() feed.Feed {
	return feed.Feed{
		Region:       "Lagos",
		RegionSource: feed.SourceUser,
		Categories: []feed.ResolvedCategory{{
			Title:      "Duplexes for Rent in Lagos",
			Listings:   sampleListings(),
			SearchLink: "/search?property_type=Duplex&purchase_category=Rent&state=Lagos&status=featured",
			Region:     "Lagos",
			Probe:      feed.ProbeRegion,
		}},
	}
}

func TestPrintFeed_ContainsExpectedContent(t *testing.T) {
	var buf bytes.Buffer
	display.PrintFeed(&buf, sampleFeed())
	output := buf.String()

	assert.Contains(t, output, "Featured in Lagos")
	assert.Contains(t, output, "1 categories")
	assert.Contains(t, output, "Duplexes for Rent in Lagos")
	assert.Contains(t, output, "/search?property_type=Duplex")
	assert.Contains(t, output, "₦6,000,000")
	// HTML entities are unescaped
	assert.Contains(t, output, "4 Bed Duplex & BQ")
	assert.NotContains(t, output, "&amp;")
	// only the first window of cards is drawn
	assert.NotContains(t, output, "Ajah Duplex")
	assert.Contains(t, output, "+1 more")
}

func TestPrintFeed_FallbackTitleAndPrice(t *testing.T) {
	var buf bytes.Buffer
	display.PrintFeed(&buf, sampleFeed())
	output := buf.String()

	assert.Contains(t, output, "Duplex for Rent")
	assert.Contains(t, output, "Contact agent")
}

func TestPrintExplain(t *testing.T) {
	var buf bytes.Buffer
	display.PrintExplain(&buf, sampleFeed())
	output := buf.String()

	assert.Contains(t, output, "region Lagos (from user)")
	assert.Contains(t, output, "region")
	assert.Contains(t, output, "4 listings, sample region Lagos")
}

func TestPrintFeedJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, display.PrintFeedJSON(&buf, sampleFeed()))
	assert.NotContains(t, buf.String(), "\n  ")

	var out display.FeedJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "Lagos", out.Region)
	assert.Equal(t, feed.SourceUser, out.RegionSource)
	require.Len(t, out.Categories, 1)
	c := out.Categories[0]
	assert.Equal(t, "Duplexes for Rent in Lagos", c.Title)
	assert.Equal(t, 4, c.Count)
	assert.Equal(t, feed.ProbeRegion, c.Probe)
	require.Len(t, c.Listings, 4)
	assert.Equal(t, "11", c.Listings[0].PropertyID)
	assert.Equal(t, "Lagos", c.Listings[0].Region)
	assert.Equal(t, "4 Bed Duplex & BQ", c.Listings[0].Title)
}

func TestPrintFeedJSON_EmptyFeed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, display.PrintFeedJSON(&buf, feed.Feed{Region: "Lagos"}))
	assert.Contains(t, buf.String(), `"categories":[]`)
}

func TestPrintListings(t *testing.T) {
	var buf bytes.Buffer
	display.PrintListings(&buf, sampleListings()[:1], "Search results")
	output := buf.String()

	assert.Contains(t, output, "Search results")
	assert.Contains(t, output, "1 listings")
	assert.Contains(t, output, "Lekki, Lagos")
	assert.Contains(t, output, "4 bd · 5 ba · Duplex")
}

func TestPrintListingsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, display.PrintListingsJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrintZones(t *testing.T) {
	var buf bytes.Buffer
	display.PrintZones(&buf, region.Nigeria.Zones())
	output := buf.String()

	assert.Contains(t, output, "south_west")
	assert.Contains(t, output, "hub Lagos")
	assert.Contains(t, output, "Kano, Kaduna")
}

func TestPrintZonesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, display.PrintZonesJSON(&buf, region.Nigeria.Zones()))

	var out []display.ZoneJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 6)

	total := 0
	for _, z := range out {
		assert.Equal(t, z.Regions[0], z.Hub)
		total += len(z.Regions)
	}
	assert.Equal(t, 37, total)
}

func TestNewRegionReport_Ordering(t *testing.T) {
	report := display.NewRegionReport(map[string]int{"Kano": 2, "Lagos": 5, "Abia": 2, "Atlantis": 1}, nil, "Lagos", feed.SourceDataset)

	require.Len(t, report.Counts, 4)
	assert.Equal(t, 10, report.Total)
	assert.Equal(t, "Lagos", report.Counts[0].Region)
	assert.Equal(t, "south_west", report.Counts[0].Zone)
	assert.Equal(t, "Abia", report.Counts[1].Region)
	assert.Equal(t, "Kano", report.Counts[2].Region)
	assert.Empty(t, report.Counts[3].Zone)
}

func TestPrintRegions(t *testing.T) {
	report := display.NewRegionReport(map[string]int{"Lagos": 3}, nil, "Lagos", feed.SourceDataset)

	var buf bytes.Buffer
	display.PrintRegions(&buf, report)
	output := buf.String()

	assert.Contains(t, output, "3 eligible listings")
	assert.Contains(t, output, "Lagos: 3 listings")
	assert.Contains(t, output, "Effective region: Lagos (from dataset)")
}

func TestPrintRegionsJSON_EmptyCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, display.PrintRegionsJSON(&buf, display.RegionReport{Effective: "Lagos", Source: feed.SourceDefault}))

	assert.Contains(t, buf.String(), `"counts":[]`)
	assert.Contains(t, buf.String(), `"regionSource":"default"`)
}

func TestPrintLocation(t *testing.T) {
	var buf bytes.Buffer
	display.PrintLocation(&buf, display.LocationJSON{Lat: 6.5, Lon: 3.4, Region: "Lagos State", Normalized: "Lagos", Zone: "south_west"})
	assert.Contains(t, buf.String(), "Lagos")
	assert.Contains(t, buf.String(), "south_west")

	buf.Reset()
	display.PrintLocation(&buf, display.LocationJSON{Lat: 1, Lon: 2})
	assert.Contains(t, buf.String(), "No region found")
}

func TestCard_TruncatesLongTitles(t *testing.T) {
	card := display.Card(api.Listing{Title: strings.Repeat("Spacious ", 10), Price: "1"}, false)
	assert.Contains(t, card, "…")
	for _, line := range strings.Split(card, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), display.CardWidth)
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/criblink/featured/internal/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"property_id": 1, "title": "4 Bed Duplex", "property_type": "Duplex", "purchase_category": "Rent", "state": "Lagos State", "city": "Lekki", "status": "available", "price": "4500000"},
	{"property_id": 2, "property_type": "Duplex", "purchase_category": "Rent", "state": "Lagos", "status": "available", "price": 3000000},
	{"property_id": 3, "property_type": "Duplex", "purchase_category": "Rent", "state": "Lagos", "status": "under offer", "price": 5000000},
	{"property_id": 4, "property_type": "Duplex", "purchase_category": "Rent", "state": "Lagos", "status": "sold"},
	{"property_id": 5, "property_type": "Land", "purchase_category": "Sale", "state": "Ogun", "status": "available", "price": 900000},
	{"property_id": 6, "property_type": "Bungalow", "purchase_category": "Sale", "state": "Kano", "status": "available"}
]`

// isolateEnv keeps developer settings from leaking into command runs.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CRIBLINK_API_URL", "CRIBLINK_MIN_COUNT", "CRIBLINK_MAX_CATEGORIES",
		"CRIBLINK_DEFAULT_REGION", "CRIBLINK_GEO_TIMEOUT", "CRIBLINK_REDIS_URL", "CRIBLINK_DEFINITIONS",
	} {
		t.Setenv(key, "")
	}
}

func newCatalogServer(t *testing.T, listings string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/listings":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(listings))
		case "/utils/reverse-geocode":
			_, _ = w.Write([]byte(`{"display_name": "Kano", "address": {"state": "Kano State"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	isolateEnv(t)
	var stdout, stderr bytes.Buffer
	code := runCLI(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunCLI_CompletionZsh(t *testing.T) {
	code, stdout, stderr := execCLI(t, "completion", "zsh")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "#compdef criblink")
	assert.Empty(t, stderr)
}

func TestRunCLI_HelpZones(t *testing.T) {
	code, stdout, stderr := execCLI(t, "help", "zones")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "criblink zones [flags]")
	assert.Empty(t, stderr)
}

func TestRunCLI_TolerantRewriteWithoutNetworkCall(t *testing.T) {
	code, stdout, stderr := execCLI(t, "regions", "-region", "Lagos", "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "criblink regions [flags]")
	assert.Contains(t, stderr, "interpreted `-region` as `--region`")
}

func TestRunCLI_DoubleDashBoundary(t *testing.T) {
	code, stdout, stderr := execCLI(t, "regions", "--", "region", "Lagos", "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "criblink regions [flags]")
	assert.False(t, strings.Contains(stderr, "interpreted `region` as `--region`"))
}

func TestRunCLI_ZonesJSON(t *testing.T) {
	code, stdout, _ := execCLI(t, "zones")

	require.Equal(t, 0, code)
	var zones []display.ZoneJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &zones))
	require.Len(t, zones, 6)
	assert.Equal(t, "south_west", zones[0].ID)
	assert.Equal(t, "Lagos", zones[0].Hub)
}

func TestRunCLI_FeedJSON(t *testing.T) {
	srv := newCatalogServer(t, catalogJSON)

	code, stdout, stderr := execCLI(t, "--api", srv.URL, "--region", "Lagos State")

	require.Equal(t, 0, code, stderr)
	var out display.FeedJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "Lagos", out.Region)
	assert.Equal(t, "user", string(out.RegionSource))
	require.NotEmpty(t, out.Categories)

	first := out.Categories[0]
	assert.Equal(t, "Duplexes for Rent in Lagos", first.Title)
	assert.Equal(t, "region", string(first.Probe))
	assert.Equal(t, 3, first.Count)
	assert.Contains(t, first.SearchLink, "property_type=Duplex")
	assert.LessOrEqual(t, len(out.Categories), 4)
}

func TestRunCLI_FeedGeolocatesFromCoordinates(t *testing.T) {
	srv := newCatalogServer(t, catalogJSON)

	code, stdout, stderr := execCLI(t, "--api", srv.URL, "--lat", "12.0", "--lon", "8.5")

	require.Equal(t, 0, code, stderr)
	var out display.FeedJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "Kano", out.Region)
	assert.Equal(t, "user", string(out.RegionSource))
}

func TestRunCLI_FeedFallsBackToDatasetRegion(t *testing.T) {
	srv := newCatalogServer(t, catalogJSON)

	code, stdout, stderr := execCLI(t, "--api", srv.URL, "--max-categories", "1")

	require.Equal(t, 0, code, stderr)
	var out display.FeedJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "Lagos", out.Region)
	assert.Equal(t, "dataset", string(out.RegionSource))
	assert.Len(t, out.Categories, 1)
}

func TestRunCLI_FeedWithoutListingsIsNotFound(t *testing.T) {
	srv := newCatalogServer(t, `[]`)

	code, _, stderr := execCLI(t, "--api", srv.URL, "--region", "Lagos")

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, "NOT_FOUND")
}

func TestRunCLI_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	code, _, stderr := execCLI(t, "--api", srv.URL, "--region", "Lagos")

	assert.Equal(t, ExitUpstream, code)
	assert.Contains(t, stderr, "UPSTREAM_ERROR")
	assert.Contains(t, stderr, "502")
}

func TestRunCLI_MissingEndpointIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	code, _, stderr := execCLI(t, "--api", srv.URL, "--region", "Lagos")

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr, `"code":"NOT_FOUND"`)
	assert.Contains(t, stderr, "unexpected status 404")
	assert.NotContains(t, stderr, "UPSTREAM_ERROR")
}

func TestRunCLI_UnknownCommandIsInvalidArgs(t *testing.T) {
	code, stdout, stderr := execCLI(t, "listings")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `"code":"INVALID_ARGS"`)
	assert.Contains(t, stderr, `unknown command \"listings\" for \"criblink\"`)
}

func TestRunCLI_UnknownFlagIsInvalidArgs(t *testing.T) {
	code, _, stderr := execCLI(t, "zones", "--regionxyz", "Lagos")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, `"code":"INVALID_ARGS"`)
	assert.Contains(t, stderr, "unknown flag: --regionxyz")
}

func TestRunCLI_LatWithoutLon(t *testing.T) {
	code, stdout, stderr := execCLI(t, "--lat", "6.5")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "--lat and --lon must be given together")
}

func TestRunCLI_InvalidMinCount(t *testing.T) {
	code, _, stderr := execCLI(t, "--min-count", "0")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--min-count must be at least 1")
}

func TestRunCLI_Locate(t *testing.T) {
	srv := newCatalogServer(t, catalogJSON)

	code, stdout, stderr := execCLI(t, "locate", "--api", srv.URL, "--lat", "12.0", "--lon", "8.5")

	require.Equal(t, 0, code, stderr)
	var loc display.LocationJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &loc))
	assert.Equal(t, "Kano State", loc.Region)
	assert.Equal(t, "Kano", loc.Normalized)
	assert.Equal(t, "north_west", loc.Zone)
}

func TestRunCLI_LocateRequiresCoordinates(t *testing.T) {
	code, _, stderr := execCLI(t, "locate")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--lat and --lon are required")
}

func TestRunCLI_Regions(t *testing.T) {
	srv := newCatalogServer(t, catalogJSON)

	code, stdout, stderr := execCLI(t, "regions", "--api", srv.URL)

	require.Equal(t, 0, code, stderr)
	var report display.RegionReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, "Lagos", report.Effective)
	require.NotEmpty(t, report.Counts)
	assert.Equal(t, "Lagos", report.Counts[0].Region)
	assert.Equal(t, 3, report.Counts[0].Count)
}

func TestRunCLI_Search(t *testing.T) {
	srv := newCatalogServer(t, catalogJSON)

	code, stdout, stderr := execCLI(t, "search", "--api", srv.URL, "--type", "duplex", "--purchase", "rent", "--sort", "price")

	require.Equal(t, 0, code, stderr)
	var listings []display.ListingJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &listings))
	require.Len(t, listings, 3)
	assert.Equal(t, "2", listings[0].PropertyID)
	assert.Equal(t, "3", listings[2].PropertyID)
}

func TestRunCLI_SearchFromLink(t *testing.T) {
	srv := newCatalogServer(t, catalogJSON)

	code, stdout, stderr := execCLI(t, "search", "--api", srv.URL, "--link", "/search?property_type=Land&purchase_category=Sale&state=Ogun")

	require.Equal(t, 0, code, stderr)
	var listings []display.ListingJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "5", listings[0].PropertyID)
}

func TestRunCLI_SearchInvalidSort(t *testing.T) {
	code, _, stderr := execCLI(t, "search", "--sort", "newest")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "invalid value for --sort")
}

func TestRunCLI_CarouselNeedsTerminal(t *testing.T) {
	var stdout, stderr bytes.Buffer
	isolateEnv(t)

	// Explicit text output on a non-terminal writer.
	rootCmd.SetIn(strings.NewReader(""))
	t.Cleanup(func() { rootCmd.SetIn(nil) })
	code := runCLI([]string{"carousel", "--json=false", "--interval", "2s"}, &stdout, &stderr)

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr.String(), "requires an interactive terminal")
}

func TestRunCLI_CarouselJSON(t *testing.T) {
	srv := newCatalogServer(t, catalogJSON)

	code, stdout, stderr := execCLI(t, "carousel", "--api", srv.URL, "--region", "Ogun")

	require.Equal(t, 0, code, stderr)
	var out display.FeedJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "Ogun", out.Region)
}

func TestRunCLI_CarouselRejectsNegativeInterval(t *testing.T) {
	code, _, stderr := execCLI(t, "carousel", "--interval", "-1s")

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "--interval cannot be negative")
}

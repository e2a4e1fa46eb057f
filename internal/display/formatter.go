package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/feed"
	"github.com/criblink/featured/internal/filter"
	"github.com/criblink/featured/internal/region"
)

// DefaultWindow is how many cards a row shows at once.
const DefaultWindow = 3

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	probeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// ListingJSON is the JSON output shape for a listing.
type ListingJSON struct {
	PropertyID       string `json:"propertyId"`
	Title            string `json:"title"`
	PropertyType     string `json:"propertyType"`
	PurchaseCategory string `json:"purchaseCategory"`
	Region           string `json:"region"`
	City             string `json:"city,omitempty"`
	Location         string `json:"location,omitempty"`
	Status           string `json:"status"`
	Price            string `json:"price"`
	Bedrooms         int    `json:"bedrooms,omitempty"`
	Bathrooms        int    `json:"bathrooms,omitempty"`
	ImageURL         string `json:"imageUrl,omitempty"`
}

// CategoryJSON is the JSON output shape for a featured row.
type CategoryJSON struct {
	Title      string        `json:"title"`
	SearchLink string        `json:"searchLink"`
	Region     string        `json:"region"`
	Probe      feed.Probe    `json:"probe"`
	Count      int           `json:"count"`
	Listings   []ListingJSON `json:"listings"`
}

// FeedJSON is the JSON output shape for the featured feed.
type FeedJSON struct {
	Region       string            `json:"region"`
	RegionSource feed.RegionSource `json:"regionSource"`
	Categories   []CategoryJSON    `json:"categories"`
}

// ZoneJSON is the JSON output shape for a zone.
type ZoneJSON struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Hub     string   `json:"hub"`
	Regions []string `json:"regions"`
}

// RegionCount is one line of the region report.
type RegionCount struct {
	Region string `json:"region"`
	Zone   string `json:"zone,omitempty"`
	Count  int    `json:"count"`
}

// RegionReport summarizes where eligible listings are and which region the
// feed would use.
type RegionReport struct {
	Effective string            `json:"effectiveRegion"`
	Source    feed.RegionSource `json:"regionSource"`
	Total     int               `json:"total"`
	Counts    []RegionCount     `json:"counts"`
}

// LocationJSON is the JSON output shape for a geolocation lookup.
type LocationJSON struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Region     string  `json:"region"`
	Normalized string  `json:"normalized"`
	Zone       string  `json:"zone,omitempty"`
}

// NewRegionReport orders counts by size, then name.
func NewRegionReport(counts map[string]int, zones *region.ZoneMap, effective string, source feed.RegionSource) RegionReport {
	if zones == nil {
		zones = region.Nigeria
	}
	report := RegionReport{Effective: effective, Source: source, Counts: make([]RegionCount, 0, len(counts))}
	for name, n := range counts {
		rc := RegionCount{Region: name, Count: n}
		if z, ok := zones.ZoneOf(name); ok {
			rc.Zone = z.ID
		}
		report.Counts = append(report.Counts, rc)
		report.Total += n
	}
	sort.Slice(report.Counts, func(i, j int) bool {
		if report.Counts[i].Count != report.Counts[j].Count {
			return report.Counts[i].Count > report.Counts[j].Count
		}
		return report.Counts[i].Region < report.Counts[j].Region
	})
	return report
}

// PrintFeed renders each featured row with a window of listing cards.
func PrintFeed(w io.Writer, f feed.Feed) {
	fmt.Fprintf(w, "\n%s — %s\n\n",
		headerStyle.Render("Featured in "+f.Region),
		cyanStyle.Render(fmt.Sprintf("%d categories", len(f.Categories))),
	)

	for _, c := range f.Categories {
		fmt.Fprintf(w, "  %s %s\n", titleStyle.Render(c.Title), dimStyle.Render(fmt.Sprintf("(%d)", len(c.Listings))))
		fmt.Fprintf(w, "  %s\n", cyanStyle.Render(c.SearchLink))
		fmt.Fprintln(w, indent(Row(c.Listings, 0, DefaultWindow, -1), "  "))
		if more := len(c.Listings) - DefaultWindow; more > 0 {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render(fmt.Sprintf("+%d more", more)))
		}
		fmt.Fprintln(w)
	}
}

// PrintExplain describes how the region and each row were resolved.
func PrintExplain(w io.Writer, f feed.Feed) {
	fmt.Fprintf(w, "%s\n", dimStyle.Render(fmt.Sprintf("region %s (from %s)", f.Region, f.RegionSource)))
	for _, c := range f.Categories {
		fmt.Fprintf(w, "  %s %s %s\n",
			probeStyle.Render(fmt.Sprintf("%-6s", c.Probe)),
			c.Title,
			dimStyle.Render(fmt.Sprintf("%d listings, sample region %s", len(c.Listings), c.Region)),
		)
	}
	fmt.Fprintln(w)
}

// PrintFeedJSON renders the feed as JSON.
func PrintFeedJSON(w io.Writer, f feed.Feed) error {
	out := FeedJSON{
		Region:       f.Region,
		RegionSource: f.RegionSource,
		Categories:   make([]CategoryJSON, 0, len(f.Categories)),
	}
	for _, c := range f.Categories {
		out.Categories = append(out.Categories, CategoryJSON{
			Title:      c.Title,
			SearchLink: c.SearchLink,
			Region:     c.Region,
			Probe:      c.Probe,
			Count:      len(c.Listings),
			Listings:   toListingsJSON(c.Listings),
		})
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintListings renders search results as a plain list.
func PrintListings(w io.Writer, listings []api.Listing, heading string) {
	fmt.Fprintf(w, "\n%s — %s\n\n",
		headerStyle.Render(heading),
		cyanStyle.Render(fmt.Sprintf("%d listings", len(listings))),
	)
	for _, l := range listings {
		title := filter.CleanText(l.Title)
		if title == "" {
			title = listingFallbackTitle(l)
		}
		fmt.Fprintf(w, "  %s  %s\n", titleStyle.Render(title), priceStyle.Render(FormatPrice(l)))
		var meta []string
		if place := listingPlace(l); place != "" {
			meta = append(meta, place)
		}
		if facts := listingFacts(l); facts != "" {
			meta = append(meta, facts)
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "    %s\n", dimStyle.Render(strings.Join(meta, " | ")))
		}
	}
	fmt.Fprintln(w)
}

// PrintListingsJSON renders listings as JSON.
func PrintListingsJSON(w io.Writer, listings []api.Listing) error {
	return json.NewEncoder(w).Encode(toListingsJSON(listings))
}

// PrintZones renders the zone partition.
func PrintZones(w io.Writer, zones []region.Zone) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Geopolitical zones:"))
	for _, z := range zones {
		fmt.Fprintf(w, "  %s  %s %s\n", cyanStyle.Render(z.ID), titleStyle.Render(z.Name), dimStyle.Render("hub "+z.Hub()))
		fmt.Fprintf(w, "        %s\n", strings.Join(z.Regions, ", "))
	}
	fmt.Fprintln(w)
}

// PrintZonesJSON renders zones as JSON.
func PrintZonesJSON(w io.Writer, zones []region.Zone) error {
	out := make([]ZoneJSON, 0, len(zones))
	for _, z := range zones {
		out = append(out, ZoneJSON{
			ID:      z.ID,
			Name:    z.Name,
			Hub:     z.Hub(),
			Regions: append([]string{}, z.Regions...),
		})
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintRegions renders listing counts per region.
func PrintRegions(w io.Writer, report RegionReport) {
	fmt.Fprintf(w, "\n%s\n\n",
		titleStyle.Render(fmt.Sprintf("Regions across %d eligible listings:", report.Total)),
	)
	for _, c := range report.Counts {
		zone := ""
		if c.Zone != "" {
			zone = " " + dimStyle.Render(c.Zone)
		}
		fmt.Fprintf(w, "  %s: %d listings%s\n", cyanStyle.Render(c.Region), c.Count, zone)
	}
	fmt.Fprintf(w, "\n%s\n\n", dimStyle.Render(fmt.Sprintf("Effective region: %s (from %s)", report.Effective, report.Source)))
}

// PrintRegionsJSON renders the region report as JSON.
func PrintRegionsJSON(w io.Writer, report RegionReport) error {
	if report.Counts == nil {
		report.Counts = []RegionCount{}
	}
	return json.NewEncoder(w).Encode(report)
}

// PrintLocation renders a geolocation result.
func PrintLocation(w io.Writer, loc LocationJSON) {
	if loc.Region == "" {
		fmt.Fprintf(w, "%s\n", warningStyle.Render(fmt.Sprintf("No region found for %v,%v", loc.Lat, loc.Lon)))
		return
	}
	line := fmt.Sprintf("%s → %s", dimStyle.Render(fmt.Sprintf("%v,%v", loc.Lat, loc.Lon)), titleStyle.Render(loc.Normalized))
	if loc.Zone != "" {
		line += " " + cyanStyle.Render(loc.Zone)
	}
	fmt.Fprintln(w, line)
}

// PrintLocationJSON renders a geolocation result as JSON.
func PrintLocationJSON(w io.Writer, loc LocationJSON) error {
	return json.NewEncoder(w).Encode(loc)
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

func toListingsJSON(listings []api.Listing) []ListingJSON {
	out := make([]ListingJSON, 0, len(listings))
	for _, l := range listings {
		out = append(out, ListingJSON{
			PropertyID:       l.PropertyID.String(),
			Title:            filter.CleanText(l.Title),
			PropertyType:     strings.TrimSpace(l.PropertyType),
			PurchaseCategory: strings.TrimSpace(l.PurchaseCategory),
			Region:           region.Normalize(l.State),
			City:             filter.CleanText(l.City),
			Location:         filter.CleanText(l.Location),
			Status:           strings.TrimSpace(l.Status),
			Price:            l.Price.String(),
			Bedrooms:         l.Bedrooms,
			Bathrooms:        l.Bathrooms,
			ImageURL:         strings.TrimSpace(l.ImageURL),
		})
	}
	return out
}

func indent(block, prefix string) string {
	if block == "" {
		return ""
	}
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

package display

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/filter"
	"github.com/criblink/featured/internal/region"
	"github.com/dustin/go-humanize"
)

// CardWidth is the outer width of a listing card, borders included.
const CardWidth = 30

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			Width(CardWidth - 2)
	focusedCardStyle = cardStyle.BorderForeground(lipgloss.Color("86"))
)

// CarouselWindow returns the indexes of the size items visible when a
// carousel of n items is scrolled to offset. Scrolling wraps in both
// directions; the window never repeats an item.
func CarouselWindow(n, offset, size int) []int {
	if n <= 0 || size <= 0 {
		return nil
	}
	if size > n {
		size = n
	}
	start := ((offset % n) + n) % n
	out := make([]int, size)
	for i := range out {
		out[i] = (start + i) % n
	}
	return out
}

// FormatPrice renders a listing price in naira, e.g. "₦4,500,000".
// Amounts too large for an int64 keep the text the backend sent.
func FormatPrice(l api.Listing) string {
	if v, ok := filter.Price(l); ok && v < math.MaxInt64 {
		return "₦" + humanize.Comma(int64(v))
	}
	if raw := filter.CleanText(l.Price.String()); raw != "" {
		return raw
	}
	return "Price on request"
}

// Card renders one listing as a bordered card.
func Card(l api.Listing, focused bool) string {
	title := filter.CleanText(l.Title)
	if title == "" {
		title = listingFallbackTitle(l)
	}

	lines := []string{
		titleStyle.Render(truncate(title, CardWidth-4)),
		priceStyle.Render(FormatPrice(l)),
	}
	if place := listingPlace(l); place != "" {
		lines = append(lines, dimStyle.Render(truncate(place, CardWidth-4)))
	}
	if facts := listingFacts(l); facts != "" {
		lines = append(lines, cyanStyle.Render(facts))
	}

	style := cardStyle
	if focused {
		style = focusedCardStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

// Row lays out the windowed cards of a category side by side. focus is
// the absolute index of the highlighted listing, or -1.
func Row(listings []api.Listing, offset, size, focus int) string {
	window := CarouselWindow(len(listings), offset, size)
	if len(window) == 0 {
		return ""
	}
	cards := make([]string, 0, len(window))
	for _, idx := range window {
		cards = append(cards, Card(listings[idx], idx == focus))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func listingFallbackTitle(l api.Listing) string {
	kind := strings.TrimSpace(l.PropertyType)
	if kind == "" {
		kind = "Property"
	}
	if purchase := strings.TrimSpace(l.PurchaseCategory); purchase != "" {
		return kind + " for " + purchase
	}
	return kind
}

func listingPlace(l api.Listing) string {
	var parts []string
	for _, p := range []string{filter.CleanText(l.Location), filter.CleanText(l.City), region.Normalize(l.State)} {
		if p == "" {
			continue
		}
		if len(parts) > 0 && strings.EqualFold(parts[len(parts)-1], p) {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}

func listingFacts(l api.Listing) string {
	var parts []string
	if l.Bedrooms > 0 {
		parts = append(parts, humanize.Comma(int64(l.Bedrooms))+" bd")
	}
	if l.Bathrooms > 0 {
		parts = append(parts, humanize.Comma(int64(l.Bathrooms))+" ba")
	}
	if t := strings.TrimSpace(l.PropertyType); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, " · ")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

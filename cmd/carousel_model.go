package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/display"
	"github.com/criblink/featured/internal/feed"
	"github.com/criblink/featured/internal/filter"
)

const (
	minCarouselWidth  = display.CardWidth + 4
	minCarouselHeight = 14

	// Title line plus a card of at most four content lines and its border.
	carouselRowHeight = 8
	detailHeight      = 7
)

var (
	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	tuiErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type carouselConfig struct {
	ctx      context.Context
	svc      *feed.Service
	locate   func(context.Context) string
	interval time.Duration
}

type feedUpdatedMsg struct {
	feed feed.Feed
}

type refreshDoneMsg struct {
	err error
}

type regionLocatedMsg struct {
	region string
}

type advanceMsg struct {
	seq int
}

type carouselModel struct {
	cfg carouselConfig

	loading    bool
	refreshing bool
	spinner    spinner.Model
	detail     viewport.Model
	showDetail bool
	showHelp   bool

	feed    feed.Feed
	offsets []int // scroll position per row, index-aligned with feed.Categories
	focus   int

	paused  bool
	tickSeq int

	lastErr  error
	fatalErr error

	width    int
	height   int
	window   int
	tooSmall bool
}

func newCarouselModel(cfg carouselConfig) carouselModel {
	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return carouselModel{
		cfg:     cfg,
		loading: true,
		spinner: spin,
		detail:  viewport.New(0, 0),
		window:  display.DefaultWindow,
	}
}

func refreshFeedCmd(ctx context.Context, svc *feed.Service) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: svc.Refresh(ctx)}
	}
}

func locateRegionCmd(ctx context.Context, locate func(context.Context) string) tea.Cmd {
	if locate == nil {
		return nil
	}
	return func() tea.Msg {
		return regionLocatedMsg{region: locate(ctx)}
	}
}

// applyRegionCmd runs SetRegion off the update loop; the service publishes
// the recomputed feed back through the program.
func applyRegionCmd(svc *feed.Service, raw string) tea.Cmd {
	return func() tea.Msg {
		svc.SetRegion(raw)
		return nil
	}
}

func (m carouselModel) scheduleAdvance() tea.Cmd {
	if m.cfg.interval <= 0 || m.paused {
		return nil
	}
	seq := m.tickSeq
	return tea.Tick(m.cfg.interval, func(time.Time) tea.Msg {
		return advanceMsg{seq: seq}
	})
}

func (m carouselModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		refreshFeedCmd(m.cfg.ctx, m.cfg.svc),
		locateRegionCmd(m.cfg.ctx, m.cfg.locate),
		m.scheduleAdvance(),
	)
}

func (m carouselModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case feedUpdatedMsg:
		if !m.cfg.svc.Loaded() {
			return m, nil
		}
		m.setFeed(msg.feed)
		return m, nil

	case refreshDoneMsg:
		m.refreshing = false
		switch {
		case msg.err == nil:
			m.lastErr = nil
			m.setFeed(m.cfg.svc.Feed())
		case errors.Is(msg.err, feed.ErrSuperseded):
		case !m.cfg.svc.Loaded():
			m.loading = false
			m.fatalErr = msg.err
			return m, tea.Quit
		default:
			m.lastErr = msg.err
		}
		return m, nil

	case regionLocatedMsg:
		return m, applyRegionCmd(m.cfg.svc, msg.region)

	case advanceMsg:
		if msg.seq != m.tickSeq || m.paused {
			return m, nil
		}
		m.advanceAll(1)
		return m, m.scheduleAdvance()

	case spinner.TickMsg:
		if m.loading || m.refreshing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := keyMsg.String()
	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	switch key {
	case "left", "h":
		m.scrollFocused(-1)
		cmd := m.restartAdvance()
		return m, cmd
	case "right", "l":
		m.scrollFocused(1)
		cmd := m.restartAdvance()
		return m, cmd
	case "up", "k":
		if m.focus > 0 {
			m.focus--
			m.refreshDetail()
		}
		return m, nil
	case "down", "j":
		if m.focus < len(m.feed.Categories)-1 {
			m.focus++
			m.refreshDetail()
		}
		return m, nil
	case " ", "p":
		m.paused = !m.paused
		cmd := m.restartAdvance()
		return m, cmd
	case "enter":
		m.showDetail = !m.showDetail
		m.resize()
		return m, nil
	case "?":
		m.showHelp = !m.showHelp
		m.resize()
		return m, nil
	case "r":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, tea.Batch(m.spinner.Tick, refreshFeedCmd(m.cfg.ctx, m.cfg.svc))
	}

	if m.showDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *carouselModel) setFeed(f feed.Feed) {
	// A row keeps its position only if the same row is still in its slot.
	prev := m.feed.Categories
	kept := make([]int, len(f.Categories))
	for i, c := range f.Categories {
		if i < len(prev) && prev[i].Title == c.Title && len(c.Listings) > 0 {
			kept[i] = m.offset(i) % len(c.Listings)
		}
	}
	m.loading = false
	m.feed = f
	m.offsets = kept

	if m.focus >= len(f.Categories) {
		m.focus = maxInt(0, len(f.Categories)-1)
	}
	m.resize()
}

// restartAdvance invalidates pending ticks so manual scrolling never races
// an automatic step.
func (m *carouselModel) restartAdvance() tea.Cmd {
	m.tickSeq++
	return m.scheduleAdvance()
}

func (m *carouselModel) advanceAll(delta int) {
	for i := range m.feed.Categories {
		m.step(i, delta)
	}
	m.refreshDetail()
}

func (m *carouselModel) scrollFocused(delta int) {
	if _, ok := m.focusedCategory(); ok {
		m.step(m.focus, delta)
		m.refreshDetail()
	}
}

func (m *carouselModel) step(row, delta int) {
	n := len(m.feed.Categories[row].Listings)
	if n <= m.window || row >= len(m.offsets) {
		return
	}
	m.offsets[row] = ((m.offsets[row]+delta)%n + n) % n
}

func (m carouselModel) offset(row int) int {
	if row < 0 || row >= len(m.offsets) {
		return 0
	}
	return m.offsets[row]
}

func (m carouselModel) focusedCategory() (feed.ResolvedCategory, bool) {
	if m.focus < 0 || m.focus >= len(m.feed.Categories) {
		return feed.ResolvedCategory{}, false
	}
	return m.feed.Categories[m.focus], true
}

// focusedListing is the leftmost visible card of the focused row.
func (m carouselModel) focusedListing() (api.Listing, int, bool) {
	c, ok := m.focusedCategory()
	if !ok || len(c.Listings) == 0 {
		return api.Listing{}, -1, false
	}
	idx := m.offset(m.focus) % len(c.Listings)
	return c.Listings[idx], idx, true
}

func (m *carouselModel) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.tooSmall = m.width < minCarouselWidth || m.height < minCarouselHeight
	m.window = maxInt(1, (m.width-2)/display.CardWidth)

	m.detail.Width = maxInt(20, m.width-4)
	m.detail.Height = detailHeight - 2
	m.refreshDetail()
}

func (m *carouselModel) refreshDetail() {
	l, _, ok := m.focusedListing()
	if !ok {
		m.detail.SetContent("")
		return
	}
	c, _ := m.focusedCategory()
	m.detail.SetContent(renderListingDetail(l, c, m.detail.Width))
	m.detail.GotoTop()
}

func (m carouselModel) visibleRows() int {
	avail := m.height - 4
	if m.showDetail {
		avail -= detailHeight
	}
	if m.showHelp {
		avail -= 4
	}
	return maxInt(1, avail/carouselRowHeight)
}

func (m carouselModel) View() string {
	if m.loading {
		return m.loadingView()
	}
	if m.width == 0 || m.height == 0 {
		return tuiMetaStyle.Render("Loading interface...")
	}
	if m.tooSmall {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(
				fmt.Sprintf(
					"Terminal too small (%dx%d).\nResize to at least %dx%d for the carousel.",
					m.width, m.height, minCarouselWidth, minCarouselHeight,
				),
			)
	}

	parts := []string{m.headerView(), m.bodyView()}
	if m.showDetail {
		parts = append(parts, m.detailView())
	}
	parts = append(parts, m.footerView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m carouselModel) loadingView() string {
	lines := []string{
		tuiHeaderStyle.Render("criblink carousel"),
		fmt.Sprintf("%s %s", m.spinner.View(), tuiMetaStyle.Render("Loading featured listings...")),
		"",
		tuiHintStyle.Render("Tip: press q to cancel."),
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (m carouselModel) headerView() string {
	top := "criblink carousel"
	if m.feed.Region != "" {
		top = fmt.Sprintf("criblink carousel  |  Featured in %s", m.feed.Region)
	}

	state := fmt.Sprintf("auto %s", m.cfg.interval)
	switch {
	case m.cfg.interval <= 0:
		state = "auto off"
	case m.paused:
		state = "paused"
	}
	bottom := fmt.Sprintf("rows: %d  |  region from: %s  |  %s", len(m.feed.Categories), m.feed.RegionSource, state)
	if m.refreshing {
		bottom += "  |  " + m.spinner.View() + " refreshing"
	}
	if m.lastErr != nil {
		bottom += "  |  " + tuiErrorStyle.Render("refresh failed: "+m.lastErr.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(tuiHeaderStyle.Render(top) + "\n" + tuiMetaStyle.Render(bottom))
}

func (m carouselModel) bodyView() string {
	if len(m.feed.Categories) == 0 {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(tuiMutedStyle.Render("No featured listings available right now. Press r to retry."))
	}

	rows := m.visibleRows()
	start := 0
	if m.focus >= rows {
		start = m.focus - rows + 1
	}
	end := minInt(len(m.feed.Categories), start+rows)

	blocks := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := m.feed.Categories[i]
		offset := m.offset(i)

		marker := "  "
		title := tuiMetaStyle.Render(c.Title)
		focus := -1
		if i == m.focus {
			marker = "› "
			title = tuiSectionStyle.Render(c.Title)
			focus = offset % len(c.Listings)
		}

		heading := fmt.Sprintf("%s%s %s", marker, title,
			tuiMutedStyle.Render(fmt.Sprintf("(%d, %s)", len(c.Listings), c.Probe)))
		blocks = append(blocks, heading+"\n"+display.Row(c.Listings, offset, m.window, focus))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(blocks, "\n"))
}

func (m carouselModel) detailView() string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(0, 1).
		Width(maxInt(20, m.width-2)).
		Render(m.detail.View())
}

func (m carouselModel) footerView() string {
	base := "←/→ scroll row • ↑/↓ change row • space pause • enter details • r refresh • ? help • q quit"
	if !m.showHelp {
		return lipgloss.NewStyle().Padding(0, 1).Render(tuiHintStyle.Render(base))
	}

	lines := []string{
		"Key Help",
		"rows: ←/→ or h/l scroll the focused row • ↑/↓ or j/k move between rows",
		"playback: space or p pause/resume auto-advance • r refetch listings",
		"global: enter toggle listing details • ? toggle help • q quit • ctrl+c force quit",
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(tuiHintStyle.Render(strings.Join(lines, "\n")))
}

func renderListingDetail(l api.Listing, c feed.ResolvedCategory, width int) string {
	wrap := lipgloss.NewStyle().Width(maxInt(20, width))

	title := filter.CleanText(l.Title)
	if title == "" {
		title = strings.TrimSpace(l.PropertyType + " " + l.PurchaseCategory)
	}

	lines := []string{
		tuiValueStyle.Render(wrap.Render(title)),
		fmt.Sprintf("%s %s", tuiMetaStyle.Render("Price:"), display.FormatPrice(l)),
	}
	if place := strings.Trim(strings.Join([]string{filter.CleanText(l.Location), filter.CleanText(l.City), strings.TrimSpace(l.State)}, ", "), ", "); place != "" {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Where:"), place))
	}
	if status := strings.TrimSpace(l.Status); status != "" {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Status:"), status))
	}
	if c.SearchLink != "" {
		lines = append(lines, tuiMutedStyle.Render(wrap.Render("More like this: "+c.SearchLink)))
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

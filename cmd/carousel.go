package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/criblink/featured/internal/display"
	"github.com/criblink/featured/internal/events"
	"github.com/criblink/featured/internal/feed"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultCarouselInterval = 4 * time.Second

var flagInterval = defaultCarouselInterval

var carouselCmd = &cobra.Command{
	Use:   "carousel",
	Short: "Browse featured rows as auto-advancing carousels",
	Long: "Interactive view of the featured rows. Each row scrolls on its own\n" +
		"every --interval; the feed refreshes in place when the region is located.",
	Example: `  criblink carousel
  criblink carousel --region Kano --interval 6s
  criblink carousel --interval 0`,
	RunE: runCarousel,
}

func init() {
	rootCmd.AddCommand(carouselCmd)
	carouselCmd.Flags().DurationVar(&flagInterval, "interval", defaultCarouselInterval, "Auto-advance interval (0 disables)")
}

func runCarousel(cmd *cobra.Command, _ []string) error {
	if flagInterval < 0 {
		return invalidArgsError(
			"--interval cannot be negative",
			"criblink carousel --interval 4s",
		)
	}
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`criblink carousel` requires an interactive terminal",
			"Use `criblink --json` in pipelines.",
		)
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if flagJSON {
		listings, rawRegion, err := env.loadInputs(cmd.Context())
		if err != nil {
			return err
		}
		f := feed.Build(feed.Input{RawUserRegion: rawRegion, Listings: listings, Definitions: env.defs}, env.opts)
		return display.PrintFeedJSON(cmd.OutOrStdout(), f)
	}

	svc := feed.NewService(env.client, env.defs, env.opts, events.New(), logger)

	locate := func(context.Context) string { return flagRegion }
	if flagRegion == "" {
		locate = env.locator().Locate
	}

	model := newCarouselModel(carouselConfig{
		ctx:      cmd.Context(),
		svc:      svc,
		locate:   locate,
		interval: flagInterval,
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	unsubscribe := svc.Bus().Subscribe(feed.EventFeedUpdated, func(payload any) {
		if f, ok := payload.(feed.Feed); ok {
			program.Send(feedUpdatedMsg{feed: f})
		}
	})
	defer unsubscribe()

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("running carousel: %w", err)
	}
	if m, ok := final.(carouselModel); ok && m.fatalErr != nil {
		return backendError("loading feed", m.fatalErr)
	}
	return nil
}

func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	inputFile, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(inputFile.Fd())) {
		return false
	}
	return isTTY(stdout)
}

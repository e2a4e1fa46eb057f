package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/criblink/featured/internal/display"
	"github.com/criblink/featured/internal/feed"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagRegion        string
	flagLat           float64
	flagLon           float64
	flagMinCount      int
	flagMaxCategories int
	flagDefinitions   string
	flagAPI           string
	flagJSON          bool
	flagExplain       bool
	flagVerbose       bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "criblink",
	Short: "Show featured property listings for your region",
	Long: "CLI tool that builds the marketplace's featured listing rows.\n" +
		"Each row prefers listings from your region, then its zone hub, then the\n" +
		"rest of its geopolitical zone, and finally the whole country.\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -region Lagos, region=Lagos, --regoin Lagos).",
	Example: `  criblink
  criblink --region "Lagos State" --explain
  criblink --lat 6.5244 --lon 3.3792
  criblink zones
  criblink regions --json
  criblink search --type duplex --purchase rent --region Lagos
  criblink carousel --interval 6s`,
	PersistentPreRunE: setupLogger,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
	RunE: runFeed,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.Args = rootArgs
	rootCmd.SetFlagErrorFunc(flagError)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagRegion, "region", "r", "", "Region (state) to personalize for, e.g. Lagos")
	pf.Float64Var(&flagLat, "lat", 0, "Latitude to geolocate the region from")
	pf.Float64Var(&flagLon, "lon", 0, "Longitude to geolocate the region from")
	pf.IntVar(&flagMinCount, "min-count", 0, "Smallest local result set preferred over a wider search (default 3)")
	pf.IntVar(&flagMaxCategories, "max-categories", 0, "Maximum number of rows (default 4)")
	pf.StringVar(&flagDefinitions, "definitions", "", "YAML file with category definitions")
	pf.StringVar(&flagAPI, "api", "", "Marketplace API base URL")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details to stderr")

	rootCmd.Flags().BoolVar(&flagExplain, "explain", false, "Show how each row was resolved")
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	normalizedArgs, notes := normalizeCLIArgs(args)
	for _, note := range notes {
		fmt.Fprintf(stderr, "note: %s\n", note)
	}

	if shouldAutoJSON(normalizedArgs, isTTY(stdout)) {
		// Flags after `--` are positional, so the switch goes before it.
		at := slices.Index(normalizedArgs, "--")
		if at < 0 {
			at = len(normalizedArgs)
		}
		normalizedArgs = slices.Insert(normalizedArgs, at, "--json")
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(normalizedArgs)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if cliErr == nil {
			return ExitSuccess
		}
		if wantsJSON(normalizedArgs) {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				fmt.Fprintln(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagRegion = ""
	flagLat = 0
	flagLon = 0
	flagMinCount = 0
	flagMaxCategories = 0
	flagDefinitions = ""
	flagAPI = ""
	flagJSON = false
	flagExplain = false
	flagVerbose = false
	flagInterval = defaultCarouselInterval
	resetSearchFlags()
	logger = zap.NewNop()

	// Changed marks survive between Execute calls on the same command tree.
	resetChanged(rootCmd)
}

func resetChanged(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	for _, child := range cmd.Commands() {
		resetChanged(child)
	}
}

// setupLogger writes JSON logs to the command's stderr so stdout stays
// clean for --json consumers. Only errors are logged unless --verbose.
func setupLogger(cmd *cobra.Command, _ []string) error {
	config := zap.NewProductionConfig()
	if flagVerbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(config.EncoderConfig),
		zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())),
		config.Level,
	)
	logger = zap.New(core).Named("criblink")
	return nil
}

func runFeed(cmd *cobra.Command, _ []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	listings, rawRegion, err := env.loadInputs(cmd.Context())
	if err != nil {
		return err
	}

	f := feed.Build(feed.Input{
		RawUserRegion: rawRegion,
		Listings:      listings,
		Definitions:   env.defs,
	}, env.opts)

	logger.Debug("feed built",
		zap.String("region", f.Region),
		zap.String("regionSource", string(f.RegionSource)),
		zap.Int("listings", len(listings)),
		zap.Int("categories", len(f.Categories)),
	)

	if len(f.Categories) == 0 {
		return notFoundError(
			"no featured listings available",
			"Check the catalog with `criblink regions`.",
			"Point --api at another environment.",
		)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return display.PrintFeedJSON(out, f)
	}
	if flagExplain {
		display.PrintExplain(out, f)
	}
	display.PrintFeed(out, f)
	return nil
}

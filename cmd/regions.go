package cmd

import (
	"github.com/criblink/featured/internal/display"
	"github.com/criblink/featured/internal/feed"
	"github.com/criblink/featured/internal/region"
	"github.com/spf13/cobra"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Count eligible listings per region",
	Long: "Count available and under-offer listings per region and show which\n" +
		"region the featured rows would be built for.",
	Example: `  criblink regions
  criblink regions --region Kano --json`,
	RunE: runRegions,
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}

func runRegions(cmd *cobra.Command, _ []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	listings, err := env.client.FetchListings(cmd.Context())
	if err != nil {
		return backendError("counting regions", err)
	}

	eligible := feed.Eligible(listings)
	if len(eligible) == 0 {
		return notFoundError(
			"no eligible listings found",
			"Only available and under-offer listings are counted.",
		)
	}

	states := make([]string, 0, len(eligible))
	for _, l := range eligible {
		states = append(states, l.State)
	}
	effective, source := feed.EffectiveRegion(flagRegion, eligible, env.opts.DefaultRegion)
	report := display.NewRegionReport(region.Counts(states), region.Nigeria, effective, source)

	if flagJSON {
		return display.PrintRegionsJSON(cmd.OutOrStdout(), report)
	}
	display.PrintRegions(cmd.OutOrStdout(), report)
	return nil
}

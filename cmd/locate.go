package cmd

import (
	"fmt"

	"github.com/criblink/featured/internal/display"
	"github.com/criblink/featured/internal/region"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolve coordinates to a region",
	Long: "Run only the geolocation step: reverse-geocode --lat/--lon through the\n" +
		"marketplace API and report the normalized region and its zone.",
	Example: `  criblink locate --lat 6.5244 --lon 3.3792
  criblink locate --lat 9.0765 --lon 7.3986 --json`,
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if !flags.Changed("lat") || !flags.Changed("lon") {
		return invalidArgsError(
			"--lat and --lon are required for locate",
			"criblink locate --lat 6.5244 --lon 3.3792",
		)
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	raw := env.locator().Locate(cmd.Context())
	loc := display.LocationJSON{
		Lat:        flagLat,
		Lon:        flagLon,
		Region:     raw,
		Normalized: region.Normalize(raw),
	}
	if z, ok := region.Nigeria.ZoneOf(raw); ok {
		loc.Zone = z.ID
	}

	if raw == "" {
		return notFoundError(
			fmt.Sprintf("no region found for %v,%v", flagLat, flagLon),
			"Retry with --verbose to see why the lookup failed.",
		)
	}

	if flagJSON {
		return display.PrintLocationJSON(cmd.OutOrStdout(), loc)
	}
	display.PrintLocation(cmd.OutOrStdout(), loc)
	return nil
}

package cmd

import (
	"github.com/criblink/featured/internal/display"
	"github.com/criblink/featured/internal/region"
	"github.com/spf13/cobra"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the geopolitical zones used for regional fallback",
	Long: "Show the six geopolitical zones, each zone's hub and member regions.\n" +
		"A row that lacks local listings falls back to the hub, then the zone.",
	Example: `  criblink zones
  criblink zones --json`,
	RunE: runZones,
}

func init() {
	rootCmd.AddCommand(zonesCmd)
}

func runZones(cmd *cobra.Command, _ []string) error {
	zones := region.Nigeria.Zones()
	if flagJSON {
		return display.PrintZonesJSON(cmd.OutOrStdout(), zones)
	}
	display.PrintZones(cmd.OutOrStdout(), zones)
	return nil
}

package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/criblink/featured/internal/display"
	"github.com/criblink/featured/internal/feed"
	"github.com/criblink/featured/internal/filter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagType     string
	flagPurchase string
	flagQuery    string
	flagSort     string
	flagLimit    int
	flagLink     string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search eligible listings like the marketplace search page",
	Long: "Filter available and under-offer listings by property type, purchase\n" +
		"category, region and keyword. --link accepts a row's searchLink so a\n" +
		"featured row can be expanded into its full result list.",
	Example: `  criblink search --type duplex --purchase rent --region Lagos
  criblink search --query lekki --sort price --limit 10
  criblink search --link "/search?property_type=Land&purchase_category=Sale&state=Ogun&status=featured"`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	registerSearchFlags(searchCmd.Flags())
}

func registerSearchFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagType, "type", "t", "", "Property type (e.g., duplex, land, self contain)")
	f.StringVarP(&flagPurchase, "purchase", "p", "", "Purchase category (rent, sale, shortlet)")
	f.StringVarP(&flagQuery, "query", "q", "", "Search listings by keyword in title/location")
	f.StringVar(&flagSort, "sort", "", "Sort by relevance, price, or price-desc")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Limit number of results (0 = all)")
	f.StringVar(&flagLink, "link", "", "Search deep link from a featured row")
}

func resetSearchFlags() {
	flagType = ""
	flagPurchase = ""
	flagQuery = ""
	flagSort = ""
	flagLimit = 0
	flagLink = ""
}

func validateSortMode() error {
	switch strings.ToLower(strings.TrimSpace(flagSort)) {
	case "", "relevance", "price", "price-asc", "cheapest", "low", "price-desc", "priciest", "expensive", "high":
		return nil
	default:
		return invalidArgsError(
			"invalid value for --sort (use relevance, price, or price-desc)",
			"criblink search --type duplex --sort price",
			"criblink search --type land --sort price-desc",
		)
	}
}

// searchOptions merges --link parameters with explicit flags; flags win.
func searchOptions(cmd *cobra.Command) (filter.Options, error) {
	var opts filter.Options
	if strings.TrimSpace(flagLink) != "" {
		u, err := url.Parse(flagLink)
		if err != nil {
			return filter.Options{}, invalidArgsError(
				fmt.Sprintf("invalid --link: %v", err),
				`criblink search --link "/search?property_type=Duplex&state=Lagos"`,
			)
		}
		opts = filter.FromQuery(u.Query())
	}

	flags := cmd.Flags()
	if flags.Changed("type") {
		opts.PropertyType = flagType
	}
	if flags.Changed("purchase") {
		opts.PurchaseCategory = flagPurchase
	}
	if flags.Changed("region") {
		opts.Region = flagRegion
	}
	if flags.Changed("query") {
		opts.Query = flagQuery
	}
	if flags.Changed("sort") {
		opts.Sort = flagSort
	}
	if flags.Changed("limit") {
		if flagLimit < 0 {
			return filter.Options{}, invalidArgsError("--limit cannot be negative", "criblink search --limit 10")
		}
		opts.Limit = flagLimit
	}
	return opts, nil
}

func runSearch(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	opts, err := searchOptions(cmd)
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	listings, err := env.client.FetchListings(cmd.Context())
	if err != nil {
		return backendError("searching listings", err)
	}

	results := filter.Apply(feed.Eligible(listings), opts)
	if len(results) == 0 {
		return notFoundError(
			"no listings match your filters",
			"Relax filters like --type/--purchase/--region/--query.",
		)
	}

	if flagJSON {
		return display.PrintListingsJSON(cmd.OutOrStdout(), results)
	}
	display.PrintListings(cmd.OutOrStdout(), results, searchHeading(opts))
	return nil
}

func searchHeading(opts filter.Options) string {
	parts := []string{}
	if opts.PropertyType != "" {
		parts = append(parts, opts.PropertyType)
	}
	if opts.PurchaseCategory != "" {
		parts = append(parts, "for "+opts.PurchaseCategory)
	}
	if opts.Region != "" {
		parts = append(parts, "in "+opts.Region)
	}
	if len(parts) == 0 {
		return "Listings"
	}
	return strings.Join(parts, " ")
}

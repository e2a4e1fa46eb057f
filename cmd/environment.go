package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/config"
	"github.com/criblink/featured/internal/feed"
	"github.com/criblink/featured/internal/geo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// environment is the per-invocation wiring shared by every command:
// settings from .env, the environment and flags, plus the clients built
// from them.
type environment struct {
	cfg    *config.Config
	client *api.Client
	defs   []feed.CategoryDefinition
	opts   feed.Options
	src    geo.PositionSource

	closers []func() error
}

func newEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg := config.Load(logger)
	flags := cmd.Flags()

	if flags.Changed("api") {
		cfg.APIURL = flagAPI
	}
	if flags.Changed("min-count") {
		if flagMinCount < 1 {
			return nil, invalidArgsError(
				"--min-count must be at least 1",
				"criblink --min-count 3",
			)
		}
		cfg.MinCount = flagMinCount
	}
	if flags.Changed("max-categories") {
		if flagMaxCategories < 1 {
			return nil, invalidArgsError(
				"--max-categories must be at least 1",
				"criblink --max-categories 4",
			)
		}
		cfg.MaxCategories = flagMaxCategories
	}
	if flags.Changed("definitions") {
		cfg.DefinitionsPath = flagDefinitions
	}

	src, err := positionSource(cmd)
	if err != nil {
		return nil, err
	}

	defs, err := loadDefinitions(cfg.DefinitionsPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		zap.String("api", cfg.APIURL),
		zap.Int("minCount", cfg.MinCount),
		zap.Int("maxCategories", cfg.MaxCategories),
		zap.String("defaultRegion", cfg.DefaultRegion),
		zap.Int("definitions", len(defs)),
	)

	return &environment{
		cfg:    cfg,
		client: api.NewClientWithBaseURL(cfg.APIURL),
		defs:   defs,
		opts:   cfg.FeedOptions(),
		src:    src,
	}, nil
}

func positionSource(cmd *cobra.Command) (geo.PositionSource, error) {
	flags := cmd.Flags()
	hasLat, hasLon := flags.Changed("lat"), flags.Changed("lon")
	if hasLat != hasLon {
		return nil, invalidArgsError(
			"--lat and --lon must be given together",
			"criblink --lat 6.5244 --lon 3.3792",
		)
	}
	if !hasLat {
		return geo.NoSource{}, nil
	}

	pos := geo.Position{Lat: flagLat, Lon: flagLon}
	if err := pos.Validate(); err != nil {
		return nil, invalidArgsError(
			fmt.Sprintf("invalid coordinates: %v", err),
			"Latitude must be within -90..90 and longitude within -180..180.",
		)
	}
	return geo.StaticSource(pos), nil
}

func loadDefinitions(path string) ([]feed.CategoryDefinition, error) {
	if strings.TrimSpace(path) == "" {
		return feed.DefaultDefinitions(), nil
	}
	defs, err := feed.LoadDefinitions(path)
	if err != nil {
		return nil, invalidArgsError(
			err.Error(),
			"criblink --definitions categories.yaml",
			"Each category needs a title and a property_type or purchase_category.",
		)
	}
	return defs, nil
}

// locator builds the geolocation adapter. The Redis cache is optional: a
// bad URL only costs the cache.
func (e *environment) locator() *geo.Locator {
	opts := geo.Options{Timeout: e.cfg.GeoTimeout, Logger: logger}
	if e.cfg.RedisURL != "" {
		cache, err := geo.OpenRedisCache(e.cfg.RedisURL, geo.DefaultCacheTTL)
		if err != nil {
			logger.Warn("geocode cache disabled", zap.Error(err))
		} else {
			opts.Cache = cache
			e.closers = append(e.closers, cache.Close)
		}
	}
	return geo.NewLocator(e.src, e.client, opts)
}

// loadInputs fetches the catalog and geolocates the user concurrently. An
// explicit --region skips geolocation.
func (e *environment) loadInputs(ctx context.Context) ([]api.Listing, string, error) {
	var (
		listings  []api.Listing
		rawRegion string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := e.client.FetchListings(gctx)
		if err != nil {
			return backendError("loading feed", err)
		}
		listings = l
		return nil
	})

	if strings.TrimSpace(flagRegion) != "" {
		rawRegion = flagRegion
	} else {
		loc := e.locator()
		g.Go(func() error {
			rawRegion = loc.Locate(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return listings, rawRegion, nil
}

func (e *environment) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			logger.Debug("closing resource", zap.Error(err))
		}
	}
}

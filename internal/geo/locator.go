package geo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/criblink/featured/internal/api"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout caps a whole lookup, cache and backend included.
const DefaultTimeout = 5 * time.Second

// Geocoder resolves coordinates to an address. *api.Client satisfies it.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*api.GeocodeResponse, error)
}

// Options configures a Locator. Zero values use defaults.
type Options struct {
	Timeout time.Duration
	Cache   Cache
	Limiter *rate.Limiter
	Logger  *zap.Logger
}

// Locator resolves the user's region from a position source.
type Locator struct {
	src     PositionSource
	coder   Geocoder
	timeout time.Duration
	cache   Cache
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewLocator builds a Locator. A nil source behaves like NoSource.
func NewLocator(src PositionSource, coder Geocoder, opts Options) *Locator {
	if src == nil {
		src = NoSource{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Locator{
		src:     src,
		coder:   coder,
		timeout: opts.Timeout,
		cache:   opts.Cache,
		limiter: opts.Limiter,
		log:     opts.Logger.Named("geo"),
	}
}

// Locate returns the user's region or "" when it cannot be determined.
// It never fails: errors are logged and the caller falls back to other
// region sources.
func (l *Locator) Locate(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	region, err := l.locate(ctx)
	switch {
	case errors.Is(err, ErrNoPosition):
		l.log.Debug("no position available")
	case err != nil:
		l.log.Warn("geolocation failed", zap.Error(err))
	default:
		l.log.Debug("located region", zap.String("region", region))
	}
	return region
}

func (l *Locator) locate(ctx context.Context) (string, error) {
	pos, err := l.src.Position(ctx)
	if err != nil {
		return "", err
	}
	if err := pos.Validate(); err != nil {
		return "", err
	}

	cell := Cell(pos)
	if region, ok, err := l.cache.Get(ctx, cell); err != nil {
		l.log.Warn("geocode cache read failed", zap.String("cell", cell), zap.Error(err))
	} else if ok {
		l.log.Debug("geocode cache hit", zap.String("cell", cell))
		return region, nil
	}

	if l.coder == nil {
		return "", errors.New("no geocoder configured")
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := l.coder.ReverseGeocode(ctx, pos.Lat, pos.Lon)
	if err != nil {
		return "", err
	}
	region := strings.TrimSpace(resp.Region())
	if region == "" {
		return "", errors.New("geocode response carries no region")
	}

	if err := l.cache.Set(ctx, cell, region); err != nil {
		l.log.Warn("geocode cache write failed", zap.String("cell", cell), zap.Error(err))
	}
	return region, nil
}

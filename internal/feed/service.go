package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/events"
	"go.uber.org/zap"
)

// Event names published by Service.
const (
	EventFeedUpdated   = "feed.updated"
	EventRegionLocated = "region.located"
)

// ErrSuperseded is returned by Refresh when a newer Refresh started while
// this one was in flight; its result was discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// ListingSource loads the full listing catalog.
type ListingSource interface {
	FetchListings(ctx context.Context) ([]api.Listing, error)
}

// Service keeps the live feed inputs and recomputes the rows whenever they
// change, announcing each new Feed on the bus.
type Service struct {
	src  ListingSource
	defs []CategoryDefinition
	opts Options
	bus  *events.Bus
	log  *zap.Logger
	memo Memo

	mu        sync.Mutex
	gen       uint64
	listings  []api.Listing
	rawRegion string
	loaded    bool
}

// NewService wires a feed service. bus and log may be nil.
func NewService(src ListingSource, defs []CategoryDefinition, opts Options, bus *events.Bus, log *zap.Logger) *Service {
	if bus == nil {
		bus = events.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{src: src, defs: defs, opts: opts, bus: bus, log: log}
}

// Bus returns the bus the service publishes on.
func (s *Service) Bus() *events.Bus { return s.bus }

// Refresh fetches the listings and recomputes the feed. Each call takes a
// generation token; when a newer Refresh has started by the time this one
// returns, the fetched data is dropped and ErrSuperseded is returned. On
// fetch failure the previous listings stay in place.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	token := s.gen
	s.mu.Unlock()

	listings, err := s.src.FetchListings(ctx)

	s.mu.Lock()
	if token != s.gen {
		s.mu.Unlock()
		s.log.Debug("discarding stale listings fetch", zap.Uint64("generation", token))
		return ErrSuperseded
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("refreshing feed: %w", err)
	}
	s.listings = listings
	s.loaded = true
	s.mu.Unlock()

	s.log.Debug("listings refreshed", zap.Int("count", len(listings)), zap.Uint64("generation", token))
	s.publish()
	return nil
}

// SetRegion records the user's raw region (typically from geolocation) and
// recomputes the feed.
func (s *Service) SetRegion(raw string) {
	s.mu.Lock()
	changed := s.rawRegion != raw
	s.rawRegion = raw
	s.mu.Unlock()

	if !changed {
		return
	}
	s.bus.Publish(EventRegionLocated, raw)
	s.publish()
}

// Loaded reports whether a Refresh has completed successfully.
func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Listings returns the current catalog snapshot.
func (s *Service) Listings() []api.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings
}

// Feed returns the rows for the current inputs. Before the first
// successful Refresh it returns an empty feed.
func (s *Service) Feed() Feed {
	s.mu.Lock()
	in := Input{RawUserRegion: s.rawRegion, Listings: s.listings, Definitions: s.defs}
	s.mu.Unlock()
	return s.memo.Build(in, s.opts)
}

// Categories returns the current rows.
func (s *Service) Categories() []ResolvedCategory {
	return s.Feed().Categories
}

func (s *Service) publish() {
	s.bus.Publish(EventFeedUpdated, s.Feed())
}

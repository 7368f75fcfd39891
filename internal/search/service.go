// Package search answers an address query with its school zones, nearest
// station and suburb ancestry.
package search

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/geocoding"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

// Resolver geocodes free text to a single address.
type Resolver interface {
	Resolve(ctx context.Context, text string) (*models.AddressMatch, error)
}

// ZoneMatcher finds the catchments containing a coordinate.
type ZoneMatcher interface {
	Match(p geo.Coordinate) models.ZoneMatchResult
}

// StationLocator finds the nearest station, or nil.
type StationLocator interface {
	Locate(ctx context.Context, p geo.Coordinate) *models.StationMatch
}

// AncestryLookup finds a suburb's ancestry record, or nil.
type AncestryLookup interface {
	Lookup(suburb string) *models.AncestryRecord
}

// Service orchestrates one search across the lookups.
type Service struct {
	resolver Resolver
	zones    ZoneMatcher
	stations StationLocator
	ancestry AncestryLookup
	timeout  time.Duration
	log      *zap.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithTimeout bounds each search. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService creates a search service
func NewService(resolver Resolver, zones ZoneMatcher, stations StationLocator, ancestry AncestryLookup, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		zones:    zones,
		stations: stations,
		ancestry: ancestry,
		timeout:  30 * time.Second,
		log:      zap.L().With(zap.String("component", "search")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search resolves text and gathers the zone, station and ancestry results
// concurrently. Any resolver failure is reported as geocoding.ErrNotFound and
// no partial result is returned; the other lookups degrade to nil fields.
func (s *Service) Search(ctx context.Context, text string) (*models.SearchResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	addr, err := s.resolver.Resolve(ctx, text)
	if err != nil || addr == nil {
		if !eris.Is(err, geocoding.ErrNotFound) {
			s.log.Warn("address resolution failed", zap.String("query", text), zap.Error(err))
		}
		return nil, eris.Wrapf(geocoding.ErrNotFound, "search: resolve %q", text)
	}

	result := &models.SearchResult{Address: *addr}

	// Each branch writes only its own field and never fails the group.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.zones != nil {
			result.Zones = s.zones.Match(addr.Coordinate)
		}
		return nil
	})
	g.Go(func() error {
		if s.stations != nil {
			result.Station = s.stations.Locate(gctx, addr.Coordinate)
		}
		return nil
	})
	g.Go(func() error {
		if s.ancestry != nil {
			result.Ancestry = s.ancestry.Lookup(addr.Suburb)
		}
		return nil
	})
	_ = g.Wait()

	s.log.Info("search complete",
		zap.String("query", text),
		zap.Stringer("coordinate", addr.Coordinate),
		zap.String("suburb", addr.Suburb),
		zap.Bool("primary_zone", result.Zones.Primary != nil),
		zap.Bool("secondary_zone", result.Zones.Secondary != nil),
		zap.Bool("station", result.Station != nil),
		zap.Bool("ancestry", result.Ancestry != nil),
	)
	return result, nil
}

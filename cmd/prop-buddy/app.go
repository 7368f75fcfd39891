package main

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/ancestry"
	"github.com/ngmaloney/prop-buddy/internal/config"
	"github.com/ngmaloney/prop-buddy/internal/database"
	"github.com/ngmaloney/prop-buddy/internal/geocoding"
	"github.com/ngmaloney/prop-buddy/internal/models"
	"github.com/ngmaloney/prop-buddy/internal/search"
	"github.com/ngmaloney/prop-buddy/internal/stations"
	"github.com/ngmaloney/prop-buddy/internal/zonelookup"
)

func newGeocoder(c *config.Config) *geocoding.Geocoder {
	n := c.Nominatim
	return geocoding.NewGeocoder(
		geocoding.WithBaseURL(n.BaseURL),
		geocoding.WithUserAgent(n.UserAgent),
		geocoding.WithViewbox(n.Viewbox),
		geocoding.WithRateLimit(n.RateLimit),
		geocoding.WithHTTPClient(&http.Client{Timeout: n.Timeout()}),
		geocoding.WithDebounce(n.Debounce()),
		geocoding.WithSuggestLimit(n.SuggestLimit),
	)
}

func newLocator(c *config.Config) *stations.Locator {
	o := c.Overpass
	return stations.NewLocator(
		stations.WithBaseURL(o.BaseURL),
		stations.WithRadius(o.RadiusMeters),
		stations.WithHTTPClient(&http.Client{Timeout: o.Timeout()}),
	)
}

// datasets are the read-only lookup tables built once at startup.
type datasets struct {
	primary   *zonelookup.Collection
	secondary *zonelookup.Collection
	ancestry  *ancestry.Dataset
}

// loadDatasets reads zones and ancestry from files or the sqlite store,
// per store.driver. Missing or malformed data degrades to empty tables.
func loadDatasets(ctx context.Context, c *config.Config) (*datasets, error) {
	switch c.Store.Driver {
	case config.DriverFiles, "":
		return &datasets{
			primary:   zonelookup.LoadOrEmpty(c.Zones.PrimaryPath, models.ZonePrimary, c.Zones.NameProperty),
			secondary: zonelookup.LoadOrEmpty(c.Zones.SecondaryPath, models.ZoneSecondary, c.Zones.NameProperty),
			ancestry:  ancestry.LoadOrEmpty(c.Ancestry.Path),
		}, nil

	case config.DriverSQLite:
		db, err := database.Open(ctx, c.Store.DatabasePath)
		if err != nil {
			return nil, err
		}
		defer db.Close() //nolint:errcheck

		ds := &datasets{}
		if ds.primary, err = zonelookup.LoadCollectionFromDB(ctx, db, models.ZonePrimary); err != nil {
			return nil, err
		}
		if ds.secondary, err = zonelookup.LoadCollectionFromDB(ctx, db, models.ZoneSecondary); err != nil {
			return nil, err
		}
		if ds.ancestry, err = ancestry.LoadDatasetFromDB(ctx, db); err != nil {
			return nil, err
		}
		zap.L().Info("loaded datasets from store",
			zap.String("path", c.Store.DatabasePath),
			zap.Int("primary_zones", ds.primary.Len()),
			zap.Int("secondary_zones", ds.secondary.Len()),
			zap.Int("suburbs", ds.ancestry.Len()),
		)
		return ds, nil

	default:
		return nil, eris.Errorf("unknown store driver %q", c.Store.Driver)
	}
}

func (d *datasets) matcher() (*zonelookup.Matcher, error) {
	m := zonelookup.NewMatcher()
	if err := m.Initialize(d.primary, d.secondary); err != nil {
		return nil, err
	}
	return m, nil
}

// app bundles the wired collaborators a command needs.
type app struct {
	geocoder *geocoding.Geocoder
	locator  *stations.Locator
	matcher  *zonelookup.Matcher
	lookup   *ancestry.Lookup
	service  *search.Service
}

func newApp(ctx context.Context, c *config.Config) (*app, error) {
	if err := c.Validate("search"); err != nil {
		return nil, err
	}

	ds, err := loadDatasets(ctx, c)
	if err != nil {
		return nil, eris.Wrap(err, "load datasets")
	}
	m, err := ds.matcher()
	if err != nil {
		return nil, err
	}

	a := &app{
		geocoder: newGeocoder(c),
		locator:  newLocator(c),
		matcher:  m,
		lookup:   ancestry.NewLookup(ds.ancestry),
	}
	a.service = search.NewService(a.geocoder, a.matcher, a.locator, a.lookup,
		search.WithTimeout(c.Search.Timeout()))
	return a, nil
}

package search

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/prop-buddy/internal/ancestry"
	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/geocoding"
	"github.com/ngmaloney/prop-buddy/internal/models"
	"github.com/ngmaloney/prop-buddy/internal/stations"
	"github.com/ngmaloney/prop-buddy/internal/zonelookup"
)

var flindersSt = geo.Coordinate{Latitude: -37.8183, Longitude: 144.9671}

type fakeResolver struct {
	match *models.AddressMatch
	err   error
}

func (f fakeResolver) Resolve(context.Context, string) (*models.AddressMatch, error) {
	return f.match, f.err
}

type fakeZones struct {
	calls  atomic.Int32
	result models.ZoneMatchResult
}

func (f *fakeZones) Match(geo.Coordinate) models.ZoneMatchResult {
	f.calls.Add(1)
	return f.result
}

type fakeStations struct {
	calls atomic.Int32
	match *models.StationMatch
	wait  <-chan struct{}
}

func (f *fakeStations) Locate(ctx context.Context, _ geo.Coordinate) *models.StationMatch {
	f.calls.Add(1)
	if f.wait != nil {
		select {
		case <-f.wait:
		case <-ctx.Done():
			return nil
		}
	}
	return f.match
}

type fakeAncestry struct {
	calls  atomic.Int32
	suburb string
	record *models.AncestryRecord
}

func (f *fakeAncestry) Lookup(suburb string) *models.AncestryRecord {
	f.calls.Add(1)
	f.suburb = suburb
	return f.record
}

func flindersAddress() *models.AddressMatch {
	return &models.AddressMatch{
		Coordinate:  flindersSt,
		DisplayName: "Flinders Street Station, Melbourne VIC 3000",
		Suburb:      "Melbourne",
	}
}

func TestSearchAssemblesResult(t *testing.T) {
	primary := &models.ZonePolygon{SchoolName: "City Primary", ZoneType: models.ZonePrimary}
	zones := &fakeZones{result: models.ZoneMatchResult{Primary: primary}}
	st := &fakeStations{match: &models.StationMatch{Station: models.StationCandidate{Name: "Flinders Street"}}}
	anc := &fakeAncestry{record: &models.AncestryRecord{SuburbKey: "Melbourne"}}

	svc := NewService(fakeResolver{match: flindersAddress()}, zones, st, anc)
	res, err := svc.Search(context.Background(), "Flinders Street Station, Melbourne")
	require.NoError(t, err)

	assert.Equal(t, flindersSt, res.Address.Coordinate)
	assert.Equal(t, primary, res.Zones.Primary)
	assert.Nil(t, res.Zones.Secondary)
	assert.Equal(t, "Flinders Street", res.Station.Station.Name)
	assert.Equal(t, "Melbourne", res.Ancestry.SuburbKey)
	assert.Equal(t, "Melbourne", anc.suburb)
}

func TestSearchNotFoundShortCircuits(t *testing.T) {
	tests := []struct {
		name     string
		resolver fakeResolver
	}{
		{"no candidates", fakeResolver{err: eris.Wrap(geocoding.ErrNotFound, "geocoding: no results")}},
		{"upstream failure", fakeResolver{err: eris.New("geocoding: nominatim returned status 503")}},
		{"nil match", fakeResolver{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones, st, anc := &fakeZones{}, &fakeStations{}, &fakeAncestry{}
			svc := NewService(tt.resolver, zones, st, anc)

			res, err := svc.Search(context.Background(), "nowhere")
			assert.Nil(t, res)
			assert.True(t, eris.Is(err, geocoding.ErrNotFound))
			assert.Zero(t, zones.calls.Load())
			assert.Zero(t, st.calls.Load())
			assert.Zero(t, anc.calls.Load())
		})
	}
}

func TestSearchBranchesDegradeIndependently(t *testing.T) {
	zones := &fakeZones{}
	st := &fakeStations{}
	anc := &fakeAncestry{record: &models.AncestryRecord{SuburbKey: "Melbourne"}}

	svc := NewService(fakeResolver{match: flindersAddress()}, zones, st, anc)
	res, err := svc.Search(context.Background(), "Flinders Street")
	require.NoError(t, err)

	assert.Nil(t, res.Zones.Primary)
	assert.Nil(t, res.Station)
	assert.NotNil(t, res.Ancestry)
}

func TestSearchRunsBranchesConcurrently(t *testing.T) {
	release := make(chan struct{})
	st := &fakeStations{wait: release, match: &models.StationMatch{}}
	anc := &fakeAncestry{}
	zones := &fakeZones{}

	svc := NewService(fakeResolver{match: flindersAddress()}, zones, st, anc)

	done := make(chan *models.SearchResult)
	go func() {
		res, _ := svc.Search(context.Background(), "Flinders Street")
		done <- res
	}()

	// The other branches finish while the station lookup is still blocked.
	require.Eventually(t, func() bool {
		return zones.calls.Load() == 1 && anc.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	select {
	case <-done:
		t.Fatal("search returned before every branch completed")
	default:
	}

	close(release)
	res := <-done
	require.NotNil(t, res)
	assert.NotNil(t, res.Station)
}

func TestSearchTimeoutBoundsStation(t *testing.T) {
	st := &fakeStations{wait: make(chan struct{}), match: &models.StationMatch{}}
	svc := NewService(fakeResolver{match: flindersAddress()}, &fakeZones{}, st, &fakeAncestry{},
		WithTimeout(20*time.Millisecond))

	res, err := svc.Search(context.Background(), "Flinders Street")
	require.NoError(t, err)
	assert.Nil(t, res.Station)
}

func TestSearchNilCollaborators(t *testing.T) {
	svc := NewService(fakeResolver{match: flindersAddress()}, nil, nil, nil)
	res, err := svc.Search(context.Background(), "Flinders Street")
	require.NoError(t, err)
	assert.Equal(t, models.ZoneMatchResult{}, res.Zones)
	assert.Nil(t, res.Station)
	assert.Nil(t, res.Ancestry)
}

// The concrete lookups satisfy the service interfaces.
var (
	_ Resolver       = (*geocoding.Geocoder)(nil)
	_ ZoneMatcher    = (*zonelookup.Matcher)(nil)
	_ StationLocator = (*stations.Locator)(nil)
	_ AncestryLookup = (*ancestry.Lookup)(nil)
)

func TestSearchWithRealLookups(t *testing.T) {
	primary := zonelookup.NewCollection(models.ZonePrimary, []models.ZonePolygon{{
		SchoolName: "City Primary",
		Geometry: geo.MultiPolygon{{{
			{Latitude: -37.83, Longitude: 144.95},
			{Latitude: -37.83, Longitude: 144.98},
			{Latitude: -37.81, Longitude: 144.98},
			{Latitude: -37.81, Longitude: 144.95},
		}}},
	}})
	secondary := zonelookup.NewCollection(models.ZoneSecondary, nil)
	m := zonelookup.NewMatcher()
	require.NoError(t, m.Initialize(primary, secondary))

	ds := ancestry.NewDataset([]models.AncestryRecord{{SuburbKey: "Melbourne", TotalPopulation: 54941}})

	svc := NewService(fakeResolver{match: flindersAddress()}, m, &fakeStations{}, ancestry.NewLookup(ds))
	res, err := svc.Search(context.Background(), "Flinders Street Station, Melbourne")
	require.NoError(t, err)

	require.NotNil(t, res.Zones.Primary)
	assert.Equal(t, "City Primary", res.Zones.Primary.SchoolName)
	assert.Nil(t, res.Zones.Secondary)
	assert.Equal(t, 54941, res.Ancestry.TotalPopulation)
}

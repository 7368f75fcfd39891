package zonelookup

import (
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

var flindersSt = geo.Coordinate{Latitude: -37.8183, Longitude: 144.9671}

// box builds a single-ring catchment spanning the given lon/lat ranges.
func box(name string, minLon, minLat, maxLon, maxLat float64) models.ZonePolygon {
	return models.ZonePolygon{
		SchoolName: name,
		Geometry: geo.MultiPolygon{{{
			{Latitude: minLat, Longitude: minLon},
			{Latitude: minLat, Longitude: maxLon},
			{Latitude: maxLat, Longitude: maxLon},
			{Latitude: maxLat, Longitude: minLon},
			{Latitude: minLat, Longitude: minLon},
		}}},
	}
}

func testCollections() (*Collection, *Collection) {
	primary := NewCollection(models.ZonePrimary, []models.ZonePolygon{
		box("Carlton Primary", 144.96, -37.80, 144.98, -37.78),
		box("City Primary", 144.95, -37.83, 144.98, -37.81),
	})
	secondary := NewCollection(models.ZoneSecondary, []models.ZonePolygon{
		box("Richmond Secondary", 145.00, -37.83, 145.02, -37.81),
	})
	return primary, secondary
}

func TestMatchPrimaryOnly(t *testing.T) {
	m := NewMatcher()
	require.NoError(t, m.Initialize(testCollections()))

	got := m.Match(flindersSt)
	require.NotNil(t, got.Primary)
	assert.Equal(t, "City Primary", got.Primary.SchoolName)
	assert.Equal(t, models.ZonePrimary, got.Primary.ZoneType)
	assert.Nil(t, got.Secondary)
}

func TestMatchBothAndNone(t *testing.T) {
	primary := NewCollection(models.ZonePrimary, []models.ZonePolygon{box("P", 0, 0, 1, 1)})
	secondary := NewCollection(models.ZoneSecondary, []models.ZonePolygon{box("S", 0, 0, 2, 2)})
	m := NewMatcher()
	require.NoError(t, m.Initialize(primary, secondary))

	got := m.Match(geo.Coordinate{Latitude: 0.5, Longitude: 0.5})
	require.NotNil(t, got.Primary)
	require.NotNil(t, got.Secondary)
	assert.Equal(t, "P", got.Primary.SchoolName)
	assert.Equal(t, "S", got.Secondary.SchoolName)

	none := m.Match(geo.Coordinate{Latitude: 5, Longitude: 5})
	assert.Nil(t, none.Primary)
	assert.Nil(t, none.Secondary)
}

func TestMatchIsPure(t *testing.T) {
	m := NewMatcher()
	require.NoError(t, m.Initialize(testCollections()))

	first := m.Match(flindersSt)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, m.Match(flindersSt))
	}
}

func TestInitializeOnce(t *testing.T) {
	m := NewMatcher()
	assert.False(t, m.Initialized())
	assert.Equal(t, models.ZoneMatchResult{}, m.Match(flindersSt))

	require.NoError(t, m.Initialize(testCollections()))
	assert.True(t, m.Initialized())

	err := m.Initialize(nil, nil)
	assert.True(t, eris.Is(err, ErrAlreadyInitialized))
	// The original collections stay installed.
	assert.NotNil(t, m.Match(flindersSt).Primary)
}

func TestInitializeNilCollections(t *testing.T) {
	m := NewMatcher()
	require.NoError(t, m.Initialize(nil, nil))
	assert.Equal(t, models.ZoneMatchResult{}, m.Match(flindersSt))
	assert.Equal(t, ZoneMatches{}, m.MatchAll(flindersSt))
}

func TestOverlapFirstWinsAndMatchAll(t *testing.T) {
	primary := NewCollection(models.ZonePrimary, []models.ZonePolygon{
		box("Small", 0.4, 0.4, 0.6, 0.6),
		box("Big", 0, 0, 1, 1),
	})
	// Reverse order must flip the first match.
	reversed := NewCollection(models.ZonePrimary, []models.ZonePolygon{
		box("Big", 0, 0, 1, 1),
		box("Small", 0.4, 0.4, 0.6, 0.6),
	})
	p := geo.Coordinate{Latitude: 0.5, Longitude: 0.5}

	m := NewMatcher()
	require.NoError(t, m.Initialize(primary, nil))
	assert.Equal(t, "Small", m.Match(p).Primary.SchoolName)

	all := m.MatchAll(p)
	require.Len(t, all.Primary, 2)
	assert.Equal(t, "Big", all.Primary[1].SchoolName)
	assert.True(t, all.Overlapping())

	m2 := NewMatcher()
	require.NoError(t, m2.Initialize(reversed, nil))
	assert.Equal(t, "Big", m2.Match(p).Primary.SchoolName)
}

func TestIndexAgreesWithLinearScan(t *testing.T) {
	var zones []models.ZonePolygon
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			lon, lat := 144.0+float64(i)*0.1, -38.0+float64(j)*0.1
			zones = append(zones, box(fmt.Sprintf("Z%d-%d", i, j), lon, lat, lon+0.1, lat+0.1))
		}
	}
	c := NewCollection(models.ZonePrimary, zones)
	assert.Equal(t, 100, c.Len())

	for lon := 143.95; lon < 145.1; lon += 0.037 {
		for lat := -38.05; lat < -36.9; lat += 0.041 {
			p := geo.Coordinate{Latitude: lat, Longitude: lon}

			var want *models.ZonePolygon
			for i := range zones {
				if zones[i].Geometry.Contains(p) {
					z := zones[i]
					z.ZoneType = models.ZonePrimary
					want = &z
					break
				}
			}
			assert.Equal(t, want, c.First(p), "point %s", p)
		}
	}
}

func TestCollectionCopiesInput(t *testing.T) {
	zones := []models.ZonePolygon{box("A", 0, 0, 1, 1)}
	c := NewCollection(models.ZoneSecondary, zones)
	zones[0].SchoolName = "mutated"

	assert.Equal(t, "A", c.Zones()[0].SchoolName)
	assert.Equal(t, models.ZoneSecondary, c.ZoneType())

	var nilColl *Collection
	assert.Equal(t, 0, nilColl.Len())
	assert.Nil(t, nilColl.First(flindersSt))
}

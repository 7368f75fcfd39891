package zonelookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/prop-buddy/internal/database"
	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

func TestSaveAndLoadCollection(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	primary, secondary := testCollections()
	require.NoError(t, SaveCollection(ctx, db, primary))
	require.NoError(t, SaveCollection(ctx, db, secondary))

	n, err := database.TableRows(ctx, db, "zone_polygons")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	loaded, err := LoadCollectionFromDB(ctx, db, models.ZonePrimary)
	require.NoError(t, err)
	assert.Equal(t, primary.Zones(), loaded.Zones())

	hit := loaded.First(flindersSt)
	require.NotNil(t, hit)
	assert.Equal(t, "City Primary", hit.SchoolName)

	// Saving again replaces only that zone type.
	replacement := NewCollection(models.ZonePrimary, []models.ZonePolygon{box("Only", 0, 0, 1, 1)})
	require.NoError(t, SaveCollection(ctx, db, replacement))

	loaded, err = LoadCollectionFromDB(ctx, db, models.ZonePrimary)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "Only", loaded.Zones()[0].SchoolName)

	sec, err := LoadCollectionFromDB(ctx, db, models.ZoneSecondary)
	require.NoError(t, err)
	assert.Equal(t, 1, sec.Len())
}

func TestSaveCollectionNil(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, SaveCollection(ctx, db, nil))
}

func TestGeometryEncoding(t *testing.T) {
	mp := geo.MultiPolygon{
		{
			{{Latitude: -37.8, Longitude: 144.9}, {Latitude: -37.8, Longitude: 145.0}, {Latitude: -37.7, Longitude: 145.0}},
			{{Latitude: -37.78, Longitude: 144.95}, {Latitude: -37.77, Longitude: 144.96}, {Latitude: -37.76, Longitude: 144.95}},
		},
	}
	s, err := encodeGeometry(mp)
	require.NoError(t, err)
	assert.Contains(t, s, "[144.9,-37.8]")

	back, err := decodeGeometry(s)
	require.NoError(t, err)
	assert.Equal(t, mp, back)

	_, err = decodeGeometry("{")
	assert.Error(t, err)
}

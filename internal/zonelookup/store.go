package zonelookup

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

// SaveCollection replaces the stored catchments of c's zone type, keeping
// collection order. The zone_polygons table must exist (database.EnsureSchema).
func SaveCollection(ctx context.Context, db *sql.DB, c *Collection) error {
	if c == nil {
		return eris.New("zonelookup: nil collection")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "zonelookup: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM zone_polygons WHERE zone_type = ?", string(c.zoneType)); err != nil {
		return eris.Wrap(err, "zonelookup: clear zones")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO zone_polygons (
			zone_type, school_name, geometry,
			bbox_min_lat, bbox_max_lat, bbox_min_lon, bbox_max_lon
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "zonelookup: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	count := 0
	for _, z := range c.zones {
		geometryJSON, err := encodeGeometry(z.Geometry)
		if err != nil {
			return err
		}
		b := geo.BoundsOf(z.Geometry)
		if _, err := stmt.ExecContext(ctx,
			string(c.zoneType), z.SchoolName, geometryJSON,
			b.MinLat, b.MaxLat, b.MinLon, b.MaxLon,
		); err != nil {
			return eris.Wrapf(err, "zonelookup: insert zone %q", z.SchoolName)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "zonelookup: commit")
	}

	zap.L().Info("zonelookup: stored zones",
		zap.String("zone_type", string(c.zoneType)),
		zap.Int("zones", count),
	)
	return nil
}

// LoadCollectionFromDB reads the stored catchments of one zone type in
// insertion order.
func LoadCollectionFromDB(ctx context.Context, db *sql.DB, zoneType models.ZoneType) (*Collection, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT school_name, geometry FROM zone_polygons WHERE zone_type = ? ORDER BY id",
		string(zoneType),
	)
	if err != nil {
		return nil, eris.Wrap(err, "zonelookup: query zones")
	}
	defer rows.Close() //nolint:errcheck

	var zones []models.ZonePolygon
	for rows.Next() {
		var name, geometryJSON string
		if err := rows.Scan(&name, &geometryJSON); err != nil {
			return nil, eris.Wrap(err, "zonelookup: scan zone")
		}
		mp, err := decodeGeometry(geometryJSON)
		if err != nil {
			zap.L().Warn("zonelookup: skipping stored zone", zap.String("school", name), zap.Error(err))
			continue
		}
		zones = append(zones, models.ZonePolygon{SchoolName: name, Geometry: mp})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "zonelookup: iterate zones")
	}

	return NewCollection(zoneType, zones), nil
}

// Stored geometry is [part][ring][vertex][lon, lat], mirroring GeoJSON.
func encodeGeometry(mp geo.MultiPolygon) (string, error) {
	parts := make([][][][2]float64, len(mp))
	for i, poly := range mp {
		parts[i] = make([][][2]float64, len(poly))
		for j, ring := range poly {
			parts[i][j] = make([][2]float64, len(ring))
			for k, c := range ring {
				parts[i][j][k] = [2]float64{c.Longitude, c.Latitude}
			}
		}
	}
	b, err := json.Marshal(parts)
	if err != nil {
		return "", eris.Wrap(err, "zonelookup: encode geometry")
	}
	return string(b), nil
}

func decodeGeometry(s string) (geo.MultiPolygon, error) {
	var parts [][][][2]float64
	if err := json.Unmarshal([]byte(s), &parts); err != nil {
		return nil, eris.Wrap(err, "zonelookup: decode geometry")
	}
	mp := make(geo.MultiPolygon, len(parts))
	for i, poly := range parts {
		mp[i] = make(geo.Polygon, len(poly))
		for j, ring := range poly {
			mp[i][j] = make(geo.Ring, len(ring))
			for k, c := range ring {
				mp[i][j][k] = geo.Coordinate{Latitude: c[1], Longitude: c[0]}
			}
		}
	}
	return mp, nil
}

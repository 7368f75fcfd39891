package zonelookup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

// DefaultNameProperty is the feature attribute holding the school name.
const DefaultNameProperty = "School_Name"

// LoadFile reads a catchment collection from a GeoJSON FeatureCollection
// (.geojson/.json) or an ESRI shapefile (.shp). Coordinates must already be
// WGS84 longitude/latitude. Features without polygon geometry are skipped.
func LoadFile(path string, zoneType models.ZoneType, nameProperty string) (*Collection, error) {
	if !zoneType.Valid() {
		return nil, eris.Errorf("zonelookup: unknown zone type %q", zoneType)
	}
	if nameProperty == "" {
		nameProperty = DefaultNameProperty
	}

	var (
		zones []models.ZonePolygon
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		zones, err = loadGeoJSON(path, nameProperty)
	case ".shp":
		zones, err = loadShapefile(path, nameProperty)
	default:
		return nil, eris.Errorf("zonelookup: unsupported zone file %s", path)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("zonelookup: loaded zones",
		zap.String("zone_type", string(zoneType)),
		zap.String("path", path),
		zap.Int("zones", len(zones)),
	)
	return NewCollection(zoneType, zones), nil
}

// LoadOrEmpty is LoadFile that degrades to an empty collection, logging
// the failure, so a missing or malformed file never stops the process.
func LoadOrEmpty(path string, zoneType models.ZoneType, nameProperty string) *Collection {
	c, err := LoadFile(path, zoneType, nameProperty)
	if err != nil {
		zap.L().Error("zonelookup: malformed zone data, matching disabled for collection",
			zap.String("zone_type", string(zoneType)),
			zap.String("path", path),
			zap.Error(err),
		)
		return NewCollection(zoneType, nil)
	}
	return c
}

func loadGeoJSON(path, nameProperty string) ([]models.ZonePolygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zonelookup: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "zonelookup: parse geojson %s", path)
	}

	zones := make([]models.ZonePolygon, 0, len(fc.Features))
	var skipped int
	for _, f := range fc.Features {
		if f == nil {
			skipped++
			continue
		}
		mp, ok := multiPolygonFromGeom(f.Geometry)
		if !ok {
			skipped++
			continue
		}
		zones = append(zones, models.ZonePolygon{
			SchoolName: propertyString(f.Properties, nameProperty),
			Geometry:   mp,
		})
	}

	if skipped > 0 {
		zap.L().Debug("zonelookup: skipped geojson features",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return zones, nil
}

// multiPolygonFromGeom converts Polygon and MultiPolygon geometries.
func multiPolygonFromGeom(g geom.T) (geo.MultiPolygon, bool) {
	switch g := g.(type) {
	case *geom.Polygon:
		poly := polygonFromGeom(g)
		if poly == nil {
			return nil, false
		}
		return geo.MultiPolygon{poly}, true
	case *geom.MultiPolygon:
		var mp geo.MultiPolygon
		for i := 0; i < g.NumPolygons(); i++ {
			if poly := polygonFromGeom(g.Polygon(i)); poly != nil {
				mp = append(mp, poly)
			}
		}
		return mp, len(mp) > 0
	default:
		return nil, false
	}
}

func polygonFromGeom(p *geom.Polygon) geo.Polygon {
	if p == nil || p.NumLinearRings() == 0 {
		return nil
	}
	poly := make(geo.Polygon, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		ring := make(geo.Ring, 0, len(coords))
		for _, c := range coords {
			ring = append(ring, geo.Coordinate{Latitude: c.Y(), Longitude: c.X()})
		}
		poly = append(poly, ring)
	}
	if len(poly[0]) < 3 {
		return nil
	}
	return poly
}

// propertyString reads a feature attribute, falling back to a
// case-insensitive key match.
func propertyString(props map[string]interface{}, key string) string {
	v, ok := props[key]
	if !ok {
		for k, val := range props {
			if strings.EqualFold(k, key) {
				v, ok = val, true
				break
			}
		}
	}
	if !ok || v == nil {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

func loadShapefile(path, nameProperty string) ([]models.ZonePolygon, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zonelookup: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), nameProperty) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		zap.L().Warn("zonelookup: shapefile has no name field",
			zap.String("path", path),
			zap.String("field", nameProperty),
		)
	}

	var zones []models.ZonePolygon
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()
		polygon, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := multiPolygonFromShape(polygon)
		if len(mp) == 0 {
			skipped++
			continue
		}

		var name string
		if nameIdx >= 0 {
			name = strings.TrimSpace(strings.TrimRight(reader.ReadAttribute(n, nameIdx), "\x00"))
		}
		zones = append(zones, models.ZonePolygon{SchoolName: name, Geometry: mp})
	}

	if skipped > 0 {
		zap.L().Debug("zonelookup: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return zones, nil
}

// multiPolygonFromShape splits shapefile parts into rings. Shapefiles store
// outer rings clockwise and holes counter-clockwise; each hole is attached
// to the most recent outer ring.
func multiPolygonFromShape(p *shp.Polygon) geo.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	var mp geo.MultiPolygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 3 {
			continue
		}

		ring := make(geo.Ring, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, geo.Coordinate{Latitude: p.Points[j].Y, Longitude: p.Points[j].X})
		}

		if signedArea(ring) > 0 && len(mp) > 0 {
			last := len(mp) - 1
			mp[last] = append(mp[last], ring)
			continue
		}
		mp = append(mp, geo.Polygon{ring})
	}
	return mp
}

// signedArea is the shoelace area in lon/lat space; negative means clockwise.
func signedArea(r geo.Ring) float64 {
	var sum float64
	for i := range r {
		j := (i + 1) % len(r)
		sum += r[i].Longitude*r[j].Latitude - r[j].Longitude*r[i].Latitude
	}
	return sum / 2
}

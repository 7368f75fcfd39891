// Package geo holds the pure geometry used by zone matching and station
// search: coordinates, polygons, containment and great-circle distance.
package geo

import "fmt"

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within the WGS84 ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Latitude, c.Longitude)
}

// Ring is a closed or open sequence of vertices. The closing vertex is optional.
type Ring []Coordinate

// Polygon follows the GeoJSON convention: ring 0 is the outer boundary,
// any further rings are holes.
type Polygon []Ring

// MultiPolygon is a set of disjoint polygon parts.
type MultiPolygon []Polygon

// Contains reports whether any part of m contains p.
func (m MultiPolygon) Contains(p Coordinate) bool {
	for _, poly := range m {
		if PointInPolygon(p, poly) {
			return true
		}
	}
	return false
}

// Bounds is an axis-aligned box in degrees.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Contains reports whether p lies inside or on the box.
func (b Bounds) Contains(p Coordinate) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}

// Empty reports whether the box was never extended.
func (b Bounds) Empty() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}

// BoundsOf returns the box enclosing every outer ring of m.
// An empty MultiPolygon yields an Empty box.
func BoundsOf(m MultiPolygon) Bounds {
	b := Bounds{MinLat: 90, MinLon: 180, MaxLat: -90, MaxLon: -180}
	for _, poly := range m {
		if len(poly) == 0 {
			continue
		}
		for _, c := range poly[0] {
			if c.Latitude < b.MinLat {
				b.MinLat = c.Latitude
			}
			if c.Latitude > b.MaxLat {
				b.MaxLat = c.Latitude
			}
			if c.Longitude < b.MinLon {
				b.MinLon = c.Longitude
			}
			if c.Longitude > b.MaxLon {
				b.MaxLon = c.Longitude
			}
		}
	}
	return b
}

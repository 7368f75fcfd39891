// Package zonelookup answers which school catchments contain a coordinate.
package zonelookup

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

const (
	rtreeMinChildren = 4
	rtreeMaxChildren = 16

	// boundsPad keeps degenerate boxes valid for rtreego.NewRect.
	boundsPad = 1e-9
)

// indexedZone is the R-tree entry for one polygon's bounding box.
type indexedZone struct {
	idx  int
	rect rtreego.Rect
}

func (z *indexedZone) Bounds() rtreego.Rect {
	return z.rect
}

// Collection is an immutable, ordered set of catchments of one zone type.
// A nil *Collection behaves as an empty one.
type Collection struct {
	zoneType models.ZoneType
	zones    []models.ZonePolygon
	tree     *rtreego.Rtree
}

// NewCollection indexes zones in the given order. Polygons without usable
// geometry are kept in order but never match.
func NewCollection(zoneType models.ZoneType, zones []models.ZonePolygon) *Collection {
	c := &Collection{
		zoneType: zoneType,
		zones:    make([]models.ZonePolygon, len(zones)),
		tree:     rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren),
	}
	copy(c.zones, zones)

	for i := range c.zones {
		c.zones[i].ZoneType = zoneType
		b := geo.BoundsOf(c.zones[i].Geometry)
		if b.Empty() {
			continue
		}
		rect, err := rtreego.NewRect(
			rtreego.Point{b.MinLon - boundsPad, b.MinLat - boundsPad},
			[]float64{b.MaxLon - b.MinLon + 2*boundsPad, b.MaxLat - b.MinLat + 2*boundsPad},
		)
		if err != nil {
			zap.L().Debug("zonelookup: skipping unindexable zone",
				zap.String("school", c.zones[i].SchoolName),
				zap.Error(err),
			)
			continue
		}
		c.tree.Insert(&indexedZone{idx: i, rect: rect})
	}
	return c
}

// ZoneType returns the schooling level of the collection.
func (c *Collection) ZoneType() models.ZoneType {
	if c == nil {
		return ""
	}
	return c.zoneType
}

// Len returns the number of catchments.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.zones)
}

// Zones returns a copy of the catchments in collection order.
func (c *Collection) Zones() []models.ZonePolygon {
	if c == nil {
		return nil
	}
	out := make([]models.ZonePolygon, len(c.zones))
	copy(out, c.zones)
	return out
}

// candidates returns the indexes of zones whose box contains p, ascending.
func (c *Collection) candidates(p geo.Coordinate) []int {
	if c.Len() == 0 {
		return nil
	}
	query, err := rtreego.NewRect(
		rtreego.Point{p.Longitude - boundsPad, p.Latitude - boundsPad},
		[]float64{2 * boundsPad, 2 * boundsPad},
	)
	if err != nil {
		return nil
	}

	hits := c.tree.SearchIntersect(query)
	idx := make([]int, 0, len(hits))
	for _, h := range hits {
		idx = append(idx, h.(*indexedZone).idx)
	}
	sort.Ints(idx)
	return idx
}

// First returns the first catchment in collection order containing p.
func (c *Collection) First(p geo.Coordinate) *models.ZonePolygon {
	for _, i := range c.candidates(p) {
		if c.zones[i].Geometry.Contains(p) {
			z := c.zones[i]
			return &z
		}
	}
	return nil
}

// All returns every catchment containing p, in collection order.
func (c *Collection) All(p geo.Coordinate) []models.ZonePolygon {
	var out []models.ZonePolygon
	for _, i := range c.candidates(p) {
		if c.zones[i].Geometry.Contains(p) {
			out = append(out, c.zones[i])
		}
	}
	return out
}

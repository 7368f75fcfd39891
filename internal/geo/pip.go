package geo

// PointInPolygon reports whether p lies inside poly using even-odd ray
// casting. A point inside any hole ring is outside the polygon.
//
// Boundary convention (half-open crossing rule): an edge is crossed when
// exactly one of its endpoints lies strictly north of p and the crossing
// longitude is strictly east of p. Points on an edge therefore classify
// the same way on every call, but not symmetrically: points on
// western/southern edges usually count as inside and points on
// eastern/northern edges as outside.
func PointInPolygon(p Coordinate, poly Polygon) bool {
	if len(poly) == 0 || !pointInRing(p, poly[0]) {
		return false
	}
	for _, hole := range poly[1:] {
		if pointInRing(p, hole) {
			return false
		}
	}
	return true
}

func pointInRing(p Coordinate, ring Ring) bool {
	n := len(ring)
	if n > 0 && ring[0] == ring[n-1] {
		n--
	}
	if n < 3 {
		return false
	}

	x, y := p.Longitude, p.Latitude
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Longitude, ring[i].Latitude
		xj, yj := ring[j].Longitude, ring[j].Latitude
		if (yi > y) != (yj > y) {
			// yi != yj here, so the division is safe.
			crossX := xi + (y-yi)*(xj-xi)/(yj-yi)
			if x < crossX {
				inside = !inside
			}
		}
	}
	return inside
}

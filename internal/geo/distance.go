package geo

import "github.com/umahmood/haversine"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b in kilometres.
func DistanceKm(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Latitude, Lon: a.Longitude},
		haversine.Coord{Lat: b.Latitude, Lon: b.Longitude},
	)
	return km
}

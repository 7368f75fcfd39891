package models

import "github.com/ngmaloney/prop-buddy/internal/geo"

// StationCandidate is a rail station normalized from a POI query element.
type StationCandidate struct {
	Name       string            `json:"name"`
	Coordinate geo.Coordinate    `json:"coordinate"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// StationMatch is the nearest station with straight-line derived estimates.
type StationMatch struct {
	Station         StationCandidate `json:"station"`
	DistanceKm      float64          `json:"distance_km"`
	WalkingMeters   int              `json:"walking_meters"`
	ETAMinutesToCBD int              `json:"eta_minutes_to_cbd"`
}

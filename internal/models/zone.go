package models

import "github.com/ngmaloney/prop-buddy/internal/geo"

// ZoneType identifies the schooling level of a catchment collection.
type ZoneType string

const (
	ZonePrimary   ZoneType = "primary"
	ZoneSecondary ZoneType = "secondary"
)

// Valid reports whether t is one of the known zone types.
func (t ZoneType) Valid() bool {
	return t == ZonePrimary || t == ZoneSecondary
}

// ZonePolygon is a single school catchment.
type ZonePolygon struct {
	SchoolName string           `json:"school_name"`
	ZoneType   ZoneType         `json:"zone_type"`
	Geometry   geo.MultiPolygon `json:"-"`
}

// ZoneMatchResult holds the catchment found in each collection, if any.
type ZoneMatchResult struct {
	Primary   *ZonePolygon `json:"primary,omitempty"`
	Secondary *ZonePolygon `json:"secondary,omitempty"`
}

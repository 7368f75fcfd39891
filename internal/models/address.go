package models

import "github.com/ngmaloney/prop-buddy/internal/geo"

// AddressMatch is the resolved form of one free-text address.
type AddressMatch struct {
	Coordinate  geo.Coordinate `json:"coordinate"`
	DisplayName string         `json:"display_name"`
	Suburb      string         `json:"suburb,omitempty"` // Empty when the geocoder gave no locality
}

// Suggestion is one autocomplete candidate for a partially typed address.
type Suggestion struct {
	Title      string         `json:"title"`
	Coordinate geo.Coordinate `json:"coordinate"`
	ID         string         `json:"id"` // Geocoder place id, only used to dedupe
}

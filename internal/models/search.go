package models

// SearchResult is everything one address search produced.
// Station and Ancestry are nil when nothing was found.
type SearchResult struct {
	Address  AddressMatch    `json:"address"`
	Zones    ZoneMatchResult `json:"zones"`
	Station  *StationMatch   `json:"station,omitempty"`
	Ancestry *AncestryRecord `json:"ancestry,omitempty"`
}

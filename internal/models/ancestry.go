package models

// AncestryShare is one ancestry group and its share of a suburb's population.
type AncestryShare struct {
	Group   string  `json:"group"`
	Percent float64 `json:"percent"`
}

// AncestryRecord is the demographic summary for one suburb.
type AncestryRecord struct {
	SuburbKey       string          `json:"suburb"`
	TotalPopulation int             `json:"total_population"`
	Ancestries      []AncestryShare `json:"ancestries"`
}

package zonelookup

import (
	"sync/atomic"

	"github.com/rotisserie/eris"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

// ErrAlreadyInitialized is returned by every Initialize call after the first.
var ErrAlreadyInitialized = eris.New("zonelookup: matcher already initialized")

type zoneSets struct {
	primary   *Collection
	secondary *Collection
}

// Matcher answers containment queries against the primary and secondary
// catchment collections. Collections are installed once and then only read.
//
// Within one collection catchments are assumed not to overlap; Match
// returns the first hit in collection order and MatchAll exposes every hit.
type Matcher struct {
	sets atomic.Pointer[zoneSets]
}

// NewMatcher creates an uninitialized matcher. Until Initialize is called
// every query yields an empty result.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Initialize installs the two collections. Nil collections are treated as empty.
func (m *Matcher) Initialize(primary, secondary *Collection) error {
	if !m.sets.CompareAndSwap(nil, &zoneSets{primary: primary, secondary: secondary}) {
		return ErrAlreadyInitialized
	}
	return nil
}

// Initialized reports whether Initialize has succeeded.
func (m *Matcher) Initialized() bool {
	return m.sets.Load() != nil
}

// Match returns, for each collection independently, the first catchment containing p.
func (m *Matcher) Match(p geo.Coordinate) models.ZoneMatchResult {
	s := m.sets.Load()
	if s == nil {
		return models.ZoneMatchResult{}
	}
	return models.ZoneMatchResult{
		Primary:   s.primary.First(p),
		Secondary: s.secondary.First(p),
	}
}

// ZoneMatches lists every catchment containing a point, per collection.
type ZoneMatches struct {
	Primary   []models.ZonePolygon
	Secondary []models.ZonePolygon
}

// Overlapping reports whether either collection had more than one hit.
func (z ZoneMatches) Overlapping() bool {
	return len(z.Primary) > 1 || len(z.Secondary) > 1
}

// MatchAll returns every catchment containing p, per collection.
func (m *Matcher) MatchAll(p geo.Coordinate) ZoneMatches {
	s := m.sets.Load()
	if s == nil {
		return ZoneMatches{}
	}
	return ZoneMatches{
		Primary:   s.primary.All(p),
		Secondary: s.secondary.All(p),
	}
}

// Package stations finds the nearest rail station to a coordinate using the
// Overpass API.
package stations

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

const (
	DefaultBaseURL      = "https://overpass-api.de/api/interpreter"
	DefaultRadiusMeters = 5000

	// UnnamedStation labels stations whose tags carry no name.
	UnnamedStation = "Unnamed Station"

	// Minutes of travel to the CBD per straight-line kilometre.
	cbdMinutesPerKm = 15
)

// ErrNoStation is returned by Nearest when no station with a usable
// coordinate lies within the search radius.
var ErrNoStation = eris.New("stations: no station found")

// Locator queries Overpass for rail stations around a coordinate.
type Locator struct {
	baseURL    string
	httpClient *http.Client
	radius     int
	log        *zap.Logger
}

// Option configures the Locator.
type Option func(*Locator)

// WithBaseURL points the locator at a different Overpass interpreter.
func WithBaseURL(u string) Option {
	return func(l *Locator) {
		l.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *Locator) {
		l.httpClient = hc
	}
}

// WithRadius sets the search radius in metres. Non-positive values are ignored.
func WithRadius(meters int) Option {
	return func(l *Locator) {
		if meters > 0 {
			l.radius = meters
		}
	}
}

// NewLocator creates a station locator.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		radius: DefaultRadiusMeters,
		log:    zap.L().With(zap.String("component", "stations")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// element is one Overpass result. Nodes carry lat/lon directly; ways and
// relations only carry a center when queried with "out center".
type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

// candidate normalizes an element. ok is false when it has no coordinate.
func (e element) candidate() (models.StationCandidate, bool) {
	var c geo.Coordinate
	switch {
	case e.Lat != nil && e.Lon != nil:
		c = geo.Coordinate{Latitude: *e.Lat, Longitude: *e.Lon}
	case e.Center != nil:
		c = geo.Coordinate{Latitude: e.Center.Lat, Longitude: e.Center.Lon}
	default:
		return models.StationCandidate{}, false
	}

	name := strings.TrimSpace(e.Tags["name"])
	if name == "" {
		name = UnnamedStation
	}
	return models.StationCandidate{Name: name, Coordinate: c, Tags: e.Tags}, true
}

// buildQuery returns the Overpass QL selecting rail stations around p.
func buildQuery(p geo.Coordinate, radius int) string {
	around := fmt.Sprintf("(around:%d,%g,%g)", radius, p.Latitude, p.Longitude)
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		b.WriteString("  " + kind + `["railway"="station"]` + around + ";\n")
	}
	b.WriteString(");\nout center;")
	return b.String()
}

// Candidates fetches and normalizes the stations around p, in the order
// Overpass returned them.
func (l *Locator) Candidates(ctx context.Context, p geo.Coordinate) ([]models.StationCandidate, error) {
	form := url.Values{}
	form.Set("data", buildQuery(p, l.radius))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "stations: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "stations: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("stations: overpass returned status %d", resp.StatusCode)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "stations: decode response")
	}

	candidates := make([]models.StationCandidate, 0, len(body.Elements))
	for _, e := range body.Elements {
		if c, ok := e.candidate(); ok {
			candidates = append(candidates, c)
		}
	}

	l.log.Debug("overpass query",
		zap.Int("elements", len(body.Elements)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// Nearest returns the closest station to p. Equal distances keep the
// candidate Overpass returned first.
func (l *Locator) Nearest(ctx context.Context, p geo.Coordinate) (*models.StationMatch, error) {
	candidates, err := l.Candidates(ctx, p)
	if err != nil {
		return nil, err
	}
	return Closest(p, candidates)
}

// Closest picks the nearest candidate to p and derives the walking and CBD
// estimates from the straight-line distance. The estimates ignore the
// actual rail and street network.
func Closest(p geo.Coordinate, candidates []models.StationCandidate) (*models.StationMatch, error) {
	if len(candidates) == 0 {
		return nil, ErrNoStation
	}

	best := -1
	bestKm := math.Inf(1)
	for i, c := range candidates {
		if d := geo.DistanceKm(p, c.Coordinate); d < bestKm {
			best, bestKm = i, d
		}
	}
	if best < 0 {
		return nil, ErrNoStation
	}

	return &models.StationMatch{
		Station:         candidates[best],
		DistanceKm:      bestKm,
		WalkingMeters:   int(math.Round(bestKm * 1000)),
		ETAMinutesToCBD: int(math.Round(bestKm * cbdMinutesPerKm)),
	}, nil
}

// Locate is Nearest with every failure reported as no station.
func (l *Locator) Locate(ctx context.Context, p geo.Coordinate) *models.StationMatch {
	m, err := l.Nearest(ctx, p)
	if err != nil {
		if eris.Is(err, ErrNoStation) {
			l.log.Info("no station nearby", zap.Stringer("coordinate", p))
		} else {
			l.log.Warn("station lookup unavailable", zap.Stringer("coordinate", p), zap.Error(err))
		}
		return nil
	}
	return m
}

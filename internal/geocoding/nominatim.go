// Package geocoding resolves free-text addresses to coordinates with the
// Nominatim search API.
package geocoding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "PropBuddy/1.0" // Required by Nominatim ToS

	// DefaultViewbox covers greater Melbourne (lon,lat,lon,lat).
	DefaultViewbox = "144.5,-38.5,145.5,-37.5"
)

// ErrNotFound is returned when the geocoder has no candidate for an address.
var ErrNotFound = eris.New("geocoding: address not found")

// suburbFields lists address keys in the order they are tried for a suburb.
var suburbFields = []string{"suburb", "town", "village", "city_district", "city", "locality"}

// Geocoder converts addresses to coordinates
type Geocoder struct {
	baseURL      string
	userAgent    string
	viewbox      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	debounce     time.Duration
	suggestLimit int
}

// Option configures the Geocoder.
type Option func(*Geocoder)

// WithBaseURL points the geocoder at a different Nominatim instance.
func WithBaseURL(u string) Option {
	return func(g *Geocoder) {
		g.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Geocoder) {
		g.httpClient = hc
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(g *Geocoder) {
		g.userAgent = ua
	}
}

// WithViewbox restricts results to a lon,lat,lon,lat box.
func WithViewbox(vb string) Option {
	return func(g *Geocoder) {
		g.viewbox = vb
	}
}

// WithRateLimit sets the requests-per-second limit. Values <= 0 disable it.
func WithRateLimit(rps float64) Option {
	return func(g *Geocoder) {
		if rps <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewGeocoder creates a new geocoder
func NewGeocoder(opts ...Option) *Geocoder {
	g := &Geocoder{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		viewbox:   DefaultViewbox,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:      rate.NewLimiter(1, 1), // Nominatim policy: 1 req/s
		debounce:     DefaultDebounce,
		suggestLimit: DefaultSuggestLimit,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// nominatimResponse represents one Nominatim search result
type nominatimResponse struct {
	PlaceID     json.Number       `json:"place_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

func (r nominatimResponse) coordinate() (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "geocoding: parse latitude")
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "geocoding: parse longitude")
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}

// Resolve geocodes text to the single best match inside the viewbox.
func (g *Geocoder) Resolve(ctx context.Context, text string) (*models.AddressMatch, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, ErrNotFound
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("viewbox", g.viewbox)
	params.Set("bounded", "1")

	results, err := g.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "geocoding: no results for %q", query)
	}

	coord, err := results[0].coordinate()
	if err != nil {
		return nil, err
	}

	return &models.AddressMatch{
		Coordinate:  coord,
		DisplayName: results[0].DisplayName,
		Suburb:      suburbOf(results[0].Address),
	}, nil
}

// search runs one throttled request against the /search endpoint.
func (g *Geocoder) search(ctx context.Context, params url.Values) ([]nominatimResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocoding: rate limit")
	}

	reqURL := g.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocoding: build request")
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocoding: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocoding: nominatim returned status %d", resp.StatusCode)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, eris.Wrap(err, "geocoding: decode response")
	}

	zap.L().Debug("geocoding: nominatim search",
		zap.String("q", params.Get("q")),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// suburbOf picks the first populated locality field.
func suburbOf(addr map[string]string) string {
	for _, key := range suburbFields {
		if v := strings.TrimSpace(addr[key]); v != "" {
			return v
		}
	}
	return ""
}

package geocoding

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/models"
)

const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultSuggestLimit = 5

	// MinSuggestLength is the shortest trimmed input that triggers a lookup.
	MinSuggestLength = 3
)

// ErrSuperseded is returned by Suggest when a newer call replaced this one.
var ErrSuperseded = eris.New("geocoding: suggestion superseded")

// WithDebounce sets how long Suggest waits for further input.
func WithDebounce(d time.Duration) Option {
	return func(g *Geocoder) {
		g.debounce = d
	}
}

// WithSuggestLimit sets the maximum number of suggestions per request.
func WithSuggestLimit(n int) Option {
	return func(g *Geocoder) {
		if n > 0 {
			g.suggestLimit = n
		}
	}
}

// Suggester debounces autocomplete lookups for one input field. Each call
// to Suggest starts a new generation; older pending or in-flight calls
// return ErrSuperseded and never deliver results.
type Suggester struct {
	geocoder *Geocoder

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewSuggester creates a Suggester backed by g.
func (g *Geocoder) NewSuggester() *Suggester {
	return &Suggester{geocoder: g}
}

// Suggest returns up to the configured number of address suggestions for
// text. Inputs shorter than MinSuggestLength return nil without a request.
func (s *Suggester) Suggest(ctx context.Context, text string) ([]models.Suggestion, error) {
	query := strings.TrimSpace(text)

	gen, ctx, cancel := s.begin(ctx)
	defer cancel()

	if len([]rune(query)) < MinSuggestLength {
		return nil, nil
	}

	timer := time.NewTimer(s.geocoder.debounce)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, s.doneErr(gen, ctx)
	case <-timer.C:
	}

	suggestions, err := s.geocoder.suggest(ctx, query)
	if s.stale(gen) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

// begin starts a new generation and cancels the previous one.
func (s *Suggester) begin(parent context.Context) (uint64, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	return s.gen, ctx, cancel
}

func (s *Suggester) stale(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.gen
}

func (s *Suggester) doneErr(gen uint64, ctx context.Context) error {
	if s.stale(gen) {
		return ErrSuperseded
	}
	return eris.Wrap(ctx.Err(), "geocoding: suggest")
}

// suggest issues the autocomplete request and dedupes by place id.
func (g *Geocoder) suggest(ctx context.Context, query string) ([]models.Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(g.suggestLimit))
	params.Set("viewbox", g.viewbox)
	params.Set("bounded", "1")
	params.Set("autocomplete", "1")

	results, err := g.search(ctx, params)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(results))
	suggestions := make([]models.Suggestion, 0, len(results))
	for _, r := range results {
		id := r.PlaceID.String()
		if id != "" && seen[id] {
			continue
		}
		coord, err := r.coordinate()
		if err != nil {
			zap.L().Debug("geocoding: skipping suggestion", zap.String("id", id), zap.Error(err))
			continue
		}
		seen[id] = true
		suggestions = append(suggestions, models.Suggestion{
			Title:      r.DisplayName,
			Coordinate: coord,
			ID:         id,
		})
	}
	return suggestions, nil
}

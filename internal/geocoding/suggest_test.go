package geocoding

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suggestResponse = `[
	{"place_id": 1, "lat": "-37.8183", "lon": "144.9671", "display_name": "Flinders Street Station"},
	{"place_id": 1, "lat": "-37.8183", "lon": "144.9671", "display_name": "Flinders Street Station"},
	{"place_id": 2, "lat": "-37.8170", "lon": "144.9660", "display_name": "Flinders Lane"}
]`

func TestSuggestShortInputSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `[]`)
	})
	s := g.NewSuggester()

	for _, in := range []string{"", "ab", "  fl  "} {
		got, err := s.Suggest(context.Background(), in)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestSuggestDedupesByID(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "1", q.Get("autocomplete"))
		assert.Equal(t, "1", q.Get("bounded"))
		_, _ = io.WriteString(w, suggestResponse)
	})
	g.debounce = 10 * time.Millisecond

	got, err := g.NewSuggester().Suggest(context.Background(), "flinders")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "Flinders Street Station", got[0].Title)
	assert.Equal(t, "2", got[1].ID)
}

func TestSuggestDebounceIssuesOneRequest(t *testing.T) {
	var (
		calls   atomic.Int32
		mu      sync.Mutex
		queries []string
	)
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		mu.Unlock()
		_, _ = io.WriteString(w, suggestResponse)
	})
	s := g.NewSuggester()

	inputs := []string{"fli", "flin", "flinders"}
	errs := make([]error, len(inputs))
	results := make([]int, len(inputs))

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in string) {
			defer wg.Done()
			got, err := s.Suggest(context.Background(), in)
			errs[i] = err
			results[i] = len(got)
		}(i, in)
		time.Sleep(50 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"flinders"}, queries)
	assert.True(t, eris.Is(errs[0], ErrSuperseded))
	assert.True(t, eris.Is(errs[1], ErrSuperseded))
	assert.NoError(t, errs[2])
	assert.Equal(t, 2, results[2])
}

func TestSuggestDiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			<-release
		}
		_, _ = io.WriteString(w, suggestResponse)
	})
	g.debounce = time.Millisecond
	s := g.NewSuggester()

	first := make(chan error, 1)
	go func() {
		_, err := s.Suggest(context.Background(), "flinders st")
		first <- err
	}()

	// Wait for the first request to be in flight before superseding it.
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	got, err := s.Suggest(context.Background(), "flinders lane")
	close(release)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, eris.Is(<-first, ErrSuperseded))
}

func TestSuggestParentCancelled(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.NewSuggester().Suggest(ctx, "flinders")
	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrSuperseded))
}

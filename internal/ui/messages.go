package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/prop-buddy/internal/models"
)

// Searcher runs a full address search.
type Searcher interface {
	Search(ctx context.Context, text string) (*models.SearchResult, error)
}

// Suggester returns address completions for partial input.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]models.Suggestion, error)
}

// searchDoneMsg is sent when a search completes
type searchDoneMsg struct {
	query  string
	result *models.SearchResult
	err    error
}

// suggestionsMsg carries completions for the input they were requested for
type suggestionsMsg struct {
	query string
	items []models.Suggestion
	err   error
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}

// runSearch performs the search in the background
func runSearch(s Searcher, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := s.Search(ctx, query)
		return searchDoneMsg{query: query, result: result, err: err}
	}
}

// fetchSuggestions asks for completions. The suggester debounces, so only the
// last of a burst of keystrokes reaches the network.
func fetchSuggestions(s Suggester, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		items, err := s.Suggest(ctx, query)
		return suggestionsMsg{query: query, items: items, err: err}
	}
}

// Package ui is the interactive terminal front end: an address box with
// live suggestions and a result screen.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/geocoding"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

// AppState represents the current state of the application
type AppState int

const (
	StateSearch  AppState = iota // Typing an address
	StateLoading                 // Search in flight
	StateDisplay                 // Showing a result
	StateError                   // Error state
)

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int
	err    error

	// Search
	searchInput textinput.Model
	searchQuery string // Last submitted query
	searcher    Searcher

	// Suggestions
	suggester      Suggester
	suggestions    []models.Suggestion
	suggestionList list.Model
	// highlighted is true once the user moves into the suggestion list.
	highlighted bool

	result  *models.SearchResult
	spinner spinner.Model

	// autoSearch runs searchQuery from Init, for shared text.
	autoSearch bool
}

// NewModel creates a new application model
func NewModel(searcher Searcher, suggester Suggester) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter a Melbourne address (e.g. 1 Flinders St, Melbourne)..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		state:       StateSearch,
		searchInput: ti,
		searcher:    searcher,
		suggester:   suggester,
		spinner:     s,
	}
}

// WithQuery pre-fills the address box and searches it on start.
func (m Model) WithQuery(q string) Model {
	q = strings.TrimSpace(q)
	if q == "" {
		return m
	}
	m.searchInput.SetValue(q)
	m.searchQuery = q
	m.autoSearch = true
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if m.autoSearch && m.searcher != nil {
		return tea.Batch(m.spinner.Tick, runSearch(m.searcher, m.searchQuery))
	}
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		if len(m.suggestions) > 0 {
			m.suggestionList.SetWidth(msg.Width - 4)
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case suggestionsMsg:
		return m.handleSuggestions(msg), nil

	case searchDoneMsg:
		if msg.err != nil {
			if eris.Is(msg.err, geocoding.ErrNotFound) {
				m.err = fmt.Errorf("address not found: %s", msg.query)
			} else {
				m.err = fmt.Errorf("search failed: %w", msg.err)
			}
			m.state = StateError
			return m, nil
		}
		m.result = msg.result
		m.state = StateDisplay
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		// Global keys
		if keyMsg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.state {
		case StateSearch:
			return m.handleSearchInput(keyMsg)

		case StateDisplay:
			switch keyMsg.String() {
			case "q":
				return m, tea.Quit
			case "s", "esc":
				return m.resetSearch(), textinput.Blink
			}
			return m, nil

		case StateError:
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			// Any other key returns to search
			m.state = StateSearch
			m.err = nil
			m.searchInput.Focus()
			return m, textinput.Blink

		case StateLoading:
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateLoading:
		m.spinner, cmd = m.spinner.Update(msg)
	case StateSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

// handleSearchInput handles keyboard input in search state
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		query := strings.TrimSpace(m.searchInput.Value())
		if m.highlighted {
			if item, ok := m.suggestionList.SelectedItem().(suggestionItem); ok {
				query = item.s.Title
				m.searchInput.SetValue(query)
			}
		}
		if query == "" {
			return m, nil
		}
		return m.startSearch(query)

	case tea.KeyDown:
		if len(m.suggestions) > 0 {
			if m.highlighted {
				m.suggestionList.CursorDown()
			}
			m.highlighted = true
		}
		return m, nil

	case tea.KeyUp:
		if m.highlighted {
			if m.suggestionList.Index() == 0 {
				m.highlighted = false
			} else {
				m.suggestionList.CursorUp()
			}
		}
		return m, nil

	case tea.KeyEsc:
		m.clearSuggestions()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	after := m.searchInput.Value()
	if after == before || m.suggester == nil {
		return m, cmd
	}
	m.highlighted = false
	return m, tea.Batch(cmd, fetchSuggestions(m.suggester, after))
}

// handleSuggestions installs completions for the current input. Results for
// older input or superseded requests are dropped.
func (m Model) handleSuggestions(msg suggestionsMsg) Model {
	if m.state != StateSearch || msg.query != m.searchInput.Value() {
		return m
	}
	if msg.err != nil {
		if !eris.Is(msg.err, geocoding.ErrSuperseded) {
			zap.L().Debug("ui: suggestions failed", zap.String("query", msg.query), zap.Error(msg.err))
			m.clearSuggestions()
		}
		return m
	}

	m.suggestions = msg.items
	m.highlighted = false
	if len(msg.items) == 0 {
		m.clearSuggestions()
		return m
	}
	width := m.width - 4
	if width < 20 {
		width = 60
	}
	m.suggestionList = createSuggestionList(msg.items, width)
	return m
}

func (m *Model) clearSuggestions() {
	m.suggestions = nil
	m.highlighted = false
	m.suggestionList = list.Model{}
}

func (m Model) startSearch(query string) (tea.Model, tea.Cmd) {
	m.searchQuery = query
	m.err = nil
	m.result = nil
	m.clearSuggestions()
	m.state = StateLoading
	if m.searcher == nil {
		return m, func() tea.Msg { return errMsg{err: fmt.Errorf("search is not configured")} }
	}
	return m, tea.Batch(m.spinner.Tick, runSearch(m.searcher, query))
}

func (m Model) resetSearch() Model {
	m.state = StateSearch
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.result = nil
	m.clearSuggestions()
	return m
}

// View renders the UI
func (m Model) View() string {
	switch m.state {
	case StateSearch:
		return m.viewSearch()
	case StateLoading:
		return m.viewLoading()
	case StateDisplay:
		return m.viewDisplay()
	case StateError:
		return m.viewError()
	}
	return ""
}

// viewSearch renders the search view
func (m Model) viewSearch() string {
	sections := []string{
		titleStyle.Render("🏠 Prop Buddy"),
		mutedStyle.Render("School zones, stations and ancestry for Melbourne addresses"),
		"",
		searchBoxStyle.Render(m.searchInput.View()),
	}

	if len(m.suggestions) > 0 {
		sections = append(sections, m.viewSuggestions())
	}

	sections = append(sections, helpStyle.Render("Enter: Search • ↑/↓: Suggestions • Esc: Hide suggestions • Ctrl+C: Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewSuggestions() string {
	lines := make([]string, 0, len(m.suggestions))
	for i, s := range m.suggestions {
		if m.highlighted && i == m.suggestionList.Index() {
			lines = append(lines, successStyle.Render("› "+s.Title))
			continue
		}
		lines = append(lines, mutedStyle.Render("  "+s.Title))
	}
	return strings.Join(lines, "\n")
}

// viewLoading renders the loading view
func (m Model) viewLoading() string {
	return fmt.Sprintf("%s Searching %s...", m.spinner.View(), m.searchQuery)
}

// viewDisplay renders the result
func (m Model) viewDisplay() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderResult(m.result),
		helpStyle.Render("S/Esc: New search • Q: Quit"),
	)
}

// viewError renders the error view
func (m Model) viewError() string {
	errorText := "An unknown error occurred"
	if m.err != nil {
		errorText = m.err.Error()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render("✗ Error"),
		"",
		errorText,
		helpStyle.Render("Press any key to return to search • Q: Quit"),
	)
}

package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/prop-buddy/internal/models"
)

// suggestionItem wraps a Suggestion for use in a list
type suggestionItem struct {
	s models.Suggestion
}

// FilterValue implements list.Item
func (i suggestionItem) FilterValue() string { return i.s.Title }

// Title implements list.DefaultItem
func (i suggestionItem) Title() string { return i.s.Title }

// Description implements list.DefaultItem
func (i suggestionItem) Description() string { return i.s.Coordinate.String() }

// createSuggestionList creates a list.Model from suggestions
func createSuggestionList(items []models.Suggestion, width int) list.Model {
	listItems := make([]list.Item, len(items))
	for i, s := range items {
		listItems[i] = suggestionItem{s: s}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(listItems, delegate, width, len(items)+2)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)

	return l
}

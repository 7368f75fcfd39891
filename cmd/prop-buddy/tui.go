package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/prop-buddy/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive search with address suggestions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		sharedText, _ := cmd.Flags().GetString("shared-text")
		sharedURL, _ := cmd.Flags().GetString("shared-url")
		m := ui.NewModel(a.service, a.geocoder.NewSuggester()).
			WithQuery(addressFrom(nil, sharedText, sharedURL))

		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running tui: %w", err)
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().String("shared-text", "", "address text shared from another app; searched on start")
	tuiCmd.Flags().String("shared-url", "", "shared url, used when no text was shared")

	rootCmd.AddCommand(tuiCmd)
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/prop-buddy/internal/models"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <partial address...>",
	Short: "List address completions for partial input",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("search"); err != nil {
			return err
		}

		items, err := newGeocoder(cfg).NewSuggester().Suggest(ctx, strings.Join(args, " "))
		if err != nil {
			return eris.Wrap(err, "suggest")
		}
		if len(items) == 0 {
			fmt.Fprintln(os.Stderr, "No suggestions (at least 3 characters are needed).")
			return nil
		}

		formatSuggestions(os.Stdout, items)
		return nil
	},
}

func formatSuggestions(w io.Writer, items []models.Suggestion) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tLAT\tLON")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%.5f\t%.5f\n", s.Title, s.Coordinate.Latitude, s.Coordinate.Longitude)
	}
	_ = tw.Flush()
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

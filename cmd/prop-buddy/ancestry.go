package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngmaloney/prop-buddy/internal/ancestry"
	"github.com/ngmaloney/prop-buddy/internal/models"
)

var ancestryCmd = &cobra.Command{
	Use:   "ancestry <suburb...>",
	Short: "Show the top ancestries of a suburb",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDatasets(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		suburb := strings.Join(args, " ")
		rec := ancestry.NewLookup(ds.ancestry).Lookup(suburb)
		if rec == nil {
			fmt.Fprintf(os.Stderr, "No ancestry data for %q.\n", suburb)
			return nil
		}
		formatAncestry(os.Stdout, rec)
		return nil
	},
}

func formatAncestry(w io.Writer, rec *models.AncestryRecord) {
	fmt.Fprintf(w, "%s (population %d)\n", rec.SuburbKey, rec.TotalPopulation)
	for _, a := range rec.Ancestries {
		fmt.Fprintf(w, "  %-24s %5.1f%%\n", a.Group, a.Percent)
	}
}

func init() {
	rootCmd.AddCommand(ancestryCmd)
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngmaloney/prop-buddy/internal/zonelookup"
)

var zonesCmd = &cobra.Command{
	Use:   "zones [address...]",
	Short: "Show the school catchments containing an address",
	Long:  "Lists every primary and secondary catchment containing the point, flagging overlaps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("search"); err != nil {
			return err
		}

		ds, err := loadDatasets(ctx, cfg)
		if err != nil {
			return err
		}
		m, err := ds.matcher()
		if err != nil {
			return err
		}

		p, err := pointFrom(ctx, cmd, args, newGeocoder(cfg))
		if err != nil {
			return err
		}

		formatZoneMatches(os.Stdout, m.MatchAll(p))
		return nil
	},
}

func formatZoneMatches(w io.Writer, z zonelookup.ZoneMatches) {
	section := func(label string, names []string) {
		if len(names) == 0 {
			fmt.Fprintf(w, "%s: none\n", label)
			return
		}
		for _, n := range names {
			if n == "" {
				n = "Unknown"
			}
			fmt.Fprintf(w, "%s: %s\n", label, n)
		}
	}

	var primary, secondary []string
	for _, zp := range z.Primary {
		primary = append(primary, zp.SchoolName)
	}
	for _, zp := range z.Secondary {
		secondary = append(secondary, zp.SchoolName)
	}
	section("Primary", primary)
	section("Secondary", secondary)

	if z.Overlapping() {
		fmt.Fprintln(w, "warning: overlapping catchments; search reports the first listed")
	}
}

func init() {
	addPointFlags(zonesCmd)

	rootCmd.AddCommand(zonesCmd)
}

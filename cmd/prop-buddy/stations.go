package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/models"
	"github.com/ngmaloney/prop-buddy/internal/stations"
)

var stationsCmd = &cobra.Command{
	Use:   "stations [address...]",
	Short: "Find the nearest rail station",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("search"); err != nil {
			return err
		}

		p, err := pointFrom(ctx, cmd, args, newGeocoder(cfg))
		if err != nil {
			return err
		}

		loc := newLocator(cfg)
		all, _ := cmd.Flags().GetBool("all")
		if all {
			candidates, err := loc.Candidates(ctx, p)
			if err != nil {
				return eris.Wrap(err, "stations")
			}
			formatCandidates(os.Stdout, p, candidates)
			return nil
		}

		m, err := loc.Nearest(ctx, p)
		if eris.Is(err, stations.ErrNoStation) {
			fmt.Fprintln(os.Stderr, "No station found nearby.")
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "stations")
		}
		fmt.Fprintf(os.Stdout, "%s\n%.2f km • %d m walk • ~%d min to CBD\n",
			m.Station.Name, m.DistanceKm, m.WalkingMeters, m.ETAMinutesToCBD)
		return nil
	},
}

// formatCandidates lists stations in the order Overpass returned them.
func formatCandidates(w io.Writer, p geo.Coordinate, candidates []models.StationCandidate) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATION\tKM")
	for _, c := range candidates {
		fmt.Fprintf(tw, "%s\t%.2f\n", c.Name, geo.DistanceKm(p, c.Coordinate))
	}
	_ = tw.Flush()
}

func init() {
	addPointFlags(stationsCmd)
	stationsCmd.Flags().Bool("all", false, "list every station in range")

	rootCmd.AddCommand(stationsCmd)
}

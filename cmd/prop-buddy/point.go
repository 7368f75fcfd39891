package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/prop-buddy/internal/geo"
	"github.com/ngmaloney/prop-buddy/internal/geocoding"
)

func addPointFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "latitude (with --lon, skips geocoding)")
	cmd.Flags().Float64("lon", 0, "longitude (with --lat, skips geocoding)")
}

// pointFrom returns the --lat/--lon coordinate when both are set, otherwise
// geocodes the positional address.
func pointFrom(ctx context.Context, cmd *cobra.Command, args []string, g *geocoding.Geocoder) (geo.Coordinate, error) {
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		p := geo.Coordinate{Latitude: lat, Longitude: lon}
		if !p.Valid() {
			return geo.Coordinate{}, eris.Errorf("invalid coordinate %s", p)
		}
		return p, nil
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return geo.Coordinate{}, eris.New("an address or --lat/--lon is required")
	}
	addr, err := g.Resolve(ctx, text)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return addr.Coordinate, nil
}

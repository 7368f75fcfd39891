package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/ancestry"
	"github.com/ngmaloney/prop-buddy/internal/database"
	"github.com/ngmaloney/prop-buddy/internal/models"
	"github.com/ngmaloney/prop-buddy/internal/zonelookup"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Load zone and ancestry files into the sqlite store",
	Long: "Reads the configured zone files (GeoJSON or shapefile) and ancestry JSON and " +
		"writes them to store.database_path. Set store.driver=sqlite to search from it.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("provision"); err != nil {
			return err
		}

		primary, err := zonelookup.LoadFile(cfg.Zones.PrimaryPath, models.ZonePrimary, cfg.Zones.NameProperty)
		if err != nil {
			return eris.Wrap(err, "provision: primary zones")
		}
		secondary, err := zonelookup.LoadFile(cfg.Zones.SecondaryPath, models.ZoneSecondary, cfg.Zones.NameProperty)
		if err != nil {
			return eris.Wrap(err, "provision: secondary zones")
		}
		anc, err := ancestry.LoadFile(cfg.Ancestry.Path)
		if err != nil {
			return eris.Wrap(err, "provision: ancestry")
		}

		db, err := database.Open(ctx, cfg.Store.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		for _, c := range []*zonelookup.Collection{primary, secondary} {
			if err := zonelookup.SaveCollection(ctx, db, c); err != nil {
				return err
			}
		}
		if err := ancestry.SaveDataset(ctx, db, anc); err != nil {
			return err
		}

		zones, err := database.TableRows(ctx, db, "zone_polygons")
		if err != nil {
			return err
		}
		suburbs, err := database.TableRows(ctx, db, "ancestry")
		if err != nil {
			return err
		}

		zap.L().Info("provisioned dataset store", zap.String("path", cfg.Store.DatabasePath))
		fmt.Fprintf(os.Stdout, "Stored %d zones and %d suburbs in %s\n", zones, suburbs, cfg.Store.DatabasePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}

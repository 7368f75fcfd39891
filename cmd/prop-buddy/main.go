package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "prop-buddy",
	Short: "Melbourne address lookup for school zones, stations and ancestry",
	Long: "Resolves a Melbourne address and reports the primary and secondary school " +
		"catchments it falls in, the nearest rail station, and the suburb's ancestry mix.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

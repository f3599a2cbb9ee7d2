package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/locality-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "locality-cli",
	Short: "Geocoding and amenity intelligence for property projects",
	Long:  "Resolves project addresses to coordinates, picks a canonical location, gathers nearby amenities from OpenStreetMap and scores the locality.",
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

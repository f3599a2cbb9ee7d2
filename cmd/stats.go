package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/pipeline"
	"github.com/sells-group/locality-cli/internal/scoring"
	"github.com/sells-group/locality-cli/internal/store"
	"github.com/sells-group/locality-cli/pkg/amenity"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute per-type, per-radius amenity statistics around a point",
	Long: `Counts POIs and finds the nearest one for every configured amenity type and
radius. Each type is fetched once at its largest radius.

Example:
  stats --lat 21.19 --lon 81.28`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		lat, lon, ok := pointFromFlags(cmd)
		if !ok {
			return eris.New("stats: --lat and --lon are required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sc, err := loadScoreConfig()
		if err != nil {
			return eris.Wrap(err, "stats")
		}
		rows, err := pointStats(ctx, st, sc, lat, lon)
		if err != nil {
			return err
		}
		formatStats(os.Stdout, rows)
		return nil
	},
}

// pointStats computes stats rows for an ad hoc point using the configured
// radii plus everything sc reads.
func pointStats(ctx context.Context, st store.Store, sc scoring.Config, lat, lon float64) ([]model.AmenitySliceStats, error) {
	cache, err := newAmenityCache(st)
	if err != nil {
		return nil, eris.Wrap(err, "stats")
	}
	configured := cfg.Amenity.RadiiOrDefault()
	radii := pipeline.MergeRadii(configured, sc.RequiredRadii(pipeline.BankRadius(configured, sc.Bank.Types)))

	slices, err := amenity.NewStatsComputer(cache).Compute(ctx, lat, lon, radii)
	if err != nil {
		return nil, eris.Wrap(err, "stats")
	}
	rows := make([]model.AmenitySliceStats, 0, len(slices))
	for _, s := range slices {
		rows = append(rows, model.AmenitySliceStats{
			AmenityType: s.AmenityType,
			RadiusKM:    s.RadiusKM,
			Count:       s.Count,
			NearestKM:   s.NearestKM,
		})
	}
	return rows, nil
}

func init() {
	addPointFlags(statsCmd.Flags())
	rootCmd.AddCommand(statsCmd)
}

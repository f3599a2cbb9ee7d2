package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/locality-cli/internal/store"
	"github.com/sells-group/locality-cli/pkg/amenity"
)

var amenitiesCmd = &cobra.Command{
	Use:   "amenities",
	Short: "List POIs of one type around a point",
	Long: `Fetches points of interest of one amenity type within a radius, serving
fresh cached POIs when present and querying the provider otherwise.

Example:
  amenities --lat 21.19 --lon 81.28 --type hospital --radius 5`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		lat, lon, ok := pointFromFlags(cmd)
		if !ok {
			return eris.New("amenities: --lat and --lon are required")
		}
		typ, _ := cmd.Flags().GetString("type")
		if _, known := amenity.Tags(typ); !known {
			return eris.Errorf("amenities: unknown type %q (known: %v)", typ, amenity.Types())
		}
		radius, _ := cmd.Flags().GetFloat64("radius")
		if radius <= 0 {
			return eris.New("amenities: --radius must be > 0")
		}

		var st store.Store
		if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
			s, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			st = s
		}

		cache, err := newAmenityCache(st)
		if err != nil {
			return eris.Wrap(err, "amenities")
		}
		pois, err := cache.Fetch(ctx, typ, lat, lon, radius)
		if err != nil {
			return eris.Wrap(err, "amenities")
		}

		return writeJSON(os.Stdout, pois)
	},
}

func init() {
	f := amenitiesCmd.Flags()
	addPointFlags(f)
	f.String("type", "", "amenity type (grocery, hospital, school, transit_stop, ...)")
	f.Float64("radius", 1, "search radius in km")
	f.Bool("no-cache", false, "bypass the POI cache")

	rootCmd.AddCommand(amenitiesCmd)
}

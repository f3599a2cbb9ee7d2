package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/locality-cli/internal/store"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve an address to coordinates",
	Long: `Normalizes the address, then tries each fallback candidate (full address,
without address line, without locality, without tehsil) against the cache and
the configured provider until one matches.

Examples:
  geocode --address-line "Plot 12" --tehsil Raipur --district Durg --state-code CG
  geocode --text "Bhilai, Durg, Chhattisgarh, India" --no-cache`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var st store.Store
		if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
			s, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			st = s
		}

		client, err := newGeocodeClient(st)
		if err != nil {
			return eris.Wrap(err, "geocode")
		}

		if text, _ := cmd.Flags().GetString("text"); text != "" {
			r, fromCache, err := client.GeocodeText(ctx, text)
			if err != nil {
				return eris.Wrap(err, "geocode")
			}
			return writeJSON(os.Stdout, struct {
				Result    *geocode.Result `json:"result"`
				FromCache bool            `json:"from_cache"`
			}{r, fromCache})
		}

		parts := addressFromFlags(cmd)
		if parts.IsEmpty() {
			return eris.New("geocode: provide --text or at least one address flag")
		}
		res, err := client.Geocode(ctx, parts)
		if err != nil {
			return eris.Wrap(err, "geocode")
		}
		return writeJSON(os.Stdout, res)
	},
}

func init() {
	f := geocodeCmd.Flags()
	addAddressFlags(f)
	f.String("text", "", "geocode a free-text address as-is, skipping normalization")
	f.Bool("no-cache", false, "bypass the geocode cache")

	rootCmd.AddCommand(geocodeCmd)
}

package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/locality-cli/internal/location"
)

var locateCmd = &cobra.Command{
	Use:   "locate <project-id>",
	Short: "Re-select a project's canonical location from its candidates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		proj, err := st.GetProject(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "locate")
		}
		cands, err := st.ListLocations(ctx, proj.ID)
		if err != nil {
			return eris.Wrap(err, "locate")
		}

		best, ok := location.Select(cands)
		if !ok {
			return eris.Errorf("locate: project %s has no active candidate locations", proj.ID)
		}
		if location.Apply(proj, best) {
			if err := st.UpdateProject(ctx, proj); err != nil {
				return eris.Wrap(err, "locate")
			}
			zap.L().Info("canonical location updated",
				zap.String("project_id", proj.ID),
				zap.String("source", string(best.SourceType)),
			)
		}

		return writeJSON(os.Stdout, best)
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a point or re-score a project from its stored statistics",
	Long: `Computes daily needs, social infrastructure, connectivity, location and
overall scores. Missing statistics never fail scoring; they are reported in
missing_inputs.

Examples:
  # Score an ad hoc point
  score --lat 21.19 --lon 81.28

  # Re-score a project from its stored statistics and save the result
  score --project 3f1c... --save

  # Include an onsite amenity score
  score --project 3f1c... --onsite 60`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sc, err := loadScoreConfig()
		if err != nil {
			return eris.Wrap(err, "score")
		}
		if err := sc.Validate(); err != nil {
			return eris.Wrap(err, "score")
		}

		in := scoring.Inputs{}
		if cmd.Flags().Changed("onsite") {
			v, _ := cmd.Flags().GetFloat64("onsite")
			in.Onsite = &v
		}

		projectID, _ := cmd.Flags().GetString("project")
		switch {
		case projectID != "":
			in.Stats, err = st.ListAmenityStats(ctx, projectID)
			if err != nil {
				return eris.Wrap(err, "score: load stats")
			}
		default:
			lat, lon, ok := pointFromFlags(cmd)
			if !ok {
				return eris.New("score: provide --project or --lat and --lon")
			}
			in.Stats, err = pointStats(ctx, st, sc, lat, lon)
			if err != nil {
				return err
			}
		}

		comp := scoring.NewEngine(sc).Compute(in)

		if save, _ := cmd.Flags().GetBool("save"); save {
			if projectID == "" {
				return eris.New("score: --save requires --project")
			}
			ps := &model.ProjectScore{ProjectID: projectID, ScoreComputation: comp, ComputedAt: time.Now().UTC()}
			if err := st.SaveScore(ctx, ps); err != nil {
				return eris.Wrap(err, "score: save")
			}
		}

		return writeJSON(os.Stdout, comp)
	},
}

func init() {
	f := scoreCmd.Flags()
	addPointFlags(f)
	f.String("project", "", "re-score this project from its stored statistics")
	f.Float64("onsite", 0, "onsite amenity score in [0,100]; unscored when omitted")
	f.Bool("save", false, "persist the score (requires --project)")

	rootCmd.AddCommand(scoreCmd)
}

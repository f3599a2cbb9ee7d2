package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/locality-cli/internal/location"
	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/pipeline"
	"github.com/sells-group/locality-cli/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage stored projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a project from an address and/or a manual pin",
	Long: `Creates a project. --lat and --lon record a manual_pin candidate, which
outranks any geocoded location.

Example:
  project add --name "Green Acres" --locality Raipur --district Durg --state Chhattisgarh`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return eris.New("project add: --name is required")
		}
		addr := addressFromFlags(cmd)
		lat, lon, pinned := pointFromFlags(cmd)
		if addr.IsEmpty() && !pinned {
			return eris.New("project add: provide address flags or --lat and --lon")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		proj := &model.Project{Name: name, Address: addr}
		if err := st.CreateProject(ctx, proj); err != nil {
			return eris.Wrap(err, "project add")
		}

		if pinned {
			pin := &model.ProjectLocation{
				ProjectID:  proj.ID,
				SourceType: model.SourceManualPin,
				Latitude:   lat,
				Longitude:  lon,
				IsActive:   true,
			}
			if err := st.AddLocation(ctx, pin); err != nil {
				return eris.Wrap(err, "project add")
			}
			if location.Apply(proj, *pin) {
				if err := st.UpdateProject(ctx, proj); err != nil {
					return eris.Wrap(err, "project add")
				}
			}
		}

		zap.L().Info("project created", zap.String("project_id", proj.ID), zap.Bool("pinned", pinned))
		return writeJSON(os.Stdout, proj)
	},
}

var projectRunCmd = &cobra.Command{
	Use:   "run <project-id>",
	Short: "Geocode, locate and score one project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		proc, err := newProcessor(st)
		if err != nil {
			return err
		}

		regeocode, _ := cmd.Flags().GetBool("regeocode")
		res, err := proc.Process(ctx, args[0], pipeline.Options{Regeocode: regeocode})
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, res)
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project with its candidate locations, statistics and score",
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
			return eris.Wrap(err, "project show")
		}
		locs, err := st.ListLocations(ctx, proj.ID)
		if err != nil {
			return eris.Wrap(err, "project show")
		}
		stats, err := st.ListAmenityStats(ctx, proj.ID)
		if err != nil {
			return eris.Wrap(err, "project show")
		}
		score, err := st.GetScore(ctx, proj.ID)
		if err != nil && !eris.Is(err, store.ErrNotFound) {
			return eris.Wrap(err, "project show")
		}

		return writeJSON(os.Stdout, projectDetail{
			Project:   proj,
			Locations: locs,
			Stats:     stats,
			Score:     score,
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		filter := store.ProjectFilter{Status: model.GeocodingStatus(status), Limit: limit}
		if filter.Status != "" && !filter.Status.Valid() {
			return eris.Errorf("project list: unknown status %q", status)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		projects, err := st.ListProjects(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "project list")
		}
		formatProjects(os.Stdout, projects)
		return nil
	},
}

type projectDetail struct {
	Project   *model.Project            `json:"project"`
	Locations []model.ProjectLocation   `json:"locations"`
	Stats     []model.AmenitySliceStats `json:"stats"`
	Score     *model.ProjectScore       `json:"score,omitempty"`
}

func init() {
	f := projectAddCmd.Flags()
	f.String("name", "", "project name")
	addAddressFlags(f)
	addPointFlags(f)

	projectRunCmd.Flags().Bool("regeocode", false, "geocode again even when the project already succeeded")

	projectListCmd.Flags().String("status", "", "filter by geocoding status")
	projectListCmd.Flags().Int("limit", 100, "max number of projects to list")

	projectCmd.AddCommand(projectAddCmd, projectRunCmd, projectShowCmd, projectListCmd)
	rootCmd.AddCommand(projectCmd)
}

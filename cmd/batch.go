package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Geocode, locate and score stored projects",
	Long: `Processes every project matching --status (all when empty) with bounded
concurrency. One project failing never stops the batch. SIGINT or SIGTERM
stops scheduling new projects and waits for in-flight ones.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		opts := pipeline.BatchOptions{
			Status:      model.GeocodingStatus(cfg.Batch.Status),
			Limit:       cfg.Batch.Limit,
			Concurrency: cfg.Batch.MaxConcurrentProjects,
		}
		f := cmd.Flags()
		if f.Changed("status") {
			s, _ := f.GetString("status")
			opts.Status = model.GeocodingStatus(s)
		}
		if f.Changed("limit") {
			opts.Limit, _ = f.GetInt("limit")
		}
		if f.Changed("concurrency") {
			opts.Concurrency, _ = f.GetInt("concurrency")
		}
		opts.Options.Regeocode, _ = f.GetBool("regeocode")

		if opts.Status != "" && !opts.Status.Valid() {
			return eris.Errorf("batch: unknown status %q", opts.Status)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		proc, err := newProcessor(st)
		if err != nil {
			return err
		}

		summary, err := pipeline.RunBatch(ctx, st, opts, proc.Process)
		if summary != nil {
			formatBatchSummary(os.Stdout, summary)
		}
		return err
	},
}

func init() {
	f := batchCmd.Flags()
	f.String("status", "", "only process projects with this geocoding status (NOT_GEOCODED, PENDING, SUCCESS, FAILED)")
	f.Int("limit", 500, "max number of projects to process")
	f.Int("concurrency", 4, "projects processed in parallel")
	f.Bool("regeocode", false, "geocode again even when a project already succeeded")

	rootCmd.AddCommand(batchCmd)
}

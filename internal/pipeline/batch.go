package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/store"
)

// BatchOptions select and pace a batch run.
type BatchOptions struct {
	Status      model.GeocodingStatus
	Limit       int
	Concurrency int
	Options     Options
}

// BatchSummary counts batch outcomes.
type BatchSummary struct {
	Total     int   `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Unlocated int64 `json:"unlocated"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
}

// ProcessFunc processes one project.
type ProcessFunc func(ctx context.Context, projectID string, opts Options) (*Result, error)

// RunBatch lists projects matching opts and processes them with bounded
// concurrency. Individual failures are logged and counted; they never abort
// the batch. Cancellation is checked before each project starts, and projects
// not yet started when ctx is cancelled are counted as skipped.
func RunBatch(ctx context.Context, st store.Store, opts BatchOptions, process ProcessFunc) (*BatchSummary, error) {
	projects, err := st.ListProjects(ctx, store.ProjectFilter{Status: opts.Status, Limit: opts.Limit})
	if err != nil {
		return nil, eris.Wrap(err, "batch: list projects")
	}

	summary := &BatchSummary{Total: len(projects)}
	if len(projects) == 0 {
		zap.L().Info("batch: no projects to process")
		return summary, nil
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	zap.L().Info("batch: processing",
		zap.Int("projects", len(projects)),
		zap.Int("concurrency", concurrency),
	)

	var succeeded, unlocated, failed, skipped atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for _, proj := range projects {
		if ctx.Err() != nil {
			skipped.Add(1)
			continue
		}
		id := proj.ID
		g.Go(func() error {
			if ctx.Err() != nil {
				skipped.Add(1)
				return nil
			}
			log := zap.L().With(zap.String("project_id", id))

			res, err := process(ctx, id, opts.Options)
			if err != nil {
				failed.Add(1)
				log.Error("batch: project failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}
			if !res.Located() {
				unlocated.Add(1)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	summary.Succeeded = succeeded.Load()
	summary.Unlocated = unlocated.Load()
	summary.Failed = failed.Load()
	summary.Skipped = skipped.Load()

	zap.L().Info("batch: complete",
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("unlocated", summary.Unlocated),
		zap.Int64("failed", summary.Failed),
		zap.Int64("skipped", summary.Skipped),
	)

	if err := ctx.Err(); err != nil {
		return summary, eris.Wrap(err, "batch: cancelled")
	}
	return summary, nil
}

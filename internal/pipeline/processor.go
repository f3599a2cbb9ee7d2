// Package pipeline runs a project through geocoding, canonical location
// selection, amenity statistics and scoring, persisting each stage.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/locality-cli/internal/location"
	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/scoring"
	"github.com/sells-group/locality-cli/internal/store"
	"github.com/sells-group/locality-cli/pkg/amenity"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

// defaultBankRadiusKM is used for bank types when no radius is configured for them.
const defaultBankRadiusKM = 5

// Options tune a single Process call.
type Options struct {
	// Regeocode forces a provider lookup even when the project already
	// geocoded successfully.
	Regeocode bool
}

// Result summarises one processed project.
type Result struct {
	ProjectID string                    `json:"project_id"`
	Geocoded  bool                      `json:"geocoded"`
	Status    model.GeocodingStatus     `json:"geocoding_status"`
	Canonical *model.ProjectLocation    `json:"canonical,omitempty"`
	Stats     []model.AmenitySliceStats `json:"stats,omitempty"`
	Score     *model.ProjectScore       `json:"score,omitempty"`
}

// Located reports whether the project had coordinates and was scored.
func (r *Result) Located() bool {
	return r != nil && r.Score != nil
}

// Processor runs the per-project pipeline.
type Processor struct {
	store    store.Store
	geocoder *geocode.Client
	stats    *amenity.StatsComputer
	engine   *scoring.Engine
	radii    map[string][]float64
	now      func() time.Time
}

// NewProcessor creates a Processor. radii is the configured amenity radii map;
// every radius the scoring config reads is added to it.
func NewProcessor(st store.Store, geocoder *geocode.Client, stats *amenity.StatsComputer, engine *scoring.Engine, radii map[string][]float64) *Processor {
	required := engine.Config().RequiredRadii(BankRadius(radii, engine.Config().Bank.Types))
	return &Processor{
		store:    st,
		geocoder: geocoder,
		stats:    stats,
		engine:   engine,
		radii:    MergeRadii(radii, required),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Radii returns the merged radii map the processor computes statistics for.
func (p *Processor) Radii() map[string][]float64 {
	return p.radii
}

// Process geocodes (when needed), selects the canonical location, computes
// amenity statistics and scores the project. A project that ends without
// coordinates is not an error; its Result carries no stats or score.
func (p *Processor) Process(ctx context.Context, projectID string, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("project_id", projectID))

	proj, err := p.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load project")
	}
	res := &Result{ProjectID: proj.ID, Status: proj.GeocodingStatus}

	if needsGeocode(proj, opts) {
		if err := p.geocode(ctx, proj); err != nil {
			return nil, err
		}
		res.Geocoded = true
		res.Status = proj.GeocodingStatus
	}

	canonical, err := p.selectCanonical(ctx, proj)
	if err != nil {
		return nil, err
	}
	res.Canonical = canonical

	if !proj.HasCoordinates() {
		log.Info("pipeline: project has no coordinates, skipping stats and score",
			zap.String("geocoding_status", string(proj.GeocodingStatus)),
		)
		return res, nil
	}

	rows, err := p.computeStats(ctx, proj)
	if err != nil {
		return nil, err
	}
	res.Stats = rows

	score, err := p.score(ctx, proj.ID, rows)
	if err != nil {
		return nil, err
	}
	res.Score = score

	log.Info("pipeline: project processed",
		zap.Float64("latitude", *proj.Latitude),
		zap.Float64("longitude", *proj.Longitude),
		zap.String("source", proj.GeocodingSource),
		zap.Int("overall_score", score.OverallScore),
		zap.Int("missing_inputs", len(score.MissingInputs)),
	)
	return res, nil
}

func needsGeocode(proj *model.Project, opts Options) bool {
	if proj.Address.IsEmpty() {
		return false
	}
	return opts.Regeocode || proj.GeocodingStatus != model.GeocodingSuccess
}

// geocode moves the project through PENDING to SUCCESS or FAILED and records
// a geocode_normalized candidate on success.
func (p *Processor) geocode(ctx context.Context, proj *model.Project) error {
	if err := p.store.SetGeocodingStatus(ctx, proj.ID, model.GeocodingPending); err != nil {
		return eris.Wrap(err, "pipeline: mark pending")
	}
	proj.GeocodingStatus = model.GeocodingPending

	res, err := p.geocoder.Geocode(ctx, proj.Address)
	if err != nil {
		return eris.Wrap(err, "pipeline: geocode")
	}
	proj.NormalizedAddress = res.Normalized.Text

	if !res.Matched() {
		proj.GeocodingStatus = model.GeocodingFailed
		zap.L().Warn("pipeline: geocoding failed for every candidate",
			zap.String("project_id", proj.ID),
			zap.String("address", res.Normalized.Text),
		)
		return eris.Wrap(p.store.UpdateProject(ctx, proj), "pipeline: save failed geocode")
	}

	conf := res.Confidence
	loc := &model.ProjectLocation{
		ProjectID:        proj.ID,
		SourceType:       model.SourceGeocodeNormalized,
		PrecisionLevel:   string(res.Result.Precision),
		ConfidenceScore:  &conf,
		Latitude:         res.Result.Latitude,
		Longitude:        res.Result.Longitude,
		FormattedAddress: res.Result.FormattedAddress,
		IsActive:         true,
		CreatedAt:        p.now(),
	}
	if err := p.store.DeactivateLocations(ctx, proj.ID, model.SourceGeocodeNormalized); err != nil {
		return eris.Wrap(err, "pipeline: retire previous geocoded location")
	}
	if err := p.store.AddLocation(ctx, loc); err != nil {
		return eris.Wrap(err, "pipeline: add geocoded location")
	}

	proj.GeocodingStatus = model.GeocodingSuccess
	zap.L().Debug("pipeline: geocoded",
		zap.String("project_id", proj.ID),
		zap.String("candidate", res.Candidate),
		zap.Int("step", res.Step),
		zap.Bool("from_cache", res.FromCache),
		zap.String("precision", string(res.Result.Precision)),
		zap.Float64("confidence", conf),
	)
	return eris.Wrap(p.store.UpdateProject(ctx, proj), "pipeline: save geocode")
}

// selectCanonical applies the best active candidate to the project, writing
// only when the canonical location changed.
func (p *Processor) selectCanonical(ctx context.Context, proj *model.Project) (*model.ProjectLocation, error) {
	locs, err := p.store.ListLocations(ctx, proj.ID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list locations")
	}
	best, ok := location.Select(locs)
	if !ok {
		return nil, nil
	}
	if location.Apply(proj, best) {
		if err := p.store.UpdateProject(ctx, proj); err != nil {
			return nil, eris.Wrap(err, "pipeline: save canonical location")
		}
	}
	return &best, nil
}

func (p *Processor) computeStats(ctx context.Context, proj *model.Project) ([]model.AmenitySliceStats, error) {
	slices, err := p.stats.Compute(ctx, *proj.Latitude, *proj.Longitude, p.radii)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: compute amenity stats")
	}

	now := p.now()
	rows := make([]model.AmenitySliceStats, 0, len(slices))
	for _, s := range slices {
		rows = append(rows, model.AmenitySliceStats{
			ProjectID:   proj.ID,
			AmenityType: s.AmenityType,
			RadiusKM:    s.RadiusKM,
			Count:       s.Count,
			NearestKM:   s.NearestKM,
			ComputedAt:  now,
		})
	}
	if err := p.store.SaveAmenityStats(ctx, proj.ID, rows); err != nil {
		return nil, eris.Wrap(err, "pipeline: save amenity stats")
	}
	return rows, nil
}

func (p *Processor) score(ctx context.Context, projectID string, rows []model.AmenitySliceStats) (*model.ProjectScore, error) {
	ps := &model.ProjectScore{
		ProjectID:        projectID,
		ScoreComputation: p.engine.Compute(scoring.Inputs{Stats: rows}),
		ComputedAt:       p.now(),
	}
	if err := p.store.SaveScore(ctx, ps); err != nil {
		return nil, eris.Wrap(err, "pipeline: save score")
	}
	return ps, nil
}

// MergeRadii unions radii maps, dropping duplicate radii per type.
func MergeRadii(maps ...map[string][]float64) map[string][]float64 {
	out := make(map[string][]float64)
	for _, m := range maps {
		for typ, radii := range m {
			for _, r := range radii {
				if !containsRadius(out[typ], r) {
					out[typ] = append(out[typ], r)
				}
			}
		}
	}
	return out
}

func containsRadius(rs []float64, r float64) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// BankRadius picks the widest configured radius among the bank types,
// falling back to 5km.
func BankRadius(radii map[string][]float64, types []string) float64 {
	var widest float64
	for _, typ := range types {
		for _, r := range radii[typ] {
			widest = max(widest, r)
		}
	}
	if widest == 0 {
		return defaultBankRadiusKM
	}
	return widest
}

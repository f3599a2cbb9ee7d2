package scoring

import (
	"math"
	"sort"
	"strconv"

	"github.com/sells-group/locality-cli/internal/model"
)

// MissingAmenityScore is reported in MissingInputs while onsite amenities are unscored.
const MissingAmenityScore = "amenity_score"

// Inputs are the values one project is scored from.
type Inputs struct {
	Stats []model.AmenitySliceStats
	// Onsite is the onsite amenity score in [0,100]. Nil leaves amenity_score unscored.
	Onsite *float64
}

// Engine computes scores from a fixed Config. It performs no I/O.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine bound to cfg.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// computation accumulates diagnostics for one Compute call.
type computation struct {
	stats   map[string]model.AmenitySliceStats
	missing map[string]struct{}
	used    map[string]float64
}

func statKey(typ string, radiusKM float64) string {
	return typ + "@" + strconv.FormatFloat(radiusKM, 'f', -1, 64) + "km"
}

// Compute scores one project. It never fails: every gap becomes a zero or
// worst-case value plus an entry in MissingInputs.
func (e *Engine) Compute(in Inputs) model.ScoreComputation {
	c := &computation{
		stats:   make(map[string]model.AmenitySliceStats, len(in.Stats)),
		missing: make(map[string]struct{}),
		used:    make(map[string]float64),
	}
	for _, s := range in.Stats {
		c.stats[statKey(s.AmenityType, s.RadiusKM)] = s
	}

	daily := e.meanCounts(c, e.cfg.DailyNeeds)
	social := e.socialInfra(c)
	connectivity := e.connectivity(c)

	lw := e.cfg.Weights.Location
	location := weighted(
		[]float64{daily, social, connectivity},
		[]float64{lw.DailyNeeds, lw.SocialInfra, lw.Connectivity},
	)

	ow := e.cfg.Weights.Overall
	var amenityScore *int
	overall := location
	if in.Onsite != nil {
		onsite := clamp(*in.Onsite)
		c.used["onsite:amenity_score"] = *in.Onsite
		v := toScore(onsite)
		amenityScore = &v
		overall = weighted([]float64{onsite, location}, []float64{ow.Amenity, ow.Location})
	} else {
		c.missing[MissingAmenityScore] = struct{}{}
	}

	return model.ScoreComputation{
		ScoreResult: model.ScoreResult{
			AmenityScore:      amenityScore,
			LocationScore:     toScore(location),
			ConnectivityScore: toScore(connectivity),
			DailyNeedsScore:   toScore(daily),
			SocialInfraScore:  toScore(social),
			OverallScore:      toScore(overall),
			ScoreVersion:      e.cfg.Version,
		},
		MissingInputs: c.missingList(),
		InputsUsed:    c.used,
	}
}

// count returns the POI count for a statistic, recording it as used or missing.
func (c *computation) count(ref StatRef) float64 {
	key := statKey(ref.Type, ref.RadiusKM)
	s, ok := c.stats[key]
	if !ok {
		c.missing["count:"+key] = struct{}{}
		return 0
	}
	v := float64(s.Count)
	c.used["count:"+key] = v
	return v
}

func (c *computation) missingList() []string {
	out := make([]string, 0, len(c.missing))
	for k := range c.missing {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) meanCounts(c *computation, tables []CountTable) float64 {
	if len(tables) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tables {
		sum += t.Buckets.Lookup(c.count(t.StatRef))
	}
	return sum / float64(len(tables))
}

func (e *Engine) socialInfra(c *computation) float64 {
	score := e.meanCounts(c, e.cfg.SocialInfra.Tables)
	if len(e.cfg.SocialInfra.Civic) == 0 {
		return score
	}
	for _, ref := range e.cfg.SocialInfra.Civic {
		if c.count(ref) > 0 {
			return score
		}
	}
	return math.Min(score, e.cfg.SocialInfra.Cap)
}

func (e *Engine) connectivity(c *computation) float64 {
	transit := e.meanCounts(c, e.cfg.Transit)
	bank := e.bankScore(c)
	w := e.cfg.Weights.Connectivity
	return weighted([]float64{transit, bank}, []float64{w.Transit, w.Bank})
}

// bankScore bands the nearest distance across the bank types, reading each
// type's widest-radius statistic. No POI in range scores the worst band.
func (e *Engine) bankScore(c *computation) float64 {
	nearest := math.Inf(1)
	for _, typ := range e.cfg.Bank.Types {
		var widest *model.AmenitySliceStats
		for _, s := range c.stats {
			if s.AmenityType != typ {
				continue
			}
			if widest == nil || s.RadiusKM > widest.RadiusKM {
				row := s
				widest = &row
			}
		}
		if widest == nil {
			c.missing["nearest:"+typ] = struct{}{}
			continue
		}
		if widest.NearestKM == nil {
			continue
		}
		c.used["nearest:"+statKey(typ, widest.RadiusKM)] = *widest.NearestKM
		nearest = math.Min(nearest, *widest.NearestKM)
	}
	if math.IsInf(nearest, 1) {
		return e.cfg.Bank.Bands.Worst()
	}
	return e.cfg.Bank.Bands.Lookup(nearest)
}

// weighted returns the weight-normalised sum; all-zero weights give 0.
func weighted(values, weights []float64) float64 {
	var sum, total float64
	for i, v := range values {
		sum += v * weights[i]
		total += weights[i]
	}
	if total <= 0 {
		return 0
	}
	return sum / total
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func toScore(v float64) int {
	return int(math.Round(clamp(v)))
}

// Package scoring turns amenity statistics into bucketed, weighted location
// scores. The engine is pure: all tables and weights arrive in a Config.
package scoring

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultVersion tags scores computed with DefaultConfig.
const DefaultVersion = "v1"

// Bucket maps inputs up to and including UpperBound to Score.
type Bucket struct {
	UpperBound float64 `yaml:"upper_bound"`
	Score      float64 `yaml:"score"`
}

// BucketTable is ordered by ascending UpperBound.
type BucketTable []Bucket

// Lookup returns the score of the first bucket whose bound is >= v, or the
// last bucket's score when v exceeds every bound. An empty table scores 0.
func (t BucketTable) Lookup(v float64) float64 {
	if len(t) == 0 {
		return 0
	}
	for _, b := range t {
		if v <= b.UpperBound {
			return b.Score
		}
	}
	return t[len(t)-1].Score
}

// Worst returns the last bucket's score, used for distances with no POI.
func (t BucketTable) Worst() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].Score
}

// StatRef names one (type, radius) statistic.
type StatRef struct {
	Type     string  `yaml:"type"`
	RadiusKM float64 `yaml:"radius_km"`
}

// CountTable scores the POI count of one (type, radius).
type CountTable struct {
	StatRef `yaml:",inline"`
	Buckets BucketTable `yaml:"buckets"`
}

// BankConfig scores the nearest of several types by distance bands.
type BankConfig struct {
	Types []string    `yaml:"types"`
	Bands BucketTable `yaml:"bands"`
}

// SocialInfraConfig scores civic and leisure amenities, capping the result
// when every Civic statistic has a zero count.
type SocialInfraConfig struct {
	Tables []CountTable `yaml:"tables"`
	Cap    float64      `yaml:"cap"`
	Civic  []StatRef    `yaml:"civic"`
}

// LocationWeights blend the three location dimensions.
type LocationWeights struct {
	DailyNeeds   float64 `yaml:"daily_needs"`
	SocialInfra  float64 `yaml:"social_infra"`
	Connectivity float64 `yaml:"connectivity"`
}

// ConnectivityWeights blend transit and bank access.
type ConnectivityWeights struct {
	Transit float64 `yaml:"transit"`
	Bank    float64 `yaml:"bank"`
}

// OverallWeights blend onsite amenities and location.
type OverallWeights struct {
	Amenity  float64 `yaml:"amenity"`
	Location float64 `yaml:"location"`
}

// Weights groups every dimension weight.
type Weights struct {
	Location     LocationWeights     `yaml:"location"`
	Connectivity ConnectivityWeights `yaml:"connectivity"`
	Overall      OverallWeights      `yaml:"overall"`
}

// Config holds every table and weight the engine uses.
type Config struct {
	Version     string            `yaml:"version"`
	Weights     Weights           `yaml:"weights"`
	DailyNeeds  []CountTable      `yaml:"daily_needs"`
	Transit     []CountTable      `yaml:"transit"`
	Bank        BankConfig        `yaml:"bank"`
	SocialInfra SocialInfraConfig `yaml:"social_infra"`
}

func table(typ string, radiusKM float64, pairs ...float64) CountTable {
	ct := CountTable{StatRef: StatRef{Type: typ, RadiusKM: radiusKM}}
	for i := 0; i+1 < len(pairs); i += 2 {
		ct.Buckets = append(ct.Buckets, Bucket{UpperBound: pairs[i], Score: pairs[i+1]})
	}
	return ct
}

// DefaultConfig returns the standard scoring tables. Each call returns a
// fresh value.
func DefaultConfig() Config {
	return Config{
		Version: DefaultVersion,
		Weights: Weights{
			Location:     LocationWeights{DailyNeeds: 0.40, SocialInfra: 0.35, Connectivity: 0.25},
			Connectivity: ConnectivityWeights{Transit: 0.7, Bank: 0.3},
			Overall:      OverallWeights{Amenity: 0.5, Location: 0.5},
		},
		DailyNeeds: []CountTable{
			table("grocery", 1, 0, 0, 1, 50, 3, 75, 6, 90, 10, 100),
			table("supermarket", 2, 0, 0, 1, 60, 2, 80, 4, 100),
			table("pharmacy", 1, 0, 0, 1, 60, 2, 80, 4, 100),
		},
		Transit: []CountTable{
			table("transit_stop", 0.5, 0, 0, 1, 50, 3, 80, 5, 100),
			table("transit_stop", 1, 0, 0, 2, 40, 5, 70, 10, 100),
		},
		Bank: BankConfig{
			Types: []string{"bank", "atm"},
			Bands: BucketTable{
				{UpperBound: 0.5, Score: 100},
				{UpperBound: 1, Score: 85},
				{UpperBound: 2, Score: 65},
				{UpperBound: 5, Score: 40},
				{UpperBound: 10, Score: 15},
				{UpperBound: 20, Score: 0},
			},
		},
		SocialInfra: SocialInfraConfig{
			Tables: []CountTable{
				table("school", 3, 0, 0, 1, 50, 3, 80, 5, 100),
				table("college", 5, 0, 0, 1, 60, 3, 85, 5, 100),
				table("hospital", 5, 0, 0, 1, 60, 2, 80, 4, 100),
				table("park", 2, 0, 0, 1, 60, 3, 85, 5, 100),
				table("restaurant", 2, 0, 0, 2, 40, 5, 70, 10, 90, 20, 100),
				table("mall", 5, 0, 0, 1, 70, 2, 90, 3, 100),
			},
			Cap: 70,
			Civic: []StatRef{
				{Type: "hospital", RadiusKM: 5},
				{Type: "school", RadiusKM: 3},
			},
		},
	}
}

// LoadConfig reads a YAML score config. Sections absent from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "scoring: read config %s", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, eris.Wrapf(err, "scoring: parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequiredRadii returns the type to radii map every statistic the config
// reads. Bank types are requested at the largest configured radius so the
// nearest distance is found.
func (c Config) RequiredRadii(bankRadiusKM float64) map[string][]float64 {
	out := make(map[string][]float64)
	add := func(typ string, r float64) {
		for _, existing := range out[typ] {
			if existing == r {
				return
			}
		}
		out[typ] = append(out[typ], r)
	}
	for _, group := range [][]CountTable{c.DailyNeeds, c.Transit, c.SocialInfra.Tables} {
		for _, t := range group {
			add(t.Type, t.RadiusKM)
		}
	}
	for _, ref := range c.SocialInfra.Civic {
		add(ref.Type, ref.RadiusKM)
	}
	if bankRadiusKM > 0 {
		for _, typ := range c.Bank.Types {
			add(typ, bankRadiusKM)
		}
	}
	return out
}

// Validate checks that a Config is internally consistent.
func (c Config) Validate() error {
	var errs []string

	weights := map[string]float64{
		"weights.location.daily_needs":  c.Weights.Location.DailyNeeds,
		"weights.location.social_infra": c.Weights.Location.SocialInfra,
		"weights.location.connectivity": c.Weights.Location.Connectivity,
		"weights.connectivity.transit":  c.Weights.Connectivity.Transit,
		"weights.connectivity.bank":     c.Weights.Connectivity.Bank,
		"weights.overall.amenity":       c.Weights.Overall.Amenity,
		"weights.overall.location":      c.Weights.Overall.Location,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}
	l := c.Weights.Location
	if l.DailyNeeds+l.SocialInfra+l.Connectivity <= 0 {
		errs = append(errs, "location weights must sum to > 0")
	}
	if c.Weights.Connectivity.Transit+c.Weights.Connectivity.Bank <= 0 {
		errs = append(errs, "connectivity weights must sum to > 0")
	}
	if c.Weights.Overall.Location <= 0 {
		errs = append(errs, "weights.overall.location must be > 0")
	}

	checkTables := func(section string, tables []CountTable) {
		if len(tables) == 0 {
			errs = append(errs, fmt.Sprintf("%s needs at least one table", section))
		}
		for i, t := range tables {
			name := fmt.Sprintf("%s[%d] (%s)", section, i, t.Type)
			if t.Type == "" {
				errs = append(errs, name+": type is required")
			}
			if t.RadiusKM <= 0 {
				errs = append(errs, name+": radius_km must be > 0")
			}
			errs = append(errs, checkBuckets(name, t.Buckets, true)...)
		}
	}
	checkTables("daily_needs", c.DailyNeeds)
	checkTables("transit", c.Transit)
	checkTables("social_infra.tables", c.SocialInfra.Tables)

	if len(c.Bank.Types) == 0 {
		errs = append(errs, "bank.types needs at least one type")
	}
	errs = append(errs, checkBuckets("bank.bands", c.Bank.Bands, false)...)

	if c.SocialInfra.Cap < 0 || c.SocialInfra.Cap > 100 {
		errs = append(errs, "social_infra.cap must be in [0,100]")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// checkBuckets requires strictly ascending bounds, scores in [0,100], and
// scores that never decrease (counts) or never increase (distance bands).
func checkBuckets(name string, t BucketTable, ascendingScores bool) []string {
	if len(t) == 0 {
		return []string{name + ": needs at least one bucket"}
	}
	var errs []string
	for i, b := range t {
		if b.Score < 0 || b.Score > 100 {
			errs = append(errs, fmt.Sprintf("%s: bucket %d score %.1f out of [0,100]", name, i, b.Score))
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if b.UpperBound <= prev.UpperBound {
			errs = append(errs, fmt.Sprintf("%s: bucket %d bound must exceed %.2f", name, i, prev.UpperBound))
		}
		if ascendingScores && b.Score < prev.Score {
			errs = append(errs, fmt.Sprintf("%s: bucket %d score decreases", name, i))
		}
		if !ascendingScores && b.Score > prev.Score {
			errs = append(errs, fmt.Sprintf("%s: band %d score increases", name, i))
		}
	}
	return errs
}

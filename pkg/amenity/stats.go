package amenity

import (
	"context"
	"sort"

	"github.com/sells-group/locality-cli/internal/geo"
)

// SliceStats summarises one amenity type within one radius of a point.
// NearestKM is nil when no POI falls inside the radius.
type SliceStats struct {
	AmenityType string   `json:"amenity_type"`
	RadiusKM    float64  `json:"radius_km"`
	Count       int      `json:"count_within_radius"`
	NearestKM   *float64 `json:"nearest_distance_km"`
}

// DefaultRadii is the amenity-type to radii (km) map used when none is configured.
func DefaultRadii() map[string][]float64 {
	return map[string][]float64{
		TypeGrocery:     {1, 2},
		TypeSupermarket: {2, 5},
		TypePharmacy:    {1, 2},
		TypeHospital:    {2, 5},
		TypeSchool:      {1, 3},
		TypeCollege:     {5},
		TypePark:        {1, 2},
		TypeRestaurant:  {1, 2},
		TypeMall:        {5},
		TypeTransitStop: {0.5, 1},
		TypeBank:        {2, 5},
		TypeATM:         {1, 5},
	}
}

// StatsComputer derives SliceStats, fetching each type once at its largest radius.
type StatsComputer struct {
	fetcher Fetcher
}

// NewStatsComputer creates a StatsComputer.
func NewStatsComputer(f Fetcher) *StatsComputer {
	return &StatsComputer{fetcher: f}
}

// Compute returns one SliceStats per (type, distinct radius), ordered by type
// then radius ascending.
func (s *StatsComputer) Compute(ctx context.Context, lat, lon float64, radii map[string][]float64) ([]SliceStats, error) {
	types := make([]string, 0, len(radii))
	for t := range radii {
		types = append(types, t)
	}
	sort.Strings(types)

	var out []SliceStats
	for _, t := range types {
		rs := distinctSorted(radii[t])
		if len(rs) == 0 {
			continue
		}

		pois, err := s.fetcher.Fetch(ctx, t, lat, lon, rs[len(rs)-1])
		if err != nil {
			return nil, err
		}

		distances := make([]float64, len(pois))
		for i, p := range pois {
			distances[i] = geo.Haversine(lat, lon, p.Latitude, p.Longitude)
		}
		sort.Float64s(distances)

		for _, r := range rs {
			out = append(out, sliceFor(t, r, distances))
		}
	}
	return out, nil
}

// sliceFor expects distances sorted ascending.
func sliceFor(amenityType string, radiusKM float64, distances []float64) SliceStats {
	st := SliceStats{AmenityType: amenityType, RadiusKM: radiusKM}
	for _, d := range distances {
		if d > radiusKM {
			break
		}
		if st.Count == 0 {
			nearest := d
			st.NearestKM = &nearest
		}
		st.Count++
	}
	return st
}

func distinctSorted(in []float64) []float64 {
	out := make([]float64, 0, len(in))
	for _, r := range in {
		if r > 0 {
			out = append(out, r)
		}
	}
	sort.Float64s(out)
	n := 0
	for i, r := range out {
		if i == 0 || r != out[n-1] {
			out[n] = r
			n++
		}
	}
	return out[:n]
}

package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/scoring"
	"github.com/sells-group/locality-cli/internal/store"
	"github.com/sells-group/locality-cli/pkg/amenity"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

const (
	durgLat = 21.19
	durgLon = 81.28

	tehsilCandidate = "Tehsil Raipur, District Durg, Chhattisgarh, India"
)

func durgAddress() geocode.AddressParts {
	return geocode.AddressParts{
		AddressLine: "Plot 12",
		Tehsil:      "Raipur",
		District:    "Durg",
		StateCode:   "CG",
	}
}

type fakeGeocoder struct {
	mu      sync.Mutex
	matches map[string]geocode.Result
	calls   []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, text string) (*geocode.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if r, ok := f.matches[text]; ok {
		r.Matched = true
		r.Source = "fake"
		return &r, nil
	}
	return &geocode.Result{Source: "fake"}, nil
}

func (f *fakeGeocoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAmenities struct {
	mu    sync.Mutex
	pois  map[string][]amenity.Amenity
	calls int
}

func (f *fakeAmenities) Search(ctx context.Context, amenityType string, _, _, _ float64) ([]amenity.Amenity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]amenity.Amenity(nil), f.pois[amenityType]...), nil
}

func (f *fakeAmenities) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// poiNear returns a POI km kilometres north of the Durg test point.
func poiNear(amenityType, id string, km float64) amenity.Amenity {
	return amenity.Amenity{
		Type:            amenityType,
		Name:            id,
		Latitude:        durgLat + km/111.195,
		Longitude:       durgLon,
		Provider:        "fake",
		ProviderPlaceID: id,
	}
}

type harness struct {
	store     *store.SQLiteStore
	geocoder  *fakeGeocoder
	amenities *fakeAmenities
	proc      *Processor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	gc := &fakeGeocoder{matches: map[string]geocode.Result{
		tehsilCandidate: {
			Latitude:         durgLat,
			Longitude:        durgLon,
			FormattedAddress: "Raipur, Durg, Chhattisgarh",
			Precision:        geocode.PrecisionLocality,
		},
	}}
	am := &fakeAmenities{pois: map[string][]amenity.Amenity{
		amenity.TypeGrocery: {
			poiNear(amenity.TypeGrocery, "g1", 0.3),
			poiNear(amenity.TypeGrocery, "g2", 0.8),
		},
		amenity.TypeBank: {poiNear(amenity.TypeBank, "b1", 0.4)},
	}}

	proc := NewProcessor(
		st,
		geocode.NewClient(gc, store.GeocodeCache{Store: st}),
		amenity.NewStatsComputer(amenity.NewCache(am, st)),
		scoring.NewEngine(scoring.DefaultConfig()),
		amenity.DefaultRadii(),
	)
	return &harness{store: st, geocoder: gc, amenities: am, proc: proc}
}

func (h *harness) addProject(t *testing.T, p *model.Project) *model.Project {
	t.Helper()
	require.NoError(t, h.store.CreateProject(context.Background(), p))
	return p
}

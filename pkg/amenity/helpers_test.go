package amenity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sells-group/locality-cli/internal/geo"
)

// Durg city centre.
const (
	centerLat = 21.1904
	centerLon = 81.2849
)

type searchCall struct {
	amenityType string
	radiusKM    float64
}

type fakeProvider struct {
	mu    sync.Mutex
	pois  map[string][]Amenity
	calls []searchCall
}

func newFakeProvider(pois map[string][]Amenity) *fakeProvider {
	return &fakeProvider{pois: pois}
}

func (f *fakeProvider) Search(ctx context.Context, amenityType string, _, _, radiusKM float64) ([]Amenity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{amenityType, radiusKM})
	src := f.pois[amenityType]
	out := make([]Amenity, len(src))
	copy(out, src)
	return out, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// poiAt returns an amenity offset north of the centre by km kilometres.
func poiAt(amenityType, id string, km float64) Amenity {
	return Amenity{
		Type:            amenityType,
		Name:            id,
		Latitude:        centerLat + km/111.195,
		Longitude:       centerLon,
		Provider:        "overpass",
		ProviderPlaceID: id,
	}
}

var errStoreDown = errors.New("store down")

type brokenStore struct{}

func (brokenStore) FindPOIs(context.Context, string, geo.BBox, time.Time) ([]Amenity, error) {
	return nil, errStoreDown
}

func (brokenStore) UpsertPOIs(context.Context, []Amenity, time.Time) error { return errStoreDown }

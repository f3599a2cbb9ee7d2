package amenity

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/locality-cli/internal/geo"
)

// POIStore persists cached POIs. UpsertPOIs must be atomic per
// (provider, PlaceKey) so concurrent callers never lose an update.
type POIStore interface {
	// FindPOIs returns POIs of amenityType inside box last seen at or after since.
	FindPOIs(ctx context.Context, amenityType string, box geo.BBox, since time.Time) ([]Amenity, error)
	// UpsertPOIs inserts or refreshes each POI, setting LastSeenAt to seenAt.
	UpsertPOIs(ctx context.Context, pois []Amenity, seenAt time.Time) error
}

// MemoryPOIStore is an in-process POIStore.
type MemoryPOIStore struct {
	mu   sync.Mutex
	rows map[string]Amenity
}

// NewMemoryPOIStore creates an empty MemoryPOIStore.
func NewMemoryPOIStore() *MemoryPOIStore {
	return &MemoryPOIStore{rows: make(map[string]Amenity)}
}

// FindPOIs implements POIStore.
func (s *MemoryPOIStore) FindPOIs(_ context.Context, amenityType string, box geo.BBox, since time.Time) ([]Amenity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Amenity
	for _, a := range s.rows {
		if a.Type != amenityType || a.LastSeenAt.Before(since) {
			continue
		}
		if !box.Contains(a.Latitude, a.Longitude) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// UpsertPOIs implements POIStore.
func (s *MemoryPOIStore) UpsertPOIs(_ context.Context, pois []Amenity, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range pois {
		a.LastSeenAt = seenAt
		s.rows[a.Provider+"|"+a.PlaceKey()] = a
	}
	return nil
}

// Len returns the number of stored POIs.
func (s *MemoryPOIStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

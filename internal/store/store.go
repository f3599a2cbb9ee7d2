// Package store persists projects, candidate locations, amenity statistics,
// scores and the geocode/POI caches in SQLite or Postgres.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/locality-cli/internal/geo"
	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/pkg/amenity"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = eris.New("store: not found")

// ProjectFilter specifies criteria for listing projects.
type ProjectFilter struct {
	Status model.GeocodingStatus `json:"status,omitempty"`
	Limit  int                   `json:"limit,omitempty"`
	Offset int                   `json:"offset,omitempty"`
}

// Store defines the persistence interface for the locality pipeline.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error)
	UpdateProject(ctx context.Context, p *model.Project) error
	SetGeocodingStatus(ctx context.Context, id string, status model.GeocodingStatus) error

	// Candidate locations
	AddLocation(ctx context.Context, loc *model.ProjectLocation) error
	ListLocations(ctx context.Context, projectID string) ([]model.ProjectLocation, error)
	// DeactivateLocations clears is_active on a project's candidates from source.
	DeactivateLocations(ctx context.Context, projectID string, source model.SourceType) error

	// Amenity statistics and scores
	SaveAmenityStats(ctx context.Context, projectID string, stats []model.AmenitySliceStats) error
	ListAmenityStats(ctx context.Context, projectID string) ([]model.AmenitySliceStats, error)
	SaveScore(ctx context.Context, score *model.ProjectScore) error
	GetScore(ctx context.Context, projectID string) (*model.ProjectScore, error)

	// Geocode cache
	GetCachedGeocode(ctx context.Context, address string) (*geocode.Result, error)
	SetCachedGeocode(ctx context.Context, address string, result *geocode.Result) error

	// POI cache (amenity.POIStore)
	FindPOIs(ctx context.Context, amenityType string, box geo.BBox, since time.Time) ([]amenity.Amenity, error)
	UpsertPOIs(ctx context.Context, pois []amenity.Amenity, seenAt time.Time) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

var (
	_ Store            = (*SQLiteStore)(nil)
	_ Store            = (*PostgresStore)(nil)
	_ amenity.POIStore = Store(nil)
	_ geocode.Cache    = GeocodeCache{}
)

// GeocodeCache adapts a Store to geocode.Cache.
type GeocodeCache struct {
	Store Store
}

// Get implements geocode.Cache.
func (c GeocodeCache) Get(ctx context.Context, key string) (*geocode.Result, bool, error) {
	r, err := c.Store.GetCachedGeocode(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return r, r != nil, nil
}

// Put implements geocode.Cache.
func (c GeocodeCache) Put(ctx context.Context, key string, result *geocode.Result) error {
	return c.Store.SetCachedGeocode(ctx, key, result)
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

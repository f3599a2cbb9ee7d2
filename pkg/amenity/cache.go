package amenity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/locality-cli/internal/geo"
)

// DefaultFreshness is how long a cached POI is trusted without re-fetching.
const DefaultFreshness = 30 * 24 * time.Hour

// Fetcher returns POIs of one type around a point.
type Fetcher interface {
	Fetch(ctx context.Context, amenityType string, lat, lon, radiusKM float64) ([]Amenity, error)
}

// Cache answers POI lookups from a POIStore when fresh, in-range rows
// exist, and from the Provider otherwise.
type Cache struct {
	provider  Provider
	store     POIStore
	freshness time.Duration
	now       func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithFreshness sets the freshness window.
func WithFreshness(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.freshness = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a Cache. A nil store makes every lookup go to the provider.
func NewCache(provider Provider, store POIStore, opts ...CacheOption) *Cache {
	c := &Cache{
		provider:  provider,
		store:     store,
		freshness: DefaultFreshness,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements Fetcher. Store failures are logged and treated as a miss.
func (c *Cache) Fetch(ctx context.Context, amenityType string, lat, lon, radiusKM float64) ([]Amenity, error) {
	now := c.now()

	if c.store != nil {
		box := geo.BoundingBox(lat, lon, radiusKM)
		rows, err := c.store.FindPOIs(ctx, amenityType, box, now.Add(-c.freshness))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.L().Warn("amenity cache: read failed, treating as miss",
				zap.String("type", amenityType), zap.Error(err))
		}

		hits := withinRadius(rows, lat, lon, radiusKM)
		if len(hits) > 0 {
			zap.L().Debug("amenity cache: hit",
				zap.String("type", amenityType),
				zap.Float64("radius_km", radiusKM),
				zap.Int("count", len(hits)),
			)
			return hits, nil
		}
	}

	pois, err := c.provider.Search(ctx, amenityType, lat, lon, radiusKM)
	if err != nil {
		return nil, err
	}
	if len(pois) == 0 || c.store == nil {
		return pois, nil
	}

	if err := c.store.UpsertPOIs(ctx, pois, now); err != nil {
		zap.L().Warn("amenity cache: upsert failed",
			zap.String("type", amenityType), zap.Int("count", len(pois)), zap.Error(err))
	}
	for i := range pois {
		pois[i].LastSeenAt = now
	}
	return pois, nil
}

func withinRadius(rows []Amenity, lat, lon, radiusKM float64) []Amenity {
	var out []Amenity
	for _, a := range rows {
		if geo.Haversine(lat, lon, a.Latitude, a.Longitude) <= radiusKM {
			out = append(out, a)
		}
	}
	return out
}

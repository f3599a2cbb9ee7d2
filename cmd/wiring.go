package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/locality-cli/internal/pipeline"
	"github.com/sells-group/locality-cli/internal/scoring"
	"github.com/sells-group/locality-cli/internal/store"
	"github.com/sells-group/locality-cli/pkg/amenity"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newGeocodeClient builds the configured provider behind the store's cache.
// A nil store disables caching.
func newGeocodeClient(st store.Store) (*geocode.Client, error) {
	provider, err := geocode.NewProvider(cfg.Geocode.ProviderConfig())
	if err != nil {
		return nil, err
	}
	var cache geocode.Cache
	if st != nil {
		cache = store.GeocodeCache{Store: st}
	}
	return geocode.NewClient(provider, cache), nil
}

// newAmenityCache builds the configured POI provider behind the store's
// spatial cache. A nil store disables caching.
func newAmenityCache(st store.Store) (*amenity.Cache, error) {
	provider, err := amenity.NewProvider(cfg.Amenity.ProviderConfig())
	if err != nil {
		return nil, err
	}
	var pois amenity.POIStore
	if st != nil {
		pois = st
	}
	return amenity.NewCache(provider, pois, amenity.WithFreshness(cfg.Amenity.Freshness())), nil
}

// loadScoreConfig reads score.config_path when set, else the defaults.
func loadScoreConfig() (scoring.Config, error) {
	var (
		sc  scoring.Config
		err error
	)
	if cfg.Score.ConfigPath != "" {
		sc, err = scoring.LoadConfig(cfg.Score.ConfigPath)
		if err != nil {
			return scoring.Config{}, err
		}
	} else {
		sc = scoring.DefaultConfig()
	}
	if cfg.Score.Version != "" {
		sc.Version = cfg.Score.Version
	}
	return sc, nil
}

// newProcessor wires the full per-project pipeline against st.
func newProcessor(st store.Store) (*pipeline.Processor, error) {
	gc, err := newGeocodeClient(st)
	if err != nil {
		return nil, err
	}
	ac, err := newAmenityCache(st)
	if err != nil {
		return nil, err
	}
	sc, err := loadScoreConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.NewProcessor(
		st,
		gc,
		amenity.NewStatsComputer(ac),
		scoring.NewEngine(sc),
		cfg.Amenity.RadiiOrDefault(),
	), nil
}

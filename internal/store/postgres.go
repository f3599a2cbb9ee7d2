package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/locality-cli/internal/db"
	"github.com/sells-group/locality-cli/internal/geo"
	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/pkg/amenity"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

// SRID is the spatial reference of stored POI geometries (WGS 84).
const SRID = 4326

// PostgresStore implements Store using pgxpool and PostGIS.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	pgProjectColumns = `id, name, address, normalized_address, latitude, longitude,
	geocoding_status, geocoding_source, geo_precision, geo_confidence, geo_formatted_address,
	created_at, updated_at`

	pgGetProject       = `SELECT ` + pgProjectColumns + ` FROM projects WHERE id = $1`
	pgGetCachedGeocode = `SELECT latitude, longitude, formatted_address, geo_precision, source, raw FROM geocode_cache WHERE address = $1`
	pgFindPOIs         = `SELECT provider, provider_place_id, amenity_type, name, latitude, longitude, formatted_address, raw, last_seen_at
		FROM amenity_pois
		WHERE amenity_type = $1
		  AND geom && ST_MakeEnvelope($2, $3, $4, $5, 4326)
		  AND last_seen_at >= $6`
	pgUpsertPOI = `INSERT INTO amenity_pois (provider, provider_place_id, amenity_type, name, latitude, longitude,
			geom, formatted_address, raw, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, ST_GeomFromEWKB($7), $8, $9, $10)
		ON CONFLICT (provider, provider_place_id) DO UPDATE SET
			amenity_type = EXCLUDED.amenity_type,
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			geom = EXCLUDED.geom,
			formatted_address = EXCLUDED.formatted_address,
			raw = EXCLUDED.raw,
			last_seen_at = EXCLUDED.last_seen_at`
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute
	// Hot-path queries are reused verbatim, so pgx's per-connection statement
	// cache prepares them on first use.
	pgxCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS projects (
	id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name                  TEXT NOT NULL DEFAULT '',
	address               JSONB NOT NULL DEFAULT '{}',
	normalized_address    TEXT NOT NULL DEFAULT '',
	latitude              DOUBLE PRECISION,
	longitude             DOUBLE PRECISION,
	geocoding_status      TEXT NOT NULL DEFAULT 'NOT_GEOCODED',
	geocoding_source      TEXT NOT NULL DEFAULT '',
	geo_precision         TEXT NOT NULL DEFAULT '',
	geo_confidence        DOUBLE PRECISION,
	geo_formatted_address TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS project_locations (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	project_id        TEXT NOT NULL REFERENCES projects(id),
	source_type       TEXT NOT NULL,
	precision_level   TEXT NOT NULL DEFAULT '',
	confidence_score  DOUBLE PRECISION,
	latitude          DOUBLE PRECISION NOT NULL,
	longitude         DOUBLE PRECISION NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	is_active         BOOLEAN NOT NULL DEFAULT true,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS amenity_stats (
	project_id          TEXT NOT NULL REFERENCES projects(id),
	amenity_type        TEXT NOT NULL,
	radius_km           DOUBLE PRECISION NOT NULL,
	count_within_radius INTEGER NOT NULL,
	nearest_distance_km DOUBLE PRECISION,
	computed_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (project_id, amenity_type, radius_km)
);

CREATE TABLE IF NOT EXISTS project_scores (
	project_id         TEXT PRIMARY KEY REFERENCES projects(id),
	amenity_score      INTEGER,
	location_score     INTEGER NOT NULL,
	connectivity_score INTEGER NOT NULL,
	daily_needs_score  INTEGER NOT NULL,
	social_infra_score INTEGER NOT NULL,
	overall_score      INTEGER NOT NULL,
	score_version      TEXT NOT NULL,
	missing_inputs     JSONB NOT NULL DEFAULT '[]',
	inputs_used        JSONB NOT NULL DEFAULT '{}',
	computed_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS geocode_cache (
	address           TEXT PRIMARY KEY,
	latitude          DOUBLE PRECISION NOT NULL,
	longitude         DOUBLE PRECISION NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	geo_precision     TEXT NOT NULL DEFAULT '',
	source            TEXT NOT NULL,
	raw               JSONB,
	cached_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS amenity_pois (
	provider          TEXT NOT NULL,
	provider_place_id TEXT NOT NULL,
	amenity_type      TEXT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	latitude          DOUBLE PRECISION NOT NULL,
	longitude         DOUBLE PRECISION NOT NULL,
	geom              geometry(Point, 4326) NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	raw               JSONB,
	last_seen_at      TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (provider, provider_place_id)
);

CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(geocoding_status);
CREATE INDEX IF NOT EXISTS idx_project_locations_project ON project_locations(project_id);
CREATE INDEX IF NOT EXISTS idx_amenity_pois_geom ON amenity_pois USING GIST (geom);
CREATE INDEX IF NOT EXISTS idx_amenity_pois_type_seen ON amenity_pois(amenity_type, last_seen_at);
`

// Migrate creates the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// --- Projects ---

func (s *PostgresStore) CreateProject(ctx context.Context, p *model.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.GeocodingStatus == "" {
		p.GeocodingStatus = model.GeocodingNotGeocoded
	}
	now := nowUTC()
	p.CreatedAt, p.UpdatedAt = now, now

	addrJSON, err := json.Marshal(p.Address)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal address")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO projects (id, name, address, normalized_address, latitude, longitude,
			geocoding_status, geocoding_source, geo_precision, geo_confidence, geo_formatted_address,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Name, addrJSON, p.NormalizedAddress, p.Latitude, p.Longitude,
		string(p.GeocodingStatus), p.GeocodingSource, p.GeoPrecision, p.GeoConfidence, p.GeoFormattedAddress,
		now, now,
	)
	return eris.Wrap(err, "postgres: insert project")
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := scanPgProject(s.pool.QueryRow(ctx, pgGetProject, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: project %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get project")
	}
	return p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgProjectColumns+` FROM projects
		 WHERE ($1 = '' OR geocoding_status = $1)
		 ORDER BY created_at ASC, id ASC
		 LIMIT $2 OFFSET $3`,
		string(filter.Status), listLimit(filter.Limit), max(filter.Offset, 0),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list projects")
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		p, err := scanPgProject(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan project")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list projects iterate")
}

func (s *PostgresStore) UpdateProject(ctx context.Context, p *model.Project) error {
	addrJSON, err := json.Marshal(p.Address)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal address")
	}
	p.UpdatedAt = nowUTC()

	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET name = $1, address = $2, normalized_address = $3, latitude = $4, longitude = $5,
			geocoding_status = $6, geocoding_source = $7, geo_precision = $8, geo_confidence = $9,
			geo_formatted_address = $10, updated_at = $11
		 WHERE id = $12`,
		p.Name, addrJSON, p.NormalizedAddress, p.Latitude, p.Longitude,
		string(p.GeocodingStatus), p.GeocodingSource, p.GeoPrecision, p.GeoConfidence,
		p.GeoFormattedAddress, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update project %s", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: project %s", p.ID)
	}
	return nil
}

func (s *PostgresStore) SetGeocodingStatus(ctx context.Context, id string, status model.GeocodingStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET geocoding_status = $1, updated_at = $2 WHERE id = $3`,
		string(status), nowUTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set geocoding status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: project %s", id)
	}
	return nil
}

// --- Candidate locations ---

func (s *PostgresStore) AddLocation(ctx context.Context, loc *model.ProjectLocation) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = nowUTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO project_locations (id, project_id, source_type, precision_level, confidence_score,
			latitude, longitude, formatted_address, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		loc.ID, loc.ProjectID, string(loc.SourceType), loc.PrecisionLevel, loc.ConfidenceScore,
		loc.Latitude, loc.Longitude, loc.FormattedAddress, loc.IsActive, loc.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert location for project %s", loc.ProjectID)
}

func (s *PostgresStore) DeactivateLocations(ctx context.Context, projectID string, source model.SourceType) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE project_locations SET is_active = FALSE WHERE project_id = $1 AND source_type = $2 AND is_active`,
		projectID, string(source),
	)
	return eris.Wrapf(err, "postgres: deactivate %s locations for project %s", source, projectID)
}

func (s *PostgresStore) ListLocations(ctx context.Context, projectID string) ([]model.ProjectLocation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, source_type, precision_level, confidence_score, latitude, longitude,
			formatted_address, is_active, created_at
		 FROM project_locations WHERE project_id = $1 ORDER BY created_at ASC, id ASC`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list locations")
	}
	defer rows.Close()

	var out []model.ProjectLocation
	for rows.Next() {
		var loc model.ProjectLocation
		var src string
		if err := rows.Scan(&loc.ID, &loc.ProjectID, &src, &loc.PrecisionLevel, &loc.ConfidenceScore,
			&loc.Latitude, &loc.Longitude, &loc.FormattedAddress, &loc.IsActive, &loc.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan location")
		}
		loc.SourceType = model.SourceType(src)
		out = append(out, loc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list locations iterate")
}

// --- Amenity statistics ---

var amenityStatsUpsert = db.UpsertConfig{
	Table:        "amenity_stats",
	Columns:      []string{"project_id", "amenity_type", "radius_km", "count_within_radius", "nearest_distance_km", "computed_at"},
	ConflictKeys: []string{"project_id", "amenity_type", "radius_km"},
}

func (s *PostgresStore) SaveAmenityStats(ctx context.Context, projectID string, stats []model.AmenitySliceStats) error {
	now := nowUTC()
	rows := make([][]any, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []any{projectID, st.AmenityType, st.RadiusKM, st.Count, st.NearestKM, now})
	}
	_, err := db.BulkUpsert(ctx, s.pool, amenityStatsUpsert, rows)
	return eris.Wrapf(err, "postgres: save amenity stats for project %s", projectID)
}

func (s *PostgresStore) ListAmenityStats(ctx context.Context, projectID string) ([]model.AmenitySliceStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT project_id, amenity_type, radius_km, count_within_radius, nearest_distance_km, computed_at
		 FROM amenity_stats WHERE project_id = $1 ORDER BY amenity_type, radius_km`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list amenity stats")
	}
	defer rows.Close()

	var out []model.AmenitySliceStats
	for rows.Next() {
		var st model.AmenitySliceStats
		if err := rows.Scan(&st.ProjectID, &st.AmenityType, &st.RadiusKM, &st.Count, &st.NearestKM, &st.ComputedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan amenity stats")
		}
		out = append(out, st)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list amenity stats iterate")
}

// --- Scores ---

func (s *PostgresStore) SaveScore(ctx context.Context, score *model.ProjectScore) error {
	missing, used, err := marshalDiagnostics(score)
	if err != nil {
		return err
	}
	if score.ComputedAt.IsZero() {
		score.ComputedAt = nowUTC()
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO project_scores (project_id, amenity_score, location_score, connectivity_score,
			daily_needs_score, social_infra_score, overall_score, score_version, missing_inputs, inputs_used, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (project_id) DO UPDATE SET
			amenity_score = EXCLUDED.amenity_score,
			location_score = EXCLUDED.location_score,
			connectivity_score = EXCLUDED.connectivity_score,
			daily_needs_score = EXCLUDED.daily_needs_score,
			social_infra_score = EXCLUDED.social_infra_score,
			overall_score = EXCLUDED.overall_score,
			score_version = EXCLUDED.score_version,
			missing_inputs = EXCLUDED.missing_inputs,
			inputs_used = EXCLUDED.inputs_used,
			computed_at = EXCLUDED.computed_at`,
		score.ProjectID, score.AmenityScore, score.LocationScore, score.ConnectivityScore,
		score.DailyNeedsScore, score.SocialInfraScore, score.OverallScore, score.ScoreVersion,
		missing, used, score.ComputedAt,
	)
	return eris.Wrapf(err, "postgres: save score for project %s", score.ProjectID)
}

func (s *PostgresStore) GetScore(ctx context.Context, projectID string) (*model.ProjectScore, error) {
	var ps model.ProjectScore
	var missing, used []byte
	err := s.pool.QueryRow(ctx,
		`SELECT project_id, amenity_score, location_score, connectivity_score, daily_needs_score,
			social_infra_score, overall_score, score_version, missing_inputs, inputs_used, computed_at
		 FROM project_scores WHERE project_id = $1`,
		projectID,
	).Scan(&ps.ProjectID, &ps.AmenityScore, &ps.LocationScore, &ps.ConnectivityScore, &ps.DailyNeedsScore,
		&ps.SocialInfraScore, &ps.OverallScore, &ps.ScoreVersion, &missing, &used, &ps.ComputedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: score for project %s", projectID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get score")
	}
	if err := unmarshalDiagnostics(&ps, missing, used); err != nil {
		return nil, err
	}
	return &ps, nil
}

// --- Geocode cache ---

func (s *PostgresStore) GetCachedGeocode(ctx context.Context, address string) (*geocode.Result, error) {
	var r geocode.Result
	var precision string
	var raw []byte
	err := s.pool.QueryRow(ctx, pgGetCachedGeocode, address).
		Scan(&r.Latitude, &r.Longitude, &r.FormattedAddress, &precision, &r.Source, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached geocode")
	}
	r.Precision = geocode.Precision(precision)
	if len(raw) > 0 {
		r.Raw = json.RawMessage(raw)
	}
	r.Matched = true
	return &r, nil
}

func (s *PostgresStore) SetCachedGeocode(ctx context.Context, address string, r *geocode.Result) error {
	if r == nil || !r.Matched {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO geocode_cache (address, latitude, longitude, formatted_address, geo_precision, source, raw, cached_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (address) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			formatted_address = EXCLUDED.formatted_address,
			geo_precision = EXCLUDED.geo_precision,
			source = EXCLUDED.source,
			raw = EXCLUDED.raw,
			cached_at = EXCLUDED.cached_at`,
		address, r.Latitude, r.Longitude, r.FormattedAddress, string(r.Precision), r.Source,
		rawBytes(r.Raw), nowUTC(),
	)
	return eris.Wrap(err, "postgres: set cached geocode")
}

// --- POI cache ---

func (s *PostgresStore) FindPOIs(ctx context.Context, amenityType string, box geo.BBox, since time.Time) ([]amenity.Amenity, error) {
	rows, err := s.pool.Query(ctx, pgFindPOIs,
		amenityType, box.MinLon, box.MinLat, box.MaxLon, box.MaxLat, since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find pois")
	}
	defer rows.Close()

	var out []amenity.Amenity
	for rows.Next() {
		var a amenity.Amenity
		var raw []byte
		if err := rows.Scan(&a.Provider, &a.ProviderPlaceID, &a.Type, &a.Name, &a.Latitude, &a.Longitude,
			&a.FormattedAddress, &raw, &a.LastSeenAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan poi")
		}
		if len(raw) > 0 {
			a.Raw = json.RawMessage(raw)
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: find pois iterate")
}

func (s *PostgresStore) UpsertPOIs(ctx context.Context, pois []amenity.Amenity, seenAt time.Time) error {
	if len(pois) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin poi tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Fixed row order keeps concurrent writers from deadlocking on overlapping POIs.
	sorted := slices.Clone(pois)
	slices.SortFunc(sorted, func(a, b amenity.Amenity) int {
		return cmp.Or(cmp.Compare(a.Provider, b.Provider), cmp.Compare(a.PlaceKey(), b.PlaceKey()))
	})

	for _, a := range sorted {
		point, err := pointEWKB(a.Latitude, a.Longitude)
		if err != nil {
			return eris.Wrapf(err, "postgres: encode poi %s", a.PlaceKey())
		}
		if _, err := tx.Exec(ctx, pgUpsertPOI,
			a.Provider, a.PlaceKey(), a.Type, a.Name, a.Latitude, a.Longitude,
			point, a.FormattedAddress, rawBytes(a.Raw), seenAt,
		); err != nil {
			return eris.Wrapf(err, "postgres: upsert poi %s", a.PlaceKey())
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit pois")
}

// pointEWKB encodes a WGS 84 point as little-endian EWKB for ST_GeomFromEWKB.
func pointEWKB(lat, lon float64) ([]byte, error) {
	pt := geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(SRID)
	return ewkb.Marshal(pt, ewkb.NDR)
}

func rawBytes(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func scanPgProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	var addrJSON []byte
	var status string

	if err := row.Scan(&p.ID, &p.Name, &addrJSON, &p.NormalizedAddress, &p.Latitude, &p.Longitude,
		&status, &p.GeocodingSource, &p.GeoPrecision, &p.GeoConfidence, &p.GeoFormattedAddress,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(addrJSON) > 0 {
		if err := json.Unmarshal(addrJSON, &p.Address); err != nil {
			return nil, eris.Wrap(err, "unmarshal address")
		}
	}
	p.GeocodingStatus = model.GeocodingStatus(status)
	return &p, nil
}

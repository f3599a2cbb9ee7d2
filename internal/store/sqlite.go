package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/locality-cli/internal/geo"
	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/pkg/amenity"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One connection serialises writers and keeps per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Timestamps used in range filters (cache freshness) are unix milliseconds so
// comparisons are numeric.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id                    TEXT PRIMARY KEY,
	name                  TEXT NOT NULL DEFAULT '',
	address               TEXT NOT NULL DEFAULT '{}',
	normalized_address    TEXT NOT NULL DEFAULT '',
	latitude              REAL,
	longitude             REAL,
	geocoding_status      TEXT NOT NULL DEFAULT 'NOT_GEOCODED',
	geocoding_source      TEXT NOT NULL DEFAULT '',
	geo_precision         TEXT NOT NULL DEFAULT '',
	geo_confidence        REAL,
	geo_formatted_address TEXT NOT NULL DEFAULT '',
	created_at            DATETIME NOT NULL,
	updated_at            DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS project_locations (
	id                TEXT PRIMARY KEY,
	project_id        TEXT NOT NULL REFERENCES projects(id),
	source_type       TEXT NOT NULL,
	precision_level   TEXT NOT NULL DEFAULT '',
	confidence_score  REAL,
	latitude          REAL NOT NULL,
	longitude         REAL NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	is_active         INTEGER NOT NULL DEFAULT 1,
	created_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS amenity_stats (
	project_id          TEXT NOT NULL REFERENCES projects(id),
	amenity_type        TEXT NOT NULL,
	radius_km           REAL NOT NULL,
	count_within_radius INTEGER NOT NULL,
	nearest_distance_km REAL,
	computed_at         DATETIME NOT NULL,
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
	missing_inputs     TEXT NOT NULL DEFAULT '[]',
	inputs_used        TEXT NOT NULL DEFAULT '{}',
	computed_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS geocode_cache (
	address           TEXT PRIMARY KEY,
	latitude          REAL NOT NULL,
	longitude         REAL NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	geo_precision     TEXT NOT NULL DEFAULT '',
	source            TEXT NOT NULL,
	raw               TEXT,
	cached_at_ms      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS amenity_pois (
	provider          TEXT NOT NULL,
	provider_place_id TEXT NOT NULL,
	amenity_type      TEXT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	latitude          REAL NOT NULL,
	longitude         REAL NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	raw               TEXT,
	last_seen_at_ms   INTEGER NOT NULL,
	PRIMARY KEY (provider, provider_place_id)
);

CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(geocoding_status);
CREATE INDEX IF NOT EXISTS idx_project_locations_project ON project_locations(project_id);
CREATE INDEX IF NOT EXISTS idx_amenity_pois_type_lat_lon ON amenity_pois(amenity_type, latitude, longitude);
CREATE INDEX IF NOT EXISTS idx_amenity_pois_last_seen ON amenity_pois(last_seen_at_ms);
`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Projects ---

func (s *SQLiteStore) CreateProject(ctx context.Context, p *model.Project) error {
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
		return eris.Wrap(err, "sqlite: marshal address")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, address, normalized_address, latitude, longitude,
			geocoding_status, geocoding_source, geo_precision, geo_confidence, geo_formatted_address,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(addrJSON), p.NormalizedAddress, p.Latitude, p.Longitude,
		string(p.GeocodingStatus), p.GeocodingSource, p.GeoPrecision, p.GeoConfidence, p.GeoFormattedAddress,
		now, now,
	)
	return eris.Wrap(err, "sqlite: insert project")
}

const sqliteProjectColumns = `id, name, address, normalized_address, latitude, longitude,
	geocoding_status, geocoding_source, geo_precision, geo_confidence, geo_formatted_address,
	created_at, updated_at`

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteProjectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: project %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get project")
	}
	return p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	query := `SELECT ` + sqliteProjectColumns + ` FROM projects WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND geocoding_status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at ASC, id ASC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list projects")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan project")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list projects iterate")
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, p *model.Project) error {
	addrJSON, err := json.Marshal(p.Address)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal address")
	}
	p.UpdatedAt = nowUTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, address = ?, normalized_address = ?, latitude = ?, longitude = ?,
			geocoding_status = ?, geocoding_source = ?, geo_precision = ?, geo_confidence = ?,
			geo_formatted_address = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, string(addrJSON), p.NormalizedAddress, p.Latitude, p.Longitude,
		string(p.GeocodingStatus), p.GeocodingSource, p.GeoPrecision, p.GeoConfidence,
		p.GeoFormattedAddress, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update project %s", p.ID)
	}
	return checkRowsAffected(res, "project", p.ID)
}

func (s *SQLiteStore) SetGeocodingStatus(ctx context.Context, id string, status model.GeocodingStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET geocoding_status = ?, updated_at = ? WHERE id = ?`,
		string(status), nowUTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set geocoding status %s", id)
	}
	return checkRowsAffected(res, "project", id)
}

// --- Candidate locations ---

func (s *SQLiteStore) AddLocation(ctx context.Context, loc *model.ProjectLocation) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = nowUTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO project_locations (id, project_id, source_type, precision_level, confidence_score,
			latitude, longitude, formatted_address, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loc.ID, loc.ProjectID, string(loc.SourceType), loc.PrecisionLevel, loc.ConfidenceScore,
		loc.Latitude, loc.Longitude, loc.FormattedAddress, loc.IsActive, loc.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert location for project %s", loc.ProjectID)
}

func (s *SQLiteStore) DeactivateLocations(ctx context.Context, projectID string, source model.SourceType) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE project_locations SET is_active = 0 WHERE project_id = ? AND source_type = ? AND is_active = 1`,
		projectID, string(source),
	)
	return eris.Wrapf(err, "sqlite: deactivate %s locations for project %s", source, projectID)
}

func (s *SQLiteStore) ListLocations(ctx context.Context, projectID string) ([]model.ProjectLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, source_type, precision_level, confidence_score, latitude, longitude,
			formatted_address, is_active, created_at
		 FROM project_locations WHERE project_id = ? ORDER BY created_at ASC, id ASC`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list locations")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ProjectLocation
	for rows.Next() {
		var loc model.ProjectLocation
		var src string
		var conf sql.NullFloat64
		if err := rows.Scan(&loc.ID, &loc.ProjectID, &src, &loc.PrecisionLevel, &conf,
			&loc.Latitude, &loc.Longitude, &loc.FormattedAddress, &loc.IsActive, &loc.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan location")
		}
		loc.SourceType = model.SourceType(src)
		loc.ConfidenceScore = nullFloatPtr(conf)
		out = append(out, loc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list locations iterate")
}

// --- Amenity statistics ---

func (s *SQLiteStore) SaveAmenityStats(ctx context.Context, projectID string, stats []model.AmenitySliceStats) error {
	if len(stats) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin stats tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := nowUTC()
	for _, st := range stats {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO amenity_stats (project_id, amenity_type, radius_km, count_within_radius, nearest_distance_km, computed_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (project_id, amenity_type, radius_km) DO UPDATE SET
				count_within_radius = excluded.count_within_radius,
				nearest_distance_km = excluded.nearest_distance_km,
				computed_at = excluded.computed_at`,
			projectID, st.AmenityType, st.RadiusKM, st.Count, st.NearestKM, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert stats %s@%v", st.AmenityType, st.RadiusKM)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit stats")
}

func (s *SQLiteStore) ListAmenityStats(ctx context.Context, projectID string) ([]model.AmenitySliceStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, amenity_type, radius_km, count_within_radius, nearest_distance_km, computed_at
		 FROM amenity_stats WHERE project_id = ? ORDER BY amenity_type, radius_km`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list amenity stats")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.AmenitySliceStats
	for rows.Next() {
		var st model.AmenitySliceStats
		var nearest sql.NullFloat64
		if err := rows.Scan(&st.ProjectID, &st.AmenityType, &st.RadiusKM, &st.Count, &nearest, &st.ComputedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan amenity stats")
		}
		st.NearestKM = nullFloatPtr(nearest)
		out = append(out, st)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list amenity stats iterate")
}

// --- Scores ---

func (s *SQLiteStore) SaveScore(ctx context.Context, score *model.ProjectScore) error {
	missing, used, err := marshalDiagnostics(score)
	if err != nil {
		return err
	}
	if score.ComputedAt.IsZero() {
		score.ComputedAt = nowUTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO project_scores (project_id, amenity_score, location_score, connectivity_score,
			daily_needs_score, social_infra_score, overall_score, score_version, missing_inputs, inputs_used, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (project_id) DO UPDATE SET
			amenity_score = excluded.amenity_score,
			location_score = excluded.location_score,
			connectivity_score = excluded.connectivity_score,
			daily_needs_score = excluded.daily_needs_score,
			social_infra_score = excluded.social_infra_score,
			overall_score = excluded.overall_score,
			score_version = excluded.score_version,
			missing_inputs = excluded.missing_inputs,
			inputs_used = excluded.inputs_used,
			computed_at = excluded.computed_at`,
		score.ProjectID, score.AmenityScore, score.LocationScore, score.ConnectivityScore,
		score.DailyNeedsScore, score.SocialInfraScore, score.OverallScore, score.ScoreVersion,
		string(missing), string(used), score.ComputedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save score for project %s", score.ProjectID)
}

func (s *SQLiteStore) GetScore(ctx context.Context, projectID string) (*model.ProjectScore, error) {
	var ps model.ProjectScore
	var amenityScore sql.NullInt64
	var missing, used string
	err := s.db.QueryRowContext(ctx,
		`SELECT project_id, amenity_score, location_score, connectivity_score, daily_needs_score,
			social_infra_score, overall_score, score_version, missing_inputs, inputs_used, computed_at
		 FROM project_scores WHERE project_id = ?`,
		projectID,
	).Scan(&ps.ProjectID, &amenityScore, &ps.LocationScore, &ps.ConnectivityScore, &ps.DailyNeedsScore,
		&ps.SocialInfraScore, &ps.OverallScore, &ps.ScoreVersion, &missing, &used, &ps.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: score for project %s", projectID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get score")
	}
	if amenityScore.Valid {
		v := int(amenityScore.Int64)
		ps.AmenityScore = &v
	}
	if err := unmarshalDiagnostics(&ps, []byte(missing), []byte(used)); err != nil {
		return nil, err
	}
	return &ps, nil
}

// --- Geocode cache ---

func (s *SQLiteStore) GetCachedGeocode(ctx context.Context, address string) (*geocode.Result, error) {
	var r geocode.Result
	var precision string
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, formatted_address, geo_precision, source, raw
		 FROM geocode_cache WHERE address = ?`,
		address,
	).Scan(&r.Latitude, &r.Longitude, &r.FormattedAddress, &precision, &r.Source, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached geocode")
	}
	r.Precision = geocode.Precision(precision)
	if raw.Valid && raw.String != "" {
		r.Raw = json.RawMessage(raw.String)
	}
	r.Matched = true
	return &r, nil
}

func (s *SQLiteStore) SetCachedGeocode(ctx context.Context, address string, r *geocode.Result) error {
	if r == nil || !r.Matched {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO geocode_cache (address, latitude, longitude, formatted_address, geo_precision, source, raw, cached_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (address) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			formatted_address = excluded.formatted_address,
			geo_precision = excluded.geo_precision,
			source = excluded.source,
			raw = excluded.raw,
			cached_at_ms = excluded.cached_at_ms`,
		address, r.Latitude, r.Longitude, r.FormattedAddress, string(r.Precision), r.Source,
		nullString(r.Raw), nowUTC().UnixMilli(),
	)
	return eris.Wrap(err, "sqlite: set cached geocode")
}

// --- POI cache ---

func (s *SQLiteStore) FindPOIs(ctx context.Context, amenityType string, box geo.BBox, since time.Time) ([]amenity.Amenity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, provider_place_id, amenity_type, name, latitude, longitude, formatted_address, raw, last_seen_at_ms
		 FROM amenity_pois
		 WHERE amenity_type = ?
		   AND latitude BETWEEN ? AND ?
		   AND longitude BETWEEN ? AND ?
		   AND last_seen_at_ms >= ?`,
		amenityType, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, since.UnixMilli(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find pois")
	}
	defer rows.Close() //nolint:errcheck

	var out []amenity.Amenity
	for rows.Next() {
		var a amenity.Amenity
		var raw sql.NullString
		var seenMS int64
		if err := rows.Scan(&a.Provider, &a.ProviderPlaceID, &a.Type, &a.Name, &a.Latitude, &a.Longitude,
			&a.FormattedAddress, &raw, &seenMS); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan poi")
		}
		if raw.Valid && raw.String != "" {
			a.Raw = json.RawMessage(raw.String)
		}
		a.LastSeenAt = time.UnixMilli(seenMS).UTC()
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: find pois iterate")
}

// UpsertPOIs writes all rows in one transaction; each row is a single
// INSERT ... ON CONFLICT so concurrent writers never lose an update.
func (s *SQLiteStore) UpsertPOIs(ctx context.Context, pois []amenity.Amenity, seenAt time.Time) error {
	if len(pois) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin poi tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, a := range pois {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO amenity_pois (provider, provider_place_id, amenity_type, name, latitude, longitude,
				formatted_address, raw, last_seen_at_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (provider, provider_place_id) DO UPDATE SET
				amenity_type = excluded.amenity_type,
				name = excluded.name,
				latitude = excluded.latitude,
				longitude = excluded.longitude,
				formatted_address = excluded.formatted_address,
				raw = excluded.raw,
				last_seen_at_ms = excluded.last_seen_at_ms`,
			a.Provider, a.PlaceKey(), a.Type, a.Name, a.Latitude, a.Longitude,
			a.FormattedAddress, nullString(a.Raw), seenAt.UnixMilli(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert poi %s", a.PlaceKey())
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit pois")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProject(row scannable) (*model.Project, error) {
	var p model.Project
	var addrJSON, status string
	var lat, lon, conf sql.NullFloat64

	if err := row.Scan(&p.ID, &p.Name, &addrJSON, &p.NormalizedAddress, &lat, &lon,
		&status, &p.GeocodingSource, &p.GeoPrecision, &conf, &p.GeoFormattedAddress,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(addrJSON), &p.Address); err != nil {
		return nil, eris.Wrap(err, "unmarshal address")
	}
	p.GeocodingStatus = model.GeocodingStatus(status)
	p.Latitude = nullFloatPtr(lat)
	p.Longitude = nullFloatPtr(lon)
	p.GeoConfidence = nullFloatPtr(conf)
	return &p, nil
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func marshalDiagnostics(score *model.ProjectScore) ([]byte, []byte, error) {
	missing := score.MissingInputs
	if missing == nil {
		missing = []string{}
	}
	used := score.InputsUsed
	if used == nil {
		used = map[string]float64{}
	}
	mb, err := json.Marshal(missing)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal missing inputs")
	}
	ub, err := json.Marshal(used)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal inputs used")
	}
	return mb, ub, nil
}

func unmarshalDiagnostics(ps *model.ProjectScore, missing, used []byte) error {
	if err := json.Unmarshal(missing, &ps.MissingInputs); err != nil {
		return eris.Wrap(err, "store: unmarshal missing inputs")
	}
	if err := json.Unmarshal(used, &ps.InputsUsed); err != nil {
		return eris.Wrap(err, "store: unmarshal inputs used")
	}
	return nil
}

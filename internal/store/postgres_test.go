package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/locality-cli/internal/geo"
	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/pkg/amenity"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

var projectCols = []string{
	"id", "name", "address", "normalized_address", "latitude", "longitude",
	"geocoding_status", "geocoding_source", "geo_precision", "geo_confidence", "geo_formatted_address",
	"created_at", "updated_at",
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE EXTENSION IF NOT EXISTS postgis`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateProject(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(pgxmock.AnyArg(), "Green Acres", pgxmock.AnyArg(), "", pgxmock.AnyArg(), pgxmock.AnyArg(),
			"NOT_GEOCODED", "", "", pgxmock.AnyArg(), "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p := &model.Project{Name: "Green Acres"}
	require.NoError(t, s.CreateProject(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, model.GeocodingNotGeocoded, p.GeocodingStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProject(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()
	lat, lon, conf := 21.19, 81.28, 0.85

	mock.ExpectQuery(`SELECT .+ FROM projects WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(projectCols).AddRow(
			"p1", "Green Acres", []byte(`{"district":"Durg","state":"Chhattisgarh"}`), "Durg, Chhattisgarh, India",
			&lat, &lon, "SUCCESS", "nominatim", "district", &conf, "Durg", now, now,
		))

	p, err := s.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Durg", p.Address.District)
	assert.Equal(t, model.GeocodingSuccess, p.GeocodingStatus)
	require.True(t, p.HasCoordinates())
	assert.InDelta(t, 21.19, *p.Latitude, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProject_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM projects WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetProject(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProjects_Filter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM projects\s+WHERE \(\$1 = '' OR geocoding_status = \$1\)`).
		WithArgs("FAILED", 25, 0).
		WillReturnRows(pgxmock.NewRows(projectCols))

	out, err := s.ListProjects(context.Background(), ProjectFilter{Status: model.GeocodingFailed, Limit: 25})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProject_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE projects SET name`).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "missing",
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateProject(context.Background(), &model.Project{ID: "missing"})
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetGeocodingStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE projects SET geocoding_status = \$1`).
		WithArgs("PENDING", pgxmock.AnyArg(), "p1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.SetGeocodingStatus(context.Background(), "p1", model.GeocodingPending))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAmenityStats_BulkUpsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	nearest := 0.4

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_amenity_stats"}, amenityStatsUpsert.Columns).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "amenity_stats" .+ ON CONFLICT \("project_id", "amenity_type", "radius_km"\)`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	err := s.SaveAmenityStats(context.Background(), "p1", []model.AmenitySliceStats{
		{AmenityType: "grocery", RadiusKM: 1, Count: 3, NearestKM: &nearest},
		{AmenityType: "bank", RadiusKM: 5},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAmenityStats_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := s.SaveAmenityStats(context.Background(), "p1", []model.AmenitySliceStats{{AmenityType: "bank", RadiusKM: 5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save amenity stats")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveScore(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO project_scores .+ ON CONFLICT \(project_id\) DO UPDATE`).
		WithArgs("p1", pgxmock.AnyArg(), 78, 93, 77, 68, 78, "v1",
			[]byte(`["amenity_score"]`), []byte(`{"count:grocery@1km":3}`), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveScore(context.Background(), &model.ProjectScore{
		ProjectID: "p1",
		ScoreComputation: model.ScoreComputation{
			ScoreResult: model.ScoreResult{
				LocationScore: 78, ConnectivityScore: 93, DailyNeedsScore: 77,
				SocialInfraScore: 68, OverallScore: 78, ScoreVersion: "v1",
			},
			MissingInputs: []string{"amenity_score"},
			InputsUsed:    map[string]float64{"count:grocery@1km": 3},
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetScore_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM project_scores WHERE project_id = \$1`).
		WithArgs("p1").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetScore(context.Background(), "p1")
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedGeocode_Miss(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM geocode_cache WHERE address = \$1`).
		WithArgs("Durg, Chhattisgarh, India").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetCachedGeocode(context.Background(), "Durg, Chhattisgarh, India")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedGeocode_Hit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM geocode_cache WHERE address = \$1`).
		WithArgs("Durg").
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude", "formatted_address", "geo_precision", "source", "raw"}).
			AddRow(21.19, 81.28, "Durg", "district", "nominatim", []byte(`{"place_id":7}`)))

	got, err := s.GetCachedGeocode(context.Background(), "Durg")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Matched)
	assert.Equal(t, geocode.PrecisionDistrict, got.Precision)
	assert.JSONEq(t, `{"place_id":7}`, string(got.Raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetCachedGeocode_SkipsMisses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	require.NoError(t, s.SetCachedGeocode(context.Background(), "nowhere", &geocode.Result{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindPOIs_Envelope(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	box := geo.BBox{MinLat: 21.1, MinLon: 81.2, MaxLat: 21.3, MaxLon: 81.4}
	since := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	seen := since.Add(24 * time.Hour)

	mock.ExpectQuery(`geom && ST_MakeEnvelope\(\$2, \$3, \$4, \$5, 4326\)`).
		WithArgs("bank", 81.2, 21.1, 81.4, 21.3, since).
		WillReturnRows(pgxmock.NewRows([]string{
			"provider", "provider_place_id", "amenity_type", "name", "latitude", "longitude", "formatted_address", "raw", "last_seen_at",
		}).AddRow("overpass", "node/1", "bank", "SBI", 21.19, 81.28, "", []byte(nil), seen))

	got, err := s.FindPOIs(context.Background(), "bank", box, since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SBI", got[0].Name)
	assert.Equal(t, seen, got[0].LastSeenAt)
	assert.Nil(t, got[0].Raw)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPOIs(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	seen := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	// Rows are written in (provider, place key) order; "atm:..." sorts before "node/1".
	mock.ExpectExec(`INSERT INTO amenity_pois .+ ST_GeomFromEWKB\(\$7\)`).
		WithArgs("overpass", amenity.SyntheticPlaceID("atm", 21.2, 81.3), "atm", "", 21.2, 81.3,
			pgxmock.AnyArg(), "", pgxmock.AnyArg(), seen).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO amenity_pois`).
		WithArgs("overpass", "node/1", "bank", "SBI", 21.19, 81.28, pgxmock.AnyArg(), "", pgxmock.AnyArg(), seen).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.UpsertPOIs(context.Background(), []amenity.Amenity{
		{Type: "bank", Name: "SBI", Latitude: 21.19, Longitude: 81.28, Provider: "overpass", ProviderPlaceID: "node/1"},
		{Type: "atm", Latitude: 21.2, Longitude: 81.3, Provider: "overpass"},
	}, seen)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPOIs_RollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO amenity_pois`).
		WithArgs("overpass", "node/1", "bank", "", 21.19, 81.28,
			pgxmock.AnyArg(), "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := s.UpsertPOIs(context.Background(), []amenity.Amenity{
		{Type: "bank", Latitude: 21.19, Longitude: 81.28, Provider: "overpass", ProviderPlaceID: "node/1"},
	}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert poi node/1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPOIs_StableOrder(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	seen := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	for _, id := range []string{"node/1", "node/2", "way/7"} {
		mock.ExpectExec(`INSERT INTO amenity_pois`).
			WithArgs("overpass", id, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), seen).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	pois := []amenity.Amenity{
		{Type: "park", Latitude: 21.3, Longitude: 81.4, Provider: "overpass", ProviderPlaceID: "way/7"},
		{Type: "bank", Latitude: 21.2, Longitude: 81.3, Provider: "overpass", ProviderPlaceID: "node/2"},
		{Type: "bank", Latitude: 21.19, Longitude: 81.28, Provider: "overpass", ProviderPlaceID: "node/1"},
	}
	require.NoError(t, s.UpsertPOIs(context.Background(), pois, seen))
	assert.Equal(t, "way/7", pois[0].ProviderPlaceID, "caller slice is not reordered")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeactivateLocations(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE project_locations SET is_active = FALSE`).
		WithArgs("p1", string(model.SourceGeocodeNormalized)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.DeactivateLocations(context.Background(), "p1", model.SourceGeocodeNormalized))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointEWKB(t *testing.T) {
	b, err := pointEWKB(21.19, 81.28)
	require.NoError(t, err)

	g, err := ewkb.Unmarshal(b)
	require.NoError(t, err)
	pt, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, SRID, pt.SRID())
	assert.InDelta(t, 81.28, pt.X(), 1e-12)
	assert.InDelta(t, 21.19, pt.Y(), 1e-12)
}

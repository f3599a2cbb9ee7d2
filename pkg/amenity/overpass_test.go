package amenity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/locality-cli/internal/ratelimit"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		UserAgent:      "locality-test",
		Timeout:        5 * time.Second,
		MaxRetries:     2,
		BackoffFactor:  2,
		InitialBackoff: time.Millisecond,
		Limiter:        ratelimit.Every(0),
	}
}

const pharmacyElements = `{
	"version": 0.6,
	"elements": [
		{"type": "node", "id": 101, "lat": 21.1910, "lon": 81.2850,
		 "tags": {"amenity": "pharmacy", "name": "Jan Aushadhi", "addr:housenumber": "14", "addr:street": "Station Road", "addr:city": "Durg", "addr:postcode": "491001"}},
		{"type": "way", "id": 202, "center": {"lat": 21.1950, "lon": 81.2900},
		 "tags": {"healthcare": "pharmacy", "name": "Apollo Pharmacy"}},
		{"type": "node", "id": 101, "lat": 21.1910, "lon": 81.2850, "tags": {"amenity": "pharmacy"}},
		{"type": "relation", "id": 303, "tags": {"amenity": "pharmacy"}}
	]
}`

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(21.1904, 81.2849, 1.5, []Tag{{"amenity", "pharmacy"}})
	assert.True(t, strings.HasPrefix(q, "[out:json][timeout:25];("))
	assert.True(t, strings.HasSuffix(q, ");out center tags;"))
	assert.Contains(t, q, `node["amenity"="pharmacy"](around:1500,21.190400,81.284900);`)
	assert.Contains(t, q, `way["amenity"="pharmacy"](around:1500,21.190400,81.284900);`)
	assert.Contains(t, q, `relation["amenity"="pharmacy"](around:1500,21.190400,81.284900);`)
}

func TestBuildQuery_RadiusFloor(t *testing.T) {
	q := BuildQuery(0, 0, 0.0001, []Tag{{"amenity", "atm"}})
	assert.Contains(t, q, "(around:1,")
}

func TestOverpassSearch_ParsesAndDedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		data := r.PostForm.Get("data")
		assert.Contains(t, data, `["amenity"="pharmacy"]`)
		assert.Contains(t, data, `["healthcare"="pharmacy"]`)
		assert.Contains(t, data, "(around:2000,")
		_, _ = io.WriteString(w, pharmacyElements)
	}))
	defer srv.Close()

	pois, err := NewOverpassProvider(testConfig(srv.URL)).Search(context.Background(), TypePharmacy, centerLat, centerLon, 2)
	require.NoError(t, err)
	require.Len(t, pois, 2)

	assert.Equal(t, "node/101", pois[0].ProviderPlaceID)
	assert.Equal(t, "Jan Aushadhi", pois[0].Name)
	assert.Equal(t, "14, Station Road, Durg, 491001", pois[0].FormattedAddress)
	assert.Equal(t, TypePharmacy, pois[0].Type)
	assert.Equal(t, "overpass", pois[0].Provider)
	assert.NotEmpty(t, pois[0].Raw)

	assert.Equal(t, "way/202", pois[1].ProviderPlaceID)
	assert.InDelta(t, 21.1950, pois[1].Latitude, 1e-9)
	assert.InDelta(t, 81.2900, pois[1].Longitude, 1e-9)
	assert.Empty(t, pois[1].FormattedAddress)
}

func TestOverpassSearch_UnmappedTypeSkipsCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()

	pois, err := NewOverpassProvider(testConfig(srv.URL)).Search(context.Background(), "casino", centerLat, centerLon, 1)
	require.NoError(t, err)
	assert.Empty(t, pois)
	assert.Equal(t, int32(0), calls.Load())
}

func TestOverpassSearch_RetriesThenEmpty(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	pois, err := NewOverpassProvider(testConfig(srv.URL)).Search(context.Background(), TypeBank, centerLat, centerLon, 1)
	require.NoError(t, err)
	assert.Empty(t, pois)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOverpassSearch_RecoversAfterTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, pharmacyElements)
	}))
	defer srv.Close()

	pois, err := NewOverpassProvider(testConfig(srv.URL)).Search(context.Background(), TypePharmacy, centerLat, centerLon, 1)
	require.NoError(t, err)
	assert.Len(t, pois, 2)
}

func TestOverpassSearch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>rate limited</html>`)
	}))
	defer srv.Close()

	pois, err := NewOverpassProvider(testConfig(srv.URL)).Search(context.Background(), TypeATM, centerLat, centerLon, 1)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestOverpassSearch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, pharmacyElements)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOverpassProvider(testConfig(srv.URL)).Search(ctx, TypePharmacy, centerLat, centerLon, 1)
	require.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	assert.IsType(t, &OverpassProvider{}, p)

	_, err = NewProvider(Config{Provider: "foursquare"})
	require.Error(t, err)
}

func TestTags(t *testing.T) {
	tags, ok := Tags(TypeTransitStop)
	require.True(t, ok)
	assert.Contains(t, tags, Tag{"highway", "bus_stop"})
	assert.Contains(t, tags, Tag{"railway", "station"})

	_, ok = Tags("casino")
	assert.False(t, ok)

	types := Types()
	assert.Len(t, types, 12)
	assert.Equal(t, TypeATM, types[0])
}

func TestPlaceKey(t *testing.T) {
	a := Amenity{Type: TypeATM, Latitude: 21.1, Longitude: 81.25}
	assert.Equal(t, "atm:21.100000,81.250000", a.PlaceKey())

	a.ProviderPlaceID = "node/9"
	assert.Equal(t, "node/9", a.PlaceKey())
}

package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCacheDown = errors.New("cache down")

var raipurParts = AddressParts{
	AddressLine: "Plot 12",
	Tehsil:      "Raipur",
	District:    "Durg",
	StateCode:   "CG",
}

const (
	raipurFull     = "Plot 12, Tehsil Raipur, District Durg, Chhattisgarh, India"
	raipurTehsil   = "Tehsil Raipur, District Durg, Chhattisgarh, India"
	raipurDistrict = "District Durg, Chhattisgarh, India"
)

func TestClientGeocode_FirstCandidate(t *testing.T) {
	prov := newFakeProvider(map[string]*Result{
		raipurFull: {Latitude: 21.25, Longitude: 81.63, Precision: PrecisionExact, Source: "fake", Matched: true},
	})
	cache := NewMemoryCache()

	res, err := NewClient(prov, cache).Geocode(context.Background(), raipurParts)
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Equal(t, raipurFull, res.Candidate)
	assert.Equal(t, 0, res.Step)
	assert.False(t, res.FromCache)
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)
	assert.Equal(t, 1, prov.callCount())

	cached, found, err := cache.Get(context.Background(), raipurFull)
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, 21.25, cached.Latitude, 1e-9)
}

func TestClientGeocode_FallsBackAndCachesExactCandidate(t *testing.T) {
	prov := newFakeProvider(map[string]*Result{
		raipurDistrict: {Latitude: 21.19, Longitude: 81.28, Precision: PrecisionDistrict, Source: "fake", Matched: true},
	})
	cache := NewMemoryCache()

	res, err := NewClient(prov, cache).Geocode(context.Background(), raipurParts)
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Equal(t, raipurDistrict, res.Candidate)
	assert.Equal(t, 2, res.Step)
	assert.Equal(t, []string{raipurFull, raipurTehsil, raipurDistrict}, prov.calls)
	assert.InDelta(t, Confidence(PrecisionDistrict, false, 2), res.Confidence, 1e-9)

	assert.Equal(t, 1, cache.Len())
	_, found, _ := cache.Get(context.Background(), raipurDistrict)
	assert.True(t, found)
	_, found, _ = cache.Get(context.Background(), raipurFull)
	assert.False(t, found, "misses are not cached")
}

func TestClientGeocode_CacheHitSkipsProvider(t *testing.T) {
	prov := newFakeProvider(nil)
	cache := NewMemoryCache()
	require.NoError(t, cache.Put(context.Background(), raipurFull, &Result{
		Latitude: 21.25, Longitude: 81.63, Precision: PrecisionLocality, Source: "nominatim", Matched: true,
	}))

	res, err := NewClient(prov, cache).Geocode(context.Background(), raipurParts)
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.True(t, res.FromCache)
	assert.Equal(t, "nominatim", res.Result.Source)
	assert.Equal(t, 0, prov.callCount())
}

func TestClientGeocode_AllCandidatesFail(t *testing.T) {
	prov := newFakeProvider(nil)

	res, err := NewClient(prov, NewMemoryCache()).Geocode(context.Background(), raipurParts)
	require.NoError(t, err)
	assert.False(t, res.Matched())
	assert.Equal(t, raipurFull, res.Normalized.Text)
	assert.Equal(t, 3, prov.callCount())
}

func TestClientGeocode_CacheFailureDegradesToMiss(t *testing.T) {
	prov := newFakeProvider(map[string]*Result{
		raipurFull: {Latitude: 21.25, Longitude: 81.63, Precision: PrecisionExact, Source: "fake", Matched: true},
	})

	res, err := NewClient(prov, failingCache{}).Geocode(context.Background(), raipurParts)
	require.NoError(t, err)
	assert.True(t, res.Matched())
	assert.Equal(t, 1, prov.callCount())
}

func TestClientGeocode_NilCache(t *testing.T) {
	prov := newFakeProvider(map[string]*Result{
		raipurTehsil: {Latitude: 21.2, Longitude: 81.6, Precision: PrecisionTown, Source: "fake", Matched: true},
	})

	res, err := NewClient(prov, nil).Geocode(context.Background(), raipurParts)
	require.NoError(t, err)
	assert.True(t, res.Matched())
	assert.Equal(t, 1, res.Step)
}

func TestClientGeocode_LowConfidencePenalty(t *testing.T) {
	prov := newFakeProvider(map[string]*Result{
		raipurDistrict: {Latitude: 21.19, Longitude: 81.28, Precision: PrecisionDistrict, Source: "fake", Matched: true},
	})

	res, err := NewClient(prov, nil).Geocode(context.Background(), AddressParts{District: "Durg", StateCode: "CG"})
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.True(t, res.Normalized.LowConfidence)
	assert.InDelta(t, 0.36, res.Confidence, 1e-9)
}

func TestClientGeocode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(newFakeProvider(nil), nil).Geocode(ctx, raipurParts)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClientGeocodeText_Empty(t *testing.T) {
	prov := newFakeProvider(nil)
	r, fromCache, err := NewClient(prov, nil).GeocodeText(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.False(t, fromCache)
	assert.Equal(t, 0, prov.callCount())
}

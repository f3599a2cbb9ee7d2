package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_SamePointIsZero(t *testing.T) {
	assert.InDelta(t, 0, Haversine(21.25, 81.63, 21.25, 81.63), 1e-12)
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(21.19, 81.28, 19.07, 72.87)
	b := Haversine(19.07, 72.87, 21.19, 81.28)
	assert.InDelta(t, a, b, 1e-9)
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	d := Haversine(10, 75, 11, 75)
	assert.InDelta(t, 111.19, d, 0.5)
}

func TestHaversine_KnownPair(t *testing.T) {
	// Raipur to Durg is roughly 35 km.
	d := Haversine(21.2514, 81.6296, 21.1904, 81.2849)
	assert.InDelta(t, 36.3, d, 1.5)
}

func TestBoundingBox(t *testing.T) {
	b := BoundingBox(20, 80, 11.1)
	assert.InDelta(t, 19.9, b.MinLat, 1e-9)
	assert.InDelta(t, 20.1, b.MaxLat, 1e-9)
	assert.InDelta(t, 79.9, b.MinLon, 1e-9)
	assert.InDelta(t, 80.1, b.MaxLon, 1e-9)

	assert.True(t, b.Contains(20, 80))
	assert.True(t, b.Contains(20.1, 80.1))
	assert.False(t, b.Contains(20.2, 80))
	assert.False(t, b.Contains(20, 79.8))
}

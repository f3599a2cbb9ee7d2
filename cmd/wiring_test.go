package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/scoring"
)

func TestInitStore_SQLite(t *testing.T) {
	withConfig(t)
	ctx := context.Background()

	st, err := initStore(ctx)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	p := &model.Project{Name: "wired"}
	require.NoError(t, st.CreateProject(ctx, p))
	got, err := st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "wired", got.Name)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	c := withConfig(t)
	c.Store.Driver = "mysql"

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestNewGeocodeClient_UnknownProvider(t *testing.T) {
	c := withConfig(t)
	c.Geocode.Provider = "bing"

	_, err := newGeocodeClient(nil)
	assert.Error(t, err)
}

func TestNewAmenityCache_NoStore(t *testing.T) {
	withConfig(t)

	cache, err := newAmenityCache(nil)
	require.NoError(t, err)
	assert.NotNil(t, cache)
}

func TestLoadScoreConfig(t *testing.T) {
	c := withConfig(t)

	sc, err := loadScoreConfig()
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultVersion, sc.Version)

	c.Score.Version = "v2-pilot"
	sc, err = loadScoreConfig()
	require.NoError(t, err)
	assert.Equal(t, "v2-pilot", sc.Version)
}

func TestLoadScoreConfig_MissingFile(t *testing.T) {
	c := withConfig(t)
	c.Score.ConfigPath = "/nonexistent/score.yaml"

	_, err := loadScoreConfig()
	assert.Error(t, err)
}

func TestNewProcessor_MergesRequiredRadii(t *testing.T) {
	withConfig(t)
	ctx := context.Background()

	st, err := initStore(ctx)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	proc, err := newProcessor(st)
	require.NoError(t, err)

	radii := proc.Radii()
	assert.Contains(t, radii, "grocery")
	assert.Contains(t, radii, "bank")
}

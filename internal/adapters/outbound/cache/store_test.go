package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/detectlint/internal/adapters/outbound/cache"
	"github.com/abdidvp/detectlint/internal/domain"
)

func sampleBaseline() *domain.Baseline {
	return &domain.Baseline{
		ConfigHash: "abc123",
		Entries: map[string]domain.BaselineEntry{
			"brute-force": {Status: domain.StatusSuccess, ConfidenceScore: 100},
			"lsass":       {Status: domain.StatusWarning, ConfidenceScore: 93},
		},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := cache.New()
	projectPath := t.TempDir()

	require.NoError(t, store.Save(projectPath, sampleBaseline()))

	loaded, err := store.Load(projectPath)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "abc123", loaded.ConfigHash)
	assert.Equal(t, sampleBaseline().Entries, loaded.Entries)
	assert.FileExists(t, filepath.Join(projectPath, ".detectlint", "cache", "baseline.json"))
}

func TestStore_LoadMissing(t *testing.T) {
	loaded, err := cache.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_LoadCorrupt(t *testing.T) {
	projectPath := t.TempDir()
	dir := filepath.Join(projectPath, ".detectlint", "cache")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "baseline.json"), []byte("{"), 0o644))

	_, err := cache.New().Load(projectPath)
	assert.ErrorContains(t, err, "decoding baseline")
}

func TestStore_Invalidate(t *testing.T) {
	store := cache.New()
	projectPath := t.TempDir()
	require.NoError(t, store.Save(projectPath, sampleBaseline()))

	require.NoError(t, store.Invalidate(projectPath))
	loaded, err := store.Load(projectPath)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, store.Invalidate(projectPath), "invalidating twice is fine")
}

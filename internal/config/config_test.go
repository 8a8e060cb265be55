package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30, cfg.Capture.IntervalSeconds)
	assert.True(t, cfg.Capture.OCREnabled)
	assert.NotEmpty(t, cfg.Capture.ExcludedApps)
	assert.Contains(t, cfg.Capture.ExcludedApps, "1Password")

	assert.Equal(t, 300, cfg.Aggregation.IntervalSeconds)
	assert.Equal(t, 3, cfg.Aggregation.MinSamples)
	assert.False(t, cfg.Aggregation.DeleteImagesAfter)

	assert.Equal(t, 7, cfg.Retention.SampleDays)
	assert.Equal(t, 90, cfg.Retention.EntryDays)
	assert.Equal(t, 365, cfg.Retention.SummaryDays)
	assert.Zero(t, cfg.Retention.StorageBudgetBytes)
}

func TestLoadMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
capture:
  interval_seconds: 60
retention:
  sample_days: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Capture.IntervalSeconds)
	assert.Equal(t, 3, cfg.Retention.SampleDays)
	// Untouched sections keep their defaults.
	assert.Equal(t, 90, cfg.Retention.EntryDays)
	assert.Equal(t, "retrace.db", cfg.Storage.SQLiteFile)
}

func TestLoadClampsInterval(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{"below minimum", "capture:\n  interval_seconds: 1\n", MinIntervalSeconds},
		{"above maximum", "capture:\n  interval_seconds: 600\n", MaxIntervalSeconds},
		{"in range", "capture:\n  interval_seconds: 45\n", 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Capture.IntervalSeconds)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrCreateAtWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadOrCreateAt(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Capture.IntervalSeconds)

	// The file now exists and round-trips.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "interval_seconds: 30")

	again, err := LoadOrCreateAt(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Capture.IntervalSeconds, again.Capture.IntervalSeconds)
}

func TestDatabaseAndImagePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Path = "/var/lib/retrace"

	dbPath, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/retrace", "retrace.db"), dbPath)

	imgPath, err := cfg.ImagePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/retrace", "captures"), imgPath)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/.config/retrace")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/retrace"), got)

	got, err = expandPath("/absolute/path")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/path", got)
}

func TestDefaultExcludedAppsCoverSensitiveSurfaces(t *testing.T) {
	apps := DefaultExcludedApps()

	for _, want := range []string{"1Password", "Bitwarden", "Keychain Access", "SecurityAgent"} {
		assert.Contains(t, apps, want)
	}
}

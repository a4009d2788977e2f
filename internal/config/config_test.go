package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "data/data.json", cfg.Paths.Data)
	assert.Equal(t, "all", cfg.Run.SourceFilter)
	assert.Equal(t, 25, cfg.Run.MaxEntriesPerRun)
	assert.NotEmpty(t, cfg.Filter.Keywords)
	assert.NotEmpty(t, cfg.Sources.CourtQueries)
	assert.Equal(t, 150, cfg.Filter.MaxItems)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(anthropicAPIKeyEnv, "key-123")
	t.Setenv(lookbackDaysEnv, "14")
	t.Setenv(dryRunEnv, "TRUE")
	t.Setenv(sourceFilterEnv, "courtlistener")

	cfg := Load()

	assert.Equal(t, "key-123", cfg.Keys.Anthropic)
	assert.Equal(t, 14, cfg.Run.LookbackDays)
	assert.True(t, cfg.Run.DryRun)
	assert.Equal(t, "courtlistener", cfg.Run.SourceFilter)
}

func TestLoadInvalidLookbackIgnored(t *testing.T) {
	t.Setenv(lookbackDaysEnv, "soon")

	cfg := Load()
	assert.Zero(t, cfg.Run.LookbackDays)
}

func TestLoadMergesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	yaml := `
paths:
  data: custom/data.json
filter:
  keywords: [one, two]
limits:
  anthropic:
    per_minute: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	assert.Equal(t, "custom/data.json", cfg.Paths.Data)
	assert.Equal(t, []string{"one", "two"}, cfg.Filter.Keywords)
	// Unset sections keep their defaults.
	assert.Equal(t, "data/state.json", cfg.Paths.State)
	assert.Equal(t, 10, cfg.Limits["anthropic"].PerMinute)
	assert.Equal(t, Quota{PerHour: 500}, cfg.Limits["federal_register"])
}

func TestQuotaWindow(t *testing.T) {
	calls, window := Quota{PerMinute: 50}.Window()
	assert.Equal(t, 50, calls)
	assert.Equal(t, time.Minute, window)

	calls, window = Quota{PerDay: 100}.Window()
	assert.Equal(t, 100, calls)
	assert.Equal(t, 24*time.Hour, window)

	calls, window = Quota{}.Window()
	assert.Zero(t, calls)
	assert.Zero(t, window)
}

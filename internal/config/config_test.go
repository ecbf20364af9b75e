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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.HTTP.RetryDelay)
	assert.Equal(t, time.Second, cfg.HTTP.RequestPause)
	assert.Equal(t, 2015, cfg.Period.StartYear)
	assert.Equal(t, 2025, cfg.Period.EndYear)
	assert.Equal(t, "dados_nordeste", cfg.Paths.DataDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Portal.APIKey)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PIPELINE_PERIOD_START_YEAR", "2020")
	t.Setenv("PIPELINE_PERIOD_END_YEAR", "2022")
	t.Setenv("PIPELINE_HTTP_MAX_ATTEMPTS", "5")
	t.Setenv("PIPELINE_PORTAL_API_KEY", "abc123")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2020, cfg.Period.StartYear)
	assert.Equal(t, 2022, cfg.Period.EndYear)
	assert.Equal(t, 5, cfg.HTTP.MaxAttempts)
	assert.Equal(t, "abc123", cfg.Portal.APIKey)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("portal:\n  api_key: from-file\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Portal.APIKey)
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("portal:\n  api_key: from-file\n"), 0o644))
	t.Setenv("PIPELINE_PORTAL_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Portal.APIKey)
}

func TestLoadRejectsInvertedPeriod(t *testing.T) {
	t.Setenv("PIPELINE_PERIOD_END_YEAR", "2010")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2015, cfg.Period.StartYear)
}

func TestPeriodYears(t *testing.T) {
	p := PeriodConfig{StartYear: 2021, EndYear: 2023}
	assert.Equal(t, []int{2021, 2022, 2023}, p.Years())
	assert.Equal(t, "2021-2023", p.String())

	single := PeriodConfig{StartYear: 2024, EndYear: 2024}
	assert.Equal(t, []int{2024}, single.Years())
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "Ceará", StateName("CE"))
	assert.Equal(t, "Rio Grande do Norte", StateName("RN"))
	assert.Equal(t, "", StateName("SP"))
	assert.Equal(t, "", StateName(""))
}

func TestStateCodesCoverTable(t *testing.T) {
	assert.Len(t, StateCodes, len(NortheastStates))
	for _, uf := range StateCodes {
		s, ok := NortheastStates[uf]
		require.True(t, ok, uf)
		assert.Equal(t, uf, s.UF)
		assert.NotEmpty(t, s.IBGECode)
	}
}

func TestPathsLayout(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(PathsConfig{DataDir: base})
	require.NoError(t, paths.EnsureDirectories())

	assert.Equal(t, filepath.Join(base, "raw", "dump.json"), paths.RawPath("dump.json"))
	assert.Equal(t, filepath.Join(base, "processed", "x.csv"), paths.ProcessedPath("x.csv"))
	assert.Equal(t, filepath.Join(base, "metadata_coleta.json"), paths.MetadataPath())

	for _, dir := range []string{paths.RawDir, paths.ProcessedDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMetadataWriteRead(t *testing.T) {
	meta := NewRunMetadata("2015-2025", []string{"bacen", "siof"})
	meta.Counts["bacen"] = 1320
	meta.Counts["siof"] = 0
	meta.Finish(time.Now().Add(-2 * time.Second))

	_, err := uuid.Parse(meta.RunID)
	require.NoError(t, err, "run ID must be a UUID")
	assert.Len(t, meta.States, 9)
	assert.GreaterOrEqual(t, meta.DurationSeconds, 2.0)

	path := filepath.Join(t.TempDir(), "metadata_coleta.json")
	require.NoError(t, meta.Write(path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, meta.RunID, got.RunID)
	assert.Equal(t, "2015-2025", got.Period)
	assert.Equal(t, []string{"bacen", "siof"}, got.Modules)
	assert.Equal(t, 1320, got.Counts["bacen"])
}

func TestRunMetadataWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	meta := NewRunMetadata("2020-2021", nil)
	meta.Finish(time.Now())
	require.NoError(t, meta.Write(filepath.Join(dir, "metadata_coleta.json")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "metadata_coleta.json", entries[0].Name())
}

func TestReadMissingMetadata(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunMetadataOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata_coleta.json")

	first := NewRunMetadata("2015-2025", []string{"bacen"})
	first.Finish(time.Now())
	require.NoError(t, first.Write(path))

	second := NewRunMetadata("2015-2025", []string{"siof"})
	second.Finish(time.Now())
	require.NoError(t, second.Write(path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, got.RunID, "latest run replaces the record")
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the on-disk layout under the configured data
// directory. Raw holds per-source dumps and the scraper cache,
// Processed holds the canonical snapshots, Logs holds run logs.
type Paths struct {
	BaseDir      string
	RawDir       string
	ProcessedDir string
	LogsDir      string
}

// NewPaths derives the directory layout from PathsConfig.
func NewPaths(cfg PathsConfig) *Paths {
	base := cfg.DataDir
	if base == "" {
		base = "dados_nordeste"
	}
	return &Paths{
		BaseDir:      base,
		RawDir:       filepath.Join(base, "raw"),
		ProcessedDir: filepath.Join(base, "processed"),
		LogsDir:      filepath.Join(base, "logs"),
	}
}

// EnsureDirectories creates the full layout. A failure here is fatal
// to the caller: nothing can be persisted without it.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.BaseDir, p.RawDir, p.ProcessedDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RawPath returns the path of a raw dump or cache file.
func (p *Paths) RawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// ProcessedPath returns the path of a canonical snapshot.
func (p *Paths) ProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// LogPath returns the path of a log file.
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// MetadataPath returns the path of the run-metadata record.
func (p *Paths) MetadataPath() string {
	return filepath.Join(p.BaseDir, "metadata_coleta.json")
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ciciatech/projeto-bruno/internal/config"
)

// RunMetadata is the one-JSON-object-per-run record written at the
// end of every pipeline execution.
type RunMetadata struct {
	RunID           string         `json:"run_id"`
	Timestamp       time.Time      `json:"timestamp"`
	DurationSeconds float64        `json:"duration_seconds"`
	Period          string         `json:"period"`
	States          []string       `json:"states"`
	Modules         []string       `json:"modules"`
	Counts          map[string]int `json:"counts"`
}

// NewRunMetadata starts a metadata record for one run.
func NewRunMetadata(period string, modules []string) *RunMetadata {
	return &RunMetadata{
		RunID:   uuid.NewString(),
		Period:  period,
		States:  append([]string(nil), config.StateCodes...),
		Modules: append([]string(nil), modules...),
		Counts:  map[string]int{},
	}
}

// Finish stamps the completion time and duration.
func (m *RunMetadata) Finish(start time.Time) {
	m.Timestamp = time.Now().UTC()
	m.DurationSeconds = time.Since(start).Seconds()
}

// Write persists the record atomically.
func (m *RunMetadata) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "metadata.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create metadata temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write run metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close metadata temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Read loads a previously written record.
func Read(path string) (*RunMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m RunMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse run metadata: %w", err)
	}
	return &m, nil
}

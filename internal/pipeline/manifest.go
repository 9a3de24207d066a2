package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	apperrors "cobranza/internal/errors"
	"cobranza/internal/files"
)

// Run and stage statuses recorded in the manifest
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunManifest records what one command run read, did and wrote. It is
// written next to the outputs as <command>_manifest.json.
type RunManifest struct {
	mu sync.RWMutex

	RunID     string    `json:"run_id"`
	Command   string    `json:"command"`
	Version   string    `json:"version"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`

	Inputs  map[string]*DataInfo `json:"inputs"`
	Stages  []StageExecution     `json:"stages"`
	Outputs []OutputInfo         `json:"outputs"`
}

// DataInfo describes a group of input files
type DataInfo struct {
	Type      string   `json:"type"`
	Location  string   `json:"location"`
	FileCount int      `json:"file_count"`
	TotalSize int64    `json:"total_size"`
	Files     []string `json:"files"`
	Rows      int      `json:"rows"`

	// Checksums maps file name to its BLAKE2b-256 digest
	Checksums map[string]string `json:"checksums,omitempty"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	Name      string         `json:"name"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time,omitempty"`
	Duration  string         `json:"duration,omitempty"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// OutputInfo describes a file written by the run
type OutputInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Rows int    `json:"rows,omitempty"`
}

// NewRunManifest creates a manifest for a run that starts now
func NewRunManifest(runID, command, version string) *RunManifest {
	return &RunManifest{
		RunID:     runID,
		Command:   command,
		Version:   version,
		StartTime: time.Now(),
		Status:    StatusRunning,
		Inputs:    make(map[string]*DataInfo),
		Stages:    []StageExecution{},
		Outputs:   []OutputInfo{},
	}
}

// AddInput records a group of input files with their checksums. A file
// that cannot be hashed is listed without one.
func (m *RunManifest) AddInput(dataType, location string, found []files.FileInfo, rows int) {
	names := make([]string, len(found))
	sums := make(map[string]string, len(found))
	for i, f := range found {
		names[i] = f.Name
		if sum, err := files.Checksum(f.Path); err == nil {
			sums[f.Name] = sum
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inputs[dataType] = &DataInfo{
		Type:      dataType,
		Location:  location,
		FileCount: len(found),
		TotalSize: files.TotalSize(found),
		Files:     names,
		Rows:      rows,
		Checksums: sums,
	}
}

// RecordStageStart records the start of a stage
func (m *RunManifest) RecordStageStart(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Stages = append(m.Stages, StageExecution{
		Name:      name,
		StartTime: time.Now(),
		Status:    StatusRunning,
	})
}

// RecordStageEnd closes the most recent execution of the named stage
func (m *RunManifest) RecordStageEnd(name string, err error, metadata map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.Stages) - 1; i >= 0; i-- {
		stage := &m.Stages[i]
		if stage.Name != name || stage.Status != StatusRunning {
			continue
		}
		stage.EndTime = time.Now()
		stage.Duration = stage.EndTime.Sub(stage.StartTime).String()
		stage.Metadata = metadata
		if err != nil {
			stage.Status = StatusFailed
			stage.Error = err.Error()
		} else {
			stage.Status = StatusCompleted
		}
		return
	}
}

// AddOutput records a written file
func (m *RunManifest) AddOutput(name, path string, size int64, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Outputs = append(m.Outputs, OutputInfo{Name: name, Path: path, Size: size, Rows: rows})
}

// Finish marks the run completed, or failed when err is not nil
func (m *RunManifest) Finish(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime).String()
	if err != nil {
		m.Status = StatusFailed
		m.Error = err.Error()
		return
	}
	m.Status = StatusCompleted
}

// StageStatus returns the status of the last execution of a stage, or ""
func (m *RunManifest) StageStatus(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.Stages) - 1; i >= 0; i-- {
		if m.Stages[i].Name == name {
			return m.Stages[i].Status
		}
	}
	return ""
}

// Save writes the manifest as indented JSON through the file manager
func (m *RunManifest) Save(fm *files.Manager, name string) error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := fm.WriteFile(name, append(data, '\n')); err != nil {
		return apperrors.NewStorageError("failed to write manifest", err).
			WithContext("path", fm.Path(name))
	}
	return nil
}

// LoadManifest reads a manifest written by Save
func LoadManifest(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}

// ManifestName returns the manifest file name for a command
func ManifestName(command string) string {
	return command + "_manifest.json"
}

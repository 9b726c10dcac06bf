package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/dsg/pkg/domain"
)

// StatusFile implements ports.StatusWriter and ports.StatusReader on a JSON
// file. Progress UIs poll the file; every write replaces it atomically so a
// reader sees either the previous record or the new one.
type StatusFile struct {
	Path string
}

// NewStatusFile creates a writer for path. The parent directory is created
// on first write.
func NewStatusFile(path string) *StatusFile {
	return &StatusFile{Path: path}
}

// WriteStatus replaces the status file with progress.
// It writes to a temporary file first, syncs via fsync, and then renames it over the destination.
func (f *StatusFile) WriteStatus(ctx context.Context, progress domain.Progress) error {
	if f.Path == "" {
		return fmt.Errorf("status path cannot be empty")
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure status directory: %w", err)
	}

	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	// same directory, so the rename stays on one filesystem
	tmpFile, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(f.Path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.Path); err != nil {
		return fmt.Errorf("failed to rename temp file to status file: %w", err)
	}
	return nil
}

// ReadStatus loads the status file. A missing file reads as idle.
func (f *StatusFile) ReadStatus(ctx context.Context) (domain.Progress, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Progress{Status: domain.StatusIdle}, nil
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to read status file: %w", err)
	}

	var progress domain.Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		return domain.Progress{}, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return progress, nil
}

package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDestination writes the export to a local file. The file is replaced
// atomically so readers never see a partial export.
type FileDestination struct {
	path string
}

// NewFileDestination creates a destination writing to path.
func NewFileDestination(path string) *FileDestination {
	return &FileDestination{path: path}
}

func (d *FileDestination) String() string { return "file:" + d.path }

// Write replaces the file's contents with data.
func (d *FileDestination) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".flock-export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

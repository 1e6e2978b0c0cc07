// Package loader reads the annotation dump, the ground-truth dataset and the
// camera rotation matrices from JSON files on disk.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxFileSize bounds the size of any input file.
const maxFileSize = 512 * 1024 * 1024

// readJSON decodes the JSON file at path into v.
func readJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("input file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", cleanPath, err)
	}
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("input file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cleanPath, err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", cleanPath, err)
	}
	return nil
}

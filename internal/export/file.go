package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type FileExporter struct {
	Path string
}

func NewFileExporter(path string) *FileExporter {
	return &FileExporter{Path: path}
}

func (f *FileExporter) Export(ctx context.Context, mapping map[string]string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := Encode(mapping)
	if err != nil {
		return Result{}, err
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", f.Path, err)
	}

	return Result{Destinations: []string{f.Path}, Entries: len(mapping)}, nil
}

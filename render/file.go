package render

import (
	"cine-grid/grid"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFile renders layout to path, replacing any previous output in one
// rename. A path of "-" writes to stdout.
func WriteFile(path string, r Renderer, layout grid.Layout) error {
	if path == "-" {
		return r.Render(os.Stdout, layout)
	}
	return writeAtomic(path, func(w io.Writer) error {
		return r.Render(w, layout)
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces the file at path with content. The data goes to
// a temp file in the same directory which is synced and renamed over path,
// so concurrent readers see either the old or the new file.
func WriteFileAtomic(path string, content []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".inkpress-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	// CreateTemp uses 0600; the artifact is served publicly.
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// Package atomicfile provides crash-safe file replacement: write to a temp
// file in the target directory, then rename over the canonical path.
package atomicfile

import (
	"os"
	"path/filepath"
)

// Write replaces path's contents with data, atomically from the
// perspective of any reader of path.
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

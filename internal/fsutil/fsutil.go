// Package fsutil holds the small filesystem helpers shared by the generators.
package fsutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Exists reports whether anything exists at p.
func Exists(fs vfs.FileSystem, p string) (bool, error) {
	_, err := fs.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", p, err)
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(fs vfs.FileSystem, dir string) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

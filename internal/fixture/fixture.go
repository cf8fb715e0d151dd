// Package fixture loads txtar archives into in-memory filesystems for tests.
package fixture

import (
	"path"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"golang.org/x/tools/txtar"
)

// FS returns a memory filesystem holding the files of the txtar archive at file.
func FS(t *testing.T, file string) vfs.FileSystem {
	t.Helper()

	archive, err := txtar.ParseFile(file)
	if err != nil {
		t.Fatalf("parse fixture %s: %v", file, err)
	}

	return FromArchive(t, archive)
}

// FromArchive returns a memory filesystem holding the files of archive.
func FromArchive(t *testing.T, archive *txtar.Archive) vfs.FileSystem {
	t.Helper()

	fs := memoryfs.New()
	for _, f := range archive.Files {
		Write(t, fs, f.Name, string(f.Data))
	}
	return fs
}

// Write stores content at p, creating parent directories.
func Write(t *testing.T, fs vfs.FileSystem, p, content string) {
	t.Helper()

	if err := fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path.Dir(p), err)
	}
	if err := vfs.WriteFile(fs, p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

// Read returns the content at p.
func Read(t *testing.T, fs vfs.FileSystem, p string) string {
	t.Helper()

	data, err := vfs.ReadFile(fs, p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(data)
}

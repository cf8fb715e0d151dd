package asset

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/Yamashou/refgen/codegen"
	"github.com/Yamashou/refgen/internal/fsutil"
)

// MetaPath is the path of the .meta file Unity keeps next to p.
func MetaPath(p string) string {
	return p + ".meta"
}

// Metas reads and writes the .meta files of generated files.
type Metas struct {
	fs      vfs.FileSystem
	emitter *codegen.Emitter
	enabled bool
	logger  *slog.Logger
}

// NewMetas returns a meta store. When enabled is false existing .meta files
// are still read but none are written.
func NewMetas(fs vfs.FileSystem, emitter *codegen.Emitter, enabled bool, logger *slog.Logger) *Metas {
	return &Metas{
		fs:      fs,
		emitter: emitter,
		enabled: enabled,
		logger:  logger,
	}
}

// GUID returns the GUID recorded in the .meta file of p, or "" when there is none.
func (m *Metas) GUID(p string) (string, error) {
	ok, err := fsutil.Exists(m.fs, MetaPath(p))
	if err != nil || !ok {
		return "", err
	}

	data, err := vfs.ReadFile(m.fs, MetaPath(p))
	if err != nil {
		return "", fmt.Errorf("unable to read meta: %w", err)
	}

	var meta struct {
		GUID string `yaml:"guid"`
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return "", fmt.Errorf("unable to parse meta %s: %w", MetaPath(p), err)
	}
	return meta.GUID, nil
}

// EnsureScript makes sure the script at p has a .meta file and returns its
// GUID and whether the .meta file was written.
func (m *Metas) EnsureScript(p string) (string, bool, error) {
	return m.ensure(p, scriptMeta)
}

// EnsureAsset makes sure the asset at p has a .meta file and returns its
// GUID and whether the .meta file was written.
func (m *Metas) EnsureAsset(p string) (string, bool, error) {
	return m.ensure(p, assetMeta)
}

func (m *Metas) ensure(p string, build func(guid string) *Meta) (string, bool, error) {
	guid, err := m.GUID(p)
	if err != nil || guid != "" {
		return guid, false, err
	}
	if !m.enabled {
		return "", false, nil
	}

	guid = NewGUID()
	written, err := m.emitter.Emit(MetaPath(p), func(w io.Writer) error {
		return yaml.NewEncoder(w).Encode(build(guid))
	})
	if err != nil {
		return "", false, err
	}
	if !written {
		// the file appeared but holds no GUID
		return "", false, fmt.Errorf("meta %s has no guid", MetaPath(p))
	}

	return guid, true, nil
}

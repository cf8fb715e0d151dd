package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Manifest names types that get holders without carrying the marker
// attribute, for scripts that cannot be edited (packages, plugins).
type Manifest struct {
	Types []ManifestEntry `yaml:"types"`
}

type ManifestEntry struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace,omitempty"`
}

func (e ManifestEntry) FullName() string {
	if e.Namespace == "" {
		return e.Name
	}
	return e.Namespace + "." + e.Name
}

// LoadManifest reads the manifest at p.
func LoadManifest(fs vfs.FileSystem, p string) (*Manifest, error) {
	content, err := vfs.ReadFile(fs, p)
	if err != nil {
		return nil, fmt.Errorf("unable to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.NewDecoder(bytes.NewReader(content), yaml.DisallowUnknownField()).Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to parse manifest: %w", err)
	}

	for i, e := range m.Types {
		if e.Name == "" {
			return nil, fmt.Errorf("manifest: types[%d]: 'name' must be set", i)
		}
	}

	return &m, nil
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/gobwas/glob"
)

var ErrConfigNotFound = errors.New("config file not found")

// DefaultFilenames are the names FindConfigFile looks for, in order.
var DefaultFilenames = []string{".refgen.yml", "refgen.yml", ".refgen.yaml", "refgen.yaml"}

// Config represents the config file.
type Config struct {
	Project     string        `yaml:"project,omitempty"`
	Namespace   string        `yaml:"namespace,omitempty"`
	ScriptsRoot string        `yaml:"scripts_root,omitempty"`
	AssetsRoot  string        `yaml:"assets_root,omitempty"`
	BaseRoot    string        `yaml:"base_root,omitempty"`
	ScriptExt   string        `yaml:"script_ext,omitempty"`
	AssetExt    string        `yaml:"asset_ext,omitempty"`
	BaseImport  string        `yaml:"base_import,omitempty"`
	Marker      string        `yaml:"marker,omitempty"`
	Source      SourceConfig  `yaml:"source,omitempty"`
	Naming      NamingConfig  `yaml:"naming,omitempty"`
	Manifest    string        `yaml:"manifest,omitempty"`
	Report      string        `yaml:"report,omitempty"`
	Refresh     RefreshConfig `yaml:"refresh,omitempty"`
	Meta        *bool         `yaml:"meta,omitempty"`
}

// SourceConfig selects the scripts that are scanned for marked types.
type SourceConfig struct {
	Root    string   `yaml:"root,omitempty"`
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

type NamingConfig struct {
	HolderSuffix string `yaml:"holder_suffix,omitempty"`
	BinderSuffix string `yaml:"binder_suffix,omitempty"`
	// LegacySubstringMatch classifies and strips the holder suffix wherever it
	// occurs in a name instead of only at its end.
	LegacySubstringMatch bool `yaml:"legacy_substring_match,omitempty"`
}

// RefreshConfig is the external command run when the host must pick up new scripts.
type RefreshConfig struct {
	Command []string `yaml:"command,omitempty"`
}

// Default returns the configuration of a stock Unity project.
func Default() *Config {
	return &Config{
		Project:     ".",
		Namespace:   "Scriptables.References",
		ScriptsRoot: "Assets/Scripts/Scriptables/References/Generated",
		AssetsRoot:  "Assets/Data/References",
		BaseRoot:    "Assets/Scripts/Scriptables/References",
		ScriptExt:   "cs",
		AssetExt:    "asset",
		BaseImport:  "using UnityEngine;",
		Marker:      "ReferenceAutoGeneration",
		Source: SourceConfig{
			Root:    "Assets",
			Include: []string{"**/*.cs"},
		},
		Naming: NamingConfig{
			HolderSuffix: "RefSO",
			BinderSuffix: "RefSetter",
		},
		Meta: ptr(true),
	}
}

// FindConfigFile searches dir for the first of filenames that exists.
func FindConfigFile(dir string, filenames []string) (string, error) {
	for _, name := range filenames {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			continue
		}
		return p, nil
	}

	return "", fmt.Errorf("%w: looked for %s in %s", ErrConfigNotFound, strings.Join(filenames, ", "), dir)
}

// LoadConfig loads and parses the config file. Unset keys take their default
// values and a relative project root is resolved against the config file's
// directory.
func LoadConfig(configFilename string) (*Config, error) {
	configContent, err := os.ReadFile(configFilename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	c, err := Parse(configContent)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(c.Project) {
		c.Project = filepath.Join(filepath.Dir(configFilename), c.Project)
	}

	return c, nil
}

// Parse decodes config content, applies defaults and validates the result.
func Parse(content []byte) (*Config, error) {
	c := Default()

	yamlDecoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(content)))), yaml.DisallowUnknownField())
	// an empty file is a valid config of defaults
	if err := yamlDecoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	c.fill()

	if err := c.Check(); err != nil {
		return nil, err
	}

	return c, nil
}

// fill restores defaults for keys that were given but left empty.
func (c *Config) fill() {
	d := Default()
	if c.Project == "" {
		c.Project = d.Project
	}
	if c.Namespace == "" {
		c.Namespace = d.Namespace
	}
	if c.ScriptExt == "" {
		c.ScriptExt = d.ScriptExt
	}
	if c.AssetExt == "" {
		c.AssetExt = d.AssetExt
	}
	if c.BaseImport == "" {
		c.BaseImport = d.BaseImport
	}
	if c.Marker == "" {
		c.Marker = d.Marker
	}
	if len(c.Source.Include) == 0 {
		c.Source.Include = d.Source.Include
	}
	if c.Naming.HolderSuffix == "" {
		c.Naming.HolderSuffix = d.Naming.HolderSuffix
	}
	if c.Naming.BinderSuffix == "" {
		c.Naming.BinderSuffix = d.Naming.BinderSuffix
	}
	if c.Meta == nil {
		c.Meta = d.Meta
	}
	if c.ScriptsRoot == "" {
		c.ScriptsRoot = d.ScriptsRoot
	}
	if c.AssetsRoot == "" {
		c.AssetsRoot = d.AssetsRoot
	}
	if c.BaseRoot == "" {
		c.BaseRoot = d.BaseRoot
	}
	if c.Source.Root == "" {
		c.Source.Root = d.Source.Root
	}
	c.ScriptsRoot = path.Clean(filepath.ToSlash(c.ScriptsRoot))
	c.AssetsRoot = path.Clean(filepath.ToSlash(c.AssetsRoot))
	c.BaseRoot = path.Clean(filepath.ToSlash(c.BaseRoot))
	c.Source.Root = path.Clean(filepath.ToSlash(c.Source.Root))
}

// Check validates the config.
func (c *Config) Check() error {
	if c.Naming.HolderSuffix == c.Naming.BinderSuffix {
		return fmt.Errorf("naming: holder_suffix and binder_suffix must differ, both are %q", c.Naming.HolderSuffix)
	}

	for key, p := range map[string]string{
		"scripts_root": c.ScriptsRoot,
		"assets_root":  c.AssetsRoot,
		"base_root":    c.BaseRoot,
		"source.root":  c.Source.Root,
	} {
		if p == "" || p == "." {
			return fmt.Errorf("'%s' must be set", key)
		}
		if path.IsAbs(p) || strings.HasPrefix(p, "../") || p == ".." {
			return fmt.Errorf("'%s' must be relative to the project and stay inside it: %s", key, p)
		}
	}

	for key, ext := range map[string]string{"script_ext": c.ScriptExt, "asset_ext": c.AssetExt} {
		if strings.HasPrefix(ext, ".") {
			return fmt.Errorf("'%s' must not start with a dot: %s", key, ext)
		}
	}

	if !strings.HasPrefix(c.BaseImport, "using ") || !strings.HasSuffix(c.BaseImport, ";") {
		return fmt.Errorf("'base_import' must be a using directive: %s", c.BaseImport)
	}

	for _, pattern := range append(append([]string{}, c.Source.Include...), c.Source.Exclude...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("source: invalid pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// Marshal encodes the config as YAML, the format LoadConfig reads.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.MarshalWithOptions(c, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("unable to encode config: %w", err)
	}
	return out, nil
}

// MetaEnabled reports whether Unity .meta files are written next to generated files.
func (c *Config) MetaEnabled() bool {
	return c.Meta == nil || *c.Meta
}

func ptr[T any](v T) *T {
	return &v
}

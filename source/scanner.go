package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/Yamashou/refgen/config"
	"github.com/Yamashou/refgen/internal/fsutil"
	"github.com/Yamashou/refgen/internal/log"
)

// Scanner builds an Index from the scripts of a project.
type Scanner struct {
	fs         vfs.FileSystem
	root       string
	extra      []string
	include    []glob.Glob
	exclude    []glob.Glob
	classifier Classifier
	manifest   string
	logger     *slog.Logger
}

// NewScanner creates a scanner over fs, whose root is the project directory.
// The generated scripts directory is always scanned, even when it lies
// outside the configured source root.
func NewScanner(fs vfs.FileSystem, cfg *config.Config, logger *slog.Logger) (*Scanner, error) {
	s := &Scanner{
		fs:   fs,
		root: cfg.Source.Root,
		classifier: Classifier{
			Marker:       cfg.Marker,
			HolderSuffix: cfg.Naming.HolderSuffix,
			Legacy:       cfg.Naming.LegacySubstringMatch,
		},
		manifest: cfg.Manifest,
		logger:   logger,
	}

	if !within(cfg.ScriptsRoot, cfg.Source.Root) {
		s.extra = append(s.extra, cfg.ScriptsRoot)
	}

	var err error
	if s.include, err = compile(cfg.Source.Include); err != nil {
		return nil, err
	}
	if s.exclude, err = compile(cfg.Source.Exclude); err != nil {
		return nil, err
	}

	return s, nil
}

// Scan reads every selected script and returns a fresh index. It never writes.
func (s *Scanner) Scan(ctx context.Context) (*Index, error) {
	index := &Index{
		Registry:   NewRegistry(),
		classifier: s.classifier,
	}

	s.logger.Debug("Scanning scripts", "root", s.root)

	ok, err := fsutil.Exists(s.fs, s.root)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("source root %s does not exist", s.root)
	}

	files := 0
	seen := make(map[string]bool)
	for _, root := range append([]string{s.root}, s.extra...) {
		if ok, err := fsutil.Exists(s.fs, root); err != nil {
			return nil, err
		} else if !ok {
			continue
		}

		err := vfs.Walk(s.fs, root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if info.IsDir() || seen[p] || !s.selected(p) {
				return nil
			}
			seen[p] = true

			data, err := vfs.ReadFile(s.fs, p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			files++

			types, _ := parse(p, string(data))
			for _, t := range types {
				s.logger.Log(ctx, log.LevelTrace, "Found type", "type", t.FullName, "kind", t.Kind, "path", p, "line", t.Line)
				index.Registry.Register(t)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk scripts at root %s: %w", root, err)
		}
	}

	s.markAttributed(index)

	if s.manifest != "" {
		m, err := LoadManifest(s.fs, s.manifest)
		if err != nil {
			return nil, err
		}
		s.markManifest(index, m)
	}

	s.reportAmbiguous(index)

	for _, d := range index.Diagnostics {
		s.logger.Warn(d.Message, "type", d.Type, "path", d.Path, "line", d.Line)
	}
	s.logger.Info("Scanned scripts", "files", files, "types", len(index.Registry.types), "marked", len(index.Marked()), "holders", len(index.Holders()))

	return index, nil
}

func (s *Scanner) selected(p string) bool {
	matched := false
	for _, g := range s.include {
		if g.Match(p) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, g := range s.exclude {
		if g.Match(p) {
			return false
		}
	}
	return true
}

func (s *Scanner) markAttributed(index *Index) {
	for _, t := range index.Registry.types {
		if t.HasAttribute(s.classifier.Marker) {
			s.mark(index, t.FullName)
		}
	}
}

func (s *Scanner) markManifest(index *Index, m *Manifest) {
	for _, e := range m.Types {
		if _, ok := index.Registry.Lookup(e.FullName()); !ok {
			index.Diagnostics = append(index.Diagnostics, Diagnostic{
				Path:    s.manifest,
				Type:    e.FullName(),
				Message: "Manifest entry does not match any scanned type",
			})
			continue
		}
		s.mark(index, e.FullName())
	}
}

// mark flags the first registration of fullName, refusing types that cannot
// back a holder.
func (s *Scanner) mark(index *Index, fullName string) {
	i := index.Registry.byFullName[fullName][0]
	t := index.Registry.types[i]
	if t.Marked {
		return
	}

	var reason string
	switch {
	case t.Kind != KindClass:
		reason = fmt.Sprintf("Marker ignored: %s is a %s, only classes get holders", t.Name, t.Kind)
	case t.Abstract:
		reason = fmt.Sprintf("Marker ignored: %s is abstract", t.Name)
	case t.Static:
		reason = fmt.Sprintf("Marker ignored: %s is static", t.Name)
	case t.Generic:
		reason = fmt.Sprintf("Marker ignored: %s is generic", t.Name)
	case s.classifier.IsGeneratedHolder(t):
		reason = fmt.Sprintf("Marker ignored: %s is itself a holder", t.Name)
	}
	if reason != "" {
		index.Diagnostics = append(index.Diagnostics, Diagnostic{Path: t.Path, Line: t.Line, Type: t.FullName, Message: reason})
		return
	}

	index.Registry.update(i, func(t *TypeDescriptor) { t.Marked = true })
}

// reportAmbiguous warns about types declared more than once outside of
// partial declarations; the first declaration is the one used.
func (s *Scanner) reportAmbiguous(index *Index) {
	for i, t := range index.Registry.types {
		if index.Registry.byFullName[t.FullName][0] != i {
			continue
		}
		others := index.Registry.Ambiguous(t.FullName)
		if len(others) == 0 {
			continue
		}
		partial := t.Partial
		var paths []string
		for _, o := range others {
			partial = partial && o.Partial
			paths = append(paths, o.Path)
		}
		if partial {
			continue
		}
		index.Diagnostics = append(index.Diagnostics, Diagnostic{
			Path:    t.Path,
			Line:    t.Line,
			Type:    t.FullName,
			Message: fmt.Sprintf("Type declared more than once, using the first declaration; also in %s", strings.Join(paths, ", ")),
		})
	}
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func within(p, root string) bool {
	return p == root || strings.HasPrefix(path.Clean(p), path.Clean(root)+"/")
}

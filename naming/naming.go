// Package naming derives the names, paths and imports of generated units.
package naming

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/Yamashou/refgen/config"
	"github.com/Yamashou/refgen/source"
)

var ErrNoHolderSuffix = errors.New("name does not end with the holder suffix")

// Result describes the units generated for one component type.
type Result struct {
	// Original is the component type name the holder wraps.
	Original string
	// Type is how generated code refers to the component type. It differs
	// from Original for nested types.
	Type       string
	Holder     string
	Binder     string
	HolderPath string
	BinderPath string
	AssetPath  string
	Imports    []string
}

// Deriver applies the naming conventions of a config.
type Deriver struct {
	holderSuffix string
	binderSuffix string
	legacy       bool
	baseImport   string
	scriptsRoot  string
	assetsRoot   string
	scriptExt    string
	assetExt     string
}

func New(cfg *config.Config) *Deriver {
	return &Deriver{
		holderSuffix: cfg.Naming.HolderSuffix,
		binderSuffix: cfg.Naming.BinderSuffix,
		legacy:       cfg.Naming.LegacySubstringMatch,
		baseImport:   cfg.BaseImport,
		scriptsRoot:  cfg.ScriptsRoot,
		assetsRoot:   cfg.AssetsRoot,
		scriptExt:    cfg.ScriptExt,
		assetExt:     cfg.AssetExt,
	}
}

// Holder derives the holder unit of the marked type t. Its imports are the
// namespaces declared in t's file followed by the base import.
func (d *Deriver) Holder(t source.TypeDescriptor) Result {
	var imports []string
	for _, ns := range source.DeclaredNamespaces(t.Source) {
		imports = append(imports, "using "+ns+";")
	}

	r := d.result(t.Name, t.Name+d.holderSuffix, d.dedupe(imports))
	r.Type = typeRef(t)
	return r
}

// Binder derives the binder unit of the holder type h. Its imports are the
// using directives of h's file followed by the base import.
func (d *Deriver) Binder(h source.TypeDescriptor) (Result, error) {
	var original string
	if d.legacy {
		original = strings.ReplaceAll(h.Name, d.holderSuffix, "")
	} else {
		base, ok := strings.CutSuffix(h.Name, d.holderSuffix)
		if !ok || base == "" {
			return Result{}, fmt.Errorf("%s: %w %q", h.FullName, ErrNoHolderSuffix, d.holderSuffix)
		}
		original = base
	}

	r := d.result(original, h.Name, d.dedupe(UsingLines(h.Source)))
	r.Type = original
	return r, nil
}

func (d *Deriver) result(original, holder string, imports []string) Result {
	binder := original + d.binderSuffix
	return Result{
		Original:   original,
		Holder:     holder,
		Binder:     binder,
		HolderPath: path.Join(d.scriptsRoot, holder+"."+d.scriptExt),
		BinderPath: path.Join(d.scriptsRoot, binder+"."+d.scriptExt),
		AssetPath:  path.Join(d.assetsRoot, holder+"."+d.assetExt),
		Imports:    imports,
	}
}

// dedupe drops repeated imports, keeping first-seen order, and appends the
// base import when it is missing.
func (d *Deriver) dedupe(imports []string) []string {
	out := make([]string, 0, len(imports)+1)
	for _, i := range imports {
		if !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	if !slices.Contains(out, d.baseImport) {
		out = append(out, d.baseImport)
	}
	return out
}

// UsingLines returns the lines of src that are using directives starting in
// the first column, without their line terminators.
func UsingLines(src string) []string {
	var out []string
	for line := range strings.Lines(strings.TrimPrefix(src, "\uFEFF")) {
		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, "using ") && strings.HasSuffix(strings.TrimSpace(line), ";") {
			out = append(out, line)
		}
	}
	return out
}

// typeRef is the C# reference to t from outside its namespace.
func typeRef(t source.TypeDescriptor) string {
	name := strings.TrimPrefix(t.FullName, t.Namespace+".")
	if t.Namespace == "" {
		name = t.FullName
	}
	return strings.ReplaceAll(name, "+", ".")
}

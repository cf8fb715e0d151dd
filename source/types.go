// Package source indexes the C# types of a Unity project.
//
// The index stands in for the editor's reflective view of loaded scripts: every
// scan rebuilds it from the files on disk, so a holder written earlier in the
// same cycle is visible to the next scan.
package source

import (
	"slices"
	"strings"
)

type Kind string

const (
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindRecord    Kind = "record"
)

// TypeDescriptor is one type declared in a scanned script.
type TypeDescriptor struct {
	Name       string
	FullName   string
	Namespace  string
	Kind       Kind
	Attributes []string
	// Marked is set when the type requests holder generation, through the
	// marker attribute or the manifest.
	Marked   bool
	Abstract bool
	Static   bool
	Partial  bool
	Generic  bool
	// Path is the project relative path of the declaring file.
	Path   string
	Line   int
	Source string
}

// HasAttribute reports whether the type carries the attribute name directly.
// C# lets the Attribute suffix and the namespace qualifier be omitted, so
// [Marker], [MarkerAttribute] and [NS.Marker] all match "Marker".
func (t TypeDescriptor) HasAttribute(name string) bool {
	name = strings.TrimSuffix(name, "Attribute")
	return slices.ContainsFunc(t.Attributes, func(a string) bool {
		if i := strings.LastIndex(a, "."); i >= 0 {
			a = a[i+1:]
		}
		return strings.TrimSuffix(a, "Attribute") == name
	})
}

// Diagnostic is a non-fatal problem found while scanning.
type Diagnostic struct {
	Path    string
	Line    int
	Type    string
	Message string
}

// Classifier decides which types take part in generation.
type Classifier struct {
	Marker       string
	HolderSuffix string
	// Legacy matches the holder suffix anywhere in the fully-qualified name.
	Legacy bool
}

// IsMarkedForGeneration reports whether t asked for a holder.
func (c Classifier) IsMarkedForGeneration(t TypeDescriptor) bool {
	return t.Marked
}

// IsGeneratedHolder reports whether t is a holder type. A holder is a concrete,
// non-generic class named <Base><HolderSuffix> with a non-empty Base.
func (c Classifier) IsGeneratedHolder(t TypeDescriptor) bool {
	if c.Legacy {
		return !t.Generic && strings.Contains(t.FullName, c.HolderSuffix)
	}

	if t.Kind != KindClass || t.Abstract || t.Static || t.Generic {
		return false
	}
	base, ok := strings.CutSuffix(t.Name, c.HolderSuffix)
	return ok && base != ""
}

// Registry holds the types of one scan, in registration order.
type Registry struct {
	types      []TypeDescriptor
	byFullName map[string][]int
}

func NewRegistry() *Registry {
	return &Registry{
		byFullName: make(map[string][]int),
	}
}

// Register adds t. Types sharing a fully-qualified name are all kept; Lookup
// returns the first one.
func (r *Registry) Register(t TypeDescriptor) {
	r.byFullName[t.FullName] = append(r.byFullName[t.FullName], len(r.types))
	r.types = append(r.types, t)
}

// Lookup returns the first type registered under fullName.
func (r *Registry) Lookup(fullName string) (TypeDescriptor, bool) {
	idx, ok := r.byFullName[fullName]
	if !ok {
		return TypeDescriptor{}, false
	}
	return r.types[idx[0]], true
}

// Ambiguous returns every type shadowed by an earlier registration of the same
// fully-qualified name.
func (r *Registry) Ambiguous(fullName string) []TypeDescriptor {
	idx := r.byFullName[fullName]
	if len(idx) < 2 {
		return nil
	}
	out := make([]TypeDescriptor, 0, len(idx)-1)
	for _, i := range idx[1:] {
		out = append(out, r.types[i])
	}
	return out
}

func (r *Registry) update(i int, fn func(*TypeDescriptor)) {
	fn(&r.types[i])
}

// Index is the result of one scan.
type Index struct {
	Registry    *Registry
	Diagnostics []Diagnostic

	classifier Classifier
}

// Marked returns the types marked for generation, in scan order.
func (x *Index) Marked() []TypeDescriptor {
	return x.filter(x.classifier.IsMarkedForGeneration)
}

// Holders returns the holder types, in scan order.
func (x *Index) Holders() []TypeDescriptor {
	return x.filter(x.classifier.IsGeneratedHolder)
}

// filter keeps the first registration of each fully-qualified name.
func (x *Index) filter(pred func(TypeDescriptor) bool) []TypeDescriptor {
	var out []TypeDescriptor
	for i, t := range x.Registry.types {
		if x.Registry.byFullName[t.FullName][0] != i {
			continue
		}
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

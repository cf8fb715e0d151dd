// Package asset persists default holder instances as Unity assets.
package asset

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Yamashou/refgen/source"
)

var (
	ErrUnknownType = errors.New("unknown type")
	// ErrScriptNotImported means the holder script has no GUID yet. Unity
	// assigns one when it imports the script.
	ErrScriptNotImported = errors.New("holder script not imported yet")
)

// Constructor builds the default instance of one holder type.
type Constructor func(name string) *Instance

// Factory resolves fully-qualified type names to constructors. It replaces
// looking types up by name at runtime: only registered types can be built.
type Factory struct {
	constructors map[string]Constructor
}

func NewFactory() *Factory {
	return &Factory{
		constructors: make(map[string]Constructor),
	}
}

// Register binds fullName to c. The first registration of a name wins.
func (f *Factory) Register(fullName string, c Constructor) {
	if _, ok := f.constructors[fullName]; ok {
		return
	}
	f.constructors[fullName] = c
}

// RegisterHolders registers the default constructor for each holder type.
func (f *Factory) RegisterHolders(holders []source.TypeDescriptor) {
	for _, h := range holders {
		f.Register(h.FullName, NewInstance(h.FullName))
	}
}

// New builds a default instance of fullName named name.
func (f *Factory) New(fullName, name string) (*Instance, error) {
	c, ok := f.constructors[fullName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, fullName)
	}
	return c(name), nil
}

// Names returns the registered type names, sorted.
func (f *Factory) Names() []string {
	return slices.Sorted(maps.Keys(f.constructors))
}

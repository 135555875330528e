// Package registry merges the per-file parse results into one
// name-keyed module table. The merge is the only stage that writes to
// it; every later stage treats the registry as immutable.
package registry

import (
	"fmt"
	"sync"

	"github.com/robert-at-pretension-io/svspy/internal/parser"
)

// DuplicateModuleError reports a module defined in more than one place.
type DuplicateModuleError struct {
	Name     string
	File     string // second definition
	PrevFile string // first definition
	Line     int
	PrevLine int
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("module %q defined twice: %s:%d and %s:%d",
		e.Name, e.PrevFile, e.PrevLine, e.File, e.Line)
}

// Registry holds all parsed modules keyed by name, retaining insertion
// order so output sectioning stays deterministic.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*parser.Module
	ordered []*parser.Module
}

func New() *Registry {
	return &Registry{byName: make(map[string]*parser.Module)}
}

// Register inserts a module, failing if the name is already taken.
func (r *Registry) Register(m *parser.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byName[m.Name]; ok {
		return &DuplicateModuleError{
			Name:     m.Name,
			File:     m.File,
			Line:     m.Line,
			PrevFile: prev.File,
			PrevLine: prev.Line,
		}
	}
	r.byName[m.Name] = m
	r.ordered = append(r.ordered, m)
	return nil
}

// Get looks a module up by name.
func (r *Registry) Get(name string) (*parser.Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	return m, ok
}

// Modules returns all modules in insertion order.
func (r *Registry) Modules() []*parser.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*parser.Module, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

package hierarchy

import (
	"strings"

	"github.com/robert-at-pretension-io/svspy/internal/parser"
	"github.com/robert-at-pretension-io/svspy/internal/registry"
)

// Kind classifies a spy entry.
type Kind string

const (
	KindPort     Kind = "port"
	KindRegister Kind = "register"
)

// SpyEntry is one flattened observation signal. Out starts as the bare
// signal name; ResolveConflicts rewrites it where names collide.
type SpyEntry struct {
	Name   string   `json:"name"`
	Path   []string `json:"path"`
	Kind   Kind     `json:"kind"`
	Type   string   `json:"type"`
	Width  string   `json:"width"`
	Module string   `json:"module"`
	Out    string   `json:"out"`
}

// FullPath is the dotted hierarchical reference of the source signal,
// relative to the inside of the top module.
func (e SpyEntry) FullPath() string {
	if len(e.Path) == 0 {
		return e.Name
	}
	return strings.Join(e.Path, ".") + "." + e.Name
}

// SuffixPolicy is the register classification rule. It is configuration
// handed in from outside; the flattener hardcodes nothing about it.
type SuffixPolicy struct {
	Suffix          string
	CaseInsensitive bool
	ApplyToPorts    bool
}

func (p SuffixPolicy) matches(name string) bool {
	if p.Suffix == "" {
		return false
	}
	if p.CaseInsensitive {
		return strings.HasSuffix(strings.ToLower(name), strings.ToLower(p.Suffix))
	}
	return strings.HasSuffix(name, p.Suffix)
}

// Flatten walks the hierarchy depth-first from top, collecting ports
// and/or register candidates per mode. Traversal follows declaration
// order throughout, so the result is reproducible. A module-type
// repeating on the current path aborts with CyclicHierarchyError.
func Flatten(top *parser.Module, reg *registry.Registry, mode Mode, policy SuffixPolicy) ([]SpyEntry, error) {
	w := &walker{
		reg:    reg,
		mode:   mode,
		policy: policy,
		onPath: make(map[string]bool),
		seen:   make(map[string]bool),
	}
	if err := w.visit(top, nil); err != nil {
		return nil, err
	}
	return w.entries, nil
}

type walker struct {
	reg     *registry.Registry
	mode    Mode
	policy  SuffixPolicy
	onPath  map[string]bool
	seen    map[string]bool // (path, name) pairs already emitted
	entries []SpyEntry
}

func (w *walker) visit(m *parser.Module, path []string) error {
	if w.onPath[m.Name] {
		return &CyclicHierarchyError{Module: m.Name, Path: append(append([]string{}, path...), m.Name)}
	}
	w.onPath[m.Name] = true
	defer delete(w.onPath, m.Name)

	if w.mode.includesPorts() {
		for _, port := range m.Ports {
			w.emit(SpyEntry{
				Name:   port.Name,
				Path:   path,
				Kind:   KindPort,
				Type:   port.Type,
				Width:  port.Width,
				Module: m.Name,
			})
		}
	}
	if w.mode.includesRegisters() {
		if w.policy.ApplyToPorts {
			for _, port := range m.Ports {
				if w.policy.matches(port.Name) {
					w.emit(SpyEntry{
						Name:   port.Name,
						Path:   path,
						Kind:   KindRegister,
						Type:   port.Type,
						Width:  port.Width,
						Module: m.Name,
					})
				}
			}
		}
		for _, sig := range m.Signals {
			if w.policy.matches(sig.Name) {
				w.emit(SpyEntry{
					Name:   sig.Name,
					Path:   path,
					Kind:   KindRegister,
					Type:   sig.Type,
					Width:  sig.Width,
					Module: m.Name,
				})
			}
		}
	}

	for _, inst := range m.Instances {
		child, ok := w.reg.Get(inst.ModuleType)
		if !ok {
			// ResolveTop validated references already; a miss here
			// means the registry was mutated mid-pipeline.
			return &UnresolvedInstanceError{
				MissingType: inst.ModuleType,
				Module:      m.Name,
				Instance:    inst.Name,
				File:        m.File,
				Line:        inst.Line,
			}
		}
		childPath := append(append([]string{}, path...), inst.Name)
		if err := w.visit(child, childPath); err != nil {
			return err
		}
	}
	return nil
}

// emit appends an entry unless the same (path, name) pair was already
// produced under the other kind: ports and registers stay disjoint.
func (w *walker) emit(e SpyEntry) {
	key := e.FullPath()
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	e.Out = e.Name
	w.entries = append(w.entries, e)
}

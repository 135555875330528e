// Package hierarchy resolves the instance graph of a parsed design:
// top-module detection, hierarchical spy flattening and deterministic
// name conflict resolution.
package hierarchy

import (
	"sort"

	"github.com/robert-at-pretension-io/svspy/internal/parser"
	"github.com/robert-at-pretension-io/svspy/internal/registry"
)

// ResolveTop identifies the single top module: the one module never
// used as an instance module-type. An explicit override short-circuits
// the candidate counting but instance references are validated either
// way, in file-then-declaration order, so the first dangling reference
// wins deterministically.
func ResolveTop(reg *registry.Registry, override string) (*parser.Module, error) {
	mods := reg.Modules()

	for _, m := range mods {
		for _, inst := range m.Instances {
			if _, ok := reg.Get(inst.ModuleType); !ok {
				return nil, &UnresolvedInstanceError{
					MissingType: inst.ModuleType,
					Module:      m.Name,
					Instance:    inst.Name,
					File:        m.File,
					Line:        inst.Line,
				}
			}
		}
	}

	if override != "" {
		top, ok := reg.Get(override)
		if !ok {
			return nil, &UnknownTopModuleError{Name: override}
		}
		return top, nil
	}

	instantiated := make(map[string]bool)
	for _, m := range mods {
		for _, inst := range m.Instances {
			instantiated[inst.ModuleType] = true
		}
	}

	var candidates []*parser.Module
	for _, m := range mods {
		if !instantiated[m.Name] {
			candidates = append(candidates, m)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, &NoTopModuleError{}
	case 1:
		return candidates[0], nil
	}

	names := make([]string, len(candidates))
	for i, m := range candidates {
		names[i] = m.Name
	}
	sort.Strings(names)
	return nil, &AmbiguousTopModuleError{Candidates: names}
}

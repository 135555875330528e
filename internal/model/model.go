// Package model assembles the interface model handed to the renderer:
// spy entries grouped into per-module sections, plus the top module's
// ports and parameters for the bind statement. It produces data only,
// never text.
package model

import (
	"github.com/robert-at-pretension-io/svspy/internal/hierarchy"
	"github.com/robert-at-pretension-io/svspy/internal/parser"
)

// Section groups the spy entries owned by one module, so the generated
// interface reads in design order.
type Section struct {
	Module  string               `json:"module"`
	Entries []hierarchy.SpyEntry `json:"entries"`
}

// Model is the complete, ordered input of the renderer.
type Model struct {
	Top        string             `json:"top"`
	Ports      []parser.Port      `json:"ports"`
	Parameters []parser.Parameter `json:"parameters"`
	Sections   []Section          `json:"sections"`
}

// Build groups resolved spy entries by owning module, in order of first
// appearance during the (declaration-ordered) traversal, and captures
// the top module's port and parameter lists.
func Build(top *parser.Module, entries []hierarchy.SpyEntry) *Model {
	m := &Model{
		Top:        top.Name,
		Ports:      top.Ports,
		Parameters: top.Parameters,
	}

	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.Module]
		if !ok {
			i = len(m.Sections)
			index[e.Module] = i
			m.Sections = append(m.Sections, Section{Module: e.Module})
		}
		m.Sections[i].Entries = append(m.Sections[i].Entries, e)
	}
	return m
}

// Spies returns every entry across all sections, in section order.
func (m *Model) Spies() []hierarchy.SpyEntry {
	var out []hierarchy.SpyEntry
	for _, s := range m.Sections {
		out = append(out, s.Entries...)
	}
	return out
}

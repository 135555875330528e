package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/svspy/internal/parser"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	mods := []*parser.Module{
		{Name: "top", File: "top.sv", Line: 1},
		{Name: "rx", File: "rx.sv", Line: 1},
		{Name: "tx", File: "tx.sv", Line: 1},
	}
	for _, m := range mods {
		if err := r.Register(m); err != nil {
			t.Fatalf("unexpected error registering %s: %v", m.Name, err)
		}
	}

	if r.Len() != 3 {
		t.Fatalf("expected 3 modules, got %d", r.Len())
	}
	if _, ok := r.Get("rx"); !ok {
		t.Fatalf("expected to find rx")
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatalf("did not expect to find missing")
	}

	ordered := r.Modules()
	for i, m := range mods {
		if ordered[i].Name != m.Name {
			t.Fatalf("insertion order not retained: expected %s at %d, got %s", m.Name, i, ordered[i].Name)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	if err := r.Register(&parser.Module{Name: "fifo", File: "a.sv", Line: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Register(&parser.Module{Name: "fifo", File: "b.sv", Line: 9})
	var dup *DuplicateModuleError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateModuleError, got %v", err)
	}
	if dup.Name != "fifo" || dup.PrevFile != "a.sv" || dup.File != "b.sv" {
		t.Fatalf("unexpected error detail: %+v", dup)
	}
	if !strings.Contains(dup.Error(), "fifo") {
		t.Fatalf("error text should name the module: %v", dup)
	}
}

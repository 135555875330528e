package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Mode != "both" {
		t.Fatalf("expected mode both, got %q", cfg.Mode)
	}
	if cfg.RegisterSuffix != "_s" {
		t.Fatalf("expected register suffix _s, got %q", cfg.RegisterSuffix)
	}
	if cfg.InterfaceName != "spy_if" || cfg.Output != "spy_if.sv" {
		t.Fatalf("unexpected naming defaults: %+v", cfg)
	}
	if cfg.SpyPrefix != "spy_" || cfg.PathSeparator != "_" {
		t.Fatalf("unexpected naming defaults: %+v", cfg)
	}
	if len(cfg.Sources) == 0 {
		t.Fatalf("expected default source patterns")
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svspy.json")
	content := `{
  "mode": "registers",
  "topModule": "dut",
  "suffixCaseInsensitive": true
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != "registers" || cfg.TopModule != "dut" || !cfg.SuffixCaseInsensitive {
		t.Fatalf("explicit fields lost: %+v", cfg)
	}
	// untouched fields fall back to the defaults
	if cfg.RegisterSuffix != "_s" || cfg.InterfaceName != "spy_if" || cfg.SpyPrefix != "spy_" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFileRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svspy.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	// a bare directory has no config anywhere in the search path rooted
	// there; Load must not fail
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != "both" {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svspy.json")
	cfg := DefaultConfig()
	cfg.TopModule = "dut"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.TopModule != "dut" || loaded.Mode != cfg.Mode {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.Sources, cfg.Sources) {
		t.Fatalf("sources mismatch: %v", loaded.Sources)
	}
}

func TestResolveSources(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"top.sv",
		"zz.v",
		"rtl/rx.sv",
		"rtl/deep/fifo.sv",
		"doc/notes.txt",
	}
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("// placeholder\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cfg := DefaultConfig()
	got, err := cfg.ResolveSources(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "rtl", "deep", "fifo.sv"),
		filepath.Join(dir, "rtl", "rx.sv"),
		filepath.Join(dir, "top.sv"),
		filepath.Join(dir, "zz.v"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveSourcesExclude(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"top.sv", "top_tb.sv"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("//\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	cfg := DefaultConfig()
	cfg.Exclude = []string{"*_tb.sv"}
	got, err := cfg.ResolveSources(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "top.sv" {
		t.Fatalf("exclude not applied: %v", got)
	}
}

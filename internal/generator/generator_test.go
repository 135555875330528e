package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/svspy/internal/config"
	"github.com/robert-at-pretension-io/svspy/internal/hierarchy"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func sampleTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"top.sv": `
module top (
    input  logic clk,
    input  logic rst_n
);
    logic busy_s;
    rx i_rx (.clk(clk), .data_o());
    tx i_tx (.clk(clk));
endmodule
`,
		"rtl/rx.sv": `
module rx (
    input  logic       clk,
    output logic [7:0] data_o
);
    logic [7:0] data_s;
endmodule
`,
		"rtl/tx.sv": `
module tx (input logic clk);
    logic [7:0] data_s;
endmodule
`,
	})
}

func TestRunEndToEnd(t *testing.T) {
	dir := sampleTree(t)
	gen := New(config.DefaultConfig())
	res, err := gen.Run(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Files) != 3 {
		t.Fatalf("expected 3 source files, got %v", res.Files)
	}
	if res.Model.Top != "top" {
		t.Fatalf("expected top module top, got %q", res.Model.Top)
	}

	// sibling data_s registers come out disambiguated
	for _, want := range []string{
		"interface spy_if (",
		"logic [7:0] spy_i_rx_data_s;",
		"assign spy_i_rx_data_s = i_rx.data_s;",
		"assign spy_i_tx_data_s = i_tx.data_s;",
		"assign spy_busy_s = busy_s;",
	} {
		if !strings.Contains(res.Interface, want) {
			t.Fatalf("interface missing %q:\n%s", want, res.Interface)
		}
	}
	if !strings.Contains(res.Bind, "bind top spy_if i_dut_spy (.*);") {
		t.Fatalf("unexpected bind statement: %q", res.Bind)
	}

	written, err := os.ReadFile(filepath.Join(dir, "spy_if.sv"))
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(written) != res.Interface {
		t.Fatalf("file content differs from rendered interface")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	// the generated spy_if.sv lands inside the source tree; on the next
	// run it matches the source globs but declares no modules, so the
	// output must not change
	dir := sampleTree(t)
	first, err := New(config.DefaultConfig()).Run(dir)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := New(config.DefaultConfig()).Run(dir)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.Interface != second.Interface {
		t.Fatalf("interface changed between runs")
	}
	if len(second.Files) != len(first.Files)+1 {
		t.Fatalf("expected the generated file to join the source set, got %v", second.Files)
	}
}

func TestRunDryRun(t *testing.T) {
	dir := sampleTree(t)
	gen := New(config.DefaultConfig())
	gen.DryRun = true
	res, err := gen.Run(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "" {
		t.Fatalf("dry run should not report an output path, got %q", res.Output)
	}
	if _, err := os.Stat(filepath.Join(dir, "spy_if.sv")); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote an output file")
	}
	if res.Interface == "" {
		t.Fatalf("dry run should still render the interface")
	}
}

func TestRunModeRegisters(t *testing.T) {
	dir := sampleTree(t)
	cfg := config.DefaultConfig()
	cfg.Mode = "registers"
	res, err := New(cfg).Run(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range res.Model.Spies() {
		if e.Kind != hierarchy.KindRegister {
			t.Fatalf("mode=registers leaked a %s entry: %+v", e.Kind, e)
		}
	}
	if strings.Contains(res.Interface, "spy_clk") {
		t.Fatalf("ports should not be observed in registers mode:\n%s", res.Interface)
	}
}

func TestRunTopModuleOverride(t *testing.T) {
	dir := sampleTree(t)
	cfg := config.DefaultConfig()
	cfg.TopModule = "rx"
	res, err := New(cfg).Run(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model.Top != "rx" {
		t.Fatalf("expected forced top rx, got %q", res.Model.Top)
	}
	if !strings.Contains(res.Bind, "bind rx ") {
		t.Fatalf("bind should target the forced top: %q", res.Bind)
	}
}

func TestRunCollectsAllParseErrors(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.sv": "module a (input logic x;\nendmodule\n",
		"b.sv": "module b ();\n",
		"c.sv": "module c (); endmodule\n",
	})
	_, err := New(config.DefaultConfig()).Run(dir)
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "a.sv") || !strings.Contains(msg, "b.sv") {
		t.Fatalf("both bad files should be reported: %v", msg)
	}
	if strings.Contains(msg, "c.sv") {
		t.Fatalf("good file reported as failed: %v", msg)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "spy_if.sv")); !os.IsNotExist(statErr) {
		t.Fatalf("no output may be written on error")
	}
}

func TestRunNoSources(t *testing.T) {
	_, err := New(config.DefaultConfig()).Run(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no Verilog sources") {
		t.Fatalf("expected no-sources error, got %v", err)
	}
}

func TestRunDuplicateModule(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.sv": "module fifo (); endmodule\n",
		"b.sv": "module fifo (); endmodule\n",
	})
	_, err := New(config.DefaultConfig()).Run(dir)
	if err == nil || !strings.Contains(err.Error(), "fifo") {
		t.Fatalf("expected duplicate module error naming fifo, got %v", err)
	}
}

func TestRunBadMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = "everything"
	_, err := New(cfg).Run(t.TempDir())
	if err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

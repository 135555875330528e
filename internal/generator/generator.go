// Package generator orchestrates the pipeline: discover sources,
// parse them in parallel, merge the registry, resolve the hierarchy,
// flatten and disambiguate the spy signals, validate the model and
// render the output artifacts. Every error aborts before any file is
// written; there is no partial output mode.
package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/robert-at-pretension-io/svspy/internal/config"
	"github.com/robert-at-pretension-io/svspy/internal/hierarchy"
	"github.com/robert-at-pretension-io/svspy/internal/model"
	"github.com/robert-at-pretension-io/svspy/internal/parser"
	"github.com/robert-at-pretension-io/svspy/internal/registry"
	"github.com/robert-at-pretension-io/svspy/internal/render"
	"github.com/robert-at-pretension-io/svspy/internal/validator"
)

// Generator runs the full pipeline over one source tree.
type Generator struct {
	Config  *config.Config
	Verbose bool
	DryRun  bool // analyze and render, but write nothing
}

// Result carries everything a caller may want to inspect or report.
type Result struct {
	Files     []string
	Model     *model.Model
	Interface string
	Bind      string
	Output    string // path the interface was written to ("" on dry run)
}

func New(cfg *config.Config) *Generator {
	return &Generator{Config: cfg}
}

// Run executes the pipeline rooted at rootPath.
func (g *Generator) Run(rootPath string) (*Result, error) {
	if g.Config == nil {
		cfg, err := config.Load(rootPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		g.Config = cfg
	}
	cfg := g.Config

	mode, err := hierarchy.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	// 1. Source discovery
	files, err := cfg.ResolveSources(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolving sources: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Verilog sources found under %s", rootPath)
	}
	g.logf("Found %d source files", len(files))

	// 2. Parallel per-file parsing. Each worker owns its own output
	// slot; errors are collected per file so every bad file is
	// reported in one pass.
	parsed := make([][]parser.Module, len(files))
	failures := make([]error, len(files))

	var grp errgroup.Group
	grp.SetLimit(runtime.NumCPU())
	for i, file := range files {
		i, file := i, file
		grp.Go(func() error {
			src, err := os.ReadFile(file)
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", file, err)
				return nil
			}
			mods, err := parser.Parse(file, src)
			if err != nil {
				failures[i] = err
				return nil
			}
			parsed[i] = mods
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	var parseErrs []error
	for _, err := range failures {
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
	}
	if len(parseErrs) > 0 {
		return nil, formatParseErrors(parseErrs)
	}

	// 3. Sequential merge; the registry is immutable after this.
	reg := registry.New()
	total := 0
	for _, mods := range parsed {
		for i := range mods {
			if err := reg.Register(&mods[i]); err != nil {
				return nil, err
			}
			total++
		}
	}
	g.logf("Parsed %d modules", total)

	// 4. Hierarchy resolution
	top, err := hierarchy.ResolveTop(reg, cfg.TopModule)
	if err != nil {
		return nil, err
	}
	g.logf("Top module: %s", top.Name)

	// 5. Flattening + conflict resolution
	policy := hierarchy.SuffixPolicy{
		Suffix:          cfg.RegisterSuffix,
		CaseInsensitive: cfg.SuffixCaseInsensitive,
		ApplyToPorts:    cfg.SuffixAppliesToPorts,
	}
	entries, err := hierarchy.Flatten(top, reg, mode, policy)
	if err != nil {
		return nil, err
	}
	entries, err = hierarchy.ResolveConflicts(entries, cfg.PathSeparator, cfg.SpyPrefix)
	if err != nil {
		return nil, err
	}
	g.logf("Collected %d spy signals (mode=%s)", len(entries), mode)

	// 6. Model build + contract validation
	mdl := model.Build(top, entries)
	val, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	if err := val.Validate(mdl); err != nil {
		return nil, err
	}

	// 7. Rendering
	opts := render.Options{InterfaceName: cfg.InterfaceName, TopInstance: cfg.TopInstance}
	iface, err := render.Interface(mdl, opts)
	if err != nil {
		return nil, err
	}
	bind, err := render.Bind(mdl, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files:     files,
		Model:     mdl,
		Interface: iface,
		Bind:      bind,
	}

	if !g.DryRun {
		outPath := cfg.Output
		if !filepath.IsAbs(outPath) {
			outPath = filepath.Join(rootPath, outPath)
		}
		if err := os.WriteFile(outPath, []byte(iface), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}
		result.Output = outPath
		g.logf("Wrote %s", outPath)
	}

	return result, nil
}

func (g *Generator) logf(format string, args ...interface{}) {
	if g.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}

func formatParseErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d files failed to parse:", len(errs))
	for _, err := range errs {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return errors.New(b.String())
}

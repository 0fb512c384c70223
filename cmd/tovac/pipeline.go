package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btouchard/tova/internal/cache"
	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/compiler/generator"
	"github.com/btouchard/tova/internal/compiler/merger"
	"github.com/btouchard/tova/internal/compiler/parser"
	"github.com/btouchard/tova/internal/compiler/semantic"
	"github.com/btouchard/tova/internal/config"
)

// compileGroup runs the full lexer→parser→semantic→merger→generator
// pipeline against one input: a directory is merged (merger.MergeDirectory),
// a single file is parsed standalone and treated as its own one-file group —
// mirroring the teacher's cmd/gmx/compile.go single-entry-point-does-
// everything shape, generalized from "resolve imports, then generate" to
// "merge siblings, analyze, then generate."
func compileGroup(input string, cfg config.Build) (*generator.Output, []string, diagnostics.List, error) {
	var diags diagnostics.List

	var prog *ast.Program
	var sources []string
	var base string

	info, err := os.Stat(input)
	if err != nil {
		return nil, nil, diags, fmt.Errorf("reading input: %w", err)
	}

	if info.IsDir() {
		var mergeErr error
		prog, diags, mergeErr = merger.New().MergeDirectory(input)
		if mergeErr != nil {
			return nil, nil, diags, fmt.Errorf("merging %s: %w", input, mergeErr)
		}
		sources = prog.Sources
		base = filepath.Base(filepath.Clean(input))
	} else {
		data, readErr := os.ReadFile(input)
		if readErr != nil {
			return nil, nil, diags, fmt.Errorf("reading %s: %w", input, readErr)
		}
		p := parser.New(string(data), input)
		var parseDiags []diagnostics.Diagnostic
		prog, parseDiags = p.ParseProgram()
		for _, d := range parseDiags {
			diags.Add(d)
		}
		sources = []string{input}
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	if diags.HasErrors() {
		return nil, sources, diags, nil
	}

	analyzer := semantic.New(cfg.Strict)
	semDiags := analyzer.Analyze(prog)
	for _, d := range semDiags.Items() {
		diags.Add(d)
	}
	if diags.HasErrors() {
		return nil, sources, diags, nil
	}

	out, genDiags := generator.New().Generate(prog, base)
	for _, d := range genDiags.Items() {
		diags.Add(d)
	}
	return out, sources, diags, nil
}

// writeArtifacts writes every artifact (and, when cfg.SourceMaps is set,
// its .map sibling) under cfg.OutDir.
func writeArtifacts(out *generator.Output, cfg config.Build) error {
	if cfg.OutDir != "." {
		if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	for _, a := range out.Artifacts {
		path := filepath.Join(cfg.OutDir, a.Name)
		if err := os.WriteFile(path, []byte(a.Code), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if cfg.SourceMaps && a.Map != nil {
			mapPath := filepath.Join(cfg.OutDir, a.MapName)
			if err := os.WriteFile(mapPath, a.Map, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", mapPath, err)
			}
		}
	}
	return nil
}

// buildOne runs compileGroup against input and writes its artifacts,
// consulting/updating the incremental build cache keyed by input's own
// path. Returns whether anything was (re)built.
func buildOne(input string, cfg config.Build, manifest *cache.Manifest) (built bool, err error) {
	info, statErr := os.Stat(input)
	if statErr != nil {
		return false, fmt.Errorf("reading input: %w", statErr)
	}

	probeSources, probeErr := sourcesOf(input, info)
	if probeErr != nil {
		return false, probeErr
	}

	if manifest != nil {
		upToDate, cacheErr := manifest.IsUpToDate(input, probeSources, cfg.OutDir)
		if cacheErr == nil && upToDate {
			return false, nil
		}
	}

	out, sources, diags, err := compileGroup(input, cfg)
	if err != nil {
		return false, err
	}
	if diags.HasErrors() {
		return false, &diags
	}
	if out == nil {
		return false, nil
	}
	if err := writeArtifacts(out, cfg); err != nil {
		return false, err
	}
	if manifest != nil {
		names := make([]string, len(out.Artifacts))
		for i, a := range out.Artifacts {
			names[i] = a.Name
		}
		_ = manifest.Set(input, sources, names)
		_ = manifest.Save()
	}
	return true, nil
}

func sourcesOf(input string, info os.FileInfo) ([]string, error) {
	if !info.IsDir() {
		return []string{input}, nil
	}
	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", input, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tova") {
			out = append(out, filepath.Join(input, e.Name()))
		}
	}
	return out, nil
}

func printDiagnostics(diags *diagnostics.List) {
	for _, d := range diags.Items() {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

// Package merger treats every directory of sibling .tova files as one
// compilation unit: it parses each file, concatenates their top-level nodes
// into a single synthetic *ast.Program (tagging provenance via each file's
// Position.File, and the Program's own Sources list), rewrites imports that
// now point within the merged group away, and validates that no two files in
// the group declare a conflicting name. Generalizes the teacher's
// resolver.Resolver{basePath, parsed, loading} and its hasModel/hasService
// duplicate checks from "two kinds of duplicate against one namespace" to
// the full set of merge-validation rules, grouped by block label where the
// language requires it.
package merger

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/compiler/parser"
	"github.com/btouchard/tova/internal/compiler/token"
)

// Merger resolves and merges directory groups of .tova sources. A single
// Merger may be reused across multiple MergeDirectory calls in one build:
// units caches every file it has parsed (by absolute path) so a file
// referenced both as a merge-group member and as a cross-directory import
// target is only parsed once.
type Merger struct {
	units    map[string]*ast.Program // cache: absolute file path -> parsed single-file Program
	appCache map[string]bool         // cache: absolute file path -> whether it carries any block directive
}

// New returns an empty Merger.
func New() *Merger {
	return &Merger{
		units:    make(map[string]*ast.Program),
		appCache: make(map[string]bool),
	}
}

// MergeDirectory merges every .tova file directly inside dir (non-recursive:
// subdirectories are separate groups) into one synthetic *ast.Program and
// runs merge validation over it. A non-nil error means dir itself could not
// be listed; per-file problems (unreadable or unparsable sources) are
// reported as diagnostics instead, so one bad sibling does not abort the
// whole group.
func (m *Merger) MergeDirectory(dir string) (*ast.Program, diagnostics.List, error) {
	var diags diagnostics.List

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, diags, fmt.Errorf("resolving %s: %w", dir, err)
	}

	files, err := sortedTovaFiles(absDir)
	if err != nil {
		return nil, diags, fmt.Errorf("listing %s: %w", absDir, err)
	}

	merged := &ast.Program{}
	for _, file := range files {
		prog, pdiags, err := m.loadFile(file)
		for _, d := range pdiags {
			diags.Add(d)
		}
		if err != nil {
			diags.Errorf(token.Position{File: file}, codeUnreadableSource, "%v", err)
			continue
		}

		merged.Sources = append(merged.Sources, file)
		merged.Body = append(merged.Body, m.rewriteBody(prog.Body, absDir)...)
	}

	validate(merged, &diags)
	return merged, diags, nil
}

func sortedTovaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tova") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	files := make([]string, len(names))
	for i, n := range names {
		files[i] = filepath.Join(dir, n)
	}
	return files, nil
}

// loadFile parses filePath, caching the result by absolute path so repeated
// references (merge-group membership, cross-directory import peeking)
// reparse nothing. The cached parse diagnostics are only ever returned once
// — on the first load — so a shared file does not get its parse
// diagnostics reported twice.
func (m *Merger) loadFile(filePath string) (*ast.Program, []diagnostics.Diagnostic, error) {
	if cached, ok := m.units[filePath]; ok {
		return cached, nil, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	prog, pdiags := parser.New(string(data), filePath).ParseProgram()
	m.units[filePath] = prog
	return prog, pdiags, nil
}

// rewriteBody applies rewriteImport to every ImportDeclaration in tls,
// recursing into shared/server/client blocks so an import nested inside one
// (the common case — imports almost always sit at the top of a block, not
// bare at file scope) is rewritten or dropped the same as a file-scope one.
func (m *Merger) rewriteBody(tls []ast.TopLevel, mergeDir string) []ast.TopLevel {
	var out []ast.TopLevel
	for _, tl := range tls {
		switch t := tl.(type) {
		case *ast.ImportDeclaration:
			if rewritten := m.rewriteImport(t, mergeDir); rewritten != nil {
				out = append(out, rewritten)
			}
		case *ast.SharedBlock:
			nb := *t
			nb.Body = m.rewriteBody(t.Body, mergeDir)
			out = append(out, &nb)
		case *ast.ServerBlock:
			nb := *t
			nb.Body = m.rewriteBody(t.Body, mergeDir)
			out = append(out, &nb)
		case *ast.ClientBlock:
			nb := *t
			nb.Body = m.rewriteBody(t.Body, mergeDir)
			out = append(out, &nb)
		default:
			out = append(out, tl)
		}
	}
	return out
}

// rewriteImport implements SPEC_FULL §4.4 step 3: an import of a sibling in
// the same directory is dropped (the files are merging into one Program, so
// the declarations it named are simply present already); a .tova import
// reaching outside the directory is rewritten to the artifact its target
// will be emitted as — a module file's single .js, or an app file's
// .shared.js. Non-.tova imports (native host imports) pass through
// unchanged.
func (m *Merger) rewriteImport(imp *ast.ImportDeclaration, mergeDir string) *ast.ImportDeclaration {
	if !strings.HasSuffix(imp.Path, ".tova") {
		return imp
	}

	targetAbs := filepath.Clean(filepath.Join(mergeDir, imp.Path))
	if filepath.Dir(targetAbs) == mergeDir {
		return nil
	}

	suffix := ".js"
	if m.isAppFile(targetAbs) {
		suffix = ".shared.js"
	}
	rewritten := *imp
	rewritten.Path = strings.TrimSuffix(imp.Path, ".tova") + suffix
	return &rewritten
}

// isAppFile peeks at a cross-directory import target to classify it as an
// app file (carries at least one block directive, so only its shared-block
// content is importable) or a module file (no directives, emits one .js
// carrying all its top-level declarations directly).
func (m *Merger) isAppFile(absPath string) bool {
	if v, ok := m.appCache[absPath]; ok {
		return v
	}
	isApp := false
	if prog, _, err := m.loadFile(absPath); err == nil {
		for _, tl := range prog.Body {
			switch tl.(type) {
			case *ast.SharedBlock, *ast.ServerBlock, *ast.ClientBlock, *ast.TestBlock, *ast.BenchBlock:
				isApp = true
			}
			if isApp {
				break
			}
		}
	}
	m.appCache[absPath] = isApp
	return isApp
}

// ---- merge validation (SPEC_FULL §4.4) ----

type serverGroup struct {
	funcs      *nameTracker
	models     *nameTracker
	routes     *nameTracker
	singletons *nameTracker
}

func newServerGroup() *serverGroup {
	return &serverGroup{
		funcs:      newNameTracker(),
		models:     newNameTracker(),
		routes:     newNameTracker(),
		singletons: newNameTracker(),
	}
}

// validate walks prog's merged top level and reports every merge conflict:
// component/state/computed/store/client-fn names unique across the whole
// client group, type/function/interface names unique across the whole
// shared group, and function/model/route/singleton names unique within
// each server label group.
func validate(prog *ast.Program, diags *diagnostics.List) {
	components := newNameTracker()
	states := newNameTracker()
	computeds := newNameTracker()
	stores := newNameTracker()
	clientFuncs := newNameTracker()

	sharedTypes := newNameTracker()
	sharedFuncs := newNameTracker()
	sharedInterfaces := newNameTracker()

	groups := make(map[string]*serverGroup)
	var labels []string

	for _, tl := range prog.Body {
		switch t := tl.(type) {
		case *ast.ClientBlock:
			collectClientNames(t.Body, components, states, computeds, stores, clientFuncs)
		case *ast.SharedBlock:
			collectSharedNames(t.Body, sharedTypes, sharedFuncs, sharedInterfaces)
		case *ast.ServerBlock:
			g, ok := groups[t.Label]
			if !ok {
				g = newServerGroup()
				groups[t.Label] = g
				labels = append(labels, t.Label)
			}
			collectServerNames(t.Body, g)
		}
	}

	components.reportDuplicates(diags, codeDuplicateClientName, "component")
	states.reportDuplicates(diags, codeDuplicateClientName, "state")
	computeds.reportDuplicates(diags, codeDuplicateClientName, "computed")
	stores.reportDuplicates(diags, codeDuplicateClientName, "store")
	clientFuncs.reportDuplicates(diags, codeDuplicateClientName, "client fn")

	sharedTypes.reportDuplicates(diags, codeDuplicateSharedName, "type")
	sharedFuncs.reportDuplicates(diags, codeDuplicateSharedName, "function")
	sharedInterfaces.reportDuplicates(diags, codeDuplicateSharedName, "interface/trait")

	sort.Strings(labels)
	for _, label := range labels {
		g := groups[label]
		g.funcs.reportDuplicates(diags, codeDuplicateServerName, labelled("function", label))
		g.models.reportDuplicates(diags, codeDuplicateServerName, labelled("model", label))
		g.routes.reportDuplicates(diags, codeDuplicateServerName, labelled("route", label))
		g.singletons.reportDuplicates(diags, codeDuplicateServerName, labelled("singleton", label))
	}
}

func collectClientNames(body []ast.TopLevel, components, states, computeds, stores, funcs *nameTracker) {
	for _, tl := range body {
		switch t := tl.(type) {
		case *ast.ComponentDeclaration:
			components.see(t.Name, t.Position)
		case *ast.StateDeclaration:
			states.see(t.Name, t.Position)
		case *ast.ComputedDeclaration:
			computeds.see(t.Name, t.Position)
		case *ast.StoreDeclaration:
			stores.see(t.Name, t.Position)
		case *ast.FuncDecl:
			funcs.see(t.Name, t.Position)
		}
	}
}

func collectSharedNames(body []ast.TopLevel, types, funcs, interfaces *nameTracker) {
	for _, tl := range body {
		switch t := tl.(type) {
		case *ast.TypeDecl:
			types.see(t.Name, t.Position)
		case *ast.FuncDecl:
			funcs.see(t.Name, t.Position)
		case *ast.InterfaceDecl:
			interfaces.see(t.Name, t.Position)
		}
	}
}

func collectServerNames(body []ast.TopLevel, g *serverGroup) {
	for _, tl := range body {
		switch t := tl.(type) {
		case *ast.FuncDecl:
			g.funcs.see(t.Name, t.Position)
		case *ast.ModelDeclaration:
			g.models.see(t.Name, t.Position)
		case *ast.RouteDeclaration:
			g.routes.see(routeKey(t.Method, t.Path), t.Position)
		case *ast.RouteGroupDeclaration:
			for _, r := range t.Routes {
				g.routes.see(routeKey(r.Method, path.Join(t.Prefix, r.Path)), r.Position)
			}
		case *ast.DbDeclaration:
			g.singletons.see("db", t.Position)
		case *ast.CorsDeclaration:
			g.singletons.see("cors", t.Position)
		case *ast.AuthDeclaration:
			g.singletons.see("auth", t.Position)
		case *ast.SessionDeclaration:
			g.singletons.see("session", t.Position)
		case *ast.CompressionDeclaration:
			g.singletons.see("compression", t.Position)
		case *ast.TLSDeclaration:
			g.singletons.see("tls", t.Position)
		case *ast.UploadDeclaration:
			g.singletons.see("upload", t.Position)
		case *ast.RateLimitDeclaration:
			g.singletons.see("rate_limit", t.Position)
		}
	}
}

func routeKey(method, p string) string {
	return method + " " + p
}

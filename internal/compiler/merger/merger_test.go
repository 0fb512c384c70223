package merger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/diagnostics"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func assertHasCode(t *testing.T, diags diagnostics.List, code string) {
	t.Helper()
	for _, d := range diags.Items() {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("expected a diagnostic with code %s, got: %v", code, diags.Items())
}

func TestMergeDirectoryConcatenatesSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tova", `shared {
		type Id = String
	}`)
	writeFile(t, dir, "b.tova", `server {
		route GET "/ping" () {
			print("pong")
		}
	}`)

	prog, diags, err := New().MergeDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 merged top levels, got %d", len(prog.Body))
	}
	if len(prog.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(prog.Sources))
	}
}

func TestDuplicateModelInSameServerLabelIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tova", `server {
		model User {
			id: String
		}
	}`)
	writeFile(t, dir, "b.tova", `server {
		model User {
			name: String
		}
	}`)

	_, diags, err := New().MergeDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertHasCode(t, diags, codeDuplicateServerName)
}

func TestSameModelNameInDifferentServerLabelsIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tova", `server {
		model User {
			id: String
		}
	}`)
	writeFile(t, dir, "b.tova", `server admin {
		model User {
			id: String
		}
	}`)

	_, diags, err := New().MergeDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestDuplicateRouteIdentityIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tova", `server {
		route GET "/tasks" () {
			print("a")
		}
	}`)
	writeFile(t, dir, "b.tova", `server {
		route GET "/tasks" () {
			print("b")
		}
	}`)

	_, diags, err := New().MergeDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertHasCode(t, diags, codeDuplicateServerName)
}

func TestDuplicateSingletonPerLabelIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tova", `server {
		db {
			driver: "sqlite"
		}
	}`)
	writeFile(t, dir, "b.tova", `server {
		db {
			driver: "postgres"
		}
	}`)

	_, diags, err := New().MergeDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertHasCode(t, diags, codeDuplicateServerName)
}

func TestDuplicateComponentNameIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tova", `client {
		component TaskList() {
			render {
				<div>a</div>
			}
		}
	}`)
	writeFile(t, dir, "b.tova", `client {
		component TaskList() {
			render {
				<div>b</div>
			}
		}
	}`)

	_, diags, err := New().MergeDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertHasCode(t, diags, codeDuplicateClientName)
}

func TestDuplicateSharedTypeIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tova", `shared {
		type Id = String
	}`)
	writeFile(t, dir, "b.tova", `shared {
		type Id = Int
	}`)

	_, diags, err := New().MergeDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertHasCode(t, diags, codeDuplicateSharedName)
}

func TestSameDirectoryImportIsDroppedFromMergedOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tova", `shared {
		import { helper } from "./b.tova"
	}`)
	writeFile(t, dir, "b.tova", `shared {
		fn helper() {
			return 1
		}
	}`)

	prog, diags, err := New().MergeDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}

	for _, tl := range prog.Body {
		sb, ok := tl.(*ast.SharedBlock)
		if !ok {
			continue
		}
		for _, inner := range sb.Body {
			if _, ok := inner.(*ast.ImportDeclaration); ok {
				t.Fatal("expected same-directory import to be dropped from the merged program")
			}
		}
	}
}

func TestCrossDirectoryModuleImportIsRewrittenToJS(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	libDir := filepath.Join(root, "lib")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(libDir, 0755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, libDir, "strings.tova", `pub fn shout(s: String) -> String {
		return s
	}`)
	writeFile(t, appDir, "main.tova", `shared {
		import { shout } from "../lib/strings.tova"
	}`)

	prog, diags, err := New().MergeDirectory(appDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}

	var rewritten string
	for _, tl := range prog.Body {
		sb, ok := tl.(*ast.SharedBlock)
		if !ok {
			continue
		}
		for _, inner := range sb.Body {
			if imp, ok := inner.(*ast.ImportDeclaration); ok {
				rewritten = imp.Path
			}
		}
	}
	if rewritten != "../lib/strings.js" {
		t.Fatalf("expected import path rewritten to ../lib/strings.js, got %q", rewritten)
	}
}

func TestCrossDirectoryAppImportIsRewrittenToSharedJS(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	libDir := filepath.Join(root, "lib")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(libDir, 0755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, libDir, "widgets.tova", `shared {
		pub fn label() -> String {
			return "x"
		}
	}
	server {
		route GET "/widgets" () {
			print("ok")
		}
	}`)
	writeFile(t, appDir, "main.tova", `shared {
		import { label } from "../lib/widgets.tova"
	}`)

	prog, diags, err := New().MergeDirectory(appDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}

	var rewritten string
	for _, tl := range prog.Body {
		sb, ok := tl.(*ast.SharedBlock)
		if !ok {
			continue
		}
		for _, inner := range sb.Body {
			if imp, ok := inner.(*ast.ImportDeclaration); ok {
				rewritten = imp.Path
			}
		}
	}
	if rewritten != "../lib/widgets.shared.js" {
		t.Fatalf("expected import path rewritten to ../lib/widgets.shared.js, got %q", rewritten)
	}
}

func TestUnreadableSourceDirectoryIsAnError(t *testing.T) {
	_, _, err := New().MergeDirectory(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected an error for a nonexistent directory")
	}
}

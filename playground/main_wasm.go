//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/compiler/generator"
	"github.com/btouchard/tova/internal/compiler/parser"
	"github.com/btouchard/tova/internal/compiler/semantic"
)

func main() {
	js.Global().Set("compileTova", js.FuncOf(compileTovaWrapper))

	// Keep the program alive
	select {}
}

// compileTovaWrapper wraps the compilation logic with panic recovery, the
// same syscall/js wrapper-with-panic-recovery idiom the teacher's
// compileGMXWrapper used — a panic escaping into the JS event loop would
// otherwise kill the whole wasm instance, not just the one compile call.
func compileTovaWrapper(this js.Value, args []js.Value) interface{} {
	var result map[string]interface{}

	defer func() {
		if r := recover(); r != nil {
			result = make(map[string]interface{})
			result["artifacts"] = []interface{}{}
			result["errors"] = []interface{}{fmt.Sprintf("panic: %v", r)}
		}
	}()

	if len(args) != 1 {
		result = make(map[string]interface{})
		result["artifacts"] = []interface{}{}
		result["errors"] = []interface{}{"expected 1 argument (source code)"}
		return js.ValueOf(result)
	}

	source := args[0].String()
	artifacts, errs := compileTova(source)

	result = make(map[string]interface{})
	jsArtifacts := make([]interface{}, len(artifacts))
	for i, a := range artifacts {
		jsArtifacts[i] = map[string]interface{}{"name": a.Name, "code": a.Code}
	}
	result["artifacts"] = jsArtifacts

	jsErrors := make([]interface{}, len(errs))
	for i, e := range errs {
		jsErrors[i] = e
	}
	result["errors"] = jsErrors

	return js.ValueOf(result)
}

// compileTova runs one standalone .tova source string (no directory
// merge — the playground edits a single buffer, so there are no sibling
// files to merge) through parse, semantic analysis, and generation, and
// returns the emitted artifacts and any diagnostics rendered as strings.
func compileTova(source string) ([]generator.Artifact, []string) {
	p := parser.New(source, "playground.tova")
	prog, parseDiags := p.ParseProgram()
	if len(parseDiags) > 0 {
		return nil, renderDiagnostics(parseDiags)
	}

	analyzer := semantic.New(false)
	semDiags := analyzer.Analyze(prog)
	if semDiags.HasErrors() {
		return nil, renderDiagnostics(semDiags.Items())
	}

	out, genDiags := generator.New().Generate(prog, "playground")
	var errs []string
	if genDiags.Len() > 0 {
		errs = renderDiagnostics(genDiags.Items())
	}
	if out == nil {
		return nil, errs
	}
	return out.Artifacts, errs
}

func renderDiagnostics(diags []diagnostics.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}

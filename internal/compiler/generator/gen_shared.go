package generator

import (
	"github.com/btouchard/tova/internal/compiler/ast"
)

// emitSharedBody renders the declarations legal in a `shared{}` block (and,
// for a module file with no block directives at all, the whole file body):
// type aliases, tagged-variant types as factory objects, functions, and
// top-level `let`/`const`. `pub` maps to an ES `export`, generalizing the
// teacher's Go-side exported-vs-unexported PascalCase convention to JS
// module syntax.
func (g *Generator) emitSharedBody(w *writer, body []ast.TopLevel, ctx exprCtx) {
	for _, tl := range body {
		w.mark(tl.Pos())
		switch t := tl.(type) {
		case *ast.ImportDeclaration:
			g.emitImport(w, t)
		case *ast.TypeDecl:
			g.emitTypeDecl(w, t, ctx)
		case *ast.InterfaceDecl:
			// Interfaces/traits are a compile-time-only contract (SPEC_FULL
			// §9 open question) — registered for completeness, erased at
			// runtime like a TypeScript interface.
			w.Printf("// interface %s (erased)\n", t.Name)
		case *ast.ImplDecl:
			g.emitImplDecl(w, t, ctx)
		case *ast.FuncDecl:
			g.emitExportable(w, t.Public, func() { g.emitFuncDecl(w, t, ctx) })
		case *ast.VarDecl:
			g.emitExportableVar(w, t, ctx)
		}
		w.WriteString("\n")
	}
}

func (g *Generator) emitExportable(w *writer, public bool, body func()) {
	if public {
		w.WriteString("export ")
	}
	body()
}

func (g *Generator) emitExportableVar(w *writer, v *ast.VarDecl, ctx exprCtx) {
	// VarDecl carries no Public flag of its own (only FuncDecl/TypeDecl/
	// ComponentDeclaration/StoreDeclaration do) — top-level `let`/`const`
	// are module-private unless re-exported explicitly, matching the
	// teacher's convention that only PascalCase-named declarations cross a
	// package boundary by default.
	g.emitVarDecl(w, v, ctx)
}

func (g *Generator) emitImport(w *writer, imp *ast.ImportDeclaration) {
	w.WriteString("import ")
	parts := 0
	if imp.Default != "" {
		w.WriteString(jsIdent(imp.Default))
		parts++
	}
	if imp.Wildcard != "" {
		if parts > 0 {
			w.WriteString(", ")
		}
		w.WriteString("* as " + jsIdent(imp.Wildcard))
		parts++
	}
	if len(imp.Specifiers) > 0 {
		if parts > 0 {
			w.WriteString(", ")
		}
		w.WriteString("{")
		for i, spec := range imp.Specifiers {
			if i > 0 {
				w.WriteString(", ")
			}
			if spec.Local != "" && spec.Local != spec.Imported {
				w.WriteString(spec.Imported + " as " + jsIdent(spec.Local))
			} else {
				w.WriteString(spec.Imported)
			}
		}
		w.WriteString("}")
		parts++
	}
	if parts == 0 {
		w.WriteString("{}")
	}
	w.WriteString(" from " + jsStringLiteral(imp.Path) + ";")
}

// emitTypeDecl covers both forms: a plain alias (`type X = expr`, erased —
// the alias only ever mattered to the type checker) and a tagged-variant
// type, emitted as a namespace object of factory functions. Each factory's
// result carries both named keys (for direct property access/JSON) and a
// `__fields` positional array (for pattern-match destructuring in
// gen_expr.go's compileVariantPatternTest, which has no field-name
// information available at codegen time).
func (g *Generator) emitTypeDecl(w *writer, t *ast.TypeDecl, ctx exprCtx) {
	if t.Alias != nil {
		// Type aliases are erased; nothing to emit for a pure type-level
		// binding with no runtime representation.
		return
	}
	g.emitExportable(w, t.Public, func() {
		w.WriteString("const " + t.Name + " = {\n")
		for _, v := range t.Variants {
			w.Printf("  %s(", v.Name)
			for i, f := range v.Fields {
				if i > 0 {
					w.WriteString(", ")
				}
				w.WriteString(jsIdent(f.Name))
			}
			w.WriteString(") { return { __tag: " + jsStringLiteral(v.Name) + ", __fields: [")
			for i, f := range v.Fields {
				if i > 0 {
					w.WriteString(", ")
				}
				w.WriteString(jsIdent(f.Name))
			}
			w.WriteString("]")
			for _, f := range v.Fields {
				w.WriteString(", " + jsPropKey(f.Name) + ": " + jsIdent(f.Name))
			}
			w.WriteString(" }; },\n")
		}
		w.WriteString("};")
	})
}

func (g *Generator) emitImplDecl(w *writer, impl *ast.ImplDecl, ctx exprCtx) {
	for _, m := range impl.Methods {
		w.Printf("%s.prototype.%s = function(", impl.TypeName, m.Name)
		g.emitParams(w, m.Params, ctx)
		w.WriteString(") {")
		g.emitStatements(w, m.Body, ctx)
		w.WriteString("};\n")
	}
}

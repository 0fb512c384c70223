package generator

import "github.com/btouchard/tova/internal/compiler/ast"

// emitClientArtifact renders one `client{}` (or `client label {}`) group's
// body as a standalone JS module: the reactive-core/DOM runtime fragments
// it actually needs (per scanClientUsage), then state/computed/effect as
// signal/computed/effect bindings, components as render functions, stores
// as shared reactive singletons, and any ordinary client-side `fn` as a
// plain function — with `server.fn(...)` calls inside any of them compiled
// through the RPC bridge.
func (g *Generator) emitClientArtifact(w *writer, body []ast.TopLevel) {
	u := scanClientUsage(body)
	if u.core {
		w.WriteString(runtimeCore)
		w.WriteString("\n")
	}
	if u.dom {
		w.WriteString(runtimeDom)
		w.WriteString("\n")
	}
	if u.rpc {
		w.WriteString(runtimeRPC)
		w.WriteString("\n")
	}

	ctx := exprCtx{rpcBridge: true}
	for _, tl := range body {
		w.mark(tl.Pos())
		switch t := tl.(type) {
		case *ast.ImportDeclaration:
			g.emitImport(w, t)
		case *ast.StateDeclaration:
			g.emitStateDecl(w, t, ctx)
		case *ast.ComputedDeclaration:
			g.emitComputedDecl(w, t, ctx)
		case *ast.EffectDeclaration:
			g.emitEffectDecl(w, t, ctx)
		case *ast.ComponentDeclaration:
			g.emitComponent(w, t, ctx)
		case *ast.StoreDeclaration:
			g.emitStore(w, t, ctx)
		case *ast.FuncDecl:
			g.emitExportable(w, t.Public, func() { g.emitFuncDecl(w, t, ctx) })
		case *ast.VarDecl:
			g.emitVarDecl(w, t, ctx)
		case *ast.TypeDecl:
			g.emitTypeDecl(w, t, ctx)
		}
		w.WriteString("\n")
	}
}

func (g *Generator) emitStateDecl(w *writer, s *ast.StateDeclaration, ctx exprCtx) {
	w.WriteString("const [" + s.Name + ", __set_" + s.Name + "] = __tova_core.create_signal(")
	g.emitExpr(w, s.Value, ctx)
	w.WriteString(");")
}

func (g *Generator) emitComputedDecl(w *writer, c *ast.ComputedDeclaration, ctx exprCtx) {
	w.WriteString("const " + c.Name + " = __tova_core.create_computed(() => ")
	g.emitExpr(w, c.Expr, ctx)
	w.WriteString(");")
}

func (g *Generator) emitEffectDecl(w *writer, e *ast.EffectDeclaration, ctx exprCtx) {
	w.WriteString("__tova_core.create_effect(() => {")
	g.emitStatements(w, e.Body, ctx)
	w.WriteString("});")
}

// emitComponent renders a ComponentDeclaration as a plain JS function
// (props parameter, reactive locals declared in the closure, a JSX render
// body lowered to a single vnode-producing expression) — callable directly
// from a parent component's `h()`/tag-call emission (gen_jsx.go).
func (g *Generator) emitComponent(w *writer, c *ast.ComponentDeclaration, ctx exprCtx) {
	g.emitExportable(w, c.Public, func() {
		w.WriteString("function " + c.Name + "(props) {\n")
		if len(c.Props) > 0 {
			w.WriteString("  const {")
			for i, p := range c.Props {
				if i > 0 {
					w.WriteString(", ")
				}
				w.WriteString(jsIdent(p.Name))
			}
			w.WriteString("} = props;\n")
		}
		for _, tl := range c.Body {
			switch t := tl.(type) {
			case *ast.StateDeclaration:
				g.emitStateDecl(w, t, ctx)
			case *ast.ComputedDeclaration:
				g.emitComputedDecl(w, t, ctx)
			case *ast.EffectDeclaration:
				g.emitEffectDecl(w, t, ctx)
			case *ast.FuncDecl:
				g.emitFuncDecl(w, t, ctx)
			case *ast.VarDecl:
				g.emitVarDecl(w, t, ctx)
			}
			w.WriteString("\n")
		}
		w.WriteString("  return ")
		g.emitJSXRenderList(w, c.Render, ctx)
		w.WriteString(";\n}")
	})
}

// emitJSXRenderList wraps a component's render body — a list of sibling
// JSX children, as legal at the grammar level as a single root — in a
// fragment vnode if there's more than one root child.
func (g *Generator) emitJSXRenderList(w *writer, children []ast.JSXChild, ctx exprCtx) {
	if len(children) == 1 {
		g.emitJSXChild(w, children[0], ctx)
		return
	}
	w.WriteString("__tova_dom.h(null, {}, [")
	g.emitJSXChildren(w, children, ctx)
	w.WriteString("])")
}

func (g *Generator) emitStore(w *writer, s *ast.StoreDeclaration, ctx exprCtx) {
	g.emitExportable(w, s.Public, func() {
		w.WriteString("const " + s.Name + " = (function() {\n")
		for _, tl := range s.Body {
			switch t := tl.(type) {
			case *ast.StateDeclaration:
				g.emitStateDecl(w, t, ctx)
			case *ast.ComputedDeclaration:
				g.emitComputedDecl(w, t, ctx)
			case *ast.EffectDeclaration:
				g.emitEffectDecl(w, t, ctx)
			case *ast.FuncDecl:
				g.emitFuncDecl(w, t, ctx)
			case *ast.VarDecl:
				g.emitVarDecl(w, t, ctx)
			}
			w.WriteString("\n")
		}
		w.WriteString("  return {")
		first := true
		for _, tl := range s.Body {
			name := ""
			switch t := tl.(type) {
			case *ast.StateDeclaration:
				name = t.Name
			case *ast.ComputedDeclaration:
				name = t.Name
			case *ast.FuncDecl:
				name = t.Name
			}
			if name == "" {
				continue
			}
			if !first {
				w.WriteString(", ")
			}
			first = false
			w.WriteString(name)
		}
		w.WriteString("};\n})();")
	})
}

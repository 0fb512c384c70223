package generator

import (
	"github.com/btouchard/tova/internal/compiler/ast"
)

// emitJSXAsExpr renders a JSXElement/JSXFragment appearing directly in
// expression position (the tail of a component's Render list, or an
// explicit `{<Foo/>}` nested elsewhere).
func (g *Generator) emitJSXAsExpr(w *writer, e ast.Expression, ctx exprCtx) {
	switch x := e.(type) {
	case *ast.JSXElement:
		g.emitJSXElement(w, x, ctx)
	case *ast.JSXFragment:
		g.emitJSXFragmentVNode(w, x, ctx)
	}
}

// emitJSXElement lowers one JSX tag into an `h(tag, props, children)` vnode
// call matching runtime/dom.js.tmpl's `{__tova, tag, props, children}`
// shape; a capitalized tag names a component function, called directly
// rather than passed as a string tag.
func (g *Generator) emitJSXElement(w *writer, el *ast.JSXElement, ctx exprCtx) {
	w.mark(el.Pos())
	if isComponentTag(el.Tag) {
		w.WriteString(el.Tag + "({")
		for i, attr := range el.Attrs {
			if i > 0 {
				w.WriteString(", ")
			}
			g.emitJSXAttr(w, attr, ctx)
		}
		if len(el.Children) > 0 {
			if len(el.Attrs) > 0 {
				w.WriteString(", ")
			}
			w.WriteString("children: [")
			g.emitJSXChildren(w, el.Children, ctx)
			w.WriteString("]")
		}
		w.WriteString("})")
		return
	}

	w.WriteString("__tova_dom.h(" + jsStringLiteral(el.Tag) + ", {")
	for i, attr := range el.Attrs {
		if i > 0 {
			w.WriteString(", ")
		}
		g.emitJSXAttr(w, attr, ctx)
	}
	w.WriteString("}, [")
	g.emitJSXChildren(w, el.Children, ctx)
	w.WriteString("])")
}

func isComponentTag(tag string) bool {
	return len(tag) > 0 && tag[0] >= 'A' && tag[0] <= 'Z'
}

func (g *Generator) emitJSXAttr(w *writer, attr ast.JSXAttr, ctx exprCtx) {
	if attr.Spread {
		w.WriteString("...")
		g.emitExpr(w, attr.Value, ctx)
		return
	}
	w.WriteString(jsPropKey(attr.Name) + ": ")
	g.emitExpr(w, attr.Value, ctx)
}

func (g *Generator) emitJSXFragmentVNode(w *writer, fr *ast.JSXFragment, ctx exprCtx) {
	w.WriteString("__tova_dom.h(null, {}, [")
	g.emitJSXChildren(w, fr.Children, ctx)
	w.WriteString("])")
}

// emitJSXChildren renders a comma-separated JS array of child vnodes.
// `jsx_if`/`jsx_for` compile to function-vnodes — thunks the runtime
// invokes on every re-render so conditional/list regions stay dynamic
// rather than being baked in once at render time (SPEC_FULL §4.5).
func (g *Generator) emitJSXChildren(w *writer, children []ast.JSXChild, ctx exprCtx) {
	for i, c := range children {
		if i > 0 {
			w.WriteString(", ")
		}
		g.emitJSXChild(w, c, ctx)
	}
}

func (g *Generator) emitJSXChild(w *writer, c ast.JSXChild, ctx exprCtx) {
	w.mark(c.Pos())
	switch x := c.(type) {
	case *ast.JSXText:
		w.WriteString(jsStringLiteral(x.Value))
	case *ast.JSXExprChild:
		g.emitExpr(w, x.X, ctx)
	case *ast.JSXElement:
		g.emitJSXElement(w, x, ctx)
	case *ast.JSXFragment:
		g.emitJSXFragmentVNode(w, x, ctx)
	case *ast.JSXIf:
		g.emitJSXIf(w, x, ctx)
	case *ast.JSXFor:
		g.emitJSXFor(w, x, ctx)
	}
}

func (g *Generator) emitJSXIf(w *writer, x *ast.JSXIf, ctx exprCtx) {
	w.WriteString("(() => { if (")
	g.emitExpr(w, x.Cond, ctx)
	w.WriteString(") return __tova_dom.h(null, {}, [")
	g.emitJSXChildren(w, x.Then, ctx)
	w.WriteString("]);")
	for _, el := range x.Elif {
		w.WriteString(" if (")
		g.emitExpr(w, el.Cond, ctx)
		w.WriteString(") return __tova_dom.h(null, {}, [")
		g.emitJSXChildren(w, el.Body, ctx)
		w.WriteString("]);")
	}
	if x.Else != nil {
		w.WriteString(" return __tova_dom.h(null, {}, [")
		g.emitJSXChildren(w, x.Else, ctx)
		w.WriteString("]);")
	} else {
		w.WriteString(" return null;")
	}
	w.WriteString(" })()")
}

// emitJSXFor maps each iteration to a vnode, attaching `key` when a `key=`
// clause was given, so the runtime's reconcile() dispatches to
// reconcileKeyed instead of positional diffing.
func (g *Generator) emitJSXFor(w *writer, x *ast.JSXFor, ctx exprCtx) {
	w.WriteString("__tova_dom.h(null, {}, (")
	g.emitExpr(w, x.Iter, ctx)
	w.WriteString(").map((__item) => { const ")
	g.emitDestructureTarget(w, x.Binding)
	w.WriteString(" = __item; return __tova_dom.h(null, {")
	if x.Key != nil {
		w.WriteString("key: ")
		g.emitExpr(w, x.Key, ctx)
	}
	w.WriteString("}, [")
	g.emitJSXChildren(w, x.Body, ctx)
	w.WriteString("]); }))")
}

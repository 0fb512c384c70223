package generator

import (
	"github.com/btouchard/tova/internal/compiler/ast"
)

func (g *Generator) emitStatements(w *writer, stmts []ast.Statement, ctx exprCtx) {
	for _, s := range stmts {
		g.emitStatement(w, s, ctx)
	}
}

func (g *Generator) emitStatement(w *writer, s ast.Statement, ctx exprCtx) {
	w.mark(s.Pos())
	switch st := s.(type) {
	case *ast.VarDecl:
		g.emitVarDecl(w, st, ctx)
	case *ast.FuncDecl:
		g.emitFuncDecl(w, st, ctx)
	case *ast.AssignStmt:
		g.emitAssign(w, st, ctx)
	case *ast.ReturnStmt:
		w.WriteString("return")
		if st.Value != nil {
			w.WriteString(" ")
			g.emitExpr(w, st.Value, ctx)
		}
		w.WriteString(";")
	case *ast.ExprStmt:
		g.emitExpr(w, st.X, ctx)
		w.WriteString(";")
	case *ast.IfStmt:
		g.emitIfStmt(w, st, ctx)
	case *ast.ForStmt:
		g.emitForStmt(w, st, ctx)
	case *ast.WhileStmt:
		w.WriteString("while (")
		g.emitExpr(w, st.Cond, ctx)
		w.WriteString(") {")
		g.emitStatements(w, st.Body, ctx)
		w.WriteString("}")
	case *ast.TryStmt:
		w.WriteString("try {")
		g.emitStatements(w, st.Body, ctx)
		w.WriteString("} catch (")
		if st.CatchParam != "" {
			w.WriteString(jsIdent(st.CatchParam))
		} else {
			w.WriteString("__err")
		}
		w.WriteString(") {")
		g.emitStatements(w, st.Catch, ctx)
		w.WriteString("}")
	case *ast.MatchStmt:
		g.emitMatchStmt(w, st, ctx)
	}
}

// emitVarDecl handles both the simple-identifier and the destructuring
// forms of `let`/`var`/`const`. Destructuring targets here are always
// ArrayPattern/ObjectPattern (a VariantPattern binding is only legal inside
// a match arm, rejected elsewhere by the semantic analyzer), which map
// directly onto native JS destructuring syntax — no pattern-test IIFE
// needed, unlike the match-arm case in gen_expr.go.
func (g *Generator) emitVarDecl(w *writer, v *ast.VarDecl, ctx exprCtx) {
	kind := "let"
	if v.Kind == "const" {
		kind = "const"
	}
	w.WriteString(kind + " ")
	g.emitDestructureTarget(w, v.Target)
	if v.Value != nil {
		w.WriteString(" = ")
		g.emitExpr(w, v.Value, ctx)
	}
	w.WriteString(";")
}

// emitDestructureTarget renders pat as a JS destructuring-assignment LHS
// (or a plain identifier for the trivial case).
func (g *Generator) emitDestructureTarget(w *writer, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.Ident:
		w.WriteString(jsIdent(p.Name))
	case *ast.WildcardPattern:
		w.WriteString("_")
	case *ast.ArrayPattern:
		w.WriteString("[")
		for i, el := range p.Elements {
			if i > 0 {
				w.WriteString(", ")
			}
			g.emitDestructureTarget(w, el)
		}
		if p.Rest != "" {
			if len(p.Elements) > 0 {
				w.WriteString(", ")
			}
			w.WriteString("..." + jsIdent(p.Rest))
		}
		w.WriteString("]")
	case *ast.ObjectPattern:
		w.WriteString("{")
		for i, f := range p.Fields {
			if i > 0 {
				w.WriteString(", ")
			}
			if f.Binding == nil {
				w.WriteString(jsIdent(f.Key))
				continue
			}
			w.WriteString(f.Key + ": ")
			g.emitDestructureTarget(w, f.Binding)
		}
		w.WriteString("}")
	default:
		w.WriteString("_")
	}
}

func (g *Generator) emitFuncDecl(w *writer, f *ast.FuncDecl, ctx exprCtx) {
	if f.Async {
		w.WriteString("async ")
	}
	w.WriteString("function " + jsIdent(f.Name) + "(")
	g.emitParams(w, f.Params, ctx)
	w.WriteString(") {")
	g.emitStatements(w, f.Body, ctx)
	w.WriteString("}")
}

func (g *Generator) emitAssign(w *writer, a *ast.AssignStmt, ctx exprCtx) {
	if a.Op == "++" {
		g.emitExpr(w, a.Target, ctx)
		w.WriteString("++;")
		return
	}
	g.emitExpr(w, a.Target, ctx)
	w.WriteString(" " + a.Op + " ")
	g.emitExpr(w, a.Value, ctx)
	w.WriteString(";")
}

func (g *Generator) emitIfStmt(w *writer, st *ast.IfStmt, ctx exprCtx) {
	w.WriteString("if (")
	g.emitExpr(w, st.Cond, ctx)
	w.WriteString(") {")
	g.emitStatements(w, st.Then, ctx)
	w.WriteString("}")
	for _, el := range st.Elif {
		w.WriteString(" else if (")
		g.emitExpr(w, el.Cond, ctx)
		w.WriteString(") {")
		g.emitStatements(w, el.Body, ctx)
		w.WriteString("}")
	}
	if st.Else != nil {
		w.WriteString(" else {")
		g.emitStatements(w, st.Else, ctx)
		w.WriteString("}")
	}
}

// emitForStmt lowers `for x in iter { ... }`; a RangeExpr iterable compiles
// directly to a counted `for` loop rather than materializing an array, the
// one case where a for-loop shape differs from a plain `for...of`.
func (g *Generator) emitForStmt(w *writer, st *ast.ForStmt, ctx exprCtx) {
	ident, simple := st.Binding.(*ast.Ident)
	if rng, ok := st.Iter.(*ast.RangeExpr); ok && simple {
		cmp := "<"
		if rng.Inclusive {
			cmp = "<="
		}
		name := jsIdent(ident.Name)
		w.WriteString("for (let " + name + " = ")
		g.emitExpr(w, rng.Low, ctx)
		w.WriteString("; " + name + " " + cmp + " ")
		g.emitExpr(w, rng.High, ctx)
		w.WriteString("; " + name + "++) {")
		g.emitStatements(w, st.Body, ctx)
		w.WriteString("}")
		return
	}

	w.WriteString("for (const ")
	g.emitDestructureTarget(w, st.Binding)
	w.WriteString(" of ")
	g.emitExpr(w, st.Iter, ctx)
	w.WriteString(") {")
	g.emitStatements(w, st.Body, ctx)
	w.WriteString("}")
}

// emitMatchStmt compiles a match statement as a sequence of `if(__m){...}`
// blocks (no return value needed, unlike emitMatchExpr), one per arm,
// reusing emitMatchArmTest with a plain statement body.
func (g *Generator) emitMatchStmt(w *writer, m *ast.MatchStmt, ctx exprCtx) {
	w.WriteString("{const __subj = ")
	g.emitExpr(w, m.Subject, ctx)
	w.WriteString(";let __matched = false;")
	for _, arm := range m.Arms {
		w.WriteString("if(!__matched){")
		g.emitMatchArmTest(w, arm.Pattern, arm.Guard, ctx, func() {
			w.WriteString("__matched = true;")
			g.emitStatements(w, arm.Body, ctx)
		})
		w.WriteString("}")
	}
	w.WriteString("}")
}

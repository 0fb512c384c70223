package generator

import "github.com/btouchard/tova/internal/compiler/ast"

// usage records which runtime fragments an artifact's body actually needs,
// generalizing the teacher's hasAnnotationMatch/needsStrconv/
// hasServicesWithEnv predicate-scanning idiom (analysis.go in the old
// Go-targeting generator) from "which Go stdlib imports does this file
// need" to "which pieces of the JS runtime does this file need" — so a
// client artifact with no JSX never pulls in the DOM/reconciliation layer,
// and one with no `server.fn(...)` calls never pulls in the RPC client.
type usage struct {
	core bool // create_signal/create_effect/create_computed/ownership
	dom  bool // h()/reconcile()/hydrate()
	rpc  bool // __tova_rpc.rpc bridge calls
}

func (u *usage) merge(o usage) {
	u.core = u.core || o.core
	u.dom = u.dom || o.dom
	u.rpc = u.rpc || o.rpc
}

// scanClientUsage inspects one client block's body for the constructs that
// pull in each runtime fragment.
func scanClientUsage(body []ast.TopLevel) usage {
	var u usage
	for _, tl := range body {
		switch t := tl.(type) {
		case *ast.StateDeclaration, *ast.ComputedDeclaration:
			u.core = true
		case *ast.EffectDeclaration:
			u.core = true
			scanStmtsUsage(t.Body, &u)
		case *ast.ComponentDeclaration:
			u.core = true
			u.dom = true
			scanExprListUsage(declExprs(t.Body), &u)
			for _, b := range t.Body {
				if eff, ok := b.(*ast.EffectDeclaration); ok {
					scanStmtsUsage(eff.Body, &u)
				}
			}
			scanLocalFuncsUsage(t.Body, &u)
			scanJSXUsage(t.Render, &u)
		case *ast.StoreDeclaration:
			u.merge(scanClientUsage(t.Body))
		case *ast.FuncDecl:
			scanStmtsUsage(t.Body, &u)
		}
	}
	return u
}

// declExprs collects the value/initializer expressions directly owned by a
// component body's state/computed declarations, so a `server.fn(...)` call
// inside a state initializer or computed expression is still detected.
// Effect bodies and local fns are statement lists and are scanned
// separately by the caller.
func declExprs(body []ast.TopLevel) []ast.Expression {
	var exprs []ast.Expression
	for _, tl := range body {
		switch t := tl.(type) {
		case *ast.StateDeclaration:
			if t.Value != nil {
				exprs = append(exprs, t.Value)
			}
		case *ast.ComputedDeclaration:
			if t.Expr != nil {
				exprs = append(exprs, t.Expr)
			}
		}
	}
	return exprs
}

// scanLocalFuncsUsage scans the `fn` declarations nested directly in a
// component/store body (as opposed to its state/computed/effect
// declarations, already handled by the caller) for bridge-call/JSX usage.
func scanLocalFuncsUsage(body []ast.TopLevel, u *usage) {
	for _, tl := range body {
		if f, ok := tl.(*ast.FuncDecl); ok {
			scanStmtsUsage(f.Body, u)
		}
	}
}

func scanExprListUsage(exprs []ast.Expression, u *usage) {
	for _, e := range exprs {
		scanExprUsage(e, u)
	}
}

func scanStmtsUsage(stmts []ast.Statement, u *usage) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.ExprStmt:
			scanExprUsage(st.X, u)
		case *ast.VarDecl:
			scanExprUsage(st.Value, u)
		case *ast.AssignStmt:
			scanExprUsage(st.Value, u)
		case *ast.ReturnStmt:
			scanExprUsage(st.Value, u)
		case *ast.IfStmt:
			scanStmtsUsage(st.Then, u)
			for _, el := range st.Elif {
				scanStmtsUsage(el.Body, u)
			}
			scanStmtsUsage(st.Else, u)
		case *ast.ForStmt:
			scanStmtsUsage(st.Body, u)
		case *ast.WhileStmt:
			scanStmtsUsage(st.Body, u)
		case *ast.TryStmt:
			scanStmtsUsage(st.Body, u)
			scanStmtsUsage(st.Catch, u)
		case *ast.MatchStmt:
			for _, arm := range st.Arms {
				scanStmtsUsage(arm.Body, u)
			}
		}
	}
}

// scanExprUsage walks e looking for a `server.fn(...)` bridge call and any
// nested JSX; it does not need to be exhaustive over every expression kind
// since the only signals it looks for (bridge calls, embedded JSX) can only
// occur in call/JSX-shaped sub-expressions.
func scanExprUsage(e ast.Expression, u *usage) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.CallExpr:
		if mem, ok := x.Callee.(*ast.MemberExpr); ok {
			if recv, ok := mem.X.(*ast.Ident); ok && recv.Name == "server" {
				u.rpc = true
			}
		}
		scanExprUsage(x.Callee, u)
		for _, a := range x.Args {
			scanExprUsage(a, u)
		}
	case *ast.BinaryExpr:
		scanExprUsage(x.Left, u)
		scanExprUsage(x.Right, u)
	case *ast.UnaryExpr:
		scanExprUsage(x.X, u)
	case *ast.MemberExpr:
		scanExprUsage(x.X, u)
	case *ast.IndexExpr:
		scanExprUsage(x.X, u)
		scanExprUsage(x.Index, u)
	case *ast.TryExpr:
		scanExprUsage(x.X, u)
	case *ast.IfExpr:
		scanExprUsage(x.Cond, u)
		scanExprUsage(x.Then, u)
		scanExprUsage(x.Else, u)
	case *ast.ArrayLit:
		for _, el := range x.Elements {
			scanExprUsage(el, u)
		}
	case *ast.FuncLit:
		scanStmtsUsage(x.Body, u)
	case *ast.JSXElement, *ast.JSXFragment:
		u.dom = true
	}
}

func scanJSXUsage(children []ast.JSXChild, u *usage) {
	if len(children) > 0 {
		u.dom = true
	}
	for _, c := range children {
		switch x := c.(type) {
		case *ast.JSXExprChild:
			scanExprUsage(x.X, u)
		case *ast.JSXElement:
			for _, attr := range x.Attrs {
				scanExprUsage(attr.Value, u)
			}
			scanJSXUsage(x.Children, u)
		case *ast.JSXFragment:
			scanJSXUsage(x.Children, u)
		case *ast.JSXIf:
			scanExprUsage(x.Cond, u)
			scanJSXUsage(x.Then, u)
			for _, el := range x.Elif {
				scanJSXUsage(el.Body, u)
			}
			scanJSXUsage(x.Else, u)
		case *ast.JSXFor:
			scanExprUsage(x.Iter, u)
			scanJSXUsage(x.Body, u)
		}
	}
}

// hasRPCExposedFns reports whether a server block contains at least one
// `pub fn`, which the route-dispatch emitter auto-registers under
// `/rpc/<name>` (SPEC_FULL §4.5/§6).
func hasRPCExposedFns(body []ast.TopLevel) bool {
	for _, tl := range body {
		if f, ok := tl.(*ast.FuncDecl); ok && f.Public {
			return true
		}
	}
	return false
}

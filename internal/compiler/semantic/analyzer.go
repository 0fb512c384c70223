package semantic

import (
	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/compiler/token"
)

// Analyzer walks a parsed Program building a parent-pointer scope tree: one
// scope per block, function/effect/handler body, component, store, loop
// body, and match/if branch. It binds every declaration, resolves every
// identifier reference against the scope chain, and reports duplicate,
// unresolved, unused, and shadowed findings as diagnostics.
type Analyzer struct {
	strict bool
	diags  diagnostics.List
}

// New returns an Analyzer. When strict is true, Analyze promotes every
// warning in its result to an error.
func New(strict bool) *Analyzer {
	return &Analyzer{strict: strict}
}

// Analyze walks prog and returns every diagnostic produced.
func (a *Analyzer) Analyze(prog *ast.Program) diagnostics.List {
	global := newGlobalScope()
	a.walkTopLevels(prog.Body, global)
	a.checkUnusedInScope(global)
	if !a.strict {
		return a.diags
	}
	return promoteWarnings(a.diags)
}

func promoteWarnings(in diagnostics.List) diagnostics.List {
	var out diagnostics.List
	for _, d := range in.Items() {
		if d.Severity == diagnostics.SeverityWarning {
			d.Severity = diagnostics.SeverityError
		}
		out.Add(d)
	}
	return out
}

// ---- binding / resolution primitives ----

// defineNamed binds name in sc, reporting a duplicate-declaration error if
// it is already bound there, or a shadowed-binding warning if an enclosing
// scope already binds it. "_" and "" bind nothing (the conventional
// discard name).
func (a *Analyzer) defineNamed(sc *Scope, name string, kind SymbolKind, pos token.Position) *Symbol {
	if name == "" || name == "_" {
		return nil
	}
	sym, fresh := sc.defineLocal(&Symbol{Name: name, Kind: kind, Pos: pos})
	if !fresh {
		a.diags.Errorf(pos, codeDuplicateDecl, "%q is already declared in this scope (first declared at %s)", name, sym.Pos.String())
		return sym
	}
	if outer, _ := sc.resolveOuter(name); outer != nil {
		a.diags.Warnf(pos, codeShadowedBinding, "%q shadows a binding from an enclosing scope", name)
	}
	return sym
}

func (a *Analyzer) resolveIdent(name string, pos token.Position, sc *Scope) {
	if name == "" || name == "_" {
		return
	}
	sym, _ := sc.resolve(name)
	if sym == nil {
		a.diags.Errorf(pos, codeUnresolvedIdent, "undefined name %q", name)
		return
	}
	sym.Used = true
}

// checkUnusedInScope warns on every var/const/param binding in sc that was
// never read. Types, functions, imports, and builtins are exempt: a
// declared-but-uncalled function or an unused import is a different
// concern than a dead local, and not one this analyzer reports.
func (a *Analyzer) checkUnusedInScope(sc *Scope) {
	for _, sym := range sc.names {
		if sym.Used {
			continue
		}
		switch sym.Kind {
		case SymbolVar, SymbolConst, SymbolParam:
			a.diags.Warnf(sym.Pos, codeUnusedLocal, "%q is never used", sym.Name)
		}
	}
}

// bindPattern binds every leaf name a Pattern introduces into sc at kind.
// Sub-expressions carried by match-only pattern forms (literal values,
// range bounds) are analyzed against outerSc, the scope the pattern itself
// sits in, since they reference values visible before the match — never
// the bindings the pattern is about to introduce.
func (a *Analyzer) bindPattern(pat ast.Pattern, kind SymbolKind, sc, outerSc *Scope) {
	if pat == nil {
		return
	}
	switch p := pat.(type) {
	case *ast.Ident:
		a.defineNamed(sc, p.Name, kind, p.Position)
	case *ast.WildcardPattern:
		// binds nothing
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			a.bindPattern(el, kind, sc, outerSc)
		}
		if p.Rest != "" {
			a.defineNamed(sc, p.Rest, kind, p.Position)
		}
	case *ast.ObjectPattern:
		for _, f := range p.Fields {
			if f.Binding != nil {
				a.bindPattern(f.Binding, kind, sc, outerSc)
			} else {
				a.defineNamed(sc, f.Key, kind, p.Position)
			}
		}
	case *ast.VariantPattern:
		for _, b := range p.Bindings {
			a.bindPattern(b, kind, sc, outerSc)
		}
	case *ast.StringConcatPattern:
		if p.Binding != "" {
			a.defineNamed(sc, p.Binding, kind, p.Position)
		}
	case *ast.LiteralPattern:
		a.walkExpr(p.Value, outerSc)
	case *ast.RangePattern:
		a.walkExpr(p.Low, outerSc)
		a.walkExpr(p.High, outerSc)
	}
}

func (a *Analyzer) defineParams(params []ast.Param, sc *Scope, fallbackPos token.Position) {
	for _, p := range params {
		if p.Default != nil {
			a.walkExpr(p.Default, sc)
		}
		a.defineNamed(sc, p.Name, SymbolParam, fallbackPos)
	}
}

func (a *Analyzer) walkObjectFields(fields []ast.ObjectField, sc *Scope) {
	for _, f := range fields {
		a.walkExpr(f.Value, sc)
	}
}

// ---- top-level declarations ----

// walkTopLevels hoists every type-like/function/component/store name in
// tls before walking any of their bodies, so sibling declarations may
// reference each other regardless of source order (a type alias naming a
// model declared later in the same block, a route calling a handler
// function defined further down the file).
func (a *Analyzer) walkTopLevels(tls []ast.TopLevel, sc *Scope) {
	a.predeclare(tls, sc)
	for _, tl := range tls {
		a.walkTopLevel(tl, sc)
	}
}

func (a *Analyzer) predeclare(tls []ast.TopLevel, sc *Scope) {
	for _, tl := range tls {
		switch t := tl.(type) {
		case *ast.TypeDecl:
			a.defineNamed(sc, t.Name, SymbolType, t.Position)
		case *ast.InterfaceDecl:
			a.defineNamed(sc, t.Name, SymbolType, t.Position)
		case *ast.ModelDeclaration:
			a.defineNamed(sc, t.Name, SymbolType, t.Position)
		case *ast.ComponentDeclaration:
			a.defineNamed(sc, t.Name, SymbolType, t.Position)
		case *ast.StoreDeclaration:
			a.defineNamed(sc, t.Name, SymbolType, t.Position)
		case *ast.FuncDecl:
			a.defineNamed(sc, t.Name, SymbolFunc, t.Position)
		}
	}
}

func (a *Analyzer) walkTopLevel(tl ast.TopLevel, sc *Scope) {
	switch t := tl.(type) {
	case *ast.SharedBlock:
		a.walkInChildScope(t.Body, sc)
	case *ast.ServerBlock:
		a.walkInChildScope(t.Body, sc)
	case *ast.ClientBlock:
		a.walkInChildScope(t.Body, sc)
	case *ast.TestBlock:
		child := newScope(sc)
		a.walkStatements(t.Body, child)
		a.checkUnusedInScope(child)
	case *ast.BenchBlock:
		child := newScope(sc)
		a.walkStatements(t.Body, child)
		a.checkUnusedInScope(child)

	case *ast.ImportDeclaration:
		a.walkImport(t, sc)

	case *ast.TypeDecl:
		if t.Alias != nil {
			a.walkExpr(t.Alias, sc)
		}
		for _, v := range t.Variants {
			for _, f := range v.Fields {
				if f.Default != nil {
					a.walkExpr(f.Default, sc)
				}
			}
		}
	case *ast.InterfaceDecl:
		// name only, already bound by predeclare
	case *ast.ImplDecl:
		for _, m := range t.Methods {
			a.walkFuncDecl(m, sc)
		}
	case *ast.FuncDecl:
		a.walkFuncBody(t, sc)
	case *ast.VarDecl:
		a.walkVarDecl(t, sc)

	case *ast.ModelDeclaration:
		for _, f := range t.Fields {
			for _, ann := range f.Annotations {
				for _, arg := range ann.Args {
					a.walkExpr(arg, sc)
				}
			}
		}

	case *ast.RouteDeclaration:
		a.walkHandlerBody(t.Params, t.Body, t.Position, sc)
	case *ast.RouteGroupDeclaration:
		for _, r := range t.Routes {
			a.walkTopLevel(r, sc)
		}
	case *ast.DbDeclaration:
		if t.URL != nil {
			a.walkExpr(t.URL, sc)
		}
	case *ast.MiddlewareDeclaration:
		a.walkHandlerBody(t.Params, t.Body, t.Position, sc)
	case *ast.WebsocketDeclaration:
		a.walkHandlerBody(nil, t.Body, t.Position, sc)
	case *ast.SseDeclaration:
		a.walkHandlerBody(nil, t.Body, t.Position, sc)
	case *ast.AuthDeclaration:
		a.walkObjectFields(t.Fields, sc)
	case *ast.CorsDeclaration:
		a.walkObjectFields(t.Fields, sc)
	case *ast.RateLimitDeclaration:
		a.walkObjectFields(t.Fields, sc)
	case *ast.ScheduleDeclaration:
		a.walkHandlerBody(nil, t.Body, t.Position, sc)
	case *ast.BackgroundJobDeclaration:
		a.walkHandlerBody(t.Params, t.Body, t.Position, sc)
	case *ast.LifecycleHookDeclaration:
		a.walkHandlerBody(nil, t.Body, t.Position, sc)
	case *ast.SubscribeDeclaration:
		a.walkHandlerBody(nil, t.Body, t.Position, sc)
	case *ast.StaticDeclaration:
		// fixed path/dir strings, nothing to resolve
	case *ast.EnvDeclaration:
		a.defineNamed(sc, t.Name, SymbolVar, t.Position)
	case *ast.SessionDeclaration:
		a.walkObjectFields(t.Fields, sc)
	case *ast.TLSDeclaration:
		a.walkObjectFields(t.Fields, sc)
	case *ast.CompressionDeclaration:
		a.walkObjectFields(t.Fields, sc)
	case *ast.CacheDeclaration:
		a.walkObjectFields(t.Fields, sc)
	case *ast.UploadDeclaration:
		a.walkObjectFields(t.Fields, sc)
	case *ast.MaxBodyDeclaration:
		if t.Limit != nil {
			a.walkExpr(t.Limit, sc)
		}

	case *ast.StateDeclaration:
		if t.Value != nil {
			a.walkExpr(t.Value, sc)
		}
		a.defineNamed(sc, t.Name, SymbolVar, t.Position)
	case *ast.ComputedDeclaration:
		if t.Expr != nil {
			a.walkExpr(t.Expr, sc)
		}
		a.defineNamed(sc, t.Name, SymbolConst, t.Position)
	case *ast.EffectDeclaration:
		child := newScope(sc)
		a.walkStatements(t.Body, child)
		a.checkUnusedInScope(child)
	case *ast.ComponentDeclaration:
		a.walkComponent(t, sc)
	case *ast.StoreDeclaration:
		a.walkStore(t, sc)
	}
}

func (a *Analyzer) walkInChildScope(body []ast.TopLevel, sc *Scope) {
	child := newScope(sc)
	a.walkTopLevels(body, child)
	a.checkUnusedInScope(child)
}

// walkHandlerBody covers every server declaration shaped like "optional
// params, then a statement body in its own scope" — routes, middleware,
// websocket/SSE handlers, scheduled/background jobs, lifecycle hooks, and
// bus subscriptions.
func (a *Analyzer) walkHandlerBody(params []ast.Param, body []ast.Statement, pos token.Position, sc *Scope) {
	child := newScope(sc)
	a.defineParams(params, child, pos)
	a.walkStatements(body, child)
	a.checkUnusedInScope(child)
}

func (a *Analyzer) walkImport(imp *ast.ImportDeclaration, sc *Scope) {
	if imp.Default != "" {
		a.defineNamed(sc, imp.Default, SymbolImport, imp.Position)
	}
	if imp.Wildcard != "" {
		a.defineNamed(sc, imp.Wildcard, SymbolImport, imp.Position)
	}
	for _, spec := range imp.Specifiers {
		a.defineNamed(sc, spec.Local, SymbolImport, imp.Position)
	}
}

func (a *Analyzer) walkVarDecl(v *ast.VarDecl, sc *Scope) {
	if v.Value != nil {
		a.walkExpr(v.Value, sc)
	}
	kind := SymbolVar
	if v.Kind == "const" {
		kind = SymbolConst
	}
	a.bindPattern(v.Target, kind, sc, sc)
}

// walkFuncBody processes a FuncDecl whose name has already been bound —
// either by predeclare (top-level/block fn) or by ImplDecl's own method
// list, which defines method names directly on the type rather than in the
// surrounding scope (methods are not separately hoisted since there is no
// sibling-to-sibling forward-reference case to support there).
func (a *Analyzer) walkFuncBody(f *ast.FuncDecl, sc *Scope) {
	child := newScope(sc)
	a.defineParams(f.Params, child, f.Position)
	a.walkStatements(f.Body, child)
	a.checkUnusedInScope(child)
}

// walkFuncDecl defines f's name before walking its body; used for a local
// `fn` declared mid-statement-list, where no hoisting pass runs.
func (a *Analyzer) walkFuncDecl(f *ast.FuncDecl, sc *Scope) {
	a.defineNamed(sc, f.Name, SymbolFunc, f.Position)
	a.walkFuncBody(f, sc)
}

func (a *Analyzer) walkComponent(c *ast.ComponentDeclaration, sc *Scope) {
	child := newScope(sc)
	a.defineParams(c.Props, child, c.Position)
	a.walkTopLevels(c.Body, child)
	a.walkJSXChildren(c.Render, child)
	a.checkUnusedInScope(child)
}

func (a *Analyzer) walkStore(s *ast.StoreDeclaration, sc *Scope) {
	child := newScope(sc)
	a.walkTopLevels(s.Body, child)
	a.checkUnusedInScope(child)
}

// ---- statements ----

func (a *Analyzer) walkStatements(stmts []ast.Statement, sc *Scope) {
	for _, s := range stmts {
		a.walkStatement(s, sc)
	}
}

func (a *Analyzer) walkStatement(s ast.Statement, sc *Scope) {
	switch st := s.(type) {
	case *ast.VarDecl:
		a.walkVarDecl(st, sc)
	case *ast.FuncDecl:
		a.walkFuncDecl(st, sc)
	case *ast.AssignStmt:
		a.walkAssignTarget(st.Target, sc)
		if st.Value != nil {
			a.walkExpr(st.Value, sc)
		}
	case *ast.ReturnStmt:
		if st.Value != nil {
			a.walkExpr(st.Value, sc)
		}
	case *ast.ExprStmt:
		a.walkExprStmt(st, sc)
	case *ast.IfStmt:
		a.walkExpr(st.Cond, sc)
		a.walkBranchBody(st.Then, sc)
		for _, el := range st.Elif {
			a.walkExpr(el.Cond, sc)
			a.walkBranchBody(el.Body, sc)
		}
		if st.Else != nil {
			a.walkBranchBody(st.Else, sc)
		}
	case *ast.ForStmt:
		a.walkExpr(st.Iter, sc)
		child := newScope(sc)
		a.bindPattern(st.Binding, SymbolVar, child, sc)
		a.walkStatements(st.Body, child)
		a.checkUnusedInScope(child)
	case *ast.WhileStmt:
		a.walkExpr(st.Cond, sc)
		a.walkBranchBody(st.Body, sc)
	case *ast.TryStmt:
		a.walkBranchBody(st.Body, sc)
		child := newScope(sc)
		if st.CatchParam != "" {
			a.defineNamed(child, st.CatchParam, SymbolVar, st.Position)
		}
		a.walkStatements(st.Catch, child)
		a.checkUnusedInScope(child)
	case *ast.MatchStmt:
		a.walkExpr(st.Subject, sc)
		for _, arm := range st.Arms {
			child := newScope(sc)
			a.bindPattern(arm.Pattern, SymbolVar, child, sc)
			if arm.Guard != nil {
				a.walkExpr(arm.Guard, child)
			}
			a.walkStatements(arm.Body, child)
			a.checkUnusedInScope(child)
		}
	}
}

func (a *Analyzer) walkBranchBody(body []ast.Statement, sc *Scope) {
	child := newScope(sc)
	a.walkStatements(body, child)
	a.checkUnusedInScope(child)
}

// walkExprStmt flags an if/match expression used as a bare statement: every
// branch of those forms yields a value (ast.IfExpr/ast.MatchExpr, enforced
// at the expression-position grammar level), so discarding the result
// at statement position is almost always a mistake rather than intent.
func (a *Analyzer) walkExprStmt(st *ast.ExprStmt, sc *Scope) {
	switch st.X.(type) {
	case *ast.IfExpr, *ast.MatchExpr:
		a.diags.Warnf(st.Position, codeIgnoredExprValue, "result of this expression is not used")
	}
	a.walkExpr(st.X, sc)
}

func (a *Analyzer) walkAssignTarget(target ast.Expression, sc *Scope) {
	switch t := target.(type) {
	case *ast.Ident:
		a.resolveIdent(t.Name, t.Position, sc)
	case *ast.MemberExpr:
		a.walkExpr(t.X, sc)
	case *ast.IndexExpr:
		a.walkExpr(t.X, sc)
		a.walkExpr(t.Index, sc)
	default:
		a.diags.Errorf(target.Pos(), codeInvalidAssignTgt, "invalid assignment target")
	}
}

// ---- expressions ----

func (a *Analyzer) walkExpr(e ast.Expression, sc *Scope) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.Ident:
		a.resolveIdent(x.Name, x.Position, sc)
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit, *ast.NullLit:
		// leaf literals, nothing to resolve
	case *ast.StringLit:
		for _, part := range x.Parts {
			if part.Expr != nil {
				a.walkExpr(part.Expr, sc)
			}
		}
	case *ast.UnaryExpr:
		a.walkExpr(x.X, sc)
	case *ast.BinaryExpr:
		a.walkExpr(x.Left, sc)
		a.walkExpr(x.Right, sc)
	case *ast.RangeExpr:
		a.walkExpr(x.Low, sc)
		a.walkExpr(x.High, sc)
	case *ast.CallExpr:
		a.walkExpr(x.Callee, sc)
		for _, arg := range x.Args {
			a.walkExpr(arg, sc)
		}
	case *ast.MemberExpr:
		a.walkExpr(x.X, sc)
	case *ast.IndexExpr:
		a.walkExpr(x.X, sc)
		a.walkExpr(x.Index, sc)
	case *ast.SliceExpr:
		a.walkExpr(x.X, sc)
		if x.Low != nil {
			a.walkExpr(x.Low, sc)
		}
		if x.High != nil {
			a.walkExpr(x.High, sc)
		}
	case *ast.ArrayLit:
		for _, el := range x.Elements {
			a.walkExpr(el, sc)
		}
	case *ast.ObjectLit:
		a.walkObjectFields(x.Fields, sc)
	case *ast.StructLit:
		a.walkObjectFields(x.Fields, sc)
	case *ast.FuncLit:
		child := newScope(sc)
		a.defineParams(x.Params, child, x.Position)
		a.walkStatements(x.Body, child)
		a.checkUnusedInScope(child)
	case *ast.TryExpr:
		a.walkExpr(x.X, sc)
	case *ast.IfExpr:
		a.walkExpr(x.Cond, sc)
		a.walkExpr(x.Then, sc)
		for _, el := range x.Elif {
			a.walkExpr(el.Cond, sc)
			a.walkExpr(el.Then, sc)
		}
		if x.Else != nil {
			a.walkExpr(x.Else, sc)
		}
	case *ast.MatchExpr:
		a.walkExpr(x.Subject, sc)
		for _, arm := range x.Arms {
			child := newScope(sc)
			a.bindPattern(arm.Pattern, SymbolVar, child, sc)
			if arm.Guard != nil {
				a.walkExpr(arm.Guard, child)
			}
			a.walkExpr(arm.Value, child)
			a.checkUnusedInScope(child)
		}
	case *ast.AnnotationCallExpr:
		for _, arg := range x.Args {
			a.walkExpr(arg, sc)
		}
	case *ast.JSXElement:
		a.walkJSXElement(x, sc)
	case *ast.JSXFragment:
		a.walkJSXChildren(x.Children, sc)
	}
}

// ---- JSX ----

func (a *Analyzer) walkJSXChildren(children []ast.JSXChild, sc *Scope) {
	for _, c := range children {
		a.walkJSXChild(c, sc)
	}
}

func (a *Analyzer) walkJSXChild(c ast.JSXChild, sc *Scope) {
	switch x := c.(type) {
	case *ast.JSXText:
		// raw text, nothing to resolve
	case *ast.JSXExprChild:
		a.walkExpr(x.X, sc)
	case *ast.JSXElement:
		a.walkJSXElement(x, sc)
	case *ast.JSXFragment:
		a.walkJSXChildren(x.Children, sc)
	case *ast.JSXIf:
		a.walkExpr(x.Cond, sc)
		a.walkJSXBranch(x.Then, sc)
		for _, el := range x.Elif {
			a.walkExpr(el.Cond, sc)
			a.walkJSXBranch(el.Body, sc)
		}
		if x.Else != nil {
			a.walkJSXBranch(x.Else, sc)
		}
	case *ast.JSXFor:
		a.walkExpr(x.Iter, sc)
		child := newScope(sc)
		a.bindPattern(x.Binding, SymbolVar, child, sc)
		if x.Key != nil {
			a.walkExpr(x.Key, child)
		}
		a.walkJSXChildren(x.Body, child)
		a.checkUnusedInScope(child)
	}
}

func (a *Analyzer) walkJSXBranch(children []ast.JSXChild, sc *Scope) {
	child := newScope(sc)
	a.walkJSXChildren(children, child)
	a.checkUnusedInScope(child)
}

func (a *Analyzer) walkJSXElement(el *ast.JSXElement, sc *Scope) {
	for _, attr := range el.Attrs {
		if attr.Value != nil {
			a.walkExpr(attr.Value, sc)
		}
	}
	a.walkJSXChildren(el.Children, sc)
}

package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btouchard/tova/internal/compiler/ast"
)

// binOps maps Tova's word-form and symbolic operators to their JS
// equivalent; anything absent here (the normal arithmetic/comparison set)
// already matches JS and passes through unchanged.
var binOps = map[string]string{
	"and": "&&",
	"or":  "||",
	"??":  "??",
}

// emitExpr renders e as a JS expression into w. ctx carries the small bits
// of surrounding context emission needs: whether server.fn(...) calls
// should compile to the RPC bridge (client, test and bench artifacts).
type exprCtx struct {
	rpcBridge bool // server.fn(...) -> __tova_rpc.rpc("fn", [...])
}

func (g *Generator) emitExpr(w *writer, e ast.Expression, ctx exprCtx) {
	if e == nil {
		w.WriteString("undefined")
		return
	}
	w.mark(e.Pos())
	switch x := e.(type) {
	case *ast.Ident:
		w.WriteString(jsIdent(x.Name))
	case *ast.IntLit:
		w.WriteString(x.Raw)
	case *ast.FloatLit:
		w.WriteString(x.Raw)
	case *ast.BoolLit:
		w.WriteString(strconv.FormatBool(x.Value))
	case *ast.NullLit:
		w.WriteString("null")
	case *ast.StringLit:
		g.emitStringLit(w, x, ctx)
	case *ast.UnaryExpr:
		g.emitUnary(w, x, ctx)
	case *ast.BinaryExpr:
		g.emitBinary(w, x, ctx)
	case *ast.RangeExpr:
		// Only legal outside `for`/pattern sugar as a materialized array —
		// for-in iteration lowers RangeExpr itself (gen_stmt.go).
		w.WriteString("__tova_range(")
		g.emitExpr(w, x.Low, ctx)
		w.WriteString(", ")
		g.emitExpr(w, x.High, ctx)
		w.Printf(", %v)", x.Inclusive)
	case *ast.CallExpr:
		g.emitCall(w, x, ctx)
	case *ast.MemberExpr:
		g.emitExpr(w, x.X, ctx)
		if x.Optional {
			w.WriteString("?.")
		} else {
			w.WriteString(".")
		}
		w.WriteString(x.Property)
	case *ast.IndexExpr:
		g.emitExpr(w, x.X, ctx)
		w.WriteString("[")
		g.emitExpr(w, x.Index, ctx)
		w.WriteString("]")
	case *ast.SliceExpr:
		g.emitExpr(w, x.X, ctx)
		w.WriteString(".slice(")
		if x.Low != nil {
			g.emitExpr(w, x.Low, ctx)
		} else {
			w.WriteString("0")
		}
		if x.High != nil {
			w.WriteString(", ")
			g.emitExpr(w, x.High, ctx)
		}
		w.WriteString(")")
	case *ast.ArrayLit:
		w.WriteString("[")
		for i, el := range x.Elements {
			if i > 0 {
				w.WriteString(", ")
			}
			g.emitExpr(w, el, ctx)
		}
		w.WriteString("]")
	case *ast.ObjectLit:
		g.emitObjectFields(w, x.Fields, ctx)
	case *ast.StructLit:
		g.emitObjectFields(w, x.Fields, ctx)
	case *ast.FuncLit:
		g.emitFuncLit(w, x, ctx)
	case *ast.TryExpr:
		// `try expr` propagates a thrown error to the nearest enclosing
		// try/catch; in JS that's simply evaluating it inline — the catch
		// is whatever wraps this expression already.
		g.emitExpr(w, x.X, ctx)
	case *ast.IfExpr:
		g.emitIfExpr(w, x, ctx)
	case *ast.MatchExpr:
		g.emitMatchExpr(w, x, ctx)
	case *ast.AnnotationCallExpr:
		g.emitAnnotationCall(w, x, ctx)
	case *ast.JSXElement, *ast.JSXFragment:
		g.emitJSXAsExpr(w, x, ctx)
	default:
		w.WriteString("undefined")
	}
}

// jsIdent escapes the handful of Tova identifiers that collide with
// reserved JS words; `server` and `client` are never escaped since they are
// meaningful bridge-call receivers, not ordinary bindings.
func jsIdent(name string) string {
	switch name {
	case "class", "delete", "new", "in", "of", "export", "import", "default":
		return "_" + name
	default:
		return name
	}
}

func (g *Generator) emitStringLit(w *writer, s *ast.StringLit, ctx exprCtx) {
	if len(s.Parts) == 1 && s.Parts[0].Expr == nil {
		w.WriteString(jsStringLiteral(s.Parts[0].Literal))
		return
	}
	w.WriteString("`")
	for _, part := range s.Parts {
		if part.Expr != nil {
			w.WriteString("${")
			g.emitExpr(w, part.Expr, ctx)
			w.WriteString("}")
		} else {
			w.WriteString(templateEscape(part.Literal))
		}
	}
	w.WriteString("`")
}

func jsStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func templateEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "`", "\\`")
	s = strings.ReplaceAll(s, "${", "\\${")
	return s
}

func (g *Generator) emitUnary(w *writer, u *ast.UnaryExpr, ctx exprCtx) {
	op := u.Op
	if op == "not" {
		op = "!"
	}
	w.WriteString(op)
	if op == "-" || op == "!" {
		w.WriteString("(")
		g.emitExpr(w, u.X, ctx)
		w.WriteString(")")
	} else {
		g.emitExpr(w, u.X, ctx)
	}
}

func (g *Generator) emitBinary(w *writer, b *ast.BinaryExpr, ctx exprCtx) {
	op, ok := binOps[b.Op]
	if !ok {
		op = b.Op
	}
	w.WriteString("(")
	g.emitExpr(w, b.Left, ctx)
	w.Printf(" %s ", op)
	g.emitExpr(w, b.Right, ctx)
	w.WriteString(")")
}

// emitCall special-cases `server.fn(args)` when ctx.rpcBridge is set,
// compiling it to the RPC bridge call the runtime's rpc.js.tmpl expects
// (SPEC_FULL §4.5 "RPC bridge emission"); every other call passes through
// as an ordinary JS call expression.
func (g *Generator) emitCall(w *writer, c *ast.CallExpr, ctx exprCtx) {
	if ctx.rpcBridge {
		if mem, ok := c.Callee.(*ast.MemberExpr); ok {
			if recv, ok := mem.X.(*ast.Ident); ok && recv.Name == "server" {
				w.Printf("__tova_rpc.rpc(%s, [", jsStringLiteral(mem.Property))
				for i, arg := range c.Args {
					if i > 0 {
						w.WriteString(", ")
					}
					g.emitExpr(w, arg, ctx)
				}
				w.WriteString("])")
				return
			}
		}
	}
	g.emitExpr(w, c.Callee, ctx)
	w.WriteString("(")
	for i, arg := range c.Args {
		if i > 0 {
			w.WriteString(", ")
		}
		if c.Spread && i == len(c.Args)-1 {
			w.WriteString("...")
		}
		g.emitExpr(w, arg, ctx)
	}
	w.WriteString(")")
}

func (g *Generator) emitObjectFields(w *writer, fields []ast.ObjectField, ctx exprCtx) {
	w.WriteString("{")
	for i, f := range fields {
		if i > 0 {
			w.WriteString(", ")
		}
		w.Printf("%s: ", jsPropKey(f.Key))
		g.emitExpr(w, f.Value, ctx)
	}
	w.WriteString("}")
}

func jsPropKey(key string) string {
	if key == "" {
		return `""`
	}
	return key
}

func (g *Generator) emitFuncLit(w *writer, f *ast.FuncLit, ctx exprCtx) {
	if f.Async {
		w.WriteString("async ")
	}
	w.WriteString("(")
	g.emitParams(w, f.Params, ctx)
	w.WriteString(") => {")
	g.emitStatements(w, f.Body, ctx)
	w.WriteString("}")
}

func (g *Generator) emitParams(w *writer, params []ast.Param, ctx exprCtx) {
	for i, p := range params {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(jsIdent(p.Name))
		if p.Default != nil {
			w.WriteString(" = ")
			g.emitExpr(w, p.Default, ctx)
		}
	}
}

// emitIfExpr lowers an if-expression (every branch required to yield a
// value, enforced by the semantic analyzer) to a chained ternary — the
// direct JS equivalent, no IIFE needed since every branch is already a
// single expression.
func (g *Generator) emitIfExpr(w *writer, x *ast.IfExpr, ctx exprCtx) {
	w.WriteString("(")
	g.emitExpr(w, x.Cond, ctx)
	w.WriteString(" ? ")
	g.emitExpr(w, x.Then, ctx)
	for _, el := range x.Elif {
		w.WriteString(" : ")
		g.emitExpr(w, el.Cond, ctx)
		w.WriteString(" ? ")
		g.emitExpr(w, el.Then, ctx)
	}
	w.WriteString(" : ")
	g.emitExpr(w, x.Else, ctx)
	w.WriteString(")")
}

// emitMatchExpr compiles a match expression to an IIFE: each arm's pattern
// is tested via compilePatternTest, its bindings destructured from the
// match result, then the arm's value expression is returned. A mismatch
// across every arm throws — the semantic analyzer is responsible for
// exhaustiveness warnings, not codegen.
func (g *Generator) emitMatchExpr(w *writer, m *ast.MatchExpr, ctx exprCtx) {
	w.WriteString("(function(){const __subj = ")
	g.emitExpr(w, m.Subject, ctx)
	w.WriteString(";")
	for _, arm := range m.Arms {
		g.emitMatchArmTest(w, arm.Pattern, arm.Guard, ctx, func() {
			w.WriteString("return ")
			g.emitExpr(w, arm.Value, ctx)
			w.WriteString(";")
		})
	}
	w.WriteString("throw new Error(\"no match\");})()")
}

// emitMatchArmTest emits `const __m = <pattern-test>; if (__m) { <bindings>; <body>() }`
// for one match arm, shared between the expression and statement forms.
func (g *Generator) emitMatchArmTest(w *writer, pat ast.Pattern, guard ast.Expression, ctx exprCtx, body func()) {
	w.WriteString("{const __m = ")
	g.compilePatternTest(w, pat, "__subj", ctx)
	w.WriteString(";if(__m){")
	g.emitPatternBindings(w, pat, "__m")
	if guard != nil {
		w.WriteString("if(")
		g.emitExpr(w, guard, ctx)
		w.WriteString("){")
		body()
		w.WriteString("}")
	} else {
		body()
	}
	w.WriteString("}}")
}

// compilePatternTest emits an expression that evaluates to a bindings
// object (possibly empty, `{}`) on a match, or `null` on a mismatch —
// SPEC_FULL's "pattern compilation to IIFE", used for every match arm and
// for `let`/`for` destructuring that can fail (variant patterns in a `let`
// are rejected by the semantic analyzer, so only match/for routes here).
func (g *Generator) compilePatternTest(w *writer, pat ast.Pattern, subject string, ctx exprCtx) {
	switch p := pat.(type) {
	case *ast.Ident:
		w.Printf("({%q: %s})", p.Name, subject)
	case *ast.WildcardPattern:
		w.WriteString("({})")
	case *ast.LiteralPattern:
		w.WriteString("(")
		w.Printf("%s === ", subject)
		g.emitExpr(w, p.Value, ctx)
		w.WriteString(" ? {} : null)")
	case *ast.RangePattern:
		hi := "<"
		if p.Inclusive {
			hi = "<="
		}
		w.WriteString("((")
		g.emitExpr(w, p.Low, ctx)
		w.Printf(" <= %s && %s %s ", subject, subject, hi)
		g.emitExpr(w, p.High, ctx)
		w.WriteString(") ? {} : null)")
	case *ast.VariantPattern:
		g.compileVariantPatternTest(w, p, subject)
	case *ast.ArrayPattern:
		g.compileArrayPatternTest(w, p, subject)
	case *ast.ObjectPattern:
		g.compileObjectPatternTest(w, p, subject)
	case *ast.StringConcatPattern:
		w.Printf("(%s.startsWith(%s) ? {%q: %s.slice(%d)} : null)",
			subject, jsStringLiteral(p.Prefix), p.Binding, subject, len(p.Prefix))
	default:
		w.WriteString("null")
	}
}

func (g *Generator) compileVariantPatternTest(w *writer, p *ast.VariantPattern, subject string) {
	w.Printf("((function(){if(!%s || %s.__tag !== %q) return null; const __b = {};", subject, subject, p.Name)
	for i, bind := range p.Bindings {
		field := fmt.Sprintf("%s.__fields[%d]", subject, i)
		collectPatternBindNames(bind, func(name string) {
			w.Printf("__b[%q] = %s;", name, field)
		})
	}
	w.WriteString("return __b;})())")
}

func (g *Generator) compileArrayPatternTest(w *writer, p *ast.ArrayPattern, subject string) {
	minLen := len(p.Elements)
	cmp := "==="
	if p.Rest != "" {
		cmp = ">="
	}
	w.Printf("((function(){if(!Array.isArray(%s) || %s.length %s %d) return null; const __b = {};", subject, subject, cmp, minLen)
	for i, el := range p.Elements {
		field := fmt.Sprintf("%s[%d]", subject, i)
		collectPatternBindNames(el, func(name string) {
			w.Printf("__b[%q] = %s;", name, field)
		})
	}
	if p.Rest != "" {
		w.Printf("__b[%q] = %s.slice(%d);", p.Rest, subject, minLen)
	}
	w.WriteString("return __b;})())")
}

func (g *Generator) compileObjectPatternTest(w *writer, p *ast.ObjectPattern, subject string) {
	w.Printf("((function(){if(%s == null) return null; const __b = {};", subject)
	for _, f := range p.Fields {
		field := fmt.Sprintf("%s[%q]", subject, f.Key)
		if f.Binding == nil {
			w.Printf("__b[%q] = %s;", f.Key, field)
			continue
		}
		collectPatternBindNames(f.Binding, func(name string) {
			w.Printf("__b[%q] = %s;", name, field)
		})
	}
	w.WriteString("return __b;})())")
}

// collectPatternBindNames visits every leaf binding name a (non-matching,
// purely destructuring) sub-pattern introduces.
func collectPatternBindNames(pat ast.Pattern, fn func(name string)) {
	switch p := pat.(type) {
	case *ast.Ident:
		fn(p.Name)
	case *ast.WildcardPattern:
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			collectPatternBindNames(el, fn)
		}
		if p.Rest != "" {
			fn(p.Rest)
		}
	case *ast.ObjectPattern:
		for _, f := range p.Fields {
			if f.Binding != nil {
				collectPatternBindNames(f.Binding, fn)
			} else {
				fn(f.Key)
			}
		}
	}
}

// emitPatternBindings destructures every name a pattern binds out of the
// bindings object compilePatternTest produced into plain `let` locals, so
// arm bodies reference them by their source-level name.
func (g *Generator) emitPatternBindings(w *writer, pat ast.Pattern, bindingsVar string) {
	var names []string
	switch pat.(type) {
	case *ast.LiteralPattern, *ast.RangePattern, *ast.WildcardPattern:
		return
	}
	collectPatternBindNames(pat, func(name string) { names = append(names, name) })
	if len(names) == 0 {
		return
	}
	w.WriteString("let {")
	for i, n := range names {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(n)
	}
	w.Printf("} = %s;", bindingsVar)
}

func (g *Generator) emitAnnotationCall(w *writer, a *ast.AnnotationCallExpr, ctx exprCtx) {
	switch a.Name {
	case "env":
		if len(a.Args) == 1 {
			if lit, ok := a.Args[0].(*ast.StringLit); ok && len(lit.Parts) == 1 && lit.Parts[0].Expr == nil {
				w.Printf("process.env[%s]", jsStringLiteral(lit.Parts[0].Literal))
				return
			}
		}
		w.WriteString("process.env[")
		if len(a.Args) == 1 {
			g.emitExpr(w, a.Args[0], ctx)
		}
		w.WriteString("]")
	default:
		w.Printf("__tova_annotation(%q, [", a.Name)
		for i, arg := range a.Args {
			if i > 0 {
				w.WriteString(", ")
			}
			g.emitExpr(w, arg, ctx)
		}
		w.WriteString("])")
	}
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/tova/internal/compiler/ast"
)

func parseExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	p := New(src, "test.tova")
	expr := p.parseExpression(LOWEST)
	require.Empty(t, p.Diagnostics(), "unexpected diagnostics: %v", p.Diagnostics())
	return expr
}

func TestPrecedenceOfArithmetic(t *testing.T) {
	expr := parseExpr(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)
}

func TestPipeChainParsesAsBinaryExpr(t *testing.T) {
	expr := parseExpr(t, "x |> double |> isEven")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "|>", bin.Op)
}

func TestPostfixChainMemberCallIndex(t *testing.T) {
	expr := parseExpr(t, "user.posts[0].title")
	member, ok := expr.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "title", member.Property)
	idx, ok := member.X.(*ast.IndexExpr)
	require.True(t, ok)
	assert.Equal(t, int64(0), idx.Index.(*ast.IntLit).Value)
}

func TestOptionalChainAndNullCoalesce(t *testing.T) {
	expr := parseExpr(t, "user?.name ?? \"anon\"")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "??", bin.Op)
	member, ok := bin.Left.(*ast.MemberExpr)
	require.True(t, ok)
	assert.True(t, member.Optional)
}

func TestRangeExpression(t *testing.T) {
	expr := parseExpr(t, "1..=10")
	r, ok := expr.(*ast.RangeExpr)
	require.True(t, ok)
	assert.True(t, r.Inclusive)
}

func TestTryAndAwaitPrefix(t *testing.T) {
	expr := parseExpr(t, "try await fetchUser(id)")
	tryExpr, ok := expr.(*ast.TryExpr)
	require.True(t, ok)
	unary, ok := tryExpr.X.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, "await", unary.Op)
}

func TestStringInterpolationReparsesSubExpression(t *testing.T) {
	expr := parseExpr(t, `"hello {user.name}!"`)
	lit, ok := expr.(*ast.StringLit)
	require.True(t, ok)
	require.Len(t, lit.Parts, 3)
	member, ok := lit.Parts[1].Expr.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "name", member.Property)
}

func TestIfExprEveryBranchYieldsValue(t *testing.T) {
	expr := parseExpr(t, `if x > 0 { "pos" } elif x < 0 { "neg" } else { "zero" }`)
	ifExpr, ok := expr.(*ast.IfExpr)
	require.True(t, ok)
	assert.NotNil(t, ifExpr.Then)
	assert.Len(t, ifExpr.Elif, 1)
	assert.NotNil(t, ifExpr.Else)
}

func TestMatchExprVariantPattern(t *testing.T) {
	expr := parseExpr(t, `match shape { Circle(r) => r * r, _ => 0 }`)
	m, ok := expr.(*ast.MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Arms, 2)
	variant, ok := m.Arms[0].Pattern.(*ast.VariantPattern)
	require.True(t, ok)
	assert.Equal(t, "Circle", variant.Name)
	_, ok = m.Arms[1].Pattern.(*ast.WildcardPattern)
	assert.True(t, ok)
}

func TestModelDeclarationWithAnnotations(t *testing.T) {
	src := `model Task {
		id: String @pk @default(uuid_v4)
		title: String @min(3) @max(255)
		tags: String[]
	}`
	p := New(src, "test.tova")
	prog, diags := p.ParseProgram()
	require.Empty(t, diags)
	require.Len(t, prog.Body, 1)
	model, ok := prog.Body[0].(*ast.ModelDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Task", model.Name)
	require.Len(t, model.Fields, 3)
	assert.Equal(t, "String", model.Fields[0].Type)
	require.Len(t, model.Fields[0].Annotations, 2)
	assert.Equal(t, "pk", model.Fields[0].Annotations[0].Name)
	assert.Equal(t, "String[]", model.Fields[2].Type)
}

func TestDbDeclarationAcceptsAnnotationCallAsValue(t *testing.T) {
	src := `server {
		db { driver: "sqlite", url: @env("DATABASE_URL") }
	}`
	p := New(src, "app.tova")
	prog, diags := p.ParseProgram()
	require.Empty(t, diags)
	require.Len(t, prog.Body, 1)
	block, ok := prog.Body[0].(*ast.ServerBlock)
	require.True(t, ok)
	require.Len(t, block.Body, 1)
	db, ok := block.Body[0].(*ast.DbDeclaration)
	require.True(t, ok)
	assert.Equal(t, "sqlite", db.Driver)
	call, ok := db.URL.(*ast.AnnotationCallExpr)
	require.True(t, ok)
	assert.Equal(t, "env", call.Name)
	require.Len(t, call.Args, 1)
	lit, ok := call.Args[0].(*ast.StringLit)
	require.True(t, ok)
	require.Len(t, lit.Parts, 1)
	assert.Equal(t, "DATABASE_URL", lit.Parts[0].Literal)
}

func TestRouteDeclarationParsesMethodPathParamsBody(t *testing.T) {
	src := `route GET "/tasks/:id" (id: String) {
		return db.tasks.find(id)
	}`
	p := New(src, "test.tova")
	prog, diags := p.ParseProgram()
	require.Empty(t, diags)
	require.Len(t, prog.Body, 1)
	route, ok := prog.Body[0].(*ast.RouteDeclaration)
	require.True(t, ok)
	assert.Equal(t, "GET", route.Method)
	assert.Equal(t, "/tasks/:id", route.Path)
	require.Len(t, route.Params, 1)
	require.Len(t, route.Body, 1)
}

func TestComponentDeclarationWithStateAndRender(t *testing.T) {
	src := `component Counter(initial: Int) {
		state count: Int = initial
		computed doubled = count * 2

		fn increment() {
			count += 1
		}

		render {
			<div>
				<span>{count}</span>
			</div>
		}
	}`
	p := New(src, "test.tova")
	prog, diags := p.ParseProgram()
	require.Empty(t, diags)
	require.Len(t, prog.Body, 1)
	comp, ok := prog.Body[0].(*ast.ComponentDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Counter", comp.Name)
	require.Len(t, comp.Props, 1)
	assert.GreaterOrEqual(t, len(comp.Body), 3)
	require.Len(t, comp.Render, 1)
	root, ok := comp.Render[0].(*ast.JSXElement)
	require.True(t, ok)
	assert.Equal(t, "div", root.Tag)
}

func TestBlockDirectivesParseIntoProgram(t *testing.T) {
	src := `
shared {
	type Id = String
}
server {
	db { driver: "sqlite", url: @env("DATABASE_URL") }
}
client {
	state theme: String = "light"
}
test {
	let x = 1
}
`
	p := New(src, "app.tova")
	prog, diags := p.ParseProgram()
	require.Empty(t, diags)
	require.Len(t, prog.Body, 4)
	_, ok := prog.Body[0].(*ast.SharedBlock)
	assert.True(t, ok)
	_, ok = prog.Body[1].(*ast.ServerBlock)
	assert.True(t, ok)
	_, ok = prog.Body[2].(*ast.ClientBlock)
	assert.True(t, ok)
	_, ok = prog.Body[3].(*ast.TestBlock)
	assert.True(t, ok)
}

func TestImportDeclarationWithSpecifiersAndAlias(t *testing.T) {
	src := `import { formatDate as fmtDate, parseDate } from "shared/dates"`
	p := New(src, "app.tova")
	prog, diags := p.ParseProgram()
	require.Empty(t, diags)
	require.Len(t, prog.Body, 1)
	imp, ok := prog.Body[0].(*ast.ImportDeclaration)
	require.True(t, ok)
	assert.Equal(t, "shared/dates", imp.Path)
	require.Len(t, imp.Specifiers, 2)
	assert.Equal(t, "fmtDate", imp.Specifiers[0].Local)
	assert.Equal(t, "parseDate", imp.Specifiers[1].Local)
}

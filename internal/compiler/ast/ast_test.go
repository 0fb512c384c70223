package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/btouchard/tova/internal/compiler/token"
)

func pos(line int) token.Position {
	return token.Position{File: "app.tova", Line: line, Column: 1}
}

func TestBlockDirectivesImplementTopLevel(t *testing.T) {
	var blocks []TopLevel = []TopLevel{
		&SharedBlock{base: base{pos(1)}},
		&ServerBlock{base: base{pos(2)}, Label: "api"},
		&ClientBlock{base: base{pos(3)}, Label: "web"},
		&TestBlock{base: base{pos(4)}},
		&BenchBlock{base: base{pos(5)}},
	}
	for _, b := range blocks {
		assert.NotZero(t, b.Pos().Line)
	}
}

func TestFuncDeclIsBothTopLevelAndStatement(t *testing.T) {
	fn := &FuncDecl{base: base{pos(1)}, Name: "greet"}
	var _ TopLevel = fn
	var _ Statement = fn
	assert.Equal(t, "greet", fn.Name)
}

func TestVarDeclSupportsDestructuringTarget(t *testing.T) {
	v := &VarDecl{
		base: base{pos(1)},
		Kind: "let",
		Target: &ArrayPattern{
			Elements: []Pattern{&Ident{Name: "a"}, &Ident{Name: "b"}},
			Rest:     "tail",
		},
	}
	arr, ok := v.Target.(*ArrayPattern)
	if assert.True(t, ok) {
		assert.Len(t, arr.Elements, 2)
		assert.Equal(t, "tail", arr.Rest)
	}
}

func TestIdentIsTrivialPattern(t *testing.T) {
	var _ Pattern = &Ident{Name: "x"}
}

func TestStringLitInterpolationParts(t *testing.T) {
	lit := &StringLit{
		Parts: []StringPart{
			{Literal: "hello "},
			{Expr: &Ident{Name: "name"}},
			{Literal: "!"},
		},
	}
	assert.Len(t, lit.Parts, 3)
	assert.Nil(t, lit.Parts[0].Expr)
	assert.NotNil(t, lit.Parts[1].Expr)
}

func TestMatchArmPatternKinds(t *testing.T) {
	arms := []MatchArm{
		{Pattern: &LiteralPattern{Value: &IntLit{Value: 0}}},
		{Pattern: &RangePattern{Low: &IntLit{Value: 1}, High: &IntLit{Value: 9}}},
		{Pattern: &VariantPattern{Name: "Circle", Bindings: []Pattern{&Ident{Name: "r"}}}},
		{Pattern: &WildcardPattern{}},
	}
	assert.Len(t, arms, 4)
	variant, ok := arms[2].Pattern.(*VariantPattern)
	if assert.True(t, ok) {
		assert.Equal(t, "Circle", variant.Name)
	}
}

func TestJSXElementIsExpressionAndChild(t *testing.T) {
	el := &JSXElement{
		Tag: "div",
		Children: []JSXChild{
			&JSXText{Value: "hi "},
			&JSXExprChild{X: &Ident{Name: "name"}},
		},
	}
	var _ Expression = el
	var _ JSXChild = el
	assert.Len(t, el.Children, 2)
}

func TestJSXForCarriesOptionalKey(t *testing.T) {
	loop := &JSXFor{
		Binding: &Ident{Name: "item"},
		Iter:    &Ident{Name: "items"},
		Key:     &MemberExpr{X: &Ident{Name: "item"}, Property: "id"},
	}
	member, ok := loop.Key.(*MemberExpr)
	if assert.True(t, ok) {
		assert.Equal(t, "id", member.Property)
	}
}

func TestServerDeclarationsImplementTopLevel(t *testing.T) {
	var decls []TopLevel = []TopLevel{
		&RouteDeclaration{Method: "GET", Path: "/health"},
		&DbDeclaration{Driver: "sqlite"},
		&ModelDeclaration{Name: "User"},
		&ScheduleDeclaration{Cron: "0 * * * *"},
		&EnvDeclaration{Name: "DATABASE_URL", Type: "String"},
	}
	assert.Len(t, decls, 5)
}

func TestClientDeclarationsImplementTopLevel(t *testing.T) {
	var decls []TopLevel = []TopLevel{
		&StateDeclaration{Name: "count", Type: "Int"},
		&ComputedDeclaration{Name: "doubled"},
		&EffectDeclaration{},
		&ComponentDeclaration{Name: "Counter"},
		&StoreDeclaration{Name: "AppStore"},
	}
	assert.Len(t, decls, 5)
}

func TestIfExprCarriesEveryBranchValue(t *testing.T) {
	expr := &IfExpr{
		Cond: &BoolLit{Value: true},
		Then: &IntLit{Value: 1},
		Elif: []ElifExprClause{{Cond: &BoolLit{Value: false}, Then: &IntLit{Value: 2}}},
		Else: &IntLit{Value: 3},
	}
	assert.NotNil(t, expr.Then)
	assert.NotNil(t, expr.Else)
	assert.Len(t, expr.Elif, 1)
}

package ast

// StateDeclaration declares a reactive signal (`state count: Int = 0`),
// found directly in a client block or inside a ComponentDeclaration or
// StoreDeclaration body.
type StateDeclaration struct {
	base
	Name  string
	Type  string
	Value Expression
}

// ComputedDeclaration declares a derived, memoized reactive value.
type ComputedDeclaration struct {
	base
	Name string
	Type string
	Expr Expression
}

// EffectDeclaration declares a reactive side-effect block, re-run whenever
// any signal it reads changes.
type EffectDeclaration struct {
	base
	Body []Statement
}

// ComponentDeclaration is a UI component: props, local reactive state, and
// a JSX render body.
type ComponentDeclaration struct {
	base
	Public bool
	Name   string
	Doc    string
	Props  []Param
	Body   []TopLevel // StateDeclaration/ComputedDeclaration/EffectDeclaration/FuncDecl/VarDecl
	Render []JSXChild
}

// StoreDeclaration is a shared, component-independent reactive unit
// (global state + computed + actions), analogous to a singleton.
type StoreDeclaration struct {
	base
	Public bool
	Name   string
	Doc    string
	Body   []TopLevel
}

func (*StateDeclaration) node()    {}
func (*ComputedDeclaration) node() {}
func (*EffectDeclaration) node()   {}
func (*ComponentDeclaration) node() {}
func (*StoreDeclaration) node()    {}

func (*StateDeclaration) topLevel()    {}
func (*ComputedDeclaration) topLevel() {}
func (*EffectDeclaration) topLevel()   {}
func (*ComponentDeclaration) topLevel() {}
func (*StoreDeclaration) topLevel()    {}

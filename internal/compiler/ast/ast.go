// Package ast defines the Tova abstract syntax tree: a sum type over the
// grammar's productions, realized in Go as marker interfaces over concrete
// struct pointers (Node/TopLevel/Statement/Expression/Pattern), following
// the teacher compiler's approach of type-switch dispatch rather than a
// tagged enum.
package ast

import "github.com/btouchard/tova/internal/compiler/token"

// Node is the root marker every AST node implements, carrying its source
// location.
type Node interface {
	Pos() token.Position
	node()
}

// TopLevel is a node that may appear directly inside a Program or inside a
// block body (SharedBlock/ServerBlock/ClientBlock/TestBlock/BenchBlock).
type TopLevel interface {
	Node
	topLevel()
}

// Statement is an executable AST node inside a function/effect/handler body.
type Statement interface {
	Node
	stmt()
}

// Expression is a value-producing AST node.
type Expression interface {
	Node
	expr()
}

// Pattern is a match-arm or destructuring pattern.
type Pattern interface {
	Node
	pattern()
}

// base embeds common Pos() plumbing; concrete nodes embed it by value.
type base struct {
	Position token.Position
}

func (b base) Pos() token.Position { return b.Position }

// Program is the root of one compilation unit (a single file, or — after
// directory merging — the synthetic concatenation of a directory group).
// Sources lists every file that contributed a node, for source-map
// attribution (SPEC_FULL §4.4/§4.5).
type Program struct {
	base
	Body    []TopLevel
	Sources []string
}

func (p *Program) node() {}

// ---- Block directives ----

type SharedBlock struct {
	base
	Body []TopLevel
}

type ServerBlock struct {
	base
	Label string // "" for the default (unnamed) server
	Body  []TopLevel
}

type ClientBlock struct {
	base
	Label string
	Body  []TopLevel
}

type TestBlock struct {
	base
	Label string
	Body  []Statement
}

type BenchBlock struct {
	base
	Label string
	Body  []Statement
}

func (*SharedBlock) node()     {}
func (*ServerBlock) node()     {}
func (*ClientBlock) node()     {}
func (*TestBlock) node()       {}
func (*BenchBlock) node()      {}
func (*SharedBlock) topLevel() {}
func (*ServerBlock) topLevel() {}
func (*ClientBlock) topLevel() {}
func (*TestBlock) topLevel()   {}
func (*BenchBlock) topLevel()  {}

// ---- Imports ----

// ImportSpecifier is one named binding of an import; Local is always set
// after parsing (it defaults to Imported when no `as` clause is present —
// AST invariant #3).
type ImportSpecifier struct {
	Imported string
	Local    string
}

type ImportDeclaration struct {
	base
	Path       string
	Default    string // default import binding, "" if none
	Wildcard   string // `import * as ns` binding, "" if none
	Specifiers []ImportSpecifier
}

func (*ImportDeclaration) node()     {}
func (*ImportDeclaration) topLevel() {}

// ---- Declarations shared across blocks ----

// TypeDecl covers both plain type aliases and tagged-variant type
// declarations (`type Shape { Circle(r: Float), Square(s: Float) }`).
type TypeDecl struct {
	base
	Public   bool
	Name     string
	Doc      string
	Alias    Expression    // set for `type X = expr`-style aliases, nil otherwise
	Variants []TypeVariant // set for tagged-variant declarations, nil otherwise
}

type TypeVariant struct {
	Name   string
	Fields []Param
}

type InterfaceDecl struct {
	base
	Public bool
	Name   string
	Doc    string
	Kind   string // "interface" | "trait" — registered for export/visibility only, per §9 open question
}

type ImplDecl struct {
	base
	TypeName      string
	InterfaceName string
	Methods       []*FuncDecl
}

func (*TypeDecl) node()          {}
func (*InterfaceDecl) node()     {}
func (*ImplDecl) node()          {}
func (*TypeDecl) topLevel()      {}
func (*InterfaceDecl) topLevel() {}
func (*ImplDecl) topLevel()      {}

type Param struct {
	Name    string
	Type    string
	Default Expression // nil if no default
}

type FuncDecl struct {
	base
	Public     bool
	Async      bool
	Name       string
	Doc        string
	Params     []Param
	ReturnType string
	Body       []Statement
}

func (*FuncDecl) node()     {}
func (*FuncDecl) topLevel() {}
func (*FuncDecl) stmt()     {} // a local `fn` declaration is also a statement

// VarDecl covers `let`/`var`/`const`, both at top level and as a statement.
type VarDecl struct {
	base
	Kind   string  // "let" | "var" | "const"
	Target Pattern // supports destructuring; Ident for the simple case
	Type   string  // optional explicit type annotation, "" if inferred
	Value  Expression
}

func (*VarDecl) node()     {}
func (*VarDecl) topLevel() {}
func (*VarDecl) stmt()     {}

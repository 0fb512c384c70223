package semantic

import "github.com/btouchard/tova/internal/compiler/token"

// SymbolKind distinguishes what a name in scope refers to, so diagnostics
// and future tooling (hover, rename) can describe a binding without
// re-deriving it from the declaring node.
type SymbolKind int

const (
	SymbolVar SymbolKind = iota
	SymbolConst
	SymbolParam
	SymbolFunc
	SymbolType
	SymbolImport
	SymbolBuiltin
)

// Symbol is one name bound in a Scope.
type Symbol struct {
	Name string
	Kind SymbolKind
	Pos  token.Position
	Used bool
}

// Scope is one node of the parent-pointer scope tree the analyzer builds
// while walking the program: one per program, block, function/effect body,
// component, if/match branch, and loop body.
type Scope struct {
	parent *Scope
	names  map[string]*Symbol
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: make(map[string]*Symbol)}
}

// defineLocal returns the existing symbol and false if name is already
// bound in this exact scope (a duplicate declaration); otherwise it binds
// sym and returns it with true.
func (s *Scope) defineLocal(sym *Symbol) (*Symbol, bool) {
	if existing, ok := s.names[sym.Name]; ok {
		return existing, false
	}
	s.names[sym.Name] = sym
	return sym, true
}

// resolve walks outward from s looking for name, returning the symbol and
// the scope that owns it, or (nil, nil) if unbound anywhere.
func (s *Scope) resolve(name string) (*Symbol, *Scope) {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.names[name]; ok {
			return sym, sc
		}
	}
	return nil, nil
}

// resolveOuter is like resolve but only considers enclosing scopes, used to
// detect shadowing when defining a new binding in s itself.
func (s *Scope) resolveOuter(name string) (*Symbol, *Scope) {
	if s.parent == nil {
		return nil, nil
	}
	return s.parent.resolve(name)
}

package semantic

// builtinNames pre-populates the program's global scope, per the closed
// stdlib vocabulary the language reserves regardless of imports: sequence
// helpers, container helpers, the result/option constructors, and a small
// set of IO/print helpers.
var builtinNames = []string{
	// sequence / functional helpers
	"print", "len", "range", "map", "filter", "sum", "sorted", "reversed",
	"zip", "enumerate", "min", "max", "type_of",
	// container helpers
	"keys", "values", "entries", "push", "pop", "shift", "unshift",
	// result/option constructors
	"Ok", "Err", "Some", "None",
	// IO helpers
	"read_file", "write_file", "fetch", "json_parse", "json_stringify",
}

// builtinTypeNames are the primitive type names every program may reference
// in a type alias or annotation without importing or declaring them first.
var builtinTypeNames = []string{
	"String", "Int", "Float", "Bool", "Any", "Void", "Null",
}

func newGlobalScope() *Scope {
	g := newScope(nil)
	for _, name := range builtinNames {
		g.defineLocal(&Symbol{Name: name, Kind: SymbolBuiltin, Used: true})
	}
	for _, name := range builtinTypeNames {
		g.defineLocal(&Symbol{Name: name, Kind: SymbolType, Used: true})
	}
	return g
}

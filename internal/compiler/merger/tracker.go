package merger

import (
	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/compiler/token"
)

// nameTracker records the first declaration position seen for each name
// within some merge-validation namespace (e.g. "component names across the
// client group", or "singleton declarations in server label X"), and every
// later occurrence as a duplicate hit against that first position.
type nameTracker struct {
	first map[string]token.Position
	dups  []duplicateHit
}

type duplicateHit struct {
	name     string
	pos      token.Position
	firstPos token.Position
}

func newNameTracker() *nameTracker {
	return &nameTracker{first: make(map[string]token.Position)}
}

// see registers one occurrence of name at pos. The empty name is ignored —
// it never arises from real declarations, only from defensive callers.
func (nt *nameTracker) see(name string, pos token.Position) {
	if name == "" {
		return
	}
	if first, ok := nt.first[name]; ok {
		nt.dups = append(nt.dups, duplicateHit{name: name, pos: pos, firstPos: first})
		return
	}
	nt.first[name] = pos
}

// reportDuplicates emits one error per duplicate hit, naming category (e.g.
// "component", "model in server \"admin\"") and both the offending and the
// original declaration's position.
func (nt *nameTracker) reportDuplicates(diags *diagnostics.List, code, category string) {
	for _, d := range nt.dups {
		diags.Errorf(d.pos, code, "duplicate %s %q (first declared at %s)", category, d.name, d.firstPos.String())
	}
}

// labelled qualifies category with the server block's label, when it has
// one ("" is the default, unnamed server and is reported unqualified).
func labelled(category, label string) string {
	if label == "" {
		return category
	}
	return category + " in server \"" + label + "\""
}

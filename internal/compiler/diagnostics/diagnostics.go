// Package diagnostics defines the compiler's error/warning reporting type,
// shared by every compilation phase (lexer, parser, semantic analyzer,
// directory merger, generator).
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/btouchard/tova/internal/compiler/token"
)

// Severity classifies a Diagnostic's urgency.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityHint    Severity = "hint"
)

// Diagnostic is one compiler-reported problem. Code is a short, stable
// identifier (e.g. "E0301") so tooling and tests can match on it without
// depending on message wording; Hint/Fix/Snippet are optional and may be
// empty.
type Diagnostic struct {
	ID       string // opaque correlation ID, for log/tooling cross-referencing — not part of the rendered message
	Pos      token.Position
	Severity Severity
	Code     string
	Message  string
	Hint     string
	Fix      string
	Snippet  string
}

// Error satisfies the error interface so a Diagnostic can be returned
// directly from phase functions that only ever produce one.
func (d Diagnostic) Error() string {
	return d.String()
}

// String renders "<file>:<line>:<col> — <severity> <code>: <msg>", with
// the optional hint/fix appended on their own indented lines.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s", d.Pos.String(), d.Severity)
	if d.Code != "" {
		fmt.Fprintf(&b, " %s", d.Code)
	}
	fmt.Fprintf(&b, ": %s", d.Message)
	if d.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", d.Hint)
	}
	if d.Fix != "" {
		fmt.Fprintf(&b, "\n  fix: %s", d.Fix)
	}
	return b.String()
}

// List accumulates diagnostics across a compilation phase.
type List struct {
	items []Diagnostic
}

func (l *List) Add(d Diagnostic) { l.items = append(l.items, d) }

func (l *List) Errorf(pos token.Position, code, format string, args ...any) {
	l.Add(Diagnostic{ID: uuid.NewString(), Pos: pos, Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (l *List) Warnf(pos token.Position, code, format string, args ...any) {
	l.Add(Diagnostic{ID: uuid.NewString(), Pos: pos, Severity: SeverityWarning, Code: code, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any accumulated diagnostic is an error (as
// opposed to a warning or hint); compilation halts after the current phase
// when this is true.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (l *List) Items() []Diagnostic { return l.items }

func (l *List) Len() int { return len(l.items) }

// Error renders every accumulated diagnostic, one per line, so a List can
// be returned directly as the error from a compile pass.
func (l *List) Error() string {
	lines := make([]string, len(l.items))
	for i, d := range l.items {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

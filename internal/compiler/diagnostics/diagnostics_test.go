package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/btouchard/tova/internal/compiler/token"
)

func TestDiagnosticStringIncludesHintAndFix(t *testing.T) {
	d := Diagnostic{
		Pos:      token.Position{File: "app.tova", Line: 3, Column: 5},
		Severity: SeverityError,
		Code:     "E0301",
		Message:  "duplicate model \"User\"",
		Hint:     "model names must be unique within a server label",
		Fix:      "rename one of the declarations",
	}
	s := d.String()
	assert.Contains(t, s, "app.tova:3:5")
	assert.Contains(t, s, "E0301")
	assert.Contains(t, s, "duplicate model")
	assert.Contains(t, s, "hint:")
	assert.Contains(t, s, "fix:")
}

func TestListHasErrorsDistinguishesWarnings(t *testing.T) {
	var l List
	l.Warnf(token.Position{Line: 1}, "W001", "unused binding %q", "x")
	assert.False(t, l.HasErrors())
	assert.Equal(t, 1, l.Len())

	l.Errorf(token.Position{Line: 2}, "E001", "undefined %q", "y")
	assert.True(t, l.HasErrors())
	assert.Equal(t, 2, l.Len())
}

func TestListErrorJoinsAllItems(t *testing.T) {
	var l List
	l.Errorf(token.Position{Line: 1}, "E001", "first")
	l.Errorf(token.Position{Line: 2}, "E002", "second")
	assert.Contains(t, l.Error(), "first")
	assert.Contains(t, l.Error(), "second")
}

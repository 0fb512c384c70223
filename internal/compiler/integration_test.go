// Package compiler holds only a full-pipeline integration test tying every
// phase together (lexer is reached transitively through parser.New); each
// phase's own unit tests live in its own package.
package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/tova/internal/compiler/generator"
	"github.com/btouchard/tova/internal/compiler/parser"
	"github.com/btouchard/tova/internal/compiler/semantic"
)

// TestFullPipeline lexes, parses, semantically analyzes, and generates a
// small multi-block app end to end, mirroring the teacher's own
// TestFullPipeline shape (parse a realistic source, assert on the final
// emitted output) with JS-artifact assertions standing in for the
// teacher's generated-Go-source assertions.
func TestFullPipeline(t *testing.T) {
	src := `
shared {
	type Priority {
		Low
		High
	}
}

server {
	pub fn createTask(title: String) {
		return title
	}

	route GET "/tasks" () {
		return createTask("first")
	}
}

client {
	component TaskBadge(label: String) {
		state open: Bool = false

		render {
			<span>{label}</span>
		}
	}
}
`
	prog, parseDiags := parser.New(src, "app.tova").ParseProgram()
	require.Empty(t, parseDiags, "unexpected parse diagnostics: %v", parseDiags)

	diags := semantic.New(false).Analyze(prog)
	require.False(t, diags.HasErrors(), "unexpected semantic errors: %v", diags.Items())

	out, genDiags := generator.New().Generate(prog, "app")
	require.Empty(t, genDiags.Items(), "unexpected generator diagnostics: %v", genDiags.Items())

	names := make([]string, len(out.Artifacts))
	for i, a := range out.Artifacts {
		names[i] = a.Name
	}
	assert.Contains(t, names, "app.shared.js")
	assert.Contains(t, names, "app.server.js")
	assert.Contains(t, names, "app.client.js")

	for _, a := range out.Artifacts {
		switch a.Name {
		case "app.shared.js":
			assert.Contains(t, a.Code, `__tag: "Low"`)
		case "app.server.js":
			assert.Contains(t, a.Code, "/rpc/createTask")
			assert.Contains(t, a.Code, "/tasks")
		case "app.client.js":
			assert.Contains(t, a.Code, "__tova_core.create_signal(false)")
			assert.True(t, strings.Contains(a.Code, "function TaskBadge(props)"))
		}
	}
}

// TestFullPipelineRejectsUnresolvedIdentifier verifies the semantic
// analyzer reports an error for a call to an undeclared function — the
// kind of error on which cmd/tovac's compileGroup stops before generation.
func TestFullPipelineRejectsUnresolvedIdentifier(t *testing.T) {
	src := `
server {
	route GET "/boom" () {
		return undefinedThing()
	}
}
`
	prog, parseDiags := parser.New(src, "app.tova").ParseProgram()
	require.Empty(t, parseDiags)

	diags := semantic.New(false).Analyze(prog)
	assert.True(t, diags.HasErrors())
}

package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/compiler/parser"
)

func analyze(t *testing.T, src string, strict bool) diagnostics.List {
	t.Helper()
	p := parser.New(src, "app.tova")
	prog, parseDiags := p.ParseProgram()
	require.Empty(t, parseDiags, "unexpected parse diagnostics: %v", parseDiags)
	return New(strict).Analyze(prog)
}

func codes(diags diagnostics.List) []string {
	var out []string
	for _, d := range diags.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestBuiltinsResolveWithoutDiagnostics(t *testing.T) {
	diags := analyze(t, `server {
		route GET "/ping" () {
			print("pong")
		}
	}`, false)
	assert.Empty(t, diags.Items())
}

func TestDuplicateDeclarationInSameScopeIsAnError(t *testing.T) {
	diags := analyze(t, `shared {
		type Id = String
		type Id = Int
	}`, false)
	require.Contains(t, codes(diags), codeDuplicateDecl)
	assert.True(t, diags.HasErrors())
}

func TestUnresolvedIdentifierIsAnError(t *testing.T) {
	diags := analyze(t, `server {
		route GET "/boom" () {
			return missingName
		}
	}`, false)
	require.Contains(t, codes(diags), codeUnresolvedIdent)
}

func TestShadowedBindingWarns(t *testing.T) {
	diags := analyze(t, `server {
		fn outer() {
			let x = 1
			fn inner() {
				let x = 2
				return x
			}
			return x
		}
	}`, false)
	require.Contains(t, codes(diags), codeShadowedBinding)
	assert.False(t, diags.HasErrors())
}

func TestUnusedLocalWarns(t *testing.T) {
	diags := analyze(t, `server {
		fn compute() {
			let unused = 1
			return 2
		}
	}`, false)
	require.Contains(t, codes(diags), codeUnusedLocal)
}

func TestIgnoredMatchExpressionValueWarns(t *testing.T) {
	diags := analyze(t, `server {
		fn run(shape: Shape) {
			match shape {
				Circle(r) => r,
				_ => 0,
			}
		}
	}`, false)
	require.Contains(t, codes(diags), codeIgnoredExprValue)
}

func TestStrictModePromotesWarningsToErrors(t *testing.T) {
	diags := analyze(t, `server {
		fn compute() {
			let unused = 1
			return 2
		}
	}`, true)
	require.Contains(t, codes(diags), codeUnusedLocal)
	assert.True(t, diags.HasErrors())
}

func TestForLoopBindingIsScopedToItsBody(t *testing.T) {
	diags := analyze(t, `server {
		fn sumAll(items: Int[]) {
			let total = 0
			for item in items {
				total += item
			}
			return total
		}
	}`, false)
	assert.Empty(t, diags.Items())
}

func TestComponentPropsAndStateResolveInRender(t *testing.T) {
	diags := analyze(t, `client {
		component TaskList(tasks: Task[]) {
			computed count = tasks.len()

			render {
				<div class="task-list">
					{if count > 0}
						<ul>
							{for t in tasks key=t.id}
								<li>{t.title}</li>
							{/for}
						</ul>
					{else}
						<span>empty</span>
					{/if}
				</div>
			}
		}
	}`, false)
	assert.Empty(t, diags.Items())
}

func TestJSXForBindingDoesNotLeakOutsideLoop(t *testing.T) {
	diags := analyze(t, `client {
		component List(items: Int[]) {
			render {
				<div>
					{for item in items}
						<span>{item}</span>
					{/for}
					<span>{item}</span>
				</div>
			}
		}
	}`, false)
	require.Contains(t, codes(diags), codeUnresolvedIdent)
}

func TestInvalidAssignmentTargetIsAnError(t *testing.T) {
	diags := analyze(t, `server {
		fn run() {
			1 + 1 = 2
		}
	}`, false)
	require.Contains(t, codes(diags), codeInvalidAssignTgt)
}

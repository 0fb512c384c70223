package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/tova/internal/compiler/parser"
)

func generate(t *testing.T, src, base string) *Output {
	t.Helper()
	p := parser.New(src, "app.tova")
	prog, diags := p.ParseProgram()
	require.Empty(t, diags, "unexpected parse diagnostics: %v", diags)
	out, genDiags := New().Generate(prog, base)
	require.Empty(t, genDiags.Items(), "unexpected generator diagnostics: %v", genDiags.Items())
	return out
}

func artifact(t *testing.T, out *Output, name string) Artifact {
	t.Helper()
	for _, a := range out.Artifacts {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("no artifact named %q among %v", name, artifactNames(out))
	return Artifact{}
}

func artifactNames(out *Output) []string {
	var names []string
	for _, a := range out.Artifacts {
		names = append(names, a.Name)
	}
	return names
}

func TestModuleFileEmitsSingleJS(t *testing.T) {
	out := generate(t, `
pub fn add(a: Int, b: Int) {
	return a + b
}
`, "math")
	require.Len(t, out.Artifacts, 1)
	a := out.Artifacts[0]
	assert.Equal(t, "math.js", a.Name)
	assert.Contains(t, a.Code, "export function add(a, b)")
	assert.Contains(t, a.Code, "sourceMappingURL=math.js.map")
	require.NotEmpty(t, a.Map)
}

func TestAppFileSplitsByBlockAndLabel(t *testing.T) {
	out := generate(t, `
shared {
	pub fn greet(name: String) {
		return "hi " + name
	}
}

server {
	route GET "/ping" () {
		return "pong"
	}
}

server admin {
	route GET "/admin/ping" () {
		return "pong"
	}
}

client {
	component Hello(name: String) {
		render {
			<div>{name}</div>
		}
	}
}
`, "app")

	names := artifactNames(out)
	assert.Contains(t, names, "app.shared.js")
	assert.Contains(t, names, "app.server.js")
	assert.Contains(t, names, "app.server.admin.js")
	assert.Contains(t, names, "app.client.js")

	shared := artifact(t, out, "app.shared.js")
	assert.Contains(t, shared.Code, "export function greet(name)")

	srv := artifact(t, out, "app.server.js")
	assert.Contains(t, srv.Code, "/ping")
	assert.Contains(t, srv.Code, "__tova_server.serve")

	admin := artifact(t, out, "app.server.admin.js")
	assert.Contains(t, admin.Code, "PORT_ADMIN")

	client := artifact(t, out, "app.client.js")
	assert.Contains(t, client.Code, "__tova_dom.h")
	assert.Contains(t, client.Code, "function Hello(props)")
}

func TestTaggedVariantTypeEmitsFactoryWithPositionalFields(t *testing.T) {
	out := generate(t, `
shared {
	type Shape {
		Circle(r: Float)
		Square(s: Float)
	}
}
`, "shapes")
	code := out.Artifacts[0].Code
	assert.Contains(t, code, "Circle(r)")
	assert.Contains(t, code, `__tag: "Circle"`)
	assert.Contains(t, code, "__fields: [r]")
}

func TestMatchExpressionCompilesToIIFE(t *testing.T) {
	out := generate(t, `
pub fn describe(n: Int) {
	return match n {
		0 => "zero",
		_ => "other"
	}
}
`, "describe")
	code := out.Artifacts[0].Code
	assert.Contains(t, code, "(function(){const __subj = n;")
	assert.Contains(t, code, "throw new Error(\"no match\");")
}

func TestStateDeclarationCompilesToSignalPair(t *testing.T) {
	out := generate(t, `
client {
	component Counter(initial: Int) {
		state count: Int = initial

		render {
			<span>{count}</span>
		}
	}
}
`, "counter")
	client := artifact(t, out, "counter.client.js")
	assert.Contains(t, client.Code, "__tova_core.create_signal(initial)")
	assert.Contains(t, client.Code, runtimeCore[:40])
}

func TestServerFnCallFromClientCompilesToRPCBridge(t *testing.T) {
	out := generate(t, `
client {
	component Saver() {
		fn save() {
			server.persist()
		}

		render {
			<button onclick={save}>save</button>
		}
	}
}
`, "saver")
	client := artifact(t, out, "saver.client.js")
	assert.Contains(t, client.Code, `__tova_rpc.rpc("persist", [])`)
	assert.Contains(t, client.Code, runtimeRPC[:40])
}

func TestPublicServerFnIsRegisteredAsRPCEndpoint(t *testing.T) {
	out := generate(t, `
server {
	pub fn createTask(title: String) {
		return title
	}
}
`, "tasks")
	srv := artifact(t, out, "tasks.server.js")
	assert.Contains(t, srv.Code, `/rpc/createTask`)
	assert.Contains(t, srv.Code, `__tova_server.registerRpc("createTask", createTask)`)
}

func TestTestBlockEmitsRunnableModule(t *testing.T) {
	out := generate(t, `
test {
	let sum = 1 + 1
}
`, "app")
	tst := artifact(t, out, "app.test.js")
	assert.Contains(t, tst.Code, "export async function run()")
}

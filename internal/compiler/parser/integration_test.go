package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/tova/internal/compiler/ast"
)

// TestFullProgramIntegration parses a complete multi-block .tova source —
// shared types, a server model/route, and a client store/component with a
// JSX render body exercising {if}/{elif}/{else} and {for} — end to end.
func TestFullProgramIntegration(t *testing.T) {
	src := `
import { formatDate } from "shared/dates"

shared {
	type Id = String

	type Shape {
		Circle(r: Float)
		Square(s: Float)
	}
}

server {
	db { driver: "sqlite", url: @env("DATABASE_URL") }

	model Task {
		id: String @pk @default(uuid_v4)
		title: String @min(3) @max(255)
		done: Bool @default(false)
		tags: String[]
	}

	route GET "/tasks/:id" (id: String) {
		return db.tasks.find(id)
	}
}

client {
	store TaskStore {
		state tasks: Task[] = []

		fn load() {
			tasks = await api.listTasks()
		}
	}

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
}
`
	p := New(src, "app.tova")
	prog, diags := p.ParseProgram()
	require.Empty(t, diags, "unexpected diagnostics: %v", diags)
	require.Len(t, prog.Body, 4)

	// Rendered JSX carries incidental whitespace-only text runs between
	// indented tags; tests care about the structural children only.
	elementsOf := func(children []ast.JSXChild) []ast.JSXChild {
		var out []ast.JSXChild
		for _, c := range children {
			if txt, ok := c.(*ast.JSXText); ok {
				if len(txt.Value) == 0 {
					continue
				}
				isSpace := true
				for _, r := range txt.Value {
					if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
						isSpace = false
						break
					}
				}
				if isSpace {
					continue
				}
			}
			out = append(out, c)
		}
		return out
	}

	imp, ok := prog.Body[0].(*ast.ImportDeclaration)
	require.True(t, ok)
	assert.Equal(t, "shared/dates", imp.Path)

	shared, ok := prog.Body[1].(*ast.SharedBlock)
	require.True(t, ok)
	require.Len(t, shared.Body, 2)
	typeAlias, ok := shared.Body[0].(*ast.TypeDecl)
	require.True(t, ok)
	assert.Equal(t, "Id", typeAlias.Name)
	shapeType, ok := shared.Body[1].(*ast.TypeDecl)
	require.True(t, ok)
	require.Len(t, shapeType.Variants, 2)
	assert.Equal(t, "Circle", shapeType.Variants[0].Name)

	server, ok := prog.Body[2].(*ast.ServerBlock)
	require.True(t, ok)
	require.Len(t, server.Body, 3)
	_, ok = server.Body[0].(*ast.DbDeclaration)
	require.True(t, ok)
	model, ok := server.Body[1].(*ast.ModelDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Task", model.Name)
	require.Len(t, model.Fields, 4)
	assert.Equal(t, "String[]", model.Fields[3].Type)
	route, ok := server.Body[2].(*ast.RouteDeclaration)
	require.True(t, ok)
	assert.Equal(t, "GET", route.Method)
	assert.Equal(t, "/tasks/:id", route.Path)

	client, ok := prog.Body[3].(*ast.ClientBlock)
	require.True(t, ok)
	require.Len(t, client.Body, 2)

	store, ok := client.Body[0].(*ast.StoreDeclaration)
	require.True(t, ok)
	assert.Equal(t, "TaskStore", store.Name)
	require.Len(t, store.Body, 2)

	comp, ok := client.Body[1].(*ast.ComponentDeclaration)
	require.True(t, ok)
	assert.Equal(t, "TaskList", comp.Name)
	require.Len(t, comp.Render, 1)

	root, ok := comp.Render[0].(*ast.JSXElement)
	require.True(t, ok)
	assert.Equal(t, "div", root.Tag)
	rootChildren := elementsOf(root.Children)
	require.Len(t, rootChildren, 1)

	ifNode, ok := rootChildren[0].(*ast.JSXIf)
	require.True(t, ok)
	thenChildren := elementsOf(ifNode.Then)
	require.Len(t, thenChildren, 1)
	require.NotNil(t, ifNode.Else)

	ul, ok := thenChildren[0].(*ast.JSXElement)
	require.True(t, ok)
	assert.Equal(t, "ul", ul.Tag)
	ulChildren := elementsOf(ul.Children)
	require.Len(t, ulChildren, 1)

	forNode, ok := ulChildren[0].(*ast.JSXFor)
	require.True(t, ok)
	require.NotNil(t, forNode.Key)
	forBody := elementsOf(forNode.Body)
	require.Len(t, forBody, 1)

	li, ok := forBody[0].(*ast.JSXElement)
	require.True(t, ok)
	assert.Equal(t, "li", li.Tag)
	liChildren := elementsOf(li.Children)
	require.Len(t, liChildren, 1)
	_, ok = liChildren[0].(*ast.JSXExprChild)
	assert.True(t, ok)

	elseChildren := elementsOf(ifNode.Else)
	require.Len(t, elseChildren, 1)
	span, ok := elseChildren[0].(*ast.JSXElement)
	require.True(t, ok)
	assert.Equal(t, "span", span.Tag)
	spanChildren := elementsOf(span.Children)
	require.Len(t, spanChildren, 1)
	text, ok := spanChildren[0].(*ast.JSXText)
	require.True(t, ok)
	assert.Equal(t, "empty", text.Value)
}

package parser

import (
	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/token"
)

func (p *Parser) parseStateDeclaration() ast.TopLevel {
	d := &ast.StateDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	d.Name = p.cur.Literal
	p.next()
	if p.curIs(token.COLON) {
		p.next()
		d.Type = p.parseTypeRef()
	}
	if p.curIs(token.ASSIGN) {
		p.next()
		d.Value = p.parseExpression(LOWEST)
	}
	return d
}

func (p *Parser) parseComputedDeclaration() ast.TopLevel {
	d := &ast.ComputedDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	d.Name = p.cur.Literal
	p.next()
	if p.curIs(token.COLON) {
		p.next()
		d.Type = p.parseTypeRef()
	}
	p.expect(token.ASSIGN)
	d.Expr = p.parseExpression(LOWEST)
	return d
}

func (p *Parser) parseEffectDeclaration() ast.TopLevel {
	d := &ast.EffectDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

// parseComponentDeclaration parses `component Counter(initial: Int) { ...
// state/computed/effect/fn... render <div>...</div> }`.
func (p *Parser) parseComponentDeclaration(public bool, doc string) ast.TopLevel {
	d := &ast.ComponentDeclaration{Public: public, Doc: doc}
	d.Position = p.cur.Pos
	p.next()
	d.Name = p.cur.Literal
	p.next()
	if p.curIs(token.LPAREN) {
		p.next()
		d.Props = p.parseParamList()
	}
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.IDENT) && p.cur.Literal == "render" {
			p.next()
			p.assertCur(token.LBRACE, "E0422", "expected '{' after 'render'")
			d.Render = p.parseJSXChildren()
			p.expect(token.RBRACE)
		} else {
			item := p.parseSharedScopeDecl(p.takeDoc())
			if item != nil {
				d.Body = append(d.Body, item)
			} else {
				p.next()
			}
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return d
}

// parseStoreDeclaration parses `store AppStore { state/computed/fn... }`, a
// component-independent reactive unit with no render body.
func (p *Parser) parseStoreDeclaration(public bool, doc string) ast.TopLevel {
	d := &ast.StoreDeclaration{Public: public, Doc: doc}
	d.Position = p.cur.Pos
	p.next()
	d.Name = p.cur.Literal
	p.next()
	p.expect(token.LBRACE)
	d.Body = p.parseTopLevelsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

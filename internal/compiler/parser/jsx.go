package parser

import (
	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/token"
)

// JSX parsing straddles two lexer modes: ordinary tokens for tags,
// attributes, and embedded expressions, and raw text for everything between
// '>' and the next '<' or '{'. The lexer never switches modes on its own —
// NextJSXText() is called explicitly, and only at a point where the lexer's
// raw cursor sits exactly where a previous '>' or '}' left it. Every JSX
// parse function here therefore leaves cur ON its own last consumed token
// (never advanced past it), so the caller can hand the lexer's still-true
// cursor position straight to advanceIntoJSXText. parseJSXExpr is the one
// place that resumes ordinary advance-past-self parsing once JSX content is
// fully closed.

// advanceIntoJSXText reads a run of raw JSX text from the lexer's current
// position and makes it cur. Used only where the raw cursor is known to sit
// right after a '>' or '}' character.
func (p *Parser) advanceIntoJSXText() token.Token {
	p.cur = p.l.NextJSXText()
	p.peekValid = false
	return p.cur
}

// assertCur reports a diagnostic if cur isn't t, without consuming it.
func (p *Parser) assertCur(t token.TokenType, code, msg string) {
	if !p.curIs(t) {
		p.errorf(p.cur.Pos, code, "%s: got %s (%q)", msg, p.cur.Type, p.cur.Literal)
	}
}

// parseJSXElementOrFragment parses a `<Tag ...>...</Tag>` element, a
// `<>...</>` fragment, or a self-closing `<Tag .../>`, assuming cur == LT.
// It returns with cur sitting on its own final token (GT or SLASH_GT),
// unadvanced, so a caller already inside a children scan can resume reading
// raw text from exactly that point.
func (p *Parser) parseJSXElementOrFragment() ast.Expression {
	pos := p.cur.Pos
	p.next() // consume '<'

	if p.curIs(token.GT) {
		frag := &ast.JSXFragment{}
		frag.Position = pos
		frag.Children = p.parseJSXChildren()
		p.expectJSXCloseLeaveAtGT("")
		return frag
	}

	tag := p.cur.Literal
	p.next() // consume tag name
	el := &ast.JSXElement{Tag: tag}
	el.Position = pos
	el.Attrs = p.parseJSXAttrs()

	if p.curIs(token.SLASH_GT) {
		el.SelfClose = true
		return el
	}
	p.assertCur(token.GT, "E0419", "expected '>' or '/>' to end opening tag")
	el.Children = p.parseJSXChildren()
	p.expectJSXCloseLeaveAtGT(tag)
	return el
}

// parseJSXAttrs reads attributes using ordinary tokens only (no raw-text
// mode involved), leaving cur at GT or SLASH_GT.
func (p *Parser) parseJSXAttrs() []ast.JSXAttr {
	var attrs []ast.JSXAttr
	for !p.curIs(token.GT) && !p.curIs(token.SLASH_GT) && !p.curIs(token.EOF) {
		if p.curIs(token.LBRACE) {
			p.next()
			p.expect(token.ELLIPSIS)
			val := p.parseExpression(LOWEST)
			p.assertCur(token.RBRACE, "E0420", "expected '}' to close spread attribute")
			p.next()
			attrs = append(attrs, ast.JSXAttr{Spread: true, Value: val})
			continue
		}
		name := p.cur.Literal
		p.next()
		if !p.curIs(token.ASSIGN) {
			attrs = append(attrs, ast.JSXAttr{Name: name})
			continue
		}
		p.next()
		var val ast.Expression
		if p.curIs(token.LBRACE) {
			p.next()
			val = p.parseExpression(LOWEST)
			p.assertCur(token.RBRACE, "E0421", "expected '}' to close attribute expression")
			p.next()
		} else {
			val = p.parseStringLit()
		}
		attrs = append(attrs, ast.JSXAttr{Name: name, Value: val})
	}
	return attrs
}

// parseJSXChildren scans children starting from a lexer raw-cursor position
// that sits exactly after the opening tag's '>' (or after a prior child's
// own closing token). It stops, without consuming, at a real closing tag
// (LT_SLASH), a control-block terminator (`{/if}`, `{elif ...}`, `{else}`,
// `{/for}` — recognized one token ahead so they aren't swallowed as plain
// expression children), a bare '}' (the enclosing construct's own close,
// e.g. a component's `render { }` block), or EOF.
func (p *Parser) parseJSXChildren() []ast.JSXChild {
	var children []ast.JSXChild
	for {
		txt := p.advanceIntoJSXText()
		if txt.Literal != "" {
			jt := &ast.JSXText{Value: txt.Literal}
			jt.Position = txt.Pos
			children = append(children, jt)
		}
		p.next() // ordinary fetch: raw cursor now sits at '<', '{', '}', or EOF

		switch {
		case p.curIs(token.EOF), p.curIs(token.RBRACE):
			return children
		case p.curIs(token.LT_SLASH):
			return children
		case p.curIs(token.LT):
			el := p.parseJSXElementOrFragment()
			if child, ok := el.(ast.JSXChild); ok {
				children = append(children, child)
			}
		case p.curIs(token.LBRACE):
			if pk := p.peekTok().Type; pk == token.SLASH || pk == token.ELIF || pk == token.ELSE {
				return children
			}
			if child := p.parseJSXBraceChild(); child != nil {
				children = append(children, child)
			}
		default:
			p.errorf(p.cur.Pos, "E0402", "unexpected token %s in JSX children", p.cur.Type)
			return children
		}
	}
}

// parseJSXBraceChild handles `{expr}`, `{if cond} ... {/if}`, and
// `{for x in xs key=expr} ... {/for}`, assuming cur == LBRACE. It leaves cur
// on the child's own closing RBRACE, unadvanced.
func (p *Parser) parseJSXBraceChild() ast.JSXChild {
	pos := p.cur.Pos
	p.next() // consume '{'

	switch p.cur.Type {
	case token.IF:
		return p.parseJSXIf(pos)
	case token.FOR:
		return p.parseJSXFor(pos)
	default:
		expr := p.parseExpression(LOWEST)
		p.assertCur(token.RBRACE, "E0403", "expected '}' to close JSX expression")
		c := &ast.JSXExprChild{X: expr}
		c.Position = pos
		return c
	}
}

func (p *Parser) parseJSXIf(pos token.Position) ast.JSXChild {
	p.next() // consume 'if'
	cond := p.parseExpression(LOWEST)
	p.assertCur(token.RBRACE, "E0404", "expected '}' after if-condition")
	node := &ast.JSXIf{Cond: cond}
	node.Position = pos
	node.Then = p.parseJSXChildren() // stops at the '{' that opens elif/else/close, unconsumed

	for {
		p.assertCur(token.LBRACE, "E0405", "unterminated if-block")
		p.next() // consume '{'
		switch p.cur.Type {
		case token.ELIF:
			p.next()
			c := p.parseExpression(LOWEST)
			p.assertCur(token.RBRACE, "E0406", "expected '}' after elif-condition")
			body := p.parseJSXChildren()
			node.Elif = append(node.Elif, ast.JSXIfElifClause{Cond: c, Body: body})
		case token.ELSE:
			p.next()
			p.assertCur(token.RBRACE, "E0407", "expected '}' after else")
			node.Else = p.parseJSXChildren()
			p.closeControlBlockAfterBrace(token.IF, "E0408", "E0408", "E0409")
			return node
		case token.SLASH:
			p.closeControlBlockAfterSlash(token.IF, "E0408", "E0409")
			return node
		default:
			p.errorf(p.cur.Pos, "E0410", "expected 'elif', 'else', or '/if' here, got %s", p.cur.Type)
			return node
		}
	}
}

func (p *Parser) parseJSXFor(pos token.Position) ast.JSXChild {
	p.next() // consume 'for'
	binding := p.parsePattern()
	if !p.curIs(token.IN) {
		p.errorf(p.cur.Pos, "E0411", "expected 'in' in for-loop, got %s", p.cur.Type)
	} else {
		p.next()
	}
	iter := p.parseExpression(LOWEST)
	node := &ast.JSXFor{Binding: binding, Iter: iter}
	node.Position = pos
	if p.curIs(token.IDENT) && p.cur.Literal == "key" {
		p.next()
		if p.curIs(token.ASSIGN) {
			p.next()
		}
		node.Key = p.parseExpression(LOWEST)
	}
	p.assertCur(token.RBRACE, "E0412", "expected '}' after for-header")
	node.Body = p.parseJSXChildren()

	p.closeControlBlockAfterBrace(token.FOR, "E0413", "E0414", "E0415")
	return node
}

// closeControlBlockAfterBrace consumes a full `{/kw}` terminator, assuming
// cur is the '{' that opens it.
func (p *Parser) closeControlBlockAfterBrace(kw token.TokenType, openCode, slashCode, closeCode string) {
	p.assertCur(token.LBRACE, openCode, "unterminated control block")
	p.next() // consume '{'
	p.closeControlBlockAfterSlash(kw, slashCode, closeCode)
}

// closeControlBlockAfterSlash consumes `/kw}` assuming cur is the '{''s
// immediate successor position (i.e. cur should be SLASH).
func (p *Parser) closeControlBlockAfterSlash(kw token.TokenType, slashCode, closeCode string) {
	p.assertCur(token.SLASH, slashCode, "expected '/' to close control block")
	p.next()
	if p.cur.Type != kw {
		p.errorf(p.cur.Pos, slashCode, "expected closing keyword %s, got %s", kw, p.cur.Type)
	}
	p.next()
	p.assertCur(token.RBRACE, closeCode, "expected '}' to close control block")
	// leave cur == RBRACE, unadvanced
}

// expectJSXCloseLeaveAtGT consumes a `</Tag>` (or `</>` for a fragment,
// tag==""), assuming cur == LT_SLASH. It leaves cur == GT, unadvanced.
func (p *Parser) expectJSXCloseLeaveAtGT(tag string) {
	p.assertCur(token.LT_SLASH, "E0416", "expected closing tag")
	p.next() // consume '</'
	if tag != "" {
		if p.cur.Literal != tag {
			p.errorf(p.cur.Pos, "E0417", "mismatched closing tag: expected </%s>, got </%s>", tag, p.cur.Literal)
		}
		p.next() // consume tag name
	}
	p.assertCur(token.GT, "E0418", "expected '>' to close tag")
}

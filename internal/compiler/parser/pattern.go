package parser

import (
	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/token"
)

// parsePattern parses one match-arm or destructuring pattern.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.cur.Type {
	case token.IDENT:
		if p.cur.Literal == "_" {
			w := &ast.WildcardPattern{}
			w.Position = p.cur.Pos
			p.next()
			return w
		}
		return p.parseVariantOrBindingPattern()
	case token.INT, token.FLOAT, token.STRING, token.STRING_TEMPLATE, token.TRUE, token.FALSE:
		return p.parseLiteralOrRangePattern()
	case token.LBRACKET:
		return p.parseArrayPattern()
	case token.LBRACE:
		return p.parseObjectPattern()
	default:
		p.errorf(p.cur.Pos, "E0300", "unexpected token %s (%q) in pattern", p.cur.Type, p.cur.Literal)
		p.next()
		return &ast.WildcardPattern{}
	}
}

func (p *Parser) parseVariantOrBindingPattern() ast.Pattern {
	pos := p.cur.Pos
	first := p.cur.Literal
	p.next()

	if p.curIs(token.DOUBLE_COLON) {
		p.next()
		name := p.cur.Literal
		p.next()
		return p.finishVariantPattern(pos, first, name)
	}
	if p.curIs(token.LPAREN) {
		return p.finishVariantPattern(pos, "", first)
	}
	id := &ast.Ident{Name: first}
	id.Position = pos
	return id
}

func (p *Parser) finishVariantPattern(pos token.Position, typeName, name string) ast.Pattern {
	v := &ast.VariantPattern{TypeName: typeName, Name: name}
	v.Position = pos
	if p.curIs(token.LPAREN) {
		p.next()
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			v.Bindings = append(v.Bindings, p.parsePattern())
			if p.curIs(token.COMMA) {
				p.next()
			}
		}
		p.expect(token.RPAREN)
	}
	return v
}

func (p *Parser) parseLiteralOrRangePattern() ast.Pattern {
	pos := p.cur.Pos
	lit := p.parseExpression(RANGE + 1)
	if p.curIs(token.RANGE) || p.curIs(token.RANGE_INCL) {
		incl := p.curIs(token.RANGE_INCL)
		p.next()
		high := p.parseExpression(RANGE + 1)
		r := &ast.RangePattern{Low: lit, High: high, Inclusive: incl}
		r.Position = pos
		return r
	}
	if p.curIs(token.PLUS_PLUS) {
		// "prefix" ++ binding — string-concat destructuring pattern.
		sl, ok := lit.(*ast.StringLit)
		prefix := ""
		if ok && len(sl.Parts) == 1 {
			prefix = sl.Parts[0].Literal
		}
		p.next()
		binding := p.cur.Literal
		p.next()
		sc := &ast.StringConcatPattern{Prefix: prefix, Binding: binding}
		sc.Position = pos
		return sc
	}
	litPat := &ast.LiteralPattern{Value: lit}
	litPat.Position = pos
	return litPat
}

func (p *Parser) parseArrayPattern() ast.Pattern {
	pos := p.cur.Pos
	p.next()
	ap := &ast.ArrayPattern{}
	ap.Position = pos
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.ELLIPSIS) {
			p.next()
			ap.Rest = p.cur.Literal
			p.next()
			break
		}
		ap.Elements = append(ap.Elements, p.parsePattern())
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACKET)
	return ap
}

func (p *Parser) parseObjectPattern() ast.Pattern {
	pos := p.cur.Pos
	p.next()
	op := &ast.ObjectPattern{}
	op.Position = pos
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		key := p.cur.Literal
		p.next()
		var binding ast.Pattern
		if p.curIs(token.COLON) {
			p.next()
			binding = p.parsePattern()
		}
		op.Fields = append(op.Fields, ast.ObjectPatternField{Key: key, Binding: binding})
		if p.curIs(token.COMMA) {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return op
}

// Package parser turns a Tova token stream into an *ast.Program. It is the
// compiler's sole expression and statement parser: block directives,
// server/client declarations, pattern matching, and the JSX sublanguage
// all share one Pratt expression engine, generalized from the teacher
// compiler's embedded-script parser (precedence table, prefix/infix maps)
// into the whole language, with the teacher's outer section-dispatch
// parser folded into block-directive dispatch below.
package parser

import (
	"strconv"
	"strings"

	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/compiler/lexer"
	"github.com/btouchard/tova/internal/compiler/token"
)

// precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	PIPE      // |>
	LOGIC_OR  // ||
	LOGIC_AND // &&
	COALESCE  // ??
	EQUALS    // == !=
	COMPARE   // < > <= >= in
	RANGE     // .. ..=
	SUM       // + -
	PRODUCT   // * / %
	POWER     // **
	PREFIX    // -x !x not x await x try x
	POSTFIX   // f(x) x.y x[y] x?.y
)

var precedences = map[token.TokenType]int{
	token.PIPE:          PIPE,
	token.OR:             LOGIC_OR,
	token.AND:            LOGIC_AND,
	token.NULL_COALESCE:  COALESCE,
	token.EQ:             EQUALS,
	token.NOT_EQ:         EQUALS,
	token.LT:             COMPARE,
	token.GT:             COMPARE,
	token.LT_EQ:          COMPARE,
	token.GT_EQ:          COMPARE,
	token.IN:             COMPARE,
	token.RANGE:          RANGE,
	token.RANGE_INCL:     RANGE,
	token.PLUS:           SUM,
	token.MINUS:          SUM,
	token.ASTERISK:       PRODUCT,
	token.SLASH:          PRODUCT,
	token.PERCENT:        PRODUCT,
	token.POWER:          POWER,
	token.LPAREN:         POSTFIX,
	token.DOT:            POSTFIX,
	token.OPTIONAL_DOT:   POSTFIX,
	token.LBRACKET:       POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes a two-token lookahead window over the lexer's stream and
// builds the AST, accumulating diagnostics rather than panicking on
// recoverable syntax errors.
type Parser struct {
	l    *lexer.Lexer
	file string
	diag diagnostics.List

	cur       token.Token
	peek      token.Token
	peekValid bool // peek is fetched lazily so JSX raw-text mode switches land exactly on the lexer's true cursor

	pendingDoc string // last DOC token's text, attached to the next declaration

	prefixFns map[token.TokenType]prefixParseFn
	infixFns  map[token.TokenType]infixParseFn
}

// New constructs a Parser over src, attributed to file for diagnostics and
// source maps.
func New(src, file string) *Parser {
	p := &Parser{l: lexer.New(src, file), file: file}
	p.prefixFns = map[token.TokenType]prefixParseFn{
		token.IDENT:           p.parseIdent,
		token.INT:             p.parseIntLit,
		token.FLOAT:           p.parseFloatLit,
		token.STRING:          p.parseStringLit,
		token.STRING_TEMPLATE: p.parseStringLit,
		token.TRUE:            p.parseBoolLit,
		token.FALSE:           p.parseBoolLit,
		token.MINUS:           p.parsePrefixExpr,
		token.BANG:            p.parsePrefixExpr,
		token.NOT:             p.parsePrefixExpr,
		token.AWAIT:           p.parsePrefixExpr,
		token.TRY:             p.parseTryExpr,
		token.LPAREN:          p.parseGroupedExpr,
		token.LBRACKET:        p.parseArrayLit,
		token.LBRACE:          p.parseObjectLit,
		token.IF:              p.parseIfExpr,
		token.MATCH:           p.parseMatchExpr,
		token.FUNC:            p.parseFuncLit,
		token.ASYNC:           p.parseFuncLit,
		token.LT:              p.parseJSXExpr,
		token.AT:              p.parseAnnotationCallExpr,
	}
	p.infixFns = map[token.TokenType]infixParseFn{
		token.PLUS:          p.parseBinaryExpr,
		token.MINUS:         p.parseBinaryExpr,
		token.ASTERISK:      p.parseBinaryExpr,
		token.SLASH:         p.parseBinaryExpr,
		token.PERCENT:       p.parseBinaryExpr,
		token.POWER:         p.parseBinaryExpr,
		token.EQ:            p.parseBinaryExpr,
		token.NOT_EQ:        p.parseBinaryExpr,
		token.LT:            p.parseBinaryExpr,
		token.GT:            p.parseBinaryExpr,
		token.LT_EQ:         p.parseBinaryExpr,
		token.GT_EQ:         p.parseBinaryExpr,
		token.AND:           p.parseBinaryExpr,
		token.OR:            p.parseBinaryExpr,
		token.PIPE:          p.parseBinaryExpr,
		token.NULL_COALESCE: p.parseBinaryExpr,
		token.IN:            p.parseBinaryExpr,
		token.RANGE:         p.parseRangeExpr,
		token.RANGE_INCL:    p.parseRangeExpr,
		token.LPAREN:        p.parseCallExpr,
		token.DOT:           p.parseMemberExpr,
		token.OPTIONAL_DOT:  p.parseMemberExpr,
		token.LBRACKET:      p.parseIndexOrSlice,
	}
	p.cur = p.l.NextToken()
	return p
}

func (p *Parser) Diagnostics() []diagnostics.Diagnostic { return p.diag.Items() }

// ParseProgram parses the whole token stream into one *ast.Program, made
// up of top-level block directives.
func (p *Parser) ParseProgram() (*ast.Program, []diagnostics.Diagnostic) {
	prog := &ast.Program{Sources: []string{p.file}}
	p.skipNewlines()
	for !p.curIs(token.EOF) {
		prevLine, prevCol := p.cur.Pos.Line, p.cur.Pos.Column
		item := p.parseTopLevel()
		if item != nil {
			prog.Body = append(prog.Body, item)
		}
		p.skipNewlines()
		// safety: ensure progress even if parseTopLevel bailed without consuming
		if p.cur.Pos.Line == prevLine && p.cur.Pos.Column == prevCol && !p.curIs(token.EOF) {
			p.next()
		}
	}
	return prog, p.diag.Items()
}

// ---- token stream plumbing ----

// next advances cur to the next token. peek is filled lazily: a plain next()
// never touches the lexer more than once, which matters inside JSX child
// text, where the lexer must be driven by NextJSXText() instead of
// NextToken() at exact raw-cursor positions (see jsx.go).
func (p *Parser) next() {
	p.cur = p.peekTok()
	p.peekValid = false
}

func (p *Parser) peekTok() token.Token {
	if !p.peekValid {
		p.peek = p.l.NextToken()
		p.peekValid = true
	}
	return p.peek
}

func (p *Parser) curIs(t token.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.TokenType) bool { return p.peekTok().Type == t }

func (p *Parser) expect(t token.TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf(p.cur.Pos, "E0100", "expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
	return false
}

func (p *Parser) errorf(pos token.Position, code, format string, args ...any) {
	p.diag.Errorf(pos, code, format, args...)
}

// skipNewlines consumes any run of NEWLINE tokens between top-level items
// or statements.
func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.next()
	}
}

// synchronize discards tokens until a likely statement/declaration
// boundary, so one syntax error doesn't cascade into spurious follow-on
// diagnostics. Mirrors the teacher parser's error-recovery + safety-progress
// idiom (`shared/model.go`'s prevPos check), generalized to a boundary scan.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.NEWLINE) || p.curIs(token.SEMICOLON) {
			p.next()
			return
		}
		switch p.cur.Type {
		case token.FUNC, token.LET, token.VAR, token.CONST, token.ROUTE, token.MODEL,
			token.COMPONENT, token.STORE, token.STATE, token.TYPE, token.IMPORT,
			token.RBRACE:
			return
		}
		p.next()
	}
}

func (p *Parser) takeDoc() string {
	d := p.pendingDoc
	p.pendingDoc = ""
	return d
}

// ---- Pratt expression engine ----

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.errorf(p.cur.Pos, "E0101", "unexpected token %s (%q) in expression", p.cur.Type, p.cur.Literal)
		p.next()
		return nil
	}
	left := prefix()

	for !p.curIsTerminator() && precedence < p.curPrecedence() {
		infix := p.infixFns[p.cur.Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	return left
}

// curIsTerminator reports whether cur ends an expression. Every prefix/infix
// parse function leaves cur on the first token it didn't consume, so the
// loop above reads cur directly rather than peeking ahead.
func (p *Parser) curIsTerminator() bool {
	switch p.cur.Type {
	case token.NEWLINE, token.EOF, token.SEMICOLON, token.COMMA, token.RPAREN,
		token.RBRACE, token.RBRACKET, token.COLON:
		return true
	}
	return false
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseIdent() ast.Expression {
	id := &ast.Ident{Name: p.cur.Literal}
	id.Position = p.cur.Pos
	p.next()
	return id
}

func (p *Parser) parseIntLit() ast.Expression {
	lit := &ast.IntLit{Raw: p.cur.Literal}
	lit.Position = p.cur.Pos
	v, err := parseIntLiteral(p.cur.Literal)
	if err != nil {
		p.errorf(p.cur.Pos, "E0102", "invalid integer literal %q: %s", p.cur.Literal, err)
	}
	lit.Value = v
	p.next()
	return lit
}

func (p *Parser) parseFloatLit() ast.Expression {
	lit := &ast.FloatLit{Raw: p.cur.Literal}
	lit.Position = p.cur.Pos
	v, err := strconv.ParseFloat(strings.ReplaceAll(p.cur.Literal, "_", ""), 64)
	if err != nil {
		p.errorf(p.cur.Pos, "E0103", "invalid float literal %q: %s", p.cur.Literal, err)
	}
	lit.Value = v
	p.next()
	return lit
}

func (p *Parser) parseBoolLit() ast.Expression {
	lit := &ast.BoolLit{Value: p.cur.Type == token.TRUE}
	lit.Position = p.cur.Pos
	p.next()
	return lit
}

// parseStringLit builds a StringLit from either a plain STRING token or a
// STRING_TEMPLATE whose interpolation parts were captured on the lexer
// during NextToken; each embedded expression source is re-parsed as a
// standalone sub-expression.
func (p *Parser) parseStringLit() ast.Expression {
	lit := &ast.StringLit{}
	lit.Position = p.cur.Pos
	if p.cur.Type == token.STRING {
		lit.Parts = []ast.StringPart{{Literal: p.cur.Literal}}
		p.next()
		return lit
	}
	for _, part := range p.l.InterpParts {
		if !part.HasExpr {
			lit.Parts = append(lit.Parts, ast.StringPart{Literal: part.Literal})
			continue
		}
		sub := New(part.ExprSrc, p.file)
		expr := sub.parseExpression(LOWEST)
		for _, d := range sub.Diagnostics() {
			p.diag.Add(d)
		}
		lit.Parts = append(lit.Parts, ast.StringPart{Expr: expr})
	}
	p.next()
	return lit
}

func (p *Parser) parsePrefixExpr() ast.Expression {
	tok := p.cur
	p.next()
	x := p.parseExpression(PREFIX)
	e := &ast.UnaryExpr{Op: opLiteral(tok), X: x}
	e.Position = tok.Pos
	return e
}

func (p *Parser) parseTryExpr() ast.Expression {
	tok := p.cur
	p.next()
	x := p.parseExpression(PREFIX)
	e := &ast.TryExpr{X: x}
	e.Position = tok.Pos
	return e
}

func opLiteral(tok token.Token) string {
	if tok.Type == token.NOT {
		return "not"
	}
	return tok.Literal
}

func (p *Parser) parseGroupedExpr() ast.Expression {
	p.next()
	x := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	return x
}

func (p *Parser) parseArrayLit() ast.Expression {
	lit := &ast.ArrayLit{}
	lit.Position = p.cur.Pos
	p.next()
	p.skipNewlines()
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACKET)
	return lit
}

func (p *Parser) parseObjectLit() ast.Expression {
	lit := &ast.ObjectLit{}
	lit.Position = p.cur.Pos
	p.next()
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		key := p.cur.Literal
		p.next()
		p.expect(token.COLON)
		val := p.parseExpression(LOWEST)
		lit.Fields = append(lit.Fields, ast.ObjectField{Key: key, Value: val})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return lit
}

func (p *Parser) parseBinaryExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	prec := p.curPrecedence()
	p.next()
	right := p.parseExpression(prec)
	e := &ast.BinaryExpr{Op: tok.Literal, Left: left, Right: right}
	e.Position = tok.Pos
	return e
}

func (p *Parser) parseRangeExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	incl := tok.Type == token.RANGE_INCL
	p.next()
	right := p.parseExpression(RANGE)
	e := &ast.RangeExpr{Low: left, High: right, Inclusive: incl}
	e.Position = tok.Pos
	return e
}

func (p *Parser) parseCallExpr(callee ast.Expression) ast.Expression {
	call := &ast.CallExpr{Callee: callee}
	call.Position = p.cur.Pos
	p.next()
	p.skipNewlines()
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.ELLIPSIS) {
			p.next()
			call.Spread = true
		}
		call.Args = append(call.Args, p.parseExpression(LOWEST))
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RPAREN)
	return call
}

func (p *Parser) parseMemberExpr(x ast.Expression) ast.Expression {
	tok := p.cur
	optional := tok.Type == token.OPTIONAL_DOT
	p.next()
	prop := p.cur.Literal
	p.next()
	m := &ast.MemberExpr{X: x, Property: prop, Optional: optional}
	m.Position = tok.Pos
	return m
}

func (p *Parser) parseIndexOrSlice(x ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	if p.curIs(token.COLON) {
		p.next()
		high := p.parseSliceBound()
		p.expect(token.RBRACKET)
		s := &ast.SliceExpr{X: x, High: high}
		s.Position = tok.Pos
		return s
	}
	first := p.parseExpression(LOWEST)
	if p.curIs(token.COLON) {
		p.next()
		high := p.parseSliceBound()
		p.expect(token.RBRACKET)
		s := &ast.SliceExpr{X: x, Low: first, High: high}
		s.Position = tok.Pos
		return s
	}
	p.expect(token.RBRACKET)
	idx := &ast.IndexExpr{X: x, Index: first}
	idx.Position = tok.Pos
	return idx
}

func (p *Parser) parseSliceBound() ast.Expression {
	if p.curIs(token.RBRACKET) {
		return nil
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseIfExpr() ast.Expression {
	tok := p.cur
	p.next()
	cond := p.parseExpression(LOWEST)
	p.expect(token.LBRACE)
	then := p.parseExpression(LOWEST)
	p.expect(token.RBRACE)

	e := &ast.IfExpr{Cond: cond, Then: then}
	e.Position = tok.Pos
	for p.curIs(token.ELIF) {
		p.next()
		c := p.parseExpression(LOWEST)
		p.expect(token.LBRACE)
		v := p.parseExpression(LOWEST)
		p.expect(token.RBRACE)
		e.Elif = append(e.Elif, ast.ElifExprClause{Cond: c, Then: v})
	}
	if p.curIs(token.ELSE) {
		p.next()
		p.expect(token.LBRACE)
		e.Else = p.parseExpression(LOWEST)
		p.expect(token.RBRACE)
	}
	return e
}

func (p *Parser) parseMatchExpr() ast.Expression {
	tok := p.cur
	p.next()
	subject := p.parseExpression(LOWEST)
	p.expect(token.LBRACE)
	p.skipNewlines()
	m := &ast.MatchExpr{Subject: subject}
	m.Position = tok.Pos
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		pat := p.parsePattern()
		var guard ast.Expression
		if p.curIs(token.IF) {
			p.next()
			guard = p.parseExpression(LOWEST)
		}
		p.expect(token.ARROW_FAT)
		val := p.parseExpression(LOWEST)
		m.Arms = append(m.Arms, ast.MatchExprArm{Pattern: pat, Guard: guard, Value: val})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return m
}

func (p *Parser) parseFuncLit() ast.Expression {
	tok := p.cur
	async := false
	if p.curIs(token.ASYNC) {
		async = true
		p.next()
	}
	p.expect(token.FUNC)
	p.expect(token.LPAREN)
	params := p.parseParamList()
	fn := &ast.FuncLit{Async: async, Params: params}
	fn.Position = tok.Pos
	p.expect(token.LBRACE)
	fn.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return fn
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	p.skipNewlines()
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		name := p.cur.Literal
		p.next()
		var typ string
		if p.curIs(token.COLON) {
			p.next()
			typ = p.parseTypeRef()
		}
		var def ast.Expression
		if p.curIs(token.ASSIGN) {
			p.next()
			def = p.parseExpression(LOWEST)
		}
		params = append(params, ast.Param{Name: name, Type: typ, Default: def})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RPAREN)
	return params
}

// parseTypeRef reads a (possibly generic/optional) type reference as a
// source-text span; Tova's type layer is structural sugar over the JS
// target, so the generator only needs the printable form, not a resolved
// type graph.
func (p *Parser) parseTypeRef() string {
	var sb strings.Builder
	sb.WriteString(p.cur.Literal)
	p.next()
	if p.curIs(token.LT) {
		sb.WriteString("<")
		p.next()
		sb.WriteString(p.parseTypeRef())
		for p.curIs(token.COMMA) {
			p.next()
			sb.WriteString(", ")
			sb.WriteString(p.parseTypeRef())
		}
		if p.curIs(token.GT) {
			sb.WriteString(">")
			p.next()
		}
	}
	for p.curIs(token.LBRACKET) && p.peekIs(token.RBRACKET) {
		sb.WriteString("[]")
		p.next()
		p.next()
	}
	if p.curIs(token.QUESTION) {
		sb.WriteString("?")
		p.next()
	}
	return sb.String()
}

// parseJSXExpr is the Pratt-table entry point for JSX appearing in ordinary
// expression position. parseJSXElementOrFragment itself leaves cur on its
// own last token (the element's closing '>' or '/>') so that nested callers
// inside parseJSXChildren can resume raw-text scanning from the exact lexer
// cursor; this entry point does the one extra advance needed to hand back
// to normal expression parsing.
func (p *Parser) parseJSXExpr() ast.Expression {
	el := p.parseJSXElementOrFragment()
	p.next()
	return el
}

func parseIntLiteral(raw string) (int64, error) {
	clean := strings.ReplaceAll(raw, "_", "")
	switch {
	case strings.HasPrefix(clean, "0x"), strings.HasPrefix(clean, "0X"):
		return strconv.ParseInt(clean[2:], 16, 64)
	case strings.HasPrefix(clean, "0b"), strings.HasPrefix(clean, "0B"):
		return strconv.ParseInt(clean[2:], 2, 64)
	case strings.HasPrefix(clean, "0o"), strings.HasPrefix(clean, "0O"):
		return strconv.ParseInt(clean[2:], 8, 64)
	default:
		return strconv.ParseInt(clean, 10, 64)
	}
}

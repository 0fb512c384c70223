package parser

import (
	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/token"
)

// parseTopLevel dispatches on the current token to the block directive or
// shared-scope declaration it introduces. This is the generalization of
// the teacher's outer parser's raw-section dispatch (`<script>`/`<model>`/
// `<service>`) into Tova's five block directives plus shared declarations.
func (p *Parser) parseTopLevel() ast.TopLevel {
	doc := p.takeDoc()
	switch p.cur.Type {
	case token.DOC:
		p.pendingDoc = p.cur.Literal
		p.next()
		return nil
	case token.SHARED:
		return p.parseSharedBlock()
	case token.SERVER:
		return p.parseServerBlock()
	case token.CLIENT:
		return p.parseClientBlock()
	case token.TEST:
		return p.parseTestBlock()
	case token.BENCH:
		return p.parseBenchBlock()
	case token.IMPORT:
		return p.parseImportDeclaration()
	default:
		if decl := p.parseSharedScopeDecl(doc); decl != nil {
			return decl
		}
		p.errorf(p.cur.Pos, "E0200", "unexpected top-level token %s (%q)", p.cur.Type, p.cur.Literal)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseSharedBlock() ast.TopLevel {
	b := &ast.SharedBlock{}
	b.Position = p.cur.Pos
	p.next()
	p.expect(token.LBRACE)
	b.Body = p.parseTopLevelsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return b
}

func (p *Parser) parseServerBlock() ast.TopLevel {
	b := &ast.ServerBlock{}
	b.Position = p.cur.Pos
	p.next()
	if p.curIs(token.IDENT) {
		b.Label = p.cur.Literal
		p.next()
	}
	p.expect(token.LBRACE)
	b.Body = p.parseTopLevelsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return b
}

func (p *Parser) parseClientBlock() ast.TopLevel {
	b := &ast.ClientBlock{}
	b.Position = p.cur.Pos
	p.next()
	if p.curIs(token.IDENT) {
		b.Label = p.cur.Literal
		p.next()
	}
	p.expect(token.LBRACE)
	b.Body = p.parseTopLevelsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return b
}

func (p *Parser) parseTestBlock() ast.TopLevel {
	b := &ast.TestBlock{}
	b.Position = p.cur.Pos
	p.next()
	if p.curIs(token.IDENT) {
		b.Label = p.cur.Literal
		p.next()
	}
	p.expect(token.LBRACE)
	b.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return b
}

func (p *Parser) parseBenchBlock() ast.TopLevel {
	b := &ast.BenchBlock{}
	b.Position = p.cur.Pos
	p.next()
	if p.curIs(token.IDENT) {
		b.Label = p.cur.Literal
		p.next()
	}
	p.expect(token.LBRACE)
	b.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return b
}

// parseTopLevelsUntil parses a sequence of top-level items (declarations,
// server/client-domain blocks) up to (not consuming) the closing token.
func (p *Parser) parseTopLevelsUntil(end token.TokenType) []ast.TopLevel {
	var items []ast.TopLevel
	p.skipNewlines()
	for !p.curIs(end) && !p.curIs(token.EOF) {
		prevLine, prevCol := p.cur.Pos.Line, p.cur.Pos.Column
		item := p.parseTopLevel()
		if item != nil {
			items = append(items, item)
		}
		p.skipNewlines()
		if p.cur.Pos.Line == prevLine && p.cur.Pos.Column == prevCol && !p.curIs(end) && !p.curIs(token.EOF) {
			p.next()
		}
	}
	return items
}

// parseSharedScopeDecl handles the declarations legal in any block body:
// type/interface/trait/impl, fn, let/var/const, and the server/client
// domain declarations recognized by their leading keyword.
func (p *Parser) parseSharedScopeDecl(doc string) ast.TopLevel {
	switch p.cur.Type {
	case token.PUB:
		p.next()
		return p.parsePublicDecl(doc)
	case token.TYPE:
		return p.parseTypeDecl(false, doc)
	case token.INTERFACE, token.TRAIT:
		return p.parseInterfaceDecl(false, doc)
	case token.IMPL:
		return p.parseImplDecl()
	case token.FUNC, token.ASYNC:
		return p.parseFuncDecl(false, doc)
	case token.LET, token.VAR, token.CONST:
		return p.parseVarDecl()
	case token.ROUTE:
		return p.parseRouteDeclaration()
	case token.DB:
		return p.parseDbDeclaration()
	case token.MODEL:
		return p.parseModelDeclaration(false, doc)
	case token.MIDDLEWARE:
		return p.parseMiddlewareDeclaration()
	case token.WEBSOCKET:
		return p.parseWebsocketDeclaration()
	case token.SSE:
		return p.parseSseDeclaration()
	case token.AUTH:
		return p.parseSingletonDecl(singletonAuth)
	case token.CORS:
		return p.parseSingletonDecl(singletonCors)
	case token.RATE_LIMIT:
		return p.parseSingletonDecl(singletonRateLimit)
	case token.SCHEDULE:
		return p.parseScheduleDeclaration()
	case token.JOB:
		return p.parseBackgroundJobDeclaration()
	case token.ON:
		return p.parseLifecycleHookDeclaration()
	case token.SUBSCRIBE:
		return p.parseSubscribeDeclaration()
	case token.STATIC:
		return p.parseStaticDeclaration()
	case token.ENV:
		return p.parseEnvDeclaration()
	case token.SESSION:
		return p.parseSingletonDecl(singletonSession)
	case token.TLS:
		return p.parseSingletonDecl(singletonTLS)
	case token.COMPRESSION:
		return p.parseSingletonDecl(singletonCompression)
	case token.CACHE:
		return p.parseSingletonDecl(singletonCache)
	case token.UPLOAD:
		return p.parseSingletonDecl(singletonUpload)
	case token.MAX_BODY:
		return p.parseMaxBodyDeclaration()
	case token.STATE:
		return p.parseStateDeclaration()
	case token.COMPUTED:
		return p.parseComputedDeclaration()
	case token.EFFECT:
		return p.parseEffectDeclaration()
	case token.COMPONENT:
		return p.parseComponentDeclaration(false, doc)
	case token.STORE:
		return p.parseStoreDeclaration(false, doc)
	default:
		return nil
	}
}

func (p *Parser) parsePublicDecl(doc string) ast.TopLevel {
	switch p.cur.Type {
	case token.TYPE:
		return p.parseTypeDecl(true, doc)
	case token.INTERFACE, token.TRAIT:
		return p.parseInterfaceDecl(true, doc)
	case token.FUNC, token.ASYNC:
		return p.parseFuncDecl(true, doc)
	case token.MODEL:
		return p.parseModelDeclaration(true, doc)
	case token.COMPONENT:
		return p.parseComponentDeclaration(true, doc)
	case token.STORE:
		return p.parseStoreDeclaration(true, doc)
	default:
		p.errorf(p.cur.Pos, "E0201", "'pub' cannot modify %s", p.cur.Type)
		return nil
	}
}

// ---- imports ----

func (p *Parser) parseImportDeclaration() ast.TopLevel {
	d := &ast.ImportDeclaration{}
	d.Position = p.cur.Pos
	p.next()

	if p.curIs(token.ASTERISK) {
		p.next()
		p.expect(token.AS)
		d.Wildcard = p.cur.Literal
		p.next()
	} else if p.curIs(token.LBRACE) {
		p.next()
		p.skipNewlines()
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			spec := ast.ImportSpecifier{Imported: p.cur.Literal, Local: p.cur.Literal}
			p.next()
			if p.curIs(token.AS) {
				p.next()
				spec.Local = p.cur.Literal
				p.next()
			}
			d.Specifiers = append(d.Specifiers, spec)
			p.skipNewlines()
			if p.curIs(token.COMMA) {
				p.next()
				p.skipNewlines()
			}
		}
		p.expect(token.RBRACE)
	} else if p.curIs(token.IDENT) {
		d.Default = p.cur.Literal
		p.next()
	}

	if p.curIs(token.FROM) {
		p.next()
	}
	if p.curIs(token.STRING) {
		d.Path = p.cur.Literal
		p.next()
	}
	return d
}

// ---- type / interface / impl ----

func (p *Parser) parseTypeDecl(public bool, doc string) ast.TopLevel {
	d := &ast.TypeDecl{Public: public, Doc: doc}
	d.Position = p.cur.Pos
	p.next()
	d.Name = p.cur.Literal
	p.next()

	if p.curIs(token.ASSIGN) {
		p.next()
		d.Alias = p.parseExpression(LOWEST)
		return d
	}

	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		variant := ast.TypeVariant{Name: p.cur.Literal}
		p.next()
		if p.curIs(token.LPAREN) {
			p.next()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				name := p.cur.Literal
				p.next()
				p.expect(token.COLON)
				typ := p.parseTypeRef()
				variant.Fields = append(variant.Fields, ast.Param{Name: name, Type: typ})
				if p.curIs(token.COMMA) {
					p.next()
				}
			}
			p.expect(token.RPAREN)
		}
		d.Variants = append(d.Variants, variant)
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseInterfaceDecl(public bool, doc string) ast.TopLevel {
	d := &ast.InterfaceDecl{Public: public, Doc: doc, Kind: strLower(p.cur.Type)}
	d.Position = p.cur.Pos
	p.next()
	d.Name = p.cur.Literal
	p.next()
	// registration-only (SPEC_FULL §9 open question): skip the body verbatim.
	if p.curIs(token.LBRACE) {
		p.skipBalancedBraces()
	}
	return d
}

func (p *Parser) parseImplDecl() ast.TopLevel {
	d := &ast.ImplDecl{}
	d.Position = p.cur.Pos
	p.next()
	first := p.cur.Literal
	p.next()
	if p.curIs(token.FOR) {
		d.InterfaceName = first
		p.next()
		d.TypeName = p.cur.Literal
		p.next()
	} else {
		d.TypeName = first
	}
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if fn, ok := p.parseFuncDecl(false, p.takeDoc()).(*ast.FuncDecl); ok {
			d.Methods = append(d.Methods, fn)
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return d
}

// skipBalancedBraces discards a `{ ... }` span whose internals aren't
// needed (used for registration-only interface/trait bodies).
func (p *Parser) skipBalancedBraces() {
	depth := 0
	for {
		if p.curIs(token.LBRACE) {
			depth++
		} else if p.curIs(token.RBRACE) {
			depth--
			if depth == 0 {
				p.next()
				return
			}
		} else if p.curIs(token.EOF) {
			return
		}
		p.next()
	}
}

func strLower(t token.TokenType) string {
	if t == token.TRAIT {
		return "trait"
	}
	return "interface"
}

// ---- functions and variables ----

func (p *Parser) parseFuncDecl(public bool, doc string) ast.TopLevel {
	d := &ast.FuncDecl{Public: public, Doc: doc}
	d.Position = p.cur.Pos
	if p.curIs(token.ASYNC) {
		d.Async = true
		p.next()
	}
	p.expect(token.FUNC)
	d.Name = p.cur.Literal
	p.next()
	p.expect(token.LPAREN)
	d.Params = p.parseParamList()
	if p.curIs(token.ARROW_THIN) {
		p.next()
		d.ReturnType = p.parseTypeRef()
	}
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseVarDecl() ast.TopLevel {
	d := &ast.VarDecl{Kind: p.cur.Literal}
	d.Position = p.cur.Pos
	p.next()
	d.Target = p.parsePattern()
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

// ---- statement bodies ----

// parseStatementsUntil parses a sequence of statements up to (not
// consuming) the closing token.
func (p *Parser) parseStatementsUntil(end token.TokenType) []ast.Statement {
	var stmts []ast.Statement
	p.skipNewlines()
	for !p.curIs(end) && !p.curIs(token.EOF) {
		prevLine, prevCol := p.cur.Pos.Line, p.cur.Pos.Column
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.skipNewlines()
		if p.cur.Pos.Line == prevLine && p.cur.Pos.Column == prevCol && !p.curIs(end) && !p.curIs(token.EOF) {
			p.next()
		}
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.LET, token.VAR, token.CONST:
		if v, ok := p.parseVarDecl().(*ast.VarDecl); ok {
			return v
		}
		return nil
	case token.FUNC, token.ASYNC:
		if fn, ok := p.parseFuncDecl(false, p.takeDoc()).(*ast.FuncDecl); ok {
			return fn
		}
		return nil
	case token.RETURN:
		return p.parseReturnStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.TRY:
		return p.parseTryStmt()
	case token.MATCH:
		return p.parseMatchStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseReturnStmt() ast.Statement {
	s := &ast.ReturnStmt{}
	s.Position = p.cur.Pos
	p.next()
	if !p.curIs(token.NEWLINE) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		s.Value = p.parseExpression(LOWEST)
	}
	return s
}

func (p *Parser) parseIfStmt() ast.Statement {
	s := &ast.IfStmt{}
	s.Position = p.cur.Pos
	p.next()
	s.Cond = p.parseExpression(LOWEST)
	p.expect(token.LBRACE)
	s.Then = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	for p.curIs(token.ELIF) {
		p.next()
		cond := p.parseExpression(LOWEST)
		p.expect(token.LBRACE)
		body := p.parseStatementsUntil(token.RBRACE)
		p.expect(token.RBRACE)
		s.Elif = append(s.Elif, ast.ElifClause{Cond: cond, Body: body})
	}
	if p.curIs(token.ELSE) {
		p.next()
		p.expect(token.LBRACE)
		s.Else = p.parseStatementsUntil(token.RBRACE)
		p.expect(token.RBRACE)
	}
	return s
}

func (p *Parser) parseForStmt() ast.Statement {
	s := &ast.ForStmt{}
	s.Position = p.cur.Pos
	p.next()
	s.Binding = p.parsePattern()
	p.expect(token.IN)
	s.Iter = p.parseExpression(LOWEST)
	p.expect(token.LBRACE)
	s.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return s
}

func (p *Parser) parseWhileStmt() ast.Statement {
	s := &ast.WhileStmt{}
	s.Position = p.cur.Pos
	p.next()
	s.Cond = p.parseExpression(LOWEST)
	p.expect(token.LBRACE)
	s.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return s
}

func (p *Parser) parseTryStmt() ast.Statement {
	s := &ast.TryStmt{}
	s.Position = p.cur.Pos
	p.next()
	p.expect(token.LBRACE)
	s.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	if p.curIs(token.CATCH) {
		p.next()
		if p.curIs(token.LPAREN) {
			p.next()
			s.CatchParam = p.cur.Literal
			p.next()
			p.expect(token.RPAREN)
		}
		p.expect(token.LBRACE)
		s.Catch = p.parseStatementsUntil(token.RBRACE)
		p.expect(token.RBRACE)
	}
	return s
}

func (p *Parser) parseMatchStmt() ast.Statement {
	s := &ast.MatchStmt{}
	s.Position = p.cur.Pos
	p.next()
	s.Subject = p.parseExpression(LOWEST)
	p.expect(token.LBRACE)
	p.skipNewlines()
	var exprArms []ast.MatchExprArm
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		pat := p.parsePattern()
		var guard ast.Expression
		if p.curIs(token.IF) {
			p.next()
			guard = p.parseExpression(LOWEST)
		}
		p.expect(token.ARROW_FAT)
		if !p.curIs(token.LBRACE) {
			val := p.parseExpression(LOWEST)
			exprArms = append(exprArms, ast.MatchExprArm{Pattern: pat, Guard: guard, Value: val})
			s.Arms = append(s.Arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: []ast.Statement{&ast.ExprStmt{X: val}}})
		} else {
			p.next()
			body := p.parseStatementsUntil(token.RBRACE)
			p.expect(token.RBRACE)
			s.Arms = append(s.Arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		}
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	if len(exprArms) > 0 && len(exprArms) == len(s.Arms) {
		m := &ast.MatchExpr{Subject: s.Subject, Arms: exprArms}
		m.Position = s.Position
		es := &ast.ExprStmt{X: m}
		es.Position = s.Position
		return es
	}
	return s
}

var assignOps = map[token.TokenType]string{
	token.ASSIGN:    "=",
	token.PLUS_EQ:   "+=",
	token.MINUS_EQ:  "-=",
	token.STAR_EQ:   "*=",
	token.SLASH_EQ:  "/=",
	token.PLUS_PLUS: "++",
}

func (p *Parser) parseExprOrAssignStmt() ast.Statement {
	pos := p.cur.Pos
	x := p.parseExpression(LOWEST)
	if op, ok := assignOps[p.cur.Type]; ok {
		s := &ast.AssignStmt{Target: x, Op: op}
		s.Position = pos
		if op != "++" {
			p.next()
			s.Value = p.parseExpression(LOWEST)
		} else {
			p.next()
		}
		return s
	}
	s := &ast.ExprStmt{X: x}
	s.Position = pos
	return s
}

package parser

import (
	"github.com/btouchard/tova/internal/compiler/ast"
	"github.com/btouchard/tova/internal/compiler/token"
)

var httpMethods = map[token.TokenType]string{
	token.GET: "GET", token.POST: "POST", token.PUT: "PUT", token.DELETE: "DELETE",
	token.PATCH: "PATCH", token.HEAD: "HEAD", token.OPTIONS: "OPTIONS",
}

func (p *Parser) parseRouteDeclaration() ast.TopLevel {
	pos := p.cur.Pos
	p.next()

	if p.curIs(token.STRING) {
		return p.parseRouteGroup(pos)
	}

	method, ok := httpMethods[p.cur.Type]
	if !ok {
		p.errorf(p.cur.Pos, "E0500", "expected an HTTP method after 'route', got %s", p.cur.Type)
		method = "GET"
	} else {
		p.next()
	}
	return p.finishRouteDeclaration(pos, method)
}

func (p *Parser) finishRouteDeclaration(pos token.Position, method string) *ast.RouteDeclaration {
	r := &ast.RouteDeclaration{Method: method}
	r.Position = pos
	if p.curIs(token.STRING) {
		r.Path = p.cur.Literal
		p.next()
	}
	p.expect(token.LPAREN)
	r.Params = p.parseParamList()
	p.expect(token.LBRACE)
	r.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return r
}

// parseRouteGroup parses `route "/api/v1" { middleware(auth) route GET ... }`.
func (p *Parser) parseRouteGroup(pos token.Position) ast.TopLevel {
	g := &ast.RouteGroupDeclaration{Prefix: p.cur.Literal}
	g.Position = pos
	p.next()
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.MIDDLEWARE) {
			p.next()
			p.expect(token.LPAREN)
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				g.Middleware = append(g.Middleware, p.cur.Literal)
				p.next()
				if p.curIs(token.COMMA) {
					p.next()
				}
			}
			p.expect(token.RPAREN)
		} else if p.curIs(token.ROUTE) {
			rPos := p.cur.Pos
			p.next()
			method, ok := httpMethods[p.cur.Type]
			if ok {
				p.next()
			}
			g.Routes = append(g.Routes, p.finishRouteDeclaration(rPos, method))
		} else {
			p.next()
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return g
}

func (p *Parser) parseDbDeclaration() ast.TopLevel {
	d := &ast.DbDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		key := p.cur.Literal
		p.next()
		p.expect(token.COLON)
		val := p.parseExpression(LOWEST)
		switch key {
		case "driver":
			if lit, ok := val.(*ast.StringLit); ok && len(lit.Parts) == 1 {
				d.Driver = lit.Parts[0].Literal
			}
		case "url":
			d.URL = val
		}
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return d
}

// parseModelDeclaration parses `model Task { title: String @min(3) @max(255) }`,
// generalized from the teacher's ParseModelDecl/parseFieldDecl safety-progress
// loop idiom.
func (p *Parser) parseModelDeclaration(public bool, doc string) ast.TopLevel {
	m := &ast.ModelDeclaration{Public: public, Doc: doc}
	m.Position = p.cur.Pos
	p.next()
	m.Name = p.cur.Literal
	p.next()
	p.expect(token.LBRACE)
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		prevLine, prevCol := p.cur.Pos.Line, p.cur.Pos.Column
		m.Fields = append(m.Fields, p.parseFieldDecl())
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
		if p.cur.Pos.Line == prevLine && p.cur.Pos.Column == prevCol && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return m
}

func (p *Parser) parseFieldDecl() ast.FieldDecl {
	f := ast.FieldDecl{Name: p.cur.Literal}
	f.Position = p.cur.Pos
	p.next()
	p.expect(token.COLON)
	f.Type = p.parseTypeRef()
	for p.curIs(token.AT) {
		f.Annotations = append(f.Annotations, p.parseAnnotation())
	}
	return f
}

// parseAnnotationCallExpr parses `@env("DATABASE_URL")` and similar bare
// `@name`/`@name(args)` forms used in expression position, e.g. a db
// singleton's `url: @env("DATABASE_URL")`. Field-suffix annotations
// (`id: String @pk`) are parsed separately by parseAnnotation.
func (p *Parser) parseAnnotationCallExpr() ast.Expression {
	pos := p.cur.Pos
	p.next() // consume '@'
	e := &ast.AnnotationCallExpr{Name: p.cur.Literal}
	e.Position = pos
	p.next()
	if p.curIs(token.LPAREN) {
		p.next()
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			e.Args = append(e.Args, p.parseExpression(LOWEST))
			if p.curIs(token.COMMA) {
				p.next()
			}
		}
		p.expect(token.RPAREN)
	}
	return e
}

// parseAnnotation parses `@pk`, `@default(uuid_v4)`, `@relation(references: [id])`,
// grounded on the teacher's ParseAnnotation/parseAnnotationArgs.
func (p *Parser) parseAnnotation() ast.Annotation {
	p.next() // consume '@'
	ann := ast.Annotation{Name: p.cur.Literal}
	p.next()
	if p.curIs(token.LPAREN) {
		p.next()
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			ann.Args = append(ann.Args, p.parseExpression(LOWEST))
			if p.curIs(token.COMMA) {
				p.next()
			}
		}
		p.expect(token.RPAREN)
	}
	return ann
}

func (p *Parser) parseMiddlewareDeclaration() ast.TopLevel {
	d := &ast.MiddlewareDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	d.Name = p.cur.Literal
	p.next()
	p.expect(token.LPAREN)
	d.Params = p.parseParamList()
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseWebsocketDeclaration() ast.TopLevel {
	d := &ast.WebsocketDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	if p.curIs(token.STRING) {
		d.Path = p.cur.Literal
		p.next()
	}
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseSseDeclaration() ast.TopLevel {
	d := &ast.SseDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	if p.curIs(token.STRING) {
		d.Path = p.cur.Literal
		p.next()
	}
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

type singletonKind int

const (
	singletonAuth singletonKind = iota
	singletonCors
	singletonRateLimit
	singletonSession
	singletonTLS
	singletonCompression
	singletonCache
	singletonUpload
)

// parseSingletonDecl parses any of the small `kw { field: value, ... }`
// server configuration singletons; their schemas are tiny and server-specific
// so one shared parse routine covers all of them (auth/cors/rate_limit/
// session/tls/compression/cache/upload).
func (p *Parser) parseSingletonDecl(kind singletonKind) ast.TopLevel {
	pos := p.cur.Pos
	p.next()
	fields := p.parseObjectFieldsBlock()

	switch kind {
	case singletonAuth:
		d := &ast.AuthDeclaration{Fields: fields}
		d.Position = pos
		return d
	case singletonCors:
		d := &ast.CorsDeclaration{Fields: fields}
		d.Position = pos
		return d
	case singletonRateLimit:
		d := &ast.RateLimitDeclaration{Fields: fields}
		d.Position = pos
		return d
	case singletonSession:
		d := &ast.SessionDeclaration{Fields: fields}
		d.Position = pos
		return d
	case singletonTLS:
		d := &ast.TLSDeclaration{Fields: fields}
		d.Position = pos
		return d
	case singletonCompression:
		d := &ast.CompressionDeclaration{Fields: fields}
		d.Position = pos
		return d
	case singletonCache:
		d := &ast.CacheDeclaration{Fields: fields}
		d.Position = pos
		return d
	default:
		d := &ast.UploadDeclaration{Fields: fields}
		d.Position = pos
		return d
	}
}

func (p *Parser) parseObjectFieldsBlock() []ast.ObjectField {
	p.expect(token.LBRACE)
	p.skipNewlines()
	var fields []ast.ObjectField
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		key := p.cur.Literal
		p.next()
		p.expect(token.COLON)
		val := p.parseExpression(LOWEST)
		fields = append(fields, ast.ObjectField{Key: key, Value: val})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return fields
}

func (p *Parser) parseScheduleDeclaration() ast.TopLevel {
	d := &ast.ScheduleDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	if p.curIs(token.STRING) {
		d.Cron = p.cur.Literal
		p.next()
	}
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseBackgroundJobDeclaration() ast.TopLevel {
	d := &ast.BackgroundJobDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	if p.curIs(token.STRING) {
		d.Name = p.cur.Literal
		p.next()
	}
	p.expect(token.LPAREN)
	d.Params = p.parseParamList()
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseLifecycleHookDeclaration() ast.TopLevel {
	d := &ast.LifecycleHookDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	d.Event = p.cur.Literal
	p.next()
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseSubscribeDeclaration() ast.TopLevel {
	d := &ast.SubscribeDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	if p.curIs(token.STRING) {
		d.Topic = p.cur.Literal
		p.next()
	}
	p.expect(token.LBRACE)
	d.Body = p.parseStatementsUntil(token.RBRACE)
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) parseStaticDeclaration() ast.TopLevel {
	d := &ast.StaticDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	if p.curIs(token.STRING) {
		d.Path = p.cur.Literal
		p.next()
	}
	if p.curIs(token.ARROW_THIN) {
		p.next()
	}
	if p.curIs(token.STRING) {
		d.Dir = p.cur.Literal
		p.next()
	}
	return d
}

func (p *Parser) parseEnvDeclaration() ast.TopLevel {
	d := &ast.EnvDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	d.Name = p.cur.Literal
	p.next()
	if p.curIs(token.QUESTION) {
		d.Optional = true
		p.next()
	}
	if p.curIs(token.COLON) {
		p.next()
		d.Type = p.parseTypeRef()
	}
	return d
}

func (p *Parser) parseMaxBodyDeclaration() ast.TopLevel {
	d := &ast.MaxBodyDeclaration{}
	d.Position = p.cur.Pos
	p.next()
	p.expect(token.COLON)
	d.Limit = p.parseExpression(LOWEST)
	return d
}

// Package parser builds an ast.Stmt slice from a token stream. Like
// internal/lexer, it is an external collaborator per spec.md §1: the IR
// generator only ever reads its output.
package parser

import (
	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/diag"
	"github.com/xyproto/furnc/internal/token"
)

// Parser consumes a flat token slice with one token of lookahead.
type Parser struct {
	file string
	toks []token.Token
	pos  int
}

func New(fileName string, toks []token.Token) *Parser {
	return &Parser{file: fileName, toks: toks}
}

func (p *Parser) loc() diag.Location {
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return diag.Location{File: p.file, Line: t.Line, Column: t.Column}
	}
	return diag.Location{File: p.file}
}

func (p *Parser) peek() (token.Token, bool) {
	if p.pos >= len(p.toks) {
		return token.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *Parser) isToken(k token.Kind) bool {
	t, ok := p.peek()
	return ok && t.Is(k)
}

func (p *Parser) matchToken(k token.Kind) (token.Token, bool) {
	if p.isToken(k) {
		t := p.toks[p.pos]
		p.pos++
		return t, true
	}
	return token.Token{}, false
}

func (p *Parser) matchTerminator() bool {
	_, ok := p.matchToken(token.Semicolon)
	return ok
}

func (p *Parser) expectToken(k token.Kind) error {
	if _, ok := p.matchToken(k); ok {
		return nil
	}
	got := "end of file"
	if t, ok := p.peek(); ok {
		got = t.String()
	}
	return diag.ParseError(p.loc(), "expected %s, got %s", k, got)
}

func (p *Parser) expectTerminator() error {
	if p.matchTerminator() {
		return nil
	}
	return diag.ParseError(p.loc(), "expected terminator ';'")
}

func (p *Parser) parseName() (string, diag.Location, error) {
	t, ok := p.peek()
	if !ok || t.Tag != token.TagIdent {
		return "", p.loc(), diag.ParseError(p.loc(), "expected a name")
	}
	p.pos++
	return t.Ident, diag.Location{File: p.file, Line: t.Line, Column: t.Column}, nil
}

// Parse consumes every token into a top-level statement list.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		if _, ok := p.peek(); !ok {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	loc := p.loc()

	switch {
	case func() bool { _, ok := p.matchToken(token.Let); return ok }():
		return p.parseConstDecl(loc, false)

	case func() bool { _, ok := p.matchToken(token.Var); return ok }():
		return p.parseVarDecl(loc, false)

	case func() bool { _, ok := p.matchToken(token.Public); return ok }():
		if _, ok := p.matchToken(token.Var); ok {
			return p.parseVarDecl(loc, true)
		}
		p.matchToken(token.Let)
		return p.parseConstDecl(loc, true)

	case func() bool { _, ok := p.matchToken(token.Package); return ok }():
		name, nameLoc, err := p.parseName()
		if err != nil {
			return nil, err
		}
		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
		return &ast.PackageDecl{Name: name, Location: nameLoc}, nil

	default:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		isFinal := false
		switch {
		case p.isToken(token.CBrace):
			isFinal = true
		case ast.IsBlock(expr):
			p.matchTerminator()
		default:
			if err := p.expectTerminator(); err != nil {
				return nil, err
			}
		}

		return &ast.ExprStmt{Expr: expr, Final: isFinal, Location: loc}, nil
	}
}

// parseTypeAnnotation parses an optional `: u64` / `: str` type annotation,
// returning nil, nil if none is present.
func (p *Parser) parseTypeAnnotation() (ast.Expr, error) {
	if _, ok := p.matchToken(token.Colon); !ok {
		return nil, nil
	}
	loc := p.loc()
	if _, ok := p.matchToken(token.TypeUInt64); ok {
		return &ast.TypeUInt64{Location: loc}, nil
	}
	if _, ok := p.matchToken(token.TypeString); ok {
		return &ast.TypeString{Location: loc}, nil
	}
	return nil, diag.ParseError(loc, "expected a type after ':'")
}

func (p *Parser) parseConstDecl(loc diag.Location, isExported bool) (ast.Stmt, error) {
	name, _, err := p.parseName()
	if err != nil {
		return nil, err
	}

	typ, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}

	decl := ast.Decl{Name: name, Type: typ, IsExported: isExported, Location: loc}

	if p.matchTerminator() {
		return &ast.ConstDecl{Decl: decl}, nil
	}
	if _, ok := p.matchToken(token.Equal); ok {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if ast.IsBlock(expr) {
			p.matchTerminator()
		} else if err := p.expectTerminator(); err != nil {
			return nil, err
		}
		decl.Init = expr
		return &ast.ConstDecl{Decl: decl}, nil
	}
	return nil, diag.ParseError(p.loc(), "expected one of ';', ':' or '='")
}

func (p *Parser) parseVarDecl(loc diag.Location, isExported bool) (ast.Stmt, error) {
	name, _, err := p.parseName()
	if err != nil {
		return nil, err
	}

	typ, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}

	decl := ast.Decl{Name: name, Type: typ, IsExported: isExported, Location: loc}

	if p.matchTerminator() {
		return &ast.VarDecl{Decl: decl}, nil
	}
	if _, ok := p.matchToken(token.Equal); ok {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if ast.IsBlock(expr) {
			p.matchTerminator()
		} else if err := p.expectTerminator(); err != nil {
			return nil, err
		}
		decl.Init = expr
		return &ast.VarDecl{Decl: decl}, nil
	}
	return nil, diag.ParseError(p.loc(), "expected one of ';', ':' or '='")
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	loc := p.loc()

	switch {
	case func() bool { _, ok := p.matchToken(token.OParen); return ok }():
		if err := p.expectToken(token.CParen); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Function{Body: body, Location: loc}, nil

	case func() bool { _, ok := p.matchToken(token.OBrace); return ok }():
		return p.parseBlockBody(loc)

	default:
		t, ok := p.peek()
		if !ok {
			return nil, diag.ParseError(loc, "expected an expression")
		}
		switch t.Tag {
		case token.TagIntLiteral:
			p.pos++
			return &ast.IntLit{Value: t.Int, Location: loc}, nil
		case token.TagStringLiteral:
			p.pos++
			return &ast.StringLit{Value: t.Str, Location: loc}, nil
		case token.TagIdent:
			p.pos++
			return p.parseCallOrVariable(t.Ident, loc)
		}
		if t.Is(token.TypeUInt64) {
			p.pos++
			return &ast.TypeUInt64{Location: loc}, nil
		}
		if t.Is(token.TypeString) {
			p.pos++
			return &ast.TypeString{Location: loc}, nil
		}
		return nil, diag.ParseError(loc, "unexpected token %s", t)
	}
}

// parseCallOrVariable handles `name` vs `name(args...)`. The grammar in
// spec.md §6.1 only names `Call(callee: Expr, args: [Expr])` without
// pinning down concrete call syntax; we use ordinary C-like parens,
// matching the teacher's own call-expression surface.
func (p *Parser) parseCallOrVariable(name string, loc diag.Location) (ast.Expr, error) {
	variable := &ast.Variable{Name: name, Location: loc}

	if _, ok := p.matchToken(token.OParen); !ok {
		return variable, nil
	}

	var args []ast.Expr
	if !p.isToken(token.CParen) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if _, ok := p.matchToken(token.Comma); !ok {
				break
			}
		}
	}
	if err := p.expectToken(token.CParen); err != nil {
		return nil, err
	}

	return &ast.Call{Callee: variable, Args: args, Location: loc}, nil
}

func (p *Parser) parseBlockBody(loc diag.Location) (ast.Expr, error) {
	var body []ast.Stmt
	var tail ast.Expr

	for {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		if _, ok := p.matchToken(token.CBrace); ok {
			if es, ok := stmt.(*ast.ExprStmt); ok && es.Final {
				tail = es.Expr
			} else {
				body = append(body, stmt)
			}
			break
		}
		body = append(body, stmt)
	}

	return &ast.Block{Stmts: body, Tail: tail, Location: loc}, nil
}

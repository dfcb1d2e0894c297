// Package parser implements the recursive-descent declaration/statement
// grammar and the Pratt expression parser over the token stream produced by
// internal/lexer (spec §4.3). It never reaches for a parser-combinator
// library: the grammar is hand-written exactly the way kanso's
// internal/parser/parser_helper.go and parser_pratt.go front end is.
package parser

import (
	"ccaot/internal/ast"
	"ccaot/internal/diag"
	"ccaot/internal/token"
)

// Parser walks a flat token slice with fixed-offset lookahead (peek/peekAt,
// up to three tokens ahead), the same shape as kanso's hand-rolled front end.
type Parser struct {
	file string
	toks []token.Token
	cur  int
}

// New builds a Parser over an already-scanned token stream.
func New(file string, toks []token.Token) *Parser {
	return &Parser{file: file, toks: toks}
}

// Parse consumes the entire token stream and returns the top-level
// declaration list, or the first diag.Error encountered.
func Parse(file string, toks []token.Token) (*ast.Program, *diag.Error) {
	p := New(file, toks)
	var decls []ast.Decl
	for !p.atEnd() {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return &ast.Program{Decls: decls}, nil
}

func (p *Parser) peek() token.Token {
	if p.cur >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.cur]
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.cur + n
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) previous() token.Token {
	if p.cur == 0 {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.cur-1]
}

func (p *Parser) atEnd() bool { return p.peek().Kind == token.EOF }

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.peek()
	if !p.atEnd() {
		p.cur++
	}
	return t
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) curPos() ast.Position {
	t := p.peek()
	return ast.Position{Line: t.Line, Column: t.Column}
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, *diag.Error) {
	if p.check(k) {
		return p.advance(), nil
	}
	got := p.peek()
	return token.Token{}, diag.New(diag.StageParser, diag.PARSE_UNEXPECTED_TOKEN,
		diag.Position{File: p.file, Line: got.Line, Column: got.Column},
		"%s, found %q", what, got.Lexeme)
}

func (p *Parser) errUnexpected(what string) *diag.Error {
	got := p.peek()
	return diag.New(diag.StageParser, diag.PARSE_UNEXPECTED_TOKEN,
		diag.Position{File: p.file, Line: got.Line, Column: got.Column},
		"%s, found %q", what, got.Lexeme)
}

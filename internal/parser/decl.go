package parser

import (
	"ccaot/internal/ast"
	"ccaot/internal/diag"
	"ccaot/internal/token"
)

// startsNestedTypeDecl reports whether the current position begins a
// struct/union/enum *declaration* (a tag, or no tag, immediately followed by
// "{") rather than a type-use of an already-declared tag.
func (p *Parser) startsNestedTypeDecl() bool {
	switch p.peek().Kind {
	case token.KW_STRUCT, token.KW_UNION, token.KW_ENUM:
		if p.peekAt(1).Kind == token.LBRACE {
			return true
		}
		if p.peekAt(1).Kind == token.IDENT && p.peekAt(2).Kind == token.LBRACE {
			return true
		}
	}
	return false
}

// startsTypeUse reports whether the current position begins a type
// specifier that is a *use* of a type (primitive keyword, or a tagged
// struct/union/enum reference), the lead-in to a variable or function
// declaration.
func (p *Parser) startsTypeUse() bool {
	if token.IsPrimitiveKeyword(p.peek().Kind) {
		return true
	}
	switch p.peek().Kind {
	case token.KW_STRUCT, token.KW_UNION, token.KW_ENUM:
		return !p.startsNestedTypeDecl()
	}
	return false
}

// parseDecl parses one top-level declaration: a struct/union/enum
// declaration, or a type-specifier-led variable or function declaration
// (spec §4.3).
func (p *Parser) parseDecl() (ast.Decl, *diag.Error) {
	if p.startsNestedTypeDecl() {
		switch p.peek().Kind {
		case token.KW_STRUCT:
			return p.parseStructDecl()
		case token.KW_UNION:
			return p.parseUnionDecl()
		default:
			return p.parseEnumDecl()
		}
	}

	pos := p.curPos()
	baseType, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "expected declarator name")
	if err != nil {
		return nil, err
	}
	if p.check(token.LPAREN) {
		return p.parseFunctionDeclRest(pos, baseType, nameTok.Lexeme)
	}
	return p.parseVarDeclRest(pos, baseType, nameTok.Lexeme)
}

// parseTypeSpecifier consumes a primitive keyword or a "struct|union|enum
// Tag" type-use, followed by any number of pointer "*" suffixes, and
// returns the canonical type string (spec §3).
func (p *Parser) parseTypeSpecifier() (string, *diag.Error) {
	var base string
	switch {
	case p.match(token.KW_INT):
		base = "int"
	case p.match(token.KW_FLOAT):
		base = "float"
	case p.match(token.KW_CHAR):
		base = "char"
	case p.match(token.KW_DOUBLE):
		base = "double"
	case p.match(token.KW_BOOL):
		base = "bool"
	case p.match(token.KW_VOID):
		base = "void"
	case p.match(token.KW_STRUCT):
		tagTok, err := p.expect(token.IDENT, "expected struct tag")
		if err != nil {
			return "", err
		}
		base = "struct " + tagTok.Lexeme
	case p.match(token.KW_UNION):
		tagTok, err := p.expect(token.IDENT, "expected union tag")
		if err != nil {
			return "", err
		}
		base = "union " + tagTok.Lexeme
	case p.match(token.KW_ENUM):
		tagTok, err := p.expect(token.IDENT, "expected enum tag")
		if err != nil {
			return "", err
		}
		base = "enum " + tagTok.Lexeme
	default:
		return "", p.errUnexpected("expected a type specifier")
	}
	for p.match(token.STAR) {
		base += "*"
	}
	return base, nil
}

func (p *Parser) parseArrayDims() ([]ast.Expr, *diag.Error) {
	var dims []ast.Expr
	for p.check(token.LBRACKET) {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET, "expected ']'"); err != nil {
			return nil, err
		}
		dims = append(dims, e)
	}
	return dims, nil
}

func (p *Parser) parseInitializer() (ast.Expr, *diag.Error) {
	if p.check(token.LBRACE) {
		pos := p.curPos()
		p.advance()
		var elems []ast.Expr
		if !p.check(token.RBRACE) {
			for {
				e, err := p.parseAssignment()
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
				if !p.match(token.COMMA) {
					break
				}
				if p.check(token.RBRACE) {
					break
				}
			}
		}
		if _, err := p.expect(token.RBRACE, "expected '}' to close initializer list"); err != nil {
			return nil, err
		}
		return &ast.InitListExpr{P: pos, Elements: elems}, nil
	}
	return p.parseAssignment()
}

func (p *Parser) parseFunctionDeclRest(pos ast.Position, retType, name string) (ast.Decl, *diag.Error) {
	p.advance() // '('
	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			pt, err := p.parseTypeSpecifier()
			if err != nil {
				return nil, err
			}
			pnTok, err := p.expect(token.IDENT, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Type: pt, Name: pnTok.Lexeme})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after parameter list"); err != nil {
		return nil, err
	}
	if p.match(token.SEMICOLON) {
		return &ast.FuncDecl{P: pos, ReturnType: retType, Name: name, Params: params, Body: nil}, nil
	}
	body, err := p.parseCompoundStmt()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{P: pos, ReturnType: retType, Name: name, Params: params, Body: body}, nil
}

// parseVarDeclRest parses the remainder of a variable declaration after its
// type and first declarator name, returning either a single *ast.VarDecl or
// an *ast.MultiVarDecl when further comma-separated declarators follow
// (spec §3's "multi-variable" declarator list).
func (p *Parser) parseVarDeclRest(pos ast.Position, baseType, name string) (ast.Decl, *diag.Error) {
	dims, err := p.parseArrayDims()
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(token.ASSIGN) {
		init, err = p.parseInitializer()
		if err != nil {
			return nil, err
		}
	}
	first := &ast.VarDecl{P: pos, Type: baseType, Name: name, Dims: dims, Init: init}

	if !p.check(token.COMMA) {
		if _, err := p.expect(token.SEMICOLON, "expected ';' after declaration"); err != nil {
			return nil, err
		}
		return first, nil
	}

	vars := []*ast.VarDecl{first}
	for p.match(token.COMMA) {
		npos := p.curPos()
		nTok, err := p.expect(token.IDENT, "expected declarator name")
		if err != nil {
			return nil, err
		}
		ndims, err := p.parseArrayDims()
		if err != nil {
			return nil, err
		}
		var ninit ast.Expr
		if p.match(token.ASSIGN) {
			ninit, err = p.parseInitializer()
			if err != nil {
				return nil, err
			}
		}
		vars = append(vars, &ast.VarDecl{P: npos, Type: baseType, Name: nTok.Lexeme, Dims: ndims, Init: ninit})
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after declaration"); err != nil {
		return nil, err
	}
	return &ast.MultiVarDecl{P: pos, Vars: vars}, nil
}

func (p *Parser) parseMember() (ast.Member, *diag.Error) {
	typ, err := p.parseTypeSpecifier()
	if err != nil {
		return ast.Member{}, err
	}
	nameTok, err := p.expect(token.IDENT, "expected member name")
	if err != nil {
		return ast.Member{}, err
	}
	dims, err := p.parseArrayDims()
	if err != nil {
		return ast.Member{}, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after member"); err != nil {
		return ast.Member{}, err
	}
	return ast.Member{Type: typ, Name: nameTok.Lexeme, Dims: dims}, nil
}

func (p *Parser) parseStructDecl() (ast.Decl, *diag.Error) {
	pos := p.curPos()
	p.advance() // 'struct'
	tag := ""
	if p.check(token.IDENT) {
		tag = p.advance().Lexeme
	}
	if _, err := p.expect(token.LBRACE, "expected '{' after struct tag"); err != nil {
		return nil, err
	}
	var members []ast.Member
	for !p.check(token.RBRACE) && !p.atEnd() {
		m, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if _, err := p.expect(token.RBRACE, "expected '}' to close struct"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after struct declaration"); err != nil {
		return nil, err
	}
	return &ast.StructDecl{P: pos, Tag: tag, Members: members}, nil
}

func (p *Parser) parseUnionDecl() (ast.Decl, *diag.Error) {
	pos := p.curPos()
	p.advance() // 'union'
	tag := ""
	if p.check(token.IDENT) {
		tag = p.advance().Lexeme
	}
	if _, err := p.expect(token.LBRACE, "expected '{' after union tag"); err != nil {
		return nil, err
	}
	var members []ast.Member
	for !p.check(token.RBRACE) && !p.atEnd() {
		m, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if _, err := p.expect(token.RBRACE, "expected '}' to close union"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after union declaration"); err != nil {
		return nil, err
	}
	return &ast.UnionDecl{P: pos, Tag: tag, Members: members}, nil
}

func (p *Parser) parseEnumDecl() (ast.Decl, *diag.Error) {
	pos := p.curPos()
	p.advance() // 'enum'
	tag := ""
	if p.check(token.IDENT) {
		tag = p.advance().Lexeme
	}
	if _, err := p.expect(token.LBRACE, "expected '{' after enum tag"); err != nil {
		return nil, err
	}
	// Enumerator values are folded and assigned running defaults during
	// semantic analysis (spec §4.4), not here: the grammar only records each
	// enumerator's name and its raw initializer expression, if any.
	var items []ast.EnumItem
	if !p.check(token.RBRACE) {
		for {
			nameTok, err := p.expect(token.IDENT, "expected enumerator name")
			if err != nil {
				return nil, err
			}
			var explicit ast.Expr
			if p.match(token.ASSIGN) {
				explicit, err = p.parseAssignment()
				if err != nil {
					return nil, err
				}
			}
			items = append(items, ast.EnumItem{Name: nameTok.Lexeme, Explicit: explicit})
			if !p.match(token.COMMA) {
				break
			}
			if p.check(token.RBRACE) {
				break
			}
		}
	}
	if _, err := p.expect(token.RBRACE, "expected '}' to close enum"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after enum declaration"); err != nil {
		return nil, err
	}
	return &ast.EnumDecl{P: pos, Tag: tag, Items: items}, nil
}

package parser

import (
	"ccaot/internal/ast"
	"ccaot/internal/diag"
	"ccaot/internal/token"
)

func (p *Parser) parseCompoundStmt() (*ast.CompoundStmt, *diag.Error) {
	pos := p.curPos()
	if _, err := p.expect(token.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.atEnd() {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(token.RBRACE, "expected '}' to close compound statement"); err != nil {
		return nil, err
	}
	return &ast.CompoundStmt{P: pos, Stmts: stmts}, nil
}

// parseLocalVarDeclStmt parses a type-specifier-led declaration inside a
// statement context, where only the variable form (never a function) is
// legal.
func (p *Parser) parseLocalVarDeclStmt() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	baseType, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "expected declarator name")
	if err != nil {
		return nil, err
	}
	d, err := p.parseVarDeclRest(pos, baseType, nameTok.Lexeme)
	if err != nil {
		return nil, err
	}
	switch v := d.(type) {
	case *ast.VarDecl:
		return &ast.VarDeclStmt{P: pos, Vars: []*ast.VarDecl{v}}, nil
	case *ast.MultiVarDecl:
		return &ast.VarDeclStmt{P: pos, Vars: v.Vars}, nil
	}
	return nil, p.errUnexpected("expected a variable declaration")
}

func (p *Parser) parseStmt() (ast.Stmt, *diag.Error) {
	pos := p.curPos()

	switch {
	case p.check(token.LBRACE):
		return p.parseCompoundStmt()

	case p.check(token.KW_IF):
		return p.parseIfStmt()

	case p.check(token.KW_WHILE):
		return p.parseWhileStmt()

	case p.check(token.KW_FOR):
		return p.parseForStmt()

	case p.check(token.KW_SWITCH):
		return p.parseSwitchStmt()

	case p.check(token.KW_RETURN):
		p.advance()
		if p.match(token.SEMICOLON) {
			return &ast.ReturnStmt{P: pos, Value: nil}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "expected ';' after return value"); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{P: pos, Value: e}, nil

	case p.check(token.KW_BREAK):
		p.advance()
		if _, err := p.expect(token.SEMICOLON, "expected ';' after 'break'"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{P: pos}, nil

	case p.check(token.KW_CONTINUE):
		p.advance()
		if _, err := p.expect(token.SEMICOLON, "expected ';' after 'continue'"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{P: pos}, nil

	case p.startsNestedTypeDecl():
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{P: pos, Decl: d}, nil

	case p.startsTypeUse():
		return p.parseLocalVarDeclStmt()

	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "expected ';' after expression"); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{P: pos, X: x}, nil
	}
}

func (p *Parser) parseIfStmt() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance() // 'if'
	if _, err := p.expect(token.LPAREN, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.match(token.KW_ELSE) {
		els, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{P: pos, Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance() // 'while'
	if _, err := p.expect(token.LPAREN, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{P: pos, Cond: cond, Body: body}, nil
}

// parseForStmt parses "for ( init; cond?; post? ) body". An absent
// condition is represented as a literal true, so the body always runs at
// least once its first iteration (spec §4.3's "for(;;)" edge case).
func (p *Parser) parseForStmt() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance() // 'for'
	if _, err := p.expect(token.LPAREN, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var init ast.Stmt
	switch {
	case p.check(token.SEMICOLON):
		p.advance()
	case p.startsTypeUse():
		var err *diag.Error
		init, err = p.parseLocalVarDeclStmt()
		if err != nil {
			return nil, err
		}
	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "expected ';' after for-init"); err != nil {
			return nil, err
		}
		init = &ast.ExprStmt{P: pos, X: x}
	}

	var cond ast.Expr
	if p.check(token.SEMICOLON) {
		cond = &ast.BoolLit{P: p.curPos(), Value: true}
	} else {
		var err *diag.Error
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after for-condition"); err != nil {
		return nil, err
	}

	var post ast.Stmt
	if !p.check(token.RPAREN) {
		ppos := p.curPos()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		post = &ast.ExprStmt{P: ppos, X: x}
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after for-clauses"); err != nil {
		return nil, err
	}

	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{P: pos, Init: init, Cond: cond, Post: post, Body: body}, nil
}

// parseSwitchStmt groups consecutive case/default labels that share one
// body (spec §4.3). The body is every statement up to the next label or the
// closing "}", wrapped in a CompoundStmt unless there is exactly one;
// fall-through between bodies is a lowering concern, not a parse-time one.
func (p *Parser) parseSwitchStmt() (ast.Stmt, *diag.Error) {
	pos := p.curPos()
	p.advance() // 'switch'
	if _, err := p.expect(token.LPAREN, "expected '(' after 'switch'"); err != nil {
		return nil, err
	}
	tag, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after switch tag"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "expected '{' to open switch body"); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	for !p.check(token.RBRACE) && !p.atEnd() {
		var labels []ast.Expr
		sawLabel := false
		for {
			if p.match(token.KW_CASE) {
				lbl, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(token.COLON, "expected ':' after case label"); err != nil {
					return nil, err
				}
				labels = append(labels, lbl)
				sawLabel = true
				continue
			}
			if p.match(token.KW_DEFAULT) {
				if _, err := p.expect(token.COLON, "expected ':' after 'default'"); err != nil {
					return nil, err
				}
				labels = append(labels, nil)
				sawLabel = true
				continue
			}
			break
		}
		if !sawLabel {
			return nil, p.errUnexpected("expected 'case' or 'default'")
		}
		bodyPos := p.curPos()
		var stmts []ast.Stmt
		for !p.check(token.KW_CASE) && !p.check(token.KW_DEFAULT) && !p.check(token.RBRACE) && !p.atEnd() {
			s, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
		}
		var body ast.Stmt = &ast.CompoundStmt{P: bodyPos, Stmts: stmts}
		if len(stmts) == 1 {
			body = stmts[0]
		}
		for _, l := range labels {
			cases = append(cases, ast.SwitchCase{Label: l, Body: body})
		}
	}
	if _, err := p.expect(token.RBRACE, "expected '}' to close switch body"); err != nil {
		return nil, err
	}
	return &ast.SwitchStmt{P: pos, Tag: tag, Cases: cases}, nil
}

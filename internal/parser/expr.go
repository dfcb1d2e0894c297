package parser

import (
	"strconv"
	"strings"

	"ccaot/internal/ast"
	"ccaot/internal/diag"
	"ccaot/internal/token"
)

// binaryPrecedence is the precedence ladder for infix operators, lowest
// first (spec §4.3's ladder, extended by the EXPANSION section's bitwise
// and shift operators). Parsed with the same precedence-climbing loop
// kanso's parser_pratt.go uses, generalized from Kanso's binary-operator set
// to this language's full C-style operator set.
var binaryPrecedence = map[token.Kind]int{
	token.OR_OR:     1,
	token.AND_AND:   2,
	token.PIPE:      3,
	token.CARET:     4,
	token.AMPERSAND: 5,
	token.EQ:        6,
	token.NEQ:       6,
	token.LT:        7,
	token.LTE:       7,
	token.GT:        7,
	token.GTE:       7,
	token.SHL:       8,
	token.SHR:       8,
	token.PLUS:      9,
	token.MINUS:     9,
	token.STAR:      10,
	token.SLASH:     10,
	token.PERCENT:   10,
}

var compoundAssignOp = map[token.Kind]string{
	token.PLUS_ASSIGN:  "+",
	token.MINUS_ASSIGN: "-",
	token.STAR_ASSIGN:  "*",
	token.SLASH_ASSIGN: "/",
}

func (p *Parser) parseExpr() (ast.Expr, *diag.Error) { return p.parseAssignment() }

// parseAssignment handles plain "=" and the compound-assign operators,
// desugaring "a += b" to "a = a + b" (spec's EXPANSION section).
func (p *Parser) parseAssignment() (ast.Expr, *diag.Error) {
	left, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	pos := p.curPos()
	if p.match(token.ASSIGN) {
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{P: pos, Target: left, Value: value}, nil
	}
	if op, ok := compoundAssignOp[p.peek().Kind]; ok {
		p.advance()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		combined := &ast.BinaryExpr{P: pos, Op: op, Left: left, Right: value}
		return &ast.AssignExpr{P: pos, Target: left, Value: combined}, nil
	}
	return left, nil
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, *diag.Error) {
	left, err := p.parsePrefixExpr()
	if err != nil {
		return nil, err
	}
	left, err = p.parsePostfixExpr(left)
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binaryPrecedence[p.peek().Kind]
		if !ok || prec < minPrec {
			break
		}
		opTok := p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{P: ast.Position{Line: opTok.Line, Column: opTok.Column}, Op: opTok.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

// parsePrefixExpr handles every prefix operator. "&" (address-of) and "*"
// (dereference) share their token kind with the bitwise-and/multiply infix
// operators; the grammar position (start of an operand, never mid-binary-
// loop) is what disambiguates them, not the token kind itself.
func (p *Parser) parsePrefixExpr() (ast.Expr, *diag.Error) {
	switch {
	case p.check(token.AMPERSAND):
		opTok := p.advance()
		operand, err := p.parsePrefixExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{P: ast.Position{Line: opTok.Line, Column: opTok.Column}, Op: "&", Operand: operand}, nil

	case p.check(token.STAR):
		opTok := p.advance()
		operand, err := p.parsePrefixExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{P: ast.Position{Line: opTok.Line, Column: opTok.Column}, Op: "*", Operand: operand}, nil

	case p.check(token.MINUS), p.check(token.BANG), p.check(token.TILDE):
		opTok := p.advance()
		operand, err := p.parsePrefixExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{P: ast.Position{Line: opTok.Line, Column: opTok.Column}, Op: opTok.Lexeme, Operand: operand}, nil

	case p.check(token.INCREMENT), p.check(token.DECREMENT):
		opTok := p.advance()
		operand, err := p.parsePrefixExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{P: ast.Position{Line: opTok.Line, Column: opTok.Column}, Op: opTok.Lexeme, Operand: operand}, nil

	case p.check(token.KW_SIZEOF):
		pos := p.curPos()
		p.advance()
		if _, err := p.expect(token.LPAREN, "expected '(' after 'sizeof'"); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "expected ')' after sizeof operand"); err != nil {
			return nil, err
		}
		return &ast.SizeofExpr{P: pos, Type: typ}, nil
	}
	return p.parsePrimaryExpr()
}

// parsePostfixExpr applies trailing ".field", "[index]" and postfix "++"/
// "--" to an already-parsed operand.
func (p *Parser) parsePostfixExpr(expr ast.Expr) (ast.Expr, *diag.Error) {
	for {
		switch {
		case p.check(token.DOT):
			pos := p.curPos()
			p.advance()
			field, err := p.expect(token.IDENT, "expected member name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{P: pos, Base: expr, Field: field.Lexeme}
		case p.check(token.LBRACKET):
			pos := p.curPos()
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "expected ']' after index"); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{P: pos, Base: expr, Index: idx}
		case p.check(token.INCREMENT), p.check(token.DECREMENT):
			opTok := p.advance()
			expr = &ast.PostfixExpr{P: ast.Position{Line: opTok.Line, Column: opTok.Column}, Op: opTok.Lexeme, Operand: expr}
		default:
			return expr, nil
		}
	}
}

// parsePrimaryExpr parses literals, identifiers, calls-on-bare-identifiers,
// and parenthesized expressions or casts. A "(" is a cast only when
// immediately followed by a primitive-type keyword; otherwise it is a
// grouping (spec §4.3).
func (p *Parser) parsePrimaryExpr() (ast.Expr, *diag.Error) {
	pos := p.curPos()

	switch {
	case p.check(token.LITERAL_INT):
		tok := p.advance()
		v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &ast.IntLit{P: pos, Value: v}, nil

	case p.check(token.LITERAL_FLOAT):
		tok := p.advance()
		v, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSuffix(tok.Lexeme, "f"), "F"), 64)
		return &ast.FloatLit{P: pos, Value: v, Double: false}, nil

	case p.check(token.LITERAL_DOUBLE):
		tok := p.advance()
		v, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.FloatLit{P: pos, Value: v, Double: true}, nil

	case p.check(token.LITERAL_CHAR):
		tok := p.advance()
		var b byte
		if len(tok.Lexeme) > 0 {
			b = tok.Lexeme[0]
		}
		return &ast.CharLit{P: pos, Value: b}, nil

	case p.match(token.KW_TRUE):
		return &ast.BoolLit{P: pos, Value: true}, nil

	case p.match(token.KW_FALSE):
		return &ast.BoolLit{P: pos, Value: false}, nil

	case p.check(token.IDENT):
		tok := p.advance()
		if p.check(token.LPAREN) {
			p.advance()
			var args []ast.Expr
			if !p.check(token.RPAREN) {
				for {
					a, err := p.parseAssignment()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if !p.match(token.COMMA) {
						break
					}
				}
			}
			if _, err := p.expect(token.RPAREN, "expected ')' after call arguments"); err != nil {
				return nil, err
			}
			return &ast.CallExpr{P: pos, Callee: tok.Lexeme, Args: args}, nil
		}
		return &ast.Ident{P: pos, Name: tok.Lexeme}, nil

	case p.check(token.LPAREN):
		p.advance()
		if token.IsPrimitiveKeyword(p.peek().Kind) {
			typ, err := p.parseTypeSpecifier()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN, "expected ')' after cast type"); err != nil {
				return nil, err
			}
			operand, err := p.parsePrefixExpr()
			if err != nil {
				return nil, err
			}
			return &ast.CastExpr{P: pos, Type: typ, Operand: operand}, nil
		}
		inner, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "expected ')' to close grouped expression"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	return nil, diag.New(diag.StageParser, diag.PARSE_EXPECTED_EXPR,
		diag.Position{File: p.file, Line: pos.Line, Column: pos.Column},
		"expected an expression, found %q", p.peek().Lexeme)
}

package preproc

import (
	"strconv"
	"strings"

	"ccaot/internal/diag"
)

// evalConstExpr evaluates a #if/#elif controlling expression: integer
// literals, identifiers (0 if undefined, macro-expanded otherwise),
// defined X / defined(X), unary !, and arithmetic/comparison/shift/
// bitwise/logical operators at standard precedence (spec §4.1).
func (p *Preprocessor) evalConstExpr(file, expr string) (int64, *diag.Error) {
	resolved := p.resolveDefined(expr)
	expanded, err := p.expandText(file, resolved, nil)
	if err != nil {
		return 0, err
	}

	toks := tokenizeExpr(expanded)
	cp := &condParser{toks: toks, file: file}
	val, err := cp.parseOr()
	if err != nil {
		return 0, err
	}
	if cp.pos != len(cp.toks) {
		return 0, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: file}, "malformed constant expression")
	}
	return val, nil
}

// resolveDefined rewrites every "defined X" / "defined(X)" to "1" or "0"
// before general macro expansion runs, so the operand of defined is never
// itself macro-expanded.
func (p *Preprocessor) resolveDefined(expr string) string {
	var out strings.Builder
	i := 0
	for i < len(expr) {
		if strings.HasPrefix(expr[i:], "defined") && (i+7 >= len(expr) || !isIdentByte(expr[i+7], false)) {
			j := i + 7
			for j < len(expr) && expr[j] == ' ' {
				j++
			}
			paren := false
			if j < len(expr) && expr[j] == '(' {
				paren = true
				j++
				for j < len(expr) && expr[j] == ' ' {
					j++
				}
			}
			start := j
			for j < len(expr) && isIdentByte(expr[j], j == start) {
				j++
			}
			name := expr[start:j]
			if paren {
				for j < len(expr) && expr[j] == ' ' {
					j++
				}
				if j < len(expr) && expr[j] == ')' {
					j++
				}
			}
			if p.isDefined(name) {
				out.WriteString("1")
			} else {
				out.WriteString("0")
			}
			i = j
			continue
		}
		out.WriteByte(expr[i])
		i++
	}
	return out.String()
}

type exprTok struct {
	text string
	num  bool
	val  int64
}

func tokenizeExpr(s string) []exprTok {
	var toks []exprTok
	i := 0
	two := func(a, b byte) bool { return i+1 < len(s) && s[i] == a && s[i+1] == b }
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			n, _ := strconv.ParseInt(s[i:j], 10, 64)
			toks = append(toks, exprTok{num: true, val: n})
			i = j
		case isIdentByte(c, true):
			j := i + 1
			for j < len(s) && isIdentByte(s[j], false) {
				j++
			}
			toks = append(toks, exprTok{text: s[i:j]})
			i = j
		case two('&', '&'), two('|', '|'), two('=', '='), two('!', '='),
			two('<', '='), two('>', '='), two('<', '<'), two('>', '>'):
			toks = append(toks, exprTok{text: s[i : i+2]})
			i += 2
		default:
			toks = append(toks, exprTok{text: string(c)})
			i++
		}
	}
	return toks
}

type condParser struct {
	toks []exprTok
	pos  int
	file string
}

func (c *condParser) peek() string {
	if c.pos >= len(c.toks) {
		return ""
	}
	return c.toks[c.pos].text
}

func (c *condParser) atEnd() bool { return c.pos >= len(c.toks) }

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (c *condParser) binLevel(next func() (int64, *diag.Error), ops ...string) (int64, *diag.Error) {
	left, err := next()
	if err != nil {
		return 0, err
	}
	for {
		matched := ""
		for _, op := range ops {
			if c.peek() == op {
				matched = op
				break
			}
		}
		if matched == "" {
			return left, nil
		}
		c.pos++
		right, err := next()
		if err != nil {
			return 0, err
		}
		switch matched {
		case "||":
			left = b2i(left != 0 || right != 0)
		case "&&":
			left = b2i(left != 0 && right != 0)
		case "|":
			left = left | right
		case "^":
			left = left ^ right
		case "&":
			left = left & right
		case "==":
			left = b2i(left == right)
		case "!=":
			left = b2i(left != right)
		case "<":
			left = b2i(left < right)
		case "<=":
			left = b2i(left <= right)
		case ">":
			left = b2i(left > right)
		case ">=":
			left = b2i(left >= right)
		case "<<":
			left = left << uint64(right)
		case ">>":
			left = left >> uint64(right)
		case "+":
			left = left + right
		case "-":
			left = left - right
		case "*":
			left = left * right
		case "/":
			if right == 0 {
				return 0, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: c.file}, "division by zero in constant expression")
			}
			left = left / right
		case "%":
			if right == 0 {
				return 0, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: c.file}, "modulo by zero in constant expression")
			}
			left = left % right
		}
	}
}

func (c *condParser) parseOr() (int64, *diag.Error)  { return c.binLevel(c.parseAnd, "||") }
func (c *condParser) parseAnd() (int64, *diag.Error) { return c.binLevel(c.parseBitOr, "&&") }
func (c *condParser) parseBitOr() (int64, *diag.Error) {
	return c.binLevel(c.parseBitXor, "|")
}
func (c *condParser) parseBitXor() (int64, *diag.Error) {
	return c.binLevel(c.parseBitAnd, "^")
}
func (c *condParser) parseBitAnd() (int64, *diag.Error) {
	return c.binLevel(c.parseEq, "&")
}
func (c *condParser) parseEq() (int64, *diag.Error) {
	return c.binLevel(c.parseRel, "==", "!=")
}
func (c *condParser) parseRel() (int64, *diag.Error) {
	return c.binLevel(c.parseShift, "<", "<=", ">", ">=")
}
func (c *condParser) parseShift() (int64, *diag.Error) {
	return c.binLevel(c.parseAdd, "<<", ">>")
}
func (c *condParser) parseAdd() (int64, *diag.Error) {
	return c.binLevel(c.parseMul, "+", "-")
}
func (c *condParser) parseMul() (int64, *diag.Error) {
	return c.binLevel(c.parseUnary, "*", "/", "%")
}

func (c *condParser) parseUnary() (int64, *diag.Error) {
	switch c.peek() {
	case "!":
		c.pos++
		v, err := c.parseUnary()
		if err != nil {
			return 0, err
		}
		return b2i(v == 0), nil
	case "-":
		c.pos++
		v, err := c.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case "~":
		c.pos++
		v, err := c.parseUnary()
		if err != nil {
			return 0, err
		}
		return ^v, nil
	}
	return c.parsePrimary()
}

func (c *condParser) parsePrimary() (int64, *diag.Error) {
	if c.atEnd() {
		return 0, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: c.file}, "unexpected end of constant expression")
	}
	tok := c.toks[c.pos]
	if tok.text == "(" {
		c.pos++
		v, err := c.parseOr()
		if err != nil {
			return 0, err
		}
		if c.peek() != ")" {
			return 0, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: c.file}, "expected ')' in constant expression")
		}
		c.pos++
		return v, nil
	}
	if tok.num {
		c.pos++
		return tok.val, nil
	}
	if isIdentByte(tok.text[0], true) {
		// Any identifier surviving macro expansion is undefined -> 0.
		c.pos++
		return 0, nil
	}
	return 0, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: c.file}, "unexpected token %q in constant expression", tok.text)
}

package preproc

import (
	"strings"

	"ccaot/internal/diag"
)

// macro is one #define'd object-like or function-like macro.
type macro struct {
	name         string
	functionLike bool
	params       []string
	variadic     bool
	body         string
}

// parseDefine parses the text following "#define " into a macro.
func parseDefine(rest string) (*macro, error) {
	rest = strings.TrimLeft(rest, " \t")
	i := 0
	for i < len(rest) && isIdentByte(rest[i], i == 0) {
		i++
	}
	if i == 0 {
		return nil, errMalformed("#define missing macro name")
	}
	name := rest[:i]

	if i < len(rest) && rest[i] == '(' {
		// Function-like macro: no space allowed between name and '('.
		end := strings.IndexByte(rest[i:], ')')
		if end < 0 {
			return nil, errMalformed("unterminated macro parameter list")
		}
		paramsText := rest[i+1 : i+end]
		body := strings.TrimLeft(rest[i+end+1:], " \t")

		m := &macro{name: name, functionLike: true, body: body}
		if strings.TrimSpace(paramsText) != "" {
			for _, p := range strings.Split(paramsText, ",") {
				p = strings.TrimSpace(p)
				if p == "..." {
					m.variadic = true
					m.params = append(m.params, "__VA_ARGS__")
					continue
				}
				m.params = append(m.params, p)
			}
		}
		return m, nil
	}

	body := strings.TrimLeft(rest[i:], " \t")
	return &macro{name: name, body: body}, nil
}

func isIdentByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	if !first && c >= '0' && c <= '9' {
		return true
	}
	return false
}

// expandText rescans text, replacing macro invocations whose name is not in
// disabled. Each recursive expansion frame carries its own widened disable
// set so a macro cannot expand itself (spec §4.1's "disable-set"). file is
// only used to position PP_MACRO_ARITY diagnostics raised along the way.
func (p *Preprocessor) expandText(file, text string, disabled map[string]bool) (string, *diag.Error) {
	var out strings.Builder
	i := 0
	for i < len(text) {
		c := text[i]
		if isIdentByte(c, true) {
			j := i + 1
			for j < len(text) && isIdentByte(text[j], false) {
				j++
			}
			name := text[i:j]

			m, ok := p.macros[name]
			if !ok || disabled[name] {
				out.WriteString(name)
				i = j
				continue
			}

			if !m.functionLike {
				sub := map[string]bool{}
				for k := range disabled {
					sub[k] = true
				}
				sub[name] = true
				expanded, err := p.expandText(file, m.body, sub)
				if err != nil {
					return "", err
				}
				out.WriteString(expanded)
				i = j
				continue
			}

			// Function-like: only a macro call if the next non-space
			// character is '('.
			k := j
			for k < len(text) && (text[k] == ' ' || text[k] == '\t' || text[k] == '\n') {
				k++
			}
			if k >= len(text) || text[k] != '(' {
				out.WriteString(name)
				i = j
				continue
			}

			args, after, ok := parseArgs(text, k)
			if !ok {
				out.WriteString(name)
				i = j
				continue
			}

			expandedBody, err := substituteParams(file, m, args)
			if err != nil {
				return "", err
			}
			sub := map[string]bool{}
			for kk := range disabled {
				sub[kk] = true
			}
			sub[name] = true
			expanded, err := p.expandText(file, expandedBody, sub)
			if err != nil {
				return "", err
			}
			out.WriteString(expanded)
			i = after
			continue
		}

		out.WriteByte(c)
		i++
	}
	return out.String(), nil
}

// parseArgs parses a parenthesized, comma-separated argument list starting
// at text[openParen] == '('. Commas nested inside parens do not split
// arguments (spec §4.1).
func parseArgs(text string, openParen int) (args []string, after int, ok bool) {
	depth := 0
	start := openParen + 1
	i := openParen
	for i < len(text) {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				last := text[start:i]
				if strings.TrimSpace(last) != "" || len(args) > 0 {
					args = append(args, strings.TrimSpace(last))
				}
				return args, i + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
		i++
	}
	return nil, 0, false
}

// substituteParams instantiates a function-like macro's body for the given
// unexpanded argument texts, handling "#param" stringification and
// "a ## b" token-pasting before the caller rescans the result. Non-variadic
// macros require an exact argument count (spec §7's PP_MACRO_ARITY).
func substituteParams(file string, m *macro, args []string) (string, *diag.Error) {
	if !m.variadic && len(args) != len(m.params) {
		return "", diag.New(diag.StagePreprocessor, diag.PP_MACRO_ARITY, diag.Position{File: file},
			"macro %q expects %d argument(s), got %d", m.name, len(m.params), len(args))
	}
	if m.variadic && len(args) < len(m.params)-1 {
		return "", diag.New(diag.StagePreprocessor, diag.PP_MACRO_ARITY, diag.Position{File: file},
			"macro %q expects at least %d argument(s), got %d", m.name, len(m.params)-1, len(args))
	}

	argFor := make(map[string]string, len(m.params))
	for idx, pname := range m.params {
		if m.variadic && pname == "__VA_ARGS__" {
			if idx < len(args) {
				argFor[pname] = strings.Join(args[idx:], ", ")
			}
			continue
		}
		if idx < len(args) {
			argFor[pname] = args[idx]
		}
	}

	body := m.body
	var out strings.Builder
	i := 0
	for i < len(body) {
		// Stringification: "#param"
		if body[i] == '#' && (i+1 >= len(body) || body[i+1] != '#') {
			j := i + 1
			for j < len(body) && (body[j] == ' ' || body[j] == '\t') {
				j++
			}
			start := j
			for j < len(body) && isIdentByte(body[j], j == start) {
				j++
			}
			pname := body[start:j]
			if val, ok := argFor[pname]; ok {
				out.WriteString(stringify(val))
				i = j
				continue
			}
		}

		if isIdentByte(body[i], true) {
			j := i + 1
			for j < len(body) && isIdentByte(body[j], false) {
				j++
			}
			name := body[i:j]
			val, isParam := argFor[name]

			// Token-pasting: look both directions for "##".
			k := j
			for k < len(body) && (body[k] == ' ' || body[k] == '\t') {
				k++
			}
			if k+1 < len(body) && body[k] == '#' && body[k+1] == '#' {
				left := name
				if isParam {
					left = val
				}
				rest, pasted := pasteChain(body, k, left, argFor)
				out.WriteString(pasted)
				i = rest
				continue
			}

			if isParam {
				out.WriteString(val)
			} else {
				out.WriteString(name)
			}
			i = j
			continue
		}

		out.WriteByte(body[i])
		i++
	}
	return out.String(), nil
}

// pasteChain concatenates left with every "## token" that follows
// contiguously, substituting parameters along the way, returning the text
// offset just past the chain.
func pasteChain(body string, hashPos int, left string, argFor map[string]string) (int, string) {
	i := hashPos
	acc := left
	for i < len(body) && body[i] == ' ' {
		i++
	}
	for i+1 < len(body) && body[i] == '#' && body[i+1] == '#' {
		i += 2
		for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		start := i
		for i < len(body) && isIdentByte(body[i], i == start) {
			i++
		}
		tok := body[start:i]
		if val, ok := argFor[tok]; ok {
			tok = val
		}
		acc = acc + tok
		for i < len(body) && body[i] == ' ' {
			i++
		}
	}
	return i, acc
}

func stringify(arg string) string {
	trimmed := strings.Join(strings.Fields(arg), " ")
	escaped := strings.ReplaceAll(trimmed, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

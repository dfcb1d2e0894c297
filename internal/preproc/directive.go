package preproc

import (
	"path/filepath"
	"strings"

	"ccaot/internal/diag"
)

// condFrame is one level of the #if/#ifdef/#ifndef stack (spec §4.1).
type condFrame struct {
	active       bool
	taken        bool
	parentActive bool
}

// expandFile runs the directive/conditional/include pass over one file's
// text, then macro-expands the surviving text in a single pass. It reports
// whether the file turned out to be fully guarded (spec §4.1).
func (p *Preprocessor) expandFile(absPath, src string, stack []string) (string, bool, *diag.Error) {
	dir := filepath.Dir(absPath)
	lines := strings.Split(src, "\n")

	var out strings.Builder
	var condStack []condFrame

	var pendingGuardMacro string
	sawDefineOfGuard := false
	pragmaOnce := false
	sawAnyDirective := false

	active := func() bool {
		if len(condStack) == 0 {
			return true
		}
		return condStack[len(condStack)-1].active
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !strings.HasPrefix(trimmed, "#") {
			if active() {
				out.WriteString(line)
			}
			out.WriteString("\n")
			continue
		}

		directive := strings.TrimSpace(trimmed[1:])
		name, rest := splitDirective(directive)

		switch name {
		case "ifndef", "ifdef", "if":
			wasFirst := !sawAnyDirective
			sawAnyDirective = true
			var condVal bool
			switch name {
			case "ifndef":
				condVal = !p.isDefined(strings.TrimSpace(rest))
				if wasFirst && len(condStack) == 0 {
					pendingGuardMacro = strings.TrimSpace(rest)
				}
			case "ifdef":
				condVal = p.isDefined(strings.TrimSpace(rest))
			case "if":
				val, err := p.evalConstExpr(absPath, rest)
				if err != nil {
					return "", false, err
				}
				condVal = val != 0
			}
			pa := active()
			condStack = append(condStack, condFrame{
				active:       condVal && pa,
				taken:        condVal && pa,
				parentActive: pa,
			})

		case "elif":
			sawAnyDirective = true
			if len(condStack) == 0 {
				return "", false, diag.New(diag.StagePreprocessor, diag.PP_UNBALANCED, diag.Position{File: absPath}, "#elif without matching #if")
			}
			prev := condStack[len(condStack)-1]
			condStack = condStack[:len(condStack)-1]
			pa := prev.parentActive
			var condVal bool
			if !prev.taken && pa {
				val, err := p.evalConstExpr(absPath, rest)
				if err != nil {
					return "", false, err
				}
				condVal = val != 0
			}
			newActive := !prev.taken && condVal && pa
			condStack = append(condStack, condFrame{
				active:       newActive,
				taken:        prev.taken || newActive,
				parentActive: pa,
			})

		case "else":
			sawAnyDirective = true
			if len(condStack) == 0 {
				return "", false, diag.New(diag.StagePreprocessor, diag.PP_UNBALANCED, diag.Position{File: absPath}, "#else without matching #if")
			}
			prev := condStack[len(condStack)-1]
			condStack = condStack[:len(condStack)-1]
			pa := prev.parentActive
			newActive := !prev.taken && pa
			condStack = append(condStack, condFrame{
				active:       newActive,
				taken:        true,
				parentActive: pa,
			})

		case "endif":
			sawAnyDirective = true
			if len(condStack) == 0 {
				return "", false, diag.New(diag.StagePreprocessor, diag.PP_UNBALANCED, diag.Position{File: absPath}, "#endif without matching #if")
			}
			condStack = condStack[:len(condStack)-1]

		case "pragma":
			sawAnyDirective = true
			if active() && strings.TrimSpace(rest) == "once" {
				pragmaOnce = true
			}

		case "define":
			sawAnyDirective = true
			if active() {
				m, perr := parseDefine(rest)
				if perr != nil {
					return "", false, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: absPath}, "%s", perr)
				}
				p.macros[m.name] = m
				if pendingGuardMacro != "" && m.name == pendingGuardMacro {
					sawDefineOfGuard = true
				}
			}

		case "undef":
			sawAnyDirective = true
			if active() {
				delete(p.macros, strings.TrimSpace(rest))
			}

		case "include":
			sawAnyDirective = true
			if active() {
				headerName, quoted, perr := parseInclude(rest)
				if perr != nil {
					return "", false, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: absPath}, "%s", perr)
				}
				resolved, ok := p.resolveInclude(headerName, quoted, dir)
				if !ok {
					return "", false, diag.New(diag.StagePreprocessor, diag.PP_HEADER_NOT_FOUND, diag.Position{File: absPath}, "cannot find header %q", headerName)
				}
				included, err := p.includeFile(resolved, stack)
				if err != nil {
					return "", false, err
				}
				out.WriteString(included)
			}

		default:
			if active() {
				return "", false, diag.New(diag.StagePreprocessor, diag.PP_MALFORMED_DIRECTIVE, diag.Position{File: absPath}, "unknown directive #%s", name)
			}
		}

		out.WriteString("\n")
	}

	if len(condStack) != 0 {
		return "", false, diag.New(diag.StagePreprocessor, diag.PP_UNBALANCED, diag.Position{File: absPath}, "unbalanced conditional nesting at end of file")
	}

	fullyGuarded := pragmaOnce || (pendingGuardMacro != "" && sawDefineOfGuard)

	expanded, err := p.expandText(absPath, out.String(), nil)
	if err != nil {
		return "", false, err
	}
	return expanded, fullyGuarded, nil
}

func (p *Preprocessor) isDefined(name string) bool {
	_, ok := p.macros[name]
	return ok
}

// splitDirective splits "name rest-of-line" on the first run of whitespace.
func splitDirective(s string) (string, string) {
	i := 0
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	name := s[:i]
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return name, s[i:]
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

func parseInclude(rest string) (name string, quoted bool, err error) {
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 {
		return "", false, errMalformed("malformed #include")
	}
	switch rest[0] {
	case '"':
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", false, errMalformed("unterminated #include \"...\"")
		}
		return rest[1 : 1+end], true, nil
	case '<':
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return "", false, errMalformed("unterminated #include <...>")
		}
		return rest[1:end], false, nil
	default:
		return "", false, errMalformed("malformed #include")
	}
}

type malformedErr string

func (m malformedErr) Error() string { return string(m) }
func errMalformed(s string) error    { return malformedErr(s) }

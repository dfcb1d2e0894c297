// Package preproc implements the recursive, text-level preprocessor: include
// resolution with guards and cycle detection, conditional compilation, and
// macro expansion with disable-sets (spec §4.1).
package preproc

import (
	"os"
	"path/filepath"
	"strings"

	"ccaot/internal/diag"
)

// Preprocessor resolves #include/#define/#if-family directives into one
// expanded source string. A Preprocessor is constructed once per
// translation unit; its file cache and guard set live only as long as that
// one Process call (spec §5).
type Preprocessor struct {
	userDirs []string
	sysDirs  []string

	macros  map[string]*macro
	cache   map[string]string // canonical path -> fully expanded text
	guarded map[string]bool   // canonical path -> fully guarded
}

// New builds a Preprocessor with the given user ("") and system (<>) search
// directories, searched in the order spec §4.1 describes.
func New(userDirs, sysDirs []string) *Preprocessor {
	return &Preprocessor{
		userDirs: userDirs,
		sysDirs:  sysDirs,
		macros:   make(map[string]*macro),
		cache:    make(map[string]string),
		guarded:  make(map[string]bool),
	}
}

// Process expands the top-level translation unit at path into one string.
func (p *Preprocessor) Process(path string) (string, *diag.Error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", diag.New(diag.StagePreprocessor, diag.PP_HEADER_NOT_FOUND, diag.Position{File: path}, "cannot resolve path: %s", err)
	}
	return p.includeFile(abs, nil)
}

// includeFile expands the file at abs, consulting the cache/guard set and
// cycle stack first.
func (p *Preprocessor) includeFile(abs string, stack []string) (string, *diag.Error) {
	if p.guarded[abs] {
		return "", nil
	}
	if text, ok := p.cache[abs]; ok {
		return text, nil
	}
	for _, s := range stack {
		if s == abs {
			return "", diag.New(diag.StagePreprocessor, diag.PP_CYCLE, diag.Position{File: abs}, "circular include of %s", abs)
		}
	}

	raw, rerr := os.ReadFile(abs)
	if rerr != nil {
		return "", diag.New(diag.StagePreprocessor, diag.PP_HEADER_NOT_FOUND, diag.Position{File: abs}, "cannot read %s: %s", abs, rerr)
	}

	expanded, fullyGuarded, err := p.expandFile(abs, normalizeNewlines(string(raw)), append(stack, abs))
	if err != nil {
		return "", err
	}

	if fullyGuarded {
		p.guarded[abs] = true
	}
	p.cache[abs] = expanded
	return expanded, nil
}

// resolveInclude implements spec §4.1's search order: quoted includes look
// in the including file's directory first, then user paths, then system
// paths; angle-bracket includes look in system paths first, then user.
func (p *Preprocessor) resolveInclude(name string, quoted bool, includingDir string) (string, bool) {
	try := func(dir string) (string, bool) {
		if dir == "" {
			return "", false
		}
		cand := filepath.Join(dir, name)
		if st, err := os.Stat(cand); err == nil && !st.IsDir() {
			abs, err := filepath.Abs(cand)
			if err == nil {
				return abs, true
			}
		}
		return "", false
	}

	var order []string
	if quoted {
		order = append(order, includingDir)
		order = append(order, p.userDirs...)
		order = append(order, p.sysDirs...)
	} else {
		order = append(order, p.sysDirs...)
		order = append(order, p.userDirs...)
	}

	for _, dir := range order {
		if abs, ok := try(dir); ok {
			return abs, true
		}
	}
	return "", false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

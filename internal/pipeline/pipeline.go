// Package pipeline wires the four compilation phases end to end: the
// preprocessor, lexer, parser, semantic analyzer, and IR generator each
// hand their output to the next with no recovery on the first diag.Error
// (spec §1's single-pass, fail-fast pipeline).
package pipeline

import (
	"ccaot/internal/diag"
	"ccaot/internal/ir"
	"ccaot/internal/lexer"
	"ccaot/internal/parser"
	"ccaot/internal/preproc"
	"ccaot/internal/semantic"
)

// Result carries everything a caller (the CLI, the LSP server, tests) might
// want out of a successful compile: the preprocessed text (for diagnostic
// rendering against the post-expansion source) and the final IR module.
type Result struct {
	Preprocessed string
	Module       *ir.Module
	IRText       string
}

// Compile runs path through all four phases and returns the lowered,
// verified IR module, or the first diag.Error any phase raised.
func Compile(path string, userDirs, sysDirs []string) (*Result, *diag.Error) {
	pp := preproc.New(userDirs, sysDirs)
	src, err := pp.Process(path)
	if err != nil {
		return nil, err
	}

	toks, err := lexer.New(path, src).Scan()
	if err != nil {
		return nil, err
	}

	prog, err := parser.Parse(path, toks)
	if err != nil {
		return nil, err
	}

	an := semantic.New(path)
	if err := an.Analyze(prog); err != nil {
		return nil, err
	}

	b := ir.NewBuilder(path, an.Types)
	m, err := b.Build(prog)
	if err != nil {
		return nil, err
	}
	if err := ir.Verify(m); err != nil {
		return nil, err
	}

	return &Result{Preprocessed: src, Module: m, IRText: m.String()}, nil
}

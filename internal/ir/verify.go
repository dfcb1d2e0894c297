package ir

import (
	"ccaot/internal/diag"
)

// Verify checks the structural invariant every lowered function must hold:
// each basic block has exactly one terminator, and every branch target
// names a block that actually exists in the function (spec §4.5).
func Verify(m *Module) *diag.Error {
	for _, f := range m.Functions {
		if f.Blocks == nil {
			continue
		}
		labels := make(map[string]bool, len(f.Blocks))
		for _, b := range f.Blocks {
			labels[b.Label] = true
		}
		for _, b := range f.Blocks {
			if b.Term == nil {
				return diag.New(diag.StageCodeGen, diag.IR_UNSUPPORTED_TYPE, diag.Position{},
					"function %q: basic block %q has no terminator", f.Name, b.Label)
			}
			for _, target := range branchTargets(*b.Term) {
				if !labels[target] {
					return diag.New(diag.StageCodeGen, diag.IR_UNSUPPORTED_TYPE, diag.Position{},
						"function %q: block %q branches to undefined label %q", f.Name, b.Label, target)
				}
			}
		}
	}
	return nil
}

func branchTargets(term Instr) []string {
	switch term.Op {
	case "br":
		return []string{term.Args[0]}
	case "condbr":
		return []string{term.Args[1], term.Args[2]}
	}
	return nil
}

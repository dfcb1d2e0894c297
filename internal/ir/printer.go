package ir

import "strings"

// String renders the module as the textual IR this compiler's -emit-ir
// output shows: one line per global, then one function per definition or
// prototype, each basic block introduced by a "label:" line.
func (m *Module) String() string {
	var b strings.Builder
	for _, g := range m.Globals {
		if g.Init != "" {
			b.WriteString("global ")
			b.WriteString(g.Type)
			b.WriteString(" @")
			b.WriteString(g.Name)
			b.WriteString(" = ")
			b.WriteString(g.Init)
			b.WriteString("\n")
		} else {
			b.WriteString("global ")
			b.WriteString(g.Type)
			b.WriteString(" @")
			b.WriteString(g.Name)
			b.WriteString("\n")
		}
	}
	if len(m.Globals) > 0 {
		b.WriteString("\n")
	}
	for i, f := range m.Functions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.String())
	}
	return b.String()
}

func (f *Function) String() string {
	var b strings.Builder
	b.WriteString("func ")
	b.WriteString(irType(f.RetType))
	b.WriteString(" @")
	b.WriteString(f.Name)
	b.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type)
		b.WriteString(" %")
		b.WriteString(p.Name)
	}
	b.WriteString(")")
	if f.Blocks == nil {
		b.WriteString(";\n")
		return b.String()
	}
	b.WriteString(" {\n")
	for _, block := range f.Blocks {
		b.WriteString(block.Label)
		b.WriteString(":\n")
		for _, instr := range block.Instrs {
			b.WriteString("  ")
			b.WriteString(instr.String())
			b.WriteString("\n")
		}
		if block.Term != nil {
			b.WriteString("  ")
			b.WriteString(block.Term.String())
			b.WriteString("\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

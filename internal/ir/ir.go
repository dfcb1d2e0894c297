// Package ir defines the textual three-address IR this compiler lowers to:
// basic blocks of instructions operating on virtual registers and stack
// slots, a builder that performs the lowering (spec §4.5), a printer that
// renders the textual form, and a structural verifier.
package ir

import "fmt"

// Global is a module-scope variable with an optional literal initializer.
type Global struct {
	Name string
	Type string
	Init string // empty when zero-initialized
}

// Param is one function parameter.
type Param struct {
	Name string
	Type string
}

// Instr is one three-address instruction. Result is empty for instructions
// without a destination register (store, branches, void calls, ret).
type Instr struct {
	Result string
	Op     string
	Type   string
	Args   []string
}

func (i Instr) String() string {
	if i.Result != "" {
		return fmt.Sprintf("%s = %s %s %s", i.Result, i.Op, i.Type, joinArgs(i.Args))
	}
	if i.Type != "" {
		return fmt.Sprintf("%s %s %s", i.Op, i.Type, joinArgs(i.Args))
	}
	return fmt.Sprintf("%s %s", i.Op, joinArgs(i.Args))
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// BasicBlock is a straight-line instruction sequence ending in exactly one
// terminator (br, condbr, ret, or unreachable) once the function is fully
// built (spec §4.5's structural invariant, checked by Verify).
type BasicBlock struct {
	Label  string
	Instrs []Instr
	Term   *Instr
}

func (b *BasicBlock) emit(i Instr) { b.Instrs = append(b.Instrs, i) }

func (b *BasicBlock) terminated() bool { return b.Term != nil }

// Function is a prototype (Blocks == nil) or a definition with a lowered
// basic-block body.
type Function struct {
	Name    string
	RetType string
	Params  []Param
	Blocks  []*BasicBlock
}

// Module is the whole-program IR: globals and functions. It carries no
// struct/union type declarations; aggregate types appear only by name
// (e.g. "struct Point") in instruction and global types.
type Module struct {
	Globals   []Global
	Functions []*Function
}

package ir

import (
	"fmt"
	"strconv"

	"ccaot/internal/ast"
	"ccaot/internal/diag"
	"ccaot/internal/typesys"
)

// Builder lowers a semantically-checked Program to a Module. It assumes
// the program has already passed internal/semantic's checks; it performs
// no name-resolution diagnostics of its own beyond the handful of
// lowering-time checks the IR stage owns (switch-case constness, lvalue
// addressability, type compatibility) per spec §7's IR_* code family.
type Builder struct {
	file    string
	types   *typesys.Registry
	globals map[string]string // name -> type
	funcSig map[string]string // name -> return type
}

// NewBuilder creates a Builder over the Type Registry the semantic pass
// populated.
func NewBuilder(file string, types *typesys.Registry) *Builder {
	return &Builder{file: file, types: types, globals: map[string]string{}, funcSig: map[string]string{}}
}

// Build lowers every top-level declaration to IR (spec §4.5).
func (b *Builder) Build(prog *ast.Program) (*Module, *diag.Error) {
	// First pass: register every global and function signature so forward
	// references and recursive calls resolve during the second pass.
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.VarDecl:
			b.globals[n.Name] = n.Type
		case *ast.MultiVarDecl:
			for _, v := range n.Vars {
				b.globals[v.Name] = v.Type
			}
		case *ast.FuncDecl:
			b.funcSig[n.Name] = n.ReturnType
		}
	}

	m := &Module{}
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.VarDecl:
			g, err := b.lowerGlobal(n)
			if err != nil {
				return nil, err
			}
			m.Globals = append(m.Globals, g)
		case *ast.MultiVarDecl:
			for _, v := range n.Vars {
				g, err := b.lowerGlobal(v)
				if err != nil {
					return nil, err
				}
				m.Globals = append(m.Globals, g)
			}
		case *ast.FuncDecl:
			fb := newFuncBuilder(b, n)
			fn, err := fb.build()
			if err != nil {
				return nil, err
			}
			m.Functions = append(m.Functions, fn)
		}
	}
	return m, nil
}

func (b *Builder) lowerGlobal(v *ast.VarDecl) (Global, *diag.Error) {
	g := Global{Name: v.Name, Type: v.Type}
	if v.Init == nil {
		return g, nil
	}
	lit, ok := foldLiteral(v.Init)
	if !ok {
		return Global{}, diag.New(diag.StageCodeGen, diag.IR_TYPE_MISMATCH,
			diag.Position{File: b.file, Line: v.P.Line, Column: v.P.Column},
			"global %q initializer must be a compile-time constant", v.Name)
	}
	g.Init = lit
	return g, nil
}

// foldLiteral renders a restricted constant-expression grammar (literals,
// unary minus, and brace initializer lists of the same) to its textual IR
// form, for a global's literal initializer. Any other unary operator,
// including "~", is not folded.
func foldLiteral(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.IntLit:
		return strconv.FormatInt(n.Value, 10), true
	case *ast.FloatLit:
		return strconv.FormatFloat(n.Value, 'f', -1, 64), true
	case *ast.CharLit:
		return strconv.Itoa(int(n.Value)), true
	case *ast.BoolLit:
		if n.Value {
			return "true", true
		}
		return "false", true
	case *ast.UnaryExpr:
		inner, ok := foldLiteral(n.Operand)
		if !ok {
			return "", false
		}
		switch n.Op {
		case "-":
			return "-" + inner, true
		}
		return "", false
	case *ast.InitListExpr:
		out := "{"
		for i, el := range n.Elements {
			if i > 0 {
				out += ", "
			}
			v, ok := foldLiteral(el)
			if !ok {
				return "", false
			}
			out += v
		}
		return out + "}", true
	}
	return "", false
}

func (b *Builder) foldConstInt(e ast.Expr) (int64, bool) {
	switch n := e.(type) {
	case *ast.IntLit:
		return n.Value, true
	case *ast.UnaryExpr:
		v, ok := b.foldConstInt(n.Operand)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case "-":
			return -v, true
		case "~":
			return ^v, true
		}
		return 0, false
	case *ast.Ident:
		if v, ok := b.types.LookupEnumConst(n.Name); ok {
			return v, true
		}
	}
	return 0, false
}

// localInfo tracks a declared local's stack slot, element type, and whether
// it was declared with array dimensions (which changes how indexing
// addresses it: directly off the slot, rather than through a loaded
// pointer value).
type localInfo struct {
	slot    string
	typ     string
	isArray bool
}

// loopCtx is the break/continue target pair for one enclosing loop.
type loopCtx struct {
	contLabel  string
	breakLabel string
}

// funcBuilder lowers a single function definition. It owns the growing
// virtual-register and label counters and the current insertion block.
type funcBuilder struct {
	b      *Builder
	decl   *ast.FuncDecl
	fn     *Function
	locals map[string]localInfo
	cur    *BasicBlock
	regN   int
	lblN   int

	loopStack  []loopCtx
	breakStack []string
}

func newFuncBuilder(b *Builder, decl *ast.FuncDecl) *funcBuilder {
	return &funcBuilder{b: b, decl: decl, locals: map[string]localInfo{}}
}

func (fb *funcBuilder) newReg() string {
	fb.regN++
	return fmt.Sprintf("%%t%d", fb.regN)
}

func (fb *funcBuilder) newLabel(prefix string) string {
	fb.lblN++
	return fmt.Sprintf("%s.%d", prefix, fb.lblN)
}

func (fb *funcBuilder) newBlock(label string) *BasicBlock {
	blk := &BasicBlock{Label: label}
	fb.fn.Blocks = append(fb.fn.Blocks, blk)
	return blk
}

func (fb *funcBuilder) emit(i Instr) {
	if fb.cur.terminated() {
		return
	}
	fb.cur.emit(i)
}

func (fb *funcBuilder) setTerm(i Instr) {
	if fb.cur.terminated() {
		return
	}
	fb.cur.Term = &i
}

func (fb *funcBuilder) build() (*Function, *diag.Error) {
	fn := &Function{Name: fb.decl.Name, RetType: fb.decl.ReturnType}
	for _, p := range fb.decl.Params {
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: p.Type})
	}
	fb.fn = fn
	if fb.decl.Body == nil {
		return fn, nil
	}

	fb.cur = fb.newBlock("entry")
	for _, p := range fb.decl.Params {
		slot := "%" + p.Name + ".addr"
		fb.emit(Instr{Result: slot, Op: "alloca", Type: p.Type})
		fb.emit(Instr{Op: "store", Type: p.Type, Args: []string{"%" + p.Name, slot}})
		fb.locals[p.Name] = localInfo{slot: slot, typ: p.Type}
	}

	if err := fb.lowerCompound(fb.decl.Body); err != nil {
		return nil, err
	}
	if !fb.cur.terminated() {
		fb.setTerm(defaultReturn(fb.decl.ReturnType))
	}
	return fn, nil
}

func defaultReturn(retType string) Instr {
	if retType == "" || retType == "void" {
		return Instr{Op: "ret", Type: "void"}
	}
	return Instr{Op: "ret", Type: irType(retType), Args: []string{zeroValue(retType)}}
}

func zeroValue(t string) string {
	switch t {
	case "float", "double":
		return "0.0"
	case "bool":
		return "false"
	}
	return "0"
}

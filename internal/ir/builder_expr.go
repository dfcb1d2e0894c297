package ir

import (
	"strconv"
	"strings"

	"ccaot/internal/ast"
	"ccaot/internal/diag"
	"ccaot/internal/typesys"
)

var binOpNames = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "/": "div", "%": "mod",
	"&": "and", "|": "or", "^": "xor", "<<": "shl", ">>": "shr",
	"&&": "and", "||": "or",
	"==": "icmp.eq", "!=": "icmp.ne", "<": "icmp.lt", "<=": "icmp.le", ">": "icmp.gt", ">=": "icmp.ge",
}

// lowerExpr lowers e to a three-address value, returning the register or
// literal text holding the result and its type.
func (fb *funcBuilder) lowerExpr(e ast.Expr) (string, string, *diag.Error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return strconv.FormatInt(n.Value, 10), "int", nil

	case *ast.FloatLit:
		typ := "float"
		if n.Double {
			typ = "double"
		}
		return strconv.FormatFloat(n.Value, 'f', -1, 64), typ, nil

	case *ast.CharLit:
		return strconv.Itoa(int(n.Value)), "char", nil

	case *ast.BoolLit:
		if n.Value {
			return "true", "bool", nil
		}
		return "false", "bool", nil

	case *ast.Ident:
		if loc, ok := fb.locals[n.Name]; ok {
			reg := fb.newReg()
			fb.emit(Instr{Result: reg, Op: "load", Type: loc.typ, Args: []string{loc.slot}})
			return reg, loc.typ, nil
		}
		if gt, ok := fb.b.globals[n.Name]; ok {
			reg := fb.newReg()
			fb.emit(Instr{Result: reg, Op: "load", Type: gt, Args: []string{"@" + n.Name}})
			return reg, gt, nil
		}
		if v, ok := fb.b.types.LookupEnumConst(n.Name); ok {
			return strconv.FormatInt(v, 10), "int", nil
		}
		return "", "", fb.internalErr(n.P, "unresolved identifier %q reached IR lowering", n.Name)

	case *ast.BinaryExpr:
		return fb.lowerBinary(n)

	case *ast.UnaryExpr:
		return fb.lowerUnary(n)

	case *ast.PostfixExpr:
		addr, t, err := fb.lowerAddr(n.Operand)
		if err != nil {
			return "", "", err
		}
		old := fb.newReg()
		fb.emit(Instr{Result: old, Op: "load", Type: t, Args: []string{addr}})
		one := oneOf(t)
		op := "add"
		if n.Op == "--" {
			op = "sub"
		}
		newv := fb.newReg()
		fb.emit(Instr{Result: newv, Op: op, Type: t, Args: []string{old, one}})
		fb.emit(Instr{Op: "store", Type: t, Args: []string{newv, addr}})
		return old, t, nil

	case *ast.MemberExpr, *ast.IndexExpr:
		addr, t, err := fb.lowerAddr(n)
		if err != nil {
			return "", "", err
		}
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "load", Type: t, Args: []string{addr}})
		return reg, t, nil

	case *ast.CallExpr:
		var args []string
		for _, a := range n.Args {
			v, _, err := fb.lowerExpr(a)
			if err != nil {
				return "", "", err
			}
			args = append(args, v)
		}
		retT, ok := fb.b.funcSig[n.Callee]
		if !ok {
			retT = "void"
		}
		callArgs := append([]string{"@" + n.Callee}, args...)
		if retT == "" || retT == "void" {
			fb.emit(Instr{Op: "call", Type: "void", Args: callArgs})
			return "", "void", nil
		}
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "call", Type: irType(retT), Args: callArgs})
		return reg, retT, nil

	case *ast.AssignExpr:
		addr, elemT, err := fb.lowerAddr(n.Target)
		if err != nil {
			return "", "", err
		}
		v, vt, err := fb.lowerExpr(n.Value)
		if err != nil {
			return "", "", err
		}
		v = fb.coerceTo(v, vt, elemT)
		fb.emit(Instr{Op: "store", Type: elemT, Args: []string{v, addr}})
		return v, elemT, nil

	case *ast.CastExpr:
		v, vt, err := fb.lowerExpr(n.Operand)
		if err != nil {
			return "", "", err
		}
		if vt == n.Type {
			return v, n.Type, nil
		}
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "cast", Type: n.Type, Args: []string{vt, v}})
		return reg, n.Type, nil

	case *ast.InitListExpr:
		// A bare brace list only ever appears as a declaration initializer,
		// which lowerLocalVarDecl/lowerGlobal handle directly.
		return "", "", nil

	case *ast.SizeofExpr:
		return strconv.Itoa(sizeOf(n.Type, fb.b.types)), "int", nil
	}
	return "", "", nil
}

func (fb *funcBuilder) lowerBinary(n *ast.BinaryExpr) (string, string, *diag.Error) {
	lv, lt, err := fb.lowerExpr(n.Left)
	if err != nil {
		return "", "", err
	}
	rv, rt, err := fb.lowerExpr(n.Right)
	if err != nil {
		return "", "", err
	}

	// Arithmetic promotion: when either operand is floating, both are
	// widened to double, or kept as float when both are float; otherwise
	// the operation is done as int (spec §4.5). Comparisons and
	// logical operators are evaluated eagerly, never short-circuited
	// (spec §9's resolved open question).
	opName, ok := binOpNames[n.Op]
	if !ok {
		return "", "", fb.internalErr(n.P, "unknown binary operator %q", n.Op)
	}
	isCompare := strings.HasPrefix(opName, "icmp")
	operandType := "int"
	if isFloatLike(lt) || isFloatLike(rt) {
		operandType = "double"
		if lt == "float" && rt == "float" {
			operandType = "float"
		}
	}
	if !isCompare {
		lv = fb.coerceTo(lv, lt, operandType)
		rv = fb.coerceTo(rv, rt, operandType)
	} else {
		lv = fb.coerceTo(lv, lt, operandType)
		rv = fb.coerceTo(rv, rt, operandType)
	}

	reg := fb.newReg()
	fb.emit(Instr{Result: reg, Op: opName, Type: operandType, Args: []string{lv, rv}})
	if isCompare {
		return reg, "bool", nil
	}
	return reg, operandType, nil
}

func (fb *funcBuilder) lowerUnary(n *ast.UnaryExpr) (string, string, *diag.Error) {
	switch n.Op {
	case "&":
		addr, elemT, err := fb.lowerAddr(n.Operand)
		if err != nil {
			return "", "", err
		}
		return addr, typesys.MakePointer(elemT), nil

	case "*":
		v, t, err := fb.lowerExpr(n.Operand)
		if err != nil {
			return "", "", err
		}
		elem, ok := typesys.Deref(t)
		if !ok {
			return "", "", diag.New(diag.StageCodeGen, diag.IR_TYPE_MISMATCH,
				diag.Position{File: fb.b.file, Line: n.P.Line, Column: n.P.Column},
				"cannot dereference non-pointer type %s", t)
		}
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "load", Type: elem, Args: []string{v}})
		return reg, elem, nil

	case "-":
		v, t, err := fb.lowerExpr(n.Operand)
		if err != nil {
			return "", "", err
		}
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "neg", Type: t, Args: []string{v}})
		return reg, t, nil

	case "!":
		v, _, err := fb.lowerExpr(n.Operand)
		if err != nil {
			return "", "", err
		}
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "not", Type: "bool", Args: []string{v}})
		return reg, "bool", nil

	case "~":
		v, t, err := fb.lowerExpr(n.Operand)
		if err != nil {
			return "", "", err
		}
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "bitnot", Type: t, Args: []string{v}})
		return reg, t, nil

	case "++", "--":
		addr, t, err := fb.lowerAddr(n.Operand)
		if err != nil {
			return "", "", err
		}
		cur := fb.newReg()
		fb.emit(Instr{Result: cur, Op: "load", Type: t, Args: []string{addr}})
		op := "add"
		if n.Op == "--" {
			op = "sub"
		}
		res := fb.newReg()
		fb.emit(Instr{Result: res, Op: op, Type: t, Args: []string{cur, oneOf(t)}})
		fb.emit(Instr{Op: "store", Type: t, Args: []string{res, addr}})
		return res, t, nil
	}
	return "", "", fb.internalErr(n.P, "unknown unary operator %q", n.Op)
}

// lowerAddr resolves e to the address of the memory location it
// designates, failing with IR_NOT_LVALUE if e is not addressable (spec's
// SEMA_LVALUE already rejects most of these during semantic analysis; this
// is IR lowering's own backstop).
func (fb *funcBuilder) lowerAddr(e ast.Expr) (string, string, *diag.Error) {
	switch n := e.(type) {
	case *ast.Ident:
		if loc, ok := fb.locals[n.Name]; ok {
			return loc.slot, loc.typ, nil
		}
		if gt, ok := fb.b.globals[n.Name]; ok {
			return "@" + n.Name, gt, nil
		}
		return "", "", diag.New(diag.StageCodeGen, diag.IR_NOT_LVALUE,
			diag.Position{File: fb.b.file, Line: n.P.Line, Column: n.P.Column},
			"identifier %q is not addressable", n.Name)

	case *ast.UnaryExpr:
		if n.Op == "*" {
			v, t, err := fb.lowerExpr(n.Operand)
			if err != nil {
				return "", "", err
			}
			elem, ok := typesys.Deref(t)
			if !ok {
				return "", "", diag.New(diag.StageCodeGen, diag.IR_TYPE_MISMATCH,
					diag.Position{File: fb.b.file, Line: n.P.Line, Column: n.P.Column},
					"cannot dereference non-pointer type %s", t)
			}
			return v, elem, nil
		}

	case *ast.MemberExpr:
		baseAddr, baseType, err := fb.lowerAddr(n.Base)
		if err != nil {
			return "", "", err
		}
		m, ok := fb.b.types.Member(baseType, n.Field)
		if !ok {
			return "", "", fb.internalErr(n.P, "no member %q in %s", n.Field, baseType)
		}
		if tag, isUnion := typesys.UnionTag(baseType); isUnion {
			_ = tag
			reg := fb.newReg()
			fb.emit(Instr{Result: reg, Op: "gep", Type: m.Type, Args: []string{baseAddr, "0"}})
			return reg, m.Type, nil
		}
		tag, _ := typesys.StructTag(baseType)
		off, _ := structOffset(tag, n.Field, fb.b.types)
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "gep", Type: m.Type, Args: []string{baseAddr, strconv.Itoa(off)}})
		return reg, m.Type, nil

	case *ast.IndexExpr:
		if identBase, ok := n.Base.(*ast.Ident); ok {
			if loc, ok := fb.locals[identBase.Name]; ok && loc.isArray {
				idxVal, _, err := fb.lowerExpr(n.Index)
				if err != nil {
					return "", "", err
				}
				reg := fb.newReg()
				fb.emit(Instr{Result: reg, Op: "gep", Type: loc.typ, Args: []string{loc.slot, idxVal}})
				return reg, loc.typ, nil
			}
		}
		baseVal, baseType, err := fb.lowerExpr(n.Base)
		if err != nil {
			return "", "", err
		}
		elem, ok := typesys.Deref(baseType)
		if !ok {
			elem = baseType
		}
		idxVal, _, err := fb.lowerExpr(n.Index)
		if err != nil {
			return "", "", err
		}
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "gep", Type: elem, Args: []string{baseVal, idxVal}})
		return reg, elem, nil
	}

	return "", "", diag.New(diag.StageCodeGen, diag.IR_NOT_LVALUE,
		diag.Position{File: fb.b.file, Line: e.Pos().Line, Column: e.Pos().Column},
		"expression does not designate a memory location")
}

// coerceTo emits an int<->float/double cast when from and to disagree on
// floating-ness; matching integer/pointer/aggregate types pass through
// unchanged.
func (fb *funcBuilder) coerceTo(val, from, to string) string {
	if from == to || to == "" {
		return val
	}
	if isFloatLike(to) != isFloatLike(from) {
		reg := fb.newReg()
		fb.emit(Instr{Result: reg, Op: "cast", Type: to, Args: []string{from, val}})
		return reg
	}
	return val
}

func oneOf(t string) string {
	if isFloatLike(t) {
		return "1.0"
	}
	return "1"
}

func (fb *funcBuilder) internalErr(pos ast.Position, format string, args ...interface{}) *diag.Error {
	return diag.New(diag.StageCodeGen, diag.IR_UNSUPPORTED_TYPE,
		diag.Position{File: fb.b.file, Line: pos.Line, Column: pos.Column}, format, args...)
}

package semantic

import (
	"ccaot/internal/ast"
	"ccaot/internal/diag"
	"ccaot/internal/typesys"
)

// isLvalueExpr reports whether e designates a memory location that can be
// assigned to or have its address taken (spec's SEMA_LVALUE).
func isLvalueExpr(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Ident:
		return true
	case *ast.MemberExpr:
		return true
	case *ast.IndexExpr:
		return true
	case *ast.UnaryExpr:
		return n.Op == "*"
	}
	return false
}

// inferType resolves identifiers against scope, validates member access,
// calls and assignment targets, and returns the resulting type string.
// Arithmetic promotion and other numeric-conversion rules are finalized
// during IR lowering (spec §4.5); here we only need enough type
// information to catch the SEMA_* structural errors.
func (a *Analyzer) inferType(scope *Scope, e ast.Expr) (string, *diag.Error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return "int", nil

	case *ast.FloatLit:
		if n.Double {
			return "double", nil
		}
		return "float", nil

	case *ast.CharLit:
		return "char", nil

	case *ast.BoolLit:
		return "bool", nil

	case *ast.Ident:
		if sym, ok := scope.Lookup(n.Name); ok {
			return sym.Type, nil
		}
		if _, ok := a.Types.LookupEnumConst(n.Name); ok {
			return "int", nil
		}
		return "", a.errAt(diag.SEMA_UNDEF, n.P, "use of undeclared identifier %q", n.Name)

	case *ast.BinaryExpr:
		if _, err := a.inferType(scope, n.Left); err != nil {
			return "", err
		}
		if _, err := a.inferType(scope, n.Right); err != nil {
			return "", err
		}
		return "int", nil

	case *ast.UnaryExpr:
		t, err := a.inferType(scope, n.Operand)
		if err != nil {
			return "", err
		}
		switch n.Op {
		case "&":
			if !isLvalueExpr(n.Operand) {
				return "", a.errAt(diag.SEMA_LVALUE, n.P, "cannot take the address of a non-lvalue")
			}
			return typesys.MakePointer(t), nil
		case "*":
			if deref, ok := typesys.Deref(t); ok {
				return deref, nil
			}
			return t, nil
		case "++", "--":
			if !isLvalueExpr(n.Operand) {
				return "", a.errAt(diag.SEMA_LVALUE, n.P, "%s requires an lvalue operand", n.Op)
			}
			return t, nil
		}
		return t, nil

	case *ast.PostfixExpr:
		t, err := a.inferType(scope, n.Operand)
		if err != nil {
			return "", err
		}
		if !isLvalueExpr(n.Operand) {
			return "", a.errAt(diag.SEMA_LVALUE, n.P, "%s requires an lvalue operand", n.Op)
		}
		return t, nil

	case *ast.MemberExpr:
		baseType, err := a.inferType(scope, n.Base)
		if err != nil {
			return "", err
		}
		if m, ok := a.Types.Member(baseType, n.Field); ok {
			return m.Type, nil
		}
		if _, ok := typesys.StructTag(baseType); ok {
			return "", a.errAt(diag.SEMA_NO_MEMBER, n.P, "no member %q in %s", n.Field, baseType)
		}
		if _, ok := typesys.UnionTag(baseType); ok {
			return "", a.errAt(diag.SEMA_NO_MEMBER, n.P, "no member %q in %s", n.Field, baseType)
		}
		return "", a.errAt(diag.SEMA_NOT_AGGREGATE, n.P, "%s is not a struct or union", baseType)

	case *ast.IndexExpr:
		baseType, err := a.inferType(scope, n.Base)
		if err != nil {
			return "", err
		}
		if _, err := a.inferType(scope, n.Index); err != nil {
			return "", err
		}
		if elem, ok := typesys.Deref(baseType); ok {
			return elem, nil
		}
		// An array-typed symbol's declared Type already names its element
		// type (dimensions are tracked separately), so indexing it decays
		// to that same type string.
		return baseType, nil

	case *ast.CallExpr:
		sym, ok := scope.Lookup(n.Callee)
		if !ok {
			return "", a.errAt(diag.SEMA_UNDEF, n.P, "call to undeclared function %q", n.Callee)
		}
		if !sym.IsFunction {
			return "", a.errAt(diag.SEMA_NOT_CALLABLE, n.P, "%q is not callable", n.Callee)
		}
		if len(n.Args) != len(sym.ParamTypes) {
			return "", a.errAt(diag.SEMA_ARITY, n.P, "function %q expects %d argument(s), got %d", n.Callee, len(sym.ParamTypes), len(n.Args))
		}
		for _, arg := range n.Args {
			if _, err := a.inferType(scope, arg); err != nil {
				return "", err
			}
		}
		return sym.Type, nil

	case *ast.AssignExpr:
		if !isLvalueExpr(n.Target) {
			return "", a.errAt(diag.SEMA_LVALUE, n.P, "assignment target is not an lvalue")
		}
		if _, err := a.inferType(scope, n.Target); err != nil {
			return "", err
		}
		return a.inferType(scope, n.Value)

	case *ast.CastExpr:
		if _, err := a.inferType(scope, n.Operand); err != nil {
			return "", err
		}
		return n.Type, nil

	case *ast.InitListExpr:
		for _, el := range n.Elements {
			if _, err := a.inferType(scope, el); err != nil {
				return "", err
			}
		}
		return "", nil

	case *ast.SizeofExpr:
		return "int", nil
	}
	return "", nil
}

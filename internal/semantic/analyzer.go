// Package semantic implements the scoped symbol table and the semantic
// analysis pass: name resolution, aggregate/member checks, call checks, and
// enum constant folding, populating the Type Registry the IR generator
// later reads (spec §4.4).
package semantic

import (
	"ccaot/internal/ast"
	"ccaot/internal/diag"
	"ccaot/internal/typesys"
)

// Analyzer walks a Program once, in file order, maintaining one global
// scope and a fresh child scope per function body / compound statement /
// for-loop init (spec §4.4).
type Analyzer struct {
	file   string
	Types  *typesys.Registry
	Global *Scope
}

// New creates an Analyzer over a fresh Type Registry.
func New(file string) *Analyzer {
	return &Analyzer{file: file, Types: typesys.New(), Global: NewScope(nil)}
}

// Analyze runs the full semantic pass over prog, returning the first
// diag.Error encountered.
func (a *Analyzer) Analyze(prog *ast.Program) *diag.Error {
	for _, d := range prog.Decls {
		if err := a.analyzeTopDecl(d); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) errAt(code string, pos ast.Position, format string, args ...interface{}) *diag.Error {
	return diag.New(diag.StageSemantic, code, diag.Position{File: a.file, Line: pos.Line, Column: pos.Column}, format, args...)
}

func (a *Analyzer) analyzeTopDecl(d ast.Decl) *diag.Error {
	switch n := d.(type) {
	case *ast.StructDecl:
		return a.analyzeStructDecl(n)
	case *ast.UnionDecl:
		return a.analyzeUnionDecl(n)
	case *ast.EnumDecl:
		return a.analyzeEnumDecl(n)
	case *ast.FuncDecl:
		return a.analyzeFuncDecl(n)
	case *ast.VarDecl:
		return a.analyzeGlobalVarDecl(n)
	case *ast.MultiVarDecl:
		for _, v := range n.Vars {
			if err := a.analyzeGlobalVarDecl(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Analyzer) analyzeStructDecl(n *ast.StructDecl) *diag.Error {
	a.Types.AddStruct(n)
	return nil
}

// analyzeUnionDecl registers the union and rejects a member whose own type
// is a union (spec's SEMA_NESTED_UNION, and IR §4.5's flat byte-array
// lowering, which a nested union would defeat).
func (a *Analyzer) analyzeUnionDecl(n *ast.UnionDecl) *diag.Error {
	for _, m := range n.Members {
		if _, ok := typesys.UnionTag(m.Type); ok {
			return a.errAt(diag.SEMA_NESTED_UNION, n.P, "union %q cannot contain member %q of union type", n.Tag, m.Name)
		}
	}
	a.Types.AddUnion(n)
	return nil
}

// analyzeEnumDecl folds each enumerator's optional initializer to a
// compile-time integer constant and assigns the running-counter default to
// enumerators without one, resetting the counter to value+1 after an
// explicit initializer (spec §3's enum invariant).
func (a *Analyzer) analyzeEnumDecl(n *ast.EnumDecl) *diag.Error {
	var running int64
	for i := range n.Items {
		item := &n.Items[i]
		if item.Explicit != nil {
			v, ok := a.foldConstInt(item.Explicit)
			if !ok {
				return a.errAt(diag.SEMA_ENUM_INIT, item.Explicit.Pos(), "enumerator %q initializer must be a compile-time integer constant", item.Name)
			}
			item.Value = v
			running = v + 1
		} else {
			item.Value = running
			running++
		}
		sym := &Symbol{Name: item.Name, Type: "int"}
		if !a.Global.Declare(sym) {
			return a.errAt(diag.SEMA_REDECL, n.P, "%q already declared", item.Name)
		}
	}
	a.Types.AddEnum(n)
	return nil
}

// foldConstInt folds a restricted constant-expression grammar: integer
// literals, unary -/~ over a foldable operand, and references to
// already-declared enumerators.
func (a *Analyzer) foldConstInt(e ast.Expr) (int64, bool) {
	switch n := e.(type) {
	case *ast.IntLit:
		return n.Value, true
	case *ast.UnaryExpr:
		v, ok := a.foldConstInt(n.Operand)
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
		if v, ok := a.Types.LookupEnumConst(n.Name); ok {
			return v, true
		}
	}
	return 0, false
}

func (a *Analyzer) analyzeGlobalVarDecl(v *ast.VarDecl) *diag.Error {
	sym := &Symbol{Name: v.Name, Type: v.Type}
	if !a.Global.Declare(sym) {
		return a.errAt(diag.SEMA_REDECL, v.P, "%q already declared", v.Name)
	}
	if v.Init != nil {
		scope := NewScope(a.Global)
		if _, err := a.inferType(scope, v.Init); err != nil {
			return err
		}
	}
	return nil
}

// analyzeFuncDecl handles both prototypes (Body == nil) and definitions.
// A prototype followed by a matching definition is accepted; a differing
// signature is SEMA_CONFLICT; a second definition is SEMA_REDEF.
func (a *Analyzer) analyzeFuncDecl(n *ast.FuncDecl) *diag.Error {
	paramTypes := make([]string, len(n.Params))
	for i, p := range n.Params {
		paramTypes[i] = p.Type
	}

	if existing, ok := a.Global.LookupLocal(n.Name); ok {
		if !existing.IsFunction {
			return a.errAt(diag.SEMA_REDECL, n.P, "%q already declared as a variable", n.Name)
		}
		if existing.Type != n.ReturnType || !sameTypes(existing.ParamTypes, paramTypes) {
			return a.errAt(diag.SEMA_CONFLICT, n.P, "conflicting declaration for function %q", n.Name)
		}
		if n.Body != nil {
			if existing.IsDefined {
				return a.errAt(diag.SEMA_REDEF, n.P, "function %q already has a definition", n.Name)
			}
			existing.IsDefined = true
		}
	} else {
		a.Global.Declare(&Symbol{
			Name: n.Name, Type: n.ReturnType, IsFunction: true,
			ParamTypes: paramTypes, IsDefined: n.Body != nil,
		})
	}

	if n.Body == nil {
		return nil
	}

	fnScope := NewScope(a.Global)
	for _, p := range n.Params {
		fnScope.Declare(&Symbol{Name: p.Name, Type: p.Type})
	}
	return a.analyzeCompound(fnScope, n.Body)
}

func sameTypes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

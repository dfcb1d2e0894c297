package semantic

import (
	"ccaot/internal/ast"
	"ccaot/internal/diag"
)

// analyzeCompound opens a fresh child scope for the compound body, per
// spec §4.4.
func (a *Analyzer) analyzeCompound(parent *Scope, cs *ast.CompoundStmt) *diag.Error {
	scope := NewScope(parent)
	for _, s := range cs.Stmts {
		if err := a.analyzeStmt(scope, s); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeLocalVarDecl(scope *Scope, v *ast.VarDecl) *diag.Error {
	if !scope.Declare(&Symbol{Name: v.Name, Type: v.Type}) {
		return a.errAt(diag.SEMA_REDECL, v.P, "%q already declared in this scope", v.Name)
	}
	if v.Init != nil {
		if _, err := a.inferType(scope, v.Init); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeStmt(scope *Scope, s ast.Stmt) *diag.Error {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		return a.analyzeCompound(scope, n)

	case *ast.ExprStmt:
		_, err := a.inferType(scope, n.X)
		return err

	case *ast.ReturnStmt:
		if n.Value == nil {
			return nil
		}
		_, err := a.inferType(scope, n.Value)
		return err

	case *ast.IfStmt:
		if _, err := a.inferType(scope, n.Cond); err != nil {
			return err
		}
		if err := a.analyzeStmt(scope, n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return a.analyzeStmt(scope, n.Else)
		}
		return nil

	case *ast.WhileStmt:
		if _, err := a.inferType(scope, n.Cond); err != nil {
			return err
		}
		return a.analyzeStmt(scope, n.Body)

	case *ast.ForStmt:
		// The init clause gets its own scope (spec §4.4), so a loop variable
		// declared there is visible to the condition, post clause and body.
		loopScope := NewScope(scope)
		if n.Init != nil {
			if err := a.analyzeStmt(loopScope, n.Init); err != nil {
				return err
			}
		}
		if n.Cond != nil {
			if _, err := a.inferType(loopScope, n.Cond); err != nil {
				return err
			}
		}
		if n.Post != nil {
			if err := a.analyzeStmt(loopScope, n.Post); err != nil {
				return err
			}
		}
		return a.analyzeStmt(loopScope, n.Body)

	case *ast.SwitchStmt:
		if _, err := a.inferType(scope, n.Tag); err != nil {
			return err
		}
		// Case-label constness (IR_CASE_NOT_CONST) is checked during IR
		// lowering, where the constant pool lives (spec §4.5).
		for _, c := range n.Cases {
			if err := a.analyzeStmt(scope, c.Body); err != nil {
				return err
			}
		}
		return nil

	case *ast.VarDeclStmt:
		for _, v := range n.Vars {
			if err := a.analyzeLocalVarDecl(scope, v); err != nil {
				return err
			}
		}
		return nil

	case *ast.DeclStmt:
		switch dd := n.Decl.(type) {
		case *ast.StructDecl:
			return a.analyzeStructDecl(dd)
		case *ast.UnionDecl:
			return a.analyzeUnionDecl(dd)
		case *ast.EnumDecl:
			return a.analyzeEnumDecl(dd)
		}
		return nil

	case *ast.BreakStmt, *ast.ContinueStmt:
		return nil
	}
	return nil
}

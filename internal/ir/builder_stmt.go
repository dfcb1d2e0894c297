package ir

import (
	"strconv"

	"ccaot/internal/ast"
	"ccaot/internal/diag"
)

func (fb *funcBuilder) lowerCompound(cs *ast.CompoundStmt) *diag.Error {
	for _, s := range cs.Stmts {
		if fb.cur.terminated() {
			return nil
		}
		if err := fb.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fb *funcBuilder) lowerStmt(s ast.Stmt) *diag.Error {
	if fb.cur.terminated() {
		return nil
	}
	switch n := s.(type) {
	case *ast.CompoundStmt:
		return fb.lowerCompound(n)

	case *ast.ExprStmt:
		_, _, err := fb.lowerExpr(n.X)
		return err

	case *ast.ReturnStmt:
		if n.Value == nil {
			fb.setTerm(Instr{Op: "ret", Type: "void"})
			return nil
		}
		v, t, err := fb.lowerExpr(n.Value)
		if err != nil {
			return err
		}
		v = fb.coerceTo(v, t, fb.decl.ReturnType)
		fb.setTerm(Instr{Op: "ret", Type: irType(fb.decl.ReturnType), Args: []string{v}})
		return nil

	case *ast.IfStmt:
		return fb.lowerIf(n)

	case *ast.WhileStmt:
		return fb.lowerWhile(n)

	case *ast.ForStmt:
		return fb.lowerFor(n)

	case *ast.SwitchStmt:
		return fb.lowerSwitch(n)

	case *ast.VarDeclStmt:
		for _, v := range n.Vars {
			if err := fb.lowerLocalVarDecl(v); err != nil {
				return err
			}
		}
		return nil

	case *ast.DeclStmt:
		// Nested struct/union/enum declarations carry no runtime
		// instructions; the semantic pass already registered them.
		return nil

	case *ast.BreakStmt:
		if len(fb.breakStack) > 0 {
			fb.setTerm(Instr{Op: "br", Args: []string{fb.breakStack[len(fb.breakStack)-1]}})
		}
		return nil

	case *ast.ContinueStmt:
		if len(fb.loopStack) > 0 {
			fb.setTerm(Instr{Op: "br", Args: []string{fb.loopStack[len(fb.loopStack)-1].contLabel}})
		}
		return nil
	}
	return nil
}

func (fb *funcBuilder) lowerIf(n *ast.IfStmt) *diag.Error {
	cond, _, err := fb.lowerExpr(n.Cond)
	if err != nil {
		return err
	}
	thenL := fb.newLabel("if.then")
	endL := fb.newLabel("if.end")
	elseTarget := endL
	var elseL string
	if n.Else != nil {
		elseL = fb.newLabel("if.else")
		elseTarget = elseL
	}
	fb.setTerm(Instr{Op: "condbr", Args: []string{cond, thenL, elseTarget}})

	fb.cur = fb.newBlock(thenL)
	if err := fb.lowerStmt(n.Then); err != nil {
		return err
	}
	if !fb.cur.terminated() {
		fb.setTerm(Instr{Op: "br", Args: []string{endL}})
	}

	if n.Else != nil {
		fb.cur = fb.newBlock(elseL)
		if err := fb.lowerStmt(n.Else); err != nil {
			return err
		}
		if !fb.cur.terminated() {
			fb.setTerm(Instr{Op: "br", Args: []string{endL}})
		}
	}

	fb.cur = fb.newBlock(endL)
	return nil
}

func (fb *funcBuilder) lowerWhile(n *ast.WhileStmt) *diag.Error {
	condL := fb.newLabel("while.cond")
	bodyL := fb.newLabel("while.body")
	endL := fb.newLabel("while.end")

	fb.setTerm(Instr{Op: "br", Args: []string{condL}})

	fb.cur = fb.newBlock(condL)
	condVal, _, err := fb.lowerExpr(n.Cond)
	if err != nil {
		return err
	}
	fb.setTerm(Instr{Op: "condbr", Args: []string{condVal, bodyL, endL}})

	fb.cur = fb.newBlock(bodyL)
	fb.loopStack = append(fb.loopStack, loopCtx{contLabel: condL, breakLabel: endL})
	fb.breakStack = append(fb.breakStack, endL)
	err = fb.lowerStmt(n.Body)
	fb.loopStack = fb.loopStack[:len(fb.loopStack)-1]
	fb.breakStack = fb.breakStack[:len(fb.breakStack)-1]
	if err != nil {
		return err
	}
	if !fb.cur.terminated() {
		fb.setTerm(Instr{Op: "br", Args: []string{condL}})
	}

	fb.cur = fb.newBlock(endL)
	return nil
}

// lowerFor treats an absent condition as literal true (spec §4.3's
// "for(;;)" edge case). The init clause is lowered into the current block
// with no scope of its own: locals declared there land in the function-wide
// fb.locals map like any other local, so cond/post/body see them.
func (fb *funcBuilder) lowerFor(n *ast.ForStmt) *diag.Error {
	if n.Init != nil {
		if err := fb.lowerStmt(n.Init); err != nil {
			return err
		}
	}

	condL := fb.newLabel("for.cond")
	bodyL := fb.newLabel("for.body")
	postL := fb.newLabel("for.post")
	endL := fb.newLabel("for.end")

	fb.setTerm(Instr{Op: "br", Args: []string{condL}})

	fb.cur = fb.newBlock(condL)
	condVal, _, err := fb.lowerExpr(n.Cond)
	if err != nil {
		return err
	}
	fb.setTerm(Instr{Op: "condbr", Args: []string{condVal, bodyL, endL}})

	fb.cur = fb.newBlock(bodyL)
	fb.loopStack = append(fb.loopStack, loopCtx{contLabel: postL, breakLabel: endL})
	fb.breakStack = append(fb.breakStack, endL)
	err = fb.lowerStmt(n.Body)
	fb.loopStack = fb.loopStack[:len(fb.loopStack)-1]
	fb.breakStack = fb.breakStack[:len(fb.breakStack)-1]
	if err != nil {
		return err
	}
	if !fb.cur.terminated() {
		fb.setTerm(Instr{Op: "br", Args: []string{postL}})
	}

	fb.cur = fb.newBlock(postL)
	if n.Post != nil {
		if err := fb.lowerStmt(n.Post); err != nil {
			return err
		}
	}
	if !fb.cur.terminated() {
		fb.setTerm(Instr{Op: "br", Args: []string{condL}})
	}

	fb.cur = fb.newBlock(endL)
	return nil
}

// lowerSwitch lowers a switch into a sequential chain of equality tests
// against the tag, dispatching to one basic block per distinct case body
// (in source order). A case body that does not end in a terminator
// branches to the default body, or to the switch end when there is no
// default; the default body itself falls through to the switch end. This
// is not C's fall-through into the next case.
func (fb *funcBuilder) lowerSwitch(n *ast.SwitchStmt) *diag.Error {
	tagVal, _, err := fb.lowerExpr(n.Tag)
	if err != nil {
		return err
	}

	endL := fb.newLabel("switch.end")

	blockOf := map[ast.Stmt]*BasicBlock{}
	var order []ast.Stmt
	for _, c := range n.Cases {
		if _, ok := blockOf[c.Body]; !ok {
			blk := &BasicBlock{Label: fb.newLabel("switch.case")}
			blockOf[c.Body] = blk
			order = append(order, c.Body)
		}
	}

	defaultTarget := endL
	for _, c := range n.Cases {
		if c.Label == nil {
			defaultTarget = blockOf[c.Body].Label
			break
		}
	}

	for _, c := range n.Cases {
		if c.Label == nil {
			continue
		}
		constVal, ok := fb.b.foldConstInt(c.Label)
		if !ok {
			return diag.New(diag.StageCodeGen, diag.IR_CASE_NOT_CONST,
				diag.Position{File: fb.b.file, Line: c.Label.Pos().Line, Column: c.Label.Pos().Column},
				"switch case label does not fold to a compile-time integer constant")
		}
		cmpReg := fb.newReg()
		fb.emit(Instr{Result: cmpReg, Op: "icmp.eq", Type: "int", Args: []string{tagVal, strconv.FormatInt(constVal, 10)}})
		nextLabel := fb.newLabel("switch.check")
		fb.setTerm(Instr{Op: "condbr", Args: []string{cmpReg, blockOf[c.Body].Label, nextLabel}})
		fb.fn.Blocks = append(fb.fn.Blocks, &BasicBlock{Label: nextLabel})
		fb.cur = fb.fn.Blocks[len(fb.fn.Blocks)-1]
	}
	fb.setTerm(Instr{Op: "br", Args: []string{defaultTarget}})

	fb.breakStack = append(fb.breakStack, endL)
	for _, body := range order {
		blk := blockOf[body]
		fb.fn.Blocks = append(fb.fn.Blocks, blk)
		fb.cur = blk
		if err := fb.lowerStmt(body); err != nil {
			fb.breakStack = fb.breakStack[:len(fb.breakStack)-1]
			return err
		}
		if !fb.cur.terminated() {
			if blk.Label != defaultTarget {
				fb.setTerm(Instr{Op: "br", Args: []string{defaultTarget}})
			} else {
				fb.setTerm(Instr{Op: "br", Args: []string{endL}})
			}
		}
	}
	fb.breakStack = fb.breakStack[:len(fb.breakStack)-1]

	fb.cur = fb.newBlock(endL)
	return nil
}

func (fb *funcBuilder) lowerLocalVarDecl(v *ast.VarDecl) *diag.Error {
	slot := "%" + v.Name + ".addr"
	if len(v.Dims) > 0 {
		count := 1
		for _, d := range v.Dims {
			if n, ok := fb.b.foldConstInt(d); ok {
				count *= int(n)
			}
		}
		fb.emit(Instr{Result: slot, Op: "alloca", Type: v.Type + "[" + strconv.Itoa(count) + "]"})
		fb.locals[v.Name] = localInfo{slot: slot, typ: v.Type, isArray: true}
		if initList, ok := v.Init.(*ast.InitListExpr); ok {
			for idx, el := range initList.Elements {
				val, elemT, err := fb.lowerExpr(el)
				if err != nil {
					return err
				}
				val = fb.coerceTo(val, elemT, v.Type)
				addr := fb.newReg()
				fb.emit(Instr{Result: addr, Op: "gep", Type: v.Type, Args: []string{slot, strconv.Itoa(idx)}})
				fb.emit(Instr{Op: "store", Type: v.Type, Args: []string{val, addr}})
			}
		}
		return nil
	}

	fb.emit(Instr{Result: slot, Op: "alloca", Type: v.Type})
	fb.locals[v.Name] = localInfo{slot: slot, typ: v.Type}
	if v.Init != nil {
		val, vt, err := fb.lowerExpr(v.Init)
		if err != nil {
			return err
		}
		val = fb.coerceTo(val, vt, v.Type)
		fb.emit(Instr{Op: "store", Type: v.Type, Args: []string{val, slot}})
	}
	return nil
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ccaot/internal/ast"
	"ccaot/internal/lexer"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, lexErr := lexer.New("test.c", src).Scan()
	require.Nil(t, lexErr)
	prog, err := Parse("test.c", toks)
	require.Nil(t, err)
	return prog
}

func TestParsesFunctionPrototypeThenDefinition(t *testing.T) {
	prog := parseSource(t, `
		int add(int a, int b);
		int add(int a, int b) { return a + b; }
	`)
	require.Len(t, prog.Decls, 2)

	proto, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Nil(t, proto.Body)
	require.Equal(t, "add", proto.Name)
	require.Len(t, proto.Params, 2)

	def, ok := prog.Decls[1].(*ast.FuncDecl)
	require.True(t, ok)
	require.NotNil(t, def.Body)
}

func TestParsesStructDecl(t *testing.T) {
	prog := parseSource(t, `
		struct Point { int x; int y; };
	`)
	require.Len(t, prog.Decls, 1)
	sd, ok := prog.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Equal(t, "Point", sd.Tag)
	require.Len(t, sd.Members, 2)
	require.Equal(t, "int", sd.Members[0].Type)
}

func TestParsesEnumWithMixedInitializers(t *testing.T) {
	prog := parseSource(t, `
		enum Op { ADD = 10, SUB, MUL = 20, DIV };
	`)
	ed, ok := prog.Decls[0].(*ast.EnumDecl)
	require.True(t, ok)
	require.Len(t, ed.Items, 4)
	require.Equal(t, "ADD", ed.Items[0].Name)
	require.NotNil(t, ed.Items[0].Explicit)
	require.Nil(t, ed.Items[1].Explicit)
	require.NotNil(t, ed.Items[2].Explicit)
	require.Nil(t, ed.Items[3].Explicit)
}

func TestMultiVariableDeclarator(t *testing.T) {
	prog := parseSource(t, `
		int a, b = 1, c;
	`)
	mv, ok := prog.Decls[0].(*ast.MultiVarDecl)
	require.True(t, ok)
	require.Len(t, mv.Vars, 3)
	require.Nil(t, mv.Vars[0].Init)
	require.NotNil(t, mv.Vars[1].Init)
}

func TestBinaryPrecedenceClimbing(t *testing.T) {
	prog := parseSource(t, `
		int main() { return 1 + 2 * 3; }
	`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	top, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", top.Op)
	require.Equal(t, int64(1), top.Left.(*ast.IntLit).Value)
	mul, ok := top.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "*", mul.Op)
}

func TestCastVsGroupingDisambiguation(t *testing.T) {
	prog := parseSource(t, `
		int main() { int x; x = (int) 1; x = (1 + 2); return x; }
	`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	cast := fd.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.AssignExpr).Value
	_, isCast := cast.(*ast.CastExpr)
	require.True(t, isCast)

	grouped := fd.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.AssignExpr).Value
	_, isBinary := grouped.(*ast.BinaryExpr)
	require.True(t, isBinary)
}

func TestCompoundAssignDesugars(t *testing.T) {
	prog := parseSource(t, `
		int main() { int x; x += 1; return x; }
	`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	assign := fd.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.AssignExpr)
	bin, ok := assign.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}

func TestForLoopAbsentConditionDefaultsTrue(t *testing.T) {
	prog := parseSource(t, `
		int main() { for (;;) { break; } return 0; }
	`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	fs := fd.Body.Stmts[0].(*ast.ForStmt)
	require.Nil(t, fs.Init)
	bl, ok := fs.Cond.(*ast.BoolLit)
	require.True(t, ok)
	require.True(t, bl.Value)
}

func TestSwitchWithOnlyDefault(t *testing.T) {
	prog := parseSource(t, `
		int main() { switch (1) { default: break; } return 0; }
	`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	sw := fd.Body.Stmts[0].(*ast.SwitchStmt)
	require.Len(t, sw.Cases, 1)
	require.Nil(t, sw.Cases[0].Label)
}

func TestPostfixChainOnIndexedElement(t *testing.T) {
	prog := parseSource(t, `
		int main() { int a[3]; a[0]++; return a[0]; }
	`)
	fd := prog.Decls[0].(*ast.FuncDecl)
	es := fd.Body.Stmts[1].(*ast.ExprStmt)
	_, ok := es.X.(*ast.PostfixExpr)
	require.True(t, ok)
}

func TestCallOnlyOnBareIdentifier(t *testing.T) {
	prog := parseSource(t, `
		int factorial(int n);
		int main() { return factorial(5); }
	`)
	fd := prog.Decls[1].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Value.(*ast.CallExpr)
	require.True(t, ok)
	require.Equal(t, "factorial", call.Callee)
	require.Len(t, call.Args, 1)
}

func TestNestedStructTypeUseAsVariable(t *testing.T) {
	prog := parseSource(t, `
		struct Point { int x; int y; };
		int main() { struct Point p; return p.x; }
	`)
	fd := prog.Decls[1].(*ast.FuncDecl)
	_, isVarDeclStmt := fd.Body.Stmts[0].(*ast.VarDeclStmt)
	require.True(t, isVarDeclStmt)
}

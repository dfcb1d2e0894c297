package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ccaot/internal/lexer"
	"ccaot/internal/parser"
	"ccaot/internal/semantic"
)

func buildSource(t *testing.T, src string) *Module {
	t.Helper()
	toks, lexErr := lexer.New("test.c", src).Scan()
	require.Nil(t, lexErr)
	prog, parseErr := parser.Parse("test.c", toks)
	require.Nil(t, parseErr)
	a := semantic.New("test.c")
	semErr := a.Analyze(prog)
	require.Nil(t, semErr)
	b := NewBuilder("test.c", a.Types)
	m, irErr := b.Build(prog)
	require.Nil(t, irErr)
	require.Nil(t, Verify(m))
	return m
}

func findFunc(m *Module, name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestFactorialReturnsViaLoopBackedgeAndVerifies(t *testing.T) {
	m := buildSource(t, `
		int factorial(int n) {
			int result = 1;
			while (n > 1) {
				result = result * n;
				n = n - 1;
			}
			return result;
		}
	`)
	fn := findFunc(m, "factorial")
	require.NotNil(t, fn)
	require.True(t, len(fn.Blocks) >= 4)
	last := fn.Blocks[len(fn.Blocks)-1]
	require.Equal(t, "ret", last.Term.Op)
}

func TestIfElseProducesThreeExtraBlocks(t *testing.T) {
	m := buildSource(t, `
		int pick(int a, int b) {
			if (a > b) {
				return a;
			} else {
				return b;
			}
		}
	`)
	fn := findFunc(m, "pick")
	var labels []string
	for _, b := range fn.Blocks {
		labels = append(labels, b.Label)
	}
	joined := strings.Join(labels, ",")
	require.Contains(t, joined, "if.then")
	require.Contains(t, joined, "if.else")
	require.Contains(t, joined, "if.end")
}

func TestForLoopAbsentConditionIsTreatedTrue(t *testing.T) {
	m := buildSource(t, `
		int loopForever() {
			for (;;) {
				return 1;
			}
		}
	`)
	fn := findFunc(m, "loopForever")
	var cond *BasicBlock
	for _, b := range fn.Blocks {
		if strings.HasPrefix(b.Label, "for.cond") {
			cond = b
		}
	}
	require.NotNil(t, cond)
	require.Equal(t, "condbr", cond.Term.Op)
	require.Equal(t, "true", cond.Term.Args[0])
}

func TestSwitchFallsThroughToDefault(t *testing.T) {
	m := buildSource(t, `
		enum Op { ADD, SUB, MUL, DIV };
		int apply(int tag, int a, int b) {
			int result;
			switch (tag) {
			case ADD:
				result = a + b;
				break;
			case MUL:
				result = a * b;
			default:
				result = 0;
			}
			return result;
		}
	`)
	fn := findFunc(m, "apply")
	var caseBlocks []*BasicBlock
	for _, b := range fn.Blocks {
		if strings.HasPrefix(b.Label, "switch.case") {
			caseBlocks = append(caseBlocks, b)
		}
	}
	require.Len(t, caseBlocks, 3)
	mulBlock := caseBlocks[1]
	require.Equal(t, "br", mulBlock.Term.Op)
	require.Equal(t, caseBlocks[2].Label, mulBlock.Term.Args[0])
}

func TestStructMemberOffsetsAccumulate(t *testing.T) {
	m := buildSource(t, `
		struct Point { int x; int y; };
		int sumFields(struct Point p) {
			struct Point local;
			local.x = 1;
			local.y = 2;
			return local.x + local.y;
		}
	`)
	fn := findFunc(m, "sumFields")
	var gepOffsets []string
	for _, b := range fn.Blocks {
		for _, i := range b.Instrs {
			if i.Op == "gep" {
				gepOffsets = append(gepOffsets, i.Args[1])
			}
		}
	}
	require.Contains(t, gepOffsets, "0")
	require.Contains(t, gepOffsets, "4")
}

func TestUnionMembersAllAddressZero(t *testing.T) {
	m := buildSource(t, `
		union Cell { int asInt; float asFloat; };
		int reassign() {
			union Cell c;
			c.asInt = 1;
			c.asFloat = 2.0;
			return c.asInt;
		}
	`)
	fn := findFunc(m, "reassign")
	for _, b := range fn.Blocks {
		for _, i := range b.Instrs {
			if i.Op == "gep" {
				require.Equal(t, "0", i.Args[1])
			}
		}
	}
}

func TestPointerSwapDereferencesParameters(t *testing.T) {
	m := buildSource(t, `
		void swap(int* x, int* y) {
			int tmp = *x;
			*x = *y;
			*y = tmp;
		}
	`)
	fn := findFunc(m, "swap")
	var sawLoadThroughParam, sawStoreThroughParam bool
	for _, b := range fn.Blocks {
		for _, i := range b.Instrs {
			if i.Op == "load" && len(i.Args) == 1 && i.Args[0] == "%t1" {
				sawLoadThroughParam = true
			}
			if i.Op == "store" {
				sawStoreThroughParam = true
			}
		}
	}
	require.True(t, sawLoadThroughParam || sawStoreThroughParam)
}

func TestPrototypeThenDefinitionLowersBothEntries(t *testing.T) {
	m := buildSource(t, `
		int declaredOnly(int a);
		int declaredOnly(int a) { return a; }
	`)
	var sawPrototype, sawDefinition bool
	for _, fn := range m.Functions {
		if fn.Name != "declaredOnly" {
			continue
		}
		if fn.Blocks == nil {
			sawPrototype = true
		} else {
			sawDefinition = true
		}
	}
	require.True(t, sawPrototype)
	require.True(t, sawDefinition)
}

func TestModulePrinterRendersGlobalsAndFunctions(t *testing.T) {
	m := buildSource(t, `
		int counter = 0;
		int increment() {
			counter = counter + 1;
			return counter;
		}
	`)
	out := m.String()
	require.Contains(t, out, "global int @counter = 0")
	require.Contains(t, out, "func int @increment()")
	require.Contains(t, out, "entry:")
}

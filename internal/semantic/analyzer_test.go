package semantic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ccaot/internal/lexer"
	"ccaot/internal/parser"
)

func analyzeSource(t *testing.T, src string) (*Analyzer, error) {
	t.Helper()
	toks, lexErr := lexer.New("test.c", src).Scan()
	require.Nil(t, lexErr)
	prog, parseErr := parser.Parse("test.c", toks)
	require.Nil(t, parseErr)
	a := New("test.c")
	semErr := a.Analyze(prog)
	if semErr != nil {
		return a, semErr
	}
	return a, nil
}

func TestEnumRunningCounterResetsAfterExplicitValue(t *testing.T) {
	a, err := analyzeSource(t, `
		enum Op { ADD = 10, SUB, MUL = 20, DIV };
	`)
	require.NoError(t, err)
	require.Equal(t, int64(10), mustEnum(a, "ADD"))
	require.Equal(t, int64(11), mustEnum(a, "SUB"))
	require.Equal(t, int64(20), mustEnum(a, "MUL"))
	require.Equal(t, int64(21), mustEnum(a, "DIV"))
}

func mustEnum(a *Analyzer, name string) int64 {
	v, _ := a.Types.LookupEnumConst(name)
	return v
}

func TestPrototypeThenMatchingDefinitionAccepted(t *testing.T) {
	_, err := analyzeSource(t, `
		int add(int a, int b);
		int add(int a, int b) { return a + b; }
	`)
	require.NoError(t, err)
}

func TestPrototypeThenDifferingSignatureConflicts(t *testing.T) {
	_, err := analyzeSource(t, `
		int add(int a, int b);
		int add(int a) { return a; }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_CONFLICT")
}

func TestSecondDefinitionIsRedef(t *testing.T) {
	_, err := analyzeSource(t, `
		int add(int a) { return a; }
		int add(int a) { return a; }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_REDEF")
}

func TestUndeclaredIdentifierIsUndef(t *testing.T) {
	_, err := analyzeSource(t, `
		int main() { return missing; }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_UNDEF")
}

func TestAssignToNonLvalueIsRejected(t *testing.T) {
	_, err := analyzeSource(t, `
		int main() { 1 = 2; return 0; }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_LVALUE")
}

func TestMemberAccessOnNonAggregateIsRejected(t *testing.T) {
	_, err := analyzeSource(t, `
		int main() { int x; return x.field; }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_NOT_AGGREGATE")
}

func TestUnknownMemberIsRejected(t *testing.T) {
	_, err := analyzeSource(t, `
		struct Point { int x; int y; };
		int main() { struct Point p; return p.z; }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_NO_MEMBER")
}

func TestCallArityMismatchIsRejected(t *testing.T) {
	_, err := analyzeSource(t, `
		int add(int a, int b);
		int main() { return add(1); }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_ARITY")
}

func TestCallOnNonFunctionIsRejected(t *testing.T) {
	_, err := analyzeSource(t, `
		int add;
		int main() { return add(1); }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_NOT_CALLABLE")
}

func TestNestedUnionMemberIsRejected(t *testing.T) {
	_, err := analyzeSource(t, `
		union Inner { int a; };
		union Outer { union Inner i; };
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEMA_NESTED_UNION")
}

func TestForLoopInitScopeVisibleToCondAndBody(t *testing.T) {
	_, err := analyzeSource(t, `
		int main() {
			int total = 0;
			for (int i = 0; i < 3; i++) { total = total + i; }
			return total;
		}
	`)
	require.NoError(t, err)
}

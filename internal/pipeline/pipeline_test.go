package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFactorialCompilesAndRecurses(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "factorial.c", `
		int factorial(int n) {
			if (n <= 1) {
				return 1;
			} else {
				return n * factorial(n - 1);
			}
		}

		int add(int a, int b) { return a + b; }

		int main() {
			int num = 5;
			int fact = factorial(num);
			int sum = add(num, fact);
			if (sum > 100) {
				return sum;
			} else {
				return 0;
			}
		}
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	require.Contains(t, res.IRText, "func int @factorial(int %n)")
	require.Contains(t, res.IRText, "call int @factorial")
}

func TestNestedStructMemberAccessAccumulatesOffsets(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "struct_nested.c", `
		struct Point { int x; int y; };
		struct Rectangle { struct Point topLeft; struct Point bottomRight; };

		int main() {
			struct Rectangle rect;
			rect.topLeft.x = 1;
			rect.topLeft.y = 2;
			rect.bottomRight.x = 3;
			rect.bottomRight.y = 4;
			int sum = rect.topLeft.x + rect.topLeft.y + rect.bottomRight.x + rect.bottomRight.y;
			return sum;
		}
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	require.Contains(t, res.IRText, "gep")
	require.Contains(t, res.IRText, "gep struct Point %rect.addr, 8")
}

func TestSwitchEnumDispatchesThroughDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "switch_enum.c", `
		enum Operation { ADD, SUB, MUL, DIV };

		int main() {
			enum Operation op = MUL;
			int result = 0;
			switch (op) {
				case ADD: result = 1; break;
				case SUB: result = 2; break;
				case MUL: result = 3; break;
				case DIV: result = 4; break;
				default: result = 0;
			}
			return result;
		}
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	require.Contains(t, res.IRText, "switch.case")
}

func TestUnionReassignSharesStorageAtOffsetZero(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "union_reassign.c", `
		union U { int i; int j; };

		int main() {
			union U u;
			u.i = 10;
			int a = u.i;
			u.j = 20;
			int b = u.i;
			return a + b;
		}
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	for _, f := range res.Module.Functions {
		for _, blk := range f.Blocks {
			for _, ins := range blk.Instrs {
				if ins.Op == "gep" {
					require.Equal(t, "0", ins.Args[1])
				}
			}
		}
	}
}

func TestPointerSwapThroughAddressOf(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "swap.c", `
		void swap(int *a, int *b) {
			int temp = *a;
			*a = *b;
			*b = temp;
		}

		int main() {
			int x = 10, y = 20;
			swap(&x, &y);
			return x - y;
		}
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	require.Contains(t, res.IRText, "func void @swap(int* %a, int* %b)")
}

func TestPreprocessorNestedMacroComposition(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "nested.c", `
		#define INC(x) ((x) + 1)
		#define DOUBLE(x) ((x) + (x))
		#define COMPOSE(x) DOUBLE(INC(x))

		int main() {
			return COMPOSE(5);
		}
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	require.Contains(t, res.Preprocessed, "5")
	require.NotContains(t, res.Preprocessed, "COMPOSE")
}

func TestEmptyParamListFunctionCompiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "empty_params.c", `
		int answer() { return 42; }
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	require.Contains(t, res.IRText, "func int @answer()")
}

func TestPrototypeThenIdenticalDefinitionAccepted(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "proto.c", `
		int helper(int a);
		int helper(int a) { return a + 1; }

		int main() { return helper(1); }
	`)
	_, err := Compile(path, nil, nil)
	require.Nil(t, err)
}

func TestPrototypeThenDifferingDefinitionConflicts(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "proto_conflict.c", `
		int helper(int a);
		int helper(int a, int b) { return a + b; }
	`)
	_, err := Compile(path, nil, nil)
	require.NotNil(t, err)
	require.Equal(t, "SEMA_CONFLICT", err.Code)
}

func TestForLoopAbsentConditionDefaultsTrue(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "forever.c", `
		int loopOnce() {
			for (;;) {
				return 7;
			}
		}
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	require.Contains(t, res.IRText, "for.cond")
	require.Contains(t, res.IRText, "condbr true")
}

func TestSwitchWithOnlyDefaultCompiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "only_default.c", `
		int main() {
			int tag = 1;
			int result = 0;
			switch (tag) {
				default: result = 9;
			}
			return result;
		}
	`)
	res, err := Compile(path, nil, nil)
	require.Nil(t, err)
	require.Contains(t, res.IRText, "switch.end")
}

func TestEnumWithOneExplicitInitializerThenImplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "enum_partial.c", `
		enum Level { LOW = 5, MEDIUM, HIGH };

		int main() {
			enum Level l = HIGH;
			return l;
		}
	`)
	_, err := Compile(path, nil, nil)
	require.Nil(t, err)
}

func TestGuardedHeaderIncludedFromTwoPlacesExpandsOnce(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "shared.h", `
		#ifndef SHARED_H
		#define SHARED_H
		int sharedValue = 7;
		#endif
	`)
	a := writeSource(t, dir, "a.h", `
		#include "shared.h"
	`)
	_ = a
	main := writeSource(t, dir, "main.c", `
		#include "shared.h"
		#include "a.h"

		int main() {
			return sharedValue;
		}
	`)
	res, err := Compile(main, nil, nil)
	require.Nil(t, err)
	require.Equal(t, 1, strings.Count(res.Preprocessed, "sharedValue = 7"))
}

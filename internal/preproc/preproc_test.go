package preproc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestObjectLikeMacroExpansion(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.c", "#define SIZE 10\nint a[SIZE];\n")

	out, err := New(nil, nil).Process(main)
	require.Nil(t, err)
	require.Contains(t, out, "int a[10];")
}

func TestFunctionLikeMacroNestedExpansion(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.c",
		"#define INC(x) ((x) + 1)\n#define DOUBLE(x) (x + x)\n#define COMPOSE(x) DOUBLE(INC(x))\nint r = COMPOSE(5);\n")

	out, err := New(nil, nil).Process(main)
	require.Nil(t, err)
	require.Contains(t, out, "(((5) + 1) + ((5) + 1))")
}

func TestIncludeGuardPreventsSecondExpansion(t *testing.T) {
	dir := t.TempDir()
	header := writeFile(t, dir, "h.h", "#ifndef H_H\n#define H_H\nint guarded_value = 1;\n#endif\n")
	_ = header
	main := writeFile(t, dir, "main.c", "#include \"h.h\"\n#include \"h.h\"\nint use;\n")

	out, err := New(nil, nil).Process(main)
	require.Nil(t, err)
	require.Equal(t, 1, countOccurrences(out, "guarded_value"))
}

func TestCircularIncludeFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.h", "#include \"b.h\"\n")
	writeFile(t, dir, "b.h", "#include \"a.h\"\n")
	main := writeFile(t, dir, "main.c", "#include \"a.h\"\n")

	_, err := New(nil, nil).Process(main)
	require.NotNil(t, err)
	require.Equal(t, "PP_CYCLE", err.Code)
}

func TestHeaderNotFound(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.c", "#include \"missing.h\"\n")

	_, err := New(nil, nil).Process(main)
	require.NotNil(t, err)
	require.Equal(t, "PP_HEADER_NOT_FOUND", err.Code)
}

func TestUnbalancedConditionalFails(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.c", "#if 1\nint x;\n")

	_, err := New(nil, nil).Process(main)
	require.NotNil(t, err)
	require.Equal(t, "PP_UNBALANCED", err.Code)
}

func TestElifChain(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.c",
		"#define MODE 2\n#if MODE == 1\nint x = 1;\n#elif MODE == 2\nint x = 2;\n#else\nint x = 3;\n#endif\n")

	out, err := New(nil, nil).Process(main)
	require.Nil(t, err)
	require.Contains(t, out, "int x = 2;")
	require.NotContains(t, out, "int x = 1;")
	require.NotContains(t, out, "int x = 3;")
}

func TestDefinedOperator(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.c",
		"#define FEATURE\n#if defined(FEATURE)\nint on;\n#else\nint off;\n#endif\n")

	out, err := New(nil, nil).Process(main)
	require.Nil(t, err)
	require.Contains(t, out, "int on;")
	require.NotContains(t, out, "int off;")
}

func TestStringificationAndPaste(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.c",
		"#define STR(x) #x\n#define CAT(a, b) a ## b\nconst char *s = STR(hello);\nint CAT(foo, bar) = 1;\n")

	out, err := New(nil, nil).Process(main)
	require.Nil(t, err)
	require.Contains(t, out, `"hello"`)
	require.Contains(t, out, "int foobar = 1;")
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
			i += len(substr) - 1
		}
	}
	return count
}

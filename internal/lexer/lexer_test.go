package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ccaot/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := New("t.c", src).Scan()
	require.Nil(t, err)
	return toks
}

func TestMaximalMunchOperators(t *testing.T) {
	toks := scanAll(t, "< <= << > >= >> == != && || ++ -- += -= *= /=")
	kinds := make([]token.Kind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	require.Equal(t, []token.Kind{
		token.LT, token.LTE, token.SHL, token.GT, token.GTE, token.SHR,
		token.EQ, token.NEQ, token.AND_AND, token.OR_OR,
		token.INCREMENT, token.DECREMENT,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.EOF,
	}, kinds)
}

func TestNumericLiteralClasses(t *testing.T) {
	toks := scanAll(t, "42 3.14 2.0f")
	require.Equal(t, token.LITERAL_INT, toks[0].Kind)
	require.Equal(t, token.LITERAL_DOUBLE, toks[1].Kind)
	require.Equal(t, token.LITERAL_FLOAT, toks[2].Kind)
}

func TestKeywordPromotion(t *testing.T) {
	toks := scanAll(t, "int return while structx struct")
	require.Equal(t, token.KW_INT, toks[0].Kind)
	require.Equal(t, token.KW_RETURN, toks[1].Kind)
	require.Equal(t, token.KW_WHILE, toks[2].Kind)
	require.Equal(t, token.IDENT, toks[3].Kind) // "structx" is not a keyword
	require.Equal(t, token.KW_STRUCT, toks[4].Kind)
}

func TestCharLiteral(t *testing.T) {
	toks := scanAll(t, "'a' '\\n'")
	require.Equal(t, token.LITERAL_CHAR, toks[0].Kind)
	require.Equal(t, token.LITERAL_CHAR, toks[1].Kind)
}

func TestUnterminatedCharIsLexError(t *testing.T) {
	_, err := New("t.c", "'a").Scan()
	require.NotNil(t, err)
	require.Equal(t, "LEX_UNTERMINATED_CHAR", err.Code)
}

func TestUnknownCharIsLexError(t *testing.T) {
	_, err := New("t.c", "int x = 1 @ 2;").Scan()
	require.NotNil(t, err)
	require.Equal(t, "LEX_UNKNOWN_CHAR", err.Code)
}

func TestLineCommentsAndPositions(t *testing.T) {
	toks := scanAll(t, "int x; // trailing comment\nint y;")
	// First line tokens: int, x, ;
	require.Equal(t, 1, toks[0].Line)
	// Second line starts after the comment.
	var sawY bool
	for _, tk := range toks {
		if tk.Kind == token.IDENT && tk.Lexeme == "y" {
			require.Equal(t, 2, tk.Line)
			sawY = true
		}
	}
	require.True(t, sawY)
}

func TestLessGreaterNeverAbsorbUnrelatedChar(t *testing.T) {
	toks := scanAll(t, "a<b")
	require.Equal(t, token.LT, toks[1].Kind)
}

// Package token defines the closed set of lexical token kinds shared by the
// lexer and parser.
package token

//go:generate stringer -type=Kind
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// Literals and identifiers.
	IDENT
	LITERAL_INT
	LITERAL_FLOAT
	LITERAL_DOUBLE
	LITERAL_CHAR

	// Keywords.
	KW_INT
	KW_FLOAT
	KW_CHAR
	KW_DOUBLE
	KW_BOOL
	KW_VOID
	KW_RETURN
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_ENUM
	KW_UNION
	KW_STRUCT
	KW_BREAK
	KW_CONTINUE
	KW_SIZEOF
	KW_TRUE
	KW_FALSE

	// Operators.
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	INCREMENT
	DECREMENT

	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN

	EQ
	NEQ
	LT
	LTE
	GT
	GTE

	AND_AND
	OR_OR
	BANG

	AMPERSAND
	PIPE
	CARET
	TILDE
	SHL
	SHR

	// Delimiters.
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMICOLON
	COLON
	DOT
)

// Token is a single lexical unit: its kind, its exact source text, and its
// 1-based source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

// Keywords maps reserved identifiers to their keyword kind. Populated once;
// looked up by the lexer after it has scanned a maximal identifier.
var Keywords = map[string]Kind{
	"int":      KW_INT,
	"float":    KW_FLOAT,
	"char":     KW_CHAR,
	"double":   KW_DOUBLE,
	"bool":     KW_BOOL,
	"void":     KW_VOID,
	"return":   KW_RETURN,
	"if":       KW_IF,
	"else":     KW_ELSE,
	"while":    KW_WHILE,
	"for":      KW_FOR,
	"switch":   KW_SWITCH,
	"case":     KW_CASE,
	"default":  KW_DEFAULT,
	"enum":     KW_ENUM,
	"union":    KW_UNION,
	"struct":   KW_STRUCT,
	"break":    KW_BREAK,
	"continue": KW_CONTINUE,
	"sizeof":   KW_SIZEOF,
	"true":     KW_TRUE,
	"false":    KW_FALSE,
}

// IsPrimitiveKeyword reports whether k introduces a primitive type specifier.
func IsPrimitiveKeyword(k Kind) bool {
	switch k {
	case KW_INT, KW_FLOAT, KW_CHAR, KW_DOUBLE, KW_BOOL, KW_VOID:
		return true
	}
	return false
}

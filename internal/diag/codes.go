// Package diag carries the compiler's structured error type and the closed
// code tables for each of its four phases, plus a Rust/kanso-style colored
// caret reporter for rendering one to a human.
package diag

// Stage identifies which phase raised an error.
type Stage string

const (
	StagePreprocessor Stage = "Preprocessor"
	StageLexer        Stage = "Lexer"
	StageParser       Stage = "Parser"
	StageSemantic     Stage = "Semantic"
	StageCodeGen      Stage = "CodeGen"
)

// Error codes, one disjoint family per stage (spec §7).
const (
	PP_CYCLE               = "PP_CYCLE"
	PP_HEADER_NOT_FOUND    = "PP_HEADER_NOT_FOUND"
	PP_MALFORMED_DIRECTIVE = "PP_MALFORMED_DIRECTIVE"
	PP_UNBALANCED          = "PP_UNBALANCED"
	PP_MACRO_ARITY         = "PP_MACRO_ARITY"

	LEX_UNTERMINATED_CHAR = "LEX_UNTERMINATED_CHAR"
	LEX_UNKNOWN_CHAR      = "LEX_UNKNOWN_CHAR"

	PARSE_UNEXPECTED_TOKEN = "PARSE_UNEXPECTED_TOKEN"
	PARSE_EXPECTED_EXPR    = "PARSE_EXPECTED_EXPR"

	SEMA_REDECL          = "SEMA_REDECL"
	SEMA_UNDEF           = "SEMA_UNDEF"
	SEMA_LVALUE          = "SEMA_LVALUE"
	SEMA_CONFLICT        = "SEMA_CONFLICT"
	SEMA_REDEF           = "SEMA_REDEF"
	SEMA_NOT_AGGREGATE   = "SEMA_NOT_AGGREGATE"
	SEMA_NO_MEMBER       = "SEMA_NO_MEMBER"
	SEMA_ENUM_INIT       = "SEMA_ENUM_INIT"
	SEMA_NOT_CALLABLE    = "SEMA_NOT_CALLABLE"
	SEMA_ARITY           = "SEMA_ARITY"
	SEMA_NESTED_UNION    = "SEMA_NESTED_UNION"
	IR_CASE_NOT_CONST    = "IR_CASE_NOT_CONST"
	IR_NOT_LVALUE        = "IR_NOT_LVALUE"
	IR_TYPE_MISMATCH     = "IR_TYPE_MISMATCH"
	IR_UNSUPPORTED_TYPE  = "IR_UNSUPPORTED_TYPE"
)

// descriptions gives a one-line human description per code, the way
// kanso/internal/errors.GetErrorDescription does for its E-number ranges.
var descriptions = map[string]string{
	PP_CYCLE:               "circular #include detected",
	PP_HEADER_NOT_FOUND:    "included header could not be located on any search path",
	PP_MALFORMED_DIRECTIVE: "preprocessor directive is malformed",
	PP_UNBALANCED:          "unbalanced #if/#ifndef/#endif nesting",
	PP_MACRO_ARITY:         "macro invocation argument count does not match its definition",

	LEX_UNTERMINATED_CHAR: "character literal is not terminated",
	LEX_UNKNOWN_CHAR:      "unrecognized character in source",

	PARSE_UNEXPECTED_TOKEN: "unexpected token",
	PARSE_EXPECTED_EXPR:    "expected an expression",

	SEMA_REDECL:         "name already declared in this scope",
	SEMA_UNDEF:          "use of undeclared identifier",
	SEMA_LVALUE:         "assignment target is not an lvalue",
	SEMA_CONFLICT:       "conflicting declaration for this function",
	SEMA_REDEF:          "function already has a definition",
	SEMA_NOT_AGGREGATE:  "member access on a non-aggregate type",
	SEMA_NO_MEMBER:      "no such member in this struct/union",
	SEMA_ENUM_INIT:      "enumerator initializer must be an integer literal",
	SEMA_NOT_CALLABLE:   "callee is not a function",
	SEMA_ARITY:          "call argument count does not match function arity",
	SEMA_NESTED_UNION:   "a union cannot contain a member of union type",
	IR_CASE_NOT_CONST:   "switch case label does not fold to a compile-time integer constant",
	IR_NOT_LVALUE:       "expression does not designate a memory location",
	IR_TYPE_MISMATCH:    "operand types are not compatible for this operation",
	IR_UNSUPPORTED_TYPE: "type cannot be lowered to IR",
}

// Describe returns the human-readable description for a code, or "" if
// unknown.
func Describe(code string) string { return descriptions[code] }

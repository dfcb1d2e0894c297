package ast

func (*VarDecl) declNode()      {}
func (*MultiVarDecl) declNode() {}
func (*FuncDecl) declNode()     {}
func (*StructDecl) declNode()   {}
func (*UnionDecl) declNode()    {}
func (*EnumDecl) declNode()     {}

// VarDecl is a single variable declaration: a type string, a name, zero or
// more outer-first array dimensions, and an optional initializer (spec §3).
type VarDecl struct {
	P       Position
	Type    string
	Name    string
	Dims    []Expr // constant-integer dimension expressions, outer-first
	Init    Expr   // nil if absent; may be an InitListExpr for arrays
}

func (n *VarDecl) Pos() Position { return n.P }

// MultiVarDecl is an ordered list of VarDecls that share one declarator
// prefix, e.g. "int a, b = 1, c;".
type MultiVarDecl struct {
	P    Position
	Vars []*VarDecl
}

func (n *MultiVarDecl) Pos() Position { return n.P }

// Param is one (type, name) function parameter.
type Param struct {
	Type string
	Name string
}

// FuncDecl is a function prototype (Body == nil) or definition (Body != nil).
type FuncDecl struct {
	P          Position
	ReturnType string
	Name       string
	Params     []Param
	Body       *CompoundStmt
}

func (n *FuncDecl) Pos() Position { return n.P }

// Member is one struct/union member: a type, a name, and optional array
// dimensions.
type Member struct {
	Type string
	Name string
	Dims []Expr
}

// StructDecl is "struct Tag? { members... } ;". Tag is "" when anonymous;
// the semantic phase requires a tag at use sites (spec §4.3).
type StructDecl struct {
	P       Position
	Tag     string
	Members []Member
}

func (n *StructDecl) Pos() Position { return n.P }

// UnionDecl is "union Tag? { members... } ;".
type UnionDecl struct {
	P       Position
	Tag     string
	Members []Member
}

func (n *UnionDecl) Pos() Position { return n.P }

// EnumItem is one enumerator: a name, an optional explicit initializer
// expression (nil when absent, folded to an integer constant during
// semantic analysis), and the computed running value (spec §3's enum
// invariant). Value is zero until the semantic analyzer fills it in.
type EnumItem struct {
	Name     string
	Explicit Expr
	Value    int64
}

// EnumDecl is "enum Tag? { items... } ;".
type EnumDecl struct {
	P     Position
	Tag   string
	Items []EnumItem
}

func (n *EnumDecl) Pos() Position { return n.P }

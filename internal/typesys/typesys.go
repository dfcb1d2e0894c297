// Package typesys holds the canonical type-string helpers and the Type
// Registry: the struct/union/enum tag tables populated by the semantic
// analyzer and read by the IR generator (spec §3's "Type Registry").
package typesys

import (
	"strings"

	"ccaot/internal/ast"
)

// Primitives is the closed set of primitive type names (spec §3).
var Primitives = map[string]bool{
	"int": true, "float": true, "char": true, "double": true, "bool": true, "void": true,
}

// IsPrimitive reports whether t names a primitive type.
func IsPrimitive(t string) bool { return Primitives[t] }

// IsPointer reports whether t is a pointer type (right-associative "T*"
// stripping, spec §3).
func IsPointer(t string) bool { return strings.HasSuffix(t, "*") }

// Deref strips one level of pointer indirection from t.
func Deref(t string) (string, bool) {
	if !IsPointer(t) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimSuffix(t, "*")), true
}

// MakePointer builds the pointer-to-t type string.
func MakePointer(t string) string { return t + "*" }

// StructTag returns (tag, true) if t is "struct Tag".
func StructTag(t string) (string, bool) {
	if rest, ok := cutPrefix(t, "struct "); ok {
		return rest, true
	}
	return "", false
}

// UnionTag returns (tag, true) if t is "union Tag".
func UnionTag(t string) (string, bool) {
	if rest, ok := cutPrefix(t, "union "); ok {
		return rest, true
	}
	return "", false
}

// EnumTag returns (tag, true) if t is "enum Tag".
func EnumTag(t string) (string, bool) {
	if rest, ok := cutPrefix(t, "enum "); ok {
		return rest, true
	}
	return "", false
}

func cutPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

// Registry is the Type Registry: struct/union declarations by tag, plus the
// enumerator-name -> integer-value table. Written only by the semantic
// analyzer; read-only during IR generation (spec §3, §4.5).
type Registry struct {
	Structs    map[string]*ast.StructDecl
	Unions     map[string]*ast.UnionDecl
	EnumConsts map[string]int64
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		Structs:    make(map[string]*ast.StructDecl),
		Unions:     make(map[string]*ast.UnionDecl),
		EnumConsts: make(map[string]int64),
	}
}

func (r *Registry) AddStruct(d *ast.StructDecl) { r.Structs[d.Tag] = d }
func (r *Registry) AddUnion(d *ast.UnionDecl)    { r.Unions[d.Tag] = d }

// AddEnum registers every enumerator of d at its computed value.
func (r *Registry) AddEnum(d *ast.EnumDecl) {
	for _, item := range d.Items {
		r.EnumConsts[item.Name] = item.Value
	}
}

func (r *Registry) LookupStruct(tag string) (*ast.StructDecl, bool) {
	d, ok := r.Structs[tag]
	return d, ok
}

func (r *Registry) LookupUnion(tag string) (*ast.UnionDecl, bool) {
	d, ok := r.Unions[tag]
	return d, ok
}

func (r *Registry) LookupEnumConst(name string) (int64, bool) {
	v, ok := r.EnumConsts[name]
	return v, ok
}

// Member returns the declared member name (its type and array dimensions)
// of the struct/union named by aggregateType ("struct Tag" or "union Tag").
func (r *Registry) Member(aggregateType, name string) (*ast.Member, bool) {
	if tag, ok := StructTag(aggregateType); ok {
		if d, ok := r.LookupStruct(tag); ok {
			for i := range d.Members {
				if d.Members[i].Name == name {
					return &d.Members[i], true
				}
			}
		}
		return nil, false
	}
	if tag, ok := UnionTag(aggregateType); ok {
		if d, ok := r.LookupUnion(tag); ok {
			for i := range d.Members {
				if d.Members[i].Name == name {
					return &d.Members[i], true
				}
			}
		}
		return nil, false
	}
	return nil, false
}

// MemberIndex returns the ordinal position of member name within the
// registered struct's declaration order (for getelementptr-style indexing).
func (r *Registry) MemberIndex(tag, name string) (int, bool) {
	d, ok := r.LookupStruct(tag)
	if !ok {
		return 0, false
	}
	for i := range d.Members {
		if d.Members[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

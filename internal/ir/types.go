package ir

import (
	"strings"

	"ccaot/internal/ast"
	"ccaot/internal/typesys"
)

// sizeOf returns the byte size of t, used for sizeof() folding and for
// struct member offsets (spec §4.5's type-mapping table: int/float = 4
// bytes, char/bool = 1, double/pointer = 8, struct = sum of member sizes,
// union = size of its largest member). Array members are sized by
// memberSize as element size x dimension product; unknown types are 0.
func sizeOf(t string, reg *typesys.Registry) int {
	switch t {
	case "int", "float":
		return 4
	case "char", "bool":
		return 1
	case "double":
		return 8
	case "void":
		return 0
	}
	if typesys.IsPointer(t) {
		return 8
	}
	if tag, ok := typesys.StructTag(t); ok {
		if d, ok := reg.LookupStruct(tag); ok {
			total := 0
			for _, m := range d.Members {
				total += memberSize(m, reg)
			}
			return total
		}
	}
	if tag, ok := typesys.UnionTag(t); ok {
		if d, ok := reg.LookupUnion(tag); ok {
			max := 0
			for _, m := range d.Members {
				if s := memberSize(m, reg); s > max {
					max = s
				}
			}
			return max
		}
	}
	return 0
}

func memberSize(m ast.Member, reg *typesys.Registry) int {
	base := sizeOf(m.Type, reg)
	for _, dim := range m.Dims {
		if lit, ok := dim.(*ast.IntLit); ok {
			base *= int(lit.Value)
		}
	}
	return base
}

// structOffset returns the byte offset of member name within struct tag,
// summing the sizes of the preceding members in declaration order
// (spec §4.5's identified-aggregate lowering).
func structOffset(tag, name string, reg *typesys.Registry) (int, bool) {
	d, ok := reg.LookupStruct(tag)
	if !ok {
		return 0, false
	}
	offset := 0
	for _, m := range d.Members {
		if m.Name == name {
			return offset, true
		}
		offset += memberSize(m, reg)
	}
	return 0, false
}

// irType renders a source type string in the IR's own type notation: a
// thin, deterministic rewrite of the canonical type string (pointers and
// aggregate tags pass through unchanged, since both notations already agree
// on them).
func irType(t string) string {
	if t == "" {
		return "void"
	}
	return t
}

// isFloatLike reports whether t participates in float/double promotion.
func isFloatLike(t string) bool { return t == "float" || t == "double" }

func stripStars(t string) string { return strings.TrimRight(t, "*") }

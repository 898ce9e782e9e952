// Package frame reconstructs the type layout of a function's stack
// frame from how its stack-pointer argument is used: constant offsets
// become struct fields, pointer casts that feed loads or stores become
// scalars, and variable offsets mark arrays (currently reported as
// unrecoverable rather than sized, see Recover).
package frame

import (
	"fmt"
	"strings"

	"stackrec/internal/ssa"
)

// Object is one node of a recovered frame type tree. A tree is built
// fresh per function, is strictly tree-shaped, and is never shared
// across functions.
type Object interface {
	String() string

	write(sb *strings.Builder)
}

// Scalar is a frame slot observed through pointer casts. Types holds
// the distinct load/store operand types seen, in discovery order, and
// is non-empty by construction.
type Scalar struct {
	Types []ssa.Type
}

// Array is a frame region indexed by a non-constant offset. MinCount
// is a lower bound on the element count, not an exact size. The
// builder does not produce arrays yet; the variant exists for the
// normalizer and renderer.
type Array struct {
	Elem     Object
	MinCount uint64
}

// Struct is an ordered group of fields. Offsets are relative to the
// group's minimum observed offset, ascending.
type Struct struct {
	Fields []Field
}

// Field is one struct member.
type Field struct {
	Offset int64
	Type   Object
}

func (s *Scalar) String() string { return render(s) }
func (a *Array) String() string  { return render(a) }
func (s *Struct) String() string { return render(s) }

func render(o Object) string {
	var sb strings.Builder
	o.write(&sb)
	return sb.String()
}

func (s *Scalar) write(sb *strings.Builder) {
	sb.WriteByte('(')
	for i, t := range s.Types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(')')
}

func (a *Array) write(sb *strings.Builder) {
	fmt.Fprintf(sb, "[%d x ", a.MinCount)
	a.Elem.write(sb)
	sb.WriteByte(']')
}

func (s *Struct) write(sb *strings.Builder) {
	sb.WriteByte('{')
	for i, f := range s.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%d: ", f.Offset)
		f.Type.write(sb)
	}
	sb.WriteByte('}')
}

package frame

import (
	"fmt"
	"sort"

	"stackrec/internal/ssa"
)

// ForFunc recovers and normalizes the frame layout of fn. It returns
// false when fn has no designated stack-pointer argument or when no
// structure could be inferred from the stack pointer's uses.
func ForFunc(fn *ssa.Func) (Object, bool) {
	sp, ok := fn.StackPointer()
	if !ok {
		return nil, false
	}
	obj := Recover(sp)
	if obj == nil {
		return nil, false
	}
	return Normalize(obj), true
}

// Recover builds a type tree for a base value from its direct uses.
//
// A base value is an SSA value derived from the stack pointer: the
// stack pointer itself, "sp+N" for a constant N, and so on. Its uses
// disambiguate what it is:
//
//   - offset by a variable: an array (reported unrecoverable for now,
//     sizing variable strides is not implemented);
//   - offset only by constants: a structure, one field per offset,
//     each field recovered by recursing on the add that produced it;
//   - cast to a pointer and loaded from or stored to: a scalar typed
//     with every distinct load/store operand type seen through such
//     casts.
//
// A base used both ways becomes a structure whose offset-0 field is
// the scalar interpretation, unless an explicit offset-0 access
// already exists. Loads and stores of the base itself contribute
// nothing: they only ever go through a pointer cast, and the cast is
// the value being inspected.
//
// Recover returns nil when nothing can be inferred. A nil result for
// one field only drops that field from its parent; it never aborts
// the siblings or the top-level call.
func Recover(base ssa.Value) Object {
	scalar, offsets, ok := scanUses(base)
	if !ok {
		// Variable offset somewhere below base. Treating the whole
		// subtree as an array of unknown shape would need stride
		// analysis; give up instead of guessing.
		return nil
	}

	if len(offsets) == 0 {
		// No offsets at all: either a plain scalar slot or nothing
		// interpretable.
		return scalarOrNil(scalar)
	}

	if scalar != nil {
		// The direct cast interpretation becomes an implicit field at
		// offset 0. An explicit offset-0 access wins over it.
		if _, exists := offsets[0]; !exists {
			offsets[0] = nil
		}
	}

	keys := make([]int64, 0, len(offsets))
	for off := range offsets {
		keys = append(keys, off)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	// This stage runs after the base has been normalized to be
	// frame-relative, so one group never mixes signs (beyond an
	// implicit zero). A mix means an upstream pass fed us garbage.
	front, back := keys[0], keys[len(keys)-1]
	if front != 0 && back != 0 && (front < 0) != (back < 0) {
		panic(fmt.Sprintf("frame: mixed-sign offsets %d..%d for %s", front, back, base.Name()))
	}

	var fields []Field
	for _, off := range keys {
		var child Object
		if add := offsets[off]; add != nil {
			child = Recover(add)
		} else {
			child = scalar // synthetic entry, only present when scalar exists
		}
		if child == nil {
			continue
		}
		fields = append(fields, Field{Offset: off - front, Type: child})
	}
	if len(fields) == 0 {
		// Every member failed to recurse; fall back to the scalar
		// interpretation when one exists.
		return scalarOrNil(scalar)
	}
	return &Struct{Fields: fields}
}

// scalarOrNil avoids returning a typed-nil Object.
func scalarOrNil(s *Scalar) Object {
	if s == nil {
		return nil
	}
	return s
}

// scanUses classifies every direct use of base: adds with a constant
// operand populate the offset map (a duplicate offset overwrites the
// earlier entry, keeping the last use in definition order), pointer
// casts feeding loads or stores accumulate scalar types, and anything
// else contributes nothing. ok is false when base is offset by a
// non-constant value.
func scanUses(base ssa.Value) (scalar *Scalar, offsets map[int64]*ssa.Instr, ok bool) {
	offsets = map[int64]*ssa.Instr{}
	var types []ssa.Type
	seen := map[string]bool{}

	for _, use := range base.Uses() {
		switch use.Op() {
		case ssa.OpAdd:
			other := use.Operand(0)
			if other == base {
				other = use.Operand(1)
			}
			c, isConst := ssa.ConstValue(other)
			if !isConst {
				return nil, nil, false
			}
			offsets[c] = use
		case ssa.OpIntToPtr:
			for _, t := range accessTypes(use) {
				if key := t.String(); !seen[key] {
					seen[key] = true
					types = append(types, t)
				}
			}
		}
	}

	if len(types) > 0 {
		scalar = &Scalar{Types: types}
	}
	return scalar, offsets, true
}

// accessTypes returns the operand types of the loads and stores fed by
// a pointer cast: the loaded type for loads, the value operand's type
// for stores.
func accessTypes(cast *ssa.Instr) []ssa.Type {
	var types []ssa.Type
	for _, use := range cast.Uses() {
		switch use.Op() {
		case ssa.OpLoad:
			types = append(types, use.Type())
		case ssa.OpStore:
			types = append(types, use.Operand(0).Type())
		}
	}
	return types
}

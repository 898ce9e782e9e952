package frame

import (
	"testing"

	"stackrec/internal/ssa"
)

// spFunc returns a function with a single int64 parameter designated
// as the stack pointer.
func spFunc(t *testing.T, name string) (*ssa.Func, *ssa.Param) {
	t.Helper()
	fn := ssa.NewFunc(name)
	sp := fn.AddParam("sp", ssa.Int64)
	fn.SetStackPointer(0)
	return fn, sp
}

// castLoad gives base a pointer-cast use that is loaded as typ.
func castLoad(fn *ssa.Func, name string, base ssa.Value, typ ssa.Type) {
	p := fn.NewIntToPtr("p_"+name, base, ssa.PointerTo(typ))
	fn.NewLoad("v_"+name, typ, p)
}

func TestRecoverNoRecognizedUses(t *testing.T) {
	// sp is only multiplied, which carries no frame information.
	fn, sp := spFunc(t, "noise")
	x := fn.AddParam("x", ssa.Int64)
	fn.NewMul("m", sp, x)

	if obj := Recover(sp); obj != nil {
		t.Fatalf("Recover = %v, want nil for unrecognized uses", obj)
	}
}

func TestRecoverUnusedBase(t *testing.T) {
	fn, sp := spFunc(t, "unused")
	_ = fn

	if obj := Recover(sp); obj != nil {
		t.Fatalf("Recover = %v, want nil for a base with no uses", obj)
	}
}

func TestRecoverSingleCastLoad(t *testing.T) {
	// One inttoptr cast of sp, loaded once as int32: a scalar with
	// exactly that type.
	fn, sp := spFunc(t, "scalar")
	castLoad(fn, "s", sp, ssa.Int32)

	obj := Recover(sp)
	s, ok := obj.(*Scalar)
	if !ok {
		t.Fatalf("Recover = %v, want *Scalar", obj)
	}
	if len(s.Types) != 1 || s.Types[0].String() != "int32" {
		t.Fatalf("scalar types = %v, want [int32]", s.Types)
	}
}

func TestRecoverCastStoreType(t *testing.T) {
	// A store through the cast contributes its value operand's type.
	fn, sp := spFunc(t, "stored")
	x := fn.AddParam("x", ssa.Int16)
	p := fn.NewIntToPtr("p", sp, ssa.PointerTo(ssa.Int16))
	fn.NewStore(x, p)

	obj := Recover(sp)
	s, ok := obj.(*Scalar)
	if !ok {
		t.Fatalf("Recover = %v, want *Scalar", obj)
	}
	if got := s.String(); got != "(int16)" {
		t.Fatalf("scalar = %q, want (int16)", got)
	}
}

func TestRecoverCastWithoutAccess(t *testing.T) {
	// A pointer cast nobody loads from or stores to carries no type
	// information; it must not produce an empty scalar.
	fn, sp := spFunc(t, "deadcast")
	fn.NewIntToPtr("p", sp, ssa.PointerTo(ssa.Int32))

	if obj := Recover(sp); obj != nil {
		t.Fatalf("Recover = %v, want nil for a cast with no accesses", obj)
	}
}

func TestRecoverConstantOffsets(t *testing.T) {
	// sp+0, sp+4, sp+8, each loaded as int32: a three-field struct at
	// relative offsets 0, 4, 8 in ascending order.
	fn, sp := spFunc(t, "triple")
	for _, off := range []int64{8, 0, 4} { // build order must not matter
		a := fn.NewAdd("a", sp, ssa.NewConst(off, ssa.Int64))
		castLoad(fn, a.Label(), a, ssa.Int32)
	}

	obj := Recover(sp)
	st, ok := obj.(*Struct)
	if !ok {
		t.Fatalf("Recover = %v, want *Struct", obj)
	}
	if len(st.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(st.Fields))
	}
	for i, want := range []int64{0, 4, 8} {
		if st.Fields[i].Offset != want {
			t.Errorf("field %d offset = %d, want %d", i, st.Fields[i].Offset, want)
		}
	}
}

func TestRecoverVariableOffsetHardStop(t *testing.T) {
	// One non-constant offset makes the whole base unrecoverable,
	// even with constant-offset uses alongside.
	fn, sp := spFunc(t, "varoff")
	idx := fn.AddParam("idx", ssa.Int64)

	a := fn.NewAdd("a", sp, ssa.NewConst(4, ssa.Int64))
	castLoad(fn, "a", a, ssa.Int32)
	fn.NewAdd("b", sp, idx)

	if obj := Recover(sp); obj != nil {
		t.Fatalf("Recover = %v, want nil when a variable offset is present", obj)
	}
}

func TestRecoverNegativeOffsets(t *testing.T) {
	// Frame accesses below the base: sp-8 and sp-4. Offsets are
	// relative to the minimum, so the fields land at 0 and 4.
	fn, sp := spFunc(t, "below")
	for _, off := range []int64{-8, -4} {
		a := fn.NewAdd("a", sp, ssa.NewConst(off, ssa.Int64))
		castLoad(fn, a.Label(), a, ssa.Int32)
	}

	obj := Recover(sp)
	st, ok := obj.(*Struct)
	if !ok {
		t.Fatalf("Recover = %v, want *Struct", obj)
	}
	if len(st.Fields) != 2 || st.Fields[0].Offset != 0 || st.Fields[1].Offset != 4 {
		t.Fatalf("fields = %v, want relative offsets 0 and 4", st.Fields)
	}
}

func TestRecoverMixedSignPanics(t *testing.T) {
	// Mixed-sign offsets mean the upstream frame normalization is
	// broken; that must fail loudly, not mis-structure the frame.
	fn, sp := spFunc(t, "mixed")
	for _, off := range []int64{-4, 8} {
		a := fn.NewAdd("a", sp, ssa.NewConst(off, ssa.Int64))
		castLoad(fn, a.Label(), a, ssa.Int32)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mixed-sign offset group")
		}
	}()
	Recover(sp)
}

func TestRecoverScalarMergesAtOffsetZero(t *testing.T) {
	// sp is both cast-and-loaded directly and offset by 4: the direct
	// interpretation becomes the implicit field at offset 0.
	fn, sp := spFunc(t, "merge")
	castLoad(fn, "direct", sp, ssa.Int32)
	a := fn.NewAdd("a", sp, ssa.NewConst(4, ssa.Int64))
	castLoad(fn, "a", a, ssa.Int8)

	obj := Recover(sp)
	if got := obj.String(); got != "{0: (int32), 4: (int8)}" {
		t.Fatalf("layout = %q, want {0: (int32), 4: (int8)}", got)
	}
}

func TestRecoverExplicitZeroBeatsImplicit(t *testing.T) {
	// An explicit sp+0 access wins over the direct cast
	// interpretation for the offset-0 slot.
	fn, sp := spFunc(t, "zero")
	castLoad(fn, "direct", sp, ssa.Int32)
	a := fn.NewAdd("a0", sp, ssa.NewConst(0, ssa.Int64))
	castLoad(fn, "a0", a, ssa.Int64)

	obj := Recover(sp)
	if got := obj.String(); got != "{0: (int64)}" {
		t.Fatalf("layout = %q, want {0: (int64)}", got)
	}
}

func TestRecoverDuplicateOffsetLastWins(t *testing.T) {
	// Two adds producing the same offset: the later one in definition
	// order supplies the field.
	fn, sp := spFunc(t, "dup")
	a := fn.NewAdd("a", sp, ssa.NewConst(4, ssa.Int64))
	castLoad(fn, "a", a, ssa.Int32)
	b := fn.NewAdd("b", sp, ssa.NewConst(4, ssa.Int64))
	castLoad(fn, "b", b, ssa.Int8)

	obj := Recover(sp)
	if got := obj.String(); got != "{0: (int8)}" {
		t.Fatalf("layout = %q, want {0: (int8)}", got)
	}
}

func TestRecoverFieldFailureAbsorbed(t *testing.T) {
	// sp+4 has no interpretable uses and contributes no field; the
	// sibling at sp+0 survives.
	fn, sp := spFunc(t, "partial")
	a := fn.NewAdd("a", sp, ssa.NewConst(0, ssa.Int64))
	castLoad(fn, "a", a, ssa.Int32)
	fn.NewAdd("b", sp, ssa.NewConst(4, ssa.Int64)) // result unused

	obj := Recover(sp)
	st, ok := obj.(*Struct)
	if !ok {
		t.Fatalf("Recover = %v, want *Struct", obj)
	}
	if len(st.Fields) != 1 || st.Fields[0].Offset != 0 {
		t.Fatalf("fields = %v, want a single field at 0", st.Fields)
	}
}

func TestRecoverNestedStruct(t *testing.T) {
	// sp+8 is itself offset by 0 and 4: a struct nested in a struct.
	fn, sp := spFunc(t, "nested")
	a0 := fn.NewAdd("a0", sp, ssa.NewConst(0, ssa.Int64))
	castLoad(fn, "a0", a0, ssa.Int64)
	a8 := fn.NewAdd("a8", sp, ssa.NewConst(8, ssa.Int64))
	for _, off := range []int64{0, 4} {
		b := fn.NewAdd("b", a8, ssa.NewConst(off, ssa.Int64))
		castLoad(fn, b.Label(), b, ssa.Int32)
	}

	obj := Recover(sp)
	if got := obj.String(); got != "{0: (int64), 8: {0: (int32), 4: (int32)}}" {
		t.Fatalf("layout = %q", got)
	}
}

func TestForFuncEndToEnd(t *testing.T) {
	// The three reference scenarios, run through the full
	// build-normalize-render pipeline.
	t.Run("two int32 slots", func(t *testing.T) {
		fn, sp := spFunc(t, "two")
		for _, off := range []int64{0, 4} {
			a := fn.NewAdd("a", sp, ssa.NewConst(off, ssa.Int64))
			castLoad(fn, a.Label(), a, ssa.Int32)
		}
		obj, ok := ForFunc(fn)
		if !ok {
			t.Fatal("expected recovery")
		}
		if got := obj.String(); got != "{0: (int32), 4: (int32)}" {
			t.Fatalf("layout = %q, want {0: (int32), 4: (int32)}", got)
		}
	})

	t.Run("bare scalar", func(t *testing.T) {
		fn, sp := spFunc(t, "bare")
		castLoad(fn, "s", sp, ssa.Int8)
		obj, ok := ForFunc(fn)
		if !ok {
			t.Fatal("expected recovery")
		}
		if got := obj.String(); got != "(int8)" {
			t.Fatalf("layout = %q, want (int8)", got)
		}
	})

	t.Run("variable offset", func(t *testing.T) {
		fn, sp := spFunc(t, "var")
		idx := fn.AddParam("idx", ssa.Int64)
		a := fn.NewAdd("a", sp, ssa.NewConst(0, ssa.Int64))
		castLoad(fn, "a", a, ssa.Int32)
		fn.NewAdd("b", sp, idx)
		if _, ok := ForFunc(fn); ok {
			t.Fatal("expected nothing recoverable")
		}
	})

	t.Run("no designation", func(t *testing.T) {
		fn := ssa.NewFunc("plain")
		sp := fn.AddParam("sp", ssa.Int64)
		castLoad(fn, "s", sp, ssa.Int8)
		if _, ok := ForFunc(fn); ok {
			t.Fatal("expected no analysis without a stack-pointer designation")
		}
	})
}

func TestForFuncCollapsesWrapper(t *testing.T) {
	// sp+0 whose result is again offset by 0 produces the redundant
	// single-field wrapper; the pipeline collapses it to the scalar.
	fn, sp := spFunc(t, "wrapped")
	a := fn.NewAdd("a", sp, ssa.NewConst(0, ssa.Int64))
	b := fn.NewAdd("b", a, ssa.NewConst(0, ssa.Int64))
	castLoad(fn, "b", b, ssa.Int32)

	obj, ok := ForFunc(fn)
	if !ok {
		t.Fatal("expected recovery")
	}
	if got := obj.String(); got != "(int32)" {
		t.Fatalf("layout = %q, want (int32)", got)
	}
}

func TestRecoverDistinctCastTypes(t *testing.T) {
	// The same slot loaded as two types keeps both, first seen first.
	fn, sp := spFunc(t, "union")
	castLoad(fn, "w", sp, ssa.Int32)
	castLoad(fn, "b", sp, ssa.Int8)
	castLoad(fn, "w2", sp, ssa.Int32) // duplicate type, must not repeat

	obj := Recover(sp)
	if got := obj.String(); got != "(int32, int8)" {
		t.Fatalf("scalar = %q, want (int32, int8)", got)
	}
}

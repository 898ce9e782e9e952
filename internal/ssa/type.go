package ssa

import "fmt"

// Type is the machine-level type of an SSA value.
type Type interface {
	// Size in bytes.
	Size() int
	String() string
}

// IntType is a fixed-width integer type.
type IntType struct {
	Bits int
}

func (t IntType) Size() int      { return t.Bits / 8 }
func (t IntType) String() string { return fmt.Sprintf("int%d", t.Bits) }

// PtrType is a pointer to Elem. Pointer width follows the 64-bit
// targets this stage runs on; nothing downstream reads it yet.
type PtrType struct {
	Elem Type
}

func (t PtrType) Size() int      { return 8 }
func (t PtrType) String() string { return "*" + t.Elem.String() }

var (
	Int8  = IntType{8}
	Int16 = IntType{16}
	Int32 = IntType{32}
	Int64 = IntType{64}
)

// PointerTo returns the pointer type for elem.
func PointerTo(elem Type) PtrType { return PtrType{Elem: elem} }

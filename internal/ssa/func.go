package ssa

import "fmt"

// Func is one function's SSA form: parameters, a flat instruction
// sequence, and the stack-pointer designation supplied by the
// surrounding pipeline. Values are owned by their Func and never
// shared across functions.
type Func struct {
	Name    string
	Params  []*Param
	Instrs  []*Instr
	spIndex int
}

// NewFunc returns an empty function with no stack-pointer designation.
func NewFunc(name string) *Func {
	return &Func{Name: name, spIndex: -1}
}

// AddParam appends a formal argument.
func (f *Func) AddParam(name string, typ Type) *Param {
	p := &Param{name: name, typ: typ, fn: f}
	f.Params = append(f.Params, p)
	return p
}

// SetStackPointer designates the i'th parameter as the function's
// stack pointer. This stage performs no detection of its own; the
// designation comes from the argument-recovery collaborator.
func (f *Func) SetStackPointer(i int) {
	if i < 0 || i >= len(f.Params) {
		panic(fmt.Sprintf("ssa: stack pointer index %d out of range for %s", i, f.Name))
	}
	f.spIndex = i
}

// StackPointer returns the designated stack-pointer argument, if any.
func (f *Func) StackPointer() (*Param, bool) {
	if f.spIndex < 0 {
		return nil, false
	}
	return f.Params[f.spIndex], true
}

func (f *Func) newInstr(op Op, name string, typ Type, args ...Value) *Instr {
	in := &Instr{op: op, name: name, typ: typ, args: args, fn: f, id: len(f.Instrs)}
	for _, a := range args {
		a.addUse(in)
	}
	f.Instrs = append(f.Instrs, in)
	return in
}

// NewAdd appends name = add x, y. The result carries x's type.
func (f *Func) NewAdd(name string, x, y Value) *Instr {
	return f.newInstr(OpAdd, name, x.Type(), x, y)
}

// NewSub appends name = sub x, y.
func (f *Func) NewSub(name string, x, y Value) *Instr {
	return f.newInstr(OpSub, name, x.Type(), x, y)
}

// NewMul appends name = mul x, y.
func (f *Func) NewMul(name string, x, y Value) *Instr {
	return f.newInstr(OpMul, name, x.Type(), x, y)
}

// NewIntToPtr appends name = inttoptr x to typ.
func (f *Func) NewIntToPtr(name string, x Value, typ PtrType) *Instr {
	return f.newInstr(OpIntToPtr, name, typ, x)
}

// NewLoad appends name = load typ, ptr.
func (f *Func) NewLoad(name string, typ Type, ptr Value) *Instr {
	return f.newInstr(OpLoad, name, typ, ptr)
}

// NewStore appends store val, ptr. Stores produce no value.
func (f *Func) NewStore(val, ptr Value) *Instr {
	return f.newInstr(OpStore, "", nil, val, ptr)
}

// Package ssa is the in-memory SSA form consumed by frame recovery.
//
// It carries only what the analysis inspects: values, the additive and
// cast instructions that derive new values, loads and stores, and the
// def-use lists connecting them. Functions are built programmatically
// or parsed from the textual form (see Parse). Nothing here constructs
// SSA from machine code; that belongs to upstream stages.
package ssa

import "fmt"

// Value is anything an instruction can take as an operand.
type Value interface {
	// Name is the SSA name, "" for unnamed values (constants, stores).
	Name() string
	Type() Type
	// Uses lists the instructions that take this value as an operand,
	// in the order they were built. Use lists are append-only during
	// construction and never mutated by analysis.
	Uses() []*Instr
	String() string

	addUse(in *Instr)
}

// Op identifies an instruction's operation.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpIntToPtr
	OpLoad
	OpStore
)

var opNames = [...]string{
	OpAdd:      "add",
	OpSub:      "sub",
	OpMul:      "mul",
	OpIntToPtr: "inttoptr",
	OpLoad:     "load",
	OpStore:    "store",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Param is a formal argument of a Func.
type Param struct {
	name string
	typ  Type
	fn   *Func
	uses []*Instr
}

func (p *Param) Name() string    { return p.name }
func (p *Param) Type() Type      { return p.typ }
func (p *Param) Uses() []*Instr  { return p.uses }
func (p *Param) String() string  { return p.name }
func (p *Param) addUse(in *Instr) { p.uses = append(p.uses, in) }

// Const is a compile-time-constant integer.
type Const struct {
	Val int64
	typ Type
}

// NewConst returns a constant of the given type.
func NewConst(val int64, typ Type) *Const { return &Const{Val: val, typ: typ} }

func (c *Const) Name() string   { return "" }
func (c *Const) Type() Type     { return c.typ }
func (c *Const) Uses() []*Instr { return nil }
func (c *Const) String() string { return fmt.Sprintf("%d", c.Val) }
func (c *Const) addUse(*Instr)  {}

// ConstValue reports whether v is a compile-time-constant integer.
func ConstValue(v Value) (int64, bool) {
	if c, ok := v.(*Const); ok {
		return c.Val, true
	}
	return 0, false
}

// Instr is a single SSA instruction. Instructions producing a value
// (everything but store) are themselves Values.
type Instr struct {
	op   Op
	name string
	typ  Type // result type; for loads, the loaded type; nil for stores
	args []Value
	fn   *Func
	id   int // index in fn.Instrs, for unnamed labels
	uses []*Instr
}

func (in *Instr) Op() Op           { return in.op }
func (in *Instr) Name() string     { return in.name }
func (in *Instr) Type() Type       { return in.typ }
func (in *Instr) Uses() []*Instr   { return in.uses }
func (in *Instr) Parent() *Func    { return in.fn }
func (in *Instr) NumOperands() int { return len(in.args) }
func (in *Instr) addUse(u *Instr)  { in.uses = append(in.uses, u) }

// Operand returns the i'th operand.
func (in *Instr) Operand(i int) Value { return in.args[i] }

// Label is the diagnostic name: the SSA name when there is one,
// otherwise "op.N" from the instruction's position in the function.
func (in *Instr) Label() string {
	if in.name != "" {
		return in.name
	}
	return fmt.Sprintf("%s.%d", in.op, in.id)
}

func (in *Instr) String() string {
	switch in.op {
	case OpIntToPtr:
		return fmt.Sprintf("%s = inttoptr %s to %s", in.name, in.args[0], in.typ)
	case OpLoad:
		return fmt.Sprintf("%s = load %s, %s", in.name, in.typ, in.args[0])
	case OpStore:
		return fmt.Sprintf("store %s, %s", in.args[0], in.args[1])
	default:
		return fmt.Sprintf("%s = %s %s, %s", in.name, in.op, in.args[0], in.args[1])
	}
}

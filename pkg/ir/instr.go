package ir

import "github.com/angine04/compiler-labs/pkg/types"

// Instr is implemented by every member of a function's linear instruction
// list. Instructions that produce a result additionally implement Value.
type Instr interface {
	implInstr()
	Line() int
}

type instrBase struct {
	line int
	name string // "%tN" once assigned by renameAll; only meaningful on result-producing instructions
}

func (b *instrBase) Line() int { return b.line }

// ArithOp is an IR-level binary arithmetic opcode.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (o ArithOp) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	default:
		return "?arith"
	}
}

// CmpOp is a signed integer comparison opcode.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

func (o CmpOp) String() string {
	switch o {
	case CmpEq:
		return "eq"
	case CmpNe:
		return "ne"
	case CmpLt:
		return "lt"
	case CmpLe:
		return "le"
	case CmpGt:
		return "gt"
	case CmpGe:
		return "ge"
	default:
		return "?cmp"
	}
}

// Negate returns the condition that holds exactly when o does not.
func (o CmpOp) Negate() CmpOp {
	switch o {
	case CmpEq:
		return CmpNe
	case CmpNe:
		return CmpEq
	case CmpLt:
		return CmpGe
	case CmpGe:
		return CmpLt
	case CmpLe:
		return CmpGt
	case CmpGt:
		return CmpLe
	default:
		return o
	}
}

// Entry is always the first instruction of a function's instruction list.
type Entry struct{ instrBase }

func (*Entry) implInstr() {}

// Exit is always the last instruction of a function's instruction list.
// ReturnSlot is nil for a void function.
type Exit struct {
	instrBase
	ReturnSlot Value
}

func (*Exit) implInstr() {}

// LabelDef marks the position of L in the instruction stream. Per the
// label-uniqueness invariant, each Label has exactly one LabelDef in its
// function.
type LabelDef struct {
	instrBase
	L Label
}

func (*LabelDef) implInstr() {}

// Goto is an unconditional jump to Target.
type Goto struct {
	instrBase
	Target Label
}

func (*Goto) implInstr() {}

// Branch is a conditional jump: Cond must be the Value produced by a Cmp
// (or, for the "any other expression" fallback of emitBranchForCondition,
// a synthesized Cmp_ne against zero). Jumps to TrueL when Cond holds, else
// FalseL.
type Branch struct {
	instrBase
	Cond           Value
	TrueL, FalseL  Label
}

func (*Branch) implInstr() {}

// Move assigns Src into Dst. Its concrete behavior — scalar copy, store
// through pointer, or load through pointer — is determined at printer/
// selector time from the pointer-ness of Dst's and Src's types, per
// spec.md §4.4's Move handler.
type Move struct {
	instrBase
	Dst, Src Value
}

func (*Move) implInstr() {}

// Arith is a binary arithmetic instruction and, since it produces a
// result, also a Value.
type Arith struct {
	instrBase
	Op       ArithOp
	Lhs, Rhs Value
	Typ      types.Type
}

func (*Arith) implInstr()          {}
func (*Arith) implValue()          {}
func (a *Arith) Type() types.Type  { return a.Typ }
func (a *Arith) Operand() string   { return a.name }

// Cmp is a signed comparison instruction producing an Int1 result.
type Cmp struct {
	instrBase
	Op       CmpOp
	Lhs, Rhs Value
}

func (*Cmp) implInstr()         {}
func (*Cmp) implValue()         {}
func (*Cmp) Type() types.Type   { return types.Int1{} }
func (c *Cmp) Operand() string  { return c.name }

// Call invokes Callee with Args in order. It is a Value iff the callee's
// return type is not Void.
type Call struct {
	instrBase
	Callee string
	Sig    types.Function
	Args   []Value
	// CalleeParams mirrors the callee's own Params, so the printer can
	// render an array-typed actual argument using the callee's declared
	// dimensions (see DESIGN.md's decision on the dropped positional
	// printing heuristic) without a Module lookup. Empty for a builtin
	// callee, which carries no FormalParam values.
	CalleeParams []*FormalParam
}

func (*Call) implInstr() {}
func (*Call) implValue() {}

func (c *Call) Type() types.Type { return c.Sig.Return }
func (c *Call) Operand() string  { return c.name }

// HasResult reports whether this call's result is used as a Value.
func (c *Call) HasResult() bool {
	_, void := c.Sig.Return.(types.Void)
	return !void
}

// AsValue returns an instruction as a Value handle, asserting that the
// instruction does in fact produce a value. Used by the translator
// once it has appended a producing instruction and wants to reference its
// result as an operand of the next one.
func AsValue(i Instr) Value {
	v, ok := i.(Value)
	if !ok {
		panic(&InternalError{Message: "instruction does not produce a value"})
	}
	return v
}

// Package ir implements the translation core's type-and-value model (C1)
// and Module/Function container (C2): typed IR values, instructions as
// first-class values, per-function linear instruction lists, the rename
// pass, and the bit-stable textual printer.
package ir

import (
	"strconv"

	"github.com/angine04/compiler-labs/pkg/types"
)

// Value is the universe of IR operands: constants, variables, temporaries,
// and instructions that produce a result. Every Value has a fixed type and
// renders itself as the operand text the printer embeds in an instruction.
type Value interface {
	implValue()
	Type() types.Type
	Operand() string
}

// Label identifies a jump target within one function's instruction list.
// The zero value is not valid; use Function.NewLabel to mint one.
type Label int

const NoLabel Label = -1

func (l Label) Valid() bool { return l >= 0 }

// ConstInt is an interned integer (or boolean, when Typ is Int1) constant.
// Module.ConstInt/ConstBool guarantee that equal values share one Value,
// per the interning invariant.
type ConstInt struct {
	Val int32
	Typ types.Type
}

func (*ConstInt) implValue()          {}
func (c *ConstInt) Type() types.Type  { return c.Typ }
func (c *ConstInt) Operand() string   { return strconv.FormatInt(int64(c.Val), 10) }

// GlobalVariable is a Module-owned variable with module lifetime. Elem is
// the variable's element type: Int32 for a scalar, Array(...) for an
// array. Init is non-nil only for an initialized scalar global; arrays
// and uninitialized scalars are BSS.
type GlobalVariable struct {
	SrcName string
	Elem    types.Type
	Init    *int32
}

func (*GlobalVariable) implValue() {}

func (g *GlobalVariable) Type() types.Type { return types.Pointer{Elem: g.Elem} }
func (g *GlobalVariable) Operand() string  { return "@" + g.SrcName }

// LocalVariable is a Function-owned, user-declared variable. Typ is the
// declared scalar type, or Pointer(Int32) for a formal's materialized
// local copy under array-parameter decay.
type LocalVariable struct {
	SrcName    string
	Typ        types.Type
	ScopeLevel int

	// OriginalArrayType is non-nil only for the materialized local copy
	// of an array-decayed formal parameter (Typ is then Pointer(Int32)):
	// it carries the dimensions (Dims[0] == 0) address arithmetic over
	// this local needs, per spec.md §4.1's decay rule.
	OriginalArrayType *types.Array

	name string // assigned by renameAll: "%lN"
}

func (*LocalVariable) implValue()         {}
func (v *LocalVariable) Type() types.Type { return v.Typ }
func (v *LocalVariable) Operand() string  { return v.name }

// MemVariable is an anonymous, Function-owned stack-resident slot: used
// for the return-value slot, for values loaded from a global or an array
// element, and for the 0/1 result of a materialized logical expression.
// It has no source name.
type MemVariable struct {
	Typ types.Type

	name string // assigned by renameAll: "%tN"
}

func (*MemVariable) implValue()         {}
func (v *MemVariable) Type() types.Type { return v.Typ }
func (v *MemVariable) Operand() string  { return v.name }

// FormalParam is the Value representing an incoming argument at function
// entry, distinct from the LocalVariable its body actually reads and
// writes. OriginalArrayType is non-nil only when Typ is the decayed
// Pointer(Int32) form of a source array parameter; it records the
// dimensions (Dims[0] == 0) needed for address arithmetic in the callee.
type FormalParam struct {
	SrcName           string
	Typ               types.Type
	OriginalArrayType *types.Array

	name string // assigned by renameAll: "%tN"
}

func (*FormalParam) implValue()         {}
func (p *FormalParam) Type() types.Type { return p.Typ }
func (p *FormalParam) Operand() string  { return p.name }

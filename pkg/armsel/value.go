package armsel

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/arm"
	"github.com/angine04/compiler-labs/pkg/ir"
)

// scratch is the small, fixed pool of registers the selector uses to
// stage operands for one instruction at a time. Since every Value is
// spilled, no instruction needs more than a few live registers at once;
// r0-r3 double as both the AAPCS argument registers and general scratch,
// matching the teacher's own reuse of caller-saved registers as
// temporaries around call sites.
var scratch = [...]arm.Reg{arm.R0, arm.R1, arm.R2, arm.R3}

// fitsImm8 reports whether n fits the simplified immediate form this
// backend emits directly with MOVi/ADDi/SUBi/CMPi, approximating ARM32's
// 8-bit rotated-immediate encoding with the common case (a small
// literal, positive or negative) rather than the full rotate search; any
// wider constant goes through the function's literal pool instead.
func fitsImm8(n int32) bool {
	return n >= -255 && n <= 255
}

// selector holds the per-function state the translation of one
// instruction list needs: the assigned frame layout, the arm.Function
// being built, and a counter for literal-pool and materializeCmp labels.
type selector struct {
	fn     *arm.Function
	layout *frameLayout
	irfn   *ir.Function
	poolN  int
}

func newSelector(irfn *ir.Function, f *arm.Function, layout *frameLayout) *selector {
	return &selector{fn: f, layout: layout, irfn: irfn}
}

func (s *selector) emit(inst arm.Instruction) { s.fn.Append(inst) }

func (s *selector) label(l ir.Label) arm.Label {
	return arm.Label(s.irfn.LabelText(l))
}

// loadImmediate materializes n into dst, using a literal-pool load when n
// is too wide for a single mov.
func (s *selector) loadImmediate(dst arm.Reg, n int32) {
	if fitsImm8(n) {
		s.emit(arm.MOVi{Rd: dst, Imm: n})
		return
	}
	lbl := arm.Label(fmt.Sprintf(".LC%d", s.poolN))
	s.poolN++
	s.fn.AddPoolWord(lbl, n)
	s.emit(arm.LDRLabel{Rt: dst, Target: lbl})
}

// loadGlobalAddress materializes the address of g into dst. MiniC links
// statically, so the global's own label is usable as a literal-pool
// symbol directly (no GOT indirection).
func (s *selector) loadGlobalAddress(dst arm.Reg, g *ir.GlobalVariable) {
	s.emit(arm.LDRSym{Rt: dst, Sym: g.SrcName})
}

// loadLocalAddress materializes the address of a local's own frame slot
// into dst — used when the local's storage is a multi-word array block
// and the value needed is the block's base address, not a loaded word.
func (s *selector) loadLocalAddress(dst arm.Reg, lv *ir.LocalVariable) {
	off := s.layout.offsetOf(lv)
	if fitsImm8(off) {
		s.emit(arm.ADDi{Rd: dst, Rn: arm.FP, Imm: off})
		return
	}
	s.loadImmediate(dst, off)
	s.emit(arm.ADD{Rd: dst, Rn: arm.FP, Rm: dst})
}

// loadSlot loads the word at [fp, #off] into dst. Frames wide enough to
// overflow the simplified 8-bit immediate form are computed through an
// explicit address add first; MiniC's stack frames never reach this path
// in practice; it exists for completeness rather than a tested case.
func (s *selector) loadSlot(dst arm.Reg, off int32) {
	if fitsImm8(off) {
		s.emit(arm.LDR{Rt: dst, Rn: arm.FP, Ofs: off})
		return
	}
	s.loadImmediate(dst, off)
	s.emit(arm.ADD{Rd: dst, Rn: arm.FP, Rm: dst})
	s.emit(arm.LDR{Rt: dst, Rn: dst, Ofs: 0})
}

// storeSlot stores src into the word at [fp, #off].
func (s *selector) storeSlot(src arm.Reg, off int32) {
	if fitsImm8(off) {
		s.emit(arm.STR{Rt: src, Rn: arm.FP, Ofs: off})
		return
	}
	tmp := arm.R3
	s.loadImmediate(tmp, off)
	s.emit(arm.ADD{Rd: tmp, Rn: arm.FP, Rm: tmp})
	s.emit(arm.STR{Rt: src, Rn: tmp, Ofs: 0})
}

// loadFormal materializes the idx'th incoming argument into dst: from
// its AAPCS argument register if still live at the point of use (only
// true for the single initial copy-in Move each formal feeds, per
// irgen's function.go), or from the caller's stack otherwise.
func (s *selector) loadFormal(dst arm.Reg, idx int) {
	if idx < numArgRegs {
		if dst != scratch[idx] {
			s.emit(arm.MOV{Rd: dst, Rm: scratch[idx]})
		}
		return
	}
	s.loadSlot(dst, incomingParamOffset(idx))
}

func (s *selector) formalIndex(p *ir.FormalParam) int {
	for i, fp := range s.irfn.Params {
		if fp == p {
			return i
		}
	}
	panic("armsel: formal parameter not found on its own function")
}

// loadOperand materializes v into dst, choosing address-of-slot,
// value-from-slot, incoming-argument, immediate, or recomputed-condition
// form based on v's concrete kind. This is the single place that knows
// how every ir.Value kind becomes a register value.
func (s *selector) loadOperand(dst arm.Reg, v ir.Value) {
	switch vv := v.(type) {
	case *ir.ConstInt:
		s.loadImmediate(dst, vv.Val)
	case *ir.GlobalVariable:
		s.loadGlobalAddress(dst, vv)
	case *ir.LocalVariable:
		if lv, isArr := isArrayLocal(vv); isArr {
			s.loadLocalAddress(dst, lv)
			return
		}
		s.loadSlot(dst, s.layout.offsetOf(vv))
	case *ir.FormalParam:
		s.loadFormal(dst, s.formalIndex(vv))
	case *ir.Cmp:
		s.materializeCmp(dst, vv)
	default: // *ir.MemVariable, *ir.Arith, *ir.Call
		s.loadSlot(dst, s.layout.offsetOf(v))
	}
}

// storeOperand stores src to v's frame slot. v must be a Value that
// owns a slot to write into: a scalar LocalVariable, a MemVariable, or a
// result-producing Arith or Call.
// GlobalVariable targets and array-element addresses are handled
// separately in selectMove, since they write through a materialized
// address rather than to a fixed local offset.
func (s *selector) storeOperand(v ir.Value, src arm.Reg) {
	s.storeSlot(src, s.layout.offsetOf(v))
}

// condCodeFor maps an ir.CmpOp to the ARM32 condition that holds when
// the comparison is true.
func condCodeFor(op ir.CmpOp) arm.CondCode {
	switch op {
	case ir.CmpEq:
		return arm.CondEQ
	case ir.CmpNe:
		return arm.CondNE
	case ir.CmpLt:
		return arm.CondLT
	case ir.CmpLe:
		return arm.CondLE
	case ir.CmpGt:
		return arm.CondGT
	case ir.CmpGe:
		return arm.CondGE
	default:
		panic("armsel: unhandled comparison operator")
	}
}

// materializeCmp computes cmp's 0/1 result into dst via a cmp, one
// conditional branch and one unconditional branch, since this backend's
// arm.Instruction set has no
// predicated data-processing form. Only reached when a comparison is
// used as an ordinary value (e.g. "int x = a < b;"); the much more
// common case of a comparison feeding an immediately-following Branch is
// fused directly into a single cmp+bcond by selectBranch instead.
func (s *selector) materializeCmp(dst arm.Reg, cmp *ir.Cmp) {
	lhs, rhs := dst, pickOther(dst)
	s.loadOperand(lhs, cmp.Lhs)
	s.loadOperand(rhs, cmp.Rhs)
	s.emit(arm.CMP{Rn: lhs, Rm: rhs})
	trueL := arm.Label(fmt.Sprintf(".Lcmptrue%d", s.poolN))
	endL := arm.Label(fmt.Sprintf(".Lcmpend%d", s.poolN))
	s.poolN++
	s.emit(arm.Bcond{Cond: condCodeFor(cmp.Op), Target: trueL})
	s.emit(arm.MOVi{Rd: dst, Imm: 0})
	s.emit(arm.B{Target: endL})
	s.emit(arm.LabelDef{Name: trueL})
	s.emit(arm.MOVi{Rd: dst, Imm: 1})
	s.emit(arm.LabelDef{Name: endL})
}

// pickOther returns a scratch register distinct from r, used as the
// second operand register when materializing a two-operand comparison.
func pickOther(r arm.Reg) arm.Reg {
	if r == scratch[1] {
		return scratch[2]
	}
	return scratch[1]
}

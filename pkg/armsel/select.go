package armsel

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/arm"
	"github.com/angine04/compiler-labs/pkg/diag"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
)

func isPointerType(t types.Type) bool {
	_, ok := t.(types.Pointer)
	return ok
}

// translateFunction lowers one ir.Function into an arm.Function,
// following the teacher's asmgen.transformFunction/genContext shape: a
// per-function context (selector) plus a straight per-opcode dispatch
// over the instruction list. RenameAll runs first since LabelText needs
// the contiguous ".LN" numbering it assigns.
func translateFunction(irfn *ir.Function) *arm.Function {
	diag.Phase("armsel", irfn.Name).Debug("selecting function")
	ir.RenameAll(irfn)
	layout := computeLayout(irfn)
	f := arm.NewFunction(irfn.Name)
	s := newSelector(irfn, f, layout)

	for _, instr := range irfn.Instructions() {
		switch in := instr.(type) {
		case *ir.Entry:
			s.selectEntry()
		case *ir.Exit:
			s.selectExit(in)
		case *ir.LabelDef:
			s.emit(arm.LabelDef{Name: s.label(in.L)})
		case *ir.Goto:
			s.emit(arm.B{Target: s.label(in.Target)})
		case *ir.Branch:
			s.selectBranch(in)
		case *ir.Move:
			s.selectMove(in)
		case *ir.Arith:
			s.selectArith(in)
		case *ir.Cmp:
			// A comparison has no codegen of its own: selectBranch fuses
			// it directly into a cmp+bcond when it feeds a branch (the
			// common case), and loadOperand's *ir.Cmp case recomputes it
			// on demand for any other consumer.
		case *ir.Call:
			s.selectCall(in)
		default:
			panic(&ir.InternalError{Line: instr.Line(), Message: fmt.Sprintf("armsel: unhandled instruction %T", instr)})
		}
	}
	diag.Phase("armsel", irfn.Name).Debug("selected function")
	return f
}

// selectEntry emits the function prologue: save the caller's fp/lr, push
// any callee-saved registers the function clobbers, set up our own fp,
// and allocate the frame body computeLayout sized.
//
// Full-spill never assigns a Value to a callee-saved register — every
// scratch use is r0-r3, reloaded from its frame slot on every use — so
// nothing in this package ever calls SetCalleeSaved and irfn.CalleeSaved()
// reads back empty, leaving PUSH no larger than {fp, lr}. selectEntry
// still consults it, rather than assuming empty, because it is the one
// hook a future allocator that does keep values live in r4-r10 across
// calls would need; selectExit's matching POP reads the same list so the
// two can never drift out of sync.
func (s *selector) selectEntry() {
	regs := append(calleeSavedRegs(s.irfn), arm.FP, arm.LR)
	s.emit(arm.PUSH{Regs: regs})
	s.emit(arm.MOV{Rd: arm.FP, Rm: arm.SP})
	if s.layout.total > 0 {
		if fitsImm8(s.layout.total) {
			s.emit(arm.SUBi{Rd: arm.SP, Rn: arm.SP, Imm: s.layout.total})
		} else {
			s.loadImmediate(arm.R0, s.layout.total)
			s.emit(arm.SUB{Rd: arm.SP, Rn: arm.SP, Rm: arm.R0})
		}
	}
}

// selectExit emits the function epilogue: load the return value into r0
// per AAPCS, tear down the frame, restore any callee-saved registers
// selectEntry pushed, and return.
func (s *selector) selectExit(in *ir.Exit) {
	if in.ReturnSlot != nil {
		s.loadOperand(arm.R0, in.ReturnSlot)
	}
	s.emit(arm.MOV{Rd: arm.SP, Rm: arm.FP})
	regs := append(calleeSavedRegs(s.irfn), arm.FP, arm.PC)
	s.emit(arm.POP{Regs: regs})
}

// calleeSavedRegs resolves a Function's recorded callee-saved register
// names (ir.Function.CalleeSaved, empty under full-spill — see
// selectEntry) against arm.CalleeSavedRegs' AAPCS-assigned r4-r10 set.
func calleeSavedRegs(irfn *ir.Function) []arm.Reg {
	if len(irfn.CalleeSaved()) == 0 {
		return nil
	}
	byName := make(map[string]arm.Reg, len(arm.CalleeSavedRegs))
	for _, r := range arm.CalleeSavedRegs {
		byName[r.String()] = r
	}
	regs := make([]arm.Reg, 0, len(irfn.CalleeSaved()))
	for _, name := range irfn.CalleeSaved() {
		r, ok := byName[name]
		if !ok {
			panic(&ir.InternalError{Message: fmt.Sprintf("armsel: unknown callee-saved register %q", name)})
		}
		regs = append(regs, r)
	}
	return regs
}

// selectMove implements spec.md §4.4's Move handler: the pointer-ness of
// Dst's and Src's types selects store-through-pointer, load-through-pointer,
// or a plain scalar copy, mirroring pkg/ir/printer.go's printMove exactly.
func (s *selector) selectMove(in *ir.Move) {
	dstPtr, srcPtr := isPointerType(in.Dst.Type()), isPointerType(in.Src.Type())
	switch {
	case dstPtr && !srcPtr:
		addr, val := scratch[0], scratch[1]
		s.loadOperand(addr, in.Dst)
		s.loadOperand(val, in.Src)
		s.emit(arm.STR{Rt: val, Rn: addr, Ofs: 0})
	case srcPtr && !dstPtr:
		addr, val := scratch[0], scratch[1]
		s.loadOperand(addr, in.Src)
		s.emit(arm.LDR{Rt: val, Rn: addr, Ofs: 0})
		s.storeOperand(in.Dst, val)
	default:
		v := scratch[0]
		s.loadOperand(v, in.Src)
		s.storeOperand(in.Dst, v)
	}
}

// selectArith lowers a binary arithmetic instruction. ARM32 has no
// remainder instruction, so OpMod expands to a - (a/b)*b, the same
// division-based expansion CompCert uses for targets lacking a native
// mod (see its Op.v Omod case for integer division targets).
func (s *selector) selectArith(in *ir.Arith) {
	lhs, rhs, dst := scratch[0], scratch[1], scratch[2]
	s.loadOperand(lhs, in.Lhs)
	s.loadOperand(rhs, in.Rhs)
	switch in.Op {
	case ir.OpAdd:
		s.emit(arm.ADD{Rd: dst, Rn: lhs, Rm: rhs})
	case ir.OpSub:
		s.emit(arm.SUB{Rd: dst, Rn: lhs, Rm: rhs})
	case ir.OpMul:
		s.emit(arm.MUL{Rd: dst, Rn: lhs, Rm: rhs})
	case ir.OpDiv:
		s.emit(arm.SDIV{Rd: dst, Rn: lhs, Rm: rhs})
	case ir.OpMod:
		s.emit(arm.SDIV{Rd: dst, Rn: lhs, Rm: rhs})
		s.emit(arm.MUL{Rd: dst, Rn: dst, Rm: rhs})
		s.emit(arm.SUB{Rd: dst, Rn: lhs, Rm: dst})
	default:
		panic(&ir.InternalError{Line: in.Line(), Message: fmt.Sprintf("armsel: unhandled arith op %v", in.Op)})
	}
	s.storeOperand(in, dst)
}

// selectBranch fuses a comparison directly into cmp+bcond when Cond is
// an *ir.Cmp — the overwhelmingly common case, since emitBranchForCondition
// always emits a Cmp immediately before the Branch consuming it — and
// otherwise treats Cond as a plain 0/1 scalar compared against zero.
func (s *selector) selectBranch(in *ir.Branch) {
	if cmp, ok := in.Cond.(*ir.Cmp); ok {
		lhs, rhs := scratch[0], scratch[1]
		s.loadOperand(lhs, cmp.Lhs)
		s.loadOperand(rhs, cmp.Rhs)
		s.emit(arm.CMP{Rn: lhs, Rm: rhs})
		s.emit(arm.Bcond{Cond: condCodeFor(cmp.Op), Target: s.label(in.TrueL)})
		s.emit(arm.B{Target: s.label(in.FalseL)})
		return
	}
	v := scratch[0]
	s.loadOperand(v, in.Cond)
	s.emit(arm.CMPi{Rn: v, Imm: 0})
	s.emit(arm.Bcond{Cond: arm.CondNE, Target: s.label(in.TrueL)})
	s.emit(arm.B{Target: s.label(in.FalseL)})
}

// selectCall evaluates every argument into its own staging slot, then
// places them into AAPCS registers/stack immediately before the bl, and
// finally moves r0 into the call's result slot if it has one.
func (s *selector) selectCall(in *ir.Call) {
	for i, a := range in.Args {
		s.loadOperand(scratch[0], a)
		s.storeSlot(scratch[0], s.layout.callArgSlot(in, i))
	}

	for i := len(in.Args) - 1; i >= numArgRegs; i-- {
		s.loadSlot(scratch[3], s.layout.callArgSlot(in, i))
		s.emit(arm.PUSH{Regs: []arm.Reg{scratch[3]}})
	}
	for i := 0; i < len(in.Args) && i < numArgRegs; i++ {
		s.loadSlot(scratch[i], s.layout.callArgSlot(in, i))
	}

	s.emit(arm.BL{Target: in.Callee})

	if overflow := len(in.Args) - numArgRegs; overflow > 0 {
		n := int32(overflow * wordSize)
		if fitsImm8(n) {
			s.emit(arm.ADDi{Rd: arm.SP, Rn: arm.SP, Imm: n})
		} else {
			s.loadImmediate(arm.R0, n)
			s.emit(arm.ADD{Rd: arm.SP, Rn: arm.SP, Rm: arm.R0})
		}
	}

	if in.HasResult() {
		s.storeOperand(in, arm.R0)
	}
}

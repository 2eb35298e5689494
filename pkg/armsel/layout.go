// Package armsel is the C4 instruction selector: it lowers one ir.Module
// into an arm.Program. It follows the teacher's Stacking/asmgen split —
// first lay out the activation record (this file), then walk the
// instruction list translating each opcode (select.go) — but collapses
// both into a single non-optimizing pass, since spec.md §4.4 calls for a
// trivial linear allocator rather than the teacher's graph-coloring
// register allocator: every named Value owns a fixed frame slot for its
// entire lifetime, loaded into a scratch register on use and stored back
// on definition. No Value lives in a register across instructions.
package armsel

import (
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
)

const wordSize = 4

// alignUp mirrors stacking/layout.go's alignUp, rounding n up to the
// nearest multiple of align.
func alignUp(n, align int32) int32 {
	if n%align == 0 {
		return n
	}
	return n + (align - n%align)
}

// frameLayout assigns every locally-resident Value a fixed offset from
// fp, per the full-spill allocation scheme: anonymous mem slots in
// creation order, then locals in declaration order, then every Arith/Call
// result and call-argument staging slot in instruction-stream order. ir.Cmp is deliberately absent —
// it is never stored, only recomputed at each use site (see select.go).
type callArgKey struct {
	call *ir.Call
	idx  int
}

type frameLayout struct {
	slots map[ir.Value]int32 // offset from fp, negative, in bytes
	total int32              // frame body size, already 8-byte aligned

	// callArgs holds one staging slot per (call, argument index): every
	// outgoing argument is evaluated into its own slot first and only
	// copied into its AAPCS register or stack position immediately
	// before the bl, so evaluating one argument never needs to spare a
	// register another argument has already been placed into — sidestepping
	// the parallel-move problem prolog.go's GenerateParamCopies solves
	// with a cycle-breaking algorithm, at the cost of a spill per argument.
	callArgs map[callArgKey]int32
}

// numArgRegs is AAPCS's count of integer argument registers (r0-r3).
const numArgRegs = 4

// incomingParamOffset returns the positive fp-relative offset of the
// idx'th formal parameter when it arrives on the caller's stack (the
// first numArgRegs arguments arrive in registers instead; the rest are
// pushed by the caller below its own sp before the bl). fp+0 holds the
// saved old fp and fp+4 the saved lr (see select.go's push {fp, lr}),
// so the first stacked argument lands at fp+8.
func incomingParamOffset(idx int) int32 {
	return 8 + int32(idx-numArgRegs)*wordSize
}

func computeLayout(fn *ir.Function) *frameLayout {
	l := &frameLayout{slots: make(map[ir.Value]int32), callArgs: make(map[callArgKey]int32)}
	cursor := int32(0)

	alloc := func(size int32) int32 {
		cursor = alignUp(cursor, wordSize) + size
		return -cursor
	}

	for _, mv := range fn.MemVariables() {
		l.slots[mv] = alloc(int32(mv.Typ.ByteSize()))
	}
	for _, lv := range fn.Locals() {
		l.slots[lv] = alloc(int32(lv.Typ.ByteSize()))
	}
	for _, instr := range fn.Instructions() {
		switch in := instr.(type) {
		case *ir.Arith:
			l.slots[in] = alloc(wordSize)
		case *ir.Call:
			if in.HasResult() {
				l.slots[in] = alloc(wordSize)
			}
			for i := range in.Args {
				l.callArgs[callArgKey{call: in, idx: i}] = alloc(wordSize)
			}
		}
	}

	l.total = alignUp(cursor, 8)
	return l
}

// callArgSlot returns the staging offset for the idx'th argument of call.
func (l *frameLayout) callArgSlot(call *ir.Call, idx int) int32 {
	off, ok := l.callArgs[callArgKey{call: call, idx: idx}]
	if !ok {
		panic("armsel: call argument has no staging slot")
	}
	return off
}

// offsetOf returns v's assigned frame slot. Only ever called for Values
// that computeLayout gave a slot: LocalVariable, MemVariable, a
// result-producing Arith, or a result-producing Call.
func (l *frameLayout) offsetOf(v ir.Value) int32 {
	off, ok := l.slots[v]
	if !ok {
		panic("armsel: value has no frame slot")
	}
	return off
}

// isArrayLocal reports whether v is a local whose own storage is a
// multi-word array block — such a Value's "operand" in arithmetic is the
// address of its slot, never a loaded word (see selectOperand).
func isArrayLocal(v ir.Value) (*ir.LocalVariable, bool) {
	lv, ok := v.(*ir.LocalVariable)
	if !ok {
		return nil, false
	}
	_, isArr := lv.Typ.(types.Array)
	return lv, isArr
}

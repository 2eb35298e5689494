package armsel

import (
	"testing"

	"github.com/angine04/compiler-labs/pkg/arm"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildAddFunction mirrors what irgen would emit for
// "int f(int a, int b) { return a + b; }", built directly against the
// ir.Function API so this package's tests don't depend on pkg/irgen.
func buildAddFunction(m *ir.Module) *ir.Function {
	fn, ok := m.DefineFunction("f", types.Int32{}, []ir.FormalSpec{
		{Name: "a", Typ: types.Int32{}},
		{Name: "b", Typ: types.Int32{}},
	})
	if !ok {
		panic("define f failed")
	}
	fn.AppendInstruction(&ir.Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	slot := fn.NewMemVariable(types.Int32{})
	fn.SetReturnSlot(slot)

	la := fn.NewLocalVar("a", types.Int32{}, 1)
	fn.AppendInstruction(&ir.Move{Dst: la, Src: fn.Params[0]})
	lb := fn.NewLocalVar("b", types.Int32{}, 1)
	fn.AppendInstruction(&ir.Move{Dst: lb, Src: fn.Params[1]})

	addI := &ir.Arith{Op: ir.OpAdd, Lhs: la, Rhs: lb, Typ: types.Int32{}}
	fn.AppendInstruction(addI)
	fn.AppendInstruction(&ir.Move{Dst: slot, Src: addI})
	fn.AppendInstruction(&ir.Goto{Target: exitL})
	fn.AppendInstruction(&ir.LabelDef{L: exitL})
	fn.AppendInstruction(&ir.Exit{ReturnSlot: slot})
	return fn
}

func TestTranslateProgramSkipsBuiltins(t *testing.T) {
	m := ir.NewModule()
	buildAddFunction(m)
	prog, err := TranslateProgram(m)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1, "only the user-defined function should be selected, not getint/putint/...")
	assert.Equal(t, "f", prog.Functions[0].Name)
}

func TestPrologueEpilogueShape(t *testing.T) {
	m := ir.NewModule()
	buildAddFunction(m)
	prog, err := TranslateProgram(m)
	require.NoError(t, err)
	code := prog.Functions[0].Code

	require.GreaterOrEqual(t, len(code), 4)
	assert.Equal(t, arm.PUSH{Regs: []arm.Reg{arm.FP, arm.LR}}, code[0])
	assert.Equal(t, arm.MOV{Rd: arm.FP, Rm: arm.SP}, code[1])

	last := code[len(code)-1]
	secondLast := code[len(code)-2]
	assert.Equal(t, arm.MOV{Rd: arm.SP, Rm: arm.FP}, secondLast)
	assert.Equal(t, arm.POP{Regs: []arm.Reg{arm.FP, arm.PC}}, last)
}

// TestCalleeSavedRegsExtendPushPop checks that a non-empty
// ir.Function.CalleeSaved list (as a future non-full-spill allocator
// might set before selection runs) extends both the prologue's PUSH and
// the epilogue's POP symmetrically — even though nothing in this
// module's own full-spill allocator ever sets it.
func TestCalleeSavedRegsExtendPushPop(t *testing.T) {
	m := ir.NewModule()
	fn, _ := m.DefineFunction("g", types.Void{}, nil)
	fn.SetCalleeSaved([]string{"r4", "r5"})
	fn.AppendInstruction(&ir.Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	fn.AppendInstruction(&ir.Goto{Target: exitL})
	fn.AppendInstruction(&ir.LabelDef{L: exitL})
	fn.AppendInstruction(&ir.Exit{})

	armFn := translateFunction(fn)
	require.GreaterOrEqual(t, len(armFn.Code), 4)
	assert.Equal(t, arm.PUSH{Regs: []arm.Reg{arm.R4, arm.R5, arm.FP, arm.LR}}, armFn.Code[0])
	last := armFn.Code[len(armFn.Code)-1]
	assert.Equal(t, arm.POP{Regs: []arm.Reg{arm.R4, arm.R5, arm.FP, arm.PC}}, last)
}

func TestArithLowersToAdd(t *testing.T) {
	m := ir.NewModule()
	buildAddFunction(m)
	prog, err := TranslateProgram(m)
	require.NoError(t, err)

	var adds int
	for _, inst := range prog.Functions[0].Code {
		if _, ok := inst.(arm.ADD); ok {
			adds++
		}
	}
	assert.Equal(t, 1, adds, "a + b selects exactly one ADD")
}

func TestModLowersToDivMulSub(t *testing.T) {
	m := ir.NewModule()
	fn, _ := m.DefineFunction("modf", types.Int32{}, []ir.FormalSpec{
		{Name: "a", Typ: types.Int32{}},
		{Name: "b", Typ: types.Int32{}},
	})
	fn.AppendInstruction(&ir.Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	slot := fn.NewMemVariable(types.Int32{})
	fn.SetReturnSlot(slot)
	la := fn.NewLocalVar("a", types.Int32{}, 1)
	fn.AppendInstruction(&ir.Move{Dst: la, Src: fn.Params[0]})
	lb := fn.NewLocalVar("b", types.Int32{}, 1)
	fn.AppendInstruction(&ir.Move{Dst: lb, Src: fn.Params[1]})
	modI := &ir.Arith{Op: ir.OpMod, Lhs: la, Rhs: lb, Typ: types.Int32{}}
	fn.AppendInstruction(modI)
	fn.AppendInstruction(&ir.Move{Dst: slot, Src: modI})
	fn.AppendInstruction(&ir.Goto{Target: exitL})
	fn.AppendInstruction(&ir.LabelDef{L: exitL})
	fn.AppendInstruction(&ir.Exit{ReturnSlot: slot})

	armFn := translateFunction(fn)
	var sawDiv, sawMul, sawSub bool
	divIdx, mulIdx, subIdx := -1, -1, -1
	for i, inst := range armFn.Code {
		switch inst.(type) {
		case arm.SDIV:
			sawDiv, divIdx = true, i
		case arm.MUL:
			sawMul, mulIdx = true, i
		case arm.SUB:
			sawSub, subIdx = true, i
		}
	}
	require.True(t, sawDiv && sawMul && sawSub, "a %% b expands to sdiv, mul, sub")
	assert.Less(t, divIdx, mulIdx, "sdiv must precede the mul that recombines the quotient")
	assert.Less(t, mulIdx, subIdx, "mul must precede the final subtraction")
}

func TestBranchFusesComparison(t *testing.T) {
	m := ir.NewModule()
	fn, _ := m.DefineFunction("cmpf", types.Void{}, []ir.FormalSpec{
		{Name: "a", Typ: types.Int32{}},
		{Name: "b", Typ: types.Int32{}},
	})
	fn.AppendInstruction(&ir.Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	la := fn.NewLocalVar("a", types.Int32{}, 1)
	fn.AppendInstruction(&ir.Move{Dst: la, Src: fn.Params[0]})
	lb := fn.NewLocalVar("b", types.Int32{}, 1)
	fn.AppendInstruction(&ir.Move{Dst: lb, Src: fn.Params[1]})

	trueL, falseL := fn.NewLabel(), fn.NewLabel()
	cmp := &ir.Cmp{Op: ir.CmpLt, Lhs: la, Rhs: lb}
	fn.AppendInstruction(cmp)
	fn.AppendInstruction(&ir.Branch{Cond: cmp, TrueL: trueL, FalseL: falseL})
	fn.AppendInstruction(&ir.LabelDef{L: trueL})
	fn.AppendInstruction(&ir.Goto{Target: exitL})
	fn.AppendInstruction(&ir.LabelDef{L: falseL})
	fn.AppendInstruction(&ir.Goto{Target: exitL})
	fn.AppendInstruction(&ir.LabelDef{L: exitL})
	fn.AppendInstruction(&ir.Exit{})

	armFn := translateFunction(fn)
	var cmpCount, movImmCount int
	for _, inst := range armFn.Code {
		switch inst.(type) {
		case arm.CMP:
			cmpCount++
		case arm.MOVi:
			movImmCount++
		}
	}
	assert.Equal(t, 1, cmpCount, "the comparison feeding the branch emits exactly one cmp, never materialized to 0/1")
	assert.Equal(t, 0, movImmCount, "a fused comparison never produces a mov #0/#1 boolean")
}

func TestCallStagesOverflowArguments(t *testing.T) {
	m := ir.NewModule()
	callee, _ := m.DefineFunction("six", types.Int32{}, []ir.FormalSpec{
		{Name: "a", Typ: types.Int32{}}, {Name: "b", Typ: types.Int32{}},
		{Name: "c", Typ: types.Int32{}}, {Name: "d", Typ: types.Int32{}},
		{Name: "e", Typ: types.Int32{}}, {Name: "f", Typ: types.Int32{}},
	})
	_ = callee

	fn, _ := m.DefineFunction("caller", types.Int32{}, nil)
	fn.AppendInstruction(&ir.Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	slot := fn.NewMemVariable(types.Int32{})
	fn.SetReturnSlot(slot)

	args := make([]ir.Value, 6)
	for i := range args {
		args[i] = m.ConstInt(int32(i + 1))
	}
	call := &ir.Call{Callee: "six", Sig: callee.Sig, Args: args}
	fn.AppendInstruction(call)
	fn.AppendInstruction(&ir.Move{Dst: slot, Src: call})
	fn.AppendInstruction(&ir.Goto{Target: exitL})
	fn.AppendInstruction(&ir.LabelDef{L: exitL})
	fn.AppendInstruction(&ir.Exit{ReturnSlot: slot})

	armFn := translateFunction(fn)
	var pushes, bls int
	var blIdx, lastPushIdx, addSpIdx int = -1, -1, -1
	for i, inst := range armFn.Code {
		switch v := inst.(type) {
		case arm.PUSH:
			pushes++
			lastPushIdx = i
		case arm.BL:
			bls++
			blIdx = i
			assert.Equal(t, "six", v.Target)
		case arm.ADDi:
			if v.Rd == arm.SP {
				addSpIdx = i
			}
		}
	}
	assert.Equal(t, 3, pushes, "the prologue's push plus 2 overflow arguments (indices 4,5); the rest go in r0-r3")
	assert.Equal(t, 1, bls)
	assert.Less(t, lastPushIdx, blIdx, "both overflow arguments are pushed before the call")
	require.NotEqual(t, -1, addSpIdx, "the stack is restored after the call")
	assert.Less(t, blIdx, addSpIdx, "the stack is only restored after the call returns")
}

func TestTranslateProgramRecoversInternalError(t *testing.T) {
	m := ir.NewModule()
	fn, _ := m.DefineFunction("bad", types.Void{}, nil)
	fn.AppendInstruction(&ir.Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	// An Arith with an opcode the selector has no handler for hits
	// selectArith's default case, which panics with an *ir.InternalError
	// that TranslateProgram must turn back into a returned error.
	fn.AppendInstruction(&ir.Arith{Op: ir.ArithOp(99), Lhs: m.ConstInt(1), Rhs: m.ConstInt(2), Typ: types.Int32{}})
	fn.AppendInstruction(&ir.Goto{Target: exitL})
	fn.AppendInstruction(&ir.LabelDef{L: exitL})
	fn.AppendInstruction(&ir.Exit{})

	prog, err := TranslateProgram(m)
	require.Error(t, err)
	assert.Nil(t, prog)
	var ie *ir.InternalError
	require.ErrorAs(t, err, &ie)
}

func TestTranslateProgramRefusesFailedModule(t *testing.T) {
	m := ir.NewModule()
	m.Fail(&ir.SemanticError{Message: "boom"})
	prog, err := TranslateProgram(m)
	require.Error(t, err)
	assert.Nil(t, prog)
}

func TestGlobalWriteStoresThroughAddress(t *testing.T) {
	m := ir.NewModule()
	g, ok := m.NewGlobal("counter", types.Int32{}, nil)
	require.True(t, ok)

	fn, _ := m.DefineFunction("bump", types.Void{}, nil)
	fn.AppendInstruction(&ir.Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	fn.AppendInstruction(&ir.Move{Dst: g, Src: m.ConstInt(7)})
	fn.AppendInstruction(&ir.Goto{Target: exitL})
	fn.AppendInstruction(&ir.LabelDef{L: exitL})
	fn.AppendInstruction(&ir.Exit{})

	armFn := translateFunction(fn)
	var sawSym bool
	var sawStr bool
	for _, inst := range armFn.Code {
		switch v := inst.(type) {
		case arm.LDRSym:
			if v.Sym == "counter" {
				sawSym = true
			}
		case arm.STR:
			if v.Ofs == 0 {
				sawStr = true
			}
		}
	}
	assert.True(t, sawSym, "writing a global first loads its address")
	assert.True(t, sawStr, "then stores the value through that address")
}

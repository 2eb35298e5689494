package ir

import (
	"strings"
	"testing"

	"github.com/angine04/compiler-labs/pkg/types"
)

// buildS1Main hand-builds the IR a translator would emit for
// "int main(){int a=3,b=4;return a*b-2;}" (spec.md scenario S1).
func buildS1Main() (*Module, *Function) {
	m := NewModule()
	fn, ok := m.DefineFunction("main", types.Int32{}, nil)
	if !ok {
		panic("main already defined")
	}
	m.SetCurrentFunction(fn)
	m.EnterScope()

	fn.AppendInstruction(&Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	retSlot := fn.NewMemVariable(types.Int32{})
	fn.SetReturnSlot(retSlot)

	a := fn.NewLocalVar("a", types.Int32{}, m.ScopeLevel())
	m.DefineVar("a", a)
	fn.AppendInstruction(&Move{Dst: a, Src: m.ConstInt(3)})

	b := fn.NewLocalVar("b", types.Int32{}, m.ScopeLevel())
	m.DefineVar("b", b)
	fn.AppendInstruction(&Move{Dst: b, Src: m.ConstInt(4)})

	mulI := &Arith{Op: OpMul, Lhs: a, Rhs: b, Typ: types.Int32{}}
	fn.AppendInstruction(mulI)
	subI := &Arith{Op: OpSub, Lhs: mulI, Rhs: m.ConstInt(2), Typ: types.Int32{}}
	fn.AppendInstruction(subI)
	fn.AppendInstruction(&Move{Dst: retSlot, Src: subI})
	fn.AppendInstruction(&Goto{Target: exitL})
	fn.AppendInstruction(&LabelDef{L: exitL})
	fn.AppendInstruction(&Exit{ReturnSlot: retSlot})

	m.LeaveScope()
	m.ClearCurrentFunction()
	RenameAll(fn)
	return m, fn
}

const wantS1Main = `define i32 @main() {
  declare i32 %l0 ; variable: a
  declare i32 %l1 ; variable: b
  entry:
  %l0 = 3 ; scalar move
  %l1 = 4 ; scalar move
  %t0 = mul %l0,%l1
  %t1 = sub %t0,2
  %t2 = %t1 ; scalar move
  br label .L0
  .L0:
  exit:
}
`

func TestPrintFunctionS1(t *testing.T) {
	_, fn := buildS1Main()
	var sb strings.Builder
	NewPrinter(&sb).PrintFunction(fn)
	if got := sb.String(); got != wantS1Main {
		t.Errorf("PrintFunction() =\n%s\nwant\n%s", got, wantS1Main)
	}
}

func TestRenameDeterminism(t *testing.T) {
	_, fn1 := buildS1Main()
	_, fn2 := buildS1Main()
	var b1, b2 strings.Builder
	NewPrinter(&b1).PrintFunction(fn1)
	NewPrinter(&b2).PrintFunction(fn2)
	if b1.String() != b2.String() {
		t.Errorf("two independent builds produced different IR text:\n%s\n---\n%s", b1.String(), b2.String())
	}
}

func TestPrintGlobals(t *testing.T) {
	m := NewModule()
	m.NewGlobal("g", types.Int32{}, nil)
	three := int32(3)
	m.NewGlobal("h", types.Int32{}, &three)
	m.NewGlobal("arr", types.Array{Elem: types.Int32{}, Dims: []int{10, 2}}, nil)

	var sb strings.Builder
	p := NewPrinter(&sb)
	for _, g := range m.Globals() {
		p.printGlobal(g)
	}
	want := "declare i32 @g\ndeclare i32 @h = 3\ndeclare i32 @arr[10][2]\n"
	if got := sb.String(); got != want {
		t.Errorf("globals =\n%s\nwant\n%s", got, want)
	}
}

func TestArrayParamDecayPrinting(t *testing.T) {
	m := NewModule()
	arrTy := &types.Array{Elem: types.Int32{}, Dims: []int{0, 2}}
	fn, ok := m.DefineFunction("f", types.Void{}, []FormalSpec{
		{Name: "a", Typ: types.Pointer{Elem: types.Int32{}}, OriginalArrayType: arrTy},
	})
	if !ok {
		t.Fatal("DefineFunction failed")
	}
	fn.AppendInstruction(&Entry{})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	fn.AppendInstruction(&LabelDef{L: exitL})
	fn.AppendInstruction(&Exit{})
	RenameAll(fn)

	var sb strings.Builder
	NewPrinter(&sb).PrintFunction(fn)
	want := "define void @f(i32 %t0[0][2]) {\n  entry:\n  .L0:\n  exit:\n}\n"
	if got := sb.String(); got != want {
		t.Errorf("PrintFunction() =\n%q\nwant\n%q", got, want)
	}
}

func TestCmpBranchPrinting(t *testing.T) {
	m := NewModule()
	fn, _ := m.DefineFunction("cond", types.Void{}, nil)
	fn.AppendInstruction(&Entry{})
	l := fn.NewLocalVar("x", types.Int32{}, 1)
	cmpI := &Cmp{Op: CmpLt, Lhs: l, Rhs: m.ConstInt(10)}
	fn.AppendInstruction(cmpI)
	t1, f1 := fn.NewLabel(), fn.NewLabel()
	fn.AppendInstruction(&Branch{Cond: cmpI, TrueL: t1, FalseL: f1})
	fn.AppendInstruction(&LabelDef{L: t1})
	fn.AppendInstruction(&LabelDef{L: f1})
	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)
	fn.AppendInstruction(&LabelDef{L: exitL})
	fn.AppendInstruction(&Exit{})
	RenameAll(fn)

	var sb strings.Builder
	NewPrinter(&sb).PrintFunction(fn)
	want := "define void @cond() {\n" +
		"  declare i32 %l0 ; variable: x\n" +
		"  entry:\n" +
		"  %t0 = cmp lt %l0, 10\n" +
		"  bc %t0, label .L0, label .L1\n" +
		"  .L0:\n" +
		"  .L1:\n" +
		"  .L2:\n" +
		"  exit:\n" +
		"}\n"
	if got := sb.String(); got != want {
		t.Errorf("PrintFunction() =\n%q\nwant\n%q", got, want)
	}
}

func TestCallPrinting(t *testing.T) {
	m := NewModule()
	putint, _ := m.FindFunction("putint")
	caller, _ := m.DefineFunction("caller", types.Void{}, nil)
	caller.AppendInstruction(&Entry{})
	callI := &Call{Callee: "putint", Sig: putint.Sig, Args: []Value{m.ConstInt(5)}}
	caller.AppendInstruction(callI)
	exitL := caller.NewLabel()
	caller.SetExitLabel(exitL)
	caller.AppendInstruction(&LabelDef{L: exitL})
	caller.AppendInstruction(&Exit{})
	RenameAll(caller)

	var sb strings.Builder
	NewPrinter(&sb).PrintFunction(caller)
	want := "define void @caller() {\n" +
		"  entry:\n" +
		"  call void @putint(i32 5)\n" +
		"  .L0:\n" +
		"  exit:\n" +
		"}\n"
	if got := sb.String(); got != want {
		t.Errorf("PrintFunction() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuiltinsAvailableWithoutDefinition(t *testing.T) {
	m := NewModule()
	for _, name := range []string{"getint", "putint", "getch", "putch", "getarray", "putarray"} {
		f, ok := m.FindFunction(name)
		if !ok {
			t.Fatalf("builtin %s not declared", name)
		}
		if !f.IsBuiltin {
			t.Errorf("builtin %s not marked IsBuiltin", name)
		}
	}
}

func TestConstIntInterning(t *testing.T) {
	m := NewModule()
	a := m.ConstInt(42)
	b := m.ConstInt(42)
	if a != b {
		t.Error("ConstInt(42) returned distinct Values on repeat calls")
	}
	if m.ConstInt(43) == a {
		t.Error("ConstInt(43) aliased ConstInt(42)")
	}
}

func TestScopeShadowing(t *testing.T) {
	m := NewModule()
	m.NewGlobal("x", types.Int32{}, nil)
	m.EnterScope()
	inner := &LocalVariable{SrcName: "x", Typ: types.Int32{}, ScopeLevel: 1}
	m.DefineVar("x", inner)
	got, ok := m.FindVar("x")
	if !ok || got != Value(inner) {
		t.Error("inner scope did not shadow global x")
	}
	m.LeaveScope()
	got, ok = m.FindVar("x")
	if !ok {
		t.Fatal("global x not found after leaving inner scope")
	}
	if _, isGlobal := got.(*GlobalVariable); !isGlobal {
		t.Errorf("expected global x to resolve again, got %T", got)
	}
}

func TestSameScopeRedefinitionRejected(t *testing.T) {
	m := NewModule()
	m.EnterScope()
	v1 := &LocalVariable{SrcName: "x", Typ: types.Int32{}}
	if !m.DefineVar("x", v1) {
		t.Fatal("first DefineVar should succeed")
	}
	v2 := &LocalVariable{SrcName: "x", Typ: types.Int32{}}
	if m.DefineVar("x", v2) {
		t.Error("redefinition in the same scope should fail")
	}
}

func TestLoopStack(t *testing.T) {
	fn := newFunction("f", types.Function{Return: types.Void{}}, nil)
	if _, _, ok := fn.CurrentLoop(); ok {
		t.Fatal("expected empty loop stack")
	}
	fn.PushLoop(Label(1), Label(2))
	c, b, ok := fn.CurrentLoop()
	if !ok || c != 1 || b != 2 {
		t.Errorf("CurrentLoop() = %v, %v, %v", c, b, ok)
	}
	fn.PopLoop()
	if _, _, ok := fn.CurrentLoop(); ok {
		t.Error("expected empty loop stack after pop")
	}
}

package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/angine04/compiler-labs/pkg/types"
)

// Printer renders a Module as the bit-stable textual IR format defined in
// spec.md §6, structurally modeled on the teacher's rtl/linear printers:
// a NewPrinter(io.Writer) constructor plus a PrintProgram/PrintFunction
// pair, deterministic declaration-order iteration (no map-order output
// anywhere).
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

// PrintProgram prints every global declaration, then every non-builtin
// function definition, in Module declaration order.
func (p *Printer) PrintProgram(m *Module) {
	for _, g := range m.Globals() {
		p.printGlobal(g)
	}
	for _, fn := range m.Functions() {
		if fn.IsBuiltin {
			continue
		}
		fmt.Fprintln(p.w)
		p.PrintFunction(fn)
	}
}

func (p *Printer) printGlobal(g *GlobalVariable) {
	if arr, ok := g.Elem.(types.Array); ok {
		fmt.Fprintf(p.w, "declare %s @%s%s\n", arr.Elem.String(), g.SrcName, dimsText(arr.Dims))
		return
	}
	if g.Init != nil {
		fmt.Fprintf(p.w, "declare %s @%s = %d\n", g.Elem.String(), g.SrcName, *g.Init)
		return
	}
	fmt.Fprintf(p.w, "declare %s @%s\n", g.Elem.String(), g.SrcName)
}

func dimsText(dims []int) string {
	var sb strings.Builder
	for _, d := range dims {
		fmt.Fprintf(&sb, "[%d]", d)
	}
	return sb.String()
}

func paramText(fp *FormalParam) string {
	if fp.OriginalArrayType != nil {
		return fmt.Sprintf("%s %s%s", fp.OriginalArrayType.Elem.String(), fp.name, dimsText(fp.OriginalArrayType.Dims))
	}
	return fmt.Sprintf("%s %s", fp.Typ.String(), fp.name)
}

// argText renders one Call actual argument, preferring the callee's
// declared array dimensions over the argument Value's own type when the
// corresponding formal is array-decayed.
func argText(arg Value, callee *FormalParam) string {
	if callee != nil && callee.OriginalArrayType != nil {
		return fmt.Sprintf("%s %s%s", callee.OriginalArrayType.Elem.String(), arg.Operand(), dimsText(callee.OriginalArrayType.Dims))
	}
	return fmt.Sprintf("%s %s", arg.Type().String(), arg.Operand())
}

func isPointer(t types.Type) bool {
	_, ok := t.(types.Pointer)
	return ok
}

// PrintFunction prints one function's signature, its locals' declare
// lines, and its full instruction list.
func (p *Printer) PrintFunction(fn *Function) {
	paramTexts := make([]string, len(fn.Params))
	for i, fp := range fn.Params {
		paramTexts[i] = paramText(fp)
	}
	fmt.Fprintf(p.w, "define %s @%s(%s) {\n", fn.Sig.Return.String(), fn.Name, strings.Join(paramTexts, ", "))

	for _, l := range fn.Locals() {
		if arr, ok := l.Typ.(types.Array); ok {
			fmt.Fprintf(p.w, "  declare %s %s%s ; variable: %s\n", arr.Elem.String(), l.name, dimsText(arr.Dims), l.SrcName)
			continue
		}
		fmt.Fprintf(p.w, "  declare %s %s ; variable: %s\n", l.Typ.String(), l.name, l.SrcName)
	}

	for _, instr := range fn.Instructions() {
		p.printInstr(fn, instr)
	}

	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printInstr(fn *Function, instr Instr) {
	switch in := instr.(type) {
	case *Entry:
		fmt.Fprintln(p.w, "  entry:")
	case *Exit:
		fmt.Fprintln(p.w, "  exit:")
	case *LabelDef:
		fmt.Fprintf(p.w, "  %s:\n", fn.LabelText(in.L))
	case *Goto:
		fmt.Fprintf(p.w, "  br label %s\n", fn.LabelText(in.Target))
	case *Branch:
		fmt.Fprintf(p.w, "  bc %s, label %s, label %s\n", in.Cond.Operand(), fn.LabelText(in.TrueL), fn.LabelText(in.FalseL))
	case *Move:
		p.printMove(in)
	case *Arith:
		fmt.Fprintf(p.w, "  %s = %s %s,%s\n", in.Operand(), in.Op.String(), in.Lhs.Operand(), in.Rhs.Operand())
	case *Cmp:
		fmt.Fprintf(p.w, "  %s = cmp %s %s, %s\n", in.Operand(), in.Op.String(), in.Lhs.Operand(), in.Rhs.Operand())
	case *Call:
		p.printCall(in)
	default:
		panic(&InternalError{Message: fmt.Sprintf("printer: unhandled instruction %T", instr)})
	}
}

func (p *Printer) printMove(in *Move) {
	dstPtr, srcPtr := isPointer(in.Dst.Type()), isPointer(in.Src.Type())
	switch {
	case dstPtr && !srcPtr:
		fmt.Fprintf(p.w, "  *%s = %s ; store through pointer\n", in.Dst.Operand(), in.Src.Operand())
	case srcPtr && !dstPtr:
		fmt.Fprintf(p.w, "  %s = *%s ; load through pointer\n", in.Dst.Operand(), in.Src.Operand())
	default:
		fmt.Fprintf(p.w, "  %s = %s ; scalar move\n", in.Dst.Operand(), in.Src.Operand())
	}
}

func (p *Printer) printCall(in *Call) {
	argTexts := make([]string, len(in.Args))
	for i, a := range in.Args {
		var callee *FormalParam
		if i < len(in.CalleeParams) {
			callee = in.CalleeParams[i]
		}
		argTexts[i] = argText(a, callee)
	}
	if in.HasResult() {
		fmt.Fprintf(p.w, "  %s = call %s @%s(%s)\n", in.Operand(), in.Sig.Return.String(), in.Callee, strings.Join(argTexts, ", "))
		return
	}
	fmt.Fprintf(p.w, "  call void @%s(%s)\n", in.Callee, strings.Join(argTexts, ", "))
}

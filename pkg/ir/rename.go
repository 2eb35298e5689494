package ir

import "fmt"

// renameAll assigns the deterministic, contiguous IR names spec.md §4.1
// requires: "%tN" for formal parameters, anonymous memory slots, and
// result-producing instructions; "%lN" for user-declared locals; ".LN"
// for labels — each contiguous across the function and assigned in a
// single, order-stable walk so two runs over the same Function produce
// identical text (testable property 1).
func renameAll(f *Function) {
	tCounter := 0
	for _, p := range f.Params {
		p.name = fmt.Sprintf("%%t%d", tCounter)
		tCounter++
	}
	for i, l := range f.locals {
		l.name = fmt.Sprintf("%%l%d", i)
	}

	nameT := func(v Value) {
		switch vv := v.(type) {
		case *MemVariable:
			if vv.name == "" {
				vv.name = fmt.Sprintf("%%t%d", tCounter)
				tCounter++
			}
		case *Arith:
			if vv.name == "" {
				vv.name = fmt.Sprintf("%%t%d", tCounter)
				tCounter++
			}
		case *Cmp:
			if vv.name == "" {
				vv.name = fmt.Sprintf("%%t%d", tCounter)
				tCounter++
			}
		case *Call:
			if vv.HasResult() && vv.name == "" {
				vv.name = fmt.Sprintf("%%t%d", tCounter)
				tCounter++
			}
		}
	}

	if f.labelIDs == nil {
		f.labelIDs = make(map[Label]int)
	}
	labelCounter := 0

	for _, instr := range f.instrs {
		switch in := instr.(type) {
		case *Exit:
			if in.ReturnSlot != nil {
				nameT(in.ReturnSlot)
			}
		case *LabelDef:
			if _, ok := f.labelIDs[in.L]; !ok {
				f.labelIDs[in.L] = labelCounter
				labelCounter++
			}
		case *Branch:
			nameT(in.Cond)
		case *Move:
			nameT(in.Dst)
			nameT(in.Src)
		case *Arith:
			nameT(in.Lhs)
			nameT(in.Rhs)
			nameT(in)
		case *Cmp:
			nameT(in.Lhs)
			nameT(in.Rhs)
			nameT(in)
		case *Call:
			for _, a := range in.Args {
				nameT(a)
			}
			nameT(in)
		}
	}
}

// RenameAll is the exported entry point for C1's renameAll(Function)
// contract; Translate calls it once per function immediately after that
// function's body is fully emitted.
func RenameAll(f *Function) { renameAll(f) }

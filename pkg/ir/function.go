package ir

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/types"
)

type loopFrame struct {
	Continue Label
	Break    Label
}

// Function is a Function container (C2): the per-function scoped
// instruction list plus the bookkeeping the translator and, later, the
// instruction selector need.
type Function struct {
	Name   string
	Sig    types.Function
	Params []*FormalParam

	locals []*LocalVariable
	mems   []*MemVariable
	instrs []Instr

	returnSlot *MemVariable
	exitLabel  Label
	nextLabel  int

	loopStack []loopFrame

	maxCallArgCount int
	hasCall         bool
	calleeSaved     []string

	labelIDs map[Label]int // filled by renameAll: contiguous .LN index per Label

	IsBuiltin bool
}

// LabelText renders l using the contiguous ".LN" index renameAll assigned
// it. Calling this before renameAll has run returns a placeholder.
func (f *Function) LabelText(l Label) string {
	if !l.Valid() {
		return ""
	}
	if id, ok := f.labelIDs[l]; ok {
		return fmt.Sprintf(".L%d", id)
	}
	return fmt.Sprintf(".L?%d", int(l))
}

func newFunction(name string, sig types.Function, params []*FormalParam) *Function {
	return &Function{
		Name:      name,
		Sig:       sig,
		Params:    params,
		exitLabel: NoLabel,
	}
}

// NewLocalVar creates a user-declared local and records it in declaration
// order (the order renameAll assigns "%lN" in).
func (f *Function) NewLocalVar(srcName string, typ types.Type, scopeLevel int) *LocalVariable {
	v := &LocalVariable{SrcName: srcName, Typ: typ, ScopeLevel: scopeLevel}
	f.locals = append(f.locals, v)
	return v
}

// NewMemVariable creates an anonymous stack-resident slot: used for the
// return-value slot, for values loaded from a global or an array
// element, and for the 0/1 result of a materialized logical expression.
func (f *Function) NewMemVariable(typ types.Type) *MemVariable {
	v := &MemVariable{Typ: typ}
	f.mems = append(f.mems, v)
	return v
}

// NewLabel mints a fresh, as-yet-unplaced Label.
func (f *Function) NewLabel() Label {
	l := Label(f.nextLabel)
	f.nextLabel++
	return l
}

// SetExitLabel records the function's exit label, created in translation
// step 2 before it is appended to the instruction list in step 5.
func (f *Function) SetExitLabel(l Label) { f.exitLabel = l }
func (f *Function) ExitLabel() Label     { return f.exitLabel }

// SetReturnSlot records the function's return-value slot. Absent (nil)
// iff the function is void, per the return-slot invariant.
func (f *Function) SetReturnSlot(v *MemVariable) { f.returnSlot = v }
func (f *Function) ReturnSlot() *MemVariable     { return f.returnSlot }

// AppendInstruction appends inst to the linear instruction list, updating
// hasCall/maxCallArgCount bookkeeping when inst is a Call.
func (f *Function) AppendInstruction(inst Instr) {
	f.instrs = append(f.instrs, inst)
	if c, ok := inst.(*Call); ok {
		f.hasCall = true
		if n := len(c.Args); n > f.maxCallArgCount {
			f.maxCallArgCount = n
		}
	}
}

func (f *Function) Instructions() []Instr      { return f.instrs }
func (f *Function) Locals() []*LocalVariable   { return f.locals }
func (f *Function) MemVariables() []*MemVariable { return f.mems }

func (f *Function) MaxCallArgCount() int { return f.maxCallArgCount }
func (f *Function) HasCall() bool        { return f.hasCall }

func (f *Function) CalleeSaved() []string        { return f.calleeSaved }
func (f *Function) SetCalleeSaved(regs []string) { f.calleeSaved = regs }

// PushLoop / PopLoop / CurrentLoop implement the (continueTarget,
// breakTarget) stack used while translating while-loops and break/continue.
func (f *Function) PushLoop(continueL, breakL Label) {
	f.loopStack = append(f.loopStack, loopFrame{Continue: continueL, Break: breakL})
}

func (f *Function) PopLoop() {
	f.loopStack = f.loopStack[:len(f.loopStack)-1]
}

func (f *Function) CurrentLoop() (continueL, breakL Label, ok bool) {
	if len(f.loopStack) == 0 {
		return NoLabel, NoLabel, false
	}
	top := f.loopStack[len(f.loopStack)-1]
	return top.Continue, top.Break, true
}

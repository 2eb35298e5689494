// Package arm defines the ARM32 (AArch32, EABI) assembly representation:
// the final output of the compiler. This mirrors the teacher's ARM64
// pkg/asm, narrowed to the instruction subset spec.md §4.4 names and to
// a fixed 32-bit register width throughout (no Is64 flag).
package arm

import "fmt"

// Reg is a physical ARM32 integer register, r0 through r15 by AAPCS name.
type Reg int

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	SP
	LR
	PC
)

// FP is the AAPCS frame-pointer alias for r11.
const FP = R11

// IP is the AAPCS "intra-procedure-call scratch register" alias for r12.
const IP = R12

func (r Reg) String() string {
	switch r {
	case FP:
		return "fp"
	case SP:
		return "sp"
	case LR:
		return "lr"
	case PC:
		return "pc"
	default:
		return fmt.Sprintf("r%d", int(r))
	}
}

// ArgRegs is r0-r3, the AAPCS integer-argument/scratch registers.
var ArgRegs = []Reg{R0, R1, R2, R3}

// CalleeSavedRegs is r4-r10, callee-saved across calls per AAPCS.
var CalleeSavedRegs = []Reg{R4, R5, R6, R7, R8, R9, R10}

// CondCode is an ARM32 condition code, restricted to the signed
// comparisons spec.md's Cmp opcode set needs.
type CondCode int

const (
	CondEQ CondCode = iota
	CondNE
	CondLT
	CondLE
	CondGT
	CondGE
	CondAL
)

func (c CondCode) String() string {
	switch c {
	case CondEQ:
		return "eq"
	case CondNE:
		return "ne"
	case CondLT:
		return "lt"
	case CondLE:
		return "le"
	case CondGT:
		return "gt"
	case CondGE:
		return "ge"
	case CondAL:
		return "al"
	default:
		return "?"
	}
}

// Label is a local branch/literal-pool target within one function.
type Label string

// Instruction is the closed set of ARM32 instructions this backend emits.
type Instruction interface {
	implInstruction()
}

// MOV - register-to-register move.
type MOV struct{ Rd, Rm Reg }

// MOVi - move a small immediate (must fit the 8-bit rotated-immediate
// encoding; larger constants go through a literal-pool LDRLabel instead).
type MOVi struct {
	Rd  Reg
	Imm int32
}

// ADD - Rd = Rn + Rm.
type ADD struct{ Rd, Rn, Rm Reg }

// ADDi - Rd = Rn + Imm.
type ADDi struct {
	Rd, Rn Reg
	Imm    int32
}

// SUB - Rd = Rn - Rm.
type SUB struct{ Rd, Rn, Rm Reg }

// SUBi - Rd = Rn - Imm.
type SUBi struct {
	Rd, Rn Reg
	Imm    int32
}

// MUL - Rd = Rn * Rm.
type MUL struct{ Rd, Rn, Rm Reg }

// SDIV - Rd = Rn / Rm (signed, truncating toward zero).
type SDIV struct{ Rd, Rn, Rm Reg }

// CMP - compare Rn against Rm, setting condition flags.
type CMP struct{ Rn, Rm Reg }

// CMPi - compare Rn against an immediate.
type CMPi struct {
	Rn  Reg
	Imm int32
}

// B - unconditional branch to a local Label.
type B struct{ Target Label }

// Bcond - conditional branch to a local Label.
type Bcond struct {
	Cond   CondCode
	Target Label
}

// BL - branch-with-link to an external function symbol (a call).
type BL struct{ Target string }

// BXLR - return: branch to the address in lr.
type BXLR struct{}

// LDR - load a word from [Rn, #Ofs] into Rt.
type LDR struct {
	Rt, Rn Reg
	Ofs    int32
}

// LDRLabel - load a word from a PC-relative literal-pool entry; used for
// integer constants too wide for MOVi's 8-bit rotated-immediate form.
type LDRLabel struct {
	Rt     Reg
	Target Label
}

// LDRSym - load the address of an external symbol (global variable)
// into Rt via its GOT-free, statically-linked literal-pool entry.
type LDRSym struct {
	Rt  Reg
	Sym string
}

// STR - store Rt into [Rn, #Ofs].
type STR struct {
	Rt, Rn Reg
	Ofs    int32
}

// PUSH - push Regs (low-to-high index order) onto the stack.
type PUSH struct{ Regs []Reg }

// POP - pop Regs (low-to-high index order) off the stack.
type POP struct{ Regs []Reg }

// LabelDef marks a local branch target's position in the instruction stream.
type LabelDef struct{ Name Label }

// Word is a literal-pool entry: a 32-bit constant addressed by Name,
// emitted after a function's code (spec.md §4.4's immediate-overflow
// handling).
type Word struct {
	Name  Label
	Value int32
}

func (MOV) implInstruction()      {}
func (MOVi) implInstruction()     {}
func (ADD) implInstruction()      {}
func (ADDi) implInstruction()     {}
func (SUB) implInstruction()      {}
func (SUBi) implInstruction()     {}
func (MUL) implInstruction()      {}
func (SDIV) implInstruction()     {}
func (CMP) implInstruction()      {}
func (CMPi) implInstruction()     {}
func (B) implInstruction()        {}
func (Bcond) implInstruction()    {}
func (BL) implInstruction()       {}
func (BXLR) implInstruction()     {}
func (LDR) implInstruction()      {}
func (LDRLabel) implInstruction() {}
func (LDRSym) implInstruction()   {}
func (STR) implInstruction()      {}
func (PUSH) implInstruction()     {}
func (POP) implInstruction()      {}
func (LabelDef) implInstruction() {}

// Function is one assembled ARM32 function: its code plus the literal
// pool of wide constants referenced by LDRLabel within it. LDRSym adds
// nothing to Pool; it is printed as an "ldr rT, =sym" pseudo-op.
type Function struct {
	Name string
	Code []Instruction
	Pool []Word
}

func NewFunction(name string) *Function {
	return &Function{Name: name}
}

func (f *Function) Append(inst Instruction)   { f.Code = append(f.Code, inst) }
func (f *Function) AppendLabel(name Label)    { f.Code = append(f.Code, LabelDef{Name: name}) }
func (f *Function) AddPoolWord(name Label, v int32) {
	f.Pool = append(f.Pool, Word{Name: name, Value: v})
}

// GlobVar is a module-scope variable: zero-initialized (bss, Init nil)
// or scalar-initialized (data, Init non-nil).
type GlobVar struct {
	Name string
	Size int64
	Init *int32
}

// Program is a complete assembled unit: globals plus functions, in the
// order the translator defined them.
type Program struct {
	Globals   []GlobVar
	Functions []*Function
}

package arm

import (
	"bytes"
	"testing"
)

func TestPrintInstructions(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
		want string
	}{
		{"MOV", MOV{Rd: R0, Rm: R1}, "\tmov\tr0, r1\n"},
		{"MOVi", MOVi{Rd: R0, Imm: 7}, "\tmov\tr0, #7\n"},
		{"ADD", ADD{Rd: R0, Rn: R1, Rm: R2}, "\tadd\tr0, r1, r2\n"},
		{"ADDi", ADDi{Rd: R0, Rn: R1, Imm: 4}, "\tadd\tr0, r1, #4\n"},
		{"SUB", SUB{Rd: R3, Rn: R4, Rm: R5}, "\tsub\tr3, r4, r5\n"},
		{"SUBi", SUBi{Rd: R3, Rn: R4, Imm: 12}, "\tsub\tr3, r4, #12\n"},
		{"MUL", MUL{Rd: R0, Rn: R1, Rm: R2}, "\tmul\tr0, r1, r2\n"},
		{"SDIV", SDIV{Rd: R0, Rn: R1, Rm: R2}, "\tsdiv\tr0, r1, r2\n"},
		{"CMP", CMP{Rn: R0, Rm: R1}, "\tcmp\tr0, r1\n"},
		{"CMPi", CMPi{Rn: R0, Imm: 0}, "\tcmp\tr0, #0\n"},
		{"B", B{Target: ".L1"}, "\tb\t.L1\n"},
		{"Bcond lt", Bcond{Cond: CondLT, Target: ".L2"}, "\tblt\t.L2\n"},
		{"BL", BL{Target: "putint"}, "\tbl\tputint\n"},
		{"BXLR", BXLR{}, "\tbx\tlr\n"},
		{"LDR no offset", LDR{Rt: R0, Rn: FP}, "\tldr\tr0, [fp]\n"},
		{"LDR with offset", LDR{Rt: R0, Rn: FP, Ofs: -8}, "\tldr\tr0, [fp, #-8]\n"},
		{"STR with offset", STR{Rt: R0, Rn: FP, Ofs: -12}, "\tstr\tr0, [fp, #-12]\n"},
		{"PUSH", PUSH{Regs: []Reg{FP, LR}}, "\tpush\t{fp, lr}\n"},
		{"POP", POP{Regs: []Reg{FP, PC}}, "\tpop\t{fp, pc}\n"},
		{"LabelDef", LabelDef{Name: ".L0"}, ".L0:\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPrinter(&buf)
			p.printInstruction(tt.inst)
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintFunctionWithPool(t *testing.T) {
	f := NewFunction("main")
	f.Append(PUSH{Regs: []Reg{FP, LR}})
	f.Append(MOV{Rd: FP, Rm: SP})
	f.Append(LDRLabel{Rt: R0, Target: ".LC0"})
	f.AddPoolWord(".LC0", 70000)
	f.Append(POP{Regs: []Reg{FP, PC}})

	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgram(&Program{Functions: []*Function{f}})

	want := "\t.text\n" +
		"\t.align\t2\n" +
		"\t.global\tmain\n" +
		"\t.type\tmain, %function\n" +
		"main:\n" +
		"\tpush\t{fp, lr}\n" +
		"\tmov\tfp, sp\n" +
		"\tldr\tr0, .LC0\n" +
		"\tpop\t{fp, pc}\n" +
		".LC0:\n" +
		"\t.word\t70000\n" +
		"\t.size\tmain, .-main\n\n"

	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintGlobals(t *testing.T) {
	init := int32(3)
	prog := &Program{
		Globals: []GlobVar{
			{Name: "g", Init: &init},
			{Name: "arr", Size: 48},
		},
	}
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgram(prog)

	want := "\t.data\n" +
		"\t.global\tg\n" +
		"g:\n" +
		"\t.word\t3\n\n" +
		"\t.bss\n" +
		"\t.global\tarr\n" +
		"\t.comm\tarr, 48, 4\n\n" +
		"\t.text\n"

	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

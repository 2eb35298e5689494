// Command minicc is the MiniC compiler's CLI: it reads a frontend-produced
// AST (JSON, since lexing/parsing MiniC source is out of this module's
// scope), runs the translation and instruction-selection passes, and
// prints the result as IR text or ARM32 assembly text.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/angine04/compiler-labs/pkg/arm"
	"github.com/angine04/compiler-labs/pkg/armsel"
	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/diag"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/irgen"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	astPath    string
	emitTarget string
	outPath    string
	trace      bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minicc --ast <file>",
		Short: "minicc translates a MiniC AST to IR or ARM32 assembly",
		Long: `minicc is the MiniC compiler's back half: it takes the JSON AST a
frontend has already parsed, translates it to linear three-address IR,
and (unless asked to stop at IR) selects ARM32 assembly from it.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doCompile(out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVar(&astPath, "ast", "", "path to the JSON AST to compile (required)")
	rootCmd.Flags().StringVar(&emitTarget, "emit", "asm", `what to print: "ir" or "asm"`)
	rootCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	rootCmd.Flags().BoolVar(&trace, "trace", false, "trace each phase's function-level progress to stderr")
	rootCmd.MarkFlagRequired("ast")

	return rootCmd
}

// doCompile reads the AST named by --ast, translates it, and prints either
// the IR or the selected assembly to the --emit/-o destination. It mirrors
// the teacher's doXxx(filename, out, errOut) error shape, one stage per
// step: read -> decode -> translate -> (select) -> print.
func doCompile(out, errOut io.Writer) error {
	diag.SetTrace(trace)

	data, err := os.ReadFile(astPath)
	if err != nil {
		fmt.Fprintf(errOut, "minicc: error reading %s: %v\n", astPath, err)
		return err
	}

	unit, err := ast.DecodeCompileUnit(data)
	if err != nil {
		fmt.Fprintf(errOut, "minicc: %v\n", err)
		return err
	}

	m := ir.NewModule()
	if err := irgen.Translate(m, unit); err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
		return err
	}

	w, closeW, err := openOutput(out)
	if err != nil {
		fmt.Fprintf(errOut, "minicc: error creating %s: %v\n", outPath, err)
		return err
	}
	defer closeW()

	switch emitTarget {
	case "ir":
		ir.NewPrinter(w).PrintProgram(m)
		return nil
	case "asm":
		prog, err := armsel.TranslateProgram(m)
		if err != nil {
			fmt.Fprintf(errOut, "%v\n", err)
			return err
		}
		arm.NewPrinter(w).PrintProgram(prog)
		return nil
	default:
		err := fmt.Errorf("minicc: --emit must be \"ir\" or \"asm\", got %q", emitTarget)
		fmt.Fprintln(errOut, err)
		return err
	}
}

// openOutput resolves -o: a named file, or the CLI's own stdout when -o is
// unset. closeW is always safe to defer, even for stdout.
func openOutput(stdout io.Writer) (w io.Writer, closeW func(), err error) {
	if outPath == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

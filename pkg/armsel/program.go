package armsel

import (
	"github.com/angine04/compiler-labs/pkg/arm"
	"github.com/angine04/compiler-labs/pkg/ir"
)

// TranslateProgram lowers an entire Module to an arm.Program: every
// global in declaration order, then every user-defined (non-builtin)
// function. Builtins (getint, putint, ...) have no body to select — they
// are emitted only as bl targets resolved against the runtime support
// library at link time.
//
// A Module that already failed translation (m.Failed) is refused
// outright — selection never runs over a partially-translated function
// list, per spec.md §5/§7. A violated selector invariant surfaces as a
// panicked *ir.InternalError from deep inside translateFunction; recover
// converts it into a returned error here rather than crashing the
// process, matching how pkg/irgen.Translate's own boundary behaves for
// the translation phase.
func TranslateProgram(m *ir.Module) (prog *arm.Program, err error) {
	if m.Failed {
		return nil, m.Errors[0]
	}
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*ir.InternalError)
			if !ok {
				panic(r)
			}
			prog, err = nil, ie
		}
	}()

	prog = &arm.Program{}
	for _, g := range m.Globals() {
		prog.Globals = append(prog.Globals, globalToArm(g))
	}
	for _, fn := range m.Functions() {
		if fn.IsBuiltin {
			continue
		}
		prog.Functions = append(prog.Functions, translateFunction(fn))
	}
	return prog, nil
}

func globalToArm(g *ir.GlobalVariable) arm.GlobVar {
	return arm.GlobVar{Name: g.SrcName, Size: int64(g.Elem.ByteSize()), Init: g.Init}
}

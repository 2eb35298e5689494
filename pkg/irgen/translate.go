// Package irgen is the C3 translator: it lowers a pkg/ast tree into the
// linear pkg/ir form, following spec.md §4.3's per-construct rules.
package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/diag"
	"github.com/angine04/compiler-labs/pkg/ir"
)

// Translate lowers unit into m, dispatching each top-level item to
// function or global-declaration translation in source order. It keeps
// going after a recoverable error (recording it via m.Fail) so a single
// translation pass can report more than one problem, matching the
// Module.Failed / Module.Errors bookkeeping spec.md §5 describes. A
// panicked *ir.InternalError is recovered here, recorded via m.Fail and
// returned as an ordinary error; any other panic value is re-raised.
func Translate(m *ir.Module, unit *ast.CompileUnit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*ir.InternalError)
			if !ok {
				panic(r)
			}
			m.Fail(ie)
			err = ie
		}
	}()
	t := &translator{m: m}
	for _, item := range unit.Items {
		var err error
		switch n := item.(type) {
		case ast.FuncDef:
			diag.Phase("irgen", n.Name).Debug("translating function")
			err = t.translateFuncDef(n)
			if err == nil {
				diag.Phase("irgen", n.Name).Debug("translated function")
			}
		case ast.VarDecl:
			err = t.translateGlobalDecl(n)
		case ast.VarInit:
			err = t.translateGlobalDecl(n)
		case ast.ArrayDecl:
			err = t.translateGlobalDecl(n)
		default:
			err = &ir.InternalError{Line: item.Pos(), Message: fmt.Sprintf("unhandled top-level item %T", item)}
		}
		if err != nil {
			m.Fail(err)
		}
	}
	if m.Failed {
		return m.Errors[0]
	}
	if _, ok := m.FindFunction("main"); !ok {
		err := &ir.SemanticError{Message: "translation unit has no \"main\" function"}
		m.Fail(err)
		return err
	}
	return nil
}

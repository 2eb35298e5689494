package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
)

// resolveFormal turns one source parameter declarator into the
// FormalSpec DefineFunction needs: a scalar parameter keeps its leaf
// type, an array-decaying parameter (Dims non-empty) decays to
// Pointer(elem) with the original array shape recorded on the side —
// spec.md §4.3's parameter-decay rule.
func resolveFormal(p *ast.FuncFormalParam) (ir.FormalSpec, error) {
	elemTy, err := resolveLeafType(p.Type)
	if err != nil {
		return ir.FormalSpec{}, err
	}
	if len(p.Dims) == 0 {
		return ir.FormalSpec{Name: p.Name, Typ: elemTy}, nil
	}
	dims, err := resolveDims(p.Dims, true)
	if err != nil {
		return ir.FormalSpec{}, err
	}
	orig := &types.Array{Elem: elemTy, Dims: dims}
	return ir.FormalSpec{Name: p.Name, Typ: types.Pointer{Elem: elemTy}, OriginalArrayType: orig}, nil
}

// translateFuncDef implements spec.md §4.3's 6-step function-translation
// algorithm:
//  1. define the function (or fail on a duplicate name);
//  2. enter function scope, emit Entry, mint the exit label and (for a
//     non-void function) the return slot — zeroed up front for main so
//     falling off the end without an explicit return yields exit status 0;
//  3. materialize each formal into a shadowing local via Move, so the
//     body always sees a modifiable local rather than the raw parameter;
//  4. translate the body in that same scope;
//  5. append the exit label and the single Exit instruction;
//  6. leave function scope and clear the current-function pointer.
func (t *translator) translateFuncDef(d ast.FuncDef) error {
	retTy, err := resolveLeafType(d.ReturnType)
	if err != nil {
		return err
	}

	var paramDecls []*ast.FuncFormalParam
	if d.Params != nil {
		paramDecls = d.Params.Params
	}
	formals := make([]ir.FormalSpec, len(paramDecls))
	for i, p := range paramDecls {
		fs, err := resolveFormal(p)
		if err != nil {
			return err
		}
		formals[i] = fs
	}

	fn, ok := t.m.DefineFunction(d.Name, retTy, formals)
	if !ok {
		return &ir.SemanticError{Line: d.Line, Message: fmt.Sprintf("function %q already defined", d.Name)}
	}

	t.m.SetCurrentFunction(fn)
	t.m.EnterScope()
	defer func() {
		t.m.LeaveScope()
		t.m.ClearCurrentFunction()
	}()

	t.emit(&ir.Entry{})

	exitL := fn.NewLabel()
	fn.SetExitLabel(exitL)

	if _, isVoid := retTy.(types.Void); !isVoid {
		slot := fn.NewMemVariable(retTy)
		fn.SetReturnSlot(slot)
		if d.Name == "main" {
			t.emit(&ir.Move{Dst: slot, Src: t.m.ConstInt(0)})
		}
	}

	for i, p := range fn.Params {
		local := fn.NewLocalVar(p.SrcName, p.Typ, t.m.ScopeLevel())
		local.OriginalArrayType = p.OriginalArrayType
		if !t.m.DefineVar(p.SrcName, local) {
			return &ir.SemanticError{Line: d.Line, Message: fmt.Sprintf("duplicate parameter name %q", p.SrcName)}
		}
		t.emit(&ir.Move{Dst: local, Src: fn.Params[i]})
	}

	if err := t.translateFuncBody(d.Body); err != nil {
		return err
	}

	t.emit(&ir.LabelDef{L: exitL})
	t.emit(&ir.Exit{ReturnSlot: returnSlotValue(fn)})
	ir.RenameAll(fn)
	return nil
}

// returnSlotValue adapts Function.ReturnSlot()'s *MemVariable (nil for a
// void function) to the Value Exit.ReturnSlot expects, keeping the nil
// interface distinct from a non-nil *MemVariable wrapped in an interface.
func returnSlotValue(fn *ir.Function) ir.Value {
	slot := fn.ReturnSlot()
	if slot == nil {
		return nil
	}
	return slot
}

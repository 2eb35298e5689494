package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
)

// arrayInfo reports the full dimension vector and element type an
// ArrayRef's base must use for address arithmetic, per spec.md §4.3's
// array-access step 1: a local/global array's own dims, or — for an
// array-decayed parameter — the originalArrayType side-channel, whose
// leading dimension may be the unknown bound (0).
func arrayInfo(v ir.Value) (dims []int, elem types.Type, ok bool) {
	switch vv := v.(type) {
	case *ir.LocalVariable:
		if arr, isArr := vv.Typ.(types.Array); isArr {
			return arr.Dims, arr.Elem, true
		}
		if vv.OriginalArrayType != nil {
			return vv.OriginalArrayType.Dims, vv.OriginalArrayType.Elem, true
		}
	case *ir.GlobalVariable:
		if arr, isArr := vv.Elem.(types.Array); isArr {
			return arr.Dims, arr.Elem, true
		}
	case *ir.FormalParam:
		if vv.OriginalArrayType != nil {
			return vv.OriginalArrayType.Dims, vv.OriginalArrayType.Elem, true
		}
	}
	return nil, nil, false
}

// translateArrayAddress implements spec.md §4.3's array-access steps
// 1–4, returning the Pointer(elem) Value addressing a[i1]…[ik].
func (t *translator) translateArrayAddress(ref ast.ArrayRef) (ir.Value, error) {
	name, ok := ref.Array.(ast.LeafVarId)
	if !ok {
		return nil, &ir.SemanticError{Line: ref.Pos(), Message: "array access requires a named array or array-parameter"}
	}
	base, ok := t.m.FindVar(name.Name)
	if !ok {
		return nil, &ir.SemanticError{Line: name.Line, Message: fmt.Sprintf("undefined variable %q", name.Name)}
	}
	dims, elem, ok := arrayInfo(base)
	if !ok {
		return nil, &ir.SemanticError{Line: ref.Pos(), Message: fmt.Sprintf("%q is not an array", name.Name)}
	}
	if len(ref.Indices) != len(dims) {
		return nil, &ir.SemanticError{Line: ref.Pos(), Message: fmt.Sprintf("%q has %d dimension(s), indexed with %d", name.Name, len(dims), len(ref.Indices))}
	}

	indices := make([]ir.Value, len(ref.Indices))
	for i, ie := range ref.Indices {
		v, err := t.translateRValue(ie)
		if err != nil {
			return nil, err
		}
		if !types.IsScalar(v.Type()) {
			return nil, &ir.TypeError{Line: ie.Pos(), Message: "array index must be scalar"}
		}
		indices[i] = v
	}

	offset := indices[0]
	for i := 1; i < len(dims); i++ {
		mulI := &ir.Arith{Op: ir.OpMul, Lhs: offset, Rhs: t.m.ConstInt(int32(dims[i])), Typ: types.Int32{}}
		t.emit(mulI)
		addI := &ir.Arith{Op: ir.OpAdd, Lhs: mulI, Rhs: indices[i], Typ: types.Int32{}}
		t.emit(addI)
		offset = addI
	}

	byteOff := &ir.Arith{Op: ir.OpMul, Lhs: offset, Rhs: t.m.ConstInt(int32(elem.ByteSize())), Typ: types.Int32{}}
	t.emit(byteOff)

	addr := &ir.Arith{Op: ir.OpAdd, Lhs: base, Rhs: byteOff, Typ: types.Pointer{Elem: elem}}
	t.emit(addr)
	return addr, nil
}

// translateArrayRefRValue loads the element at a[i1]…[ik].
func (t *translator) translateArrayRefRValue(ref ast.ArrayRef) (ir.Value, error) {
	addr, err := t.translateArrayAddress(ref)
	if err != nil {
		return nil, err
	}
	elemTy := addr.Type().(types.Pointer).Elem
	loaded := t.fn().NewMemVariable(elemTy)
	t.emit(&ir.Move{Dst: loaded, Src: addr})
	return loaded, nil
}

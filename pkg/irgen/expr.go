package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
)

type translator struct {
	m *ir.Module
}

func (t *translator) fn() *ir.Function { return t.m.CurrentFunction() }

func (t *translator) emit(instr ir.Instr) { t.fn().AppendInstruction(instr) }

// translateRValue evaluates e for its value. Arithmetic and comparison
// operands are evaluated left-to-right per spec.md §4.3; comparisons
// produce an Int1 Value directly. Logical operators have no natural
// value form, so they are materialized through emitBranchForCondition
// into a synthesized Int1 temp (see materializeBool).
func (t *translator) translateRValue(e ast.Expr) (ir.Value, error) {
	switch n := e.(type) {
	case ast.LeafLiteralUInt:
		return t.m.ConstInt(int32(n.Value)), nil

	case ast.LeafVarId:
		v, ok := t.m.FindVar(n.Name)
		if !ok {
			return nil, &ir.SemanticError{Line: n.Line, Message: fmt.Sprintf("undefined variable %q", n.Name)}
		}
		if isAddressedValue(v) {
			if _, isArr := arrayElemType(v); isArr {
				// bare array name used as a value decays to its address
				return v, nil
			}
			loaded := t.fn().NewMemVariable(scalarElemType(v))
			t.emit(&ir.Move{Dst: loaded, Src: v})
			return loaded, nil
		}
		return v, nil

	case ast.Neg:
		v, err := t.translateRValue(n.Operand)
		if err != nil {
			return nil, err
		}
		zero := t.m.ConstInt(0)
		sub := &ir.Arith{Op: ir.OpSub, Lhs: zero, Rhs: v, Typ: types.Int32{}}
		t.emit(sub)
		return sub, nil

	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		return t.translateArith(n)

	case ast.LT, ast.LE, ast.GT, ast.GE, ast.EQ, ast.NE:
		return t.translateCompare(n)

	case ast.LogicalAnd, ast.LogicalOr, ast.LogicalNot:
		return t.materializeBool(n)

	case ast.ArrayRef:
		return t.translateArrayRefRValue(n)

	case ast.FuncCall:
		return t.translateCall(n)

	case ast.Assign:
		// An assignment used as a sub-expression evaluates to the
		// assigned value, C-style.
		return t.translateAssign(n)

	default:
		return nil, &ir.InternalError{Line: e.Pos(), Message: fmt.Sprintf("unhandled rvalue expression %T", e)}
	}
}

func (t *translator) translateArith(e ast.Expr) (ir.Value, error) {
	var op ir.ArithOp
	var left, right ast.Expr
	switch n := e.(type) {
	case ast.Add:
		op, left, right = ir.OpAdd, n.Left, n.Right
	case ast.Sub:
		op, left, right = ir.OpSub, n.Left, n.Right
	case ast.Mul:
		op, left, right = ir.OpMul, n.Left, n.Right
	case ast.Div:
		op, left, right = ir.OpDiv, n.Left, n.Right
	case ast.Mod:
		op, left, right = ir.OpMod, n.Left, n.Right
	}
	l, err := t.translateRValue(left)
	if err != nil {
		return nil, err
	}
	if !types.IsScalar(l.Type()) {
		return nil, &ir.TypeError{Line: e.Pos(), Message: "left operand of arithmetic must be scalar"}
	}
	r, err := t.translateRValue(right)
	if err != nil {
		return nil, err
	}
	if !types.IsScalar(r.Type()) {
		return nil, &ir.TypeError{Line: e.Pos(), Message: "right operand of arithmetic must be scalar"}
	}
	ins := &ir.Arith{Op: op, Lhs: l, Rhs: r, Typ: types.Int32{}}
	t.emit(ins)
	return ins, nil
}

func cmpOpOf(e ast.Expr) (ir.CmpOp, ast.Expr, ast.Expr) {
	switch n := e.(type) {
	case ast.LT:
		return ir.CmpLt, n.Left, n.Right
	case ast.LE:
		return ir.CmpLe, n.Left, n.Right
	case ast.GT:
		return ir.CmpGt, n.Left, n.Right
	case ast.GE:
		return ir.CmpGe, n.Left, n.Right
	case ast.EQ:
		return ir.CmpEq, n.Left, n.Right
	case ast.NE:
		return ir.CmpNe, n.Left, n.Right
	}
	panic("cmpOpOf: not a comparison node")
}

func (t *translator) translateCompare(e ast.Expr) (ir.Value, error) {
	op, left, right := cmpOpOf(e)
	l, err := t.translateRValue(left)
	if err != nil {
		return nil, err
	}
	if isPointerType(l.Type()) {
		return nil, &ir.TypeError{Line: e.Pos(), Message: "cannot compare a pointer with a relational operator"}
	}
	r, err := t.translateRValue(right)
	if err != nil {
		return nil, err
	}
	if isPointerType(r.Type()) {
		return nil, &ir.TypeError{Line: e.Pos(), Message: "cannot compare a pointer with a relational operator"}
	}
	ins := &ir.Cmp{Op: op, Lhs: l, Rhs: r}
	t.emit(ins)
	return ins, nil
}

// materializeBool gives a logical expression (&&, ||, !) a usable Int1
// rvalue by threading it through emitBranchForCondition into a two-arm
// assignment, since logical operators are naturally branch-shaped rather
// than value-producing.
func (t *translator) materializeBool(cond ast.Expr) (ir.Value, error) {
	fn := t.fn()
	trueL, falseL := fn.NewLabel(), fn.NewLabel()
	if err := t.emitBranchForCondition(cond, trueL, falseL); err != nil {
		return nil, err
	}
	mergeL := fn.NewLabel()
	result := fn.NewMemVariable(types.Int1{})

	t.emit(&ir.LabelDef{L: trueL})
	t.emit(&ir.Move{Dst: result, Src: t.m.ConstBool(true)})
	t.emit(&ir.Goto{Target: mergeL})

	t.emit(&ir.LabelDef{L: falseL})
	t.emit(&ir.Move{Dst: result, Src: t.m.ConstBool(false)})

	t.emit(&ir.LabelDef{L: mergeL})
	return result, nil
}

func (t *translator) translateCall(n ast.FuncCall) (ir.Value, error) {
	callee, ok := t.m.FindFunction(n.Name)
	if !ok {
		return nil, &ir.SemanticError{Line: n.Line, Message: fmt.Sprintf("call to undefined function %q", n.Name)}
	}
	var argExprs []ast.Expr
	if n.Args != nil {
		argExprs = n.Args.Args
	}
	if len(argExprs) != len(callee.Sig.Params) {
		return nil, &ir.SemanticError{Line: n.Line, Message: fmt.Sprintf("%q expects %d argument(s), got %d", n.Name, len(callee.Sig.Params), len(argExprs))}
	}
	args := make([]ir.Value, len(argExprs))
	for i, ae := range argExprs {
		v, err := t.translateRValue(ae)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	call := &ir.Call{Callee: callee.Name, Sig: callee.Sig, Args: args, CalleeParams: callee.Params}
	t.emit(call)
	return call, nil
}

func (t *translator) translateAssign(n ast.Assign) (ir.Value, error) {
	rhs, err := t.translateRValue(n.RHS)
	if err != nil {
		return nil, err
	}
	dst, err := t.translateLValue(n.LHS)
	if err != nil {
		return nil, err
	}
	if err := checkAssignable(n.Pos(), dst, rhs); err != nil {
		return nil, err
	}
	t.emit(&ir.Move{Dst: dst, Src: rhs})
	return rhs, nil
}

func checkAssignable(line int, dst, src ir.Value) error {
	dstElem := dst.Type()
	if p, ok := dstElem.(types.Pointer); ok {
		dstElem = p.Elem
	}
	if !types.IsScalar(dstElem) || !types.IsScalar(src.Type()) {
		return &ir.TypeError{Line: line, Message: "assignment requires scalar operands"}
	}
	return nil
}

func isPointerType(t types.Type) bool {
	_, ok := t.(types.Pointer)
	return ok
}

// isAddressedValue reports whether v must be accessed through a load
// rather than used as a register value directly: globals and
// non-parameter local arrays are always memory-resident.
func isAddressedValue(v ir.Value) bool {
	switch vv := v.(type) {
	case *ir.GlobalVariable:
		return true
	case *ir.LocalVariable:
		_, isArr := vv.Typ.(types.Array)
		return isArr
	}
	return false
}

func arrayElemType(v ir.Value) (types.Type, bool) {
	switch vv := v.(type) {
	case *ir.GlobalVariable:
		if arr, ok := vv.Elem.(types.Array); ok {
			return arr.Elem, true
		}
	case *ir.LocalVariable:
		if arr, ok := vv.Typ.(types.Array); ok {
			return arr.Elem, true
		}
	}
	return nil, false
}

func scalarElemType(v ir.Value) types.Type {
	if gv, ok := v.(*ir.GlobalVariable); ok {
		return gv.Elem
	}
	return v.Type()
}

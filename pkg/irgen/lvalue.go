package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
)

// translateLValue resolves e to the Value an assignment should write
// through. This replaces the original's AST-parent-pointer lvalue
// detection (spec.md Design Notes §9) with an explicit two-mode
// translation: the assignment node calls this for its LHS and
// translateRValue for its RHS, so ArrayRef never needs to inspect its
// parent to know which mode it is in.
//
// For a plain scalar variable the lvalue Value is the variable itself —
// Move's printer/selector already distinguishes a register-resident
// scalar (ordinary copy) from a memory-resident one (store through
// pointer) purely from its type, so no separate "lvalue form" is needed
// here. For an array element it is the address computed by
// translateArrayAddress.
func (t *translator) translateLValue(e ast.Expr) (ir.Value, error) {
	switch n := e.(type) {
	case ast.LeafVarId:
		v, ok := t.m.FindVar(n.Name)
		if !ok {
			return nil, &ir.SemanticError{Line: n.Line, Message: fmt.Sprintf("undefined variable %q", n.Name)}
		}
		if _, isArr := arrayElemType(v); isArr {
			return nil, &ir.SemanticError{Line: n.Line, Message: fmt.Sprintf("%q is an array and cannot be assigned as a whole", n.Name)}
		}
		return v, nil
	case ast.ArrayRef:
		return t.translateArrayAddress(n)
	default:
		return nil, &ir.SemanticError{Line: e.Pos(), Message: fmt.Sprintf("%T is not assignable", e)}
	}
}

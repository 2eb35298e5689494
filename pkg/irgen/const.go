// Package irgen implements the AST→IR translator (C3): the pipeline
// stage that walks a pkg/ast tree and emits a pkg/ir Module.
package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
)

// evalConstExpr evaluates e as a compile-time integer constant, the form
// required for array dimensions and global-variable initializers. Only
// literals and arithmetic over other constant expressions are accepted;
// anything else is a SemanticError.
func evalConstExpr(e ast.Expr) (int32, error) {
	switch n := e.(type) {
	case ast.LeafLiteralUInt:
		return int32(n.Value), nil
	case ast.Neg:
		v, err := evalConstExpr(n.Operand)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case ast.Add:
		return evalConstBinary(n.Left, n.Right, func(a, b int32) int32 { return a + b })
	case ast.Sub:
		return evalConstBinary(n.Left, n.Right, func(a, b int32) int32 { return a - b })
	case ast.Mul:
		return evalConstBinary(n.Left, n.Right, func(a, b int32) int32 { return a * b })
	case ast.Div:
		return evalConstBinary(n.Left, n.Right, func(a, b int32) int32 { return a / b })
	case ast.Mod:
		return evalConstBinary(n.Left, n.Right, func(a, b int32) int32 { return a % b })
	default:
		return 0, &ir.SemanticError{Line: e.Pos(), Message: fmt.Sprintf("expected a compile-time integer constant, got %T", e)}
	}
}

func evalConstBinary(left, right ast.Expr, op func(a, b int32) int32) (int32, error) {
	l, err := evalConstExpr(left)
	if err != nil {
		return 0, err
	}
	r, err := evalConstExpr(right)
	if err != nil {
		return 0, err
	}
	return op(l, r), nil
}

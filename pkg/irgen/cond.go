package irgen

import (
	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
)

// emitBranchForCondition is the inherited-attribute short-circuit lowering
// scheme from spec.md §4.3: a condition is translated directly into a
// jump to trueL or falseL rather than into a boolean Value, so that for
// `a && b` / `a || b` the right operand's side effects are only emitted
// on the path where they are reachable (testable property 3).
func (t *translator) emitBranchForCondition(cond ast.Expr, trueL, falseL ir.Label) error {
	switch n := cond.(type) {
	case ast.LT, ast.LE, ast.GT, ast.GE, ast.EQ, ast.NE:
		v, err := t.translateCompare(n)
		if err != nil {
			return err
		}
		t.emit(&ir.Branch{Cond: v, TrueL: trueL, FalseL: falseL})
		return nil

	case ast.LogicalNot:
		return t.emitBranchForCondition(n.Operand, falseL, trueL)

	case ast.LogicalAnd:
		mid := t.fn().NewLabel()
		if err := t.emitBranchForCondition(n.Left, mid, falseL); err != nil {
			return err
		}
		t.emit(&ir.LabelDef{L: mid})
		return t.emitBranchForCondition(n.Right, trueL, falseL)

	case ast.LogicalOr:
		mid := t.fn().NewLabel()
		if err := t.emitBranchForCondition(n.Left, trueL, mid); err != nil {
			return err
		}
		t.emit(&ir.LabelDef{L: mid})
		return t.emitBranchForCondition(n.Right, trueL, falseL)

	default:
		v, err := t.translateRValue(cond)
		if err != nil {
			return err
		}
		switch v.Type().(type) {
		case types.Int1:
			t.emit(&ir.Branch{Cond: v, TrueL: trueL, FalseL: falseL})
			return nil
		case types.Int32:
			cmp := &ir.Cmp{Op: ir.CmpNe, Lhs: v, Rhs: t.m.ConstInt(0)}
			t.emit(cmp)
			t.emit(&ir.Branch{Cond: cmp, TrueL: trueL, FalseL: falseL})
			return nil
		default:
			return &ir.SemanticError{Line: cond.Pos(), Message: "condition must be a scalar expression"}
		}
	}
}

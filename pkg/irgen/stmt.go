package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
)

// translateBlock opens a new scope, translates each statement in order,
// and closes the scope again. Used for every nested block (if/else arms,
// loop bodies, explicit braces) — these sit one scope level deeper than
// their enclosing function or block, per the level n+1 rule.
func (t *translator) translateBlock(b *ast.Block) error {
	t.m.EnterScope()
	defer t.m.LeaveScope()
	return t.translateStmtList(b.Stmts)
}

// translateFuncBody translates a function's outermost block without
// opening an additional scope: its statements share the function's own
// scope (level 1) with the materialized formal parameters, per spec.md
// §4.2's scope-level rule (function = level 1, nested blocks = level n+1).
func (t *translator) translateFuncBody(b *ast.Block) error {
	return t.translateStmtList(b.Stmts)
}

func (t *translator) translateStmtList(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := t.translateStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (t *translator) translateStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Block:
		return t.translateBlock(n)

	case ast.DeclStmt:
		for _, d := range n.Decls {
			if err := t.translateLocalDecl(d); err != nil {
				return err
			}
		}
		return nil

	case ast.Assign:
		_, err := t.translateAssign(n)
		return err

	case ast.FuncCall:
		_, err := t.translateCall(n)
		return err

	case ast.Return:
		return t.translateReturn(n)

	case ast.If:
		return t.translateIf(n)

	case ast.While:
		return t.translateWhile(n)

	case ast.Break:
		_, breakL, ok := t.fn().CurrentLoop()
		if !ok {
			return &ir.SemanticError{Line: n.Line, Message: "break not inside a loop"}
		}
		t.emit(&ir.Goto{Target: breakL})
		return nil

	case ast.Continue:
		continueL, _, ok := t.fn().CurrentLoop()
		if !ok {
			return &ir.SemanticError{Line: n.Line, Message: "continue not inside a loop"}
		}
		t.emit(&ir.Goto{Target: continueL})
		return nil

	default:
		return &ir.InternalError{Line: s.Pos(), Message: fmt.Sprintf("unhandled statement %T", s)}
	}
}

// translateReturn evaluates the return value if present, moves it into
// the function's return slot, and always jumps to the single exit
// label — every function has exactly one Exit instruction (testable
// property: single return slot).
func (t *translator) translateReturn(n ast.Return) error {
	fn := t.fn()
	if n.Value != nil {
		v, err := t.translateRValue(n.Value)
		if err != nil {
			return err
		}
		slot := fn.ReturnSlot()
		if slot == nil {
			return &ir.SemanticError{Line: n.Line, Message: "void function cannot return a value"}
		}
		t.emit(&ir.Move{Dst: slot, Src: v})
	} else if fn.ReturnSlot() != nil {
		return &ir.SemanticError{Line: n.Line, Message: "non-void function must return a value"}
	}
	t.emit(&ir.Goto{Target: fn.ExitLabel()})
	return nil
}

// translateIf follows spec.md §4.3's exact label scheme: condition
// branches to T/F, F collapses onto the merge label End when there is
// no else branch.
func (t *translator) translateIf(n ast.If) error {
	fn := t.fn()
	trueL := fn.NewLabel()
	endL := fn.NewLabel()
	falseL := endL
	if n.Else != nil {
		falseL = fn.NewLabel()
	}

	if err := t.emitBranchForCondition(n.Cond, trueL, falseL); err != nil {
		return err
	}

	t.emit(&ir.LabelDef{L: trueL})
	if err := t.translateBlock(n.Then); err != nil {
		return err
	}
	t.emit(&ir.Goto{Target: endL})

	if n.Else != nil {
		t.emit(&ir.LabelDef{L: falseL})
		if err := t.translateBlock(n.Else); err != nil {
			return err
		}
		t.emit(&ir.Goto{Target: endL})
	}

	t.emit(&ir.LabelDef{L: endL})
	return nil
}

// translateWhile wires the condition/body/exit labels and pushes a
// loop frame so break/continue inside the body can resolve their
// target without threading it through every nested translateStmt call.
func (t *translator) translateWhile(n ast.While) error {
	fn := t.fn()
	condL := fn.NewLabel()
	bodyL := fn.NewLabel()
	exitL := fn.NewLabel()

	t.emit(&ir.LabelDef{L: condL})
	if err := t.emitBranchForCondition(n.Cond, bodyL, exitL); err != nil {
		return err
	}

	t.emit(&ir.LabelDef{L: bodyL})
	fn.PushLoop(condL, exitL)
	err := t.translateBlock(n.Body)
	fn.PopLoop()
	if err != nil {
		return err
	}
	t.emit(&ir.Goto{Target: condL})

	t.emit(&ir.LabelDef{L: exitL})
	return nil
}

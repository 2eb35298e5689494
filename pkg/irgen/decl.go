package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
)

// translateLocalDecl handles one declarator of a local DeclStmt:
// plain creation (VarDecl), creation plus Move(newVar, init) (VarInit),
// or non-parameter array storage allocation (ArrayDecl). Redefinition in
// the current scope is a SemanticError.
func (t *translator) translateLocalDecl(d ast.Decl) error {
	switch dd := d.(type) {
	case ast.VarDecl:
		typ, err := resolveLeafType(dd.Type)
		if err != nil {
			return err
		}
		local := t.fn().NewLocalVar(dd.Name, typ, t.m.ScopeLevel())
		if !t.m.DefineVar(dd.Name, local) {
			return &ir.SemanticError{Line: dd.Line, Message: fmt.Sprintf("%q already declared in this scope", dd.Name)}
		}
		return nil

	case ast.VarInit:
		typ, err := resolveLeafType(dd.Type)
		if err != nil {
			return err
		}
		val, err := t.translateRValue(dd.Init)
		if err != nil {
			return err
		}
		if !types.IsScalar(val.Type()) {
			return &ir.TypeError{Line: dd.Line, Message: "variable initializer must be scalar"}
		}
		local := t.fn().NewLocalVar(dd.Name, typ, t.m.ScopeLevel())
		if !t.m.DefineVar(dd.Name, local) {
			return &ir.SemanticError{Line: dd.Line, Message: fmt.Sprintf("%q already declared in this scope", dd.Name)}
		}
		t.emit(&ir.Move{Dst: local, Src: val})
		return nil

	case ast.ArrayDecl:
		elemTy, err := resolveLeafType(dd.Type)
		if err != nil {
			return err
		}
		dims, err := resolveDims(dd.Dims, false)
		if err != nil {
			return err
		}
		local := t.fn().NewLocalVar(dd.Name, types.Array{Elem: elemTy, Dims: dims}, t.m.ScopeLevel())
		if !t.m.DefineVar(dd.Name, local) {
			return &ir.SemanticError{Line: dd.Line, Message: fmt.Sprintf("%q already declared in this scope", dd.Name)}
		}
		return nil

	default:
		return &ir.InternalError{Line: d.Pos(), Message: fmt.Sprintf("unhandled local Decl variant %T", d)}
	}
}

// translateGlobalDecl handles one top-level declarator (no current
// function: the Value is Module-owned, not Function-owned).
func (t *translator) translateGlobalDecl(d ast.Decl) error {
	switch dd := d.(type) {
	case ast.VarDecl:
		typ, err := resolveLeafType(dd.Type)
		if err != nil {
			return err
		}
		if _, ok := t.m.NewGlobal(dd.Name, typ, nil); !ok {
			return &ir.SemanticError{Line: dd.Line, Message: fmt.Sprintf("global %q already defined", dd.Name)}
		}
		return nil

	case ast.VarInit:
		typ, err := resolveLeafType(dd.Type)
		if err != nil {
			return err
		}
		val, err := evalConstExpr(dd.Init)
		if err != nil {
			return err
		}
		if _, ok := t.m.NewGlobal(dd.Name, typ, &val); !ok {
			return &ir.SemanticError{Line: dd.Line, Message: fmt.Sprintf("global %q already defined", dd.Name)}
		}
		return nil

	case ast.ArrayDecl:
		elemTy, err := resolveLeafType(dd.Type)
		if err != nil {
			return err
		}
		dims, err := resolveDims(dd.Dims, false)
		if err != nil {
			return err
		}
		if _, ok := t.m.NewGlobal(dd.Name, types.Array{Elem: elemTy, Dims: dims}, nil); !ok {
			return &ir.SemanticError{Line: dd.Line, Message: fmt.Sprintf("global %q already defined", dd.Name)}
		}
		return nil

	default:
		return &ir.InternalError{Line: d.Pos(), Message: fmt.Sprintf("unhandled global Decl variant %T", d)}
	}
}

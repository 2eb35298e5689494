package irgen

import (
	"fmt"

	"github.com/angine04/compiler-labs/pkg/ast"
	"github.com/angine04/compiler-labs/pkg/ir"
	"github.com/angine04/compiler-labs/pkg/types"
)

func resolveLeafType(lt *ast.LeafType) (types.Type, error) {
	switch lt.Name {
	case "int":
		return types.Int32{}, nil
	case "void":
		return types.Void{}, nil
	default:
		return nil, &ir.SemanticError{Line: lt.Pos(), Message: fmt.Sprintf("unknown type %q", lt.Name)}
	}
}

// resolveDims evaluates a declarator's dimension list. emptyAllowed
// permits the first entry to be an EmptyDim, recorded as
// dimension 0 — the array-parameter decay form; any EmptyDim elsewhere,
// or any EmptyDim at all when emptyAllowed is false, is a SemanticError.
func resolveDims(dims []ast.Dim, emptyAllowed bool) ([]int, error) {
	out := make([]int, len(dims))
	for i, d := range dims {
		switch dd := d.(type) {
		case ast.EmptyDim:
			if !emptyAllowed || i != 0 {
				return nil, &ir.SemanticError{Line: d.Pos(), Message: "array dimension required but absent"}
			}
			out[i] = 0
		case ast.ArrayDim:
			v, err := evalConstExpr(dd.Size)
			if err != nil {
				return nil, err
			}
			if v <= 0 {
				return nil, &ir.SemanticError{Line: d.Pos(), Message: "array dimension must be a positive constant"}
			}
			out[i] = int(v)
		default:
			return nil, &ir.InternalError{Line: d.Pos(), Message: fmt.Sprintf("unhandled Dim variant %T", d)}
		}
	}
	return out, nil
}

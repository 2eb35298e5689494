package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeCompileUnit parses a JSON-encoded AST produced by an external
// MiniC frontend into a *CompileUnit. The wire format is a tree of
// objects, each tagged with a "kind" field naming one of this package's
// node types (e.g. "Add", "VarDecl", "If") plus a "line" field and the
// node's own fields under their lowerCamel names; a node's Node-typed
// children are nested objects of the same shape, recursively.
//
// encoding/json alone cannot target this package's Node/Expr/Stmt/...
// interface fields (it has no way to pick a concrete type), so this file
// implements the dispatch by hand: no third-party library in the example
// pack offers a ready-made polymorphic-JSON-to-interface decoder, and the
// schema is closed and small enough that a manual kind-tagged switch is
// the plainer solution anyway.
func DecodeCompileUnit(data []byte) (*CompileUnit, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: invalid JSON: %w", err)
	}
	kind, obj, line, err := decodeHeader(raw)
	if err != nil {
		return nil, err
	}
	if kind != "CompileUnit" {
		return nil, fmt.Errorf("ast: root node kind is %q, want \"CompileUnit\"", kind)
	}
	items, err := decodeList[TopLevel](obj["items"])
	if err != nil {
		return nil, fmt.Errorf("ast: CompileUnit.items: %w", err)
	}
	return &CompileUnit{Base: Base{Line: line}, Items: items}, nil
}

type rawObj map[string]json.RawMessage

// decodeHeader unmarshals raw as a JSON object and pulls out its "kind"
// discriminator and "line" position, returning the full field map for the
// caller to pull its own fields from.
func decodeHeader(raw json.RawMessage) (kind string, obj rawObj, line int, err error) {
	if err = json.Unmarshal(raw, &obj); err != nil {
		return "", nil, 0, fmt.Errorf("ast: expected a JSON object: %w", err)
	}
	if kindRaw, ok := obj["kind"]; ok {
		if err = json.Unmarshal(kindRaw, &kind); err != nil {
			return "", nil, 0, fmt.Errorf(`ast: "kind" field: %w`, err)
		}
	}
	if lineRaw, ok := obj["line"]; ok {
		if err = json.Unmarshal(lineRaw, &line); err != nil {
			return "", nil, 0, fmt.Errorf(`ast: "line" field: %w`, err)
		}
	}
	return kind, obj, line, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// decodeList decodes a JSON array of tagged nodes into []T, asserting
// each element implements T (one of Node's sub-interfaces).
func decodeList[T Node](raw json.RawMessage) ([]T, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}
	out := make([]T, len(elems))
	for i, e := range elems {
		n, err := decodeNode(e)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		t, ok := n.(T)
		if !ok {
			return nil, fmt.Errorf("index %d: node %T does not implement %T", i, n, *new(T))
		}
		out[i] = t
	}
	return out, nil
}

// decodeOpt decodes a single, possibly-absent tagged node into T (the
// zero value of T, typically nil, when raw is absent or JSON null).
func decodeOpt[T Node](raw json.RawMessage) (T, error) {
	var zero T
	if isAbsent(raw) {
		return zero, nil
	}
	n, err := decodeNode(raw)
	if err != nil {
		return zero, err
	}
	t, ok := n.(T)
	if !ok {
		return zero, fmt.Errorf("node %T does not implement %T", n, zero)
	}
	return t, nil
}

// decodeNode dispatches on raw's "kind" field to build the one concrete
// type it names. Nodes that satisfy Expr/Stmt/TopLevel/Decl/Dim by value
// (mirroring how pkg/irgen's own type switches consume them, e.g.
// ast.Add{}, ast.VarDecl{}) are returned as values; Block is the one
// interface-satisfying kind consumed as a pointer (see pkg/irgen/stmt.go's
// "case *ast.Block").
func decodeNode(raw json.RawMessage) (Node, error) {
	kind, obj, line, err := decodeHeader(raw)
	if err != nil {
		return nil, err
	}
	base := Base{Line: line}

	switch kind {
	case "FuncDef":
		rt, err := decodeLeafType(obj["returnType"])
		if err != nil {
			return nil, fmt.Errorf("FuncDef.returnType: %w", err)
		}
		name, err := decodeStringField(obj, "name")
		if err != nil {
			return nil, err
		}
		params, err := decodeFuncFormalParams(obj["params"])
		if err != nil {
			return nil, fmt.Errorf("FuncDef.params: %w", err)
		}
		body, err := decodeBlock(obj["body"])
		if err != nil {
			return nil, fmt.Errorf("FuncDef.body: %w", err)
		}
		return FuncDef{Base: base, ReturnType: rt, Name: name, Params: params, Body: body}, nil

	case "VarDecl":
		typ, err := decodeLeafType(obj["type"])
		if err != nil {
			return nil, fmt.Errorf("VarDecl.type: %w", err)
		}
		name, err := decodeStringField(obj, "name")
		if err != nil {
			return nil, err
		}
		return VarDecl{Base: base, Type: typ, Name: name}, nil

	case "VarInit":
		typ, err := decodeLeafType(obj["type"])
		if err != nil {
			return nil, fmt.Errorf("VarInit.type: %w", err)
		}
		name, err := decodeStringField(obj, "name")
		if err != nil {
			return nil, err
		}
		init, err := decodeOpt[Expr](obj["init"])
		if err != nil {
			return nil, fmt.Errorf("VarInit.init: %w", err)
		}
		return VarInit{Base: base, Type: typ, Name: name, Init: init}, nil

	case "ArrayDecl":
		typ, err := decodeLeafType(obj["type"])
		if err != nil {
			return nil, fmt.Errorf("ArrayDecl.type: %w", err)
		}
		name, err := decodeStringField(obj, "name")
		if err != nil {
			return nil, err
		}
		dims, err := decodeList[Dim](obj["dims"])
		if err != nil {
			return nil, fmt.Errorf("ArrayDecl.dims: %w", err)
		}
		return ArrayDecl{Base: base, Type: typ, Name: name, Dims: dims}, nil

	case "ArrayDim":
		size, err := decodeNode(obj["size"])
		if err != nil {
			return nil, fmt.Errorf("ArrayDim.size: %w", err)
		}
		sizeExpr, ok := size.(Expr)
		if !ok {
			return nil, fmt.Errorf("ArrayDim.size: node %T is not an Expr", size)
		}
		return ArrayDim{Base: base, Size: sizeExpr}, nil

	case "EmptyDim":
		return EmptyDim{Base: base}, nil

	case "Block":
		// Most callers reach a Block through decodeBlock directly (it is a
		// required/optional pointer field everywhere else); this case only
		// fires when a Block is nested as a bare Stmt, which ast.Block's
		// implStmt() permits.
		stmts, err := decodeList[Stmt](obj["stmts"])
		if err != nil {
			return nil, fmt.Errorf("Block.stmts: %w", err)
		}
		return &Block{Base: base, Stmts: stmts}, nil

	case "DeclStmt":
		decls, err := decodeList[Decl](obj["decls"])
		if err != nil {
			return nil, fmt.Errorf("DeclStmt.decls: %w", err)
		}
		return DeclStmt{Base: base, Decls: decls}, nil

	case "ArrayRef":
		arr, err := decodeOpt[Expr](obj["array"])
		if err != nil {
			return nil, fmt.Errorf("ArrayRef.array: %w", err)
		}
		indices, err := decodeList[Expr](obj["indices"])
		if err != nil {
			return nil, fmt.Errorf("ArrayRef.indices: %w", err)
		}
		return ArrayRef{Base: base, Array: arr, Indices: indices}, nil

	case "Assign":
		lhs, err := decodeOpt[Expr](obj["lhs"])
		if err != nil {
			return nil, fmt.Errorf("Assign.lhs: %w", err)
		}
		rhs, err := decodeOpt[Expr](obj["rhs"])
		if err != nil {
			return nil, fmt.Errorf("Assign.rhs: %w", err)
		}
		return Assign{Base: base, LHS: lhs, RHS: rhs}, nil

	case "Return":
		val, err := decodeOpt[Expr](obj["value"])
		if err != nil {
			return nil, fmt.Errorf("Return.value: %w", err)
		}
		return Return{Base: base, Value: val}, nil

	case "FuncCall":
		name, err := decodeStringField(obj, "name")
		if err != nil {
			return nil, err
		}
		args, err := decodeFuncRealParams(obj["args"])
		if err != nil {
			return nil, fmt.Errorf("FuncCall.args: %w", err)
		}
		return FuncCall{Base: base, Name: name, Args: args}, nil

	case "If":
		cond, err := decodeOpt[Expr](obj["cond"])
		if err != nil {
			return nil, fmt.Errorf("If.cond: %w", err)
		}
		then, err := decodeBlock(obj["then"])
		if err != nil {
			return nil, fmt.Errorf("If.then: %w", err)
		}
		els, err := decodeOptBlock(obj["else"])
		if err != nil {
			return nil, fmt.Errorf("If.else: %w", err)
		}
		return If{Base: base, Cond: cond, Then: then, Else: els}, nil

	case "While":
		cond, err := decodeOpt[Expr](obj["cond"])
		if err != nil {
			return nil, fmt.Errorf("While.cond: %w", err)
		}
		body, err := decodeBlock(obj["body"])
		if err != nil {
			return nil, fmt.Errorf("While.body: %w", err)
		}
		return While{Base: base, Cond: cond, Body: body}, nil

	case "Break":
		return Break{Base: base}, nil
	case "Continue":
		return Continue{Base: base}, nil

	case "Add", "Sub", "Mul", "Div", "Mod", "LT", "LE", "GT", "GE", "EQ", "NE", "LogicalAnd", "LogicalOr":
		left, err := decodeOpt[Expr](obj["left"])
		if err != nil {
			return nil, fmt.Errorf("%s.left: %w", kind, err)
		}
		right, err := decodeOpt[Expr](obj["right"])
		if err != nil {
			return nil, fmt.Errorf("%s.right: %w", kind, err)
		}
		return binaryExprOf(kind, base, left, right), nil

	case "Neg", "LogicalNot":
		operand, err := decodeOpt[Expr](obj["operand"])
		if err != nil {
			return nil, fmt.Errorf("%s.operand: %w", kind, err)
		}
		if kind == "Neg" {
			return Neg{Base: base, Operand: operand}, nil
		}
		return LogicalNot{Base: base, Operand: operand}, nil

	case "LeafLiteralUInt":
		var v uint64
		if raw, ok := obj["value"]; ok {
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("LeafLiteralUInt.value: %w", err)
			}
		}
		return LeafLiteralUInt{Base: base, Value: v}, nil

	case "LeafVarId":
		name, err := decodeStringField(obj, "name")
		if err != nil {
			return nil, err
		}
		return LeafVarId{Base: base, Name: name}, nil

	case "LeafType":
		name, err := decodeStringField(obj, "name")
		if err != nil {
			return nil, err
		}
		return LeafType{Base: base, Name: name}, nil

	case "":
		return nil, fmt.Errorf(`ast: node is missing its "kind" field`)
	default:
		return nil, fmt.Errorf("ast: unknown node kind %q", kind)
	}
}

func binaryExprOf(kind string, base Base, left, right Expr) Expr {
	switch kind {
	case "Add":
		return Add{Base: base, Left: left, Right: right}
	case "Sub":
		return Sub{Base: base, Left: left, Right: right}
	case "Mul":
		return Mul{Base: base, Left: left, Right: right}
	case "Div":
		return Div{Base: base, Left: left, Right: right}
	case "Mod":
		return Mod{Base: base, Left: left, Right: right}
	case "LT":
		return LT{Base: base, Left: left, Right: right}
	case "LE":
		return LE{Base: base, Left: left, Right: right}
	case "GT":
		return GT{Base: base, Left: left, Right: right}
	case "GE":
		return GE{Base: base, Left: left, Right: right}
	case "EQ":
		return EQ{Base: base, Left: left, Right: right}
	case "NE":
		return NE{Base: base, Left: left, Right: right}
	case "LogicalAnd":
		return LogicalAnd{Base: base, Left: left, Right: right}
	default:
		return LogicalOr{Base: base, Left: left, Right: right}
	}
}

func decodeStringField(obj rawObj, key string) (string, error) {
	var s string
	raw, ok := obj[key]
	if !ok {
		return "", nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%q field: %w", key, err)
	}
	return s, nil
}

// decodeLeafType decodes a required *LeafType field (FuncDef.ReturnType,
// VarDecl/VarInit/ArrayDecl/FuncFormalParam.Type).
func decodeLeafType(raw json.RawMessage) (*LeafType, error) {
	if isAbsent(raw) {
		return nil, fmt.Errorf("missing required LeafType node")
	}
	n, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	lt, ok := n.(LeafType)
	if !ok {
		return nil, fmt.Errorf("expected a LeafType node, got %T", n)
	}
	return &lt, nil
}

// decodeBlock decodes a required *Block field.
func decodeBlock(raw json.RawMessage) (*Block, error) {
	if isAbsent(raw) {
		return nil, fmt.Errorf("missing required Block node")
	}
	kind, obj, line, err := decodeHeader(raw)
	if err != nil {
		return nil, err
	}
	if kind != "Block" {
		return nil, fmt.Errorf("expected a Block node, got kind %q", kind)
	}
	stmts, err := decodeList[Stmt](obj["stmts"])
	if err != nil {
		return nil, fmt.Errorf("Block.stmts: %w", err)
	}
	return &Block{Base: Base{Line: line}, Stmts: stmts}, nil
}

// decodeOptBlock decodes an optional *Block field (If.Else), nil when
// absent.
func decodeOptBlock(raw json.RawMessage) (*Block, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	return decodeBlock(raw)
}

// decodeFuncFormalParams decodes FuncDef's *FuncFormalParams field. The
// wire form is a bare object — not kind-tagged, since it never appears in
// an interface-typed slot — holding a "params" array of formal-parameter
// objects.
func decodeFuncFormalParams(raw json.RawMessage) (*FuncFormalParams, error) {
	if isAbsent(raw) {
		return &FuncFormalParams{}, nil
	}
	var obj struct {
		Line   int               `json:"line"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	params := make([]*FuncFormalParam, len(obj.Params))
	for i, p := range obj.Params {
		fp, err := decodeFuncFormalParam(p)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		params[i] = fp
	}
	return &FuncFormalParams{Base: Base{Line: obj.Line}, Params: params}, nil
}

func decodeFuncFormalParam(raw json.RawMessage) (*FuncFormalParam, error) {
	var obj struct {
		Line int               `json:"line"`
		Type json.RawMessage   `json:"type"`
		Name string            `json:"name"`
		Dims []json.RawMessage `json:"dims"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	typ, err := decodeLeafType(obj.Type)
	if err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	dims := make([]Dim, len(obj.Dims))
	for i, d := range obj.Dims {
		n, err := decodeNode(d)
		if err != nil {
			return nil, fmt.Errorf("dims[%d]: %w", i, err)
		}
		dim, ok := n.(Dim)
		if !ok {
			return nil, fmt.Errorf("dims[%d]: node %T is not a Dim", i, n)
		}
		dims[i] = dim
	}
	return &FuncFormalParam{Base: Base{Line: obj.Line}, Type: typ, Name: obj.Name, Dims: dims}, nil
}

// decodeFuncRealParams decodes a call's *FuncRealParams argument list,
// another bare (untagged) container object.
func decodeFuncRealParams(raw json.RawMessage) (*FuncRealParams, error) {
	if isAbsent(raw) {
		return &FuncRealParams{}, nil
	}
	var obj struct {
		Line int             `json:"line"`
		Args json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	args, err := decodeList[Expr](obj.Args)
	if err != nil {
		return nil, fmt.Errorf("args: %w", err)
	}
	return &FuncRealParams{Base: Base{Line: obj.Line}, Args: args}, nil
}

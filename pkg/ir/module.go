package ir

import "github.com/angine04/compiler-labs/pkg/types"

// FormalSpec describes one parameter at DefineFunction time: its source
// name, its formal storage type (already decayed to Pointer(Int32) for an
// array parameter), and — only for a decayed array parameter — the
// original array type whose dimensions address arithmetic needs.
type FormalSpec struct {
	Name              string
	Typ               types.Type
	OriginalArrayType *types.Array
}

type scope struct {
	level int
	vars  map[string]Value
}

// Module is the process-wide container (C2): functions, globals, the
// interned-constant table, and the scope stack shared by translation of
// every function in the unit.
type Module struct {
	functions    map[string]*Function
	funcOrder    []string
	globals      map[string]*GlobalVariable
	globalOrder  []string
	constInts    map[int32]*ConstInt
	trueConst    *ConstInt
	falseConst   *ConstInt

	scopes  []*scope
	current *Function

	Failed bool
	Errors []error
}

// NewModule creates an empty Module with global scope (level 0) pushed
// and the standard I/O builtins declared.
func NewModule() *Module {
	m := &Module{
		functions: make(map[string]*Function),
		globals:   make(map[string]*GlobalVariable),
		constInts: make(map[int32]*ConstInt),
	}
	m.scopes = []*scope{{level: 0, vars: make(map[string]Value)}}
	m.declareBuiltins()
	return m
}

func (m *Module) declareBuiltins() {
	m.DeclareBuiltin("getint", types.Function{Return: types.Int32{}})
	m.DeclareBuiltin("getch", types.Function{Return: types.Int32{}})
	m.DeclareBuiltin("putint", types.Function{Return: types.Void{}, Params: []types.Type{types.Int32{}}})
	m.DeclareBuiltin("putch", types.Function{Return: types.Void{}, Params: []types.Type{types.Int32{}}})
	m.DeclareBuiltin("getarray", types.Function{Return: types.Int32{}, Params: []types.Type{types.Pointer{Elem: types.Int32{}}}})
	m.DeclareBuiltin("putarray", types.Function{Return: types.Void{}, Params: []types.Type{types.Int32{}, types.Pointer{Elem: types.Int32{}}}})
}

// DeclareBuiltin pre-populates a standard I/O primitive: a Function with
// the given signature and IsBuiltin set, no body.
func (m *Module) DeclareBuiltin(name string, sig types.Function) {
	f := newFunction(name, sig, nil)
	f.IsBuiltin = true
	m.functions[name] = f
	m.funcOrder = append(m.funcOrder, name)
}

// DefineFunction defines name in the Module. ok is false if name is
// already defined (including as a builtin); the caller is responsible for
// turning that into a line-tagged SemanticError.
func (m *Module) DefineFunction(name string, ret types.Type, params []FormalSpec) (fn *Function, ok bool) {
	if _, exists := m.functions[name]; exists {
		return nil, false
	}
	sig := types.Function{Return: ret}
	formals := make([]*FormalParam, len(params))
	for i, p := range params {
		sig.Params = append(sig.Params, p.Typ)
		formals[i] = &FormalParam{SrcName: p.Name, Typ: p.Typ, OriginalArrayType: p.OriginalArrayType}
	}
	f := newFunction(name, sig, formals)
	m.functions[name] = f
	m.funcOrder = append(m.funcOrder, name)
	return f, true
}

// FindFunction looks up a function (builtin or user-defined) by name.
func (m *Module) FindFunction(name string) (*Function, bool) {
	f, ok := m.functions[name]
	return f, ok
}

// Functions returns all defined functions in definition order, builtins
// first (since they are declared by NewModule before any user function).
func (m *Module) Functions() []*Function {
	fs := make([]*Function, 0, len(m.funcOrder))
	for _, name := range m.funcOrder {
		fs = append(fs, m.functions[name])
	}
	return fs
}

// NewGlobal declares a module-scope variable. ok is false if name is
// already declared at global scope.
func (m *Module) NewGlobal(name string, elem types.Type, init *int32) (g *GlobalVariable, ok bool) {
	if _, exists := m.globals[name]; exists {
		return nil, false
	}
	g = &GlobalVariable{SrcName: name, Elem: elem, Init: init}
	m.globals[name] = g
	m.globalOrder = append(m.globalOrder, name)
	m.scopes[0].vars[name] = g
	return g, true
}

// Globals returns all global variables in declaration order.
func (m *Module) Globals() []*GlobalVariable {
	gs := make([]*GlobalVariable, 0, len(m.globalOrder))
	for _, name := range m.globalOrder {
		gs = append(gs, m.globals[name])
	}
	return gs
}

// ConstInt returns the canonical Int32 ConstInt for v, interning it on
// first request.
func (m *Module) ConstInt(v int32) *ConstInt {
	if c, ok := m.constInts[v]; ok {
		return c
	}
	c := &ConstInt{Val: v, Typ: types.Int32{}}
	m.constInts[v] = c
	return c
}

// ConstBool returns the canonical Int1-typed 0/1 ConstInt for b.
func (m *Module) ConstBool(b bool) *ConstInt {
	if b {
		if m.trueConst == nil {
			m.trueConst = &ConstInt{Val: 1, Typ: types.Int1{}}
		}
		return m.trueConst
	}
	if m.falseConst == nil {
		m.falseConst = &ConstInt{Val: 0, Typ: types.Int1{}}
	}
	return m.falseConst
}

// CurrentFunction returns the function currently being translated, or nil
// between functions.
func (m *Module) CurrentFunction() *Function { return m.current }

// SetCurrentFunction / ClearCurrentFunction bracket translation of one
// function body, per spec.md §5's single "current function" process state.
func (m *Module) SetCurrentFunction(f *Function) { m.current = f }
func (m *Module) ClearCurrentFunction()          { m.current = nil }

// EnterScope pushes a new, empty scope one level deeper than the current
// top.
func (m *Module) EnterScope() {
	m.scopes = append(m.scopes, &scope{level: len(m.scopes), vars: make(map[string]Value)})
}

// LeaveScope pops the innermost scope. Its Values are not discarded (they
// may still be referenced by already-emitted instructions) — only the
// name bindings are.
func (m *Module) LeaveScope() {
	m.scopes = m.scopes[:len(m.scopes)-1]
}

// FindVar walks the scope stack inside-out (innermost first, global
// scope 0 last) and returns the first binding of name.
func (m *Module) FindVar(name string) (Value, bool) {
	for i := len(m.scopes) - 1; i >= 0; i-- {
		if v, ok := m.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// DefineVar binds name to v in the current (innermost) scope. ok is false
// if name is already bound in that same scope (a same-scope redefinition,
// which the caller reports as a SemanticError).
func (m *Module) DefineVar(name string, v Value) (ok bool) {
	top := m.scopes[len(m.scopes)-1]
	if _, exists := top.vars[name]; exists {
		return false
	}
	top.vars[name] = v
	return true
}

// ScopeLevel returns the level (0 = global) of the current innermost scope.
func (m *Module) ScopeLevel() int { return len(m.scopes) - 1 }

// Fail records err and marks the Module as failed: per spec.md §5/§7, the
// selector refuses to process a failed Module and no partial assembly is
// emitted.
func (m *Module) Fail(err error) {
	m.Failed = true
	m.Errors = append(m.Errors, err)
}

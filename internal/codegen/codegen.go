// Package codegen implements CodeGen: it walks the AST once per compile and
// emits typed IR into a single ir.Module. Codegen state is an explicit
// Context threaded by pointer through every emit function rather than held
// in package globals, and the scope stack is a slice of maps keyed by
// symbol name rather than a tree of back-pointers.
package codegen

import (
	"fmt"

	"flowcore/internal/ast"
	"flowcore/internal/ir"
	"flowcore/internal/registry"
	"flowcore/internal/types"
)

// CompileError is one semantic/codegen error. CodeGen keeps emitting after
// reporting one so a single Compile call can surface more than one mistake.
type CompileError struct {
	At  fmt.Stringer
	Msg string
}

func (e *CompileError) Error() string { return fmt.Sprintf("%s: %s", e.At, e.Msg) }

// scopeVar is one binding inside a scopeFrame: the IR slot it occupies
// (a local index within the current function, or a global index when the
// frame is the bottom "global" frame) and its statically inferred Kind.
type scopeVar struct {
	Slot int
	Kind types.Kind
}

// scopeFrame is one level of the scope stack: the bottom frame holds
// globals and is shared for the whole compile; one frame is pushed per
// function body and popped when CodeGen leaves it.
type scopeFrame struct {
	vars map[string]scopeVar
}

func newFrame() *scopeFrame { return &scopeFrame{vars: make(map[string]scopeVar)} }

// Context is CodeGen's explicit, mutable-by-reference state.
type Context struct {
	reg  *registry.Registry
	mod  *ir.Module
	errs []*CompileError

	frames []*scopeFrame // frames[0] is the bottom global frame

	funcIdx     map[string]int         // Flow function/handler name -> mod.Functions index
	funcHandler map[string]bool        // name -> declared as `handler`
	funcKind    map[string]types.Kind  // best-effort inferred return kind for non-handler functions
	funcParams  map[string]int         // name -> declared parameter count

	fn               *ir.Function // function currently being emitted
	chunk            *ir.Chunk    // == &fn.Chunk, the current insertion point
	nextLocal        int          // next free local slot in fn
	insideInitializer bool        // true while emitting the synthetic initializer
}

// Compile lowers unit into an ir.Module, resolving native references against
// reg. It always returns a Module; callers must check len(errs).
func Compile(unit *ast.Unit, reg *registry.Registry) (*ir.Module, []*CompileError) {
	ctx := &Context{
		reg:         reg,
		mod:         &ir.Module{HandlerNames: map[string]int{}},
		frames:      []*scopeFrame{newFrame()},
		funcIdx:     map[string]int{},
		funcHandler: map[string]bool{},
		funcKind:    map[string]types.Kind{},
		funcParams:  map[string]int{},
	}

	// Pass 1: register every Flow function/handler name up front so forward
	// and mutually-recursive calls resolve.
	for _, f := range unit.Functions {
		if _, dup := ctx.funcIdx[f.Name]; dup {
			ctx.addErrorAt(f.Pos(), "function %q already declared", f.Name)
			continue
		}
		retKind := types.Void
		if f.IsHandler {
			retKind = types.Bool
		}
		idx := len(ctx.mod.Functions)
		ctx.mod.Functions = append(ctx.mod.Functions, &ir.Function{
			Name: f.Name, NumParams: len(f.Params), IsHandler: f.IsHandler, ReturnKind: retKind,
		})
		ctx.funcIdx[f.Name] = idx
		ctx.funcHandler[f.Name] = f.IsHandler
		ctx.funcParams[f.Name] = len(f.Params)
		if f.IsHandler {
			ctx.mod.HandlerNames[f.Name] = idx
		}
	}

	// Pass 2: best-effort static return-kind inference for non-handler
	// functions, from the first top-level `return` in the body when its
	// value is literal-shaped. Calls
	// whose callee's kind cannot be determined this way are simply not
	// type-checked statically; a full fixed-point inference is out of scope
	// for CodeGen.
	for _, f := range unit.Functions {
		if f.IsHandler {
			continue
		}
		if k, ok := firstReturnLiteralKind(f.Body); ok {
			ctx.funcKind[f.Name] = k
			ctx.mod.Functions[ctx.funcIdx[f.Name]].ReturnKind = k
		}
	}

	// Pass 3: the module initializer runs every global's initializer
	// exactly once, in declaration order.
	ctx.compileInitializer(unit.Variables)

	// Pass 4: compile every function/handler body.
	for _, f := range unit.Functions {
		ctx.compileFunDecl(f)
	}

	return ctx.mod, ctx.errs
}

func (c *Context) addErrorAt(pos fmt.Stringer, format string, args ...interface{}) {
	c.errs = append(c.errs, &CompileError{Msg: fmt.Sprintf(format, args...), At: pos})
}

// ---------------- Scope stack ----------------

func (c *Context) pushFrame()       { c.frames = append(c.frames, newFrame()) }
func (c *Context) popFrame()        { c.frames = c.frames[:len(c.frames)-1] }
func (c *Context) globalFrame() *scopeFrame { return c.frames[0] }
func (c *Context) topFrame() *scopeFrame    { return c.frames[len(c.frames)-1] }

// lookup searches the scope stack top-down. isGlobal reports whether the
// binding was found in the bottom frame, which CodeGen needs to choose
// OpLoadLocal vs OpLoadGlobal.
func (c *Context) lookup(name string) (v scopeVar, isGlobal bool, found bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if v, ok := c.frames[i].vars[name]; ok {
			return v, i == 0, true
		}
	}
	return scopeVar{}, false, false
}

// insertLocal allocates a new local slot in the top frame.
func (c *Context) insertLocal(name string, kind types.Kind) int {
	slot := c.nextLocal
	c.nextLocal++
	c.topFrame().vars[name] = scopeVar{Slot: slot, Kind: kind}
	if c.nextLocal > c.fn.Chunk.NumLocals {
		c.fn.Chunk.NumLocals = c.nextLocal
	}
	return slot
}

// insertGlobal allocates a new global slot in the bottom frame.
func (c *Context) insertGlobal(name string, kind types.Kind) int {
	idx := len(c.mod.Globals)
	c.mod.Globals = append(c.mod.Globals, ir.Global{Name: name, Kind: kind})
	c.globalFrame().vars[name] = scopeVar{Slot: idx, Kind: kind}
	return idx
}

// ---------------- Initializer & function bodies ----------------

func (c *Context) compileInitializer(globals []*ast.VarDecl) {
	fn := &ir.Function{Name: "$init", ReturnKind: types.Void}
	c.mod.InitializerIdx = len(c.mod.Functions)
	c.mod.Functions = append(c.mod.Functions, fn)

	c.fn = fn
	c.chunk = &fn.Chunk
	c.nextLocal = 0
	c.insideInitializer = true

	for _, g := range globals {
		kind, _ := c.kindOfExpr(g.Value)
		c.compileExpr(g.Value)
		idx := c.insertGlobal(g.Name, kind)
		c.chunk.Emit(ir.OpStoreGlobal, idx, 0)
		c.chunk.Emit(ir.OpPop, 0, 0)
	}
	c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(false), 0)
	c.chunk.Emit(ir.OpReturn, 0, 0)

	c.insideInitializer = false
	c.fn, c.chunk = nil, nil
}

func (c *Context) compileFunDecl(f *ast.FunDecl) {
	idx, ok := c.funcIdx[f.Name]
	if !ok {
		return // registration failed (duplicate name), already reported
	}
	fn := c.mod.Functions[idx]
	c.fn = fn
	c.chunk = &fn.Chunk
	c.nextLocal = 0
	c.pushFrame()
	for _, p := range f.Params {
		c.insertLocal(p, types.Void) // parameter kinds are not statically declared
	}

	c.compileStmt(f.Body)

	// Every handler body ends with a catch-all return false to define the
	// fall-through case; a plain function falling off its end returns the
	// same false sentinel, since the VM has no separate "void" zero value
	// to push.
	c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(false), 0)
	c.chunk.Emit(ir.OpReturn, 0, 0)

	c.popFrame()
	c.fn, c.chunk = nil, nil
}

// ---------------- Statements ----------------

func (c *Context) compileStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.CompoundStmt:
		for _, st := range s.Stmts {
			c.compileStmt(st)
		}
	case *ast.CondStmt:
		c.compileCond(s)
	case *ast.ExprStmt:
		c.compileTopLevelCall(s.X)
		c.chunk.Emit(ir.OpPop, 0, 0)
	case *ast.ReturnStmt:
		c.compileReturn(s)
	case *ast.LocalVarStmt:
		c.compileLocalVar(s.Decl)
	default:
		c.addErrorAt(s.Pos(), "codegen: unhandled statement %T", s)
	}
}

func (c *Context) compileLocalVar(d *ast.VarDecl) {
	kind, _ := c.kindOfExpr(d.Value)
	c.compileExpr(d.Value)
	slot := c.insertLocal(d.Name, kind)
	c.chunk.Emit(ir.OpStoreLocal, slot, 0)
	c.chunk.Emit(ir.OpPop, 0, 0)
}

func (c *Context) compileCond(s *ast.CondStmt) {
	kind, ok := c.kindOfExpr(s.Cond)
	if ok && kind != types.Bool {
		c.addErrorAt(s.Cond.Pos(), "if condition must be bool, got %s", kind)
	}
	c.compileExpr(s.Cond)
	jmpElse := c.chunk.Emit(ir.OpJumpIfFalse, 0, 0)
	c.compileStmt(s.Then)
	jmpEnd := c.chunk.Emit(ir.OpJump, 0, 0)
	c.chunk.Code[jmpElse].A = len(c.chunk.Code)
	if s.Else != nil {
		c.compileStmt(s.Else)
	}
	c.chunk.Code[jmpEnd].A = len(c.chunk.Code)
}

func (c *Context) compileReturn(s *ast.ReturnStmt) {
	if s.Result != nil {
		c.compileExpr(s.Result)
		c.chunk.Emit(ir.OpReturn, 0, 1)
		return
	}
	c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(false), 0)
	c.chunk.Emit(ir.OpReturn, 0, 0)
}

// compileTopLevelCall special-cases a CallExpr in statement position whose
// callee resolves to a handler (Flow handler or native Handler entry): such
// a call's boolean result immediately decides the enclosing handler's fate,
// short-circuiting the remaining statements. CodeGen implements this with
// an ordinary conditional-return rather than a dedicated VM branch
// instruction, since the two are semantically identical.
func (c *Context) compileTopLevelCall(e ast.Expr) {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		c.compileExpr(e)
		return
	}
	isHandlerCall := c.funcHandler[call.Callee]
	if !isHandlerCall {
		if idx := c.reg.Find(call.Callee); idx >= 0 {
			if entry, ok := c.reg.Entry(idx); ok && entry.Kind == registry.Handler {
				isHandlerCall = true
			}
		}
	}
	c.compileExpr(call)
	if !isHandlerCall {
		return
	}
	jmpNotConsumed := c.chunk.Emit(ir.OpJumpIfFalse, 0, 0)
	c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(true), 0)
	c.chunk.Emit(ir.OpReturn, 0, 1)
	c.chunk.Code[jmpNotConsumed].A = len(c.chunk.Code)
	// OpJumpIfFalse already consumed the call's result to test it; push a
	// replacement so the OpPop compileStmt emits for every ExprStmt has a
	// value to discard.
	c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(false), 0)
}

// ---------------- Expressions ----------------

func (c *Context) compileExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.NumberLit:
		c.chunk.Emit(ir.OpConst, c.chunk.AddConstNumber(e.Value), 0)
	case *ast.StringLit:
		c.chunk.Emit(ir.OpConst, c.chunk.AddConstString(e.Value), 0)
	case *ast.BoolLit:
		c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(e.Value), 0)
	case *ast.IPLit:
		c.chunk.Emit(ir.OpConst, c.chunk.AddConstIP(e.Value), 0)
	case *ast.RegexpLit:
		c.chunk.Emit(ir.OpConst, c.chunk.AddConstRegexp(e.Pattern), 0)
	case *ast.ListLit:
		for _, el := range e.Elements {
			c.compileExpr(el)
		}
		c.chunk.Emit(ir.OpMakeList, len(e.Elements), 0)
	case *ast.VarRef:
		c.compileVarRef(e)
	case *ast.UnaryExpr:
		c.compileUnary(e)
	case *ast.BinaryExpr:
		c.compileBinary(e)
	case *ast.AssignExpr:
		c.compileAssign(e)
	case *ast.CallExpr:
		c.compileCall(e)
	default:
		c.addErrorAt(e.Pos(), "codegen: unhandled expression %T", e)
	}
}

func (c *Context) compileVarRef(e *ast.VarRef) {
	if v, isGlobal, found := c.lookup(e.Name); found {
		if isGlobal {
			c.chunk.Emit(ir.OpLoadGlobal, v.Slot, 0)
		} else {
			c.chunk.Emit(ir.OpLoadLocal, v.Slot, 0)
		}
		return
	}
	if idx := c.reg.Find(e.Name); idx >= 0 {
		entry, _ := c.reg.Entry(idx)
		if !entry.Kind.CallableFromSetup() && !c.insideInitializer {
			c.addErrorAt(e.Pos(), "native %q is setup-only and cannot be read from a handler/function body", e.Name)
		}
		c.chunk.Emit(ir.OpLoadNative, idx, 0)
		return
	}
	if idx, ok := c.funcIdx[e.Name]; ok {
		// A bare reference to a declared function/handler name yields its
		// FUNCTION/HANDLER value rather than calling it.
		c.chunk.Emit(ir.OpConst, c.chunk.AddConstNumber(int64(idx)), 0)
		return
	}
	c.addErrorAt(e.Pos(), "undefined symbol %q", e.Name)
	c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(false), 0)
}

func (c *Context) compileUnary(e *ast.UnaryExpr) {
	xKind, ok := c.kindOfExpr(e.X)
	op := toTypesOp(e.Op)
	if ok {
		if _, valid := types.UnaryResult(op, xKind); !valid {
			c.addErrorAt(e.Pos(), "operator %s not defined for operand kind %s", unaryOpName(e.Op), xKind)
		}
	}
	c.compileExpr(e.X)
	switch e.Op {
	case ast.OpBang:
		c.chunk.Emit(ir.OpNot, 0, 0)
	case ast.OpNeg:
		c.chunk.Emit(ir.OpNeg, 0, 0)
	case ast.OpPos:
		// identity: X is already on the stack
	default:
		c.addErrorAt(e.Pos(), "unknown unary operator")
	}
}

func (c *Context) compileBinary(e *ast.BinaryExpr) {
	switch e.Op {
	case ast.OpOr:
		c.compileOr(e)
		return
	case ast.OpAnd, ast.OpXor:
		c.compileStrictLogical(e)
		return
	}

	lKind, lok := c.kindOfExpr(e.Left)
	rKind, rok := c.kindOfExpr(e.Right)
	if lok && rok {
		op := toTypesOp(e.Op)
		if _, valid := types.BinaryResult(op, lKind, rKind); !valid {
			c.addErrorAt(e.Pos(), "operator %s not defined for operand kinds (%s, %s)", binOpName(e.Op), lKind, rKind)
		}
	}

	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	switch e.Op {
	case ast.OpAdd:
		c.chunk.Emit(ir.OpAdd, 0, 0)
	case ast.OpSub:
		c.chunk.Emit(ir.OpSub, 0, 0)
	case ast.OpMul:
		c.chunk.Emit(ir.OpMul, 0, 0)
	case ast.OpDiv:
		c.chunk.Emit(ir.OpDiv, 0, 0)
	case ast.OpPow:
		c.chunk.Emit(ir.OpPow, 0, 0)
	case ast.OpEq:
		c.chunk.Emit(ir.OpEq, 0, 0)
	case ast.OpNeq:
		c.chunk.Emit(ir.OpNeq, 0, 0)
	case ast.OpLt:
		c.chunk.Emit(ir.OpLt, 0, 0)
	case ast.OpGt:
		c.chunk.Emit(ir.OpGt, 0, 0)
	case ast.OpLte:
		c.chunk.Emit(ir.OpLte, 0, 0)
	case ast.OpGte:
		c.chunk.Emit(ir.OpGte, 0, 0)
	case ast.OpPrefixMatch:
		c.chunk.Emit(ir.OpPrefixMatch, 0, 0)
	case ast.OpSuffixMatch:
		c.chunk.Emit(ir.OpSuffixMatch, 0, 0)
	case ast.OpRegexMatch:
		c.chunk.Emit(ir.OpRegexMatch, 0, 0)
	case ast.OpIn:
		c.chunk.Emit(ir.OpIn, 0, 0)
	default:
		c.addErrorAt(e.Pos(), "unknown binary operator")
	}
}

// compileOr lowers `||` with short-circuit evaluation: the right side is
// only evaluated when the left is false.
func (c *Context) compileOr(e *ast.BinaryExpr) {
	c.compileExpr(e.Left)
	jmpToRight := c.chunk.Emit(ir.OpJumpIfFalse, 0, 0)
	c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(true), 0)
	jmpEnd := c.chunk.Emit(ir.OpJump, 0, 0)
	c.chunk.Code[jmpToRight].A = len(c.chunk.Code)
	c.compileExpr(e.Right)
	c.chunk.Code[jmpEnd].A = len(c.chunk.Code)
}

// compileStrictLogical lowers `&&`/`xor`: both operands are always
// evaluated, unlike `||`'s short-circuit.
func (c *Context) compileStrictLogical(e *ast.BinaryExpr) {
	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	if e.Op == ast.OpAnd {
		c.chunk.Emit(ir.OpAnd, 0, 0)
	} else {
		c.chunk.Emit(ir.OpXor, 0, 0)
	}
}

func (c *Context) compileAssign(e *ast.AssignExpr) {
	v, isGlobal, found := c.lookup(e.Name)
	if !found {
		if idx := c.reg.Find(e.Name); idx >= 0 {
			c.addErrorAt(e.Pos(), "cannot assign to native entry %q", e.Name)
		} else {
			c.addErrorAt(e.Pos(), "assignment to undefined variable %q", e.Name)
		}
		c.compileExpr(e.Value)
		return
	}
	if isGlobal {
		c.addErrorAt(e.Pos(), "left side of '=' must be a local variable reference, %q is global", e.Name)
	}
	valKind, ok := c.kindOfExpr(e.Value)
	if ok && v.Kind != types.Void && valKind != v.Kind {
		c.addErrorAt(e.Pos(), "cannot assign %s to %q (declared %s)", valKind, e.Name, v.Kind)
	}
	c.compileExpr(e.Value)
	c.chunk.Emit(ir.OpDup, 0, 0)
	if isGlobal {
		c.chunk.Emit(ir.OpStoreGlobal, v.Slot, 0)
	} else {
		c.chunk.Emit(ir.OpStoreLocal, v.Slot, 0)
	}
}

func (c *Context) compileCall(e *ast.CallExpr) {
	if idx, ok := c.funcIdx[e.Callee]; ok {
		if want := c.funcParams[e.Callee]; want != len(e.Args) {
			c.addErrorAt(e.Pos(), "call to %q: expected %d argument(s), got %d", e.Callee, want, len(e.Args))
		}
		for _, a := range e.Args {
			c.compileExpr(a)
		}
		if c.funcHandler[e.Callee] {
			c.chunk.Emit(ir.OpCallHandler, idx, len(e.Args))
		} else {
			c.chunk.Emit(ir.OpCallFunc, idx, len(e.Args))
		}
		return
	}

	if idx := c.reg.Find(e.Callee); idx >= 0 {
		entry, _ := c.reg.Entry(idx)
		if !entry.Kind.CallableFromSetup() && !c.insideInitializer {
			c.addErrorAt(e.Pos(), "native %q is setup-only and cannot be called from a handler/function body", e.Callee)
		}
		for _, a := range e.Args {
			c.compileExpr(a)
		}
		if entry.Kind == registry.Handler {
			c.chunk.Emit(ir.OpCallNativeHn, idx, len(e.Args))
		} else {
			c.chunk.Emit(ir.OpCallNativeFn, idx, len(e.Args))
		}
		return
	}

	c.addErrorAt(e.Pos(), "undefined symbol %q", e.Callee)
	for _, a := range e.Args {
		c.compileExpr(a)
	}
	for range e.Args {
		c.chunk.Emit(ir.OpPop, 0, 0) // discard any pushed args (best-effort recovery)
	}
	c.chunk.Emit(ir.OpConst, c.chunk.AddConstBool(false), 0)
}

// ---------------- Static kind inference (best-effort) ----------------

// kindOfExpr resolves e's Kind when it is statically determinable: literals
// always are; VarRef/CallExpr are when the symbol's kind is already known
// (a local's kind is inferred from its initializer, never declared). ok is
// false when CodeGen cannot determine
// the kind without a full flow-sensitive analysis, in which case the
// operator-acceptance check in compileBinary/compileUnary is skipped for
// that operand rather than rejecting otherwise-valid programs.
func (c *Context) kindOfExpr(e ast.Expr) (types.Kind, bool) {
	switch e := e.(type) {
	case *ast.NumberLit:
		return types.Number, true
	case *ast.StringLit:
		return types.String, true
	case *ast.BoolLit:
		return types.Bool, true
	case *ast.IPLit:
		return types.IP, true
	case *ast.RegexpLit:
		return types.Regexp, true
	case *ast.ListLit:
		return types.Array, true
	case *ast.VarRef:
		if v, _, found := c.lookup(e.Name); found {
			if v.Kind == types.Void {
				return types.Void, false
			}
			return v.Kind, true
		}
		if idx := c.reg.Find(e.Name); idx >= 0 {
			entry, _ := c.reg.Entry(idx)
			return entry.ReturnKind, true
		}
		return types.Void, false
	case *ast.UnaryExpr:
		xk, ok := c.kindOfExpr(e.X)
		if !ok {
			return types.Void, false
		}
		return types.UnaryResult(toTypesOp(e.Op), xk)
	case *ast.BinaryExpr:
		lk, lok := c.kindOfExpr(e.Left)
		rk, rok := c.kindOfExpr(e.Right)
		if !lok || !rok {
			return types.Void, false
		}
		return types.BinaryResult(toTypesOp(e.Op), lk, rk)
	case *ast.AssignExpr:
		return c.kindOfExpr(e.Value)
	case *ast.CallExpr:
		if k, ok := c.funcKind[e.Callee]; ok {
			return k, true
		}
		if idx := c.reg.Find(e.Callee); idx >= 0 {
			entry, _ := c.reg.Entry(idx)
			return entry.ReturnKind, true
		}
		return types.Void, false
	default:
		return types.Void, false
	}
}

// firstReturnLiteralKind is the shallow pre-pass CodeGen uses to guess a
// non-handler function's return kind before any body has been compiled, so
// mutually recursive functions can still be operator-checked against each
// other's results. It only looks at statements directly in the body (no
// descent into nested if/else), which keeps it a single, fast, self
// contained pass with no scope dependency.
func firstReturnLiteralKind(body *ast.CompoundStmt) (types.Kind, bool) {
	for _, s := range body.Stmts {
		if r, ok := s.(*ast.ReturnStmt); ok && r.Result != nil {
			return literalKind(r.Result)
		}
	}
	return types.Void, false
}

// literalKind is kindOfExpr's context-free subset: literals and operators
// over literals only, no symbol lookups.
func literalKind(e ast.Expr) (types.Kind, bool) {
	switch e := e.(type) {
	case *ast.NumberLit:
		return types.Number, true
	case *ast.StringLit:
		return types.String, true
	case *ast.BoolLit:
		return types.Bool, true
	case *ast.IPLit:
		return types.IP, true
	case *ast.RegexpLit:
		return types.Regexp, true
	case *ast.ListLit:
		return types.Array, true
	case *ast.UnaryExpr:
		xk, ok := literalKind(e.X)
		if !ok {
			return types.Void, false
		}
		return types.UnaryResult(toTypesOp(e.Op), xk)
	case *ast.BinaryExpr:
		lk, lok := literalKind(e.Left)
		rk, rok := literalKind(e.Right)
		if !lok || !rok {
			return types.Void, false
		}
		return types.BinaryResult(toTypesOp(e.Op), lk, rk)
	default:
		return types.Void, false
	}
}

func toTypesOp(op ast.Operator) types.Op {
	switch op {
	case ast.OpBang:
		return types.OpBang
	case ast.OpNeg:
		return types.OpNeg
	case ast.OpPos:
		return types.OpPos
	case ast.OpAnd:
		return types.OpAnd
	case ast.OpOr:
		return types.OpOr
	case ast.OpXor:
		return types.OpXor
	case ast.OpAdd:
		return types.OpAdd
	case ast.OpSub:
		return types.OpSub
	case ast.OpMul:
		return types.OpMul
	case ast.OpDiv:
		return types.OpDiv
	case ast.OpPow:
		return types.OpPow
	case ast.OpEq:
		return types.OpEq
	case ast.OpNeq:
		return types.OpNeq
	case ast.OpLt:
		return types.OpLt
	case ast.OpGt:
		return types.OpGt
	case ast.OpLte:
		return types.OpLte
	case ast.OpGte:
		return types.OpGte
	case ast.OpPrefixMatch:
		return types.OpPrefixMatch
	case ast.OpSuffixMatch:
		return types.OpSuffixMatch
	case ast.OpRegexMatch:
		return types.OpRegexMatch
	case ast.OpIn:
		return types.OpIn
	default:
		return types.Op(-1)
	}
}

func unaryOpName(op ast.Operator) string {
	switch op {
	case ast.OpBang:
		return "!"
	case ast.OpNeg:
		return "-"
	case ast.OpPos:
		return "+"
	default:
		return "?"
	}
}

func binOpName(op ast.Operator) string {
	names := map[ast.Operator]string{
		ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpPow: "**",
		ast.OpEq: "==", ast.OpNeq: "!=", ast.OpLt: "<", ast.OpGt: ">", ast.OpLte: "<=", ast.OpGte: ">=",
		ast.OpPrefixMatch: "=^", ast.OpSuffixMatch: "=$", ast.OpRegexMatch: "=~", ast.OpIn: "in",
		ast.OpAnd: "&&", ast.OpOr: "||", ast.OpXor: "xor",
	}
	if n, ok := names[op]; ok {
		return n
	}
	return "?"
}

// Package vm executes a compiled ir.Module. In the legacy C/LLVM
// implementation this role belongs to materialized native machine code; here
// it is a small stack-based bytecode interpreter, in the idiom of the
// teacher's internal/vm.VM, generalized to Flow's narrower opcode set and
// to the host-native dispatch boundary in package invoker. jitengine treats
// a *VM as the "materialized" artifact it hands back a handler entry point
// for.
package vm

import (
	"fmt"
	"regexp"

	"flowcore/internal/invoker"
	"flowcore/internal/ir"
	"flowcore/internal/registry"
	"flowcore/internal/value"
)

// VM runs one compiled ir.Module. It is single-threaded per CompiledUnit: a
// VM must not be invoked concurrently with itself.
type VM struct {
	mod     *ir.Module
	reg     *registry.Registry
	globals []value.Value
	regexes map[string]*regexp.Regexp
}

// New creates a VM bound to mod and reg. Globals are zero-valued until
// RunInitializer runs.
func New(mod *ir.Module, reg *registry.Registry) *VM {
	return &VM{
		mod:     mod,
		reg:     reg,
		globals: make([]value.Value, len(mod.Globals)),
		regexes: make(map[string]*regexp.Regexp),
	}
}

// RunInitializer executes the synthetic initializer function exactly once,
// evaluating every global's initializer in declaration order, immediately
// after JIT materialization.
func (vm *VM) RunInitializer() error {
	_, err := vm.call(vm.mod.InitializerIdx, nil, nil)
	return err
}

// CallHandler invokes the handler at idx with the host's opaque userdata.
// The return value is the state machine's final verdict: true means the
// request was consumed.
func (vm *VM) CallHandler(idx int, userdata interface{}) (bool, error) {
	v, err := vm.call(idx, userdata, nil)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

// frame is one activation of a Flow function/handler: its local slots, its
// operand stack, and the program counter into its Chunk. Flow-to-Flow calls
// (OpCallFunc/OpCallHandler) recurse through vm.call rather than
// maintaining an explicit call stack of their own, letting the Go call
// stack stand in for it.
type frame struct {
	fn       *ir.Function
	locals   []value.Value
	stack    []value.Value
	userdata interface{}
	pc       int
}

func (f *frame) push(v value.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() value.Value {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

func (f *frame) peek() value.Value { return f.stack[len(f.stack)-1] }

func (f *frame) popN(n int) []value.Value {
	if n == 0 {
		return nil
	}
	out := make([]value.Value, n)
	copy(out, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	return out
}

func (vm *VM) call(idx int, userdata interface{}, args []value.Value) (value.Value, error) {
	if idx < 0 || idx >= len(vm.mod.Functions) {
		return value.Void(), fmt.Errorf("vm: function index %d out of range", idx)
	}
	fn := vm.mod.Functions[idx]
	locals := make([]value.Value, fn.Chunk.NumLocals)
	copy(locals, args)
	return vm.run(&frame{fn: fn, locals: locals, userdata: userdata})
}

func (vm *VM) run(f *frame) (value.Value, error) {
	code := f.fn.Chunk.Code
	for f.pc < len(code) {
		ins := code[f.pc]
		f.pc++

		switch ins.Op {
		case ir.OpConst:
			v, err := vm.constToValue(f.fn.Chunk.Consts[ins.A])
			if err != nil {
				return value.Void(), err
			}
			f.push(v)
		case ir.OpLoadLocal:
			f.push(f.locals[ins.A])
		case ir.OpStoreLocal:
			f.locals[ins.A] = f.peek()
		case ir.OpLoadGlobal:
			f.push(vm.globals[ins.A])
		case ir.OpStoreGlobal:
			vm.globals[ins.A] = f.peek()
		case ir.OpDup:
			f.push(f.peek())
		case ir.OpPop:
			f.pop()

		case ir.OpLoadNative:
			v, err := invoker.Dispatch(vm.reg, ins.A, f.userdata, nil)
			if err != nil {
				return value.Void(), err
			}
			f.push(v)
		case ir.OpCallNativeFn, ir.OpCallNativeHn:
			args := f.popN(ins.B)
			v, err := invoker.Dispatch(vm.reg, ins.A, f.userdata, args)
			if err != nil {
				return value.Void(), err
			}
			f.push(v)

		case ir.OpCallFunc, ir.OpCallHandler:
			args := f.popN(ins.B)
			v, err := vm.call(ins.A, f.userdata, args)
			if err != nil {
				return value.Void(), err
			}
			f.push(v)

		case ir.OpReturn:
			return f.pop(), nil

		case ir.OpNot:
			x := f.pop()
			f.push(value.Bool(!x.IsTruthy()))
		case ir.OpNeg:
			x := f.pop()
			f.push(value.Number(-x.Number))

		case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpPow,
			ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpGt, ir.OpLte, ir.OpGte,
			ir.OpPrefixMatch, ir.OpSuffixMatch, ir.OpRegexMatch, ir.OpIn,
			ir.OpAnd, ir.OpXor:
			r := f.pop()
			l := f.pop()
			res, err := vm.binary(ins.Op, l, r)
			if err != nil {
				return value.Void(), err
			}
			f.push(res)

		case ir.OpJump:
			f.pc = ins.A
		case ir.OpJumpIfFalse:
			if !f.pop().Bool() {
				f.pc = ins.A
			}
		case ir.OpJumpIfTrue:
			if f.pop().Bool() {
				f.pc = ins.A
			}

		case ir.OpMakeList:
			f.push(value.Array(f.popN(ins.A)))

		default:
			return value.Void(), fmt.Errorf("vm: unhandled opcode %v", ins.Op)
		}
	}
	// Unreachable in a CodeGen-produced chunk: every function/handler body
	// ends with an explicit OpReturn (codegen.go's catch-all).
	return value.Void(), nil
}

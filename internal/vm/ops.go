package vm

import (
	"fmt"
	"net"
	"regexp"

	"flowcore/internal/ir"
	"flowcore/internal/runtimehelpers"
	"flowcore/internal/types"
	"flowcore/internal/value"
)

// constToValue materializes a Chunk constant-pool entry into a runtime
// Value. Regexp constants are compiled once per VM and cached by source
// pattern, since a handler invoked once per request would otherwise
// recompile the same regex literal on every evaluation.
func (vm *VM) constToValue(c ir.Constant) (value.Value, error) {
	switch c.Kind {
	case ir.ConstNumber:
		return value.Number(c.Number), nil
	case ir.ConstString:
		return value.Str(c.Str), nil
	case ir.ConstBool:
		return value.Bool(c.Bool), nil
	case ir.ConstIP:
		ip := net.ParseIP(c.Str)
		if ip == nil {
			return value.Void(), fmt.Errorf("vm: invalid IP literal %q", c.Str)
		}
		return value.IPAddr(ip), nil
	case ir.ConstRegexpSrc:
		re, err := vm.compileRegexp(c.Str)
		if err != nil {
			return value.Void(), err
		}
		return value.Rx(re), nil
	default:
		return value.Void(), fmt.Errorf("vm: unknown constant kind %v", c.Kind)
	}
}

func (vm *VM) compileRegexp(pattern string) (*regexp.Regexp, error) {
	if re, ok := vm.regexes[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("vm: invalid regex literal /%s/: %w", pattern, err)
	}
	vm.regexes[pattern] = re
	return re, nil
}

// binary implements the type-directed operator table. Both operand kinds
// are already runtime-known here (unlike CodeGen's best-effort static
// inference), so every accepted pairing from types.BinaryResult is handled
// directly against the concrete payload.
func (vm *VM) binary(op ir.OpCode, l, r value.Value) (value.Value, error) {
	switch op {
	case ir.OpAdd:
		return vm.add(l, r)
	case ir.OpSub:
		return vm.sub(l, r)
	case ir.OpMul:
		return vm.arith(op, l, r)
	case ir.OpDiv:
		if r.Kind == types.Number && r.Number == 0 {
			return value.Void(), fmt.Errorf("vm: division by zero")
		}
		return vm.arith(op, l, r)
	case ir.OpPow:
		return value.Number(int64(runtimehelpers.Pow(float64(l.Number), float64(r.Number)))), nil

	case ir.OpEq:
		return value.Bool(vm.compare(l, r) == 0), nil
	case ir.OpNeq:
		return value.Bool(vm.compare(l, r) != 0), nil
	case ir.OpLt:
		return value.Bool(vm.compare(l, r) < 0), nil
	case ir.OpGt:
		return value.Bool(vm.compare(l, r) > 0), nil
	case ir.OpLte:
		return value.Bool(vm.compare(l, r) <= 0), nil
	case ir.OpGte:
		return value.Bool(vm.compare(l, r) >= 0), nil

	case ir.OpPrefixMatch:
		return value.Bool(runtimehelpers.PrefixMatch(l.Str, r.Str)), nil
	case ir.OpSuffixMatch:
		return value.Bool(runtimehelpers.SuffixMatch(l.Str, r.Str)), nil
	case ir.OpRegexMatch:
		return vm.regexMatch(l, r)
	case ir.OpIn:
		return vm.in(l, r)

	case ir.OpAnd:
		return value.Bool(l.Bool() && r.Bool()), nil
	case ir.OpXor:
		return value.Bool(l.Bool() != r.Bool()), nil

	default:
		return value.Void(), fmt.Errorf("vm: unhandled binary opcode %v", op)
	}
}

func (vm *VM) arith(op ir.OpCode, l, r value.Value) (value.Value, error) {
	switch op {
	case ir.OpMul:
		return value.Number(l.Number * r.Number), nil
	case ir.OpDiv:
		return value.Number(l.Number / r.Number), nil
	default:
		return value.Void(), fmt.Errorf("vm: unhandled arithmetic opcode %v", op)
	}
}

// add implements `+` across the accepted pairings: numeric sum, string/
// array concatenation, and the string/buffer "pointer-advance" windowing
// forms (advancing the start of the subject by n).
func (vm *VM) add(l, r value.Value) (value.Value, error) {
	switch {
	case l.Kind == types.Number && r.Kind == types.Number:
		return value.Number(l.Number + r.Number), nil
	case l.Kind == types.String && r.Kind == types.String:
		return value.Str(l.Str + r.Str), nil
	case l.Kind == types.String && r.Kind == types.Number:
		return value.Str(windowString(l.Str, r.Number)), nil
	case l.Kind == types.Buffer && r.Kind == types.Number:
		return value.Buffer(windowBuffer(l.Buf, r.Number)), nil
	case l.Kind == types.Array && r.Kind == types.Array:
		return value.Array(runtimehelpers.ArrayAdd(l.Arr, r.Arr)), nil
	default:
		return value.Void(), fmt.Errorf("vm: '+' not defined for %s + %s", l.Kind, r.Kind)
	}
}

// sub implements `-`: numeric difference, or shrinking a string/buffer's
// window from the end by n bytes.
func (vm *VM) sub(l, r value.Value) (value.Value, error) {
	switch {
	case l.Kind == types.Number && r.Kind == types.Number:
		return value.Number(l.Number - r.Number), nil
	case l.Kind == types.String && r.Kind == types.Number:
		return value.Str(shrinkString(l.Str, r.Number)), nil
	case l.Kind == types.Buffer && r.Kind == types.Number:
		return value.Buffer(shrinkBuffer(l.Buf, r.Number)), nil
	default:
		return value.Void(), fmt.Errorf("vm: '-' not defined for %s - %s", l.Kind, r.Kind)
	}
}

func windowString(s string, n int64) string {
	if n < 0 {
		n = 0
	}
	if n > int64(len(s)) {
		n = int64(len(s))
	}
	return s[n:]
}

func shrinkString(s string, n int64) string {
	if n < 0 {
		n = 0
	}
	if n > int64(len(s)) {
		n = int64(len(s))
	}
	return s[:int64(len(s))-n]
}

func windowBuffer(b []byte, n int64) []byte {
	if n < 0 {
		n = 0
	}
	if n > int64(len(b)) {
		n = int64(len(b))
	}
	return b[n:]
}

func shrinkBuffer(b []byte, n int64) []byte {
	if n < 0 {
		n = 0
	}
	if n > int64(len(b)) {
		n = int64(len(b))
	}
	return b[:int64(len(b))-n]
}

// compare is the shared "zero on equal" comparator behind the six
// relational/equality operators, generalized across every accepted kind
// pairing from CmpString's own convention.
func (vm *VM) compare(l, r value.Value) int {
	switch {
	case l.Kind == types.Number && r.Kind == types.Number:
		return int(l.Number - r.Number)
	case l.Kind == types.Bool && r.Kind == types.Bool:
		return int(l.Number - r.Number)
	case l.Kind == types.String && r.Kind == types.String:
		return runtimehelpers.CmpString(l.Str, r.Str)
	case l.Kind == types.String && r.Kind == types.Number:
		return int64Sign(int64(len(l.Str)) - r.Number)
	case l.Kind == types.IP && r.Kind == types.IP:
		if runtimehelpers.IPCmp(l.IP, r.IP) {
			return 0
		}
		return 1
	case l.Kind == types.IP && r.Kind == types.String:
		if runtimehelpers.IPStrCmp(l.IP, r.Str) {
			return 0
		}
		return 1
	default:
		return 1
	}
}

func int64Sign(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func (vm *VM) regexMatch(l, r value.Value) (value.Value, error) {
	switch r.Kind {
	case types.String:
		re, err := vm.compileRegexp(r.Str)
		if err != nil {
			return value.Void(), err
		}
		return value.Bool(runtimehelpers.RegexMatchCompiled(l.Str, re)), nil
	case types.Regexp:
		return value.Bool(runtimehelpers.RegexMatchCompiled(l.Str, r.Regexp)), nil
	default:
		return value.Void(), fmt.Errorf("vm: '=~' not defined for %s =~ %s", l.Kind, r.Kind)
	}
}

func (vm *VM) in(l, r value.Value) (value.Value, error) {
	switch {
	case l.Kind == types.String && r.Kind == types.String:
		return value.Bool(runtimehelpers.Substring(l.Str, r.Str)), nil
	case l.Kind == types.Number && r.Kind == types.Array:
		return value.Bool(runtimehelpers.NumberInArray(l.Number, r.Arr)), nil
	case l.Kind == types.String && r.Kind == types.Array:
		return value.Bool(runtimehelpers.StringInArray(l.Str, r.Arr)), nil
	default:
		return value.Void(), fmt.Errorf("vm: 'in' not defined for %s in %s", l.Kind, r.Kind)
	}
}

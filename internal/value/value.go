// Package value is the VM's internal representation of a Flow value: the
// scope stack and operand stack both hold value.Value. It is distinct from
// the wire-format ABI record in package abi, which is only used at the
// host/guest native-call boundary.
package value

import (
	"fmt"
	"net"
	"regexp"

	"flowcore/internal/types"
)

// Value is a tagged union over Flow's closed kind set, mirroring the
// teacher's value.Value shape (one struct, one field per payload kind)
// generalized to Flow's narrower domain.
type Value struct {
	Kind    types.Kind
	Number  int64 // also doubles as the bool 0/1 payload
	Str     string
	Buf     []byte
	Arr     []Value
	Regexp  *regexp.Regexp
	IP      net.IP
	FuncRef *FuncRef
}

// FuncRef is an opaque pointer to a Flow-compiled function or handler.
// Index is the position of the function in its owning ir.Module.Functions
// slice.
type FuncRef struct {
	Index int
	Name  string
}

func Void() Value { return Value{Kind: types.Void} }

func Bool(b bool) Value {
	n := int64(0)
	if b {
		n = 1
	}
	return Value{Kind: types.Bool, Number: n}
}

func Number(n int64) Value          { return Value{Kind: types.Number, Number: n} }
func Str(s string) Value            { return Value{Kind: types.String, Str: s} }
func Buffer(b []byte) Value         { return Value{Kind: types.Buffer, Buf: b} }
func Array(vs []Value) Value        { return Value{Kind: types.Array, Arr: vs} }
func Rx(re *regexp.Regexp) Value    { return Value{Kind: types.Regexp, Regexp: re} }
func IPAddr(ip net.IP) Value        { return Value{Kind: types.IP, IP: ip} }
func Func(ref *FuncRef) Value       { return Value{Kind: types.Function, FuncRef: ref} }
func HandlerRef(ref *FuncRef) Value { return Value{Kind: types.Handler, FuncRef: ref} }

// IsTruthy implements unary `!`'s operand coercion: zero / empty / empty
// for number / string / array respectively.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case types.Number:
		return v.Number != 0
	case types.String:
		return v.Str != ""
	case types.Array:
		return len(v.Arr) != 0
	case types.Bool:
		return v.Number != 0
	default:
		return false
	}
}

func (v Value) Bool() bool { return v.Number != 0 }

func (v Value) String() string {
	switch v.Kind {
	case types.Void:
		return "<void>"
	case types.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case types.Number:
		return fmt.Sprintf("%d", v.Number)
	case types.String:
		return v.Str
	case types.Buffer:
		return fmt.Sprintf("buffer(%d)", len(v.Buf))
	case types.Array:
		return fmt.Sprintf("array(%d)", len(v.Arr))
	case types.Regexp:
		if v.Regexp != nil {
			return "/" + v.Regexp.String() + "/"
		}
		return "/<nil>/"
	case types.IP:
		return v.IP.String()
	case types.Function:
		if v.FuncRef != nil {
			return fmt.Sprintf("<function %s>", v.FuncRef.Name)
		}
		return "<function nil>"
	case types.Handler:
		if v.FuncRef != nil {
			return fmt.Sprintf("<handler %s>", v.FuncRef.Name)
		}
		return "<handler nil>"
	default:
		return "<invalid>"
	}
}

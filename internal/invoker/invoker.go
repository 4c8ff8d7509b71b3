// Package invoker implements the Invoker ABI: the stable boundary between
// compiled Flow code and the host. Generated code and the VM never call a
// registry.Callback directly, every native reference goes through Dispatch,
// which marshals the call arguments into the bit-exact abi.Record wire
// format, invokes the host callback, and unmarshals its argv[0] return slot
// back into a value.Value for the VM to push.
//
// A genuine C ABI has no garbage collector on either side of the call, so
// the legacy boundary passes raw pointers for STRING/BUFFER/ARRAY/REGEXP/
// IP/FUNCTION. Here both sides are Go, so Dispatch boxes each such payload
// as a pointer to its own Go value and carries that pointer, unsafe, in the
// record's Buffer slot, reconstructed on the far side by the Kind tag
// rather than by any wire-format length prefix.
package invoker

import (
	"fmt"
	"net"
	"regexp"
	"unsafe"

	"flowcore/internal/abi"
	"flowcore/internal/registry"
	"flowcore/internal/types"
	"flowcore/internal/value"
)

var kindToABI = [...]uint32{
	types.Void: abi.KindVoid, types.Bool: abi.KindBool, types.Number: abi.KindNumber,
	types.String: abi.KindString, types.Buffer: abi.KindBuffer, types.Array: abi.KindArray,
	types.Regexp: abi.KindRegexp, types.IP: abi.KindIP, types.Function: abi.KindFunction,
	types.Handler: abi.KindHandler,
}

var abiToKind = map[uint32]types.Kind{
	abi.KindVoid: types.Void, abi.KindBool: types.Bool, abi.KindNumber: types.Number,
	abi.KindString: types.String, abi.KindBuffer: types.Buffer, abi.KindArray: types.Array,
	abi.KindRegexp: types.Regexp, abi.KindIP: types.IP, abi.KindFunction: types.Function,
	abi.KindHandler: types.Handler,
}

// ToRecord marshals a VM value into the wire-format ABI record.
func ToRecord(v value.Value) abi.Record {
	r := abi.Record{Kind: kindToABI[v.Kind]}
	switch v.Kind {
	case types.Bool, types.Number:
		r.Number = uint64(v.Number)
	case types.String:
		s := v.Str
		r.Buffer = unsafe.Pointer(&s)
	case types.Buffer:
		r.Number = uint64(len(v.Buf))
		b := v.Buf
		r.Buffer = unsafe.Pointer(&b)
	case types.Array:
		a := v.Arr
		r.Buffer = unsafe.Pointer(&a)
	case types.Regexp:
		r.Buffer = unsafe.Pointer(v.Regexp)
	case types.IP:
		ip := v.IP
		r.Buffer = unsafe.Pointer(&ip)
	case types.Function, types.Handler:
		r.Buffer = unsafe.Pointer(v.FuncRef)
	}
	return r
}

// FromRecord reconstructs a VM value from an ABI record, selecting the slot
// by Kind; no slot is read when Kind is Void.
func FromRecord(r abi.Record) value.Value {
	switch abiToKind[r.Kind] {
	case types.Bool:
		return value.Bool(r.Number != 0)
	case types.Number:
		return value.Number(int64(r.Number))
	case types.String:
		return value.Str(*(*string)(r.Buffer))
	case types.Buffer:
		return value.Buffer(*(*[]byte)(r.Buffer))
	case types.Array:
		return value.Array(*(*[]value.Value)(r.Buffer))
	case types.Regexp:
		return value.Rx((*regexp.Regexp)(r.Buffer))
	case types.IP:
		return value.IPAddr(*(*net.IP)(r.Buffer))
	case types.Function:
		return value.Func((*value.FuncRef)(r.Buffer))
	case types.Handler:
		return value.HandlerRef((*value.FuncRef)(r.Buffer))
	default:
		return value.Void()
	}
}

// recordToRegistry and registryToRecord bridge the wire-format Record and
// the registry package's Go-friendlier Value, whose Ptr field carries the
// array/regexp/ip/function payloads that don't fit Str/Buf.
func recordToRegistry(r abi.Record) registry.Value {
	rv := registry.Value{Kind: abiToKind[r.Kind], Number: int64(r.Number)}
	switch rv.Kind {
	case types.String:
		rv.Str = *(*string)(r.Buffer)
	case types.Buffer:
		rv.Buf = *(*[]byte)(r.Buffer)
	case types.Array:
		rv.Ptr = *(*[]value.Value)(r.Buffer)
	case types.Regexp:
		rv.Ptr = (*regexp.Regexp)(r.Buffer)
	case types.IP:
		rv.Ptr = *(*net.IP)(r.Buffer)
	case types.Function, types.Handler:
		rv.Ptr = (*value.FuncRef)(r.Buffer)
	}
	return rv
}

func registryToRecord(rv registry.Value) abi.Record {
	r := abi.Record{Kind: kindToABI[rv.Kind]}
	switch rv.Kind {
	case types.Bool, types.Number:
		r.Number = uint64(rv.Number)
	case types.String:
		s := rv.Str
		r.Buffer = unsafe.Pointer(&s)
	case types.Buffer:
		r.Number = uint64(len(rv.Buf))
		b := rv.Buf
		r.Buffer = unsafe.Pointer(&b)
	case types.Array:
		if a, ok := rv.Ptr.([]value.Value); ok {
			r.Buffer = unsafe.Pointer(&a)
		}
	case types.Regexp:
		if re, ok := rv.Ptr.(*regexp.Regexp); ok {
			r.Buffer = unsafe.Pointer(re)
		}
	case types.IP:
		if ip, ok := rv.Ptr.(net.IP); ok {
			r.Buffer = unsafe.Pointer(&ip)
		}
	case types.Function, types.Handler:
		if fr, ok := rv.Ptr.(*value.FuncRef); ok {
			r.Buffer = unsafe.Pointer(fr)
		}
	}
	return r
}

// Dispatch is the single call-site protocol: allocate argv (return slot +
// marshalled arguments), invoke the native entry's callback, and read back
// argv[0] as the call's result.
func Dispatch(reg *registry.Registry, id int, userdata interface{}, args []value.Value) (value.Value, error) {
	entry, ok := reg.Entry(id)
	if !ok {
		return value.Void(), fmt.Errorf("invoker: no native entry at index %d", id)
	}

	argv := make([]registry.Value, len(args)+1)
	argv[0] = registry.Value{Kind: types.Void} // return slot
	for i, a := range args {
		argv[i+1] = recordToRegistry(ToRecord(a))
	}

	entry.Callback(userdata, argv)

	return FromRecord(registryToRecord(argv[0])), nil
}

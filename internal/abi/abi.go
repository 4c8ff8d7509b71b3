// Package abi defines the bit-exact host/guest value record. Changing the
// field order, names, or alignment of Record is a compatibility break for
// any host plugin built against it.
package abi

import "unsafe"

// Record is the packed tuple passed by value across the host/guest call
// boundary. number doubles as (i) a numeric value, (ii) a boolean 0/1,
// (iii) a buffer length when Kind==Buffer; buffer doubles as the data
// pointer for STRING / BUFFER / ARRAY / REGEXP / IP / FUNCTION. Readers
// must select the slot by Kind, no slot is read when Kind is Void.
//
// Field order is load-bearing: Kind at offset 0, Number at offset 8, Buffer
// at offset 16 on a typical 64-bit target. The init() assertion below fails
// fast if a future edit reorders fields.
type Record struct {
	Kind   uint32
	_      [4]byte // padding to align Number to its natural 8-byte boundary
	Number uint64
	Buffer unsafe.Pointer
}

func init() {
	var r Record
	if unsafe.Offsetof(r.Kind) != 0 || unsafe.Offsetof(r.Number) != 8 || unsafe.Offsetof(r.Buffer) != 16 {
		panic("abi.Record layout drifted from the documented host ABI offsets")
	}
}

// Array is a contiguous run of Records terminated by a sentinel Record with
// Kind==Void.
type Array []Record

// IsVoidSentinel reports whether r marks the end of an ABI Array.
func IsVoidSentinel(r Record) bool { return r.Kind == KindVoid }

// Kind tags mirror types.Kind numerically but are redeclared here so the
// ABI's wire representation does not silently shift if the Go-side Kind
// enum is reordered; package invoker keeps the two in lockstep via its
// kindToABI/abiToKind tables.
const (
	KindVoid uint32 = iota
	KindBool
	KindNumber
	KindString
	KindBuffer
	KindArray
	KindRegexp
	KindIP
	KindFunction
	KindHandler
)

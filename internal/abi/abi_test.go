package abi_test

import (
	"testing"
	"unsafe"

	"flowcore/internal/abi"
)

func TestRecordLayoutOffsetsAreLoadBearing(t *testing.T) {
	var r abi.Record
	if unsafe.Offsetof(r.Kind) != 0 {
		t.Fatalf("Kind must sit at offset 0")
	}
	if unsafe.Offsetof(r.Number) != 8 {
		t.Fatalf("Number must sit at offset 8")
	}
	if unsafe.Offsetof(r.Buffer) != 16 {
		t.Fatalf("Buffer must sit at offset 16")
	}
}

func TestVoidSentinelDetection(t *testing.T) {
	sentinel := abi.Record{Kind: abi.KindVoid}
	if !abi.IsVoidSentinel(sentinel) {
		t.Fatalf("expected a Kind=Void record to be recognized as the array sentinel")
	}
	notSentinel := abi.Record{Kind: abi.KindNumber}
	if abi.IsVoidSentinel(notSentinel) {
		t.Fatalf("expected a non-Void record to not be the sentinel")
	}
}

func TestKindConstantsAreDistinct(t *testing.T) {
	kinds := []uint32{
		abi.KindVoid, abi.KindBool, abi.KindNumber, abi.KindString,
		abi.KindBuffer, abi.KindArray, abi.KindRegexp, abi.KindIP,
		abi.KindFunction, abi.KindHandler,
	}
	seen := map[uint32]bool{}
	for _, k := range kinds {
		if seen[k] {
			t.Fatalf("duplicate Kind constant value %d", k)
		}
		seen[k] = true
	}
}

package runtimehelpers_test

import (
	"net"
	"testing"

	"flowcore/internal/runtimehelpers"
	"flowcore/internal/value"
)

func TestCmpStringIsCaseInsensitiveAndAntisymmetric(t *testing.T) {
	if runtimehelpers.CmpString("Hello", "hello") != 0 {
		t.Fatalf("expected case-insensitive equality")
	}
	a, b := "apple", "banana"
	forward := runtimehelpers.CmpString(a, b)
	backward := runtimehelpers.CmpString(b, a)
	if (forward < 0) != (backward > 0) || (forward == 0) != (backward == 0) {
		t.Fatalf("expected CmpString(a,b) and CmpString(b,a) to have opposite sign: %d vs %d", forward, backward)
	}
}

func TestPrefixMatchCaseInsensitiveAndLengthGuarded(t *testing.T) {
	if !runtimehelpers.PrefixMatch("Hello World", "hello") {
		t.Fatalf("expected case-insensitive prefix match")
	}
	if runtimehelpers.PrefixMatch("hi", "hello") {
		t.Fatalf("a prefix longer than the subject must never match")
	}
}

func TestSuffixMatchCaseInsensitiveAndLengthGuarded(t *testing.T) {
	if !runtimehelpers.SuffixMatch("Hello World", "WORLD") {
		t.Fatalf("expected case-insensitive suffix match")
	}
	if runtimehelpers.SuffixMatch("hi", "hello") {
		t.Fatalf("a suffix longer than the subject must never match")
	}
}

func TestArrayAddLengthRelationship(t *testing.T) {
	left := []value.Value{value.Number(1), value.Number(2)}
	right := []value.Value{value.Number(3)}
	result := runtimehelpers.ArrayAdd(left, right)
	if runtimehelpers.ArrayLen(result) != runtimehelpers.ArrayLen(left)+runtimehelpers.ArrayLen(right) {
		t.Fatalf("expected arraylen(result) == arraylen(left) + arraylen(right)")
	}
}

func TestArrayCmpZeroOnEqual(t *testing.T) {
	a := []value.Value{value.Number(1), value.Str("x")}
	b := []value.Value{value.Number(1), value.Str("x")}
	c := []value.Value{value.Number(1), value.Str("y")}
	if runtimehelpers.ArrayCmp(a, b) != 0 {
		t.Fatalf("expected equal arrays to compare to 0")
	}
	if runtimehelpers.ArrayCmp(a, c) == 0 {
		t.Fatalf("expected differing arrays to compare non-zero")
	}
}

func TestNumberAndStringInArray(t *testing.T) {
	arr := []value.Value{value.Number(1), value.Number(2), value.Str("x")}
	if !runtimehelpers.NumberInArray(2, arr) {
		t.Fatalf("expected 2 to be found")
	}
	if runtimehelpers.NumberInArray(3, arr) {
		t.Fatalf("expected 3 to not be found")
	}
	if !runtimehelpers.StringInArray("x", arr) {
		t.Fatalf("expected \"x\" to be found")
	}
}

func TestSubstringIsSubstringNotMembership(t *testing.T) {
	if !runtimehelpers.Substring("needle", "haystack-needle-more") {
		t.Fatalf("expected a substring match")
	}
	if runtimehelpers.Substring("haystack", "needle") {
		t.Fatalf("expected no match when needle is longer than haystack")
	}
	if !runtimehelpers.Substring("", "anything") {
		t.Fatalf("expected an empty needle to match trivially")
	}
}

func TestIPCmpAndIPStrCmp(t *testing.T) {
	a := net.ParseIP("192.168.1.1")
	b := net.ParseIP("192.168.1.1")
	if !runtimehelpers.IPCmp(a, b) {
		t.Fatalf("expected equal IPs to compare equal")
	}
	if !runtimehelpers.IPStrCmp(a, "192.168.1.1") {
		t.Fatalf("expected IPStrCmp to parse and match")
	}
	if runtimehelpers.IPStrCmp(a, "not an ip") {
		t.Fatalf("expected an unparseable string to never match")
	}
}

func TestPow(t *testing.T) {
	if got := runtimehelpers.Pow(2, 10); got != 1024 {
		t.Fatalf("expected 2**10 == 1024, got %v", got)
	}
	if got := runtimehelpers.Pow(2, 0); got != 1 {
		t.Fatalf("expected x**0 == 1, got %v", got)
	}
}

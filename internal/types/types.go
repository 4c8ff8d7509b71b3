// Package types implements Flow's TypeSystem: the closed set of value kinds,
// coercion predicates, and the operator-acceptance table that drives
// CodeGen's type-directed dispatch.
package types

import "fmt"

// Kind is one of the closed set of Flow value kinds. It is the tag carried
// by both the internal Value representation and the ABI value record.
type Kind int

const (
	Void Kind = iota
	Bool
	Number
	String
	Buffer
	Array
	Regexp
	IP
	Function
	Handler
)

var kindNames = [...]string{
	Void: "void", Bool: "bool", Number: "number", String: "string",
	Buffer: "buffer", Array: "array", Regexp: "regexp", IP: "ip",
	Function: "function", Handler: "handler",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Truthy reports whether a value of kind k can appear as the operand of
// unary `!`: number, string, or array only.
func Truthy(k Kind) bool {
	return k == Number || k == String || k == Array
}

// BinaryResult resolves the pair of operand kinds for a binary operator to
// a result kind. ok is false when the pairing is not listed, which CodeGen
// reports as a compile error.
func BinaryResult(op Op, l, r Kind) (result Kind, ok bool) {
	switch op {
	case OpAnd, OpOr, OpXor:
		if l == Bool && r == Bool {
			return Bool, true
		}
	case OpAdd:
		switch {
		case l == Number && r == Number:
			return Number, true
		case l == String && r == Number:
			return String, true // pointer-advance within string
		case l == Buffer && r == Number:
			return Buffer, true // window into buffer
		case l == Array && r == Array:
			return Array, true
		case l == String && r == String:
			return String, true
		}
	case OpSub:
		switch {
		case l == Number && r == Number:
			return Number, true
		case l == String && r == Number:
			return String, true
		case l == Buffer && r == Number:
			return Buffer, true
		}
	case OpMul:
		if l == Number && r == Number {
			return Number, true
		}
	case OpDiv:
		if l == Number && r == Number {
			return Number, true
		}
	case OpPow:
		if l == Number && r == Number {
			return Number, true
		}
	case OpEq, OpNeq, OpLt, OpGt, OpLte, OpGte:
		switch {
		case l == Number && r == Number:
			return Bool, true
		case l == Bool && r == Bool:
			return Bool, true
		case l == String && r == String:
			return Bool, true
		case l == String && r == Number:
			return Bool, true // compares string length
		case l == IP && r == IP:
			return Bool, true
		case l == IP && r == String:
			return Bool, true // parsed form
		}
	case OpPrefixMatch, OpSuffixMatch:
		if l == String && r == String {
			return Bool, true
		}
	case OpRegexMatch:
		if l == String && (r == String || r == Regexp) {
			return Bool, true
		}
	case OpIn:
		switch {
		case l == String && r == String:
			return Bool, true // substring test
		case l == Number && r == Array:
			return Bool, true // membership
		case l == String && r == Array:
			return Bool, true
		}
	}
	return Void, false
}

// UnaryResult resolves a unary operator's accepted operand kind.
func UnaryResult(op Op, x Kind) (result Kind, ok bool) {
	switch op {
	case OpBang:
		if Truthy(x) {
			return Bool, true
		}
	case OpNeg:
		if x == Number {
			return Number, true
		}
	case OpPos:
		return x, true
	}
	return Void, false
}

// Op mirrors ast.Operator without importing the ast package, keeping
// TypeSystem free of a dependency on the syntax tree.
type Op int

const (
	OpBang Op = iota
	OpNeg
	OpPos
	OpAnd
	OpOr
	OpXor
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte
	OpPrefixMatch
	OpSuffixMatch
	OpRegexMatch
	OpIn
)

// CanStoreInABINumberSlot reports whether a value of kind k may be written
// to the ABI record's number slot. FUNCTION and HANDLER values cannot be
// stored there.
func CanStoreInABINumberSlot(k Kind) bool {
	return k != Function && k != Handler
}

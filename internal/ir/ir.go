// Package ir is Flow's typed intermediate representation: the bytecode
// Module that CodeGen emits and the JITEngine/VM execute.
package ir

import "flowcore/internal/types"

// OpCode is one IR instruction opcode.
type OpCode byte

const (
	OpHalt OpCode = iota

	OpConst
	OpLoadLocal
	OpStoreLocal
	OpPop
	OpDup // duplicates the top of the operand stack, used when an assignment is itself an expression

	OpLoadGlobal
	OpStoreGlobal

	// Native-registry access: A = registry index.
	OpLoadNative   // Variable/Property-kind read via dispatch
	OpCallNativeFn // Function/Property-kind call via dispatch, A = index, B = argc
	OpCallNativeHn // Handler-kind call via dispatch, A = index, B = argc; pushes the Bool result (CodeGen emits the branch on it)

	// Flow-to-Flow calls: A = function index, B = argc.
	OpCallFunc
	OpCallHandler // callee is itself a handler; pushes its Bool result like OpCallNativeHn

	OpReturn // B = 0 (bare return) or 1 (with result)

	// Unary
	OpNot
	OpNeg

	// Binary, type-directed at both CodeGen (validity) and execution
	// (lowering) time; see codegen's static checks and vm's opcode handlers.
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

	// Bool logic. && and xor are strict; || is lowered with explicit jumps
	// by CodeGen instead of an opcode of its own.
	OpAnd
	OpXor

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	OpMakeList // A = element count
)

// ConstKind tags a Chunk's constant table entries.
type ConstKind int

const (
	ConstNumber ConstKind = iota
	ConstString
	ConstBool
	ConstIP
	ConstRegexpSrc // compiled lazily into a *regexp.Regexp on first evaluation, cached per VM
)

// Constant is one entry in a Chunk's constant pool.
type Constant struct {
	Kind   ConstKind
	Number int64
	Str    string
	Bool   bool
}

// Instruction is one bytecode instruction; A and B are operands whose
// meaning depends on Op (documented alongside each OpCode above).
type Instruction struct {
	Op OpCode
	A  int
	B  int
}

// Chunk is a function body: its instructions and constant pool.
type Chunk struct {
	Code      []Instruction
	Consts    []Constant
	NumLocals int
}

func (c *Chunk) Emit(op OpCode, a, b int) int {
	c.Code = append(c.Code, Instruction{Op: op, A: a, B: b})
	return len(c.Code) - 1
}

func (c *Chunk) AddConstNumber(v int64) int {
	c.Consts = append(c.Consts, Constant{Kind: ConstNumber, Number: v})
	return len(c.Consts) - 1
}

func (c *Chunk) AddConstString(s string) int {
	c.Consts = append(c.Consts, Constant{Kind: ConstString, Str: s})
	return len(c.Consts) - 1
}

func (c *Chunk) AddConstBool(b bool) int {
	c.Consts = append(c.Consts, Constant{Kind: ConstBool, Bool: b})
	return len(c.Consts) - 1
}

func (c *Chunk) AddConstIP(s string) int {
	c.Consts = append(c.Consts, Constant{Kind: ConstIP, Str: s})
	return len(c.Consts) - 1
}

func (c *Chunk) AddConstRegexp(pattern string) int {
	c.Consts = append(c.Consts, Constant{Kind: ConstRegexpSrc, Str: pattern})
	return len(c.Consts) - 1
}

// Function is one compiled Flow function or handler. Handlers always
// return Bool and are invoked with an implicit opaque user-context the VM
// threads through rather than storing as an explicit parameter slot,
// modeled as VM-level state rather than a Go-level parameter to keep
// Invoke's signature stable across handlers.
type Function struct {
	Name       string
	NumParams  int
	ReturnKind types.Kind
	IsHandler  bool
	Chunk      Chunk
}

// Global describes one module-scope variable slot, populated once by the
// module initializer.
type Global struct {
	Name string
	Kind types.Kind
}

// Module is the result of compiling one Flow source file: its functions,
// its global-variable slots, and the index of the synthetic initializer
// function that runs their initializers exactly once.
type Module struct {
	Functions      []*Function
	Globals        []Global
	InitializerIdx int
	// HandlerNames maps handler name -> index into Functions, letting the
	// JITEngine build HandlerIndex without rescanning the AST.
	HandlerNames map[string]int
}

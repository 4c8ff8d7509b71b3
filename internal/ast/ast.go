// Package ast defines the typed syntax tree that the Parser produces and
// CodeGen consumes. The Parser's own implementation is a collaborator and
// out of scope for this core; only this node set is the contract between
// them.
package ast

import "flowcore/internal/token"

// Node is any AST node; Pos reports its source location for diagnostics.
type Node interface {
	Pos() token.Position
}

// Operator enumerates the binary and unary operators of the dispatch table,
// by symbol rather than by token.Kind so CodeGen's switch does not depend
// on lexical spelling.
type Operator int

const (
	OpBang Operator = iota // unary !
	OpNeg                  // unary -
	OpPos                  // unary +

	OpAnd // &&
	OpOr  // ||
	OpXor // xor

	OpAssign // =

	OpAdd // +
	OpSub // -
	OpMul // *
	OpDiv // /
	OpPow // **

	OpEq
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte

	OpPrefixMatch // =^
	OpSuffixMatch // =$
	OpRegexMatch  // =~

	OpIn // in
)

// Unit is the root of a single compiled source file: its imports, the
// functions/handlers it declares, and its top-level (global) variables.
type Unit struct {
	Imports   []*Import
	Functions []*FunDecl
	Variables []*VarDecl
	Position  token.Position
}

func (u *Unit) Pos() token.Position { return u.Position }

// NewUnit constructs a Unit anchored at pos (the position of its first token).
func NewUnit(pos token.Position) *Unit { return &Unit{Position: pos} }

// Import names another Flow source file whose top-level declarations
// become visible, unqualified, in the importing Unit.
type Import struct {
	Path     string
	Position token.Position
}

func (i *Import) Pos() token.Position { return i.Position }

// VarDecl is a top-level ("global") or local variable declaration. Its
// static kind is inferred from Value's type, never declared.
type VarDecl struct {
	Name     string
	Value    Expr
	Global   bool
	Position token.Position
}

func (v *VarDecl) Pos() token.Position { return v.Position }

// FunDecl is either a Flow function (returns a value) or a handler (returns
// bool and accepts the opaque per-request user-context implicitly).
type FunDecl struct {
	Name     string
	IsHandler bool
	Params   []string
	Body     *CompoundStmt
	Position token.Position
}

func (f *FunDecl) Pos() token.Position { return f.Position }

// ---------------- Statements ----------------

// Stmt is one of CompoundStmt, CondStmt, ExprStmt, ReturnStmt, or
// LocalVarStmt; Return is the handler/function early exit mechanism.
type Stmt interface {
	Node
	stmtNode()
}

type CompoundStmt struct {
	Stmts    []Stmt
	Position token.Position
}

func (s *CompoundStmt) Pos() token.Position { return s.Position }
func (*CompoundStmt) stmtNode()             {}

type CondStmt struct {
	Cond     Expr
	Then     Stmt
	Else     Stmt // nil if no else clause
	Position token.Position
}

func (s *CondStmt) Pos() token.Position { return s.Position }
func (*CondStmt) stmtNode()             {}

type ExprStmt struct {
	X        Expr
	Position token.Position
}

func (s *ExprStmt) Pos() token.Position { return s.Position }
func (*ExprStmt) stmtNode()             {}

// ReturnStmt exits the enclosing function/handler. A bare return in a
// handler reports not-consumed; a handler's Result is its verdict, so
// `return true;` reports the request as consumed. A handler-kind call
// returning true is the other way a handler signals "consumed".
type ReturnStmt struct {
	Result   Expr // nil for bare "return;"
	Position token.Position
}

func (s *ReturnStmt) Pos() token.Position { return s.Position }
func (*ReturnStmt) stmtNode()             {}

// LocalVarStmt declares a local variable inside a function/handler body.
type LocalVarStmt struct {
	Decl     *VarDecl
	Position token.Position
}

func (s *LocalVarStmt) Pos() token.Position { return s.Position }
func (*LocalVarStmt) stmtNode()             {}

// ---------------- Expressions ----------------

type Expr interface {
	Node
	exprNode()
}

type NumberLit struct {
	Value    int64
	Position token.Position
}

func (e *NumberLit) Pos() token.Position { return e.Position }
func (*NumberLit) exprNode()             {}

type StringLit struct {
	Value    string
	Position token.Position
}

func (e *StringLit) Pos() token.Position { return e.Position }
func (*StringLit) exprNode()             {}

type BoolLit struct {
	Value    bool
	Position token.Position
}

func (e *BoolLit) Pos() token.Position { return e.Position }
func (*BoolLit) exprNode()             {}

type IPLit struct {
	Value    string
	Position token.Position
}

func (e *IPLit) Pos() token.Position { return e.Position }
func (*IPLit) exprNode()             {}

type RegexpLit struct {
	Pattern  string
	Position token.Position
}

func (e *RegexpLit) Pos() token.Position { return e.Position }
func (*RegexpLit) exprNode()             {}

type ListLit struct {
	Elements []Expr
	Position token.Position
}

func (e *ListLit) Pos() token.Position { return e.Position }
func (*ListLit) exprNode()             {}

// VarRef names a local variable, a global variable, a native
// Variable/Property entry, or a declared function/handler. CodeGen decides
// which by looking it up in the scope stack first, then the NativeRegistry,
// then the function table.
type VarRef struct {
	Name     string
	Position token.Position
}

func (e *VarRef) Pos() token.Position { return e.Position }
func (*VarRef) exprNode()             {}

type UnaryExpr struct {
	Op       Operator
	X        Expr
	Position token.Position
}

func (e *UnaryExpr) Pos() token.Position { return e.Position }
func (*UnaryExpr) exprNode()             {}

type BinaryExpr struct {
	Op       Operator
	Left     Expr
	Right    Expr
	Position token.Position
}

func (e *BinaryExpr) Pos() token.Position { return e.Position }
func (*BinaryExpr) exprNode()             {}

// AssignExpr is the `=` operator: Name must resolve to a local variable
// reference. Assigning to a native Variable/Property or to a global from
// inside a handler/function body is a semantic error.
type AssignExpr struct {
	Name     string
	Value    Expr
	Position token.Position
}

func (e *AssignExpr) Pos() token.Position { return e.Position }
func (*AssignExpr) exprNode()             {}

type CallExpr struct {
	Callee   string
	Args     []Expr
	Position token.Position
}

func (e *CallExpr) Pos() token.Position { return e.Position }
func (*CallExpr) exprNode()             {}

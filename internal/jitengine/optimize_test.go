package jitengine

import (
	"testing"

	"flowcore/internal/ir"
)

func TestCollapseJumpChainsFlattensChain(t *testing.T) {
	c := &ir.Chunk{Code: []ir.Instruction{
		{Op: ir.OpJump, A: 1},
		{Op: ir.OpJump, A: 2},
		{Op: ir.OpConst, A: 0},
		{Op: ir.OpReturn},
	}}
	collapseJumpChains(c)
	if c.Code[0].A != 2 {
		t.Fatalf("expected the first jump to be retargeted past the chain to 2, got %d", c.Code[0].A)
	}
}

func TestFoldDoubleNotRemovesPair(t *testing.T) {
	c := &ir.Chunk{Code: []ir.Instruction{
		{Op: ir.OpConst, A: 0},
		{Op: ir.OpNot},
		{Op: ir.OpNot},
		{Op: ir.OpReturn},
	}}
	foldDoubleNot(c)
	for _, ins := range c.Code {
		if ins.Op == ir.OpNot {
			t.Fatalf("expected both OpNot instructions to be removed, got %+v", c.Code)
		}
	}
	if len(c.Code) != 2 {
		t.Fatalf("expected 2 remaining instructions, got %d: %+v", len(c.Code), c.Code)
	}
}

func TestFoldDoubleNotRemapsJumpTargetsPastTheRemovedPair(t *testing.T) {
	// A jump landing after the !! pair must be retargeted two slots earlier
	// once the pair is removed, or it overshoots into the wrong instruction.
	c := &ir.Chunk{Code: []ir.Instruction{
		{Op: ir.OpJumpIfFalse, A: 4}, // should become 2
		{Op: ir.OpNot},
		{Op: ir.OpNot},
		{Op: ir.OpConst, A: 0},
		{Op: ir.OpReturn},
	}}
	foldDoubleNot(c)
	if len(c.Code) != 3 {
		t.Fatalf("expected 3 remaining instructions, got %d: %+v", len(c.Code), c.Code)
	}
	if c.Code[0].A != 2 {
		t.Fatalf("expected the jump target to be remapped to 2, got %d", c.Code[0].A)
	}
	if c.Code[2].Op != ir.OpReturn {
		t.Fatalf("expected instruction 2 to be the return, got %+v", c.Code[2])
	}
}

func TestPruneUnreachableAfterReturnDropsDeadCode(t *testing.T) {
	c := &ir.Chunk{Code: []ir.Instruction{
		{Op: ir.OpConst, A: 0},
		{Op: ir.OpReturn},
		{Op: ir.OpConst, A: 1}, // unreachable, no jump targets it
		{Op: ir.OpReturn},
	}}
	pruneUnreachableAfterReturn(c)
	if len(c.Code) != 2 {
		t.Fatalf("expected unreachable tail to be pruned, got %d instructions: %+v", len(c.Code), c.Code)
	}
}

func TestPruneUnreachableAfterReturnKeepsJumpTargets(t *testing.T) {
	// Code after a return is kept when another instruction still jumps to it.
	c := &ir.Chunk{Code: []ir.Instruction{
		{Op: ir.OpJump, A: 2},
		{Op: ir.OpReturn},
		{Op: ir.OpConst, A: 0}, // targeted by instruction 0's jump
		{Op: ir.OpReturn},
	}}
	pruneUnreachableAfterReturn(c)
	if len(c.Code) != 4 {
		t.Fatalf("expected the jump-targeted instruction to survive, got %d instructions: %+v", len(c.Code), c.Code)
	}
}

func TestVerifyRejectsOutOfRangeJump(t *testing.T) {
	mod := &ir.Module{Functions: []*ir.Function{
		{Name: "main", Chunk: ir.Chunk{Code: []ir.Instruction{
			{Op: ir.OpJump, A: 99},
			{Op: ir.OpReturn},
		}}},
	}}
	if err := verify(mod); err == nil {
		t.Fatalf("expected an out-of-range jump target to fail verification")
	}
}

func TestVerifyRejectsMissingTrailingReturn(t *testing.T) {
	mod := &ir.Module{Functions: []*ir.Function{
		{Name: "main", Chunk: ir.Chunk{
			Code:   []ir.Instruction{{Op: ir.OpConst, A: 0}},
			Consts: []ir.Constant{{Kind: ir.ConstBool, Bool: true}},
		}},
	}}
	if err := verify(mod); err == nil {
		t.Fatalf("expected a function not ending in OpReturn to fail verification")
	}
}

func TestVerifyAcceptsWellFormedModule(t *testing.T) {
	mod := &ir.Module{Functions: []*ir.Function{
		{Name: "main", Chunk: ir.Chunk{
			Code:   []ir.Instruction{{Op: ir.OpConst, A: 0}, {Op: ir.OpReturn}},
			Consts: []ir.Constant{{Kind: ir.ConstBool, Bool: true}},
		}},
	}}
	if err := verify(mod); err != nil {
		t.Fatalf("expected a well-formed module to verify, got %v", err)
	}
}

func TestOptimizeLevelZeroIsANoOp(t *testing.T) {
	mod := &ir.Module{Functions: []*ir.Function{
		{Name: "main", Chunk: ir.Chunk{Code: []ir.Instruction{
			{Op: ir.OpConst, A: 0},
			{Op: ir.OpNot},
			{Op: ir.OpNot},
			{Op: ir.OpReturn},
		}}},
	}}
	before := len(mod.Functions[0].Chunk.Code)
	optimize(mod, 0)
	if len(mod.Functions[0].Chunk.Code) != before {
		t.Fatalf("expected level 0 to leave the chunk untouched")
	}
}

func TestClampOptLevel(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 2: 2, 4: 4, 9: 4}
	for in, want := range cases {
		if got := clampOptLevel(in); got != want {
			t.Fatalf("clampOptLevel(%d) = %d, want %d", in, got, want)
		}
	}
}

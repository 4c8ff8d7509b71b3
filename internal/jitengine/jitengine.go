// Package jitengine implements the JITEngine: it owns the IR module and the
// execution engine, materializes a handler's callable entry point, and
// tears both down on close/reset. There is no native machine code here:
// "materialize" means constructing the bytecode vm.VM and running the
// module initializer, but the lifecycle contract (reinitialize is
// idempotent, reset is close+reinitialize, every tracked function is
// released before the engine itself) is kept verbatim.
package jitengine

import (
	"fmt"

	"flowcore/internal/ast"
	"flowcore/internal/codegen"
	"flowcore/internal/ir"
	"flowcore/internal/registry"
	"flowcore/internal/vm"
)

// HandlerRef identifies one compiled handler by name and its stable index
// into the module's function table.
type HandlerRef struct {
	Name  string
	Index int
}

// CompiledUnit is the result of compiling one source file: it owns the IR
// module and the VM, and exposes a stable HandlerIndex. A CompiledUnit is
// single-threaded: it must not be compiled, reset, or invoked concurrently
// with itself.
type CompiledUnit struct {
	mod      *ir.Module
	reg      *registry.Registry
	vm       *vm.VM
	handlers []HandlerRef
	optLevel int
}

// Compile lowers unit through CodeGen, verifies the resulting module,
// optimizes it at optLevel (clamped to [0,4]), materializes a VM, and runs
// the module initializer exactly once. Semantic/codegen errors are returned
// alongside a nil unit so the caller (Runtime.Compile) can report every one
// of them through its error handler.
func Compile(unit *ast.Unit, reg *registry.Registry, optLevel int) (*CompiledUnit, []*codegen.CompileError, error) {
	mod, errs := codegen.Compile(unit, reg)
	if len(errs) > 0 {
		return nil, errs, nil
	}

	if err := verify(mod); err != nil {
		return nil, nil, fmt.Errorf("jitengine: verification failed: %w", err)
	}

	optimize(mod, clampOptLevel(optLevel))

	cu := &CompiledUnit{
		mod:      mod,
		reg:      reg,
		vm:       vm.New(mod, reg),
		optLevel: clampOptLevel(optLevel),
	}
	for name, idx := range mod.HandlerNames {
		cu.handlers = append(cu.handlers, HandlerRef{Name: name, Index: idx})
	}

	if err := cu.vm.RunInitializer(); err != nil {
		return nil, nil, fmt.Errorf("jitengine: module initializer failed: %w", err)
	}
	return cu, nil, nil
}

func clampOptLevel(n int) int {
	if n < 0 {
		return 0
	}
	if n > 4 {
		return 4
	}
	return n
}

// ListHandlers returns every handler materialized for this unit, in no
// particular order.
func (cu *CompiledUnit) ListHandlers() []HandlerRef {
	out := make([]HandlerRef, len(cu.handlers))
	copy(out, cu.handlers)
	return out
}

// FindHandler resolves a handler by name.
func (cu *CompiledUnit) FindHandler(name string) (HandlerRef, bool) {
	for _, h := range cu.handlers {
		if h.Name == name {
			return h, true
		}
	}
	return HandlerRef{}, false
}

// Invoke runs the handler identified by h with the host's opaque userdata,
// returning true iff the request was consumed.
func (cu *CompiledUnit) Invoke(h HandlerRef, userdata interface{}) (bool, error) {
	return cu.vm.CallHandler(h.Index, userdata)
}

// Close releases cu's materialized state: every tracked function's machine
// code is released before the engine itself is torn down. There is no
// native code to free in this implementation, but Close still drops every
// reference so cu cannot be mistakenly reused.
func (cu *CompiledUnit) Close() {
	cu.mod = nil
	cu.vm = nil
	cu.handlers = nil
}

// verify is the JIT's structural check: every jump target and call target
// must be in range, and every Chunk must end with an explicit OpReturn on
// its longest straight-line path so the VM never runs off the end of its
// code array without a return (codegen.go always appends a catch-all, so
// this should never fail against CodeGen's own output; it exists to catch
// a malformed Module from any future producer).
func verify(mod *ir.Module) error {
	for _, fn := range mod.Functions {
		if len(fn.Chunk.Code) == 0 {
			return fmt.Errorf("function %q has an empty body", fn.Name)
		}
		for i, ins := range fn.Chunk.Code {
			switch ins.Op {
			case ir.OpJump, ir.OpJumpIfFalse, ir.OpJumpIfTrue:
				if ins.A < 0 || ins.A > len(fn.Chunk.Code) {
					return fmt.Errorf("function %q: instruction %d jumps out of range (%d)", fn.Name, i, ins.A)
				}
			case ir.OpCallFunc, ir.OpCallHandler:
				if ins.A < 0 || ins.A >= len(mod.Functions) {
					return fmt.Errorf("function %q: instruction %d calls out-of-range function %d", fn.Name, i, ins.A)
				}
			case ir.OpConst:
				if ins.A < 0 || ins.A >= len(fn.Chunk.Consts) {
					return fmt.Errorf("function %q: instruction %d references out-of-range constant %d", fn.Name, i, ins.A)
				}
			}
		}
		last := fn.Chunk.Code[len(fn.Chunk.Code)-1]
		if last.Op != ir.OpReturn {
			return fmt.Errorf("function %q does not end with a return", fn.Name)
		}
	}
	return nil
}

// optimize runs a small battery of peephole passes over mod, scaled by
// level: level 0 disables every pass, levels 1-4 progressively enable more.
// Level 0 is a true no-op so a caller can always compare optimized vs.
// unoptimized behavior.
func optimize(mod *ir.Module, level int) {
	if level == 0 {
		return
	}
	for _, fn := range mod.Functions {
		collapseJumpChains(&fn.Chunk)
		if level >= 2 {
			foldDoubleNot(&fn.Chunk)
		}
		if level >= 3 {
			pruneUnreachableAfterReturn(&fn.Chunk)
		}
	}
}

// collapseJumpChains retargets any jump whose destination is itself an
// unconditional jump, so a chain of jumps is flattened to one hop.
func collapseJumpChains(c *ir.Chunk) {
	for i, ins := range c.Code {
		if ins.Op != ir.OpJump && ins.Op != ir.OpJumpIfFalse && ins.Op != ir.OpJumpIfTrue {
			continue
		}
		target := ins.A
		seen := map[int]bool{}
		for target >= 0 && target < len(c.Code) && c.Code[target].Op == ir.OpJump && !seen[target] {
			seen[target] = true
			target = c.Code[target].A
		}
		c.Code[i].A = target
	}
}

// foldDoubleNot removes a back-to-back OpNot, OpNot pair, which is a no-op
// (!!x evaluates to x's truthiness already coerced to Bool by the first Not,
// so only one Not is collapsible, a literal double application). Dropping
// the pair shifts every later instruction's index, so jump targets are
// remapped the same way pruneUnreachableAfterReturn remaps them.
func foldDoubleNot(c *ir.Chunk) {
	out := make([]ir.Instruction, 0, len(c.Code))
	remap := make([]int, len(c.Code))
	i := 0
	for i < len(c.Code) {
		if i+1 < len(c.Code) && c.Code[i].Op == ir.OpNot && c.Code[i+1].Op == ir.OpNot {
			remap[i] = len(out)
			remap[i+1] = len(out)
			i += 2
			continue
		}
		remap[i] = len(out)
		out = append(out, c.Code[i])
		i++
	}
	for i := range out {
		switch out[i].Op {
		case ir.OpJump, ir.OpJumpIfFalse, ir.OpJumpIfTrue:
			if out[i].A >= 0 && out[i].A < len(remap) {
				out[i].A = remap[out[i].A]
			}
		}
	}
	c.Code = out
}

// pruneUnreachableAfterReturn drops instructions between an OpReturn and
// the next jump target, since CodeGen never emits a fallthrough into them.
// Conservative: it only removes a run when no recorded jump targets it.
func pruneUnreachableAfterReturn(c *ir.Chunk) {
	targets := map[int]bool{}
	for _, ins := range c.Code {
		if ins.Op == ir.OpJump || ins.Op == ir.OpJumpIfFalse || ins.Op == ir.OpJumpIfTrue {
			targets[ins.A] = true
		}
	}
	out := make([]ir.Instruction, 0, len(c.Code))
	remap := make([]int, len(c.Code))
	skipping := false
	for i, ins := range c.Code {
		if skipping && !targets[i] {
			remap[i] = -1
			continue
		}
		skipping = false
		remap[i] = len(out)
		out = append(out, ins)
		if ins.Op == ir.OpReturn {
			skipping = true
		}
	}
	for i := range out {
		switch out[i].Op {
		case ir.OpJump, ir.OpJumpIfFalse, ir.OpJumpIfTrue:
			if out[i].A >= 0 && out[i].A < len(remap) && remap[out[i].A] >= 0 {
				out[i].A = remap[out[i].A]
			}
		}
	}
	c.Code = out
}

package jitengine_test

import (
	"testing"

	"flowcore/internal/jitengine"
	"flowcore/internal/parser"
	"flowcore/internal/registry"
	"flowcore/internal/types"
)

func TestCompileEmptyHandlerNeverConsumes(t *testing.T) {
	unit, errs := parser.ParseUnit(`handler main {}`)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	reg := registry.New()
	cu, cerrs, err := jitengine.Compile(unit, reg, 1)
	if err != nil || len(cerrs) > 0 {
		t.Fatalf("compile failed: err=%v cerrs=%v", err, cerrs)
	}
	defer cu.Close()

	h, ok := cu.FindHandler("main")
	if !ok {
		t.Fatalf("expected to find handler 'main'")
	}
	consumed, err := cu.Invoke(h, nil)
	if err != nil {
		t.Fatalf("invoke error: %v", err)
	}
	if consumed {
		t.Fatalf("empty handler body must never consume the request")
	}
}

func TestNativeHandlerReturningTrueShortCircuitsHandler(t *testing.T) {
	reg := registry.New()
	if _, err := reg.RegisterHandler("block.deny", func(_ interface{}, argv []registry.Value) {
		argv[0] = registry.Value{Kind: types.Bool, Number: 1}
	}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	unit, errs := parser.ParseUnit(`
handler main {
	block.deny();
	return false;
}
`)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	cu, cerrs, err := jitengine.Compile(unit, reg, 0)
	if err != nil || len(cerrs) > 0 {
		t.Fatalf("compile failed: err=%v cerrs=%v", err, cerrs)
	}
	defer cu.Close()

	h, _ := cu.FindHandler("main")
	consumed, err := cu.Invoke(h, nil)
	if err != nil {
		t.Fatalf("invoke error: %v", err)
	}
	if !consumed {
		t.Fatalf("handler-kind call returning true must short-circuit the enclosing handler")
	}
}

func TestOrShortCircuitsRightOperand(t *testing.T) {
	reg := registry.New()
	calls := 0
	if _, err := reg.RegisterFunction("probe.mark", types.Bool, func(_ interface{}, argv []registry.Value) {
		calls++
		argv[0] = registry.Value{Kind: types.Bool, Number: 1}
	}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	unit, errs := parser.ParseUnit(`
handler main {
	var ok = true || probe.mark();
	return ok;
}
`)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	cu, cerrs, err := jitengine.Compile(unit, reg, 0)
	if err != nil || len(cerrs) > 0 {
		t.Fatalf("compile failed: err=%v cerrs=%v", err, cerrs)
	}
	defer cu.Close()

	h, _ := cu.FindHandler("main")
	consumed, err := cu.Invoke(h, nil)
	if err != nil {
		t.Fatalf("invoke error: %v", err)
	}
	if !consumed {
		t.Fatalf("expected true")
	}
	if calls != 0 {
		t.Fatalf("|| must short-circuit: probe.mark should not have been called, was called %d times", calls)
	}
}

func TestCloseIsSafeToCallTwice(t *testing.T) {
	reg := registry.New()
	unit, errs := parser.ParseUnit(`handler main { return true; }`)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	cu, cerrs, err := jitengine.Compile(unit, reg, 4)
	if err != nil || len(cerrs) > 0 {
		t.Fatalf("compile failed: err=%v cerrs=%v", err, cerrs)
	}
	h, _ := cu.FindHandler("main")
	if consumed, err := cu.Invoke(h, nil); err != nil || !consumed {
		t.Fatalf("expected consumed=true, got %v err=%v", consumed, err)
	}
	cu.Close()
	cu.Close() // Close must be safe to call more than once
}

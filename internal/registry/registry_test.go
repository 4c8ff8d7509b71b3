package registry_test

import (
	"testing"

	"flowcore/internal/registry"
	"flowcore/internal/types"
)

func noop(_ interface{}, argv []registry.Value) { argv[0] = registry.Value{Kind: types.Void} }

func TestRegisterAndFindByName(t *testing.T) {
	r := registry.New()
	idx, err := r.RegisterFunction("demo.fn", types.Number, noop, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := r.Find("demo.fn"); got != idx {
		t.Fatalf("expected Find to return %d, got %d", idx, got)
	}
	if r.Find("missing") != -1 {
		t.Fatalf("expected Find on an unregistered name to return -1")
	}
}

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	r := registry.New()
	if _, err := r.RegisterFunction("demo.fn", types.Number, noop, nil); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := r.RegisterProperty("demo.fn", types.Number, noop, nil); err == nil {
		t.Fatalf("expected a duplicate name registration to fail even across entry kinds")
	}
}

func TestEntryBoundsChecking(t *testing.T) {
	r := registry.New()
	if _, ok := r.Entry(0); ok {
		t.Fatalf("expected Entry to fail on an empty registry")
	}
	idx, _ := r.RegisterVariable("demo.var", types.Bool, noop, nil)
	if _, ok := r.Entry(idx); !ok {
		t.Fatalf("expected Entry to succeed for a registered index")
	}
	if _, ok := r.Entry(idx + 1); ok {
		t.Fatalf("expected Entry to fail one past the last registered index")
	}
}

func TestCallableFromSetup(t *testing.T) {
	for _, k := range []registry.Kind{
		registry.SharedFunction, registry.SharedProperty,
		registry.Function, registry.Property, registry.Variable, registry.Handler,
	} {
		if !k.CallableFromSetup() {
			t.Fatalf("expected %v to be callable from inside a handler/function body", k)
		}
	}
	for _, k := range []registry.Kind{registry.SetupFunction, registry.SetupProperty} {
		if k.CallableFromSetup() {
			t.Fatalf("expected %v to not be callable from inside a handler/function body", k)
		}
	}
}

func TestRegisterHandlerAlwaysReturnsBool(t *testing.T) {
	r := registry.New()
	idx, err := r.RegisterHandler("demo.handler", noop, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	entry, _ := r.Entry(idx)
	if entry.ReturnKind != types.Bool {
		t.Fatalf("expected a Handler entry's ReturnKind to always be Bool, got %v", entry.ReturnKind)
	}
}

func TestLen(t *testing.T) {
	r := registry.New()
	if r.Len() != 0 {
		t.Fatalf("expected a fresh registry to have Len() == 0")
	}
	r.RegisterFunction("a", types.Number, noop, nil)
	r.RegisterFunction("b", types.Number, noop, nil)
	if r.Len() != 2 {
		t.Fatalf("expected Len() == 2, got %d", r.Len())
	}
}

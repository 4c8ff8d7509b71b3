// Package registry implements the NativeRegistry: the host-facing table
// that host plugins use to publish callable functions, properties,
// variables, and handlers to Flow.
package registry

import (
	"fmt"

	"flowcore/internal/types"
)

// Kind classifies a NativeEntry. Setup-kind entries may only run during the
// module initializer, never from inside a handler/function body; Shared-
// kind entries are safe to invoke concurrently across CompiledUnits.
type Kind int

const (
	SetupFunction Kind = iota
	SetupProperty
	SharedFunction
	SharedProperty
	Function
	Property
	Variable
	Handler
)

func (k Kind) String() string {
	switch k {
	case SetupFunction:
		return "SetupFunction"
	case SetupProperty:
		return "SetupProperty"
	case SharedFunction:
		return "SharedFunction"
	case SharedProperty:
		return "SharedProperty"
	case Function:
		return "Function"
	case Property:
		return "Property"
	case Variable:
		return "Variable"
	case Handler:
		return "Handler"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CallableFromSetup reports whether entries of kind k may be referenced
// from inside a handler or function body. Setup-kind entries are
// config-time only.
func (k Kind) CallableFromSetup() bool {
	return k != SetupFunction && k != SetupProperty
}

// Callback is the host-provided implementation behind a NativeEntry. argv
// follows the ABI's argument-marshalling convention: argv[0] is the return
// slot, argv[1:] are the call arguments.
type Callback func(userdata interface{}, argv []Value)

// Value is the registry-level argument/return representation. It is kept
// distinct from both value.Value (VM-internal) and abi.Record (wire format)
// so this package has no dependency on either; the Invoker package is
// responsible for translating between all three at the call boundary.
type Value struct {
	Kind   types.Kind
	Number int64
	Str    string
	Buf    []byte
	Ptr    interface{} // array/regexp/ip/function payloads too varied for Str/Buf
}

// Entry is one published host capability.
type Entry struct {
	Name       string
	Kind       Kind
	ReturnKind types.Kind
	Callback   Callback
	UserData   interface{}
}

// Registry is the NativeRegistry: entries indexed 0..N-1, looked up by name
// at compile time and referenced by index thereafter; generated code embeds
// the numeric index, never the name.
type Registry struct {
	entries []Entry
	byName  map[string]int
	closed  bool
}

// New creates an empty NativeRegistry.
func New() *Registry {
	return &Registry{byName: make(map[string]int)}
}

func (r *Registry) register(name string, kind Kind, returnKind types.Kind, cb Callback, userdata interface{}) (int, error) {
	if _, exists := r.byName[name]; exists {
		return -1, fmt.Errorf("registry: name %q already registered", name)
	}
	idx := len(r.entries)
	r.entries = append(r.entries, Entry{
		Name: name, Kind: kind, ReturnKind: returnKind, Callback: cb, UserData: userdata,
	})
	r.byName[name] = idx
	return idx, nil
}

func (r *Registry) RegisterSetupFunction(name string, returnKind types.Kind, cb Callback, userdata interface{}) (int, error) {
	return r.register(name, SetupFunction, returnKind, cb, userdata)
}

func (r *Registry) RegisterSetupProperty(name string, returnKind types.Kind, cb Callback, userdata interface{}) (int, error) {
	return r.register(name, SetupProperty, returnKind, cb, userdata)
}

func (r *Registry) RegisterSharedFunction(name string, returnKind types.Kind, cb Callback, userdata interface{}) (int, error) {
	return r.register(name, SharedFunction, returnKind, cb, userdata)
}

func (r *Registry) RegisterSharedProperty(name string, returnKind types.Kind, cb Callback, userdata interface{}) (int, error) {
	return r.register(name, SharedProperty, returnKind, cb, userdata)
}

func (r *Registry) RegisterFunction(name string, returnKind types.Kind, cb Callback, userdata interface{}) (int, error) {
	return r.register(name, Function, returnKind, cb, userdata)
}

func (r *Registry) RegisterProperty(name string, returnKind types.Kind, cb Callback, userdata interface{}) (int, error) {
	return r.register(name, Property, returnKind, cb, userdata)
}

func (r *Registry) RegisterVariable(name string, returnKind types.Kind, cb Callback, userdata interface{}) (int, error) {
	return r.register(name, Variable, returnKind, cb, userdata)
}

// RegisterHandler publishes a native Handler entry. Its callback must write
// a Bool to argv[0].
func (r *Registry) RegisterHandler(name string, cb Callback, userdata interface{}) (int, error) {
	return r.register(name, Handler, types.Bool, cb, userdata)
}

// Find looks up a published entry by name, returning its stable index or
// -1 if unknown.
func (r *Registry) Find(name string) int {
	if idx, ok := r.byName[name]; ok {
		return idx
	}
	return -1
}

// Entry returns the entry at idx. The caller (the Invoker) is expected to
// have validated idx against a compile-time reference.
func (r *Registry) Entry(idx int) (Entry, bool) {
	if idx < 0 || idx >= len(r.entries) {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// Len reports how many entries are registered.
func (r *Registry) Len() int { return len(r.entries) }

// Package runtime implements the core's public embedding API: the facade a
// host process links against to compile Flow source and invoke its
// handlers. It wires together Loader (and through it the Parser), CodeGen,
// and JITEngine; a host such as cmd/flowd imports it alongside package
// registry, where native entries are published.
package runtime

import (
	"fmt"

	"flowcore/internal/jitengine"
	"flowcore/internal/loader"
	"flowcore/internal/registry"
)

// HandlerRef re-exports jitengine.HandlerRef under the embedding API's own
// name.
type HandlerRef = jitengine.HandlerRef

// Runtime is the host-facing handle. It binds one NativeRegistry and holds
// at most one CompiledUnit at a time; compiling a new source file implicitly
// resets whatever was compiled before.
type Runtime struct {
	reg          *registry.Registry
	optLevel     int
	errorHandler func(message string)
	unit         *jitengine.CompiledUnit
}

// New binds a Runtime to reg, the NativeRegistry-providing backend.
func New(reg *registry.Registry) *Runtime {
	return &Runtime{reg: reg, errorHandler: func(string) {}}
}

// SetOptimizationLevel sets the JIT optimization level for future compiles;
// out-of-range values are clamped by jitengine.Compile.
func (rt *Runtime) SetOptimizationLevel(n int) { rt.optLevel = n }

// SetErrorHandler installs the callback that receives every reported
// compile error message.
func (rt *Runtime) SetErrorHandler(fn func(message string)) {
	if fn == nil {
		fn = func(string) {}
	}
	rt.errorHandler = fn
}

// Compile parses, compiles, and JIT-materializes the source file at path,
// running its module initializer before returning. Any previously compiled
// unit is closed first. Returns false and reports through the error handler
// on any compile failure.
func (rt *Runtime) Compile(path string) bool {
	if rt.unit != nil {
		rt.unit.Close()
		rt.unit = nil
	}

	unit, loadErrs := loader.Load(path)
	if len(loadErrs) > 0 {
		for _, e := range loadErrs {
			rt.report("%s", e)
		}
		return false
	}

	cu, compileErrs, jitErr := jitengine.Compile(unit, rt.reg, rt.optLevel)
	if len(compileErrs) > 0 {
		for _, e := range compileErrs {
			rt.report("%s", e.Error())
		}
		return false
	}
	if jitErr != nil {
		rt.report("%s", jitErr.Error())
		return false
	}

	rt.unit = cu
	return true
}

func (rt *Runtime) report(format string, args ...interface{}) {
	rt.errorHandler(fmt.Sprintf(format, args...))
}

// ListHandlers returns every handler in the currently compiled unit. It is
// empty when nothing has been successfully compiled.
func (rt *Runtime) ListHandlers() []HandlerRef {
	if rt.unit == nil {
		return nil
	}
	return rt.unit.ListHandlers()
}

// FindHandler resolves a handler by name in the currently compiled unit.
func (rt *Runtime) FindHandler(name string) (HandlerRef, bool) {
	if rt.unit == nil {
		return HandlerRef{}, false
	}
	return rt.unit.FindHandler(name)
}

// Invoke runs h with userdata, returning true iff the request was consumed.
func (rt *Runtime) Invoke(h HandlerRef, userdata interface{}) (bool, error) {
	if rt.unit == nil {
		return false, fmt.Errorf("runtime: no unit compiled")
	}
	return rt.unit.Invoke(h, userdata)
}

// Close releases the currently compiled unit, if any.
func (rt *Runtime) Close() {
	if rt.unit != nil {
		rt.unit.Close()
		rt.unit = nil
	}
}

// Reset is close followed by readiness for a fresh compile. Since this
// Runtime has no standing engine state outside of its CompiledUnit, Reset is
// simply Close: the next Compile call reinitializes everything from
// scratch.
func (rt *Runtime) Reset() { rt.Close() }

package hostdemo

import (
	"sync"
	"sync/atomic"

	"flowcore/internal/registry"
	"flowcore/internal/types"
)

// UpstreamRouter implements round-robin backend selection behind a single
// native Handler entry, `upstream.route`, grounded on the `director`
// plugin's backend-selection role minus the actual reverse-proxy I/O.
// Registering it as a Handler exercises the Handler-kind call-and-short-
// circuit path end to end: when it "selects" a backend it returns true,
// which CodeGen's compileTopLevelCall lowers into an immediate `return
// true` from the enclosing Flow handler.
type UpstreamRouter struct {
	backends []string
	next     uint64

	mu       sync.Mutex
	lastPick string
}

// RegisterUpstreamRoute publishes `upstream.route` over backends, selecting
// one per call in round-robin order. The returned *UpstreamRouter exposes
// LastPick so the host can log or proxy to the chosen backend itself.
func RegisterUpstreamRoute(reg *registry.Registry, backends []string) (*UpstreamRouter, error) {
	r := &UpstreamRouter{backends: append([]string(nil), backends...)}
	_, err := reg.RegisterHandler("upstream.route", r.route, nil)
	return r, err
}

// LastPick returns the most recently selected backend, or "" if route has
// never been called.
func (r *UpstreamRouter) LastPick() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPick
}

func (r *UpstreamRouter) route(_ interface{}, argv []registry.Value) {
	if len(r.backends) == 0 {
		argv[0] = registry.Value{Kind: types.Bool, Number: 0}
		return
	}
	idx := atomic.AddUint64(&r.next, 1) - 1
	pick := r.backends[idx%uint64(len(r.backends))]
	r.mu.Lock()
	r.lastPick = pick
	r.mu.Unlock()
	argv[0] = registry.Value{Kind: types.Bool, Number: 1}
}

package hostdemo

import (
	"fmt"

	"flowcore/internal/registry"
)

// Options configures which native entries Register publishes and how the
// demo's Store is backed.
type Options struct {
	SQLitePath string   // required unless PGDSN is set
	PGDSN      string   // optional, overrides SQLitePath
	Backends   []string // upstream.route's round-robin backend list
}

// Register opens a Store per opts and publishes every hostdemo native entry
// into reg, returning the Store (so the caller can query /stats) and the
// UpstreamRouter (so the caller can read LastPick).
func Register(reg *registry.Registry, opts Options) (*Store, *UpstreamRouter, error) {
	var store *Store
	var err error
	switch {
	case opts.PGDSN != "":
		store, err = OpenPostgres(opts.PGDSN)
	case opts.SQLitePath != "":
		store, err = OpenSQLite(opts.SQLitePath)
	default:
		return nil, nil, fmt.Errorf("hostdemo: Options must set SQLitePath or PGDSN")
	}
	if err != nil {
		return nil, nil, err
	}

	if err := RegisterAuth(reg); err != nil {
		return nil, nil, err
	}
	if err := RegisterRequestID(reg); err != nil {
		return nil, nil, err
	}
	if err := RegisterRemoteIP(reg); err != nil {
		return nil, nil, err
	}
	if err := RegisterUserTier(reg); err != nil {
		return nil, nil, err
	}
	if err := RegisterFS(reg); err != nil {
		return nil, nil, err
	}
	router, err := RegisterUpstreamRoute(reg, opts.Backends)
	if err != nil {
		return nil, nil, err
	}

	return store, router, nil
}

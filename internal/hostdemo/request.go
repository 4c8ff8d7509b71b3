// Package hostdemo's per-request state: flowd constructs one RequestContext
// per inbound HTTP request and passes it as the opaque userdata parameter to
// runtime.Invoke. Every native entry in this package that needs
// request-scoped data type-asserts userdata back to *RequestContext.
package hostdemo

import (
	"net"

	"github.com/google/uuid"

	"flowcore/internal/registry"
	"flowcore/internal/types"
)

// RequestContext is the opaque userdata threaded through one handler
// invocation.
type RequestContext struct {
	ID         string
	RemoteAddr net.IP
	UserName   string
	Store      *Store
}

// NewRequestContext assigns a fresh request ID before the Flow handler runs.
func NewRequestContext(remote net.IP, userName string, store *Store) *RequestContext {
	return &RequestContext{ID: uuid.NewString(), RemoteAddr: remote, UserName: userName, Store: store}
}

// RegisterRequestID publishes the `request.id` native Variable.
func RegisterRequestID(reg *registry.Registry) error {
	_, err := reg.RegisterVariable("request.id", types.String, requestID, nil)
	return err
}

func requestID(userdata interface{}, argv []registry.Value) {
	rc, ok := userdata.(*RequestContext)
	if !ok {
		argv[0] = registry.Value{Kind: types.String, Str: ""}
		return
	}
	argv[0] = registry.Value{Kind: types.String, Str: rc.ID}
}

// RegisterRemoteIP publishes the `request.remoteIP` native Variable, giving
// Flow scripts a way to exercise the IP value kind against live request data
// rather than only IP literals.
func RegisterRemoteIP(reg *registry.Registry) error {
	_, err := reg.RegisterVariable("request.remoteIP", types.IP, remoteIP, nil)
	return err
}

func remoteIP(userdata interface{}, argv []registry.Value) {
	rc, ok := userdata.(*RequestContext)
	if !ok || rc.RemoteAddr == nil {
		argv[0] = registry.Value{Kind: types.IP, Ptr: net.IPv4zero}
		return
	}
	argv[0] = registry.Value{Kind: types.IP, Ptr: rc.RemoteAddr}
}

// RegisterUserTier publishes the `req.user_tier` native Property, looking
// the caller's tier up in the Store's users table.
func RegisterUserTier(reg *registry.Registry) error {
	_, err := reg.RegisterProperty("req.user_tier", types.String, userTier, nil)
	return err
}

func userTier(userdata interface{}, argv []registry.Value) {
	rc, ok := userdata.(*RequestContext)
	if !ok || rc.Store == nil || rc.UserName == "" {
		argv[0] = registry.Value{Kind: types.String, Str: ""}
		return
	}
	tier, err := rc.Store.UserTier(rc.UserName)
	if err != nil {
		tier = ""
	}
	argv[0] = registry.Value{Kind: types.String, Str: tier}
}

package hostdemo

import (
	"net"
	"testing"

	"flowcore/internal/registry"
	"flowcore/internal/types"
)

func TestNewRequestContextAssignsUniqueID(t *testing.T) {
	rc1 := NewRequestContext(net.ParseIP("127.0.0.1"), "alice", nil)
	rc2 := NewRequestContext(net.ParseIP("127.0.0.1"), "alice", nil)
	if rc1.ID == "" {
		t.Fatalf("expected a non-empty request ID")
	}
	if rc1.ID == rc2.ID {
		t.Fatalf("expected distinct request IDs across requests")
	}
}

func TestRequestIDNativeReadsFromUserdata(t *testing.T) {
	rc := NewRequestContext(nil, "", nil)
	argv := []registry.Value{{}}
	requestID(rc, argv)
	if argv[0].Str != rc.ID {
		t.Fatalf("expected request.id to read the RequestContext's ID, got %q", argv[0].Str)
	}
}

func TestRequestIDNativeWithoutRequestContext(t *testing.T) {
	argv := []registry.Value{{}}
	requestID("not a request context", argv)
	if argv[0].Str != "" {
		t.Fatalf("expected an empty string when userdata isn't a *RequestContext, got %q", argv[0].Str)
	}
}

func TestRemoteIPNativeReadsFromUserdata(t *testing.T) {
	rc := NewRequestContext(net.ParseIP("203.0.113.5"), "", nil)
	argv := []registry.Value{{}}
	remoteIP(rc, argv)
	ip, ok := argv[0].Ptr.(net.IP)
	if !ok || !ip.Equal(net.ParseIP("203.0.113.5")) {
		t.Fatalf("expected request.remoteIP to round-trip the remote address, got %+v", argv[0])
	}
}

func TestUserTierLooksUpFromStore(t *testing.T) {
	dbPath := t.TempDir() + "/flowd.db"
	store, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	rc := NewRequestContext(nil, "nobody", store)
	argv := []registry.Value{{}}
	userTier(rc, argv)
	if argv[0].Kind != types.String || argv[0].Str != "" {
		t.Fatalf("expected an unknown user's tier to be empty, got %+v", argv[0])
	}
}

func TestUserTierWithoutUserNameIsEmpty(t *testing.T) {
	rc := NewRequestContext(nil, "", nil)
	argv := []registry.Value{{}}
	userTier(rc, argv)
	if argv[0].Str != "" {
		t.Fatalf("expected an empty tier when no user name is set, got %+v", argv[0])
	}
}

package hostdemo

import (
	"testing"

	"flowcore/internal/registry"
	"flowcore/internal/types"
)

func TestUpstreamRouteRoundRobins(t *testing.T) {
	reg := registry.New()
	router, err := RegisterUpstreamRoute(reg, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("RegisterUpstreamRoute: %v", err)
	}

	idx := reg.Find("upstream.route")
	if idx < 0 {
		t.Fatalf("expected upstream.route to be registered")
	}
	entry, _ := reg.Entry(idx)
	if entry.Kind != registry.Handler {
		t.Fatalf("expected a Handler-kind entry, got %v", entry.Kind)
	}

	want := []string{"a", "b", "c", "a", "b"}
	for i, w := range want {
		argv := []registry.Value{{}}
		entry.Callback(nil, argv)
		if argv[0].Kind != types.Bool || argv[0].Number != 1 {
			t.Fatalf("call %d: expected route to report true, got %+v", i, argv[0])
		}
		if router.LastPick() != w {
			t.Fatalf("call %d: expected pick %q, got %q", i, w, router.LastPick())
		}
	}
}

func TestUpstreamRouteWithNoBackendsReportsFalse(t *testing.T) {
	reg := registry.New()
	router, err := RegisterUpstreamRoute(reg, nil)
	if err != nil {
		t.Fatalf("RegisterUpstreamRoute: %v", err)
	}
	idx := reg.Find("upstream.route")
	entry, _ := reg.Entry(idx)

	argv := []registry.Value{{}}
	entry.Callback(nil, argv)
	if argv[0].Number != 0 {
		t.Fatalf("expected no-backend route to report false, got %+v", argv[0])
	}
	if router.LastPick() != "" {
		t.Fatalf("expected no pick to be recorded, got %q", router.LastPick())
	}
}

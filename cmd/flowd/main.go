// Command flowd is a minimal demo host embedding the Flow core: it compiles
// a .flow source file, registers the hostdemo native entries, and serves
// HTTP requests by invoking the compiled handlers, each returning whether it
// already handled the request. CLI surface is stdlib `flag`, no third-party
// framework.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"flowcore/internal/hostdemo"
	"flowcore/internal/registry"
	"flowcore/internal/runtime"
)

func main() {
	fs := flag.NewFlagSet("flowd", flag.ExitOnError)
	configPath := fs.String("config", "", "path to the .flow source file to compile (required)")
	optLevel := fs.Int("opt-level", 1, "JIT optimization level (0-4)")
	listen := fs.String("listen", ":8080", "address to listen on")
	sqlitePath := fs.String("db", "flowd.db", "path to the SQLite cache/stats database")
	pgDSN := fs.String("pg-dsn", "", "optional Postgres DSN, overrides -db")
	backends := fs.String("backends", "", "comma-separated backend list for upstream.route")
	fs.Parse(os.Args[1:])

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "flowd: -config is required")
		fs.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	reg := registry.New()
	store, router, err := hostdemo.Register(reg, hostdemo.Options{
		SQLitePath: *sqlitePath,
		PGDSN:      *pgDSN,
		Backends:   splitBackends(*backends),
	})
	if err != nil {
		logger.Error("hostdemo registration failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	rt := runtime.New(reg)
	rt.SetOptimizationLevel(*optLevel)
	rt.SetErrorHandler(func(msg string) {
		logger.Error("flow compile error", "msg", msg)
	})

	src, err := os.ReadFile(*configPath)
	if err != nil {
		logger.Error("failed to read config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	alreadySeen, err := store.RecordCompile(hostdemo.HashSource(src), *optLevel)
	if err != nil {
		logger.Warn("failed to record compile in store", "err", err)
	}

	if !rt.Compile(*configPath) {
		logger.Error("compile failed", "path", *configPath)
		os.Exit(1)
	}
	if alreadySeen {
		logger.Info("compiled (unchanged since a previous run)", "path", *configPath, "handlers", len(rt.ListHandlers()))
	} else {
		logger.Info("compiled", "path", *configPath, "handlers", len(rt.ListHandlers()))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		counts, err := store.HandlerCounts()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, hostdemo.FormatStats(counts, r.ContentLength, time.Now()))
		if pick := router.LastPick(); pick != "" {
			fmt.Fprintf(w, "last upstream.route pick: %s\n", pick)
		}
	})

	for _, h := range rt.ListHandlers() {
		h := h
		mux.HandleFunc("/"+h.Name, func(w http.ResponseWriter, r *http.Request) {
			rc := hostdemo.NewRequestContext(remoteIPOf(r), "", store)
			consumed, err := rt.Invoke(h, rc)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if err := store.IncrHandlerCount(h.Name); err != nil {
				logger.Warn("failed to record handler invocation", "handler", h.Name, "err", err)
			}
			if !consumed {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintf(w, "handled by %s (request %s)\n", h.Name, rc.ID)
		})
	}

	logger.Info("listening", "addr", *listen)
	if err := http.ListenAndServe(*listen, mux); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func splitBackends(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func remoteIPOf(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return net.ParseIP(r.RemoteAddr)
	}
	return net.ParseIP(host)
}

package hostdemo

import (
	"os"
	"path/filepath"
	"testing"

	"flowcore/internal/registry"
	"flowcore/internal/types"
)

func TestFsExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	argv := []registry.Value{{}, {Kind: types.String, Str: file}}
	fsExists(nil, argv)
	if argv[0].Kind != types.Bool || argv[0].Number != 1 {
		t.Fatalf("expected fs.exists(%q) to report true, got %+v", file, argv[0])
	}

	argv = []registry.Value{{}, {Kind: types.String, Str: filepath.Join(dir, "missing.txt")}}
	fsExists(nil, argv)
	if argv[0].Number != 0 {
		t.Fatalf("expected fs.exists on a missing file to report false, got %+v", argv[0])
	}
}

func TestFsIsDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	argv := []registry.Value{{}, {Kind: types.String, Str: dir}}
	fsIsDirectory(nil, argv)
	if argv[0].Number != 1 {
		t.Fatalf("expected fs.isDirectory(%q) to report true, got %+v", dir, argv[0])
	}

	argv = []registry.Value{{}, {Kind: types.String, Str: file}}
	fsIsDirectory(nil, argv)
	if argv[0].Number != 0 {
		t.Fatalf("expected fs.isDirectory on a plain file to report false, got %+v", argv[0])
	}
}

func TestRegisterFSPublishesBothProperties(t *testing.T) {
	reg := registry.New()
	if err := RegisterFS(reg); err != nil {
		t.Fatalf("RegisterFS: %v", err)
	}
	for _, name := range []string{"fs.exists", "fs.isDirectory"} {
		idx := reg.Find(name)
		if idx < 0 {
			t.Fatalf("expected %q to be registered", name)
		}
		entry, _ := reg.Entry(idx)
		if entry.Kind != registry.Property {
			t.Fatalf("expected %q to be a Property entry, got %v", name, entry.Kind)
		}
	}
}

package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"flowcore/internal/loader"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoadSingleFileNoImports(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "main.flow", `handler main { return true; }`)

	unit, errs := loader.Load(p)
	if len(errs) > 0 {
		t.Fatalf("unexpected load errors: %v", errs)
	}
	if len(unit.Functions) != 1 || unit.Functions[0].Name != "main" {
		t.Fatalf("unexpected merged unit: %+v", unit.Functions)
	}
}

func TestLoadMergesImportedDeclarationsBeforeOwnFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "helpers.flow", `
function double(x) {
	return x + x;
}
`)
	p := writeFile(t, dir, "main.flow", `
import "helpers.flow";

handler main {
	return double(2) == 4;
}
`)

	unit, errs := loader.Load(p)
	if len(errs) > 0 {
		t.Fatalf("unexpected load errors: %v", errs)
	}
	if len(unit.Functions) != 2 {
		t.Fatalf("expected 2 merged functions, got %d", len(unit.Functions))
	}
	if unit.Functions[0].Name != "double" || unit.Functions[1].Name != "main" {
		t.Fatalf("expected imported declarations before the importer's own, got order %v",
			[]string{unit.Functions[0].Name, unit.Functions[1].Name})
	}
}

func TestLoadDedupsDiamondImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.flow", `
function one() {
	return 1;
}
`)
	writeFile(t, dir, "left.flow", `
import "base.flow";
function two() {
	return one() + 1;
}
`)
	writeFile(t, dir, "right.flow", `
import "base.flow";
function three() {
	return one() + 2;
}
`)
	p := writeFile(t, dir, "main.flow", `
import "left.flow";
import "right.flow";

handler main {
	return true;
}
`)

	unit, errs := loader.Load(p)
	if len(errs) > 0 {
		t.Fatalf("unexpected load errors: %v", errs)
	}
	count := 0
	for _, fn := range unit.Functions {
		if fn.Name == "one" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected 'one' to be merged exactly once via diamond import dedup, got %d", count)
	}
}

func TestLoadDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.flow", `import "b.flow"; handler main { return true; }`)
	writeFile(t, dir, "b.flow", `import "a.flow";`)

	_, errs := loader.Load(filepath.Join(dir, "a.flow"))
	if len(errs) == 0 {
		t.Fatalf("expected an import cycle error")
	}
}

func TestLoadReportsMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, errs := loader.Load(filepath.Join(dir, "does-not-exist.flow"))
	if len(errs) == 0 {
		t.Fatalf("expected an error loading a missing file")
	}
}

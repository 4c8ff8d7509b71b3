// Package loader resolves a Flow Unit's imports, grounded on the teacher's
// internal/modules.LoadWorld: an import names another source file, resolved
// relative to the importing file's directory, whose top-level declarations
// are merged unqualified into a single flat namespace. Flow has no package
// system of its own, so unlike Avenir's per-package World this collapses
// everything into the one Unit CodeGen compiles.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"flowcore/internal/ast"
	"flowcore/internal/parser"
)

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Load parses the source file at path and recursively merges every
// transitively imported file's top-level function and variable declarations
// into the returned Unit. A file is loaded at most once even if imported
// from multiple places, and an import cycle is reported as an error rather
// than looping forever.
func Load(path string) (*ast.Unit, []string) {
	l := &loaderState{visited: map[string]bool{}, loading: map[string]bool{}}
	unit, errs := l.load(path)
	return unit, errs
}

type loaderState struct {
	visited map[string]bool
	loading map[string]bool
	errs    []string
}

func (l *loaderState) load(path string) (*ast.Unit, []string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("loader: %v", err))
		return nil, l.errs
	}

	merged, ok := l.loadFile(abs)
	if !ok {
		return nil, l.errs
	}
	return merged, l.errs
}

// loadFile parses abs and, depth-first, merges each of its imports' top
// level declarations before its own, so an importer can shadow-detect
// duplicate names the same way CodeGen already does for a single file: the
// "already declared" check runs over the merged result, so a name
// collision between two imported files surfaces exactly like a collision
// within one file.
func (l *loaderState) loadFile(abs string) (*ast.Unit, bool) {
	if l.loading[abs] {
		l.errs = append(l.errs, fmt.Sprintf("loader: import cycle detected at %s", abs))
		return nil, false
	}
	if l.visited[abs] {
		return &ast.Unit{}, true // already merged by an earlier importer
	}
	l.loading[abs] = true
	defer delete(l.loading, abs)

	src, err := readFile(abs)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("loader: %v", err))
		return nil, false
	}

	unit, parseErrs := parser.ParseUnit(src)
	if len(parseErrs) > 0 {
		l.errs = append(l.errs, parseErrs...)
		return nil, false
	}
	l.visited[abs] = true

	merged := &ast.Unit{Position: unit.Position}
	dir := filepath.Dir(abs)
	for _, imp := range unit.Imports {
		importPath := imp.Path
		if !filepath.IsAbs(importPath) {
			importPath = filepath.Join(dir, importPath)
		}
		sub, ok := l.loadFile(importPath)
		if !ok {
			continue
		}
		merged.Functions = append(merged.Functions, sub.Functions...)
		merged.Variables = append(merged.Variables, sub.Variables...)
	}
	merged.Functions = append(merged.Functions, unit.Functions...)
	merged.Variables = append(merged.Variables, unit.Variables...)
	return merged, len(l.errs) == 0
}

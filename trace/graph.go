/*
Copyright © 2026 The rws-manager Authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package trace

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"rwsframework.dev/manager/fs"
)

// SourcePattern matches the TypeScript sources of a directory.
const SourcePattern = "**/*.{ts,tsx}"

// ModuleGraph holds the parsed sources of a directory.
type ModuleGraph struct {
	// Root is the traced directory.
	Root string

	// Modules maps module paths to their parsed information
	Modules map[string]*Module

	// Errors collects non-fatal errors encountered during tracing
	Errors []error

	// bareSpecifiers collects all bare import specifiers
	bareSpecifiers map[string]bool
}

// Module represents a parsed source file.
type Module struct {
	Path    string         // Path to the module file
	Imports []ModuleImport // All imports found in the module
}

// Tracer parses the sources of a directory.
type Tracer struct {
	fs       fs.FileSystem
	parallel int
}

// NewTracer creates a Tracer.
func NewTracer(fs fs.FileSystem) *Tracer {
	return &Tracer{fs: fs}
}

// WithParallel returns a new Tracer parsing up to n files at once.
// Values <= 0 use runtime.NumCPU().
func (t *Tracer) WithParallel(n int) *Tracer {
	return &Tracer{fs: t.fs, parallel: n}
}

// TraceModule parses a single file.
func (t *Tracer) TraceModule(path string) (*Module, error) {
	content, err := t.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	imports, err := ExtractImports(content, DialectFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Module{Path: path, Imports: imports}, nil
}

// TraceDir parses every source under dir matching SourcePattern. Files
// inside node_modules are skipped. Files that fail to parse are recorded in
// Errors rather than failing the trace.
func (t *Tracer) TraceDir(dir string) (*ModuleGraph, error) {
	files, err := t.fs.Glob(filepath.Join(dir, SourcePattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}

	graph := &ModuleGraph{
		Root:           dir,
		Modules:        make(map[string]*Module),
		bareSpecifiers: make(map[string]bool),
	}

	limit := t.parallel
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(limit)
	for _, file := range files {
		if strings.Contains(filepath.ToSlash(file), "/node_modules/") {
			continue
		}
		g.Go(func() error {
			mod, err := t.TraceModule(file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				graph.Errors = append(graph.Errors, err)
				return nil
			}
			graph.Modules[file] = mod
			for _, imp := range mod.Imports {
				if isBareSpecifier(imp.Specifier) {
					graph.bareSpecifiers[imp.Specifier] = true
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(graph.Errors, func(i, j int) bool {
		return graph.Errors[i].Error() < graph.Errors[j].Error()
	})
	return graph, nil
}

// Paths returns the sorted module paths.
func (g *ModuleGraph) Paths() []string {
	paths := make([]string, 0, len(g.Modules))
	for p := range g.Modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// BareSpecifiers returns a sorted slice of all bare specifiers found.
func (g *ModuleGraph) BareSpecifiers() []string {
	specifiers := make([]string, 0, len(g.bareSpecifiers))
	for spec := range g.bareSpecifiers {
		specifiers = append(specifiers, spec)
	}
	sort.Strings(specifiers)
	return specifiers
}

func isBareSpecifier(specifier string) bool {
	// Bare specifiers don't start with ./, ../, or /
	if specifier == "" {
		return false
	}
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return false
	}
	if strings.HasPrefix(specifier, "/") {
		return false
	}
	// Check for URL schemes
	if strings.Contains(specifier, "://") {
		return false
	}
	return true
}

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
package resolve

import (
	"maps"
	"slices"
	"sync"
)

// DependencyGraph records the internal dependency edges found while
// scanning, for reporting which packages pull in which.
type DependencyGraph struct {
	mu sync.RWMutex

	// dependsOn maps package name -> set of internal packages it declares
	// e.g., "@rws-framework/client" -> {"@rws-framework/console": true}
	dependsOn map[string]map[string]bool

	// dependents maps package name -> set of packages that declare it
	dependents map[string]map[string]bool

	// packagePaths maps package name -> install directory
	packagePaths map[string]string

	// workspacePackages tracks which packages are monorepo workspace packages
	workspacePackages map[string]bool
}

// NewDependencyGraph creates a new empty dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		dependsOn:         make(map[string]map[string]bool),
		dependents:        make(map[string]map[string]bool),
		packagePaths:      make(map[string]string),
		workspacePackages: make(map[string]bool),
	}
}

// AddDependency records that pkg depends on dep.
// Updates both dependsOn and dependents maps.
func (g *DependencyGraph) AddDependency(pkg, dep string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dependsOn[pkg] == nil {
		g.dependsOn[pkg] = make(map[string]bool)
	}
	g.dependsOn[pkg][dep] = true

	if g.dependents[dep] == nil {
		g.dependents[dep] = make(map[string]bool)
	}
	g.dependents[dep][pkg] = true
}

// SetPackagePath records the install directory for a package.
func (g *DependencyGraph) SetPackagePath(pkg, path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.packagePaths[pkg] = path
}

// PackagePath returns the install directory for a package, or empty string if not found.
func (g *DependencyGraph) PackagePath(pkg string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.packagePaths[pkg]
}

// AddWorkspacePackage marks a package as a workspace package.
func (g *DependencyGraph) AddWorkspacePackage(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.workspacePackages[name] = true
}

// IsWorkspacePackage returns true if the package is a workspace package.
func (g *DependencyGraph) IsWorkspacePackage(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.workspacePackages[name]
}

// Dependencies returns the packages pkg directly depends on, sorted.
func (g *DependencyGraph) Dependencies(pkg string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.dependsOn[pkg])
}

// Dependents returns all packages that directly depend on pkg, sorted.
func (g *DependencyGraph) Dependents(pkg string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.dependents[pkg])
}

// TransitiveDependents returns all packages that directly or indirectly depend on pkg.
// Uses breadth-first traversal to find all dependents.
func (g *DependencyGraph) TransitiveDependents(pkg string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{pkg: true}
	queue := []string{pkg}
	var result []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for dep := range g.dependents[current] {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				queue = append(queue, dep)
			}
		}
	}

	slices.Sort(result)
	return result
}

// Packages returns every package that appears in the graph, sorted.
func (g *DependencyGraph) Packages() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	all := make(map[string]bool, len(g.dependsOn)+len(g.dependents))
	for pkg := range g.dependsOn {
		all[pkg] = true
	}
	for pkg := range g.dependents {
		all[pkg] = true
	}
	return sortedKeys(all)
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(m))
}

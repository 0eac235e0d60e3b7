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
	"errors"
	iofs "io/fs"
	"path/filepath"

	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/packagejson"
)

// DependencySet is a set of package references that remembers insertion
// order, so iteration is deterministic.
type DependencySet struct {
	order []string
	index map[string]struct{}
}

// NewDependencySet creates a set holding refs.
func NewDependencySet(refs ...string) *DependencySet {
	s := &DependencySet{index: make(map[string]struct{}, len(refs))}
	for _, ref := range refs {
		s.Add(ref)
	}
	return s
}

// Add inserts ref and reports whether it was new.
func (s *DependencySet) Add(ref string) bool {
	if _, ok := s.index[ref]; ok {
		return false
	}
	s.index[ref] = struct{}{}
	s.order = append(s.order, ref)
	return true
}

// Has reports whether ref is in the set.
func (s *DependencySet) Has(ref string) bool {
	_, ok := s.index[ref]
	return ok
}

// Len returns the number of references.
func (s *DependencySet) Len() int {
	return len(s.order)
}

// Items returns the references in insertion order.
func (s *DependencySet) Items() []string {
	return append([]string(nil), s.order...)
}

// Union adds every reference of other not already present and returns s.
func (s *DependencySet) Union(other *DependencySet) *DependencySet {
	if other == nil {
		return s
	}
	for _, ref := range other.order {
		s.Add(ref)
	}
	return s
}

// Scanner discovers the internal framework packages a manifest depends on,
// transitively.
type Scanner struct {
	fs        fs.FileSystem
	logger    Logger
	namespace string
	graph     *DependencyGraph
	cacheSize int
}

// NewScanner creates a Scanner for the framework namespace. logger may be nil.
func NewScanner(fs fs.FileSystem, logger Logger) *Scanner {
	return &Scanner{
		fs:        fs,
		logger:    logger,
		namespace: Namespace,
	}
}

// WithGraph returns a new Scanner that records every accepted dependency
// edge into g.
func (s *Scanner) WithGraph(g *DependencyGraph) *Scanner {
	clone := *s
	clone.graph = g
	return &clone
}

// WithNamespace returns a new Scanner restricted to another package scope.
func (s *Scanner) WithNamespace(namespace string) *Scanner {
	clone := *s
	clone.namespace = namespace
	return &clone
}

// WithCacheSize returns a new Scanner whose per-scan manifest cache holds
// at most size entries.
func (s *Scanner) WithCacheSize(size int) *Scanner {
	clone := *s
	clone.cacheSize = size
	return &clone
}

// scanState is the bookkeeping of one top-level Scan call.
type scanState struct {
	installRoot string
	cache       *packagejson.ScanCache
	visited     map[string]bool
	result      *DependencySet
}

// Scan reads the manifest at manifestPath and returns the internal packages
// it depends on, directly or transitively. Dependency manifests are looked
// up under installRoot.
//
// When the manifest itself is not tagged as internal and includeNonInternal
// is false, the result is empty and no dependency manifest is read.
func (s *Scanner) Scan(installRoot, manifestPath string, includeNonInternal bool) (*DependencySet, error) {
	st := &scanState{
		installRoot: installRoot,
		cache:       packagejson.NewScanCache(s.cacheSize),
		visited:     make(map[string]bool),
		result:      NewDependencySet(),
	}

	if err := s.scan(st, manifestPath, includeNonInternal); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("Scanned %s: %d internal packages, %d manifests cached", manifestPath, st.result.Len(), st.cache.Len())
	}
	return st.result, nil
}

func (s *Scanner) scan(st *scanState, manifestPath string, includeNonInternal bool) error {
	pkg, err := packagejson.ParseFileCached(s.fs, st.cache, manifestPath)
	if err != nil {
		return &ManifestReadError{Path: manifestPath, Err: err}
	}

	if !pkg.IsInternal() && !includeNonInternal {
		return nil
	}

	declarer := pkg.Name
	if declarer == "" {
		declarer = manifestPath
	} else {
		st.visited[declarer] = true
	}

	for _, name := range pkg.DependencyNames(s.namespace + "/") {
		depDir := filepath.Join(st.installRoot, filepath.FromSlash(name))
		depManifest := filepath.Join(depDir, packagejson.FileName)

		dep, err := packagejson.ParseFileCached(s.fs, st.cache, depManifest)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return &UnresolvedDependencyError{
					Package:      name,
					ManifestPath: depManifest,
					DeclaredBy:   declarer,
				}
			}
			return &ManifestReadError{Path: depManifest, Err: err}
		}

		if !dep.IsInternal() {
			if s.logger != nil {
				s.logger.Debug("Skipping %s: not an internal framework package", name)
			}
			continue
		}

		st.result.Add(name)
		if s.graph != nil {
			s.graph.AddDependency(declarer, name)
			s.graph.SetPackagePath(name, depDir)
		}

		if st.visited[name] {
			continue
		}
		st.visited[name] = true

		if err := s.scan(st, depManifest, false); err != nil {
			return err
		}
	}

	return nil
}

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
package packagejson

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"rwsframework.dev/manager/fs"
)

// DefaultCacheSize bounds the number of manifests held by one ScanCache.
const DefaultCacheSize = 256

// Cache provides a caching interface for parsed package.json files.
// A cache is meant to live for a single top-level scan; manifests are
// re-read by the next scan.
type Cache interface {
	// Get retrieves a cached package.json by its file path.
	// Returns the cached package and true if found, nil and false otherwise.
	Get(path string) (*PackageJSON, bool)

	// GetOrLoad retrieves from cache or loads using the provided function.
	// Failed loads are not cached.
	GetOrLoad(path string, loader func() (*PackageJSON, error)) (*PackageJSON, error)
}

// ScanCache is a bounded, thread-safe Cache backed by an LRU.
type ScanCache struct {
	entries *lru.Cache[string, *PackageJSON]
}

// NewScanCache creates a cache holding at most size manifests.
// A non-positive size uses DefaultCacheSize.
func NewScanCache(size int) *ScanCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes
	entries, _ := lru.New[string, *PackageJSON](size)
	return &ScanCache{entries: entries}
}

// Get retrieves a cached package.json by its file path.
func (c *ScanCache) Get(path string) (*PackageJSON, bool) {
	return c.entries.Get(path)
}

// Len returns the number of cached manifests.
func (c *ScanCache) Len() int {
	return c.entries.Len()
}

// GetOrLoad retrieves from cache or loads using the provided function.
// Concurrent callers may both run the loader for the same path; the
// last result wins, which is harmless for immutable manifests.
func (c *ScanCache) GetOrLoad(path string, loader func() (*PackageJSON, error)) (*PackageJSON, error) {
	if pkg, ok := c.Get(path); ok {
		return pkg, nil
	}

	pkg, err := loader()
	if err != nil {
		return nil, err
	}
	c.entries.Add(path, pkg)
	return pkg, nil
}

// ParseFileCached parses a package.json file through cache.
// A nil cache reads the file directly.
func ParseFileCached(fsys fs.FileSystem, cache Cache, path string) (*PackageJSON, error) {
	if cache == nil {
		return ParseFile(fsys, path)
	}
	return cache.GetOrLoad(path, func() (*PackageJSON, error) {
		return ParseFile(fsys, path)
	})
}

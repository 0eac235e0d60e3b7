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
package packagejson_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"rwsframework.dev/manager/internal/mapfs"
	"rwsframework.dev/manager/packagejson"
)

func TestScanCacheGet(t *testing.T) {
	cache := packagejson.NewScanCache(0)

	// Cache miss should return nil, false
	pkg, ok := cache.Get("/nonexistent/package.json")
	if ok {
		t.Error("Expected cache miss for nonexistent path")
	}
	if pkg != nil {
		t.Error("Expected nil package for cache miss")
	}
}

func TestScanCacheEvictsOldest(t *testing.T) {
	cache := packagejson.NewScanCache(2)

	for _, name := range []string{"a", "b", "c"} {
		if _, err := cache.GetOrLoad("/"+name+"/package.json", func() (*packagejson.PackageJSON, error) {
			return &packagejson.PackageJSON{Name: name}, nil
		}); err != nil {
			t.Fatalf("GetOrLoad(%s) failed: %v", name, err)
		}
	}

	if cache.Len() != 2 {
		t.Fatalf("Expected 2 cached entries, got %d", cache.Len())
	}
	if _, ok := cache.Get("/a/package.json"); ok {
		t.Error("Expected oldest entry to be evicted")
	}
}

func TestScanCacheGetOrLoad(t *testing.T) {
	cache := packagejson.NewScanCache(0)
	var calls atomic.Int32

	loader := func() (*packagejson.PackageJSON, error) {
		calls.Add(1)
		return &packagejson.PackageJSON{Name: "loaded"}, nil
	}

	for range 3 {
		pkg, err := cache.GetOrLoad("/pkg/package.json", loader)
		if err != nil {
			t.Fatalf("GetOrLoad failed: %v", err)
		}
		if pkg.Name != "loaded" {
			t.Errorf("Expected name 'loaded', got %q", pkg.Name)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("Expected loader to run once, ran %d times", calls.Load())
	}
}

func TestScanCacheDoesNotCacheErrors(t *testing.T) {
	cache := packagejson.NewScanCache(0)
	boom := errors.New("boom")

	if _, err := cache.GetOrLoad("/pkg/package.json", func() (*packagejson.PackageJSON, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Expected loader error, got %v", err)
	}

	if _, ok := cache.Get("/pkg/package.json"); ok {
		t.Error("Failed load should not be cached")
	}
}

func TestParseFileCached(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/pkg/package.json", `{"name": "first"}`, 0644)

	cache := packagejson.NewScanCache(0)
	first, err := packagejson.ParseFileCached(mfs, cache, "/pkg/package.json")
	if err != nil {
		t.Fatalf("ParseFileCached failed: %v", err)
	}

	// Changing the file does not affect the cached manifest within one scan
	mfs.AddFile("/pkg/package.json", `{"name": "second"}`, 0644)
	again, err := packagejson.ParseFileCached(mfs, cache, "/pkg/package.json")
	if err != nil {
		t.Fatalf("ParseFileCached failed: %v", err)
	}
	if again != first {
		t.Error("Expected the cached manifest to be returned")
	}

	fresh, err := packagejson.ParseFileCached(mfs, nil, "/pkg/package.json")
	if err != nil {
		t.Fatalf("ParseFileCached without cache failed: %v", err)
	}
	if fresh.Name != "second" {
		t.Errorf("Expected uncached read to see the new name, got %q", fresh.Name)
	}
}

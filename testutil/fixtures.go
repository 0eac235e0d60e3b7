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
// Package testutil provides testing utilities for rws-manager packages.
package testutil

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"rwsframework.dev/manager/internal/mapfs"
)

// NewFixtureFS loads fixture files from testdata and returns a MapFileSystem
// with files mapped to the specified root path.
// The fixtureDir should be relative to the testdata directory.
func NewFixtureFS(t *testing.T, fixtureDir string, rootPath string) *mapfs.MapFileSystem {
	t.Helper()

	mfs := mapfs.New()
	fixturePath := findFixture(t, fixtureDir)

	// Walk fixture directory and load all files into memory
	err := filepath.WalkDir(fixturePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fixturePath, path)
		if err != nil {
			return err
		}

		mfs.AddFile(filepath.Join(rootPath, relPath), string(content), 0644)
		return nil
	})

	if err != nil {
		t.Fatalf("Failed to load fixtures from %s: %v", fixtureDir, err)
	}

	return mfs
}

// LoadFixtureFile reads a single fixture file and returns its content.
// The fixturePath should be relative to testdata/.
func LoadFixtureFile(t *testing.T, fixturePath string) []byte {
	t.Helper()

	content, err := os.ReadFile(findFixture(t, fixturePath))
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", fixturePath, err)
	}
	return content
}

// Manifest renders a package.json document. Dependencies are declared as
// production dependencies with a caret range.
func Manifest(t *testing.T, name string, internal bool, deps ...string) string {
	t.Helper()
	return ManifestWithDev(t, name, internal, deps, nil)
}

// ManifestWithDev renders a package.json document with separate
// production and development dependency lists.
func ManifestWithDev(t *testing.T, name string, internal bool, deps, devDeps []string) string {
	t.Helper()

	doc := map[string]any{"name": name, "version": "1.0.0"}
	if internal {
		doc["rws"] = true
	}
	if len(deps) > 0 {
		doc["dependencies"] = versions(deps)
	}
	if len(devDeps) > 0 {
		doc["devDependencies"] = versions(devDeps)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to render manifest for %s: %v", name, err)
	}
	return string(data)
}

// NewProjectFS returns a MapFileSystem populated with files, keyed by
// absolute path.
func NewProjectFS(t *testing.T, files map[string]string) *mapfs.MapFileSystem {
	t.Helper()

	mfs := mapfs.New()
	for path, content := range files {
		mfs.AddFile(path, content, 0644)
	}
	return mfs
}

// WriteTree writes files below root on the real filesystem, creating
// parent directories as needed. Keys are paths relative to root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

func versions(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = "^1.0.0"
	}
	return out
}

// findFixture tries multiple possible paths since Go test changes working
// directory based on which package is being tested.
func findFixture(t *testing.T, rel string) string {
	t.Helper()

	possiblePaths := []string{
		filepath.Join("testdata", rel),
		filepath.Join("..", "testdata", rel),
		filepath.Join("..", "..", "testdata", rel),
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Fatalf("Could not find fixture %s (tried all paths)", rel)
	return ""
}

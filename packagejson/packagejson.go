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
// Package packagejson provides parsing of package.json manifests.
package packagejson

import (
	"encoding/json"
	"slices"
	"strings"

	"rwsframework.dev/manager/fs"
)

// FileName is the conventional manifest file name.
const FileName = "package.json"

// workspacesObjectFormat represents the object format for workspaces field.
// Used by yarn classic with nohoist: {"packages": [...], "nohoist": [...]}
type workspacesObjectFormat struct {
	Packages []string `json:"packages"`
}

// PackageJSON represents the subset of package.json the build manager reads.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	RawWorkspaces   json.RawMessage   `json:"workspaces,omitempty"`

	// RWS tags the package as an internal framework package.
	RWS bool `json:"rws,omitempty"`
}

// IsInternal reports whether the manifest carries the internal framework tag.
func (pkg *PackageJSON) IsInternal() bool {
	return pkg != nil && pkg.RWS
}

// DependencyNames returns the sorted union of production and development
// dependency names whose name starts with prefix. An empty prefix matches
// every dependency.
func (pkg *PackageJSON) DependencyNames(prefix string) []string {
	seen := make(map[string]struct{}, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for _, deps := range []map[string]string{pkg.Dependencies, pkg.DevDependencies} {
		for name := range deps {
			if strings.HasPrefix(name, prefix) {
				seen[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// WorkspacePatterns returns the workspace glob patterns from the workspaces field.
// Handles both array format ["packages/*"] and object format {"packages": ["libs/*"]}.
func (pkg *PackageJSON) WorkspacePatterns() []string {
	if len(pkg.RawWorkspaces) == 0 {
		return nil
	}

	// Try array format first (most common)
	var patterns []string
	if err := json.Unmarshal(pkg.RawWorkspaces, &patterns); err == nil {
		return patterns
	}

	// Try object format with "packages" key (yarn classic with nohoist)
	var obj workspacesObjectFormat
	if err := json.Unmarshal(pkg.RawWorkspaces, &obj); err == nil {
		return obj.Packages
	}

	return nil
}

// HasWorkspaces returns true if the package has workspace patterns defined.
func (pkg *PackageJSON) HasWorkspaces() bool {
	return len(pkg.WorkspacePatterns()) > 0
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ParseFile parses a package.json file.
func ParseFile(fs fs.FileSystem, path string) (*PackageJSON, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// SplitRef splits a package reference into the package name and the
// remaining sub-path. Handles scoped packages (@scope/name/sub) and
// plain ones (name/sub).
func SplitRef(ref string) (name, subpath string) {
	parts := strings.Split(strings.Trim(ref, "/"), "/")
	n := 1
	if strings.HasPrefix(ref, "@") && len(parts) > 1 {
		n = 2
	}
	if len(parts) <= n {
		return strings.Join(parts, "/"), ""
	}
	return strings.Join(parts[:n], "/"), strings.Join(parts[n:], "/")
}

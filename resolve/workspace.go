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
	"fmt"
	"path/filepath"
	"strings"

	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/packagejson"
)

// DiscoverWorkspacePackages finds all workspace packages based on the
// workspaces field in the root package.json.
// Returns nil if no workspaces are defined.
func DiscoverWorkspacePackages(fsys fs.FileSystem, rootDir string) ([]WorkspacePackage, error) {
	rootPkgPath := filepath.Join(rootDir, packagejson.FileName)
	rootPkg, err := packagejson.ParseFile(fsys, rootPkgPath)
	if err != nil {
		return nil, err
	}

	patterns := rootPkg.WorkspacePatterns()
	if len(patterns) == 0 {
		return nil, nil
	}

	var packages []WorkspacePackage
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		dirs, err := expandWorkspacePattern(fsys, rootDir, pattern)
		if err != nil {
			continue // skip patterns that can't be expanded
		}

		for _, dir := range dirs {
			if seen[dir] {
				continue
			}
			pkg, err := parseWorkspacePackage(fsys, dir)
			if err != nil {
				continue // skip directories without valid package.json
			}
			seen[dir] = true
			packages = append(packages, pkg)
		}
	}

	return packages, nil
}

// expandWorkspacePattern expands a workspace glob pattern to the
// directories holding a package.json. Supports any doublestar pattern,
// e.g. "packages/*", "@scope/*", "libs/**".
func expandWorkspacePattern(fsys fs.FileSystem, rootDir, pattern string) ([]string, error) {
	pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
	manifestPattern := filepath.ToSlash(filepath.Join(rootDir, pattern)) + "/" + packagejson.FileName

	matches, err := fsys.Glob(manifestPattern)
	if err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(matches))
	for _, match := range matches {
		dirs = append(dirs, filepath.Dir(filepath.FromSlash(match)))
	}
	return dirs, nil
}

// parseWorkspacePackage reads a package.json from a directory and returns
// a WorkspacePackage with its name and path.
func parseWorkspacePackage(fsys fs.FileSystem, dir string) (WorkspacePackage, error) {
	pkgPath := filepath.Join(dir, packagejson.FileName)
	pkg, err := packagejson.ParseFile(fsys, pkgPath)
	if err != nil {
		return WorkspacePackage{}, err
	}

	if pkg.Name == "" {
		return WorkspacePackage{}, fmt.Errorf("package at %s has no name", dir)
	}

	return WorkspacePackage{
		Name:     pkg.Name,
		Path:     dir,
		Internal: pkg.IsInternal(),
	}, nil
}

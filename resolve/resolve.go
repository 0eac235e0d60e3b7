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
// Package resolve locates framework packages on disk and discovers the
// internal dependencies of a package graph.
package resolve

import (
	"path/filepath"

	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/packagejson"
)

// Namespace is the reserved package scope of the framework's own packages.
const Namespace = "@rws-framework"

// NamespacePrefix is Namespace followed by the scope separator.
const NamespacePrefix = Namespace + "/"

// NodeModules is the conventional install directory name.
const NodeModules = "node_modules"

// Logger is an interface for logging messages during resolution.
type Logger interface {
	Warning(format string, args ...any)
	Debug(format string, args ...any)
}

// WorkspacePackage represents a package in a monorepo workspace.
type WorkspacePackage struct {
	Name     string // Package name from package.json
	Path     string // Absolute path to package directory
	Internal bool   // Manifest carries the internal framework tag
}

// FindWorkspaceRoot walks up the directory tree to find the workspace root.
// Returns the directory containing node_modules, workspace configuration, or .git.
func FindWorkspaceRoot(fs fs.FileSystem, startDir string) string {
	dir := startDir
	for {
		// Check if node_modules exists in this directory
		nodeModulesPath := filepath.Join(dir, NodeModules)
		if stat, err := fs.Stat(nodeModulesPath); err == nil && stat.IsDir() {
			return dir
		}

		// Check if there's a package.json with workspaces field
		pkgPath := filepath.Join(dir, packagejson.FileName)
		if pkg, err := packagejson.ParseFile(fs, pkgPath); err == nil && pkg.HasWorkspaces() {
			return dir
		}

		// Check for .git directory (repository root is a reasonable workspace root)
		gitDir := filepath.Join(dir, ".git")
		if stat, err := fs.Stat(gitDir); err == nil && stat.IsDir() {
			return dir
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// InstallRoot returns the node_modules directory serving appRoot.
func InstallRoot(fs fs.FileSystem, appRoot string) string {
	return filepath.Join(FindWorkspaceRoot(fs, appRoot), NodeModules)
}

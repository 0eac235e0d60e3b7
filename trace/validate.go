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
	"path/filepath"
	"strings"

	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/packagejson"
	"rwsframework.dev/manager/resolve"
)

// IssueType classifies the type of import issue.
type IssueType int

const (
	// NotDeclared indicates an installed internal package that the
	// workspace's dependency graph does not reach.
	NotDeclared IssueType = iota
	// NotInternal indicates a namespace package whose manifest lacks the
	// internal tag, so it is never added to the compilation.
	NotInternal
	// NotInstalled indicates the package is not found under the install root.
	NotInstalled
)

// String returns a human-readable description of the issue type.
func (t IssueType) String() string {
	switch t {
	case NotDeclared:
		return "not declared"
	case NotInternal:
		return "not an internal package"
	case NotInstalled:
		return "not installed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t IssueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ImportIssue represents a problem with an import statement.
type ImportIssue struct {
	File      string     `json:"file" yaml:"file"`           // Module path where import was found
	Line      int        `json:"line" yaml:"line"`           // Line number of the import specifier
	Specifier string     `json:"specifier" yaml:"specifier"` // The full import specifier
	Package   string     `json:"package" yaml:"package"`     // Extracted package name
	IssueType IssueType  `json:"issue" yaml:"issue"`         // Type of issue
	Kind      ImportKind `json:"kind" yaml:"kind"`           // Syntactic form of the import
}

// CheckImports reports every import of a namespace package that is not in
// declared. self names the traced package, whose imports of itself are
// skipped. Manifests are looked up under installRoot to classify issues.
func (g *ModuleGraph) CheckImports(
	fsys fs.FileSystem,
	installRoot string,
	namespace string,
	declared *resolve.DependencySet,
	self string,
) []ImportIssue {
	var issues []ImportIssue
	prefix := strings.TrimSuffix(namespace, "/") + "/"

	for _, p := range g.Paths() {
		mod := g.Modules[p]
		for _, imp := range mod.Imports {
			if !strings.HasPrefix(imp.Specifier, prefix) {
				continue
			}

			pkgName, _ := packagejson.SplitRef(imp.Specifier)

			// Skip self-referencing imports (package importing itself)
			if pkgName == self || (declared != nil && declared.Has(pkgName)) {
				continue
			}

			issue := ImportIssue{
				File:      mod.Path,
				Line:      imp.Line,
				Specifier: imp.Specifier,
				Package:   pkgName,
				Kind:      imp.Kind,
			}

			manifest := filepath.Join(installRoot, filepath.FromSlash(pkgName), packagejson.FileName)
			pkg, err := packagejson.ParseFile(fsys, manifest)
			switch {
			case err != nil:
				issue.IssueType = NotInstalled
			case !pkg.IsInternal():
				issue.IssueType = NotInternal
			default:
				issue.IssueType = NotDeclared
			}
			issues = append(issues, issue)
		}
	}

	return issues
}

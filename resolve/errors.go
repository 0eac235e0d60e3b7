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
)

// ManifestReadError reports a package.json that could not be read or parsed.
type ManifestReadError struct {
	Path string
	Err  error
}

func (e *ManifestReadError) Error() string {
	return fmt.Sprintf("reading manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestReadError) Unwrap() error {
	return e.Err
}

// UnresolvedDependencyError reports an internal dependency that is declared
// but whose manifest is not installed. It points at a broken install.
type UnresolvedDependencyError struct {
	Package      string
	ManifestPath string
	DeclaredBy   string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("dependency %s declared by %s is not installed (expected %s)",
		e.Package, e.DeclaredBy, e.ManifestPath)
}

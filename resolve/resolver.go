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
	iofs "io/fs"
	"path/filepath"

	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/packagejson"
)

// Resolver maps package references to filesystem paths.
//
// Resolution is a two-step strategy: when a consumer root is given, the
// package directory under the consumer's node_modules is probed for a
// symlink (workspace-linked packages) and followed to its real location.
// Otherwise, or when the probe fails, the literal install path is used.
type Resolver struct {
	fs     fs.FileSystem
	logger Logger
}

// NewResolver creates a Resolver. logger may be nil.
func NewResolver(fs fs.FileSystem, logger Logger) *Resolver {
	return &Resolver{fs: fs, logger: logger}
}

// Resolve returns the best-effort absolute path of packageRef.
// packageRef may carry a sub-path ("@rws-framework/client/builder").
// The returned path is not guaranteed to exist.
func (r *Resolver) Resolve(packageRef, installRoot, consumerRoot string) string {
	if consumerRoot != "" {
		if linked, ok := r.Linked(packageRef, consumerRoot); ok {
			return linked
		}
	}
	return filepath.Join(installRoot, filepath.FromSlash(packageRef))
}

// Linked follows the symlinked install location of packageRef's package
// under consumerRoot/node_modules. It reports false when the location is
// not a symlink, cannot be followed, or the resulting path does not exist.
func (r *Resolver) Linked(packageRef, consumerRoot string) (string, bool) {
	name, subpath := packagejson.SplitRef(packageRef)
	linkPath := filepath.Join(consumerRoot, NodeModules, filepath.FromSlash(name))

	info, err := r.fs.Lstat(linkPath)
	if err != nil || info.Mode()&iofs.ModeSymlink == 0 {
		return "", false
	}

	realPath, err := r.fs.EvalSymlinks(linkPath)
	if err != nil {
		r.debug("Could not follow link %s: %v", linkPath, err)
		return "", false
	}

	target := realPath
	if subpath != "" {
		target = filepath.Join(realPath, filepath.FromSlash(subpath))
	}
	if !r.fs.Exists(target) {
		r.debug("Linked target %s for %s does not exist", target, packageRef)
		return "", false
	}

	return target, true
}

func (r *Resolver) debug(format string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(format, args...)
	}
}

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
package tsconfig

import (
	"path/filepath"
	"strings"
)

// Pathkeeper is a path anchored to a base directory. Two Pathkeepers are
// the same entry when their absolute paths are equal, whatever their bases.
type Pathkeeper struct {
	base   string
	target string
}

// NewPathkeeper anchors target to base. A relative target is taken relative
// to base.
func NewPathkeeper(base, target string) Pathkeeper {
	return Pathkeeper{base: filepath.Clean(base), target: target}
}

// Base returns the anchor directory.
func (p Pathkeeper) Base() string { return p.base }

// Abs returns the absolute, cleaned path.
func (p Pathkeeper) Abs() string {
	if filepath.IsAbs(p.target) {
		return filepath.Clean(p.target)
	}
	return filepath.Join(p.base, p.target)
}

// Rel returns the path relative to the base in slash form. Paths that
// cannot be made relative are returned absolute.
func (p Pathkeeper) Rel() string {
	rel, err := filepath.Rel(p.base, p.Abs())
	if err != nil {
		return filepath.ToSlash(p.Abs())
	}
	return filepath.ToSlash(rel)
}

// Rebase anchors the same absolute path to another base.
func (p Pathkeeper) Rebase(base string) Pathkeeper {
	return NewPathkeeper(base, p.Abs())
}

// Equal reports whether both entries name the same absolute path.
func (p Pathkeeper) Equal(other Pathkeeper) bool {
	return p.Abs() == other.Abs()
}

func (p Pathkeeper) String() string { return p.Rel() }

// PathList is an ordered set of Pathkeepers keyed by absolute path. The
// first entry added for a path wins.
type PathList struct {
	entries []Pathkeeper
	seen    map[string]bool
}

// Add appends p unless its absolute path is already present.
func (l *PathList) Add(p Pathkeeper) bool {
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	abs := p.Abs()
	if l.seen[abs] {
		return false
	}
	l.seen[abs] = true
	l.entries = append(l.entries, p)
	return true
}

// AddAll adds every entry of other, in order.
func (l *PathList) AddAll(other *PathList) {
	for _, p := range other.Entries() {
		l.Add(p)
	}
}

// Has reports whether abs is in the list.
func (l *PathList) Has(abs string) bool {
	return l.seen[filepath.Clean(abs)]
}

// Len returns the number of entries.
func (l *PathList) Len() int { return len(l.entries) }

// Entries returns the entries in insertion order.
func (l *PathList) Entries() []Pathkeeper {
	if l == nil {
		return nil
	}
	return l.entries
}

// Abs returns the absolute paths in order.
func (l *PathList) Abs() []string {
	out := make([]string, 0, len(l.Entries()))
	for _, p := range l.Entries() {
		out = append(out, p.Abs())
	}
	return out
}

// RelTo returns the paths relative to base, in slash form.
func (l *PathList) RelTo(base string) []string {
	out := make([]string, 0, len(l.Entries()))
	for _, p := range l.Entries() {
		out = append(out, p.Rebase(base).Rel())
	}
	return out
}

// Map returns a new list holding fn applied to every entry, de-duplicated
// again by absolute path.
func (l *PathList) Map(fn func(Pathkeeper) Pathkeeper) *PathList {
	out := &PathList{}
	for _, p := range l.Entries() {
		out.Add(fn(p))
	}
	return out
}

// ClientPackage is the framework's browser runtime package.
const ClientPackage = "@rws-framework/client"

// NormalizeClient points an entry at the client package's source directory
// when it names the package itself or one of its non-source paths. The
// package is matched on whole path segments, so siblings such as
// @rws-framework/client-utils are left alone.
func NormalizeClient(p Pathkeeper) Pathkeeper {
	abs := filepath.ToSlash(p.Abs())
	marker := "/" + ClientPackage
	if !strings.HasSuffix(abs, marker) && !strings.Contains(abs, marker+"/") {
		return p
	}
	if strings.HasSuffix(abs, marker+"/src") || strings.Contains(abs, marker+"/src/") {
		return p
	}
	return NewPathkeeper(p.base, filepath.Join(p.Abs(), "src"))
}

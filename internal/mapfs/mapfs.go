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
// Package mapfs provides an in-memory filesystem implementation for testing.
package mapfs

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"testing/fstest"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// maxLinkHops bounds symlink resolution so link loops fail instead of spinning.
const maxLinkHops = 40

// MapFileSystem implements FileSystem using an in-memory fstest.MapFS.
// Symlinks are kept in a separate table and resolved on every lookup.
type MapFileSystem struct {
	mu      sync.RWMutex
	mapFS   fstest.MapFS
	links   map[string]string
	tempDir string
	modTime time.Time
}

// New creates a new in-memory filesystem for testing.
func New() *MapFileSystem {
	return &MapFileSystem{
		mapFS:   make(fstest.MapFS),
		links:   make(map[string]string),
		tempDir: "/tmp",
		modTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// AddFile adds a file to the in-memory filesystem.
func (mfs *MapFileSystem) AddFile(path string, content string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	path = mfs.cleanPath(path)
	mfs.mapFS[path] = &fstest.MapFile{
		Data:    []byte(content),
		Mode:    mode,
		ModTime: mfs.modTime,
	}
}

// AddDir adds a directory to the in-memory filesystem.
func (mfs *MapFileSystem) AddDir(path string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	path = mfs.cleanPath(path)
	keepFile := path + "/.keep"
	mfs.mapFS[keepFile] = &fstest.MapFile{
		Data:    []byte(""),
		Mode:    mode.Perm(),
		ModTime: mfs.modTime,
	}
}

// AddSymlink makes linkPath a symbolic link to target.
// A relative target is interpreted against the link's parent directory.
func (mfs *MapFileSystem) AddSymlink(linkPath, target string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if !path.IsAbs(target) {
		target = path.Join(path.Dir("/"+mfs.cleanPath(linkPath)), target)
	}
	mfs.links[mfs.cleanPath(linkPath)] = mfs.cleanPath(target)
}

// WriteFile implements FileSystem.
func (mfs *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name, err := mfs.resolveLocked(mfs.cleanPath(name))
	if err != nil {
		return err
	}

	if mfs.isDirLocked(name) {
		return &fs.PathError{Op: "open", Path: "/" + name, Err: fmt.Errorf("is a directory")}
	}

	if err := mfs.ensureParentDirLocked(name); err != nil {
		return err
	}

	mfs.mapFS[name] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    perm,
		ModTime: mfs.modTime,
	}

	return nil
}

// ReadFile implements FileSystem.
func (mfs *MapFileSystem) ReadFile(name string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolveLocked(mfs.cleanPath(name))
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(mfs.mapFS, fsName(resolved))
}

// Remove implements FileSystem.
func (mfs *MapFileSystem) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = mfs.cleanPath(name)

	if _, isLink := mfs.links[name]; isLink {
		delete(mfs.links, name)
		return nil
	}

	if _, exists := mfs.mapFS[name]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}

	delete(mfs.mapFS, name)
	return nil
}

// MkdirAll implements FileSystem.
func (mfs *MapFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	path = mfs.cleanPath(path)
	keepFile := path + "/.keep"

	if file, exists := mfs.mapFS[path]; exists && !file.Mode.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fmt.Errorf("not a directory")}
	}

	mfs.mapFS[keepFile] = &fstest.MapFile{
		Data:    []byte(""),
		Mode:    perm.Perm(),
		ModTime: mfs.modTime,
	}

	return nil
}

// TempDir implements FileSystem.
func (mfs *MapFileSystem) TempDir() string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.tempDir
}

// SetTempDir sets the temp directory path.
func (mfs *MapFileSystem) SetTempDir(dir string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.tempDir = dir
}

// Stat implements FileSystem.
func (mfs *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolveLocked(mfs.cleanPath(name))
	if err != nil {
		return nil, err
	}
	return fs.Stat(mfs.mapFS, fsName(resolved))
}

// Lstat implements FileSystem. Links are reported with fs.ModeSymlink;
// parent directories are still resolved.
func (mfs *MapFileSystem) Lstat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = mfs.cleanPath(name)
	dir, base := path.Split(name)
	parent, err := mfs.resolveLocked(strings.TrimSuffix(dir, "/"))
	if err != nil {
		return nil, err
	}
	full := path.Join(parent, base)

	if _, isLink := mfs.links[full]; isLink {
		return linkInfo{name: base, modTime: mfs.modTime}, nil
	}
	return fs.Stat(mfs.mapFS, fsName(full))
}

// EvalSymlinks implements FileSystem.
func (mfs *MapFileSystem) EvalSymlinks(p string) (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolveLocked(mfs.cleanPath(p))
	if err != nil {
		return "", err
	}
	if !mfs.existsLocked(resolved) {
		return "", &fs.PathError{Op: "lstat", Path: "/" + resolved, Err: fs.ErrNotExist}
	}
	return "/" + resolved, nil
}

// Exists implements FileSystem.
func (mfs *MapFileSystem) Exists(path string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolveLocked(mfs.cleanPath(path))
	if err != nil {
		return false
	}
	return mfs.existsLocked(resolved)
}

// Glob implements FileSystem. Matches are returned as absolute paths;
// directory marker files are never returned.
func (mfs *MapFileSystem) Glob(pattern string) ([]string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	matches, err := doublestar.Glob(mfs.mapFS, mfs.cleanPath(pattern))
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(matches))
	for _, m := range matches {
		if m == ".keep" || strings.HasSuffix(m, "/.keep") {
			continue
		}
		result = append(result, "/"+m)
	}
	return result, nil
}

// ReadDir implements FileSystem.
func (mfs *MapFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolveLocked(mfs.cleanPath(name))
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(mfs.mapFS, fsName(resolved))
}

// Open implements FileSystem.
func (mfs *MapFileSystem) Open(name string) (fs.File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolveLocked(mfs.cleanPath(name))
	if err != nil {
		return nil, err
	}
	return mfs.mapFS.Open(fsName(resolved))
}

// ListFiles returns all files in the MapFS for debugging.
func (mfs *MapFileSystem) ListFiles() map[string]string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	result := make(map[string]string)
	for p, file := range mfs.mapFS {
		// Directories are stored as .keep files
		if strings.HasSuffix(p, "/.keep") || p == ".keep" {
			dirPath := path.Dir(p)
			if dirPath == "." {
				dirPath = "/"
			}
			result[dirPath] = "directory"
		} else {
			result[p] = fmt.Sprintf("file (%d bytes)", len(file.Data))
		}
	}
	for p, target := range mfs.links {
		result[p] = "symlink -> /" + target
	}
	return result
}

func (mfs *MapFileSystem) cleanPath(p string) string {
	cleaned := path.Clean(p)
	if !path.IsAbs(cleaned) {
		cleaned = "/" + cleaned
	}
	return strings.TrimPrefix(cleaned, "/")
}

// resolveLocked replaces every symlinked prefix of p with its target.
func (mfs *MapFileSystem) resolveLocked(p string) (string, error) {
	if len(mfs.links) == 0 || p == "" {
		return p, nil
	}

	for hops := 0; hops < maxLinkHops; hops++ {
		parts := strings.Split(p, "/")
		replaced := false
		for i := 1; i <= len(parts); i++ {
			prefix := strings.Join(parts[:i], "/")
			target, isLink := mfs.links[prefix]
			if !isLink {
				continue
			}
			p = path.Join(append([]string{target}, parts[i:]...)...)
			replaced = true
			break
		}
		if !replaced {
			return p, nil
		}
	}

	return "", &fs.PathError{Op: "resolve", Path: "/" + p, Err: fmt.Errorf("too many levels of symbolic links")}
}

func (mfs *MapFileSystem) existsLocked(p string) bool {
	if p == "" {
		return true
	}
	if _, exists := mfs.mapFS[p]; exists {
		return true
	}

	prefix := p + "/"
	for filePath := range mfs.mapFS {
		if strings.HasPrefix(filePath, prefix) {
			return true
		}
	}

	return false
}

func (mfs *MapFileSystem) isDirLocked(p string) bool {
	if f, ok := mfs.mapFS[p]; ok {
		return f.Mode.IsDir()
	}
	prefix := p + "/"
	for filePath := range mfs.mapFS {
		if strings.HasPrefix(filePath, prefix) {
			return true
		}
	}
	return false
}

func (mfs *MapFileSystem) ensureParentDirLocked(filePath string) error {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}

	if file, exists := mfs.mapFS[dir]; exists && !file.Mode.IsDir() {
		return &fs.PathError{Op: "open", Path: filePath, Err: fmt.Errorf("not a directory")}
	}

	return nil
}

// fsName maps the cleaned root ("") onto the fs.FS root.
func fsName(p string) string {
	if p == "" {
		return "."
	}
	return p
}

// linkInfo is the fs.FileInfo reported by Lstat for a symlink.
type linkInfo struct {
	name    string
	modTime time.Time
}

func (li linkInfo) Name() string       { return li.name }
func (li linkInfo) Size() int64        { return 0 }
func (li linkInfo) Mode() fs.FileMode  { return fs.ModeSymlink | 0o777 }
func (li linkInfo) ModTime() time.Time { return li.modTime }
func (li linkInfo) IsDir() bool        { return false }
func (li linkInfo) Sys() any           { return nil }

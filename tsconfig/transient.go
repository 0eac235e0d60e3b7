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
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/resolve"
)

// TransientFileName is the name of the synthesized file inside a workspace.
const TransientFileName = ".rws.tsconfig.json"

// ErrBaseConfigMissing is returned when the base compiler configuration
// cannot be found.
var ErrBaseConfigMissing = errors.New("base compiler configuration not found")

// TransientWriteError reports a failure to persist the transient file.
type TransientWriteError struct {
	Path string
	Err  error
}

func (e *TransientWriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *TransientWriteError) Unwrap() error { return e.Err }

// CleanupError reports a failure to remove the transient file.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("removing %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

// State is the lifecycle stage of a Transient.
type State int

const (
	Unbuilt State = iota
	Written
	InMemory
	Removed
)

func (s State) String() string {
	switch s {
	case Unbuilt:
		return "unbuilt"
	case Written:
		return "written"
	case InMemory:
		return "in-memory"
	case Removed:
		return "removed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Descriptor describes a synthesized configuration.
type Descriptor struct {
	// Path is where the configuration lives, or would live when it was not
	// persisted.
	Path      string
	Config    *TSConfig
	Persisted bool
}

// Synthesizer produces per-workspace transient compiler configurations.
type Synthesizer struct {
	fs           fs.FileSystem
	builder      *SetBuilder
	manager      *config.Manager
	installRoot  string
	consumerRoot string
	logger       resolve.Logger
}

// NewSynthesizer creates a Synthesizer over manager's workspaces. The
// install root is discovered from the application root unless set with
// WithInstallRoot. logger may be nil.
func NewSynthesizer(fsys fs.FileSystem, manager *config.Manager, logger resolve.Logger) *Synthesizer {
	return &Synthesizer{
		fs:      fsys,
		builder: NewSetBuilder(fsys, manager, logger),
		manager: manager,
		logger:  logger,
	}
}

// WithInstallRoot returns a copy using installRoot for manifests and base
// configurations, and consumerRoot for link probing.
func (s *Synthesizer) WithInstallRoot(installRoot, consumerRoot string) *Synthesizer {
	c := *s
	c.installRoot = installRoot
	c.consumerRoot = consumerRoot
	return &c
}

// WithSetBuilder returns a copy using builder.
func (s *Synthesizer) WithSetBuilder(builder *SetBuilder) *Synthesizer {
	c := *s
	c.builder = builder
	return &c
}

// Build computes the include and exclude sets of the buildType workspace.
// Nothing is written.
func (s *Synthesizer) Build(appRoot string, buildType config.BuildType) (*Transient, error) {
	ws, err := s.manager.Section(buildType)
	if err != nil {
		return nil, err
	}

	installRoot, consumerRoot := s.installRoot, s.consumerRoot
	if installRoot == "" {
		installRoot = resolve.InstallRoot(s.fs, appRoot)
		consumerRoot = filepath.Dir(installRoot)
	}

	req := Request{
		InstallRoot:  installRoot,
		WorkspaceDir: ws.Settings().Dir(appRoot),
		AppRoot:      appRoot,
		ConsumerRoot: consumerRoot,
		BuildType:    buildType,
	}
	sets, err := s.builder.Build(req)
	if err != nil {
		return nil, err
	}

	return &Transient{
		fs:        s.fs,
		logger:    s.logger,
		workspace: ws,
		request:   req,
		sets:      sets,
		path:      filepath.Join(req.WorkspaceDir, TransientFileName),
	}, nil
}

// Transient is one workspace's synthesized configuration. It is owned by a
// single build and is not safe for concurrent use.
type Transient struct {
	fs        fs.FileSystem
	logger    resolve.Logger
	workspace config.Workspace
	request   Request
	sets      *IncludeExclude

	path        string
	config      *TSConfig
	state       State
	removeAfter bool
}

// Path returns the target path of the transient file.
func (t *Transient) Path() string { return t.path }

// State returns the lifecycle stage.
func (t *Transient) State() State { return t.state }

// Sets returns the computed include and exclude sets.
func (t *Transient) Sets() *IncludeExclude { return t.sets }

// Config returns the merged configuration, or nil before WriteAndReturn.
func (t *Transient) Config() *TSConfig { return t.config }

// WriteAndReturn merges the sets into the base configuration of the
// packageRootRef package. With persist the result is written to Path in a
// single write. With removeAfter a later Remove deletes it.
func (t *Transient) WriteAndReturn(packageRootRef string, persist, removeAfter bool) (*Descriptor, error) {
	if t.state != Unbuilt {
		return nil, fmt.Errorf("transient %s already %s", t.path, t.state)
	}

	basePath := filepath.Join(t.request.InstallRoot, filepath.FromSlash(packageRootRef), FileName)
	data, err := t.fs.ReadFile(basePath)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", basePath, ErrBaseConfigMissing)
		}
		return nil, fmt.Errorf("reading %s: %w", basePath, err)
	}
	base, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", basePath, err)
	}

	t.config = t.merge(base)

	if !persist {
		t.state = InMemory
		return &Descriptor{Path: t.path, Config: t.config}, nil
	}

	out, err := t.config.Encode()
	if err != nil {
		return nil, &TransientWriteError{Path: t.path, Err: err}
	}
	if err := t.fs.WriteFile(t.path, out, 0o644); err != nil {
		// A failed write may leave a truncated file behind.
		if rmErr := t.fs.Remove(t.path); rmErr != nil && !errors.Is(rmErr, iofs.ErrNotExist) && t.logger != nil {
			t.logger.Warning("Could not remove partial %s: %v", t.path, rmErr)
		}
		return nil, &TransientWriteError{Path: t.path, Err: err}
	}
	t.state = Written
	t.removeAfter = removeAfter
	if t.logger != nil {
		t.logger.Debug("Wrote %s", t.path)
	}
	return &Descriptor{Path: t.path, Config: t.config, Persisted: true}, nil
}

func (t *Transient) merge(base *TSConfig) *TSConfig {
	cfg := base.Clone()
	workspaceDir := t.request.WorkspaceDir

	for k, v := range DefaultCompilerOptions() {
		cfg.CompilerOptions[k] = v
	}
	cfg.CompilerOptions["baseUrl"] = workspaceDir
	cfg.CompilerOptions["paths"] = MergeAliases(
		base.Paths(),
		t.workspace.Settings().TSPaths(),
		t.sets.Aliases,
	)

	cfg.Include = t.sets.Includes.Map(NormalizeClient).RelTo(workspaceDir)
	cfg.Exclude = t.sets.Excludes.RelTo(workspaceDir)
	return cfg
}

// Remove deletes the transient file when it was written with removeAfter.
// A file that is already gone is not an error. Later calls do nothing.
func (t *Transient) Remove() error {
	if t.state != Written || !t.removeAfter {
		return nil
	}
	t.state = Removed
	if err := t.fs.Remove(t.path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return &CleanupError{Path: t.path, Err: err}
	}
	if t.logger != nil {
		t.logger.Debug("Removed %s", t.path)
	}
	return nil
}

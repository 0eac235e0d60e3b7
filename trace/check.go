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
	"fmt"
	"path/filepath"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/packagejson"
	"rwsframework.dev/manager/resolve"
	"rwsframework.dev/manager/tsconfig"
)

// CheckOptions configures Check.
type CheckOptions struct {
	// Parallel is the number of files parsed at once.
	// Defaults to runtime.NumCPU() if <= 0.
	Parallel int
	// Logger receives resolution diagnostics. May be nil.
	Logger resolve.Logger
}

// CheckResult is the outcome of checking one workspace.
type CheckResult struct {
	BuildType    config.BuildType `json:"buildType" yaml:"buildType"`
	SourceDir    string           `json:"sourceDir" yaml:"sourceDir"`
	Modules      int              `json:"modules" yaml:"modules"`
	Dependencies []string         `json:"dependencies" yaml:"dependencies"`
	Issues       []ImportIssue    `json:"issues,omitempty" yaml:"issues,omitempty"`
	Errors       []string         `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Check traces the sources of the bt workspace and reports framework
// imports its dependency set does not cover.
func Check(fsys fs.FileSystem, manager *config.Manager, bt config.BuildType, opts CheckOptions) (*CheckResult, error) {
	ws, err := manager.Section(bt)
	if err != nil {
		return nil, err
	}

	appRoot := manager.AppRoot
	workspaceDir := ws.Settings().Dir(appRoot)
	installRoot := resolve.InstallRoot(fsys, appRoot)

	sets, err := tsconfig.NewSetBuilder(fsys, manager, opts.Logger).Build(tsconfig.Request{
		InstallRoot:  installRoot,
		WorkspaceDir: workspaceDir,
		AppRoot:      appRoot,
		ConsumerRoot: filepath.Dir(installRoot),
		BuildType:    bt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bt, err)
	}

	sourceDir := workspaceDir
	if src := filepath.Join(workspaceDir, "src"); fsys.Exists(src) {
		sourceDir = src
	}

	graph, err := NewTracer(fsys).WithParallel(opts.Parallel).TraceDir(sourceDir)
	if err != nil {
		return nil, err
	}

	var self string
	if pkg, err := packagejson.ParseFile(fsys, filepath.Join(workspaceDir, packagejson.FileName)); err == nil {
		self = pkg.Name
	}

	result := &CheckResult{
		BuildType:    bt,
		SourceDir:    sourceDir,
		Modules:      len(graph.Modules),
		Dependencies: sets.Dependencies.Items(),
		Issues:       graph.CheckImports(fsys, installRoot, resolve.Namespace, sets.Dependencies, self),
	}
	for _, e := range graph.Errors {
		result.Errors = append(result.Errors, e.Error())
	}
	return result, nil
}

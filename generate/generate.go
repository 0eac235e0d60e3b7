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
// Package generate writes the application root compiler configuration
// covering every configured workspace.
package generate

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/resolve"
	"rwsframework.dev/manager/tsconfig"
)

// Result describes a generated root configuration.
type Result struct {
	Path   string             `json:"path" yaml:"path"`
	Config *tsconfig.TSConfig `json:"-" yaml:"-"`
	// Packages are the internal framework packages found across all
	// workspaces.
	Packages []string `json:"packages" yaml:"packages"`
	Includes []string `json:"include" yaml:"include"`
	Excludes []string `json:"exclude" yaml:"exclude"`
}

// Generator produces the root tsconfig.json of an application.
type Generator struct {
	fs      fs.FileSystem
	manager *config.Manager
	builder *tsconfig.SetBuilder
	logger  resolve.Logger
}

// NewGenerator creates a Generator. logger may be nil.
func NewGenerator(fsys fs.FileSystem, manager *config.Manager, logger resolve.Logger) *Generator {
	return &Generator{
		fs:      fsys,
		manager: manager,
		builder: tsconfig.NewSetBuilder(fsys, manager, logger),
		logger:  logger,
	}
}

// TSConfig merges the include and exclude sets of every configured
// workspace into appRoot/tsconfig.json. An existing file keeps its other
// fields; otherwise the framework default compiler options are used. With
// write false nothing is written.
func (g *Generator) TSConfig(write bool) (*Result, error) {
	appRoot := g.manager.AppRoot
	if g.manager.File == "" {
		if _, err := config.Find(g.fs, appRoot); err != nil {
			return nil, fmt.Errorf("tsconfig.json can only be generated in an application root: %w", err)
		}
	}

	target := filepath.Join(appRoot, tsconfig.FileName)
	cfg, err := g.load(target)
	if err != nil {
		return nil, err
	}

	installRoot := resolve.InstallRoot(g.fs, appRoot)
	includes := &tsconfig.PathList{}
	excludes := &tsconfig.PathList{}
	aliases := map[string][]string{}
	packages := resolve.NewDependencySet()

	for _, ws := range g.manager.Configured() {
		sets, err := g.builder.Build(tsconfig.Request{
			InstallRoot:  installRoot,
			WorkspaceDir: ws.Settings().Dir(appRoot),
			AppRoot:      appRoot,
			ConsumerRoot: filepath.Dir(installRoot),
			BuildType:    ws.Type(),
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ws.Type(), err)
		}
		includes.AddAll(sets.Includes)
		excludes.AddAll(sets.Excludes)
		aliases = tsconfig.MergeAliases(aliases, sets.Aliases)
		packages = packages.Union(sets.Dependencies)
	}

	cfg.Include = includes.Map(tsconfig.NormalizeClient).RelTo(appRoot)
	cfg.Exclude = excludes.RelTo(appRoot)
	if len(aliases) > 0 {
		cfg.CompilerOptions["paths"] = tsconfig.MergeAliases(cfg.Paths(), aliases)
	}

	result := &Result{
		Path:     target,
		Config:   cfg,
		Packages: packages.Items(),
		Includes: cfg.Include,
		Excludes: cfg.Exclude,
	}
	if !write {
		return result, nil
	}

	data, err := cfg.Encode()
	if err != nil {
		return nil, err
	}
	if err := g.fs.WriteFile(target, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", target, err)
	}
	if g.logger != nil {
		g.logger.Debug("Generated %s", target)
	}
	return result, nil
}

func (g *Generator) load(path string) (*tsconfig.TSConfig, error) {
	data, err := g.fs.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return &tsconfig.TSConfig{CompilerOptions: tsconfig.DefaultCompilerOptions()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := tsconfig.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

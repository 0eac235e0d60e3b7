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
// Package build runs the per-workspace build pipeline: synthesize the
// transient compiler configuration, hand it to the bundler, and remove it.
package build

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/resolve"
	"rwsframework.dev/manager/tsconfig"
)

// Logger receives pipeline progress.
type Logger interface {
	resolve.Logger
	Info(format string, args ...any)
}

// PackageRoot returns the framework package whose base compiler
// configuration a build type extends.
func PackageRoot(bt config.BuildType) string {
	if bt == config.Front {
		return tsconfig.ClientPackage
	}
	return "@rws-framework/server"
}

// DefaultBundlerConfig returns the framework's bundler configuration for a
// build type, as a package reference.
func DefaultBundlerConfig(bt config.BuildType) string {
	switch bt {
	case config.Front:
		return tsconfig.ClientPackage + "/builder/webpack/rws.webpack.config.js"
	case config.CLI:
		return "@rws-framework/server/cli.rws.webpack.config.js"
	default:
		return "@rws-framework/server/rws.webpack.config.js"
	}
}

// Options tunes a Pipeline.
type Options struct {
	// KeepTransient leaves the synthesized configuration on disk.
	KeepTransient bool
	// Dev asks the bundler for a development build.
	Dev bool
	// Parallel builds every workspace concurrently in BuildAll.
	Parallel bool
}

// Result reports one workspace build.
type Result struct {
	BuildType config.BuildType `json:"buildType" yaml:"buildType"`
	TSConfig  string           `json:"tsconfig" yaml:"tsconfig"`
	Output    string           `json:"output" yaml:"output"`
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Pipeline builds the workspaces of one application.
type Pipeline struct {
	fs      fs.FileSystem
	manager *config.Manager
	synth   *tsconfig.Synthesizer
	bundler Bundler
	logger  Logger
	opts    Options
}

type nopLogger struct{}

func (nopLogger) Warning(string, ...any) {}
func (nopLogger) Debug(string, ...any)   {}
func (nopLogger) Info(string, ...any)    {}

// New creates a Pipeline over manager's workspaces. logger may be nil.
func New(fsys fs.FileSystem, manager *config.Manager, bundler Bundler, logger Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Pipeline{
		fs:      fsys,
		manager: manager,
		synth:   tsconfig.NewSynthesizer(fsys, manager, logger),
		bundler: bundler,
		logger:  logger,
		opts:    opts,
	}
}

// Build builds a single workspace. The transient configuration is removed
// whatever the bundler outcome, unless Options.KeepTransient is set.
func (p *Pipeline) Build(ctx context.Context, bt config.BuildType) (*Result, error) {
	ws, err := p.manager.Section(bt)
	if err != nil {
		return nil, err
	}

	appRoot := p.manager.AppRoot
	transient, err := p.synth.Build(appRoot, bt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bt, err)
	}
	defer func() {
		if err := transient.Remove(); err != nil {
			p.logger.Warning("%v", err)
		}
	}()

	desc, err := transient.WriteAndReturn(PackageRoot(bt), true, !p.opts.KeepTransient)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bt, err)
	}

	job := p.job(ws, desc.Path)
	result := &Result{
		BuildType: bt,
		TSConfig:  desc.Path,
		Output:    filepath.Join(job.OutputDir, job.OutputFile),
	}

	p.logger.Info("Building %s workspace in %s", bt, job.WorkspaceDir)
	if err := p.bundler.Bundle(ctx, job); err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%s: %w", bt, err)
	}
	p.logger.Info("Built %s", result.Output)
	return result, nil
}

// BuildAll builds every configured workspace in front, back, cli order,
// stopping at the first failure. With Options.Parallel the builds run
// concurrently and the first failure cancels the others. Results are
// returned in build order either way.
func (p *Pipeline) BuildAll(ctx context.Context) ([]*Result, error) {
	workspaces := p.manager.Configured()
	if len(workspaces) == 0 {
		return nil, fmt.Errorf("no workspaces configured in %s", config.ConfigName)
	}

	if !p.opts.Parallel {
		var results []*Result
		for _, ws := range workspaces {
			r, err := p.Build(ctx, ws.Type())
			if r != nil {
				results = append(results, r)
			}
			if err != nil {
				return results, err
			}
		}
		return results, nil
	}

	if err := p.checkDistinctDirs(workspaces); err != nil {
		return nil, err
	}

	results := make([]*Result, len(workspaces))
	g, gctx := errgroup.WithContext(ctx)
	for i, ws := range workspaces {
		g.Go(func() error {
			r, err := p.Build(gctx, ws.Type())
			results[i] = r
			return err
		})
	}
	err := g.Wait()

	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, err
}

// checkDistinctDirs rejects parallel builds whose transient files would
// collide.
func (p *Pipeline) checkDistinctDirs(workspaces []config.Workspace) error {
	seen := make(map[string]config.BuildType, len(workspaces))
	for _, ws := range workspaces {
		dir := ws.Settings().Dir(p.manager.AppRoot)
		if other, ok := seen[dir]; ok {
			return fmt.Errorf("%s and %s share %s: build them sequentially", other, ws.Type(), dir)
		}
		seen[dir] = ws.Type()
	}
	return nil
}

func (p *Pipeline) job(ws config.Workspace, tsconfigPath string) Job {
	appRoot := p.manager.AppRoot
	b := ws.Settings()
	dir := b.Dir(appRoot)

	var publicDir string
	if b.PublicDir != "" {
		publicDir = filepath.Join(dir, filepath.FromSlash(b.PublicDir))
	}

	return Job{
		BuildType:    ws.Type(),
		AppRoot:      appRoot,
		WorkspaceDir: dir,
		TSConfigPath: tsconfigPath,
		Entrypoint:   filepath.Join(dir, filepath.FromSlash(b.EntrypointOrDefault())),
		OutputDir:    filepath.Join(dir, filepath.FromSlash(b.OutputDirOrDefault())),
		OutputFile:   b.OutputFileNameFor(ws.Type()),
		PublicDir:    publicDir,
		ConfigFile:   p.bundlerConfig(ws, dir),
		Environment:  config.EnvironmentOf(ws),
		Dev:          p.opts.Dev,
	}
}

// bundlerConfig returns the workspace's own bundler configuration, or the
// framework default when it is installed.
func (p *Pipeline) bundlerConfig(ws config.Workspace, dir string) string {
	if custom := ws.Settings().BundlerConfigFile(); custom != "" {
		return filepath.Join(dir, filepath.FromSlash(custom))
	}
	installRoot := resolve.InstallRoot(p.fs, p.manager.AppRoot)
	def := filepath.Join(installRoot, filepath.FromSlash(DefaultBundlerConfig(ws.Type())))
	if p.fs.Exists(def) {
		return def
	}
	p.logger.Debug("No bundler configuration at %s", def)
	return ""
}

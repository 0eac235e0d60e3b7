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
package build

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/internal/mapfs"
	"rwsframework.dev/manager/testutil"
	"rwsframework.dev/manager/tsconfig"
)

const nm = "/app/node_modules/@rws-framework"

type recordingBundler struct {
	mu      sync.Mutex
	fs      fs.FileSystem
	jobs    []Job
	present map[config.BuildType]bool
	fail    map[config.BuildType]error
}

func newRecorder(fsys fs.FileSystem) *recordingBundler {
	return &recordingBundler{
		fs:      fsys,
		present: map[config.BuildType]bool{},
		fail:    map[config.BuildType]error{},
	}
}

func (b *recordingBundler) Bundle(ctx context.Context, job Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs = append(b.jobs, job)
	b.present[job.BuildType] = b.fs.Exists(job.TSConfigPath)
	return b.fail[job.BuildType]
}

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Warning(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, format)
}
func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}

func newProject(t *testing.T) *mapfs.MapFileSystem {
	t.Helper()
	return testutil.NewProjectFS(t, map[string]string{
		"/app/package.json":       testutil.Manifest(t, "app", false),
		"/app/front/package.json": testutil.Manifest(t, "front", false, "@rws-framework/client"),
		"/app/front/src/index.ts": "",
		"/app/back/src/index.ts":  "",
		"/app/cli/src/main.ts":    "",

		nm + "/client/package.json":                          testutil.Manifest(t, "@rws-framework/client", true),
		nm + "/client/tsconfig.json":                         `{"compilerOptions": {"lib": ["dom"]}}`,
		nm + "/client/builder/webpack/rws.webpack.config.js": "",
		nm + "/server/package.json":                          testutil.Manifest(t, "@rws-framework/server", true),
		nm + "/server/tsconfig.json":                         `{"compilerOptions": {}}`,
		nm + "/server/rws.webpack.config.js":                 "",
	})
}

func newManager() *config.Manager {
	return &config.Manager{
		AppRoot: "/app",
		Front:   &config.FrontWorkspace{Base: config.Base{WorkspaceDir: "front", PublicDir: "public"}},
		Back:    &config.BackWorkspace{Base: config.Base{WorkspaceDir: "back"}, Environment: config.Node},
		CLI: &config.CLIWorkspace{
			Base: config.Base{
				WorkspaceDir: "cli",
				Entrypoint:   "src/main.ts",
				Builders:     &config.Builders{Webpack: &config.WebpackBuilder{ConfigFile: "webpack.cli.js"}},
			},
			Environment: config.Bun,
		},
	}
}

func TestPipelineBuild(t *testing.T) {
	mfs := newProject(t)
	bundler := newRecorder(mfs)
	p := New(mfs, newManager(), bundler, nil, Options{})

	result, err := p.Build(context.Background(), config.Back)
	require.NoError(t, err)

	assert.Equal(t, &Result{
		BuildType: config.Back,
		TSConfig:  "/app/back/.rws.tsconfig.json",
		Output:    "/app/back/build/back.rws.js",
	}, result)

	require.Len(t, bundler.jobs, 1)
	job := bundler.jobs[0]
	assert.Equal(t, "/app/back", job.WorkspaceDir)
	assert.Equal(t, "/app/back/src/index.ts", job.Entrypoint)
	assert.Equal(t, nm+"/server/rws.webpack.config.js", job.ConfigFile)
	assert.Equal(t, config.Node, job.Environment)

	assert.True(t, bundler.present[config.Back], "transient exists while bundling")
	assert.False(t, mfs.Exists(result.TSConfig), "transient removed after bundling")
}

func TestPipelineBundlerConfig(t *testing.T) {
	mfs := newProject(t)
	bundler := newRecorder(mfs)
	p := New(mfs, newManager(), bundler, nil, Options{Dev: true})

	_, err := p.Build(context.Background(), config.CLI)
	require.NoError(t, err)
	_, err = p.Build(context.Background(), config.Front)
	require.NoError(t, err)

	require.Len(t, bundler.jobs, 2)
	assert.Equal(t, "/app/cli/webpack.cli.js", bundler.jobs[0].ConfigFile, "workspace override")
	assert.Equal(t, nm+"/client/builder/webpack/rws.webpack.config.js", bundler.jobs[1].ConfigFile)
	assert.True(t, bundler.jobs[0].Dev)
	assert.Empty(t, bundler.jobs[0].PublicDir)
	assert.Equal(t, "/app/front/public", bundler.jobs[1].PublicDir)
}

func TestPipelineRemovesTransientOnFailure(t *testing.T) {
	mfs := newProject(t)
	bundler := newRecorder(mfs)
	boom := errors.New("boom")
	bundler.fail[config.Back] = boom

	result, err := New(mfs, newManager(), bundler, nil, Options{}).Build(context.Background(), config.Back)
	require.ErrorIs(t, err, boom)
	require.NotNil(t, result)
	assert.Equal(t, "boom", result.Error)
	assert.True(t, bundler.present[config.Back])
	assert.False(t, mfs.Exists("/app/back/.rws.tsconfig.json"))
}

func TestPipelineKeepTransient(t *testing.T) {
	mfs := newProject(t)
	_, err := New(mfs, newManager(), newRecorder(mfs), nil, Options{KeepTransient: true}).
		Build(context.Background(), config.Back)
	require.NoError(t, err)
	assert.True(t, mfs.Exists("/app/back/.rws.tsconfig.json"))
}

func TestPipelineFailsBeforeBundling(t *testing.T) {
	t.Run("missing section", func(t *testing.T) {
		mfs := newProject(t)
		m := newManager()
		m.CLI = nil
		bundler := newRecorder(mfs)

		_, err := New(mfs, m, bundler, nil, Options{}).Build(context.Background(), config.CLI)
		var sectionErr *config.ConfigSectionError
		require.True(t, errors.As(err, &sectionErr))
		assert.Empty(t, bundler.jobs)
	})

	t.Run("base config missing", func(t *testing.T) {
		mfs := newProject(t)
		require.NoError(t, mfs.Remove(nm+"/client/tsconfig.json"))
		bundler := newRecorder(mfs)

		_, err := New(mfs, newManager(), bundler, nil, Options{}).Build(context.Background(), config.Front)
		require.ErrorIs(t, err, tsconfig.ErrBaseConfigMissing)
		assert.Empty(t, bundler.jobs)
		assert.False(t, mfs.Exists("/app/front/.rws.tsconfig.json"))
	})
}

func TestPipelineBuildAll(t *testing.T) {
	t.Run("sequential", func(t *testing.T) {
		mfs := newProject(t)
		bundler := newRecorder(mfs)
		results, err := New(mfs, newManager(), bundler, nil, Options{}).BuildAll(context.Background())
		require.NoError(t, err)

		require.Len(t, results, 3)
		assert.Equal(t, config.Front, results[0].BuildType)
		assert.Equal(t, config.Back, results[1].BuildType)
		assert.Equal(t, config.CLI, results[2].BuildType)
		assert.Equal(t, config.Front, bundler.jobs[0].BuildType)
	})

	t.Run("sequential stops at failure", func(t *testing.T) {
		mfs := newProject(t)
		bundler := newRecorder(mfs)
		bundler.fail[config.Back] = errors.New("back broke")

		results, err := New(mfs, newManager(), bundler, nil, Options{}).BuildAll(context.Background())
		require.Error(t, err)
		assert.Len(t, results, 2)
		assert.Len(t, bundler.jobs, 2, "cli is not built")
	})

	t.Run("parallel", func(t *testing.T) {
		mfs := newProject(t)
		bundler := newRecorder(mfs)
		results, err := New(mfs, newManager(), bundler, nil, Options{Parallel: true}).BuildAll(context.Background())
		require.NoError(t, err)

		require.Len(t, results, 3)
		for i, bt := range config.BuildTypes {
			assert.Equal(t, bt, results[i].BuildType)
			assert.True(t, bundler.present[bt])
			assert.False(t, mfs.Exists(results[i].TSConfig))
		}
	})

	t.Run("parallel rejects shared workspace dirs", func(t *testing.T) {
		mfs := newProject(t)
		m := newManager()
		m.CLI.WorkspaceDir = "back"

		_, err := New(mfs, m, newRecorder(mfs), nil, Options{Parallel: true}).BuildAll(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "share")
	})

	t.Run("nothing configured", func(t *testing.T) {
		mfs := newProject(t)
		_, err := New(mfs, &config.Manager{AppRoot: "/app"}, newRecorder(mfs), nil, Options{}).BuildAll(context.Background())
		assert.Error(t, err)
	})
}

func TestPipelineOnDisk(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"package.json":                                     testutil.Manifest(t, "app", false),
		"back/src/index.ts":                                "",
		"node_modules/@rws-framework/server/package.json":  testutil.Manifest(t, "@rws-framework/server", true),
		"node_modules/@rws-framework/server/tsconfig.json": `{"compilerOptions": {}}`,
	})

	m := &config.Manager{
		AppRoot: root,
		Back:    &config.BackWorkspace{Base: config.Base{WorkspaceDir: "back"}, Environment: config.Node},
	}

	bundler, stdout, _ := newMockBundler()
	logger := &recordingLogger{}
	result, err := New(fs.NewOSFileSystem(), m, bundler, logger, Options{}).Build(context.Background(), config.Back)
	require.NoError(t, err)

	transient := filepath.Join(root, "back", tsconfig.TransientFileName)
	assert.Equal(t, transient, result.TSConfig)
	assert.Contains(t, stdout.String(), "tsconfig: present")
	assert.Contains(t, stdout.String(), "RWS_TSCONFIG="+transient)
	assert.NoFileExists(t, transient)
	assert.Empty(t, logger.warnings)
}

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
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rwsframework.dev/manager/config"
)

// mockCommand re-executes the test binary as the bundler.
func mockCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

func newMockBundler(command ...string) (*CommandBundler, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	b := NewCommandBundler(&BundlerOptions{Command: command, Stdout: &stdout, Stderr: &stderr})
	b.commandFunc = mockCommand
	return b, &stdout, &stderr
}

// TestHelperProcess is the fake bundler.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "no command specified")
		os.Exit(2)
	}

	switch args[0] {
	case "npx":
		fmt.Println("args:", strings.Join(args[1:], " "))
		for _, key := range []string{"RWS_TSCONFIG", "RWS_BUILD_TYPE", "APP_ROOT", "RWS_ENTRYPOINT", "RWS_OUTPUT_DIR", "RWS_OUTPUT_FILE", "RWS_DEV", "RWS_ENVIRONMENT"} {
			fmt.Printf("%s=%s\n", key, os.Getenv(key))
		}
		if wd, err := os.Getwd(); err == nil {
			fmt.Println("cwd:", wd)
		}
		if _, err := os.Stat(os.Getenv("RWS_TSCONFIG")); err == nil {
			fmt.Println("tsconfig: present")
		} else {
			fmt.Println("tsconfig: missing")
		}
		os.Exit(0)
	case "failing":
		fmt.Fprintln(os.Stderr, "compilation failed")
		os.Exit(1)
	case "hang":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s\n", args[0])
		os.Exit(2)
	}
}

func TestCommandBundlerArgs(t *testing.T) {
	b := NewCommandBundler(nil)
	assert.Equal(t, []string{"npx", "webpack"}, b.Args(Job{}))
	assert.Equal(t, []string{"npx", "webpack", "--config", "/app/back/webpack.config.js"},
		b.Args(Job{ConfigFile: "/app/back/webpack.config.js"}))

	custom := NewCommandBundler(&BundlerOptions{Command: []string{"bunx", "webpack", "--mode", "production"}})
	assert.Equal(t, []string{"bunx", "webpack", "--mode", "production"}, custom.Args(Job{}))
}

func TestJobEnviron(t *testing.T) {
	job := Job{
		BuildType:    config.Back,
		AppRoot:      "/app",
		TSConfigPath: "/app/back/.rws.tsconfig.json",
		Entrypoint:   "/app/back/src/index.ts",
		OutputDir:    "/app/back/build",
		OutputFile:   "back.rws.js",
		Environment:  config.Node,
	}

	env := job.Environ()
	assert.Contains(t, env, "RWS_TSCONFIG=/app/back/.rws.tsconfig.json")
	assert.Contains(t, env, "RWS_BUILD_TYPE=back")
	assert.Contains(t, env, "APP_ROOT=/app")
	assert.Contains(t, env, "RWS_ENTRYPOINT=/app/back/src/index.ts")
	assert.Contains(t, env, "RWS_OUTPUT_DIR=/app/back/build")
	assert.Contains(t, env, "RWS_OUTPUT_FILE=back.rws.js")
	assert.Contains(t, env, "RWS_DEV=false")
	assert.Contains(t, env, "RWS_ENVIRONMENT=node")

	for _, kv := range env {
		assert.False(t, strings.HasPrefix(kv, "RWS_PUBLIC_DIR="))
	}

	front := Job{BuildType: config.Front, PublicDir: "/app/front/public"}
	frontEnv := front.Environ()
	assert.Contains(t, frontEnv, "RWS_PUBLIC_DIR=/app/front/public")
	for _, kv := range frontEnv {
		assert.False(t, strings.HasPrefix(kv, "RWS_ENVIRONMENT="))
	}
}

func TestCommandBundlerBundle(t *testing.T) {
	dir := t.TempDir()

	t.Run("success", func(t *testing.T) {
		b, stdout, _ := newMockBundler()
		err := b.Bundle(context.Background(), Job{
			BuildType:    config.CLI,
			WorkspaceDir: dir,
			TSConfigPath: dir + "/.rws.tsconfig.json",
			ConfigFile:   "webpack.cli.js",
			Dev:          true,
		})
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "args: webpack --config webpack.cli.js")
		assert.Contains(t, out, "RWS_BUILD_TYPE=cli")
		assert.Contains(t, out, "RWS_DEV=true")
		assert.Contains(t, out, "tsconfig: missing")
	})

	t.Run("failure", func(t *testing.T) {
		b, _, stderr := newMockBundler("failing")
		err := b.Bundle(context.Background(), Job{WorkspaceDir: dir})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failing failed")
		assert.Contains(t, stderr.String(), "compilation failed")
	})

	t.Run("cancelled", func(t *testing.T) {
		b, _, _ := newMockBundler("hang")
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := b.Bundle(ctx, Job{WorkspaceDir: dir})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("command not found", func(t *testing.T) {
		b := NewCommandBundler(&BundlerOptions{Command: []string{"rws-no-such-bundler-xyz"}})
		err := b.Bundle(context.Background(), Job{WorkspaceDir: dir})
		require.Error(t, err)
		assert.ErrorIs(t, err, exec.ErrNotFound)
	})
}

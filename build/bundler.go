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
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"rwsframework.dev/manager/config"
)

// DefaultCommand runs the bundler through the package runner.
var DefaultCommand = []string{"npx", "webpack"}

// Job is one bundler invocation.
type Job struct {
	BuildType    config.BuildType
	AppRoot      string
	WorkspaceDir string
	// TSConfigPath is the synthesized compiler configuration.
	TSConfigPath string
	Entrypoint   string
	OutputDir    string
	OutputFile   string
	// PublicDir receives static assets of front builds. Empty when unset.
	PublicDir string
	// ConfigFile is the bundler configuration file. Empty lets the bundler
	// pick its default.
	ConfigFile  string
	Environment config.Environment
	Dev         bool
}

// Environ returns the variables handed to the bundler process.
func (j Job) Environ() []string {
	env := []string{
		"RWS_TSCONFIG=" + j.TSConfigPath,
		"RWS_BUILD_TYPE=" + string(j.BuildType),
		"APP_ROOT=" + j.AppRoot,
		"RWS_ENTRYPOINT=" + j.Entrypoint,
		"RWS_OUTPUT_DIR=" + j.OutputDir,
		"RWS_OUTPUT_FILE=" + j.OutputFile,
		"RWS_DEV=" + strconv.FormatBool(j.Dev),
	}
	if j.Environment != "" {
		env = append(env, "RWS_ENVIRONMENT="+string(j.Environment))
	}
	if j.PublicDir != "" {
		env = append(env, "RWS_PUBLIC_DIR="+j.PublicDir)
	}
	return env
}

// Bundler produces a workspace artifact from a synthesized configuration.
type Bundler interface {
	Bundle(ctx context.Context, job Job) error
}

// BundlerOptions configures a CommandBundler.
type BundlerOptions struct {
	// Command is the executable and leading arguments. Defaults to
	// DefaultCommand.
	Command []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// CommandBundler runs an external bundler process in the workspace
// directory.
type CommandBundler struct {
	command []string
	stdout  io.Writer
	stderr  io.Writer

	// For mocking in tests
	commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewCommandBundler creates a CommandBundler. opts may be nil.
func NewCommandBundler(opts *BundlerOptions) *CommandBundler {
	if opts == nil {
		opts = &BundlerOptions{}
	}
	b := &CommandBundler{
		command:     opts.Command,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		commandFunc: exec.CommandContext,
	}
	if len(b.command) == 0 {
		b.command = DefaultCommand
	}
	if b.stdout == nil {
		b.stdout = os.Stdout
	}
	if b.stderr == nil {
		b.stderr = os.Stderr
	}
	return b
}

// Args returns the bundler command line for job.
func (b *CommandBundler) Args(job Job) []string {
	args := append([]string{}, b.command...)
	if job.ConfigFile != "" {
		args = append(args, "--config", job.ConfigFile)
	}
	return args
}

// Bundle runs the bundler and waits for it. Cancelling ctx kills the
// process.
func (b *CommandBundler) Bundle(ctx context.Context, job Job) error {
	args := b.Args(job)
	name := args[0]

	cmd := b.commandFunc(ctx, name, args[1:]...)
	cmd.Dir = job.WorkspaceDir
	cmd.Env = append(cmd.Environ(), job.Environ()...)
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
		if isCommandNotFound(err) {
			return fmt.Errorf("%w: install %s and try again", err, name)
		}
		return fmt.Errorf("%s failed: %w", strings.Join(args, " "), err)
	}
	return nil
}

func isCommandNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		strings.Contains(err.Error(), "executable file not found")
}

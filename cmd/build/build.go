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
// Package build provides the build command for rws-manager.
package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rwsframework.dev/manager/build"
	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/internal/output"
	"rwsframework.dev/manager/internal/progress"
	"rwsframework.dev/manager/internal/session"
)

// Cmd is the build cobra command that bundles one or every workspace.
var Cmd = &cobra.Command{
	Use:   "build <front|back|cli|all>",
	Short: "Build a workspace with its transient tsconfig",
	Long: `Build synthesizes a transient .rws.tsconfig.json for the workspace,
runs the bundler against it and removes it again.

The transient configuration scopes the TypeScript program to the workspace
sources, the internal @rws-framework packages it depends on and the runtime
of its build type.`,
	Example: `  # Build the backend
  rws-manager build back

  # Build every configured workspace concurrently
  rws-manager build all --parallel

  # Keep .rws.tsconfig.json for inspection
  rws-manager build front --keep

  # Use another bundler command
  rws-manager build cli --command "bunx webpack"`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("parallel", false, "Build workspaces concurrently (with 'all')")
	Cmd.Flags().Bool("keep", false, "Keep the transient tsconfig after building")
	Cmd.Flags().Bool("dev", false, "Request a development build from the bundler")
	Cmd.Flags().String("command", "", "Bundler command (default: npx webpack)")
	Cmd.Flags().StringP("format", "f", "", "Print build results (json, yaml)")

	_ = viper.BindPFlag("build.parallel", Cmd.Flags().Lookup("parallel"))
	_ = viper.BindPFlag("build.keep", Cmd.Flags().Lookup("keep"))
	_ = viper.BindPFlag("build.dev", Cmd.Flags().Lookup("dev"))
	_ = viper.BindPFlag("build.command", Cmd.Flags().Lookup("command"))
	_ = viper.BindPFlag("build.format", Cmd.Flags().Lookup("format"))
}

func run(cmd *cobra.Command, args []string) error {
	s, err := session.Open(cmd)
	if err != nil {
		return err
	}

	bt, err := config.ParseBuildType(args[0])
	if err != nil {
		return err
	}

	var format output.Format
	if f := viper.GetString("build.format"); f != "" {
		if format, err = output.ParseFormat(f); err != nil {
			return err
		}
	}

	stderr := cmd.ErrOrStderr()
	spin := s.Logger.Styled() && !s.Logger.Verbose()

	// With a spinner on screen, bundler output is held back and shown
	// only when the build fails.
	var captured bytes.Buffer
	opts := &build.BundlerOptions{
		Command: strings.Fields(viper.GetString("build.command")),
		Stdout:  cmd.OutOrStdout(),
		Stderr:  stderr,
	}
	if spin {
		opts.Stdout = &captured
		opts.Stderr = &captured
	}

	pipeline := build.New(s.FS, s.Manager, build.NewCommandBundler(opts), s.Logger, build.Options{
		KeepTransient: viper.GetBool("build.keep"),
		Dev:           viper.GetBool("build.dev"),
		Parallel:      viper.GetBool("build.parallel"),
	})

	var results []*build.Result
	step := func(ctx context.Context) error {
		if bt == config.All {
			rs, err := pipeline.BuildAll(ctx)
			results = rs
			return err
		}
		r, err := pipeline.Build(ctx, bt)
		if r != nil {
			results = []*build.Result{r}
		}
		return err
	}

	if spin {
		err = progress.Run(contextOf(cmd), stderr, fmt.Sprintf("Building %s", bt), step)
		if err != nil {
			_, _ = io.Copy(stderr, &captured)
		}
	} else {
		err = step(contextOf(cmd))
	}

	if format != "" && len(results) > 0 {
		if werr := output.Write(s.FS, results, format); werr != nil {
			return werr
		}
	}
	return err
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

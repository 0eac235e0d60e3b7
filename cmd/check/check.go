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
// Package check provides the check command for rws-manager.
package check

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rwsframework.dev/manager/internal/output"
	"rwsframework.dev/manager/internal/session"
	"rwsframework.dev/manager/trace"
)

// ErrIssuesFound is returned when at least one workspace has undeclared
// framework imports.
var ErrIssuesFound = errors.New("import issues found")

// Cmd is the check cobra command that validates framework imports.
var Cmd = &cobra.Command{
	Use:   "check <front|back|cli|all>",
	Short: "Report framework imports missing from a workspace's dependencies",
	Long: `Check parses every TypeScript source of the workspace and reports
@rws-framework imports whose package is not part of the workspace's internal
dependency set. Such imports compile in the editor but fall outside the
transient tsconfig used for builds.

Exits non-zero when any issue is found.`,
	Example: `  # Check the frontend sources
  rws-manager check front

  # Check every workspace and write a YAML report
  rws-manager check all --format yaml -o check.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
	Cmd.Flags().IntP("jobs", "j", 0, "Files parsed at once (default: number of CPUs)")

	_ = viper.BindPFlag("check.format", Cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("check.jobs", Cmd.Flags().Lookup("jobs"))
}

func run(cmd *cobra.Command, args []string) error {
	s, err := session.Open(cmd)
	if err != nil {
		return err
	}
	types, err := s.BuildTypes(args[0])
	if err != nil {
		return err
	}

	opts := trace.CheckOptions{Parallel: viper.GetInt("check.jobs"), Logger: s.Logger}
	var results []*trace.CheckResult
	for _, bt := range types {
		r, err := trace.Check(s.FS, s.Manager, bt, opts)
		if err != nil {
			return err
		}
		for _, e := range r.Errors {
			s.Logger.Warning("%s", e)
		}
		results = append(results, r)
	}

	if f := viper.GetString("check.format"); f == "text" {
		if err := WriteText(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		format, err := output.ParseFormat(f)
		if err != nil {
			return err
		}
		if err := output.Write(s.FS, results, format); err != nil {
			return err
		}
	}

	if CountIssues(results) > 0 {
		return ErrIssuesFound
	}
	return nil
}

// CountIssues sums the issues of results.
func CountIssues(results []*trace.CheckResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Issues)
	}
	return n
}

// WriteText prints one line per issue in file:line form, followed by a
// summary per workspace.
func WriteText(w io.Writer, results []*trace.CheckResult) error {
	for _, r := range results {
		for _, issue := range r.Issues {
			if _, err := fmt.Fprintf(w, "%s:%d: %s (%s): %s\n", issue.File, issue.Line, issue.Specifier, issue.Kind, issue.IssueType); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s: %d modules, %d issues\n", r.BuildType, r.Modules, len(r.Issues)); err != nil {
			return err
		}
	}
	return nil
}

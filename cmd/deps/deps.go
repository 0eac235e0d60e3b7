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
// Package deps provides the deps command for rws-manager.
package deps

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/internal/output"
	"rwsframework.dev/manager/internal/session"
	"rwsframework.dev/manager/packagejson"
	"rwsframework.dev/manager/resolve"
	"rwsframework.dev/manager/tsconfig"
)

// Cmd is the deps cobra command that lists the internal packages of a workspace.
var Cmd = &cobra.Command{
	Use:   "deps <front|back|cli>",
	Short: "List the internal framework packages of a workspace",
	Long: `List the internal @rws-framework packages a workspace depends on,
directly or transitively, with the directory each resolves to, whether it is
a monorepo member linked into node_modules and which packages pull it in.`,
	Example: `  # Show the backend dependency set
  rws-manager deps back

  # As JSON
  rws-manager deps front --format json`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
	Cmd.Flags().Int("cache-size", packagejson.DefaultCacheSize, "Manifests held in memory during the scan")
	_ = viper.BindPFlag("deps.format", Cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("deps.cache-size", Cmd.Flags().Lookup("cache-size"))
}

// Package is one internal dependency of a workspace.
type Package struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	// Linked is set when node_modules holds a symlink to the package.
	Linked bool `json:"linked" yaml:"linked"`
	// Workspace is set when the package is a member of the monorepo.
	Workspace bool `json:"workspace" yaml:"workspace"`
	// Requires lists the internal packages it declares.
	Requires []string `json:"requires" yaml:"requires"`
	// Dependents lists every package that pulls it in, directly or not.
	Dependents []string `json:"dependents" yaml:"dependents"`
}

// Report is the dependency set of one workspace.
type Report struct {
	BuildType    config.BuildType `json:"buildType" yaml:"buildType"`
	WorkspaceDir string           `json:"workspaceDir" yaml:"workspaceDir"`
	Packages     []Package        `json:"packages" yaml:"packages"`
}

// Collect scans the manifests of the bt workspace and reports every
// internal package it reaches. cacheSize bounds the manifests held during
// the scan; a non-positive value uses the default.
func Collect(fsys fs.FileSystem, manager *config.Manager, bt config.BuildType, cacheSize int, logger resolve.Logger) (*Report, error) {
	ws, err := manager.Section(bt)
	if err != nil {
		return nil, err
	}

	appRoot := manager.AppRoot
	installRoot := resolve.InstallRoot(fsys, appRoot)
	consumerRoot := filepath.Dir(installRoot)
	workspaceDir := ws.Settings().Dir(appRoot)

	graph := resolve.NewDependencyGraph()
	members, err := resolve.DiscoverWorkspacePackages(fsys, consumerRoot)
	if err != nil && logger != nil {
		logger.Debug("No workspace packages under %s: %v", consumerRoot, err)
	}
	for _, m := range members {
		if m.Internal {
			graph.AddWorkspacePackage(m.Name)
		}
	}

	scanner := resolve.NewScanner(fsys, logger).WithGraph(graph).WithCacheSize(cacheSize)
	sets, err := tsconfig.NewSetBuilder(fsys, manager, logger).WithScanner(scanner).Build(tsconfig.Request{
		InstallRoot:  installRoot,
		WorkspaceDir: workspaceDir,
		AppRoot:      appRoot,
		ConsumerRoot: consumerRoot,
		BuildType:    bt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bt, err)
	}

	resolver := resolve.NewResolver(fsys, logger)
	report := &Report{BuildType: bt, WorkspaceDir: workspaceDir}
	for _, name := range sets.Dependencies.Items() {
		pkg := Package{
			Name:       name,
			Path:       graph.PackagePath(name),
			Workspace:  graph.IsWorkspacePackage(name),
			Requires:   nonNil(graph.Dependencies(name)),
			Dependents: nonNil(graph.TransitiveDependents(name)),
		}
		if linked, ok := resolver.Linked(name, consumerRoot); ok {
			pkg.Path = linked
			pkg.Linked = true
		}
		report.Packages = append(report.Packages, pkg)
	}
	return report, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// WriteText prints report as an aligned table.
func WriteText(w io.Writer, report *Report) error {
	if len(report.Packages) == 0 {
		_, err := fmt.Fprintf(w, "%s: no internal packages\n", report.BuildType)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range report.Packages {
		var flags []string
		if p.Workspace {
			flags = append(flags, "workspace")
		}
		if p.Linked {
			flags = append(flags, "linked")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t<- %s\n", p.Name, p.Path, strings.Join(flags, ","), strings.Join(p.Dependents, ", "))
	}
	return tw.Flush()
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
	if bt == config.All {
		return fmt.Errorf("deps takes a single build type")
	}

	report, err := Collect(s.FS, s.Manager, bt, viper.GetInt("deps.cache-size"), s.Logger)
	if err != nil {
		return err
	}

	f := viper.GetString("deps.format")
	if f == "text" {
		return WriteText(cmd.OutOrStdout(), report)
	}
	format, err := output.ParseFormat(f)
	if err != nil {
		return err
	}
	return output.Write(s.FS, report, format)
}

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
// Package config provides the config command for rws-manager.
package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/internal/output"
	"rwsframework.dev/manager/internal/session"
)

// Cmd is the config cobra command that prints the resolved configuration.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved workspace configuration",
	Long: `Print the rws.config workspaces with their defaults applied: absolute
directories, entrypoints, artifact paths and, for back and cli, the runtime
and whether it can run the artifact.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "yaml", "Output format (json, yaml)")
	_ = viper.BindPFlag("config.format", Cmd.Flags().Lookup("format"))
}

// Summary is the resolved configuration of an application.
type Summary struct {
	AppRoot string `json:"appRoot" yaml:"appRoot"`
	File    string `json:"file" yaml:"file"`
	// CLIExec is the invocation directory passed through CLI_EXEC.
	CLIExec    string      `json:"cliExec,omitempty" yaml:"cliExec,omitempty"`
	Workspaces []Workspace `json:"workspaces" yaml:"workspaces"`
}

// Workspace is one configured section with defaults applied.
type Workspace struct {
	BuildType     config.BuildType    `json:"buildType" yaml:"buildType"`
	Dir           string              `json:"dir" yaml:"dir"`
	Entrypoint    string              `json:"entrypoint" yaml:"entrypoint"`
	Output        string              `json:"output" yaml:"output"`
	BundlerConfig string              `json:"bundlerConfig,omitempty" yaml:"bundlerConfig,omitempty"`
	Paths         map[string][]string `json:"paths,omitempty" yaml:"paths,omitempty"`
	Environment   config.Environment  `json:"environment,omitempty" yaml:"environment,omitempty"`
	Runnable      bool                `json:"runnable" yaml:"runnable"`
	RoutesFile    string              `json:"routesFile,omitempty" yaml:"routesFile,omitempty"`
}

// Describe resolves every configured workspace of m and the environment
// overrides in env.
func Describe(m *config.Manager, env config.Env) *Summary {
	s := &Summary{AppRoot: m.AppRoot, File: m.File, CLIExec: env.CLIExecPath, Workspaces: []Workspace{}}
	for _, ws := range m.Configured() {
		b := ws.Settings()
		out, _ := m.OutputFilePath(ws.Type())
		w := Workspace{
			BuildType:     ws.Type(),
			Dir:           b.Dir(m.AppRoot),
			Entrypoint:    b.EntrypointPath(m.AppRoot),
			Output:        out,
			BundlerConfig: b.BundlerConfigFile(),
			Paths:         b.TSPaths(),
			Environment:   config.EnvironmentOf(ws),
			Runnable:      config.Runnable(ws),
		}
		if back, ok := ws.(*config.BackWorkspace); ok {
			w.RoutesFile = back.ExternalRoutesFile
		}
		s.Workspaces = append(s.Workspaces, w)
	}
	return s
}

func run(cmd *cobra.Command, args []string) error {
	s, err := session.Open(cmd)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(viper.GetString("config.format"))
	if err != nil {
		return err
	}
	return output.Write(s.FS, Describe(s.Manager, s.Env), format)
}

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
// Package generate provides the generate command for rws-manager.
package generate

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/generate"
	"rwsframework.dev/manager/internal/output"
	"rwsframework.dev/manager/internal/session"
)

// Cmd is the generate cobra command. Its subcommands write project files.
var Cmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate project files",
	Long:  `Generate project files derived from the rws.config workspaces.`,
}

var tsconfigCmd = &cobra.Command{
	Use:   "tsconfig",
	Short: "Generate the root tsconfig.json",
	Long: `Generate the root tsconfig.json of the application.

The include and exclude lists of every configured workspace are merged,
de-duplicated and written relative to the application root. Other fields of
an existing tsconfig.json are kept.`,
	Example: `  # Write tsconfig.json in the current application
  rws-manager generate tsconfig

  # Print the result without writing
  rws-manager generate tsconfig --dry-run

  # Summarize the merged sets as YAML
  rws-manager generate tsconfig --format yaml`,
	Args: cobra.NoArgs,
	RunE: runTSConfig,
}

func init() {
	tsconfigCmd.Flags().Bool("dry-run", false, "Print the configuration instead of writing it")
	tsconfigCmd.Flags().StringP("format", "f", "", "Print a summary (json, yaml)")

	_ = viper.BindPFlag("generate.dry-run", tsconfigCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("generate.format", tsconfigCmd.Flags().Lookup("format"))

	Cmd.AddCommand(tsconfigCmd)
}

func runTSConfig(cmd *cobra.Command, args []string) error {
	s, err := session.Open(cmd)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return fmt.Errorf("tsconfig.json can only be generated in an application root: %w", err)
		}
		return err
	}

	dryRun := viper.GetBool("generate.dry-run")
	result, err := generate.NewGenerator(s.FS, s.Manager, s.Logger).TSConfig(!dryRun)
	if err != nil {
		return err
	}

	if f := viper.GetString("generate.format"); f != "" {
		format, err := output.ParseFormat(f)
		if err != nil {
			return err
		}
		return output.Write(s.FS, result, format)
	}

	if dryRun {
		data, err := result.Config.Encode()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	s.Logger.Info("Wrote %s (%d packages, %d includes)", result.Path, len(result.Packages), len(result.Includes))
	return nil
}

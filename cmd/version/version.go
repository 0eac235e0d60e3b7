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
// Package version provides the version command for rws-manager.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"rwsframework.dev/manager/internal/output"
	"rwsframework.dev/manager/internal/version"
)

// Cmd is the version command.
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for rws-manager.`,
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
}

func run(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("error reading format flag: %w", err)
	}
	info := version.Get()
	if format == "text" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
		return err
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	data, err := output.Encode(info, f)
	if err != nil {
		return fmt.Errorf("error marshaling version info: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

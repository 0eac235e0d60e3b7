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
// Package output provides shared output utilities for rws-manager CLI commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"rwsframework.dev/manager/fs"
)

// Format is a structured output encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat parses a --format value. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown format %q: must be json or yaml", s)
}

// Encode renders v in the given format with a trailing newline.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(v)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// Write encodes v and writes it to stdout or a file.
// If viper's "output" flag is set, writes to that file; otherwise prints to stdout.
func Write(osfs fs.FileSystem, v any, format Format) error {
	return WriteTo(osfs, os.Stdout, v, format)
}

// WriteTo is Write with an explicit stdout.
func WriteTo(osfs fs.FileSystem, stdout io.Writer, v any, format Format) error {
	data, err := Encode(v, format)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	if outputPath := viper.GetString("output"); outputPath != "" {
		return osfs.WriteFile(outputPath, data, 0644)
	}
	_, err = stdout.Write(data)
	return err
}

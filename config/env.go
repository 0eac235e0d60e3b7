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
package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Viper keys for the environment overrides.
const (
	KeyAppRoot = "app-root"
	KeyCLIExec = "cli-exec"
)

// Env holds the environment overrides, read once at startup.
type Env struct {
	// AppRoot overrides the application root (APP_ROOT).
	AppRoot string
	// CLIExecPath is the directory the CLI was invoked from (CLI_EXEC).
	CLIExecPath string
}

// LoadDotenv loads dir/.env into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadDotenv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// BindEnv binds the environment variables behind Env to v.
func BindEnv(v *viper.Viper) {
	_ = v.BindEnv(KeyAppRoot, "APP_ROOT")
	_ = v.BindEnv(KeyCLIExec, "CLI_EXEC")
}

// ReadEnv reads Env from v. Flags bound to the same keys take precedence
// over the environment.
func ReadEnv(v *viper.Viper) Env {
	return Env{
		AppRoot:     v.GetString(KeyAppRoot),
		CLIExecPath: v.GetString(KeyCLIExec),
	}
}

// ResolveAppRoot returns the absolute application root: the override when set,
// otherwise cwd.
func (e Env) ResolveAppRoot(cwd string) (string, error) {
	root := e.AppRoot
	if root == "" {
		root = cwd
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(cwd, root)
	}
	return filepath.Abs(root)
}

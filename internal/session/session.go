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
// Package session resolves the per-invocation state shared by rws-manager
// commands: the application root, the loaded manager configuration and the
// logger.
package session

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/internal/logger"
)

// Session is the state of one command invocation.
type Session struct {
	FS      fs.FileSystem
	Env     config.Env
	AppRoot string
	Manager *config.Manager
	Logger  *logger.Logger
}

// Open resolves the application root from --app-root, APP_ROOT or the
// working directory and loads its rws.config file.
func Open(cmd *cobra.Command) (*Session, error) {
	return OpenFS(cmd, fs.NewOSFileSystem())
}

// OpenFS is Open over an explicit file system.
func OpenFS(cmd *cobra.Command, fsys fs.FileSystem) (*Session, error) {
	s, err := openRoot(cmd, fsys)
	if err != nil {
		return nil, err
	}

	manager, err := config.Load(fsys, s.AppRoot)
	if err != nil {
		return nil, err
	}
	s.Manager = manager
	s.Logger.Debug("Loaded %s", manager.File)
	return s, nil
}

func openRoot(cmd *cobra.Command, fsys fs.FileSystem) (*Session, error) {
	env := config.ReadEnv(viper.GetViper())

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	appRoot, err := env.ResolveAppRoot(cwd)
	if err != nil {
		return nil, fmt.Errorf("invalid app root: %w", err)
	}

	return &Session{
		FS:      fsys,
		Env:     env,
		AppRoot: appRoot,
		Logger:  NewLogger(cmd),
	}, nil
}

// NewLogger creates a logger on the command's stderr honouring --verbose
// and --no-color.
func NewLogger(cmd *cobra.Command) *logger.Logger {
	l := logger.New(cmd.ErrOrStderr(), viper.GetBool("verbose"))
	if viper.GetBool("no-color") {
		l.SetStyled(false)
	}
	return l
}

// BuildTypes parses a build type argument. "all" expands to every
// configured workspace type.
func (s *Session) BuildTypes(arg string) ([]config.BuildType, error) {
	bt, err := config.ParseBuildType(arg)
	if err != nil {
		return nil, err
	}
	if bt != config.All {
		return []config.BuildType{bt}, nil
	}
	var types []config.BuildType
	for _, ws := range s.Manager.Configured() {
		types = append(types, ws.Type())
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no workspaces configured in %s", s.Manager.File)
	}
	return types, nil
}

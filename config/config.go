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
// Package config loads the rws.config workspace sections and the environment
// overrides of the manager.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"rwsframework.dev/manager/fs"
)

// ConfigName is the base name of the manager configuration file.
const ConfigName = "rws.config"

// ErrConfigNotFound is returned when the app root holds no rws.config file.
var ErrConfigNotFound = errors.New("no " + ConfigName + ".{json,yaml,yml,toml} found")

// ConfigSectionError reports a build type with no configured section.
type ConfigSectionError struct {
	BuildType BuildType
}

func (e *ConfigSectionError) Error() string {
	return fmt.Sprintf("no %q section in %s", e.BuildType, ConfigName)
}

// Manager is the loaded manager configuration.
type Manager struct {
	// AppRoot is the absolute application root.
	AppRoot string `json:"-"`
	// File is the configuration file that was read, if any.
	File  string          `json:"-"`
	Front *FrontWorkspace `json:"front,omitempty"`
	Back  *BackWorkspace  `json:"back,omitempty"`
	CLI   *CLIWorkspace   `json:"cli,omitempty"`
}

// fileDoc accepts sections either at the top level or under "build".
type fileDoc struct {
	Build *Manager        `json:"build,omitempty"`
	Front *FrontWorkspace `json:"front,omitempty"`
	Back  *BackWorkspace  `json:"back,omitempty"`
	CLI   *CLIWorkspace   `json:"cli,omitempty"`
}

// Formats lists the configuration file extensions in lookup order.
var Formats = []string{"json", "yaml", "yml", "toml"}

// Find returns the path of the first rws.config.* file in appRoot.
func Find(fsys fs.FileSystem, appRoot string) (string, error) {
	for _, ext := range Formats {
		p := filepath.Join(appRoot, ConfigName+"."+ext)
		if fsys.Exists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", appRoot, ErrConfigNotFound)
}

// Load finds and decodes the manager configuration of appRoot.
//
// The document is decoded with the format's own parser rather than through
// viper, which folds map keys to lower case and would corrupt path aliases.
func Load(fsys fs.FileSystem, appRoot string) (*Manager, error) {
	file, err := Find(fsys, appRoot)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	m, err := Decode(data, strings.TrimPrefix(filepath.Ext(file), "."))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	m.AppRoot = appRoot
	m.File = file
	return m, nil
}

// Decode parses a configuration document. format is one of json, yaml,
// yml or toml.
func Decode(data []byte, format string) (*Manager, error) {
	switch format {
	case "json":
	case "yaml", "yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return nil, err
		}
	case "toml":
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	m := &Manager{Front: doc.Front, Back: doc.Back, CLI: doc.CLI}
	if doc.Build != nil {
		m.Front, m.Back, m.CLI = doc.Build.Front, doc.Build.Back, doc.Build.CLI
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) validate() error {
	var errs []error
	if m.Back != nil && m.Back.Environment != "" && !m.Back.Environment.Valid() {
		errs = append(errs, fmt.Errorf("back: unknown environment %q", m.Back.Environment))
	}
	if m.CLI != nil && m.CLI.Environment != "" && !m.CLI.Environment.Valid() {
		errs = append(errs, fmt.Errorf("cli: unknown environment %q", m.CLI.Environment))
	}
	return errors.Join(errs...)
}

// Section returns the workspace configured for bt.
func (m *Manager) Section(bt BuildType) (Workspace, error) {
	switch bt {
	case Front:
		if m.Front != nil {
			return m.Front, nil
		}
	case Back:
		if m.Back != nil {
			return m.Back, nil
		}
	case CLI:
		if m.CLI != nil {
			return m.CLI, nil
		}
	}
	return nil, &ConfigSectionError{BuildType: bt}
}

// Has reports whether bt has a configured section.
func (m *Manager) Has(bt BuildType) bool {
	_, err := m.Section(bt)
	return err == nil
}

// Configured returns the configured workspaces in build order.
func (m *Manager) Configured() []Workspace {
	var out []Workspace
	for _, bt := range BuildTypes {
		if ws, err := m.Section(bt); err == nil {
			out = append(out, ws)
		}
	}
	return out
}

// WorkspaceDir returns the absolute directory of the bt workspace.
func (m *Manager) WorkspaceDir(bt BuildType) (string, error) {
	ws, err := m.Section(bt)
	if err != nil {
		return "", err
	}
	return ws.Settings().Dir(m.AppRoot), nil
}

// OutputFilePath returns appRoot/workspaceDir/outputDir/outputFileName for bt.
func (m *Manager) OutputFilePath(bt BuildType) (string, error) {
	ws, err := m.Section(bt)
	if err != nil {
		return "", err
	}
	b := ws.Settings()
	return filepath.Join(b.Dir(m.AppRoot), filepath.FromSlash(b.OutputDirOrDefault()), b.OutputFileNameFor(bt)), nil
}

// OtherRunnable returns the runnable workspace that is not bt, if any.
// Back and CLI entrypoints must not leak into each other's compilation.
func (m *Manager) OtherRunnable(bt BuildType) Workspace {
	switch bt {
	case Back:
		if m.CLI != nil {
			return m.CLI
		}
	case CLI:
		if m.Back != nil {
			return m.Back
		}
	}
	return nil
}

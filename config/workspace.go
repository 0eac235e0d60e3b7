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
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// BuildType names a workspace section.
type BuildType string

const (
	Front BuildType = "front"
	Back  BuildType = "back"
	CLI   BuildType = "cli"
	All   BuildType = "all"
)

// BuildTypes lists the concrete build types in build order.
var BuildTypes = []BuildType{Front, Back, CLI}

// ParseBuildType parses a build type name, case-insensitively.
func ParseBuildType(s string) (BuildType, error) {
	bt := BuildType(strings.ToLower(strings.TrimSpace(s)))
	if bt == All || slices.Contains(BuildTypes, bt) {
		return bt, nil
	}
	return "", fmt.Errorf("unknown build type %q: must be one of front, back, cli, all", s)
}

// Environment is the runtime that executes a runnable workspace's artifact.
type Environment string

const (
	Node Environment = "node"
	Bun  Environment = "bunx"
	Deno Environment = "deno"
)

// Valid reports whether e is a known runtime.
func (e Environment) Valid() bool {
	switch e {
	case Node, Bun, Deno:
		return true
	}
	return false
}

const (
	// DefaultEntrypoint is used when a workspace declares no entrypoint.
	DefaultEntrypoint = "src/index.ts"
	// DefaultOutputDir is used when a workspace declares no output directory.
	DefaultOutputDir = "./build"
)

// Builders holds the per-builder sections of a workspace.
type Builders struct {
	TS      *TSBuilder      `json:"ts,omitempty"`
	Webpack *WebpackBuilder `json:"webpack,omitempty"`
}

// TSBuilder carries user compiler path aliases.
type TSBuilder struct {
	Paths map[string][]string `json:"paths,omitempty"`
}

// WebpackBuilder points at a custom bundler configuration file,
// relative to the workspace directory.
type WebpackBuilder struct {
	ConfigFile string `json:"configFile,omitempty"`
}

// Base holds the fields every workspace section shares.
type Base struct {
	WorkspaceDir   string    `json:"workspaceDir,omitempty"`
	Entrypoint     string    `json:"entrypoint,omitempty"`
	OutputDir      string    `json:"outputDir,omitempty"`
	OutputFileName string    `json:"outputFileName,omitempty"`
	PublicDir      string    `json:"publicDir,omitempty"`
	Builders       *Builders `json:"_builders,omitempty"`
}

// Dir returns the absolute workspace directory.
func (b *Base) Dir(appRoot string) string {
	return filepath.Join(appRoot, filepath.FromSlash(b.WorkspaceDir))
}

// EntrypointOrDefault returns the configured entrypoint or DefaultEntrypoint.
func (b *Base) EntrypointOrDefault() string {
	if b.Entrypoint == "" {
		return DefaultEntrypoint
	}
	return b.Entrypoint
}

// EntrypointPath returns the absolute path of the workspace entrypoint.
func (b *Base) EntrypointPath(appRoot string) string {
	return filepath.Join(b.Dir(appRoot), filepath.FromSlash(b.EntrypointOrDefault()))
}

// OutputDirOrDefault returns the configured output directory or DefaultOutputDir.
func (b *Base) OutputDirOrDefault() string {
	if b.OutputDir == "" {
		return DefaultOutputDir
	}
	return b.OutputDir
}

// OutputFileNameFor returns the configured artifact name or "<type>.rws.js".
func (b *Base) OutputFileNameFor(bt BuildType) string {
	if b.OutputFileName == "" {
		return string(bt) + ".rws.js"
	}
	return b.OutputFileName
}

// TSPaths returns the user declared path aliases, or nil.
func (b *Base) TSPaths() map[string][]string {
	if b.Builders == nil || b.Builders.TS == nil {
		return nil
	}
	return b.Builders.TS.Paths
}

// BundlerConfigFile returns the custom bundler config file, or "".
func (b *Base) BundlerConfigFile() string {
	if b.Builders == nil || b.Builders.Webpack == nil {
		return ""
	}
	return b.Builders.Webpack.ConfigFile
}

// Workspace is one configured build section. The concrete types are
// FrontWorkspace, BackWorkspace and CLIWorkspace; switch on them to reach
// type-specific fields.
type Workspace interface {
	Type() BuildType
	Settings() *Base
	isWorkspace()
}

// FrontWorkspace is the browser application section.
type FrontWorkspace struct {
	Base
}

// BackWorkspace is the server section.
type BackWorkspace struct {
	Base
	Environment        Environment `json:"environment,omitempty"`
	ExternalRoutesFile string      `json:"externalRoutesFile,omitempty"`
}

// CLIWorkspace is the command-line application section.
type CLIWorkspace struct {
	Base
	Environment Environment `json:"environment,omitempty"`
}

func (w *FrontWorkspace) Type() BuildType { return Front }
func (w *BackWorkspace) Type() BuildType  { return Back }
func (w *CLIWorkspace) Type() BuildType   { return CLI }

func (w *FrontWorkspace) Settings() *Base { return &w.Base }
func (w *BackWorkspace) Settings() *Base  { return &w.Base }
func (w *CLIWorkspace) Settings() *Base   { return &w.Base }

func (w *FrontWorkspace) isWorkspace() {}
func (w *BackWorkspace) isWorkspace()  {}
func (w *CLIWorkspace) isWorkspace()   {}

// Runnable reports whether the workspace produces an artifact that a known
// runtime can execute.
func Runnable(w Workspace) bool {
	switch ws := w.(type) {
	case *BackWorkspace:
		return ws.Environment.Valid()
	case *CLIWorkspace:
		return ws.Environment.Valid()
	case *FrontWorkspace:
		return false
	default:
		panic(fmt.Sprintf("config: unknown workspace type %T", w))
	}
}

// EnvironmentOf returns the runtime of a runnable workspace, or "".
func EnvironmentOf(w Workspace) Environment {
	switch ws := w.(type) {
	case *BackWorkspace:
		return ws.Environment
	case *CLIWorkspace:
		return ws.Environment
	case *FrontWorkspace:
		return ""
	default:
		panic(fmt.Sprintf("config: unknown workspace type %T", w))
	}
}

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
package tsconfig

import (
	"fmt"
	"maps"
	"path/filepath"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/fs"
	"rwsframework.dev/manager/packagejson"
	"rwsframework.dev/manager/resolve"
)

// Framework runtime paths that build-type rules add to the sets.
const (
	ServerRuntime = "@rws-framework/server/src"
	ClientBuilder = ClientPackage + "/builder"
	ClientCfg     = ClientPackage + "/cfg"
)

// Path aliases registered for a back workspace's external routes file.
const (
	RoutesAlias         = "@rws-routes"
	RoutesWildcardAlias = "@rws-routes/*"
)

// Request describes one include/exclude computation. All paths are absolute.
type Request struct {
	// InstallRoot is the node_modules directory dependency manifests are
	// read from.
	InstallRoot string
	// WorkspaceDir is the directory of the workspace being built.
	WorkspaceDir string
	// AppRoot is the application root holding rws.config.
	AppRoot string
	// ConsumerRoot is probed for workspace-linked packages. Empty disables
	// link resolution.
	ConsumerRoot string
	BuildType    config.BuildType
}

// IncludeExclude is the result of a SetBuilder run.
type IncludeExclude struct {
	Includes *PathList
	Excludes *PathList
	// Aliases are compiler path aliases contributed by build-type rules,
	// with absolute targets.
	Aliases map[string][]string
	// Dependencies is the internal dependency set the includes came from.
	Dependencies *resolve.DependencySet
}

// SetBuilder computes the ordered include and exclude sets of a workspace.
type SetBuilder struct {
	fs       fs.FileSystem
	manager  *config.Manager
	scanner  *resolve.Scanner
	resolver *resolve.Resolver
	logger   resolve.Logger
}

// NewSetBuilder creates a SetBuilder reading workspace sections from
// manager. logger may be nil.
func NewSetBuilder(fsys fs.FileSystem, manager *config.Manager, logger resolve.Logger) *SetBuilder {
	return &SetBuilder{
		fs:       fsys,
		manager:  manager,
		scanner:  resolve.NewScanner(fsys, logger),
		resolver: resolve.NewResolver(fsys, logger),
		logger:   logger,
	}
}

// WithScanner returns a copy of the builder using scanner, for example one
// with a DependencyGraph attached.
func (b *SetBuilder) WithScanner(scanner *resolve.Scanner) *SetBuilder {
	c := *b
	c.scanner = scanner
	return &c
}

// Build runs the computation for req.
func (b *SetBuilder) Build(req Request) (*IncludeExclude, error) {
	ws, err := b.manager.Section(req.BuildType)
	if err != nil {
		return nil, err
	}

	deps, err := b.dependencies(req)
	if err != nil {
		return nil, err
	}

	result := &IncludeExclude{
		Includes:     &PathList{},
		Excludes:     &PathList{},
		Aliases:      map[string][]string{},
		Dependencies: deps,
	}

	if b.fs.Exists(filepath.Join(req.WorkspaceDir, "src")) {
		entry := filepath.Join(req.WorkspaceDir, filepath.FromSlash(ws.Settings().EntrypointOrDefault()))
		result.Includes.Add(NewPathkeeper(req.WorkspaceDir, filepath.Dir(entry)))
	}

	for _, dep := range deps.Items() {
		result.Includes.Add(NewPathkeeper(req.WorkspaceDir, b.resolve(req, dep)))
	}

	switch w := ws.(type) {
	case *config.FrontWorkspace:
		result.Excludes.Add(NewPathkeeper(req.WorkspaceDir, b.resolve(req, ClientBuilder)))
		result.Excludes.Add(NewPathkeeper(req.WorkspaceDir, b.resolve(req, ClientCfg)))
	case *config.BackWorkspace:
		b.addRunnableRules(req, result)
		if w.ExternalRoutesFile != "" {
			routes := filepath.Join(req.WorkspaceDir, filepath.FromSlash(w.ExternalRoutesFile))
			routesDir := filepath.Dir(routes)
			result.Includes.Add(NewPathkeeper(req.WorkspaceDir, routesDir))
			result.Aliases[RoutesAlias] = []string{routes}
			result.Aliases[RoutesWildcardAlias] = []string{filepath.Join(routesDir, "*")}
		}
	case *config.CLIWorkspace:
		b.addRunnableRules(req, result)
	default:
		return nil, fmt.Errorf("unsupported workspace type %T", ws)
	}

	return result, nil
}

// dependencies scans the application and workspace manifests. A manifest
// that does not exist contributes nothing.
func (b *SetBuilder) dependencies(req Request) (*resolve.DependencySet, error) {
	var manifests []string
	if filepath.Clean(req.AppRoot) != filepath.Clean(req.WorkspaceDir) {
		manifests = append(manifests, filepath.Join(req.AppRoot, packagejson.FileName))
	}
	manifests = append(manifests, filepath.Join(req.WorkspaceDir, packagejson.FileName))

	deps := resolve.NewDependencySet()
	for _, manifest := range manifests {
		if !b.fs.Exists(manifest) {
			b.debug("No manifest at %s", manifest)
			continue
		}
		found, err := b.scanner.Scan(req.InstallRoot, manifest, true)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", manifest, err)
		}
		deps = deps.Union(found)
	}
	return deps, nil
}

func (b *SetBuilder) addRunnableRules(req Request, result *IncludeExclude) {
	server := b.resolve(req, ServerRuntime)
	if b.fs.Exists(server) {
		result.Includes.Add(NewPathkeeper(req.WorkspaceDir, server))
	} else {
		b.debug("Server runtime not installed at %s", server)
	}

	if other := b.manager.OtherRunnable(req.BuildType); other != nil {
		result.Excludes.Add(NewPathkeeper(req.WorkspaceDir, other.Settings().EntrypointPath(req.AppRoot)))
	}
}

func (b *SetBuilder) resolve(req Request, ref string) string {
	return b.resolver.Resolve(ref, req.InstallRoot, req.ConsumerRoot)
}

func (b *SetBuilder) debug(format string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(format, args...)
	}
}

// MergeAliases returns base overlaid with each overlay in turn.
func MergeAliases(base map[string][]string, overlays ...map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base))
	maps.Copy(out, base)
	for _, o := range overlays {
		maps.Copy(out, o)
	}
	return out
}

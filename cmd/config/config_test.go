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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rwsframework.dev/manager/config"
)

func TestDescribe(t *testing.T) {
	m, err := config.Decode([]byte(`{
		"front": {"workspaceDir": "front", "outputDir": "public/js"},
		"back": {
			"workspaceDir": "back",
			"environment": "bunx",
			"externalRoutesFile": "src/routes.ts",
			"_builders": {"ts": {"paths": {"@V/*": ["src/views/*"]}}}
		},
		"cli": {"workspaceDir": "tools", "entrypoint": "src/main.ts"}
	}`), "json")
	require.NoError(t, err)
	m.AppRoot = "/app"
	m.File = "/app/rws.config.json"

	s := Describe(m, config.Env{CLIExecPath: "/app/tools"})
	require.Len(t, s.Workspaces, 3)
	assert.Equal(t, "/app/rws.config.json", s.File)
	assert.Equal(t, "/app/tools", s.CLIExec)

	front, back, cli := s.Workspaces[0], s.Workspaces[1], s.Workspaces[2]

	assert.Equal(t, config.Front, front.BuildType)
	assert.Equal(t, "/app/front/public/js/front.rws.js", front.Output)
	assert.Equal(t, "/app/front/src/index.ts", front.Entrypoint)
	assert.False(t, front.Runnable)
	assert.Empty(t, front.Environment)

	assert.Equal(t, config.Bun, back.Environment)
	assert.True(t, back.Runnable)
	assert.Equal(t, "src/routes.ts", back.RoutesFile)
	assert.Equal(t, map[string][]string{"@V/*": {"src/views/*"}}, back.Paths)
	assert.Equal(t, "/app/back/build/back.rws.js", back.Output)

	assert.Equal(t, "/app/tools/src/main.ts", cli.Entrypoint)
	assert.False(t, cli.Runnable, "cli without environment is not runnable")
}

func TestDescribeEmpty(t *testing.T) {
	s := Describe(&config.Manager{AppRoot: "/app"}, config.Env{})
	assert.Empty(t, s.CLIExec)
	assert.NotNil(t, s.Workspaces)
	assert.Empty(t, s.Workspaces)
}

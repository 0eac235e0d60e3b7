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
package check

import (
	"bytes"
	"testing"

	"rwsframework.dev/manager/config"
	"rwsframework.dev/manager/trace"
)

func TestWriteText(t *testing.T) {
	results := []*trace.CheckResult{
		{
			BuildType: config.Front,
			Modules:   3,
			Issues: []trace.ImportIssue{
				{File: "/app/front/src/index.ts", Line: 4, Specifier: "@rws-framework/db", Package: "@rws-framework/db", IssueType: trace.NotDeclared, Kind: trace.Dynamic},
			},
		},
		{BuildType: config.Back, Modules: 1},
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, results); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	want := "/app/front/src/index.ts:4: @rws-framework/db (dynamic): not declared\n" +
		"front: 3 modules, 1 issues\n" +
		"back: 1 modules, 0 issues\n"
	if buf.String() != want {
		t.Errorf("WriteText() =\n%s\nwant:\n%s", buf.String(), want)
	}

	if n := CountIssues(results); n != 1 {
		t.Errorf("CountIssues() = %d, want 1", n)
	}
}

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
package output

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"

	"rwsframework.dev/manager/internal/mapfs"
)

type sample struct {
	Name  string   `json:"name" yaml:"name"`
	Paths []string `json:"paths" yaml:"paths"`
}

func TestEncode(t *testing.T) {
	v := sample{Name: "back", Paths: []string{"src"}}

	tests := []struct {
		format Format
		want   string
	}{
		{JSON, "{\n  \"name\": \"back\",\n  \"paths\": [\n    \"src\"\n  ]\n}\n"},
		{YAML, "name: back\npaths:\n    - src\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := Encode(v, tt.format)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": JSON, "json": JSON, "yaml": YAML, "yml": YAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestWriteTo(t *testing.T) {
	mfs := mapfs.New()

	t.Run("stdout", func(t *testing.T) {
		viper.Set("output", "")
		var buf bytes.Buffer
		if err := WriteTo(mfs, &buf, sample{Name: "x"}, JSON); err != nil {
			t.Fatalf("WriteTo failed: %v", err)
		}
		if buf.Len() == 0 {
			t.Error("nothing written to stdout")
		}
	})

	t.Run("file", func(t *testing.T) {
		viper.Set("output", "/out/result.yaml")
		t.Cleanup(func() { viper.Set("output", "") })

		var buf bytes.Buffer
		if err := WriteTo(mfs, &buf, sample{Name: "x"}, YAML); err != nil {
			t.Fatalf("WriteTo failed: %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("unexpected stdout %q", buf.String())
		}
		data, err := mfs.ReadFile("/out/result.yaml")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "name: x\npaths: []\n" {
			t.Errorf("file content = %q", data)
		}
	})
}

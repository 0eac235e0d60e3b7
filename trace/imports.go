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
package trace

import (
	"cmp"
	"fmt"
	"slices"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ImportKind is the syntactic form an import specifier appears in.
type ImportKind int

const (
	Static   ImportKind = iota // import ... from 'x' and import 'x'
	ReExport                   // export ... from 'x'
	Dynamic                    // import('x')
	Require                    // require('x')
)

func (k ImportKind) String() string {
	switch k {
	case Static:
		return "static"
	case ReExport:
		return "re-export"
	case Dynamic:
		return "dynamic"
	case Require:
		return "require"
	default:
		return fmt.Sprintf("ImportKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ImportKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// captureKinds maps the specifier captures of the imports query.
var captureKinds = map[string]ImportKind{
	"import.spec":        Static,
	"reexport.spec":      ReExport,
	"dynamicImport.spec": Dynamic,
	"require.spec":       Require,
}

// ModuleImport is one import specifier found in a source file.
type ModuleImport struct {
	Specifier string
	Kind      ImportKind
	Line      int // 1-indexed
}

// ExtractImports parses TypeScript content and returns its import
// specifiers ordered by line.
func ExtractImports(content []byte, dialect Dialect) ([]ModuleImport, error) {
	qm, err := GetQueryManager()
	if err != nil {
		return nil, err
	}
	query, err := qm.Query(dialect, "imports")
	if err != nil {
		return nil, err
	}

	parser := getParser(dialect)
	defer putParser(dialect, parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", dialect)
	}
	defer tree.Close()

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	matches := cursor.Matches(query, tree.RootNode(), content)

	var imports []ModuleImport
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, c := range match.Captures {
			kind, ok := captureKinds[names[c.Index]]
			if !ok {
				continue
			}
			imports = append(imports, ModuleImport{
				Specifier: c.Node.Utf8Text(content),
				Kind:      kind,
				Line:      int(c.Node.StartPosition().Row) + 1,
			})
		}
	}

	slices.SortStableFunc(imports, func(a, b ModuleImport) int {
		return cmp.Compare(a.Line, b.Line)
	})
	return imports, nil
}

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
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

//go:embed queries/*/*.scm
var queryFiles embed.FS

// Dialect selects the TypeScript grammar.
type Dialect int

const (
	TypeScript Dialect = iota
	TSX
)

func (d Dialect) String() string {
	if d == TSX {
		return "tsx"
	}
	return "typescript"
}

// DialectFor picks the grammar for a file name.
func DialectFor(name string) Dialect {
	if strings.HasSuffix(name, ".tsx") || strings.HasSuffix(name, ".jsx") {
		return TSX
	}
	return TypeScript
}

// Languages holds pre-initialized tree-sitter language grammars.
var languages = [...]*ts.Language{
	TypeScript: ts.NewLanguage(tsTypescript.LanguageTypescript()),
	TSX:        ts.NewLanguage(tsTypescript.LanguageTSX()),
}

// Parser pools for reuse, one per dialect.
var parserPools = [...]*sync.Pool{
	TypeScript: newParserPool(TypeScript),
	TSX:        newParserPool(TSX),
}

func newParserPool(d Dialect) *sync.Pool {
	return &sync.Pool{
		New: func() any {
			parser := ts.NewParser()
			if err := parser.SetLanguage(languages[d]); err != nil {
				panic("failed to set TypeScript language: " + err.Error())
			}
			return parser
		},
	}
}

func getParser(d Dialect) *ts.Parser {
	return parserPools[d].Get().(*ts.Parser)
}

func putParser(d Dialect, p *ts.Parser) {
	p.Reset()
	parserPools[d].Put(p)
}

// QueryManager holds compiled queries for both dialects.
type QueryManager struct {
	mu      sync.Mutex
	closed  bool
	queries [2]map[string]*ts.Query
}

// NewQueryManager compiles the named queries for both dialects.
func NewQueryManager(names ...string) (*QueryManager, error) {
	qm := &QueryManager{}
	for d := range qm.queries {
		qm.queries[d] = make(map[string]*ts.Query)
	}

	for _, name := range names {
		queryPath := path.Join("queries", "typescript", name+".scm")
		data, err := queryFiles.ReadFile(queryPath)
		if err != nil {
			qm.Close()
			return nil, fmt.Errorf("failed to read query %s: %w", queryPath, err)
		}
		for d := range qm.queries {
			query, qerr := ts.NewQuery(languages[d], string(data))
			if qerr != nil {
				qm.Close()
				return nil, fmt.Errorf("failed to parse query %s: %w", name, qerr)
			}
			qm.queries[d][name] = query
		}
	}

	return qm, nil
}

// Close releases all query resources. Safe to call multiple times.
func (qm *QueryManager) Close() {
	qm.mu.Lock()
	if qm.closed {
		qm.mu.Unlock()
		return
	}
	qm.closed = true
	queries := qm.queries
	qm.queries = [2]map[string]*ts.Query{}
	qm.mu.Unlock()

	for _, byName := range queries {
		for _, q := range byName {
			q.Close()
		}
	}
}

// Query returns a compiled query by dialect and name.
func (qm *QueryManager) Query(d Dialect, name string) (*ts.Query, error) {
	q, ok := qm.queries[d][name]
	if !ok {
		return nil, fmt.Errorf("query not found: %s", name)
	}
	return q, nil
}

// Global query manager singleton
var (
	globalQM     *QueryManager
	globalQMOnce sync.Once
	globalQMErr  error
)

// GetQueryManager returns the global query manager instance.
func GetQueryManager() (*QueryManager, error) {
	globalQMOnce.Do(func() {
		globalQM, globalQMErr = NewQueryManager("imports")
	})
	return globalQM, globalQMErr
}

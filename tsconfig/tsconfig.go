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
// Package tsconfig computes the include and exclude sets of a workspace and
// synthesizes the transient compiler configuration handed to the bundler.
package tsconfig

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/tailscale/hujson"
)

// FileName is the conventional compiler configuration file name.
const FileName = "tsconfig.json"

// DefaultCompilerOptions are the framework-wide compiler conventions. They
// override whatever the base configuration declares.
func DefaultCompilerOptions() map[string]any {
	return map[string]any{
		"target":                 "ES2018",
		"module":                 "commonjs",
		"moduleResolution":       "node",
		"experimentalDecorators": true,
		"emitDecoratorMetadata":  true,
		"strictNullChecks":       false,
	}
}

// TSConfig is a compiler configuration document. Top-level fields other
// than compilerOptions, include and exclude are kept verbatim in Extra.
type TSConfig struct {
	CompilerOptions map[string]any
	Include         []string
	Exclude         []string
	Extra           map[string]json.RawMessage
}

// Parse decodes a compiler configuration. Comments and trailing commas
// are accepted.
func Parse(data []byte) (*TSConfig, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, err
	}

	cfg := &TSConfig{CompilerOptions: map[string]any{}, Extra: map[string]json.RawMessage{}}
	for key, value := range raw {
		var err error
		switch key {
		case "compilerOptions":
			err = json.Unmarshal(value, &cfg.CompilerOptions)
		case "include":
			err = json.Unmarshal(value, &cfg.Include)
		case "exclude":
			err = json.Unmarshal(value, &cfg.Exclude)
		default:
			cfg.Extra[key] = value
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
	}
	if cfg.CompilerOptions == nil {
		cfg.CompilerOptions = map[string]any{}
	}
	return cfg, nil
}

// Clone returns a deep enough copy for merging: option and path maps are
// copied, nested values are shared.
func (c *TSConfig) Clone() *TSConfig {
	out := &TSConfig{
		CompilerOptions: maps.Clone(c.CompilerOptions),
		Include:         slices.Clone(c.Include),
		Exclude:         slices.Clone(c.Exclude),
		Extra:           maps.Clone(c.Extra),
	}
	if out.CompilerOptions == nil {
		out.CompilerOptions = map[string]any{}
	}
	if out.Extra == nil {
		out.Extra = map[string]json.RawMessage{}
	}
	return out
}

// Paths returns compilerOptions.paths as string lists. Malformed entries
// are dropped.
func (c *TSConfig) Paths() map[string][]string {
	out := map[string][]string{}
	switch paths := c.CompilerOptions["paths"].(type) {
	case map[string][]string:
		maps.Copy(out, paths)
	case map[string]any:
		for alias, targets := range paths {
			list, ok := targets.([]any)
			if !ok {
				continue
			}
			for _, t := range list {
				if s, ok := t.(string); ok {
					out[alias] = append(out[alias], s)
				}
			}
		}
	}
	return out
}

// MarshalJSON emits compilerOptions, include and exclude alongside the
// pass-through fields. Keys are sorted.
func (c *TSConfig) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		doc[k] = v
	}
	options := c.CompilerOptions
	if options == nil {
		options = map[string]any{}
	}
	doc["compilerOptions"] = options
	doc["include"] = nonNil(c.Include)
	doc["exclude"] = nonNil(c.Exclude)
	return json.Marshal(doc)
}

// Encode returns the indented JSON document with a trailing newline.
func (c *TSConfig) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

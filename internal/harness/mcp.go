package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"
	yaml "go.yaml.in/yaml/v3"

	"github.com/bridle-dev/bridle/internal/messages"
)

// mcpSyntax is the file syntax of a harness MCP config.
type mcpSyntax int

const (
	syntaxJSON mcpSyntax = iota
	syntaxJSONC
	syntaxGooseYAML
)

// gooseMCPTypes are the goose extension types backed by an MCP server.
var gooseMCPTypes = map[string]bool{
	"stdio":           true,
	"sse":             true,
	"http":            true,
	"streamable_http": true,
}

// mcpFormat describes where a harness keeps its MCP server table.
type mcpFormat struct {
	// files are tried in order; the first one present is read.
	files  []string
	syntax mcpSyntax
	// keys are tried in order against the top-level object.
	keys []string
	// nested is a fallback path of object keys, e.g. {"amp", "mcpServers"}.
	nested []string
	// defaultType labels entries that carry no type field.
	defaultType string
}

func (f mcpFormat) list(dir string) ([]MCPServer, error) {
	for _, name := range f.files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf(messages.HarnessReadMCPFmt, path, err)
		}
		var servers []MCPServer
		if f.syntax == syntaxGooseYAML {
			servers, err = parseGooseExtensions(data)
		} else {
			if f.syntax == syntaxJSONC {
				data = jsonc.ToJSON(data)
			}
			servers, err = f.parseJSON(data, path)
		}
		if err != nil {
			return nil, fmt.Errorf(messages.HarnessParseMCPFmt, path, err)
		}
		sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })
		return servers, nil
	}
	return nil, nil
}

type jsonServer struct {
	Type     string `json:"type"`
	Disabled bool   `json:"disabled"`
	Enabled  *bool  `json:"enabled"`
}

func (f mcpFormat) parseJSON(data []byte, path string) ([]MCPServer, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw, key := f.section(doc)
	if raw == nil {
		return nil, nil
	}
	var table map[string]jsonServer
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf(messages.HarnessMCPNotObjectFmt, key, path)
	}
	out := make([]MCPServer, 0, len(table))
	for name, server := range table {
		enabled := !server.Disabled
		if server.Enabled != nil {
			enabled = *server.Enabled
		}
		kind := server.Type
		if kind == "" {
			kind = f.defaultType
		}
		out = append(out, MCPServer{Name: name, Enabled: enabled, Type: kind})
	}
	return out, nil
}

// section finds the raw MCP table and the key it was found under.
func (f mcpFormat) section(doc map[string]json.RawMessage) (json.RawMessage, string) {
	for _, key := range f.keys {
		if raw, ok := doc[key]; ok && string(raw) != "null" {
			return raw, key
		}
	}
	if len(f.nested) == 0 {
		return nil, ""
	}
	current := doc
	for i, key := range f.nested {
		raw, ok := current[key]
		if !ok {
			return nil, ""
		}
		if i == len(f.nested)-1 {
			return raw, key
		}
		next := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &next); err != nil {
			return nil, ""
		}
		current = next
	}
	return nil, ""
}

type gooseExtension struct {
	Type    string `yaml:"type"`
	Enabled *bool  `yaml:"enabled"`
}

func parseGooseExtensions(data []byte) ([]MCPServer, error) {
	var doc struct {
		Extensions map[string]gooseExtension `yaml:"extensions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make([]MCPServer, 0, len(doc.Extensions))
	for name, ext := range doc.Extensions {
		if !gooseMCPTypes[ext.Type] {
			continue
		}
		enabled := true
		if ext.Enabled != nil {
			enabled = *ext.Enabled
		}
		out = append(out, MCPServer{Name: name, Enabled: enabled, Type: ext.Type})
	}
	return out, nil
}

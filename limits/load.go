package limits

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileTable is the on-disk shape for both YAML and TOML limit files:
//
//	openai:
//	  gpt-4: 8000
//	  default: 4000
//
// or
//
//	[openai]
//	gpt-4 = 8000
//	default = 4000
type fileTable map[string]map[string]int

// LoadFile loads a limit table from a YAML or TOML file, chosen by extension.
// The loaded table replaces nothing by itself; callers decide whether to merge
// it over Default via MergeOver.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".toml":
		return parseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported limits file extension %q", filepath.Ext(path))
	}
}

func parseYAML(data []byte) (*Table, error) {
	var ft fileTable
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return nil, fmt.Errorf("parse limits yaml: %w", err)
	}
	return tableFromFile(ft)
}

func parseTOML(data []byte) (*Table, error) {
	var ft fileTable
	if err := toml.Unmarshal(data, &ft); err != nil {
		return nil, fmt.Errorf("parse limits toml: %w", err)
	}
	return tableFromFile(ft)
}

func tableFromFile(ft fileTable) (*Table, error) {
	for provider, models := range ft {
		for model, limit := range models {
			if limit <= 0 {
				return nil, fmt.Errorf("limit for %s/%s must be positive, got %d", provider, model, limit)
			}
		}
	}
	return NewTable(ft), nil
}

// MergeOver returns a new table with t's entries layered over base.
// Providers present in t replace the same provider in base wholesale only for
// the models they name; base models not mentioned are kept.
func (t *Table) MergeOver(base *Table) *Table {
	merged := base.Snapshot()
	for provider, models := range t.entries {
		if merged[provider] == nil {
			merged[provider] = make(map[string]int, len(models))
		}
		for model, limit := range models {
			merged[provider][model] = limit
		}
	}
	return NewTable(merged)
}

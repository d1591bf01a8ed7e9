package limits

import "strings"

// GlobalDefault is the input token limit used when a provider is entirely
// unknown. Conservative on purpose: an unknown provider is assumed to have a
// small context window.
const GlobalDefault = 4000

// DefaultKey is the per-provider catch-all model name.
const DefaultKey = "default"

// Table maps provider and model names to maximum input token budgets.
// A Table is immutable after construction and safe for concurrent reads.
type Table struct {
	entries map[string]map[string]int
}

// NewTable builds a table from a provider -> model -> limit mapping.
// Keys are lowercased; non-positive limits are dropped.
func NewTable(entries map[string]map[string]int) *Table {
	t := &Table{entries: make(map[string]map[string]int, len(entries))}
	for provider, models := range entries {
		p := strings.ToLower(provider)
		for model, limit := range models {
			if limit <= 0 {
				continue
			}
			if t.entries[p] == nil {
				t.entries[p] = make(map[string]int, len(models))
			}
			t.entries[p][strings.ToLower(model)] = limit
		}
	}
	return t
}

// Default returns the built-in limit table.
// Numbers are conservative input budgets, not full context windows.
func Default() *Table {
	return NewTable(map[string]map[string]int{
		"openai": {
			"gpt-4":       8000,
			"gpt-4-turbo": 128000,
			DefaultKey:    4000,
		},
		"anthropic": {
			DefaultKey: 100000,
		},
		"google": {
			"gemini-1.5-pro": 1000000,
			DefaultKey:       30000,
		},
		"meta": {
			DefaultKey: 4000,
		},
		"grok": {
			DefaultKey: 8000,
		},
	})
}

// Limit returns the input token budget for the given provider and model.
// Lookup order: exact (provider, model) match, then the provider's "default"
// entry, then GlobalDefault. It always resolves to a positive value; an
// unknown provider is presumed to use the global default.
func (t *Table) Limit(provider, model string) int {
	models, ok := t.entries[strings.ToLower(provider)]
	if !ok {
		return GlobalDefault
	}
	if limit, ok := models[strings.ToLower(model)]; ok {
		return limit
	}
	if limit, ok := models[DefaultKey]; ok {
		return limit
	}
	return GlobalDefault
}

// Providers returns the provider names present in the table.
func (t *Table) Providers() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	return names
}

// Snapshot returns a copy of the table's entries.
func (t *Table) Snapshot() map[string]map[string]int {
	out := make(map[string]map[string]int, len(t.entries))
	for provider, models := range t.entries {
		m := make(map[string]int, len(models))
		for model, limit := range models {
			m[model] = limit
		}
		out[provider] = m
	}
	return out
}

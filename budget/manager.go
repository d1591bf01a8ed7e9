// Package budget enforces per-model input token budgets.
//
// Manager composes the token counter, the limit table and the truncation
// policy into a single pure operation:
//
//	mgr := budget.NewManager()
//	text, wasTruncated := mgr.ValidateAndTruncate(prompt, "openai", "gpt-4")
//
// The operation has no side effects; it is a function of its inputs and the
// static limit table it was constructed with.
package budget

import (
	"github.com/askmany/askmany/limits"
	"github.com/askmany/askmany/tokens"
	"github.com/askmany/askmany/truncate"
)

// Manager validates prompt length against a provider/model budget and
// truncates when needed. Safe for concurrent use: the table is read-only and
// the truncator holds no mutable state.
type Manager struct {
	counter   *tokens.WordCounter
	table     *limits.Table
	truncator *truncate.Truncator
}

// NewManager creates a manager with the built-in limit table and default
// counter.
func NewManager() *Manager {
	counter := tokens.NewWordCounter()
	return &Manager{
		counter:   counter,
		table:     limits.Default(),
		truncator: truncate.New().WithCounter(counter),
	}
}

// NewManagerWithTable creates a manager using a custom limit table.
// A nil table falls back to the built-in defaults.
func NewManagerWithTable(table *limits.Table) *Manager {
	m := NewManager()
	if table != nil {
		m.table = table
	}
	return m
}

// ValidateAndTruncate checks text against the budget for provider/model and
// truncates it when over. Returns the possibly-truncated text and whether
// truncation occurred.
func (m *Manager) ValidateAndTruncate(text, provider, model string) (string, bool) {
	limit := m.table.Limit(provider, model)
	return m.truncator.Truncate(text, limit)
}

// Limit exposes the resolved budget for a provider/model pair.
func (m *Manager) Limit(provider, model string) int {
	return m.table.Limit(provider, model)
}

// Count estimates the token count of text with the manager's counter.
func (m *Manager) Count(text string) int {
	return m.counter.Count(text)
}

// Package limits holds per-provider input token budgets.
//
// A Table answers one question: how many input tokens may be sent to a given
// provider/model pair. Lookup never fails; the chain is exact match, then the
// provider's "default" entry, then a global conservative default.
//
//	table := limits.Default()
//	budget := table.Limit("openai", "gpt-4") // 8000
//
// Tables can also be loaded from YAML or TOML files and layered over the
// built-in defaults:
//
//	custom, err := limits.LoadFile("limits.yaml")
//	table := custom.MergeOver(limits.Default())
//
// For long-running processes, Watch keeps a table in sync with the file and
// swaps it atomically on change.
package limits

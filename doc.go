// Package askmany queries multiple AI providers concurrently with a single
// prompt and compares their answers.
//
// Each subpackage can be used independently:
//
//   - tokens: Approximate token counting for budget checks
//   - limits: Per-provider/model input token limit tables
//   - truncate: Sentence-aware, budget-respecting text truncation
//   - budget: Validate-and-truncate composition of the three above
//   - provider: Client interface, registry, config, errors, and retries
//   - openai, anthropic, gemini: Bundled provider clients
//   - discovery: Cached model listing with fallbacks
//   - compare: Concurrent fan-out orchestration and response aggregation
//
// # Quick Start
//
//	import (
//		"github.com/askmany/askmany/compare"
//		"github.com/askmany/askmany/provider"
//		_ "github.com/askmany/askmany/providers"
//	)
//
//	client, _ := provider.New("openai", provider.DefaultConfig().WithAPIKey(key))
//	orch := compare.NewOrchestrator()
//	results, _ := orch.AskAll(ctx, "What is AI?", []compare.Registration{
//		{Name: "openai", Model: "gpt-4", Client: client},
//	})
//
// Every registered provider yields exactly one result, success or error;
// a failing provider never affects its siblings.
package askmany

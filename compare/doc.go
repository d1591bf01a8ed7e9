// Package compare fans a single prompt out to multiple AI providers
// concurrently and collects one result per provider.
//
// The orchestrator enforces each provider's token budget before sending,
// isolates per-provider failures, and always returns exactly one QueryResult
// per registration. The aggregator derives a summary or a consolidated answer
// from the successful responses using one of the providers as a meta-model.
//
//	orch := compare.NewOrchestrator()
//	results, err := orch.AskAll(ctx, prompt, regs)
//
// Results carry errors as data. A failing provider never aborts its siblings,
// and a deadline on ctx bounds the whole fan-out.
package compare

// Package tokens provides approximate token counting for LLM prompts.
//
// Estimation is based on the rule-of-thumb that English text averages about
// 0.75 words per language-model token. This gives a fast estimate without
// requiring a model-specific tokenizer; precision is not a goal, the estimate
// only needs to catch grossly over-length input before it is sent.
//
//	counter := tokens.NewWordCounter()
//	count := counter.Count("What is the capital of France?")
//	fits := counter.FitsInLimit(prompt, 8000)
//
// For one-off counting, use the convenience function:
//
//	count := tokens.EstimateTokens("Hello, world!")
//
// The estimate rounds down on purpose. Undercounting occasionally sends text
// that is slightly oversized, which the provider rejects cleanly; overcounting
// would silently truncate input that was fine.
package tokens

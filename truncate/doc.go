// Package truncate reduces prompts to fit per-model token budgets.
//
// Unlike a plain head or tail cut, truncation here is sentence-aware: the
// first sentence (question/context) and the last sentence (the specific ask)
// are preserved verbatim, and middle sentences are kept in original order
// until the budget runs out. When no middle sentence fits, a short literal
// notice marks the omission. A single sentence that alone exceeds the budget
// is hard-truncated at the nearest word boundary.
//
//	truncator := truncate.New()
//	result, wasTruncated := truncator.Truncate(prompt, 8000)
//
// Truncation is idempotent: re-applying it to an already-truncated,
// within-budget result returns the result unchanged.
package truncate

// Package openai implements the provider.Client interface over the OpenAI
// chat-completions wire format.
//
// The same client serves three registered provider names ("openai", "meta",
// and "grok") since Meta and Grok expose OpenAI-compatible endpoints. Each
// name carries its own default base URL and candidate model list; candidates
// are tried in order, with the final candidate's error propagated when all
// fail. When no candidate list is configured, the provider's listing endpoint
// is queried through the discovery cache.
package openai

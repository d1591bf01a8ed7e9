// Package model maps model identifiers to the provider that serves them.
//
// Provider names here match the keys used by the limit table and the client
// registry: openai, anthropic, google, meta, grok. Display names are the
// short aliases users type on the command line ("chatgpt", "claude", ...).
package model

import (
	"sort"
	"strings"
)

// displayToProvider maps the user-facing alias to the provider name.
var displayToProvider = map[string]string{
	"chatgpt": "openai",
	"claude":  "anthropic",
	"gemini":  "google",
	"meta":    "meta",
	"grok":    "grok",
}

// providerToDisplay is the reverse of displayToProvider.
var providerToDisplay = map[string]string{
	"openai":    "chatgpt",
	"anthropic": "claude",
	"google":    "gemini",
	"meta":      "meta",
	"grok":      "grok",
}

// Provider resolves a model identifier or alias to its provider name.
// Returns the empty string when the model is not recognized.
func Provider(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if p, ok := displayToProvider[lower]; ok {
		return p
	}

	switch {
	case strings.HasPrefix(lower, "gpt-"), strings.HasPrefix(lower, "o1"), strings.HasPrefix(lower, "o3"):
		return "openai"
	case strings.HasPrefix(lower, "claude"):
		return "anthropic"
	case strings.HasPrefix(lower, "gemini"):
		return "google"
	case strings.HasPrefix(lower, "llama"):
		return "meta"
	case strings.HasPrefix(lower, "grok"):
		return "grok"
	}
	return ""
}

// DisplayName returns the user-facing alias for a provider name, or the
// provider name itself when no alias exists.
func DisplayName(provider string) string {
	if d, ok := providerToDisplay[strings.ToLower(provider)]; ok {
		return d
	}
	return provider
}

// Providers returns all known provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(providerToDisplay))
	for name := range providerToDisplay {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnown reports whether name resolves to a known provider.
func IsKnown(name string) bool {
	return Provider(name) != ""
}

package openai

import "github.com/askmany/askmany/provider"

// providerDefaults holds per-name endpoint and candidate-model defaults for
// the chat-completions-compatible providers this package serves.
type providerDefaults struct {
	baseURL string
	models  []string
}

var defaults = map[string]providerDefaults{
	"openai": {
		baseURL: "https://api.openai.com/v1",
		models:  []string{"gpt-4o-mini", "gpt-4", "gpt-3.5-turbo"},
	},
	"meta": {
		baseURL: "https://api.llama-api.com/v1",
		models:  []string{"llama-3", "llama-2"},
	},
	"grok": {
		baseURL: "https://api.x.ai/v1",
		models:  []string{"grok-1"},
	},
}

func init() {
	for name := range defaults {
		provider.Register(name, func(cfg provider.Config) (provider.Client, error) {
			return New(cfg)
		})
	}
}

// Package providers registers all built-in AI providers.
// Import this package to make them available via provider.New():
//
//	import _ "github.com/askmany/askmany/providers"
//
// The openai package registers openai, meta, and grok; anthropic and gemini
// register themselves.
package providers

import (
	_ "github.com/askmany/askmany/anthropic"
	_ "github.com/askmany/askmany/gemini"
	_ "github.com/askmany/askmany/openai"
)

// Package provider defines the capability interface for AI text-generation
// providers and the registry that creates clients by name.
//
// Each provider package (openai, anthropic, gemini) registers a factory in its
// init() function; callers create clients through the registry:
//
//	client, err := provider.New("openai", provider.Config{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	answer, err := client.GetResponse(ctx, "What is AI?")
//
// Clients may block inside GetResponse and must respect cancellation via the
// caller's context. Transient errors (rate limits, network hiccups) may be
// retried inside the client with bounded backoff; the orchestrator never
// retries on top of that.
package provider

import "context"

// Client is the capability interface every provider implementation satisfies.
// Implementations must be safe for concurrent use.
type Client interface {
	// GetResponse sends a prompt and returns the model's text response.
	// The context controls cancellation and deadlines.
	GetResponse(ctx context.Context, prompt string) (string, error)

	// Provider returns the provider name (e.g., "openai", "anthropic").
	Provider() string

	// Close releases any resources held by the client.
	Close() error
}

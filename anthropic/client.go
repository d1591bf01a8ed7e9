// Package anthropic implements the provider.Client interface on top of the
// official Anthropic SDK.
//
// Candidate models are tried in order; the final candidate's error is
// propagated when all fail. The client registers under the "anthropic"
// provider name.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/askmany/askmany/provider"
)

// defaultMaxTokens bounds the response length per request.
const defaultMaxTokens = 4000

// defaultModels is the fallback candidate list, newest first.
var defaultModels = []string{
	"claude-3-5-sonnet-latest",
	"claude-3-5-haiku-latest",
	"claude-3-opus-latest",
}

// Client calls the Anthropic Messages API.
type Client struct {
	client     anthropic.Client
	models     []string
	timeout    time.Duration
	maxRetries int
}

// New constructs an Anthropic client from config.
func New(cfg provider.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, provider.NewError("anthropic", "new", provider.ErrCredentialsNotFound, false)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// The SDK retries on its own; bounded retries live in GetResponse
		// so the orchestrator's deadline stays authoritative.
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	models := cfg.Models
	if len(models) == 0 {
		models = defaultModels
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = provider.DefaultTimeout
	}

	return &Client{
		client:     anthropic.NewClient(opts...),
		models:     models,
		timeout:    timeout,
		maxRetries: cfg.EffectiveMaxRetries(),
	}, nil
}

func init() {
	provider.Register("anthropic", func(cfg provider.Config) (provider.Client, error) {
		return New(cfg)
	})
}

// GetResponse tries each candidate model in order and returns the first
// success.
func (c *Client) GetResponse(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, model := range c.models {
		text, err := c.complete(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		slog.Debug("model candidate failed, trying next",
			slog.String("provider", "anthropic"),
			slog.String("model", model),
			slog.Any("error", err))
	}
	return "", lastErr
}

// Provider implements provider.Client.
func (c *Client) Provider() string {
	return "anthropic"
}

// Close implements provider.Client.
func (c *Client) Close() error {
	return nil
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	var text string
	err := provider.Retry(ctx, c.maxRetries, func(ctx context.Context) error {
		var attemptErr error
		text, attemptErr = c.completeOnce(ctx, model, prompt)
		return attemptErr
	})
	return text, err
}

func (c *Client) completeOnce(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", c.classify(model, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &provider.Error{
			Provider: "anthropic",
			Model:    model,
			Op:       "get_response",
			Err:      fmt.Errorf("%w: no text blocks", provider.ErrEmptyResponse),
		}
	}
	return sb.String(), nil
}

// classify maps SDK errors onto the provider error taxonomy.
func (c *Client) classify(model string, err error) error {
	kind := provider.ErrNetwork
	retryable := true

	var apierr *anthropic.Error
	switch {
	case errors.As(err, &apierr):
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			kind = provider.ErrRateLimited
		case apierr.StatusCode == http.StatusUnauthorized || apierr.StatusCode == http.StatusForbidden:
			kind = provider.ErrCredentialsNotFound
			retryable = false
		case apierr.StatusCode >= 500:
			kind = provider.ErrUnavailable
		default:
			kind = provider.ErrInvalidRequest
			retryable = false
		}
	case errors.Is(err, context.DeadlineExceeded):
		kind = provider.ErrTimeout
	case errors.Is(err, context.Canceled):
		retryable = false
	}

	return &provider.Error{
		Provider:  "anthropic",
		Model:     model,
		Op:        "get_response",
		Err:       fmt.Errorf("%w: %v", kind, err),
		Retryable: retryable,
	}
}

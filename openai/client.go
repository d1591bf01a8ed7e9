package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/askmany/askmany/discovery"
	"github.com/askmany/askmany/provider"
)

// Client speaks the OpenAI chat-completions wire format.
// Besides OpenAI itself it serves every provider that exposes a compatible
// endpoint (Meta and Grok are driven this way), differing only in base URL,
// credentials, and candidate models.
type Client struct {
	name       string
	apiKey     string
	baseURL    string
	models     []string
	fallback   []string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	cache      *discovery.Cache
}

// New creates a chat-completions client from the given configuration.
// cfg.Provider selects the defaults ("openai", "meta", or "grok").
func New(cfg provider.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, provider.NewError(cfg.Provider, "new", provider.ErrCredentialsNotFound, false)
	}

	d, ok := defaults[cfg.Provider]
	if !ok {
		d = defaults["openai"]
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = d.baseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = provider.DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		name:       cfg.Provider,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		models:     cfg.Models,
		fallback:   d.models,
		httpClient: httpClient,
		timeout:    timeout,
		maxRetries: cfg.EffectiveMaxRetries(),
		cache:      discovery.NewCache(),
	}, nil
}

// chat-completions request/response shapes.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	// Some compatible gateways answer with a bare response field instead.
	Response string `json:"response"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GetResponse tries each candidate model in order and returns the first
// success. If every candidate fails, the final candidate's error is returned.
func (c *Client) GetResponse(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, model := range c.candidates(ctx) {
		text, err := c.complete(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		slog.Debug("model candidate failed, trying next",
			slog.String("provider", c.name),
			slog.String("model", model),
			slog.Any("error", err))
	}
	if lastErr == nil {
		lastErr = provider.NewError(c.name, "get_response", provider.ErrInvalidRequest, false)
	}
	return "", lastErr
}

// Provider implements provider.Client.
func (c *Client) Provider() string {
	return c.name
}

// Close implements provider.Client.
func (c *Client) Close() error {
	return nil
}

// candidates returns the ordered candidate model list: explicit config wins,
// otherwise the provider's listing endpoint with the static fallback.
func (c *Client) candidates(ctx context.Context) []string {
	if len(c.models) > 0 {
		return c.models
	}
	return c.cache.Models(ctx, c.name, c.listModels, c.fallback)
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

	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", c.wrap(model, provider.ErrInvalidRequest, err, false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", c.wrap(model, provider.ErrInvalidRequest, err, false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.transportError(model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", c.transportError(model, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(model, resp.StatusCode, raw)
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", c.wrap(model, provider.ErrEmptyResponse, err, false)
	}
	if cr.Error != nil {
		return "", c.wrap(model, provider.ErrInvalidRequest, errors.New(cr.Error.Message), false)
	}
	if len(cr.Choices) > 0 && cr.Choices[0].Message.Content != "" {
		return cr.Choices[0].Message.Content, nil
	}
	if cr.Response != "" {
		return cr.Response, nil
	}
	return "", c.wrap(model, provider.ErrEmptyResponse, fmt.Errorf("no content in response"), false)
}

// listModels fetches the provider's model listing for discovery.
func (c *Client) listModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, provider.NewError(c.name, "list_models", err, false)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewError(c.name, "list_models", provider.ErrNetwork, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewError(c.name, "list_models",
			fmt.Errorf("%w: status %d", provider.ErrUnavailable, resp.StatusCode),
			resp.StatusCode >= 500)
	}

	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, provider.NewError(c.name, "list_models", err, false)
	}

	var ids []string
	for _, m := range listing.Data {
		if c.usableModel(m.ID) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// usableModel filters listing entries down to chat-capable candidates.
func (c *Client) usableModel(id string) bool {
	if c.name != "openai" {
		return true
	}
	if !strings.HasPrefix(id, "gpt-") {
		return false
	}
	// Skip non-chat variants.
	for _, skip := range []string{"instruct", "audio", "realtime", "search", "transcribe", "tts"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return true
}

func (c *Client) wrap(model string, kind, cause error, retryable bool) error {
	return &provider.Error{
		Provider:  c.name,
		Model:     model,
		Op:        "get_response",
		Err:       fmt.Errorf("%w: %v", kind, cause),
		Retryable: retryable,
	}
}

func (c *Client) transportError(model string, cause error) error {
	kind := provider.ErrNetwork
	retryable := true
	if errors.Is(cause, context.DeadlineExceeded) {
		kind = provider.ErrTimeout
	}
	if errors.Is(cause, context.Canceled) {
		retryable = false
	}
	return &provider.Error{
		Provider:  c.name,
		Model:     model,
		Op:        "get_response",
		Err:       fmt.Errorf("%w: %v", kind, cause),
		Retryable: retryable,
	}
}

func (c *Client) statusError(model string, status int, body []byte) error {
	var kind error
	retryable := false
	switch {
	case status == http.StatusTooManyRequests:
		kind = provider.ErrRateLimited
		retryable = true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = provider.ErrCredentialsNotFound
	case status >= 500:
		kind = provider.ErrUnavailable
		retryable = true
	default:
		kind = provider.ErrInvalidRequest
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return &provider.Error{
		Provider:  c.name,
		Model:     model,
		Op:        "get_response",
		Err:       fmt.Errorf("%w: status %d: %s", kind, status, detail),
		Retryable: retryable,
	}
}

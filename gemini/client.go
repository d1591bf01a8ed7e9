// Package gemini implements the provider.Client interface over Google's
// Generative Language REST API.
//
// The client registers under the "google" provider name. Candidate models are
// tried in order with the final candidate's error propagated; when no list is
// configured, the models listing endpoint is queried through the discovery
// cache.
package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// defaultModels is the fallback candidate list, most capable first.
var defaultModels = []string{
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-pro",
}

// Client calls the Generative Language generateContent endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	models     []string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	cache      *discovery.Cache
}

// New creates a Gemini client from the given configuration.
func New(cfg provider.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, provider.NewError("google", "new", provider.ErrCredentialsNotFound, false)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
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
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		models:     cfg.Models,
		httpClient: httpClient,
		timeout:    timeout,
		maxRetries: cfg.EffectiveMaxRetries(),
		cache:      discovery.NewCache(),
	}, nil
}

func init() {
	provider.Register("google", func(cfg provider.Config) (provider.Client, error) {
		return New(cfg)
	})
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GetResponse tries each candidate model in order and returns the first
// success.
func (c *Client) GetResponse(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, model := range c.candidates(ctx) {
		text, err := c.generate(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		slog.Debug("model candidate failed, trying next",
			slog.String("provider", "google"),
			slog.String("model", model),
			slog.Any("error", err))
	}
	if lastErr == nil {
		lastErr = provider.NewError("google", "get_response", provider.ErrInvalidRequest, false)
	}
	return "", lastErr
}

// Provider implements provider.Client.
func (c *Client) Provider() string {
	return "google"
}

// Close implements provider.Client.
func (c *Client) Close() error {
	return nil
}

func (c *Client) candidates(ctx context.Context) []string {
	if len(c.models) > 0 {
		return c.models
	}
	return c.cache.Models(ctx, "google", c.listModels, defaultModels)
}

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	var text string
	err := provider.Retry(ctx, c.maxRetries, func(ctx context.Context) error {
		var attemptErr error
		text, attemptErr = c.generateOnce(ctx, model, prompt)
		return attemptErr
	})
	return text, err
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", c.wrap(model, provider.ErrInvalidRequest, err, false)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", c.wrap(model, provider.ErrInvalidRequest, err, false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := provider.ErrNetwork
		retryable := true
		if errors.Is(err, context.DeadlineExceeded) {
			kind = provider.ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			retryable = false
		}
		return "", c.wrap(model, kind, err, retryable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", c.wrap(model, provider.ErrNetwork, err, true)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(model, resp.StatusCode, raw)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", c.wrap(model, provider.ErrEmptyResponse, err, false)
	}
	if gr.Error != nil {
		return "", c.wrap(model, provider.ErrInvalidRequest, errors.New(gr.Error.Message), false)
	}

	var sb strings.Builder
	if len(gr.Candidates) > 0 {
		for _, p := range gr.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", c.wrap(model, provider.ErrEmptyResponse, fmt.Errorf("no candidates"), false)
	}
	return sb.String(), nil
}

func (c *Client) listModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, provider.NewError("google", "list_models", err, false)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewError("google", "list_models", provider.ErrNetwork, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewError("google", "list_models",
			fmt.Errorf("%w: status %d", provider.ErrUnavailable, resp.StatusCode),
			resp.StatusCode >= 500)
	}

	var listing struct {
		Models []struct {
			Name             string   `json:"name"`
			SupportedMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, provider.NewError("google", "list_models", err, false)
	}

	var ids []string
	for _, m := range listing.Models {
		if !supportsGenerate(m.SupportedMethods) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(m.Name, "models/"))
	}
	return ids, nil
}

func supportsGenerate(methods []string) bool {
	for _, m := range methods {
		if m == "generateContent" {
			return true
		}
	}
	return false
}

func (c *Client) wrap(model string, kind, cause error, retryable bool) error {
	return &provider.Error{
		Provider:  "google",
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
		Provider:  "google",
		Model:     model,
		Op:        "get_response",
		Err:       fmt.Errorf("%w: status %d: %s", kind, status, detail),
		Retryable: retryable,
	}
}

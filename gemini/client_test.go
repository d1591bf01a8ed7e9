package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmany/askmany/provider"
)

func newTestClient(t *testing.T, url string, models ...string) *Client {
	t.Helper()
	c, err := New(provider.Config{
		Provider:   "google",
		APIKey:     "test-key",
		BaseURL:    url,
		Models:     models,
		MaxRetries: -1,
	})
	require.NoError(t, err)
	return c
}

func generateReply(text string) string {
	reply := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(reply)
	return string(b)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(provider.Config{Provider: "google"})
	assert.ErrorIs(t, err, provider.ErrCredentialsNotFound)
}

func TestGetResponse_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "/models/gemini-1.5-pro:generateContent", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "what is Go?", req.Contents[0].Parts[0].Text)

		w.Write([]byte(generateReply("a programming language")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "gemini-1.5-pro")
	got, err := c.GetResponse(context.Background(), "what is Go?")
	require.NoError(t, err)
	assert.Equal(t, "a programming language", got)
}

func TestGetResponse_JoinsParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "first "},
					{"text": "second"},
				}}},
			},
		}
		json.NewEncoder(w).Encode(reply)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "gemini-1.5-pro")
	got, err := c.GetResponse(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "first second", got)
}

func TestGetResponse_CandidateFallthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/gemini-1.5-pro:generateContent" {
			http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
			return
		}
		w.Write([]byte(generateReply("from flash")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "gemini-1.5-pro", "gemini-1.5-flash")
	got, err := c.GetResponse(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "from flash", got)
}

func TestGetResponse_LastCandidateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"nope"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "a", "b")
	_, err := c.GetResponse(context.Background(), "hello")
	require.Error(t, err)

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "b", perr.Model)
	assert.ErrorIs(t, err, provider.ErrInvalidRequest)
}

func TestGetResponse_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		want      error
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, provider.ErrRateLimited, true},
		{"unauthorized", http.StatusUnauthorized, provider.ErrCredentialsNotFound, false},
		{"server error", http.StatusInternalServerError, provider.ErrUnavailable, true},
		{"bad request", http.StatusBadRequest, provider.ErrInvalidRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "{}", tt.status)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, "gemini-1.5-pro")
			_, err := c.GetResponse(context.Background(), "hello")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.retryable, provider.IsRetryable(err))
		})
	}
}

func TestGetResponse_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "gemini-1.5-pro")
	_, err := c.GetResponse(context.Background(), "hello")
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)
}

func TestListModels_FiltersByGenerateSupport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		reply := map[string]any{
			"models": []map[string]any{
				{"name": "models/gemini-1.5-pro", "supportedGenerationMethods": []string{"generateContent", "countTokens"}},
				{"name": "models/embedding-001", "supportedGenerationMethods": []string{"embedContent"}},
				{"name": "models/gemini-1.5-flash", "supportedGenerationMethods": []string{"generateContent"}},
			},
		}
		json.NewEncoder(w).Encode(reply)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.listModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-1.5-pro", "gemini-1.5-flash"}, got)
}

func TestRegistered(t *testing.T) {
	assert.True(t, provider.IsRegistered("google"))
}

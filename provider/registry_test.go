package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndNew(t *testing.T) {
	defer Unregister("test-prov")

	Register("test-prov", func(cfg Config) (Client, error) {
		return NewMockClient(cfg.Provider, "ok"), nil
	})

	client, err := New("test-prov", Config{})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "test-prov", client.Provider())

	resp, err := client.GetResponse(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("never-registered", Config{})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer Unregister("dup-prov")

	Register("dup-prov", func(cfg Config) (Client, error) { return nil, nil })
	assert.Panics(t, func() {
		Register("dup-prov", func(cfg Config) (Client, error) { return nil, nil })
	})
}

func TestAvailable_Sorted(t *testing.T) {
	defer Unregister("zz-prov")
	defer Unregister("aa-prov")

	Register("zz-prov", func(cfg Config) (Client, error) { return nil, nil })
	Register("aa-prov", func(cfg Config) (Client, error) { return nil, nil })

	names := Available()
	require.Contains(t, names, "aa-prov")
	require.Contains(t, names, "zz-prov")
	assert.IsNonDecreasing(t, names)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing provider",
			cfg:     Config{},
			wantErr: "provider is required",
		},
		{
			name:    "negative timeout",
			cfg:     Config{Provider: "x", Timeout: -1},
			wantErr: "timeout must be >= 0",
		},
		{
			name: "valid",
			cfg:  Config{Provider: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfig_With(t *testing.T) {
	base := DefaultConfig()
	cfg := base.WithProvider("openai").WithAPIKey("k").WithModels("a", "b")

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, []string{"a", "b"}, cfg.Models)
	// Original untouched.
	assert.Empty(t, base.Provider)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("ASKMANY_PROVIDER", "gemini")
	t.Setenv("ASKMANY_TIMEOUT", "90s")
	t.Setenv("ASKMANY_MAX_RETRIES", "5")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestConfig_EffectiveMaxRetries(t *testing.T) {
	assert.Equal(t, DefaultMaxRetries, Config{}.EffectiveMaxRetries())
	assert.Equal(t, 0, Config{MaxRetries: -1}.EffectiveMaxRetries())
	assert.Equal(t, 4, Config{MaxRetries: 4}.EffectiveMaxRetries())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimited))
	assert.True(t, IsRetryable(ErrNetwork))
	assert.True(t, IsRetryable(ErrTimeout))
	assert.False(t, IsRetryable(ErrInvalidRequest))
	assert.False(t, IsRetryable(errors.New("arbitrary")))

	wrapped := NewError("openai", "get_response", ErrInvalidRequest, true)
	assert.True(t, IsRetryable(wrapped), "wrapper's Retryable flag wins")
}

func TestError_Format(t *testing.T) {
	err := &Error{Provider: "openai", Model: "gpt-4", Op: "get_response", Err: ErrRateLimited}
	assert.Equal(t, "openai get_response (gpt-4): rate limited", err.Error())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func(ctx context.Context) error {
		calls++
		return ErrInvalidRequest
	})

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 1, calls)
}

func TestRetry_RetriesTransient(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return ErrRateLimited
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Retry(ctx, 5, func(ctx context.Context) error {
		return ErrUnavailable
	})

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second, "backoff must stop at the deadline")
}

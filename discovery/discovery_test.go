package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askmany/askmany/provider"
)

func TestCache_FetchesAndCaches(t *testing.T) {
	c := NewCache()
	fetches := 0
	fetch := func(ctx context.Context) ([]string, error) {
		fetches++
		return []string{"m1", "m2"}, nil
	}

	got := c.Models(context.Background(), "openai", fetch, nil)
	assert.Equal(t, []string{"m1", "m2"}, got)

	got = c.Models(context.Background(), "openai", fetch, nil)
	assert.Equal(t, []string{"m1", "m2"}, got)
	assert.Equal(t, 1, fetches, "second call must hit the cache")
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c := NewCacheWithTTL(time.Hour)
	current := time.Now()
	c.now = func() time.Time { return current }

	fetches := 0
	fetch := func(ctx context.Context) ([]string, error) {
		fetches++
		return []string{"m"}, nil
	}

	c.Models(context.Background(), "p", fetch, nil)
	current = current.Add(2 * time.Hour)
	c.Models(context.Background(), "p", fetch, nil)

	assert.Equal(t, 2, fetches)
}

func TestCache_FallbackOnFailure(t *testing.T) {
	c := NewCache()
	fetch := func(ctx context.Context) ([]string, error) {
		return nil, provider.ErrInvalidRequest // non-retryable: fails fast
	}

	got := c.Models(context.Background(), "p", fetch, []string{"fallback-model"})
	assert.Equal(t, []string{"fallback-model"}, got)

	// Failure is not cached: a later successful fetch replaces the fallback.
	got = c.Models(context.Background(), "p", func(ctx context.Context) ([]string, error) {
		return []string{"real-model"}, nil
	}, []string{"fallback-model"})
	assert.Equal(t, []string{"real-model"}, got)
}

func TestCache_EmptyListTreatedAsFailure(t *testing.T) {
	c := NewCache()
	got := c.Models(context.Background(), "p", func(ctx context.Context) ([]string, error) {
		return nil, nil
	}, []string{"fb"})
	assert.Equal(t, []string{"fb"}, got)
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache()
	fetches := 0
	fetch := func(ctx context.Context) ([]string, error) {
		fetches++
		return []string{"m"}, nil
	}

	c.Models(context.Background(), "p", fetch, nil)
	c.Invalidate("p")
	c.Models(context.Background(), "p", fetch, nil)

	assert.Equal(t, 2, fetches)
}

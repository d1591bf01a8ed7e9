package compare

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askmany/askmany/budget"
	"github.com/askmany/askmany/limits"
	"github.com/askmany/askmany/provider"
)

func reg(name string, client provider.Client) Registration {
	return Registration{Name: name, Model: "default", Client: client}
}

func TestAskAll_EmptyRegistrations(t *testing.T) {
	orch := NewOrchestrator()
	_, err := orch.AskAll(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestAskAll_DuplicateNamesRejected(t *testing.T) {
	regs := []Registration{
		reg("openai", provider.NewMockClient("openai", "a")),
		reg("openai", provider.NewMockClient("openai", "b")),
	}

	orch := NewOrchestrator()
	_, err := orch.AskAll(context.Background(), "hello", regs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateProvider)
	assert.Contains(t, err.Error(), "openai")
}

func TestAskAll_SingleSuccess(t *testing.T) {
	orch := NewOrchestrator()
	regs := []Registration{reg("openai", provider.NewMockClient("openai", "AI is a field of computer science."))}

	rs, err := orch.AskAll(context.Background(), "What is AI?", regs)
	require.NoError(t, err)
	require.Len(t, rs, 1)

	r := rs["openai"]
	assert.Equal(t, "AI is a field of computer science.", r.Text)
	assert.NoError(t, r.Err)
	assert.False(t, r.Truncated)
}

func TestAskAll_ClosedWorld(t *testing.T) {
	regs := []Registration{
		reg("alpha", provider.NewMockClient("alpha", "a")),
		reg("beta", provider.NewMockClient("beta", "").WithError(provider.ErrUnavailable)),
		reg("gamma", provider.NewMockClient("gamma", "c")),
	}

	orch := NewOrchestrator()
	rs, err := orch.AskAll(context.Background(), "hello", regs)
	require.NoError(t, err)
	require.Len(t, rs, len(regs))
	for _, name := range []string{"alpha", "beta", "gamma"} {
		assert.Contains(t, rs, name)
	}
}

func TestAskAll_FaultIsolation(t *testing.T) {
	regs := []Registration{
		reg("good", provider.NewMockClient("good", "fine")),
		reg("bad", provider.NewMockClient("bad", "").WithError(errors.New("boom"))),
	}

	orch := NewOrchestrator()
	rs, err := orch.AskAll(context.Background(), "hello", regs)
	require.NoError(t, err)

	assert.NoError(t, rs["good"].Err)
	assert.Equal(t, "fine", rs["good"].Text)
	assert.Error(t, rs["bad"].Err)
	assert.Empty(t, rs["bad"].Text)
}

func TestAskAll_PanicCaptured(t *testing.T) {
	panicking := provider.NewMockClient("wild", "").WithHandler(
		func(ctx context.Context, prompt string) (string, error) {
			panic("unexpected state")
		})
	regs := []Registration{
		reg("calm", provider.NewMockClient("calm", "ok")),
		reg("wild", panicking),
	}

	orch := NewOrchestrator()
	rs, err := orch.AskAll(context.Background(), "hello", regs)
	require.NoError(t, err)
	require.Len(t, rs, 2)

	assert.NoError(t, rs["calm"].Err)
	require.Error(t, rs["wild"].Err)
	assert.Contains(t, rs["wild"].Err.Error(), "panic")
}

func TestAskAll_DeadlineRecordsTimeout(t *testing.T) {
	// A client that ignores cancellation entirely: the orchestrator must not
	// wait for it past the deadline.
	stuck := provider.NewMockClient("stuck", "").WithHandler(
		func(ctx context.Context, prompt string) (string, error) {
			<-make(chan struct{})
			return "", nil
		})
	regs := []Registration{
		reg("fast", provider.NewMockClient("fast", "done")),
		reg("stuck", stuck),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	orch := NewOrchestrator()
	start := time.Now()
	rs, err := orch.AskAll(ctx, "hello", regs)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, rs, 2)
	assert.NoError(t, rs["fast"].Err)
	assert.ErrorIs(t, rs["stuck"].Err, provider.ErrTimeout)
}

func TestAskAll_ConcurrencySpeedup(t *testing.T) {
	const latency = 100 * time.Millisecond
	regs := []Registration{
		reg("one", provider.NewMockClient("one", "1").WithDelay(latency)),
		reg("two", provider.NewMockClient("two", "2").WithDelay(latency)),
		reg("three", provider.NewMockClient("three", "3").WithDelay(latency)),
	}

	orch := NewOrchestrator()
	start := time.Now()
	rs, err := orch.AskAll(context.Background(), "hello", regs)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, rs, 3)
	// Wall clock tracks the slowest provider, not the sum of all three.
	assert.Less(t, elapsed, 3*latency)
}

func TestAskAll_TruncatesOversizedPrompt(t *testing.T) {
	table := limits.NewTable(map[string]map[string]int{
		"tiny": {"default": 10},
	})
	mock := provider.NewMockClient("tiny", "ok")
	regs := []Registration{reg("tiny", mock)}

	prompt := "First sentence here. " + strings.Repeat("filler words in the middle keep going. ", 20) + "Last sentence here."

	orch := NewOrchestrator(WithBudget(budget.NewManagerWithTable(table)))
	rs, err := orch.AskAll(context.Background(), prompt, regs)
	require.NoError(t, err)

	assert.True(t, rs["tiny"].Truncated)
	require.Equal(t, 1, mock.CallCount())
	sent := mock.Calls[0]
	assert.Less(t, len(sent), len(prompt))
	assert.Contains(t, sent, "automatically truncated")
}

func TestAskAll_ShortPromptUnchanged(t *testing.T) {
	mock := provider.NewMockClient("openai", "ok")
	orch := NewOrchestrator()

	rs, err := orch.AskAll(context.Background(), "What is AI?", []Registration{reg("openai", mock)})
	require.NoError(t, err)
	assert.False(t, rs["openai"].Truncated)
	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "What is AI?", mock.Calls[0])
}

func TestResultSet_Successes(t *testing.T) {
	rs := ResultSet{
		"a": {Provider: "a", Text: "answer"},
		"b": {Provider: "b", Err: errors.New("down")},
	}
	got := rs.Successes()
	assert.Equal(t, map[string]string{"a": "answer"}, got)
	assert.Equal(t, []string{"a", "b"}, rs.Providers())
}

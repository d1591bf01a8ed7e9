package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/askmany/askmany/budget"
	"github.com/askmany/askmany/provider"
)

// ErrNoProviders is returned by AskAll when the registration list is empty.
var ErrNoProviders = errors.New("no providers registered")

// ErrDuplicateProvider is returned by AskAll when two registrations share a
// name. Names key the ResultSet, so duplicates would silently collapse into
// one entry.
var ErrDuplicateProvider = errors.New("duplicate provider registration")

// Registration binds a provider name to a client and the model the budget
// lookup should use. Registrations are supplied by the caller and are not
// mutated by the orchestrator.
type Registration struct {
	Name   string
	Model  string
	Client provider.Client
}

// QueryResult is one provider's outcome for a single AskAll call. Exactly one
// of Text and Err is meaningful.
type QueryResult struct {
	Provider  string
	Model     string
	Text      string
	Err       error
	Truncated bool
	Duration  time.Duration
}

// ResultSet maps provider name to outcome. Iteration order is not defined;
// callers needing deterministic output must sort by provider name.
type ResultSet map[string]QueryResult

// Successes returns the text of every successful result, keyed by provider.
func (rs ResultSet) Successes() map[string]string {
	out := make(map[string]string)
	for name, r := range rs {
		if r.Err == nil {
			out[name] = r.Text
		}
	}
	return out
}

// Providers returns all provider names in the set, sorted.
func (rs ResultSet) Providers() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Orchestrator runs the concurrent fan-out. Safe for concurrent use; it holds
// no per-call state.
type Orchestrator struct {
	budget *budget.Manager
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBudget replaces the default budget manager.
func WithBudget(m *budget.Manager) Option {
	return func(o *Orchestrator) { o.budget = m }
}

// WithLogger sets the logger used for per-query diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator with the built-in limit table.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		budget: budget.NewManager(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AskAll sends prompt to every registration concurrently and returns one
// QueryResult per registration. Per-provider failures are recorded in the
// result, never returned as an error; the only hard errors are an empty
// registration list and registrations sharing a name. A deadline on ctx
// bounds the wait: units that have not finished by then are recorded with
// ErrTimeout.
func (o *Orchestrator) AskAll(ctx context.Context, prompt string, regs []Registration) (ResultSet, error) {
	if len(regs) == 0 {
		return nil, ErrNoProviders
	}
	seen := make(map[string]bool, len(regs))
	for _, reg := range regs {
		if seen[reg.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvider, reg.Name)
		}
		seen[reg.Name] = true
	}

	queryID := uuid.NewString()
	o.logger.Info("starting fan-out",
		slog.String("query_id", queryID),
		slog.Int("providers", len(regs)))

	results := make([]QueryResult, len(regs))
	var wg sync.WaitGroup
	for i, reg := range regs {
		outbound, truncated := o.budget.ValidateAndTruncate(prompt, reg.Name, reg.Model)
		if truncated {
			o.logger.Warn("prompt truncated to fit model limits",
				slog.String("query_id", queryID),
				slog.String("provider", reg.Name),
				slog.Int("limit", o.budget.Limit(reg.Name, reg.Model)))
			outbound += "\n\n[Note: input was automatically truncated to fit " + reg.Name + " model limits]"
		}

		wg.Add(1)
		go func(i int, reg Registration, outbound string, truncated bool) {
			defer wg.Done()
			results[i] = o.query(ctx, reg, outbound, truncated)
		}(i, reg, outbound, truncated)
	}
	wg.Wait()

	rs := make(ResultSet, len(regs))
	for _, r := range results {
		rs[r.Provider] = r
		if r.Err != nil {
			o.logger.Warn("provider failed",
				slog.String("query_id", queryID),
				slog.String("provider", r.Provider),
				slog.Any("error", r.Err))
		}
	}
	return rs, nil
}

type attempt struct {
	text string
	err  error
}

// query runs a single provider call, capturing errors, panics, and deadline
// expiry as the provider's result.
func (o *Orchestrator) query(ctx context.Context, reg Registration, prompt string, truncated bool) QueryResult {
	start := time.Now()
	ch := make(chan attempt, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- attempt{err: provider.NewError(reg.Name, "ask",
					fmt.Errorf("client panic: %v", r), false)}
			}
		}()
		text, err := reg.Client.GetResponse(ctx, prompt)
		ch <- attempt{text: text, err: err}
	}()

	res := QueryResult{Provider: reg.Name, Model: reg.Model, Truncated: truncated}
	select {
	case a := <-ch:
		res.Text, res.Err = a.text, a.err
	case <-ctx.Done():
		// The client goroutine is abandoned; it drains into the buffered
		// channel when it eventually returns.
		res.Err = provider.NewError(reg.Name, "ask", provider.ErrTimeout, false)
	}
	res.Duration = time.Since(start)
	return res
}

package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// ErrNoSuccessfulResponses is returned by Summarize and Consolidate when the
// result set contains no successes to synthesize from.
var ErrNoSuccessfulResponses = errors.New("no successful responses to aggregate")

// maxSynthesisChars caps the text returned by the meta-model.
const maxSynthesisChars = 4000

// AggregateResult holds the outputs of both synthesis operations.
type AggregateResult struct {
	Summary      string
	Consolidated string
}

// Aggregator synthesizes a summary or a consolidated answer from a ResultSet
// by issuing one extra call to a provider that succeeded in the fan-out.
type Aggregator struct {
	clients    map[string]Registration
	preference []string
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithPreference sets the provider order tried when picking the meta-model.
// Providers not listed fall back to alphabetical order after the listed ones.
func WithPreference(names ...string) AggregatorOption {
	return func(a *Aggregator) { a.preference = names }
}

// NewAggregator creates an aggregator over the given registrations.
func NewAggregator(regs []Registration, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{clients: make(map[string]Registration, len(regs))}
	for _, reg := range regs {
		a.clients[reg.Name] = reg
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize asks the selected meta-model for a structured summary of all
// successful responses.
func (a *Aggregator) Summarize(ctx context.Context, rs ResultSet) (string, error) {
	return a.synthesize(ctx, rs, summaryPrompt)
}

// Consolidate asks the selected meta-model for a single merged answer written
// as if it were the definitive response.
func (a *Aggregator) Consolidate(ctx context.Context, rs ResultSet) (string, error) {
	return a.synthesize(ctx, rs, consolidatePrompt)
}

func (a *Aggregator) synthesize(ctx context.Context, rs ResultSet, build func(string) string) (string, error) {
	successes := rs.Successes()
	if len(successes) == 0 {
		return "", ErrNoSuccessfulResponses
	}

	reg, ok := a.pick(successes)
	if !ok {
		return "", ErrNoSuccessfulResponses
	}

	text, err := reg.Client.GetResponse(ctx, build(formatResponses(successes)))
	if err != nil {
		return "", err
	}
	return capText(text, maxSynthesisChars), nil
}

// capText cuts text to at most max bytes without splitting a UTF-8 rune.
func capText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// pick selects the meta-model: first match from the preference list, then the
// alphabetically first successful provider with a registered client.
func (a *Aggregator) pick(successes map[string]string) (Registration, bool) {
	for _, name := range a.preference {
		if _, ok := successes[name]; !ok {
			continue
		}
		if reg, ok := a.clients[name]; ok {
			return reg, true
		}
	}

	names := make([]string, 0, len(successes))
	for name := range successes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if reg, ok := a.clients[name]; ok {
			return reg, true
		}
	}
	return Registration{}, false
}

func formatResponses(successes map[string]string) string {
	names := make([]string, 0, len(successes))
	for name := range successes {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, successes[name]))
	}
	return strings.Join(lines, "\n\n")
}

func summaryPrompt(responses string) string {
	return fmt.Sprintf(`Analyze these AI responses and create a clear, comprehensive summary (maximum 4000 characters):

%s

Create a well-structured summary that:
- Synthesizes the key insights from all models
- Highlights areas of consensus and disagreement
- Provides a balanced, comprehensive answer
- Keeps the response under 4000 characters

Focus on creating a unified answer that combines the best elements from each response.`, responses)
}

func consolidatePrompt(responses string) string {
	return fmt.Sprintf(`Based on these multiple AI responses, write a single consolidated answer (maximum 4000 characters):

%s

Requirements:
- Write as if you are giving the definitive answer to the original question
- Integrate the best insights from all responses seamlessly
- Do not mention that this is a summary or consolidation
- Keep the response under 4000 characters

Write the response as a complete, standalone answer.`, responses)
}

// AskAllSynthesized runs the fan-out and, when at least two providers
// succeed, derives both aggregate outputs with the same registrations.
// Synthesis failures are logged and leave the corresponding field empty; the
// raw results are always returned.
func (o *Orchestrator) AskAllSynthesized(ctx context.Context, prompt string, regs []Registration) (ResultSet, *AggregateResult, error) {
	rs, err := o.AskAll(ctx, prompt, regs)
	if err != nil {
		return nil, nil, err
	}
	if len(rs.Successes()) < 2 {
		return rs, nil, nil
	}

	agg := NewAggregator(regs)
	var result AggregateResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		text, err := agg.Summarize(ctx, rs)
		if err != nil {
			o.logger.Warn("summary synthesis failed", slog.Any("error", err))
			return
		}
		result.Summary = text
	}()
	go func() {
		defer wg.Done()
		text, err := agg.Consolidate(ctx, rs)
		if err != nil {
			o.logger.Warn("consolidation synthesis failed", slog.Any("error", err))
			return
		}
		result.Consolidated = text
	}()
	wg.Wait()
	return rs, &result, nil
}

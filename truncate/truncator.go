package truncate

import (
	"strings"

	"github.com/askmany/askmany/tokens"
)

// DefaultNotice is inserted where middle content was dropped and nothing
// could take its place.
const DefaultNotice = "[...content omitted due to length...]"

// Truncator reduces text to fit a token budget while preserving the first and
// last sentences. The first sentence is assumed to carry the question or
// context, the last the specific ask; middle sentences are kept in original
// order for as long as they fit.
type Truncator struct {
	counter *tokens.WordCounter
	notice  string
}

// New creates a truncator with the default word counter.
func New() *Truncator {
	return &Truncator{
		counter: tokens.NewWordCounter(),
		notice:  DefaultNotice,
	}
}

// WithCounter sets a custom word counter.
func (t *Truncator) WithCounter(counter *tokens.WordCounter) *Truncator {
	t.counter = counter
	return t
}

// WithNotice sets a custom omission notice.
func (t *Truncator) WithNotice(notice string) *Truncator {
	t.notice = notice
	return t
}

// Truncate reduces the text to fit within maxTokens.
// Returns the result and whether truncation occurred. Text already within
// budget is returned unchanged, which makes the operation idempotent:
// re-truncating an already-truncated result is a no-op.
func (t *Truncator) Truncate(text string, maxTokens int) (string, bool) {
	if t.counter.FitsInLimit(text, maxTokens) {
		return text, false
	}

	// All budgeting below happens in words. The counter rounds word budgets
	// down, so a result holding at most maxWords words always estimates at or
	// under maxTokens.
	maxWords := t.counter.WordsForTokens(maxTokens)
	noticeWords := tokens.Words(t.notice)

	sentences := SplitSentences(text)
	if len(sentences) <= 1 {
		return t.truncateSingle(text, maxWords, noticeWords), true
	}

	first := sentences[0]
	last := sentences[len(sentences)-1]
	firstWords := tokens.Words(first)
	lastWords := tokens.Words(last)

	if firstWords+lastWords > maxWords {
		return t.truncateEdges(first, last, maxWords, noticeWords), true
	}

	parts := []string{first}
	remaining := maxWords - firstWords - lastWords
	kept := 0
	for _, s := range sentences[1 : len(sentences)-1] {
		w := tokens.Words(s)
		if w > remaining {
			break
		}
		parts = append(parts, s)
		remaining -= w
		kept++
	}
	if kept == 0 && noticeWords <= remaining {
		parts = append(parts, t.notice)
	}
	parts = append(parts, last)

	return strings.Join(parts, " "), true
}

// truncateSingle handles text with zero or one sentence: hard truncation at
// the word boundary nearest the budget, with the notice appended when it fits.
func (t *Truncator) truncateSingle(text string, maxWords, noticeWords int) string {
	keep := maxWords - noticeWords
	if keep <= 0 {
		return headWords(text, maxWords)
	}
	head := headWords(text, keep)
	if head == "" {
		return headWords(text, maxWords)
	}
	return head + " " + t.notice
}

// truncateEdges handles the pathological case where the first and last
// sentences alone exceed the budget: both are hard-truncated at word
// boundaries, first kept from its start, last from its end.
func (t *Truncator) truncateEdges(first, last string, maxWords, noticeWords int) string {
	avail := maxWords - noticeWords
	if avail <= 0 {
		return t.truncateSingle(first, maxWords, noticeWords)
	}

	half := avail / 2
	firstPart := headWords(first, half)
	lastPart := tailWords(last, avail-tokens.Words(firstPart))

	parts := make([]string, 0, 3)
	if firstPart != "" {
		parts = append(parts, firstPart)
	}
	parts = append(parts, t.notice)
	if lastPart != "" {
		parts = append(parts, lastPart)
	}
	return strings.Join(parts, " ")
}

// headWords and tailWords budget by counted words, not whitespace fields:
// a field like "don't" holds two counted words, and slicing by fields alone
// would let the assembled result exceed the token budget.

func headWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	fields := strings.Fields(text)
	kept, used := 0, 0
	for _, f := range fields {
		w := tokens.Words(f)
		if used+w > n {
			break
		}
		used += w
		kept++
	}
	return strings.Join(fields[:kept], " ")
}

func tailWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	fields := strings.Fields(text)
	kept, used := 0, 0
	for i := len(fields) - 1; i >= 0; i-- {
		w := tokens.Words(fields[i])
		if used+w > n {
			break
		}
		used += w
		kept++
	}
	return strings.Join(fields[len(fields)-kept:], " ")
}

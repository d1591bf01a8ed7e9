package tokens

import "unicode"

// DefaultWordsPerToken is the default word-to-token ratio.
// English text averages roughly 0.75 words per language-model token.
const DefaultWordsPerToken = 0.75

// Counter estimates token counts for text.
type Counter interface {
	// Count estimates the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit returns true if the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// WordCounter estimates tokens from a word count and a words-per-token ratio.
// The estimate is deliberately rounded down: the budget check only needs to
// catch grossly over-length input, and a slight undercount is preferable to
// truncating text that would have been accepted.
type WordCounter struct {
	// WordsPerToken is the average number of words per token.
	// Default is 0.75, which works well for English text.
	WordsPerToken float64
}

// NewWordCounter creates a token counter with default settings.
func NewWordCounter() *WordCounter {
	return &WordCounter{WordsPerToken: DefaultWordsPerToken}
}

// NewWordCounterWithRatio creates a token counter with a custom ratio.
// If wordsPerToken is <= 0, the default ratio (0.75) is used.
func NewWordCounterWithRatio(wordsPerToken float64) *WordCounter {
	if wordsPerToken <= 0 {
		wordsPerToken = DefaultWordsPerToken
	}
	return &WordCounter{WordsPerToken: wordsPerToken}
}

// Count estimates the number of tokens in the given text.
// Words are maximal runs of letters, digits, or underscores; everything else
// is a delimiter. Empty or delimiter-only text counts as zero tokens.
func (c *WordCounter) Count(text string) int {
	return c.TokensForWords(Words(text))
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *WordCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// TokensForWords converts a word count to an estimated token count.
func (c *WordCounter) TokensForWords(words int) int {
	return int(float64(words) / c.ratio())
}

// WordsForTokens converts a token budget to a word budget.
// The conversion rounds down so that text holding at most the returned
// number of words always estimates at or under the token budget.
func (c *WordCounter) WordsForTokens(tokens int) int {
	return int(float64(tokens) * c.ratio())
}

func (c *WordCounter) ratio() float64 {
	if c.WordsPerToken <= 0 {
		return DefaultWordsPerToken
	}
	return c.WordsPerToken
}

// Words counts word tokens in text: maximal runs of letters, digits,
// or underscores.
func Words(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if isWordRune(r) {
			if !inWord {
				count++
				inWord = true
			}
		} else {
			inWord = false
		}
	}
	return count
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// EstimateTokens is a convenience function using the default counter.
func EstimateTokens(text string) int {
	return NewWordCounter().Count(text)
}

package truncate

import (
	"strings"
	"unicode"
)

// SplitSentences splits text into sentences. A sentence ends at '.', '!' or
// '?' followed by whitespace or end of text. Surrounding whitespace is
// trimmed from each sentence; text with no terminator is a single sentence.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// Consume any run of terminators ("...", "?!").
		for i+1 < len(runes) && isTerminator(runes[i+1]) {
			i++
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

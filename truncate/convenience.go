package truncate

// ToTokens truncates text to fit within the token limit using the default
// truncator.
func ToTokens(text string, maxTokens int) string {
	result, _ := New().Truncate(text, maxTokens)
	return result
}

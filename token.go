package docdex

import "strings"

// A token, for sizing purposes, is a whitespace-delimited word. This
// deliberately approximates model tokenization: chunk and embedding budgets
// only need to be consistent, not exact.

// CountTokens returns the number of tokens in text.
func CountTokens(text string) int {
	return len(strings.Fields(text))
}

// TruncateTokens returns text cut to its first n tokens. Text with n or fewer
// tokens is returned unchanged, preserving its original whitespace.
func TruncateTokens(text string, n int) string {
	if n <= 0 {
		return ""
	}
	fields := strings.Fields(text)
	if len(fields) <= n {
		return text
	}
	return strings.Join(fields[:n], " ")
}

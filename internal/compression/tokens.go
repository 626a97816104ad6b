package compression

import (
	"strings"
	"unicode/utf8"
)

// TruncatedMarker is appended to content cut to fit a budget.
const TruncatedMarker = "\n... [truncated]"

// EstimateTokens approximates token count as ceil(bytes / 4).
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// TruncateToTokens cuts s so that the result, marker included, stays within
// maxTokens. Cuts never split a UTF-8 sequence and prefer a line boundary in
// the last quarter of the kept text. Returns s unchanged when it already fits.
func TruncateToTokens(s string, maxTokens int) (string, bool) {
	if EstimateTokens(s) <= maxTokens {
		return s, false
	}
	limit := maxTokens*4 - len(TruncatedMarker)
	if limit <= 0 {
		return "", true
	}

	cut := truncateUTF8(s, limit)
	if nl := strings.LastIndexByte(cut, '\n'); nl > len(cut)*3/4 {
		cut = cut[:nl]
	}
	return cut + TruncatedMarker, true
}

// truncateUTF8 returns the longest prefix of s no longer than n bytes that
// ends on a rune boundary.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

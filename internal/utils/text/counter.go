// Package text provides rune-aware helpers for sizing chat messages. Chat
// platforms count characters, not bytes, so every budget here is in runes.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
//	CountRunes("hello")     // 5
//	CountRunes("こんにちは") // 5
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate cuts text to at most limit runes without splitting a character.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}

// TruncateWithSuffix cuts text to at most limit runes, ending with suffix when
// something was removed. The suffix counts against the limit.
func TruncateWithSuffix(text string, limit int, suffix string) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	keep := limit - utf8.RuneCountInString(suffix)
	if keep <= 0 {
		return Truncate(suffix, limit)
	}
	return Truncate(text, keep) + suffix
}

package utils

import "strings"

// TruncateForLog shortens s to limit runes for single-line log previews. Line breaks
// are folded into spaces and an ellipsis marks truncation.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

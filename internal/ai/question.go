package ai

import (
	"regexp"
	"strings"
)

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)QUESTION:\s*(.+)`),
	regexp.MustCompile(`(?im)^\s*Q:\s*(.+)`),
	regexp.MustCompile(`(?i)PREGUNTA:\s*(.+)`),
}

// ExtractQuestion pulls the question text out of a free-form model response.
// Labelled lines win; otherwise the first non-empty line is used.
func ExtractQuestion(raw string) string {
	for _, pattern := range questionPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			if q := cleanQuestion(m[1]); q != "" {
				return q
			}
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if q := cleanQuestion(line); q != "" {
			return q
		}
	}

	return strings.TrimSpace(raw)
}

func cleanQuestion(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*\"`")
	return strings.TrimSpace(s)
}

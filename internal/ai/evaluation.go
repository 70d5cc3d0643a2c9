package ai

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultScore is the neutral score used when the model output carries no usable SCORE line.
	DefaultScore = 3.0
	// MaxScore is the upper bound of the answer scale.
	MaxScore = 5.0

	// DefaultCVScore is used when a CV evaluation cannot be parsed.
	DefaultCVScore = 70.0
	// DefaultCVExplanation accompanies DefaultCVScore.
	DefaultCVExplanation = "Evaluation completed"
)

// Evaluation is the structured result of scoring one candidate answer.
type Evaluation struct {
	Score       float64
	Explanation string
	AutoReject  bool
	Difficulty  string
	Competency  string
	Raw         string
}

var (
	// The label must not be the tail of another key such as TECHNICAL_SCORE.
	scorePattern       = regexp.MustCompile(`(?im)(?:^|[^A-Z_])SCORE:\s*(\d+(?:\.\d+)?)\b`)
	explanationPattern = regexp.MustCompile(`(?is)EXPLANATION:\s*(.+?)(?:\n[A-Z_]+:|$)`)
	autoRejectPattern  = regexp.MustCompile(`(?i)AUTO_REJECT:\s*true`)
	difficultyPattern  = regexp.MustCompile(`(?i)DIFFICULTY:\s*(easy|medium|hard)`)
	competencyPattern  = regexp.MustCompile(`(?i)COMPETENCY:\s*(.+)`)

	cvScorePattern       = scorePattern
	cvExplanationPattern = regexp.MustCompile(`(?s)(?i:EXPLANATION):\s*(.+)`)
)

// ParseEvaluation reads the line-oriented evaluation format returned by the model.
// It never fails: missing or malformed fields fall back to neutral defaults.
func ParseEvaluation(raw string) Evaluation {
	eval := Evaluation{
		Score: DefaultScore,
		Raw:   raw,
	}

	if m := scorePattern.FindStringSubmatch(raw); m != nil {
		// A value off the 0-5 scale means the model used another scale; keep the neutral score.
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= MaxScore {
			eval.Score = v
		}
	}

	if m := explanationPattern.FindStringSubmatch(raw); m != nil {
		eval.Explanation = strings.TrimSpace(m[1])
	}

	eval.AutoReject = autoRejectPattern.MatchString(raw)

	if m := difficultyPattern.FindStringSubmatch(raw); m != nil {
		eval.Difficulty = strings.ToLower(m[1])
	}

	if m := competencyPattern.FindStringSubmatch(raw); m != nil {
		eval.Competency = strings.TrimSpace(m[1])
	}

	return eval
}

// ParseCVScore reads a 0-100 CV match score and its explanation.
func ParseCVScore(raw string) (float64, string) {
	score := DefaultCVScore
	if m := cvScorePattern.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			score = clamp(v, 0, 100)
		}
	}

	explanation := DefaultCVExplanation
	if m := cvExplanationPattern.FindStringSubmatch(raw); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			explanation = text
		}
	}

	return score, explanation
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

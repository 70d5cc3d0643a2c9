// Package scoring turns per-answer evaluations into phase and global interview scores.
package scoring

import (
	"fmt"
	"math"
	"strings"
)

const (
	maxAnswerScore        = 5.0
	maxExplanationLength  = 200
	explanationsToCombine = 3
	explanationSeparator  = " | "

	// NoAnswersExplanation describes a phase in which no question was answered.
	NoAnswersExplanation = "No questions were completed in this phase"
)

// Weights are the shares of each component in the global score.
type Weights struct {
	CV         float64 `json:"cv"`
	Technical  float64 `json:"technical"`
	SoftSkills float64 `json:"soft_skills"`
}

// DefaultWeights is 40% CV, 40% technical, 20% soft skills.
var DefaultWeights = Weights{CV: 0.4, Technical: 0.4, SoftSkills: 0.2}

// Result is a 0-100 score with a human readable explanation.
type Result struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Answer is a single evaluated answer on the 0-5 scale.
type Answer struct {
	Score       float64
	Explanation string
}

// Recommendation is the hiring tier derived from the global score.
type Recommendation string

const (
	RecommendationExcellent Recommendation = "excellent"
	RecommendationGood      Recommendation = "good"
	RecommendationCompleted Recommendation = "completed"
	RecommendationRejected  Recommendation = "rejected"
)

// PhaseAverage averages the answers of one phase and rescales it to 0-100,
// rounded to one decimal.
func PhaseAverage(answers []Answer) Result {
	if len(answers) == 0 {
		return Result{Score: 0, Explanation: NoAnswersExplanation}
	}

	var (
		sum          float64
		explanations []string
	)
	for _, a := range answers {
		sum += a.Score
		if text := strings.TrimSpace(a.Explanation); text != "" {
			explanations = append(explanations, text)
		}
	}

	if len(explanations) > explanationsToCombine {
		explanations = explanations[:explanationsToCombine]
	}

	combined := strings.Join(explanations, explanationSeparator)
	if runes := []rune(combined); len(runes) > maxExplanationLength {
		combined = string(runes[:maxExplanationLength-3]) + "..."
	}

	if combined == "" {
		combined = fmt.Sprintf("Average of %d evaluated answers", len(answers))
	}

	avg := sum / float64(len(answers))
	return Result{
		Score:       Round1(avg / maxAnswerScore * 100),
		Explanation: combined,
	}
}

// Global combines the component scores with the weights, rounded to one decimal.
func (w Weights) Global(cv, technical, softSkills float64) float64 {
	return Round1(cv*w.CV + technical*w.Technical + softSkills*w.SoftSkills)
}

// Explain renders the weighted breakdown used for locally computed global scores.
func (w Weights) Explain(cv, technical, softSkills float64) string {
	return fmt.Sprintf("Weighted score: CV %.0f (%.0f%%) + Technical %.0f (%.0f%%) + Soft skills %.0f (%.0f%%)",
		cv, w.CV*100, technical, w.Technical*100, softSkills, w.SoftSkills*100)
}

// Recommend maps a global score to a tier. A rejected interview is always RecommendationRejected.
func Recommend(global float64, rejected bool) Recommendation {
	switch {
	case rejected:
		return RecommendationRejected
	case global >= 75:
		return RecommendationExcellent
	case global >= 60:
		return RecommendationGood
	default:
		return RecommendationCompleted
	}
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

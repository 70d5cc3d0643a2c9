package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEvaluation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect Evaluation
	}{
		{
			name:  "full technical evaluation",
			input: "SCORE: 4.5\nEXPLANATION: Solid grasp of goroutines\nand channels.\nDIFFICULTY: Hard",
			expect: Evaluation{
				Score:       4.5,
				Explanation: "Solid grasp of goroutines\nand channels.",
				Difficulty:  "hard",
			},
		},
		{
			name:  "knockout auto reject",
			input: "SCORE: 1\nEXPLANATION: Does not have a work permit\nAUTO_REJECT: true",
			expect: Evaluation{
				Score:       1,
				Explanation: "Does not have a work permit",
				AutoReject:  true,
			},
		},
		{
			name:  "auto reject false",
			input: "SCORE: 4\nEXPLANATION: Meets requirement\nAUTO_REJECT: false",
			expect: Evaluation{
				Score:       4,
				Explanation: "Meets requirement",
			},
		},
		{
			name:  "soft skills competency",
			input: "score: 3.5\nExplanation: Took ownership of the incident\nCOMPETENCY: Accountability",
			expect: Evaluation{
				Score:       3.5,
				Explanation: "Took ownership of the incident",
				Competency:  "Accountability",
			},
		},
		{
			name:   "unparseable output degrades to neutral",
			input:  "I think the candidate did fine.",
			expect: Evaluation{Score: DefaultScore},
		},
		{
			name:   "empty output",
			input:  "",
			expect: Evaluation{Score: DefaultScore},
		},
		{
			name:   "score out of scale falls back to neutral",
			input:  "SCORE: 9",
			expect: Evaluation{Score: DefaultScore},
		},
		{
			name:   "ten point scale falls back to neutral",
			input:  "SCORE: 10\nEXPLANATION: perfect",
			expect: Evaluation{Score: DefaultScore, Explanation: "perfect"},
		},
		{
			name:   "two digit score is not truncated",
			input:  "SCORE: 45",
			expect: Evaluation{Score: DefaultScore},
		},
		{
			name:   "prefixed score label is not the score",
			input:  "TECHNICAL_SCORE: 1\nSCORE: 5",
			expect: Evaluation{Score: 5},
		},
		{
			name:   "only a prefixed score label",
			input:  "X_SCORE: 1",
			expect: Evaluation{Score: DefaultScore},
		},
		{
			name:   "score followed by scale",
			input:  "Score: 4/5",
			expect: Evaluation{Score: 4},
		},
		{
			name:  "explanation stops at lowercase key",
			input: "SCORE: 4\nEXPLANATION: ok\nauto_reject: false",
			expect: Evaluation{
				Score:       4,
				Explanation: "ok",
			},
		},
		{
			name:   "unknown difficulty ignored",
			input:  "SCORE: 2\nDIFFICULTY: extreme",
			expect: Evaluation{Score: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseEvaluation(tt.input)
			tt.expect.Raw = tt.input
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestParseCVScore(t *testing.T) {
	t.Parallel()

	score, explanation := ParseCVScore("SCORE: 82\nEXPLANATION: Strong Go background, little Kubernetes.")
	assert.Equal(t, 82.0, score)
	assert.Equal(t, "Strong Go background, little Kubernetes.", explanation)

	score, explanation = ParseCVScore("no structure at all")
	assert.Equal(t, DefaultCVScore, score)
	assert.Equal(t, DefaultCVExplanation, explanation)

	score, _ = ParseCVScore("SCORE: 140")
	assert.Equal(t, 100.0, score)

	score, _ = ParseCVScore("SKILLS_SCORE: 20\nSCORE: 65")
	assert.Equal(t, 65.0, score)
}

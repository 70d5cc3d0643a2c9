package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		phase     Phase
		message   string
		proceed   bool
		expect    Node
		wantKnown bool
	}{
		{name: "knockout without answer", phase: PhaseKnockout, proceed: true, expect: NodeKnockout, wantKnown: true},
		{name: "knockout with answer", phase: PhaseKnockout, message: "yes", proceed: true, expect: NodeEvaluateKnockout, wantKnown: true},
		{name: "technical without answer", phase: PhaseTechnical, proceed: true, expect: NodeTechnical, wantKnown: true},
		{name: "technical with answer", phase: PhaseTechnical, message: "channels", proceed: true, expect: NodeEvaluateTechnical, wantKnown: true},
		{name: "soft skills without answer", phase: PhaseSoftSkills, proceed: true, expect: NodeSoftSkills, wantKnown: true},
		{name: "soft skills with answer", phase: PhaseSoftSkills, message: "I owned it", proceed: true, expect: NodeEvaluateSoftSkills, wantKnown: true},
		{name: "whitespace is not an answer", phase: PhaseTechnical, message: "  \n ", proceed: true, expect: NodeTechnical, wantKnown: true},
		{name: "closing", phase: PhaseClosing, proceed: true, expect: NodeClosing, wantKnown: true},
		{name: "stop overrides phase", phase: PhaseTechnical, message: "answer", proceed: false, expect: NodeClosing, wantKnown: true},
		{name: "unknown phase", phase: Phase("completed"), proceed: true, expect: NodeClosing, wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node, known := Route(&State{CurrentPhase: tt.phase, CandidateMessage: tt.message, ShouldContinue: tt.proceed})
			assert.Equal(t, tt.expect, node)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestPhaseNext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PhaseTechnical, PhaseKnockout.Next())
	assert.Equal(t, PhaseSoftSkills, PhaseTechnical.Next())
	assert.Equal(t, PhaseClosing, PhaseSoftSkills.Next())
	assert.Equal(t, PhaseClosing, PhaseClosing.Next())
	assert.Equal(t, PhaseClosing, Phase("bogus").Next())

	_, err := ParsePhase("bogus")
	assert.Error(t, err)

	p, err := ParsePhase("soft_skills")
	assert.NoError(t, err)
	assert.Equal(t, PhaseSoftSkills, p)
}

func TestRecentPerformance(t *testing.T) {
	t.Parallel()

	entries := func(scores ...float64) []ScoreEntry {
		out := make([]ScoreEntry, 0, len(scores))
		for _, s := range scores {
			out = append(out, ScoreEntry{Score: s})
		}
		return out
	}

	assert.Equal(t, TrendNone, RecentPerformance(nil).Trend)
	assert.Equal(t, TrendDeepen, RecentPerformance(entries(1, 4, 4)).Trend)
	assert.Equal(t, TrendDeepen, RecentPerformance(entries(5)).Trend)
	assert.Equal(t, TrendSteady, RecentPerformance(entries(3, 4)).Trend)
	assert.Equal(t, TrendSwitch, RecentPerformance(entries(5, 2, 3)).Trend)
	assert.Equal(t, TrendSwitch, RecentPerformance(entries(1)).Trend)
	assert.InDelta(t, 3.5, RecentPerformance(entries(3, 4)).RecentAverage, 1e-9)
}

package interview

import (
	"context"
	"fmt"

	"github.com/spigell/interview-agent/internal/ai"
	"go.uber.org/zap"
)

const (
	defaultDifficulty = "medium"
	// DefaultCompetency is assessed when no specific soft skill is targeted.
	DefaultCompetency = "Behavioral competency"

	rejectionPrefix = "Knockout: "
)

// SoftSkillsRedFlags are behaviours the soft skills rubric penalises.
var SoftSkillsRedFlags = []string{"blaming others", "lack of accountability"}

// evaluate runs the evaluator node of phase p. The candidate message is consumed
// whether or not there is a question to score it against.
func (m *Machine) evaluate(ctx context.Context, st *State, p Phase, log *zap.Logger) error {
	answer := st.CandidateMessage
	st.CandidateMessage = ""

	question, ok := st.lastQuestion(p)
	if !ok || answer == "" || question.Content == "" {
		log.Warn("no question to evaluate, skipping answer", zap.String("phase", p.String()))
		return nil
	}

	req := EvaluationRequest{
		Phase:     p,
		Question:  question.Content,
		Answer:    answer,
		Job:       st.Job,
		Seniority: st.Candidate.Seniority,
	}
	if p == PhaseSoftSkills {
		req.Competency = DefaultCompetency
		req.RedFlags = SoftSkillsRedFlags
	}

	eval, err := m.answers.EvaluateAnswer(ctx, req)
	if err != nil {
		return fmt.Errorf("evaluate %s answer: %w", p, err)
	}
	if eval == nil {
		parsed := ai.ParseEvaluation("")
		eval = &parsed
	}

	st.appendMessage(RoleCandidate, answer, p, m.now())

	entry := ScoreEntry{
		Question:    question.Content,
		Answer:      answer,
		Score:       eval.Score,
		Explanation: eval.Explanation,
	}
	switch p {
	case PhaseKnockout:
		entry.AutoReject = eval.AutoReject
	case PhaseTechnical:
		entry.Difficulty = eval.Difficulty
		if entry.Difficulty == "" {
			entry.Difficulty = defaultDifficulty
		}
	case PhaseSoftSkills:
		entry.Competency = eval.Competency
		if entry.Competency == "" {
			entry.Competency = req.Competency
		}
	}
	st.appendScore(p, entry)

	log.Info("answer evaluated",
		zap.String("phase", p.String()),
		zap.Float64("score", entry.Score),
		zap.Bool("auto_reject", entry.AutoReject),
	)

	if p == PhaseKnockout && eval.AutoReject {
		// One retry is granted on an ambiguous first knockout answer.
		if st.PhaseCounter[PhaseKnockout] <= 1 {
			log.Info("auto reject ignored on first knockout question")
			return nil
		}

		st.completePhase(PhaseKnockout)
		st.ShouldContinue = false
		st.CurrentPhase = PhaseClosing
		st.RejectionReason = rejectionPrefix + eval.Explanation
		log.Info("candidate rejected", zap.String("reason", st.RejectionReason))
		return nil
	}

	if st.limitReached(p) {
		st.completePhase(p)
		log.Info("phase complete", zap.String("phase", p.String()), zap.String("next_phase", st.CurrentPhase.String()))
	}

	return nil
}

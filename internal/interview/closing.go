package interview

import (
	"context"
	"fmt"

	"github.com/spigell/interview-agent/internal/scoring"
	"go.uber.org/zap"
)

const (
	rejectionTemplate = "Thank you for your time, %s.\n\n" +
		"We have completed the initial evaluation. Unfortunately we will not be able to move forward with your application due to: %s\n\n" +
		"We wish you success in your job search."
	completionTemplate = "Thank you for completing the interview, %s.\n\n" +
		"%s in the process. The recruiting team will review your answers and contact you soon with the next steps.\n\n" +
		"Have a great day!"
)

var closingTone = map[scoring.Recommendation]string{
	scoring.RecommendationExcellent: "Excellent performance",
	scoring.RecommendationGood:      "Good performance",
	scoring.RecommendationCompleted: "Evaluation completed",
}

func (m *Machine) close(ctx context.Context, st *State, log *zap.Logger) error {
	if st.Final == nil {
		st.Final = m.finalScores(ctx, st)
	}

	msg := ClosingMessage(st.Candidate.Name, st.RejectionReason, st.Final.Recommendation)
	st.appendMessage(RoleAgent, msg, PhaseClosing, m.now())
	st.NextQuestion = msg
	st.ShouldContinue = false
	st.CurrentPhase = PhaseClosing

	log.Info("interview completed",
		zap.Float64("global_score", st.Final.GlobalScore),
		zap.Float64("cv_score", st.Final.CVScore),
		zap.Float64("technical_score", st.Final.TechnicalScoreAvg),
		zap.Float64("soft_skills_score", st.Final.SoftSkillsScoreAvg),
		zap.String("recommendation", string(st.Final.Recommendation)),
	)

	return nil
}

func (m *Machine) finalScores(ctx context.Context, st *State) *FinalScores {
	cv := m.scores.CVScore(ctx, scoring.CVRequest{
		CandidateID:      st.CandidateID,
		JobPostingID:     st.JobPostingID,
		CVText:           st.Candidate.CVText,
		JobTitle:         st.Job.Title,
		RequiredSkills:   st.Job.RequiredSkills,
		NiceToHaveSkills: st.Job.NiceToHaveSkills,
	})
	technical := scoring.PhaseAverage(answers(st.TechnicalScores))
	soft := scoring.PhaseAverage(answers(st.SoftSkillsScores))

	global := m.scores.GlobalScore(ctx, scoring.GlobalRequest{
		ApplicationID:   st.ApplicationID,
		CVScore:         cv.Score,
		TechnicalScore:  technical.Score,
		SoftSkillsScore: soft.Score,
	})

	return &FinalScores{
		CVScore:               cv.Score,
		CVExplanation:         cv.Explanation,
		TechnicalScoreAvg:     technical.Score,
		TechnicalExplanation:  technical.Explanation,
		SoftSkillsScoreAvg:    soft.Score,
		SoftSkillsExplanation: soft.Explanation,
		GlobalScore:           global.Score,
		GlobalExplanation:     global.Explanation,
		Recommendation:        scoring.Recommend(global.Score, st.RejectionReason != ""),
	}
}

// ClosingMessage renders the final message sent to the candidate.
func ClosingMessage(name, rejectionReason string, rec scoring.Recommendation) string {
	if rejectionReason != "" {
		return fmt.Sprintf(rejectionTemplate, name, rejectionReason)
	}

	tone, ok := closingTone[rec]
	if !ok {
		tone = closingTone[scoring.RecommendationCompleted]
	}
	return fmt.Sprintf(completionTemplate, name, tone)
}

func answers(entries []ScoreEntry) []scoring.Answer {
	out := make([]scoring.Answer, 0, len(entries))
	for _, e := range entries {
		out = append(out, scoring.Answer{Score: e.Score, Explanation: e.Explanation})
	}
	return out
}

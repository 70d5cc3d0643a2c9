package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/interview-agent/internal/utils"
	"go.uber.org/zap"
)

const questionPreviewLength = 50

var ErrEmptyQuestion = errors.New("question generator returned an empty question")

// generate runs the generator node of phase p. It reports whether a question was asked;
// when the phase is exhausted it moves on to the next phase instead.
func (m *Machine) generate(ctx context.Context, st *State, p Phase, log *zap.Logger) (bool, error) {
	if st.limitReached(p) || st.IsCompleted(p) {
		log.Info("phase complete",
			zap.String("phase", p.String()),
			zap.Int("questions_asked", st.PhaseCounter[p]),
		)
		st.completePhase(p)
		return false, nil
	}

	req := QuestionRequest{
		Phase:             p,
		Job:               st.Job,
		Candidate:         st.Candidate,
		PreviousQuestions: st.questionsAsked(p),
	}
	if p == PhaseTechnical {
		req.Performance = RecentPerformance(st.TechnicalScores)
	}

	question, err := m.questions.GenerateQuestion(ctx, req)
	if err != nil {
		return false, fmt.Errorf("generate %s question: %w", p, err)
	}
	if question = strings.TrimSpace(question); question == "" {
		return false, fmt.Errorf("generate %s question: %w", p, ErrEmptyQuestion)
	}

	st.appendMessage(RoleAgent, question, p, m.now())
	st.NextQuestion = question
	st.PhaseCounter[p]++

	log.Info("question generated",
		zap.String("phase", p.String()),
		zap.Int("question_number", st.PhaseCounter[p]),
		zap.String("trend", string(req.Performance.Trend)),
		zap.String("question_preview", utils.TruncateForLog(question, questionPreviewLength)),
	)

	return true, nil
}

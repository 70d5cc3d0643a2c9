package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/spigell/interview-agent/internal/ai"
	"github.com/spigell/interview-agent/internal/scoring"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type stubQuestions struct {
	requests []QuestionRequest
	err      error
}

func (s *stubQuestions) GenerateQuestion(_ context.Context, req QuestionRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%s question %d", req.Phase, len(req.PreviousQuestions)+1), nil
}

type stubEvaluator struct {
	requests []EvaluationRequest
	fn       func(req EvaluationRequest) *ai.Evaluation
	err      error
}

func (s *stubEvaluator) EvaluateAnswer(_ context.Context, req EvaluationRequest) (*ai.Evaluation, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if s.fn == nil {
		return &ai.Evaluation{Score: 4, Explanation: "good"}, nil
	}
	return s.fn(req), nil
}

// scoreByPhase answers with a fixed score per phase.
func scoreByPhase(scores map[Phase]float64) func(EvaluationRequest) *ai.Evaluation {
	return func(req EvaluationRequest) *ai.Evaluation {
		return &ai.Evaluation{Score: scores[req.Phase], Explanation: fmt.Sprintf("%s answer", req.Phase)}
	}
}

type stubCV struct {
	score float64
}

func (s stubCV) ScoreCV(context.Context, scoring.CVRequest) (scoring.Result, error) {
	return scoring.Result{Score: s.score, Explanation: "cv matches"}, nil
}

type fixture struct {
	questions *stubQuestions
	answers   *stubEvaluator
	machine   *Machine
}

func newFixture(cvScore float64, maxQuestions map[Phase]int) *fixture {
	f := &fixture{
		questions: &stubQuestions{},
		answers:   &stubEvaluator{},
	}
	aggregator := scoring.NewAggregator(nil, stubCV{score: cvScore}, nil)
	f.machine = NewMachine(f.questions, f.answers, aggregator, Config{MaxQuestions: maxQuestions}, nil,
		WithClock(func() time.Time { return fixedNow }))
	return f
}

func newState() *State {
	return &State{
		ApplicationID:  "app-1",
		JobPostingID:   "job-1",
		CandidateID:    "cand-1",
		ShouldContinue: true,
		Job: JobContext{
			Title:            "Backend Engineer",
			KnockoutCriteria: []string{"EU work permit"},
			RequiredSkills:   map[string]any{"languages": []string{"Go"}},
		},
		Candidate: CandidateContext{Name: "Alex", Seniority: "senior", CVText: "Go, Postgres, Kafka"},
	}
}

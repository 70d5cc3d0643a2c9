package interview

import (
	"context"

	"github.com/spigell/interview-agent/internal/ai"
	"github.com/spigell/interview-agent/internal/scoring"
)

// Trend tells the technical question generator how to adapt to recent answers.
type Trend string

const (
	// TrendNone means there are no technical answers yet.
	TrendNone Trend = ""
	// TrendDeepen asks to go deeper on the same topic and raise difficulty.
	TrendDeepen Trend = "deepen"
	// TrendSteady asks to keep a similar level.
	TrendSteady Trend = "steady"
	// TrendSwitch asks to change topic and lower difficulty.
	TrendSwitch Trend = "switch"
)

const (
	deepenThreshold = 4.0
	switchThreshold = 2.5
	trendWindow     = 2
)

// Performance summarises the latest answers of a phase.
type Performance struct {
	Trend         Trend
	RecentAverage float64
}

// QuestionRequest is everything a generator needs to ask the next question of a phase.
type QuestionRequest struct {
	Phase             Phase
	Job               JobContext
	Candidate         CandidateContext
	PreviousQuestions []string
	Performance       Performance
}

// EvaluationRequest is a question/answer pair plus the rubric of its phase.
type EvaluationRequest struct {
	Phase     Phase
	Question  string
	Answer    string
	Job       JobContext
	Seniority string
	// Competency and RedFlags are set for soft skills only.
	Competency string
	RedFlags   []string
}

type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, req QuestionRequest) (string, error)
}

type AnswerEvaluator interface {
	EvaluateAnswer(ctx context.Context, req EvaluationRequest) (*ai.Evaluation, error)
}

// ScoreAggregator computes the CV and global scores. Both calls fall back locally
// and never fail.
type ScoreAggregator interface {
	CVScore(ctx context.Context, req scoring.CVRequest) scoring.Result
	GlobalScore(ctx context.Context, req scoring.GlobalRequest) scoring.Result
}

// RecentPerformance derives the adaptive signal from the average of the last two scores.
func RecentPerformance(scores []ScoreEntry) Performance {
	if len(scores) == 0 {
		return Performance{Trend: TrendNone}
	}

	recent := scores[max(0, len(scores)-trendWindow):]
	var sum float64
	for _, s := range recent {
		sum += s.Score
	}
	avg := sum / float64(len(recent))

	switch {
	case avg >= deepenThreshold:
		return Performance{Trend: TrendDeepen, RecentAverage: avg}
	case avg <= switchThreshold:
		return Performance{Trend: TrendSwitch, RecentAverage: avg}
	default:
		return Performance{Trend: TrendSteady, RecentAverage: avg}
	}
}

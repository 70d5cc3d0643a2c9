package scoring

import (
	"context"

	"github.com/spigell/interview-agent/internal/ai"
	"go.uber.org/zap"
)

const cvScoreErrorExplanation = "Error calculating CV score"

// CVRequest carries what is needed to score a CV against a job posting.
type CVRequest struct {
	CandidateID      string
	JobPostingID     string
	CVText           string
	JobTitle         string
	RequiredSkills   map[string]any
	NiceToHaveSkills map[string]any
}

// GlobalRequest carries the component scores of one application.
type GlobalRequest struct {
	ApplicationID   string
	CVScore         float64
	TechnicalScore  float64
	SoftSkillsScore float64
}

// Remote is the backend scoring service.
type Remote interface {
	FetchCVScore(ctx context.Context, candidateID, jobPostingID string) (Result, error)
	FetchGlobalScore(ctx context.Context, req GlobalRequest, weights Weights) (Result, error)
}

// CVScorer scores a CV locally, usually through an LLM.
type CVScorer interface {
	ScoreCV(ctx context.Context, req CVRequest) (Result, error)
}

// Aggregator computes CV and global scores, preferring the remote service and
// falling back to local computation when it fails.
type Aggregator struct {
	remote  Remote
	local   CVScorer
	weights Weights
	logger  *zap.Logger
}

// NewAggregator builds an Aggregator. Remote and local may be nil, in which case the
// corresponding fallback is used directly.
func NewAggregator(remote Remote, local CVScorer, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Aggregator{
		remote:  remote,
		local:   local,
		weights: DefaultWeights,
		logger:  logger,
	}
}

// Weights returns the weights used for the global score.
func (a *Aggregator) Weights() Weights {
	return a.weights
}

// CVScore never fails: remote, then local scorer, then a neutral default.
func (a *Aggregator) CVScore(ctx context.Context, req CVRequest) Result {
	if a.remote != nil {
		res, err := a.remote.FetchCVScore(ctx, req.CandidateID, req.JobPostingID)
		if err == nil {
			return res
		}
		a.logger.Warn("backend cv score failed, using local scorer",
			zap.String("candidate_id", req.CandidateID),
			zap.String("job_posting_id", req.JobPostingID),
			zap.Error(err),
		)
	}

	if a.local == nil {
		return Result{Score: ai.DefaultCVScore, Explanation: ai.DefaultCVExplanation}
	}

	res, err := a.local.ScoreCV(ctx, req)
	if err != nil {
		a.logger.Error("local cv score failed", zap.String("candidate_id", req.CandidateID), zap.Error(err))
		return Result{Score: ai.DefaultCVScore, Explanation: cvScoreErrorExplanation}
	}

	return res
}

// GlobalScore never fails: remote, then the local weighted formula.
func (a *Aggregator) GlobalScore(ctx context.Context, req GlobalRequest) Result {
	if a.remote != nil {
		res, err := a.remote.FetchGlobalScore(ctx, req, a.weights)
		if err == nil {
			return res
		}
		a.logger.Warn("backend global score failed, using local formula",
			zap.String("application_id", req.ApplicationID),
			zap.Error(err),
		)
	}

	return Result{
		Score:       a.weights.Global(req.CVScore, req.TechnicalScore, req.SoftSkillsScore),
		Explanation: a.weights.Explain(req.CVScore, req.TechnicalScore, req.SoftSkillsScore),
	}
}

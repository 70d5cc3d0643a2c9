// Package backend is the client of the recruitment backend scoring endpoints.
package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/interview-agent/internal/scoring"
	"go.uber.org/zap"
)

const (
	defaultURL     = "http://localhost:8000"
	defaultTimeout = 30 * time.Second
	userAgent      = "spigell/interview-agent"

	cvScorePath     = "/scoring/calculate-cv-score"
	globalScorePath = "/scoring/calculate-global-score"
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

func New(logger *zap.Logger, baseURL, token string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL == "" {
		baseURL = defaultURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		token:   token,
		logger:  logger,
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
	}
}

type cvScoreRequest struct {
	CandidateID  string `json:"candidate_id"`
	JobPostingID string `json:"job_posting_id"`
}

type cvScoreResponse struct {
	Score       *float64 `json:"score"`
	Explanation string   `json:"explanation"`
}

type globalScoreRequest struct {
	ApplicationID   string          `json:"application_id"`
	CVScore         float64         `json:"cv_score"`
	TechnicalScore  float64         `json:"technical_score"`
	SoftSkillsScore float64         `json:"soft_skills_score"`
	ScoringWeights  scoring.Weights `json:"scoring_weights"`
}

type globalScoreResponse struct {
	GlobalScore *float64 `json:"global_score"`
	Explanation string   `json:"explanation"`
}

// FetchCVScore asks the backend to score the candidate CV against the job posting.
func (c *Client) FetchCVScore(ctx context.Context, candidateID, jobPostingID string) (scoring.Result, error) {
	var resp cvScoreResponse
	payload := cvScoreRequest{CandidateID: candidateID, JobPostingID: jobPostingID}
	if err := c.postJSON(ctx, cvScorePath, payload, &resp); err != nil {
		return scoring.Result{}, err
	}
	if resp.Score == nil {
		return scoring.Result{}, errMissingField("score")
	}

	c.logger.Debug("got cv score from backend", zap.String("candidate_id", candidateID), zap.Float64("score", *resp.Score))

	return scoring.Result{Score: *resp.Score, Explanation: resp.Explanation}, nil
}

// FetchGlobalScore asks the backend to combine the component scores.
func (c *Client) FetchGlobalScore(ctx context.Context, req scoring.GlobalRequest, weights scoring.Weights) (scoring.Result, error) {
	var resp globalScoreResponse
	payload := globalScoreRequest{
		ApplicationID:   req.ApplicationID,
		CVScore:         req.CVScore,
		TechnicalScore:  req.TechnicalScore,
		SoftSkillsScore: req.SoftSkillsScore,
		ScoringWeights:  weights,
	}
	if err := c.postJSON(ctx, globalScorePath, payload, &resp); err != nil {
		return scoring.Result{}, err
	}
	if resp.GlobalScore == nil {
		return scoring.Result{}, errMissingField("global_score")
	}

	c.logger.Debug("got global score from backend", zap.String("application_id", req.ApplicationID), zap.Float64("score", *resp.GlobalScore))

	return scoring.Result{Score: *resp.GlobalScore, Explanation: resp.Explanation}, nil
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/interview-agent/internal/ai"
	"github.com/spigell/interview-agent/internal/interview"
	"github.com/spigell/interview-agent/internal/scoring"
	"github.com/spigell/interview-agent/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Interviewer asks questions, scores answers and scores CVs through a content generator.
type Interviewer struct {
	generator contentGenerator
	system    string
	logger    *zap.Logger
	maxLogLen int
}

func NewInterviewer(generator contentGenerator, logger *zap.Logger, maxLogLength int) (*Interviewer, error) {
	if generator == nil {
		return nil, errors.New("content generator is required")
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	system, err := loadPrompt("system")
	if err != nil {
		return nil, err
	}

	return &Interviewer{
		generator: generator,
		system:    system,
		logger:    logger,
		maxLogLen: maxLogLength,
	}, nil
}

// GenerateQuestion asks the model for the next question of req.Phase.
func (i *Interviewer) GenerateQuestion(ctx context.Context, req interview.QuestionRequest) (string, error) {
	prompt, err := questionPrompt(req)
	if err != nil {
		return "", err
	}

	raw, err := i.generate(ctx, prompt, zap.String("phase", req.Phase.String()), zap.String("kind", "question"))
	if err != nil {
		return "", err
	}

	return ai.ExtractQuestion(raw), nil
}

// EvaluateAnswer scores an answer. Malformed model output yields neutral defaults.
func (i *Interviewer) EvaluateAnswer(ctx context.Context, req interview.EvaluationRequest) (*ai.Evaluation, error) {
	prompt, err := evaluationPrompt(req)
	if err != nil {
		return nil, err
	}

	raw, err := i.generate(ctx, prompt, zap.String("phase", req.Phase.String()), zap.String("kind", "evaluation"))
	if err != nil {
		return nil, err
	}

	eval := ai.ParseEvaluation(raw)
	return &eval, nil
}

// ScoreCV scores a CV against the job posting on a 0-100 scale.
func (i *Interviewer) ScoreCV(ctx context.Context, req scoring.CVRequest) (scoring.Result, error) {
	if strings.TrimSpace(req.CVText) == "" {
		return scoring.Result{}, fmt.Errorf("candidate %q has no cv text", req.CandidateID)
	}

	prompt, err := renderPrompt("cv_score", map[string]string{
		"JOB_TITLE":           req.JobTitle,
		"REQUIRED_SKILLS":     formatSkills(req.RequiredSkills),
		"NICE_TO_HAVE_SKILLS": formatSkills(req.NiceToHaveSkills),
		"CV_TEXT":             req.CVText,
	})
	if err != nil {
		return scoring.Result{}, err
	}

	raw, err := i.generate(ctx, prompt, zap.String("candidate_id", req.CandidateID), zap.String("kind", "cv_score"))
	if err != nil {
		return scoring.Result{}, err
	}

	score, explanation := ai.ParseCVScore(raw)
	return scoring.Result{Score: score, Explanation: explanation}, nil
}

func (i *Interviewer) generate(ctx context.Context, prompt string, fields ...zap.Field) (string, error) {
	i.logger.Debug("gemini generate content request", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, i.maxLogLen)),
	)...)

	raw, err := i.generator.GenerateContent(ctx, i.system, prompt)
	if err != nil {
		return "", err
	}

	i.logger.Debug("gemini generate content response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, i.maxLogLen)),
	)...)

	return raw, nil
}

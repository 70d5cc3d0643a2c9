package step

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/spigell/interview-agent/internal/interview"
	"github.com/spigell/interview-agent/internal/logger"
	"go.uber.org/zap"
)

// Runner executes one interview superstep.
type Runner interface {
	Run(ctx context.Context, st *interview.State) (*interview.Outcome, error)
}

// Service validates step requests, runs them through the interview machine and
// builds the wire result.
type Service struct {
	runner   Runner
	validate *validator.Validate
	logger   *zap.Logger
}

func NewService(runner Runner, log *zap.Logger) *Service {
	return &Service{
		runner:   runner,
		validate: newValidator(),
		logger:   logger.WithFields(log),
	}
}

// ProcessStep runs one step of the interview described by req.
func (s *Service) ProcessStep(ctx context.Context, req *Request) (*Result, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	st, err := toState(req)
	if err != nil {
		return nil, err
	}

	log := logger.WithSession(s.logger, req.ApplicationID)
	log.Info("processing interview step",
		zap.String("phase", st.CurrentPhase.String()),
		zap.Int("history", len(st.Messages)),
		zap.Bool("has_answer", st.CandidateMessage != ""),
	)

	out, err := s.runner.Run(ctx, st)
	if err != nil {
		if errors.Is(err, interview.ErrInvalidState) {
			return nil, &ValidationError{Fields: []FieldError{{Field: "interview_state", Message: err.Error()}}}
		}
		log.Error("interview step failed", zap.Error(err))
		return nil, err
	}

	res, err := buildResult(st, out)
	if err != nil {
		return nil, err
	}

	log.Info("interview step processed",
		zap.String("phase", res.Phase),
		zap.Bool("should_continue", res.ShouldContinue),
		zap.Int("total_questions", res.ScoresSummary.TotalQuestions),
		zap.Int("order_index", res.OrderIndex),
	)

	return res, nil
}

func buildResult(st *interview.State, out *interview.Outcome) (*Result, error) {
	snap, err := toSnapshot(st)
	if err != nil {
		return nil, err
	}

	res := &Result{
		NextQuestion:   st.NextQuestion,
		Score:          st.LastScore(),
		Phase:          st.CurrentPhase.String(),
		ShouldContinue: st.ShouldContinue,
		ScoresSummary: ScoresSummary{
			KnockoutCompleted:   len(st.KnockoutScores),
			TechnicalCompleted:  len(st.TechnicalScores),
			SoftSkillsCompleted: len(st.SoftSkillsScores),
			TotalQuestions:      st.AnsweredQuestions(),
		},
		RejectionReason: snap.RejectionReason,
		OrderIndex:      len(st.Messages),
		NewMessages:     toMessages(out.NewMessages),
		FinalScores:     st.Final,
		State:           snap,
	}

	return res, nil
}

// Package interview implements the phase state machine that drives a candidate interview:
// knockout, technical and soft skills questions followed by a scored closing.
package interview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spigell/interview-agent/internal/logger"
	"go.uber.org/zap"
)

// ErrNoProgress is returned when a superstep exceeds its node budget.
var ErrNoProgress = errors.New("interview superstep made no progress")

// stepSlack covers the evaluator, the phase hand-offs and closing in one superstep.
const stepSlack = 8

var nodePhase = map[Node]Phase{
	NodeKnockout:           PhaseKnockout,
	NodeEvaluateKnockout:   PhaseKnockout,
	NodeTechnical:          PhaseTechnical,
	NodeEvaluateTechnical:  PhaseTechnical,
	NodeSoftSkills:         PhaseSoftSkills,
	NodeEvaluateSoftSkills: PhaseSoftSkills,
	NodeClosing:            PhaseClosing,
}

// Machine runs interview supersteps. It holds no per-session state and is safe for
// concurrent use on different states.
type Machine struct {
	questions QuestionGenerator
	answers   AnswerEvaluator
	scores    ScoreAggregator
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Machine)

// WithClock overrides the clock used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

func NewMachine(questions QuestionGenerator, answers AnswerEvaluator, scores ScoreAggregator, cfg Config, log *zap.Logger, opts ...Option) *Machine {
	m := &Machine{
		questions: questions,
		answers:   answers,
		scores:    scores,
		cfg:       cfg,
		logger:    logger.WithFields(log),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Outcome describes what a superstep did.
type Outcome struct {
	Trace       []Node
	NewMessages []Message
}

// Run executes one superstep on st: it initializes the state and then follows Route until
// a question is asked or the interview is closed. Errors from collaborators are returned
// as is, wrapped with the failing node.
func (m *Machine) Run(ctx context.Context, st *State) (*Outcome, error) {
	if err := Initialize(st, m.cfg); err != nil {
		return nil, err
	}

	log := logger.WithSession(m.logger, st.ApplicationID)
	start := len(st.Messages)
	out := &Outcome{Trace: []Node{NodeInitialize}}

	limit := stepSlack
	for _, p := range QuestionPhases {
		limit += 2 * st.MaxQuestions[p]
	}

	for range limit {
		node, known := Route(st)
		if !known {
			log.Warn("unknown interview phase, routing to closing", zap.String("phase", st.CurrentPhase.String()))
		}
		out.Trace = append(out.Trace, node)
		log.Debug("running node", zap.String("node", string(node)), zap.String("phase", st.CurrentPhase.String()))

		halt, err := m.exec(ctx, st, node, log)
		if err != nil {
			return nil, fmt.Errorf("%s node: %w", node, err)
		}
		if halt {
			out.NewMessages = slices.Clone(st.Messages[start:])
			return out, nil
		}
	}

	return nil, fmt.Errorf("%w after %d nodes", ErrNoProgress, limit)
}

func (m *Machine) exec(ctx context.Context, st *State, node Node, log *zap.Logger) (bool, error) {
	switch node {
	case NodeKnockout, NodeTechnical, NodeSoftSkills:
		return m.generate(ctx, st, nodePhase[node], log)
	case NodeEvaluateKnockout, NodeEvaluateTechnical, NodeEvaluateSoftSkills:
		return false, m.evaluate(ctx, st, nodePhase[node], log)
	case NodeClosing:
		return true, m.close(ctx, st, log)
	default:
		return false, fmt.Errorf("no handler for node %q", node)
	}
}

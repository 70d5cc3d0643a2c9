package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/interview-agent/internal/ai/gemini"
	"github.com/spigell/interview-agent/internal/backend"
	"github.com/spigell/interview-agent/internal/interview"
	"github.com/spigell/interview-agent/internal/logger"
	"github.com/spigell/interview-agent/internal/scoring"
	"github.com/spigell/interview-agent/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newMachine wires the Gemini interviewer, the backend scoring client and the
// interview machine from config.
func newMachine(ctx context.Context, cfg *Config, log *zap.Logger) (*interview.Machine, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.AI == nil || cfg.AI.Gemini == nil {
		return nil, errors.New("ai.gemini section is required")
	}

	interviewer, err := newInterviewer(ctx, cfg.AI, log)
	if err != nil {
		return nil, fmt.Errorf("creating the interviewer: %w", err)
	}

	remote, err := newBackend(cfg.Backend, log)
	if err != nil {
		return nil, fmt.Errorf("creating the backend client: %w", err)
	}

	icfg, err := interviewConfig(cfg.Interview)
	if err != nil {
		return nil, err
	}

	aggregator := scoring.NewAggregator(remote, interviewer, log)

	return interview.NewMachine(interviewer, interviewer, aggregator, icfg, log), nil
}

func newInterviewer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*gemini.Interviewer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	g := cfg.Gemini

	var apiKey string
	if !strings.EqualFold(strings.TrimSpace(g.Backend), gemini.BackendVertex) {
		key, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  g.APIKeyFile,
			Value: g.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, ai.gemini.api-key or GEMINI_API_KEY)", err)
		}
		apiKey = key
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Options{
		APIKey:          apiKey,
		Backend:         g.Backend,
		Project:         g.Project,
		Location:        g.Location,
		Model:           g.Model,
		Temperature:     g.Temperature,
		MaxOutputTokens: g.MaxOutputTokens,
		MaxRetries:      g.MaxRetries,
	}, log.With(zap.Int("ai_retry_attempts", g.MaxRetries)))
	if err != nil {
		return nil, err
	}

	return gemini.NewInterviewer(generator, logger.WithCommonFields(log, gemini.Provider, generator.Model()), g.MaxLogLength)
}

// newBackend returns nil when no backend url is configured, scoring then stays local.
func newBackend(cfg *BackendConfig, log *zap.Logger) (scoring.Remote, error) {
	if cfg == nil || strings.TrimSpace(cfg.URL) == "" {
		return nil, nil
	}

	token, err := secrets.LoadOptional(secrets.Source{
		Name:  "backend token",
		File:  cfg.TokenFile,
		Value: cfg.Token,
		Env:   "BACKEND_TOKEN",
	})
	if err != nil {
		return nil, err
	}

	return backend.New(log, cfg.URL, token, cfg.Timeout), nil
}

func interviewConfig(cfg *InterviewConfig) (interview.Config, error) {
	if cfg == nil {
		return interview.Config{}, nil
	}

	out := interview.Config{CVContextLength: cfg.CVContextLength}
	if len(cfg.MaxQuestions) == 0 {
		return out, nil
	}

	out.MaxQuestions = make(map[interview.Phase]int, len(interview.QuestionPhases))
	for _, p := range interview.QuestionPhases {
		out.MaxQuestions[p] = interview.DefaultMaxQuestions[p]
	}
	for key, n := range cfg.MaxQuestions {
		p, err := interview.ParsePhase(key)
		if err != nil || !p.AsksQuestions() {
			return interview.Config{}, fmt.Errorf("interview.max-questions: %q is not a question phase", key)
		}
		if n < 0 {
			return interview.Config{}, fmt.Errorf("interview.max-questions.%s must not be negative", key)
		}
		out.MaxQuestions[p] = n
	}

	return out, nil
}

func newLogger(outputs ...string) (*zap.Logger, error) {
	return logger.New(app, viper.GetBool("json"), viper.GetBool("debug"), outputs...)
}

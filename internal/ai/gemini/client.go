package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/interview-agent/internal/logger"
	"github.com/spigell/interview-agent/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	Provider = "gemini"

	defaultModel      = "gemini-2.0-flash"
	defaultMaxRetries = 3

	// BackendGemini and BackendVertex select the API the client talks to.
	BackendGemini = "gemini"
	BackendVertex = "vertex"

	baseRetryDelay = time.Second
	maxRetryDelay  = 30 * time.Second
)

var sleep = utils.WaitFor

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*(s|sec|secs|seconds?)\b`)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Options configure a Generator.
type Options struct {
	APIKey          string
	Backend         string
	Project         string
	Location        string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	MaxRetries      int
}

// Generator sends single-turn chats to Gemini, retrying temporary failures.
type Generator struct {
	chats           chatCreator
	model           string
	temperature     *float32
	maxOutputTokens int32
	maxRetries      int
	logger          *zap.Logger
}

// NewGenerator creates a Generator for the Gemini API or Vertex AI backend.
func NewGenerator(ctx context.Context, opts Options, log *zap.Logger) (*Generator, error) {
	cfg := &genai.ClientConfig{}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendGemini:
		apiKey := strings.TrimSpace(opts.APIKey)
		if apiKey == "" {
			return nil, errors.New("gemini api key is required")
		}
		cfg.APIKey = apiKey
		cfg.Backend = genai.BackendGeminiAPI
	case BackendVertex:
		if strings.TrimSpace(opts.Project) == "" || strings.TrimSpace(opts.Location) == "" {
			return nil, errors.New("vertex backend requires project and location")
		}
		cfg.Project = opts.Project
		cfg.Location = opts.Location
		cfg.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("unknown gemini backend %q", opts.Backend)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	g := &Generator{
		chats:           genaiChats{chats: client.Chats},
		model:           model,
		maxOutputTokens: int32(opts.MaxOutputTokens),
		maxRetries:      maxRetries,
		logger:          logger.WithCommonFields(log, Provider, model),
	}
	if opts.Temperature > 0 {
		t := float32(opts.Temperature)
		g.temperature = &t
	}

	return g, nil
}

// GenerateContent sends message with the given system instruction and returns the
// text of the reply.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     g.temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	attempts := max(1, g.maxRetries)
	for attempt := 1; ; attempt++ {
		output, err := g.send(ctx, config, message)
		if err == nil {
			return output, nil
		}

		delay, retryable := retryDelay(err, attempt)
		if !retryable || attempt >= attempts {
			return "", err
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (g *Generator) send(ctx context.Context, config *genai.GenerateContentConfig, message string) (string, error) {
	chat, err := g.chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned no response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// retryDelay decides whether err is worth another attempt and how long to wait.
// Quota errors asking for a longer pause than maxRetryDelay are not retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return 0, false
		}
		apiErr = *ptr
	}

	backoff := min(baseRetryDelay*time.Duration(math.Pow(2, float64(attempt-1))), maxRetryDelay)

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		if d, ok := quotaDelay(apiErr.Message); ok {
			if d > maxRetryDelay {
				return 0, false
			}
			return d, true
		}
		return backoff, true
	case apiErr.Code >= http.StatusInternalServerError:
		return backoff, true
	default:
		return 0, false
	}
}

func quotaDelay(message string) (time.Duration, bool) {
	m := retryAfterPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

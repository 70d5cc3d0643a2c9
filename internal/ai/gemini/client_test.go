package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const testModel = "gemini-2.0-flash"

type scriptedReply struct {
	resp *genai.GenerateContentResponse
	err  error
}

// scriptedChats hands out one chat per Create call, each answering with the next scripted reply.
type scriptedChats struct {
	mu      sync.Mutex
	replies []scriptedReply
	opened  []*scriptedChat
}

type scriptedChat struct {
	model  string
	config *genai.GenerateContentConfig
	reply  scriptedReply
	sent   []string
}

func (c *scriptedChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, part := range parts {
		c.sent = append(c.sent, part.Text)
	}
	return c.reply.resp, c.reply.err
}

func (s *scriptedChats) Create(_ context.Context, model string, config *genai.GenerateContentConfig, _ []*genai.Content) (chatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	chat := &scriptedChat{model: model, config: config, reply: s.replies[0]}
	s.replies = s.replies[1:]
	s.opened = append(s.opened, chat)
	return chat, nil
}

func script(replies ...scriptedReply) *scriptedChats {
	return &scriptedChats{replies: replies}
}

func text(s string) scriptedReply {
	return scriptedReply{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: s}}}}},
	}}
}

func failure(code int, message string) scriptedReply {
	return scriptedReply{err: genai.APIError{Code: code, Message: message}}
}

// recordSleeps replaces the retry sleep for the duration of the test.
func recordSleeps(t *testing.T) *[]time.Duration {
	t.Helper()

	var waited []time.Duration
	original := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		waited = append(waited, d)
		return nil
	}
	t.Cleanup(func() { sleep = original })

	return &waited
}

func newTestGenerator(chats chatCreator, retries int) *Generator {
	return &Generator{chats: chats, model: testModel, maxRetries: retries, logger: zap.NewNop()}
}

func TestGenerateContentRetriesServerErrors(t *testing.T) {
	waited := recordSleeps(t)
	chats := script(
		failure(http.StatusServiceUnavailable, "overloaded"),
		failure(http.StatusInternalServerError, "internal"),
		text("QUESTION: How do you size a worker pool?"),
	)

	out, err := newTestGenerator(chats, 3).GenerateContent(context.Background(), "You are a recruiter.", "Ask a technical question.")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "QUESTION: How do you size a worker pool?" {
		t.Fatalf("unexpected output: %q", out)
	}

	if want := []time.Duration{time.Second, 2 * time.Second}; fmt.Sprint(*waited) != fmt.Sprint(want) {
		t.Fatalf("expected backoff %v, got %v", want, *waited)
	}

	if len(chats.opened) != 3 {
		t.Fatalf("expected 3 chats, got %d", len(chats.opened))
	}
	for _, chat := range chats.opened {
		if chat.model != testModel {
			t.Fatalf("unexpected model %q", chat.model)
		}
		if chat.config.SystemInstruction == nil || chat.config.SystemInstruction.Parts[0].Text != "You are a recruiter." {
			t.Fatalf("system instruction not forwarded: %+v", chat.config.SystemInstruction)
		}
		if len(chat.sent) != 1 || chat.sent[0] != "Ask a technical question." {
			t.Fatalf("unexpected messages: %v", chat.sent)
		}
	}
}

func TestGenerateContentGivesUpAfterMaxRetries(t *testing.T) {
	recordSleeps(t)
	chats := script(
		failure(http.StatusInternalServerError, "internal"),
		failure(http.StatusInternalServerError, "internal"),
	)

	_, err := newTestGenerator(chats, 2).GenerateContent(context.Background(), "", "Evaluate the answer.")
	if err == nil {
		t.Fatal("expected an error once retries are exhausted")
	}
	if !errors.As(err, new(genai.APIError)) {
		t.Fatalf("expected the api error to be wrapped, got %v", err)
	}
	if len(chats.opened) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(chats.opened))
	}
}

func TestGenerateContentQuotaDelays(t *testing.T) {
	t.Run("short delay is honoured", func(t *testing.T) {
		waited := recordSleeps(t)
		chats := script(
			failure(http.StatusTooManyRequests, "rate limited, please retry in 2.5s"),
			text("SCORE: 4"),
		)

		out, err := newTestGenerator(chats, 3).GenerateContent(context.Background(), "", "Evaluate the answer.")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out != "SCORE: 4" {
			t.Fatalf("unexpected output: %q", out)
		}
		if len(*waited) != 1 || (*waited)[0] != 2500*time.Millisecond {
			t.Fatalf("expected a single 2.5s wait, got %v", *waited)
		}
		if chats.opened[0].config.SystemInstruction != nil {
			t.Fatal("expected no system instruction for an empty system prompt")
		}
	})

	t.Run("long delay is not retried", func(t *testing.T) {
		waited := recordSleeps(t)
		chats := script(failure(http.StatusTooManyRequests, "quota exhausted, retry after 60 seconds"))

		if _, err := newTestGenerator(chats, 3).GenerateContent(context.Background(), "", "Evaluate the answer."); err == nil {
			t.Fatal("expected an error")
		}
		if len(chats.opened) != 1 || len(*waited) != 0 {
			t.Fatalf("expected one attempt and no wait, got %d attempts, waits %v", len(chats.opened), *waited)
		}
	})
}

func TestGenerateContentDoesNotRetryClientErrors(t *testing.T) {
	recordSleeps(t)
	chats := script(failure(http.StatusBadRequest, "invalid argument"))

	if _, err := newTestGenerator(chats, 3).GenerateContent(context.Background(), "", "Ask a question."); err == nil {
		t.Fatal("expected an error")
	}
	if len(chats.opened) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(chats.opened))
	}
}

func TestGenerateContentRejectsEmptyInputAndOutput(t *testing.T) {
	chats := script(scriptedReply{resp: &genai.GenerateContentResponse{}})
	g := newTestGenerator(chats, 1)

	if _, err := g.GenerateContent(context.Background(), "", "Ask a question."); err == nil {
		t.Fatal("expected an error for an empty response")
	}
	if _, err := g.GenerateContent(context.Background(), "", "   "); err == nil {
		t.Fatal("expected an error for an empty message")
	}

	var nilGenerator *Generator
	if _, err := nilGenerator.GenerateContent(context.Background(), "", "Ask a question."); err == nil {
		t.Fatal("expected an error for a nil generator")
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		attempt   int
		wantDelay time.Duration
		wantRetry bool
	}{
		{"server error first attempt", genai.APIError{Code: 500}, 1, time.Second, true},
		{"server error third attempt", genai.APIError{Code: 502}, 3, 4 * time.Second, true},
		{"backoff is capped", genai.APIError{Code: 503}, 10, maxRetryDelay, true},
		{"pointer api error", fmt.Errorf("send message: %w", &genai.APIError{Code: 500}), 1, time.Second, true},
		{"quota without hint", genai.APIError{Code: 429, Message: "slow down"}, 2, 2 * time.Second, true},
		{"quota with hint", genai.APIError{Code: 429, Message: "Retry after 3 seconds"}, 1, 3 * time.Second, true},
		{"client error", genai.APIError{Code: 404}, 1, 0, false},
		{"cancelled", context.Canceled, 1, 0, false},
		{"plain error", errors.New("boom"), 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			delay, retry := retryDelay(tt.err, tt.attempt)
			if retry != tt.wantRetry || delay != tt.wantDelay {
				t.Fatalf("retryDelay() = (%s, %t), want (%s, %t)", delay, retry, tt.wantDelay, tt.wantRetry)
			}
		})
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spigell/interview-agent/internal/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSteps struct {
	res *step.Result
	err error
	got *step.Request
}

func (s *stubSteps) ProcessStep(_ context.Context, req *step.Request) (*step.Result, error) {
	s.got = req
	return s.res, s.err
}

func newTestServer(steps StepProcessor, log *zap.Logger) *Server {
	s := New(Config{Environment: "test", Version: "v1.2.3"}, steps, log)
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return s
}

func TestHandleStep(t *testing.T) {
	steps := &stubSteps{res: &step.Result{NextQuestion: "Do you have an EU work permit?", Phase: "knockout", ShouldContinue: true, OrderIndex: 1}}
	srv := newTestServer(steps, nil)

	req := httptest.NewRequest(http.MethodPost, "/interview-step",
		strings.NewReader(`{"application_id": "app-1", "candidate_message": "", "interview_state": {"job_context": {"title": "Dev"}}}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Do you have an EU work permit?", body["next_question"])
	assert.Equal(t, true, body["should_continue"])
	assert.Nil(t, body["rejection_reason"])

	require.NotNil(t, steps.got)
	assert.Equal(t, "app-1", steps.got.ApplicationID)
	assert.Equal(t, "Dev", steps.got.State.JobContext.Title)
}

func TestHandleStepErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		error  string
	}{
		{
			name:   "malformed json",
			body:   `{"application_id":`,
			status: http.StatusBadRequest,
			error:  "invalid request body",
		},
		{
			name:   "validation error",
			body:   `{}`,
			err:    &step.ValidationError{Fields: []step.FieldError{{Field: "application_id", Message: "is required"}}},
			status: http.StatusBadRequest,
			error:  "invalid request",
		},
		{
			name:   "processing error",
			body:   `{"application_id": "app-1"}`,
			err:    errors.New("model unavailable"),
			status: http.StatusInternalServerError,
			error:  "error processing step",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubSteps{err: tt.err}, nil)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interview-step", strings.NewReader(tt.body)))

			require.Equal(t, tt.status, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.error, body.Error)
			assert.NotEmpty(t, body.Detail)
			assert.Equal(t, "2025-03-14T09:30:00Z", body.Timestamp)
		})
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubSteps{}, nil)

	for _, path := range []string{"/health", "/"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			require.Equal(t, http.StatusOK, rec.Code)

			var body healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, healthResponse{
				Status:      "healthy",
				Timestamp:   "2025-03-14T09:30:00Z",
				Environment: "test",
				Version:     "v1.2.3",
			}, body)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(&stubSteps{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interviews", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDIsReusedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	srv := newTestServer(&stubSteps{}, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("request handled").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "/health", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

type blockingSteps struct {
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (b *blockingSteps) ProcessStep(context.Context, *step.Request) (*step.Result, error) {
	n := b.active.Add(1)
	for {
		seen := b.maxSeen.Load()
		if n <= seen || b.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	b.active.Add(-1)
	return &step.Result{}, nil
}

func TestStepsOfOneApplicationAreSerialized(t *testing.T) {
	steps := &blockingSteps{}
	srv := newTestServer(steps, nil)
	handler := srv.Handler()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interview-step", strings.NewReader(`{"application_id": "app-1"}`)))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, steps.maxSeen.Load())
	assert.Zero(t, srv.locks.size())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	srv := New(Config{Host: "127.0.0.1", Port: 0}, &stubSteps{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "server did not stop")
	}
}

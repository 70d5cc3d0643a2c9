// Package server exposes the interview step over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spigell/interview-agent/internal/logger"
	"github.com/spigell/interview-agent/internal/step"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 120 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second

	maxBodyBytes = 1 << 20
)

// StepProcessor runs one interview step.
type StepProcessor interface {
	ProcessStep(ctx context.Context, req *step.Request) (*step.Result, error)
}

type Config struct {
	Host        string
	Port        int
	Environment string
	Version     string
}

type Server struct {
	httpServer *http.Server
	steps      StepProcessor
	locks      *sessionLocks
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

func New(cfg Config, steps StepProcessor, log *zap.Logger) *Server {
	s := &Server{
		steps:  steps,
		locks:  newSessionLocks(),
		cfg:    cfg,
		logger: logger.WithFields(log),
		now:    time.Now,
	}

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /interview-step", s.handleStep)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleHealth)

	return s.withRequestID(s.withLogging(mux))
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr), zap.String("environment", s.cfg.Environment))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r.Context(), s.logger)

	var req step.Request
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	unlock := s.locks.lock(req.ApplicationID)
	defer unlock()

	res, err := s.steps.ProcessStep(r.Context(), &req)
	if err != nil {
		var verr *step.ValidationError
		if errors.As(err, &verr) {
			log.Warn("rejected interview step", zap.String(logger.FieldApplicationID, req.ApplicationID), zap.Error(err))
			s.errorResponse(w, http.StatusBadRequest, "invalid request", verr.Error())
			return
		}

		log.Error("interview step failed", zap.String(logger.FieldApplicationID, req.ApplicationID), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "error processing step", err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, res)
}

type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Timestamp:   s.timestamp(),
		Environment: s.cfg.Environment,
		Version:     s.cfg.Version,
	})
}

type errorBody struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message, detail string) {
	s.jsonResponse(w, status, errorBody{Error: message, Detail: detail, Timestamp: s.timestamp()})
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

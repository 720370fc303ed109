// Package chi is the HTTP transport: request decoding, the domain error to
// status mapping, and route registration on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	chatuc "github.com/kailas-cloud/ragdex/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
	"github.com/kailas-cloud/ragdex/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the chat pipeline over HTTP.
type Server struct {
	chat          *chatuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(chat *chatuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		chat:   chat,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionIDRequired, http.StatusBadRequest, "sessionId is required."),
		sentinelHandler(domain.ErrMessageEmpty, http.StatusBadRequest, "message cannot be empty."),
		sentinelHandler(domain.ErrStoreNotReady, http.StatusServiceUnavailable, "Vector store is unavailable."),
		sentinelHandler(domain.ErrProviderTimeout, http.StatusGatewayTimeout, "Upstream provider timed out."),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "Embedding provider error."),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, "Generation provider error."),
		sentinelHandler(domain.ErrEmptyCompletion, http.StatusBadGateway, "Generation provider error."),
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/chat", s.Chat)
	r.Get("/health", s.HealthCheck)
	r.Get("/ready", s.ReadyCheck)
	r.Get("/", s.Root)
	r.Get("/metrics", s.Metrics)
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply           string `json:"reply"`
	RetrievedChunks int    `json:"retrievedChunks"`
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	answer, err := s.chat.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:           answer.Reply,
		RetrievedChunks: answer.RetrievedChunks,
	})
}

// HealthCheck handles GET /health. Liveness is unconditional.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyCheck handles GET /ready.
func (s *Server) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Ready(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Ready {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "ragdex is running",
		"version": version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error.")
}

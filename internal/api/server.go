// Package api exposes the assistant pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huyvu15/Agentic-search-company/internal/chat"
	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
	"github.com/huyvu15/Agentic-search-company/internal/common/observability"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline"
)

// ModelInfo is the slice of the model client the readiness probe reports.
type ModelInfo interface {
	ModelName() string
	HasAPIKey() bool
}

// CachePinger reports whether the optional page cache is reachable.
type CachePinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	orchestrator *pipeline.Orchestrator
	sessions     *chat.Manager
	model        ModelInfo
	cache        CachePinger
	obs          *observability.Observability
	logger       logger.Logger
}

// NewServer wires the HTTP surface. cache and obs may be nil.
func NewServer(
	orchestrator *pipeline.Orchestrator,
	sessions *chat.Manager,
	model ModelInfo,
	cache CachePinger,
	obs *observability.Observability,
	log logger.Logger,
) *Server {
	return &Server{
		orchestrator: orchestrator,
		sessions:     sessions,
		model:        model,
		cache:        cache,
		obs:          obs,
		logger:       log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Post("/api/search-chat", s.searchChat)
	r.Post("/api/assistant", s.assistant)
	r.Post("/api/chat/clear", s.clearChat)
	r.Get("/api/chat/history", s.chatHistory)
	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Temperature and MaxTokens stay nil when the field is absent, so an
// explicit 0 from the client is distinguishable from "use the default".
type searchChatRequest struct {
	Query       string   `json:"query"`
	MaxResults  int      `json:"max_results"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

type assistantRequest struct {
	Message        string   `json:"message"`
	ConversationID string   `json:"conversation_id"`
	MaxResults     int      `json:"max_results"`
	Temperature    *float64 `json:"temperature"`
	MaxTokens      *int     `json:"max_tokens"`
}

func (s *Server) searchChat(w http.ResponseWriter, r *http.Request) {
	var req searchChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "search-chat", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.badRequest(w, r, "search-chat", "query is required")
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 3
	}

	resp := s.orchestrator.SearchChat(r.Context(), &pipeline.SearchChatRequest{
		Query:       req.Query,
		MaxResults:  req.MaxResults,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})

	s.recordRequest(r.Context(), "search-chat", "success")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) assistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "assistant", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.badRequest(w, r, "assistant", "message is required")
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 5
	}

	resp := s.orchestrator.Assistant(r.Context(), &pipeline.AssistantRequest{
		Message:     req.Message,
		MaxResults:  req.MaxResults,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})

	s.sessions.Get(req.ConversationID).Record(req.Message, resp.Answer)

	s.recordRequest(r.Context(), "assistant", "success")
	writeJSON(w, http.StatusOK, resp)
}

type clearChatRequest struct {
	ConversationID string `json:"conversation_id"`
}

func (s *Server) clearChat(w http.ResponseWriter, r *http.Request) {
	var req clearChatRequest
	// An empty body clears the default conversation; a present but
	// unparsable body is rejected like on every other endpoint.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(w, r, "chat-clear", "invalid request body")
		return
	}

	s.sessions.Get(req.ConversationID).Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

type historyResponse struct {
	ConversationID string      `json:"conversation_id"`
	Turns          []chat.Turn `json:"turns"`
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("conversation_id")
	if id == "" {
		id = chat.DefaultConversationID
	}

	turns := s.sessions.Get(id).History()
	if turns == nil {
		turns = []chat.Turn{}
	}
	writeJSON(w, http.StatusOK, historyResponse{ConversationID: id, Turns: turns})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readinessResponse struct {
	Status    string `json:"status"`
	Model     string `json:"model"`
	APIKeySet bool   `json:"api_key_set"`
	Cache     string `json:"cache,omitempty"`
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	resp := readinessResponse{
		Status:    "ready",
		Model:     s.model.ModelName(),
		APIKeySet: s.model.HasAPIKey(),
	}
	status := http.StatusOK

	if !resp.APIKeySet {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			resp.Cache = "unreachable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			resp.Cache = "ok"
		}
	}

	writeJSON(w, status, resp)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, endpoint, message string) {
	s.logger.Warn("rejected request", map[string]interface{}{
		"endpoint": endpoint,
		"reason":   message,
	})
	s.recordRequest(r.Context(), endpoint, "bad_request")
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

func (s *Server) recordRequest(ctx context.Context, endpoint, status string) {
	if s.obs != nil {
		s.obs.RecordRequest(ctx, endpoint, status)
	}
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Options bound the listener. A zero ShutdownTimeout falls back to 30s
// so in-flight synthesis calls still get a drain window.
type Options struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Start serves the API until ctx is cancelled, then drains in-flight
// requests within the shutdown timeout.
func (s *Server) Start(ctx context.Context, opts Options) error {
	server := &http.Server{
		Addr:         opts.Address,
		Handler:      s.Router(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", map[string]interface{}{
		"address": opts.Address,
	})
	return server.ListenAndServe()
}

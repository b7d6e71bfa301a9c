// Package admin exposes the queue observability API consumed by internal
// tooling: queue statistics, item listings, delivery logs, and a test-send
// endpoint that bypasses the queue. The router carries no authentication of
// its own; mount it behind whatever middleware the deployment provides.
package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/intentionalhq/notifier/pkg/queue"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Service handles admin/observability requests
type Service struct {
	reporter  queue.ReporterRepository
	deliverer queue.Deliverer
	logger    *slog.Logger
}

// NewService creates the admin service. The deliverer is optional; without
// it the test-send endpoint responds 503.
func NewService(reporter queue.ReporterRepository, deliverer queue.Deliverer, logger *slog.Logger) (*Service, error) {
	if reporter == nil {
		return nil, queue.ErrRepositoryNil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reporter:  reporter,
		deliverer: deliverer,
		logger:    logger,
	}, nil
}

// Router returns the admin API routes:
//
//	GET  /stats      queue item counts by status
//	GET  /queue      queue items, newest first (status, limit, offset)
//	GET  /logs       delivery log entries, newest first (limit)
//	POST /send-test  render and send one notification directly
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/stats", s.getStats)
	r.Get("/queue", s.getQueue)
	r.Get("/logs", s.getLogs)
	r.Post("/send-test", s.sendTest)

	return r
}

// Handle returns the router as a plain http.Handler for mounting
func (s *Service) Handle() http.Handler {
	return s.Router()
}

func (s *Service) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reporter.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Service) getQueue(w http.ResponseWriter, r *http.Request) {
	status := queue.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		s.respondError(w, r, http.StatusBadRequest, errors.New("unknown status filter"))
		return
	}

	limit := queryInt(r, "limit", defaultLimit)
	offset := queryInt(r, "offset", 0)

	items, err := s.reporter.ItemsByStatus(r.Context(), status, limit, offset)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Service) getLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLimit)

	logs, err := s.reporter.RecentLogs(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, logs)
}

type sendTestRequest struct {
	Recipient string         `json:"recipient"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload"`
}

type sendTestResponse struct {
	Success    bool   `json:"success"`
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"provider_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// sendTest delivers one notification immediately, bypassing the queue.
// Nothing is persisted; the response carries the provider outcome.
func (s *Service) sendTest(w http.ResponseWriter, r *http.Request) {
	if s.deliverer == nil {
		s.respondError(w, r, http.StatusServiceUnavailable, errors.New("no deliverer configured"))
		return
	}

	var req sendTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Recipient == "" || req.Kind == "" {
		s.respondError(w, r, http.StatusBadRequest, errors.New("recipient and kind are required"))
		return
	}

	item := &queue.Item{
		ID:        uuid.New(),
		Recipient: req.Recipient,
		Subject:   "Test notification",
		Kind:      req.Kind,
		Payload:   req.Payload,
		Status:    queue.StatusPending,
		Priority:  queue.PriorityDefault,
		CreatedAt: time.Now(),
	}

	providerID, err := s.deliverer.Deliver(r.Context(), item)
	if err != nil {
		s.logger.WarnContext(r.Context(), "test send failed",
			slog.String("kind", req.Kind),
			slog.String("error", err.Error()))
		s.respondJSON(w, http.StatusOK, sendTestResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.respondJSON(w, http.StatusOK, sendTestResponse{
		Success:    true,
		Provider:   s.deliverer.Provider(),
		ProviderID: providerID,
	})
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Service) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.ErrorContext(r.Context(), "admin request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	if key == "limit" && (n == 0 || n > maxLimit) {
		return fallback
	}
	return n
}

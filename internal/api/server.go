// Package api provides the HTTP surface for the relief core. It is a thin
// rendering layer: every endpoint calls into the engine or the statistics
// aggregator and writes the result as JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/app/engine"
	"github.com/relief-network/reliefd/internal/domain"
)

// Server is the reliefd HTTP API server.
type Server struct {
	engine         *engine.Engine
	stats          *engine.Stats
	logger         *zap.Logger
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(eng *engine.Engine, stats *engine.Stats, logger *zap.Logger) *Server {
	return &Server{engine: eng, stats: stats, logger: logger}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/shortages", s.handleShortages)
		r.Get("/shortages/critical", s.handleCriticalShortages)
		r.Get("/shortages/top", s.handleTopShortages)

		r.Post("/allocations", s.handleAllocate)
		r.Post("/allocations/auto", s.handleAutoAllocate)

		r.Get("/donations/pending", s.handlePendingDonations)
		r.Get("/donations/needing-allocation", s.handleDonationsNeedingAllocation)

		r.Get("/stats/resources", s.handleResourceStats)
		r.Get("/stats/donations", s.handleDonationStats)
		r.Get("/stats/dashboard", s.handleDashboard)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Shortage Endpoints ─────────────────────────────────────────────────────

// handleShortages returns every under-supplied inventory row.
// GET /api/shortages
func (s *Server) handleShortages(w http.ResponseWriter, r *http.Request) {
	views, err := s.engine.Calculator().ComputeShortages(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shortages": orEmpty(views)})
}

// handleCriticalShortages returns High and Critical shortages only.
// GET /api/shortages/critical
func (s *Server) handleCriticalShortages(w http.ResponseWriter, r *http.Request) {
	views, err := s.engine.Calculator().CriticalShortages(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shortages": orEmpty(views)})
}

// handleTopShortages returns the n largest shortages (default 5).
// GET /api/shortages/top?n=N
func (s *Server) handleTopShortages(w http.ResponseWriter, r *http.Request) {
	n := 5
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = v
	}

	views, err := s.engine.Calculator().TopShortages(r.Context(), n)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shortages": orEmpty(views)})
}

// ─── Allocation Endpoints ───────────────────────────────────────────────────

type allocateRequest struct {
	DonationID int64 `json:"donation_id"`
	CampID     int64 `json:"camp_id"`
	Quantity   int64 `json:"quantity"`
}

// handleAllocate performs one manual allocation.
// POST /api/allocations
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.AllocateDonationToCamp(r.Context(), req.DonationID, req.CampID, req.Quantity)
	if err != nil {
		writeJSON(w, statusForError(err), result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAutoAllocate runs the batch greedy matcher.
// POST /api/allocations/auto
func (s *Server) handleAutoAllocate(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.AutoAllocate(r.Context())
	if err != nil {
		writeJSON(w, statusForError(err), result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ─── Donation Endpoints ─────────────────────────────────────────────────────

// handlePendingDonations lists donations still awaiting allocation.
// GET /api/donations/pending
func (s *Server) handlePendingDonations(w http.ResponseWriter, r *http.Request) {
	pending, err := s.engine.PendingDonations(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"donations": orEmpty(pending)})
}

// handleDonationsNeedingAllocation ranks pending donations by potential impact.
// GET /api/donations/needing-allocation
func (s *Server) handleDonationsNeedingAllocation(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.engine.DonationsNeedingAllocation(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"donations": orEmpty(candidates)})
}

// ─── Statistics Endpoints ───────────────────────────────────────────────────
// The aggregator is fail-open, so these never return an error status.

// GET /api/stats/resources
func (s *Server) handleResourceStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.ResourceStatistics(r.Context()))
}

// GET /api/stats/donations
func (s *Server) handleDonationStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.DonationStatistics(r.Context()))
}

// GET /api/stats/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Dashboard(r.Context()))
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// statusForError maps the core's error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrDonationNotFound), errors.Is(err, domain.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	writeError(w, statusForError(err), err.Error())
}

// orEmpty keeps list responses as [] instead of null.
func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

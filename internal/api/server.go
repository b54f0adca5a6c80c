// Package api provides the HTTP surface of the ledger engine: balances,
// reconciliation, recompute and the self-verification harness. It is glue —
// every handler delegates to the application service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/orderhelper/vipledger/internal/app/vip"
	"github.com/orderhelper/vipledger/internal/domain"
)

// Server is the HTTP API server.
type Server struct {
	svc            *vip.Service
	metricsEnabled bool
}

// NewServer creates a new API server around the service.
func NewServer(svc *vip.Service) *Server {
	return &Server{svc: svc}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/balances", s.handleBalances)
		r.Get("/ledger", s.handleLedger)
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/recompute", s.handleRecompute)
		r.Get("/reconcile", s.handleReconcileSnapshot)
		r.Post("/reconcile", s.handleReconcile)
		r.Post("/audit", s.handleAudit)
		r.Post("/verify", s.handleVerify)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Handlers ───────────────────────────────────────────────────────────────

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.svc.Balances()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": balances})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Ledger()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.BackupDocument()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"vipList":   doc.VipList,
		"timestamp": doc.Timestamp,
	})
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Recompute(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recomputed"})
}

// reconcileRequest is the body of POST /api/reconcile.
type reconcileRequest struct {
	Name     string          `json:"name"`
	Expected decimal.Decimal `json:"expected"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	report, err := s.svc.Reconcile(req.Name, req.Expected)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReconcileSnapshot(w http.ResponseWriter, r *http.Request) {
	reports, err := s.svc.ReconcileSnapshot()
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotMissing) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// handleAudit cross-checks a posted backup document. The document comes from
// the client; stored state plays no part.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var doc domain.Backup
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup document")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Audit(doc))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	res := s.svc.Verify()
	status := http.StatusOK
	if !res.AllPassed {
		// The run itself succeeded; the state failed its checks.
		status = http.StatusConflict
	}
	writeJSON(w, status, res)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// Package web exposes the topology API over HTTP: scene queries, stored
// run reports, PDF export, metrics and a websocket push channel.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/netscenehq/netscene/internal/adapters/reporting"
	"github.com/netscenehq/netscene/internal/adapters/storage"
	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SceneService is the core facade the handlers call into.
type SceneService interface {
	// Scene returns the current topology, serving from cache when fresh.
	Scene(ctx context.Context, enhanced bool) (*domain.Scene, error)
	// Refresh forces a new discovery run and returns its report.
	Refresh(ctx context.Context, enhanced bool) domain.WorkflowReport
}

// ReportStore reads stored run reports.
type ReportStore interface {
	Report(ctx context.Context, runID string) (domain.WorkflowReport, error)
	LatestReport(ctx context.Context) (domain.WorkflowReport, error)
	RunIDs(ctx context.Context, limit int) ([]string, error)
}

// Server hosts the HTTP API.
type Server struct {
	addr    string
	service SceneService
	reports ReportStore // may be nil when persistence is disabled
	ws      *WSManager
	pdf     *reporting.PDFExporter
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer wires the API around the core facade. reports may be nil.
func NewServer(addr string, service SceneService, reports ReportStore, ws *WSManager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		service: service,
		reports: reports,
		ws:      ws,
		pdf:     reporting.NewPDFExporter(),
		logger:  logger.With("component", "web"),
	}
}

// Router builds the route table. Split out from Run for tests.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/topology", s.handleTopology).Methods(http.MethodGet)
	r.HandleFunc("/api/topology/enhanced", s.handleTopologyEnhanced).Methods(http.MethodGet)
	r.HandleFunc("/api/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/runs", s.handleListRuns).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}/report", s.handleRunReport).Methods(http.MethodGet)
	r.HandleFunc("/api/export/pdf", s.handleExportPDF).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.ws != nil {
		r.HandleFunc("/ws", s.ws.HandleWebSocket)
	}
	r.Handle("/metrics", promhttp.Handler())

	return otelhttp.NewHandler(r, "netscene-api")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown", "error", err)
		}
	}()

	s.logger.Info("listening", "addr", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	s.serveScene(w, r, false)
}

func (s *Server) handleTopologyEnhanced(w http.ResponseWriter, r *http.Request) {
	s.serveScene(w, r, true)
}

func (s *Server) serveScene(w http.ResponseWriter, r *http.Request, enhanced bool) {
	scene, err := s.service.Scene(r.Context(), enhanced)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("discovery failed: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, scene)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	enhanced := r.URL.Query().Get("enhanced") == "true"
	report := s.service.Refresh(r.Context(), enhanced)

	status := http.StatusOK
	if report.Status == domain.StatusFailed {
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, report)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, http.StatusNotFound, "run persistence disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ids, err := s.reports.RunIDs(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": ids})
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, http.StatusNotFound, "run persistence disabled")
		return
	}
	runID := mux.Vars(r)["id"]
	report, err := s.reports.Report(r.Context(), runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "unknown run "+runID)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, http.StatusNotFound, "run persistence disabled")
		return
	}
	report, err := s.reports.LatestReport(r.Context())
	if errors.Is(err, storage.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "no stored runs")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	data, err := s.pdf.Export(report)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=topology-%s.pdf", report.RunID))
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Package dashboard serves the analytics charts over HTTP as JSON, with
// a WebSocket channel that tells connected clients when cached results
// were invalidated.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/sprintlens/pkg/application"
	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

//go:embed templates/*
var templatesFS embed.FS

// Server is the dashboard HTTP server.
type Server struct {
	addr      string
	analytics *application.AnalyticsService
	hub       *Hub
	logger    *slog.Logger
	server    *http.Server
	tmpl      *template.Template
}

// NewServer creates a dashboard over an analytics service.
func NewServer(addr string, analytics *application.AnalyticsService, hub *Hub, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		addr:      addr,
		analytics: analytics,
		hub:       hub,
		logger:    logger,
		tmpl:      tmpl,
	}, nil
}

// Start starts the dashboard server and blocks until it stops.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/burndown", s.handleBurndown)
	mux.HandleFunc("GET /api/velocity", s.handleVelocity)
	mux.HandleFunc("GET /api/cumulative-flow", s.handleCumulativeFlow)
	mux.HandleFunc("GET /api/cycle-time", s.handleCycleTime)
	mux.HandleFunc("GET /api/work-distribution", s.handleWorkDistribution)
	mux.HandleFunc("GET /api/issue-trend", s.handleIssueTrend)
	mux.HandleFunc("GET /api/sprint-report", s.handleSprintReport)
	mux.HandleFunc("POST /api/cache/clear", s.handleClearCache)
	if s.hub != nil {
		mux.Handle("GET /ws", s.hub)
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.withRequestID(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("dashboard server starting", "addr", s.addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.tmpl.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.logger.Error("template error", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleBurndown(w http.ResponseWriter, r *http.Request) {
	scope := domain.ScopeStoryPoints
	if v := r.URL.Query().Get("scope"); v != "" {
		scope = domain.ScopeType(v)
	}
	chart, err := s.analytics.GetBurndown(r.Context(), r.URL.Query().Get("sprint"), scope)
	s.writeChart(w, chart, err)
}

func (s *Server) handleVelocity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	chart, err := s.analytics.GetVelocity(r.Context(), r.URL.Query().Get("project"), limit)
	s.writeChart(w, chart, err)
}

func (s *Server) handleCumulativeFlow(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	chart, err := s.analytics.GetCumulativeFlow(r.Context(), r.URL.Query().Get("project"), from, to)
	s.writeChart(w, chart, err)
}

func (s *Server) handleCycleTime(w http.ResponseWriter, r *http.Request) {
	chart, err := s.analytics.GetCycleTime(r.Context(), r.URL.Query().Get("project"))
	s.writeChart(w, chart, err)
}

func (s *Server) handleWorkDistribution(w http.ResponseWriter, r *http.Request) {
	dimension := domain.DimensionAssignee
	if v := r.URL.Query().Get("dimension"); v != "" {
		dimension = domain.Dimension(v)
	}
	chart, err := s.analytics.GetWorkDistribution(r.Context(), r.URL.Query().Get("project"), dimension)
	s.writeChart(w, chart, err)
}

func (s *Server) handleIssueTrend(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	chart, err := s.analytics.GetIssueTrend(r.Context(), r.URL.Query().Get("project"), from, to)
	s.writeChart(w, chart, err)
}

func (s *Server) handleSprintReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.analytics.GetSprintReport(r.Context(), r.URL.Query().Get("sprint"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.analytics.ClearCache()
	writeJSON(w, map[string]string{"status": "cleared"})
}

// withRequestID stamps every response with an X-Request-ID so log lines
// and client reports can be correlated. An inbound ID is reused.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("dashboard request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeChart(w http.ResponseWriter, chart *domain.ChartResponse, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, chart)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if domain.IsInvalidArgument(err) {
		status = http.StatusBadRequest
	}
	s.logger.Warn("dashboard request failed", "error", err)
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// queryRange parses optional from/to query parameters; absent values
// stay zero so the service applies its defaults.
func queryRange(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = normalize.ParseTime(v); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = normalize.ParseTime(v); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %w", err)
		}
	}
	return from, to, nil
}

package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PendingCounter reports outstanding work for a source: records waiting in
// quarantine and unresolved error records.
type PendingCounter interface {
	QuarantineCount(ctx context.Context, source string) (int, error)
	UnresolvedErrorCount(ctx context.Context, source string) (int, error)
}

// Server provides HTTP endpoints for health monitoring and metrics.
type Server struct {
	monitor *Monitor
	pending PendingCounter
	server  *http.Server
}

// NewServer creates a new health server. pending may be nil when no durable
// store is configured.
func NewServer(monitor *Monitor, pending PendingCounter, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		monitor: monitor,
		pending: pending,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Report builds the current health report across all observed sources.
func (s *Server) Report(ctx context.Context) HealthReport {
	report := HealthReport{
		SystemStatus: StatusHealthy,
		Sources:      make(map[string]SourceHealth),
	}

	for _, source := range s.monitor.Sources() {
		h := SourceHealth{Source: source, Status: StatusHealthy}

		if p, ok := s.monitor.Latest(source); ok {
			h.QualityScore = p.QualityScore
		}
		if s.pending != nil {
			if n, err := s.pending.QuarantineCount(ctx, source); err == nil {
				h.QuarantinePending = n
			}
			if n, err := s.pending.UnresolvedErrorCount(ctx, source); err == nil {
				h.UnresolvedErrors = n
			}
		}

		threshold := s.monitor.Threshold()
		switch {
		case h.QualityScore < threshold || h.UnresolvedErrors > 50:
			h.Status = StatusCritical
		case h.QuarantinePending > 0 || h.UnresolvedErrors > 0:
			h.Status = StatusDegraded
		}

		// Worst source wins.
		if h.Status == StatusCritical {
			report.SystemStatus = StatusCritical
		} else if h.Status == StatusDegraded && report.SystemStatus == StatusHealthy {
			report.SystemStatus = StatusDegraded
		}

		report.Sources[source] = h
	}

	return report
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.Report(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if report.SystemStatus == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Report(r.Context()))
}
